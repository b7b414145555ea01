package core

import "strings"

type CreateCategoryParams struct {
	Name           string
	Description    *string
	CategoryType   CategoryType
	ItemType       ItemType
	RecurrencyType RecurrencyType
	EffectiveDate  *Date
	EndDate        *Date
}

func (p CreateCategoryParams) Validate() error {
	v := &ValidationError{}
	if strings.TrimSpace(p.Name) == "" {
		v.Add("name", "Name is required")
	}
	switch {
	case p.CategoryType == "":
		v.Add("categoryType", "Category type is required")
	case !p.CategoryType.IsValid():
		v.Add("categoryType", "Category type must be one of INCOME, EXPENSE")
	}
	switch {
	case p.ItemType == "":
		v.Add("itemType", "Item type is required")
	case !p.ItemType.IsValid():
		v.Add("itemType", "Item type must be one of FIXED, TEMPORARY, SPORADIC")
	}
	switch {
	case p.RecurrencyType == "":
		v.Add("recurrencyType", "Recurrency type is required")
	case !p.RecurrencyType.IsValid():
		v.Add("recurrencyType", "Recurrency type must be one of WEEKLY, MONTHLY, YEARLY, NONE")
	}
	return v.Err()
}

// UpdateCategoryParams is a partial update: nil fields are left untouched.
type UpdateCategoryParams struct {
	Name           *string
	Description    *string
	CategoryType   *CategoryType
	ItemType       *ItemType
	RecurrencyType *RecurrencyType
	EffectiveDate  *Date
	EndDate        *Date
}

func (p UpdateCategoryParams) Validate() error {
	v := &ValidationError{}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		v.Add("name", "Name must not be blank")
	}
	if p.CategoryType != nil && !p.CategoryType.IsValid() {
		v.Add("categoryType", "Category type must be one of INCOME, EXPENSE")
	}
	if p.ItemType != nil && !p.ItemType.IsValid() {
		v.Add("itemType", "Item type must be one of FIXED, TEMPORARY, SPORADIC")
	}
	if p.RecurrencyType != nil && !p.RecurrencyType.IsValid() {
		v.Add("recurrencyType", "Recurrency type must be one of WEEKLY, MONTHLY, YEARLY, NONE")
	}
	return v.Err()
}

// Apply merges the present fields into c.
func (p UpdateCategoryParams) Apply(c *Category) {
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		c.Description = p.Description
	}
	if p.CategoryType != nil {
		c.CategoryType = *p.CategoryType
	}
	if p.ItemType != nil {
		c.ItemType = *p.ItemType
	}
	if p.RecurrencyType != nil {
		c.RecurrencyType = *p.RecurrencyType
	}
	if p.EffectiveDate != nil {
		c.EffectiveDate = p.EffectiveDate
	}
	if p.EndDate != nil {
		c.EndDate = p.EndDate
	}
}

type CreateAmountParams struct {
	CategoryID *int64
	Amount     *Money
	Note       *string
}

func (p CreateAmountParams) Validate() error {
	v := &ValidationError{}
	if p.CategoryID == nil {
		v.Add("categoryId", "Category ID is required")
	}
	switch {
	case p.Amount == nil:
		v.Add("amount", "Amount is required")
	case !p.Amount.IsPositive():
		v.Add("amount", "Amount must be positive")
	}
	return v.Err()
}

type UpdateAmountParams struct {
	CategoryID *int64
	Amount     *Money
	Note       *string
}

func (p UpdateAmountParams) Validate() error {
	v := &ValidationError{}
	if p.Amount != nil && !p.Amount.IsPositive() {
		v.Add("amount", "Amount must be positive")
	}
	return v.Err()
}

func (p UpdateAmountParams) Apply(a *Amount) {
	if p.CategoryID != nil {
		a.CategoryID = *p.CategoryID
	}
	if p.Amount != nil {
		a.Amount = *p.Amount
	}
	if p.Note != nil {
		a.Note = p.Note
	}
}

// ValidateWindow rejects a category whose end date precedes its effective date.
func ValidateWindow(effective, end *Date) error {
	if effective != nil && end != nil && end.Before(*effective) {
		return InvalidArgument("End date %s must not be before effective date %s", end, effective)
	}
	return nil
}
