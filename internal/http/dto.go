package http

import (
	"time"

	"budget/internal/core"
)

type createCategoryRequest struct {
	Name           string              `json:"name"`
	Description    *string             `json:"description"`
	CategoryType   core.CategoryType   `json:"categoryType"`
	ItemType       core.ItemType       `json:"itemType"`
	RecurrencyType core.RecurrencyType `json:"recurrencyType"`
	EffectiveDate  *core.Date          `json:"effectiveDate"`
	EndDate        *core.Date          `json:"endDate"`
}

func (r createCategoryRequest) params() core.CreateCategoryParams {
	return core.CreateCategoryParams{
		Name:           r.Name,
		Description:    r.Description,
		CategoryType:   r.CategoryType,
		ItemType:       r.ItemType,
		RecurrencyType: r.RecurrencyType,
		EffectiveDate:  r.EffectiveDate,
		EndDate:        r.EndDate,
	}
}

// updateCategoryRequest treats null and absent alike: neither changes the field.
type updateCategoryRequest struct {
	Name           *string              `json:"name"`
	Description    *string              `json:"description"`
	CategoryType   *core.CategoryType   `json:"categoryType"`
	ItemType       *core.ItemType       `json:"itemType"`
	RecurrencyType *core.RecurrencyType `json:"recurrencyType"`
	EffectiveDate  *core.Date           `json:"effectiveDate"`
	EndDate        *core.Date           `json:"endDate"`
}

func (r updateCategoryRequest) params() core.UpdateCategoryParams {
	return core.UpdateCategoryParams(r)
}

type categoryResponse struct {
	ID             int64               `json:"id"`
	Name           string              `json:"name"`
	Description    *string             `json:"description"`
	CategoryType   core.CategoryType   `json:"categoryType"`
	ItemType       core.ItemType       `json:"itemType"`
	RecurrencyType core.RecurrencyType `json:"recurrencyType"`
	EffectiveDate  *core.Date          `json:"effectiveDate"`
	EndDate        *core.Date          `json:"endDate"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

func newCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:             c.ID,
		Name:           c.Name,
		Description:    c.Description,
		CategoryType:   c.CategoryType,
		ItemType:       c.ItemType,
		RecurrencyType: c.RecurrencyType,
		EffectiveDate:  c.EffectiveDate,
		EndDate:        c.EndDate,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func newCategoryResponses(cs []core.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, newCategoryResponse(c))
	}
	return out
}

type createAmountRequest struct {
	CategoryID *int64      `json:"categoryId"`
	Amount     *core.Money `json:"amount"`
	Note       *string     `json:"note"`
}

type updateAmountRequest struct {
	CategoryID *int64      `json:"categoryId"`
	Amount     *core.Money `json:"amount"`
	Note       *string     `json:"note"`
}

type amountResponse struct {
	ID           int64      `json:"id"`
	CategoryID   int64      `json:"categoryId"`
	CategoryName string     `json:"categoryName"`
	Amount       core.Money `json:"amount"`
	Note         *string    `json:"note"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func newAmountResponse(a core.Amount) amountResponse {
	return amountResponse{
		ID:           a.ID,
		CategoryID:   a.CategoryID,
		CategoryName: a.CategoryName,
		Amount:       a.Amount,
		Note:         a.Note,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func newAmountResponses(as []core.Amount) []amountResponse {
	out := make([]amountResponse, 0, len(as))
	for _, a := range as {
		out = append(out, newAmountResponse(a))
	}
	return out
}

type summaryResponse struct {
	Period           string                `json:"period"`
	TotalIncome      core.Money            `json:"totalIncome"`
	TotalExpenses    core.Money            `json:"totalExpenses"`
	NetBalance       core.Money            `json:"netBalance"`
	IncomeBreakdown  map[string]core.Money `json:"incomeBreakdown"`
	ExpenseBreakdown map[string]core.Money `json:"expenseBreakdown"`
}

func newSummaryResponse(s core.Summary) summaryResponse {
	income, expense := s.IncomeByCategory, s.ExpenseByCategory
	if income == nil {
		income = map[string]core.Money{}
	}
	if expense == nil {
		expense = map[string]core.Money{}
	}
	return summaryResponse{
		Period:           s.Period,
		TotalIncome:      s.TotalIncome,
		TotalExpenses:    s.TotalExpenses,
		NetBalance:       s.NetBalance,
		IncomeBreakdown:  income,
		ExpenseBreakdown: expense,
	}
}

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}
