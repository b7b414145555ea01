package core

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

const (
	Income  CategoryType = "INCOME"
	Expense CategoryType = "EXPENSE"
)

const (
	Fixed     ItemType = "FIXED"
	Temporary ItemType = "TEMPORARY"
	Sporadic  ItemType = "SPORADIC"
)

const (
	Weekly  RecurrencyType = "WEEKLY"
	Monthly RecurrencyType = "MONTHLY"
	Yearly  RecurrencyType = "YEARLY"
	None    RecurrencyType = "NONE"
)

type (
	CategoryType   string
	ItemType       string
	RecurrencyType string

	// Date is a calendar date without a time-of-day component.
	Date struct {
		time.Time
	}

	Category struct {
		ID             int64
		OwnerID        uuid.UUID
		Name           string
		Description    *string
		CategoryType   CategoryType
		ItemType       ItemType
		RecurrencyType RecurrencyType
		EffectiveDate  *Date
		EndDate        *Date
		CreatedAt      time.Time
		UpdatedAt      time.Time
	}

	// Amount is a monetary entry. CategoryName is resolved on read and never stored.
	Amount struct {
		ID           int64
		CategoryID   int64
		CategoryName string
		Amount       Money
		Note         *string
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}
)

func (t CategoryType) IsValid() bool {
	return t == Income || t == Expense
}

func (t ItemType) IsValid() bool {
	switch t {
	case Fixed, Temporary, Sporadic:
		return true
	}
	return false
}

func (t RecurrencyType) IsValid() bool {
	switch t {
	case Weekly, Monthly, Yearly, None:
		return true
	}
	return false
}

// ParseCategoryType accepts the canonical upper-case names, case-insensitively.
func ParseCategoryType(s string) (CategoryType, error) {
	t := CategoryType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid category type %q", s)
	}
	return t, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// Before reports whether d is strictly earlier than other, by calendar day.
func (d Date) Before(other Date) bool {
	return d.String() < other.String()
}

func (d Date) After(other Date) bool {
	return d.String() > other.String()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string in %s format", DateLayout)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("invalid date %q: expected %s", s, DateLayout)
	}
	*d = parsed
	return nil
}

// Value stores dates as ISO text so both SQLite and PostgreSQL compare them correctly.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v.Year(), int(v.Month()), v.Day())
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("scan date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

// Covers reports whether the category window overlaps [start, end].
// A category without an effective date never overlaps any period.
func (c Category) Covers(start, end Date) bool {
	if c.EffectiveDate == nil || c.EffectiveDate.After(end) {
		return false
	}
	return c.EndDate == nil || !c.EndDate.Before(start)
}

// NameKey folds a category name for uniqueness checks and search.
// Full Unicode case folding is used so "École" and "école" collide.
func NameKey(name string) string {
	return cases.Fold().String(name)
}
