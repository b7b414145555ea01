package core

import (
	"fmt"
	"strings"
)

// NotFoundError reports a lookup by id that matched nothing.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Resource, e.ID)
}

func CategoryNotFound(id int64) error {
	return &NotFoundError{Resource: "Category", ID: id}
}

func AmountNotFound(id int64) error {
	return &NotFoundError{Resource: "Amount", ID: id}
}

// DuplicateNameError is returned when a category name collides case-insensitively.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("Category with name '%s' already exists", e.Name)
}

// InvalidArgumentError carries a caller-facing message for semantically invalid input.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

func InvalidArgument(format string, args ...any) error {
	return &InvalidArgumentError{Message: fmt.Sprintf(format, args...)}
}

type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects every request-shape violation found in one pass.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.Join(parts, ", ")
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Err returns nil when no field failed, so callers can return it directly.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
