package storage

import (
	"context"
	"errors"

	"budget/internal/core"
)

var (
	// ErrNotFound is returned when a row addressed by id does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("unique constraint violation")
	// ErrMissingReference is returned when an amount points at a category that does not exist.
	ErrMissingReference = errors.New("referenced record does not exist")
)

// CategoryFilter narrows ListCategories. Zero value lists everything.
type CategoryFilter struct {
	Type         *core.CategoryType
	NameContains string
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	ListCategories(ctx context.Context, filter CategoryFilter) ([]core.Category, error)
	// CategoryNameExists matches case-insensitively, ignoring the category with excludeID.
	CategoryNameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
	// DeleteCategory removes the category and all of its amounts atomically.
	DeleteCategory(ctx context.Context, id int64) error
}

type AmountStore interface {
	CreateAmount(ctx context.Context, a core.Amount) (core.Amount, error)
	GetAmount(ctx context.Context, id int64) (core.Amount, error)
	ListAmounts(ctx context.Context, categoryID *int64) ([]core.Amount, error)
	UpdateAmount(ctx context.Context, a core.Amount) (core.Amount, error)
	DeleteAmount(ctx context.Context, id int64) error
	// SummaryEntries returns every amount whose category window overlaps [start, end].
	SummaryEntries(ctx context.Context, start, end core.Date) ([]core.SummaryEntry, error)
}

// Store is the full persistence surface used by the services.
type Store interface {
	CategoryStore
	AmountStore
	Ping(ctx context.Context) error
	Close() error
}
