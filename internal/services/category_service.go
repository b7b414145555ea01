package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/storage"
)

// CategoryService owns category rules: unique names, valid windows and cascading deletes.
type CategoryService struct {
	store storage.CategoryStore
	changeNotifier
	now func() time.Time
}

func NewCategoryService(store storage.CategoryStore, summaries *SummaryCache, events EventPublisher) *CategoryService {
	return &CategoryService{
		store:          store,
		changeNotifier: changeNotifier{summaries: summaries, events: events},
		now:            time.Now,
	}
}

func (s *CategoryService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *CategoryService) Create(ctx context.Context, p core.CreateCategoryParams) (core.Category, error) {
	if err := p.Validate(); err != nil {
		return core.Category{}, err
	}
	name := strings.TrimSpace(p.Name)

	exists, err := s.store.CategoryNameExists(ctx, name, 0)
	if err != nil {
		return core.Category{}, fmt.Errorf("check category name: %w", err)
	}
	if exists {
		return core.Category{}, &core.DuplicateNameError{Name: name}
	}
	if err := core.ValidateWindow(p.EffectiveDate, p.EndDate); err != nil {
		return core.Category{}, err
	}

	owner, ok := core.OwnerFromContext(ctx)
	if !ok {
		owner = uuid.New()
	}

	now := s.timestamp()
	created, err := s.store.CreateCategory(ctx, core.Category{
		OwnerID:        owner,
		Name:           name,
		Description:    p.Description,
		CategoryType:   p.CategoryType,
		ItemType:       p.ItemType,
		RecurrencyType: p.RecurrencyType,
		EffectiveDate:  p.EffectiveDate,
		EndDate:        p.EndDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if errors.Is(err, storage.ErrConflict) {
		return core.Category{}, &core.DuplicateNameError{Name: name}
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created",
		log.FieldComponent, log.ComponentCategory, log.FieldOperation, log.OpCreate,
		log.FieldCategoryID, created.ID, "name", created.Name, "type", created.CategoryType,
		log.FieldOwnerID, created.OwnerID)
	s.changed(ctx, amqp.EntityCategory, amqp.ActionCreated, created.ID)
	return created, nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Category{}, core.CategoryNotFound(id)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// List returns all categories ordered by id, optionally restricted to one type.
func (s *CategoryService) List(ctx context.Context, typ *core.CategoryType) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx, storage.CategoryFilter{Type: typ})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// Search matches categories whose name contains fragment, ignoring case.
func (s *CategoryService) Search(ctx context.Context, fragment string) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx, storage.CategoryFilter{NameContains: fragment})
	if err != nil {
		return nil, fmt.Errorf("search categories: %w", err)
	}
	return cats, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, p core.UpdateCategoryParams) (core.Category, error) {
	if err := p.Validate(); err != nil {
		return core.Category{}, err
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return core.Category{}, err
	}

	p.Apply(&c)

	if p.Name != nil {
		exists, err := s.store.CategoryNameExists(ctx, c.Name, c.ID)
		if err != nil {
			return core.Category{}, fmt.Errorf("check category name: %w", err)
		}
		if exists {
			return core.Category{}, &core.DuplicateNameError{Name: c.Name}
		}
	}
	if err := core.ValidateWindow(c.EffectiveDate, c.EndDate); err != nil {
		return core.Category{}, err
	}

	c.UpdatedAt = s.timestamp()
	updated, err := s.store.UpdateCategory(ctx, c)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return core.Category{}, core.CategoryNotFound(id)
	case errors.Is(err, storage.ErrConflict):
		return core.Category{}, &core.DuplicateNameError{Name: c.Name}
	case err != nil:
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}

	slog.InfoContext(ctx, "Category updated",
		log.FieldComponent, log.ComponentCategory, log.FieldOperation, log.OpUpdate,
		log.FieldCategoryID, updated.ID, "name", updated.Name)
	s.changed(ctx, amqp.EntityCategory, amqp.ActionUpdated, updated.ID)
	return updated, nil
}

// Delete removes the category together with all of its amounts.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	err := s.store.DeleteCategory(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return core.CategoryNotFound(id)
	}
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	slog.InfoContext(ctx, "Category deleted",
		log.FieldComponent, log.ComponentCategory, log.FieldOperation, log.OpDelete, log.FieldCategoryID, id)
	s.changed(ctx, amqp.EntityCategory, amqp.ActionDeleted, id)
	return nil
}
