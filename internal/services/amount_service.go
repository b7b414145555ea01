package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/storage"
)

// AmountService manages monetary entries and computes period summaries.
type AmountService struct {
	amounts    storage.AmountStore
	categories storage.CategoryStore
	changeNotifier
	now func() time.Time
}

func NewAmountService(amounts storage.AmountStore, categories storage.CategoryStore, summaries *SummaryCache, events EventPublisher) *AmountService {
	return &AmountService{
		amounts:        amounts,
		categories:     categories,
		changeNotifier: changeNotifier{summaries: summaries, events: events},
		now:            time.Now,
	}
}

func (s *AmountService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// category resolves id or returns the typed not-found error.
func (s *AmountService) category(ctx context.Context, id int64) (core.Category, error) {
	c, err := s.categories.GetCategory(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Category{}, core.CategoryNotFound(id)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *AmountService) Create(ctx context.Context, p core.CreateAmountParams) (core.Amount, error) {
	if err := p.Validate(); err != nil {
		return core.Amount{}, err
	}

	cat, err := s.category(ctx, *p.CategoryID)
	if err != nil {
		return core.Amount{}, err
	}

	now := s.timestamp()
	created, err := s.amounts.CreateAmount(ctx, core.Amount{
		CategoryID: cat.ID,
		Amount:     *p.Amount,
		Note:       p.Note,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if errors.Is(err, storage.ErrMissingReference) {
		return core.Amount{}, core.CategoryNotFound(cat.ID)
	}
	if err != nil {
		return core.Amount{}, fmt.Errorf("create amount: %w", err)
	}
	created.CategoryName = cat.Name

	slog.InfoContext(ctx, "Amount created",
		log.FieldComponent, log.ComponentAmount, log.FieldOperation, log.OpCreate,
		log.FieldAmountID, created.ID, log.FieldCategoryID, created.CategoryID, "amount", created.Amount.String())
	s.changed(ctx, amqp.EntityAmount, amqp.ActionCreated, created.ID)
	return created, nil
}

func (s *AmountService) Get(ctx context.Context, id int64) (core.Amount, error) {
	a, err := s.amounts.GetAmount(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Amount{}, core.AmountNotFound(id)
	}
	if err != nil {
		return core.Amount{}, fmt.Errorf("get amount: %w", err)
	}
	return a, nil
}

// List returns amounts ordered by id. An unknown categoryID yields an empty list.
func (s *AmountService) List(ctx context.Context, categoryID *int64) ([]core.Amount, error) {
	amounts, err := s.amounts.ListAmounts(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list amounts: %w", err)
	}
	return amounts, nil
}

func (s *AmountService) Update(ctx context.Context, id int64, p core.UpdateAmountParams) (core.Amount, error) {
	if err := p.Validate(); err != nil {
		return core.Amount{}, err
	}

	a, err := s.Get(ctx, id)
	if err != nil {
		return core.Amount{}, err
	}
	if p.CategoryID != nil {
		if _, err := s.category(ctx, *p.CategoryID); err != nil {
			return core.Amount{}, err
		}
	}

	p.Apply(&a)
	a.UpdatedAt = s.timestamp()

	updated, err := s.amounts.UpdateAmount(ctx, a)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return core.Amount{}, core.AmountNotFound(id)
	case errors.Is(err, storage.ErrMissingReference):
		return core.Amount{}, core.CategoryNotFound(a.CategoryID)
	case err != nil:
		return core.Amount{}, fmt.Errorf("update amount: %w", err)
	}

	slog.InfoContext(ctx, "Amount updated",
		log.FieldComponent, log.ComponentAmount, log.FieldOperation, log.OpUpdate,
		log.FieldAmountID, updated.ID, log.FieldCategoryID, updated.CategoryID, "amount", updated.Amount.String())
	s.changed(ctx, amqp.EntityAmount, amqp.ActionUpdated, updated.ID)
	return updated, nil
}

func (s *AmountService) Delete(ctx context.Context, id int64) error {
	err := s.amounts.DeleteAmount(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return core.AmountNotFound(id)
	}
	if err != nil {
		return fmt.Errorf("delete amount: %w", err)
	}

	slog.InfoContext(ctx, "Amount deleted",
		log.FieldComponent, log.ComponentAmount, log.FieldOperation, log.OpDelete, log.FieldAmountID, id)
	s.changed(ctx, amqp.EntityAmount, amqp.ActionDeleted, id)
	return nil
}

// Summary totals the amounts of every category whose window overlaps [start, end].
func (s *AmountService) Summary(ctx context.Context, start, end core.Date) (core.Summary, error) {
	if start.After(end) {
		return core.Summary{}, core.InvalidArgument("Start date %s must not be after end date %s", start, end)
	}

	return s.summaries.Get(ctx, start, end, func(ctx context.Context) (core.Summary, error) {
		entries, err := s.amounts.SummaryEntries(ctx, start, end)
		if err != nil {
			return core.Summary{}, fmt.Errorf("load summary entries: %w", err)
		}
		slog.DebugContext(ctx, "Summary computed",
			log.FieldComponent, log.ComponentSummary, log.FieldOperation, log.OpSummary,
			"start", start.String(), "end", end.String(), "entries", len(entries))
		return core.Summarize(start, end, entries), nil
	})
}
