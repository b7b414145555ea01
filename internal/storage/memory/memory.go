// Package memory is a process-local Store used for development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"budget/internal/core"
	"budget/internal/storage"
)

type Store struct {
	mu         sync.RWMutex
	categories map[int64]core.Category
	amounts    map[int64]core.Amount
	nextCatID  int64
	nextAmtID  int64
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		categories: make(map[int64]core.Category),
		amounts:    make(map[int64]core.Amount),
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTakenLocked(c.Name, 0) {
		return core.Category{}, storage.ErrConflict
	}
	s.nextCatID++
	c.ID = s.nextCatID
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, storage.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListCategories(_ context.Context, filter storage.CategoryFilter) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := core.NameKey(filter.NameContains)
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if filter.Type != nil && c.CategoryType != *filter.Type {
			continue
		}
		if needle != "" && !strings.Contains(core.NameKey(c.Name), needle) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CategoryNameExists(_ context.Context, name string, excludeID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nameTakenLocked(name, excludeID), nil
}

func (s *Store) nameTakenLocked(name string, excludeID int64) bool {
	key := core.NameKey(name)
	for id, c := range s.categories {
		if id != excludeID && core.NameKey(c.Name) == key {
			return true
		}
	}
	return false
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return core.Category{}, storage.ErrNotFound
	}
	if s.nameTakenLocked(c.Name, c.ID) {
		return core.Category{}, storage.ErrConflict
	}
	s.categories[c.ID] = c
	return c, nil
}

// DeleteCategory removes the category and its amounts under one lock.
func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return storage.ErrNotFound
	}
	for aid, a := range s.amounts {
		if a.CategoryID == id {
			delete(s.amounts, aid)
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) CreateAmount(_ context.Context, a core.Amount) (core.Amount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[a.CategoryID]
	if !ok {
		return core.Amount{}, storage.ErrMissingReference
	}
	s.nextAmtID++
	a.ID = s.nextAmtID
	a.CategoryName = ""
	s.amounts[a.ID] = a
	a.CategoryName = c.Name
	return a, nil
}

func (s *Store) GetAmount(_ context.Context, id int64) (core.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.amounts[id]
	if !ok {
		return core.Amount{}, storage.ErrNotFound
	}
	return s.withCategoryNameLocked(a), nil
}

func (s *Store) ListAmounts(_ context.Context, categoryID *int64) ([]core.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Amount, 0, len(s.amounts))
	for _, a := range s.amounts {
		if categoryID != nil && a.CategoryID != *categoryID {
			continue
		}
		out = append(out, s.withCategoryNameLocked(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateAmount(_ context.Context, a core.Amount) (core.Amount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.amounts[a.ID]; !ok {
		return core.Amount{}, storage.ErrNotFound
	}
	if _, ok := s.categories[a.CategoryID]; !ok {
		return core.Amount{}, storage.ErrMissingReference
	}
	a.CategoryName = ""
	s.amounts[a.ID] = a
	return s.withCategoryNameLocked(a), nil
}

func (s *Store) DeleteAmount(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.amounts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.amounts, id)
	return nil
}

func (s *Store) SummaryEntries(_ context.Context, start, end core.Date) ([]core.SummaryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.amounts))
	for id := range s.amounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var entries []core.SummaryEntry
	for _, id := range ids {
		a := s.amounts[id]
		c, ok := s.categories[a.CategoryID]
		if !ok || !c.Covers(start, end) {
			continue
		}
		entries = append(entries, core.SummaryEntry{
			CategoryName: c.Name,
			CategoryType: c.CategoryType,
			Amount:       a.Amount,
		})
	}
	return entries, nil
}

func (s *Store) withCategoryNameLocked(a core.Amount) core.Amount {
	if c, ok := s.categories[a.CategoryID]; ok {
		a.CategoryName = c.Name
	}
	return a
}
