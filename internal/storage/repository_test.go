package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/core"
)

func newTestRepo(t *testing.T) *SQLRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "budget.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func datePtr(y, m, d int) *core.Date {
	v := core.NewDate(y, m, d)
	return &v
}

func newCategory(name string, typ core.CategoryType, effective, end *core.Date) core.Category {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	return core.Category{
		OwnerID:        uuid.New(),
		Name:           name,
		CategoryType:   typ,
		ItemType:       core.Fixed,
		RecurrencyType: core.Monthly,
		EffectiveDate:  effective,
		EndDate:        end,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func newAmount(categoryID int64, value string) core.Amount {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	return core.Amount{CategoryID: categoryID, Amount: core.MustMoney(value), CreatedAt: now, UpdatedAt: now}
}

func TestSQLRepository_CategoryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	desc := "monthly pay"
	in := newCategory("Salary", core.Income, datePtr(2024, 1, 1), nil)
	in.Description = &desc

	created, err := repo.CreateCategory(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := repo.GetCategory(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Salary", got.Name)
	assert.Equal(t, in.OwnerID, got.OwnerID)
	require.NotNil(t, got.Description)
	assert.Equal(t, "monthly pay", *got.Description)
	require.NotNil(t, got.EffectiveDate)
	assert.Equal(t, "2024-01-01", got.EffectiveDate.String())
	assert.Nil(t, got.EndDate)
	assert.True(t, in.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.GetCategory(ctx, created.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLRepository_UniqueNameIgnoresCase(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.CreateCategory(ctx, newCategory("Food", core.Expense, nil, nil))
	require.NoError(t, err)

	exists, err := repo.CategoryNameExists(ctx, "FOOD", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.CategoryNameExists(ctx, "food", first.ID)
	require.NoError(t, err)
	assert.False(t, exists, "a category never collides with itself")

	_, err = repo.CreateCategory(ctx, newCategory("fOOd", core.Expense, nil, nil))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSQLRepository_UniqueNameFoldsUnicode(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.CreateCategory(ctx, newCategory("École", core.Expense, nil, nil))
	require.NoError(t, err)

	exists, err := repo.CategoryNameExists(ctx, "école", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.CreateCategory(ctx, newCategory("école", core.Expense, nil, nil))
	assert.ErrorIs(t, err, ErrConflict)

	other, err := repo.CreateCategory(ctx, newCategory("Straße", core.Expense, nil, nil))
	require.NoError(t, err)
	other.Name = "ÉCOLE"
	_, err = repo.UpdateCategory(ctx, other)
	assert.ErrorIs(t, err, ErrConflict)

	found, err := repo.ListCategories(ctx, CategoryFilter{NameContains: "COL"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, first.ID, found[0].ID)

	found, err = repo.ListCategories(ctx, CategoryFilter{NameContains: "STRASSE"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Straße", found[0].Name)
}

func TestSQLRepository_ListAndSearch(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, c := range []core.Category{
		newCategory("Salary", core.Income, nil, nil),
		newCategory("Rent", core.Expense, nil, nil),
		newCategory("Car rental", core.Expense, nil, nil),
		newCategory("100%_literal", core.Expense, nil, nil),
	} {
		_, err := repo.CreateCategory(ctx, c)
		require.NoError(t, err)
	}

	all, err := repo.ListCategories(ctx, CategoryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Less(t, all[0].ID, all[1].ID)

	income := core.Income
	onlyIncome, err := repo.ListCategories(ctx, CategoryFilter{Type: &income})
	require.NoError(t, err)
	require.Len(t, onlyIncome, 1)
	assert.Equal(t, "Salary", onlyIncome[0].Name)

	found, err := repo.ListCategories(ctx, CategoryFilter{NameContains: "RENT"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	literal, err := repo.ListCategories(ctx, CategoryFilter{NameContains: "%_"})
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "100%_literal", literal[0].Name)
}

func TestSQLRepository_DeleteCategoryCascades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, newCategory("Rent", core.Expense, nil, nil))
	require.NoError(t, err)
	other, err := repo.CreateCategory(ctx, newCategory("Food", core.Expense, nil, nil))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := repo.CreateAmount(ctx, newAmount(cat.ID, "10"))
		require.NoError(t, err)
	}
	kept, err := repo.CreateAmount(ctx, newAmount(other.ID, "5"))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteCategory(ctx, cat.ID))

	_, err = repo.GetCategory(ctx, cat.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	remaining, err := repo.ListAmounts(ctx, nil)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)

	assert.ErrorIs(t, repo.DeleteCategory(ctx, cat.ID), ErrNotFound)
}

func TestSQLRepository_AmountLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, newCategory("Rent", core.Expense, nil, nil))
	require.NoError(t, err)

	created, err := repo.CreateAmount(ctx, newAmount(cat.ID, "300.5"))
	require.NoError(t, err)

	got, err := repo.GetAmount(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "300.50", got.Amount.String())
	assert.Equal(t, "Rent", got.CategoryName)
	assert.Nil(t, got.Note)

	note := "january"
	got.Note = &note
	got.Amount = core.MustMoney("310")
	updated, err := repo.UpdateAmount(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "310.00", updated.Amount.String())
	require.NotNil(t, updated.Note)
	assert.Equal(t, "january", *updated.Note)

	byCategory, err := repo.ListAmounts(ctx, &cat.ID)
	require.NoError(t, err)
	assert.Len(t, byCategory, 1)

	missing := int64(999)
	none, err := repo.ListAmounts(ctx, &missing)
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, repo.DeleteAmount(ctx, created.ID))
	assert.ErrorIs(t, repo.DeleteAmount(ctx, created.ID), ErrNotFound)
}

func TestSQLRepository_AmountRequiresCategory(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.CreateAmount(context.Background(), newAmount(42, "1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingReference), "got %v", err)
}

func TestSQLRepository_SummaryEntries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	salary, err := repo.CreateCategory(ctx, newCategory("Salary", core.Income, datePtr(2024, 1, 1), nil))
	require.NoError(t, err)
	rent, err := repo.CreateCategory(ctx, newCategory("Rent", core.Expense, datePtr(2023, 6, 1), datePtr(2024, 1, 1)))
	require.NoError(t, err)
	expired, err := repo.CreateCategory(ctx, newCategory("Gym", core.Expense, datePtr(2023, 1, 1), datePtr(2023, 12, 31)))
	require.NoError(t, err)
	undated, err := repo.CreateCategory(ctx, newCategory("Misc", core.Expense, nil, nil))
	require.NoError(t, err)
	future, err := repo.CreateCategory(ctx, newCategory("Bonus", core.Income, datePtr(2024, 2, 1), nil))
	require.NoError(t, err)

	for _, a := range []core.Amount{
		newAmount(salary.ID, "1000.00"),
		newAmount(rent.ID, "300.00"),
		newAmount(expired.ID, "50.00"),
		newAmount(undated.ID, "20.00"),
		newAmount(future.ID, "99.00"),
	} {
		_, err := repo.CreateAmount(ctx, a)
		require.NoError(t, err)
	}

	entries, err := repo.SummaryEntries(ctx, core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	s := core.Summarize(core.NewDate(2024, 1, 1), core.NewDate(2024, 1, 31), entries)
	assert.Equal(t, "1000.00", s.TotalIncome.String())
	assert.Equal(t, "300.00", s.TotalExpenses.String())
	assert.Equal(t, "700.00", s.NetBalance.String())
}

func TestRebind(t *testing.T) {
	pg := &DB{dialect: DialectPostgres}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	lite := &DB{dialect: DialectSQLite}
	assert.Equal(t, "SELECT ?", lite.rebind("SELECT ?"))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
}
