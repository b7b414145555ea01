package core

import "testing"

func TestSummarize(t *testing.T) {
	entries := []SummaryEntry{
		{CategoryName: "Salary", CategoryType: Income, Amount: MustMoney("1000.00")},
		{CategoryName: "Rent", CategoryType: Expense, Amount: MustMoney("300.00")},
	}

	s := Summarize(NewDate(2024, 1, 1), NewDate(2024, 1, 31), entries)

	if s.TotalIncome.String() != "1000.00" {
		t.Errorf("TotalIncome = %s, want 1000.00", s.TotalIncome)
	}
	if s.TotalExpenses.String() != "300.00" {
		t.Errorf("TotalExpenses = %s, want 300.00", s.TotalExpenses)
	}
	if s.NetBalance.String() != "700.00" {
		t.Errorf("NetBalance = %s, want 700.00", s.NetBalance)
	}
	if s.Period != "2024-01-01 to 2024-01-31" {
		t.Errorf("Period = %q", s.Period)
	}
	if got := s.IncomeByCategory["Salary"]; got.String() != "1000.00" {
		t.Errorf("IncomeByCategory[Salary] = %s", got)
	}
	if got := s.ExpenseByCategory["Rent"]; got.String() != "300.00" {
		t.Errorf("ExpenseByCategory[Rent] = %s", got)
	}
}

func TestSummarizeMergesSameName(t *testing.T) {
	entries := []SummaryEntry{
		{CategoryName: "Food", CategoryType: Expense, Amount: MustMoney("10.10")},
		{CategoryName: "Food", CategoryType: Expense, Amount: MustMoney("0.20")},
	}

	s := Summarize(NewDate(2024, 1, 1), NewDate(2024, 1, 31), entries)

	if len(s.ExpenseByCategory) != 1 {
		t.Fatalf("expected one bucket, got %d", len(s.ExpenseByCategory))
	}
	if got := s.ExpenseByCategory["Food"]; got.String() != "10.30" {
		t.Errorf("Food = %s, want 10.30", got)
	}
	if s.NetBalance.String() != "-10.30" {
		t.Errorf("NetBalance = %s, want -10.30", s.NetBalance)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(NewDate(2024, 1, 1), NewDate(2024, 1, 1), nil)
	if !s.TotalIncome.IsZero() || !s.TotalExpenses.IsZero() || !s.NetBalance.IsZero() {
		t.Fatalf("expected zero totals, got %+v", s)
	}
	if s.IncomeByCategory == nil || s.ExpenseByCategory == nil {
		t.Fatal("breakdown maps must be non-nil")
	}
}
