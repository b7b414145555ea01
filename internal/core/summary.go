package core

// SummaryEntry is one amount joined with the category fields the summary needs.
type SummaryEntry struct {
	CategoryName string
	CategoryType CategoryType
	Amount       Money
}

// Summary aggregates the amounts of every category active in a period.
type Summary struct {
	TotalIncome       Money
	TotalExpenses     Money
	NetBalance        Money
	IncomeByCategory  map[string]Money
	ExpenseByCategory map[string]Money
	Period            string
}

// Summarize totals entries by type and by category name.
// Entries sharing a category name are merged into one bucket.
func Summarize(start, end Date, entries []SummaryEntry) Summary {
	s := Summary{
		TotalIncome:       ZeroMoney(),
		TotalExpenses:     ZeroMoney(),
		IncomeByCategory:  make(map[string]Money),
		ExpenseByCategory: make(map[string]Money),
		Period:            start.String() + " to " + end.String(),
	}
	for _, e := range entries {
		switch e.CategoryType {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(e.Amount)
			s.IncomeByCategory[e.CategoryName] = addTo(s.IncomeByCategory, e.CategoryName, e.Amount)
		case Expense:
			s.TotalExpenses = s.TotalExpenses.Add(e.Amount)
			s.ExpenseByCategory[e.CategoryName] = addTo(s.ExpenseByCategory, e.CategoryName, e.Amount)
		}
	}
	s.NetBalance = s.TotalIncome.Sub(s.TotalExpenses)
	return s
}

func addTo(m map[string]Money, key string, v Money) Money {
	cur, ok := m[key]
	if !ok {
		return v
	}
	return cur.Add(v)
}
