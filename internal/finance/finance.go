package finance

import (
	"database/sql"
	"fmt"
	"time"
)

// DefaultCurrency is the currency all expenses are recorded in.
const DefaultCurrency = "UAH"

// CategoryOther is the fallback expense category.
const CategoryOther = "Прочее"

// Categories returns the known expense categories.
func Categories() []string {
	return []string{
		"Продукты",
		"Транспорт",
		"Развлечения",
		"Здоровье",
		"Одежда",
		"Коммунальные услуги",
		CategoryOther,
	}
}

// Expense is one recorded expense.
type Expense struct {
	ID          int64
	Amount      float64
	Description string
	Category    string
	Currency    string
	CreatedAt   time.Time
}

// Report summarizes spending over a period.
type Report struct {
	Period        string
	TotalExpenses float64
	ByCategory    map[string]float64
	DailyAverage  float64
	Currency      string
}

// Statistics is the quick spending overview.
type Statistics struct {
	Total       float64
	ThisMonth   float64
	ThisWeek    float64
	Today       float64
	TopCategory string
}

// Service manages expenses in SQLite.
type Service struct {
	DB  *sql.DB
	Now func() time.Time
}

// NewService creates a finance service over an initialized database.
func NewService(database *sql.DB) *Service {
	return &Service{DB: database, Now: time.Now}
}

// AddExpense records an expense. An empty category falls back to
// CategoryOther, as does an unknown one.
func (s *Service) AddExpense(amount float64, description, category string) (Expense, error) {
	if !knownCategory(category) {
		category = CategoryOther
	}
	now := s.Now()
	res, err := s.DB.Exec(
		`INSERT INTO expenses (amount, description, category, currency, created_at) VALUES (?, ?, ?, ?, ?)`,
		amount, description, category, DefaultCurrency, now.Unix(),
	)
	if err != nil {
		return Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Expense{}, fmt.Errorf("get expense id: %w", err)
	}
	return Expense{
		ID:          id,
		Amount:      amount,
		Description: description,
		Category:    category,
		Currency:    DefaultCurrency,
		CreatedAt:   now,
	}, nil
}

// Expenses returns expenses recorded at or after the given time,
// oldest first.
func (s *Service) Expenses(since time.Time) ([]Expense, error) {
	rows, err := s.DB.Query(
		`SELECT id, amount, description, category, currency, created_at FROM expenses WHERE created_at >= ? ORDER BY id`,
		since.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		var e Expense
		var created int64
		if err := rows.Scan(&e.ID, &e.Amount, &e.Description, &e.Category, &e.Currency, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(created, 0)
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// TotalSince sums expense amounts recorded at or after the given time.
func (s *Service) TotalSince(since time.Time) (float64, error) {
	var total float64
	err := s.DB.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE created_at >= ?`,
		since.Unix(),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum expenses: %w", err)
	}
	return total, nil
}

// GenerateReport builds a spending report for "week" or "month"; any
// other period is treated as a month.
func (s *Service) GenerateReport(period string) (Report, error) {
	days := 30
	if period == "week" {
		days = 7
	} else {
		period = "month"
	}
	since := s.Now().AddDate(0, 0, -days)

	expenses, err := s.Expenses(since)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Period:     period,
		ByCategory: make(map[string]float64),
		Currency:   DefaultCurrency,
	}
	for _, e := range expenses {
		report.TotalExpenses += e.Amount
		report.ByCategory[e.Category] += e.Amount
	}
	report.DailyAverage = report.TotalExpenses / float64(days)
	return report, nil
}

// GetStatistics returns totals for today, this week, this month, and
// overall, plus the category with the highest overall spend.
func (s *Service) GetStatistics() (Statistics, error) {
	now := s.Now()
	var stats Statistics
	var err error

	if stats.Total, err = s.TotalSince(time.Unix(0, 0)); err != nil {
		return Statistics{}, err
	}
	if stats.ThisMonth, err = s.TotalSince(now.AddDate(0, 0, -30)); err != nil {
		return Statistics{}, err
	}
	if stats.ThisWeek, err = s.TotalSince(now.AddDate(0, 0, -7)); err != nil {
		return Statistics{}, err
	}
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if stats.Today, err = s.TotalSince(dayStart); err != nil {
		return Statistics{}, err
	}

	stats.TopCategory = CategoryOther
	err = s.DB.QueryRow(
		`SELECT category FROM expenses GROUP BY category ORDER BY SUM(amount) DESC LIMIT 1`,
	).Scan(&stats.TopCategory)
	if err != nil && err != sql.ErrNoRows {
		return Statistics{}, fmt.Errorf("top category: %w", err)
	}
	return stats, nil
}

func knownCategory(category string) bool {
	for _, c := range Categories() {
		if c == category {
			return true
		}
	}
	return false
}
