// Package report prints a month-bounded spending summary for one user.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"pfa/models"
	"pfa/pkg/money"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// CategoryTotal is one line of the per-category breakdown.
type CategoryTotal struct {
	Category string
	Count    int64
	Minor    int64
}

// Row is a listed transaction.
type Row struct {
	ID          uint
	Date        time.Time
	Type        models.TxnType
	Category    string
	Description string
	AmountMinor int64
}

// Monthly is the computed report for one user and month.
type Monthly struct {
	Email        string
	Month        string
	IncomeMinor  int64
	ExpenseMinor int64
	Categories   []CategoryTotal
	Rows         []Row
}

// MonthRange returns the [start, end) bounds of a YYYY-MM month in UTC.
func MonthRange(month string) (time.Time, time.Time, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM", month)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

// OpenDB connects to the database named by DB_DSN.
func OpenDB() (*gorm.DB, error) {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		return nil, fmt.Errorf("DB_DSN not set in env")
	}
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

// Build loads the report for email; rows are only fetched when list is set.
func Build(gdb *gorm.DB, email, month string, list bool) (*Monthly, error) {
	start, end, err := MonthRange(month)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := gdb.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	m := &Monthly{Email: user.Email, Month: month}

	var totals []struct {
		Type  models.TxnType
		Total int64
	}
	err = gdb.Table("transactions").
		Select("type, COALESCE(SUM(amount_minor),0) AS total").
		Where("user_id = ? AND date >= ? AND date < ?", user.ID, start, end).
		Group("type").Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("totals query: %w", err)
	}
	for _, t := range totals {
		switch t.Type {
		case models.TxnIncome:
			m.IncomeMinor = t.Total
		case models.TxnExpense:
			m.ExpenseMinor = t.Total
		}
	}

	err = gdb.Table("transactions AS t").
		Select("COALESCE(c.name, 'Uncategorized') AS category, COUNT(*) AS count, SUM(t.amount_minor) AS minor").
		Joins("LEFT JOIN categories c ON c.id = t.category_id").
		Where("t.user_id = ? AND t.type = ? AND t.date >= ? AND t.date < ?", user.ID, models.TxnExpense, start, end).
		Group("category").Order("minor DESC").Scan(&m.Categories).Error
	if err != nil {
		return nil, fmt.Errorf("category query: %w", err)
	}

	if list {
		err = gdb.Table("transactions AS t").
			Select("t.id, t.date, t.type, COALESCE(c.name, '') AS category, COALESCE(t.description, '') AS description, t.amount_minor").
			Joins("LEFT JOIN categories c ON c.id = t.category_id").
			Where("t.user_id = ? AND t.date >= ? AND t.date < ?", user.ID, start, end).
			Order("t.date, t.id").Scan(&m.Rows).Error
		if err != nil {
			return nil, fmt.Errorf("fetch rows: %w", err)
		}
	}
	return m, nil
}

// Write renders m as plain text.
func Write(w io.Writer, m *Monthly) {
	fmt.Fprintf(w, "Report for user=%s month=%s (UTC):\n", m.Email, m.Month)
	fmt.Fprintf(w, "  income=%s expense=%s net=%s\n",
		money.FormatMinor(m.IncomeMinor), money.FormatMinor(m.ExpenseMinor), money.FormatMinor(m.IncomeMinor-m.ExpenseMinor))
	if len(m.Categories) > 0 {
		fmt.Fprintln(w, "  expenses by category:")
		for _, c := range m.Categories {
			fmt.Fprintf(w, "    %-20s %4d  %s\n", c.Category, c.Count, money.FormatMinor(c.Minor))
		}
	}
	for _, r := range m.Rows {
		fmt.Fprintf(w, "%d|%s|%s|%s|%s|%s\n", r.ID, r.Date.Format(time.DateOnly), r.Type, r.Category, r.Description, money.FormatMinor(r.AmountMinor))
	}
}
