/*
views.go - Derived, read-only summaries

PURPOSE:
  Aggregations consumed by presentation layers. No mutation, safe to
  recompute at any time from current store contents. Progress ratios are
  reported un-clamped; display clamping is the caller's last step, never
  an input to further computation.
*/
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CategorySummary is one row of the expense category breakdown.
type CategorySummary struct {
	Category string
	Total    Money
	Count    int
	Percent  decimal.Decimal // share of total expenses
}

// CategoryBreakdown groups expense transactions by category, sums
// magnitudes, sorts descending, and keeps the top n (all when n <= 0).
func CategoryBreakdown(txs []Transaction, n int) []CategorySummary {
	totals := make(map[string]*CategorySummary)
	totalExpenses := Zero()

	for _, t := range txs {
		if t.Kind() != KindExpense {
			continue
		}
		mag := t.Magnitude()
		totalExpenses = totalExpenses.Add(mag)
		row, ok := totals[t.Category]
		if !ok {
			row = &CategorySummary{Category: t.Category}
			totals[t.Category] = row
		}
		row.Total = row.Total.Add(mag)
		row.Count++
	}

	rows := make([]CategorySummary, 0, len(totals))
	for _, row := range totals {
		if !totalExpenses.IsZero() {
			row.Percent = row.Total.Value.Div(totalExpenses.Value).Mul(hundred)
		}
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Total.Equal(rows[j].Total) {
			return rows[i].Total.GreaterThan(rows[j].Total)
		}
		return rows[i].Category < rows[j].Category
	})

	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// NetWorth sums current and projected balances across all accounts.
func NetWorth(accounts []Account) (current, projected Money) {
	current, projected = Zero(), Zero()
	for _, a := range accounts {
		current = current.Add(a.Current)
		projected = projected.Add(a.Projected)
	}
	return current, projected
}

// CreditProgress returns paid/total as a percentage, un-clamped.
func CreditProgress(c Credit) decimal.Decimal {
	if !c.TotalAmount.IsPositive() {
		return decimal.Zero
	}
	return c.Paid().Value.Div(c.TotalAmount.Value).Mul(hundred)
}

// SavingsProgress returns current/target as a percentage, un-clamped.
// Over-saved goals exceed 100.
func SavingsProgress(g SavingsGoal) decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	return g.CurrentAmount.Value.Div(g.TargetAmount.Value).Mul(hundred)
}

// ClampPercent bounds p to [0, 100] for progress-bar display. Never feed
// the clamped value back into computation.
func ClampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// DaysRemaining returns whole days from today until target. Negative means
// overdue, and stays negative: "days late" is a displayed fact.
func DaysRemaining(target, today Date) int {
	return DaysBetween(today, target)
}

// SortEventsRecentFirst orders transactions by date descending, newest
// creation first on ties. List order from the store is unspecified, so
// callers wanting "most recent first" sort explicitly.
func SortEventsRecentFirst(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date)
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
}

// SortTransfersRecentFirst orders transfers by date descending.
func SortTransfersRecentFirst(ts []Transfer) {
	sort.SliceStable(ts, func(i, j int) bool {
		if !ts[i].Date.Equal(ts[j].Date) {
			return ts[i].Date.After(ts[j].Date)
		}
		return ts[i].CreatedAt.After(ts[j].CreatedAt)
	})
}
