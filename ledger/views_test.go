package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/ledger"
)

func expense(category, amount, day string) ledger.Transaction {
	return ledger.Transaction{Category: category, Amount: money(amount).Neg(), Date: date(day)}
}

// =============================================================================
// CATEGORY BREAKDOWN
// =============================================================================

func TestCategoryBreakdown_ExpensesOnly_IncomeIgnored(t *testing.T) {
	// GIVEN: A mix of expenses and income
	// WHEN: The breakdown is computed
	// THEN: Income rows never appear and never dilute the percentages

	txs := []ledger.Transaction{
		expense("Courses", "100", "2025-03-01"),
		expense("Loisirs", "50", "2025-03-02"),
		{Category: "Salaire", Amount: money("3000"), Date: date("2025-03-01")},
	}

	rows := ledger.CategoryBreakdown(txs, 0)
	require.Len(t, rows, 2)
	assert.Equal(t, "Courses", rows[0].Category)
	assert.True(t, rows[0].Total.Equal(money("100")))
	assert.Equal(t, "Loisirs", rows[1].Category)
}

func TestCategoryBreakdown_SumsMagnitudesAndCounts(t *testing.T) {
	txs := []ledger.Transaction{
		expense("Courses", "60", "2025-03-01"),
		expense("Courses", "40", "2025-03-08"),
		expense("Loisirs", "25", "2025-03-02"),
	}

	rows := ledger.CategoryBreakdown(txs, 0)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Total.Equal(money("100")))
	assert.Equal(t, 2, rows[0].Count)
	assert.True(t, rows[0].Percent.Equal(decimal.NewFromInt(80)), "percent: %s", rows[0].Percent)
	assert.True(t, rows[1].Percent.Equal(decimal.NewFromInt(20)), "percent: %s", rows[1].Percent)
}

func TestCategoryBreakdown_TopN_KeepsLargest(t *testing.T) {
	txs := []ledger.Transaction{
		expense("A", "10", "2025-03-01"),
		expense("B", "30", "2025-03-01"),
		expense("C", "20", "2025-03-01"),
	}

	rows := ledger.CategoryBreakdown(txs, 2)
	require.Len(t, rows, 2)
	assert.Equal(t, "B", rows[0].Category)
	assert.Equal(t, "C", rows[1].Category)
}

func TestCategoryBreakdown_EqualTotals_AlphabeticalTiebreak(t *testing.T) {
	txs := []ledger.Transaction{
		expense("Zoo", "50", "2025-03-01"),
		expense("Art", "50", "2025-03-01"),
	}

	rows := ledger.CategoryBreakdown(txs, 0)
	require.Len(t, rows, 2)
	assert.Equal(t, "Art", rows[0].Category)
	assert.Equal(t, "Zoo", rows[1].Category)
}

func TestCategoryBreakdown_NoExpenses_Empty(t *testing.T) {
	txs := []ledger.Transaction{
		{Category: "Salaire", Amount: money("3000"), Date: date("2025-03-01")},
	}
	assert.Empty(t, ledger.CategoryBreakdown(txs, 5))
}

// =============================================================================
// NET WORTH
// =============================================================================

func TestNetWorth_SumsAcrossAccounts(t *testing.T) {
	accounts := []ledger.Account{
		{Name: "Thomas", Current: money("2500"), Projected: money("2400")},
		{Name: "Livret", Current: money("5000"), Projected: money("5000")},
		{Name: "Crédit", Current: money("-800"), Projected: money("-800")},
	}

	current, projected := ledger.NetWorth(accounts)
	assert.True(t, current.Equal(money("6700")), "current: %s", current)
	assert.True(t, projected.Equal(money("6600")), "projected: %s", projected)
}

func TestNetWorth_NoAccounts_Zero(t *testing.T) {
	current, projected := ledger.NetWorth(nil)
	assert.True(t, current.IsZero())
	assert.True(t, projected.IsZero())
}

// =============================================================================
// PROGRESS
// =============================================================================

func TestCreditProgress_PaidShare(t *testing.T) {
	credit := ledger.Credit{
		TotalAmount:     money("10000"),
		RemainingAmount: money("7500"),
	}
	assert.True(t, ledger.CreditProgress(credit).Equal(decimal.NewFromInt(25)))
}

func TestSavingsProgress_OverSavedExceedsHundred(t *testing.T) {
	// GIVEN: A goal funded past its target
	// WHEN: Progress is computed
	// THEN: The raw value exceeds 100; only display clamps it

	goal := ledger.SavingsGoal{
		TargetAmount:  money("1000"),
		CurrentAmount: money("1200"),
	}
	progress := ledger.SavingsProgress(goal)
	assert.True(t, progress.Equal(decimal.NewFromInt(120)), "progress: %s", progress)
	assert.True(t, ledger.ClampPercent(progress).Equal(decimal.NewFromInt(100)))
}

func TestClampPercent_Bounds(t *testing.T) {
	assert.True(t, ledger.ClampPercent(decimal.NewFromInt(-5)).IsZero())
	assert.True(t, ledger.ClampPercent(decimal.NewFromInt(42)).Equal(decimal.NewFromInt(42)))
	assert.True(t, ledger.ClampPercent(decimal.NewFromInt(250)).Equal(decimal.NewFromInt(100)))
}

// =============================================================================
// DATES
// =============================================================================

func TestDaysRemaining_OverdueGoesNegative(t *testing.T) {
	today := date("2025-06-15")
	assert.Equal(t, 10, ledger.DaysRemaining(date("2025-06-25"), today))
	assert.Equal(t, -5, ledger.DaysRemaining(date("2025-06-10"), today))
	assert.Equal(t, 0, ledger.DaysRemaining(today, today))
}

// =============================================================================
// SORTING
// =============================================================================

func TestSortEventsRecentFirst_DateDescending(t *testing.T) {
	txs := []ledger.Transaction{
		expense("A", "10", "2025-03-01"),
		expense("B", "10", "2025-03-15"),
		expense("C", "10", "2025-03-08"),
	}

	ledger.SortEventsRecentFirst(txs)

	assert.Equal(t, "B", txs[0].Category)
	assert.Equal(t, "C", txs[1].Category)
	assert.Equal(t, "A", txs[2].Category)
}
