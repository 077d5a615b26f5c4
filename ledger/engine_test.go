package ledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/ledger"
	memstore "github.com/warp/budget-engine/ledger/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func money(s string) ledger.Money {
	return ledger.MustMoney(s)
}

func date(s string) ledger.Date {
	d, err := ledger.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedAccount(t *testing.T, s ledger.Store, name, balance string) ledger.Account {
	t.Helper()
	acct, err := s.CreateAccount(context.Background(), ledger.Account{
		Name:      name,
		Current:   money(balance),
		Projected: money(balance),
	})
	require.NoError(t, err)
	return acct
}

func balanceOf(t *testing.T, s ledger.Store, name string) (current, projected ledger.Money) {
	t.Helper()
	acct, err := s.FindAccountByName(context.Background(), name)
	require.NoError(t, err)
	return acct.Current, acct.Projected
}

func assertBalance(t *testing.T, s ledger.Store, name, want string) {
	t.Helper()
	current, projected := balanceOf(t, s, name)
	assert.True(t, current.Equal(money(want)), "current balance of %s: want %s, got %s", name, want, current)
	assert.True(t, projected.Equal(money(want)), "projected balance of %s: want %s, got %s", name, want, projected)
}

// =============================================================================
// APPLY
// =============================================================================

func TestApply_ExpenseTransaction_DecrementsBothBalances(t *testing.T) {
	// GIVEN: Thomas holds 2500
	// WHEN: A 150 expense is applied
	// THEN: Current and projected both drop to 2350

	ctx := context.Background()
	store := memstore.NewMemory()
	engine := ledger.NewEngine()
	seedAccount(t, store, "Thomas", "2500")

	tx := ledger.Transaction{ID: "tx-1", Account: "Thomas", Amount: money("-150"), Date: date("2025-03-10")}
	require.NoError(t, engine.Apply(ctx, store, tx, ledger.DirApply))

	assertBalance(t, store, "Thomas", "2350")
}

func TestApply_IncomeTransaction_IncrementsBothBalances(t *testing.T) {
	// GIVEN: Thomas holds 2500
	// WHEN: A 2000 income is applied
	// THEN: Both balances rise to 4500

	ctx := context.Background()
	store := memstore.NewMemory()
	engine := ledger.NewEngine()
	seedAccount(t, store, "Thomas", "2500")

	tx := ledger.Transaction{ID: "tx-1", Account: "Thomas", Amount: money("2000"), Date: date("2025-03-01")}
	require.NoError(t, engine.Apply(ctx, store, tx, ledger.DirApply))

	assertBalance(t, store, "Thomas", "4500")
}

func TestApply_Transfer_MovesBothSidesTogether(t *testing.T) {
	// GIVEN: Thomas 2500, Thomas Livret A 5000
	// WHEN: 500 is transferred from Thomas to the Livret
	// THEN: Thomas 2000, Livret 5500

	ctx := context.Background()
	store := memstore.NewMemory()
	engine := ledger.NewEngine()
	seedAccount(t, store, "Thomas", "2500")
	seedAccount(t, store, "Thomas Livret A", "5000")

	tr := ledger.Transfer{ID: "tr-1", FromAccount: "Thomas", ToAccount: "Thomas Livret A",
		Amount: money("500"), Date: date("2025-03-10")}
	require.NoError(t, engine.Apply(ctx, store, tr, ledger.DirApply))

	assertBalance(t, store, "Thomas", "2000")
	assertBalance(t, store, "Thomas Livret A", "5500")
}

func TestApply_Transfer_MissingDestination_NeitherSideChanges(t *testing.T) {
	// GIVEN: Only the source account exists
	// WHEN: A transfer to an unknown destination is applied
	// THEN: The call fails and the source balance is untouched

	ctx := context.Background()
	store := memstore.NewMemory()
	engine := ledger.NewEngine()
	seedAccount(t, store, "Thomas", "2500")

	tr := ledger.Transfer{ID: "tr-1", FromAccount: "Thomas", ToAccount: "Nowhere",
		Amount: money("500"), Date: date("2025-03-10")}
	err := engine.Apply(ctx, store, tr, ledger.DirApply)

	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
	var nfe *ledger.AccountNotFoundError
	assert.ErrorAs(t, err, &nfe)
	assert.Equal(t, "Nowhere", nfe.Name)
	assertBalance(t, store, "Thomas", "2500")
}

func TestApply_UnknownAccount_NoBalanceTouched(t *testing.T) {
	// GIVEN: An empty store
	// WHEN: A transaction against an unknown account is applied
	// THEN: AccountNotFoundError, nothing written

	ctx := context.Background()
	store := memstore.NewMemory()
	engine := ledger.NewEngine()

	tx := ledger.Transaction{ID: "tx-1", Account: "Ghost", Amount: money("-10"), Date: date("2025-01-01")}
	err := engine.Apply(ctx, store, tx, ledger.DirApply)

	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestApply_CreditCreation_AddsPrincipal(t *testing.T) {
	// GIVEN: Thomas holds 2500
	// WHEN: A 10000 credit lands on the account
	// THEN: Both balances rise to 12500

	ctx := context.Background()
	store := memstore.NewMemory()
	engine := ledger.NewEngine()
	seedAccount(t, store, "Thomas", "2500")

	credit := ledger.Credit{ID: "cr-1", Account: "Thomas",
		TotalAmount: money("10000"), RemainingAmount: money("10000")}
	require.NoError(t, engine.Apply(ctx, store, credit, ledger.DirApply))

	assertBalance(t, store, "Thomas", "12500")
}

func TestApply_SavingsGoalCreation_EarmarksInitialAmount(t *testing.T) {
	// GIVEN: Thomas holds 2500
	// WHEN: A goal with 300 already set aside is created
	// THEN: Both balances drop to 2200

	ctx := context.Background()
	store := memstore.NewMemory()
	engine := ledger.NewEngine()
	seedAccount(t, store, "Thomas", "2500")

	goal := ledger.SavingsGoal{ID: "sg-1", Account: "Thomas",
		TargetAmount: money("1000"), CurrentAmount: money("300"), InitialAmount: money("300")}
	require.NoError(t, engine.Apply(ctx, store, goal, ledger.DirApply))

	assertBalance(t, store, "Thomas", "2200")
}

// =============================================================================
// REVERSE - create-then-delete must be an exact no-op
// =============================================================================

func TestReverse_Transaction_RestoresExactBalance(t *testing.T) {
	// GIVEN: An applied expense of 149.99
	// WHEN: The same event is reversed
	// THEN: The balance equals the original exactly

	ctx := context.Background()
	store := memstore.NewMemory()
	engine := ledger.NewEngine()
	seedAccount(t, store, "Thomas", "2500")

	tx := ledger.Transaction{ID: "tx-1", Account: "Thomas", Amount: money("-149.99"), Date: date("2025-03-10")}
	require.NoError(t, engine.Apply(ctx, store, tx, ledger.DirApply))
	require.NoError(t, engine.Apply(ctx, store, tx, ledger.DirReverse))

	assertBalance(t, store, "Thomas", "2500")
}

func TestReverse_Transfer_RestoresBothSides(t *testing.T) {
	// GIVEN: An applied 500 transfer
	// WHEN: Reversed
	// THEN: Both accounts are back at their starting balances

	ctx := context.Background()
	store := memstore.NewMemory()
	engine := ledger.NewEngine()
	seedAccount(t, store, "Thomas", "2500")
	seedAccount(t, store, "Compte Joint", "3200")

	tr := ledger.Transfer{ID: "tr-1", FromAccount: "Thomas", ToAccount: "Compte Joint",
		Amount: money("500"), Date: date("2025-03-10")}
	require.NoError(t, engine.Apply(ctx, store, tr, ledger.DirApply))
	require.NoError(t, engine.Apply(ctx, store, tr, ledger.DirReverse))

	assertBalance(t, store, "Thomas", "2500")
	assertBalance(t, store, "Compte Joint", "3200")
}

func TestReverse_Credit_UsesOriginalPrincipal_NotRemainingAmount(t *testing.T) {
	// GIVEN: A 10000 credit applied, then paid down to 4000 remaining
	// WHEN: The credit is reversed
	// THEN: The full original 10000 is subtracted, not the drifted 4000

	ctx := context.Background()
	store := memstore.NewMemory()
	engine := ledger.NewEngine()
	seedAccount(t, store, "Thomas", "2500")

	credit := ledger.Credit{ID: "cr-1", Account: "Thomas",
		TotalAmount: money("10000"), RemainingAmount: money("10000")}
	require.NoError(t, engine.Apply(ctx, store, credit, ledger.DirApply))

	// Payments drift the payoff schedule; they never touch balances here.
	credit.RemainingAmount = money("4000")

	require.NoError(t, engine.Apply(ctx, store, credit, ledger.DirReverse))
	assertBalance(t, store, "Thomas", "2500")
}

func TestReverse_SavingsGoal_UsesInitialAmount_NotCurrentAmount(t *testing.T) {
	// GIVEN: A goal created with 300 earmarked, later grown to 800 by
	//        contributions
	// WHEN: The goal is reversed
	// THEN: Only the creation-time 300 comes back; the contributions'
	//        transfers own their reversal

	ctx := context.Background()
	store := memstore.NewMemory()
	engine := ledger.NewEngine()
	seedAccount(t, store, "Thomas", "2500")

	goal := ledger.SavingsGoal{ID: "sg-1", Account: "Thomas",
		TargetAmount: money("1000"), CurrentAmount: money("300"), InitialAmount: money("300")}
	require.NoError(t, engine.Apply(ctx, store, goal, ledger.DirApply))
	assertBalance(t, store, "Thomas", "2200")

	goal.CurrentAmount = money("800")

	require.NoError(t, engine.Apply(ctx, store, goal, ledger.DirReverse))
	assertBalance(t, store, "Thomas", "2500")
}

// =============================================================================
// PARTIAL REVERSAL - the deletion escape hatch
// =============================================================================

func TestApplyPartial_MissingAccount_SkipsAndReports(t *testing.T) {
	// GIVEN: A transfer whose destination account has since been removed
	// WHEN: The transfer is partially reversed
	// THEN: The surviving side is reversed, the missing name is reported

	ctx := context.Background()
	store := memstore.NewMemory()
	engine := ledger.NewEngine()
	seedAccount(t, store, "Thomas", "2500")
	dest := seedAccount(t, store, "Compte Joint", "3200")

	tr := ledger.Transfer{ID: "tr-1", FromAccount: "Thomas", ToAccount: "Compte Joint",
		Amount: money("500"), Date: date("2025-03-10")}
	require.NoError(t, engine.Apply(ctx, store, tr, ledger.DirApply))
	require.NoError(t, store.DeleteAccount(ctx, dest.ID))

	missing, err := engine.ApplyPartial(ctx, store, tr, ledger.DirReverse)
	require.NoError(t, err)

	assert.Equal(t, []string{"Compte Joint"}, missing)
	assertBalance(t, store, "Thomas", "2500")
}

func TestApplyPartial_AllAccountsPresent_NoMissing(t *testing.T) {
	// GIVEN: Both accounts still exist
	// WHEN: Partially reversing
	// THEN: Behaves exactly like a full reversal

	ctx := context.Background()
	store := memstore.NewMemory()
	engine := ledger.NewEngine()
	seedAccount(t, store, "Thomas", "2500")
	seedAccount(t, store, "Compte Joint", "3200")

	tr := ledger.Transfer{ID: "tr-1", FromAccount: "Thomas", ToAccount: "Compte Joint",
		Amount: money("250"), Date: date("2025-03-10")}
	require.NoError(t, engine.Apply(ctx, store, tr, ledger.DirApply))

	missing, err := engine.ApplyPartial(ctx, store, tr, ledger.DirReverse)
	require.NoError(t, err)

	assert.Empty(t, missing)
	assertBalance(t, store, "Thomas", "2500")
	assertBalance(t, store, "Compte Joint", "3200")
}

// =============================================================================
// ALGEBRAIC PROPERTIES
// =============================================================================

func TestReverse_OrderIndependent_AnyDeletionOrderRestoresStart(t *testing.T) {
	// GIVEN: An expense, a transfer and a credit applied in sequence
	// WHEN: They are reversed in a different order than they were applied
	// THEN: Balances equal the pre-apply state; deltas commute

	ctx := context.Background()
	store := memstore.NewMemory()
	engine := ledger.NewEngine()
	seedAccount(t, store, "Thomas", "2500")
	seedAccount(t, store, "Compte Joint", "3200")

	tx := ledger.Transaction{ID: "tx-1", Account: "Thomas", Amount: money("-150"), Date: date("2025-03-10")}
	tr := ledger.Transfer{ID: "tr-1", FromAccount: "Thomas", ToAccount: "Compte Joint",
		Amount: money("500"), Date: date("2025-03-11")}
	credit := ledger.Credit{ID: "cr-1", Account: "Compte Joint",
		TotalAmount: money("10000"), RemainingAmount: money("10000")}

	require.NoError(t, engine.Apply(ctx, store, tx, ledger.DirApply))
	require.NoError(t, engine.Apply(ctx, store, tr, ledger.DirApply))
	require.NoError(t, engine.Apply(ctx, store, credit, ledger.DirApply))

	// Reverse in neither creation nor strict LIFO order.
	require.NoError(t, engine.Apply(ctx, store, tr, ledger.DirReverse))
	require.NoError(t, engine.Apply(ctx, store, credit, ledger.DirReverse))
	require.NoError(t, engine.Apply(ctx, store, tx, ledger.DirReverse))

	assertBalance(t, store, "Thomas", "2500")
	assertBalance(t, store, "Compte Joint", "3200")
}

func TestApply_BalanceMayGoNegative_NoOverdraftGuard(t *testing.T) {
	// GIVEN: Thomas holds only 100
	// WHEN: A 250 expense and then a 200 outgoing transfer are applied
	// THEN: Both succeed and the balance is carried below zero

	ctx := context.Background()
	store := memstore.NewMemory()
	engine := ledger.NewEngine()
	seedAccount(t, store, "Thomas", "100")
	seedAccount(t, store, "Compte Joint", "0")

	tx := ledger.Transaction{ID: "tx-1", Account: "Thomas", Amount: money("-250"), Date: date("2025-03-10")}
	require.NoError(t, engine.Apply(ctx, store, tx, ledger.DirApply))
	assertBalance(t, store, "Thomas", "-150")

	tr := ledger.Transfer{ID: "tr-1", FromAccount: "Thomas", ToAccount: "Compte Joint",
		Amount: money("200"), Date: date("2025-03-11")}
	require.NoError(t, engine.Apply(ctx, store, tr, ledger.DirApply))

	assertBalance(t, store, "Thomas", "-350")
	assertBalance(t, store, "Compte Joint", "200")

	require.NoError(t, engine.Apply(ctx, store, tr, ledger.DirReverse))
	require.NoError(t, engine.Apply(ctx, store, tx, ledger.DirReverse))
	assertBalance(t, store, "Thomas", "100")
}

// =============================================================================
// CONCURRENCY
// =============================================================================

func TestApply_ConcurrentOpposingTransfers_NoDeadlock(t *testing.T) {
	// GIVEN: Two accounts
	// WHEN: Many transfers run concurrently in both directions
	// THEN: No deadlock, and the combined balance effect is exact

	ctx := context.Background()
	store := memstore.NewMemory()
	engine := ledger.NewEngine()
	seedAccount(t, store, "A", "10000")
	seedAccount(t, store, "B", "10000")

	const rounds = 50
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			tr := ledger.Transfer{ID: "ab", FromAccount: "A", ToAccount: "B",
				Amount: money("7"), Date: date("2025-01-01")}
			if err := engine.Apply(ctx, store, tr, ledger.DirApply); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			tr := ledger.Transfer{ID: "ba", FromAccount: "B", ToAccount: "A",
				Amount: money("3"), Date: date("2025-01-01")}
			if err := engine.Apply(ctx, store, tr, ledger.DirApply); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	wg.Wait()

	// A: 10000 - 50*7 + 50*3 = 9800; B mirrors it.
	assertBalance(t, store, "A", "9800")
	assertBalance(t, store, "B", "10200")
}

func TestApply_ConcurrentSameAccount_NoLostUpdates(t *testing.T) {
	// GIVEN: One account hammered by concurrent expenses
	// WHEN: 100 expenses of 1 run in parallel
	// THEN: Exactly 100 is subtracted

	ctx := context.Background()
	store := memstore.NewMemory()
	engine := ledger.NewEngine()
	seedAccount(t, store, "Thomas", "2500")

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx := ledger.Transaction{ID: "tx", Account: "Thomas", Amount: money("-1"), Date: date("2025-01-01")}
			if err := engine.Apply(ctx, store, tx, ledger.DirApply); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	assertBalance(t, store, "Thomas", "2400")
}
