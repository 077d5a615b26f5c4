package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/ledger"
	"github.com/warp/budget-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

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

// =============================================================================
// ACCOUNTS
// =============================================================================

func TestStore_AccountRoundTrip(t *testing.T) {
	// GIVEN: A fresh database
	// WHEN: An account is created and read back by id and by name
	// THEN: Balances survive as exact decimals

	ctx := context.Background()
	store := newTestStore(t)

	created, err := store.CreateAccount(ctx, ledger.Account{
		Name: "Thomas", Current: money("2500.45"), Projected: money("2350.10"), Type: "Compte courant",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	byID, err := store.GetAccount(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, byID.Current.Equal(money("2500.45")), "current: %s", byID.Current)
	assert.True(t, byID.Projected.Equal(money("2350.10")))

	byName, err := store.FindAccountByName(ctx, "Thomas")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)
}

func TestStore_DuplicateAccountName_Rejected(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.CreateAccount(ctx, ledger.Account{Name: "Thomas", Current: money("0"), Projected: money("0")})
	require.NoError(t, err)

	_, err = store.CreateAccount(ctx, ledger.Account{Name: "Thomas", Current: money("0"), Projected: money("0")})
	assert.ErrorIs(t, err, ledger.ErrDuplicateAccountName)
}

func TestStore_FindAccountByName_Missing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.FindAccountByName(context.Background(), "Nobody")
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)

	var nfe *ledger.AccountNotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, "Nobody", nfe.Name)
}

func TestStore_UpdateAccountBalance(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.CreateAccount(ctx, ledger.Account{Name: "Thomas", Current: money("2500"), Projected: money("2500")})
	require.NoError(t, err)

	require.NoError(t, store.UpdateAccountBalance(ctx, "Thomas", money("2350"), money("2100")))

	acct, err := store.FindAccountByName(ctx, "Thomas")
	require.NoError(t, err)
	assert.True(t, acct.Current.Equal(money("2350")))
	assert.True(t, acct.Projected.Equal(money("2100")))
}

func TestStore_DeleteMissingRecords_NotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	assert.ErrorIs(t, store.DeleteAccount(ctx, "nope"), ledger.ErrNotFound)
	assert.ErrorIs(t, store.DeleteTransaction(ctx, "nope"), ledger.ErrNotFound)
	assert.ErrorIs(t, store.DeleteTransfer(ctx, "nope"), ledger.ErrNotFound)
	assert.ErrorIs(t, store.DeleteCredit(ctx, "nope"), ledger.ErrNotFound)
	assert.ErrorIs(t, store.DeleteSavingsGoal(ctx, "nope"), ledger.ErrNotFound)
}

// =============================================================================
// EVENT RECORDS
// =============================================================================

func TestStore_TransactionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	created, err := store.CreateTransaction(ctx, ledger.Transaction{
		Account: "Thomas", Amount: money("-149.99"), Category: "Courses",
		Description: "supermarché", Date: date("2025-03-10"), IsFixed: true,
	})
	require.NoError(t, err)

	got, err := store.GetTransaction(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(money("-149.99")), "amount: %s", got.Amount)
	assert.Equal(t, "2025-03-10", got.Date.String())
	assert.Equal(t, "supermarché", got.Description)
	assert.True(t, got.IsFixed)
}

func TestStore_CreditRoundTrip_ScheduleFieldsSurvive(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	created, err := store.CreateCredit(ctx, ledger.Credit{
		Name: "Voiture", Account: "Thomas",
		TotalAmount: money("10000"), MonthlyPayment: money("300"),
		RemainingMonths: 34, InterestRate: money("3.5"),
		StartDate: date("2025-01-15"), EndDate: date("2027-11-15"),
		RemainingAmount: money("10000"),
	})
	require.NoError(t, err)

	got, err := store.GetCredit(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalAmount.Equal(money("10000")))
	assert.Equal(t, 34, got.RemainingMonths)
	assert.True(t, got.InterestRate.Equal(money("3.5")))
	assert.Equal(t, "2027-11-15", got.EndDate.String())

	got.RemainingAmount = money("9700")
	got.RemainingMonths = 33
	require.NoError(t, store.UpdateCredit(ctx, got))

	again, err := store.GetCredit(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, again.RemainingAmount.Equal(money("9700")))
	// The original principal never drifts with the schedule.
	assert.True(t, again.TotalAmount.Equal(money("10000")))
}

func TestStore_SavingsGoalRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	created, err := store.CreateSavingsGoal(ctx, ledger.SavingsGoal{
		Name: "Vacances", Account: "Thomas Livret A",
		TargetAmount: money("2000"), CurrentAmount: money("300"),
		InitialAmount: money("300"), TargetDate: date("2026-07-01"),
	})
	require.NoError(t, err)

	created.CurrentAmount = money("500")
	require.NoError(t, store.UpdateSavingsGoal(ctx, created))

	got, err := store.GetSavingsGoal(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentAmount.Equal(money("500")))
	assert.True(t, got.InitialAmount.Equal(money("300")))
}

// =============================================================================
// TRANSACTIONS (SQL)
// =============================================================================

func TestStore_WithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: An account created inside a transaction that then fails
	// WHEN: The callback returns an error
	// THEN: Nothing from the callback persists

	ctx := context.Background()
	store := newTestStore(t)
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(tx ledger.Store) error {
		if _, err := tx.CreateAccount(ctx, ledger.Account{
			Name: "Thomas", Current: money("2500"), Projected: money("2500"),
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	accounts, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestStore_WithTx_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.WithTx(ctx, func(tx ledger.Store) error {
		if _, err := tx.CreateAccount(ctx, ledger.Account{
			Name: "Thomas", Current: money("2500"), Projected: money("2500"),
		}); err != nil {
			return err
		}
		_, err := tx.CreateTransaction(ctx, ledger.Transaction{
			Account: "Thomas", Amount: money("-50"), Category: "Courses", Date: date("2025-03-10"),
		})
		return err
	})
	require.NoError(t, err)

	accounts, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	txs, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

// =============================================================================
// REPLACE ALL
// =============================================================================

func TestStore_ReplaceAll_NilCollectionLeftUntouched(t *testing.T) {
	// GIVEN: Existing accounts and transactions
	// WHEN: A snapshot with only accounts set is loaded
	// THEN: Accounts are replaced, transactions survive

	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.CreateAccount(ctx, ledger.Account{Name: "Old", Current: money("1"), Projected: money("1")})
	require.NoError(t, err)
	_, err = store.CreateTransaction(ctx, ledger.Transaction{
		Account: "Old", Amount: money("-1"), Category: "X", Date: date("2025-01-01"),
	})
	require.NoError(t, err)

	err = store.ReplaceAll(ctx, ledger.Snapshot{
		Accounts: []ledger.Account{{Name: "New", Current: money("9"), Projected: money("9")}},
	})
	require.NoError(t, err)

	accounts, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "New", accounts[0].Name)

	txs, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestStore_ReplaceAll_EmptyCollectionClears(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.CreateTransaction(ctx, ledger.Transaction{
		Account: "Old", Amount: money("-1"), Category: "X", Date: date("2025-01-01"),
	})
	require.NoError(t, err)

	err = store.ReplaceAll(ctx, ledger.Snapshot{Transactions: []ledger.Transaction{}})
	require.NoError(t, err)

	txs, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)
}
