/*
Package sqlite provides the durable SQLite-backed ledger.TxStore.

PURPOSE:
  Persists accounts and the four event collections (transactions, transfers,
  credits, savings goals). In production, the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

DECIMAL STORAGE:
  All money columns are TEXT holding exact decimal strings. Scanning goes
  through ledger.ParseMoney so values round-trip without float drift.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. WithTx holds the write lock for the
  whole callback, so a record insert and its balance updates commit or roll
  back together.

MIGRATION:
  Schema is managed by golang-migrate with versioned migrations embedded in
  the binary (see migrate.go). New() migrates on open.

USAGE:
  store, err := sqlite.New("./data/budget.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - ledger/store.go: Interface definitions
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/budget-engine/ledger"
)

// Store implements ledger.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so the row helpers below
// serve the plain store and the transactional view alike.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func (s *Store) CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertAccount(ctx, s.db, a)
}

func insertAccount(ctx context.Context, db dbtx, a ledger.Account) (ledger.Account, error) {
	stampRecord(&a.ID, &a.CreatedAt)

	_, err := db.ExecContext(ctx,
		`INSERT INTO accounts (id, name, current, projected, type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Current.String(), a.Projected.String(), a.Type,
		a.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ledger.Account{}, ledger.ErrDuplicateAccountName
		}
		return ledger.Account{}, fmt.Errorf("failed to insert account: %w", err)
	}
	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listAccounts(ctx, s.db)
}

func listAccounts(ctx context.Context, db dbtx) ([]ledger.Account, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, name, current, projected, type, created_at FROM accounts ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *Store) GetAccount(ctx context.Context, id string) (ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getAccount(ctx, s.db, id)
}

func getAccount(ctx context.Context, db dbtx, id string) (ledger.Account, error) {
	row := db.QueryRowContext(ctx,
		"SELECT id, name, current, projected, type, created_at FROM accounts WHERE id = ?", id)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return ledger.Account{}, ledger.ErrNotFound
	}
	return a, err
}

func (s *Store) FindAccountByName(ctx context.Context, name string) (ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findAccountByName(ctx, s.db, name)
}

func findAccountByName(ctx context.Context, db dbtx, name string) (ledger.Account, error) {
	row := db.QueryRowContext(ctx,
		"SELECT id, name, current, projected, type, created_at FROM accounts WHERE name = ?", name)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return ledger.Account{}, &ledger.AccountNotFoundError{Name: name}
	}
	return a, err
}

func (s *Store) UpdateAccountBalance(ctx context.Context, name string, current, projected ledger.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateAccountBalance(ctx, s.db, name, current, projected)
}

func updateAccountBalance(ctx context.Context, db dbtx, name string, current, projected ledger.Money) error {
	res, err := db.ExecContext(ctx,
		"UPDATE accounts SET current = ?, projected = ? WHERE name = ?",
		current.String(), projected.String(), name)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ledger.AccountNotFoundError{Name: name}
	}
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteByID(ctx, s.db, "accounts", id)
}

func scanAccount(row rowScanner) (ledger.Account, error) {
	var a ledger.Account
	var current, projected, createdAt string

	if err := row.Scan(&a.ID, &a.Name, &current, &projected, &a.Type, &createdAt); err != nil {
		return a, err
	}

	var err error
	if a.Current, err = ledger.ParseMoney(current); err != nil {
		return a, fmt.Errorf("failed to parse account balance: %w", err)
	}
	if a.Projected, err = ledger.ParseMoney(projected); err != nil {
		return a, fmt.Errorf("failed to parse account balance: %w", err)
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return a, nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func (s *Store) CreateTransaction(ctx context.Context, t ledger.Transaction) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertTransaction(ctx, s.db, t)
}

func insertTransaction(ctx context.Context, db dbtx, t ledger.Transaction) (ledger.Transaction, error) {
	stampRecord(&t.ID, &t.CreatedAt)

	_, err := db.ExecContext(ctx,
		`INSERT INTO transactions (id, date, amount, category, description, account, is_fixed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Date.String(), t.Amount.String(), t.Category, t.Description,
		t.Account, t.IsFixed, t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return t, nil
}

const selectTransactions = `
	SELECT id, date, amount, category, description, account, is_fixed, created_at
	FROM transactions`

func (s *Store) ListTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryTransactions(ctx, s.db, selectTransactions+" ORDER BY date DESC, created_at DESC")
}

func (s *Store) GetTransaction(ctx context.Context, id string) (ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getTransaction(ctx, s.db, id)
}

func getTransaction(ctx context.Context, db dbtx, id string) (ledger.Transaction, error) {
	txs, err := queryTransactions(ctx, db, selectTransactions+" WHERE id = ?", id)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if len(txs) == 0 {
		return ledger.Transaction{}, ledger.ErrNotFound
	}
	return txs[0], nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteByID(ctx, s.db, "transactions", id)
}

func queryTransactions(ctx context.Context, db dbtx, query string, args ...any) ([]ledger.Transaction, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []ledger.Transaction
	for rows.Next() {
		var t ledger.Transaction
		var date, amount, createdAt string

		if err := rows.Scan(&t.ID, &date, &amount, &t.Category, &t.Description,
			&t.Account, &t.IsFixed, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if t.Amount, err = ledger.ParseMoney(amount); err != nil {
			return nil, fmt.Errorf("failed to parse transaction amount: %w", err)
		}
		t.Date, _ = ledger.ParseDate(date)
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// =============================================================================
// TRANSFERS
// =============================================================================

func (s *Store) CreateTransfer(ctx context.Context, t ledger.Transfer) (ledger.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertTransfer(ctx, s.db, t)
}

func insertTransfer(ctx context.Context, db dbtx, t ledger.Transfer) (ledger.Transfer, error) {
	stampRecord(&t.ID, &t.CreatedAt)

	_, err := db.ExecContext(ctx,
		`INSERT INTO transfers (id, date, amount, from_account, to_account, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Date.String(), t.Amount.String(), t.FromAccount, t.ToAccount,
		t.Description, t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return ledger.Transfer{}, fmt.Errorf("failed to insert transfer: %w", err)
	}
	return t, nil
}

const selectTransfers = `
	SELECT id, date, amount, from_account, to_account, description, created_at
	FROM transfers`

func (s *Store) ListTransfers(ctx context.Context) ([]ledger.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryTransfers(ctx, s.db, selectTransfers+" ORDER BY date DESC, created_at DESC")
}

func (s *Store) GetTransfer(ctx context.Context, id string) (ledger.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getTransfer(ctx, s.db, id)
}

func getTransfer(ctx context.Context, db dbtx, id string) (ledger.Transfer, error) {
	ts, err := queryTransfers(ctx, db, selectTransfers+" WHERE id = ?", id)
	if err != nil {
		return ledger.Transfer{}, err
	}
	if len(ts) == 0 {
		return ledger.Transfer{}, ledger.ErrNotFound
	}
	return ts[0], nil
}

func (s *Store) DeleteTransfer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteByID(ctx, s.db, "transfers", id)
}

func queryTransfers(ctx context.Context, db dbtx, query string, args ...any) ([]ledger.Transfer, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	var ts []ledger.Transfer
	for rows.Next() {
		var t ledger.Transfer
		var date, amount, createdAt string

		if err := rows.Scan(&t.ID, &date, &amount, &t.FromAccount, &t.ToAccount,
			&t.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		if t.Amount, err = ledger.ParseMoney(amount); err != nil {
			return nil, fmt.Errorf("failed to parse transfer amount: %w", err)
		}
		t.Date, _ = ledger.ParseDate(date)
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		ts = append(ts, t)
	}
	return ts, rows.Err()
}

// =============================================================================
// CREDITS
// =============================================================================

func (s *Store) CreateCredit(ctx context.Context, c ledger.Credit) (ledger.Credit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertCredit(ctx, s.db, c)
}

func insertCredit(ctx context.Context, db dbtx, c ledger.Credit) (ledger.Credit, error) {
	stampRecord(&c.ID, &c.CreatedAt)

	_, err := db.ExecContext(ctx,
		`INSERT INTO credits
		 (id, name, total_amount, monthly_payment, remaining_months, interest_rate,
		  account, start_date, end_date, remaining_amount, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.TotalAmount.String(), c.MonthlyPayment.String(),
		c.RemainingMonths, c.InterestRate.String(), c.Account,
		c.StartDate.String(), c.EndDate.String(), c.RemainingAmount.String(),
		c.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return ledger.Credit{}, fmt.Errorf("failed to insert credit: %w", err)
	}
	return c, nil
}

const selectCredits = `
	SELECT id, name, total_amount, monthly_payment, remaining_months, interest_rate,
	       account, start_date, end_date, remaining_amount, created_at
	FROM credits`

func (s *Store) ListCredits(ctx context.Context) ([]ledger.Credit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryCredits(ctx, s.db, selectCredits+" ORDER BY created_at DESC")
}

func (s *Store) GetCredit(ctx context.Context, id string) (ledger.Credit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getCredit(ctx, s.db, id)
}

func getCredit(ctx context.Context, db dbtx, id string) (ledger.Credit, error) {
	cs, err := queryCredits(ctx, db, selectCredits+" WHERE id = ?", id)
	if err != nil {
		return ledger.Credit{}, err
	}
	if len(cs) == 0 {
		return ledger.Credit{}, ledger.ErrNotFound
	}
	return cs[0], nil
}

func (s *Store) UpdateCredit(ctx context.Context, c ledger.Credit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateCredit(ctx, s.db, c)
}

func updateCredit(ctx context.Context, db dbtx, c ledger.Credit) error {
	res, err := db.ExecContext(ctx,
		"UPDATE credits SET remaining_amount = ?, remaining_months = ? WHERE id = ?",
		c.RemainingAmount.String(), c.RemainingMonths, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update credit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteCredit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteByID(ctx, s.db, "credits", id)
}

func queryCredits(ctx context.Context, db dbtx, query string, args ...any) ([]ledger.Credit, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query credits: %w", err)
	}
	defer rows.Close()

	var cs []ledger.Credit
	for rows.Next() {
		var c ledger.Credit
		var total, monthly, rate, remaining string
		var startDate, endDate, createdAt string

		if err := rows.Scan(&c.ID, &c.Name, &total, &monthly, &c.RemainingMonths,
			&rate, &c.Account, &startDate, &endDate, &remaining, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan credit: %w", err)
		}
		if c.TotalAmount, err = ledger.ParseMoney(total); err != nil {
			return nil, fmt.Errorf("failed to parse credit amount: %w", err)
		}
		if c.MonthlyPayment, err = ledger.ParseMoney(monthly); err != nil {
			return nil, fmt.Errorf("failed to parse credit amount: %w", err)
		}
		if c.InterestRate, err = ledger.ParseMoney(rate); err != nil {
			return nil, fmt.Errorf("failed to parse credit rate: %w", err)
		}
		if c.RemainingAmount, err = ledger.ParseMoney(remaining); err != nil {
			return nil, fmt.Errorf("failed to parse credit amount: %w", err)
		}
		c.StartDate, _ = ledger.ParseDate(startDate)
		c.EndDate, _ = ledger.ParseDate(endDate)
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		cs = append(cs, c)
	}
	return cs, rows.Err()
}

// =============================================================================
// SAVINGS GOALS
// =============================================================================

func (s *Store) CreateSavingsGoal(ctx context.Context, g ledger.SavingsGoal) (ledger.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertSavingsGoal(ctx, s.db, g)
}

func insertSavingsGoal(ctx context.Context, db dbtx, g ledger.SavingsGoal) (ledger.SavingsGoal, error) {
	stampRecord(&g.ID, &g.CreatedAt)

	_, err := db.ExecContext(ctx,
		`INSERT INTO savings_goals
		 (id, name, target_amount, current_amount, initial_amount, target_date, account, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.TargetAmount.String(), g.CurrentAmount.String(),
		g.InitialAmount.String(), g.TargetDate.String(), g.Account,
		g.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return ledger.SavingsGoal{}, fmt.Errorf("failed to insert savings goal: %w", err)
	}
	return g, nil
}

const selectSavingsGoals = `
	SELECT id, name, target_amount, current_amount, initial_amount, target_date, account, created_at
	FROM savings_goals`

func (s *Store) ListSavingsGoals(ctx context.Context) ([]ledger.SavingsGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return querySavingsGoals(ctx, s.db, selectSavingsGoals+" ORDER BY created_at DESC")
}

func (s *Store) GetSavingsGoal(ctx context.Context, id string) (ledger.SavingsGoal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getSavingsGoal(ctx, s.db, id)
}

func getSavingsGoal(ctx context.Context, db dbtx, id string) (ledger.SavingsGoal, error) {
	gs, err := querySavingsGoals(ctx, db, selectSavingsGoals+" WHERE id = ?", id)
	if err != nil {
		return ledger.SavingsGoal{}, err
	}
	if len(gs) == 0 {
		return ledger.SavingsGoal{}, ledger.ErrNotFound
	}
	return gs[0], nil
}

func (s *Store) UpdateSavingsGoal(ctx context.Context, g ledger.SavingsGoal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateSavingsGoal(ctx, s.db, g)
}

func updateSavingsGoal(ctx context.Context, db dbtx, g ledger.SavingsGoal) error {
	res, err := db.ExecContext(ctx,
		"UPDATE savings_goals SET current_amount = ?, target_amount = ?, target_date = ? WHERE id = ?",
		g.CurrentAmount.String(), g.TargetAmount.String(), g.TargetDate.String(), g.ID)
	if err != nil {
		return fmt.Errorf("failed to update savings goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteSavingsGoal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteByID(ctx, s.db, "savings_goals", id)
}

func querySavingsGoals(ctx context.Context, db dbtx, query string, args ...any) ([]ledger.SavingsGoal, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query savings goals: %w", err)
	}
	defer rows.Close()

	var gs []ledger.SavingsGoal
	for rows.Next() {
		var g ledger.SavingsGoal
		var target, current, initial string
		var targetDate, createdAt string

		if err := rows.Scan(&g.ID, &g.Name, &target, &current, &initial,
			&targetDate, &g.Account, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan savings goal: %w", err)
		}
		if g.TargetAmount, err = ledger.ParseMoney(target); err != nil {
			return nil, fmt.Errorf("failed to parse savings amount: %w", err)
		}
		if g.CurrentAmount, err = ledger.ParseMoney(current); err != nil {
			return nil, fmt.Errorf("failed to parse savings amount: %w", err)
		}
		if g.InitialAmount, err = ledger.ParseMoney(initial); err != nil {
			return nil, fmt.Errorf("failed to parse savings amount: %w", err)
		}
		g.TargetDate, _ = ledger.ParseDate(targetDate)
		g.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		gs = append(gs, g)
	}
	return gs, rows.Err()
}

// =============================================================================
// BULK REPLACE
// =============================================================================

func (s *Store) ReplaceAll(ctx context.Context, snap ledger.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := replaceAll(ctx, sqlTx, snap); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func replaceAll(ctx context.Context, db dbtx, snap ledger.Snapshot) error {
	if snap.Accounts != nil {
		if _, err := db.ExecContext(ctx, "DELETE FROM accounts"); err != nil {
			return fmt.Errorf("failed to clear accounts: %w", err)
		}
		for _, a := range snap.Accounts {
			if _, err := insertAccount(ctx, db, a); err != nil {
				return err
			}
		}
	}
	if snap.Transactions != nil {
		if _, err := db.ExecContext(ctx, "DELETE FROM transactions"); err != nil {
			return fmt.Errorf("failed to clear transactions: %w", err)
		}
		for _, t := range snap.Transactions {
			if _, err := insertTransaction(ctx, db, t); err != nil {
				return err
			}
		}
	}
	if snap.Transfers != nil {
		if _, err := db.ExecContext(ctx, "DELETE FROM transfers"); err != nil {
			return fmt.Errorf("failed to clear transfers: %w", err)
		}
		for _, t := range snap.Transfers {
			if _, err := insertTransfer(ctx, db, t); err != nil {
				return err
			}
		}
	}
	if snap.Credits != nil {
		if _, err := db.ExecContext(ctx, "DELETE FROM credits"); err != nil {
			return fmt.Errorf("failed to clear credits: %w", err)
		}
		for _, c := range snap.Credits {
			if _, err := insertCredit(ctx, db, c); err != nil {
				return err
			}
		}
	}
	if snap.Savings != nil {
		if _, err := db.ExecContext(ctx, "DELETE FROM savings_goals"); err != nil {
			return fmt.Errorf("failed to clear savings goals: %w", err)
		}
		for _, g := range snap.Savings {
			if _, err := insertSavingsGoal(ctx, db, g); err != nil {
				return err
			}
		}
	}
	return nil
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore runs every operation against the wrapped *sql.Tx. The parent's
// mutex is held for the whole WithTx call.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	return insertAccount(ctx, ts.tx, a)
}
func (ts *txStore) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	return listAccounts(ctx, ts.tx)
}
func (ts *txStore) GetAccount(ctx context.Context, id string) (ledger.Account, error) {
	return getAccount(ctx, ts.tx, id)
}
func (ts *txStore) DeleteAccount(ctx context.Context, id string) error {
	return deleteByID(ctx, ts.tx, "accounts", id)
}
func (ts *txStore) FindAccountByName(ctx context.Context, name string) (ledger.Account, error) {
	return findAccountByName(ctx, ts.tx, name)
}
func (ts *txStore) UpdateAccountBalance(ctx context.Context, name string, current, projected ledger.Money) error {
	return updateAccountBalance(ctx, ts.tx, name, current, projected)
}
func (ts *txStore) CreateTransaction(ctx context.Context, t ledger.Transaction) (ledger.Transaction, error) {
	return insertTransaction(ctx, ts.tx, t)
}
func (ts *txStore) ListTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	return queryTransactions(ctx, ts.tx, selectTransactions+" ORDER BY date DESC, created_at DESC")
}
func (ts *txStore) GetTransaction(ctx context.Context, id string) (ledger.Transaction, error) {
	return getTransaction(ctx, ts.tx, id)
}
func (ts *txStore) DeleteTransaction(ctx context.Context, id string) error {
	return deleteByID(ctx, ts.tx, "transactions", id)
}
func (ts *txStore) CreateTransfer(ctx context.Context, t ledger.Transfer) (ledger.Transfer, error) {
	return insertTransfer(ctx, ts.tx, t)
}
func (ts *txStore) ListTransfers(ctx context.Context) ([]ledger.Transfer, error) {
	return queryTransfers(ctx, ts.tx, selectTransfers+" ORDER BY date DESC, created_at DESC")
}
func (ts *txStore) GetTransfer(ctx context.Context, id string) (ledger.Transfer, error) {
	return getTransfer(ctx, ts.tx, id)
}
func (ts *txStore) DeleteTransfer(ctx context.Context, id string) error {
	return deleteByID(ctx, ts.tx, "transfers", id)
}
func (ts *txStore) CreateCredit(ctx context.Context, c ledger.Credit) (ledger.Credit, error) {
	return insertCredit(ctx, ts.tx, c)
}
func (ts *txStore) ListCredits(ctx context.Context) ([]ledger.Credit, error) {
	return queryCredits(ctx, ts.tx, selectCredits+" ORDER BY created_at DESC")
}
func (ts *txStore) GetCredit(ctx context.Context, id string) (ledger.Credit, error) {
	return getCredit(ctx, ts.tx, id)
}
func (ts *txStore) UpdateCredit(ctx context.Context, c ledger.Credit) error {
	return updateCredit(ctx, ts.tx, c)
}
func (ts *txStore) DeleteCredit(ctx context.Context, id string) error {
	return deleteByID(ctx, ts.tx, "credits", id)
}
func (ts *txStore) CreateSavingsGoal(ctx context.Context, g ledger.SavingsGoal) (ledger.SavingsGoal, error) {
	return insertSavingsGoal(ctx, ts.tx, g)
}
func (ts *txStore) ListSavingsGoals(ctx context.Context) ([]ledger.SavingsGoal, error) {
	return querySavingsGoals(ctx, ts.tx, selectSavingsGoals+" ORDER BY created_at DESC")
}
func (ts *txStore) GetSavingsGoal(ctx context.Context, id string) (ledger.SavingsGoal, error) {
	return getSavingsGoal(ctx, ts.tx, id)
}
func (ts *txStore) UpdateSavingsGoal(ctx context.Context, g ledger.SavingsGoal) error {
	return updateSavingsGoal(ctx, ts.tx, g)
}
func (ts *txStore) DeleteSavingsGoal(ctx context.Context, id string) error {
	return deleteByID(ctx, ts.tx, "savings_goals", id)
}
func (ts *txStore) ReplaceAll(ctx context.Context, snap ledger.Snapshot) error {
	return replaceAll(ctx, ts.tx, snap)
}

// =============================================================================
// HELPERS
// =============================================================================

func deleteByID(ctx context.Context, db dbtx, table, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func stampRecord(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
