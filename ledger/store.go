/*
store.go - Persistence interface for accounts and events

PURPOSE:
  Defines the interface between the engine and the database. The Store owns
  five collections (accounts, transactions, transfers, credits, savings)
  keyed by opaque ids. Different implementations can use SQLite or
  in-memory storage.

ID ASSIGNMENT:
  Create* assigns a fresh unique id when the record's ID is empty and
  returns the stored record. ReplaceAll preserves ids supplied by the
  caller (bulk load from an external sync must keep foreign identities).

BALANCES:
  UpdateAccountBalance is the ONLY way account balances change, and the
  propagation engine is its only caller. Store implementations never
  recompute balances themselves.

ATOMICITY:
  TxStore.WithTx executes a function against a transactional view of the
  store. The create-record + update-balance(s) sequence for a single event
  runs inside one such unit so a failure cannot leave an event recorded
  without its balance effect, or vice versa.

IMPLEMENTATIONS:
  - store/sqlite: durable SQLite store
  - ledger/store: in-memory store for tests and dev
*/
package ledger

import "context"

// Store handles persistence of accounts and the four event collections.
type Store interface {
	// Accounts
	CreateAccount(ctx context.Context, a Account) (Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	GetAccount(ctx context.Context, id string) (Account, error)
	DeleteAccount(ctx context.Context, id string) error
	// FindAccountByName resolves the name-keyed references carried by
	// events. Returns an AccountNotFoundError when the name is unknown.
	FindAccountByName(ctx context.Context, name string) (Account, error)
	// UpdateAccountBalance overwrites both balances of the named account.
	UpdateAccountBalance(ctx context.Context, name string, current, projected Money) error

	// Transactions
	CreateTransaction(ctx context.Context, t Transaction) (Transaction, error)
	ListTransactions(ctx context.Context) ([]Transaction, error)
	GetTransaction(ctx context.Context, id string) (Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	// Transfers
	CreateTransfer(ctx context.Context, t Transfer) (Transfer, error)
	ListTransfers(ctx context.Context) ([]Transfer, error)
	GetTransfer(ctx context.Context, id string) (Transfer, error)
	DeleteTransfer(ctx context.Context, id string) error

	// Credits
	CreateCredit(ctx context.Context, c Credit) (Credit, error)
	ListCredits(ctx context.Context) ([]Credit, error)
	GetCredit(ctx context.Context, id string) (Credit, error)
	UpdateCredit(ctx context.Context, c Credit) error
	DeleteCredit(ctx context.Context, id string) error

	// Savings goals
	CreateSavingsGoal(ctx context.Context, g SavingsGoal) (SavingsGoal, error)
	ListSavingsGoals(ctx context.Context) ([]SavingsGoal, error)
	GetSavingsGoal(ctx context.Context, id string) (SavingsGoal, error)
	UpdateSavingsGoal(ctx context.Context, g SavingsGoal) error
	DeleteSavingsGoal(ctx context.Context, id string) error

	// ReplaceAll wholesale-replaces collections with the snapshot's non-nil
	// slices, bypassing propagation entirely. The caller is responsible for
	// the loaded balances being self-consistent.
	ReplaceAll(ctx context.Context, snap Snapshot) error
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// Snapshot is a full or partial export of the store's collections. A nil
// slice means "leave this collection untouched" on load; an empty non-nil
// slice clears it.
type Snapshot struct {
	Accounts     []Account     `json:"accounts"`
	Transactions []Transaction `json:"transactions"`
	Transfers    []Transfer    `json:"transfers"`
	Credits      []Credit      `json:"credits"`
	Savings      []SavingsGoal `json:"savings"`
}
