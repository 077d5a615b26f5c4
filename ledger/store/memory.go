// Package store provides ledger.Store implementations.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/budget-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory is an in-memory TxStore. WithTx simulates transactions with a
// snapshot + rollback on error, which is enough for tests and dev servers.
type Memory struct {
	mu           sync.RWMutex
	accounts     []ledger.Account
	transactions []ledger.Transaction
	transfers    []ledger.Transfer
	credits      []ledger.Credit
	savings      []ledger.SavingsGoal
}

func NewMemory() *Memory {
	return &Memory{}
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func (m *Memory) CreateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createAccountLocked(a)
}

func (m *Memory) createAccountLocked(a ledger.Account) (ledger.Account, error) {
	for _, existing := range m.accounts {
		if existing.Name == a.Name {
			return ledger.Account{}, ledger.ErrDuplicateAccountName
		}
	}
	stamp(&a.ID, &a.CreatedAt)
	m.accounts = append(m.accounts, a)
	return a, nil
}

func (m *Memory) ListAccounts(_ context.Context) ([]ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ledger.Account(nil), m.accounts...), nil
}

func (m *Memory) GetAccount(_ context.Context, id string) (ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getAccountLocked(id)
}

func (m *Memory) getAccountLocked(id string) (ledger.Account, error) {
	for _, a := range m.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return ledger.Account{}, ledger.ErrNotFound
}

func (m *Memory) DeleteAccount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteAccountLocked(id)
}

func (m *Memory) deleteAccountLocked(id string) error {
	for i, a := range m.accounts {
		if a.ID == id {
			m.accounts = append(m.accounts[:i], m.accounts[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (m *Memory) FindAccountByName(_ context.Context, name string) (ledger.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findAccountByNameLocked(name)
}

func (m *Memory) findAccountByNameLocked(name string) (ledger.Account, error) {
	for _, a := range m.accounts {
		if a.Name == name {
			return a, nil
		}
	}
	return ledger.Account{}, &ledger.AccountNotFoundError{Name: name}
}

func (m *Memory) UpdateAccountBalance(_ context.Context, name string, current, projected ledger.Money) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateAccountBalanceLocked(name, current, projected)
}

func (m *Memory) updateAccountBalanceLocked(name string, current, projected ledger.Money) error {
	for i := range m.accounts {
		if m.accounts[i].Name == name {
			m.accounts[i].Current = current
			m.accounts[i].Projected = projected
			return nil
		}
	}
	return &ledger.AccountNotFoundError{Name: name}
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func (m *Memory) CreateTransaction(_ context.Context, t ledger.Transaction) (ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createTransactionLocked(t)
}

func (m *Memory) createTransactionLocked(t ledger.Transaction) (ledger.Transaction, error) {
	stamp(&t.ID, &t.CreatedAt)
	m.transactions = append(m.transactions, t)
	return t, nil
}

func (m *Memory) ListTransactions(_ context.Context) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ledger.Transaction(nil), m.transactions...), nil
}

func (m *Memory) GetTransaction(_ context.Context, id string) (ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getTransactionLocked(id)
}

func (m *Memory) getTransactionLocked(id string) (ledger.Transaction, error) {
	for _, t := range m.transactions {
		if t.ID == id {
			return t, nil
		}
	}
	return ledger.Transaction{}, ledger.ErrNotFound
}

func (m *Memory) DeleteTransaction(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteTransactionLocked(id)
}

func (m *Memory) deleteTransactionLocked(id string) error {
	for i, t := range m.transactions {
		if t.ID == id {
			m.transactions = append(m.transactions[:i], m.transactions[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}

// =============================================================================
// TRANSFERS
// =============================================================================

func (m *Memory) CreateTransfer(_ context.Context, t ledger.Transfer) (ledger.Transfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createTransferLocked(t)
}

func (m *Memory) createTransferLocked(t ledger.Transfer) (ledger.Transfer, error) {
	stamp(&t.ID, &t.CreatedAt)
	m.transfers = append(m.transfers, t)
	return t, nil
}

func (m *Memory) ListTransfers(_ context.Context) ([]ledger.Transfer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ledger.Transfer(nil), m.transfers...), nil
}

func (m *Memory) GetTransfer(_ context.Context, id string) (ledger.Transfer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getTransferLocked(id)
}

func (m *Memory) getTransferLocked(id string) (ledger.Transfer, error) {
	for _, t := range m.transfers {
		if t.ID == id {
			return t, nil
		}
	}
	return ledger.Transfer{}, ledger.ErrNotFound
}

func (m *Memory) DeleteTransfer(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteTransferLocked(id)
}

func (m *Memory) deleteTransferLocked(id string) error {
	for i, t := range m.transfers {
		if t.ID == id {
			m.transfers = append(m.transfers[:i], m.transfers[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}

// =============================================================================
// CREDITS
// =============================================================================

func (m *Memory) CreateCredit(_ context.Context, c ledger.Credit) (ledger.Credit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCreditLocked(c)
}

func (m *Memory) createCreditLocked(c ledger.Credit) (ledger.Credit, error) {
	stamp(&c.ID, &c.CreatedAt)
	m.credits = append(m.credits, c)
	return c, nil
}

func (m *Memory) ListCredits(_ context.Context) ([]ledger.Credit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ledger.Credit(nil), m.credits...), nil
}

func (m *Memory) GetCredit(_ context.Context, id string) (ledger.Credit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getCreditLocked(id)
}

func (m *Memory) getCreditLocked(id string) (ledger.Credit, error) {
	for _, c := range m.credits {
		if c.ID == id {
			return c, nil
		}
	}
	return ledger.Credit{}, ledger.ErrNotFound
}

func (m *Memory) UpdateCredit(_ context.Context, c ledger.Credit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateCreditLocked(c)
}

func (m *Memory) updateCreditLocked(c ledger.Credit) error {
	for i := range m.credits {
		if m.credits[i].ID == c.ID {
			m.credits[i] = c
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (m *Memory) DeleteCredit(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteCreditLocked(id)
}

func (m *Memory) deleteCreditLocked(id string) error {
	for i, c := range m.credits {
		if c.ID == id {
			m.credits = append(m.credits[:i], m.credits[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}

// =============================================================================
// SAVINGS GOALS
// =============================================================================

func (m *Memory) CreateSavingsGoal(_ context.Context, g ledger.SavingsGoal) (ledger.SavingsGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createSavingsGoalLocked(g)
}

func (m *Memory) createSavingsGoalLocked(g ledger.SavingsGoal) (ledger.SavingsGoal, error) {
	stamp(&g.ID, &g.CreatedAt)
	m.savings = append(m.savings, g)
	return g, nil
}

func (m *Memory) ListSavingsGoals(_ context.Context) ([]ledger.SavingsGoal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ledger.SavingsGoal(nil), m.savings...), nil
}

func (m *Memory) GetSavingsGoal(_ context.Context, id string) (ledger.SavingsGoal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getSavingsGoalLocked(id)
}

func (m *Memory) getSavingsGoalLocked(id string) (ledger.SavingsGoal, error) {
	for _, g := range m.savings {
		if g.ID == id {
			return g, nil
		}
	}
	return ledger.SavingsGoal{}, ledger.ErrNotFound
}

func (m *Memory) UpdateSavingsGoal(_ context.Context, g ledger.SavingsGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateSavingsGoalLocked(g)
}

func (m *Memory) updateSavingsGoalLocked(g ledger.SavingsGoal) error {
	for i := range m.savings {
		if m.savings[i].ID == g.ID {
			m.savings[i] = g
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (m *Memory) DeleteSavingsGoal(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteSavingsGoalLocked(id)
}

func (m *Memory) deleteSavingsGoalLocked(id string) error {
	for i, g := range m.savings {
		if g.ID == id {
			m.savings = append(m.savings[:i], m.savings[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}

// =============================================================================
// BULK REPLACE
// =============================================================================

func (m *Memory) ReplaceAll(_ context.Context, snap ledger.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replaceAllLocked(snap)
}

func (m *Memory) replaceAllLocked(snap ledger.Snapshot) error {
	if snap.Accounts != nil {
		seen := make(map[string]bool, len(snap.Accounts))
		for _, a := range snap.Accounts {
			if seen[a.Name] {
				return ledger.ErrDuplicateAccountName
			}
			seen[a.Name] = true
		}
		accounts := make([]ledger.Account, len(snap.Accounts))
		copy(accounts, snap.Accounts)
		for i := range accounts {
			stamp(&accounts[i].ID, &accounts[i].CreatedAt)
		}
		m.accounts = accounts
	}
	if snap.Transactions != nil {
		txs := make([]ledger.Transaction, len(snap.Transactions))
		copy(txs, snap.Transactions)
		for i := range txs {
			stamp(&txs[i].ID, &txs[i].CreatedAt)
		}
		m.transactions = txs
	}
	if snap.Transfers != nil {
		ts := make([]ledger.Transfer, len(snap.Transfers))
		copy(ts, snap.Transfers)
		for i := range ts {
			stamp(&ts[i].ID, &ts[i].CreatedAt)
		}
		m.transfers = ts
	}
	if snap.Credits != nil {
		cs := make([]ledger.Credit, len(snap.Credits))
		copy(cs, snap.Credits)
		for i := range cs {
			stamp(&cs[i].ID, &cs[i].CreatedAt)
		}
		m.credits = cs
	}
	if snap.Savings != nil {
		gs := make([]ledger.SavingsGoal, len(snap.Savings))
		copy(gs, snap.Savings)
		for i := range gs {
			stamp(&gs[i].ID, &gs[i].CreatedAt)
		}
		m.savings = gs
	}
	return nil
}

// =============================================================================
// TRANSACTIONS (WithTx)
// =============================================================================

// WithTx executes fn against a view that reuses the already-held lock.
// On error the pre-call state is restored.
func (m *Memory) WithTx(_ context.Context, fn func(ledger.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.copyState()
	if err := fn(&memoryTxView{parent: m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

type memoryState struct {
	accounts     []ledger.Account
	transactions []ledger.Transaction
	transfers    []ledger.Transfer
	credits      []ledger.Credit
	savings      []ledger.SavingsGoal
}

func (m *Memory) copyState() memoryState {
	return memoryState{
		accounts:     append([]ledger.Account(nil), m.accounts...),
		transactions: append([]ledger.Transaction(nil), m.transactions...),
		transfers:    append([]ledger.Transfer(nil), m.transfers...),
		credits:      append([]ledger.Credit(nil), m.credits...),
		savings:      append([]ledger.SavingsGoal(nil), m.savings...),
	}
}

func (m *Memory) restore(s memoryState) {
	m.accounts = s.accounts
	m.transactions = s.transactions
	m.transfers = s.transfers
	m.credits = s.credits
	m.savings = s.savings
}

// memoryTxView delegates to the parent's locked helpers; the parent mutex
// is held for the whole WithTx call.
type memoryTxView struct {
	parent *Memory
}

func (v *memoryTxView) CreateAccount(_ context.Context, a ledger.Account) (ledger.Account, error) {
	return v.parent.createAccountLocked(a)
}
func (v *memoryTxView) ListAccounts(_ context.Context) ([]ledger.Account, error) {
	return append([]ledger.Account(nil), v.parent.accounts...), nil
}
func (v *memoryTxView) GetAccount(_ context.Context, id string) (ledger.Account, error) {
	return v.parent.getAccountLocked(id)
}
func (v *memoryTxView) DeleteAccount(_ context.Context, id string) error {
	return v.parent.deleteAccountLocked(id)
}
func (v *memoryTxView) FindAccountByName(_ context.Context, name string) (ledger.Account, error) {
	return v.parent.findAccountByNameLocked(name)
}
func (v *memoryTxView) UpdateAccountBalance(_ context.Context, name string, current, projected ledger.Money) error {
	return v.parent.updateAccountBalanceLocked(name, current, projected)
}
func (v *memoryTxView) CreateTransaction(_ context.Context, t ledger.Transaction) (ledger.Transaction, error) {
	return v.parent.createTransactionLocked(t)
}
func (v *memoryTxView) ListTransactions(_ context.Context) ([]ledger.Transaction, error) {
	return append([]ledger.Transaction(nil), v.parent.transactions...), nil
}
func (v *memoryTxView) GetTransaction(_ context.Context, id string) (ledger.Transaction, error) {
	return v.parent.getTransactionLocked(id)
}
func (v *memoryTxView) DeleteTransaction(_ context.Context, id string) error {
	return v.parent.deleteTransactionLocked(id)
}
func (v *memoryTxView) CreateTransfer(_ context.Context, t ledger.Transfer) (ledger.Transfer, error) {
	return v.parent.createTransferLocked(t)
}
func (v *memoryTxView) ListTransfers(_ context.Context) ([]ledger.Transfer, error) {
	return append([]ledger.Transfer(nil), v.parent.transfers...), nil
}
func (v *memoryTxView) GetTransfer(_ context.Context, id string) (ledger.Transfer, error) {
	return v.parent.getTransferLocked(id)
}
func (v *memoryTxView) DeleteTransfer(_ context.Context, id string) error {
	return v.parent.deleteTransferLocked(id)
}
func (v *memoryTxView) CreateCredit(_ context.Context, c ledger.Credit) (ledger.Credit, error) {
	return v.parent.createCreditLocked(c)
}
func (v *memoryTxView) ListCredits(_ context.Context) ([]ledger.Credit, error) {
	return append([]ledger.Credit(nil), v.parent.credits...), nil
}
func (v *memoryTxView) GetCredit(_ context.Context, id string) (ledger.Credit, error) {
	return v.parent.getCreditLocked(id)
}
func (v *memoryTxView) UpdateCredit(_ context.Context, c ledger.Credit) error {
	return v.parent.updateCreditLocked(c)
}
func (v *memoryTxView) DeleteCredit(_ context.Context, id string) error {
	return v.parent.deleteCreditLocked(id)
}
func (v *memoryTxView) CreateSavingsGoal(_ context.Context, g ledger.SavingsGoal) (ledger.SavingsGoal, error) {
	return v.parent.createSavingsGoalLocked(g)
}
func (v *memoryTxView) ListSavingsGoals(_ context.Context) ([]ledger.SavingsGoal, error) {
	return append([]ledger.SavingsGoal(nil), v.parent.savings...), nil
}
func (v *memoryTxView) GetSavingsGoal(_ context.Context, id string) (ledger.SavingsGoal, error) {
	return v.parent.getSavingsGoalLocked(id)
}
func (v *memoryTxView) UpdateSavingsGoal(_ context.Context, g ledger.SavingsGoal) error {
	return v.parent.updateSavingsGoalLocked(g)
}
func (v *memoryTxView) DeleteSavingsGoal(_ context.Context, id string) error {
	return v.parent.deleteSavingsGoalLocked(id)
}
func (v *memoryTxView) ReplaceAll(_ context.Context, snap ledger.Snapshot) error {
	return v.parent.replaceAllLocked(snap)
}

func stamp(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}
