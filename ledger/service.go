/*
service.go - The operation surface exposed to API and UI callers

PURPOSE:
  One create/delete pair per event kind, plus account CRUD, savings
  contributions, credit payment tracking, and bulk state replacement.
  Each mutating operation is one WithTx unit: the event record and its
  balance effect commit together or not at all.

CREATION:
  validate (factory) -> persist record -> propagate APPLY deltas.
  A missing account aborts the whole unit; no orphan record survives.

DELETION:
  look up record -> propagate REVERSE deltas -> remove record.
  Accounts that vanished since creation are skipped (partial reversal) and
  logged; the event is still removed so it cannot become un-deletable.

BULK LOAD:
  LoadData wholesale-replaces collections without re-running propagation.
  The external sync collaborator guarantees the loaded balances are
  self-consistent.
*/
package ledger

import (
	"context"

	"github.com/rs/zerolog"
)

// Service composes the factories, the store, and the propagation engine.
type Service struct {
	store  TxStore
	engine *Engine
	log    zerolog.Logger
}

func NewService(store TxStore, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		engine: NewEngine(),
		log:    log.With().Str("component", "ledger").Logger(),
	}
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func (s *Service) CreateAccount(ctx context.Context, in AccountInput) (Account, error) {
	acct, err := NewAccount(in)
	if err != nil {
		return Account{}, err
	}
	created, err := s.store.CreateAccount(ctx, acct)
	if err != nil {
		return Account{}, err
	}
	s.log.Info().Str("account", created.Name).Str("id", created.ID).Msg("account created")
	return created, nil
}

// CreateAccounts creates a batch of accounts in one transaction. Either
// every account lands or none does.
func (s *Service) CreateAccounts(ctx context.Context, ins []AccountInput) ([]Account, error) {
	accounts := make([]Account, 0, len(ins))
	for _, in := range ins {
		acct, err := NewAccount(in)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}

	created := make([]Account, 0, len(accounts))
	err := s.store.WithTx(ctx, func(tx Store) error {
		for _, acct := range accounts {
			c, err := tx.CreateAccount(ctx, acct)
			if err != nil {
				return err
			}
			created = append(created, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("count", len(created)).Msg("accounts created")
	return created, nil
}

func (s *Service) ListAccounts(ctx context.Context) ([]Account, error) {
	return s.store.ListAccounts(ctx)
}

// DeleteAccount removes an account. It refuses while any event still
// references the account by name; historical events would otherwise be left
// dangling with no account to reverse against.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	return s.store.WithTx(ctx, func(tx Store) error {
		acct, err := tx.GetAccount(ctx, id)
		if err != nil {
			return err
		}
		referenced, err := accountReferenced(ctx, tx, acct.Name)
		if err != nil {
			return err
		}
		if referenced {
			return ErrAccountInUse
		}
		return tx.DeleteAccount(ctx, id)
	})
}

func accountReferenced(ctx context.Context, s Store, name string) (bool, error) {
	txs, err := s.ListTransactions(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range txs {
		if t.Account == name {
			return true, nil
		}
	}
	transfers, err := s.ListTransfers(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range transfers {
		if t.FromAccount == name || t.ToAccount == name {
			return true, nil
		}
	}
	credits, err := s.ListCredits(ctx)
	if err != nil {
		return false, err
	}
	for _, c := range credits {
		if c.Account == name {
			return true, nil
		}
	}
	goals, err := s.ListSavingsGoals(ctx)
	if err != nil {
		return false, err
	}
	for _, g := range goals {
		if g.Account == name {
			return true, nil
		}
	}
	return false, nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func (s *Service) CreateTransaction(ctx context.Context, in TransactionInput) (Transaction, error) {
	rec, err := NewTransaction(in)
	if err != nil {
		return Transaction{}, err
	}
	var created Transaction
	err = s.store.WithTx(ctx, func(tx Store) error {
		var err error
		created, err = tx.CreateTransaction(ctx, rec)
		if err != nil {
			return err
		}
		return s.engine.Apply(ctx, tx, created, DirApply)
	})
	if err != nil {
		return Transaction{}, err
	}
	s.log.Info().Str("id", created.ID).Str("account", created.Account).
		Stringer("amount", created.Amount.Value).Msg("transaction created")
	return created, nil
}

func (s *Service) ListTransactions(ctx context.Context) ([]Transaction, error) {
	return s.store.ListTransactions(ctx)
}

func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	return s.deleteEvent(ctx, "transaction", id, func(ctx context.Context, tx Store) (Event, error) {
		return tx.GetTransaction(ctx, id)
	}, func(ctx context.Context, tx Store) error {
		return tx.DeleteTransaction(ctx, id)
	})
}

// =============================================================================
// TRANSFERS
// =============================================================================

func (s *Service) CreateTransfer(ctx context.Context, in TransferInput) (Transfer, error) {
	rec, err := NewTransfer(in)
	if err != nil {
		return Transfer{}, err
	}
	var created Transfer
	err = s.store.WithTx(ctx, func(tx Store) error {
		var err error
		created, err = tx.CreateTransfer(ctx, rec)
		if err != nil {
			return err
		}
		return s.engine.Apply(ctx, tx, created, DirApply)
	})
	if err != nil {
		return Transfer{}, err
	}
	s.log.Info().Str("id", created.ID).Str("from", created.FromAccount).
		Str("to", created.ToAccount).Stringer("amount", created.Amount.Value).Msg("transfer created")
	return created, nil
}

func (s *Service) ListTransfers(ctx context.Context) ([]Transfer, error) {
	return s.store.ListTransfers(ctx)
}

func (s *Service) DeleteTransfer(ctx context.Context, id string) error {
	return s.deleteEvent(ctx, "transfer", id, func(ctx context.Context, tx Store) (Event, error) {
		return tx.GetTransfer(ctx, id)
	}, func(ctx context.Context, tx Store) error {
		return tx.DeleteTransfer(ctx, id)
	})
}

// =============================================================================
// CREDITS
// =============================================================================

func (s *Service) CreateCredit(ctx context.Context, in CreditInput) (Credit, error) {
	rec, err := NewCredit(in)
	if err != nil {
		return Credit{}, err
	}
	var created Credit
	err = s.store.WithTx(ctx, func(tx Store) error {
		var err error
		created, err = tx.CreateCredit(ctx, rec)
		if err != nil {
			return err
		}
		return s.engine.Apply(ctx, tx, created, DirApply)
	})
	if err != nil {
		return Credit{}, err
	}
	s.log.Info().Str("id", created.ID).Str("account", created.Account).
		Stringer("total", created.TotalAmount.Value).Int("months", created.RemainingMonths).
		Msg("credit created")
	return created, nil
}

func (s *Service) ListCredits(ctx context.Context) ([]Credit, error) {
	return s.store.ListCredits(ctx)
}

func (s *Service) DeleteCredit(ctx context.Context, id string) error {
	return s.deleteEvent(ctx, "credit", id, func(ctx context.Context, tx Store) (Event, error) {
		return tx.GetCredit(ctx, id)
	}, func(ctx context.Context, tx Store) error {
		return tx.DeleteCredit(ctx, id)
	})
}

// RecordCreditPayment books one monthly payment against the payoff
// schedule. This is bookkeeping only: the cash movement is a separate
// expense transaction created by the caller, so payments never touch
// propagation and credit deletion still reverses TotalAmount exactly.
func (s *Service) RecordCreditPayment(ctx context.Context, id string) (Credit, error) {
	var updated Credit
	err := s.store.WithTx(ctx, func(tx Store) error {
		c, err := tx.GetCredit(ctx, id)
		if err != nil {
			return err
		}
		if c.RemainingAmount.IsZero() || c.RemainingMonths == 0 {
			return ErrCreditSettled
		}
		c.RemainingAmount = c.RemainingAmount.Sub(c.MonthlyPayment)
		if c.RemainingAmount.IsNegative() {
			c.RemainingAmount = Zero()
		}
		c.RemainingMonths--
		if err := tx.UpdateCredit(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return Credit{}, err
	}
	s.log.Info().Str("id", id).Stringer("remaining", updated.RemainingAmount.Value).
		Int("months", updated.RemainingMonths).Msg("credit payment recorded")
	return updated, nil
}

// =============================================================================
// SAVINGS GOALS
// =============================================================================

func (s *Service) CreateSavingsGoal(ctx context.Context, in SavingsGoalInput) (SavingsGoal, error) {
	rec, err := NewSavingsGoal(in)
	if err != nil {
		return SavingsGoal{}, err
	}
	var created SavingsGoal
	err = s.store.WithTx(ctx, func(tx Store) error {
		var err error
		created, err = tx.CreateSavingsGoal(ctx, rec)
		if err != nil {
			return err
		}
		return s.engine.Apply(ctx, tx, created, DirApply)
	})
	if err != nil {
		return SavingsGoal{}, err
	}
	s.log.Info().Str("id", created.ID).Str("account", created.Account).
		Stringer("earmarked", created.InitialAmount.Value).Msg("savings goal created")
	return created, nil
}

func (s *Service) ListSavingsGoals(ctx context.Context) ([]SavingsGoal, error) {
	return s.store.ListSavingsGoals(ctx)
}

func (s *Service) DeleteSavingsGoal(ctx context.Context, id string) error {
	return s.deleteEvent(ctx, "savings goal", id, func(ctx context.Context, tx Store) (Event, error) {
		return tx.GetSavingsGoal(ctx, id)
	}, func(ctx context.Context, tx Store) error {
		return tx.DeleteSavingsGoal(ctx, id)
	})
}

// ContributionInput funds an existing goal from another account.
type ContributionInput struct {
	FromAccount string
	Amount      Money
	Date        Date
	Description string
}

// Contribute moves money into the goal's account via an ordinary transfer
// and increments the goal's CurrentAmount in the same unit. The transfer
// carries the balance effect; the goal's InitialAmount is untouched so
// deleting the goal later still reverses exactly what its creation applied.
func (s *Service) Contribute(ctx context.Context, goalID string, in ContributionInput) (Transfer, error) {
	var created Transfer
	err := s.store.WithTx(ctx, func(tx Store) error {
		goal, err := tx.GetSavingsGoal(ctx, goalID)
		if err != nil {
			return err
		}
		rec, err := NewTransfer(TransferInput{
			Date:        in.Date,
			Amount:      in.Amount,
			FromAccount: in.FromAccount,
			ToAccount:   goal.Account,
			Description: in.Description,
		})
		if err != nil {
			return err
		}
		created, err = tx.CreateTransfer(ctx, rec)
		if err != nil {
			return err
		}
		if err := s.engine.Apply(ctx, tx, created, DirApply); err != nil {
			return err
		}
		goal.CurrentAmount = goal.CurrentAmount.Add(in.Amount)
		return tx.UpdateSavingsGoal(ctx, goal)
	})
	if err != nil {
		return Transfer{}, err
	}
	s.log.Info().Str("goal", goalID).Str("from", in.FromAccount).
		Stringer("amount", in.Amount.Value).Msg("contribution recorded")
	return created, nil
}

// =============================================================================
// BULK STATE
// =============================================================================

// Export returns all collections for external sync.
func (s *Service) Export(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	var err error
	if snap.Accounts, err = s.store.ListAccounts(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Transactions, err = s.store.ListTransactions(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Transfers, err = s.store.ListTransfers(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Credits, err = s.store.ListCredits(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Savings, err = s.store.ListSavingsGoals(ctx); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// LoadData wholesale-replaces the snapshot's non-nil collections without
// re-running propagation.
func (s *Service) LoadData(ctx context.Context, snap Snapshot) error {
	if err := s.store.ReplaceAll(ctx, snap); err != nil {
		return err
	}
	s.log.Info().Msg("bulk data load applied")
	return nil
}

// ClearData empties every collection.
func (s *Service) ClearData(ctx context.Context) error {
	empty := Snapshot{
		Accounts:     []Account{},
		Transactions: []Transaction{},
		Transfers:    []Transfer{},
		Credits:      []Credit{},
		Savings:      []SavingsGoal{},
	}
	if err := s.store.ReplaceAll(ctx, empty); err != nil {
		return err
	}
	s.log.Info().Msg("all data cleared")
	return nil
}

// =============================================================================
// SHARED DELETION PATH
// =============================================================================

func (s *Service) deleteEvent(
	ctx context.Context,
	kind, id string,
	get func(context.Context, Store) (Event, error),
	remove func(context.Context, Store) error,
) error {
	var missing []string
	err := s.store.WithTx(ctx, func(tx Store) error {
		ev, err := get(ctx, tx)
		if err != nil {
			return err
		}
		missing, err = s.engine.ApplyPartial(ctx, tx, ev, DirReverse)
		if err != nil {
			return err
		}
		return remove(ctx, tx)
	})
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		s.log.Warn().Str("kind", kind).Str("id", id).Strs("missing_accounts", missing).
			Msg("partial reversal: some target accounts no longer exist")
	} else {
		s.log.Info().Str("kind", kind).Str("id", id).Msg("event deleted and reversed")
	}
	return nil
}
