/*
engine.go - Balance propagation engine

PURPOSE:
  The single place where account balances are mutated. Given an event and a
  direction, the engine resolves each affected account by name, applies the
  event's signed deltas to both the current and projected balance, and
  persists the result through UpdateAccountBalance.

DIRECTION:
  DirApply adds the event's natural deltas (as defined by BalanceDeltas);
  DirReverse adds the negated deltas. Reversal never re-derives amounts
  from fields that may have drifted since creation — BalanceDeltas is a
  pure function of creation-time fields, and reversal only flips its sign.

ALL-OR-NOTHING:
  Apply resolves every target account before mutating any of them. If one
  side of a transfer is missing, neither side changes. ApplyPartial is the
  deliberate exception for the deletion path: accounts that vanished since
  the event was created are skipped and reported, so an event whose target
  was deleted does not become un-deletable.

CONCURRENCY:
  A striped per-account-name lock serializes the read-modify-write on each
  account. Locks are always acquired in ascending name order so a transfer
  touching two accounts cannot deadlock against another transfer touching
  the same pair in the opposite direction. Operations on disjoint accounts
  proceed in parallel.
*/
package ledger

import (
	"context"
	"sort"
	"sync"
)

// Direction selects whether deltas are applied as-is or negated.
type Direction int

const (
	DirApply Direction = iota
	DirReverse
)

func (d Direction) String() string {
	if d == DirReverse {
		return "reverse"
	}
	return "apply"
}

// Engine applies event deltas to account balances. It holds no state other
// than the lock table; the Store passed to each call may be a transactional
// view so that record writes and balance writes commit together.
type Engine struct {
	locks nameLocks
}

func NewEngine() *Engine {
	return &Engine{locks: nameLocks{held: make(map[string]*sync.Mutex)}}
}

// Apply propagates the event's deltas in the given direction. Every target
// account must exist; otherwise an AccountNotFoundError is returned and no
// balance is touched.
//
// Locking contract: Apply takes the engine's per-account name locks before
// touching the store. A given Engine must therefore be driven either
// directly against a store or always inside that store's WithTx, never
// both: mixing the two orders the name locks against the store's own
// serialization in opposite directions.
func (e *Engine) Apply(ctx context.Context, s Store, ev Event, dir Direction) error {
	deltas := directed(ev.BalanceDeltas(), dir)

	unlock := e.locks.acquire(accountNames(deltas))
	defer unlock()

	// Resolve all accounts before writing any balance.
	accounts := make([]Account, len(deltas))
	for i, d := range deltas {
		acct, err := s.FindAccountByName(ctx, d.Account)
		if err != nil {
			return err
		}
		accounts[i] = acct
	}

	return writeDeltas(ctx, s, accounts, deltas)
}

// ApplyPartial propagates whatever deltas target accounts that still exist
// and returns the names that could not be resolved. Used on deletion so a
// dangling event can still be reversed and removed.
func (e *Engine) ApplyPartial(ctx context.Context, s Store, ev Event, dir Direction) (missing []string, err error) {
	deltas := directed(ev.BalanceDeltas(), dir)

	unlock := e.locks.acquire(accountNames(deltas))
	defer unlock()

	var (
		accounts []Account
		resolved []Delta
	)
	for _, d := range deltas {
		acct, ferr := s.FindAccountByName(ctx, d.Account)
		if ferr != nil {
			if IsNotFound(ferr) {
				missing = append(missing, d.Account)
				continue
			}
			return nil, ferr
		}
		accounts = append(accounts, acct)
		resolved = append(resolved, d)
	}

	if err := writeDeltas(ctx, s, accounts, resolved); err != nil {
		return nil, err
	}
	return missing, nil
}

func writeDeltas(ctx context.Context, s Store, accounts []Account, deltas []Delta) error {
	for i, d := range deltas {
		acct := accounts[i]
		current := acct.Current.Add(d.Amount)
		projected := acct.Projected.Add(d.Amount)
		if err := s.UpdateAccountBalance(ctx, acct.Name, current, projected); err != nil {
			return err
		}
	}
	return nil
}

func directed(deltas []Delta, dir Direction) []Delta {
	if dir == DirApply {
		return deltas
	}
	out := make([]Delta, len(deltas))
	for i, d := range deltas {
		out[i] = Delta{Account: d.Account, Amount: d.Amount.Neg()}
	}
	return out
}

func accountNames(deltas []Delta) []string {
	names := make([]string, 0, len(deltas))
	seen := make(map[string]bool, len(deltas))
	for _, d := range deltas {
		if !seen[d.Account] {
			seen[d.Account] = true
			names = append(names, d.Account)
		}
	}
	return names
}

// =============================================================================
// PER-ACCOUNT LOCKS
// =============================================================================

// nameLocks is a lazily-populated lock table keyed by account name.
type nameLocks struct {
	mu   sync.Mutex
	held map[string]*sync.Mutex
}

// acquire locks every name in ascending order and returns the release
// function. Consistent ordering is the deadlock guard for two-account
// events.
func (nl *nameLocks) acquire(names []string) func() {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	locks := make([]*sync.Mutex, len(sorted))
	for i, name := range sorted {
		locks[i] = nl.lockFor(name)
	}
	for _, l := range locks {
		l.Lock()
	}
	return func() {
		// Release in reverse acquisition order.
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

func (nl *nameLocks) lockFor(name string) *sync.Mutex {
	nl.mu.Lock()
	defer nl.mu.Unlock()
	l, ok := nl.held[name]
	if !ok {
		l = &sync.Mutex{}
		nl.held[name] = l
	}
	return l
}
