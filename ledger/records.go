/*
records.go - Event records and their balance-delta algebra

PURPOSE:
  Defines the five record kinds owned by the store (one account kind, four
  event kinds) and, on each event, BalanceDeltas(): the signed per-account
  deltas the event applied when it was created.

THE REVERSAL CONTRACT:
  BalanceDeltas() is computed ONLY from fields captured at creation time.
  A credit always reports TotalAmount (never RemainingAmount, which drifts
  as payments are recorded); a savings goal always reports InitialAmount
  (never CurrentAmount, which drifts as contributions arrive). The engine
  negates these same deltas on deletion, so create-then-delete is an exact
  no-op on every affected balance.

SEE ALSO:
  - engine.go: Applies and reverses these deltas
  - factory.go: Validates input and populates derived fields
*/
package ledger

import "time"

// TransactionKind labels the direction of a transaction. It is derived from
// the signed amount, never stored redundantly.
type TransactionKind string

const (
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

// =============================================================================
// ACCOUNT
// =============================================================================

// Account holds a current and a projected balance. Names are unique within
// a store: events reference their account by name, so the name is the join
// key the propagation engine resolves through FindAccountByName.
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Current   Money     `json:"currentBalance"`
	Projected Money     `json:"projectedBalance"`
	Type      string    `json:"type,omitempty"` // free-form label ("Compte courant", "Livret A", ...)
	CreatedAt time.Time `json:"createdAt"`
}

// =============================================================================
// EVENTS
// =============================================================================

// Delta is one signed balance change against one named account. Both the
// current and projected balance move by Amount.
type Delta struct {
	Account string
	Amount  Money
}

// Event is any record whose creation moved account balances. BalanceDeltas
// must be a pure function of creation-time fields.
type Event interface {
	EventID() string
	BalanceDeltas() []Delta
}

// Transaction is a single income or expense. Amount is signed and is the
// single source of truth: positive means income, negative means expense.
type Transaction struct {
	ID          string    `json:"id"`
	Date        Date      `json:"date"`
	Amount      Money     `json:"amount"` // signed
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Account     string    `json:"account"` // account name
	IsFixed     bool      `json:"isFixed"` // recurring vs one-off; informational only
	CreatedAt   time.Time `json:"createdAt"`
}

func (t Transaction) EventID() string { return t.ID }

func (t Transaction) Kind() TransactionKind {
	if t.Amount.IsNegative() {
		return KindExpense
	}
	return KindIncome
}

// Magnitude returns the unsigned amount for display.
func (t Transaction) Magnitude() Money { return t.Amount.Abs() }

func (t Transaction) BalanceDeltas() []Delta {
	return []Delta{{Account: t.Account, Amount: t.Amount}}
}

// Transfer moves Amount (always positive) between two accounts. Both sides
// must apply together or not at all.
type Transfer struct {
	ID          string    `json:"id"`
	Date        Date      `json:"date"`
	Amount      Money     `json:"amount"`
	FromAccount string    `json:"fromAccount"`
	ToAccount   string    `json:"toAccount"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (t Transfer) EventID() string { return t.ID }

func (t Transfer) BalanceDeltas() []Delta {
	return []Delta{
		{Account: t.FromAccount, Amount: t.Amount.Neg()},
		{Account: t.ToAccount, Amount: t.Amount},
	}
}

// Credit is an installment loan. Creation models the loan proceeds landing
// on the owning account; RemainingAmount and RemainingMonths track the
// payoff schedule and never participate in propagation.
type Credit struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	TotalAmount     Money     `json:"totalAmount"` // original principal, positive
	MonthlyPayment  Money     `json:"monthlyPayment"`
	RemainingMonths int       `json:"remainingMonths"`
	InterestRate    Money     `json:"interestRate"` // percentage, informational
	Account         string    `json:"account"`
	StartDate       Date      `json:"startDate"`
	EndDate         Date      `json:"endDate"`
	RemainingAmount Money     `json:"remainingAmount"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (c Credit) EventID() string { return c.ID }

// Paid returns the amount already paid off.
func (c Credit) Paid() Money { return c.TotalAmount.Sub(c.RemainingAmount) }

func (c Credit) BalanceDeltas() []Delta {
	return []Delta{{Account: c.Account, Amount: c.TotalAmount}}
}

// SavingsGoal earmarks money away from the spendable balance. InitialAmount
// is the amount locked at creation and is what deletion gives back;
// CurrentAmount additionally grows with contributions (which move money via
// ordinary transfers and are therefore reversed by deleting those transfers).
type SavingsGoal struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	TargetAmount  Money     `json:"targetAmount"`
	CurrentAmount Money     `json:"currentAmount"`
	InitialAmount Money     `json:"initialAmount"`
	TargetDate    Date      `json:"targetDate"`
	Account       string    `json:"account"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (g SavingsGoal) EventID() string { return g.ID }

func (g SavingsGoal) BalanceDeltas() []Delta {
	return []Delta{{Account: g.Account, Amount: g.InitialAmount.Neg()}}
}
