/*
factory.go - Event factories

PURPOSE:
  Turns raw user input into valid event records with derived fields
  populated. All validation happens here, before anything is persisted or
  propagated — a factory error never leaves partial state behind.

SIGN CONVENTION:
  The signed transaction amount is the single source of truth. Callers may
  supply either a signed amount with no kind, or an unsigned magnitude with
  an explicit kind; the factory normalizes both to a signed amount. A
  signed amount that contradicts an explicitly supplied kind is rejected
  rather than silently reinterpreted.

DERIVED CREDIT FIELDS:
  remainingMonths = ceil(totalAmount / monthlyPayment)
  endDate         = startDate + remainingMonths months
  remainingAmount = totalAmount
*/
package ledger

// =============================================================================
// INPUTS
// =============================================================================

type AccountInput struct {
	Name      string
	Current   Money
	Projected Money
	Type      string
}

type TransactionInput struct {
	Date        Date
	Amount      Money
	Kind        TransactionKind // optional; derived from sign when empty
	Category    string
	Description string
	Account     string
	IsFixed     bool
}

type TransferInput struct {
	Date        Date
	Amount      Money
	FromAccount string
	ToAccount   string
	Description string
}

type CreditInput struct {
	Name           string
	TotalAmount    Money
	MonthlyPayment Money
	InterestRate   Money
	Account        string
	StartDate      Date
}

type SavingsGoalInput struct {
	Name          string
	TargetAmount  Money
	CurrentAmount Money
	TargetDate    Date
	Account       string
}

// =============================================================================
// FACTORIES
// =============================================================================

// NewAccount validates account input. Balances default to zero and may be
// negative; there is no overdraft protection at this layer.
func NewAccount(in AccountInput) (Account, error) {
	if in.Name == "" {
		return Account{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return Account{
		Name:      in.Name,
		Current:   in.Current,
		Projected: in.Projected,
		Type:      in.Type,
	}, nil
}

// NewTransaction validates and normalizes a transaction.
func NewTransaction(in TransactionInput) (Transaction, error) {
	if in.Account == "" {
		return Transaction{}, &ValidationError{Field: "account", Reason: "must not be empty"}
	}
	if in.Category == "" {
		return Transaction{}, &ValidationError{Field: "category", Reason: "must not be empty"}
	}
	if in.Date.IsZero() {
		return Transaction{}, &ValidationError{Field: "date", Reason: "must be set"}
	}
	if in.Amount.IsZero() {
		return Transaction{}, &ValidationError{Field: "amount", Reason: "must not be zero"}
	}

	amount := in.Amount
	switch in.Kind {
	case "":
		// Signed amount is authoritative; kind follows from the sign.
	case KindIncome:
		if amount.IsNegative() {
			return Transaction{}, &ValidationError{Field: "amount", Reason: "negative amount contradicts income kind"}
		}
	case KindExpense:
		if amount.IsPositive() {
			amount = amount.Neg() // unsigned magnitude + explicit kind
		}
	default:
		return Transaction{}, &ValidationError{Field: "kind", Reason: "must be income or expense"}
	}

	return Transaction{
		Date:        in.Date,
		Amount:      amount,
		Category:    in.Category,
		Description: in.Description,
		Account:     in.Account,
		IsFixed:     in.IsFixed,
	}, nil
}

// NewTransfer validates a transfer.
func NewTransfer(in TransferInput) (Transfer, error) {
	if in.FromAccount == "" {
		return Transfer{}, &ValidationError{Field: "fromAccount", Reason: "must not be empty"}
	}
	if in.ToAccount == "" {
		return Transfer{}, &ValidationError{Field: "toAccount", Reason: "must not be empty"}
	}
	if in.FromAccount == in.ToAccount {
		return Transfer{}, &ValidationError{Field: "toAccount", Reason: "must differ from fromAccount"}
	}
	if !in.Amount.IsPositive() {
		return Transfer{}, &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if in.Date.IsZero() {
		return Transfer{}, &ValidationError{Field: "date", Reason: "must be set"}
	}
	return Transfer{
		Date:        in.Date,
		Amount:      in.Amount,
		FromAccount: in.FromAccount,
		ToAccount:   in.ToAccount,
		Description: in.Description,
	}, nil
}

// NewCredit validates a credit and derives its payoff schedule.
func NewCredit(in CreditInput) (Credit, error) {
	if in.Name == "" {
		return Credit{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if in.Account == "" {
		return Credit{}, &ValidationError{Field: "account", Reason: "must not be empty"}
	}
	if !in.TotalAmount.IsPositive() {
		return Credit{}, &ValidationError{Field: "totalAmount", Reason: "must be positive"}
	}
	if !in.MonthlyPayment.IsPositive() {
		return Credit{}, &ValidationError{Field: "monthlyPayment", Reason: "must be positive"}
	}
	if in.InterestRate.IsNegative() {
		return Credit{}, &ValidationError{Field: "interestRate", Reason: "must not be negative"}
	}
	if in.StartDate.IsZero() {
		return Credit{}, &ValidationError{Field: "startDate", Reason: "must be set"}
	}

	months := in.TotalAmount.DivCeil(in.MonthlyPayment)

	return Credit{
		Name:            in.Name,
		TotalAmount:     in.TotalAmount,
		MonthlyPayment:  in.MonthlyPayment,
		RemainingMonths: months,
		InterestRate:    in.InterestRate,
		Account:         in.Account,
		StartDate:       in.StartDate,
		EndDate:         in.StartDate.AddMonths(months),
		RemainingAmount: in.TotalAmount,
	}, nil
}

// NewSavingsGoal validates a savings goal. CurrentAmount defaults to zero
// and may not exceed the target at creation.
func NewSavingsGoal(in SavingsGoalInput) (SavingsGoal, error) {
	if in.Name == "" {
		return SavingsGoal{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if in.Account == "" {
		return SavingsGoal{}, &ValidationError{Field: "account", Reason: "must not be empty"}
	}
	if !in.TargetAmount.IsPositive() {
		return SavingsGoal{}, &ValidationError{Field: "targetAmount", Reason: "must be positive"}
	}
	if in.CurrentAmount.IsNegative() {
		return SavingsGoal{}, &ValidationError{Field: "currentAmount", Reason: "must not be negative"}
	}
	if in.CurrentAmount.GreaterThan(in.TargetAmount) {
		return SavingsGoal{}, &ValidationError{Field: "currentAmount", Reason: "must not exceed targetAmount"}
	}
	if in.TargetDate.IsZero() {
		return SavingsGoal{}, &ValidationError{Field: "targetDate", Reason: "must be set"}
	}
	return SavingsGoal{
		Name:          in.Name,
		TargetAmount:  in.TargetAmount,
		CurrentAmount: in.CurrentAmount,
		InitialAmount: in.CurrentAmount,
		TargetDate:    in.TargetDate,
		Account:       in.Account,
	}, nil
}
