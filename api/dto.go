/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY FIELDS:
  All money fields are decimal.Decimal. They marshal as quoted decimal
  strings and unmarshal from both quoted strings and bare JSON numbers,
  so clients can send either without losing precision.

VALIDATION:
  Validation is done in the ledger factories, not in DTOs. DTOs are pure
  data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/factory.go: Input validation
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/ledger"
)

// =============================================================================
// ACCOUNTS
// =============================================================================

// AccountDTO represents an account in API responses.
type AccountDTO struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	ProjectedBalance decimal.Decimal `json:"projectedBalance"`
	Type             string          `json:"type,omitempty"`
	CreatedAt        string          `json:"createdAt,omitempty"`
}

// CreateAccountRequest is the request to create an account.
type CreateAccountRequest struct {
	Name             string          `json:"name"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	ProjectedBalance decimal.Decimal `json:"projectedBalance"`
	Type             string          `json:"type"`
}

func toAccountDTO(a ledger.Account) AccountDTO {
	return AccountDTO{
		ID:               a.ID,
		Name:             a.Name,
		CurrentBalance:   a.Current.Value,
		ProjectedBalance: a.Projected.Value,
		Type:             a.Type,
		CreatedAt:        a.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// TransactionDTO represents a transaction in API responses. Amount is
// signed; type is derived from the sign.
type TransactionDTO struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Account     string          `json:"account"`
	IsFixed     bool            `json:"isFixed"`
	CreatedAt   string          `json:"createdAt,omitempty"`
}

// CreateTransactionRequest is the request to create a transaction. Type is
// optional; when present it must agree with (or sets) the amount's sign.
type CreateTransactionRequest struct {
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Account     string          `json:"account"`
	IsFixed     bool            `json:"isFixed"`
}

func toTransactionDTO(t ledger.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:          t.ID,
		Date:        t.Date.String(),
		Amount:      t.Amount.Value,
		Type:        string(t.Kind()),
		Category:    t.Category,
		Description: t.Description,
		Account:     t.Account,
		IsFixed:     t.IsFixed,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// TRANSFERS
// =============================================================================

// TransferDTO represents a transfer in API responses.
type TransferDTO struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	FromAccount string          `json:"fromAccount"`
	ToAccount   string          `json:"toAccount"`
	Description string          `json:"description,omitempty"`
	CreatedAt   string          `json:"createdAt,omitempty"`
}

// CreateTransferRequest is the request to create a transfer.
type CreateTransferRequest struct {
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	FromAccount string          `json:"fromAccount"`
	ToAccount   string          `json:"toAccount"`
	Description string          `json:"description"`
}

func toTransferDTO(t ledger.Transfer) TransferDTO {
	return TransferDTO{
		ID:          t.ID,
		Date:        t.Date.String(),
		Amount:      t.Amount.Value,
		FromAccount: t.FromAccount,
		ToAccount:   t.ToAccount,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// CREDITS
// =============================================================================

// CreditDTO represents a credit in API responses. Progress is the percent
// of the principal already paid off.
type CreditDTO struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	MonthlyPayment  decimal.Decimal `json:"monthlyPayment"`
	RemainingMonths int             `json:"remainingMonths"`
	InterestRate    decimal.Decimal `json:"interestRate"`
	Account         string          `json:"account"`
	StartDate       string          `json:"startDate"`
	EndDate         string          `json:"endDate"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	Progress        decimal.Decimal `json:"progress"`
	CreatedAt       string          `json:"createdAt,omitempty"`
}

// CreateCreditRequest is the request to create a credit. End date and the
// payoff schedule are derived server-side.
type CreateCreditRequest struct {
	Name           string          `json:"name"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	Account        string          `json:"account"`
	StartDate      string          `json:"startDate"`
}

func toCreditDTO(c ledger.Credit) CreditDTO {
	return CreditDTO{
		ID:              c.ID,
		Name:            c.Name,
		TotalAmount:     c.TotalAmount.Value,
		MonthlyPayment:  c.MonthlyPayment.Value,
		RemainingMonths: c.RemainingMonths,
		InterestRate:    c.InterestRate.Value,
		Account:         c.Account,
		StartDate:       c.StartDate.String(),
		EndDate:         c.EndDate.String(),
		RemainingAmount: c.RemainingAmount.Value,
		Progress:        ledger.ClampPercent(ledger.CreditProgress(c)),
		CreatedAt:       c.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// SAVINGS GOALS
// =============================================================================

// SavingsGoalDTO represents a savings goal in API responses. DaysRemaining
// is negative once the target date has passed.
type SavingsGoalDTO struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	TargetDate    string          `json:"targetDate"`
	Account       string          `json:"account"`
	Progress      decimal.Decimal `json:"progress"`
	DaysRemaining int             `json:"daysRemaining"`
	CreatedAt     string          `json:"createdAt,omitempty"`
}

// CreateSavingsGoalRequest is the request to create a savings goal.
// CurrentAmount is the amount earmarked immediately at creation.
type CreateSavingsGoalRequest struct {
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	TargetDate    string          `json:"targetDate"`
	Account       string          `json:"account"`
}

// ContributeRequest funds an existing goal from another account.
type ContributeRequest struct {
	FromAccount string          `json:"fromAccount"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
}

func toSavingsGoalDTO(g ledger.SavingsGoal) SavingsGoalDTO {
	return SavingsGoalDTO{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount.Value,
		CurrentAmount: g.CurrentAmount.Value,
		TargetDate:    g.TargetDate.String(),
		Account:       g.Account,
		Progress:      ledger.SavingsProgress(g),
		DaysRemaining: ledger.DaysRemaining(g.TargetDate, ledger.Today()),
		CreatedAt:     g.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// SUMMARY
// =============================================================================

// SummaryDTO is the dashboard aggregate: net worth plus the top expense
// categories of the current data set.
type SummaryDTO struct {
	NetWorth          decimal.Decimal      `json:"netWorth"`
	ProjectedNetWorth decimal.Decimal      `json:"projectedNetWorth"`
	TopCategories     []CategorySummaryDTO `json:"topCategories"`
	AccountCount      int                  `json:"accountCount"`
	TransactionCount  int                  `json:"transactionCount"`
}

// CategorySummaryDTO is one expense category's share of total spending.
type CategorySummaryDTO struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
	Percent  decimal.Decimal `json:"percent"`
}

// =============================================================================
// COMMON
// =============================================================================

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
