/*
handlers.go - HTTP API handlers for the budget engine

PURPOSE:
  Exposes the ledger service via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Accounts:
    GET    /api/accounts               List all accounts
    POST   /api/accounts               Create account
    DELETE /api/accounts/{id}          Delete account (refused while referenced)

  Events:
    GET    /api/transactions           List transactions
    POST   /api/transactions           Create transaction (applies deltas)
    DELETE /api/transactions/{id}      Delete transaction (reverses deltas)
    GET    /api/transfers              Same pattern
    POST   /api/transfers
    DELETE /api/transfers/{id}
    GET    /api/credits
    POST   /api/credits
    DELETE /api/credits/{id}
    POST   /api/credits/{id}/payments  Book one monthly payment
    GET    /api/savings
    POST   /api/savings
    DELETE /api/savings/{id}
    POST   /api/savings/{id}/contributions  Fund a goal from an account

  Aggregates and state:
    GET    /api/summary                Net worth + top expense categories
    GET    /api/data                   Export all collections
    POST   /api/data                   Bulk load (bypasses propagation)
    DELETE /api/data                   Clear everything
    POST   /api/init                   Seed default accounts

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 409: Conflict (duplicate name, account in use, credit settled)
  - 422: Event references an unknown account
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - ledger/service.go: The operations these handlers call
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/warp/budget-engine/ledger"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	svc *ledger.Service
	log zerolog.Logger
}

// NewHandler creates a new handler backed by the given service.
func NewHandler(svc *ledger.Service, log zerolog.Logger) *Handler {
	return &Handler{
		svc: svc,
		log: log.With().Str("component", "api").Logger(),
	}
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// ListAccounts returns all accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list accounts", err)
		return
	}

	dtos := make([]AccountDTO, len(accounts))
	for i, a := range accounts {
		dtos[i] = toAccountDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAccount creates a new account.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	acct, err := h.svc.CreateAccount(r.Context(), ledger.AccountInput{
		Name:      req.Name,
		Current:   ledger.Money{Value: req.CurrentBalance},
		Projected: ledger.Money{Value: req.ProjectedBalance},
		Type:      req.Type,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to create account", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountDTO(acct))
}

// DeleteAccount removes an account unless events still reference it.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteAccount(r.Context(), id); err != nil {
		h.writeServiceError(w, "Failed to delete account", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// ListTransactions returns all transactions, most recent first.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.ListTransactions(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list transactions", err)
		return
	}
	ledger.SortEventsRecentFirst(txs)

	dtos := make([]TransactionDTO, len(txs))
	for i, t := range txs {
		dtos[i] = toTransactionDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTransaction records an income or expense and applies its delta.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	created, err := h.svc.CreateTransaction(r.Context(), ledger.TransactionInput{
		Date:        date,
		Amount:      ledger.Money{Value: req.Amount},
		Kind:        ledger.TransactionKind(req.Type),
		Category:    req.Category,
		Description: req.Description,
		Account:     req.Account,
		IsFixed:     req.IsFixed,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to create transaction", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(created))
}

// DeleteTransaction removes a transaction and reverses its delta.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteTransaction(r.Context(), id); err != nil {
		h.writeServiceError(w, "Failed to delete transaction", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TRANSFER HANDLERS
// =============================================================================

// ListTransfers returns all transfers, most recent first.
func (h *Handler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.svc.ListTransfers(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list transfers", err)
		return
	}
	ledger.SortTransfersRecentFirst(transfers)

	dtos := make([]TransferDTO, len(transfers))
	for i, t := range transfers {
		dtos[i] = toTransferDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTransfer moves money between two accounts atomically.
func (h *Handler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	created, err := h.svc.CreateTransfer(r.Context(), ledger.TransferInput{
		Date:        date,
		Amount:      ledger.Money{Value: req.Amount},
		FromAccount: req.FromAccount,
		ToAccount:   req.ToAccount,
		Description: req.Description,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to create transfer", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransferDTO(created))
}

// DeleteTransfer removes a transfer and reverses both sides.
func (h *Handler) DeleteTransfer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteTransfer(r.Context(), id); err != nil {
		h.writeServiceError(w, "Failed to delete transfer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CREDIT HANDLERS
// =============================================================================

// ListCredits returns all credits.
func (h *Handler) ListCredits(w http.ResponseWriter, r *http.Request) {
	credits, err := h.svc.ListCredits(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list credits", err)
		return
	}

	dtos := make([]CreditDTO, len(credits))
	for i, c := range credits {
		dtos[i] = toCreditDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCredit registers a loan; the proceeds land on the owning account.
func (h *Handler) CreateCredit(w http.ResponseWriter, r *http.Request) {
	var req CreateCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	startDate, err := ledger.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid startDate format (use YYYY-MM-DD)", err)
		return
	}

	created, err := h.svc.CreateCredit(r.Context(), ledger.CreditInput{
		Name:           req.Name,
		TotalAmount:    ledger.Money{Value: req.TotalAmount},
		MonthlyPayment: ledger.Money{Value: req.MonthlyPayment},
		InterestRate:   ledger.Money{Value: req.InterestRate},
		Account:        req.Account,
		StartDate:      startDate,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to create credit", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCreditDTO(created))
}

// DeleteCredit removes a credit and reverses the full principal, no matter
// how much has been paid off since.
func (h *Handler) DeleteCredit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteCredit(r.Context(), id); err != nil {
		h.writeServiceError(w, "Failed to delete credit", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordCreditPayment books one monthly payment against the payoff schedule.
func (h *Handler) RecordCreditPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	updated, err := h.svc.RecordCreditPayment(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "Failed to record payment", err)
		return
	}
	writeJSON(w, http.StatusOK, toCreditDTO(updated))
}

// =============================================================================
// SAVINGS GOAL HANDLERS
// =============================================================================

// ListSavingsGoals returns all savings goals.
func (h *Handler) ListSavingsGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.svc.ListSavingsGoals(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to list savings goals", err)
		return
	}

	dtos := make([]SavingsGoalDTO, len(goals))
	for i, g := range goals {
		dtos[i] = toSavingsGoalDTO(g)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateSavingsGoal earmarks money away from the spendable balance.
func (h *Handler) CreateSavingsGoal(w http.ResponseWriter, r *http.Request) {
	var req CreateSavingsGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	targetDate, err := ledger.ParseDate(req.TargetDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid targetDate format (use YYYY-MM-DD)", err)
		return
	}

	created, err := h.svc.CreateSavingsGoal(r.Context(), ledger.SavingsGoalInput{
		Name:          req.Name,
		TargetAmount:  ledger.Money{Value: req.TargetAmount},
		CurrentAmount: ledger.Money{Value: req.CurrentAmount},
		TargetDate:    targetDate,
		Account:       req.Account,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to create savings goal", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSavingsGoalDTO(created))
}

// DeleteSavingsGoal removes a goal and gives back the creation-time
// earmark. Later contributions are reversed by deleting their transfers.
func (h *Handler) DeleteSavingsGoal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteSavingsGoal(r.Context(), id); err != nil {
		h.writeServiceError(w, "Failed to delete savings goal", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Contribute funds a goal from another account via an ordinary transfer.
func (h *Handler) Contribute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ContributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	created, err := h.svc.Contribute(r.Context(), id, ledger.ContributionInput{
		FromAccount: req.FromAccount,
		Amount:      ledger.Money{Value: req.Amount},
		Date:        date,
		Description: req.Description,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to record contribution", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransferDTO(created))
}

// =============================================================================
// SUMMARY
// =============================================================================

// GetSummary returns net worth and the top expense categories.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to compute summary", err)
		return
	}
	txs, err := h.svc.ListTransactions(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to compute summary", err)
		return
	}

	current, projected := ledger.NetWorth(accounts)
	breakdown := ledger.CategoryBreakdown(txs, 5)

	categories := make([]CategorySummaryDTO, len(breakdown))
	for i, row := range breakdown {
		categories[i] = CategorySummaryDTO{
			Category: row.Category,
			Total:    row.Total.Value,
			Count:    row.Count,
			Percent:  row.Percent,
		}
	}

	writeJSON(w, http.StatusOK, SummaryDTO{
		NetWorth:          current.Value,
		ProjectedNetWorth: projected.Value,
		TopCategories:     categories,
		AccountCount:      len(accounts),
		TransactionCount:  len(txs),
	})
}

// =============================================================================
// BULK STATE
// =============================================================================

// ExportData returns every collection as one JSON document.
func (h *Handler) ExportData(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Export(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to export data", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// LoadData bulk-replaces collections from an external sync. Balances are
// loaded as-is; propagation does not re-run.
func (h *Handler) LoadData(w http.ResponseWriter, r *http.Request) {
	var snap ledger.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.svc.LoadData(r.Context(), snap); err != nil {
		h.writeServiceError(w, "Failed to load data", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearData empties every collection.
func (h *Handler) ClearData(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearData(r.Context()); err != nil {
		h.writeServiceError(w, "Failed to clear data", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// InitData seeds the default accounts when the store is empty.
func (h *Handler) InitData(w http.ResponseWriter, r *http.Request) {
	seeded, err := SeedDefaults(r.Context(), h.svc)
	if err != nil {
		h.writeServiceError(w, "Failed to seed accounts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"seeded": seeded})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps domain errors to HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, ledger.ErrAccountNotFound):
		writeError(w, http.StatusUnprocessableEntity, message, err)
	case errors.Is(err, ledger.ErrDuplicateAccountName),
		errors.Is(err, ledger.ErrAccountInUse),
		errors.Is(err, ledger.ErrCreditSettled):
		writeError(w, http.StatusConflict, message, err)
	default:
		h.log.Error().Err(err).Msg(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
