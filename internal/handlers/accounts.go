package handlers

import (
	"encoding/json"
	"net/http"

	"unitedbank/internal/middleware"
	"unitedbank/internal/money"
	"unitedbank/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accounts, err := h.accounts.ListByUser(r.Context(), userID)
	if err != nil {
		h.respondInternal(w, err, "unable to load accounts")
		return
	}
	normalized := make([]map[string]any, 0, len(accounts))
	for _, account := range accounts {
		normalized = append(normalized, accountPayload(account))
	}
	respondJSON(w, http.StatusOK, normalized)
}

type createAccountRequest struct {
	AccountType string `json:"account_type"`
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	rate, ok := defaultInterestRates[req.AccountType]
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid account type")
		return
	}
	accountID := uuid.NewString()
	accountNumber := generateAccountNumber()
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.accounts.Create(r.Context(), tx, store.AccountInput{
			ID:            accountID,
			UserID:        userID,
			AccountNumber: accountNumber,
			AccountType:   req.AccountType,
			Balance:       0,
			InterestRate:  rate,
		})
	})
	if err != nil {
		h.respondInternal(w, err, "unable to create account")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{
		"id":             accountID,
		"account_number": accountNumber,
		"account_type":   req.AccountType,
		"interest_rate":  rate,
	})
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := h.ownedAccount(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, accountPayload(account))
}

func (h *Handler) AccountTransactions(w http.ResponseWriter, r *http.Request) {
	account, ok := h.ownedAccount(w, r)
	if !ok {
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	transactions, err := h.txs.ListByAccount(r.Context(), account.ID, limit)
	if err != nil {
		h.respondInternal(w, err, "unable to load transactions")
		return
	}
	normalized := make([]map[string]any, 0, len(transactions))
	for _, tx := range transactions {
		normalized = append(normalized, transactionPayload(tx))
	}
	respondJSON(w, http.StatusOK, normalized)
}

func (h *Handler) CloseAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accountID := chi.URLParam(r, "id")
	var closed int64
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		rows, err := h.accounts.Close(r.Context(), tx, accountID, userID)
		if err != nil {
			return err
		}
		closed = rows
		return nil
	})
	if err != nil {
		h.respondInternal(w, err, "unable to close account")
		return
	}
	if closed == 0 {
		respondError(w, http.StatusBadRequest, "account must exist, belong to you, and have a zero balance")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

// ownedAccount loads the account in the URL and enforces ownership. Accounts
// owned by someone else report not_found rather than forbidden.
func (h *Handler) ownedAccount(w http.ResponseWriter, r *http.Request) (store.Account, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return store.Account{}, false
	}
	accountID := chi.URLParam(r, "id")
	account, err := h.accounts.GetByID(r.Context(), accountID)
	if err != nil || account.UserID != userID {
		respondError(w, http.StatusNotFound, "account_not_found")
		return store.Account{}, false
	}
	return account, true
}

func accountPayload(account store.Account) map[string]any {
	return map[string]any{
		"id":                 account.ID,
		"account_number":     account.AccountNumber,
		"account_type":       account.AccountType,
		"balance":            money.FormatMinor(account.Balance),
		"status":             account.Status,
		"interest_rate":      account.InterestRate,
		"projected_interest": projectedInterest(account.Balance, account.InterestRate),
		"created_at":         account.CreatedAt,
	}
}

// projectedInterest is the annual interest on the current balance, quoted in
// dollars. Display only; nothing is credited from this figure.
func projectedInterest(balanceMinor int64, rate string) string {
	parsed, err := decimal.NewFromString(rate)
	if err != nil {
		return "0.00"
	}
	interestMinor := decimal.NewFromInt(balanceMinor).Mul(parsed).RoundBank(0).IntPart()
	return money.FormatMinor(interestMinor)
}

func transactionPayload(tx store.Transaction) map[string]any {
	return map[string]any{
		"id":                 tx.ID,
		"account_id":         tx.AccountID,
		"type":               tx.Type,
		"amount":             money.FormatMinor(tx.Amount),
		"description":        tx.Description,
		"related_account_id": tx.RelatedAccountID,
		"balance_after":      money.FormatMinor(tx.BalanceAfter),
		"approval_status":    tx.ApprovalStatus,
		"created_at":         tx.CreatedAt,
	}
}
