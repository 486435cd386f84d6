package handlers

import (
	"encoding/json"
	"net/http"

	"unitedbank/internal/middleware"
	"unitedbank/internal/money"
	"unitedbank/internal/services"
)

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	transactions, err := h.txs.ListByUser(r.Context(), userID, limit)
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

type transferRequest struct {
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.FromAccountID == "" || req.ToAccountID == "" {
		respondError(w, http.StatusBadRequest, "from_account_id and to_account_id are required")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	result, err := h.transfers.Transfer(r.Context(), services.TransferRequest{
		UserID:        userID,
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		AmountMinor:   amountMinor,
		Description:   req.Description,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if result.Pending {
		respondJSON(w, http.StatusAccepted, map[string]any{
			"transaction_id": result.WithdrawalID,
			"status":         "pending_approval",
		})
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"transaction_id": result.WithdrawalID,
		"status":         "completed",
		"new_balance":    money.FormatMinor(result.NewFromBalance),
	})
}
