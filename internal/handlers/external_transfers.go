package handlers

import (
	"encoding/json"
	"net/http"

	"unitedbank/internal/middleware"
	"unitedbank/internal/money"
	"unitedbank/internal/services"
	"unitedbank/internal/store"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListExternalTransfers(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	transfers, err := h.externals.ListByUser(r.Context(), userID)
	if err != nil {
		h.respondInternal(w, err, "unable to load transfers")
		return
	}
	normalized := make([]map[string]any, 0, len(transfers))
	for _, transfer := range transfers {
		normalized = append(normalized, map[string]any{
			"id":                   transfer.ID,
			"account_id":           transfer.AccountID,
			"transfer_type":        transfer.TransferType,
			"direction":            transfer.Direction,
			"amount":               money.FormatMinor(transfer.Amount),
			"recipient_name":       transfer.RecipientName,
			"recipient_identifier": transfer.RecipientIdentifier,
			"bank_name":            transfer.BankName,
			"status":               transfer.Status,
			"description":          transfer.Description,
			"created_at":           transfer.CreatedAt,
			"completed_at":         transfer.CompletedAt,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}

type sendToUserRequest struct {
	FromAccountID  string `json:"from_account_id"`
	RecipientEmail string `json:"recipient_email"`
	Amount         string `json:"amount"`
	Description    string `json:"description"`
}

func (h *Handler) SendToUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req sendToUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	result, err := h.external.SendToUser(r.Context(), services.SendToUserRequest{
		UserID:         identity.UserID,
		UserEmail:      identity.Email,
		FromAccountID:  req.FromAccountID,
		RecipientEmail: req.RecipientEmail,
		AmountMinor:    amountMinor,
		Description:    req.Description,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"transfer_id":    result.TransferID,
		"recipient_name": result.RecipientName,
		"new_balance":    money.FormatMinor(result.NewFromBalance),
	})
}

type sendToBankRequest struct {
	FromAccountID     string `json:"from_account_id"`
	TransferType      string `json:"transfer_type"`
	BankName          string `json:"bank_name"`
	AccountNumber     string `json:"account_number"`
	RoutingNumber     string `json:"routing_number"`
	AccountHolderName string `json:"account_holder_name"`
	Amount            string `json:"amount"`
	Description       string `json:"description"`
}

func (h *Handler) SendToBank(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req sendToBankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.BankName == "" || req.AccountNumber == "" || req.RoutingNumber == "" {
		respondError(w, http.StatusBadRequest, "bank_name, account_number and routing_number are required")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	result, err := h.external.SendToBank(r.Context(), services.SendToBankRequest{
		UserID:            userID,
		FromAccountID:     req.FromAccountID,
		TransferType:      req.TransferType,
		BankName:          req.BankName,
		AccountNumber:     req.AccountNumber,
		RoutingNumber:     req.RoutingNumber,
		AccountHolderName: req.AccountHolderName,
		AmountMinor:       amountMinor,
		Description:       req.Description,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"transfer_id": result.TransferID,
		"status":      result.Status,
		"new_balance": money.FormatMinor(result.NewBalance),
	})
}

type requestMoneyRequest struct {
	ToAccountID string `json:"to_account_id"`
	PayerEmail  string `json:"payer_email"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

func (h *Handler) RequestMoney(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req requestMoneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	requestID, err := h.external.RequestMoney(r.Context(), services.RequestMoneyRequest{
		RequesterUserID: userID,
		ToAccountID:     req.ToAccountID,
		PayerEmail:      req.PayerEmail,
		AmountMinor:     amountMinor,
		Description:     req.Description,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"request_id": requestID})
}

func (h *Handler) ListTransferRequests(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	outgoing, err := h.requests.ListOutgoing(r.Context(), identity.UserID)
	if err != nil {
		h.respondInternal(w, err, "unable to load requests")
		return
	}
	incoming, err := h.requests.ListIncoming(r.Context(), identity.Email)
	if err != nil {
		h.respondInternal(w, err, "unable to load requests")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"outgoing": requestPayloads(outgoing),
		"incoming": requestPayloads(incoming),
	})
}

func requestPayloads(requests []store.TransferRequest) []map[string]any {
	normalized := make([]map[string]any, 0, len(requests))
	for _, request := range requests {
		normalized = append(normalized, map[string]any{
			"id":          request.ID,
			"payer_email": request.PayerEmail,
			"amount":      money.FormatMinor(request.Amount),
			"description": request.Description,
			"status":      request.Status,
			"created_at":  request.CreatedAt,
			"paid_at":     request.PaidAt,
		})
	}
	return normalized
}

type payRequestRequest struct {
	FromAccountID string `json:"from_account_id"`
}

func (h *Handler) PayTransferRequest(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req payRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.FromAccountID == "" {
		respondError(w, http.StatusBadRequest, "from_account_id is required")
		return
	}
	newBalance, err := h.external.PayRequest(r.Context(), services.PayRequestInput{
		RequestID:     chi.URLParam(r, "id"),
		PayerUserID:   identity.UserID,
		PayerEmail:    identity.Email,
		FromAccountID: req.FromAccountID,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":      "paid",
		"new_balance": money.FormatMinor(newBalance),
	})
}

func (h *Handler) DeclineTransferRequest(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.external.DeclineRequest(r.Context(), chi.URLParam(r, "id"), identity.Email); err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "declined"})
}
