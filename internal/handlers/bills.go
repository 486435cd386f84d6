package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"unitedbank/internal/middleware"
	"unitedbank/internal/money"
	"unitedbank/internal/services"

	"github.com/google/uuid"
)

type createBillerRequest struct {
	Category      string  `json:"category"`
	Name          string  `json:"name"`
	AccountNumber string  `json:"account_number"`
	Nickname      *string `json:"nickname"`
}

func (h *Handler) CreateBiller(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createBillerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" || req.AccountNumber == "" {
		respondError(w, http.StatusBadRequest, "name and account_number are required")
		return
	}
	billerID := uuid.NewString()
	if err := h.billers.Create(r.Context(), billerID, userID, req.Category, req.Name, req.AccountNumber, req.Nickname); err != nil {
		h.respondInternal(w, err, "unable to save biller")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": billerID})
}

func (h *Handler) ListBillers(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	billers, err := h.billers.ListByUser(r.Context(), userID)
	if err != nil {
		h.respondInternal(w, err, "unable to load billers")
		return
	}
	normalized := make([]map[string]any, 0, len(billers))
	for _, biller := range billers {
		normalized = append(normalized, map[string]any{
			"id":             biller.ID,
			"category":       biller.Category,
			"name":           biller.Name,
			"account_number": biller.AccountNumber,
			"nickname":       biller.Nickname,
			"created_at":     biller.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}

type payBillRequest struct {
	BillerID      string     `json:"biller_id"`
	FromAccountID string     `json:"from_account_id"`
	Amount        string     `json:"amount"`
	PaymentDate   *time.Time `json:"payment_date"`
	Memo          *string    `json:"memo"`
}

func (h *Handler) PayBill(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req payBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	result, err := h.bills.PayBill(r.Context(), services.PayBillRequest{
		UserID:        userID,
		BillerID:      req.BillerID,
		FromAccountID: req.FromAccountID,
		AmountMinor:   amountMinor,
		PaymentDate:   req.PaymentDate,
		Memo:          req.Memo,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{
		"payment_id":  result.PaymentID,
		"new_balance": money.FormatMinor(result.NewBalance),
	})
}

func (h *Handler) ListBillPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	payments, err := h.payments.ListByUser(r.Context(), userID, limit)
	if err != nil {
		h.respondInternal(w, err, "unable to load payments")
		return
	}
	normalized := make([]map[string]any, 0, len(payments))
	for _, payment := range payments {
		normalized = append(normalized, map[string]any{
			"id":              payment.ID,
			"biller_id":       payment.BillerID,
			"biller_name":     payment.BillerName,
			"category":        payment.Category,
			"from_account_id": payment.FromAccountID,
			"amount":          money.FormatMinor(payment.Amount),
			"status":          payment.Status,
			"memo":            payment.Memo,
			"created_at":      payment.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}
