package handlers

import (
	"encoding/json"
	"net/http"

	"unitedbank/internal/middleware"
	"unitedbank/internal/money"
	"unitedbank/internal/services"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListPendingApprovals(w http.ResponseWriter, r *http.Request) {
	pending, err := h.txs.ListPendingApproval(r.Context())
	if err != nil {
		h.respondInternal(w, err, "unable to load pending transactions")
		return
	}
	normalized := make([]map[string]any, 0, len(pending))
	for _, tx := range pending {
		normalized = append(normalized, transactionPayload(tx))
	}
	respondJSON(w, http.StatusOK, normalized)
}

func (h *Handler) ApproveTransaction(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.admin.ApproveTransfer(r.Context(), adminID, chi.URLParam(r, "id")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (h *Handler) RejectTransaction(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.admin.RejectTransfer(r.Context(), adminID, chi.URLParam(r, "id")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

type adjustBalanceRequest struct {
	AccountID      string `json:"account_id"`
	AdjustmentType string `json:"adjustment_type"`
	Amount         string `json:"amount"`
	Reason         string `json:"reason"`
}

func (h *Handler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req adjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Reason == "" {
		respondError(w, http.StatusBadRequest, "reason is required")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	result, err := h.admin.AdjustBalance(r.Context(), services.AdjustBalanceRequest{
		AdminID:        adminID,
		AccountID:      req.AccountID,
		AdjustmentType: req.AdjustmentType,
		AmountMinor:    amountMinor,
		Reason:         req.Reason,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"adjustment_id":  result.AdjustmentID,
		"balance_before": money.FormatMinor(result.BalanceBefore),
		"balance_after":  money.FormatMinor(result.BalanceAfter),
	})
}

func (h *Handler) GetApprovalSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.All(r.Context())
	if err != nil {
		h.respondInternal(w, err, "unable to load settings")
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

type updateSettingsRequest struct {
	RequireAll          *bool   `json:"require_all_approvals"`
	TransferThreshold   *string `json:"transfer_threshold"`
	WithdrawalThreshold *string `json:"withdrawal_threshold"`
}

func (h *Handler) UpdateApprovalSettings(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	update := services.ApprovalSettingsUpdate{RequireAll: req.RequireAll}
	if req.TransferThreshold != nil {
		minor, err := parseAmountMinor(*req.TransferThreshold)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid transfer_threshold")
			return
		}
		update.TransferThreshold = &minor
	}
	if req.WithdrawalThreshold != nil {
		minor, err := parseAmountMinor(*req.WithdrawalThreshold)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid withdrawal_threshold")
			return
		}
		update.WithdrawalThreshold = &minor
	}
	if err := h.admin.UpdateApprovalSettings(r.Context(), adminID, update); err != nil {
		h.respondInternal(w, err, "unable to update settings")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) ListAdminActions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 20)
	offset := (page - 1) * limit
	actions, err := h.actions.List(r.Context(), limit, offset)
	if err != nil {
		h.respondInternal(w, err, "unable to load actions")
		return
	}
	normalized := make([]map[string]any, 0, len(actions))
	for _, action := range actions {
		normalized = append(normalized, map[string]any{
			"id":                action.ID,
			"admin_id":          action.AdminID,
			"action_type":       action.ActionType,
			"description":       action.Description,
			"metadata":          json.RawMessage(action.Metadata),
			"target_user_id":    action.TargetUserID,
			"target_account_id": action.TargetAccountID,
			"created_at":        action.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}
