package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"unitedbank/internal/services"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondInternal logs the underlying error and answers with a generic 500.
// The detail never reaches the client.
func (h *Handler) respondInternal(w http.ResponseWriter, err error, message string) {
	h.logger.WithError(err).Error(message)
	respondError(w, http.StatusInternalServerError, message)
}

// respondServiceError maps service errors onto statuses. Ownership failures
// surface as not_found so the API never confirms that somebody else's
// account id exists.
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidAmount):
		respondError(w, http.StatusBadRequest, "invalid_amount")
	case errors.Is(err, services.ErrSameAccount):
		respondError(w, http.StatusBadRequest, "same_account")
	case errors.Is(err, services.ErrInsufficientFunds):
		respondError(w, http.StatusBadRequest, "insufficient_funds")
	case errors.Is(err, services.ErrInvalidTransferType):
		respondError(w, http.StatusBadRequest, "invalid_transfer_type")
	case errors.Is(err, services.ErrInvalidAdjustment):
		respondError(w, http.StatusBadRequest, "invalid_adjustment_type")
	case errors.Is(err, services.ErrSourceNotFound):
		respondError(w, http.StatusNotFound, "source_account_not_found")
	case errors.Is(err, services.ErrDestinationNotFound):
		respondError(w, http.StatusNotFound, "destination_account_not_found")
	case errors.Is(err, services.ErrRecipientNotFound):
		respondError(w, http.StatusNotFound, "recipient_not_found")
	case errors.Is(err, services.ErrNoActiveAccount):
		respondError(w, http.StatusNotFound, "recipient_has_no_active_account")
	case errors.Is(err, services.ErrRequestNotFound):
		respondError(w, http.StatusNotFound, "request_not_found")
	case errors.Is(err, services.ErrBillerNotFound):
		respondError(w, http.StatusNotFound, "biller_not_found")
	case errors.Is(err, services.ErrAccountNotFound):
		respondError(w, http.StatusNotFound, "account_not_found")
	case errors.Is(err, services.ErrTransferNotPending):
		respondError(w, http.StatusNotFound, "transaction_not_found")
	default:
		h.logger.WithError(err).Error("unexpected service error")
		respondError(w, http.StatusInternalServerError, "internal_error")
	}
}
