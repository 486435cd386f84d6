package handlers

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"
	"time"

	"unitedbank/internal/middleware"
	"unitedbank/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const cardValidityYears = 3

func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	cards, err := h.cards.ListByUser(r.Context(), userID)
	if err != nil {
		h.respondInternal(w, err, "unable to load cards")
		return
	}
	normalized := make([]map[string]any, 0, len(cards))
	for _, card := range cards {
		normalized = append(normalized, cardPayload(card))
	}
	respondJSON(w, http.StatusOK, normalized)
}

type requestCardRequest struct {
	CardType        string `json:"card_type"`
	LinkedAccountID string `json:"linked_account_id"`
	Design          string `json:"design"`
}

func (h *Handler) RequestCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req requestCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.CardType != "debit" && req.CardType != "credit" {
		respondError(w, http.StatusBadRequest, "invalid card type")
		return
	}
	account, err := h.accounts.GetByID(r.Context(), req.LinkedAccountID)
	if err != nil || account.UserID != userID {
		respondError(w, http.StatusNotFound, "account_not_found")
		return
	}
	card := store.CardInput{
		ID:              uuid.NewString(),
		UserID:          userID,
		LinkedAccountID: account.ID,
		CardNumber:      generateCardNumber(),
		CardType:        req.CardType,
		Design:          cardDesign(req.Design),
		ExpiryDate:      time.Now().UTC().AddDate(cardValidityYears, 0, 0),
		CVV:             generateCVV(),
	}
	if err := h.cards.Create(r.Context(), card); err != nil {
		h.respondInternal(w, err, "unable to create card")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"id":                card.ID,
		"linked_account_id": card.LinkedAccountID,
		"card_number":       card.CardNumber,
		"card_type":         card.CardType,
		"design":            card.Design,
		"status":            "active",
		"expiry_date":       card.ExpiryDate,
	})
}

type updateCardStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateCardStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req updateCardStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Status != "active" && req.Status != "blocked" {
		respondError(w, http.StatusBadRequest, "invalid status")
		return
	}
	rows, err := h.cards.UpdateStatus(r.Context(), chi.URLParam(r, "id"), userID, req.Status)
	if err != nil {
		h.respondInternal(w, err, "unable to update card status")
		return
	}
	if rows == 0 {
		respondError(w, http.StatusNotFound, "card_not_found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

func cardPayload(card store.Card) map[string]any {
	return map[string]any{
		"id":                card.ID,
		"linked_account_id": card.LinkedAccountID,
		"card_number":       card.CardNumber,
		"card_type":         card.CardType,
		"design":            card.Design,
		"status":            card.Status,
		"expiry_date":       card.ExpiryDate,
		"created_at":        card.CreatedAt,
	}
}

func cardDesign(design string) string {
	if design == "" {
		return "classic"
	}
	return design
}

func generateCardNumber() string {
	return randomDigits(16)
}

func generateCVV() string {
	return randomDigits(3)
}

func randomDigits(length int) string {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			n = big.NewInt(int64(i % 10))
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits)
}
