package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"unitedbank/internal/middleware"
	"unitedbank/internal/store"

	"github.com/go-chi/chi/v5"
)

func TestRequestCardRejectsUnknownType(t *testing.T) {
	handler := newTestHandler(handlerDeps{})

	body := []byte(`{"card_type":"prepaid","linked_account_id":"a1"}`)
	req := httptest.NewRequest(http.MethodPost, "/cards", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "user-1", "u1@example.com", "customer"))
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(http.HandlerFunc(handler.RequestCard)).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestRequestCardRequiresOwnedAccount(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		accounts: stubAccountStore{
			getByIDFn: func(_ context.Context, accountID string) (store.Account, error) {
				return store.Account{ID: accountID, UserID: "someone-else"}, nil
			},
		},
	})

	body := []byte(`{"card_type":"debit","linked_account_id":"a1"}`)
	req := httptest.NewRequest(http.MethodPost, "/cards", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "user-1", "u1@example.com", "customer"))
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(http.HandlerFunc(handler.RequestCard)).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestRequestCardSuccess(t *testing.T) {
	var created store.CardInput
	handler := newTestHandler(handlerDeps{
		accounts: stubAccountStore{
			getByIDFn: func(_ context.Context, accountID string) (store.Account, error) {
				return store.Account{ID: accountID, UserID: "user-1", Status: "active"}, nil
			},
		},
		cards: stubCardStore{
			createFn: func(_ context.Context, input store.CardInput) error {
				created = input
				return nil
			},
		},
	})

	body := []byte(`{"card_type":"credit","linked_account_id":"a1"}`)
	req := httptest.NewRequest(http.MethodPost, "/cards", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "user-1", "u1@example.com", "customer"))
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(http.HandlerFunc(handler.RequestCard)).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(created.CardNumber) != 16 {
		t.Fatalf("expected a 16 digit card number, got %q", created.CardNumber)
	}
	if len(created.CVV) != 3 {
		t.Fatalf("expected a 3 digit cvv, got %q", created.CVV)
	}
	if created.Design != "classic" {
		t.Fatalf("expected default classic design, got %q", created.Design)
	}
	if created.CardType != "credit" {
		t.Fatalf("expected credit card, got %q", created.CardType)
	}
	minExpiry := time.Now().UTC().AddDate(3, 0, -1)
	if created.ExpiryDate.Before(minExpiry) {
		t.Fatalf("expected expiry about 3 years out, got %v", created.ExpiryDate)
	}
	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["status"] != "active" {
		t.Fatalf("new cards must start active, got %v", resp["status"])
	}
}

func TestListCardsOmitsCVV(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		cards: stubCardStore{
			listByUserFn: func(_ context.Context, userID string) ([]store.Card, error) {
				return []store.Card{{
					ID:         "card-1",
					UserID:     userID,
					CardNumber: "4000123412341234",
					CardType:   "debit",
					Status:     "active",
					CVV:        "123",
				}}, nil
			},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/cards", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "user-1", "u1@example.com", "customer"))
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(http.HandlerFunc(handler.ListCards)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("expected one card, got %d", len(resp))
	}
	if _, ok := resp[0]["cvv"]; ok {
		t.Fatal("card listing must not include the cvv")
	}
}

func TestUpdateCardStatusRejectsUnknownStatus(t *testing.T) {
	handler := newTestHandler(handlerDeps{})

	router := chi.NewRouter()
	router.With(middleware.Auth("secret")).Patch("/cards/{id}/status", handler.UpdateCardStatus)

	body := []byte(`{"status":"melted"}`)
	req := httptest.NewRequest(http.MethodPatch, "/cards/card-1/status", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "user-1", "u1@example.com", "customer"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestUpdateCardStatusHidesOtherUsersCards(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		cards: stubCardStore{
			updateStatusFn: func(_ context.Context, cardID, userID, status string) (int64, error) {
				if cardID != "card-1" || userID != "user-1" || status != "blocked" {
					t.Fatalf("unexpected update: %s %s %s", cardID, userID, status)
				}
				return 0, nil
			},
		},
	})

	router := chi.NewRouter()
	router.With(middleware.Auth("secret")).Patch("/cards/{id}/status", handler.UpdateCardStatus)

	body := []byte(`{"status":"blocked"}`)
	req := httptest.NewRequest(http.MethodPatch, "/cards/card-1/status", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "user-1", "u1@example.com", "customer"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestUpdateCardStatusBlocksCard(t *testing.T) {
	handler := newTestHandler(handlerDeps{})

	router := chi.NewRouter()
	router.With(middleware.Auth("secret")).Patch("/cards/{id}/status", handler.UpdateCardStatus)

	body := []byte(`{"status":"blocked"}`)
	req := httptest.NewRequest(http.MethodPatch, "/cards/card-1/status", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "user-1", "u1@example.com", "customer"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["status"] != "blocked" {
		t.Fatalf("expected blocked, got %v", resp["status"])
	}
}
