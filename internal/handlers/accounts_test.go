package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"unitedbank/internal/middleware"
	"unitedbank/internal/store"

	"github.com/go-chi/chi/v5"
)

func TestCreateAccountRejectsUnknownType(t *testing.T) {
	handler := newTestHandler(handlerDeps{})

	body := []byte(`{"account_type":"offshore"}`)
	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "user-1", "u1@example.com", "customer"))
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(http.HandlerFunc(handler.CreateAccount)).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGetAccountHidesOtherUsersAccounts(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		accounts: stubAccountStore{
			getByIDFn: func(_ context.Context, accountID string) (store.Account, error) {
				return store.Account{ID: accountID, UserID: "someone-else"}, nil
			},
		},
	})

	router := chi.NewRouter()
	router.With(middleware.Auth("secret")).Get("/accounts/{id}", handler.GetAccount)

	req := httptest.NewRequest(http.MethodGet, "/accounts/a1", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "user-1", "u1@example.com", "customer"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestGetAccountProjectsInterest(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		accounts: stubAccountStore{
			getByIDFn: func(_ context.Context, accountID string) (store.Account, error) {
				return store.Account{
					ID:           accountID,
					UserID:       "user-1",
					Balance:      1000000,
					Status:       "active",
					InterestRate: "0.0425",
				}, nil
			},
		},
	})

	router := chi.NewRouter()
	router.With(middleware.Auth("secret")).Get("/accounts/{id}", handler.GetAccount)

	req := httptest.NewRequest(http.MethodGet, "/accounts/a1", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "user-1", "u1@example.com", "customer"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["balance"] != "10000.00" {
		t.Fatalf("expected balance 10000.00, got %v", resp["balance"])
	}
	if resp["projected_interest"] != "425.00" {
		t.Fatalf("expected projected interest 425.00, got %v", resp["projected_interest"])
	}
}

func TestCloseAccountWithBalance(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		accounts: stubAccountStore{
			closeFn: func(context.Context, store.Execer, string, string) (int64, error) {
				return 0, nil
			},
		},
	})

	router := chi.NewRouter()
	router.With(middleware.Auth("secret")).Post("/accounts/{id}/close", handler.CloseAccount)

	req := httptest.NewRequest(http.MethodPost, "/accounts/a1/close", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "user-1", "u1@example.com", "customer"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
