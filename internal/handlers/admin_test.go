package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"unitedbank/internal/middleware"
	"unitedbank/internal/services"
)

func adminChain(handler http.HandlerFunc) http.Handler {
	return middleware.Auth("secret")(middleware.RequireAdmin(handler))
}

func TestAdjustBalanceRequiresAdminRole(t *testing.T) {
	handler := newTestHandler(handlerDeps{})

	body := []byte(`{"account_id":"a1","adjustment_type":"credit","amount":"10.00","reason":"promo"}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/adjust-balance", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "user-1", "u1@example.com", "customer"))
	rr := httptest.NewRecorder()
	adminChain(handler.AdjustBalance).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestAdjustBalanceSuccess(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		admin: stubAdminService{
			adjustBalanceFn: func(_ context.Context, req services.AdjustBalanceRequest) (services.AdjustBalanceResult, error) {
				if req.AdminID != "admin-1" {
					t.Fatalf("expected admin-1, got %s", req.AdminID)
				}
				if req.AdjustmentType != "credit" || req.AmountMinor != 1000 {
					t.Fatalf("unexpected adjustment: %+v", req)
				}
				return services.AdjustBalanceResult{AdjustmentID: "adj-1", BalanceBefore: 500, BalanceAfter: 1500}, nil
			},
		},
	})

	body := []byte(`{"account_id":"a1","adjustment_type":"credit","amount":"10.00","reason":"promo"}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/adjust-balance", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "admin-1", "admin@example.com", "admin"))
	rr := httptest.NewRecorder()
	adminChain(handler.AdjustBalance).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["balance_before"] != "5.00" || resp["balance_after"] != "15.00" {
		t.Fatalf("unexpected balances: %v", resp)
	}
}

func TestAdjustBalanceRequiresReason(t *testing.T) {
	called := false
	handler := newTestHandler(handlerDeps{
		admin: stubAdminService{
			adjustBalanceFn: func(context.Context, services.AdjustBalanceRequest) (services.AdjustBalanceResult, error) {
				called = true
				return services.AdjustBalanceResult{}, nil
			},
		},
	})

	body := []byte(`{"account_id":"a1","adjustment_type":"credit","amount":"10.00"}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/adjust-balance", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "admin-1", "admin@example.com", "admin"))
	rr := httptest.NewRecorder()
	adminChain(handler.AdjustBalance).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if called {
		t.Fatal("service must not run without a reason")
	}
}

func TestApproveTransactionAlreadyProcessed(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		admin: stubAdminService{
			approveFn: func(context.Context, string, string) error {
				return services.ErrTransferNotPending
			},
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/admin/approvals/tx-1/approve", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "admin-1", "admin@example.com", "super_admin"))
	rr := httptest.NewRecorder()
	adminChain(handler.ApproveTransaction).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestUpdateApprovalSettingsParsesThresholds(t *testing.T) {
	var captured services.ApprovalSettingsUpdate
	handler := newTestHandler(handlerDeps{
		admin: stubAdminService{
			updateSettingsFn: func(_ context.Context, adminID string, update services.ApprovalSettingsUpdate) error {
				if adminID != "admin-1" {
					t.Fatalf("expected admin-1, got %s", adminID)
				}
				captured = update
				return nil
			},
		},
	})

	body := []byte(`{"require_all_approvals":true,"transfer_threshold":"2500.00"}`)
	req := httptest.NewRequest(http.MethodPut, "/admin/settings", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, "admin-1", "admin@example.com", "admin"))
	rr := httptest.NewRecorder()
	adminChain(handler.UpdateApprovalSettings).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if captured.RequireAll == nil || !*captured.RequireAll {
		t.Fatal("expected require_all_approvals true")
	}
	if captured.TransferThreshold == nil || *captured.TransferThreshold != 250000 {
		t.Fatalf("expected transfer threshold 250000 minor units, got %v", captured.TransferThreshold)
	}
	if captured.WithdrawalThreshold != nil {
		t.Fatal("withdrawal threshold was not in the payload")
	}
}
