package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestMarkDeclinedIsConditional(t *testing.T) {
	ctx := context.Background()
	store := NewTransferRequestStore(stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "status = 'pending'") {
				t.Fatalf("decline must be conditioned on pending status: %s", query)
			}
			if len(args) != 2 || args[0] != "req-1" || args[1] != "payer@example.com" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	})
	rows, err := store.MarkDeclined(ctx, "req-1", "payer@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected one row, got %d", rows)
	}
}

func TestMarkDeclinedAlreadyProcessed(t *testing.T) {
	ctx := context.Background()
	store := NewTransferRequestStore(stubDB{
		execFn: func(context.Context, string, ...any) (sql.Result, error) {
			return stubResult{rows: 0}, nil
		},
	})
	rows, err := store.MarkDeclined(ctx, "req-1", "payer@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected zero rows for processed request, got %d", rows)
	}
}

func TestMarkPaidIsConditional(t *testing.T) {
	ctx := context.Background()
	store := NewTransferRequestStore(stubDB{})
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "status = 'pending'") {
				t.Fatalf("pay must be conditioned on pending status: %s", query)
			}
			if !strings.Contains(query, "paid_at = NOW()") {
				t.Fatalf("expected paid_at stamp: %s", query)
			}
			return stubResult{rows: 1}, nil
		},
	}
	rows, err := store.MarkPaid(ctx, execer, "req-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected one row, got %d", rows)
	}
}

func TestGetPendingForPayerLocksRow(t *testing.T) {
	ctx := context.Background()
	store := NewTransferRequestStore(stubDB{})
	getter := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FOR UPDATE") {
				t.Fatalf("expected row lock: %s", query)
			}
			*dest.(*TransferRequest) = TransferRequest{ID: "req-1", Amount: 2500, Status: "pending"}
			return nil
		},
	}
	request, err := store.GetPendingForPayer(ctx, getter, "req-1", "payer@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if request.Amount != 2500 {
		t.Fatalf("unexpected request: %#v", request)
	}
}
