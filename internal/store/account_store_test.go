package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestAccountStoreGetForUpdateLocksRow(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore(stubDB{})
	getter := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FOR UPDATE") {
				t.Fatalf("expected row lock in query: %s", query)
			}
			if len(args) != 1 || args[0] != "acc-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*Account) = Account{ID: "acc-1", Balance: 50000, Status: "active"}
			return nil
		},
	}
	account, err := store.GetForUpdate(ctx, getter, "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Balance != 50000 {
		t.Fatalf("unexpected balance: %d", account.Balance)
	}
}

func TestAccountStoreFindReceivablePrefersChecking(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore(stubDB{})
	getter := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "account_type = 'checking'") {
				t.Fatalf("expected checking preference in query: %s", query)
			}
			if !strings.Contains(query, "status = 'active'") {
				t.Fatalf("expected active filter in query: %s", query)
			}
			if !strings.Contains(query, "FOR UPDATE") {
				t.Fatalf("expected row lock in query: %s", query)
			}
			*dest.(*Account) = Account{ID: "acc-2", AccountType: "checking"}
			return nil
		},
	}
	account, err := store.FindReceivable(ctx, getter, "user-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.ID != "acc-2" {
		t.Fatalf("unexpected account: %#v", account)
	}
}

func TestAccountStoreDebitWithFloor(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore(stubDB{})
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "balance >= $1") {
				t.Fatalf("expected floor guard in query: %s", query)
			}
			return stubResult{rows: 0}, nil
		},
	}
	rows, err := store.DebitWithFloor(ctx, execer, "acc-1", 100000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected zero rows on insufficient funds, got %d", rows)
	}
}

func TestAccountStoreCloseRequiresZeroBalance(t *testing.T) {
	ctx := context.Background()
	store := NewAccountStore(stubDB{})
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "balance = 0") {
				t.Fatalf("expected zero-balance condition in query: %s", query)
			}
			if !strings.Contains(query, "status = 'closed'") {
				t.Fatalf("expected close transition in query: %s", query)
			}
			return stubResult{rows: 1}, nil
		},
	}
	rows, err := store.Close(ctx, execer, "acc-1", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected one row, got %d", rows)
	}
}
