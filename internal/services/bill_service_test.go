package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"unitedbank/internal/store"
)

func TestPayBillUnknownBiller(t *testing.T) {
	service := NewBillService(fakeTxRunner{}, stubAccountStore{
		getForUpdateFn: func(context.Context, store.Getter, string) (store.Account, error) {
			t.Fatalf("unexpected account lookup")
			return store.Account{}, nil
		},
	}, stubTransactionStore{}, stubBillerStore{
		getOwnedFn: func(context.Context, string, string) (store.Biller, error) {
			return store.Biller{}, sql.ErrNoRows
		},
	}, stubBillPaymentStore{}, &stubHub{}, testLogger())
	_, err := service.PayBill(context.Background(), PayBillRequest{
		UserID: "user-1", BillerID: "b-1", FromAccountID: "acct", AmountMinor: 4500,
	})
	if !errors.Is(err, ErrBillerNotFound) {
		t.Fatalf("expected ErrBillerNotFound, got %v", err)
	}
}

func TestPayBillInsufficientFunds(t *testing.T) {
	service := NewBillService(fakeTxRunner{}, stubAccountStore{
		getForUpdateFn: func(context.Context, store.Getter, string) (store.Account, error) {
			return store.Account{ID: "acct", UserID: "user-1", Status: "active", Balance: 100}, nil
		},
		updateBalanceFn: func(context.Context, store.Execer, string, int64) error {
			t.Fatalf("balance must not change")
			return nil
		},
	}, stubTransactionStore{}, stubBillerStore{
		getOwnedFn: func(context.Context, string, string) (store.Biller, error) {
			return store.Biller{ID: "b-1", Name: "City Power"}, nil
		},
	}, stubBillPaymentStore{}, &stubHub{}, testLogger())
	_, err := service.PayBill(context.Background(), PayBillRequest{
		UserID: "user-1", BillerID: "b-1", FromAccountID: "acct", AmountMinor: 4500,
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestPayBillSuccess(t *testing.T) {
	var payment store.BillPaymentInput
	var txRow store.TransactionInput
	hub := &stubHub{}
	service := NewBillService(fakeTxRunner{}, stubAccountStore{
		getForUpdateFn: func(context.Context, store.Getter, string) (store.Account, error) {
			return store.Account{ID: "acct", UserID: "user-1", Status: "active", Balance: 10000}, nil
		},
	}, stubTransactionStore{
		createFn: func(_ context.Context, _ store.Execer, input store.TransactionInput) error {
			txRow = input
			return nil
		},
	}, stubBillerStore{
		getOwnedFn: func(context.Context, string, string) (store.Biller, error) {
			return store.Biller{ID: "b-1", Name: "City Power"}, nil
		},
	}, stubBillPaymentStore{
		createFn: func(_ context.Context, _ store.Execer, input store.BillPaymentInput) error {
			payment = input
			return nil
		},
	}, hub, testLogger())

	result, err := service.PayBill(context.Background(), PayBillRequest{
		UserID: "user-1", BillerID: "b-1", FromAccountID: "acct", AmountMinor: 4500,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NewBalance != 5500 {
		t.Fatalf("unexpected balance: %d", result.NewBalance)
	}
	if payment.ID != result.PaymentID || payment.Amount != 4500 {
		t.Fatalf("unexpected payment row: %#v", payment)
	}
	if txRow.Type != TxBillPayment || txRow.Description != "Bill payment to City Power" {
		t.Fatalf("unexpected transaction row: %#v", txRow)
	}
	if len(hub.calls) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(hub.calls))
	}
}
