package services

import (
	"context"
	"io"

	"unitedbank/internal/store"
	"unitedbank/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubAccountStore struct {
	getByIDFn        func(ctx context.Context, accountID string) (store.Account, error)
	getForUpdateFn   func(ctx context.Context, tx store.Getter, accountID string) (store.Account, error)
	findReceivableFn func(ctx context.Context, tx store.Getter, userID string) (store.Account, error)
	updateBalanceFn  func(ctx context.Context, tx store.Execer, accountID string, balance int64) error
	debitWithFloorFn func(ctx context.Context, tx store.Execer, accountID string, amount int64) (int64, error)
	creditFn         func(ctx context.Context, tx store.Execer, accountID string, amount int64) error
}

func (s stubAccountStore) GetByID(ctx context.Context, accountID string) (store.Account, error) {
	if s.getByIDFn == nil {
		return store.Account{}, nil
	}
	return s.getByIDFn(ctx, accountID)
}

func (s stubAccountStore) GetForUpdate(ctx context.Context, tx store.Getter, accountID string) (store.Account, error) {
	return s.getForUpdateFn(ctx, tx, accountID)
}

func (s stubAccountStore) FindReceivable(ctx context.Context, tx store.Getter, userID string) (store.Account, error) {
	if s.findReceivableFn == nil {
		return store.Account{}, nil
	}
	return s.findReceivableFn(ctx, tx, userID)
}

func (s stubAccountStore) UpdateBalance(ctx context.Context, tx store.Execer, accountID string, balance int64) error {
	if s.updateBalanceFn == nil {
		return nil
	}
	return s.updateBalanceFn(ctx, tx, accountID, balance)
}

func (s stubAccountStore) DebitWithFloor(ctx context.Context, tx store.Execer, accountID string, amount int64) (int64, error) {
	if s.debitWithFloorFn == nil {
		return 1, nil
	}
	return s.debitWithFloorFn(ctx, tx, accountID, amount)
}

func (s stubAccountStore) Credit(ctx context.Context, tx store.Execer, accountID string, amount int64) error {
	if s.creditFn == nil {
		return nil
	}
	return s.creditFn(ctx, tx, accountID, amount)
}

type stubTransactionStore struct {
	createFn              func(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	getPendingForUpdateFn func(ctx context.Context, tx store.Getter, transactionID string) (store.Transaction, error)
	settleApprovalFn      func(ctx context.Context, tx store.Execer, transactionID string, balanceAfter int64) (int64, error)
	markRejectedFn        func(ctx context.Context, tx store.Execer, transactionID string) (int64, error)
}

func (s stubTransactionStore) Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubTransactionStore) GetPendingForUpdate(ctx context.Context, tx store.Getter, transactionID string) (store.Transaction, error) {
	return s.getPendingForUpdateFn(ctx, tx, transactionID)
}

func (s stubTransactionStore) SettleApproval(ctx context.Context, tx store.Execer, transactionID string, balanceAfter int64) (int64, error) {
	if s.settleApprovalFn == nil {
		return 1, nil
	}
	return s.settleApprovalFn(ctx, tx, transactionID, balanceAfter)
}

func (s stubTransactionStore) MarkRejected(ctx context.Context, tx store.Execer, transactionID string) (int64, error) {
	if s.markRejectedFn == nil {
		return 1, nil
	}
	return s.markRejectedFn(ctx, tx, transactionID)
}

type stubExternalTransferStore struct {
	createFn func(ctx context.Context, tx store.Execer, input store.ExternalTransferInput) error
}

func (s stubExternalTransferStore) Create(ctx context.Context, tx store.Execer, input store.ExternalTransferInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

type stubTransferRequestStore struct {
	createFn             func(ctx context.Context, input store.TransferRequestInput) error
	getPendingForPayerFn func(ctx context.Context, tx store.Getter, requestID, payerEmail string) (store.TransferRequest, error)
	markPaidFn           func(ctx context.Context, tx store.Execer, requestID string) (int64, error)
	markDeclinedFn       func(ctx context.Context, requestID, payerEmail string) (int64, error)
}

func (s stubTransferRequestStore) Create(ctx context.Context, input store.TransferRequestInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, input)
}

func (s stubTransferRequestStore) GetPendingForPayer(ctx context.Context, tx store.Getter, requestID, payerEmail string) (store.TransferRequest, error) {
	return s.getPendingForPayerFn(ctx, tx, requestID, payerEmail)
}

func (s stubTransferRequestStore) MarkPaid(ctx context.Context, tx store.Execer, requestID string) (int64, error) {
	if s.markPaidFn == nil {
		return 1, nil
	}
	return s.markPaidFn(ctx, tx, requestID)
}

func (s stubTransferRequestStore) MarkDeclined(ctx context.Context, requestID, payerEmail string) (int64, error) {
	if s.markDeclinedFn == nil {
		return 1, nil
	}
	return s.markDeclinedFn(ctx, requestID, payerEmail)
}

type stubUserStore struct {
	getByEmailFn func(ctx context.Context, email string) (store.User, error)
	getByIDFn    func(ctx context.Context, userID string) (store.User, error)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (store.User, error) {
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (store.User, error) {
	if s.getByIDFn == nil {
		return store.User{ID: userID}, nil
	}
	return s.getByIDFn(ctx, userID)
}

type stubBillerStore struct {
	getOwnedFn func(ctx context.Context, billerID, userID string) (store.Biller, error)
}

func (s stubBillerStore) GetOwned(ctx context.Context, billerID, userID string) (store.Biller, error) {
	return s.getOwnedFn(ctx, billerID, userID)
}

type stubBillPaymentStore struct {
	createFn func(ctx context.Context, tx store.Execer, input store.BillPaymentInput) error
}

func (s stubBillPaymentStore) Create(ctx context.Context, tx store.Execer, input store.BillPaymentInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

type stubSettingsStore struct {
	allFn func(ctx context.Context) (map[string]string, error)
	setFn func(ctx context.Context, tx store.Execer, name, value string) error
}

func (s stubSettingsStore) All(ctx context.Context) (map[string]string, error) {
	if s.allFn == nil {
		return map[string]string{}, nil
	}
	return s.allFn(ctx)
}

func (s stubSettingsStore) Set(ctx context.Context, tx store.Execer, name, value string) error {
	if s.setFn == nil {
		return nil
	}
	return s.setFn(ctx, tx, name, value)
}

type stubActionStore struct {
	logFn func(ctx context.Context, tx store.Execer, adminID, actionType, description, metadata string, targetUserID, targetAccountID *string) error
}

func (s stubActionStore) Log(ctx context.Context, tx store.Execer, adminID, actionType, description, metadata string, targetUserID, targetAccountID *string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, adminID, actionType, description, metadata, targetUserID, targetAccountID)
}

type stubAdjustmentStore struct {
	createFn func(ctx context.Context, tx store.Execer, input store.BalanceAdjustmentInput) error
}

func (s stubAdjustmentStore) Create(ctx context.Context, tx store.Execer, input store.BalanceAdjustmentInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

type stubHub struct {
	calls []websocket.BalanceUpdate
}

func (s *stubHub) BroadcastBalance(_ string, update websocket.BalanceUpdate) {
	s.calls = append(s.calls, update)
}

type stubNotifier struct {
	notices int
}

func (s *stubNotifier) SendRequestNotice(string, string, int64, string) {
	s.notices++
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func openGate() *ApprovalGate {
	return NewApprovalGate(stubSettingsStore{}, testLogger())
}
