package handlers

import (
	"context"
	"io"
	"testing"
	"time"

	"unitedbank/internal/auth"
	"unitedbank/internal/config"
	"unitedbank/internal/services"
	"unitedbank/internal/store"
	"unitedbank/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn     func(ctx context.Context, tx store.Execer, id, email, passwordHash, firstName, lastName string) error
	getByEmailFn func(ctx context.Context, email string) (store.User, error)
	getByIDFn    func(ctx context.Context, userID string) (store.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, email, passwordHash, firstName, lastName string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, email, passwordHash, firstName, lastName)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (store.User, error) {
	if s.getByEmailFn == nil {
		return store.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (store.User, error) {
	if s.getByIDFn == nil {
		return store.User{ID: userID}, nil
	}
	return s.getByIDFn(ctx, userID)
}

type stubAccountStore struct {
	createFn     func(ctx context.Context, tx store.Execer, input store.AccountInput) error
	getByIDFn    func(ctx context.Context, accountID string) (store.Account, error)
	listByUserFn func(ctx context.Context, userID string) ([]store.Account, error)
	closeFn      func(ctx context.Context, tx store.Execer, accountID, userID string) (int64, error)
}

func (s stubAccountStore) Create(ctx context.Context, tx store.Execer, input store.AccountInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubAccountStore) GetByID(ctx context.Context, accountID string) (store.Account, error) {
	if s.getByIDFn == nil {
		return store.Account{}, nil
	}
	return s.getByIDFn(ctx, accountID)
}

func (s stubAccountStore) ListByUser(ctx context.Context, userID string) ([]store.Account, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

func (s stubAccountStore) Close(ctx context.Context, tx store.Execer, accountID, userID string) (int64, error) {
	if s.closeFn == nil {
		return 1, nil
	}
	return s.closeFn(ctx, tx, accountID, userID)
}

type stubTransactionStore struct {
	listByUserFn          func(ctx context.Context, userID string, limit int) ([]store.Transaction, error)
	listByAccountFn       func(ctx context.Context, accountID string, limit int) ([]store.Transaction, error)
	listPendingApprovalFn func(ctx context.Context) ([]store.Transaction, error)
}

func (s stubTransactionStore) ListByUser(ctx context.Context, userID string, limit int) ([]store.Transaction, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, limit)
}

func (s stubTransactionStore) ListByAccount(ctx context.Context, accountID string, limit int) ([]store.Transaction, error) {
	if s.listByAccountFn == nil {
		return nil, nil
	}
	return s.listByAccountFn(ctx, accountID, limit)
}

func (s stubTransactionStore) ListPendingApproval(ctx context.Context) ([]store.Transaction, error) {
	if s.listPendingApprovalFn == nil {
		return nil, nil
	}
	return s.listPendingApprovalFn(ctx)
}

type stubExternalTransferStore struct {
	listByUserFn func(ctx context.Context, userID string) ([]store.ExternalTransfer, error)
}

func (s stubExternalTransferStore) ListByUser(ctx context.Context, userID string) ([]store.ExternalTransfer, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

type stubTransferRequestStore struct {
	listOutgoingFn func(ctx context.Context, requesterUserID string) ([]store.TransferRequest, error)
	listIncomingFn func(ctx context.Context, payerEmail string) ([]store.TransferRequest, error)
}

func (s stubTransferRequestStore) ListOutgoing(ctx context.Context, requesterUserID string) ([]store.TransferRequest, error) {
	if s.listOutgoingFn == nil {
		return nil, nil
	}
	return s.listOutgoingFn(ctx, requesterUserID)
}

func (s stubTransferRequestStore) ListIncoming(ctx context.Context, payerEmail string) ([]store.TransferRequest, error) {
	if s.listIncomingFn == nil {
		return nil, nil
	}
	return s.listIncomingFn(ctx, payerEmail)
}

type stubBillerStore struct {
	createFn     func(ctx context.Context, id, userID, category, name, accountNumber string, nickname *string) error
	listByUserFn func(ctx context.Context, userID string) ([]store.Biller, error)
}

func (s stubBillerStore) Create(ctx context.Context, id, userID, category, name, accountNumber string, nickname *string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, id, userID, category, name, accountNumber, nickname)
}

func (s stubBillerStore) ListByUser(ctx context.Context, userID string) ([]store.Biller, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

type stubBillPaymentStore struct {
	listByUserFn func(ctx context.Context, userID string, limit int) ([]store.BillPayment, error)
}

func (s stubBillPaymentStore) ListByUser(ctx context.Context, userID string, limit int) ([]store.BillPayment, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, limit)
}

type stubCardStore struct {
	createFn       func(ctx context.Context, input store.CardInput) error
	listByUserFn   func(ctx context.Context, userID string) ([]store.Card, error)
	updateStatusFn func(ctx context.Context, cardID, userID, status string) (int64, error)
}

func (s stubCardStore) Create(ctx context.Context, input store.CardInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, input)
}

func (s stubCardStore) ListByUser(ctx context.Context, userID string) ([]store.Card, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID)
}

func (s stubCardStore) UpdateStatus(ctx context.Context, cardID, userID, status string) (int64, error) {
	if s.updateStatusFn == nil {
		return 1, nil
	}
	return s.updateStatusFn(ctx, cardID, userID, status)
}

type stubSettingsStore struct {
	allFn func(ctx context.Context) (map[string]string, error)
}

func (s stubSettingsStore) All(ctx context.Context) (map[string]string, error) {
	if s.allFn == nil {
		return map[string]string{}, nil
	}
	return s.allFn(ctx)
}

type stubActionStore struct {
	listFn func(ctx context.Context, limit, offset int) ([]store.AdminAction, error)
}

func (s stubActionStore) List(ctx context.Context, limit, offset int) ([]store.AdminAction, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type stubTransferService struct {
	transferFn func(ctx context.Context, req services.TransferRequest) (services.TransferResult, error)
}

func (s stubTransferService) Transfer(ctx context.Context, req services.TransferRequest) (services.TransferResult, error) {
	if s.transferFn == nil {
		return services.TransferResult{}, nil
	}
	return s.transferFn(ctx, req)
}

type stubExternalService struct {
	sendToUserFn     func(ctx context.Context, req services.SendToUserRequest) (services.SendToUserResult, error)
	sendToBankFn     func(ctx context.Context, req services.SendToBankRequest) (services.SendToBankResult, error)
	requestMoneyFn   func(ctx context.Context, req services.RequestMoneyRequest) (string, error)
	payRequestFn     func(ctx context.Context, input services.PayRequestInput) (int64, error)
	declineRequestFn func(ctx context.Context, requestID, payerEmail string) error
}

func (s stubExternalService) SendToUser(ctx context.Context, req services.SendToUserRequest) (services.SendToUserResult, error) {
	if s.sendToUserFn == nil {
		return services.SendToUserResult{}, nil
	}
	return s.sendToUserFn(ctx, req)
}

func (s stubExternalService) SendToBank(ctx context.Context, req services.SendToBankRequest) (services.SendToBankResult, error) {
	if s.sendToBankFn == nil {
		return services.SendToBankResult{}, nil
	}
	return s.sendToBankFn(ctx, req)
}

func (s stubExternalService) RequestMoney(ctx context.Context, req services.RequestMoneyRequest) (string, error) {
	if s.requestMoneyFn == nil {
		return "", nil
	}
	return s.requestMoneyFn(ctx, req)
}

func (s stubExternalService) PayRequest(ctx context.Context, input services.PayRequestInput) (int64, error) {
	if s.payRequestFn == nil {
		return 0, nil
	}
	return s.payRequestFn(ctx, input)
}

func (s stubExternalService) DeclineRequest(ctx context.Context, requestID, payerEmail string) error {
	if s.declineRequestFn == nil {
		return nil
	}
	return s.declineRequestFn(ctx, requestID, payerEmail)
}

type stubBillService struct {
	payBillFn func(ctx context.Context, req services.PayBillRequest) (services.PayBillResult, error)
}

func (s stubBillService) PayBill(ctx context.Context, req services.PayBillRequest) (services.PayBillResult, error) {
	if s.payBillFn == nil {
		return services.PayBillResult{}, nil
	}
	return s.payBillFn(ctx, req)
}

type stubAdminService struct {
	adjustBalanceFn  func(ctx context.Context, req services.AdjustBalanceRequest) (services.AdjustBalanceResult, error)
	approveFn        func(ctx context.Context, adminID, transactionID string) error
	rejectFn         func(ctx context.Context, adminID, transactionID string) error
	updateSettingsFn func(ctx context.Context, adminID string, update services.ApprovalSettingsUpdate) error
}

func (s stubAdminService) AdjustBalance(ctx context.Context, req services.AdjustBalanceRequest) (services.AdjustBalanceResult, error) {
	if s.adjustBalanceFn == nil {
		return services.AdjustBalanceResult{}, nil
	}
	return s.adjustBalanceFn(ctx, req)
}

func (s stubAdminService) ApproveTransfer(ctx context.Context, adminID, transactionID string) error {
	if s.approveFn == nil {
		return nil
	}
	return s.approveFn(ctx, adminID, transactionID)
}

func (s stubAdminService) RejectTransfer(ctx context.Context, adminID, transactionID string) error {
	if s.rejectFn == nil {
		return nil
	}
	return s.rejectFn(ctx, adminID, transactionID)
}

func (s stubAdminService) UpdateApprovalSettings(ctx context.Context, adminID string, update services.ApprovalSettingsUpdate) error {
	if s.updateSettingsFn == nil {
		return nil
	}
	return s.updateSettingsFn(ctx, adminID, update)
}

type handlerDeps struct {
	txRunner  fakeTxRunner
	users     stubUserStore
	accounts  stubAccountStore
	txs       stubTransactionStore
	externals stubExternalTransferStore
	requests  stubTransferRequestStore
	billers   stubBillerStore
	payments  stubBillPaymentStore
	cards     stubCardStore
	settings  stubSettingsStore
	actions   stubActionStore
	transfers stubTransferService
	external  stubExternalService
	bills     stubBillService
	admin     stubAdminService
}

func newTestHandler(deps handlerDeps) *Handler {
	cfg := config.Config{
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(deps.txRunner, cfg, deps.users, deps.accounts, deps.txs, deps.externals, deps.requests, deps.billers, deps.payments, deps.cards, deps.settings, deps.actions, deps.transfers, deps.external, deps.bills, deps.admin, websocket.NewHub(), logger)
}

func bearerToken(t *testing.T, userID, email, role string) string {
	t.Helper()
	token, err := auth.GenerateToken("secret", userID, email, role, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}
