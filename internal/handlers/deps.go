package handlers

import (
	"context"

	"unitedbank/internal/services"
	"unitedbank/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, email, passwordHash, firstName, lastName string) error
	GetByEmail(ctx context.Context, email string) (store.User, error)
	GetByID(ctx context.Context, userID string) (store.User, error)
}

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, input store.AccountInput) error
	GetByID(ctx context.Context, accountID string) (store.Account, error)
	ListByUser(ctx context.Context, userID string) ([]store.Account, error)
	Close(ctx context.Context, tx store.Execer, accountID, userID string) (int64, error)
}

type TransactionStore interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]store.Transaction, error)
	ListByAccount(ctx context.Context, accountID string, limit int) ([]store.Transaction, error)
	ListPendingApproval(ctx context.Context) ([]store.Transaction, error)
}

type ExternalTransferStore interface {
	ListByUser(ctx context.Context, userID string) ([]store.ExternalTransfer, error)
}

type TransferRequestStore interface {
	ListOutgoing(ctx context.Context, requesterUserID string) ([]store.TransferRequest, error)
	ListIncoming(ctx context.Context, payerEmail string) ([]store.TransferRequest, error)
}

type BillerStore interface {
	Create(ctx context.Context, id, userID, category, name, accountNumber string, nickname *string) error
	ListByUser(ctx context.Context, userID string) ([]store.Biller, error)
}

type BillPaymentStore interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]store.BillPayment, error)
}

type CardStore interface {
	Create(ctx context.Context, input store.CardInput) error
	ListByUser(ctx context.Context, userID string) ([]store.Card, error)
	UpdateStatus(ctx context.Context, cardID, userID, status string) (int64, error)
}

type SettingsStore interface {
	All(ctx context.Context) (map[string]string, error)
}

type ActionStore interface {
	List(ctx context.Context, limit, offset int) ([]store.AdminAction, error)
}

type TransferService interface {
	Transfer(ctx context.Context, req services.TransferRequest) (services.TransferResult, error)
}

type ExternalService interface {
	SendToUser(ctx context.Context, req services.SendToUserRequest) (services.SendToUserResult, error)
	SendToBank(ctx context.Context, req services.SendToBankRequest) (services.SendToBankResult, error)
	RequestMoney(ctx context.Context, req services.RequestMoneyRequest) (string, error)
	PayRequest(ctx context.Context, input services.PayRequestInput) (int64, error)
	DeclineRequest(ctx context.Context, requestID, payerEmail string) error
}

type BillService interface {
	PayBill(ctx context.Context, req services.PayBillRequest) (services.PayBillResult, error)
}

type AdminService interface {
	AdjustBalance(ctx context.Context, req services.AdjustBalanceRequest) (services.AdjustBalanceResult, error)
	ApproveTransfer(ctx context.Context, adminID, transactionID string) error
	RejectTransfer(ctx context.Context, adminID, transactionID string) error
	UpdateApprovalSettings(ctx context.Context, adminID string, update services.ApprovalSettingsUpdate) error
}
