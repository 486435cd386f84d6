// Package services implements the money-movement core: internal transfers,
// external and P2P transfers, money requests, bill payments and admin
// interventions. Every operation that touches a balance runs inside a single
// database transaction and locks account rows before reading their balances.
package services

import (
	"context"
	"errors"

	"unitedbank/internal/store"
	"unitedbank/internal/websocket"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrSameAccount         = errors.New("cannot transfer to the same account")
	ErrSourceNotFound      = errors.New("source account not found")
	ErrDestinationNotFound = errors.New("destination account not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrNoActiveAccount     = errors.New("recipient has no active accounts")
	ErrRequestNotFound     = errors.New("request not found or already processed")
	ErrBillerNotFound      = errors.New("biller not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransferNotPending  = errors.New("transaction not found or already processed")
	ErrInvalidTransferType = errors.New("invalid transfer type")
	ErrInvalidAdjustment   = errors.New("invalid adjustment type")
)

const (
	TxDeposit     = "deposit"
	TxWithdrawal  = "withdrawal"
	TxTransfer    = "transfer"
	TxBillPayment = "bill_payment"

	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
)

type AccountStore interface {
	GetByID(ctx context.Context, accountID string) (store.Account, error)
	GetForUpdate(ctx context.Context, tx store.Getter, accountID string) (store.Account, error)
	FindReceivable(ctx context.Context, tx store.Getter, userID string) (store.Account, error)
	UpdateBalance(ctx context.Context, tx store.Execer, accountID string, balance int64) error
	DebitWithFloor(ctx context.Context, tx store.Execer, accountID string, amount int64) (int64, error)
	Credit(ctx context.Context, tx store.Execer, accountID string, amount int64) error
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	GetPendingForUpdate(ctx context.Context, tx store.Getter, transactionID string) (store.Transaction, error)
	SettleApproval(ctx context.Context, tx store.Execer, transactionID string, balanceAfter int64) (int64, error)
	MarkRejected(ctx context.Context, tx store.Execer, transactionID string) (int64, error)
}

type ExternalTransferStore interface {
	Create(ctx context.Context, tx store.Execer, input store.ExternalTransferInput) error
}

type TransferRequestStore interface {
	Create(ctx context.Context, input store.TransferRequestInput) error
	GetPendingForPayer(ctx context.Context, tx store.Getter, requestID, payerEmail string) (store.TransferRequest, error)
	MarkPaid(ctx context.Context, tx store.Execer, requestID string) (int64, error)
	MarkDeclined(ctx context.Context, requestID, payerEmail string) (int64, error)
}

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (store.User, error)
	GetByID(ctx context.Context, userID string) (store.User, error)
}

type BillerStore interface {
	GetOwned(ctx context.Context, billerID, userID string) (store.Biller, error)
}

type BillPaymentStore interface {
	Create(ctx context.Context, tx store.Execer, input store.BillPaymentInput) error
}

type SettingsStore interface {
	All(ctx context.Context) (map[string]string, error)
}

type ActionStore interface {
	Log(ctx context.Context, tx store.Execer, adminID, actionType, description, metadata string, targetUserID, targetAccountID *string) error
}

type AdjustmentStore interface {
	Create(ctx context.Context, tx store.Execer, input store.BalanceAdjustmentInput) error
}

type BalanceHub interface {
	BroadcastBalance(userID string, update websocket.BalanceUpdate)
}

// RequestNotifier tells a payer that a money request is waiting for them.
type RequestNotifier interface {
	SendRequestNotice(to, requesterName string, amountMinor int64, description string)
}
