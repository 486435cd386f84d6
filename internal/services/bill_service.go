package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"unitedbank/internal/db"
	"unitedbank/internal/money"
	"unitedbank/internal/store"
	"unitedbank/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type BillService struct {
	txRunner     db.TxRunner
	accounts     AccountStore
	transactions TransactionStore
	billers      BillerStore
	payments     BillPaymentStore
	hub          BalanceHub
	logger       *logrus.Logger
}

func NewBillService(txRunner db.TxRunner, accounts AccountStore, transactions TransactionStore, billers BillerStore, payments BillPaymentStore, hub BalanceHub, logger *logrus.Logger) *BillService {
	return &BillService{
		txRunner:     txRunner,
		accounts:     accounts,
		transactions: transactions,
		billers:      billers,
		payments:     payments,
		hub:          hub,
		logger:       logger,
	}
}

type PayBillRequest struct {
	UserID        string
	BillerID      string
	FromAccountID string
	AmountMinor   int64
	PaymentDate   *time.Time
	Memo          *string
}

type PayBillResult struct {
	PaymentID  string
	NewBalance int64
}

func (s *BillService) PayBill(ctx context.Context, req PayBillRequest) (PayBillResult, error) {
	if req.AmountMinor <= 0 {
		return PayBillResult{}, ErrInvalidAmount
	}
	var result PayBillResult
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		biller, err := s.billers.GetOwned(ctx, req.BillerID, req.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrBillerNotFound
			}
			return err
		}
		account, err := s.accounts.GetForUpdate(ctx, tx, req.FromAccountID)
		if err != nil || account.UserID != req.UserID || account.Status != "active" {
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return err
			}
			return ErrSourceNotFound
		}
		if account.Balance < req.AmountMinor {
			return ErrInsufficientFunds
		}
		newBalance := account.Balance - req.AmountMinor
		if err := s.accounts.UpdateBalance(ctx, tx, req.FromAccountID, newBalance); err != nil {
			return err
		}
		paymentID := uuid.NewString()
		if err := s.payments.Create(ctx, tx, store.BillPaymentInput{
			ID:            paymentID,
			BillerID:      req.BillerID,
			FromAccountID: req.FromAccountID,
			Amount:        req.AmountMinor,
			PaymentDate:   req.PaymentDate,
			Memo:          req.Memo,
		}); err != nil {
			return err
		}
		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:             uuid.NewString(),
			AccountID:      req.FromAccountID,
			Type:           TxBillPayment,
			Amount:         req.AmountMinor,
			Description:    "Bill payment to " + biller.Name,
			BalanceAfter:   newBalance,
			ApprovalStatus: ApprovalApproved,
		}); err != nil {
			return err
		}
		result = PayBillResult{PaymentID: paymentID, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return PayBillResult{}, err
	}
	s.hub.BroadcastBalance(req.UserID, websocket.BalanceUpdate{
		AccountID: req.FromAccountID,
		Balance:   money.FormatMinor(result.NewBalance),
	})
	return result, nil
}
