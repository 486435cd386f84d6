package services

import (
	"context"
	"database/sql"
	"errors"

	"unitedbank/internal/db"
	"unitedbank/internal/money"
	"unitedbank/internal/store"
	"unitedbank/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// TransferService moves money between two local accounts. A completed
// transfer always produces two linked transaction rows and conserves the
// total balance across the pair.
type TransferService struct {
	txRunner     db.TxRunner
	accounts     AccountStore
	transactions TransactionStore
	gate         *ApprovalGate
	hub          BalanceHub
	logger       *logrus.Logger
}

func NewTransferService(txRunner db.TxRunner, accounts AccountStore, transactions TransactionStore, gate *ApprovalGate, hub BalanceHub, logger *logrus.Logger) *TransferService {
	return &TransferService{
		txRunner:     txRunner,
		accounts:     accounts,
		transactions: transactions,
		gate:         gate,
		hub:          hub,
		logger:       logger,
	}
}

type TransferRequest struct {
	UserID        string
	FromAccountID string
	ToAccountID   string
	AmountMinor   int64
	Description   string
}

type TransferResult struct {
	WithdrawalID   string
	DepositID      string
	NewFromBalance int64
	Pending        bool
}

func (s *TransferService) Transfer(ctx context.Context, req TransferRequest) (TransferResult, error) {
	if req.AmountMinor <= 0 {
		return TransferResult{}, ErrInvalidAmount
	}
	if req.FromAccountID == req.ToAccountID {
		return TransferResult{}, ErrSameAccount
	}
	policy := s.gate.Load(ctx)

	var result TransferResult
	var toUserID string
	var toBalanceAfter int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		from, to, fromErr, toErr := lockAccountPair(ctx, tx, s.accounts, req.FromAccountID, req.ToAccountID)
		// Validation order is part of the contract: each failure mode is
		// distinct and checked before the next.
		if fromErr != nil || from.UserID != req.UserID || from.Status != "active" {
			if fromErr != nil && !errors.Is(fromErr, sql.ErrNoRows) {
				return fromErr
			}
			return ErrSourceNotFound
		}
		if from.Balance < req.AmountMinor {
			return ErrInsufficientFunds
		}
		if toErr != nil || to.Status != "active" {
			if toErr != nil && !errors.Is(toErr, sql.ErrNoRows) {
				return toErr
			}
			return ErrDestinationNotFound
		}
		toUserID = to.UserID

		if policy.NeedsApproval(TxTransfer, req.AmountMinor) {
			// Park the withdrawal side only. Funds do not move until an
			// administrator approves; balance_after snapshots the untouched
			// balance.
			withdrawalID := uuid.NewString()
			result = TransferResult{
				WithdrawalID:   withdrawalID,
				NewFromBalance: from.Balance,
				Pending:        true,
			}
			return s.transactions.Create(ctx, tx, store.TransactionInput{
				ID:               withdrawalID,
				AccountID:        req.FromAccountID,
				Type:             TxTransfer,
				Amount:           req.AmountMinor,
				Description:      orDefault(req.Description, "Transfer out (pending approval)"),
				RelatedAccountID: &req.ToAccountID,
				BalanceAfter:     from.Balance,
				ApprovalStatus:   ApprovalPending,
			})
		}

		newFrom := from.Balance - req.AmountMinor
		newTo := to.Balance + req.AmountMinor
		if err := s.accounts.UpdateBalance(ctx, tx, req.FromAccountID, newFrom); err != nil {
			return err
		}
		if err := s.accounts.UpdateBalance(ctx, tx, req.ToAccountID, newTo); err != nil {
			return err
		}
		withdrawalID := uuid.NewString()
		depositID := uuid.NewString()
		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:               withdrawalID,
			AccountID:        req.FromAccountID,
			Type:             TxWithdrawal,
			Amount:           req.AmountMinor,
			Description:      orDefault(req.Description, "Transfer out"),
			RelatedAccountID: &req.ToAccountID,
			BalanceAfter:     newFrom,
			ApprovalStatus:   ApprovalApproved,
		}); err != nil {
			return err
		}
		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:               depositID,
			AccountID:        req.ToAccountID,
			Type:             TxDeposit,
			Amount:           req.AmountMinor,
			Description:      orDefault(req.Description, "Transfer in"),
			RelatedAccountID: &req.FromAccountID,
			BalanceAfter:     newTo,
			ApprovalStatus:   ApprovalApproved,
		}); err != nil {
			return err
		}
		result = TransferResult{
			WithdrawalID:   withdrawalID,
			DepositID:      depositID,
			NewFromBalance: newFrom,
		}
		toBalanceAfter = newTo
		return nil
	})
	if err != nil {
		return TransferResult{}, err
	}
	if result.Pending {
		s.logger.WithFields(logrus.Fields{
			"transaction_id": result.WithdrawalID,
			"amount":         money.FormatMinor(req.AmountMinor),
		}).Info("transfer parked for approval")
		return result, nil
	}
	s.hub.BroadcastBalance(req.UserID, websocket.BalanceUpdate{
		AccountID: req.FromAccountID,
		Balance:   money.FormatMinor(result.NewFromBalance),
	})
	if toUserID != "" && toUserID != req.UserID {
		s.hub.BroadcastBalance(toUserID, websocket.BalanceUpdate{
			AccountID: req.ToAccountID,
			Balance:   money.FormatMinor(toBalanceAfter),
		})
	}
	return result, nil
}

// lockAccountPair takes FOR UPDATE locks on both accounts in id order so two
// opposing transfers cannot deadlock, then hands back each row with its own
// lookup error so callers can report failures in contract order.
func lockAccountPair(ctx context.Context, tx store.Getter, accounts AccountStore, firstID, secondID string) (store.Account, store.Account, error, error) {
	leftID, rightID := firstID, secondID
	if rightID < leftID {
		leftID, rightID = rightID, leftID
	}
	left, leftErr := accounts.GetForUpdate(ctx, tx, leftID)
	right, rightErr := accounts.GetForUpdate(ctx, tx, rightID)
	if firstID == leftID {
		return left, right, leftErr, rightErr
	}
	return right, left, rightErr, leftErr
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
