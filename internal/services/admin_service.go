package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"unitedbank/internal/db"
	"unitedbank/internal/money"
	"unitedbank/internal/store"
	"unitedbank/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// SettingsWriter updates approval settings. Reads go through SettingsStore.
type SettingsWriter interface {
	Set(ctx context.Context, tx store.Execer, name, value string) error
}

type AdminService struct {
	txRunner     db.TxRunner
	accounts     AccountStore
	transactions TransactionStore
	adjustments  AdjustmentStore
	actions      ActionStore
	settings     SettingsWriter
	hub          BalanceHub
	logger       *logrus.Logger
}

func NewAdminService(txRunner db.TxRunner, accounts AccountStore, transactions TransactionStore, adjustments AdjustmentStore, actions ActionStore, settings SettingsWriter, hub BalanceHub, logger *logrus.Logger) *AdminService {
	return &AdminService{
		txRunner:     txRunner,
		accounts:     accounts,
		transactions: transactions,
		adjustments:  adjustments,
		actions:      actions,
		settings:     settings,
		hub:          hub,
		logger:       logger,
	}
}

const (
	AdjustCredit = "credit"
	AdjustDebit  = "debit"
)

type AdjustBalanceRequest struct {
	AdminID        string
	AccountID      string
	AdjustmentType string
	AmountMinor    int64
	Reason         string
}

type AdjustBalanceResult struct {
	AdjustmentID  string
	BalanceBefore int64
	BalanceAfter  int64
}

func (s *AdminService) AdjustBalance(ctx context.Context, req AdjustBalanceRequest) (AdjustBalanceResult, error) {
	if req.AmountMinor <= 0 {
		return AdjustBalanceResult{}, ErrInvalidAmount
	}
	if req.AdjustmentType != AdjustCredit && req.AdjustmentType != AdjustDebit {
		return AdjustBalanceResult{}, ErrInvalidAdjustment
	}
	var result AdjustBalanceResult
	var ownerUserID string
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		account, err := s.accounts.GetForUpdate(ctx, tx, req.AccountID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAccountNotFound
			}
			return err
		}
		ownerUserID = account.UserID
		var after int64
		txType := TxDeposit
		if req.AdjustmentType == AdjustDebit {
			txType = TxWithdrawal
			rows, err := s.accounts.DebitWithFloor(ctx, tx, req.AccountID, req.AmountMinor)
			if err != nil {
				return err
			}
			if rows == 0 {
				return ErrInsufficientFunds
			}
			after = account.Balance - req.AmountMinor
		} else {
			if err := s.accounts.Credit(ctx, tx, req.AccountID, req.AmountMinor); err != nil {
				return err
			}
			after = account.Balance + req.AmountMinor
		}
		adjustmentID := uuid.NewString()
		if err := s.adjustments.Create(ctx, tx, store.BalanceAdjustmentInput{
			ID:             adjustmentID,
			AccountID:      req.AccountID,
			AdminID:        req.AdminID,
			Amount:         req.AmountMinor,
			AdjustmentType: req.AdjustmentType,
			Reason:         req.Reason,
			BalanceBefore:  account.Balance,
			BalanceAfter:   after,
		}); err != nil {
			return err
		}
		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:             uuid.NewString(),
			AccountID:      req.AccountID,
			Type:           txType,
			Amount:         req.AmountMinor,
			Description:    "Admin adjustment: " + req.Reason,
			BalanceAfter:   after,
			ApprovalStatus: ApprovalApproved,
		}); err != nil {
			return err
		}
		metadata, _ := json.Marshal(map[string]any{
			"adjustment_id":   adjustmentID,
			"adjustment_type": req.AdjustmentType,
			"amount":          money.FormatMinor(req.AmountMinor),
		})
		if err := s.actions.Log(ctx, tx, req.AdminID, "balance_adjustment", req.Reason, string(metadata), &ownerUserID, &req.AccountID); err != nil {
			return err
		}
		result = AdjustBalanceResult{
			AdjustmentID:  adjustmentID,
			BalanceBefore: account.Balance,
			BalanceAfter:  after,
		}
		return nil
	})
	if err != nil {
		return AdjustBalanceResult{}, err
	}
	s.hub.BroadcastBalance(ownerUserID, websocket.BalanceUpdate{
		AccountID: req.AccountID,
		Balance:   money.FormatMinor(result.BalanceAfter),
	})
	return result, nil
}

// ApproveTransfer settles a transaction parked by the approval gate. The
// parked row holds the debit leg that never ran; settling performs the debit
// now, and for transfers also credits the destination and writes its deposit
// row. Funds are re-checked at approval time since the balance may have
// changed while the transaction sat pending.
func (s *AdminService) ApproveTransfer(ctx context.Context, adminID, transactionID string) error {
	var updates []balanceNotice
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		updates = updates[:0]
		parked, err := s.transactions.GetPendingForUpdate(ctx, tx, transactionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTransferNotPending
			}
			return err
		}
		if parked.Type == TxTransfer && parked.RelatedAccountID != nil {
			return s.settleTransfer(ctx, tx, adminID, parked, &updates)
		}
		return s.settleWithdrawal(ctx, tx, adminID, parked, &updates)
	})
	if err != nil {
		return err
	}
	for _, u := range updates {
		s.hub.BroadcastBalance(u.userID, websocket.BalanceUpdate{
			AccountID: u.accountID,
			Balance:   money.FormatMinor(u.balance),
		})
	}
	return nil
}

type balanceNotice struct {
	userID    string
	accountID string
	balance   int64
}

func (s *AdminService) settleTransfer(ctx context.Context, tx *sqlx.Tx, adminID string, parked store.Transaction, updates *[]balanceNotice) error {
	source, destination, sourceErr, destErr := lockAccountPair(ctx, tx, s.accounts, parked.AccountID, *parked.RelatedAccountID)
	if sourceErr != nil {
		if errors.Is(sourceErr, sql.ErrNoRows) {
			return ErrSourceNotFound
		}
		return sourceErr
	}
	if source.Status != "active" {
		return ErrSourceNotFound
	}
	if source.Balance < parked.Amount {
		return ErrInsufficientFunds
	}
	if destErr != nil {
		if errors.Is(destErr, sql.ErrNoRows) {
			return ErrDestinationNotFound
		}
		return destErr
	}
	if destination.Status != "active" {
		return ErrDestinationNotFound
	}
	newSource := source.Balance - parked.Amount
	newDest := destination.Balance + parked.Amount
	if err := s.accounts.UpdateBalance(ctx, tx, source.ID, newSource); err != nil {
		return err
	}
	if err := s.accounts.UpdateBalance(ctx, tx, destination.ID, newDest); err != nil {
		return err
	}
	rows, err := s.transactions.SettleApproval(ctx, tx, parked.ID, newSource)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTransferNotPending
	}
	if err := s.transactions.Create(ctx, tx, store.TransactionInput{
		ID:               uuid.NewString(),
		AccountID:        destination.ID,
		Type:             TxDeposit,
		Amount:           parked.Amount,
		Description:      parked.Description,
		RelatedAccountID: &source.ID,
		BalanceAfter:     newDest,
		ApprovalStatus:   ApprovalApproved,
	}); err != nil {
		return err
	}
	if err := s.logApproval(ctx, tx, adminID, parked, source.UserID); err != nil {
		return err
	}
	*updates = append(*updates,
		balanceNotice{userID: source.UserID, accountID: source.ID, balance: newSource},
		balanceNotice{userID: destination.UserID, accountID: destination.ID, balance: newDest},
	)
	return nil
}

func (s *AdminService) settleWithdrawal(ctx context.Context, tx *sqlx.Tx, adminID string, parked store.Transaction, updates *[]balanceNotice) error {
	account, err := s.accounts.GetForUpdate(ctx, tx, parked.AccountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSourceNotFound
		}
		return err
	}
	if account.Status != "active" {
		return ErrSourceNotFound
	}
	if account.Balance < parked.Amount {
		return ErrInsufficientFunds
	}
	newBalance := account.Balance - parked.Amount
	if err := s.accounts.UpdateBalance(ctx, tx, account.ID, newBalance); err != nil {
		return err
	}
	rows, err := s.transactions.SettleApproval(ctx, tx, parked.ID, newBalance)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTransferNotPending
	}
	if err := s.logApproval(ctx, tx, adminID, parked, account.UserID); err != nil {
		return err
	}
	*updates = append(*updates, balanceNotice{userID: account.UserID, accountID: account.ID, balance: newBalance})
	return nil
}

func (s *AdminService) logApproval(ctx context.Context, tx *sqlx.Tx, adminID string, parked store.Transaction, ownerUserID string) error {
	metadata, _ := json.Marshal(map[string]any{
		"transaction_id": parked.ID,
		"amount":         money.FormatMinor(parked.Amount),
	})
	return s.actions.Log(ctx, tx, adminID, "transaction_approved", "Approved pending "+parked.Type, string(metadata), &ownerUserID, &parked.AccountID)
}

// RejectTransfer cancels a parked transaction. No balance was touched when it
// was parked, so rejection only flips its status.
func (s *AdminService) RejectTransfer(ctx context.Context, adminID, transactionID string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		parked, err := s.transactions.GetPendingForUpdate(ctx, tx, transactionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTransferNotPending
			}
			return err
		}
		rows, err := s.transactions.MarkRejected(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrTransferNotPending
		}
		metadata, _ := json.Marshal(map[string]any{
			"transaction_id": parked.ID,
			"amount":         money.FormatMinor(parked.Amount),
		})
		return s.actions.Log(ctx, tx, adminID, "transaction_rejected", "Rejected pending "+parked.Type, string(metadata), nil, &parked.AccountID)
	})
}

type ApprovalSettingsUpdate struct {
	RequireAll          *bool
	TransferThreshold   *int64
	WithdrawalThreshold *int64
}

func (s *AdminService) UpdateApprovalSettings(ctx context.Context, adminID string, update ApprovalSettingsUpdate) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		changed := map[string]string{}
		if update.RequireAll != nil {
			value := "false"
			if *update.RequireAll {
				value = "true"
			}
			changed[settingRequireAll] = value
		}
		if update.TransferThreshold != nil {
			changed[settingTransferThreshold] = money.FormatMinor(*update.TransferThreshold)
		}
		if update.WithdrawalThreshold != nil {
			changed[settingWithdrawalThreshold] = money.FormatMinor(*update.WithdrawalThreshold)
		}
		for name, value := range changed {
			if err := s.settings.Set(ctx, tx, name, value); err != nil {
				return err
			}
		}
		metadata, _ := json.Marshal(changed)
		return s.actions.Log(ctx, tx, adminID, "settings_updated", "Updated approval settings", string(metadata), nil, nil)
	})
}
