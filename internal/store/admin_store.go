package store

import (
	"context"
	"time"
)

// ActionStore is the audit trail for everything an administrator does.
type ActionStore struct {
	db DB
}

type AdminAction struct {
	ID              string    `db:"id"`
	AdminID         string    `db:"admin_id"`
	ActionType      string    `db:"action_type"`
	Description     string    `db:"description"`
	Metadata        string    `db:"metadata"`
	TargetUserID    *string   `db:"target_user_id"`
	TargetAccountID *string   `db:"target_account_id"`
	CreatedAt       time.Time `db:"created_at"`
}

func NewActionStore(db DB) *ActionStore {
	return &ActionStore{db: db}
}

func (s *ActionStore) Log(ctx context.Context, tx Execer, adminID, actionType, description, metadata string, targetUserID, targetAccountID *string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO admin_actions (id, admin_id, action_type, description, metadata, target_user_id, target_account_id)
		VALUES (gen_random_uuid()::text, $1, $2, $3, $4, $5, $6)
	`, adminID, actionType, description, metadata, targetUserID, targetAccountID)
	return err
}

func (s *ActionStore) List(ctx context.Context, limit, offset int) ([]AdminAction, error) {
	var rows []AdminAction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, admin_id, action_type, description, metadata, target_user_id, target_account_id, created_at
		FROM admin_actions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type AdjustmentStore struct {
	db DB
}

type BalanceAdjustmentInput struct {
	ID             string
	AccountID      string
	AdminID        string
	Amount         int64
	AdjustmentType string
	Reason         string
	BalanceBefore  int64
	BalanceAfter   int64
}

func NewAdjustmentStore(db DB) *AdjustmentStore {
	return &AdjustmentStore{db: db}
}

func (s *AdjustmentStore) Create(ctx context.Context, tx Execer, input BalanceAdjustmentInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO balance_adjustments
			(id, account_id, admin_id, amount, adjustment_type, reason, balance_before, balance_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, input.ID, input.AccountID, input.AdminID, input.Amount, input.AdjustmentType,
		input.Reason, input.BalanceBefore, input.BalanceAfter)
	return err
}
