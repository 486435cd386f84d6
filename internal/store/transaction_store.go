package store

import (
	"context"
	"time"
)

// TransactionStore persists the ledger: one immutable row per balance-affecting
// event on one account. Completed transfers always come in linked pairs. The
// only mutation ever applied is settling a pending approval.
type TransactionStore struct {
	db DB
}

type Transaction struct {
	ID               string    `db:"id"`
	AccountID        string    `db:"account_id"`
	Type             string    `db:"type"`
	Amount           int64     `db:"amount"`
	Description      string    `db:"description"`
	RelatedAccountID *string   `db:"related_account_id"`
	BalanceAfter     int64     `db:"balance_after"`
	ApprovalStatus   string    `db:"approval_status"`
	CreatedAt        time.Time `db:"created_at"`
}

type TransactionInput struct {
	ID               string
	AccountID        string
	Type             string
	Amount           int64
	Description      string
	RelatedAccountID *string
	BalanceAfter     int64
	ApprovalStatus   string
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Create(ctx context.Context, tx Execer, input TransactionInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, account_id, type, amount, description, related_account_id, balance_after, approval_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, input.ID, input.AccountID, input.Type, input.Amount, input.Description,
		input.RelatedAccountID, input.BalanceAfter, input.ApprovalStatus)
	return err
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	var rows []Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT t.id, t.account_id, t.type, t.amount, t.description, t.related_account_id,
		       t.balance_after, t.approval_status, t.created_at
		FROM transactions t
		INNER JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = $1
		ORDER BY t.created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *TransactionStore) ListByAccount(ctx context.Context, accountID string, limit int) ([]Transaction, error) {
	var rows []Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, account_id, type, amount, description, related_account_id,
		       balance_after, approval_status, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *TransactionStore) ListPendingApproval(ctx context.Context) ([]Transaction, error) {
	var rows []Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, account_id, type, amount, description, related_account_id,
		       balance_after, approval_status, created_at
		FROM transactions
		WHERE approval_status = 'pending'
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetPendingForUpdate locks a parked transfer so approval and rejection cannot
// both win.
func (s *TransactionStore) GetPendingForUpdate(ctx context.Context, tx Getter, transactionID string) (Transaction, error) {
	var row Transaction
	err := tx.GetContext(ctx, &row, `
		SELECT id, account_id, type, amount, description, related_account_id,
		       balance_after, approval_status, created_at
		FROM transactions
		WHERE id = $1 AND approval_status = 'pending'
		FOR UPDATE
	`, transactionID)
	if err != nil {
		return Transaction{}, err
	}
	return row, nil
}

// SettleApproval flips a parked row to approved, recording the post-debit
// balance. The status condition lives in the same statement as the transition.
func (s *TransactionStore) SettleApproval(ctx context.Context, tx Execer, transactionID string, balanceAfter int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET approval_status = 'approved', balance_after = $2
		WHERE id = $1 AND approval_status = 'pending'
	`, transactionID, balanceAfter)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TransactionStore) MarkRejected(ctx context.Context, tx Execer, transactionID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET approval_status = 'rejected'
		WHERE id = $1 AND approval_status = 'pending'
	`, transactionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
