package store

import (
	"context"
	"time"
)

// TransferRequestStore persists money requests: a receivable created by one
// user and settled or declined by another. State transitions are always
// conditioned on the current status inside the same statement.
type TransferRequestStore struct {
	db DB
}

type TransferRequest struct {
	ID                 string     `db:"id"`
	RequesterUserID    string     `db:"requester_user_id"`
	RequesterAccountID string     `db:"requester_account_id"`
	PayerEmail         string     `db:"payer_email"`
	Amount             int64      `db:"amount"`
	Description        string     `db:"description"`
	Status             string     `db:"status"`
	CreatedAt          time.Time  `db:"created_at"`
	PaidAt             *time.Time `db:"paid_at"`
}

type TransferRequestInput struct {
	ID                 string
	RequesterUserID    string
	RequesterAccountID string
	PayerEmail         string
	Amount             int64
	Description        string
}

func NewTransferRequestStore(db DB) *TransferRequestStore {
	return &TransferRequestStore{db: db}
}

func (s *TransferRequestStore) Create(ctx context.Context, input TransferRequestInput) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transfer_requests
			(id, requester_user_id, requester_account_id, payer_email, amount, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
	`, input.ID, input.RequesterUserID, input.RequesterAccountID, input.PayerEmail,
		input.Amount, input.Description)
	return err
}

func (s *TransferRequestStore) ListOutgoing(ctx context.Context, requesterUserID string) ([]TransferRequest, error) {
	var rows []TransferRequest
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, requester_user_id, requester_account_id, payer_email, amount,
		       description, status, created_at, paid_at
		FROM transfer_requests
		WHERE requester_user_id = $1
		ORDER BY created_at DESC
	`, requesterUserID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *TransferRequestStore) ListIncoming(ctx context.Context, payerEmail string) ([]TransferRequest, error) {
	var rows []TransferRequest
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, requester_user_id, requester_account_id, payer_email, amount,
		       description, status, created_at, paid_at
		FROM transfer_requests
		WHERE payer_email = $1
		ORDER BY created_at DESC
	`, payerEmail)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetPendingForPayer locks the request row for settlement. Only the addressed
// payer can load it, and only while it is still pending.
func (s *TransferRequestStore) GetPendingForPayer(ctx context.Context, tx Getter, requestID, payerEmail string) (TransferRequest, error) {
	var row TransferRequest
	err := tx.GetContext(ctx, &row, `
		SELECT id, requester_user_id, requester_account_id, payer_email, amount,
		       description, status, created_at, paid_at
		FROM transfer_requests
		WHERE id = $1 AND payer_email = $2 AND status = 'pending'
		FOR UPDATE
	`, requestID, payerEmail)
	if err != nil {
		return TransferRequest{}, err
	}
	return row, nil
}

func (s *TransferRequestStore) MarkPaid(ctx context.Context, tx Execer, requestID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE transfer_requests
		SET status = 'completed', paid_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, requestID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkDeclined is a single-statement compare-and-swap: a request that was
// already paid or declined reports zero rows.
func (s *TransferRequestStore) MarkDeclined(ctx context.Context, requestID, payerEmail string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE transfer_requests
		SET status = 'declined'
		WHERE id = $1 AND payer_email = $2 AND status = 'pending'
	`, requestID, payerEmail)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
