package store

import (
	"context"
	"time"
)

type ExternalTransferStore struct {
	db DB
}

type ExternalTransfer struct {
	ID                  string     `db:"id"`
	AccountID           string     `db:"account_id"`
	TransferType        string     `db:"transfer_type"`
	Direction           string     `db:"direction"`
	Amount              int64      `db:"amount"`
	RecipientName       *string    `db:"recipient_name"`
	RecipientIdentifier *string    `db:"recipient_identifier"`
	BankName            *string    `db:"bank_name"`
	RoutingNumber       *string    `db:"routing_number"`
	Status              string     `db:"status"`
	Description         string     `db:"description"`
	CreatedAt           time.Time  `db:"created_at"`
	CompletedAt         *time.Time `db:"completed_at"`
}

type ExternalTransferInput struct {
	ID                  string
	AccountID           string
	TransferType        string
	Direction           string
	Amount              int64
	RecipientName       *string
	RecipientIdentifier *string
	BankName            *string
	RoutingNumber       *string
	Status              string
	Description         string
	Completed           bool
}

func NewExternalTransferStore(db DB) *ExternalTransferStore {
	return &ExternalTransferStore{db: db}
}

func (s *ExternalTransferStore) Create(ctx context.Context, tx Execer, input ExternalTransferInput) error {
	var completedAt *time.Time
	if input.Completed {
		now := time.Now().UTC()
		completedAt = &now
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO external_transfers
			(id, account_id, transfer_type, direction, amount, recipient_name,
			 recipient_identifier, bank_name, routing_number, status, description, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, input.ID, input.AccountID, input.TransferType, input.Direction, input.Amount,
		input.RecipientName, input.RecipientIdentifier, input.BankName, input.RoutingNumber,
		input.Status, input.Description, completedAt)
	return err
}

func (s *ExternalTransferStore) ListByUser(ctx context.Context, userID string) ([]ExternalTransfer, error) {
	var rows []ExternalTransfer
	err := s.db.SelectContext(ctx, &rows, `
		SELECT et.id, et.account_id, et.transfer_type, et.direction, et.amount,
		       et.recipient_name, et.recipient_identifier, et.bank_name, et.routing_number,
		       et.status, et.description, et.created_at, et.completed_at
		FROM external_transfers et
		INNER JOIN accounts a ON a.id = et.account_id
		WHERE a.user_id = $1
		ORDER BY et.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SettleDue completes outgoing ACH transfers that have aged past the hold
// window. The status condition rides in the statement, so a concurrent cancel
// cannot be overwritten.
func (s *ExternalTransferStore) SettleDue(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE external_transfers
		SET status = 'completed', completed_at = NOW()
		WHERE transfer_type = 'ach'
		  AND direction = 'outgoing'
		  AND status = 'pending'
		  AND created_at <= $1
	`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
