package store

import (
	"context"
	"time"
)

type Card struct {
	ID              string    `db:"id"`
	UserID          string    `db:"user_id"`
	LinkedAccountID string    `db:"linked_account_id"`
	CardNumber      string    `db:"card_number"`
	CardType        string    `db:"card_type"`
	Design          string    `db:"design"`
	Status          string    `db:"status"`
	ExpiryDate      time.Time `db:"expiry_date"`
	CVV             string    `db:"cvv"`
	CreatedAt       time.Time `db:"created_at"`
}

type CardInput struct {
	ID              string
	UserID          string
	LinkedAccountID string
	CardNumber      string
	CardType        string
	Design          string
	ExpiryDate      time.Time
	CVV             string
}

type CardStore struct {
	db DB
}

func NewCardStore(db DB) *CardStore {
	return &CardStore{db: db}
}

func (s *CardStore) Create(ctx context.Context, input CardInput) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cards
			(id, user_id, linked_account_id, card_number, card_type, design, status, expiry_date, cvv)
		VALUES ($1, $2, $3, $4, $5, $6, 'active', $7, $8)
	`, input.ID, input.UserID, input.LinkedAccountID, input.CardNumber, input.CardType,
		input.Design, input.ExpiryDate, input.CVV)
	return err
}

func (s *CardStore) ListByUser(ctx context.Context, userID string) ([]Card, error) {
	var rows []Card
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, linked_account_id, card_number, card_type, design,
		       status, expiry_date, cvv, created_at
		FROM cards
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus flips a card between active and blocked. The ownership check
// lives in the WHERE clause, so a card owned by someone else reports zero
// rows rather than leaking that it exists.
func (s *CardStore) UpdateStatus(ctx context.Context, cardID, userID, status string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE cards
		SET status = $1
		WHERE id = $2 AND user_id = $3
	`, status, cardID, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
