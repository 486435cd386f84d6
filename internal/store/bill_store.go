package store

import (
	"context"
	"time"
)

type BillerStore struct {
	db DB
}

type Biller struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	Category      string    `db:"category"`
	Name          string    `db:"name"`
	AccountNumber string    `db:"account_number"`
	Nickname      *string   `db:"nickname"`
	CreatedAt     time.Time `db:"created_at"`
}

func NewBillerStore(db DB) *BillerStore {
	return &BillerStore{db: db}
}

func (s *BillerStore) Create(ctx context.Context, id, userID, category, name, accountNumber string, nickname *string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO billers (id, user_id, category, name, account_number, nickname)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, userID, category, name, accountNumber, nickname)
	return err
}

func (s *BillerStore) GetOwned(ctx context.Context, billerID, userID string) (Biller, error) {
	var row Biller
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, category, name, account_number, nickname, created_at
		FROM billers
		WHERE id = $1 AND user_id = $2
	`, billerID, userID)
	if err != nil {
		return Biller{}, err
	}
	return row, nil
}

func (s *BillerStore) ListByUser(ctx context.Context, userID string) ([]Biller, error) {
	var rows []Biller
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, category, name, account_number, nickname, created_at
		FROM billers
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type BillPaymentStore struct {
	db DB
}

type BillPayment struct {
	ID            string     `db:"id"`
	BillerID      string     `db:"biller_id"`
	FromAccountID string     `db:"from_account_id"`
	Amount        int64      `db:"amount"`
	PaymentDate   *time.Time `db:"payment_date"`
	Memo          *string    `db:"memo"`
	Status        string     `db:"status"`
	BillerName    string     `db:"biller_name"`
	Category      string     `db:"category"`
	CreatedAt     time.Time  `db:"created_at"`
}

type BillPaymentInput struct {
	ID            string
	BillerID      string
	FromAccountID string
	Amount        int64
	PaymentDate   *time.Time
	Memo          *string
}

func NewBillPaymentStore(db DB) *BillPaymentStore {
	return &BillPaymentStore{db: db}
}

func (s *BillPaymentStore) Create(ctx context.Context, tx Execer, input BillPaymentInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO bill_payments (id, biller_id, from_account_id, amount, payment_date, memo, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'completed')
	`, input.ID, input.BillerID, input.FromAccountID, input.Amount, input.PaymentDate, input.Memo)
	return err
}

func (s *BillPaymentStore) ListByUser(ctx context.Context, userID string, limit int) ([]BillPayment, error) {
	var rows []BillPayment
	err := s.db.SelectContext(ctx, &rows, `
		SELECT bp.id, bp.biller_id, bp.from_account_id, bp.amount, bp.payment_date,
		       bp.memo, bp.status, b.name AS biller_name, b.category, bp.created_at
		FROM bill_payments bp
		INNER JOIN billers b ON b.id = bp.biller_id
		INNER JOIN accounts a ON a.id = bp.from_account_id
		WHERE a.user_id = $1
		ORDER BY bp.created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
