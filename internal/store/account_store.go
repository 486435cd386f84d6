package store

import (
	"context"
	"time"
)

type AccountStore struct {
	db DB
}

type Account struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	AccountNumber string    `db:"account_number"`
	AccountType   string    `db:"account_type"`
	Balance       int64     `db:"balance"`
	Status        string    `db:"status"`
	InterestRate  string    `db:"interest_rate"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type AccountInput struct {
	ID            string
	UserID        string
	AccountNumber string
	AccountType   string
	Balance       int64
	InterestRate  string
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, tx Execer, input AccountInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, account_number, account_type, balance, status, interest_rate)
		VALUES ($1, $2, $3, $4, $5, 'active', $6)
	`, input.ID, input.UserID, input.AccountNumber, input.AccountType, input.Balance, input.InterestRate)
	return err
}

func (s *AccountStore) GetByID(ctx context.Context, accountID string) (Account, error) {
	var row Account
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, account_number, account_type, balance, status, interest_rate, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`, accountID)
	if err != nil {
		return Account{}, err
	}
	return row, nil
}

// GetForUpdate locks the account row for the rest of the transaction. Every
// balance mutation must read through this lock first.
func (s *AccountStore) GetForUpdate(ctx context.Context, tx Getter, accountID string) (Account, error) {
	var row Account
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, account_number, account_type, balance, status, interest_rate, created_at, updated_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, accountID)
	if err != nil {
		return Account{}, err
	}
	return row, nil
}

// FindReceivable resolves the account credited when a user receives money:
// their active checking account if one exists, otherwise the oldest active
// account. The row is locked.
func (s *AccountStore) FindReceivable(ctx context.Context, tx Getter, userID string) (Account, error) {
	var row Account
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, account_number, account_type, balance, status, interest_rate, created_at, updated_at
		FROM accounts
		WHERE user_id = $1 AND status = 'active'
		ORDER BY CASE WHEN account_type = 'checking' THEN 0 ELSE 1 END, created_at
		LIMIT 1
		FOR UPDATE
	`, userID)
	if err != nil {
		return Account{}, err
	}
	return row, nil
}

func (s *AccountStore) UpdateBalance(ctx context.Context, tx Execer, accountID string, balance int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`, balance, accountID)
	return err
}

// DebitWithFloor decrements the balance only when funds cover the amount.
// Zero rows affected means insufficient funds.
func (s *AccountStore) DebitWithFloor(ctx context.Context, tx Execer, accountID string, amount int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = balance - $1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1
	`, amount, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *AccountStore) Credit(ctx context.Context, tx Execer, accountID string, amount int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
	`, amount, accountID)
	return err
}

func (s *AccountStore) ListByUser(ctx context.Context, userID string) ([]Account, error) {
	var rows []Account
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, account_number, account_type, balance, status, interest_rate, created_at, updated_at
		FROM accounts
		WHERE user_id = $1 AND status <> 'closed'
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Close marks the account closed. Accounts are never deleted.
func (s *AccountStore) Close(ctx context.Context, tx Execer, accountID, userID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET status = 'closed', updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status <> 'closed' AND balance = 0
	`, accountID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
