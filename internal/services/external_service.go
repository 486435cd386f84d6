package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"unitedbank/internal/db"
	"unitedbank/internal/money"
	"unitedbank/internal/store"
	"unitedbank/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// ExternalService handles money movement where one leg is identified by an
// email address or an external bank account rather than a local account id.
// When the counterparty resolves to a local account the movement follows the
// same two-leg pattern as an internal transfer, with external_transfers rows
// carrying the human-readable metadata.
type ExternalService struct {
	txRunner     db.TxRunner
	accounts     AccountStore
	transactions TransactionStore
	externals    ExternalTransferStore
	requests     TransferRequestStore
	users        UserStore
	hub          BalanceHub
	notifier     RequestNotifier
	logger       *logrus.Logger
}

func NewExternalService(txRunner db.TxRunner, accounts AccountStore, transactions TransactionStore, externals ExternalTransferStore, requests TransferRequestStore, users UserStore, hub BalanceHub, notifier RequestNotifier, logger *logrus.Logger) *ExternalService {
	return &ExternalService{
		txRunner:     txRunner,
		accounts:     accounts,
		transactions: transactions,
		externals:    externals,
		requests:     requests,
		users:        users,
		hub:          hub,
		notifier:     notifier,
		logger:       logger,
	}
}

type SendToUserRequest struct {
	UserID         string
	UserEmail      string
	FromAccountID  string
	RecipientEmail string
	AmountMinor    int64
	Description    string
}

type SendToUserResult struct {
	TransferID     string
	RecipientName  string
	NewFromBalance int64
}

func (s *ExternalService) SendToUser(ctx context.Context, req SendToUserRequest) (SendToUserResult, error) {
	if req.AmountMinor <= 0 {
		return SendToUserResult{}, ErrInvalidAmount
	}
	var result SendToUserResult
	var recipientUserID string
	var recipientAccountID string
	var recipientBalance int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		sender, err := s.accounts.GetForUpdate(ctx, tx, req.FromAccountID)
		if err != nil || sender.UserID != req.UserID || sender.Status != "active" {
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return err
			}
			return ErrSourceNotFound
		}
		if sender.Balance < req.AmountMinor {
			return ErrInsufficientFunds
		}
		recipient, err := s.users.GetByEmail(ctx, req.RecipientEmail)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrRecipientNotFound
			}
			return err
		}
		recipientAccount, err := s.accounts.FindReceivable(ctx, tx, recipient.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNoActiveAccount
			}
			return err
		}
		if recipientAccount.ID == req.FromAccountID {
			return ErrSameAccount
		}
		recipientUserID = recipient.ID
		recipientAccountID = recipientAccount.ID
		recipientName := recipient.FirstName + " " + recipient.LastName

		newSender := sender.Balance - req.AmountMinor
		newRecipient := recipientAccount.Balance + req.AmountMinor
		recipientBalance = newRecipient
		if err := s.accounts.UpdateBalance(ctx, tx, req.FromAccountID, newSender); err != nil {
			return err
		}
		if err := s.accounts.UpdateBalance(ctx, tx, recipientAccount.ID, newRecipient); err != nil {
			return err
		}

		transferID := uuid.NewString()
		if err := s.externals.Create(ctx, tx, store.ExternalTransferInput{
			ID:                  transferID,
			AccountID:           req.FromAccountID,
			TransferType:        "p2p",
			Direction:           "outgoing",
			Amount:              req.AmountMinor,
			RecipientName:       &recipientName,
			RecipientIdentifier: &req.RecipientEmail,
			Status:              "completed",
			Description:         orDefault(req.Description, "Transfer to "+recipient.FirstName),
			Completed:           true,
		}); err != nil {
			return err
		}
		senderEmail := req.UserEmail
		if err := s.externals.Create(ctx, tx, store.ExternalTransferInput{
			ID:                  uuid.NewString(),
			AccountID:           recipientAccount.ID,
			TransferType:        "p2p",
			Direction:           "incoming",
			Amount:              req.AmountMinor,
			RecipientIdentifier: &senderEmail,
			Status:              "completed",
			Description:         orDefault(req.Description, "Received money"),
			Completed:           true,
		}); err != nil {
			return err
		}

		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:               uuid.NewString(),
			AccountID:        req.FromAccountID,
			Type:             TxWithdrawal,
			Amount:           req.AmountMinor,
			Description:      "Sent to " + recipientName,
			RelatedAccountID: &recipientAccountID,
			BalanceAfter:     newSender,
			ApprovalStatus:   ApprovalApproved,
		}); err != nil {
			return err
		}
		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:               uuid.NewString(),
			AccountID:        recipientAccount.ID,
			Type:             TxDeposit,
			Amount:           req.AmountMinor,
			Description:      "Received from " + req.UserEmail,
			RelatedAccountID: &req.FromAccountID,
			BalanceAfter:     newRecipient,
			ApprovalStatus:   ApprovalApproved,
		}); err != nil {
			return err
		}
		result = SendToUserResult{
			TransferID:     transferID,
			RecipientName:  recipientName,
			NewFromBalance: newSender,
		}
		return nil
	})
	if err != nil {
		return SendToUserResult{}, err
	}
	s.hub.BroadcastBalance(req.UserID, websocket.BalanceUpdate{
		AccountID: req.FromAccountID,
		Balance:   money.FormatMinor(result.NewFromBalance),
	})
	s.hub.BroadcastBalance(recipientUserID, websocket.BalanceUpdate{
		AccountID: recipientAccountID,
		Balance:   money.FormatMinor(recipientBalance),
	})
	return result, nil
}

type SendToBankRequest struct {
	UserID            string
	FromAccountID     string
	TransferType      string // wire | ach
	BankName          string
	AccountNumber     string
	RoutingNumber     string
	AccountHolderName string
	AmountMinor       int64
	Description       string
}

type SendToBankResult struct {
	TransferID string
	Status     string
	NewBalance int64
}

// SendToBank debits the local account only; the matching credit lives in
// another bank's ledger. Wire transfers complete immediately, ACH transfers
// stay pending until the settlement worker picks them up.
func (s *ExternalService) SendToBank(ctx context.Context, req SendToBankRequest) (SendToBankResult, error) {
	if req.AmountMinor <= 0 {
		return SendToBankResult{}, ErrInvalidAmount
	}
	transferType := req.TransferType
	if transferType == "" {
		transferType = "ach"
	}
	if transferType != "wire" && transferType != "ach" {
		return SendToBankResult{}, ErrInvalidTransferType
	}
	status := "pending"
	if transferType == "wire" {
		status = "completed"
	}
	var result SendToBankResult
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
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
		transferID := uuid.NewString()
		if err := s.externals.Create(ctx, tx, store.ExternalTransferInput{
			ID:                  transferID,
			AccountID:           req.FromAccountID,
			TransferType:        transferType,
			Direction:           "outgoing",
			Amount:              req.AmountMinor,
			RecipientName:       &req.AccountHolderName,
			RecipientIdentifier: &req.AccountNumber,
			BankName:            &req.BankName,
			RoutingNumber:       &req.RoutingNumber,
			Status:              status,
			Description:         orDefault(req.Description, "Transfer to "+req.BankName),
			Completed:           status == "completed",
		}); err != nil {
			return err
		}
		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:             uuid.NewString(),
			AccountID:      req.FromAccountID,
			Type:           TxWithdrawal,
			Amount:         req.AmountMinor,
			Description:    fmt.Sprintf("External transfer to %s - %s", req.BankName, req.AccountHolderName),
			BalanceAfter:   newBalance,
			ApprovalStatus: ApprovalApproved,
		}); err != nil {
			return err
		}
		result = SendToBankResult{TransferID: transferID, Status: status, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return SendToBankResult{}, err
	}
	s.hub.BroadcastBalance(req.UserID, websocket.BalanceUpdate{
		AccountID: req.FromAccountID,
		Balance:   money.FormatMinor(result.NewBalance),
	})
	return result, nil
}

type RequestMoneyRequest struct {
	RequesterUserID string
	ToAccountID     string
	PayerEmail      string
	AmountMinor     int64
	Description     string
}

func (s *ExternalService) RequestMoney(ctx context.Context, req RequestMoneyRequest) (string, error) {
	if req.AmountMinor <= 0 {
		return "", ErrInvalidAmount
	}
	account, err := s.accounts.GetByID(ctx, req.ToAccountID)
	if err != nil || account.UserID != req.RequesterUserID {
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
		return "", ErrAccountNotFound
	}
	payer, err := s.users.GetByEmail(ctx, req.PayerEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrRecipientNotFound
		}
		return "", err
	}
	requester, err := s.users.GetByID(ctx, req.RequesterUserID)
	if err != nil {
		return "", err
	}
	requestID := uuid.NewString()
	description := orDefault(req.Description, "Payment request")
	if err := s.requests.Create(ctx, store.TransferRequestInput{
		ID:                 requestID,
		RequesterUserID:    req.RequesterUserID,
		RequesterAccountID: req.ToAccountID,
		PayerEmail:         req.PayerEmail,
		Amount:             req.AmountMinor,
		Description:        description,
	}); err != nil {
		return "", err
	}
	// Best effort; a failed notice never fails the request.
	s.notifier.SendRequestNotice(payer.Email, requester.FirstName+" "+requester.LastName, req.AmountMinor, description)
	return requestID, nil
}

type PayRequestInput struct {
	RequestID     string
	PayerUserID   string
	PayerEmail    string
	FromAccountID string
}

func (s *ExternalService) PayRequest(ctx context.Context, input PayRequestInput) (int64, error) {
	var newPayerBalance int64
	var requesterUserID string
	var requesterAccountID string
	var requesterBalance int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		request, err := s.requests.GetPendingForPayer(ctx, tx, input.RequestID, input.PayerEmail)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrRequestNotFound
			}
			return err
		}
		payerAccount, err := s.accounts.GetForUpdate(ctx, tx, input.FromAccountID)
		if err != nil || payerAccount.UserID != input.PayerUserID || payerAccount.Status != "active" {
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return err
			}
			return ErrSourceNotFound
		}
		if payerAccount.Balance < request.Amount {
			return ErrInsufficientFunds
		}
		requesterAccount, err := s.accounts.GetForUpdate(ctx, tx, request.RequesterAccountID)
		if err != nil || requesterAccount.Status != "active" {
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return err
			}
			return ErrDestinationNotFound
		}
		requesterUserID = requesterAccount.UserID
		requesterAccountID = requesterAccount.ID

		newPayerBalance = payerAccount.Balance - request.Amount
		requesterBalance = requesterAccount.Balance + request.Amount
		if err := s.accounts.UpdateBalance(ctx, tx, input.FromAccountID, newPayerBalance); err != nil {
			return err
		}
		if err := s.accounts.UpdateBalance(ctx, tx, requesterAccount.ID, requesterBalance); err != nil {
			return err
		}
		rows, err := s.requests.MarkPaid(ctx, tx, input.RequestID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrRequestNotFound
		}
		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:               uuid.NewString(),
			AccountID:        input.FromAccountID,
			Type:             TxWithdrawal,
			Amount:           request.Amount,
			Description:      "Payment request: " + request.Description,
			RelatedAccountID: &requesterAccountID,
			BalanceAfter:     newPayerBalance,
			ApprovalStatus:   ApprovalApproved,
		}); err != nil {
			return err
		}
		return s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:               uuid.NewString(),
			AccountID:        requesterAccount.ID,
			Type:             TxDeposit,
			Amount:           request.Amount,
			Description:      "Payment received: " + request.Description,
			RelatedAccountID: &input.FromAccountID,
			BalanceAfter:     requesterBalance,
			ApprovalStatus:   ApprovalApproved,
		})
	})
	if err != nil {
		return 0, err
	}
	s.hub.BroadcastBalance(input.PayerUserID, websocket.BalanceUpdate{
		AccountID: input.FromAccountID,
		Balance:   money.FormatMinor(newPayerBalance),
	})
	s.hub.BroadcastBalance(requesterUserID, websocket.BalanceUpdate{
		AccountID: requesterAccountID,
		Balance:   money.FormatMinor(requesterBalance),
	})
	return newPayerBalance, nil
}

// DeclineRequest is a single conditional update: the transition only happens
// while the request is still pending, so a concurrent pay cannot race it.
func (s *ExternalService) DeclineRequest(ctx context.Context, requestID, payerEmail string) error {
	rows, err := s.requests.MarkDeclined(ctx, requestID, payerEmail)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRequestNotFound
	}
	return nil
}
