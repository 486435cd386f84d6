package services

import (
	"context"

	"unitedbank/internal/money"

	"github.com/sirupsen/logrus"
)

const (
	defaultTransferThreshold   = 500000 // 5000.00
	defaultWithdrawalThreshold = 100000 // 1000.00

	settingRequireAll          = "require_all_approvals"
	settingTransferThreshold   = "transfer_threshold"
	settingWithdrawalThreshold = "withdrawal_threshold"
)

// Policy is a snapshot of the approval settings. NeedsApproval is a pure
// function of the snapshot, so the decision is testable without a database.
type Policy struct {
	RequireAll          bool
	TransferThreshold   int64
	WithdrawalThreshold int64
}

// NeedsApproval reports whether a movement of the given kind and size must be
// parked for admin review. A zero threshold disables the check for that kind;
// the zero-value Policy approves everything, which is what the failure-open
// load relies on.
func (p Policy) NeedsApproval(kind string, amountMinor int64) bool {
	if p.RequireAll {
		return true
	}
	switch kind {
	case TxTransfer:
		return p.TransferThreshold > 0 && amountMinor >= p.TransferThreshold
	case TxWithdrawal:
		return p.WithdrawalThreshold > 0 && amountMinor >= p.WithdrawalThreshold
	default:
		return false
	}
}

func DefaultPolicy() Policy {
	return Policy{
		TransferThreshold:   defaultTransferThreshold,
		WithdrawalThreshold: defaultWithdrawalThreshold,
	}
}

// ApprovalGate loads the current policy from the settings table. A failed
// load fails open: transfers proceed without approval rather than blocking
// all money movement on a missing settings table.
type ApprovalGate struct {
	settings SettingsStore
	logger   *logrus.Logger
}

func NewApprovalGate(settings SettingsStore, logger *logrus.Logger) *ApprovalGate {
	return &ApprovalGate{settings: settings, logger: logger}
}

func (g *ApprovalGate) Load(ctx context.Context) Policy {
	policy := DefaultPolicy()
	values, err := g.settings.All(ctx)
	if err != nil {
		g.logger.WithError(err).Warn("approval settings unavailable, failing open")
		return Policy{}
	}
	if values[settingRequireAll] == "true" {
		policy.RequireAll = true
	}
	if raw, ok := values[settingTransferThreshold]; ok {
		if minor, err := money.ParseMinor(raw); err == nil && minor > 0 {
			policy.TransferThreshold = minor
		}
	}
	if raw, ok := values[settingWithdrawalThreshold]; ok {
		if minor, err := money.ParseMinor(raw); err == nil && minor > 0 {
			policy.WithdrawalThreshold = minor
		}
	}
	return policy
}
