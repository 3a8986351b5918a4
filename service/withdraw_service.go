package service

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"pesobot/config"
	"pesobot/events"
	"pesobot/models"
)

// withdrawService implements the WithdrawService interface
type withdrawService struct {
	uowFactory UnitOfWorkFactory
}

// NewWithdrawService creates a new withdraw service
func NewWithdrawService(uowFactory UnitOfWorkFactory) WithdrawService {
	return &withdrawService{
		uowFactory: uowFactory,
	}
}

// Request validates eligibility, atomically debits both pools and appends
// a pending withdrawal request. Removing the amount from the wallet too
// keeps the user from re-betting funds that are already on their way out.
func (s *withdrawService) Request(ctx context.Context, telegramID int64, username string, amount int64) (*models.WithdrawResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if amount < config.Get().WithdrawMinimum {
		return nil, ErrBelowMinimum
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := ensureAccount(ctx, uow, telegramID, username)
	if err != nil {
		return nil, err
	}

	if amount > account.Withdrawable {
		return nil, ErrInsufficientFunds
	}

	updated, err := uow.AccountRepository().ApplyDelta(ctx, telegramID, -amount, -amount)
	if err != nil {
		if errors.Is(err, ErrInvariantViolation) {
			// A concurrent operation drained a pool after the pre-check
			log.WithFields(log.Fields{
				"telegramID": telegramID,
				"amount":     amount,
			}).Warn("Withdrawal debit lost a race against a concurrent operation")
			return nil, ErrInsufficientFunds
		}
		return nil, fmt.Errorf("failed to debit withdrawal amount: %w", err)
	}

	withdrawal := &models.Withdrawal{
		TelegramID: telegramID,
		Amount:     amount,
		Status:     models.WithdrawalStatusPending,
	}
	if err := uow.WithdrawalRepository().Create(ctx, withdrawal); err != nil {
		return nil, fmt.Errorf("failed to create withdrawal request: %w", err)
	}

	entry := &models.LedgerEntry{
		TelegramID:         telegramID,
		WalletBefore:       account.Wallet,
		WalletAfter:        updated.Wallet,
		WithdrawableBefore: account.Withdrawable,
		WithdrawableAfter:  updated.Withdrawable,
		EntryType:          models.EntryTypeWithdrawal,
		Metadata: map[string]any{
			"withdrawal_id": withdrawal.ID,
			"amount":        amount,
		},
	}
	if err := RecordLedgerEntry(ctx, uow, entry); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.WithdrawalRequestedEvent{
		RequestID:  withdrawal.ID,
		TelegramID: telegramID,
		Username:   account.Username,
		Amount:     amount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.WithdrawResult{
		RequestID:       withdrawal.ID,
		Amount:          amount,
		NewWallet:       updated.Wallet,
		NewWithdrawable: updated.Withdrawable,
	}, nil
}

// ListPending returns all pending requests ordered by creation time
func (s *withdrawService) ListPending(ctx context.Context) ([]*models.PendingWithdrawal, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	pending, err := uow.WithdrawalRepository().ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending withdrawals: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return pending, nil
}
