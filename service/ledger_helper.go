package service

import (
	"context"
	"fmt"

	"pesobot/config"
	"pesobot/events"
	"pesobot/models"
)

// RecordLedgerEntry records a ledger entry and emits the matching balance
// change event. This is the single entry point for journaling balance
// mutations.
func RecordLedgerEntry(ctx context.Context, uow UnitOfWork, entry *models.LedgerEntry) error {
	if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		TelegramID:        entry.TelegramID,
		EntryType:         entry.EntryType,
		DeltaWallet:       entry.WalletAfter - entry.WalletBefore,
		DeltaWithdrawable: entry.WithdrawableAfter - entry.WithdrawableBefore,
		NewWallet:         entry.WalletAfter,
		NewWithdrawable:   entry.WithdrawableAfter,
	})

	return nil
}

// ensureAccount resolves the account for a user, creating it with the
// starting wallet grant on first contact and refreshing the best-effort
// username on every later one. The grant is recorded in the ledger and
// never repeated.
func ensureAccount(ctx context.Context, uow UnitOfWork, telegramID int64, username string) (*models.Account, error) {
	account, err := uow.AccountRepository().GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	if account != nil {
		if username != "" && account.Username != username {
			if err := uow.AccountRepository().UpdateUsername(ctx, telegramID, username); err != nil {
				return nil, fmt.Errorf("failed to update username: %w", err)
			}
			account.Username = username
		}
		return account, nil
	}

	startingWallet := config.Get().StartingWallet
	account, err = uow.AccountRepository().Create(ctx, telegramID, username, startingWallet)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	entry := &models.LedgerEntry{
		TelegramID:         telegramID,
		WalletBefore:       0,
		WalletAfter:        startingWallet,
		WithdrawableBefore: 0,
		WithdrawableAfter:  0,
		EntryType:          models.EntryTypeInitial,
		Metadata: map[string]any{
			"username": username,
		},
	}
	if err := RecordLedgerEntry(ctx, uow, entry); err != nil {
		return nil, fmt.Errorf("failed to record starting grant: %w", err)
	}

	uow.EventBus().Publish(events.AccountCreatedEvent{
		TelegramID:     telegramID,
		Username:       username,
		StartingWallet: startingWallet,
	})

	return account, nil
}
