package testutil

import (
	"pesobot/models"
)

// CreateTestLedgerEntry creates a ledger entry with default values
func CreateTestLedgerEntry(telegramID int64, entryType models.EntryType) *models.LedgerEntry {
	return &models.LedgerEntry{
		TelegramID:         telegramID,
		WalletBefore:       100,
		WalletAfter:        90,
		WithdrawableBefore: 0,
		WithdrawableAfter:  0,
		EntryType:          entryType,
		Metadata: map[string]any{
			"test": true,
		},
	}
}

// CreateTestWithdrawal creates a pending withdrawal request with default values
func CreateTestWithdrawal(telegramID int64, amount int64) *models.Withdrawal {
	return &models.Withdrawal{
		TelegramID: telegramID,
		Amount:     amount,
		Status:     models.WithdrawalStatusPending,
	}
}
