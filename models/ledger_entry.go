package models

import "time"

// EntryType categorizes a ledger entry
type EntryType string

const (
	EntryTypeInitial       EntryType = "initial"
	EntryTypeCaptchaReward EntryType = "captcha_reward"
	EntryTypeDiceWin       EntryType = "dice_win"
	EntryTypeDiceLoss      EntryType = "dice_loss"
	EntryTypeScatterWin    EntryType = "scatter_win"
	EntryTypeScatterLoss   EntryType = "scatter_loss"
	EntryTypeWithdrawal    EntryType = "withdrawal"
)

// LedgerEntry is an append-only record of a single balance mutation.
// Both pools are captured before and after so the journal can reconstruct
// every account state the system has ever been in.
type LedgerEntry struct {
	ID                 int64          `db:"id"`
	TelegramID         int64          `db:"telegram_id"`
	WalletBefore       int64          `db:"wallet_before"`
	WalletAfter        int64          `db:"wallet_after"`
	WithdrawableBefore int64          `db:"withdrawable_before"`
	WithdrawableAfter  int64          `db:"withdrawable_after"`
	EntryType          EntryType      `db:"entry_type"`
	Metadata           map[string]any `db:"metadata"`
	CreatedAt          time.Time      `db:"created_at"`
}
