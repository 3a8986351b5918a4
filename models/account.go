package models

import (
	"time"
)

// Account represents a Telegram user with the two balance pools.
// Wallet is the amount available for game stakes; Withdrawable is the
// subset of earnings eligible for payout requests. The pools are tracked
// independently and mutated by parallel deltas, never derived from each
// other.
type Account struct {
	TelegramID      int64      `db:"telegram_id"`
	Username        string     `db:"username"`
	Wallet          int64      `db:"wallet"`
	Withdrawable    int64      `db:"withdrawable"`
	CaptchaCode     *string    `db:"captcha_code"`
	CaptchaIssuedAt *time.Time `db:"captcha_issued_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// HasPendingCaptcha reports whether the account has an unsolved captcha.
func (a *Account) HasPendingCaptcha() bool {
	return a.CaptchaCode != nil && *a.CaptchaCode != ""
}
