package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pesobot/events"
	"pesobot/models"
)

const (
	captchaLength  = 5
	captchaCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	captchaRewardMin = 1
	captchaRewardMax = 10
)

// captchaService implements the CaptchaService interface
type captchaService struct {
	uowFactory UnitOfWorkFactory
	rng        Rand
}

// NewCaptchaService creates a new captcha service
func NewCaptchaService(uowFactory UnitOfWorkFactory, rng Rand) CaptchaService {
	return &captchaService{
		uowFactory: uowFactory,
		rng:        rng,
	}
}

// Issue generates a fresh 5-character captcha for the user. Any unsolved
// prior captcha is silently replaced; there is no stacking and no expiry.
func (s *captchaService) Issue(ctx context.Context, telegramID int64, username string) (*models.CaptchaChallenge, error) {
	code := s.generateCode()
	issuedAt := time.Now().UTC()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if _, err := ensureAccount(ctx, uow, telegramID, username); err != nil {
		return nil, err
	}

	if err := uow.AccountRepository().SetCaptcha(ctx, telegramID, code, issuedAt); err != nil {
		return nil, fmt.Errorf("failed to store captcha: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.CaptchaChallenge{Code: code, IssuedAt: issuedAt}, nil
}

// Verify checks an answer against the stored captcha, case-insensitively.
// A correct answer credits a uniform reward to both pools so captcha
// earnings are immediately withdrawable, unlike game winnings.
func (s *captchaService) Verify(ctx context.Context, telegramID int64, username, answer string) (*models.CaptchaResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := ensureAccount(ctx, uow, telegramID, username)
	if err != nil {
		return nil, err
	}

	if !account.HasPendingCaptcha() {
		return nil, ErrNoActiveCaptcha
	}

	if !strings.EqualFold(strings.TrimSpace(answer), *account.CaptchaCode) {
		// State untouched: the user may keep guessing or request a fresh captcha
		return nil, ErrWrongCaptcha
	}

	reward := int64(s.rng.Intn(captchaRewardMax-captchaRewardMin+1) + captchaRewardMin)

	updated, err := uow.AccountRepository().ApplyDelta(ctx, telegramID, reward, reward)
	if err != nil {
		return nil, fmt.Errorf("failed to credit captcha reward: %w", err)
	}

	if err := uow.AccountRepository().ClearCaptcha(ctx, telegramID); err != nil {
		return nil, fmt.Errorf("failed to clear captcha: %w", err)
	}

	entry := &models.LedgerEntry{
		TelegramID:         telegramID,
		WalletBefore:       account.Wallet,
		WalletAfter:        updated.Wallet,
		WithdrawableBefore: account.Withdrawable,
		WithdrawableAfter:  updated.Withdrawable,
		EntryType:          models.EntryTypeCaptchaReward,
		Metadata: map[string]any{
			"reward": reward,
		},
	}
	if err := RecordLedgerEntry(ctx, uow, entry); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.CaptchaSolvedEvent{
		TelegramID: telegramID,
		Reward:     reward,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.CaptchaResult{
		Reward:          reward,
		NewWallet:       updated.Wallet,
		NewWithdrawable: updated.Withdrawable,
	}, nil
}

func (s *captchaService) generateCode() string {
	var b strings.Builder
	for i := 0; i < captchaLength; i++ {
		b.WriteByte(captchaCharset[s.rng.Intn(len(captchaCharset))])
	}
	return b.String()
}
