package service

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"pesobot/config"
	"pesobot/models"
)

const (
	diceSides         = 6
	scatterFrameCount = 7
	scatterReelSize   = 3
)

// scatterSymbols is the cosmetic symbol set shown on the reels
var scatterSymbols = []string{"🍒", "7️⃣", "🔔", "🍋", "⭐", "🍀", "🍉", "🍇"}

// gameService implements the GameService interface
type gameService struct {
	uowFactory UnitOfWorkFactory
	rng        Rand
}

// NewGameService creates a new game service
func NewGameService(uowFactory UnitOfWorkFactory, rng Rand) GameService {
	return &gameService{
		uowFactory: uowFactory,
		rng:        rng,
	}
}

// PlayDice settles a parity bet against a d6 roll
func (s *gameService) PlayDice(ctx context.Context, telegramID int64, username string, prediction models.Parity, stake int64) (*models.DiceResult, error) {
	if !prediction.Valid() {
		return nil, fmt.Errorf("prediction must be %q or %q", models.ParityOdd, models.ParityEven)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	account, err := s.admitStake(ctx, uow, telegramID, username, stake)
	if err != nil {
		return nil, err
	}

	// Stake is already at risk; now determine the outcome
	roll := s.rng.Intn(diceSides) + 1
	isOdd := roll%2 == 1
	won := (isOdd && prediction == models.ParityOdd) || (!isOdd && prediction == models.ParityEven)

	result := &models.DiceResult{
		Stake:      stake,
		Prediction: prediction,
		Roll:       roll,
		Won:        won,
	}

	entryType := models.EntryTypeDiceLoss
	if won {
		entryType = models.EntryTypeDiceWin
		result.Payout = 2 * stake
	}

	settled, err := s.settle(ctx, uow, account, stake, won, entryType, map[string]any{
		"stake":      stake,
		"prediction": string(prediction),
		"roll":       roll,
		"won":        won,
	})
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	result.NewWallet = settled.Wallet
	result.NewWithdrawable = settled.Withdrawable
	return result, nil
}

// PlayScatter settles a scatter spin with a fixed win chance. The win is
// drawn first; reel symbols and animation frames are derived afterwards so
// the presentation can never influence or leak the outcome.
func (s *gameService) PlayScatter(ctx context.Context, telegramID int64, username string, stake int64) (*models.ScatterResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := s.admitStake(ctx, uow, telegramID, username, stake)
	if err != nil {
		return nil, err
	}

	won := s.rng.Intn(100) < config.Get().ScatterWinPercent

	symbols := make([]string, scatterReelSize)
	if won {
		// A winning spin shows a triple; the symbol itself is cosmetic
		symbol := scatterSymbols[s.rng.Intn(len(scatterSymbols))]
		for i := range symbols {
			symbols[i] = symbol
		}
	} else {
		for i := range symbols {
			symbols[i] = scatterSymbols[s.rng.Intn(len(scatterSymbols))]
		}
	}

	frames := make([][]string, scatterFrameCount)
	for i := range frames {
		frame := make([]string, scatterReelSize)
		for j := range frame {
			frame[j] = scatterSymbols[s.rng.Intn(len(scatterSymbols))]
		}
		frames[i] = frame
	}

	result := &models.ScatterResult{
		Stake:   stake,
		Won:     won,
		Symbols: symbols,
		Frames:  frames,
	}

	entryType := models.EntryTypeScatterLoss
	if won {
		entryType = models.EntryTypeScatterWin
		result.Payout = 2 * stake
	}

	settled, err := s.settle(ctx, uow, account, stake, won, entryType, map[string]any{
		"stake":   stake,
		"won":     won,
		"symbols": symbols,
	})
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	result.NewWallet = settled.Wallet
	result.NewWithdrawable = settled.Withdrawable
	return result, nil
}

// admitStake runs the common pre-checks for every game call and puts the
// stake at risk: the account is resolved (auto-created if missing), the
// stake validated against the wallet, then debited from the wallet only
// before any outcome is drawn.
func (s *gameService) admitStake(ctx context.Context, uow UnitOfWork, telegramID int64, username string, stake int64) (*models.Account, error) {
	if stake <= 0 {
		return nil, ErrInvalidStake
	}

	account, err := ensureAccount(ctx, uow, telegramID, username)
	if err != nil {
		return nil, err
	}

	if stake > account.Wallet {
		return nil, ErrInsufficientFunds
	}

	if _, err := uow.AccountRepository().ApplyDelta(ctx, telegramID, -stake, 0); err != nil {
		if errors.Is(err, ErrInvariantViolation) {
			// A concurrent operation on the same account spent the funds
			// between the pre-check and the debit
			log.WithFields(log.Fields{
				"telegramID": telegramID,
				"stake":      stake,
			}).Warn("Stake debit lost a race against a concurrent operation")
			return nil, ErrInsufficientFunds
		}
		return nil, fmt.Errorf("failed to debit stake: %w", err)
	}

	return account, nil
}

// settle credits the payout for a won game and journals the whole
// settlement as one ledger entry. A win returns the stake plus an equal
// profit to the wallet, with only the profit becoming withdrawable.
func (s *gameService) settle(ctx context.Context, uow UnitOfWork, account *models.Account, stake int64, won bool, entryType models.EntryType, metadata map[string]any) (*models.Account, error) {
	var settled *models.Account
	var err error

	if won {
		settled, err = uow.AccountRepository().ApplyDelta(ctx, account.TelegramID, 2*stake, stake)
		if err != nil {
			return nil, fmt.Errorf("failed to credit payout: %w", err)
		}
	} else {
		settled, err = uow.AccountRepository().GetByTelegramID(ctx, account.TelegramID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload account: %w", err)
		}
		if settled == nil {
			return nil, ErrAccountNotFound
		}
	}

	entry := &models.LedgerEntry{
		TelegramID:         account.TelegramID,
		WalletBefore:       account.Wallet,
		WalletAfter:        settled.Wallet,
		WithdrawableBefore: account.Withdrawable,
		WithdrawableAfter:  settled.Withdrawable,
		EntryType:          entryType,
		Metadata:           metadata,
	}
	if err := RecordLedgerEntry(ctx, uow, entry); err != nil {
		return nil, err
	}

	return settled, nil
}
