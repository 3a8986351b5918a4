package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"pesobot/models"
)

func TestGameService_PlayDice_Win(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockPublisher := new(MockEventPublisher)

	mockUoW.SetRepositories(mockAccountRepo, new(MockWithdrawalRepository), mockLedgerRepo, mockPublisher)

	// Intn(6) = 2 -> roll 3, odd
	service := NewGameService(mockFactory, &scriptedRand{values: []int{2}})

	existingAccount := &models.Account{
		TelegramID:   123456,
		Username:     "testuser",
		Wallet:       100,
		Withdrawable: 0,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByTelegramID", ctx, int64(123456)).Return(existingAccount, nil)
	mockAccountRepo.On("ApplyDelta", ctx, int64(123456), int64(-10), int64(0)).Return(&models.Account{
		TelegramID: 123456, Wallet: 90, Withdrawable: 0,
	}, nil)
	mockAccountRepo.On("ApplyDelta", ctx, int64(123456), int64(20), int64(10)).Return(&models.Account{
		TelegramID: 123456, Wallet: 110, Withdrawable: 10,
	}, nil)

	// The whole settlement is journaled as one entry
	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.TelegramID == 123456 &&
			e.WalletBefore == 100 &&
			e.WalletAfter == 110 &&
			e.WithdrawableBefore == 0 &&
			e.WithdrawableAfter == 10 &&
			e.EntryType == models.EntryTypeDiceWin
	})).Return(nil)

	mockPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()

	result, err := service.PlayDice(ctx, 123456, "testuser", models.ParityOdd, 10)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.True(t, result.Won)
	assert.Equal(t, 3, result.Roll)
	assert.Equal(t, int64(20), result.Payout)
	assert.Equal(t, int64(110), result.NewWallet)
	assert.Equal(t, int64(10), result.NewWithdrawable)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestGameService_PlayDice_Loss(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockPublisher := new(MockEventPublisher)

	mockUoW.SetRepositories(mockAccountRepo, new(MockWithdrawalRepository), mockLedgerRepo, mockPublisher)

	// Intn(6) = 3 -> roll 4, even, prediction odd loses
	service := NewGameService(mockFactory, &scriptedRand{values: []int{3}})

	existingAccount := &models.Account{
		TelegramID:   123456,
		Username:     "testuser",
		Wallet:       100,
		Withdrawable: 5,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByTelegramID", ctx, int64(123456)).Return(existingAccount, nil).Once()
	mockAccountRepo.On("ApplyDelta", ctx, int64(123456), int64(-10), int64(0)).Return(&models.Account{
		TelegramID: 123456, Wallet: 90, Withdrawable: 5,
	}, nil)
	// Reload after the stake debit; the withdrawable pool is untouched
	mockAccountRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Account{
		TelegramID: 123456, Wallet: 90, Withdrawable: 5,
	}, nil).Once()

	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.WalletBefore == 100 &&
			e.WalletAfter == 90 &&
			e.WithdrawableBefore == 5 &&
			e.WithdrawableAfter == 5 &&
			e.EntryType == models.EntryTypeDiceLoss
	})).Return(nil)

	mockPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()

	result, err := service.PlayDice(ctx, 123456, "testuser", models.ParityOdd, 10)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.False(t, result.Won)
	assert.Equal(t, 4, result.Roll)
	assert.Equal(t, int64(0), result.Payout)
	assert.Equal(t, int64(90), result.NewWallet)
	assert.Equal(t, int64(5), result.NewWithdrawable)

	mockAccountRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
}

func TestGameService_PlayDice_InvalidPrediction(t *testing.T) {
	ctx := context.Background()

	service := NewGameService(new(MockUnitOfWorkFactory), &scriptedRand{})

	result, err := service.PlayDice(ctx, 123456, "testuser", models.Parity("seven"), 10)

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestGameService_PlayDice_InvalidStake(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)

	mockUoW.SetRepositories(new(MockAccountRepository), new(MockWithdrawalRepository), new(MockLedgerRepository), new(MockEventPublisher))

	service := NewGameService(mockFactory, &scriptedRand{})

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	for _, stake := range []int64{0, -5} {
		result, err := service.PlayDice(ctx, 123456, "testuser", models.ParityOdd, stake)

		assert.ErrorIs(t, err, ErrInvalidStake)
		assert.Nil(t, result)
	}
}

func TestGameService_PlayDice_InsufficientFunds(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)

	mockUoW.SetRepositories(mockAccountRepo, new(MockWithdrawalRepository), new(MockLedgerRepository), new(MockEventPublisher))

	service := NewGameService(mockFactory, &scriptedRand{})

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Account{
		TelegramID: 123456, Username: "testuser", Wallet: 100,
	}, nil)

	result, err := service.PlayDice(ctx, 123456, "testuser", models.ParityOdd, 200)

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Nil(t, result)
	mockAccountRepo.AssertExpectations(t)
}

func TestGameService_PlayDice_StakeDebitRace(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)

	mockUoW.SetRepositories(mockAccountRepo, new(MockWithdrawalRepository), new(MockLedgerRepository), new(MockEventPublisher))

	service := NewGameService(mockFactory, &scriptedRand{})

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Account{
		TelegramID: 123456, Username: "testuser", Wallet: 100,
	}, nil)
	// A concurrent spend drained the wallet between pre-check and debit
	mockAccountRepo.On("ApplyDelta", ctx, int64(123456), int64(-50), int64(0)).Return(nil, ErrInvariantViolation)

	result, err := service.PlayDice(ctx, 123456, "testuser", models.ParityOdd, 50)

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Nil(t, result)
	mockAccountRepo.AssertExpectations(t)
}

func TestGameService_PlayScatter_Win(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockPublisher := new(MockEventPublisher)

	mockUoW.SetRepositories(mockAccountRepo, new(MockWithdrawalRepository), mockLedgerRepo, mockPublisher)

	// Intn(100) = 10 < 30 win chance; remaining draws pick reel symbols
	service := NewGameService(mockFactory, &scriptedRand{values: []int{10, 4}})

	existingAccount := &models.Account{
		TelegramID:   123456,
		Username:     "testuser",
		Wallet:       100,
		Withdrawable: 0,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByTelegramID", ctx, int64(123456)).Return(existingAccount, nil)
	mockAccountRepo.On("ApplyDelta", ctx, int64(123456), int64(-20), int64(0)).Return(&models.Account{
		TelegramID: 123456, Wallet: 80,
	}, nil)
	mockAccountRepo.On("ApplyDelta", ctx, int64(123456), int64(40), int64(20)).Return(&models.Account{
		TelegramID: 123456, Wallet: 120, Withdrawable: 20,
	}, nil)

	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.WalletBefore == 100 &&
			e.WalletAfter == 120 &&
			e.WithdrawableAfter == 20 &&
			e.EntryType == models.EntryTypeScatterWin
	})).Return(nil)

	mockPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()

	result, err := service.PlayScatter(ctx, 123456, "testuser", 20)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.True(t, result.Won)
	assert.Equal(t, int64(40), result.Payout)
	assert.Equal(t, int64(120), result.NewWallet)
	assert.Equal(t, int64(20), result.NewWithdrawable)

	// A winning spin always lands on a triple
	assert.Len(t, result.Symbols, 3)
	assert.Equal(t, result.Symbols[0], result.Symbols[1])
	assert.Equal(t, result.Symbols[0], result.Symbols[2])

	// Animation frames are cosmetic but always fully populated
	assert.Len(t, result.Frames, 7)
	for _, frame := range result.Frames {
		assert.Len(t, frame, 3)
	}

	mockAccountRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
}

func TestGameService_PlayScatter_Loss(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockPublisher := new(MockEventPublisher)

	mockUoW.SetRepositories(mockAccountRepo, new(MockWithdrawalRepository), mockLedgerRepo, mockPublisher)

	// Intn(100) = 95 >= 30 win chance
	service := NewGameService(mockFactory, &scriptedRand{values: []int{95}})

	existingAccount := &models.Account{
		TelegramID:   123456,
		Username:     "testuser",
		Wallet:       100,
		Withdrawable: 0,
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByTelegramID", ctx, int64(123456)).Return(existingAccount, nil).Once()
	mockAccountRepo.On("ApplyDelta", ctx, int64(123456), int64(-20), int64(0)).Return(&models.Account{
		TelegramID: 123456, Wallet: 80,
	}, nil)
	mockAccountRepo.On("GetByTelegramID", ctx, int64(123456)).Return(&models.Account{
		TelegramID: 123456, Wallet: 80,
	}, nil).Once()

	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.WalletBefore == 100 &&
			e.WalletAfter == 80 &&
			e.WithdrawableBefore == 0 &&
			e.WithdrawableAfter == 0 &&
			e.EntryType == models.EntryTypeScatterLoss
	})).Return(nil)

	mockPublisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()

	result, err := service.PlayScatter(ctx, 123456, "testuser", 20)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.False(t, result.Won)
	assert.Equal(t, int64(0), result.Payout)
	assert.Equal(t, int64(80), result.NewWallet)
	assert.Equal(t, int64(0), result.NewWithdrawable)

	mockAccountRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
}
