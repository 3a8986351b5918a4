package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"pesobot/events"
	"pesobot/models"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.Account, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, telegramID int64, username string, startingWallet int64) (*models.Account, error) {
	args := m.Called(ctx, telegramID, username, startingWallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateUsername(ctx context.Context, telegramID int64, username string) error {
	args := m.Called(ctx, telegramID, username)
	return args.Error(0)
}

func (m *MockAccountRepository) ApplyDelta(ctx context.Context, telegramID int64, deltaWallet, deltaWithdrawable int64) (*models.Account, error) {
	args := m.Called(ctx, telegramID, deltaWallet, deltaWithdrawable)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) SetCaptcha(ctx context.Context, telegramID int64, code string, issuedAt time.Time) error {
	args := m.Called(ctx, telegramID, code, issuedAt)
	return args.Error(0)
}

func (m *MockAccountRepository) ClearCaptcha(ctx context.Context, telegramID int64) error {
	args := m.Called(ctx, telegramID)
	return args.Error(0)
}

// MockWithdrawalRepository is a mock implementation of WithdrawalRepository
type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) Create(ctx context.Context, withdrawal *models.Withdrawal) error {
	args := m.Called(ctx, withdrawal)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) ListPending(ctx context.Context) ([]*models.PendingWithdrawal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PendingWithdrawal), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByAccount(ctx context.Context, telegramID int64, limit int) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, telegramID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	accountRepo    AccountRepository
	withdrawalRepo WithdrawalRepository
	ledgerRepo     LedgerRepository
	eventPublisher EventPublisher
}

// SetRepositories wires the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(accountRepo AccountRepository, withdrawalRepo WithdrawalRepository, ledgerRepo LedgerRepository, eventPublisher EventPublisher) {
	m.accountRepo = accountRepo
	m.withdrawalRepo = withdrawalRepo
	m.ledgerRepo = ledgerRepo
	m.eventPublisher = eventPublisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) WithdrawalRepository() WithdrawalRepository {
	return m.withdrawalRepo
}

func (m *MockUnitOfWork) LedgerRepository() LedgerRepository {
	return m.ledgerRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventPublisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
