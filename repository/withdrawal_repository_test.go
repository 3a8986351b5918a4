package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pesobot/models"
	"pesobot/repository/testutil"
)

func TestWithdrawalRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewWithdrawalRepository(testDB.DB)
	ctx := context.Background()

	_, err := accountRepo.Create(ctx, 123456, "testuser", 100)
	require.NoError(t, err)

	withdrawal := testutil.CreateTestWithdrawal(123456, 1000)
	err = repo.Create(ctx, withdrawal)
	require.NoError(t, err)

	assert.NotZero(t, withdrawal.ID)
	assert.False(t, withdrawal.CreatedAt.IsZero())
	assert.Equal(t, models.WithdrawalStatusPending, withdrawal.Status)
}

func TestWithdrawalRepository_ListPending(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	accountRepo := NewAccountRepository(testDB.DB)
	repo := NewWithdrawalRepository(testDB.DB)
	ctx := context.Background()

	_, err := accountRepo.Create(ctx, 111, "alice", 100)
	require.NoError(t, err)
	_, err = accountRepo.Create(ctx, 222, "bob", 100)
	require.NoError(t, err)

	t.Run("empty listing", func(t *testing.T) {
		pending, err := repo.ListPending(ctx)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	// Distinct timestamps so the ordering is deterministic
	first := testutil.CreateTestWithdrawal(222, 2000)
	require.NoError(t, repo.Create(ctx, first))
	time.Sleep(10 * time.Millisecond)

	second := testutil.CreateTestWithdrawal(111, 1000)
	require.NoError(t, repo.Create(ctx, second))
	time.Sleep(10 * time.Millisecond)

	third := testutil.CreateTestWithdrawal(111, 3000)
	require.NoError(t, repo.Create(ctx, third))

	t.Run("oldest first with usernames joined", func(t *testing.T) {
		pending, err := repo.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 3)

		assert.Equal(t, first.ID, pending[0].ID)
		assert.Equal(t, "bob", pending[0].Username)
		assert.Equal(t, int64(2000), pending[0].Amount)

		assert.Equal(t, second.ID, pending[1].ID)
		assert.Equal(t, "alice", pending[1].Username)

		assert.Equal(t, third.ID, pending[2].ID)
		assert.Equal(t, "alice", pending[2].Username)
	})

	t.Run("reviewed requests are excluded", func(t *testing.T) {
		_, err := testDB.DB.Pool.Exec(ctx,
			`UPDATE withdrawals SET status = 'approved' WHERE id = $1`, second.ID)
		require.NoError(t, err)

		pending, err := repo.ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, first.ID, pending[0].ID)
		assert.Equal(t, third.ID, pending[1].ID)
	})
}
