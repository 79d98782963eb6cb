package repository_test

import (
	"testing"
	"time"

	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/internal/repository"
	"github.com/arbuzhub/casino-backend/pkg/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_accountRepository_GuardedPools(t *testing.T) {
	ctx := testutil.MockContext()
	repo := repository.NewAccountRepository()

	require.NoError(t, repo.Create(ctx, &entity.Account{
		UserID:       "player",
		ReferralCode: "CODE1234",
	}))

	cap := decimal.NewFromInt(100)

	require.NoError(t, repo.Credit(ctx, "player", repository.PoolWithdrawable, decimal.NewFromInt(60), cap))
	require.NoError(t, repo.Credit(ctx, "player", repository.PoolWithdrawable, decimal.NewFromInt(40), cap))

	// The cap guard refuses the whole credit instead of clamping.
	err := repo.Credit(ctx, "player", repository.PoolWithdrawable, decimal.NewFromInt(1), cap)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The balance guard refuses overdrafts.
	err = repo.Debit(ctx, "player", repository.PoolWithdrawable, decimal.NewFromInt(101))
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Debit(ctx, "player", repository.PoolWithdrawable, decimal.NewFromInt(100)))

	account, err := repo.GetByID(ctx, "player")
	require.NoError(t, err)
	require.True(t, account.Withdrawable.IsZero())
}

func Test_accountRepository_UnlockAll(t *testing.T) {
	ctx := testutil.MockContext()
	repo := repository.NewAccountRepository()

	require.NoError(t, repo.Create(ctx, &entity.Account{
		UserID:       "player",
		ReferralCode: "CODE1234",
		Withdrawable: decimal.NewFromInt(5),
		Locked:       decimal.NewFromInt(30),
	}))

	require.NoError(t, repo.UnlockAll(ctx, "player"))

	account, err := repo.GetByID(ctx, "player")
	require.NoError(t, err)
	require.True(t, account.Withdrawable.Equal(decimal.NewFromInt(35)))
	require.True(t, account.Locked.IsZero())
}

func Test_accountRepository_MarkDailyDemoGranted(t *testing.T) {
	ctx := testutil.MockContext()
	repo := repository.NewAccountRepository()

	require.NoError(t, repo.Create(ctx, &entity.Account{
		UserID:       "player",
		ReferralCode: "CODE1234",
	}))

	today := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.MarkDailyDemoGranted(ctx, "player", today))

	// The same date is a guarded no-op.
	err := repo.MarkDailyDemoGranted(ctx, "player", today)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The next day grants again.
	require.NoError(t, repo.MarkDailyDemoGranted(ctx, "player", today.AddDate(0, 0, 1)))
}
