package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalancePool names a decimal balance column of the accounts table.
type BalancePool string

const (
	PoolWithdrawable    BalancePool = "withdrawable"
	PoolLocked          BalancePool = "locked"
	PoolReferralAccrued BalancePool = "referral_accrued"
)

func (p BalancePool) column() (string, error) {
	switch p {
	case PoolWithdrawable, PoolLocked, PoolReferralAccrued:
		return string(p), nil
	default:
		return "", fmt.Errorf("unknown balance pool %q", p)
	}
}

type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	GetByID(ctx context.Context, userID string) (*entity.Account, error)
	GetByReferralCode(ctx context.Context, code string) (*entity.Account, error)

	// Credit adds amount to a pool; it fails with gorm.ErrRecordNotFound
	// when the result would exceed cap.
	Credit(ctx context.Context, userID string, pool BalancePool, amount, cap decimal.Decimal) error

	// Debit subtracts amount from a pool; it fails with
	// gorm.ErrRecordNotFound when the pool holds less than amount.
	Debit(ctx context.Context, userID string, pool BalancePool, amount decimal.Decimal) error

	CreditDemo(ctx context.Context, userID string, amount int64) error
	DebitDemo(ctx context.Context, userID string, amount int64) error

	AddTurnover(ctx context.Context, userID string, amount decimal.Decimal) error
	AddDownlineVolume(ctx context.Context, userID string, amount decimal.Decimal) error
	AddLifetimeDeposits(ctx context.Context, userID string, amount decimal.Decimal) error
	AddLifetimeWithdrawals(ctx context.Context, userID string, amount decimal.Decimal) error

	AddRolloverDebt(ctx context.Context, userID string, amount decimal.Decimal) error
	SetRolloverDebt(ctx context.Context, userID string, debt decimal.Decimal) error

	// UnlockAll moves the whole locked pool into withdrawable in one
	// statement.
	UnlockAll(ctx context.Context, userID string) error

	// WithdrawReferral moves the whole referral pool into withdrawable in
	// one statement.
	WithdrawReferral(ctx context.Context, userID string) error

	SetFavoriteGameHint(ctx context.Context, userID string, game entity.GameKind) error

	// MarkDailyDemoGranted records the grant date; it fails with
	// gorm.ErrRecordNotFound when the stored date already matches today,
	// making the daily grant idempotent per calendar date.
	MarkDailyDemoGranted(ctx context.Context, userID string, today time.Time) error
}

type accountRepository struct{}

func NewAccountRepository() *accountRepository {
	return &accountRepository{}
}

func (r *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	return xcontext.DB(ctx).Create(account).Error
}

func (r *accountRepository) GetByID(ctx context.Context, userID string) (*entity.Account, error) {
	var result entity.Account
	if err := xcontext.DB(ctx).Take(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *accountRepository) GetByReferralCode(ctx context.Context, code string) (*entity.Account, error) {
	var result entity.Account
	if err := xcontext.DB(ctx).Take(&result, "referral_code=?", code).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *accountRepository) Credit(
	ctx context.Context, userID string, pool BalancePool, amount, cap decimal.Decimal,
) error {
	column, err := pool.column()
	if err != nil {
		return err
	}

	tx := xcontext.DB(ctx).Model(&entity.Account{}).
		Where("user_id=? AND "+column+" + ? <= ?", userID, amount, cap).
		Update(column, gorm.Expr(column+" + ?", amount))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *accountRepository) Debit(
	ctx context.Context, userID string, pool BalancePool, amount decimal.Decimal,
) error {
	column, err := pool.column()
	if err != nil {
		return err
	}

	tx := xcontext.DB(ctx).Model(&entity.Account{}).
		Where("user_id=? AND "+column+" >= ?", userID, amount).
		Update(column, gorm.Expr(column+" - ?", amount))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *accountRepository) CreditDemo(ctx context.Context, userID string, amount int64) error {
	tx := xcontext.DB(ctx).Model(&entity.Account{}).
		Where("user_id=?", userID).
		Update("demo", gorm.Expr("demo + ?", amount))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *accountRepository) DebitDemo(ctx context.Context, userID string, amount int64) error {
	tx := xcontext.DB(ctx).Model(&entity.Account{}).
		Where("user_id=? AND demo >= ?", userID, amount).
		Update("demo", gorm.Expr("demo - ?", amount))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *accountRepository) addColumn(
	ctx context.Context, userID, column string, amount decimal.Decimal,
) error {
	return xcontext.DB(ctx).Model(&entity.Account{}).
		Where("user_id=?", userID).
		Update(column, gorm.Expr(column+" + ?", amount)).Error
}

func (r *accountRepository) AddTurnover(ctx context.Context, userID string, amount decimal.Decimal) error {
	return r.addColumn(ctx, userID, "lifetime_turnover", amount)
}

func (r *accountRepository) AddDownlineVolume(ctx context.Context, userID string, amount decimal.Decimal) error {
	return r.addColumn(ctx, userID, "downline_volume", amount)
}

func (r *accountRepository) AddLifetimeDeposits(ctx context.Context, userID string, amount decimal.Decimal) error {
	return r.addColumn(ctx, userID, "lifetime_deposits", amount)
}

func (r *accountRepository) AddLifetimeWithdrawals(ctx context.Context, userID string, amount decimal.Decimal) error {
	return r.addColumn(ctx, userID, "lifetime_withdrawals", amount)
}

func (r *accountRepository) AddRolloverDebt(ctx context.Context, userID string, amount decimal.Decimal) error {
	return r.addColumn(ctx, userID, "rollover_debt", amount)
}

func (r *accountRepository) SetRolloverDebt(ctx context.Context, userID string, debt decimal.Decimal) error {
	return xcontext.DB(ctx).Model(&entity.Account{}).
		Where("user_id=?", userID).
		Update("rollover_debt", debt).Error
}

func (r *accountRepository) UnlockAll(ctx context.Context, userID string) error {
	return xcontext.DB(ctx).Model(&entity.Account{}).
		Where("user_id=?", userID).
		Updates(map[string]any{
			"withdrawable": gorm.Expr("withdrawable + locked"),
			"locked":       decimal.Zero,
		}).Error
}

func (r *accountRepository) WithdrawReferral(ctx context.Context, userID string) error {
	return xcontext.DB(ctx).Model(&entity.Account{}).
		Where("user_id=?", userID).
		Updates(map[string]any{
			"withdrawable":     gorm.Expr("withdrawable + referral_accrued"),
			"referral_accrued": decimal.Zero,
		}).Error
}

func (r *accountRepository) SetFavoriteGameHint(ctx context.Context, userID string, game entity.GameKind) error {
	return xcontext.DB(ctx).Model(&entity.Account{}).
		Where("user_id=?", userID).
		Update("favorite_game_hint", game).Error
}

func (r *accountRepository) MarkDailyDemoGranted(ctx context.Context, userID string, today time.Time) error {
	tx := xcontext.DB(ctx).Model(&entity.Account{}).
		Where("user_id=? AND (daily_demo_last_granted IS NULL OR daily_demo_last_granted < ?)",
			userID, today).
		Update("daily_demo_last_granted", today)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
