package repository

import (
	"context"

	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	// CreateDeposit inserts the deposit; a duplicate (source_tag,
	// external_tx_id) pair fails on the unique index, which callers treat
	// as an idempotent replay.
	CreateDeposit(ctx context.Context, deposit *entity.Deposit) error
	GetDepositByID(ctx context.Context, id string) (*entity.Deposit, error)
	GetDepositBySourceTx(ctx context.Context, sourceTag, externalTxID string) (*entity.Deposit, error)

	CreateWithdrawal(ctx context.Context, withdrawal *entity.Withdrawal) error
	GetWithdrawalByID(ctx context.Context, id string) (*entity.Withdrawal, error)

	// UpdateWithdrawalStatus transitions a withdrawal; it fails with
	// gorm.ErrRecordNotFound when the row is not in the from status.
	UpdateWithdrawalStatus(ctx context.Context, id string, from, to entity.PaymentStatus) error

	ListWithdrawalsByStatus(ctx context.Context, status entity.PaymentStatus, limit int) ([]entity.Withdrawal, error)
}

type paymentRepository struct{}

func NewPaymentRepository() *paymentRepository {
	return &paymentRepository{}
}

func (r *paymentRepository) CreateDeposit(ctx context.Context, deposit *entity.Deposit) error {
	return xcontext.DB(ctx).Create(deposit).Error
}

func (r *paymentRepository) GetDepositByID(ctx context.Context, id string) (*entity.Deposit, error) {
	var result entity.Deposit
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *paymentRepository) GetDepositBySourceTx(
	ctx context.Context, sourceTag, externalTxID string,
) (*entity.Deposit, error) {
	var result entity.Deposit
	err := xcontext.DB(ctx).Take(&result, "source_tag=? AND external_tx_id=?", sourceTag, externalTxID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *paymentRepository) CreateWithdrawal(ctx context.Context, withdrawal *entity.Withdrawal) error {
	return xcontext.DB(ctx).Create(withdrawal).Error
}

func (r *paymentRepository) GetWithdrawalByID(ctx context.Context, id string) (*entity.Withdrawal, error) {
	var result entity.Withdrawal
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *paymentRepository) UpdateWithdrawalStatus(
	ctx context.Context, id string, from, to entity.PaymentStatus,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Withdrawal{}).
		Where("id=? AND status=?", id, from).
		Update("status", to)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *paymentRepository) ListWithdrawalsByStatus(
	ctx context.Context, status entity.PaymentStatus, limit int,
) ([]entity.Withdrawal, error) {
	var result []entity.Withdrawal
	err := xcontext.DB(ctx).
		Where("status=?", status).
		Order("created_at ASC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
