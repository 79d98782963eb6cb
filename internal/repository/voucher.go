package repository

import (
	"context"

	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
	"gorm.io/gorm"
)

type VoucherRepository interface {
	Create(ctx context.Context, voucher *entity.Voucher) error
	GetByID(ctx context.Context, id string) (*entity.Voucher, error)
	GetByCode(ctx context.Context, kind entity.VoucherKind, code string) (*entity.Voucher, error)
	ListByCreator(ctx context.Context, creatorID string) ([]entity.Voucher, error)

	// DecrementRemaining burns one activation slot; it fails with
	// gorm.ErrRecordNotFound when the voucher is already exhausted.
	DecrementRemaining(ctx context.Context, id string) error

	CreateActivation(ctx context.Context, activation *entity.VoucherActivation) error
	HasActivation(ctx context.Context, voucherID, accountID string) (bool, error)
	CountActivations(ctx context.Context, voucherID string) (int64, error)

	// DeleteUnactivated removes a check owned by creatorID only while no
	// activation has happened yet.
	DeleteUnactivated(ctx context.Context, id, creatorID string) error
}

type voucherRepository struct{}

func NewVoucherRepository() *voucherRepository {
	return &voucherRepository{}
}

func (r *voucherRepository) Create(ctx context.Context, voucher *entity.Voucher) error {
	return xcontext.DB(ctx).Create(voucher).Error
}

func (r *voucherRepository) GetByID(ctx context.Context, id string) (*entity.Voucher, error) {
	var result entity.Voucher
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *voucherRepository) GetByCode(
	ctx context.Context, kind entity.VoucherKind, code string,
) (*entity.Voucher, error) {
	var result entity.Voucher
	err := xcontext.DB(ctx).Take(&result, "kind=? AND code=?", kind, code).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *voucherRepository) ListByCreator(ctx context.Context, creatorID string) ([]entity.Voucher, error) {
	var result []entity.Voucher
	err := xcontext.DB(ctx).
		Where("creator_id=?", creatorID).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *voucherRepository) DecrementRemaining(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).Model(&entity.Voucher{}).
		Where("id=? AND remaining_activations > 0", id).
		Update("remaining_activations", gorm.Expr("remaining_activations - 1"))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *voucherRepository) CreateActivation(ctx context.Context, activation *entity.VoucherActivation) error {
	return xcontext.DB(ctx).Create(activation).Error
}

func (r *voucherRepository) HasActivation(ctx context.Context, voucherID, accountID string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.VoucherActivation{}).
		Where("voucher_id=? AND account_id=?", voucherID, accountID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *voucherRepository) CountActivations(ctx context.Context, voucherID string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.VoucherActivation{}).
		Where("voucher_id=?", voucherID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *voucherRepository) DeleteUnactivated(ctx context.Context, id, creatorID string) error {
	tx := xcontext.DB(ctx).
		Where("id=? AND creator_id=? AND remaining_activations=total_activations", id, creatorID).
		Delete(&entity.Voucher{})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
