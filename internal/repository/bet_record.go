package repository

import (
	"context"

	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
)

type BetRecordRepository interface {
	Create(ctx context.Context, record *entity.BetRecord) error
	GetByID(ctx context.Context, id int64) (*entity.BetRecord, error)
	GetRecentByAccount(ctx context.Context, accountID string, limit int) ([]entity.BetRecord, error)
	CountByAccount(ctx context.Context, accountID string) (int64, error)
}

type betRecordRepository struct{}

func NewBetRecordRepository() *betRecordRepository {
	return &betRecordRepository{}
}

func (r *betRecordRepository) Create(ctx context.Context, record *entity.BetRecord) error {
	if record.ID == 0 {
		record.ID = xcontext.SnowFlake(ctx).Generate().Int64()
	}

	return xcontext.DB(ctx).Create(record).Error
}

func (r *betRecordRepository) GetByID(ctx context.Context, id int64) (*entity.BetRecord, error) {
	var result entity.BetRecord
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *betRecordRepository) GetRecentByAccount(
	ctx context.Context, accountID string, limit int,
) ([]entity.BetRecord, error) {
	var result []entity.BetRecord
	err := xcontext.DB(ctx).
		Where("account_id=?", accountID).
		Order("id DESC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *betRecordRepository) CountByAccount(ctx context.Context, accountID string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.BetRecord{}).
		Where("account_id=?", accountID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
