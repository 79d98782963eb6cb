package repository

import (
	"context"

	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
)

type PartnerRepository interface {
	Upsert(ctx context.Context, partner *entity.Partner) error
	GetByAccountID(ctx context.Context, accountID string) (*entity.Partner, error)
	Delete(ctx context.Context, accountID string) error
}

type partnerRepository struct{}

func NewPartnerRepository() *partnerRepository {
	return &partnerRepository{}
}

func (r *partnerRepository) Upsert(ctx context.Context, partner *entity.Partner) error {
	existing, err := r.GetByAccountID(ctx, partner.AccountID)
	if err != nil {
		return xcontext.DB(ctx).Create(partner).Error
	}

	return xcontext.DB(ctx).Model(&entity.Partner{}).
		Where("id=?", existing.ID).
		Updates(map[string]any{
			"prefix":           partner.Prefix,
			"referral_percent": partner.ReferralPercent,
		}).Error
}

func (r *partnerRepository) GetByAccountID(ctx context.Context, accountID string) (*entity.Partner, error) {
	var result entity.Partner
	if err := xcontext.DB(ctx).Take(&result, "account_id=?", accountID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *partnerRepository) Delete(ctx context.Context, accountID string) error {
	return xcontext.DB(ctx).Where("account_id=?", accountID).Delete(&entity.Partner{}).Error
}
