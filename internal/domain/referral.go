package domain

import (
	"context"

	"github.com/arbuzhub/casino-backend/config"
	"github.com/arbuzhub/casino-backend/internal/common"
	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/internal/model"
	"github.com/arbuzhub/casino-backend/internal/repository"
	"github.com/arbuzhub/casino-backend/pkg/errorx"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// referralTier resolves the level (1-based) and percent for a downline
// volume against the configured ladder: the highest threshold not above the
// volume wins.
func referralTier(cfg config.ReferralConfigs, volume decimal.Decimal) (int, decimal.Decimal) {
	level := 0
	percent := decimal.NewFromFloat(cfg.DefaultPercent)
	for i, tier := range cfg.Levels {
		if volume.GreaterThanOrEqual(decimal.NewFromFloat(tier.Volume)) {
			level = i + 1
			percent = decimal.NewFromFloat(tier.Percent)
		}
	}

	if level == 0 {
		level = 1
	}

	return level, percent
}

// referralEngine accrues the inviter's share on every real wager. It runs
// inside the bet transaction so the accrual and the wager commit together.
type referralEngine struct {
	accountRepo repository.AccountRepository
	partnerRepo repository.PartnerRepository
	outboxRepo  repository.OutboxRepository
}

func newReferralEngine(
	accountRepo repository.AccountRepository,
	partnerRepo repository.PartnerRepository,
	outboxRepo repository.OutboxRepository,
) *referralEngine {
	return &referralEngine{
		accountRepo: accountRepo,
		partnerRepo: partnerRepo,
		outboxRepo:  outboxRepo,
	}
}

func (e *referralEngine) accrueOnWager(
	ctx context.Context, bettor *entity.Account, stake decimal.Decimal,
) error {
	if !bettor.InviterID.Valid {
		return nil
	}

	inviterID := bettor.InviterID.String
	inviter, err := e.accountRepo.GetByID(ctx, inviterID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load inviter %s: %v", inviterID, err)
		return err
	}

	// The ladder percents feed the level-up event even when a partner
	// override drives the actual share.
	cfg := xcontext.Configs(ctx).Referral
	oldLevel, oldPercent := referralTier(cfg, inviter.DownlineVolume)
	percent := oldPercent
	if partner, err := e.partnerRepo.GetByAccountID(ctx, inviterID); err == nil {
		percent = partner.ReferralPercent
	}

	if err := e.accountRepo.AddDownlineVolume(ctx, inviterID, stake); err != nil {
		return err
	}

	share := stake.Mul(percent).Div(decimal.NewFromInt(100)).Round(2)
	if share.IsPositive() {
		cap := decimal.NewFromFloat(xcontext.Configs(ctx).Game.MaxAccountBalance)
		err := e.accountRepo.Credit(ctx, inviterID, repository.PoolReferralAccrued, share, cap)
		if err != nil {
			// The inviter's pool hit the cap; the wager itself still stands.
			xcontext.Logger(ctx).Warnf("Skip referral accrual for %s: %v", inviterID, err)
		} else {
			err := e.outboxRepo.Create(ctx, &entity.OutboxEvent{
				Base:      entity.Base{ID: uuid.NewString()},
				EventType: entity.EventReferralAccrued,
				Key:       inviterID,
				Payload: entity.Map{
					"inviter_id": inviterID,
					"bettor_id":  bettor.UserID,
					"amount":     share.String(),
					"percent":    percent.String(),
				},
			})
			if err != nil {
				return err
			}
		}
	}

	newLevel, newPercent := referralTier(cfg, inviter.DownlineVolume.Add(stake))
	if newLevel > oldLevel {
		err := e.outboxRepo.Create(ctx, &entity.OutboxEvent{
			Base:      entity.Base{ID: uuid.NewString()},
			EventType: entity.EventReferralLevelUp,
			Key:       inviterID,
			Payload: entity.Map{
				"inviter_id":  inviterID,
				"old":         oldLevel,
				"new":         newLevel,
				"old_percent": oldPercent.String(),
				"new_percent": newPercent.String(),
			},
		})
		if err != nil {
			return err
		}
	}

	return nil
}

type ReferralDomain interface {
	GetStats(ctx context.Context, req *model.GetReferralStatsRequest) (*model.GetReferralStatsResponse, error)
	Withdraw(ctx context.Context, req *model.WithdrawReferralRequest) (*model.WithdrawReferralResponse, error)
	SetPartner(ctx context.Context, req *model.SetPartnerRequest) (*model.SetPartnerResponse, error)
	RemovePartner(ctx context.Context, req *model.RemovePartnerRequest) (*model.RemovePartnerResponse, error)
}

type referralDomain struct {
	accountRepo repository.AccountRepository
	partnerRepo repository.PartnerRepository
	locker      *common.AccountLocker
}

func NewReferralDomain(
	accountRepo repository.AccountRepository,
	partnerRepo repository.PartnerRepository,
	locker *common.AccountLocker,
) *referralDomain {
	return &referralDomain{
		accountRepo: accountRepo,
		partnerRepo: partnerRepo,
		locker:      locker,
	}
}

func (d *referralDomain) GetStats(
	ctx context.Context, req *model.GetReferralStatsRequest,
) (*model.GetReferralStatsResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	account, err := d.accountRepo.GetByID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return nil, errorx.Unknown
	}

	level, percent := referralTier(xcontext.Configs(ctx).Referral, account.DownlineVolume)
	isPartner := false
	if partner, err := d.partnerRepo.GetByAccountID(ctx, userID); err == nil {
		percent = partner.ReferralPercent
		isPartner = true
	}

	return &model.GetReferralStatsResponse{
		ReferralCode:    account.ReferralCode,
		Level:           level,
		Percent:         percent,
		DownlineVolume:  account.DownlineVolume,
		ReferralAccrued: account.ReferralAccrued,
		IsPartner:       isPartner,
	}, nil
}

func (d *referralDomain) Withdraw(
	ctx context.Context, req *model.WithdrawReferralRequest,
) (*model.WithdrawReferralResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	d.locker.Lock(userID)
	defer d.locker.Unlock(userID)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	account, err := d.accountRepo.GetByID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return nil, errorx.Unknown
	}

	if !account.ReferralAccrued.IsPositive() {
		return nil, errorx.New(errorx.InsufficientFunds, "Nothing accrued to withdraw")
	}

	if err := d.accountRepo.WithdrawReferral(ctx, userID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot move referral balance: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.WithdrawReferralResponse{
		Amount:       account.ReferralAccrued,
		Withdrawable: account.Withdrawable.Add(account.ReferralAccrued),
	}, nil
}

func (d *referralDomain) SetPartner(
	ctx context.Context, req *model.SetPartnerRequest,
) (*model.SetPartnerResponse, error) {
	if req.Percent <= 0 || req.Percent > 100 {
		return nil, errorx.New(errorx.InvalidAmount, "Percent must be in (0, 100]")
	}

	if _, err := d.accountRepo.GetByID(ctx, req.AccountID); err != nil {
		return nil, errorx.New(errorx.NotFound, "Not found account %s", req.AccountID)
	}

	err := d.partnerRepo.Upsert(ctx, &entity.Partner{
		Base:            entity.Base{ID: uuid.NewString()},
		AccountID:       req.AccountID,
		Prefix:          req.Prefix,
		ReferralPercent: decimal.NewFromFloat(req.Percent),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upsert partner: %v", err)
		return nil, errorx.Unknown
	}

	return &model.SetPartnerResponse{}, nil
}

func (d *referralDomain) RemovePartner(
	ctx context.Context, req *model.RemovePartnerRequest,
) (*model.RemovePartnerResponse, error) {
	if err := d.partnerRepo.Delete(ctx, req.AccountID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete partner: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RemovePartnerResponse{}, nil
}
