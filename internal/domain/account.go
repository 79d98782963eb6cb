package domain

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/arbuzhub/casino-backend/internal/common"
	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/internal/model"
	"github.com/arbuzhub/casino-backend/internal/repository"
	"github.com/arbuzhub/casino-backend/pkg/crypto"
	"github.com/arbuzhub/casino-backend/pkg/dateutil"
	"github.com/arbuzhub/casino-backend/pkg/errorx"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
	"github.com/arbuzhub/casino-backend/pkg/xredis"
	"github.com/pkg/math"
	"gorm.io/gorm"
)

const referralCodeLength = 8

type AccountDomain interface {
	Start(ctx context.Context, req *model.StartRequest) (*model.StartResponse, error)
	GetBalance(ctx context.Context, req *model.GetBalanceRequest) (*model.GetBalanceResponse, error)
	GrantDailyDemo(ctx context.Context, req *model.GrantDailyDemoRequest) (*model.GrantDailyDemoResponse, error)
	GetProfile(ctx context.Context, req *model.GetProfileRequest) (*model.GetProfileResponse, error)
	GetTurnoverBoard(ctx context.Context, req *model.GetTurnoverBoardRequest) (*model.GetTurnoverBoardResponse, error)
}

type accountDomain struct {
	accountRepo repository.AccountRepository
	betRepo     repository.BetRecordRepository
	locker      *common.AccountLocker
	redisClient xredis.Client
}

func NewAccountDomain(
	accountRepo repository.AccountRepository,
	betRepo repository.BetRecordRepository,
	locker *common.AccountLocker,
	redisClient xredis.Client,
) *accountDomain {
	return &accountDomain{
		accountRepo: accountRepo,
		betRepo:     betRepo,
		locker:      locker,
		redisClient: redisClient,
	}
}

// Start is the first-contact handler: it creates the account on first touch
// and binds the inviter from the referral code, immutably, right then.
func (d *accountDomain) Start(ctx context.Context, req *model.StartRequest) (*model.StartResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if account, err := d.accountRepo.GetByID(ctx, userID); err == nil {
		return &model.StartResponse{
			AccountID:    account.UserID,
			ReferralCode: account.ReferralCode,
			Created:      false,
		}, nil
	}

	account := &entity.Account{
		UserID:       userID,
		Name:         req.Name,
		ReferralCode: crypto.GenerateVoucherCode(referralCodeLength),
	}

	if req.ReferralCode != "" {
		inviter, err := d.accountRepo.GetByReferralCode(ctx, req.ReferralCode)
		if err == nil && inviter.UserID != userID {
			account.InviterID = sql.NullString{String: inviter.UserID, Valid: true}
		}
	}

	if err := d.accountRepo.Create(ctx, account); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create account: %v", err)
		return nil, errorx.Unknown
	}

	return &model.StartResponse{
		AccountID:    account.UserID,
		ReferralCode: account.ReferralCode,
		Created:      true,
	}, nil
}

func (d *accountDomain) GetBalance(
	ctx context.Context, req *model.GetBalanceRequest,
) (*model.GetBalanceResponse, error) {
	account, err := d.accountRepo.GetByID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, errorx.New(errorx.NotFound, "Not found account")
	}

	return &model.GetBalanceResponse{
		Withdrawable:    account.Withdrawable,
		Locked:          account.Locked,
		ReferralAccrued: account.ReferralAccrued,
		Demo:            account.Demo,
		RolloverDebt:    account.RolloverDebt,
	}, nil
}

// GrantDailyDemo tops up the play-money pool once per calendar date. The
// date guard lives in the update statement, so repeated taps on the same day
// collapse to one grant.
func (d *accountDomain) GrantDailyDemo(
	ctx context.Context, req *model.GrantDailyDemoRequest,
) (*model.GrantDailyDemoResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	d.locker.Lock(userID)
	defer d.locker.Unlock(userID)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	amount := xcontext.Configs(ctx).Game.DailyDemoAmount
	err := d.accountRepo.MarkDailyDemoGranted(ctx, userID, dateutil.Date(time.Now()))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			account, err := d.accountRepo.GetByID(ctx, userID)
			if err != nil {
				return nil, errorx.Unknown
			}

			return &model.GrantDailyDemoResponse{Granted: false, Demo: account.Demo}, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot mark daily grant: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.accountRepo.CreditDemo(ctx, userID, amount); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot credit demo coins: %v", err)
		return nil, errorx.Unknown
	}

	account, err := d.accountRepo.GetByID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.GrantDailyDemoResponse{Granted: true, Amount: amount, Demo: account.Demo}, nil
}

func (d *accountDomain) GetProfile(
	ctx context.Context, req *model.GetProfileRequest,
) (*model.GetProfileResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	account, err := d.accountRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errorx.New(errorx.NotFound, "Not found account")
	}

	betCount, err := d.betRepo.CountByAccount(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count bets: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetProfileResponse{
		AccountID:        account.UserID,
		Name:             account.Name,
		ReferralCode:     account.ReferralCode,
		LifetimeTurnover: account.LifetimeTurnover,
		LifetimeDeposits: account.LifetimeDeposits,
		BetCount:         betCount,
		FavoriteGame:     account.FavoriteGameHint,
	}, nil
}

func (d *accountDomain) GetTurnoverBoard(
	ctx context.Context, req *model.GetTurnoverBoardRequest,
) (*model.GetTurnoverBoardResponse, error) {
	if d.redisClient == nil {
		return nil, errorx.New(errorx.Unavailable, "Leaderboard is not available")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	limit = math.MinInt(limit, 50)

	zs, err := d.redisClient.ZRevRangeWithScores(ctx, common.RedisKeyTurnoverBoard(), 0, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot read leaderboard: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetTurnoverBoardResponse{Entries: []model.TurnoverBoardEntry{}, MyRank: -1}
	for _, z := range zs {
		accountID, ok := z.Member.(string)
		if !ok {
			continue
		}

		entry := model.TurnoverBoardEntry{AccountID: accountID, Turnover: z.Score}
		if account, err := d.accountRepo.GetByID(ctx, accountID); err == nil {
			entry.Name = account.Name
		}

		resp.Entries = append(resp.Entries, entry)
	}

	userID := xcontext.RequestUserID(ctx)
	if rank, err := d.redisClient.ZRevRank(ctx, common.RedisKeyTurnoverBoard(), userID); err == nil {
		resp.MyRank = int(rank)
	}

	return resp, nil
}
