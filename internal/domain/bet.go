package domain

import (
	"context"
	"errors"
	"time"

	"github.com/arbuzhub/casino-backend/internal/common"
	"github.com/arbuzhub/casino-backend/internal/domain/gamerule"
	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/internal/model"
	"github.com/arbuzhub/casino-backend/internal/repository"
	"github.com/arbuzhub/casino-backend/pkg/enum"
	"github.com/arbuzhub/casino-backend/pkg/errorx"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
	"github.com/arbuzhub/casino-backend/pkg/xredis"
	"github.com/pkg/math"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const turnoverRetryBackoff = 100 * time.Millisecond

type BetDomain interface {
	PlaceBet(ctx context.Context, req *model.PlaceBetRequest) (*model.PlaceBetResponse, error)
	GetHistory(ctx context.Context, req *model.GetBetHistoryRequest) (*model.GetBetHistoryResponse, error)
}

type betDomain struct {
	accountRepo repository.AccountRepository
	betRepo     repository.BetRecordRepository
	outboxRepo  repository.OutboxRepository
	referral    *referralEngine
	locker      *common.AccountLocker
	source      OutcomeSource
	redisClient xredis.Client
}

func NewBetDomain(
	accountRepo repository.AccountRepository,
	betRepo repository.BetRecordRepository,
	partnerRepo repository.PartnerRepository,
	outboxRepo repository.OutboxRepository,
	locker *common.AccountLocker,
	source OutcomeSource,
	redisClient xredis.Client,
) *betDomain {
	return &betDomain{
		accountRepo: accountRepo,
		betRepo:     betRepo,
		outboxRepo:  outboxRepo,
		referral:    newReferralEngine(accountRepo, partnerRepo, outboxRepo),
		locker:      locker,
		source:      source,
		redisClient: redisClient,
	}
}

func (d *betDomain) PlaceBet(
	ctx context.Context, req *model.PlaceBetRequest,
) (*model.PlaceBetResponse, error) {
	game, err := enum.ToEnum[entity.GameKind](req.Game)
	if err != nil {
		return nil, errorx.New(errorx.NotFound, "Unknown game %s", req.Game)
	}

	betType, ok := gamerule.Lookup(game, req.BetKind)
	if !ok {
		return nil, errorx.New(errorx.NotFound, "Unknown bet kind %s for game %s", req.BetKind, req.Game)
	}

	currency := entity.CurrencyReal
	if req.Currency != "" {
		currency, err = enum.ToEnum[entity.CurrencyKind](req.Currency)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Unknown currency %s", req.Currency)
		}
	}

	gameCfg := xcontext.Configs(ctx).Game
	stake := decimal.NewFromFloat(req.Stake).Round(2)
	if !stake.IsPositive() {
		return nil, errorx.New(errorx.InvalidAmount, "Stake must be positive")
	}

	if currency == entity.CurrencyReal {
		if stake.LessThan(decimal.NewFromFloat(gameCfg.MinBet)) ||
			stake.GreaterThan(decimal.NewFromFloat(gameCfg.MaxBet)) {
			return nil, errorx.New(errorx.InvalidAmount,
				"Stake must be between %v and %v", gameCfg.MinBet, gameCfg.MaxBet)
		}
	} else if !stake.IsInteger() {
		return nil, errorx.New(errorx.InvalidAmount, "Demo stakes are whole coins")
	}

	outcomes := req.Outcomes
	if len(outcomes) == 0 {
		for i := 0; i < betType.RequiredTokens; i++ {
			outcomes = append(outcomes, d.source.Draw(game))
		}
	}

	verdict, err := gamerule.ResolveSequence(game, req.BetKind, outcomes)
	if err != nil {
		return nil, err
	}

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

	lockedPart := decimal.Zero
	if currency == entity.CurrencyReal {
		lockedPart, err = d.debitRealStake(ctx, account, stake)
	} else {
		err = d.debitDemoStake(ctx, userID, stake)
	}
	if err != nil {
		return nil, err
	}

	payout := decimal.Zero
	if verdict.Win {
		payout = stake.Mul(verdict.Multiplier).Round(2)
		if currency == entity.CurrencyReal {
			err = d.creditRealWin(ctx, userID, payout, lockedPart.IsPositive())
		} else {
			err = d.accountRepo.CreditDemo(ctx, userID, payout.IntPart())
		}
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot credit payout: %v", err)
			return nil, errorx.Unknown
		}
	}

	if currency == entity.CurrencyReal {
		if err := d.settleRealSideEffects(ctx, account, stake); err != nil {
			return nil, err
		}
	}

	if err := d.accountRepo.SetFavoriteGameHint(ctx, userID, game); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update favorite game: %v", err)
		return nil, errorx.Unknown
	}

	netDelta := payout.Sub(stake)
	record := &entity.BetRecord{
		AccountID:  userID,
		Game:       game,
		BetKind:    req.BetKind,
		Currency:   currency,
		Stake:      stake,
		LockedPart: lockedPart,
		Outcomes:   entity.Array[int](outcomes),
		Win:        verdict.Win,
		Multiplier: verdict.Multiplier,
		NetDelta:   netDelta,
	}
	if err := d.betRepo.Create(ctx, record); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create bet record: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	if currency == entity.CurrencyReal && d.redisClient != nil {
		stakeFloat, _ := stake.Float64()
		err := common.RetryOnce(ctx, turnoverRetryBackoff, func() error {
			return d.redisClient.ZIncrBy(ctx, common.RedisKeyTurnoverBoard(), stakeFloat, userID)
		})
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot bump turnover board: %v", err)
		}
	}

	return &model.PlaceBetResponse{
		BetID:      record.ID,
		Outcomes:   outcomes,
		Win:        verdict.Win,
		Multiplier: verdict.Multiplier,
		Payout:     payout,
		NetDelta:   netDelta,
	}, nil
}

// debitRealStake takes the stake from locked first, then withdrawable. It
// returns how much came from the locked pool.
func (d *betDomain) debitRealStake(
	ctx context.Context, account *entity.Account, stake decimal.Decimal,
) (decimal.Decimal, error) {
	lockedPart := decimal.Min(account.Locked, stake)
	withdrawablePart := stake.Sub(lockedPart)

	if lockedPart.IsPositive() {
		err := d.accountRepo.Debit(ctx, account.UserID, repository.PoolLocked, lockedPart)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return decimal.Zero, errorx.New(errorx.InsufficientFunds, "Not enough balance")
			}

			xcontext.Logger(ctx).Errorf("Cannot debit locked pool: %v", err)
			return decimal.Zero, errorx.Unknown
		}
	}

	if withdrawablePart.IsPositive() {
		err := d.accountRepo.Debit(ctx, account.UserID, repository.PoolWithdrawable, withdrawablePart)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return decimal.Zero, errorx.New(errorx.InsufficientFunds, "Not enough balance")
			}

			xcontext.Logger(ctx).Errorf("Cannot debit withdrawable pool: %v", err)
			return decimal.Zero, errorx.Unknown
		}
	}

	return lockedPart, nil
}

func (d *betDomain) debitDemoStake(ctx context.Context, userID string, stake decimal.Decimal) error {
	if err := d.accountRepo.DebitDemo(ctx, userID, stake.IntPart()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.InsufficientFunds, "Not enough demo coins")
		}

		xcontext.Logger(ctx).Errorf("Cannot debit demo pool: %v", err)
		return errorx.Unknown
	}

	return nil
}

// creditRealWin puts winnings into locked when any part of the stake was
// locked, keeping bonus money under rollover until the debt clears.
func (d *betDomain) creditRealWin(
	ctx context.Context, userID string, payout decimal.Decimal, stakeWasLocked bool,
) error {
	pool := repository.PoolWithdrawable
	if stakeWasLocked {
		pool = repository.PoolLocked
	}

	cap := decimal.NewFromFloat(xcontext.Configs(ctx).Game.MaxAccountBalance)
	err := d.accountRepo.Credit(ctx, userID, pool, payout, cap)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// Cap hit: credit the headroom that is left.
	account, err := d.accountRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	current := account.Withdrawable
	if pool == repository.PoolLocked {
		current = account.Locked
	}

	headroom := cap.Sub(current)
	if !headroom.IsPositive() {
		return nil
	}

	xcontext.Logger(ctx).Warnf("Balance cap reached for %s, clamping payout", userID)
	return d.accountRepo.Credit(ctx, userID, pool, headroom, cap)
}

// settleRealSideEffects applies turnover, rollover, and referral accounting
// after a real-currency wager.
func (d *betDomain) settleRealSideEffects(
	ctx context.Context, account *entity.Account, stake decimal.Decimal,
) error {
	if err := d.accountRepo.AddTurnover(ctx, account.UserID, stake); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot add turnover: %v", err)
		return errorx.Unknown
	}

	if account.RolloverDebt.IsPositive() {
		newDebt := decimal.Max(decimal.Zero, account.RolloverDebt.Sub(stake))
		if err := d.accountRepo.SetRolloverDebt(ctx, account.UserID, newDebt); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update rollover debt: %v", err)
			return errorx.Unknown
		}

		if newDebt.IsZero() {
			if err := d.accountRepo.UnlockAll(ctx, account.UserID); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot unlock balance: %v", err)
				return errorx.Unknown
			}
		}
	}

	if err := d.referral.accrueOnWager(ctx, account, stake); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot accrue referral share: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (d *betDomain) GetHistory(
	ctx context.Context, req *model.GetBetHistoryRequest,
) (*model.GetBetHistoryResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	limit = math.MinInt(limit, 100)

	records, err := d.betRepo.GetRecentByAccount(ctx, xcontext.RequestUserID(ctx), limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list bet records: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetBetHistoryResponse{Bets: []model.BetHistoryItem{}}
	for _, record := range records {
		resp.Bets = append(resp.Bets, model.BetHistoryItem{
			BetID:      record.ID,
			Game:       string(record.Game),
			BetKind:    record.BetKind,
			Currency:   string(record.Currency),
			Stake:      record.Stake,
			Win:        record.Win,
			Multiplier: record.Multiplier,
			NetDelta:   record.NetDelta,
		})
	}

	return resp, nil
}
