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
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DuelDomain interface {
	Open(ctx context.Context, req *model.OpenDuelRequest) (*model.OpenDuelResponse, error)
	Join(ctx context.Context, req *model.JoinDuelRequest) (*model.JoinDuelResponse, error)
	SubmitResult(ctx context.Context, req *model.SubmitDuelResultRequest) (*model.SubmitDuelResultResponse, error)
	Cancel(ctx context.Context, req *model.CancelDuelRequest) (*model.CancelDuelResponse, error)
	ListOpen(ctx context.Context, req *model.ListOpenDuelsRequest) (*model.ListOpenDuelsResponse, error)

	// CancelExpired refunds open duels past their join window and settles
	// playing duels past their turn deadline; the scheduler drives it.
	CancelExpired(ctx context.Context) error
}

type duelDomain struct {
	duelRepo    repository.DuelRepository
	accountRepo repository.AccountRepository
	outboxRepo  repository.OutboxRepository
	locker      *common.AccountLocker
}

func NewDuelDomain(
	duelRepo repository.DuelRepository,
	accountRepo repository.AccountRepository,
	outboxRepo repository.OutboxRepository,
	locker *common.AccountLocker,
) *duelDomain {
	return &duelDomain{
		duelRepo:    duelRepo,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		locker:      locker,
	}
}

func (d *duelDomain) Open(ctx context.Context, req *model.OpenDuelRequest) (*model.OpenDuelResponse, error) {
	game, err := enum.ToEnum[entity.GameKind](req.Game)
	if err != nil {
		return nil, errorx.New(errorx.NotFound, "Unknown game %s", req.Game)
	}

	if req.PlayerCapacity < 2 || req.PlayerCapacity > 4 {
		return nil, errorx.New(errorx.BadRequest, "A duel needs between two and four players")
	}

	gameCfg := xcontext.Configs(ctx).Game
	stake := decimal.NewFromFloat(req.Stake).Round(2)
	if stake.LessThan(decimal.NewFromFloat(gameCfg.MinBet)) ||
		stake.GreaterThan(decimal.NewFromFloat(gameCfg.MaxBet)) {
		return nil, errorx.New(errorx.InvalidAmount,
			"Stake must be between %v and %v", gameCfg.MinBet, gameCfg.MaxBet)
	}

	userID := xcontext.RequestUserID(ctx)
	d.locker.Lock(userID)
	defer d.locker.Unlock(userID)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.debitStake(ctx, userID, stake); err != nil {
		return nil, err
	}

	duel := &entity.Duel{
		Base:           entity.Base{ID: uuid.NewString()},
		CreatorID:      userID,
		Game:           game,
		StakePerPlayer: stake,
		PlayerCapacity: req.PlayerCapacity,
		Status:         entity.DuelOpen,
		ExpiresAt:      time.Now().Add(xcontext.Configs(ctx).Duel.OpenTimeout),
	}
	if err := d.duelRepo.Create(ctx, duel); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create duel: %v", err)
		return nil, errorx.Unknown
	}

	err = d.duelRepo.CreateSeat(ctx, &entity.DuelSeat{
		Base:      entity.Base{ID: uuid.NewString()},
		DuelID:    duel.ID,
		SeatIndex: 0,
		AccountID: userID,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create creator seat: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.OpenDuelResponse{DuelID: duel.ID}, nil
}

func (d *duelDomain) debitStake(ctx context.Context, userID string, stake decimal.Decimal) error {
	err := d.accountRepo.Debit(ctx, userID, repository.PoolWithdrawable, stake)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.InsufficientFunds, "Not enough balance for the stake")
		}

		xcontext.Logger(ctx).Errorf("Cannot debit duel stake: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (d *duelDomain) Join(ctx context.Context, req *model.JoinDuelRequest) (*model.JoinDuelResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	d.locker.Lock(userID)
	defer d.locker.Unlock(userID)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	duel, err := d.duelRepo.GetByID(ctx, req.DuelID)
	if err != nil {
		return nil, errorx.New(errorx.NotFound, "Not found duel")
	}

	if duel.Status != entity.DuelOpen {
		return nil, errorx.New(errorx.StateConflict, "Duel is not open for joining")
	}

	seats, err := d.duelRepo.ListSeats(ctx, duel.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list seats: %v", err)
		return nil, errorx.Unknown
	}

	for _, seat := range seats {
		if seat.AccountID == userID {
			return nil, errorx.New(errorx.StateConflict, "Already seated in this duel")
		}
	}

	if len(seats) >= duel.PlayerCapacity {
		return nil, errorx.New(errorx.StateConflict, "Duel is full")
	}

	if err := d.debitStake(ctx, userID, duel.StakePerPlayer); err != nil {
		return nil, err
	}

	seatIndex := len(seats)
	err = d.duelRepo.CreateSeat(ctx, &entity.DuelSeat{
		Base:      entity.Base{ID: uuid.NewString()},
		DuelID:    duel.ID,
		SeatIndex: seatIndex,
		AccountID: userID,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create seat: %v", err)
		return nil, errorx.Unknown
	}

	playing := false
	if seatIndex+1 == duel.PlayerCapacity {
		err := d.duelRepo.UpdateStatus(ctx, duel.ID, entity.DuelOpen, entity.DuelPlaying)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot start duel: %v", err)
			return nil, errorx.Unknown
		}

		deadline := time.Now().Add(xcontext.Configs(ctx).Duel.TurnTimeout)
		if err := d.duelRepo.SetTurnDeadline(ctx, duel.ID, deadline); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot set turn deadline: %v", err)
			return nil, errorx.Unknown
		}

		playing = true
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.JoinDuelResponse{SeatIndex: seatIndex, Playing: playing}, nil
}

func (d *duelDomain) SubmitResult(
	ctx context.Context, req *model.SubmitDuelResultRequest,
) (*model.SubmitDuelResultResponse, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	duel, err := d.duelRepo.GetByID(ctx, req.DuelID)
	if err != nil {
		return nil, errorx.New(errorx.NotFound, "Not found duel")
	}

	if duel.Status != entity.DuelPlaying {
		return nil, errorx.New(errorx.StateConflict, "Duel is not being played")
	}

	min, max := gamerule.TokenDomain(duel.Game)
	if req.Token < min || req.Token > max {
		return nil, errorx.New(errorx.BadRequest, "Outcome token %d out of range", req.Token)
	}

	userID := xcontext.RequestUserID(ctx)
	seat, err := d.duelRepo.GetSeatByAccount(ctx, duel.ID, userID)
	if err != nil {
		return nil, errorx.New(errorx.PermissionDenied, "Not seated in this duel")
	}

	if err := d.duelRepo.SubmitResult(ctx, seat.ID, int64(req.Token)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.StateConflict, "Already submitted this round")
		}

		xcontext.Logger(ctx).Errorf("Cannot submit result: %v", err)
		return nil, errorx.Unknown
	}

	seats, err := d.duelRepo.ListSeats(ctx, duel.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list seats: %v", err)
		return nil, errorx.Unknown
	}

	for _, s := range seats {
		if !s.ResultToken.Valid {
			xcontext.WithCommitDBTransaction(ctx)
			return &model.SubmitDuelResultResponse{}, nil
		}
	}

	resp, err := d.settle(ctx, duel, seats)
	if err != nil {
		return nil, err
	}

	xcontext.WithCommitDBTransaction(ctx)
	return resp, nil
}

// settle decides a fully-submitted round: a unique top score wins the whole
// pool; a tie at the top clears only the tied seats for a replay.
func (d *duelDomain) settle(
	ctx context.Context, duel *entity.Duel, seats []entity.DuelSeat,
) (*model.SubmitDuelResultResponse, error) {
	best := seats[0]
	tied := []entity.DuelSeat{}
	for _, s := range seats {
		switch {
		case s.ResultToken.Int64 > best.ResultToken.Int64:
			best = s
			tied = []entity.DuelSeat{s}
		case s.ResultToken.Int64 == best.ResultToken.Int64:
			tied = append(tied, s)
		}
	}

	pool := duel.StakePerPlayer.Mul(decimal.NewFromInt(int64(duel.PlayerCapacity)))

	if len(tied) > 1 {
		ids := make([]string, 0, len(tied))
		for _, s := range tied {
			ids = append(ids, s.ID)
		}

		if err := d.duelRepo.ResetResults(ctx, ids); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot reset tied seats: %v", err)
			return nil, errorx.Unknown
		}

		deadline := time.Now().Add(xcontext.Configs(ctx).Duel.TurnTimeout)
		if err := d.duelRepo.SetTurnDeadline(ctx, duel.ID, deadline); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot extend turn deadline: %v", err)
			return nil, errorx.Unknown
		}

		return &model.SubmitDuelResultResponse{TieReset: true, Pool: pool}, nil
	}

	if err := d.payWinner(ctx, duel, best.AccountID, pool); err != nil {
		return nil, err
	}

	return &model.SubmitDuelResultResponse{
		Finished:        true,
		WinnerAccountID: best.AccountID,
		Pool:            pool,
	}, nil
}

func (d *duelDomain) payWinner(
	ctx context.Context, duel *entity.Duel, winnerID string, pool decimal.Decimal,
) error {
	unlock := d.locker.LockMany(winnerID)
	defer unlock()

	err := d.duelRepo.UpdateStatus(ctx, duel.ID, entity.DuelPlaying, entity.DuelFinished)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.StateConflict, "Duel is already settled")
		}

		xcontext.Logger(ctx).Errorf("Cannot finish duel: %v", err)
		return errorx.Unknown
	}

	if err := d.duelRepo.SetWinner(ctx, duel.ID, winnerID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot set winner: %v", err)
		return errorx.Unknown
	}

	cap := decimal.NewFromFloat(xcontext.Configs(ctx).Game.MaxAccountBalance)
	err = d.accountRepo.Credit(ctx, winnerID, repository.PoolWithdrawable, pool, cap)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot credit pool to winner: %v", err)
		return errorx.Unknown
	}

	err = d.outboxRepo.Create(ctx, &entity.OutboxEvent{
		Base:      entity.Base{ID: uuid.NewString()},
		EventType: entity.EventDuelFinished,
		Key:       duel.ID,
		Payload: entity.Map{
			"duel_id":   duel.ID,
			"winner_id": winnerID,
			"pool":      pool.String(),
		},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create outbox event: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (d *duelDomain) Cancel(ctx context.Context, req *model.CancelDuelRequest) (*model.CancelDuelResponse, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	duel, err := d.duelRepo.GetByID(ctx, req.DuelID)
	if err != nil {
		return nil, errorx.New(errorx.NotFound, "Not found duel")
	}

	if duel.CreatorID != xcontext.RequestUserID(ctx) {
		return nil, errorx.New(errorx.PermissionDenied, "Only the creator can cancel")
	}

	if err := d.cancelAndRefund(ctx, duel); err != nil {
		return nil, err
	}

	xcontext.WithCommitDBTransaction(ctx)
	return &model.CancelDuelResponse{}, nil
}

func (d *duelDomain) cancelAndRefund(ctx context.Context, duel *entity.Duel) error {
	err := d.duelRepo.UpdateStatus(ctx, duel.ID, entity.DuelOpen, entity.DuelCancelled)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.StateConflict, "Duel is no longer open")
		}

		xcontext.Logger(ctx).Errorf("Cannot cancel duel: %v", err)
		return errorx.Unknown
	}

	seats, err := d.duelRepo.ListSeats(ctx, duel.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list seats: %v", err)
		return errorx.Unknown
	}

	ids := make([]string, 0, len(seats))
	for _, s := range seats {
		ids = append(ids, s.AccountID)
	}
	unlock := d.locker.LockMany(ids...)
	defer unlock()

	cap := decimal.NewFromFloat(xcontext.Configs(ctx).Game.MaxAccountBalance)
	for _, s := range seats {
		err := d.accountRepo.Credit(ctx, s.AccountID, repository.PoolWithdrawable, duel.StakePerPlayer, cap)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot refund seat %d: %v", s.SeatIndex, err)
			return errorx.Unknown
		}
	}

	return nil
}

func (d *duelDomain) ListOpen(
	ctx context.Context, req *model.ListOpenDuelsRequest,
) (*model.ListOpenDuelsResponse, error) {
	var game entity.GameKind
	if req.Game != "" {
		var err error
		game, err = enum.ToEnum[entity.GameKind](req.Game)
		if err != nil {
			return nil, errorx.New(errorx.NotFound, "Unknown game %s", req.Game)
		}
	}

	duels, err := d.duelRepo.ListOpen(ctx, game)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list duels: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.ListOpenDuelsResponse{Duels: []model.DuelSummary{}}
	for _, duel := range duels {
		seats, err := d.duelRepo.ListSeats(ctx, duel.ID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot list seats: %v", err)
			return nil, errorx.Unknown
		}

		resp.Duels = append(resp.Duels, model.DuelSummary{
			DuelID:         duel.ID,
			Game:           string(duel.Game),
			Stake:          duel.StakePerPlayer,
			PlayerCapacity: duel.PlayerCapacity,
			SeatsTaken:     len(seats),
		})
	}

	return resp, nil
}

func (d *duelDomain) CancelExpired(ctx context.Context) error {
	now := time.Now()

	opens, err := d.duelRepo.ListOpenExpired(ctx, now)
	if err != nil {
		return err
	}

	for i := range opens {
		func() {
			ctx := xcontext.WithDBTransaction(ctx)
			defer xcontext.WithRollbackDBTransaction(ctx)

			if err := d.cancelAndRefund(ctx, &opens[i]); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot expire open duel %s: %v", opens[i].ID, err)
				return
			}

			xcontext.WithCommitDBTransaction(ctx)
		}()
	}

	stalled, err := d.duelRepo.ListPlayingExpired(ctx, now)
	if err != nil {
		return err
	}

	for i := range stalled {
		func() {
			ctx := xcontext.WithDBTransaction(ctx)
			defer xcontext.WithRollbackDBTransaction(ctx)

			if err := d.settleStalled(ctx, &stalled[i]); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot settle stalled duel %s: %v", stalled[i].ID, err)
				return
			}

			xcontext.WithCommitDBTransaction(ctx)
		}()
	}

	return nil
}

// settleStalled forfeits seats that missed the turn deadline: the highest
// submitted token wins. With no submissions at all everyone is refunded.
func (d *duelDomain) settleStalled(ctx context.Context, duel *entity.Duel) error {
	seats, err := d.duelRepo.ListSeats(ctx, duel.ID)
	if err != nil {
		return err
	}

	var best *entity.DuelSeat
	for i := range seats {
		s := &seats[i]
		if !s.ResultToken.Valid {
			continue
		}

		if best == nil || s.ResultToken.Int64 > best.ResultToken.Int64 {
			best = s
		}
	}

	if best == nil {
		err := d.duelRepo.UpdateStatus(ctx, duel.ID, entity.DuelPlaying, entity.DuelCancelled)
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(seats))
		for _, s := range seats {
			ids = append(ids, s.AccountID)
		}
		unlock := d.locker.LockMany(ids...)
		defer unlock()

		cap := decimal.NewFromFloat(xcontext.Configs(ctx).Game.MaxAccountBalance)
		for _, s := range seats {
			err := d.accountRepo.Credit(ctx, s.AccountID, repository.PoolWithdrawable, duel.StakePerPlayer, cap)
			if err != nil {
				return err
			}
		}

		return nil
	}

	pool := duel.StakePerPlayer.Mul(decimal.NewFromInt(int64(duel.PlayerCapacity)))
	return d.payWinner(ctx, duel, best.AccountID, pool)
}
