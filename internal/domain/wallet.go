package domain

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/arbuzhub/casino-backend/internal/common"
	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/internal/model"
	"github.com/arbuzhub/casino-backend/internal/repository"
	"github.com/arbuzhub/casino-backend/pkg/errorx"
	"github.com/arbuzhub/casino-backend/pkg/pubsub"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
	"github.com/arbuzhub/casino-backend/pkg/xredis"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceSource quotes a base/quote exchange rate; the wallet caches quotes in
// redis so the gateway can render fiat equivalents cheaply.
type PriceSource interface {
	Rate(ctx context.Context, base, quote string) (decimal.Decimal, error)
}

const priceCacheTTL = time.Minute

type WalletDomain interface {
	Subscribe(ctx context.Context, pack *pubsub.Pack, t time.Time)
	RecordDeposit(ctx context.Context, req *model.RecordDepositRequest) (*model.RecordDepositResponse, error)
	RequestWithdrawal(ctx context.Context, req *model.RequestWithdrawalRequest) (*model.RequestWithdrawalResponse, error)
	SettleWithdrawal(ctx context.Context, req *model.SettleWithdrawalRequest) (*model.SettleWithdrawalResponse, error)
	GetPriceRate(ctx context.Context, req *model.GetPriceRateRequest) (*model.GetPriceRateResponse, error)
}

type walletDomain struct {
	accountRepo repository.AccountRepository
	paymentRepo repository.PaymentRepository
	outboxRepo  repository.OutboxRepository
	locker      *common.AccountLocker
	redisClient xredis.Client
	priceSource PriceSource
}

func NewWalletDomain(
	accountRepo repository.AccountRepository,
	paymentRepo repository.PaymentRepository,
	outboxRepo repository.OutboxRepository,
	locker *common.AccountLocker,
	redisClient xredis.Client,
	priceSource PriceSource,
) *walletDomain {
	return &walletDomain{
		accountRepo: accountRepo,
		paymentRepo: paymentRepo,
		outboxRepo:  outboxRepo,
		locker:      locker,
		redisClient: redisClient,
		priceSource: priceSource,
	}
}

// RecordDeposit is called by the payment gateway once it saw a confirmed
// transfer. Replays of the same (source, external tx) pair are absorbed.
func (d *walletDomain) RecordDeposit(
	ctx context.Context, req *model.RecordDepositRequest,
) (*model.RecordDepositResponse, error) {
	amount := decimal.NewFromFloat(req.Amount).Round(2)
	if !amount.IsPositive() {
		return nil, errorx.New(errorx.InvalidAmount, "Deposit amount must be positive")
	}

	if _, err := d.accountRepo.GetByID(ctx, req.AccountID); err != nil {
		return nil, errorx.New(errorx.NotFound, "Not found account %s", req.AccountID)
	}

	if req.ExternalTxID != "" {
		existing, err := d.paymentRepo.GetDepositBySourceTx(ctx, req.SourceTag, req.ExternalTxID)
		if err == nil {
			return &model.RecordDepositResponse{DepositID: existing.ID, Duplicate: true}, nil
		}
	}

	d.locker.Lock(req.AccountID)
	defer d.locker.Unlock(req.AccountID)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	deposit := &entity.Deposit{
		Base:      entity.Base{ID: uuid.NewString()},
		AccountID: req.AccountID,
		Amount:    amount,
		SourceTag: req.SourceTag,
		Status:    entity.PaymentSettled,
	}
	if req.ExternalTxID != "" {
		deposit.ExternalTxID = sql.NullString{String: req.ExternalTxID, Valid: true}
	}

	if err := d.paymentRepo.CreateDeposit(ctx, deposit); err != nil {
		// Lost the race against a concurrent replay; the unique index held.
		xcontext.Logger(ctx).Warnf("Duplicate deposit %s/%s: %v", req.SourceTag, req.ExternalTxID, err)
		return &model.RecordDepositResponse{Duplicate: true}, nil
	}

	cap := decimal.NewFromFloat(xcontext.Configs(ctx).Game.MaxAccountBalance)
	err := d.accountRepo.Credit(ctx, req.AccountID, repository.PoolWithdrawable, amount, cap)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.Overflow, "Balance cap reached")
		}

		xcontext.Logger(ctx).Errorf("Cannot credit deposit: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.accountRepo.AddLifetimeDeposits(ctx, req.AccountID, amount); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot add lifetime deposits: %v", err)
		return nil, errorx.Unknown
	}

	err = d.outboxRepo.Create(ctx, &entity.OutboxEvent{
		Base:      entity.Base{ID: uuid.NewString()},
		EventType: entity.EventNotifyUser,
		Key:       req.AccountID,
		Payload: entity.Map{
			"kind":   "deposit_settled",
			"amount": amount.String(),
		},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create outbox event: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.RecordDepositResponse{DepositID: deposit.ID}, nil
}

// Subscribe consumes confirmed transfers published by the payment gateway.
func (d *walletDomain) Subscribe(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	var req model.RecordDepositRequest
	if err := json.Unmarshal(pack.Msg, &req); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unmarshal deposit event: %v", err)
		return
	}

	if _, err := d.RecordDeposit(ctx, &req); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record gateway deposit: %v", err)
	}
}

// RequestWithdrawal sees only the withdrawable pool; locked bonus money can
// never leave through it.
func (d *walletDomain) RequestWithdrawal(
	ctx context.Context, req *model.RequestWithdrawalRequest,
) (*model.RequestWithdrawalResponse, error) {
	amount := decimal.NewFromFloat(req.Amount).Round(2)
	if !amount.IsPositive() {
		return nil, errorx.New(errorx.InvalidAmount, "Withdrawal amount must be positive")
	}

	userID := xcontext.RequestUserID(ctx)
	d.locker.Lock(userID)
	defer d.locker.Unlock(userID)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	err := d.accountRepo.Debit(ctx, userID, repository.PoolWithdrawable, amount)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InsufficientFunds, "Not enough withdrawable balance")
		}

		xcontext.Logger(ctx).Errorf("Cannot debit withdrawal: %v", err)
		return nil, errorx.Unknown
	}

	withdrawal := &entity.Withdrawal{
		Base:      entity.Base{ID: uuid.NewString()},
		AccountID: userID,
		Amount:    amount,
		SinkTag:   req.SinkTag,
		Status:    entity.PaymentPending,
	}
	if err := d.paymentRepo.CreateWithdrawal(ctx, withdrawal); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create withdrawal: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.RequestWithdrawalResponse{WithdrawalID: withdrawal.ID}, nil
}

func (d *walletDomain) SettleWithdrawal(
	ctx context.Context, req *model.SettleWithdrawalRequest,
) (*model.SettleWithdrawalResponse, error) {
	withdrawal, err := d.paymentRepo.GetWithdrawalByID(ctx, req.WithdrawalID)
	if err != nil {
		return nil, errorx.New(errorx.NotFound, "Not found withdrawal")
	}

	d.locker.Lock(withdrawal.AccountID)
	defer d.locker.Unlock(withdrawal.AccountID)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	to := entity.PaymentSettled
	if !req.Approve {
		to = entity.PaymentRejected
	}

	err = d.paymentRepo.UpdateWithdrawalStatus(ctx, withdrawal.ID, entity.PaymentPending, to)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.StateConflict, "Withdrawal is already settled")
		}

		xcontext.Logger(ctx).Errorf("Cannot update withdrawal: %v", err)
		return nil, errorx.Unknown
	}

	if req.Approve {
		err = d.accountRepo.AddLifetimeWithdrawals(ctx, withdrawal.AccountID, withdrawal.Amount)
	} else {
		cap := decimal.NewFromFloat(xcontext.Configs(ctx).Game.MaxAccountBalance)
		err = d.accountRepo.Credit(ctx, withdrawal.AccountID, repository.PoolWithdrawable, withdrawal.Amount, cap)
	}
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot settle withdrawal: %v", err)
		return nil, errorx.Unknown
	}

	err = d.outboxRepo.Create(ctx, &entity.OutboxEvent{
		Base:      entity.Base{ID: uuid.NewString()},
		EventType: entity.EventNotifyUser,
		Key:       withdrawal.AccountID,
		Payload: entity.Map{
			"kind":     "withdrawal_settled",
			"approved": req.Approve,
			"amount":   withdrawal.Amount.String(),
		},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create outbox event: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.SettleWithdrawalResponse{}, nil
}

func (d *walletDomain) GetPriceRate(
	ctx context.Context, req *model.GetPriceRateRequest,
) (*model.GetPriceRateResponse, error) {
	if req.Base == "" || req.Quote == "" {
		return nil, errorx.New(errorx.BadRequest, "Base and quote are required")
	}

	key := common.RedisKeyPriceRate(req.Base, req.Quote)
	if d.redisClient != nil {
		var cached string
		if err := d.redisClient.GetObj(ctx, key, &cached); err == nil {
			rate, err := decimal.NewFromString(cached)
			if err == nil {
				return &model.GetPriceRateResponse{Rate: rate, Cached: true}, nil
			}
		}
	}

	rate, err := d.priceSource.Rate(ctx, req.Base, req.Quote)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot fetch price rate: %v", err)
		return nil, errorx.New(errorx.Unavailable, "Price source is unavailable")
	}

	if d.redisClient != nil {
		if err := d.redisClient.SetObj(ctx, key, rate.String(), priceCacheTTL); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot cache price rate: %v", err)
		}
	}

	return &model.GetPriceRateResponse{Rate: rate}, nil
}
