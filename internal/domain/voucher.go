package domain

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/arbuzhub/casino-backend/internal/common"
	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/internal/model"
	"github.com/arbuzhub/casino-backend/internal/repository"
	"github.com/arbuzhub/casino-backend/pkg/crypto"
	"github.com/arbuzhub/casino-backend/pkg/enum"
	"github.com/arbuzhub/casino-backend/pkg/errorx"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VoucherDomain interface {
	CreateCheck(ctx context.Context, req *model.CreateCheckRequest) (*model.CreateCheckResponse, error)
	CreatePromo(ctx context.Context, req *model.CreatePromoRequest) (*model.CreatePromoResponse, error)
	Activate(ctx context.Context, req *model.ActivateVoucherRequest) (*model.ActivateVoucherResponse, error)
	CompleteCaptcha(ctx context.Context, req *model.CompleteCaptchaRequest) (*model.CompleteCaptchaResponse, error)
	DeleteCheck(ctx context.Context, req *model.DeleteCheckRequest) (*model.DeleteCheckResponse, error)
	ListChecks(ctx context.Context, req *model.ListChecksRequest) (*model.ListChecksResponse, error)
}

type voucherDomain struct {
	voucherRepo      repository.VoucherRepository
	accountRepo      repository.AccountRepository
	paymentRepo      repository.PaymentRepository
	conversationRepo repository.ConversationRepository
	outboxRepo       repository.OutboxRepository
	locker           *common.AccountLocker
}

func NewVoucherDomain(
	voucherRepo repository.VoucherRepository,
	accountRepo repository.AccountRepository,
	paymentRepo repository.PaymentRepository,
	conversationRepo repository.ConversationRepository,
	outboxRepo repository.OutboxRepository,
	locker *common.AccountLocker,
) *voucherDomain {
	return &voucherDomain{
		voucherRepo:      voucherRepo,
		accountRepo:      accountRepo,
		paymentRepo:      paymentRepo,
		conversationRepo: conversationRepo,
		outboxRepo:       outboxRepo,
		locker:           locker,
	}
}

func (d *voucherDomain) CreateCheck(
	ctx context.Context, req *model.CreateCheckRequest,
) (*model.CreateCheckResponse, error) {
	cfg := xcontext.Configs(ctx).Voucher
	amount := decimal.NewFromFloat(req.AmountPerActivation).Round(2)
	if amount.LessThan(decimal.NewFromFloat(cfg.MinAmount)) {
		return nil, errorx.New(errorx.InvalidAmount, "Amount must be at least %v", cfg.MinAmount)
	}

	if req.TotalActivations <= 0 {
		return nil, errorx.New(errorx.InvalidAmount, "Activations must be positive")
	}

	rollover := decimal.NewFromFloat(req.RolloverMultiplier).Round(2)
	if rollover.IsZero() {
		rollover = decimal.NewFromInt(1)
	}
	if rollover.LessThan(decimal.NewFromInt(1)) {
		return nil, errorx.New(errorx.InvalidAmount, "Rollover multiplier must be at least 1")
	}

	userID := xcontext.RequestUserID(ctx)
	d.locker.Lock(userID)
	defer d.locker.Unlock(userID)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	// The creator funds the whole check up front.
	total := amount.Mul(decimal.NewFromInt(int64(req.TotalActivations)))
	err := d.accountRepo.Debit(ctx, userID, repository.PoolWithdrawable, total)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InsufficientFunds, "Not enough balance to fund the check")
		}

		xcontext.Logger(ctx).Errorf("Cannot debit check funding: %v", err)
		return nil, errorx.Unknown
	}

	voucher := &entity.Voucher{
		Base:                entity.Base{ID: uuid.NewString()},
		Kind:                entity.VoucherCheck,
		Code:                crypto.GenerateVoucherCode(cfg.CodeLength),
		CreatorID:           userID,
		AmountPerActivation: amount,
		TotalActivations:    req.TotalActivations,
		RemainingActivations: req.TotalActivations,
		RolloverMultiplier:  rollover,
		MinDepositGate:      decimal.NewFromFloat(req.MinDepositGate).Round(2),
		CaptchaRequired:     req.CaptchaRequired,
		RequiredChannel:     req.RequiredChannel,
		Media:               entity.Map(req.Media),
	}
	if err := d.voucherRepo.Create(ctx, voucher); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create check: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.CreateCheckResponse{VoucherID: voucher.ID, Code: voucher.Code}, nil
}

func (d *voucherDomain) CreatePromo(
	ctx context.Context, req *model.CreatePromoRequest,
) (*model.CreatePromoResponse, error) {
	amount := decimal.NewFromFloat(req.AmountPerActivation).Round(2)
	if !amount.IsPositive() || req.TotalActivations <= 0 {
		return nil, errorx.New(errorx.InvalidAmount, "Invalid promo parameters")
	}

	rollover := decimal.NewFromFloat(req.RolloverMultiplier).Round(2)
	if rollover.IsZero() {
		rollover = decimal.NewFromInt(1)
	}
	if rollover.LessThan(decimal.NewFromInt(1)) {
		return nil, errorx.New(errorx.InvalidAmount, "Rollover multiplier must be at least 1")
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		code = crypto.GenerateVoucherCode(xcontext.Configs(ctx).Voucher.CodeLength)
	}

	voucher := &entity.Voucher{
		Base:                 entity.Base{ID: uuid.NewString()},
		Kind:                 entity.VoucherPromo,
		Code:                 code,
		CreatorID:            xcontext.RequestUserID(ctx),
		AmountPerActivation:  amount,
		TotalActivations:     req.TotalActivations,
		RemainingActivations: req.TotalActivations,
		RolloverMultiplier:   rollover,
		MinDepositGate:       decimal.NewFromFloat(req.MinDepositGate).Round(2),
		RequiredChannel:      xcontext.Configs(ctx).Voucher.RequiredChannel,
	}
	if err := d.voucherRepo.Create(ctx, voucher); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create promo: %v", err)
		return nil, errorx.New(errorx.AlreadyExists, "Promo code already exists")
	}

	return &model.CreatePromoResponse{VoucherID: voucher.ID}, nil
}

func (d *voucherDomain) Activate(
	ctx context.Context, req *model.ActivateVoucherRequest,
) (*model.ActivateVoucherResponse, error) {
	kind, err := enum.ToEnum[entity.VoucherKind](req.Kind)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Unknown voucher kind %s", req.Kind)
	}

	voucher, err := d.voucherRepo.GetByCode(ctx, kind, strings.ToUpper(strings.TrimSpace(req.Code)))
	if err != nil {
		return nil, errorx.New(errorx.NotFound, "Not found voucher")
	}

	userID := xcontext.RequestUserID(ctx)
	account, err := d.accountRepo.GetByID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return nil, errorx.Unknown
	}

	// A past activator hears about the repeat before any gate verdict,
	// exhaustion included.
	activated, err := d.voucherRepo.HasActivation(ctx, voucher.ID, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot look up activation: %v", err)
		return nil, errorx.Unknown
	}
	if activated {
		return nil, errorx.New(errorx.AlreadyActivated, "Already activated this voucher")
	}

	if err := d.checkGates(ctx, voucher, account, req.Subscribed); err != nil {
		return nil, err
	}

	if voucher.CaptchaRequired {
		challenge, err := d.openCaptchaFlow(ctx, userID, voucher.ID)
		if err != nil {
			return nil, err
		}

		return &model.ActivateVoucherResponse{CaptchaChallenge: challenge}, nil
	}

	credited, pool, err := d.credit(ctx, voucher, userID)
	if err != nil {
		return nil, err
	}

	return &model.ActivateVoucherResponse{Credited: credited, Pool: pool}, nil
}

func (d *voucherDomain) checkGates(
	ctx context.Context, voucher *entity.Voucher, account *entity.Account, subscribed *bool,
) error {
	if voucher.RemainingActivations <= 0 {
		return errorx.New(errorx.Exhausted, "Voucher is exhausted")
	}

	if voucher.MinDepositGate.IsPositive() &&
		account.LifetimeDeposits.LessThan(voucher.MinDepositGate) {
		return errorx.New(errorx.GateFailed,
			"Requires at least %s deposited", voucher.MinDepositGate.String())
	}

	// The channel gate fails open: unknown membership passes, only a
	// confirmed non-member is turned away.
	if voucher.RequiredChannel != "" && subscribed != nil && !*subscribed {
		return errorx.New(errorx.GateFailed, "Requires subscription to %s", voucher.RequiredChannel)
	}

	return nil
}

func (d *voucherDomain) openCaptchaFlow(ctx context.Context, userID, voucherID string) (string, error) {
	a, b := crypto.RandRange(1, 10), crypto.RandRange(1, 10)
	challenge := fmt.Sprintf("%d + %d", a, b)

	err := d.conversationRepo.Upsert(ctx, &entity.Conversation{
		Base:      entity.Base{ID: uuid.NewString()},
		AccountID: userID,
		Topic:     entity.FlowCaptcha,
		State:     entity.FlowAwaitingInput,
		Payload: entity.Map{
			"voucher_id": voucherID,
			"answer":     strconv.Itoa(a + b),
		},
		ExpiresAt: time.Now().Add(xcontext.Configs(ctx).Flow.Timeout),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot open captcha flow: %v", err)
		return "", errorx.Unknown
	}

	return challenge, nil
}

type captchaFlowPayload struct {
	VoucherID string `mapstructure:"voucher_id"`
	Answer    string `mapstructure:"answer"`
}

func (d *voucherDomain) CompleteCaptcha(
	ctx context.Context, req *model.CompleteCaptchaRequest,
) (*model.CompleteCaptchaResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	conversation, err := d.conversationRepo.Get(ctx, userID, entity.FlowCaptcha)
	if err != nil {
		return nil, errorx.New(errorx.NotFound, "No captcha in progress")
	}

	if time.Now().After(conversation.ExpiresAt) {
		return nil, errorx.New(errorx.StateConflict, "Captcha expired, activate again")
	}

	var payload captchaFlowPayload
	if err := mapstructure.Decode(map[string]any(conversation.Payload), &payload); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot decode captcha payload: %v", err)
		return nil, errorx.Unknown
	}

	if strings.TrimSpace(req.Answer) != payload.Answer {
		return nil, errorx.New(errorx.GateFailed, "Wrong captcha answer")
	}

	if err := d.conversationRepo.Delete(ctx, userID, entity.FlowCaptcha); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot close captcha flow: %v", err)
		return nil, errorx.Unknown
	}

	voucher, err := d.voucherRepo.GetByID(ctx, payload.VoucherID)
	if err != nil {
		return nil, errorx.New(errorx.NotFound, "Voucher is gone")
	}

	credited, pool, err := d.credit(ctx, voucher, userID)
	if err != nil {
		return nil, err
	}

	return &model.CompleteCaptchaResponse{Credited: credited, Pool: pool}, nil
}

// credit burns one activation slot and pays the account. Bonus money with a
// rollover multiplier above 1 lands in locked and raises the rollover debt;
// plain vouchers pay withdrawable. Promo credits append a pseudo-deposit so
// they count toward later deposit gates.
func (d *voucherDomain) credit(
	ctx context.Context, voucher *entity.Voucher, userID string,
) (decimal.Decimal, string, error) {
	d.locker.Lock(userID)
	defer d.locker.Unlock(userID)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	err := d.voucherRepo.CreateActivation(ctx, &entity.VoucherActivation{
		Base:      entity.Base{ID: uuid.NewString()},
		VoucherID: voucher.ID,
		AccountID: userID,
	})
	if err != nil {
		return decimal.Zero, "", errorx.New(errorx.AlreadyActivated, "Already activated this voucher")
	}

	if err := d.voucherRepo.DecrementRemaining(ctx, voucher.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, "", errorx.New(errorx.Exhausted, "Voucher is exhausted")
		}

		xcontext.Logger(ctx).Errorf("Cannot decrement voucher: %v", err)
		return decimal.Zero, "", errorx.Unknown
	}

	amount := voucher.AmountPerActivation
	cap := decimal.NewFromFloat(xcontext.Configs(ctx).Game.MaxAccountBalance)

	pool := repository.PoolWithdrawable
	if voucher.RolloverMultiplier.GreaterThan(decimal.NewFromInt(1)) {
		pool = repository.PoolLocked
	}

	if err := d.accountRepo.Credit(ctx, userID, pool, amount, cap); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, "", errorx.New(errorx.Overflow, "Balance cap reached")
		}

		xcontext.Logger(ctx).Errorf("Cannot credit voucher amount: %v", err)
		return decimal.Zero, "", errorx.Unknown
	}

	if pool == repository.PoolLocked {
		debt := amount.Mul(voucher.RolloverMultiplier).Round(2)
		if err := d.accountRepo.AddRolloverDebt(ctx, userID, debt); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot add rollover debt: %v", err)
			return decimal.Zero, "", errorx.Unknown
		}
	} else if voucher.Kind == entity.VoucherPromo {
		err := d.paymentRepo.CreateDeposit(ctx, &entity.Deposit{
			Base:      entity.Base{ID: uuid.NewString()},
			AccountID: userID,
			Amount:    amount,
			SourceTag: "promo:" + voucher.Code,
			Status:    entity.PaymentSettled,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot append promo pseudo-deposit: %v", err)
			return decimal.Zero, "", errorx.Unknown
		}

		if err := d.accountRepo.AddLifetimeDeposits(ctx, userID, amount); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot add lifetime deposits: %v", err)
			return decimal.Zero, "", errorx.Unknown
		}
	}

	err = d.outboxRepo.Create(ctx, &entity.OutboxEvent{
		Base:      entity.Base{ID: uuid.NewString()},
		EventType: entity.EventVoucherActivated,
		Key:       userID,
		Payload: entity.Map{
			"voucher_id": voucher.ID,
			"kind":       string(voucher.Kind),
			"account_id": userID,
			"amount":     amount.String(),
		},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create outbox event: %v", err)
		return decimal.Zero, "", errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	return amount, string(pool), nil
}

func (d *voucherDomain) DeleteCheck(
	ctx context.Context, req *model.DeleteCheckRequest,
) (*model.DeleteCheckResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	voucher, err := d.voucherRepo.GetByID(ctx, req.VoucherID)
	if err != nil {
		return nil, errorx.New(errorx.NotFound, "Not found check")
	}

	if voucher.Kind != entity.VoucherCheck {
		return nil, errorx.New(errorx.BadRequest, "Only checks can be deleted")
	}

	d.locker.Lock(userID)
	defer d.locker.Unlock(userID)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.voucherRepo.DeleteUnactivated(ctx, req.VoucherID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.StateConflict, "Check is already activated or not yours")
		}

		xcontext.Logger(ctx).Errorf("Cannot delete check: %v", err)
		return nil, errorx.Unknown
	}

	refund := voucher.AmountPerActivation.Mul(decimal.NewFromInt(int64(voucher.TotalActivations)))
	cap := decimal.NewFromFloat(xcontext.Configs(ctx).Game.MaxAccountBalance)
	if err := d.accountRepo.Credit(ctx, userID, repository.PoolWithdrawable, refund, cap); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot refund check: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.DeleteCheckResponse{Refunded: refund}, nil
}

func (d *voucherDomain) ListChecks(
	ctx context.Context, req *model.ListChecksRequest,
) (*model.ListChecksResponse, error) {
	vouchers, err := d.voucherRepo.ListByCreator(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list checks: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.ListChecksResponse{Checks: []model.CheckSummary{}}
	for _, voucher := range vouchers {
		if voucher.Kind != entity.VoucherCheck {
			continue
		}

		resp.Checks = append(resp.Checks, model.CheckSummary{
			VoucherID:           voucher.ID,
			Code:                voucher.Code,
			AmountPerActivation: voucher.AmountPerActivation,
			TotalActivations:    voucher.TotalActivations,
			Remaining:           voucher.RemainingActivations,
		})
	}

	return resp, nil
}
