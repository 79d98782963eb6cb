package domain

import (
	"testing"

	"github.com/arbuzhub/casino-backend/internal/common"
	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/internal/model"
	"github.com/arbuzhub/casino-backend/internal/repository"
	"github.com/arbuzhub/casino-backend/pkg/errorx"
	"github.com/arbuzhub/casino-backend/pkg/testutil"
	"github.com/arbuzhub/casino-backend/pkg/xcontext"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestVoucherDomain() *voucherDomain {
	return NewVoucherDomain(
		repository.NewVoucherRepository(),
		repository.NewAccountRepository(),
		repository.NewPaymentRepository(),
		repository.NewConversationRepository(),
		repository.NewOutboxRepository(),
		common.NewAccountLocker(),
	)
}

func Test_voucherDomain_CheckLifecycle(t *testing.T) {
	ctx := testutil.MockContext()
	creator, err := testutil.SampleAccount(ctx, &entity.Account{
		Withdrawable: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	receiver1, err := testutil.SampleAccount(ctx, nil)
	require.NoError(t, err)
	receiver2, err := testutil.SampleAccount(ctx, nil)
	require.NoError(t, err)

	voucherDomain := newTestVoucherDomain()

	// The creator funds both activations up front.
	creatorCtx := xcontext.WithRequestUserID(ctx, creator.UserID)
	created, err := voucherDomain.CreateCheck(creatorCtx, &model.CreateCheckRequest{
		AmountPerActivation: 10,
		TotalActivations:    2,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.Code)

	accountRepo := repository.NewAccountRepository()
	got, err := accountRepo.GetByID(ctx, creator.UserID)
	require.NoError(t, err)
	require.True(t, got.Withdrawable.Equal(decimal.NewFromInt(80)))

	// First activation pays withdrawable (rollover multiplier is 1).
	ctx1 := xcontext.WithRequestUserID(ctx, receiver1.UserID)
	activated, err := voucherDomain.Activate(ctx1, &model.ActivateVoucherRequest{
		Kind: "check", Code: created.Code,
	})
	require.NoError(t, err)
	require.True(t, activated.Credited.Equal(decimal.NewFromInt(10)))
	require.Equal(t, "withdrawable", activated.Pool)

	// The same account cannot activate twice.
	_, err = voucherDomain.Activate(ctx1, &model.ActivateVoucherRequest{
		Kind: "check", Code: created.Code,
	})
	var xerr errorx.Error
	require.ErrorAs(t, err, &xerr)
	require.Equal(t, errorx.AlreadyActivated, xerr.Code)

	// Second slot goes to another account, after which the check is spent.
	ctx2 := xcontext.WithRequestUserID(ctx, receiver2.UserID)
	_, err = voucherDomain.Activate(ctx2, &model.ActivateVoucherRequest{
		Kind: "check", Code: created.Code,
	})
	require.NoError(t, err)

	third, err := testutil.SampleAccount(ctx, nil)
	require.NoError(t, err)
	_, err = voucherDomain.Activate(xcontext.WithRequestUserID(ctx, third.UserID),
		&model.ActivateVoucherRequest{Kind: "check", Code: created.Code})
	require.ErrorAs(t, err, &xerr)
	require.Equal(t, errorx.Exhausted, xerr.Code)

	// A past activator of the spent check still hears AlreadyActivated,
	// not Exhausted.
	_, err = voucherDomain.Activate(ctx1, &model.ActivateVoucherRequest{
		Kind: "check", Code: created.Code,
	})
	require.ErrorAs(t, err, &xerr)
	require.Equal(t, errorx.AlreadyActivated, xerr.Code)

	// An activated check cannot be deleted for a refund.
	_, err = voucherDomain.DeleteCheck(creatorCtx, &model.DeleteCheckRequest{VoucherID: created.VoucherID})
	require.ErrorAs(t, err, &xerr)
	require.Equal(t, errorx.StateConflict, xerr.Code)
}

func Test_voucherDomain_LastSlotSingleWinner(t *testing.T) {
	ctx := testutil.MockContext()
	creator, err := testutil.SampleAccount(ctx, &entity.Account{
		Withdrawable: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	racer1, err := testutil.SampleAccount(ctx, nil)
	require.NoError(t, err)
	racer2, err := testutil.SampleAccount(ctx, nil)
	require.NoError(t, err)

	voucherDomain := newTestVoucherDomain()
	created, err := voucherDomain.CreateCheck(xcontext.WithRequestUserID(ctx, creator.UserID),
		&model.CreateCheckRequest{
			AmountPerActivation: 10,
			TotalActivations:    1,
		})
	require.NoError(t, err)

	// Both activators saw the same single-slot snapshot before either
	// credit ran; the guarded decrement lets exactly one through.
	voucherRepo := repository.NewVoucherRepository()
	snapshot1, err := voucherRepo.GetByID(ctx, created.VoucherID)
	require.NoError(t, err)
	snapshot2, err := voucherRepo.GetByID(ctx, created.VoucherID)
	require.NoError(t, err)

	credited, pool, err := voucherDomain.credit(ctx, snapshot1, racer1.UserID)
	require.NoError(t, err)
	require.True(t, credited.Equal(decimal.NewFromInt(10)))
	require.Equal(t, "withdrawable", pool)

	_, _, err = voucherDomain.credit(ctx, snapshot2, racer2.UserID)
	var xerr errorx.Error
	require.ErrorAs(t, err, &xerr)
	require.Equal(t, errorx.Exhausted, xerr.Code)

	// Only the winner got paid.
	accountRepo := repository.NewAccountRepository()
	got, err := accountRepo.GetByID(ctx, racer1.UserID)
	require.NoError(t, err)
	require.True(t, got.Withdrawable.Equal(decimal.NewFromInt(10)))

	got, err = accountRepo.GetByID(ctx, racer2.UserID)
	require.NoError(t, err)
	require.True(t, got.Withdrawable.IsZero())

	count, err := voucherRepo.CountActivations(ctx, created.VoucherID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func Test_voucherDomain_DeleteCheck_Refunds(t *testing.T) {
	ctx := testutil.MockContext()
	creator, err := testutil.SampleAccount(ctx, &entity.Account{
		Withdrawable: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	ctx = xcontext.WithRequestUserID(ctx, creator.UserID)

	voucherDomain := newTestVoucherDomain()
	created, err := voucherDomain.CreateCheck(ctx, &model.CreateCheckRequest{
		AmountPerActivation: 5,
		TotalActivations:    4,
	})
	require.NoError(t, err)

	deleted, err := voucherDomain.DeleteCheck(ctx, &model.DeleteCheckRequest{VoucherID: created.VoucherID})
	require.NoError(t, err)
	require.True(t, deleted.Refunded.Equal(decimal.NewFromInt(20)))

	got, err := repository.NewAccountRepository().GetByID(ctx, creator.UserID)
	require.NoError(t, err)
	require.True(t, got.Withdrawable.Equal(decimal.NewFromInt(50)))
}

func Test_voucherDomain_PromoRolloverAndGates(t *testing.T) {
	ctx := testutil.MockContext()
	admin, err := testutil.SampleAccount(ctx, nil)
	require.NoError(t, err)

	voucherDomain := newTestVoucherDomain()

	adminCtx := xcontext.WithRequestUserID(ctx, admin.UserID)
	_, err = voucherDomain.CreatePromo(adminCtx, &model.CreatePromoRequest{
		Code:                "welcome100",
		AmountPerActivation: 100,
		TotalActivations:    10,
		RolloverMultiplier:  3,
		MinDepositGate:      50,
	})
	require.NoError(t, err)

	yes, no := true, false

	// The deposit gate rejects fresh accounts.
	fresh, err := testutil.SampleAccount(ctx, nil)
	require.NoError(t, err)
	freshCtx := xcontext.WithRequestUserID(ctx, fresh.UserID)
	_, err = voucherDomain.Activate(freshCtx, &model.ActivateVoucherRequest{
		Kind: "promo", Code: "WELCOME100", Subscribed: &yes,
	})
	var xerr errorx.Error
	require.ErrorAs(t, err, &xerr)
	require.Equal(t, errorx.GateFailed, xerr.Code)

	// The channel gate rejects confirmed non-members.
	funded, err := testutil.SampleAccount(ctx, &entity.Account{
		LifetimeDeposits: decimal.NewFromInt(60),
	})
	require.NoError(t, err)
	fundedCtx := xcontext.WithRequestUserID(ctx, funded.UserID)
	_, err = voucherDomain.Activate(fundedCtx, &model.ActivateVoucherRequest{
		Kind: "promo", Code: "WELCOME100", Subscribed: &no,
	})
	require.ErrorAs(t, err, &xerr)
	require.Equal(t, errorx.GateFailed, xerr.Code)

	// Unknown membership passes the channel gate and credits locked
	// money under a 3x rollover.
	resp, err := voucherDomain.Activate(fundedCtx, &model.ActivateVoucherRequest{
		Kind: "promo", Code: "WELCOME100",
	})
	require.NoError(t, err)
	require.Equal(t, "locked", resp.Pool)

	got, err := repository.NewAccountRepository().GetByID(ctx, funded.UserID)
	require.NoError(t, err)
	require.True(t, got.Locked.Equal(decimal.NewFromInt(100)))
	require.True(t, got.RolloverDebt.Equal(decimal.NewFromInt(300)))
	require.True(t, got.Withdrawable.IsZero())
}

func Test_voucherDomain_CaptchaFlow(t *testing.T) {
	ctx := testutil.MockContext()
	creator, err := testutil.SampleAccount(ctx, &entity.Account{
		Withdrawable: decimal.NewFromInt(30),
	})
	require.NoError(t, err)
	receiver, err := testutil.SampleAccount(ctx, nil)
	require.NoError(t, err)

	voucherDomain := newTestVoucherDomain()

	created, err := voucherDomain.CreateCheck(xcontext.WithRequestUserID(ctx, creator.UserID),
		&model.CreateCheckRequest{
			AmountPerActivation: 10,
			TotalActivations:    1,
			CaptchaRequired:     true,
		})
	require.NoError(t, err)

	receiverCtx := xcontext.WithRequestUserID(ctx, receiver.UserID)
	activated, err := voucherDomain.Activate(receiverCtx, &model.ActivateVoucherRequest{
		Kind: "check", Code: created.Code,
	})
	require.NoError(t, err)
	require.NotEmpty(t, activated.CaptchaChallenge)
	require.True(t, activated.Credited.IsZero())

	// A wrong answer keeps the flow open.
	_, err = voucherDomain.CompleteCaptcha(receiverCtx, &model.CompleteCaptchaRequest{Answer: "no"})
	var xerr errorx.Error
	require.ErrorAs(t, err, &xerr)
	require.Equal(t, errorx.GateFailed, xerr.Code)

	conversation, err := repository.NewConversationRepository().Get(
		ctx, receiver.UserID, entity.FlowCaptcha)
	require.NoError(t, err)
	answer, ok := conversation.Payload["answer"].(string)
	require.True(t, ok)

	completed, err := voucherDomain.CompleteCaptcha(receiverCtx, &model.CompleteCaptchaRequest{Answer: answer})
	require.NoError(t, err)
	require.True(t, completed.Credited.Equal(decimal.NewFromInt(10)))

	// The flow is consumed with the credit.
	_, err = voucherDomain.CompleteCaptcha(receiverCtx, &model.CompleteCaptchaRequest{Answer: answer})
	require.ErrorAs(t, err, &xerr)
	require.Equal(t, errorx.NotFound, xerr.Code)
}
