package domain

import (
	"testing"
	"time"

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

func newTestLotteryDomain() *lotteryDomain {
	return NewLotteryDomain(
		repository.NewLotteryRepository(),
		repository.NewAccountRepository(),
		repository.NewOutboxRepository(),
		common.NewAccountLocker(),
	)
}

func Test_lotteryDomain_ParticipantTargetDrawsInline(t *testing.T) {
	ctx := testutil.MockContext()
	player1, err := testutil.SampleAccount(ctx, &entity.Account{
		Withdrawable: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	player2, err := testutil.SampleAccount(ctx, &entity.Account{
		Withdrawable: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	lotteryDomain := newTestLotteryDomain()

	created, err := lotteryDomain.Create(ctx, &model.CreateLotteryRequest{
		Title:              "weekend draw",
		TicketPrice:        5,
		FinishType:         "participant_count",
		FinishParticipants: 5,
		Prizes:             []string{"gold", "silver"},
	})
	require.NoError(t, err)

	ctx1 := xcontext.WithRequestUserID(ctx, player1.UserID)
	bought, err := lotteryDomain.BuyTickets(ctx1, &model.BuyTicketsRequest{
		LotteryID: created.LotteryID, Count: 3,
	})
	require.NoError(t, err)
	require.False(t, bought.Finished)
	require.Equal(t, []int{1, 2, 3}, bought.TicketNumbers)

	bought, err = lotteryDomain.BuyTickets(ctx1, &model.BuyTicketsRequest{
		LotteryID: created.LotteryID, Count: 1,
	})
	require.NoError(t, err)
	require.False(t, bought.Finished)

	// The fifth ticket sold reaches the target and triggers the draw
	// inline, no matter who bought the earlier ones.
	ctx2 := xcontext.WithRequestUserID(ctx, player2.UserID)
	bought, err = lotteryDomain.BuyTickets(ctx2, &model.BuyTicketsRequest{
		LotteryID: created.LotteryID, Count: 1,
	})
	require.NoError(t, err)
	require.True(t, bought.Finished)
	require.Equal(t, []int{5}, bought.TicketNumbers)

	view, err := lotteryDomain.Get(ctx1, &model.GetLotteryRequest{LotteryID: created.LotteryID})
	require.NoError(t, err)
	require.Equal(t, "finished", view.Status)
	for _, prize := range view.Prizes {
		require.NotZero(t, prize.WinnerTicketNumber)
		require.NotEmpty(t, prize.WinnerAccountID)
	}

	// Both ticket buyers paid up.
	got, err := repository.NewAccountRepository().GetByID(ctx, player1.UserID)
	require.NoError(t, err)
	require.True(t, got.Withdrawable.Equal(decimal.NewFromInt(30)))

	// Tickets can no longer be bought.
	_, err = lotteryDomain.BuyTickets(ctx1, &model.BuyTicketsRequest{
		LotteryID: created.LotteryID, Count: 1,
	})
	var xerr errorx.Error
	require.ErrorAs(t, err, &xerr)
	require.Equal(t, errorx.StateConflict, xerr.Code)
}

func Test_lotteryDomain_SingleBuyerReachesTicketTarget(t *testing.T) {
	ctx := testutil.MockContext()
	player, err := testutil.SampleAccount(ctx, &entity.Account{
		Withdrawable: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	lotteryDomain := newTestLotteryDomain()
	created, err := lotteryDomain.Create(ctx, &model.CreateLotteryRequest{
		Title:              "small draw",
		TicketPrice:        5,
		FinishType:         "participant_count",
		FinishParticipants: 3,
		Prizes:             []string{"gold"},
	})
	require.NoError(t, err)

	// One account buying all three tickets is enough: the target counts
	// tickets sold, not distinct buyers.
	playerCtx := xcontext.WithRequestUserID(ctx, player.UserID)
	bought, err := lotteryDomain.BuyTickets(playerCtx, &model.BuyTicketsRequest{
		LotteryID: created.LotteryID, Count: 3,
	})
	require.NoError(t, err)
	require.True(t, bought.Finished)

	view, err := lotteryDomain.Get(playerCtx, &model.GetLotteryRequest{LotteryID: created.LotteryID})
	require.NoError(t, err)
	require.Equal(t, "finished", view.Status)
}

func Test_lotteryDomain_InterleavedBuysGetDisjointNumbers(t *testing.T) {
	ctx := testutil.MockContext()
	player1, err := testutil.SampleAccount(ctx, &entity.Account{
		Withdrawable: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	player2, err := testutil.SampleAccount(ctx, &entity.Account{
		Withdrawable: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	lotteryDomain := newTestLotteryDomain()
	created, err := lotteryDomain.Create(ctx, &model.CreateLotteryRequest{
		Title:          "numbered draw",
		TicketPrice:    1,
		FinishType:     "deadline",
		FinishDeadline: time.Now().Add(time.Hour),
		Prizes:         []string{"the prize"},
	})
	require.NoError(t, err)

	// Each purchase reserves its range from the shared counter, so
	// alternating buyers never collide on a number.
	ctx1 := xcontext.WithRequestUserID(ctx, player1.UserID)
	ctx2 := xcontext.WithRequestUserID(ctx, player2.UserID)

	bought, err := lotteryDomain.BuyTickets(ctx1, &model.BuyTicketsRequest{
		LotteryID: created.LotteryID, Count: 2,
	})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, bought.TicketNumbers)

	bought, err = lotteryDomain.BuyTickets(ctx2, &model.BuyTicketsRequest{
		LotteryID: created.LotteryID, Count: 2,
	})
	require.NoError(t, err)
	require.Equal(t, []int{3, 4}, bought.TicketNumbers)

	bought, err = lotteryDomain.BuyTickets(ctx1, &model.BuyTicketsRequest{
		LotteryID: created.LotteryID, Count: 1,
	})
	require.NoError(t, err)
	require.Equal(t, []int{5}, bought.TicketNumbers)

	// The densely numbered tickets all exist exactly once.
	tickets, err := repository.NewLotteryRepository().ListTickets(ctx, created.LotteryID)
	require.NoError(t, err)
	require.Len(t, tickets, 5)
	for i, ticket := range tickets {
		require.Equal(t, i+1, ticket.TicketNumber)
	}
}

func Test_lotteryDomain_DrawIsIdempotent(t *testing.T) {
	ctx := testutil.MockContext()
	player, err := testutil.SampleAccount(ctx, &entity.Account{
		Withdrawable: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	lotteryDomain := newTestLotteryDomain()
	created, err := lotteryDomain.Create(ctx, &model.CreateLotteryRequest{
		Title:          "deadline draw",
		TicketPrice:    1,
		FinishType:     "deadline",
		FinishDeadline: time.Now().Add(time.Hour),
		Prizes:         []string{"the prize"},
	})
	require.NoError(t, err)

	playerCtx := xcontext.WithRequestUserID(ctx, player.UserID)
	_, err = lotteryDomain.BuyTickets(playerCtx, &model.BuyTicketsRequest{
		LotteryID: created.LotteryID, Count: 2,
	})
	require.NoError(t, err)

	require.NoError(t, lotteryDomain.Draw(ctx, created.LotteryID))

	// The guarded status transition makes a second draw a no-op failure.
	err = lotteryDomain.Draw(ctx, created.LotteryID)
	var xerr errorx.Error
	require.ErrorAs(t, err, &xerr)
	require.Equal(t, errorx.StateConflict, xerr.Code)
}

func Test_lotteryDomain_CancelRefunds(t *testing.T) {
	ctx := testutil.MockContext()
	player, err := testutil.SampleAccount(ctx, &entity.Account{
		Withdrawable: decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	lotteryDomain := newTestLotteryDomain()
	created, err := lotteryDomain.Create(ctx, &model.CreateLotteryRequest{
		Title:          "cancelled draw",
		TicketPrice:    4,
		FinishType:     "deadline",
		FinishDeadline: time.Now().Add(time.Hour),
		Prizes:         []string{"nothing"},
	})
	require.NoError(t, err)

	playerCtx := xcontext.WithRequestUserID(ctx, player.UserID)
	_, err = lotteryDomain.BuyTickets(playerCtx, &model.BuyTicketsRequest{
		LotteryID: created.LotteryID, Count: 3,
	})
	require.NoError(t, err)

	cancelled, err := lotteryDomain.Cancel(ctx, &model.CancelLotteryRequest{LotteryID: created.LotteryID})
	require.NoError(t, err)
	require.Equal(t, 3, cancelled.RefundedTickets)

	got, err := repository.NewAccountRepository().GetByID(ctx, player.UserID)
	require.NoError(t, err)
	require.True(t, got.Withdrawable.Equal(decimal.NewFromInt(20)))
}

func Test_lotteryDomain_TicketCap(t *testing.T) {
	ctx := testutil.MockContext()
	player, err := testutil.SampleAccount(ctx, &entity.Account{
		Withdrawable: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	lotteryDomain := newTestLotteryDomain()
	created, err := lotteryDomain.Create(ctx, &model.CreateLotteryRequest{
		Title:                "capped draw",
		TicketPrice:          1,
		MaxTicketsPerAccount: 2,
		FinishType:           "deadline",
		FinishDeadline:       time.Now().Add(time.Hour),
		Prizes:               []string{"the prize"},
	})
	require.NoError(t, err)

	playerCtx := xcontext.WithRequestUserID(ctx, player.UserID)
	_, err = lotteryDomain.BuyTickets(playerCtx, &model.BuyTicketsRequest{
		LotteryID: created.LotteryID, Count: 2,
	})
	require.NoError(t, err)

	_, err = lotteryDomain.BuyTickets(playerCtx, &model.BuyTicketsRequest{
		LotteryID: created.LotteryID, Count: 1,
	})
	var xerr errorx.Error
	require.ErrorAs(t, err, &xerr)
	require.Equal(t, errorx.TooManyRequests, xerr.Code)
}
