package domain

import (
	"context"
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

func newTestDuelDomain() *duelDomain {
	return NewDuelDomain(
		repository.NewDuelRepository(),
		repository.NewAccountRepository(),
		repository.NewOutboxRepository(),
		common.NewAccountLocker(),
	)
}

func duelPlayers(t *testing.T, ctx context.Context, n int) []entity.Account {
	t.Helper()

	players := make([]entity.Account, 0, n)
	for i := 0; i < n; i++ {
		player, err := testutil.SampleAccount(ctx, &entity.Account{
			Withdrawable: decimal.NewFromInt(20),
		})
		require.NoError(t, err)
		players = append(players, player)
	}

	return players
}

func Test_duelDomain_ThreePlayerTieReset(t *testing.T) {
	ctx := testutil.MockContext()
	players := duelPlayers(t, ctx, 3)

	duelDomain := newTestDuelDomain()

	ctxA := xcontext.WithRequestUserID(ctx, players[0].UserID)
	ctxB := xcontext.WithRequestUserID(ctx, players[1].UserID)
	ctxC := xcontext.WithRequestUserID(ctx, players[2].UserID)

	opened, err := duelDomain.Open(ctxA, &model.OpenDuelRequest{
		Game: "dice", Stake: 5, PlayerCapacity: 3,
	})
	require.NoError(t, err)

	joined, err := duelDomain.Join(ctxB, &model.JoinDuelRequest{DuelID: opened.DuelID})
	require.NoError(t, err)
	require.Equal(t, 1, joined.SeatIndex)
	require.False(t, joined.Playing)

	// The same player cannot take two seats.
	_, err = duelDomain.Join(ctxB, &model.JoinDuelRequest{DuelID: opened.DuelID})
	require.Error(t, err)

	joined, err = duelDomain.Join(ctxC, &model.JoinDuelRequest{DuelID: opened.DuelID})
	require.NoError(t, err)
	require.True(t, joined.Playing)

	// All stakes are in the pot now.
	accountRepo := repository.NewAccountRepository()
	for _, player := range players {
		got, err := accountRepo.GetByID(ctx, player.UserID)
		require.NoError(t, err)
		require.True(t, got.Withdrawable.Equal(decimal.NewFromInt(15)))
	}

	// A and B tie at the top, C is out.
	_, err = duelDomain.SubmitResult(ctxA, &model.SubmitDuelResultRequest{DuelID: opened.DuelID, Token: 6})
	require.NoError(t, err)

	// Resubmitting before the round settles is rejected.
	_, err = duelDomain.SubmitResult(ctxA, &model.SubmitDuelResultRequest{DuelID: opened.DuelID, Token: 5})
	var xerr errorx.Error
	require.ErrorAs(t, err, &xerr)
	require.Equal(t, errorx.StateConflict, xerr.Code)

	_, err = duelDomain.SubmitResult(ctxB, &model.SubmitDuelResultRequest{DuelID: opened.DuelID, Token: 6})
	require.NoError(t, err)

	resp, err := duelDomain.SubmitResult(ctxC, &model.SubmitDuelResultRequest{DuelID: opened.DuelID, Token: 4})
	require.NoError(t, err)
	require.True(t, resp.TieReset)
	require.False(t, resp.Finished)

	// Only the tied seats replay; B takes the pool.
	_, err = duelDomain.SubmitResult(ctxA, &model.SubmitDuelResultRequest{DuelID: opened.DuelID, Token: 3})
	require.NoError(t, err)

	resp, err = duelDomain.SubmitResult(ctxB, &model.SubmitDuelResultRequest{DuelID: opened.DuelID, Token: 5})
	require.NoError(t, err)
	require.True(t, resp.Finished)
	require.Equal(t, players[1].UserID, resp.WinnerAccountID)
	require.True(t, resp.Pool.Equal(decimal.NewFromInt(15)))

	got, err := accountRepo.GetByID(ctx, players[1].UserID)
	require.NoError(t, err)
	require.True(t, got.Withdrawable.Equal(decimal.NewFromInt(30)))

	// Losers keep their reduced balance.
	got, err = accountRepo.GetByID(ctx, players[0].UserID)
	require.NoError(t, err)
	require.True(t, got.Withdrawable.Equal(decimal.NewFromInt(15)))
}

func Test_duelDomain_CancelRefunds(t *testing.T) {
	ctx := testutil.MockContext()
	players := duelPlayers(t, ctx, 2)

	duelDomain := newTestDuelDomain()

	ctxA := xcontext.WithRequestUserID(ctx, players[0].UserID)
	ctxB := xcontext.WithRequestUserID(ctx, players[1].UserID)

	opened, err := duelDomain.Open(ctxA, &model.OpenDuelRequest{
		Game: "bowling", Stake: 5, PlayerCapacity: 3,
	})
	require.NoError(t, err)

	_, err = duelDomain.Join(ctxB, &model.JoinDuelRequest{DuelID: opened.DuelID})
	require.NoError(t, err)

	// Only the creator may cancel.
	_, err = duelDomain.Cancel(ctxB, &model.CancelDuelRequest{DuelID: opened.DuelID})
	var xerr errorx.Error
	require.ErrorAs(t, err, &xerr)
	require.Equal(t, errorx.PermissionDenied, xerr.Code)

	_, err = duelDomain.Cancel(ctxA, &model.CancelDuelRequest{DuelID: opened.DuelID})
	require.NoError(t, err)

	accountRepo := repository.NewAccountRepository()
	for _, player := range players {
		got, err := accountRepo.GetByID(ctx, player.UserID)
		require.NoError(t, err)
		require.True(t, got.Withdrawable.Equal(decimal.NewFromInt(20)))
	}

	// Cancelled duels do not accept joins.
	_, err = duelDomain.Join(ctxB, &model.JoinDuelRequest{DuelID: opened.DuelID})
	require.ErrorAs(t, err, &xerr)
	require.Equal(t, errorx.StateConflict, xerr.Code)
}

func Test_duelDomain_StalledDuelSettles(t *testing.T) {
	ctx := testutil.MockContext()
	players := duelPlayers(t, ctx, 2)

	duelDomain := newTestDuelDomain()

	ctxA := xcontext.WithRequestUserID(ctx, players[0].UserID)
	ctxB := xcontext.WithRequestUserID(ctx, players[1].UserID)

	opened, err := duelDomain.Open(ctxA, &model.OpenDuelRequest{
		Game: "dice", Stake: 5, PlayerCapacity: 2,
	})
	require.NoError(t, err)

	_, err = duelDomain.Join(ctxB, &model.JoinDuelRequest{DuelID: opened.DuelID})
	require.NoError(t, err)

	_, err = duelDomain.SubmitResult(ctxA, &model.SubmitDuelResultRequest{DuelID: opened.DuelID, Token: 2})
	require.NoError(t, err)

	// Push the turn deadline into the past; the sweeper forfeits B.
	duelRepo := repository.NewDuelRepository()
	require.NoError(t, duelRepo.SetTurnDeadline(ctx, opened.DuelID, time.Now().Add(-time.Minute)))

	require.NoError(t, duelDomain.CancelExpired(ctx))

	duel, err := duelRepo.GetByID(ctx, opened.DuelID)
	require.NoError(t, err)
	require.Equal(t, entity.DuelFinished, duel.Status)

	got, err := repository.NewAccountRepository().GetByID(ctx, players[0].UserID)
	require.NoError(t, err)
	require.True(t, got.Withdrawable.Equal(decimal.NewFromInt(25)))
}

func Test_duelDomain_OpenValidation(t *testing.T) {
	ctx := testutil.MockContext()
	player, err := testutil.SampleAccount(ctx, &entity.Account{
		Withdrawable: decimal.NewFromInt(2),
	})
	require.NoError(t, err)
	ctx = xcontext.WithRequestUserID(ctx, player.UserID)

	duelDomain := newTestDuelDomain()

	_, err = duelDomain.Open(ctx, &model.OpenDuelRequest{Game: "dice", Stake: 5, PlayerCapacity: 1})
	require.Error(t, err)

	_, err = duelDomain.Open(ctx, &model.OpenDuelRequest{Game: "dice", Stake: 5, PlayerCapacity: 10})
	var capErr errorx.Error
	require.ErrorAs(t, err, &capErr)
	require.Equal(t, errorx.BadRequest, capErr.Code)

	_, err = duelDomain.Open(ctx, &model.OpenDuelRequest{Game: "chess", Stake: 5, PlayerCapacity: 2})
	require.Error(t, err)

	_, err = duelDomain.Open(ctx, &model.OpenDuelRequest{Game: "dice", Stake: 5, PlayerCapacity: 2})
	var xerr errorx.Error
	require.ErrorAs(t, err, &xerr)
	require.Equal(t, errorx.InsufficientFunds, xerr.Code)
}
