package domain

import (
	"database/sql"
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

// fixedSource replays a scripted token sequence instead of rolling.
type fixedSource struct {
	tokens []int
	next   int
}

func (s *fixedSource) Draw(game entity.GameKind) int {
	token := s.tokens[s.next%len(s.tokens)]
	s.next++
	return token
}

func newTestBetDomain(source OutcomeSource) *betDomain {
	return NewBetDomain(
		repository.NewAccountRepository(),
		repository.NewBetRecordRepository(),
		repository.NewPartnerRepository(),
		repository.NewOutboxRepository(),
		common.NewAccountLocker(),
		source,
		nil,
	)
}

func Test_betDomain_PlaceBet_WinAndLose(t *testing.T) {
	ctx := testutil.MockContext()
	account, err := testutil.SampleAccount(ctx, &entity.Account{
		Withdrawable: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	ctx = xcontext.WithRequestUserID(ctx, account.UserID)

	betDomain := newTestBetDomain(&fixedSource{tokens: []int{4}})

	resp, err := betDomain.PlaceBet(ctx, &model.PlaceBetRequest{
		Game: "dice", BetKind: "even", Stake: 10,
	})
	require.NoError(t, err)
	require.True(t, resp.Win)
	require.Equal(t, []int{4}, resp.Outcomes)
	require.True(t, resp.Payout.Equal(decimal.NewFromInt(19)))
	require.True(t, resp.NetDelta.Equal(decimal.NewFromInt(9)))
	require.NotZero(t, resp.BetID)

	accountRepo := repository.NewAccountRepository()
	got, err := accountRepo.GetByID(ctx, account.UserID)
	require.NoError(t, err)
	require.True(t, got.Withdrawable.Equal(decimal.NewFromInt(109)))
	require.True(t, got.LifetimeTurnover.Equal(decimal.NewFromInt(10)))
	require.Equal(t, "dice", got.FavoriteGameHint)

	// A losing roll only takes the stake.
	betDomain.source = &fixedSource{tokens: []int{3}}
	resp, err = betDomain.PlaceBet(ctx, &model.PlaceBetRequest{
		Game: "dice", BetKind: "even", Stake: 9,
	})
	require.NoError(t, err)
	require.False(t, resp.Win)
	require.True(t, resp.NetDelta.Equal(decimal.NewFromInt(-9)))

	got, err = accountRepo.GetByID(ctx, account.UserID)
	require.NoError(t, err)
	require.True(t, got.Withdrawable.Equal(decimal.NewFromInt(100)))

	history, err := betDomain.GetHistory(ctx, &model.GetBetHistoryRequest{})
	require.NoError(t, err)
	require.Len(t, history.Bets, 2)
	require.False(t, history.Bets[0].Win)
	require.True(t, history.Bets[1].Win)
}

func Test_betDomain_PlaceBet_Validation(t *testing.T) {
	ctx := testutil.MockContext()
	account, err := testutil.SampleAccount(ctx, &entity.Account{
		Withdrawable: decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	ctx = xcontext.WithRequestUserID(ctx, account.UserID)

	betDomain := newTestBetDomain(&fixedSource{tokens: []int{2}})

	_, err = betDomain.PlaceBet(ctx, &model.PlaceBetRequest{Game: "poker", BetKind: "even", Stake: 1})
	require.Error(t, err)

	_, err = betDomain.PlaceBet(ctx, &model.PlaceBetRequest{Game: "dice", BetKind: "flush", Stake: 1})
	require.Error(t, err)

	_, err = betDomain.PlaceBet(ctx, &model.PlaceBetRequest{Game: "dice", BetKind: "even", Stake: -1})
	require.Error(t, err)

	_, err = betDomain.PlaceBet(ctx, &model.PlaceBetRequest{Game: "dice", BetKind: "even", Stake: 9999})
	require.Error(t, err)

	_, err = betDomain.PlaceBet(ctx, &model.PlaceBetRequest{Game: "dice", BetKind: "even", Stake: 10})
	var xerr errorx.Error
	require.ErrorAs(t, err, &xerr)
	require.Equal(t, errorx.InsufficientFunds, xerr.Code)

	// The failed bet must not leave a partial debit behind.
	got, err := repository.NewAccountRepository().GetByID(ctx, account.UserID)
	require.NoError(t, err)
	require.True(t, got.Withdrawable.Equal(decimal.NewFromInt(5)))
}

func Test_betDomain_PlaceBet_RolloverUnlock(t *testing.T) {
	ctx := testutil.MockContext()
	account, err := testutil.SampleAccount(ctx, &entity.Account{
		Locked:       decimal.NewFromInt(50),
		RolloverDebt: decimal.NewFromInt(30),
	})
	require.NoError(t, err)
	ctx = xcontext.WithRequestUserID(ctx, account.UserID)

	betDomain := newTestBetDomain(&fixedSource{tokens: []int{3}})

	// Losing wager of 30 clears the whole debt; the rest of the locked pool
	// unlocks.
	resp, err := betDomain.PlaceBet(ctx, &model.PlaceBetRequest{
		Game: "dice", BetKind: "even", Stake: 30,
	})
	require.NoError(t, err)
	require.False(t, resp.Win)

	got, err := repository.NewAccountRepository().GetByID(ctx, account.UserID)
	require.NoError(t, err)
	require.True(t, got.RolloverDebt.IsZero())
	require.True(t, got.Locked.IsZero())
	require.True(t, got.Withdrawable.Equal(decimal.NewFromInt(20)))
}

func Test_betDomain_PlaceBet_WinningsStayLocked(t *testing.T) {
	ctx := testutil.MockContext()
	account, err := testutil.SampleAccount(ctx, &entity.Account{
		Locked:       decimal.NewFromInt(50),
		RolloverDebt: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	ctx = xcontext.WithRequestUserID(ctx, account.UserID)

	betDomain := newTestBetDomain(&fixedSource{tokens: []int{4}})

	resp, err := betDomain.PlaceBet(ctx, &model.PlaceBetRequest{
		Game: "dice", BetKind: "even", Stake: 10,
	})
	require.NoError(t, err)
	require.True(t, resp.Win)

	// Stake came from locked, so the payout lands in locked too and the
	// debt shrinks by the stake only.
	got, err := repository.NewAccountRepository().GetByID(ctx, account.UserID)
	require.NoError(t, err)
	require.True(t, got.Locked.Equal(decimal.NewFromInt(59)))
	require.True(t, got.Withdrawable.IsZero())
	require.True(t, got.RolloverDebt.Equal(decimal.NewFromInt(90)))
}

func Test_betDomain_PlaceBet_ReferralAccrual(t *testing.T) {
	ctx := testutil.MockContext()
	inviter, err := testutil.SampleAccount(ctx, &entity.Account{
		DownlineVolume: decimal.NewFromInt(950),
	})
	require.NoError(t, err)

	bettor, err := testutil.SampleAccount(ctx, &entity.Account{
		Withdrawable: decimal.NewFromInt(200),
		InviterID:    sql.NullString{String: inviter.UserID, Valid: true},
	})
	require.NoError(t, err)
	ctx = xcontext.WithRequestUserID(ctx, bettor.UserID)

	betDomain := newTestBetDomain(&fixedSource{tokens: []int{3}})

	_, err = betDomain.PlaceBet(ctx, &model.PlaceBetRequest{
		Game: "dice", BetKind: "even", Stake: 100,
	})
	require.NoError(t, err)

	// Volume before the wager selects the tier: 950 is still level 1 at 5%.
	got, err := repository.NewAccountRepository().GetByID(ctx, inviter.UserID)
	require.NoError(t, err)
	require.True(t, got.ReferralAccrued.Equal(decimal.NewFromInt(5)))
	require.True(t, got.DownlineVolume.Equal(decimal.NewFromInt(1050)))

	// Crossing the 1000 threshold emits a level-up next to the accrual.
	events, err := repository.NewOutboxRepository().ListPending(ctx, 10)
	require.NoError(t, err)

	types := []string{}
	for _, event := range events {
		types = append(types, event.EventType)
	}
	require.Contains(t, types, entity.EventReferralAccrued)
	require.Contains(t, types, entity.EventReferralLevelUp)
}

func Test_betDomain_PlaceBet_DemoIsolated(t *testing.T) {
	ctx := testutil.MockContext()
	account, err := testutil.SampleAccount(ctx, &entity.Account{
		Withdrawable: decimal.NewFromInt(100),
		Demo:         100,
	})
	require.NoError(t, err)
	ctx = xcontext.WithRequestUserID(ctx, account.UserID)

	betDomain := newTestBetDomain(&fixedSource{tokens: []int{4}})

	resp, err := betDomain.PlaceBet(ctx, &model.PlaceBetRequest{
		Game: "dice", BetKind: "even", Stake: 10, Currency: "demo",
	})
	require.NoError(t, err)
	require.True(t, resp.Win)

	// Demo wagers never touch the real pools, turnover, or rollover.
	got, err := repository.NewAccountRepository().GetByID(ctx, account.UserID)
	require.NoError(t, err)
	require.Equal(t, int64(109), got.Demo)
	require.True(t, got.Withdrawable.Equal(decimal.NewFromInt(100)))
	require.True(t, got.LifetimeTurnover.IsZero())

	// Fractional demo stakes are rejected.
	_, err = betDomain.PlaceBet(ctx, &model.PlaceBetRequest{
		Game: "dice", BetKind: "even", Stake: 1.5, Currency: "demo",
	})
	require.Error(t, err)
}
