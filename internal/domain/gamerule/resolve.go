package gamerule

import (
	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/arbuzhub/casino-backend/pkg/errorx"
	"github.com/shopspring/decimal"
)

// Verdict is the outcome of resolving a bet: whether it won and the
// total-payout multiplier (stake times multiplier is returned on a win).
type Verdict struct {
	Win        bool
	Multiplier decimal.Decimal
}

// ResolveSingle resolves a one-token bet kind.
func ResolveSingle(game entity.GameKind, betKind string, token int) (Verdict, error) {
	return ResolveSequence(game, betKind, []int{token})
}

// ResolveSequence resolves a bet kind against an ordered token sequence. It
// is a pure function: same inputs, same verdict.
func ResolveSequence(game entity.GameKind, betKind string, tokens []int) (Verdict, error) {
	betType, ok := Lookup(game, betKind)
	if !ok {
		return Verdict{}, errorx.New(errorx.NotFound, "Unknown bet kind %s for game %s", betKind, game)
	}

	if len(tokens) != betType.RequiredTokens {
		return Verdict{}, errorx.New(errorx.BadRequest,
			"Bet kind %s needs %d outcomes, got %d", betKind, betType.RequiredTokens, len(tokens))
	}

	min, max := TokenDomain(game)
	for _, token := range tokens {
		if token < min || token > max {
			return Verdict{}, errorx.New(errorx.BadRequest, "Outcome token %d out of range for %s", token, game)
		}
	}

	if !betType.Wins(tokens) {
		return Verdict{Win: false, Multiplier: decimal.Zero}, nil
	}

	multiplier := betType.Multiplier
	if game == entity.GameSlots {
		multiplier = SlotsMultiplier(tokens[0])
	}

	return Verdict{Win: true, Multiplier: multiplier}, nil
}

// RequiredTokens reports how many outcome tokens a bet kind consumes.
func RequiredTokens(game entity.GameKind, betKind string) (int, error) {
	betType, ok := Lookup(game, betKind)
	if !ok {
		return 0, errorx.New(errorx.NotFound, "Unknown bet kind %s for game %s", betKind, game)
	}

	return betType.RequiredTokens, nil
}
