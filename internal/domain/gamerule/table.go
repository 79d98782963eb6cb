package gamerule

import (
	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/shopspring/decimal"
)

// BetType is one row of a game's bet-type table: how many outcome tokens the
// bet consumes, the total-payout multiplier, and the win predicate over
// exactly RequiredTokens tokens.
type BetType struct {
	RequiredTokens int
	Multiplier     decimal.Decimal
	Wins           func(tokens []int) bool
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func single(multiplier string, wins func(token int) bool) BetType {
	return BetType{
		RequiredTokens: 1,
		Multiplier:     d(multiplier),
		Wins:           func(tokens []int) bool { return wins(tokens[0]) },
	}
}

func allOf(n int, multiplier string, wins func(token int) bool) BetType {
	return BetType{
		RequiredTokens: n,
		Multiplier:     d(multiplier),
		Wins: func(tokens []int) bool {
			for _, t := range tokens {
				if !wins(t) {
					return false
				}
			}

			return true
		},
	}
}

func sumOf(n int, multiplier string, target int) BetType {
	return BetType{
		RequiredTokens: n,
		Multiplier:     d(multiplier),
		Wins: func(tokens []int) bool {
			sum := 0
			for _, t := range tokens {
				sum += t
			}

			return sum == target
		},
	}
}

func oneOf(values ...int) func(int) bool {
	return func(token int) bool {
		for _, v := range values {
			if token == v {
				return true
			}
		}

		return false
	}
}

func equals(value int) func(int) bool {
	return func(token int) bool { return token == value }
}

var diceTable = map[string]BetType{
	"even":    single("1.9", func(t int) bool { return t%2 == 0 }),
	"odd":     single("1.9", func(t int) bool { return t%2 == 1 }),
	"exact_1": single("5.55", equals(1)),
	"exact_2": single("5.55", equals(2)),
	"exact_3": single("5.55", equals(3)),
	"exact_4": single("5.55", equals(4)),
	"exact_5": single("5.55", equals(5)),
	"exact_6": single("5.55", equals(6)),
	"pair": {
		RequiredTokens: 2,
		Multiplier:     d("5.55"),
		Wins:           func(tokens []int) bool { return tokens[0] == tokens[1] },
	},
	"3_even": allOf(3, "7", func(t int) bool { return t%2 == 0 }),
	"3_odd":  allOf(3, "7", func(t int) bool { return t%2 == 1 }),
	"18":     sumOf(5, "8", 18),
	"21":     sumOf(5, "11", 21),
	"111":    allOf(3, "100", equals(1)),
	"333":    allOf(3, "100", equals(3)),
	"666":    allOf(3, "100", equals(6)),
}

// dice_7 throws two dice and bets on the sum against seven.
var diceSevenTable = map[string]BetType{
	"less_7":  sumCompare("2.4", func(sum int) bool { return sum < 7 }),
	"equal_7": sumCompare("6.0", func(sum int) bool { return sum == 7 }),
	"more_7":  sumCompare("2.4", func(sum int) bool { return sum > 7 }),
}

func sumCompare(multiplier string, cmp func(sum int) bool) BetType {
	return BetType{
		RequiredTokens: 2,
		Multiplier:     d(multiplier),
		Wins:           func(tokens []int) bool { return cmp(tokens[0] + tokens[1]) },
	}
}

// Dart tokens: 1 is a bounce off the board, 6 is the bullseye, red sectors
// are even, white sectors are odd (excluding the miss).
var dartTable = map[string]BetType{
	"red":      single("1.4", oneOf(2, 4, 6)),
	"white":    single("2", oneOf(3, 5)),
	"center":   single("6", equals(6)),
	"miss":     single("6", equals(1)),
	"3_red":    allOf(3, "7", oneOf(2, 4, 6)),
	"3_white":  allOf(3, "21", oneOf(3, 5)),
	"3_center": allOf(3, "100", equals(6)),
	"3_miss":   allOf(3, "100", equals(1)),
}

// Bowling token 6 is a strike; 1 is a gutter ball and counts as a miss.
var bowlingTable = map[string]BetType{
	"0-3":      single("1.9", func(t int) bool { return t <= 3 }),
	"4-6":      single("1.9", func(t int) bool { return t >= 4 && t <= 6 }),
	"strike":   single("5", equals(6)),
	"miss":     single("5", oneOf(0, 1)),
	"2_strike": allOf(2, "30", equals(6)),
	"3_strike": allOf(3, "100", equals(6)),
	"2_miss":   allOf(2, "30", oneOf(0, 1)),
	"3_miss":   allOf(3, "100", oneOf(0, 1)),
}

// Football tokens: 3..5 score, 1..2 miss, 3 doubles as hitting the bar.
// The 6_miss streak also accepts 3 because a bar shot is not a clean goal.
var footballTable = map[string]BetType{
	"goal":     single("1.4", oneOf(3, 4, 5)),
	"miss":     single("2.5", oneOf(1, 2)),
	"center":   single("1.9", equals(3)),
	"hattrick": allOf(3, "4", oneOf(3, 4, 5)),
	"5_goals":  allOf(5, "11", oneOf(3, 4, 5)),
	"10_goals": allOf(10, "100", oneOf(3, 4, 5)),
	"6_miss":   allOf(6, "100", oneOf(1, 2, 3)),
}

// Basketball tokens: 4..5 score, 5 is a clean swish, 3 is stuck on the rim.
var basketballTable = map[string]BetType{
	"hit":     single("2", oneOf(4, 5)),
	"miss":    single("1.4", oneOf(1, 2)),
	"clean":   single("6", equals(5)),
	"stuck":   single("5", equals(3)),
	"2_hit":   allOf(2, "5", oneOf(4, 5)),
	"3_hit":   allOf(3, "12", oneOf(4, 5)),
	"2_clean": allOf(2, "15", equals(5)),
	"3_clean": allOf(3, "77", equals(5)),
	"6_hit":   allOf(6, "100", oneOf(4, 5)),
}

var slotsTable = map[string]BetType{
	"spin": {
		RequiredTokens: 1,
		Multiplier:     decimal.Zero, // resolved from the reel combination
		Wins:           func(tokens []int) bool { return SlotsMultiplier(tokens[0]).IsPositive() },
	},
}

var tables = map[entity.GameKind]map[string]BetType{
	entity.GameDice:       diceTable,
	entity.GameDiceSeven:  diceSevenTable,
	entity.GameDart:       dartTable,
	entity.GameBowling:    bowlingTable,
	entity.GameFootball:   footballTable,
	entity.GameBasketball: basketballTable,
	entity.GameSlots:      slotsTable,
}

// Lookup finds the bet-type row for (game, betKind). The second return is
// false for an unknown game or bet kind.
func Lookup(game entity.GameKind, betKind string) (BetType, bool) {
	table, ok := tables[game]
	if !ok {
		return BetType{}, false
	}

	betType, ok := table[betKind]
	return betType, ok
}

// TokenDomain returns the inclusive range of valid outcome tokens for a game.
func TokenDomain(game entity.GameKind) (min, max int) {
	switch game {
	case entity.GameSlots:
		return 1, 64
	case entity.GameBowling:
		return 0, 6
	case entity.GameFootball, entity.GameBasketball:
		return 1, 5
	default:
		return 1, 6
	}
}
