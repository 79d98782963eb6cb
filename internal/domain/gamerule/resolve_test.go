package gamerule

import (
	"testing"

	"github.com/arbuzhub/casino-backend/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func Test_ResolveSequence(t *testing.T) {
	tests := []struct {
		name       string
		game       entity.GameKind
		betKind    string
		tokens     []int
		win        bool
		multiplier string
	}{
		{"dice even wins", entity.GameDice, "even", []int{4}, true, "1.9"},
		{"dice even loses", entity.GameDice, "even", []int{3}, false, "0"},
		{"dice exact wins", entity.GameDice, "exact_6", []int{6}, true, "5.55"},
		{"dice pair wins", entity.GameDice, "pair", []int{3, 3}, true, "5.55"},
		{"dice pair loses", entity.GameDice, "pair", []int{3, 4}, false, "0"},
		{"dice 3 odd wins", entity.GameDice, "3_odd", []int{1, 3, 5}, true, "7"},
		{"dice sum 18 wins", entity.GameDice, "18", []int{6, 6, 2, 3, 1}, true, "8"},
		{"dice sum 18 loses", entity.GameDice, "18", []int{6, 6, 2, 3, 2}, false, "0"},
		{"dice 666 wins", entity.GameDice, "666", []int{6, 6, 6}, true, "100"},
		{"dice_7 less wins", entity.GameDiceSeven, "less_7", []int{2, 3}, true, "2.4"},
		{"dice_7 equal wins", entity.GameDiceSeven, "equal_7", []int{3, 4}, true, "6.0"},
		{"dice_7 more loses", entity.GameDiceSeven, "more_7", []int{3, 4}, false, "0"},
		{"dart red wins", entity.GameDart, "red", []int{4}, true, "1.4"},
		{"dart center wins", entity.GameDart, "center", []int{6}, true, "6"},
		{"dart miss wins", entity.GameDart, "miss", []int{1}, true, "6"},
		{"dart 3 white wins", entity.GameDart, "3_white", []int{3, 5, 3}, true, "21"},
		{"bowling strike wins", entity.GameBowling, "strike", []int{6}, true, "5"},
		{"bowling gutter counts as miss", entity.GameBowling, "miss", []int{0}, true, "5"},
		{"bowling 2 strike wins", entity.GameBowling, "2_strike", []int{6, 6}, true, "30"},
		{"football goal wins", entity.GameFootball, "goal", []int{5}, true, "1.4"},
		{"football bar is not a goal for 6_miss", entity.GameFootball, "6_miss", []int{1, 2, 3, 1, 2, 3}, true, "100"},
		{"football hattrick wins", entity.GameFootball, "hattrick", []int{3, 4, 5}, true, "4"},
		{"basketball clean wins", entity.GameBasketball, "clean", []int{5}, true, "6"},
		{"basketball stuck wins", entity.GameBasketball, "stuck", []int{3}, true, "5"},
		{"basketball 3 clean wins", entity.GameBasketball, "3_clean", []int{5, 5, 5}, true, "77"},
		{"slots jackpot", entity.GameSlots, "spin", []int{64}, true, "20"},
		{"slots bar triple", entity.GameSlots, "spin", []int{1}, true, "5"},
		{"slots grape triple", entity.GameSlots, "spin", []int{22}, true, "10"},
		{"slots lemon triple", entity.GameSlots, "spin", []int{43}, true, "7"},
		{"slots mixed reels lose", entity.GameSlots, "spin", []int{2}, false, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := ResolveSequence(tt.game, tt.betKind, tt.tokens)
			require.NoError(t, err)
			require.Equal(t, tt.win, verdict.Win)
			require.True(t, verdict.Multiplier.Equal(decimal.RequireFromString(tt.multiplier)),
				"multiplier %s != %s", verdict.Multiplier, tt.multiplier)
		})
	}
}

func Test_ResolveSequence_Validation(t *testing.T) {
	_, err := ResolveSequence(entity.GameDice, "nonsense", []int{1})
	require.Error(t, err)

	_, err = ResolveSequence(entity.GameDice, "pair", []int{1})
	require.Error(t, err)

	_, err = ResolveSequence(entity.GameDice, "even", []int{7})
	require.Error(t, err)

	_, err = ResolveSequence(entity.GameSlots, "spin", []int{65})
	require.Error(t, err)

	_, err = ResolveSequence(entity.GameBowling, "miss", []int{0})
	require.NoError(t, err)
}

func Test_DecodeSlots(t *testing.T) {
	require.Equal(t, [3]SlotSymbol{SymbolSeven, SymbolSeven, SymbolSeven}, DecodeSlots(64))
	require.Equal(t, [3]SlotSymbol{SymbolBar, SymbolBar, SymbolBar}, DecodeSlots(1))
	require.Equal(t, [3]SlotSymbol{SymbolGrape, SymbolGrape, SymbolGrape}, DecodeSlots(22))
	require.Equal(t, [3]SlotSymbol{SymbolLemon, SymbolLemon, SymbolLemon}, DecodeSlots(43))

	// Mixed reels never pay.
	require.True(t, SlotsMultiplier(2).IsZero())
}
