package gamerule

import "github.com/shopspring/decimal"

type SlotSymbol string

const (
	SymbolSeven SlotSymbol = "seven"
	SymbolBar   SlotSymbol = "bar"
	SymbolGrape SlotSymbol = "grape"
	SymbolLemon SlotSymbol = "lemon"
)

// DecodeSlots unpacks a slots token (1..64) into its three reel symbols. The
// token minus one holds three 2-bit reel values; token 64 is the jackpot and
// decodes to three sevens.
func DecodeSlots(token int) [3]SlotSymbol {
	if token == 64 {
		return [3]SlotSymbol{SymbolSeven, SymbolSeven, SymbolSeven}
	}

	mapping := [4]int{1, 2, 3, 0}
	symbols := [4]SlotSymbol{SymbolSeven, SymbolBar, SymbolGrape, SymbolLemon}

	v := token - 1
	return [3]SlotSymbol{
		symbols[mapping[v&3]],
		symbols[mapping[(v>>2)&3]],
		symbols[mapping[(v>>4)&3]],
	}
}

// SlotsMultiplier returns the total-payout multiplier for a slots token, or
// zero when the reels do not line up.
func SlotsMultiplier(token int) decimal.Decimal {
	reels := DecodeSlots(token)
	if reels[0] != reels[1] || reels[1] != reels[2] {
		return decimal.Zero
	}

	switch reels[0] {
	case SymbolSeven:
		return decimal.NewFromInt(20)
	case SymbolGrape:
		return decimal.NewFromInt(10)
	case SymbolLemon:
		return decimal.NewFromInt(7)
	case SymbolBar:
		return decimal.NewFromInt(5)
	default:
		return decimal.Zero
	}
}
