package model

import "github.com/shopspring/decimal"

type PlaceBetRequest struct {
	Game     string  `json:"game"`
	BetKind  string  `json:"bet_kind"`
	Stake    float64 `json:"stake"`
	Currency string  `json:"currency"`

	// Outcomes carries pre-drawn outcome tokens for transports that roll
	// on the client side; left empty, the server draws.
	Outcomes []int `json:"outcomes"`
}

type PlaceBetResponse struct {
	BetID      int64           `json:"bet_id"`
	Outcomes   []int           `json:"outcomes"`
	Win        bool            `json:"win"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Payout     decimal.Decimal `json:"payout"`
	NetDelta   decimal.Decimal `json:"net_delta"`
}

type GetBetHistoryRequest struct {
	Limit int `json:"limit"`
}

type BetHistoryItem struct {
	BetID      int64           `json:"bet_id"`
	Game       string          `json:"game"`
	BetKind    string          `json:"bet_kind"`
	Currency   string          `json:"currency"`
	Stake      decimal.Decimal `json:"stake"`
	Win        bool            `json:"win"`
	Multiplier decimal.Decimal `json:"multiplier"`
	NetDelta   decimal.Decimal `json:"net_delta"`
}

type GetBetHistoryResponse struct {
	Bets []BetHistoryItem `json:"bets"`
}
