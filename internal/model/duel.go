package model

import "github.com/shopspring/decimal"

type OpenDuelRequest struct {
	Game           string  `json:"game"`
	Stake          float64 `json:"stake"`
	PlayerCapacity int     `json:"player_capacity"`
}

type OpenDuelResponse struct {
	DuelID string `json:"duel_id"`
}

type JoinDuelRequest struct {
	DuelID string `json:"duel_id"`
}

type JoinDuelResponse struct {
	SeatIndex int `json:"seat_index"`

	// Playing is set when this join filled the last seat.
	Playing bool `json:"playing"`
}

type SubmitDuelResultRequest struct {
	DuelID string `json:"duel_id"`
	Token  int    `json:"token"`
}

type SubmitDuelResultResponse struct {
	// Finished is set when every seat has submitted and no tie remains.
	Finished bool `json:"finished"`

	// TieReset is set when the top score tied and those seats replay.
	TieReset bool `json:"tie_reset"`

	WinnerAccountID string          `json:"winner_account_id,omitempty"`
	Pool            decimal.Decimal `json:"pool"`
}

type CancelDuelRequest struct {
	DuelID string `json:"duel_id"`
}

type CancelDuelResponse struct{}

type ListOpenDuelsRequest struct {
	Game string `json:"game"`
}

type DuelSummary struct {
	DuelID         string          `json:"duel_id"`
	Game           string          `json:"game"`
	Stake          decimal.Decimal `json:"stake"`
	PlayerCapacity int             `json:"player_capacity"`
	SeatsTaken     int             `json:"seats_taken"`
}

type ListOpenDuelsResponse struct {
	Duels []DuelSummary `json:"duels"`
}
