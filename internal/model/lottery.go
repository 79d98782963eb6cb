package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateLotteryRequest struct {
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	TicketPrice          float64   `json:"ticket_price"`
	MaxTicketsPerAccount int       `json:"max_tickets_per_account"`
	FinishType           string    `json:"finish_type"`
	FinishDeadline       time.Time `json:"finish_deadline"`
	FinishParticipants   int       `json:"finish_participants"`
	Prizes               []string  `json:"prizes"`
}

type CreateLotteryResponse struct {
	LotteryID string `json:"lottery_id"`
}

type BuyTicketsRequest struct {
	LotteryID string `json:"lottery_id"`
	Count     int    `json:"count"`
}

type BuyTicketsResponse struct {
	TicketNumbers []int `json:"ticket_numbers"`

	// Finished is set when this purchase hit the ticket sales target and
	// the draw ran inline.
	Finished bool `json:"finished"`
}

type GetLotteryRequest struct {
	LotteryID string `json:"lottery_id"`
}

type LotteryPrizeView struct {
	Position           int    `json:"position"`
	Description        string `json:"description"`
	WinnerTicketNumber int    `json:"winner_ticket_number,omitempty"`
	WinnerAccountID    string `json:"winner_account_id,omitempty"`
}

type GetLotteryResponse struct {
	LotteryID    string             `json:"lottery_id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	TicketPrice  decimal.Decimal    `json:"ticket_price"`
	Status       string             `json:"status"`
	TotalTickets int                `json:"total_tickets"`
	MyTickets    int64              `json:"my_tickets"`
	Prizes       []LotteryPrizeView `json:"prizes"`
}

type ListLotteriesRequest struct{}

type ListLotteriesResponse struct {
	Lotteries []GetLotteryResponse `json:"lotteries"`
}

type CancelLotteryRequest struct {
	LotteryID string `json:"lottery_id"`
}

type CancelLotteryResponse struct {
	RefundedTickets int `json:"refunded_tickets"`
}
