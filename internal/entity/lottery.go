package entity

import (
	"database/sql"

	"github.com/arbuzhub/casino-backend/pkg/enum"
	"github.com/shopspring/decimal"
)

type LotteryStatus string

var (
	LotteryActive    = enum.New(LotteryStatus("active"))
	LotteryDrawing   = enum.New(LotteryStatus("drawing"))
	LotteryFinished  = enum.New(LotteryStatus("finished"))
	LotteryCancelled = enum.New(LotteryStatus("cancelled"))
)

type LotteryFinishType string

var (
	LotteryFinishDeadline     = enum.New(LotteryFinishType("deadline"))
	LotteryFinishParticipants = enum.New(LotteryFinishType("participant_count"))
)

type Lottery struct {
	Base

	Title       string
	Description string

	TicketPrice          decimal.Decimal `gorm:"type:decimal(20,2)"`
	MaxTicketsPerAccount int

	Status     LotteryStatus `gorm:"index"`
	FinishType LotteryFinishType

	FinishDeadline sql.NullTime

	// FinishParticipants is a ticket sales target: the draw fires once
	// TotalTickets reaches it, whoever bought the tickets.
	FinishParticipants int

	TotalTickets int
}

type LotteryPrize struct {
	Base

	LotteryID string  `gorm:"uniqueIndex:idx_lottery_prizes_position"`
	Lottery   Lottery `gorm:"foreignKey:LotteryID"`

	Position    int `gorm:"uniqueIndex:idx_lottery_prizes_position"`
	Description string

	// Zero until the draw assigns a winning ticket.
	WinnerTicketNumber int
	WinnerAccountID    string
}

type LotteryTicket struct {
	Base

	LotteryID string  `gorm:"uniqueIndex:idx_lottery_tickets_number"`
	Lottery   Lottery `gorm:"foreignKey:LotteryID"`

	AccountID string  `gorm:"index"`
	Account   Account `gorm:"foreignKey:AccountID"`

	// TicketNumber values are dense 1..total_tickets within a lottery.
	TicketNumber int `gorm:"uniqueIndex:idx_lottery_tickets_number"`
}
