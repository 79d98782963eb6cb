package entity

import (
	"database/sql"
	"time"

	"github.com/arbuzhub/casino-backend/pkg/enum"
	"github.com/shopspring/decimal"
)

type DuelStatus string

var (
	DuelOpen      = enum.New(DuelStatus("open"))
	DuelPlaying   = enum.New(DuelStatus("playing"))
	DuelFinished  = enum.New(DuelStatus("finished"))
	DuelCancelled = enum.New(DuelStatus("cancelled"))
)

type Duel struct {
	Base

	CreatorID string  `gorm:"index"`
	Creator   Account `gorm:"foreignKey:CreatorID"`

	Game           GameKind
	StakePerPlayer decimal.Decimal `gorm:"type:decimal(20,2)"`
	PlayerCapacity int

	Status DuelStatus `gorm:"index"`

	ExpiresAt time.Time

	// TurnDeadline bounds result submission once the duel is playing.
	TurnDeadline sql.NullTime

	WinnerAccountID string
}

// DuelSeat occupies one position in a duel; seat 0 is the creator. A null
// result token means the seat has not submitted yet (or was reset after a
// tie at the top).
type DuelSeat struct {
	Base

	DuelID string `gorm:"uniqueIndex:idx_duel_seats_index"`
	Duel   Duel   `gorm:"foreignKey:DuelID"`

	SeatIndex int `gorm:"uniqueIndex:idx_duel_seats_index"`

	AccountID string  `gorm:"index"`
	Account   Account `gorm:"foreignKey:AccountID"`

	ResultToken sql.NullInt64
}
