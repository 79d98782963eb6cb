package entity

import "github.com/shopspring/decimal"

// BetRecord is the immutable settlement record of a single bet.
type BetRecord struct {
	SnowFlakeBase

	AccountID string  `gorm:"index"`
	Account   Account `gorm:"foreignKey:AccountID"`

	Game     GameKind
	BetKind  string
	Currency CurrencyKind

	Stake decimal.Decimal `gorm:"type:decimal(20,2)"`

	// LockedPart is the portion of the stake debited from the locked pool.
	LockedPart decimal.Decimal `gorm:"type:decimal(20,2)"`

	Outcomes   Array[int]
	Win        bool
	Multiplier decimal.Decimal `gorm:"type:decimal(10,2)"`
	NetDelta   decimal.Decimal `gorm:"type:decimal(20,2)"`
}
