package entity

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Account is created on the first contact of a messenger user and never
// destroyed. Monetary pools are fixed-point USD with two decimal places;
// the demo pool is an integer play-money balance.
type Account struct {
	UserID    string `gorm:"primaryKey"`
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time

	// InviterID is immutable once set.
	InviterID    sql.NullString `gorm:"index"`
	ReferralCode string         `gorm:"unique"`

	Withdrawable    decimal.Decimal `gorm:"type:decimal(20,2);default:0"`
	Locked          decimal.Decimal `gorm:"type:decimal(20,2);default:0"`
	ReferralAccrued decimal.Decimal `gorm:"type:decimal(20,2);default:0"`
	Demo            int64           `gorm:"default:0"`

	RolloverDebt        decimal.Decimal `gorm:"type:decimal(20,2);default:0"`
	LifetimeTurnover    decimal.Decimal `gorm:"type:decimal(20,2);default:0"`
	LifetimeDeposits    decimal.Decimal `gorm:"type:decimal(20,2);default:0"`
	LifetimeWithdrawals decimal.Decimal `gorm:"type:decimal(20,2);default:0"`

	// DownlineVolume is the lifetime wagering volume of this account's
	// direct referrals; it selects the referral tier.
	DownlineVolume decimal.Decimal `gorm:"type:decimal(20,2);default:0"`

	FavoriteGameHint     string
	DailyDemoLastGranted sql.NullTime
}

// Partner overrides the tiered referral percent for one account.
type Partner struct {
	Base

	AccountID string  `gorm:"unique"`
	Account   Account `gorm:"foreignKey:AccountID"`

	Prefix          string
	ReferralPercent decimal.Decimal `gorm:"type:decimal(5,2)"`
}
