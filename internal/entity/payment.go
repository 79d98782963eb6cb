package entity

import (
	"database/sql"

	"github.com/arbuzhub/casino-backend/pkg/enum"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

var (
	PaymentPending  = enum.New(PaymentStatus("pending"))
	PaymentSettled  = enum.New(PaymentStatus("settled"))
	PaymentRejected = enum.New(PaymentStatus("rejected"))
)

// Deposit rows are idempotent on (source_tag, external_tx_id); promo credits
// insert pseudo-deposits with a null external id.
type Deposit struct {
	Base

	AccountID string  `gorm:"index"`
	Account   Account `gorm:"foreignKey:AccountID"`

	Amount       decimal.Decimal `gorm:"type:decimal(20,2)"`
	SourceTag    string          `gorm:"uniqueIndex:idx_deposits_source_tx"`
	ExternalTxID sql.NullString  `gorm:"uniqueIndex:idx_deposits_source_tx"`
	Status       PaymentStatus
}

type Withdrawal struct {
	Base

	AccountID string  `gorm:"index"`
	Account   Account `gorm:"foreignKey:AccountID"`

	Amount  decimal.Decimal `gorm:"type:decimal(20,2)"`
	SinkTag string
	Status  PaymentStatus
}
