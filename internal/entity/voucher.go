package entity

import (
	"github.com/arbuzhub/casino-backend/pkg/enum"
	"github.com/shopspring/decimal"
)

type VoucherKind string

var (
	// VoucherCheck is a single-use style voucher with an opaque code.
	VoucherCheck = enum.New(VoucherKind("check"))
	// VoucherPromo is a bulk voucher with a human-readable code.
	VoucherPromo = enum.New(VoucherKind("promo"))
)

type Voucher struct {
	Base

	Kind VoucherKind `gorm:"uniqueIndex:idx_vouchers_kind_code"`
	Code string      `gorm:"uniqueIndex:idx_vouchers_kind_code"`

	CreatorID string  `gorm:"index"`
	Creator   Account `gorm:"foreignKey:CreatorID"`

	AmountPerActivation  decimal.Decimal `gorm:"type:decimal(20,2)"`
	TotalActivations     int
	RemainingActivations int

	// RolloverMultiplier above one routes the credit into the locked pool
	// and books rollover debt of amount*multiplier.
	RolloverMultiplier decimal.Decimal `gorm:"type:decimal(10,2);default:1"`

	MinDepositGate  decimal.Decimal `gorm:"type:decimal(20,2);default:0"`
	CaptchaRequired bool
	RequiredChannel string

	// Media holds the optional attached media/button payload passed through
	// to the gateway untouched.
	Media Map
}

type VoucherActivation struct {
	Base

	VoucherID string  `gorm:"uniqueIndex:idx_voucher_activations"`
	Voucher   Voucher `gorm:"foreignKey:VoucherID"`

	AccountID string  `gorm:"uniqueIndex:idx_voucher_activations"`
	Account   Account `gorm:"foreignKey:AccountID"`
}
