package model

import "github.com/shopspring/decimal"

type CreateCheckRequest struct {
	AmountPerActivation float64        `json:"amount_per_activation"`
	TotalActivations    int            `json:"total_activations"`
	RolloverMultiplier  float64        `json:"rollover_multiplier"`
	MinDepositGate      float64        `json:"min_deposit_gate"`
	CaptchaRequired     bool           `json:"captcha_required"`
	RequiredChannel     string         `json:"required_channel"`
	Media               map[string]any `json:"media"`
}

type CreateCheckResponse struct {
	VoucherID string `json:"voucher_id"`
	Code      string `json:"code"`
}

type CreatePromoRequest struct {
	Code                string  `json:"code"`
	AmountPerActivation float64 `json:"amount_per_activation"`
	TotalActivations    int     `json:"total_activations"`
	RolloverMultiplier  float64 `json:"rollover_multiplier"`
	MinDepositGate      float64 `json:"min_deposit_gate"`
}

type CreatePromoResponse struct {
	VoucherID string `json:"voucher_id"`
}

type ActivateVoucherRequest struct {
	Kind string `json:"kind"`
	Code string `json:"code"`

	// Subscribed mirrors the messenger-side channel membership check.
	// Nil means the gateway could not verify membership; only an explicit
	// false fails the channel gate.
	Subscribed *bool `json:"subscribed"`
}

type ActivateVoucherResponse struct {
	// CaptchaChallenge is set instead of crediting when the voucher gates
	// on a captcha; the client answers via CompleteCaptcha.
	CaptchaChallenge string `json:"captcha_challenge,omitempty"`

	Credited decimal.Decimal `json:"credited"`
	Pool     string          `json:"pool,omitempty"`
}

type CompleteCaptchaRequest struct {
	Answer string `json:"answer"`
}

type CompleteCaptchaResponse struct {
	Credited decimal.Decimal `json:"credited"`
	Pool     string          `json:"pool"`
}

type DeleteCheckRequest struct {
	VoucherID string `json:"voucher_id"`
}

type DeleteCheckResponse struct {
	Refunded decimal.Decimal `json:"refunded"`
}

type ListChecksRequest struct{}

type CheckSummary struct {
	VoucherID           string          `json:"voucher_id"`
	Code                string          `json:"code"`
	AmountPerActivation decimal.Decimal `json:"amount_per_activation"`
	TotalActivations    int             `json:"total_activations"`
	Remaining           int             `json:"remaining"`
}

type ListChecksResponse struct {
	Checks []CheckSummary `json:"checks"`
}
