package model

import "github.com/shopspring/decimal"

type GetReferralStatsRequest struct{}

type GetReferralStatsResponse struct {
	ReferralCode    string          `json:"referral_code"`
	Level           int             `json:"level"`
	Percent         decimal.Decimal `json:"percent"`
	DownlineVolume  decimal.Decimal `json:"downline_volume"`
	ReferralAccrued decimal.Decimal `json:"referral_accrued"`
	IsPartner       bool            `json:"is_partner"`
}

type WithdrawReferralRequest struct{}

type WithdrawReferralResponse struct {
	Amount       decimal.Decimal `json:"amount"`
	Withdrawable decimal.Decimal `json:"withdrawable"`
}

type SetPartnerRequest struct {
	AccountID string  `json:"account_id"`
	Prefix    string  `json:"prefix"`
	Percent   float64 `json:"percent"`
}

type SetPartnerResponse struct{}

type RemovePartnerRequest struct {
	AccountID string `json:"account_id"`
}

type RemovePartnerResponse struct{}
