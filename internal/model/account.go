package model

import "github.com/shopspring/decimal"

type StartRequest struct {
	Name         string `json:"name"`
	ReferralCode string `json:"referral_code"`
}

type StartResponse struct {
	AccountID    string `json:"account_id"`
	ReferralCode string `json:"referral_code"`
	Created      bool   `json:"created"`
}

type GetBalanceRequest struct{}

type GetBalanceResponse struct {
	Withdrawable    decimal.Decimal `json:"withdrawable"`
	Locked          decimal.Decimal `json:"locked"`
	ReferralAccrued decimal.Decimal `json:"referral_accrued"`
	Demo            int64           `json:"demo"`
	RolloverDebt    decimal.Decimal `json:"rollover_debt"`
}

type GrantDailyDemoRequest struct{}

type GrantDailyDemoResponse struct {
	Granted bool  `json:"granted"`
	Amount  int64 `json:"amount"`
	Demo    int64 `json:"demo"`
}

type GetProfileRequest struct{}

type GetProfileResponse struct {
	AccountID        string          `json:"account_id"`
	Name             string          `json:"name"`
	ReferralCode     string          `json:"referral_code"`
	LifetimeTurnover decimal.Decimal `json:"lifetime_turnover"`
	LifetimeDeposits decimal.Decimal `json:"lifetime_deposits"`
	BetCount         int64           `json:"bet_count"`
	FavoriteGame     string          `json:"favorite_game"`
}
