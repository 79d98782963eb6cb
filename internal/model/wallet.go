package model

import "github.com/shopspring/decimal"

type RecordDepositRequest struct {
	AccountID    string  `json:"account_id"`
	Amount       float64 `json:"amount"`
	SourceTag    string  `json:"source_tag"`
	ExternalTxID string  `json:"external_tx_id"`
}

type RecordDepositResponse struct {
	DepositID string `json:"deposit_id"`
	Duplicate bool   `json:"duplicate"`
}

type RequestWithdrawalRequest struct {
	Amount  float64 `json:"amount"`
	SinkTag string  `json:"sink_tag"`
}

type RequestWithdrawalResponse struct {
	WithdrawalID string `json:"withdrawal_id"`
}

type SettleWithdrawalRequest struct {
	WithdrawalID string `json:"withdrawal_id"`
	Approve      bool   `json:"approve"`
}

type SettleWithdrawalResponse struct{}

type GetPriceRateRequest struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

type GetPriceRateResponse struct {
	Rate   decimal.Decimal `json:"rate"`
	Cached bool            `json:"cached"`
}
