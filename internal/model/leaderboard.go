package model

type GetTurnoverBoardRequest struct {
	Limit int `json:"limit"`
}

type TurnoverBoardEntry struct {
	AccountID string  `json:"account_id"`
	Name      string  `json:"name"`
	Turnover  float64 `json:"turnover"`
}

type GetTurnoverBoardResponse struct {
	Entries []TurnoverBoardEntry `json:"entries"`

	// MyRank is zero-based; -1 when the caller has no turnover yet.
	MyRank int `json:"my_rank"`
}
