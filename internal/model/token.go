package model

// AccessToken is the JWT object minted for a messenger account.
type AccessToken struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
