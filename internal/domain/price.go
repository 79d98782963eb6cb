package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// httpPriceSource quotes rates from the coingecko simple-price endpoint.
type httpPriceSource struct {
	client  *http.Client
	baseURL string
}

func NewHTTPPriceSource() *httpPriceSource {
	return &httpPriceSource{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://api.coingecko.com/api/v3",
	}
}

func (s *httpPriceSource) Rate(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	base = strings.ToLower(base)
	quote = strings.ToLower(quote)

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s", s.baseURL, base, quote)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("price source returned status %d", resp.StatusCode)
	}

	var body map[string]map[string]decimal.Decimal
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, err
	}

	rate, ok := body[base][quote]
	if !ok {
		return decimal.Zero, fmt.Errorf("no rate for %s/%s", base, quote)
	}

	return rate, nil
}
