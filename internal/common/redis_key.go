package common

import "fmt"

// Redis key layout. Turnover is a sorted set scored by lifetime real
// turnover; price rates are plain keys with a TTL.
func RedisKeyTurnoverBoard() string {
	return "leaderboard:turnover"
}

func RedisKeyPriceRate(base, quote string) string {
	return fmt.Sprintf("price:%s:%s", base, quote)
}
