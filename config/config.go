package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string

	Database  DatabaseConfigs
	ApiServer ServerConfigs
	Auth      AuthConfigs
	Redis     RedisConfigs
	Kafka     KafkaConfigs

	Game     GameConfigs
	Referral ReferralConfigs
	Voucher  VoucherConfigs
	Lottery  LotteryConfigs
	Duel     DuelConfigs
	Flow     FlowConfigs

	// AdminActors are the account ids allowed to run elevated commands.
	AdminActors []string
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string

	LogLevel string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string

	AllowCORS []string
}

func (s ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type AuthConfigs struct {
	TokenSecret     string
	AccessToken     TokenConfigs
	GatewayActorKey string
}

type TokenConfigs struct {
	Name       string
	Expiration time.Duration
}

type RedisConfigs struct {
	Addr string
}

type KafkaConfigs struct {
	Addr string

	// NotificationTopic is consumed by the bot gateway which renders the
	// structured events into chat messages.
	NotificationTopic string

	// DepositTopic carries confirmed transfers from the payment gateway.
	DepositTopic string
}

type GameConfigs struct {
	MinBet float64
	MaxBet float64

	// MaxAccountBalance is the hard per-account cap on any single pool.
	MaxAccountBalance float64

	DailyDemoAmount int64
}

type ReferralLevel struct {
	Volume  float64
	Percent float64
}

type ReferralConfigs struct {
	// Levels must be ordered by ascending volume threshold; the first entry
	// is the default tier.
	Levels []ReferralLevel

	DefaultPercent float64
}

type VoucherConfigs struct {
	MinAmount  float64
	CodeLength uint

	// RequiredChannel is the opt-in subscription gate for promo codes.
	RequiredChannel string
}

type LotteryConfigs struct {
	TickInterval time.Duration
}

type DuelConfigs struct {
	OpenTimeout time.Duration
	TurnTimeout time.Duration
	TickInterval time.Duration
}

type FlowConfigs struct {
	// Timeout bounds how long a multi-step conversation (captcha, amount
	// entry) may stay open.
	Timeout time.Duration
}
