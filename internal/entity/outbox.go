package entity

import "database/sql"

// OutboxEvent rows are written inside the owning transaction and flushed to
// the gateway topic by a separate worker, giving at-least-once delivery
// without transport latency inside the transactional core.
type OutboxEvent struct {
	Base

	EventType string `gorm:"index"`

	// Key partitions the event stream; usually the target account id.
	Key     string
	Payload Map

	DeliveredAt sql.NullTime `gorm:"index"`
}

const (
	EventNotifyUser       = "notify_user"
	EventReferralAccrued  = "referral_accrued"
	EventReferralLevelUp  = "referral_level_up"
	EventLotteryFinished  = "lottery_finished"
	EventDuelFinished     = "duel_finished"
	EventVoucherActivated = "voucher_activated"
)
