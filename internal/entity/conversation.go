package entity

import (
	"time"

	"github.com/arbuzhub/casino-backend/pkg/enum"
)

type FlowTopic string

var (
	FlowCaptcha     = enum.New(FlowTopic("captcha"))
	FlowAmountEntry = enum.New(FlowTopic("amount_entry"))
	FlowPromoEntry  = enum.New(FlowTopic("promo_entry"))
)

type FlowState string

var (
	FlowAwaitingInput = enum.New(FlowState("awaiting_input"))
	FlowDone          = enum.New(FlowState("done"))
)

// Conversation keys a multi-step flow by (account, topic). It never holds a
// ledger lock across the suspension; resumption is a fresh typed command.
type Conversation struct {
	Base

	AccountID string    `gorm:"uniqueIndex:idx_conversations_topic"`
	Topic     FlowTopic `gorm:"uniqueIndex:idx_conversations_topic"`

	State   FlowState
	Payload Map

	ExpiresAt time.Time
}
