package domain

import (
	"strings"
	"time"
)

// Stage is the named phase of a conversation's order lifecycle.
type Stage string

const (
	StageStart           Stage = "start"
	StageInquiring       Stage = "inquiring"
	StageQuoting         Stage = "quoting"
	StageConfirming      Stage = "confirming"
	StageDeliverySetup   Stage = "delivery_setup"
	StageAwaitingPayment Stage = "awaiting_payment"
	StageConfirmed       Stage = "confirmed"
	StageCancelled       Stage = "cancelled"
)

// stageLabels maps every label the reasoning service may answer with, both
// the canonical ones and the legacy Spanish ones, to a canonical stage.
var stageLabels = map[string]Stage{
	"start":            StageStart,
	"inicio":           StageStart,
	"inquiring":        StageInquiring,
	"consultando":      StageInquiring,
	"quoting":          StageQuoting,
	"cotizando":        StageQuoting,
	"confirming":       StageConfirming,
	"confirmando":      StageConfirming,
	"delivery_setup":   StageDeliverySetup,
	"delivery":         StageDeliverySetup,
	"awaiting_payment": StageAwaitingPayment,
	"pago":             StageAwaitingPayment,
	"confirmed":        StageConfirmed,
	"confirmado":       StageConfirmed,
	"cancelled":        StageCancelled,
	"cancelado":        StageCancelled,
}

// ParseStage normalizes a stage label. Unknown labels report ok=false and
// must leave the current stage untouched.
func ParseStage(label string) (Stage, bool) {
	s, ok := stageLabels[strings.ToLower(strings.TrimSpace(label))]
	return s, ok
}

// Terminal reports whether the stage ends the conversation instance.
func (s Stage) Terminal() bool {
	return s == StageConfirmed || s == StageCancelled
}

// Awaiting marks which specific input type the conversation expects next,
// finer grained than the stage.
type Awaiting string

const (
	AwaitingNone          Awaiting = ""
	AwaitingProof         Awaiting = "boucher"
	AwaitingAddress       Awaiting = "direccion"
	AwaitingDeliveryPhoto Awaiting = "foto_entrega"
)

// HistoryCap bounds the conversation window sent to the reasoning service.
const HistoryCap = 20

// ChatMessage is one turn of the bounded conversation history.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Conversation is the process-lifetime state for one (customer, business)
// pair. It is never persisted; eviction loses any unconfirmed order.
type Conversation struct {
	Phone               string
	BusinessID          string
	History             []ChatMessage
	Stage               Stage
	Order               Order
	Awaiting            Awaiting
	BoucherAttempts     int
	ProofExhausted      bool
	PaymentReminderSent bool
	LastActivity        time.Time
}

// NewConversation returns a fresh conversation at the start stage.
func NewConversation(phone, businessID string, now time.Time) *Conversation {
	return &Conversation{
		Phone:        phone,
		BusinessID:   businessID,
		Stage:        StageStart,
		LastActivity: now,
	}
}

// Append records one turn, keeping the most recent HistoryCap entries.
func (c *Conversation) Append(role, content string) {
	c.History = append(c.History, ChatMessage{Role: role, Content: content})
	if len(c.History) > HistoryCap {
		c.History = c.History[len(c.History)-HistoryCap:]
	}
}

// Touch refreshes the idle-eviction timestamp.
func (c *Conversation) Touch(now time.Time) {
	c.LastActivity = now
}
