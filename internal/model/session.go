package model

import (
	"encoding/json"
	"time"
)

// ConfirmationRecord tracks which party has attested their side of the
// exchange. A flag, once set, is only ever cleared by a dispute-resolution
// transition; it is never reset by ordinary flow.
type ConfirmationRecord struct {
	InitiatorConfirmed   bool       `db:"initiator_confirmed" json:"initiatorConfirmed"`
	TakerConfirmed       bool       `db:"taker_confirmed" json:"takerConfirmed"`
	InitiatorConfirmedAt *time.Time `db:"initiator_confirmed_at" json:"initiatorConfirmedAt,omitempty"`
	TakerConfirmedAt     *time.Time `db:"taker_confirmed_at" json:"takerConfirmedAt,omitempty"`
}

func (c ConfirmationRecord) ConfirmedBy(role PartyRole) bool {
	switch role {
	case RoleInitiator:
		return c.InitiatorConfirmed
	case RoleTaker:
		return c.TakerConfirmed
	}
	return false
}

func (c ConfirmationRecord) BothConfirmed() bool {
	return c.InitiatorConfirmed && c.TakerConfirmed
}

// Session is the aggregate root for one exchange attempt between an
// initiator (offer owner) and a taker. Version is an optimistic-concurrency
// token: every committed transition increments it, and updates are applied
// with a compare-and-swap on the value the caller read.
type Session struct {
	ID                string          `db:"id" json:"id"`
	Type              ExchangeType    `db:"type" json:"type"`
	Status            SessionStatus   `db:"status" json:"status"`
	InitiatorID       string          `db:"initiator_id" json:"initiatorId"`
	TakerID           string          `db:"taker_id" json:"takerId"`
	AgreedTerms       json.RawMessage `db:"agreed_terms" json:"agreedTerms"`
	ConversationID    *string         `db:"conversation_id" json:"conversationId,omitempty"`
	ConfirmationRecord
	Version           int64      `db:"version" json:"version"`
	ApprovalExpiresAt time.Time  `db:"approval_expires_at" json:"approvalExpiresAt"`
	CreatedAt         time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updatedAt"`
	CompletedAt       *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	CancelledAt       *time.Time `db:"cancelled_at" json:"cancelledAt,omitempty"`
	CancelReason      *string    `db:"cancel_reason" json:"cancelReason,omitempty"`
}

// RoleOf resolves an account to its role on this session.
func (s *Session) RoleOf(accountID string) PartyRole {
	switch accountID {
	case s.InitiatorID:
		return RoleInitiator
	case s.TakerID:
		return RoleTaker
	}
	return RoleNone
}

// CounterpartyID returns the other participant for a given account, or ""
// when the account is not a participant.
func (s *Session) CounterpartyID(accountID string) string {
	switch accountID {
	case s.InitiatorID:
		return s.TakerID
	case s.TakerID:
		return s.InitiatorID
	}
	return ""
}

// FXTerms is the agreed-terms payload for currency swap sessions. Rate and
// ToAmount are absent together when pricing is still negotiable.
type FXTerms struct {
	FromAmount   float64  `json:"fromAmount"`
	ToAmount     *float64 `json:"toAmount,omitempty"`
	FromCurrency string   `json:"fromCurrency"`
	ToCurrency   string   `json:"toCurrency"`
	Rate         *float64 `json:"rate,omitempty"`
	IsFullAmount bool     `json:"isFullAmount"`
}

// ShippingTerms is the agreed-terms payload for peer-carried shipments.
type ShippingTerms struct {
	Description string   `json:"description"`
	Weight      *float64 `json:"weight,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

type CreateSessionParams struct {
	Type              ExchangeType
	InitiatorID       string
	TakerID           string
	AgreedTerms       json.RawMessage
	ConversationID    *string
	ApprovalExpiresAt time.Time
}

// TransitionParams carries the full state delta of one committed transition.
// All fields are written together or not at all.
type TransitionParams struct {
	ID           string
	FromVersion  int64
	Status       SessionStatus
	Confirmation ConfirmationRecord
	CompletedAt  *time.Time
	CancelledAt  *time.Time
	CancelReason *string
}

// SessionEvent is one row of the append-only audit trail kept for dispute
// investigation.
type SessionEvent struct {
	ID         string        `db:"id" json:"id"`
	SessionID  string        `db:"session_id" json:"sessionId"`
	ActorID    string        `db:"actor_id" json:"actorId"`
	Action     Action        `db:"action" json:"action"`
	FromStatus SessionStatus `db:"from_status" json:"fromStatus"`
	ToStatus   SessionStatus `db:"to_status" json:"toStatus"`
	CreatedAt  time.Time     `db:"created_at" json:"createdAt"`
}

type AppendEventParams struct {
	SessionID  string
	ActorID    string
	Action     Action
	FromStatus SessionStatus
	ToStatus   SessionStatus
}
