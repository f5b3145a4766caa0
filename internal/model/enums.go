package model

type ExchangeType string

const (
	ExchangeTypeFX       ExchangeType = "fx"
	ExchangeTypeShipping ExchangeType = "shipping"
)

type SessionStatus string

const (
	StatusPendingApproval      SessionStatus = "pending_approval"
	StatusAccepted             SessionStatus = "accepted"
	StatusAwaitingConfirmation SessionStatus = "awaiting_confirmation"
	StatusConfirmed            SessionStatus = "confirmed"
	StatusInProgress           SessionStatus = "in_progress"
	StatusInTransit            SessionStatus = "in_transit"
	StatusDelivered            SessionStatus = "delivered"
	StatusDisputed             SessionStatus = "disputed"
	StatusCompleted            SessionStatus = "completed"
	StatusCancelled            SessionStatus = "cancelled"
	StatusRejected             SessionStatus = "rejected"
)

// PartyRole identifies which side of a session an account acts as.
// RoleNone means the account is not a participant.
type PartyRole string

const (
	RoleInitiator PartyRole = "initiator"
	RoleTaker     PartyRole = "taker"
	RoleNone      PartyRole = "none"
)

// ConfirmationSide is the side of the exchange a party attests to.
// The initiator attests "sent", the taker attests "received".
type ConfirmationSide string

const (
	SideSent     ConfirmationSide = "sent"
	SideReceived ConfirmationSide = "received"
)

type Action string

const (
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionCancel   Action = "cancel"
	ActionConfirm  Action = "confirm"
	ActionProgress Action = "progress"
	ActionDispute  Action = "dispute"
)

// ActionVariant hints presentation emphasis for an offered action.
type ActionVariant string

const (
	VariantPrimary     ActionVariant = "primary"
	VariantSecondary   ActionVariant = "secondary"
	VariantDestructive ActionVariant = "destructive"
)
