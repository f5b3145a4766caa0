package lifecycle

import (
	"github.com/swaplane/exchange-server-go/internal/model"
)

// ActionOption is one currently legal action for a party, with the status it
// resolves to and the presentation affordances consumers need. Consumers
// derive everything from this list instead of re-implementing status logic.
type ActionOption struct {
	Action          model.Action            `json:"action"`
	Label           string                  `json:"label"`
	ResultingStatus model.SessionStatus     `json:"resultingStatus"`
	Variant         model.ActionVariant     `json:"variant"`
	Side            *model.ConfirmationSide `json:"confirmationSide,omitempty"`
}

// AvailableActions computes the set of legal actions for a party on a
// session snapshot. Terminal statuses yield nil. A party that has already
// confirmed never sees confirm again, even where the status nominally allows
// it: the ledger's own rejection is the second layer of the same guarantee.
func AvailableActions(session *model.Session, role model.PartyRole) []ActionOption {
	if role != model.RoleInitiator && role != model.RoleTaker {
		return nil
	}

	switch session.Status {
	case model.StatusPendingApproval:
		if role == model.RoleInitiator {
			return []ActionOption{
				{Action: model.ActionAccept, Label: "Accept", ResultingStatus: model.StatusAccepted, Variant: model.VariantPrimary},
				{Action: model.ActionReject, Label: "Reject", ResultingStatus: model.StatusRejected, Variant: model.VariantDestructive},
			}
		}
		return []ActionOption{
			cancelOption(),
		}

	case model.StatusAccepted, model.StatusAwaitingConfirmation:
		var opts []ActionOption
		if opt, ok := confirmOption(session, role, "Confirm"); ok {
			opts = append(opts, opt)
		}
		return append(opts, cancelOption())

	case model.StatusConfirmed:
		var opts []ActionOption
		if canProgress(session.Type, role) {
			opts = append(opts, progressOption(session.Type))
		}
		return append(opts, disputeOption())

	case model.StatusInProgress, model.StatusDelivered:
		var opts []ActionOption
		if opt, ok := confirmOption(session, role, "Complete"); ok {
			opts = append(opts, opt)
		}
		return append(opts, disputeOption())

	case model.StatusInTransit:
		var opts []ActionOption
		if role == model.RoleTaker {
			// Receiver marks the shipment delivered.
			opts = append(opts, ActionOption{
				Action:          model.ActionProgress,
				Label:           "Mark delivered",
				ResultingStatus: model.StatusDelivered,
				Variant:         model.VariantPrimary,
			})
		}
		if opt, ok := confirmOption(session, role, "Complete"); ok {
			opts = append(opts, opt)
		}
		return append(opts, disputeOption())

	case model.StatusDisputed:
		return []ActionOption{
			{Action: model.ActionConfirm, Label: "Resolve", ResultingStatus: model.StatusConfirmed, Variant: model.VariantPrimary},
			cancelOption(),
		}
	}

	// Terminal or unknown: nothing to offer.
	return nil
}

// ResolveAction maps a requested action to its target status for the current
// snapshot. The boolean is false when the action is not offered to this
// party right now.
func ResolveAction(session *model.Session, role model.PartyRole, action model.Action) (model.SessionStatus, bool) {
	for _, opt := range AvailableActions(session, role) {
		if opt.Action == action {
			return opt.ResultingStatus, true
		}
	}
	return "", false
}

func confirmOption(session *model.Session, role model.PartyRole, label string) (ActionOption, bool) {
	if session.ConfirmedBy(role) {
		return ActionOption{}, false
	}
	side, ok := SideFor(role)
	if !ok {
		return ActionOption{}, false
	}
	// Confirming does not by itself change status; the resulting status only
	// advances when the ledger sees both sides confirmed.
	return ActionOption{
		Action:          model.ActionConfirm,
		Label:           label,
		ResultingStatus: session.Status,
		Variant:         model.VariantPrimary,
		Side:            &side,
	}, true
}

// canProgress decides whose turn it is to move a confirmed session forward:
// the initiator starts an fx exchange, either party can hand off a shipment.
func canProgress(exchangeType model.ExchangeType, role model.PartyRole) bool {
	if exchangeType == model.ExchangeTypeFX {
		return role == model.RoleInitiator
	}
	return true
}

func progressOption(exchangeType model.ExchangeType) ActionOption {
	if exchangeType == model.ExchangeTypeShipping {
		return ActionOption{
			Action:          model.ActionProgress,
			Label:           "Start shipping",
			ResultingStatus: model.StatusInTransit,
			Variant:         model.VariantPrimary,
		}
	}
	return ActionOption{
		Action:          model.ActionProgress,
		Label:           "Start exchange",
		ResultingStatus: model.StatusInProgress,
		Variant:         model.VariantPrimary,
	}
}

func cancelOption() ActionOption {
	return ActionOption{
		Action:          model.ActionCancel,
		Label:           "Cancel",
		ResultingStatus: model.StatusCancelled,
		Variant:         model.VariantDestructive,
	}
}

func disputeOption() ActionOption {
	return ActionOption{
		Action:          model.ActionDispute,
		Label:           "Report a problem",
		ResultingStatus: model.StatusDisputed,
		Variant:         model.VariantSecondary,
	}
}
