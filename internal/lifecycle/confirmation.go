package lifecycle

import (
	"time"

	apperrors "github.com/swaplane/exchange-server-go/internal/errors"
	"github.com/swaplane/exchange-server-go/internal/model"
)

// confirmableStatuses is the set of statuses in which a party may record a
// confirmation.
var confirmableStatuses = map[model.SessionStatus]bool{
	model.StatusAccepted:             true,
	model.StatusAwaitingConfirmation: true,
	model.StatusConfirmed:            true,
	model.StatusInProgress:           true,
	model.StatusInTransit:            true,
	model.StatusDelivered:            true,
}

// advancePaths maps a confirmable status to the chain of graph-legal hops
// that carries a dual-confirmed session to completed. Every hop is an edge of
// the transition graph; the whole chain is applied in one transaction so a
// dual-confirmed session is never observable short of completed.
var advancePaths = map[model.SessionStatus][]model.SessionStatus{
	model.StatusAccepted:             {model.StatusInProgress, model.StatusCompleted},
	model.StatusAwaitingConfirmation: {model.StatusConfirmed, model.StatusInProgress, model.StatusCompleted},
	model.StatusConfirmed:            {model.StatusInProgress, model.StatusCompleted},
	model.StatusInProgress:           {model.StatusCompleted},
	model.StatusInTransit:            {model.StatusDelivered, model.StatusCompleted},
	model.StatusDelivered:            {model.StatusCompleted},
}

// SideFor returns the confirmation side a role is permitted to record. The
// mapping is fixed: the initiator attests sent, the taker attests received.
func SideFor(role model.PartyRole) (model.ConfirmationSide, bool) {
	switch role {
	case model.RoleInitiator:
		return model.SideSent, true
	case model.RoleTaker:
		return model.SideReceived, true
	}
	return "", false
}

// ConfirmationOutcome describes the state delta of one accepted confirmation.
// When Advance is true both flags became true in this operation and the
// session must move through Path (ending in completed) atomically with the
// confirmation write.
type ConfirmationOutcome struct {
	Record  model.ConfirmationRecord
	Advance bool
	Path    []model.SessionStatus
}

// FinalStatus is the last hop of the advance path, or the zero value when no
// advance is due.
func (o ConfirmationOutcome) FinalStatus() model.SessionStatus {
	if len(o.Path) == 0 {
		return ""
	}
	return o.Path[len(o.Path)-1]
}

// RecordConfirmation validates and applies one party's confirmation against
// the session snapshot, returning the resulting ledger state. It is pure:
// the caller owns persisting the outcome atomically.
func RecordConfirmation(session *model.Session, role model.PartyRole, side model.ConfirmationSide, now time.Time) (ConfirmationOutcome, error) {
	if !confirmableStatuses[session.Status] {
		return ConfirmationOutcome{}, apperrors.SessionNotConfirmable(string(session.Status))
	}

	expected, ok := SideFor(role)
	if !ok {
		return ConfirmationOutcome{}, apperrors.Unauthorized("not a participant of this session")
	}
	if side != expected {
		return ConfirmationOutcome{}, apperrors.InvalidConfirmationSide(string(role), string(side))
	}

	record := session.ConfirmationRecord
	switch role {
	case model.RoleInitiator:
		if record.InitiatorConfirmed {
			return ConfirmationOutcome{}, apperrors.AlreadyConfirmed(string(role))
		}
		record.InitiatorConfirmed = true
		record.InitiatorConfirmedAt = &now
	case model.RoleTaker:
		if record.TakerConfirmed {
			return ConfirmationOutcome{}, apperrors.AlreadyConfirmed(string(role))
		}
		record.TakerConfirmed = true
		record.TakerConfirmedAt = &now
	}

	outcome := ConfirmationOutcome{Record: record}
	if record.BothConfirmed() {
		outcome.Advance = true
		outcome.Path = advancePaths[session.Status]
	}
	return outcome, nil
}
