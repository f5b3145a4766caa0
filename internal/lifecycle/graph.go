// Package lifecycle holds the pure core of the exchange session state
// machine: the transition graph, the dual-party confirmation rules, the
// action policy, and the progress projection. Nothing here performs I/O and
// every function is safe to call concurrently.
package lifecycle

import (
	"github.com/swaplane/exchange-server-go/internal/model"
)

// transitions is the single source of truth for legal status changes. Each
// key is a "from" status, the value the set of legal "to" statuses. Terminal
// statuses map to an empty set.
//
// Disputes are reachable from every active status except pending_approval (a
// dispute presumes an accepted exchange exists). Resolving a dispute can only
// re-enter confirmed or exit to a terminal status; it never returns to an
// earlier negotiation status, so prior confirmations stay meaningful.
var transitions = map[model.SessionStatus]map[model.SessionStatus]bool{
	model.StatusPendingApproval: {
		model.StatusAccepted:  true,
		model.StatusRejected:  true,
		model.StatusCancelled: true,
	},
	model.StatusAccepted: {
		model.StatusAwaitingConfirmation: true,
		model.StatusInProgress:           true,
		model.StatusCancelled:            true,
	},
	model.StatusAwaitingConfirmation: {
		model.StatusConfirmed: true,
		model.StatusDisputed:  true,
		model.StatusCancelled: true,
	},
	model.StatusConfirmed: {
		model.StatusInProgress: true,
		model.StatusInTransit:  true,
		model.StatusDisputed:   true,
		model.StatusCancelled:  true,
	},
	model.StatusInProgress: {
		model.StatusCompleted: true,
		model.StatusDisputed:  true,
		model.StatusCancelled: true,
	},
	model.StatusInTransit: {
		model.StatusDelivered: true,
		model.StatusDisputed:  true,
	},
	model.StatusDelivered: {
		model.StatusCompleted: true,
		model.StatusDisputed:  true,
	},
	model.StatusDisputed: {
		model.StatusConfirmed: true,
		model.StatusCompleted: true,
		model.StatusCancelled: true,
	},
	model.StatusCompleted: {},
	model.StatusCancelled: {},
	model.StatusRejected:  {},
}

// shippingOnly statuses are unreachable for fx sessions.
var shippingOnly = map[model.SessionStatus]bool{
	model.StatusInTransit: true,
	model.StatusDelivered: true,
}

// IsLegalTransition reports whether from -> to is allowed by the graph.
// Unknown statuses have no outgoing transitions.
func IsLegalTransition(from, to model.SessionStatus) bool {
	return transitions[from][to]
}

// IsTerminal reports whether a status has zero legal outgoing transitions.
func IsTerminal(status model.SessionStatus) bool {
	next, known := transitions[status]
	return known && len(next) == 0
}

// IsKnownStatus reports whether the status is part of the closed vocabulary.
func IsKnownStatus(status model.SessionStatus) bool {
	_, ok := transitions[status]
	return ok
}

// IsReachable reports whether a status is reachable for the given exchange
// type. The shipping flow adds in_transit and delivered; everything else is
// shared.
func IsReachable(status model.SessionStatus, exchangeType model.ExchangeType) bool {
	if !IsKnownStatus(status) {
		return false
	}
	if exchangeType == model.ExchangeTypeFX && shippingOnly[status] {
		return false
	}
	return true
}
