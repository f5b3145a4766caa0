package lifecycle

import (
	"github.com/swaplane/exchange-server-go/internal/model"
)

// ProgressView is a linear completion projection for display. Percentages
// are display-only; correctness lives in the graph and the ledger.
type ProgressView struct {
	Percent   int    `json:"percent"`
	StepLabel string `json:"stepLabel"`
}

type progressStep struct {
	percent int
	label   string
}

// The fx and shipping flows have different step counts, so each keeps its
// own table.
var fxProgress = map[model.SessionStatus]progressStep{
	model.StatusPendingApproval:      {10, "Waiting for approval"},
	model.StatusAccepted:             {30, "Accepted"},
	model.StatusAwaitingConfirmation: {45, "Awaiting confirmation"},
	model.StatusConfirmed:            {60, "Confirmed"},
	model.StatusInProgress:           {80, "Exchange in progress"},
	model.StatusDisputed:             {60, "Under dispute"},
	model.StatusCompleted:            {100, "Completed"},
	model.StatusCancelled:            {0, "Cancelled"},
	model.StatusRejected:             {0, "Rejected"},
}

var shippingProgress = map[model.SessionStatus]progressStep{
	model.StatusPendingApproval:      {10, "Waiting for approval"},
	model.StatusAccepted:             {25, "Accepted"},
	model.StatusAwaitingConfirmation: {35, "Awaiting confirmation"},
	model.StatusConfirmed:            {50, "Confirmed"},
	model.StatusInProgress:           {60, "Preparing shipment"},
	model.StatusInTransit:            {70, "In transit"},
	model.StatusDelivered:            {90, "Delivered, awaiting confirmation"},
	model.StatusDisputed:             {50, "Under dispute"},
	model.StatusCompleted:            {100, "Completed"},
	model.StatusCancelled:            {0, "Cancelled"},
	model.StatusRejected:             {0, "Rejected"},
}

// Progress maps (status, type) to a completion percentage and step label.
// Total over all inputs: unknown or unreachable statuses project to zero
// rather than failing, since this is a display concern.
func Progress(status model.SessionStatus, exchangeType model.ExchangeType) ProgressView {
	table := fxProgress
	if exchangeType == model.ExchangeTypeShipping {
		table = shippingProgress
	}
	step, ok := table[status]
	if !ok {
		return ProgressView{Percent: 0, StepLabel: string(status)}
	}
	return ProgressView{Percent: step.percent, StepLabel: step.label}
}
