package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swaplane/exchange-server-go/internal/model"
)

func TestProgress(t *testing.T) {
	t.Run("completed is always 100", func(t *testing.T) {
		for _, exType := range []model.ExchangeType{model.ExchangeTypeFX, model.ExchangeTypeShipping} {
			view := Progress(model.StatusCompleted, exType)
			assert.Equal(t, 100, view.Percent)
			assert.Equal(t, "Completed", view.StepLabel)
		}
	})

	t.Run("every reachable status has a defined percentage", func(t *testing.T) {
		for _, status := range allStatuses {
			for _, exType := range []model.ExchangeType{model.ExchangeTypeFX, model.ExchangeTypeShipping} {
				if !IsReachable(status, exType) {
					continue
				}
				view := Progress(status, exType)
				assert.NotEmpty(t, view.StepLabel, "status %s type %s", status, exType)
				assert.GreaterOrEqual(t, view.Percent, 0)
				assert.LessOrEqual(t, view.Percent, 100)
			}
		}
	})

	t.Run("percent is monotonic along the happy path", func(t *testing.T) {
		fxPath := []model.SessionStatus{
			model.StatusPendingApproval, model.StatusAccepted, model.StatusAwaitingConfirmation,
			model.StatusConfirmed, model.StatusInProgress, model.StatusCompleted,
		}
		last := -1
		for _, status := range fxPath {
			view := Progress(status, model.ExchangeTypeFX)
			assert.Greater(t, view.Percent, last, "status %s", status)
			last = view.Percent
		}

		shippingPath := []model.SessionStatus{
			model.StatusPendingApproval, model.StatusAccepted, model.StatusAwaitingConfirmation,
			model.StatusConfirmed, model.StatusInProgress, model.StatusInTransit,
			model.StatusDelivered, model.StatusCompleted,
		}
		last = -1
		for _, status := range shippingPath {
			view := Progress(status, model.ExchangeTypeShipping)
			assert.Greater(t, view.Percent, last, "status %s", status)
			last = view.Percent
		}
	})

	t.Run("unknown status projects to zero instead of failing", func(t *testing.T) {
		view := Progress("archived", model.ExchangeTypeFX)
		assert.Equal(t, 0, view.Percent)
	})
}
