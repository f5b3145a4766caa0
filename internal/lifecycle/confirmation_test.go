package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/swaplane/exchange-server-go/internal/errors"
	"github.com/swaplane/exchange-server-go/internal/model"
)

func newSession(status model.SessionStatus) *model.Session {
	return &model.Session{
		ID:          "sess-1",
		Type:        model.ExchangeTypeFX,
		Status:      status,
		InitiatorID: "acct-init",
		TakerID:     "acct-taker",
	}
}

func TestSideFor(t *testing.T) {
	side, ok := SideFor(model.RoleInitiator)
	require.True(t, ok)
	assert.Equal(t, model.SideSent, side)

	side, ok = SideFor(model.RoleTaker)
	require.True(t, ok)
	assert.Equal(t, model.SideReceived, side)

	_, ok = SideFor(model.RoleNone)
	assert.False(t, ok)
}

func TestRecordConfirmation(t *testing.T) {
	now := time.Now()

	t.Run("initiator confirms sent", func(t *testing.T) {
		session := newSession(model.StatusInProgress)

		outcome, err := RecordConfirmation(session, model.RoleInitiator, model.SideSent, now)
		require.NoError(t, err)
		assert.True(t, outcome.Record.InitiatorConfirmed)
		assert.False(t, outcome.Record.TakerConfirmed)
		require.NotNil(t, outcome.Record.InitiatorConfirmedAt)
		assert.Equal(t, now, *outcome.Record.InitiatorConfirmedAt)
		assert.False(t, outcome.Advance)
	})

	t.Run("rejects the wrong side", func(t *testing.T) {
		session := newSession(model.StatusInProgress)

		_, err := RecordConfirmation(session, model.RoleInitiator, model.SideReceived, now)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidConfirmationSide))

		_, err = RecordConfirmation(session, model.RoleTaker, model.SideSent, now)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidConfirmationSide))
	})

	t.Run("rejects duplicate confirmation", func(t *testing.T) {
		session := newSession(model.StatusInProgress)
		session.InitiatorConfirmed = true
		confirmedAt := now.Add(-time.Minute)
		session.InitiatorConfirmedAt = &confirmedAt

		_, err := RecordConfirmation(session, model.RoleInitiator, model.SideSent, now)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeAlreadyConfirmed))

		// The snapshot's original timestamp is untouched.
		assert.Equal(t, confirmedAt, *session.InitiatorConfirmedAt)
	})

	t.Run("rejects non-confirmable statuses", func(t *testing.T) {
		for _, status := range []model.SessionStatus{
			model.StatusPendingApproval,
			model.StatusDisputed,
			model.StatusCompleted,
			model.StatusCancelled,
			model.StatusRejected,
		} {
			_, err := RecordConfirmation(newSession(status), model.RoleInitiator, model.SideSent, now)
			assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionNotConfirmable), "status %s", status)
		}
	})

	t.Run("rejects non-participants", func(t *testing.T) {
		_, err := RecordConfirmation(newSession(model.StatusInProgress), model.RoleNone, model.SideSent, now)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnauthorized))
	})

	t.Run("second confirmation signals advance to completed", func(t *testing.T) {
		session := newSession(model.StatusInProgress)
		session.TakerConfirmed = true

		outcome, err := RecordConfirmation(session, model.RoleInitiator, model.SideSent, now)
		require.NoError(t, err)
		assert.True(t, outcome.Advance)
		assert.Equal(t, model.StatusCompleted, outcome.FinalStatus())
		assert.Equal(t, []model.SessionStatus{model.StatusCompleted}, outcome.Path)
	})

	t.Run("advance from accepted routes through in_progress", func(t *testing.T) {
		session := newSession(model.StatusAccepted)
		session.InitiatorConfirmed = true

		outcome, err := RecordConfirmation(session, model.RoleTaker, model.SideReceived, now)
		require.NoError(t, err)
		assert.True(t, outcome.Advance)
		assert.Equal(t, []model.SessionStatus{model.StatusInProgress, model.StatusCompleted}, outcome.Path)
	})

	t.Run("advance from in_transit routes through delivered", func(t *testing.T) {
		session := newSession(model.StatusInTransit)
		session.Type = model.ExchangeTypeShipping
		session.InitiatorConfirmed = true

		outcome, err := RecordConfirmation(session, model.RoleTaker, model.SideReceived, now)
		require.NoError(t, err)
		assert.True(t, outcome.Advance)
		assert.Equal(t, []model.SessionStatus{model.StatusDelivered, model.StatusCompleted}, outcome.Path)
	})

	t.Run("single confirmation never advances", func(t *testing.T) {
		for status := range confirmableStatuses {
			outcome, err := RecordConfirmation(newSession(status), model.RoleTaker, model.SideReceived, now)
			require.NoError(t, err, "status %s", status)
			assert.False(t, outcome.Advance, "status %s", status)
			assert.Empty(t, outcome.Path, "status %s", status)
		}
	})
}
