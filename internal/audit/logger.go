package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventSessionCreate      EventType = "session_create"
	EventTransitionApplied  EventType = "transition_applied"
	EventTransitionRejected EventType = "transition_rejected"
	EventSessionCompleted   EventType = "session_completed"
	EventSessionDisputed    EventType = "session_disputed"
	EventSessionExpired     EventType = "session_expired"
	EventAuthFailure        EventType = "auth_failure"
	EventRateLimitExceeded  EventType = "rate_limit_exceeded"
)

type Event struct {
	Type       EventType
	SessionID  string
	ActorID    string
	Action     string
	FromStatus string
	ToStatus   string
	Details    map[string]interface{}
}

func Log(ctx context.Context, event Event) {
	logger := log.With().
		Str("audit", "session").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.SessionID != "" {
		logger = logger.With().Str("session_id", event.SessionID).Logger()
	}
	if event.ActorID != "" {
		logger = logger.With().Str("actor_id", event.ActorID).Logger()
	}
	if event.Action != "" {
		logger = logger.With().Str("action", event.Action).Logger()
	}
	if event.FromStatus != "" {
		logger = logger.With().Str("from_status", event.FromStatus).Logger()
	}
	if event.ToStatus != "" {
		logger = logger.With().Str("to_status", event.ToStatus).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = addField(logEvent, k, v)
	}
	logEvent.Msg("session audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}
