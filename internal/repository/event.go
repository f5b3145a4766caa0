package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/swaplane/exchange-server-go/internal/model"
)

// SessionEventRepository is the append-only audit trail of transitions.
// Rows are never updated or deleted.
type SessionEventRepository interface {
	Append(ctx context.Context, params model.AppendEventParams) (*model.SessionEvent, error)
	FindBySessionID(ctx context.Context, sessionID string, limit, offset int) ([]model.SessionEvent, error)
	CountBySessionID(ctx context.Context, sessionID string) (int, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) SessionEventRepository
}

type sessionEventRepo struct {
	db sqlxDB
}

func NewSessionEventRepository(db *sqlx.DB) SessionEventRepository {
	return &sessionEventRepo{db: db}
}

func (r *sessionEventRepo) WithTx(tx *sqlx.Tx) SessionEventRepository {
	return &sessionEventRepo{db: tx}
}

func (r *sessionEventRepo) Append(ctx context.Context, params model.AppendEventParams) (*model.SessionEvent, error) {
	var event model.SessionEvent
	err := r.db.GetContext(ctx, &event, `
		INSERT INTO session_events (id, session_id, actor_id, action, from_status, to_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, uuid.NewString(), params.SessionID, params.ActorID, params.Action,
		params.FromStatus, params.ToStatus)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *sessionEventRepo) FindBySessionID(ctx context.Context, sessionID string, limit, offset int) ([]model.SessionEvent, error) {
	var events []model.SessionEvent
	err := r.db.SelectContext(ctx, &events, `
		SELECT * FROM session_events
		WHERE session_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`, sessionID, limit, offset)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *sessionEventRepo) CountBySessionID(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM session_events WHERE session_id = $1
	`, sessionID)
	return count, err
}
