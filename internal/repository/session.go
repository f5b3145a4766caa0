package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/swaplane/exchange-server-go/internal/model"
)

type SessionRepository interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
	FindByParticipant(ctx context.Context, accountID string, limit, offset int) ([]model.Session, error)
	CountByParticipant(ctx context.Context, accountID string) (int, error)
	FindExpiredPending(ctx context.Context, now time.Time, limit int) ([]model.Session, error)
	Create(ctx context.Context, params model.CreateSessionParams) (*model.Session, error)
	// ApplyTransition writes the full state delta of one transition with a
	// compare-and-swap on the version the caller read. It returns nil when
	// another transition won the race, leaving the row untouched.
	ApplyTransition(ctx context.Context, params model.TransitionParams) (*model.Session, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) SessionRepository
}

type sessionRepo struct {
	db sqlxDB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) WithTx(tx *sqlx.Tx) SessionRepository {
	return &sessionRepo{db: tx}
}

func (r *sessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		SELECT * FROM exchange_sessions WHERE id = $1
	`, id)
	return HandleNotFound(&session, err)
}

func (r *sessionRepo) FindByParticipant(ctx context.Context, accountID string, limit, offset int) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT * FROM exchange_sessions
		WHERE initiator_id = $1 OR taker_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) CountByParticipant(ctx context.Context, accountID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM exchange_sessions
		WHERE initiator_id = $1 OR taker_id = $1
	`, accountID)
	return count, err
}

func (r *sessionRepo) FindExpiredPending(ctx context.Context, now time.Time, limit int) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT * FROM exchange_sessions
		WHERE status = 'pending_approval' AND approval_expires_at < $1
		ORDER BY approval_expires_at
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) Create(ctx context.Context, params model.CreateSessionParams) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		INSERT INTO exchange_sessions (
			id, type, status, initiator_id, taker_id, agreed_terms,
			conversation_id, approval_expires_at
		)
		VALUES ($1, $2, 'pending_approval', $3, $4, $5, $6, $7)
		RETURNING *
	`, uuid.NewString(), params.Type, params.InitiatorID, params.TakerID,
		params.AgreedTerms, params.ConversationID, params.ApprovalExpiresAt)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) ApplyTransition(ctx context.Context, params model.TransitionParams) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		UPDATE exchange_sessions SET
			status = $3,
			initiator_confirmed = $4,
			taker_confirmed = $5,
			initiator_confirmed_at = $6,
			taker_confirmed_at = $7,
			completed_at = $8,
			cancelled_at = $9,
			cancel_reason = $10,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING *
	`, params.ID, params.FromVersion, params.Status,
		params.Confirmation.InitiatorConfirmed, params.Confirmation.TakerConfirmed,
		params.Confirmation.InitiatorConfirmedAt, params.Confirmation.TakerConfirmedAt,
		params.CompletedAt, params.CancelledAt, params.CancelReason)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}
