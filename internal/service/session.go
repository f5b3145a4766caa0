package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/swaplane/exchange-server-go/internal/audit"
	"github.com/swaplane/exchange-server-go/internal/database"
	apperrors "github.com/swaplane/exchange-server-go/internal/errors"
	"github.com/swaplane/exchange-server-go/internal/lifecycle"
	"github.com/swaplane/exchange-server-go/internal/model"
	"github.com/swaplane/exchange-server-go/internal/repository"
	"github.com/swaplane/exchange-server-go/internal/sse"
)

// SystemActorID marks transitions applied by the server itself, such as
// approval-deadline expiry.
const SystemActorID = "system"

// Transactor runs a function inside a database transaction. *database.DB
// satisfies it; tests substitute a pass-through.
type Transactor interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

var _ Transactor = (*database.DB)(nil)

type CreateSessionInput struct {
	Type           model.ExchangeType
	InitiatorID    string
	TakerID        string
	AgreedTerms    json.RawMessage
	ConversationID *string
}

// TransitionRequest is one party's intent against a session. Side is
// optional; when absent it is resolved from the caller's role. Reason is
// only meaningful for cancel and reject.
type TransitionRequest struct {
	SessionID string
	ActorID   string
	Action    model.Action
	Side      *model.ConfirmationSide
	Reason    *string
}

type SessionService struct {
	tx          Transactor
	sessionRepo repository.SessionRepository
	eventRepo   repository.SessionEventRepository
	accountRepo repository.AccountRepository
	broker      *sse.Broker
	approvalTTL time.Duration
	now         func() time.Time
}

func NewSessionService(
	tx Transactor,
	sessionRepo repository.SessionRepository,
	eventRepo repository.SessionEventRepository,
	accountRepo repository.AccountRepository,
	broker *sse.Broker,
	approvalTTL time.Duration,
) *SessionService {
	return &SessionService{
		tx:          tx,
		sessionRepo: sessionRepo,
		eventRepo:   eventRepo,
		accountRepo: accountRepo,
		broker:      broker,
		approvalTTL: approvalTTL,
		now:         time.Now,
	}
}

// CreateSession opens a new exchange session in pending_approval from the
// taker's intent against an offer. Terms are validated here, once, at the
// boundary.
func (s *SessionService) CreateSession(ctx context.Context, input CreateSessionInput) (*model.Session, error) {
	if input.InitiatorID == "" {
		return nil, apperrors.MissingRequired("initiatorId")
	}
	if input.TakerID == "" {
		return nil, apperrors.MissingRequired("takerId")
	}
	if input.InitiatorID == input.TakerID {
		return nil, apperrors.InvalidInput("takerId", "initiator and taker must be different parties")
	}

	if err := ValidateTerms(input.Type, input.AgreedTerms); err != nil {
		return nil, err
	}

	initiator, err := s.accountRepo.FindByID(ctx, input.InitiatorID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if initiator == nil {
		return nil, apperrors.NotFound("Initiator account")
	}

	session, err := s.sessionRepo.Create(ctx, model.CreateSessionParams{
		Type:              input.Type,
		InitiatorID:       input.InitiatorID,
		TakerID:           input.TakerID,
		AgreedTerms:       input.AgreedTerms,
		ConversationID:    input.ConversationID,
		ApprovalExpiresAt: s.now().Add(s.approvalTTL),
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	audit.Log(ctx, audit.Event{
		Type:      audit.EventSessionCreate,
		SessionID: session.ID,
		ActorID:   input.TakerID,
		ToStatus:  string(session.Status),
		Details:   map[string]interface{}{"type": string(session.Type)},
	})
	s.publish(ctx, session, model.Action(""), input.TakerID)

	return session, nil
}

// Get returns the session if the caller is a participant.
func (s *SessionService) Get(ctx context.Context, sessionID, accountID string) (*model.Session, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session")
	}
	if session.RoleOf(accountID) == model.RoleNone {
		return nil, apperrors.Unauthorized("not a participant of this session")
	}
	return session, nil
}

func (s *SessionService) List(ctx context.Context, accountID string, limit, offset int) ([]model.Session, int, error) {
	sessions, err := s.sessionRepo.FindByParticipant(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	total, err := s.sessionRepo.CountByParticipant(ctx, accountID)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	return sessions, total, nil
}

// AvailableActions is the single decision point consumers call instead of
// re-deriving status logic. Read-only and pure past the session load.
func (s *SessionService) AvailableActions(session *model.Session, accountID string) []lifecycle.ActionOption {
	return lifecycle.AvailableActions(session, session.RoleOf(accountID))
}

func (s *SessionService) Progress(session *model.Session) lifecycle.ProgressView {
	return lifecycle.Progress(session.Status, session.Type)
}

func (s *SessionService) Events(ctx context.Context, sessionID, accountID string, limit, offset int) ([]model.SessionEvent, int, error) {
	if _, err := s.Get(ctx, sessionID, accountID); err != nil {
		return nil, 0, err
	}
	events, err := s.eventRepo.FindBySessionID(ctx, sessionID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	total, err := s.eventRepo.CountBySessionID(ctx, sessionID)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	return events, total, nil
}

// RequestTransition is the sole mutation entry point for sessions. It
// resolves the intent through the action policy, validates the target
// against the transition graph, and applies the full state delta with a
// version compare-and-swap inside one transaction. A concurrent transition
// between this read and write surfaces as StaleSessionState: nothing is
// overwritten, the caller re-reads and retries.
func (s *SessionService) RequestTransition(ctx context.Context, req TransitionRequest) (*model.Session, error) {
	session, err := s.sessionRepo.FindByID(ctx, req.SessionID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session")
	}

	role := session.RoleOf(req.ActorID)
	if role == model.RoleNone && req.ActorID != SystemActorID {
		audit.Log(ctx, audit.Event{
			Type:      audit.EventTransitionRejected,
			SessionID: session.ID,
			ActorID:   req.ActorID,
			Action:    string(req.Action),
		})
		return nil, apperrors.Unauthorized("not a participant of this session")
	}

	if err := s.checkInvariants(session); err != nil {
		return nil, err
	}

	params, err := s.resolveTransition(session, role, req)
	if err != nil {
		audit.Log(ctx, audit.Event{
			Type:       audit.EventTransitionRejected,
			SessionID:  session.ID,
			ActorID:    req.ActorID,
			Action:     string(req.Action),
			FromStatus: string(session.Status),
		})
		return nil, err
	}

	var updated *model.Session
	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		sessions := s.sessionRepo.WithTx(tx)
		events := s.eventRepo.WithTx(tx)

		updated, err = sessions.ApplyTransition(ctx, params)
		if err != nil {
			return apperrors.Database(err)
		}
		if updated == nil {
			return apperrors.StaleSessionState(session.ID)
		}

		if _, err := events.Append(ctx, model.AppendEventParams{
			SessionID:  session.ID,
			ActorID:    req.ActorID,
			Action:     req.Action,
			FromStatus: session.Status,
			ToStatus:   updated.Status,
		}); err != nil {
			return apperrors.Database(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditApplied(ctx, req, session.Status, updated)
	s.publish(ctx, updated, req.Action, req.ActorID)

	return updated, nil
}

// resolveTransition computes the full state delta for the request without
// touching storage. Confirm goes through the ledger; everything else goes
// through the action policy.
func (s *SessionService) resolveTransition(session *model.Session, role model.PartyRole, req TransitionRequest) (model.TransitionParams, error) {
	now := s.now()
	params := model.TransitionParams{
		ID:           session.ID,
		FromVersion:  session.Version,
		Status:       session.Status,
		Confirmation: session.ConfirmationRecord,
		CompletedAt:  session.CompletedAt,
		CancelledAt:  session.CancelledAt,
		CancelReason: session.CancelReason,
	}

	// Confirm on a disputed session is the resolution action and routes
	// through the policy below; everywhere else confirm is a ledger write,
	// and the ledger owns all confirmation rejections.
	if req.Action == model.ActionConfirm && session.Status != model.StatusDisputed {
		side := req.Side
		if side == nil {
			resolved, ok := lifecycle.SideFor(role)
			if !ok {
				return params, apperrors.Unauthorized("not a participant of this session")
			}
			side = &resolved
		}

		outcome, err := lifecycle.RecordConfirmation(session, role, *side, now)
		if err != nil {
			return params, err
		}

		params.Confirmation = outcome.Record
		if outcome.Advance {
			from := session.Status
			for _, next := range outcome.Path {
				if !lifecycle.IsLegalTransition(from, next) {
					return params, s.invariant(session, "dual-confirmation advance path is not graph legal")
				}
				from = next
			}
			params.Status = outcome.FinalStatus()
			if params.Status == model.StatusCompleted {
				params.CompletedAt = &now
			}
		}
		return params, nil
	}

	// The expiry job acts outside the two-party policy: it may only cancel,
	// and only where the graph has the cancel edge.
	if role == model.RoleNone {
		if req.Action != model.ActionCancel || !lifecycle.IsLegalTransition(session.Status, model.StatusCancelled) {
			return params, apperrors.IllegalTransition(string(session.Status), string(model.StatusCancelled))
		}
		params.Status = model.StatusCancelled
		params.CancelledAt = &now
		reason := "cancelled"
		if req.Reason != nil && *req.Reason != "" {
			reason = *req.Reason
		}
		params.CancelReason = &reason
		return params, nil
	}

	target, offered := lifecycle.ResolveAction(session, role, req.Action)
	if !offered {
		return params, apperrors.IllegalTransition(string(session.Status), string(req.Action)).
			WithDetails(map[string]string{"action": string(req.Action)})
	}
	if !lifecycle.IsLegalTransition(session.Status, target) {
		return params, s.invariant(session, "policy offered a transition the graph rejects")
	}
	if !lifecycle.IsReachable(target, session.Type) {
		return params, s.invariant(session, "policy offered a status unreachable for the exchange type")
	}

	params.Status = target
	switch target {
	case model.StatusCancelled, model.StatusRejected:
		params.CancelledAt = &now
		reason := "cancelled by " + string(role)
		if target == model.StatusRejected {
			reason = "rejected by " + string(role)
		}
		if req.Reason != nil && *req.Reason != "" {
			reason = *req.Reason
		}
		params.CancelReason = &reason
	case model.StatusConfirmed:
		if session.Status == model.StatusDisputed {
			// Dispute resolution renegotiates the exchange: both attestations
			// are explicitly reset, the one place the lifecycle allows it.
			params.Confirmation = model.ConfirmationRecord{}
		}
	}
	return params, nil
}

// checkInvariants is a defensive guard against logic defects. Failures are
// fatal to the operation and logged, never silently repaired.
func (s *SessionService) checkInvariants(session *model.Session) error {
	if session.BothConfirmed() && session.Status != model.StatusCompleted {
		return s.invariant(session, "both parties confirmed but session is not completed")
	}
	if (session.CompletedAt != nil) != (session.Status == model.StatusCompleted) {
		return s.invariant(session, "completedAt is inconsistent with status")
	}
	cancelledish := session.Status == model.StatusCancelled || session.Status == model.StatusRejected
	if (session.CancelledAt != nil) != cancelledish {
		return s.invariant(session, "cancelledAt is inconsistent with status")
	}
	if !lifecycle.IsReachable(session.Status, session.Type) {
		return s.invariant(session, "status is unreachable for the exchange type")
	}
	return nil
}

func (s *SessionService) invariant(session *model.Session, msg string) error {
	log.Error().
		Str("sessionId", session.ID).
		Str("status", string(session.Status)).
		Msg("session invariant violation: " + msg)
	return apperrors.InvariantViolation(msg)
}

func (s *SessionService) auditApplied(ctx context.Context, req TransitionRequest, from model.SessionStatus, updated *model.Session) {
	eventType := audit.EventTransitionApplied
	switch updated.Status {
	case model.StatusCompleted:
		eventType = audit.EventSessionCompleted
	case model.StatusDisputed:
		eventType = audit.EventSessionDisputed
	}
	audit.Log(ctx, audit.Event{
		Type:       eventType,
		SessionID:  updated.ID,
		ActorID:    req.ActorID,
		Action:     string(req.Action),
		FromStatus: string(from),
		ToStatus:   string(updated.Status),
	})
}

// publish fans the updated snapshot out to both participants. Failure to
// publish never fails the transition; the client re-syncs on next read.
func (s *SessionService) publish(ctx context.Context, session *model.Session, action model.Action, actorID string) {
	if s.broker == nil {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"sessionId": session.ID,
		"status":    session.Status,
		"action":    action,
		"actorId":   actorID,
		"version":   session.Version,
	})
	if err != nil {
		return
	}

	for _, accountID := range []string{session.InitiatorID, session.TakerID} {
		if err := s.broker.Publish(ctx, accountID, sse.Event{Type: "session_updated", Data: payload}); err != nil {
			log.Warn().Err(err).Str("sessionId", session.ID).Msg("failed to publish session event")
		}
	}
}

// ExpirePending cancels pending_approval sessions whose approval deadline
// has passed, using the ordinary transition path so the audit trail and
// concurrency rules apply. Returns how many sessions were expired.
func (s *SessionService) ExpirePending(ctx context.Context, batchSize int) (int, error) {
	expired, err := s.sessionRepo.FindExpiredPending(ctx, s.now(), batchSize)
	if err != nil {
		return 0, apperrors.Database(err)
	}

	count := 0
	for i := range expired {
		session := &expired[i]
		reason := "approval deadline passed"
		_, err := s.RequestTransition(ctx, TransitionRequest{
			SessionID: session.ID,
			ActorID:   SystemActorID,
			Action:    model.ActionCancel,
			Reason:    &reason,
		})
		if err != nil {
			// A party may have acted between the sweep read and the cancel;
			// skip and let the next sweep retry if it still qualifies.
			if apperrors.HasCode(err, apperrors.ErrCodeStaleSessionState) ||
				apperrors.HasCode(err, apperrors.ErrCodeIllegalTransition) {
				continue
			}
			return count, err
		}
		audit.Log(ctx, audit.Event{
			Type:      audit.EventSessionExpired,
			SessionID: session.ID,
			ActorID:   SystemActorID,
		})
		count++
	}
	return count, nil
}
