package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/swaplane/exchange-server-go/internal/errors"
	"github.com/swaplane/exchange-server-go/internal/middleware"
	"github.com/swaplane/exchange-server-go/internal/model"
	"github.com/swaplane/exchange-server-go/internal/service"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateSession)
	r.Get("/", h.ListSessions)
	r.Get("/{sessionID}", h.GetSession)
	r.Post("/{sessionID}/actions", h.ApplyAction)
	r.Get("/{sessionID}/actions", h.GetActions)
	r.Get("/{sessionID}/progress", h.GetProgress)
	r.Get("/{sessionID}/events", h.GetEvents)

	return r
}

type createSessionRequest struct {
	Type           model.ExchangeType `json:"type"`
	InitiatorID    string             `json:"initiatorId"`
	AgreedTerms    json.RawMessage    `json:"agreedTerms"`
	ConversationID *string            `json:"conversationId,omitempty"`
}

// POST /v1/sessions
// The authenticated caller is the taker; the initiator owns the offer the
// session is opened against.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "malformed JSON"))
		return
	}

	session, err := h.sessionService.CreateSession(r.Context(), service.CreateSessionInput{
		Type:           req.Type,
		InitiatorID:    req.InitiatorID,
		TakerID:        account.ID,
		AgreedTerms:    req.AgreedTerms,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		log.Warn().Err(err).Str("accountId", account.ID).Msg("failed to create session")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, formatSession(session, account.ID))
}

// GET /v1/sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())
	page := ParsePagination(r)

	sessions, total, err := h.sessionService.List(r.Context(), account.ID, page.Limit, page.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]sessionView, 0, len(sessions))
	for i := range sessions {
		views = append(views, formatSession(&sessions[i], account.ID))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": views,
		"total":    total,
		"limit":    page.Limit,
		"offset":   page.Offset,
	})
}

// GET /v1/sessions/{sessionID}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	session, err := h.sessionService.Get(r.Context(), chi.URLParam(r, "sessionID"), account.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, formatSession(session, account.ID))
}

type actionRequest struct {
	Action model.Action            `json:"action"`
	Side   *model.ConfirmationSide `json:"confirmationSide,omitempty"`
	Reason *string                 `json:"reason,omitempty"`
}

// POST /v1/sessions/{sessionID}/actions
func (h *SessionHandler) ApplyAction(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "malformed JSON"))
		return
	}
	if req.Action == "" {
		writeError(w, apperrors.MissingRequired("action"))
		return
	}

	session, err := h.sessionService.RequestTransition(r.Context(), service.TransitionRequest{
		SessionID: chi.URLParam(r, "sessionID"),
		ActorID:   account.ID,
		Action:    req.Action,
		Side:      req.Side,
		Reason:    req.Reason,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, formatSession(session, account.ID))
}

// GET /v1/sessions/{sessionID}/actions
func (h *SessionHandler) GetActions(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	session, err := h.sessionService.Get(r.Context(), chi.URLParam(r, "sessionID"), account.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	view := formatSession(session, account.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": session.ID,
		"status":    session.Status,
		"actions":   view.AvailableActions,
	})
}

// GET /v1/sessions/{sessionID}/progress
func (h *SessionHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	session, err := h.sessionService.Get(r.Context(), chi.URLParam(r, "sessionID"), account.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": session.ID,
		"status":    session.Status,
		"progress":  h.sessionService.Progress(session),
	})
}

// GET /v1/sessions/{sessionID}/events
func (h *SessionHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())
	page := ParsePagination(r)

	events, total, err := h.sessionService.Events(r.Context(), chi.URLParam(r, "sessionID"), account.ID, page.Limit, page.Offset)
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []model.SessionEvent{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"total":  total,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}
