package handler

import (
	"net/http"

	"github.com/swaplane/exchange-server-go/internal/httputil"
	"github.com/swaplane/exchange-server-go/internal/lifecycle"
	"github.com/swaplane/exchange-server-go/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

// sessionView is the session as one participant sees it: the raw aggregate
// plus that participant's role, action choices, and progress projection.
type sessionView struct {
	*model.Session
	Role             model.PartyRole          `json:"role"`
	AvailableActions []lifecycle.ActionOption `json:"availableActions"`
	Progress         lifecycle.ProgressView   `json:"progress"`
}

func formatSession(session *model.Session, accountID string) sessionView {
	role := session.RoleOf(accountID)
	actions := lifecycle.AvailableActions(session, role)
	if actions == nil {
		actions = []lifecycle.ActionOption{}
	}
	return sessionView{
		Session:          session,
		Role:             role,
		AvailableActions: actions,
		Progress:         lifecycle.Progress(session.Status, session.Type),
	}
}
