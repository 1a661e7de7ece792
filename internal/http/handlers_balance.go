package http

import (
	"net/http"

	"racha/internal/session"
	"racha/internal/settle"
	"racha/internal/share"
)

func (s *Server) handleBalance(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
	snap := sess.Ledger.Snapshot()
	writeJSON(w, http.StatusOK, settle.Compute(snap.Participants, snap.Expenses))
}

func (s *Server) handleShare(w http.ResponseWriter, _ *http.Request, sess *session.Session) {
	snap := sess.Ledger.Snapshot()
	message := share.Message(settle.Compute(snap.Participants, snap.Expenses))
	writeJSON(w, http.StatusOK, map[string]string{
		"message": message,
		"url":     share.DeepLink(message),
	})
}
