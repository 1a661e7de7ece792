package http

import (
	"log/slog"
	"net/http"

	"racha/internal/log"
	"racha/internal/session"
)

const insightsFallback = "Não foi possível gerar insights agora. Tente novamente mais tarde."

func (s *Server) handleParseReceipt(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if s.gateway == nil {
		writeError(w, http.StatusServiceUnavailable, "Análise com IA não está configurada.")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := decodeBody(r, &req); err != nil || sanitizeInput(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Cole o texto do recibo antes de processar.")
		return
	}

	// One outstanding AI call per session; mirrors the client's busy flag.
	if !sess.TryAcquireAI() {
		writeError(w, http.StatusConflict, "Já existe uma análise em andamento.")
		return
	}
	defer sess.ReleaseAI()

	result, err := s.gateway.AnalyzeReceipt(r.Context(), req.Text)
	if err != nil {
		slog.ErrorContext(r.Context(), "Receipt analysis failed",
			log.FieldSessionID, sess.ID,
			log.FieldError, err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if s.gateway == nil {
		writeError(w, http.StatusServiceUnavailable, "Análise com IA não está configurada.")
		return
	}

	snap := sess.Ledger.Snapshot()
	if len(snap.Expenses) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "Adicione despesas para gerar insights.")
		return
	}

	if !sess.TryAcquireAI() {
		writeError(w, http.StatusConflict, "Já existe uma análise em andamento.")
		return
	}
	defer sess.ReleaseAI()

	text, err := s.gateway.SpendingInsights(r.Context(), snap)
	if err != nil {
		// Insights degrade to a fallback string rather than an error.
		slog.WarnContext(r.Context(), "Insight generation failed",
			log.FieldSessionID, sess.ID,
			log.FieldRevision, snap.Revision,
			log.FieldError, err)
		writeJSON(w, http.StatusOK, map[string]string{"insights": insightsFallback})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"insights": text})
}
