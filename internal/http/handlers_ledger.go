package http

import (
	"log/slog"
	"net/http"

	"racha/internal/ledger"
	"racha/internal/log"
	"racha/internal/session"
)

type stateResponse struct {
	Participants any     `json:"participants"`
	Expenses     any     `json:"expenses"`
	Total        float64 `json:"total"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	snap := sess.Ledger.Snapshot()
	var total float64
	for _, e := range snap.Expenses {
		total += e.Amount
	}
	writeJSON(w, http.StatusOK, stateResponse{
		Participants: snap.Participants,
		Expenses:     snap.Expenses,
		Total:        total,
	})
}

func (s *Server) handleAddParticipant(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida.")
		return
	}

	p, err := sess.Ledger.AddParticipant(sanitizeInput(req.Name))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Participant added",
		log.FieldSessionID, sess.ID,
		log.FieldParticipant, p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleRemoveParticipant(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	id := r.PathValue("id")
	if err := sess.Ledger.RemoveParticipant(id); err != nil {
		writeDomainError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Participant removed",
		log.FieldSessionID, sess.ID,
		log.FieldParticipant, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req struct {
		Name       string   `json:"name"`
		Amount     float64  `json:"amount"`
		Category   string   `json:"category"`
		PaidBy     string   `json:"paidBy"`
		SplitAmong []string `json:"splitAmong"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida.")
		return
	}

	e, err := sess.Ledger.AddExpense(sanitizeInput(req.Name), req.Amount, sanitizeInput(req.Category), req.PaidBy, req.SplitAmong)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Expense added",
		log.FieldSessionID, sess.ID,
		log.FieldExpense, e.ID,
		log.FieldAmount, e.Amount,
		log.FieldCategory, e.Category)
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleRemoveExpense(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	id := r.PathValue("id")
	if err := sess.Ledger.RemoveExpense(id); err != nil {
		writeDomainError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Expense removed",
		log.FieldSessionID, sess.ID,
		log.FieldExpense, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleServiceCharge(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req struct {
		Percent float64 `json:"percent"`
		Amount  float64 `json:"amount"`
		PaidBy  string  `json:"paidBy"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Requisição inválida.")
		return
	}

	e, err := sess.Ledger.AddServiceCharge(ledger.ServiceCharge{
		PayerID: req.PaidBy,
		Percent: req.Percent,
		Amount:  req.Amount,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Service charge added",
		log.FieldSessionID, sess.ID,
		log.FieldExpense, e.ID,
		log.FieldAmount, e.Amount)
	writeJSON(w, http.StatusCreated, e)
}
