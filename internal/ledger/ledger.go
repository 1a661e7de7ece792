// Package ledger holds the authoritative in-memory collections of
// participants and expenses for one session and enforces referential
// invariants on every mutation. State lives only for the session; nothing is
// persisted.
package ledger

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"racha/internal/core"
)

// Ledger is safe for concurrent use. There is one logical writer per
// session, but HTTP requests for the same session can overlap, so mutations
// and snapshots are serialized with a mutex.
type Ledger struct {
	mu           sync.Mutex
	participants []core.Participant
	expenses     []core.Expense
	revision     uint64
}

// Snapshot is an immutable copy of the ledger state. Revision increases on
// every mutation and serves as a cheap cache key for derived data.
type Snapshot struct {
	Participants []core.Participant `json:"participants"`
	Expenses     []core.Expense     `json:"expenses"`
	Revision     uint64             `json:"revision"`
}

// ServiceCharge describes a tip to inject on top of the current total:
// either Percent of the total or an explicit Amount. Amount wins when both
// are set. PayerID defaults to the first registered participant.
type ServiceCharge struct {
	PayerID string
	Percent float64
	Amount  float64
}

func New() *Ledger {
	return &Ledger{}
}

// AddParticipant registers a person, rejecting blank names. Insertion order
// is preserved and user-visible.
func (l *Ledger) AddParticipant(name string) (core.Participant, error) {
	p := core.Participant{ID: uuid.NewString(), Name: strings.TrimSpace(name)}
	if err := p.Validate(); err != nil {
		return core.Participant{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.participants = append(l.participants, p)
	l.revision++
	return p, nil
}

// RemoveParticipant removes a person, failing with core.ErrParticipantInUse
// while any expense still references them as payer or consumer. The ledger
// is left unchanged on failure.
func (l *Ledger) RemoveParticipant(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i, p := range l.participants {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return core.ErrNotFound
	}

	for _, e := range l.expenses {
		if e.PaidBy == id {
			return core.ErrParticipantInUse
		}
		for _, sid := range e.SplitAmong {
			if sid == id {
				return core.ErrParticipantInUse
			}
		}
	}

	l.participants = append(l.participants[:idx], l.participants[idx+1:]...)
	l.revision++
	return nil
}

// AddExpense records a payment. Every referenced participant must exist at
// creation time; the empty category defaults to core.CategoryGeneral.
func (l *Ledger) AddExpense(name string, amount float64, category, paidBy string, splitAmong []string) (core.Expense, error) {
	if strings.TrimSpace(category) == "" {
		category = core.CategoryGeneral
	}
	e := core.Expense{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(name),
		Amount:     amount,
		Category:   category,
		PaidBy:     paidBy,
		SplitAmong: dedupe(splitAmong),
		Date:       time.Now(),
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.knownLocked(paidBy) {
		return core.Expense{}, fmt.Errorf("payer %q: %w", paidBy, core.ErrUnknownParticipant)
	}
	for _, id := range e.SplitAmong {
		if !l.knownLocked(id) {
			return core.Expense{}, fmt.Errorf("split member %q: %w", id, core.ErrUnknownParticipant)
		}
	}

	l.expenses = append(l.expenses, e)
	l.revision++
	return e, nil
}

// RemoveExpense deletes an expense unconditionally; participants are
// unaffected.
func (l *Ledger) RemoveExpense(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.expenses {
		if e.ID == id {
			l.expenses = append(l.expenses[:i], l.expenses[i+1:]...)
			l.revision++
			return nil
		}
	}
	return core.ErrNotFound
}

// AddServiceCharge synthesizes one extra expense on top of the current
// total, split equally among all current participants and tagged with
// core.CategoryServiceCharge. It flows through the settlement engine like
// any other expense.
func (l *Ledger) AddServiceCharge(sc ServiceCharge) (core.Expense, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := l.totalLocked()
	if total <= 0 {
		return core.Expense{}, core.ErrNothingToCharge
	}

	amount := sc.Amount
	name := "Taxa de Serviço (Manual)"
	if amount <= 0 && sc.Percent > 0 {
		amount = total * sc.Percent / 100
		name = fmt.Sprintf("Taxa de Serviço (%g%%)", sc.Percent)
	}
	if amount <= 0 {
		return core.Expense{}, core.ErrInvalidAmount
	}

	payer := sc.PayerID
	if payer == "" && len(l.participants) > 0 {
		payer = l.participants[0].ID
	}
	if !l.knownLocked(payer) {
		return core.Expense{}, fmt.Errorf("payer %q: %w", payer, core.ErrUnknownParticipant)
	}

	split := make([]string, len(l.participants))
	for i, p := range l.participants {
		split[i] = p.ID
	}

	e := core.Expense{
		ID:         uuid.NewString(),
		Name:       name,
		Amount:     amount,
		Category:   core.CategoryServiceCharge,
		PaidBy:     payer,
		SplitAmong: split,
		Date:       time.Now(),
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	l.expenses = append(l.expenses, e)
	l.revision++
	return e, nil
}

// Total returns the sum of all expense amounts.
func (l *Ledger) Total() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalLocked()
}

// Snapshot returns a deep copy of the current state for the settlement
// engine and the AI gateway. Callers can hold it without locking.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := Snapshot{
		Participants: append([]core.Participant(nil), l.participants...),
		Expenses:     make([]core.Expense, len(l.expenses)),
		Revision:     l.revision,
	}
	for i, e := range l.expenses {
		e.SplitAmong = append([]string(nil), e.SplitAmong...)
		snap.Expenses[i] = e
	}
	return snap
}

func (l *Ledger) totalLocked() float64 {
	var total float64
	for _, e := range l.expenses {
		total += e.Amount
	}
	return total
}

func (l *Ledger) knownLocked(id string) bool {
	for _, p := range l.participants {
		if p.ID == id {
			return true
		}
	}
	return false
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
