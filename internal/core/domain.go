package core

import (
	"errors"
	"strings"
	"time"
)

const (
	SplitEqual    SplitType = "EQUAL"
	SplitShares   SplitType = "SHARES"
	SplitSpecific SplitType = "SPECIFIC"
)

// Expense categories. CategoryServiceCharge marks synthesized tips so the
// client can render them differently; the settlement engine treats them like
// any other expense.
const (
	CategoryGeneral       = "Geral"
	CategoryServiceCharge = "Taxa"
)

type (
	// SplitType enumerates how an expense could be divided. Only SplitEqual
	// is honored by the settlement engine today; the other values exist so
	// AI split suggestions round-trip without inventing weighted math.
	SplitType string

	// Participant is a person tracked by the ledger. IDs are opaque handles,
	// never reused within a session and never treated as indices.
	Participant struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	// Expense is a single recorded payment: one payer, a set of consumers.
	// Immutable once created except for deletion.
	Expense struct {
		ID         string    `json:"id"`
		Name       string    `json:"name"`
		Amount     float64   `json:"amount"`
		Category   string    `json:"category"`
		PaidBy     string    `json:"paidBy"`     // Participant ID
		SplitAmong []string  `json:"splitAmong"` // Participant IDs, never empty
		Date       time.Time `json:"date"`
	}
)

var (
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrEmptySplit         = errors.New("split must include at least one participant")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrParticipantInUse   = errors.New("participant has recorded expenses")
	ErrNotFound           = errors.New("not found")
	ErrNothingToCharge    = errors.New("no expenses to charge a percentage on")
)

func (p Participant) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if len(e.SplitAmong) == 0 {
		return ErrEmptySplit
	}
	return nil
}
