// Package ai is the boundary to the external generative model. The rest of
// the application consumes it through the Gateway interface and treats every
// failure as a single opaque kind: ErrExternalService.
package ai

import (
	"context"
	"errors"

	"racha/internal/ledger"
)

// ErrExternalService marks any gateway failure: network, empty response or
// unparseable model output. Callers convert it to a user-facing message and
// keep form state intact for a retry.
var ErrExternalService = errors.New("external AI service failed")

type (
	// ReceiptItem is one line extracted from a receipt.
	ReceiptItem struct {
		Description            string  `json:"description"`
		Amount                 float64 `json:"amount"`
		Category               string  `json:"category"`
		SuggestedSplitStrategy string  `json:"suggestedSplitStrategy"`
	}

	// ReceiptResult is the structured output contract of receipt parsing.
	ReceiptResult struct {
		Items    []ReceiptItem `json:"items"`
		Currency string        `json:"currency"`
		Total    float64       `json:"total"`
	}

	// ReceiptAnalyzer turns free-form receipt text into structured items.
	ReceiptAnalyzer interface {
		AnalyzeReceipt(ctx context.Context, text string) (*ReceiptResult, error)
	}

	// InsightGenerator produces a free-text commentary on the group's
	// spending. No schema; the text is rendered as-is.
	InsightGenerator interface {
		SpendingInsights(ctx context.Context, snap ledger.Snapshot) (string, error)
	}

	Gateway interface {
		ReceiptAnalyzer
		InsightGenerator
	}
)
