package settle

import (
	"math"
	"reflect"
	"testing"

	"racha/internal/core"
)

func people(names ...string) []core.Participant {
	out := make([]core.Participant, len(names))
	for i, n := range names {
		out[i] = core.Participant{ID: "p" + n, Name: n}
	}
	return out
}

func TestSummarizeSinglePayer(t *testing.T) {
	ps := people("A", "B", "C")
	es := []core.Expense{
		{ID: "e1", Name: "Jantar", Amount: 90, PaidBy: "pA", SplitAmong: []string{"pA", "pB", "pC"}},
	}

	summary := Summarize(ps, es)
	wantNet := map[string]float64{"pA": 60, "pB": -30, "pC": -30}
	for _, s := range summary {
		if math.Abs(s.Net-wantNet[s.ParticipantID]) > 1e-9 {
			t.Fatalf("%s: net = %v, want %v", s.Name, s.Net, wantNet[s.ParticipantID])
		}
	}
	if summary[0].Paid != 90 || math.Abs(summary[0].Consumed-30) > 1e-9 {
		t.Fatalf("A: paid=%v consumed=%v", summary[0].Paid, summary[0].Consumed)
	}

	transfers := Transfers(ps, es)
	want := []Transfer{
		{From: "pB", To: "pA", Amount: 30},
		{From: "pC", To: "pA", Amount: 30},
	}
	if len(transfers) != len(want) {
		t.Fatalf("got %d transfers, want %d: %+v", len(transfers), len(want), transfers)
	}
	for i, tr := range transfers {
		if tr.From != want[i].From || tr.To != want[i].To || math.Abs(tr.Amount-want[i].Amount) > 1e-9 {
			t.Fatalf("transfer %d = %+v, want %+v", i, tr, want[i])
		}
	}
}

func TestServiceChargeFlowsThrough(t *testing.T) {
	// 100 paid by A split A+B, then a 10% tip (10) paid by B split A+B.
	ps := people("A", "B")
	es := []core.Expense{
		{ID: "e1", Name: "Jantar", Amount: 100, PaidBy: "pA", SplitAmong: []string{"pA", "pB"}},
		{ID: "e2", Name: "Taxa de Serviço (10%)", Amount: 10, Category: core.CategoryServiceCharge, PaidBy: "pB", SplitAmong: []string{"pA", "pB"}},
	}

	summary := Summarize(ps, es)
	if math.Abs(summary[0].Net-45) > 1e-9 {
		t.Fatalf("net[A] = %v, want 45", summary[0].Net)
	}
	if math.Abs(summary[1].Net+45) > 1e-9 {
		t.Fatalf("net[B] = %v, want -45", summary[1].Net)
	}

	transfers := Transfers(ps, es)
	if len(transfers) != 1 {
		t.Fatalf("got %d transfers, want 1: %+v", len(transfers), transfers)
	}
	tr := transfers[0]
	if tr.From != "pB" || tr.To != "pA" || math.Abs(tr.Amount-45) > 1e-9 {
		t.Fatalf("transfer = %+v, want B->A 45", tr)
	}
}

func TestOffsettingExpenses(t *testing.T) {
	// Everyone pays only for themselves: nothing to settle.
	ps := people("A", "B", "C")
	es := []core.Expense{
		{ID: "e1", Amount: 10, PaidBy: "pA", SplitAmong: []string{"pA"}},
		{ID: "e2", Amount: 25, PaidBy: "pB", SplitAmong: []string{"pB"}},
		{ID: "e3", Amount: 7.5, PaidBy: "pC", SplitAmong: []string{"pC"}},
	}

	for _, s := range Summarize(ps, es) {
		if math.Abs(s.Net) > 1e-9 {
			t.Fatalf("%s: net = %v, want 0", s.Name, s.Net)
		}
	}
	if transfers := Transfers(ps, es); len(transfers) != 0 {
		t.Fatalf("expected no transfers, got %+v", transfers)
	}
}

func TestEmptyLedger(t *testing.T) {
	ps := people("A", "B")

	result := Compute(ps, nil)
	if result.Total != 0 {
		t.Fatalf("total = %v, want 0", result.Total)
	}
	if len(result.Transfers) != 0 {
		t.Fatalf("expected no transfers, got %+v", result.Transfers)
	}
	for _, s := range result.Summary {
		if s.Paid != 0 || s.Consumed != 0 || s.Net != 0 {
			t.Fatalf("%s: expected zero summary, got %+v", s.Name, s)
		}
	}
}

func TestBalanceConservation(t *testing.T) {
	ps := people("A", "B", "C", "D")
	es := []core.Expense{
		{ID: "e1", Amount: 33.33, PaidBy: "pA", SplitAmong: []string{"pA", "pB", "pC"}},
		{ID: "e2", Amount: 100, PaidBy: "pB", SplitAmong: []string{"pA", "pB", "pC", "pD"}},
		{ID: "e3", Amount: 7.77, PaidBy: "pC", SplitAmong: []string{"pD"}},
		{ID: "e4", Amount: 59.99, PaidBy: "pA", SplitAmong: []string{"pB", "pD"}},
	}

	var sum float64
	for _, s := range Summarize(ps, es) {
		sum += s.Net
	}
	if math.Abs(sum) > 1e-9 {
		t.Fatalf("net balances sum to %v, want 0", sum)
	}
}

func TestTransfersSettleAllDebts(t *testing.T) {
	ps := people("A", "B", "C", "D", "E")
	es := []core.Expense{
		{ID: "e1", Amount: 120, PaidBy: "pA", SplitAmong: []string{"pA", "pB", "pC", "pD", "pE"}},
		{ID: "e2", Amount: 45.5, PaidBy: "pB", SplitAmong: []string{"pB", "pC"}},
		{ID: "e3", Amount: 18.9, PaidBy: "pE", SplitAmong: []string{"pA", "pD", "pE"}},
		{ID: "e4", Amount: 200, PaidBy: "pC", SplitAmong: []string{"pA", "pB", "pC", "pD"}},
	}

	net := make(map[string]float64)
	for _, s := range Summarize(ps, es) {
		net[s.ParticipantID] = s.Net
	}

	// Replaying every transfer against the net vector must zero it out.
	for _, tr := range Transfers(ps, es) {
		if tr.Amount <= Epsilon {
			t.Fatalf("transfer below epsilon: %+v", tr)
		}
		net[tr.From] += tr.Amount
		net[tr.To] -= tr.Amount
	}
	for id, n := range net {
		if math.Abs(n) > Epsilon {
			t.Fatalf("%s left unsettled: %v", id, n)
		}
	}
}

func TestUninvolvedParticipantNeverTransfers(t *testing.T) {
	ps := people("A", "B", "Ghost")
	es := []core.Expense{
		{ID: "e1", Amount: 50, PaidBy: "pA", SplitAmong: []string{"pA", "pB"}},
	}

	for _, s := range Summarize(ps, es) {
		if s.ParticipantID == "pGhost" && (s.Paid != 0 || s.Consumed != 0 || s.Net != 0) {
			t.Fatalf("uninvolved participant has non-zero summary: %+v", s)
		}
	}
	for _, tr := range Transfers(ps, es) {
		if tr.From == "pGhost" || tr.To == "pGhost" {
			t.Fatalf("uninvolved participant appears in transfer %+v", tr)
		}
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	ps := people("A", "B", "C")
	es := []core.Expense{
		{ID: "e1", Amount: 90, PaidBy: "pA", SplitAmong: []string{"pA", "pB", "pC"}},
		{ID: "e2", Amount: 12.34, PaidBy: "pB", SplitAmong: []string{"pA", "pC"}},
	}

	first := Compute(ps, es)
	second := Compute(ps, es)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("recomputation differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestGreedyCursorExactMatch(t *testing.T) {
	// Debtor and creditor settle exactly in one step; both cursors advance.
	ps := people("A", "B", "C", "D")
	es := []core.Expense{
		{ID: "e1", Amount: 40, PaidBy: "pA", SplitAmong: []string{"pB"}},
		{ID: "e2", Amount: 40, PaidBy: "pC", SplitAmong: []string{"pD"}},
	}

	transfers := Transfers(ps, es)
	want := []Transfer{
		{From: "pB", To: "pA", Amount: 40},
		{From: "pD", To: "pC", Amount: 40},
	}
	if !reflect.DeepEqual(transfers, want) {
		t.Fatalf("got %+v, want %+v", transfers, want)
	}
}
