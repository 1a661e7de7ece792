// Package settle implements the settlement engine: pure, deterministic
// functions that recompute every participant's financial position and a
// transfer plan from an immutable ledger snapshot. The engine never mutates
// its input and never re-validates it; the ledger rejects malformed expenses
// at creation time.
package settle

import (
	"sort"

	"racha/internal/core"
)

// Epsilon absorbs floating point noise from repeated equal-split division.
// Net balances within Epsilon of zero count as settled, and no emitted
// transfer is ever smaller than Epsilon.
const Epsilon = 0.01

type (
	// PersonSummary is one participant's position. Positive Net means the
	// participant is owed money, negative means they owe.
	PersonSummary struct {
		ParticipantID string  `json:"participantId"`
		Name          string  `json:"name"`
		Paid          float64 `json:"paid"`
		Consumed      float64 `json:"consumed"`
		Net           float64 `json:"net"`
	}

	// Transfer is a single recommended payment from one participant to
	// another.
	Transfer struct {
		From   string  `json:"from"`
		To     string  `json:"to"`
		Amount float64 `json:"amount"`
	}

	// Result bundles both engine outputs computed from one snapshot.
	Result struct {
		Summary   []PersonSummary `json:"summary"`
		Transfers []Transfer      `json:"transfers"`
		Total     float64         `json:"total"`
	}
)

// Summarize computes paid, consumed and net for every participant. Each
// expense credits its full amount to the payer and debits an equal share to
// every member of its split. Participants with no expense involvement appear
// with all-zero values. Expenses referencing ids outside the participant
// list contribute nothing for those ids.
func Summarize(participants []core.Participant, expenses []core.Expense) []PersonSummary {
	index := make(map[string]int, len(participants))
	out := make([]PersonSummary, len(participants))
	for i, p := range participants {
		index[p.ID] = i
		out[i] = PersonSummary{ParticipantID: p.ID, Name: p.Name}
	}

	for _, e := range expenses {
		if i, ok := index[e.PaidBy]; ok {
			out[i].Paid += e.Amount
		}
		if len(e.SplitAmong) == 0 {
			continue
		}
		share := e.Amount / float64(len(e.SplitAmong))
		for _, id := range e.SplitAmong {
			if i, ok := index[id]; ok {
				out[i].Consumed += share
			}
		}
	}

	for i := range out {
		out[i].Net = out[i].Paid - out[i].Consumed
	}
	return out
}

// Transfers computes a greedy settlement plan: debtors sorted most negative
// first, creditors sorted most positive first, walked with two cursors,
// each step moving min(debt, credit) from the current debtor to the current
// creditor. The result is not guaranteed to minimize the transfer count
// (exact minimization is a hard combinatorial problem); it is a greedy
// approximation that is deterministic for a given participant order, which
// is what keeps it reproducible. Residual sub-Epsilon imbalances are
// dropped.
func Transfers(participants []core.Participant, expenses []core.Expense) []Transfer {
	return transferPlan(Summarize(participants, expenses))
}

// Compute returns both outputs plus the group total in one call.
func Compute(participants []core.Participant, expenses []core.Expense) Result {
	summary := Summarize(participants, expenses)
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return Result{
		Summary:   summary,
		Transfers: transferPlan(summary),
		Total:     total,
	}
}

func transferPlan(summary []PersonSummary) []Transfer {
	net := make(map[string]float64, len(summary))
	var debtors, creditors []PersonSummary
	for _, s := range summary {
		net[s.ParticipantID] = s.Net
		switch {
		case s.Net < -Epsilon:
			debtors = append(debtors, s)
		case s.Net > Epsilon:
			creditors = append(creditors, s)
		}
	}

	// Stable sorts so equal balances keep participant insertion order.
	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].Net < debtors[j].Net })
	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].Net > creditors[j].Net })

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := debtors[i].ParticipantID
		creditor := creditors[j].ParticipantID

		amount := -net[debtor]
		if net[creditor] < amount {
			amount = net[creditor]
		}

		if amount > Epsilon {
			transfers = append(transfers, Transfer{From: debtor, To: creditor, Amount: amount})
		}

		net[debtor] += amount
		net[creditor] -= amount

		// Both cursors may advance in the same step on an exact match.
		if -net[debtor] < Epsilon {
			i++
		}
		if net[creditor] < Epsilon {
			j++
		}
	}
	return transfers
}
