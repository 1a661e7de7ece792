// Package share renders the settlement engine's output as a WhatsApp-ready
// plain-text summary and builds the wa.me deep link that opens it. The
// message is a pure function of the engine result with fixed two-decimal
// formatting, so it can be regenerated byte for byte.
package share

import (
	"fmt"
	"net/url"
	"strings"

	"racha/internal/settle"
)

const deepLinkBase = "https://wa.me/?text="

// Message builds the group summary: one status line per participant, then
// the transfer plan.
func Message(result settle.Result) string {
	names := make(map[string]string, len(result.Summary))
	for _, p := range result.Summary {
		names[p.ParticipantID] = p.Name
	}

	var b strings.Builder
	b.WriteString("*📊 Resumo do Racha*\n\n")
	b.WriteString("*Extrato Individual:*\n")
	for _, p := range result.Summary {
		var status string
		switch {
		case p.Net > settle.Epsilon:
			status = fmt.Sprintf("Recebe R$ %.2f", p.Net)
		case p.Net < -settle.Epsilon:
			status = fmt.Sprintf("Paga R$ %.2f", -p.Net)
		default:
			status = "Zerado"
		}
		fmt.Fprintf(&b, "👤 %s: %s\n", p.Name, status)
	}
	b.WriteString("\n")

	if len(result.Transfers) == 0 {
		b.WriteString("✅ *Tudo quitado! Ninguém deve nada.*\n")
	} else {
		b.WriteString("*💸 Pagamentos Necessários:*\n")
		for _, t := range result.Transfers {
			fmt.Fprintf(&b, "🔴 *%s* paga *%s*: R$ %.2f\n", names[t.From], names[t.To], t.Amount)
		}
	}

	b.WriteString("\n_Gerado pelo Racha_ 🧾")
	return b.String()
}

// DeepLink returns the wa.me URL that opens WhatsApp with the message
// prefilled. Spaces are percent-encoded, not "+", to match what the
// messaging client expects in a deep link.
func DeepLink(message string) string {
	return deepLinkBase + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}
