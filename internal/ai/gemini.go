package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"racha/internal/cache"
	"racha/internal/ledger"
)

const DefaultModel = "gemini-2.5-flash"

// receiptSchema constrains the model to the receipt parsing output contract.
var receiptSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"items": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"description": {Type: genai.TypeString},
					"amount":      {Type: genai.TypeNumber},
					"category":    {Type: genai.TypeString, Description: "Categoria ex: Comida, Bebida, Serviço, Transporte"},
					"suggestedSplitStrategy": {
						Type:        genai.TypeString,
						Description: "Sugestão de divisão baseada no item, ex: TODOS, BEBEDORES_ALCOOL, INDIVIDUAL",
					},
				},
				Required: []string{"description", "amount", "category"},
			},
		},
		"currency": {Type: genai.TypeString},
		"total":    {Type: genai.TypeNumber},
	},
	Required: []string{"items", "total", "currency"},
}

// Gemini implements Gateway against the Gemini API. Responses are memoized:
// receipt parses by a hash of the input text, insights by ledger revision,
// so an unchanged ledger never pays for a second model call.
type Gemini struct {
	client   *genai.Client
	model    string
	receipts *cache.TTLCache[*ReceiptResult]
	insights *cache.TTLCache[string]
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{
		client:   client,
		model:    model,
		receipts: cache.New[*ReceiptResult](100, 30*time.Minute),
		insights: cache.New[string](100, 30*time.Minute),
	}, nil
}

// Caches returns the memoization caches for registration with a sweep
// manager.
func (g *Gemini) Caches() []cache.Cleaner {
	return []cache.Cleaner{g.receipts, g.insights}
}

func (g *Gemini) AnalyzeReceipt(ctx context.Context, text string) (*ReceiptResult, error) {
	key := hashKey(text)
	if cached, ok := g.receipts.Get(key); ok {
		return cached, nil
	}

	prompt := "Você é um assistente financeiro especialista em dividir contas de restaurantes e viagens.\n" +
		"Analise o seguinte texto de recibo (que pode estar bagunçado ou ser apenas uma lista digitada).\n\n" +
		"Extraia cada item, seu preço e categorize-o.\n" +
		"Para cada item, sugira uma estratégia de divisão (ex: 'TODOS', 'BEBEDORES_ALCOOL', 'INDIVIDUAL').\n\n" +
		"Texto do recibo:\n\"" + text + "\""

	raw, err := g.generate(ctx, prompt, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   receiptSchema,
	})
	if err != nil {
		return nil, err
	}

	result, err := decodeReceipt(raw)
	if err != nil {
		return nil, err
	}

	g.receipts.Set(key, result)
	return result, nil
}

func (g *Gemini) SpendingInsights(ctx context.Context, snap ledger.Snapshot) (string, error) {
	key := fmt.Sprintf("rev:%d", snap.Revision)
	if cached, ok := g.insights.Get(key); ok {
		return cached, nil
	}

	raw, err := g.generate(ctx, insightsPrompt(snap), nil)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(raw)
	g.insights.Set(key, text)
	return text, nil
}

func (g *Gemini) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: generate content: %v", ErrExternalService, err)
	}

	raw := resp.Text()
	if raw == "" {
		return "", fmt.Errorf("%w: empty response from model", ErrExternalService)
	}
	return raw, nil
}

// insightsPrompt serializes the full expense and participant lists for the
// model, the way the share message does but machine-readable.
func insightsPrompt(snap ledger.Snapshot) string {
	names := make(map[string]string, len(snap.Participants))
	var b strings.Builder
	b.WriteString("Você é um assistente financeiro divertido. Analise os gastos de um grupo de amigos ")
	b.WriteString("e escreva um comentário curto (máximo 3 frases) em português, com uma dica prática. ")
	b.WriteString("Responda apenas com texto puro, sem listas nem Markdown.\n\nParticipantes:\n")
	for _, p := range snap.Participants {
		names[p.ID] = p.Name
		fmt.Fprintf(&b, "- %s\n", p.Name)
	}
	b.WriteString("\nDespesas:\n")
	for _, e := range snap.Expenses {
		fmt.Fprintf(&b, "- %s: R$ %.2f (%s), pago por %s, dividido entre %d pessoas\n",
			e.Name, e.Amount, e.Category, names[e.PaidBy], len(e.SplitAmong))
	}
	return b.String()
}

func decodeReceipt(raw string) (*ReceiptResult, error) {
	clean := cleanModelJSON(raw)

	var result ReceiptResult
	if err := json.Unmarshal([]byte(clean), &result); err != nil {
		return nil, fmt.Errorf("%w: unmarshal receipt JSON: %v", ErrExternalService, err)
	}
	return &result, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk in case the
// model ignored the JSON-only instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}

func hashKey(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(sum[:])
}
