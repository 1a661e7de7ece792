package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"racha/internal/ai"
	"racha/internal/core"
)

type contextKey string

const requestIDKey contextKey = "request_id"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError maps domain sentinels to status codes and the
// user-facing messages the client shows verbatim.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrEmptyName):
		writeError(w, http.StatusUnprocessableEntity, "Informe um nome.")
	case errors.Is(err, core.ErrInvalidAmount):
		writeError(w, http.StatusUnprocessableEntity, "Informe um valor maior que zero.")
	case errors.Is(err, core.ErrEmptySplit):
		writeError(w, http.StatusUnprocessableEntity, "Selecione pelo menos uma pessoa para dividir a conta.")
	case errors.Is(err, core.ErrUnknownParticipant):
		writeError(w, http.StatusUnprocessableEntity, "Participante desconhecido.")
	case errors.Is(err, core.ErrParticipantInUse):
		writeError(w, http.StatusConflict, "Não é possível remover alguém que já possui despesas registradas.")
	case errors.Is(err, core.ErrNothingToCharge):
		writeError(w, http.StatusUnprocessableEntity, "Adicione despesas antes de calcular a taxa de serviço.")
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "Registro não encontrado.")
	case errors.Is(err, ai.ErrExternalService):
		writeError(w, http.StatusBadGateway, "Falha ao processar o recibo. Tente novamente ou insira manualmente.")
	default:
		writeError(w, http.StatusInternalServerError, "Erro interno. Tente novamente.")
	}
}

// decodeBody parses a JSON request body into dst with a size cap.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(dst)
}

// trustedProxies are the networks allowed to set forwarding headers.
var trustedProxies = []*net.IPNet{
	mustCIDR("127.0.0.0/8"),
	mustCIDR("10.0.0.0/8"),
	mustCIDR("172.16.0.0/12"),
	mustCIDR("192.168.0.0/16"),
}

func mustCIDR(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("failed to parse trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

// extractClientIP returns the real client IP, honoring forwarding headers
// only when the direct peer is a trusted proxy.
func extractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsed := net.ParseIP(directIP)
	if parsed == nil {
		return directIP
	}

	trusted := false
	for _, network := range trustedProxies {
		if network.Contains(parsed) {
			trusted = true
			break
		}
	}
	if trusted {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first := strings.TrimSpace(strings.Split(xff, ",")[0])
			if net.ParseIP(first) != nil {
				return first
			}
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if net.ParseIP(xri) != nil {
				return xri
			}
		}
	}
	return directIP
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
