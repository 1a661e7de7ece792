// Package http wires the JSON API and the embedded single-page client in
// front of the session store, the settlement engine and the AI gateway.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"racha/internal/ai"
	"racha/internal/log"
	"racha/internal/session"
	appweb "racha/web"
)

const sessionCookie = "racha_session"

type Server struct {
	http.Server
	templates   *template.Template
	sessions    *session.Store
	gateway     ai.Gateway // nil when no API key is configured
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// server. gateway may be nil; the AI endpoints then answer 503.
func NewServer(addr string, sessions *session.Store, gateway ai.Gateway) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		sessions:    sessions,
		gateway:     gateway,
		rateLimiter: newRateLimiter(),
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.instrument(s.handleIndex))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/state", s.instrument(s.withSession(s.handleState)))
	mux.HandleFunc("POST /api/participants", s.instrument(s.withSession(s.handleAddParticipant)))
	mux.HandleFunc("DELETE /api/participants/{id}", s.instrument(s.withSession(s.handleRemoveParticipant)))
	mux.HandleFunc("POST /api/expenses", s.instrument(s.withSession(s.handleAddExpense)))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.instrument(s.withSession(s.handleRemoveExpense)))
	mux.HandleFunc("POST /api/service-charge", s.instrument(s.withSession(s.handleServiceCharge)))
	mux.HandleFunc("GET /api/balance", s.instrument(s.withSession(s.handleBalance)))
	mux.HandleFunc("GET /api/share", s.instrument(s.withSession(s.handleShare)))
	mux.HandleFunc("POST /api/receipt/parse", s.instrument(s.withSession(s.handleParseReceipt)))
	mux.HandleFunc("POST /api/insights", s.instrument(s.withSession(s.handleInsights)))

	return s
}

// instrument adds security headers, rate limiting for mutations, a request
// id and request logging around a handler.
func (s *Server) instrument(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				log.FieldRequestID, requestID,
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Muitas requisições. Tente novamente em instantes.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

// withSession resolves the caller's ledger from the session cookie,
// creating a fresh session (and cookie) on first contact.
func (s *Server) withSession(next func(http.ResponseWriter, *http.Request, *session.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sess *session.Session
		if c, err := r.Cookie(sessionCookie); err == nil {
			sess, _ = s.sessions.Get(c.Value)
		}
		if sess == nil {
			sess = s.sessions.Create()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next(w, r, sess)
	}
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Shutdown stops the HTTP server and the rate limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
