// Package http serves the finance client pages: login, dashboard,
// transactions and categories. Pages are rendered server-side from embedded
// templates; every data load goes through the api ports with the session's
// bearer token attached.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	gorilla "github.com/gorilla/sessions"

	"fintrack/internal/api"
	applog "fintrack/internal/log"
	"fintrack/internal/session"
	appweb "fintrack/web"
)

const sessionCookie = "fintrack_session"

type Server struct {
	http.Server
	templates *template.Template
	validate  *validator.Validate
	cookies   *gorilla.CookieStore

	sessions     *session.Service
	summaries    api.SummaryReader
	transactions api.TransactionStore
	categories   api.CategoryStore

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr, sessionSecret string, sessions *session.Service, sr api.SummaryReader, ts api.TransactionStore, cs api.CategoryStore, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	cookies := gorilla.NewCookieStore([]byte(sessionSecret))
	cookies.Options = &gorilla.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		cookies:      cookies,
		sessions:     sessions,
		summaries:    sr,
		transactions: ts,
		categories:   cs,
		rateLimiter:  newRateLimiter(),
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	// Auth pages. Login/register POSTs are rate limited.
	mux.HandleFunc("GET /login", s.withRequest(s.handleLoginPage))
	mux.HandleFunc("POST /login", s.withRequest(s.withRateLimit(s.handleLogin)))
	mux.HandleFunc("POST /register", s.withRequest(s.withRateLimit(s.handleRegister)))
	mux.HandleFunc("POST /logout", s.withRequest(s.handleLogout))

	// Guarded pages.
	mux.HandleFunc("GET /{$}", s.withRequest(s.requireAuth(s.handleDashboard)))
	mux.HandleFunc("GET /transactions", s.withRequest(s.requireAuth(s.handleTransactionsPage)))
	mux.HandleFunc("POST /transactions", s.withRequest(s.requireAuth(s.handleTransactionSubmit)))
	mux.HandleFunc("POST /transactions/{id}/delete", s.withRequest(s.requireAuth(s.handleTransactionDelete)))
	mux.HandleFunc("GET /transactions/export", s.withRequest(s.requireAuth(s.handleTransactionExport)))
	mux.HandleFunc("GET /categories", s.withRequest(s.requireAuth(s.handleCategoriesPage)))
	mux.HandleFunc("POST /categories", s.withRequest(s.requireAuth(s.handleCategorySubmit)))
	mux.HandleFunc("POST /categories/{id}/delete", s.withRequest(s.requireAuth(s.handleCategoryDelete)))

	handler := http.Handler(mux)
	if logger != nil {
		handler = applog.Middleware(logger)(handler)
	}
	s.Server.Handler = handler

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withRequest adds security headers, a request id, and start/completion
// logging to a handler.
func (s *Server) withRequest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := clientIP(r)
		requestID := generateRequestID()

		ctx := r.Context()
		logger := applog.FromContext(ctx).With(applog.FieldRequestID, requestID)
		ctx = context.WithValue(ctx, applog.LoggerContextKey, logger)
		r = r.WithContext(ctx)

		logger.InfoContext(ctx, "Request started",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP,
			applog.FieldUserAgent, r.Header.Get("User-Agent"))

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		logger.InfoContext(ctx, "Request completed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

// withRateLimit guards credential endpoints against brute force.
func (s *Server) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !s.rateLimiter.allow(ip) {
			slog.WarnContext(r.Context(), "Rate limit exceeded", "client_ip", ip, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Muitas tentativas. Tente novamente em instantes.", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// requireAuth bootstraps the session and redirects unauthenticated browsers
// to the login page. The resolved state rides along to the handler.
func (s *Server) requireAuth(next func(http.ResponseWriter, *http.Request, string, session.State)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := s.sessionID(w, r)
		st, err := s.sessions.Bootstrap(r.Context(), sid)
		if err != nil {
			slog.ErrorContext(r.Context(), "Session bootstrap error", "error", err)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if !st.Authenticated() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r, sid, st)
	}
}

// sessionID returns the browser's session id, minting one on first contact.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	sess, _ := s.cookies.Get(r, sessionCookie)
	if sid, ok := sess.Values["sid"].(string); ok && sid != "" {
		return sid
	}
	sid := uuid.NewString()
	sess.Values["sid"] = sid
	if err := sess.Save(r, w); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save session cookie", "error", err)
	}
	return sid
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
