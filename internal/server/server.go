// Package server exposes the chat API over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pathways-2/Agent-Chatbot/internal/agent"
	"github.com/pathways-2/Agent-Chatbot/internal/memory"
	"github.com/pathways-2/Agent-Chatbot/internal/otel"
)

const defaultTimeout = 90 * time.Second

// Server holds the dependencies for the chat HTTP API.
type Server struct {
	router      *chi.Mux
	runner      *agent.Runner
	memoryStore *memory.Store
	corsOrigins []string
	limiter     *RateLimiter
	chatHTML    string
	startTime   time.Time

	openAIConfigured bool
	vectorConfigured bool
}

// Option configures the Server.
type Option func(*Server)

// WithCORSOrigins sets allowed CORS origins.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// WithChatPage sets the embedded chat page served at the root.
func WithChatPage(html string) Option {
	return func(s *Server) { s.chatHTML = html }
}

// WithRateLimiter overrides the default per-IP limiter, mainly for tests.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) { s.limiter = rl }
}

// WithComponentStatus records which optional backends are configured, for
// the detailed health report.
func WithComponentStatus(openAIConfigured, vectorConfigured bool) Option {
	return func(s *Server) {
		s.openAIConfigured = openAIConfigured
		s.vectorConfigured = vectorConfigured
	}
}

// NewServer builds a Server around the chat runner and session store.
func NewServer(runner *agent.Runner, memoryStore *memory.Store, opts ...Option) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		runner:      runner,
		memoryStore: memoryStore,
		corsOrigins: []string{"*"},
		limiter:     NewRateLimiter(rateLimitRequests, rateLimitWindowSeconds),
		startTime:   time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the configured http.Handler.
func (s *Server) Routes() http.Handler {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(otel.Middleware())
	r.Use(CORSMiddleware(s.corsOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware)
		r.Use(middleware.Timeout(defaultTimeout))

		r.Get("/health", s.handleHealth)
		r.Post("/chat", s.handleChat)
		r.Get("/conversation/{sessionID}", s.handleConversationGet)
		r.Delete("/conversation/{sessionID}", s.handleConversationClear)
	})

	r.Get("/", s.handleChatPage)

	return r
}

// CORSMiddleware applies the allowed-origin headers and answers preflight
// requests.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := false
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
			break
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if origin != "" {
				for _, o := range allowedOrigins {
					if o == origin {
						w.Header().Set("Access-Control-Allow-Origin", origin)
						w.Header().Set("Access-Control-Allow-Credentials", "true")
						break
					}
				}
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
