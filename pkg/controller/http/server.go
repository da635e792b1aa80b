package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/usecase"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/utils/logging"
	"github.com/ubclaunchpad/rocket2-sub000/pkg/utils/safe"
)

// Server routes the Slack and GitHub webhook surface. All Slack endpoints
// sit behind signature verification; the GitHub endpoint verifies its HMAC
// payload signature itself.
type Server struct {
	router              *chi.Mux
	uc                  *usecase.UseCases
	slackSigningSecret  string
	githubWebhookSecret string
}

type Options func(*Server)

// WithGithubWebhook enables the GitHub webhook endpoint with the given
// shared secret
func WithGithubWebhook(secret string) Options {
	return func(s *Server) {
		s.githubWebhookSecret = secret
	}
}

func New(uc *usecase.UseCases, slackSigningSecret string, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:             r,
		uc:                 uc,
		slackSigningSecret: slackSigningSecret,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	// Slack endpoints - no auth, signature verification instead
	r.Route("/hooks/slack", func(r chi.Router) {
		r.Use(SlackSignatureMiddleware(s.slackSigningSecret))

		r.Post("/event", s.handleSlackEvent)
		r.Post("/command", s.handleSlackCommand)
	})

	if s.githubWebhookSecret != "" {
		r.Post("/hooks/github", s.handleGithubWebhook)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		safe.Write(r.Context(), w, []byte("OK"))
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
