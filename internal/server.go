package internal

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/taskpilot/taskpilot/internal/auth"
	"github.com/taskpilot/taskpilot/internal/chat"
	"github.com/taskpilot/taskpilot/internal/config"
	"github.com/taskpilot/taskpilot/internal/task"
	"github.com/taskpilot/taskpilot/pkg/cerr"
	"github.com/taskpilot/taskpilot/pkg/clog"
)

type Server struct {
	server     *http.Server
	env        *config.Env
	issuer     *auth.TokenIssuer
	authServer *auth.Server
	taskServer *task.Server
	chatServer *chat.Server
}

func NewServer(
	env *config.Env,
	issuer *auth.TokenIssuer,
	authServer *auth.Server,
	taskServer *task.Server,
	chatServer *chat.Server,
) *Server {
	return &Server{
		env:        env,
		issuer:     issuer,
		authServer: authServer,
		taskServer: taskServer,
		chatServer: chatServer,
	}
}

// ListenAndServe starts the HTTP server. The provided context is used as the
// base context for all incoming requests via http.Server.BaseContext, so
// cancelling it (e.g. on shutdown signal) cancels in-flight request contexts.
func (s *Server) ListenAndServe(ctx context.Context) error {
	r := chi.NewRouter()
	r.Use(
		clog.SlogChiMiddleware(),
		cerr.NewJSONResponseChiMiddleware(),
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
	})

	// Registration and login are the only open routes; everything else
	// under /api requires a bearer token.
	r.Route("/api", func(r chi.Router) {
		s.authServer.Register(r)
		r.Group(func(r chi.Router) {
			r.Use(s.issuer.Middleware)
			s.taskServer.Register(r)
			s.chatServer.Register(r)
		})
	})

	mux := http.NewServeMux()
	mux.Handle("/health", &HealthChecker{})
	mux.Handle("/", r)

	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	slog.Info("starting server", "addr", addr)

	s.server = &http.Server{
		Addr: addr,
		Handler: h2c.NewHandler(cors.New(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}).Handler(mux), &http2.Server{}),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
