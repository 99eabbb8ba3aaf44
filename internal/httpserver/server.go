// internal/httpserver/server.go
//
// HTTP server wiring for the Cryptix backend.
// Responsibilities:
//   - Router + middleware (request IDs, access log, CORS, timeouts, panic recovery, JSON).
//   - Public endpoints: "/", "/health", /auth/register, /auth/login, /auth/logout.
//   - Player endpoints (player role): /dashboard, /game/*.
//   - Admin endpoints (admin role): /admin/*.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled so the auth cookie works
//     from the web client.
//   - Handlers never decide game rules; they resolve the caller, call the
//     engine and map its errors onto status codes (see respond.go).

package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/cryptix/internal/auth"
	"github.com/robalobadob/cryptix/internal/game"
	"github.com/robalobadob/cryptix/internal/store"
)

// AdminStore is the read side the admin routes need.
type AdminStore interface {
	Counts(ctx context.Context) (store.Counts, error)
	DailyReport(ctx context.Context, day time.Time, loc *time.Location) (store.DailyReport, error)
	UserReport(ctx context.Context, playerID string, loc *time.Location) (store.UserReport, error)
	ListPlayers(ctx context.Context) ([]store.PlayerSummary, error)
}

// Options are the transport settings.
type Options struct {
	CookieName   string
	ClientOrigin string
	Secure       bool // production cookies: Secure + SameSite=None
	Timeout      time.Duration
}

// Server bundles the router and the services it fronts.
type Server struct {
	r      *chi.Mux
	engine *game.Engine
	users  *auth.Service
	tokens *auth.Issuer
	admin  AdminStore
	opts   Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(engine *game.Engine, users *auth.Service, tokens *auth.Issuer, admin AdminStore, opts Options) *Server {
	if opts.CookieName == "" {
		opts.CookieName = "cryptix_token"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	s := &Server{r: chi.NewRouter(), engine: engine, users: users, tokens: tokens, admin: admin, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(hlog.NewHandler(log.Logger))
	s.r.Use(requestIDField)
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(opts.Timeout))
	s.r.Use(jsonContentType)
	s.r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{opts.ClientOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "cryptix",
			"endpoints": []string{"/health", "/auth/*", "/dashboard", "/game/*", "/admin/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	s.mountAuthRoutes()
	s.mountGameRoutes()
	s.mountAdminRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: r.URL.Path})
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method_not_allowed", Message: r.Method})
	})

	return s
}

// Handler returns the root handler for an http.Server.
func (s *Server) Handler() http.Handler { return s.r }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// requestIDField copies chi's request id onto the request logger.
func requestIDField(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			l := zerolog.Ctx(r.Context())
			l.UpdateContext(func(c zerolog.Context) zerolog.Context { return c.Str("req_id", id) })
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, d time.Duration) {
	lvl := zerolog.InfoLevel
	if status >= http.StatusInternalServerError {
		lvl = zerolog.WarnLevel
	}
	hlog.FromRequest(r).WithLevel(lvl).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}
