package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/cryptix/internal/auth"
)

type registerReq struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,password"`
}

type loginReq struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

// meRes is the public view of a user.
type meRes struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Role     auth.Role `json:"role"`
}

func toMe(u auth.User) meRes { return meRes{ID: u.ID, Username: u.Username, Role: u.Role} }

// mountAuthRoutes registers /auth/*.
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/register", s.handleRegister)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)
	s.r.With(s.requireAuth).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, toMe(currentUser(r)))
	})
}

// handleRegister creates a player account, signs a token and sets the auth cookie.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerReq
	if !decodeJSON(w, r, &body) {
		return
	}
	u, err := s.users.Register(r.Context(), body.Username, body.Password, auth.RolePlayer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !s.issueCookie(w, r, u) {
		return
	}
	writeJSON(w, http.StatusCreated, toMe(u))
}

// handleLogin authenticates and sets the auth cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	if !decodeJSON(w, r, &body) {
		return
	}
	u, err := s.users.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !s.issueCookie(w, r, u) {
		return
	}
	writeJSON(w, http.StatusOK, toMe(u))
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setAuthCookie(w, "", time.Time{}, -1)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) issueCookie(w http.ResponseWriter, r *http.Request, u auth.User) bool {
	tok, exp, err := s.tokens.Sign(u)
	if err != nil {
		writeError(w, r, err)
		return false
	}
	s.setAuthCookie(w, tok, exp, 0)
	return true
}

// setAuthCookie writes (or with maxAge<0 deletes) the auth token cookie.
func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time, maxAge int) {
	sameSite := http.SameSiteLaxMode
	if s.opts.Secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: sameSite,
		Expires:  exp,
		MaxAge:   maxAge,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.opts.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// ---------------------------- auth middleware ------------------------------

type ctxUserKey struct{}

func currentUser(r *http.Request) auth.User {
	u, _ := r.Context().Value(ctxUserKey{}).(auth.User)
	return u
}

// requireAuth enforces a valid token for a user that still exists and puts the
// user into the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := s.bearerOrCookie(r)
		if tok == "" {
			writeErrorCode(w, http.StatusUnauthorized, "unauthorized", "")
			return
		}
		id, err := s.tokens.Parse(tok)
		if err != nil {
			writeErrorCode(w, http.StatusUnauthorized, "invalid_token", "")
			return
		}
		u, err := s.users.Lookup(r.Context(), id.ID)
		if err != nil {
			hlog.FromRequest(r).Debug().Err(err).Str("user", id.ID).Msg("token for unknown user")
			writeErrorCode(w, http.StatusUnauthorized, "invalid_token", "")
			return
		}
		hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context { return c.Str("user", u.ID) })
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u)))
	})
}

// requireRole runs requireAuth and then rejects callers whose role fails allow.
func (s *Server) requireRole(allow func(auth.Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return s.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allow(currentUser(r).Role) {
				writeErrorCode(w, http.StatusForbidden, "forbidden", "")
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
