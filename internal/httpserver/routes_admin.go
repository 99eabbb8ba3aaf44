package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/cryptix/internal/auth"
)

// mountAdminRoutes registers /admin/*. Reports group days in the quota zone.
func (s *Server) mountAdminRoutes() {
	s.r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireRole(auth.Role.CanAdminister))

		r.Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {
			c, err := s.admin.Counts(r.Context())
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, c)
		})

		r.Get("/reports/daily", func(w http.ResponseWriter, r *http.Request) {
			loc := s.engine.Quota().Location()
			day := time.Now().In(loc)
			if d := r.URL.Query().Get("date"); d != "" {
				t, err := time.ParseInLocation("2006-01-02", d, loc)
				if err != nil {
					writeErrorCode(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
					return
				}
				day = t
			}
			rep, err := s.admin.DailyReport(r.Context(), day, loc)
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, rep)
		})

		r.Get("/reports/user/{id}", func(w http.ResponseWriter, r *http.Request) {
			rep, err := s.admin.UserReport(r.Context(), chi.URLParam(r, "id"), s.engine.Quota().Location())
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, rep)
		})

		r.Get("/players", func(w http.ResponseWriter, r *http.Request) {
			ps, err := s.admin.ListPlayers(r.Context())
			if err != nil {
				writeError(w, r, err)
				return
			}
			if ps == nil {
				writeJSON(w, http.StatusOK, []any{})
				return
			}
			writeJSON(w, http.StatusOK, ps)
		})
	})
}
