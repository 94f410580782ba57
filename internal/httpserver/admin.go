package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/connections/internal/puzzle"
)

// mountAdmin registers puzzle scheduling routes.
// PUT /admin/puzzles/{date} pins a puzzle to a UTC date (YYYY-MM-DD): the
// JSON body, or with ?from=<id> a puzzle from the library.
func (s *Server) mountAdmin(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Use(s.requireDaily)
		r.Put("/puzzles/{date}", s.handleSchedule)
	})
}

// requireAdmin checks HTTP basic auth against the configured bcrypt hash.
// The username is ignored.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AdminPasswordHash == "" {
			http.Error(w, `{"error":"admin_disabled"}`, http.StatusServiceUnavailable)
			return
		}
		_, pw, ok := r.BasicAuth()
		if !ok || !checkPassword(s.cfg.AdminPasswordHash, pw) {
			w.Header().Set("WWW-Authenticate", `Basic realm="connections-admin"`)
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, `{"error":"bad_date"}`, http.StatusBadRequest)
		return
	}

	var p puzzle.Puzzle
	if id := r.URL.Query().Get("from"); id != "" {
		lp, ok := puzzle.Find(s.cfg.Library, id)
		if !ok {
			http.Error(w, `{"error":"unknown_puzzle"}`, http.StatusNotFound)
			return
		}
		p = lp
	} else {
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
			return
		}
		p.Normalize()
	}
	if p.ID == "" {
		p.ID = "daily-" + date
	}
	if err := p.Validate(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	if err := s.daily.SchedulePuzzle(r.Context(), date, p); err != nil {
		log.Error().Err(err).Str("date", date).Msg("schedule puzzle")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	log.Info().Str("date", date).Str("puzzle", p.ID).Msg("puzzle scheduled")
	w.WriteHeader(http.StatusNoContent)
}
