// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily puzzle.
// Exposes two endpoints under /daily:
//   - GET /daily             → today's date key, puzzle id and whether this player finished it
//   - GET /daily/leaderboard → top 20 results for today (or a given date)
//
// The puzzle itself is played through /game; a finished game is recorded
// by handleSubmit. Both endpoints answer 503 when no database is configured.

package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connections/internal/daily"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Use(s.requireDaily)
		r.With(s.withSession).Get("/", s.handleDaily)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

// requireDaily rejects daily requests when results are not persisted.
func (s *Server) requireDaily(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.daily == nil {
			http.Error(w, `{"error":"daily_unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// dailyRes is returned by GET /daily.
type dailyRes struct {
	Date     string `json:"date"`
	PuzzleID string `json:"puzzleId"`
	Played   bool   `json:"played"`
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	now := s.cfg.Now()
	date := daily.DateKey(now)
	p := daily.Resolve(r.Context(), s.daily, s.cfg.Library, s.cfg.DailySalt, now)

	played, err := s.daily.AlreadyRecorded(r.Context(), sessionID(r.Context()), date)
	if err != nil {
		log.Warn().Err(err).Msg("check daily result")
	}
	_ = json.NewEncoder(w).Encode(dailyRes{Date: date, PuzzleID: p.ID, Played: played})
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(s.cfg.Now())
	}
	rows, err := s.daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("leaderboard")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}
