// internal/httpserver/server.go
//
// HTTP server wiring for the Connections backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/puzzles".
//   - Game endpoints under /game (player session cookie, see session.go).
//   - Share links under /s, daily leaderboard under /daily, admin under /admin.
//
// Notes:
//   - The browser is the presentation layer. It owns the shuffle animation
//     delay (phase two is its own request) and the "copied" display window.
//   - Game sessions are loaded, changed and saved under one mutex, so the
//     single storage slot per player only ever has one writer.

package httpserver

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/robalobadob/connections/internal/daily"
	"github.com/robalobadob/connections/internal/game"
	"github.com/robalobadob/connections/internal/puzzle"
	"github.com/robalobadob/connections/internal/store"
)

// Config carries everything the server reads from the environment.
type Config struct {
	Library           []puzzle.Puzzle  // puzzles rotated by the daily picker
	DailySalt         string           // HMAC salt for the daily rotation
	JWTSecret         string           // signs the player session cookie
	CookieName        string           // session cookie name
	SessionTTL        time.Duration    // session cookie lifetime
	Secure            bool             // production cookies (Secure, SameSite=None)
	ClientOrigin      string           // single allowed CORS origin
	AdminPasswordHash string           // bcrypt hash; admin routes disabled when empty
	ShareLinks        bool             // enable /s/{code} share links
	PublicURL         string           // prefix for share links
	Rand              game.Source      // shuffle source; nil uses crypto/rand
	Now               func() time.Time // clock; nil uses time.Now
}

// ConfigFromEnv builds a Config from environment variables with dev defaults.
func ConfigFromEnv(library []puzzle.Puzzle) Config {
	days := 180
	if v := os.Getenv("SESSION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	return Config{
		Library:           library,
		DailySalt:         getEnv("DAILY_SALT", "local_dev_salt"),
		JWTSecret:         getEnv("JWT_SECRET", "dev_secret_change_me"),
		CookieName:        getEnv("SESSION_COOKIE", "connections_session"),
		SessionTTL:        time.Duration(days) * 24 * time.Hour,
		Secure:            os.Getenv("NODE_ENV") == "production",
		ClientOrigin:      getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		ShareLinks:        getEnv("SHARE_LINKS", "true") == "true",
		PublicURL:         strings.TrimRight(os.Getenv("PUBLIC_URL"), "/"),
	}
}

// Server bundles router, game store, daily store and config.
type Server struct {
	r     *chi.Mux
	store store.Store
	daily *daily.Store
	cfg   Config
	mu    sync.Mutex // serializes load→apply→save of game sessions
}

// New constructs a Server, installs middleware, and registers routes.
// db may be nil, in which case daily results, the leaderboard and
// scheduled puzzles are disabled.
func New(st store.Store, db *sql.DB, cfg Config) *Server {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &Server{r: chi.NewRouter(), store: st, cfg: cfg}
	if db != nil {
		s.daily = daily.NewStore(db)
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"connections-go","endpoints":["/health","/game","/daily/leaderboard"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/puzzles", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int{"puzzles": len(s.cfg.Library)})
	})

	s.r.Route("/game", s.mountGame)
	s.r.Get("/s/{code}", s.handleShared)
	s.mountDaily(s.r)
	s.mountAdmin(s.r)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- small util --------------------------------

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
