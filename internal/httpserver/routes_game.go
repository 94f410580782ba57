// internal/httpserver/routes_game.go
//
// HTTP routes for playing today's puzzle.
// Exposes, under /game (player session required, see session.go):
//   - GET  /game                  → current state (resumes or starts a game)
//   - POST /game/select           → toggle a word {word}
//   - POST /game/submit           → submit the selection; may carry a "one away" hint
//   - POST /game/deselect         → clear the selection
//   - POST /game/shuffle          → shuffle phase one (client animates, then...)
//   - POST /game/shuffle/complete → shuffle phase two
//   - POST /game/reset            → start over
//   - DELETE /game                → forget the saved game (404 if none)
//   - GET  /game/share            → emoji result grid
//   - POST /game/share            → share link, falling back to copy text
//
// Each request opens the player's game.Session (restoring the saved state),
// applies one operation and lets the session write it back.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connections/internal/daily"
	"github.com/robalobadob/connections/internal/game"
	"github.com/robalobadob/connections/internal/puzzle"
	"github.com/robalobadob/connections/internal/share"
	"github.com/robalobadob/connections/internal/store"
)

const (
	gameKeyPrefix  = "connections:game:"
	shareKeyPrefix = "connections:share:"
)

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Use(s.withSession)
	r.Get("/", s.handleState)
	r.Delete("/", s.handleForget)
	r.Post("/select", s.handleSelect)
	r.Post("/submit", s.handleSubmit)
	r.Post("/deselect", s.simpleOp((*game.Session).DeselectAll))
	r.Post("/shuffle", s.simpleOp((*game.Session).BeginShuffle))
	r.Post("/shuffle/complete", s.simpleOp((*game.Session).CompleteShuffle))
	r.Post("/reset", s.simpleOp((*game.Session).Reset))
	r.Get("/share", s.handleShareText)
	r.Post("/share", s.handleShare)
}

// -----------------------------------------------------------------------------
// responses

// stateView is the client's view of a game. Unsolved categories stay hidden
// until the game is over, so the board can't be read off the wire.
type stateView struct {
	PuzzleID          string            `json:"puzzleId"`
	Status            game.Status       `json:"status"`
	RemainingWords    []string          `json:"remainingWords"`
	SelectedWords     []string          `json:"selectedWords"`
	SolvedCategories  []puzzle.Category `json:"solvedCategories"`
	Categories        []puzzle.Category `json:"categories,omitempty"`
	MistakesRemaining int               `json:"mistakesRemaining"`
	GameOver          bool              `json:"gameOver"`
	GameWon           bool              `json:"gameWon"`
	IsShuffling       bool              `json:"isShuffling"`
	GuessHistory      []game.Guess      `json:"guessHistory"`
}

func viewOf(puzzleID string, st game.State) stateView {
	v := stateView{
		PuzzleID:          puzzleID,
		Status:            st.Status(),
		RemainingWords:    st.RemainingWords,
		SelectedWords:     st.SelectedWords,
		SolvedCategories:  st.SolvedCategories,
		MistakesRemaining: st.MistakesRemaining,
		GameOver:          st.GameOver,
		GameWon:           st.GameWon,
		IsShuffling:       st.IsShuffling,
		GuessHistory:      st.GuessHistory,
	}
	if st.GameOver {
		v.Categories = st.Categories
	}
	return v
}

type stateRes struct {
	State stateView `json:"state"`
}

type selectReq struct {
	Word string `json:"word"`
}

type submitRes struct {
	State   stateView    `json:"state"`
	Outcome game.Outcome `json:"outcome"`
	Hint    string       `json:"hint,omitempty"`
}

type shareTextRes struct {
	Text string `json:"text"`
}

type shareRes struct {
	Outcome     share.Outcome `json:"outcome"`
	URL         string        `json:"url,omitempty"`
	Text        string        `json:"text,omitempty"`
	CopiedUntil *time.Time    `json:"copiedUntil,omitempty"`
}

// -----------------------------------------------------------------------------
// session plumbing

// withGame runs fn against the caller's game session while holding s.mu.
func (s *Server) withGame(ctx context.Context, fn func(*game.Session)) {
	p := daily.Resolve(ctx, s.daily, s.cfg.Library, s.cfg.DailySalt, s.cfg.Now())
	eng := game.NewEngine(p, s.cfg.Rand)

	s.mu.Lock()
	defer s.mu.Unlock()
	fn(game.Open(ctx, eng, s.store, gameKey(ctx)))
}

// gameKey is the storage key of the caller's game.
func gameKey(ctx context.Context) string {
	return gameKeyPrefix + sessionID(ctx)
}

// simpleOp adapts a state-only session operation into a handler.
func (s *Server) simpleOp(op func(*game.Session, context.Context) game.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var res stateRes
		s.withGame(r.Context(), func(sess *game.Session) {
			res.State = viewOf(sess.Engine().Puzzle().ID, op(sess, r.Context()))
		})
		_ = json.NewEncoder(w).Encode(res)
	}
}

// -----------------------------------------------------------------------------
// handlers

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var res stateRes
	s.withGame(r.Context(), func(sess *game.Session) {
		res.State = viewOf(sess.Engine().Puzzle().ID, sess.State())
	})
	_ = json.NewEncoder(w).Encode(res)
}

// handleForget drops the caller's saved game; the next request deals a new one.
func (s *Server) handleForget(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.store.Delete(r.Context(), gameKey(r.Context()))
	s.mu.Unlock()
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, `{"error":"no_game"}`, http.StatusNotFound)
	case err != nil:
		log.Warn().Err(err).Msg("delete game state")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	word := strings.ToUpper(strings.TrimSpace(req.Word))

	var res stateRes
	s.withGame(r.Context(), func(sess *game.Session) {
		res.State = viewOf(sess.Engine().Puzzle().ID, sess.Select(r.Context(), word))
	})
	_ = json.NewEncoder(w).Encode(res)
}

// handleSubmit submits the selection. A submission that ends the game is
// recorded for the daily leaderboard (best effort).
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var res submitRes
	s.withGame(r.Context(), func(sess *game.Session) {
		st, out := sess.Submit(r.Context())
		res.State = viewOf(sess.Engine().Puzzle().ID, st)
		res.Outcome = out
		if out.OneAway {
			res.Hint = game.OneAwayMessage
		}
		if out.Applied && st.GameOver {
			s.recordResult(r.Context(), sess.Engine().Puzzle().ID, st)
		}
	})
	_ = json.NewEncoder(w).Encode(res)
}

func (s *Server) handleShareText(w http.ResponseWriter, r *http.Request) {
	var res shareTextRes
	s.withGame(r.Context(), func(sess *game.Session) {
		res.Text = sess.ShareText()
	})
	_ = json.NewEncoder(w).Encode(res)
}

// handleShare shares the result grid as a link when share links are
// enabled; otherwise (or if storing the link fails) it hands the text back
// for the client to copy, with the end of the "copied" window.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	var text string
	s.withGame(r.Context(), func(sess *game.Session) {
		text = sess.ShareText()
	})

	var sharer share.Sharer
	links := &linkSharer{store: s.store, base: s.cfg.PublicURL}
	if s.cfg.ShareLinks {
		sharer = links
	}
	copier := &responseCopier{}

	res := shareRes{Outcome: share.ShareOrCopy(r.Context(), sharer, copier, text)}
	switch res.Outcome {
	case share.OutcomeShared:
		res.URL = links.url
	case share.OutcomeCopied:
		var ack share.Ack
		ack.Mark(s.cfg.Now())
		until := ack.Until()
		res.Text = copier.text
		res.CopiedUntil = &until
	}
	_ = json.NewEncoder(w).Encode(res)
}

// handleShared serves a stored share link.
func (s *Server) handleShared(w http.ResponseWriter, r *http.Request) {
	text, found, err := s.store.Get(r.Context(), shareKeyPrefix+chi.URLParam(r, "code"))
	if err != nil {
		log.Warn().Err(err).Msg("load share link")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(shareTextRes{Text: text})
}

// recordResult stores a finished game for today's leaderboard.
func (s *Server) recordResult(ctx context.Context, puzzleID string, st game.State) {
	if s.daily == nil {
		return
	}
	res := daily.Result{
		SessionID: sessionID(ctx),
		Date:      daily.DateKey(s.cfg.Now()),
		PuzzleID:  puzzleID,
		Won:       st.GameWon,
		Mistakes:  st.Mistakes(),
		Guesses:   len(st.GuessHistory),
	}
	if err := s.daily.InsertResult(ctx, res); err != nil {
		log.Warn().Err(err).Str("session", res.SessionID).Msg("record daily result")
	}
}

// -----------------------------------------------------------------------------
// share targets

// linkSharer "shares" by storing the text under a short code.
type linkSharer struct {
	store store.Store
	base  string
	url   string
}

func (l *linkSharer) Share(ctx context.Context, text string) error {
	code := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	if err := l.store.Set(ctx, shareKeyPrefix+code, text); err != nil {
		return err
	}
	l.url = l.base + "/s/" + code
	return nil
}

// responseCopier hands the text back in the response body.
type responseCopier struct {
	text string
}

func (c *responseCopier) Copy(_ context.Context, text string) error {
	c.text = text
	return nil
}
