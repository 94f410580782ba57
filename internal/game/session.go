// internal/game/session.go
//
// Write-through session wrapper around the Engine.
// Responsibilities:
//   - Restore the saved game under a storage key, or start a fresh one.
//   - Apply engine operations to the owned State.
//   - Save the resulting State after every operation, before returning.
//
// A Session is owned by a single caller at a time; it is not safe for
// concurrent use. Storage failures are logged and swallowed: the game keeps
// running from memory and the next successful write re-synchronizes.

package game

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Storage is the key/value slot a Session persists into.
// Get reports found == false when nothing is stored under key.
type Storage interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Session binds one State to an Engine and a Storage slot.
type Session struct {
	engine *Engine
	store  Storage
	key    string
	state  State
}

// Open resumes the game saved under key, or initializes (and saves) a new one
// when nothing usable is stored. It never fails: read errors and malformed
// records both fall back to a fresh game.
func Open(ctx context.Context, eng *Engine, store Storage, key string) *Session {
	s := &Session{engine: eng, store: store, key: key}

	data, found, err := store.Get(ctx, key)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("key", key).Msg("load game state")
	case found:
		if st, ok := eng.Restore(data); ok {
			s.state = st
			return s
		}
		log.Debug().Str("key", key).Msg("discarding unusable saved game")
	}

	s.state = eng.Initialize()
	s.persist(ctx)
	return s
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Engine returns the engine the session plays with.
func (s *Session) Engine() *Engine { return s.engine }

// Select toggles word in the selection.
func (s *Session) Select(ctx context.Context, word string) State {
	return s.apply(ctx, s.engine.Select(s.state, word))
}

// Submit evaluates the current selection.
func (s *Session) Submit(ctx context.Context) (State, Outcome) {
	next, out := s.engine.Submit(s.state)
	return s.apply(ctx, next), out
}

// BeginShuffle starts phase one of a shuffle.
func (s *Session) BeginShuffle(ctx context.Context) State {
	return s.apply(ctx, s.engine.BeginShuffle(s.state))
}

// CompleteShuffle finishes a shuffle started by BeginShuffle.
func (s *Session) CompleteShuffle(ctx context.Context) State {
	return s.apply(ctx, s.engine.CompleteShuffle(s.state))
}

// DeselectAll clears the selection.
func (s *Session) DeselectAll(ctx context.Context) State {
	return s.apply(ctx, s.engine.DeselectAll(s.state))
}

// Reset replaces the game with a fresh one, overwriting the saved copy.
func (s *Session) Reset(ctx context.Context) State {
	return s.apply(ctx, s.engine.Reset())
}

// ShareText renders the current state as a shareable result.
func (s *Session) ShareText() string {
	return s.engine.ShareText(s.state)
}

func (s *Session) apply(ctx context.Context, next State) State {
	s.state = next
	s.persist(ctx)
	return s.state
}

func (s *Session) persist(ctx context.Context) {
	data, err := Encode(s.state)
	if err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("encode game state")
		return
	}
	if err := s.store.Set(ctx, s.key, data); err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("persist game state")
	}
}
