package game

import (
	"encoding/json"

	"github.com/robalobadob/connections/internal/puzzle"
)

// Encode serializes s as the persisted record.
func Encode(s State) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Restore decodes a persisted record for this engine's puzzle.
//
// ok is false when data is empty, is not valid JSON, or describes a state
// that could not have been produced by this engine (different categories,
// broken word partition, out-of-range counters, a history that disagrees
// with them). Callers treat that as "nothing saved" and fall back to
// Initialize.
//
// The record is returned as saved. A record saved mid-shuffle stays
// IsShuffling until the caller runs CompleteShuffle.
func (e *Engine) Restore(data string) (State, bool) {
	if data == "" {
		return State{}, false
	}
	var s State
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return State{}, false
	}
	s = normalizeSlices(s)
	if !e.consistent(s) {
		return State{}, false
	}
	return s, true
}

func normalizeSlices(s State) State {
	if s.RemainingWords == nil {
		s.RemainingWords = []string{}
	}
	if s.SelectedWords == nil {
		s.SelectedWords = []string{}
	}
	if s.SolvedCategories == nil {
		s.SolvedCategories = []puzzle.Category{}
	}
	if s.GuessHistory == nil {
		s.GuessHistory = []Guess{}
	}
	return s
}

// consistent checks every State invariant against the engine's puzzle.
func (e *Engine) consistent(s State) bool {
	if !puzzle.SameCategories(s.Categories, e.puzzle.Categories) {
		return false
	}
	if s.MistakesRemaining < 0 || s.MistakesRemaining > MaxMistakes {
		return false
	}

	// RemainingWords + solved words must partition the universe.
	universe := make(map[string]bool, len(e.puzzle.Words()))
	for _, w := range e.puzzle.Words() {
		universe[w] = false
	}
	claim := func(w string) bool {
		used, ok := universe[w]
		if !ok || used {
			return false
		}
		universe[w] = true
		return true
	}
	for _, w := range s.RemainingWords {
		if !claim(w) {
			return false
		}
	}
	for _, sc := range s.SolvedCategories {
		c, ok := e.puzzle.CategoryOf(firstWord(sc))
		if !ok || !c.Equal(sc) {
			return false
		}
		for _, w := range sc.Words {
			if !claim(w) {
				return false
			}
		}
	}
	for _, used := range universe {
		if !used {
			return false
		}
	}

	if len(s.SelectedWords) > SelectionSize {
		return false
	}
	seen := make(map[string]struct{}, len(s.SelectedWords))
	for _, w := range s.SelectedWords {
		if _, dup := seen[w]; dup || !contains(s.RemainingWords, w) {
			return false
		}
		seen[w] = struct{}{}
	}

	won := len(s.RemainingWords) == 0
	lost := s.MistakesRemaining == 0
	if s.GameOver != (won || lost) || s.GameWon != won {
		return false
	}

	// The history must replay to the counters: one miss per spent mistake,
	// one hit per solved category, in solve order.
	misses, hits := 0, 0
	for _, g := range s.GuessHistory {
		if len(g.Words) != SelectionSize {
			return false
		}
		if g.Correct != g.CategoryColor.Valid() {
			return false
		}
		if !g.Correct {
			misses++
			continue
		}
		if hits >= len(s.SolvedCategories) {
			return false
		}
		sc := s.SolvedCategories[hits]
		if g.CategoryColor != sc.Color || !sameSet(g.Words, sc.Words) {
			return false
		}
		hits++
	}
	return misses == MaxMistakes-s.MistakesRemaining && hits == len(s.SolvedCategories)
}

func firstWord(c puzzle.Category) string {
	if len(c.Words) == 0 {
		return ""
	}
	return c.Words[0]
}
