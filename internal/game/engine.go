// internal/game/engine.go
//
// Core game engine for a single Connections puzzle.
// Responsibilities:
//   - Build fresh games from a fixed puzzle (flatten + Fisher–Yates shuffle).
//   - Toggle word selection (capped at four, ignored while shuffling).
//   - Validate submissions: exact category match, otherwise "one away"
//     detection and a mistake.
//   - Expose the shuffle as two synchronous phases; the caller owns the delay.
//   - Track state transitions: playing → won/lost.
//
// Notes:
//   - Every operation takes a State and returns a new one. The input is never
//     mutated, so callers can keep the previous value around.
//   - Invalid calls are no-ops, never errors.
//   - Terminal states (won/lost) only leave via Reset.

package game

import "github.com/robalobadob/connections/internal/puzzle"

// Engine applies the rules of one puzzle. It holds no game state itself.
type Engine struct {
	puzzle puzzle.Puzzle
	rand   Source
}

// NewEngine builds an engine for p. A nil src uses CryptoSource.
// p is expected to have passed puzzle.Validate.
func NewEngine(p puzzle.Puzzle, src Source) *Engine {
	if src == nil {
		src = CryptoSource{}
	}
	return &Engine{puzzle: p, rand: src}
}

// Puzzle returns the puzzle this engine plays.
func (e *Engine) Puzzle() puzzle.Puzzle { return e.puzzle }

// Initialize builds a fresh state: all sixteen words shuffled, four mistakes
// remaining, nothing selected, solved or guessed.
func (e *Engine) Initialize() State {
	return State{
		Categories:        cloneCategories(e.puzzle.Categories),
		RemainingWords:    shuffle(e.rand, e.puzzle.Words()),
		SelectedWords:     []string{},
		SolvedCategories:  []puzzle.Category{},
		MistakesRemaining: MaxMistakes,
		GuessHistory:      []Guess{},
	}
}

// Reset is Initialize under the name the UI uses. The old state is discarded.
func (e *Engine) Reset() State {
	return e.Initialize()
}

// Select toggles word in the selection.
//
// Rules:
//   - No-op while shuffling or after the game is over.
//   - A selected word is removed (toggle-off).
//   - An unselected word is appended unless four are already selected or the
//     word is not on the board.
func (e *Engine) Select(s State, word string) State {
	if s.IsShuffling || s.GameOver {
		return s
	}
	if s.IsSelected(word) {
		out := s.clone()
		out.SelectedWords = remove(out.SelectedWords, word)
		return out
	}
	if len(s.SelectedWords) >= SelectionSize || !contains(s.RemainingWords, word) {
		return s
	}
	out := s.clone()
	out.SelectedWords = append(out.SelectedWords, word)
	return out
}

// Submit evaluates the current selection.
//
// Preconditions: exactly four words selected, not shuffling, game not over.
// Otherwise it returns s unchanged with Outcome.Applied == false.
//
// Match: the selection's set equals some category's word set. The words leave
// the board, the category is appended to SolvedCategories and a correct Guess
// is recorded. An empty board wins the game.
//
// Miss: OneAway is computed against unsolved categories before anything else
// changes, then a mistake is spent and an incorrect Guess is recorded. Zero
// mistakes remaining loses the game.
//
// Whether a match occurred is decided once, up front; a matching submission
// never touches MistakesRemaining.
func (e *Engine) Submit(s State) (State, Outcome) {
	if len(s.SelectedWords) != SelectionSize || s.IsShuffling || s.GameOver {
		return s, Outcome{}
	}

	out := s.clone()
	guessed := append([]string(nil), s.SelectedWords...)
	out.SelectedWords = []string{}

	if cat, ok := matchCategory(s.Categories, guessed); ok {
		out.RemainingWords = without(out.RemainingWords, cat.Words)
		out.SolvedCategories = append(out.SolvedCategories, cat.Clone())
		out.GuessHistory = append(out.GuessHistory, Guess{
			Words:         guessed,
			Correct:       true,
			CategoryColor: cat.Color,
		})
		if len(out.RemainingWords) == 0 {
			out.GameOver, out.GameWon = true, true
		}
		matched := cat.Clone()
		return out, Outcome{Applied: true, Correct: true, Category: &matched}
	}

	oneAway := isOneAway(s.UnsolvedCategories(), guessed)
	if out.MistakesRemaining > 0 {
		out.MistakesRemaining--
	}
	out.GuessHistory = append(out.GuessHistory, Guess{Words: guessed})
	if out.MistakesRemaining == 0 {
		out.GameOver, out.GameWon = true, false
	}
	return out, Outcome{Applied: true, OneAway: oneAway}
}

// BeginShuffle is phase one of a shuffle: it raises IsShuffling and clears the
// selection. The caller waits for its animation, then calls CompleteShuffle.
func (e *Engine) BeginShuffle(s State) State {
	if s.IsShuffling || s.GameOver {
		return s
	}
	out := s.clone()
	out.IsShuffling = true
	out.SelectedWords = []string{}
	return out
}

// CompleteShuffle is phase two: a fresh permutation of the remaining words.
// No-op unless a shuffle is in progress.
func (e *Engine) CompleteShuffle(s State) State {
	if !s.IsShuffling {
		return s
	}
	out := s.clone()
	out.RemainingWords = shuffle(e.rand, out.RemainingWords)
	out.IsShuffling = false
	return out
}

// DeselectAll clears the selection unless a shuffle is in progress.
func (e *Engine) DeselectAll(s State) State {
	if s.IsShuffling || s.GameOver || len(s.SelectedWords) == 0 {
		return s
	}
	out := s.clone()
	out.SelectedWords = []string{}
	return out
}

// matchCategory finds the category whose word set equals selected.
// Categories are disjoint, so at most one can match.
func matchCategory(cats []puzzle.Category, selected []string) (puzzle.Category, bool) {
	for _, c := range cats {
		if sameSet(c.Words, selected) {
			return c, true
		}
	}
	return puzzle.Category{}, false
}

// isOneAway reports whether any of cats holds exactly three of selected.
func isOneAway(cats []puzzle.Category, selected []string) bool {
	for _, c := range cats {
		n := 0
		for _, w := range selected {
			if c.Has(w) {
				n++
			}
		}
		if n == SelectionSize-1 {
			return true
		}
	}
	return false
}

// sameSet is order-independent set equality of two word lists of equal length.
func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, w := range a {
		set[w] = struct{}{}
	}
	hit := make(map[string]struct{}, len(b))
	for _, w := range b {
		if _, ok := set[w]; !ok {
			return false
		}
		hit[w] = struct{}{}
	}
	return len(hit) == len(set)
}

func contains(list []string, word string) bool {
	for _, w := range list {
		if w == word {
			return true
		}
	}
	return false
}

func remove(list []string, word string) []string {
	out := make([]string, 0, len(list))
	for _, w := range list {
		if w != word {
			out = append(out, w)
		}
	}
	return out
}

// without returns list minus every entry of drop, preserving order.
func without(list, drop []string) []string {
	out := make([]string, 0, len(list))
	for _, w := range list {
		if !contains(drop, w) {
			out = append(out, w)
		}
	}
	return out
}
