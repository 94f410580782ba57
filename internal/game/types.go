// internal/game/types.go
//
// Core type definitions for the Connections game engine.
// Defines:
//   - Guess:   one submitted selection and its outcome (append-only history).
//   - State:   the mutable root of a session, owned by the engine.
//   - Outcome: what a Submit call did, including the "one away" hint.
//   - Status:  coarse playing/won/lost view of a State.
//
// JSON field names are the persisted record layout; changing them orphans
// every saved game.

package game

import "github.com/robalobadob/connections/internal/puzzle"

const (
	// MaxMistakes is the number of incorrect submissions a player gets.
	MaxMistakes = 4
	// SelectionSize is how many words make up one guess.
	SelectionSize = puzzle.GroupSize
)

// Guess is one submitted selection. CategoryColor is set only when Correct.
type Guess struct {
	Words         []string     `json:"words"`
	Correct       bool         `json:"correct"`
	CategoryColor puzzle.Color `json:"categoryColor,omitempty"`
}

// State holds everything about one game session.
//
// Invariants maintained by the engine:
//   - SelectedWords has 0..4 entries, no duplicates, all drawn from RemainingWords.
//   - RemainingWords plus the words of SolvedCategories partition the puzzle's 16 words.
//   - MistakesRemaining is in [0,4]; 0 implies GameOver.
//   - GameWon implies GameOver and an empty RemainingWords.
type State struct {
	Categories        []puzzle.Category `json:"categories"`
	RemainingWords    []string          `json:"remainingWords"`
	SelectedWords     []string          `json:"selectedWords"`
	SolvedCategories  []puzzle.Category `json:"solvedCategories"`
	MistakesRemaining int               `json:"mistakesRemaining"`
	GameOver          bool              `json:"gameOver"`
	GameWon           bool              `json:"gameWon"`
	IsShuffling       bool              `json:"isShuffling"`
	GuessHistory      []Guess           `json:"guessHistory"`
}

// Status is the top-level state machine position.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Status reports the coarse state of the game.
func (s State) Status() Status {
	if !s.GameOver {
		return StatusPlaying
	}
	if s.GameWon {
		return StatusWon
	}
	return StatusLost
}

// IsSelected reports whether word is part of the current selection.
func (s State) IsSelected(word string) bool {
	return contains(s.SelectedWords, word)
}

// UnsolvedCategories returns the categories not yet matched, in puzzle order.
func (s State) UnsolvedCategories() []puzzle.Category {
	out := make([]puzzle.Category, 0, len(s.Categories))
	for _, c := range s.Categories {
		if !s.isSolved(c) {
			out = append(out, c)
		}
	}
	return out
}

// Mistakes is the number of incorrect submissions so far.
func (s State) Mistakes() int {
	return MaxMistakes - s.MistakesRemaining
}

func (s State) isSolved(c puzzle.Category) bool {
	for _, sc := range s.SolvedCategories {
		if sc.Name == c.Name {
			return true
		}
	}
	return false
}

// clone deep-copies every slice so that a returned State never shares
// backing arrays with the input.
func (s State) clone() State {
	out := s
	out.Categories = cloneCategories(s.Categories)
	out.RemainingWords = append([]string{}, s.RemainingWords...)
	out.SelectedWords = append([]string{}, s.SelectedWords...)
	out.SolvedCategories = cloneCategories(s.SolvedCategories)
	out.GuessHistory = make([]Guess, len(s.GuessHistory))
	for i, g := range s.GuessHistory {
		g.Words = append([]string(nil), g.Words...)
		out.GuessHistory[i] = g
	}
	return out
}

func cloneCategories(in []puzzle.Category) []puzzle.Category {
	out := make([]puzzle.Category, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

// Outcome describes the effect of one Submit call.
type Outcome struct {
	// Applied is false when the call was a no-op (wrong selection size,
	// shuffling, or the game is already over).
	Applied bool `json:"applied"`
	// Correct is true when the selection matched a category.
	Correct bool `json:"correct"`
	// Category is the matched category; set only when Correct.
	Category *puzzle.Category `json:"category,omitempty"`
	// OneAway is set on a miss that shares exactly three words with an
	// unsolved category.
	OneAway bool `json:"oneAway"`
}

// OneAwayMessage is the hint text shown when Outcome.OneAway is set.
const OneAwayMessage = "One away..."
