// internal/puzzle/library.go
//
// Puzzle library management.
//
// Responsibilities:
//   - Load the puzzle library from an environment-provided file or fall back
//     to the embedded default (assets/puzzles.json).
//   - Normalize and validate each puzzle; invalid entries are skipped with a
//     warning so a single bad puzzle cannot take the server down.
//   - Supply lookups: All, Find, Stats.
//
// Environment variables:
//   PUZZLES_FILE=/path/to/puzzles.json   (JSON array of puzzles)
//
// Initialization is run once (sync.Once).

package puzzle

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connections/assets"
)

var (
	initOnce   sync.Once
	library    []Puzzle
	initialErr error
)

// Init loads the puzzle library exactly once.
// Returns an error if no valid puzzle could be loaded.
func Init() error {
	initOnce.Do(func() {
		raw := assets.Puzzles()
		if path := os.Getenv("PUZZLES_FILE"); path != "" {
			b, err := os.ReadFile(path)
			if err != nil {
				initialErr = fmt.Errorf("read %s: %w", path, err)
				return
			}
			raw = b
		}
		library, initialErr = Parse(raw)
	})
	return initialErr
}

// Parse decodes a JSON array of puzzles, normalizing each and dropping the
// ones that fail validation. Puzzles without an id get their 1-based index.
func Parse(raw []byte) ([]Puzzle, error) {
	var in []Puzzle
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("decode puzzles: %w", err)
	}
	out := make([]Puzzle, 0, len(in))
	ids := make(map[string]struct{}, len(in))
	for i, p := range in {
		p.Normalize()
		if p.ID == "" {
			p.ID = fmt.Sprint(i + 1)
		}
		if _, dup := ids[p.ID]; dup {
			log.Warn().Str("puzzle", p.ID).Msg("duplicate puzzle id, skipping")
			continue
		}
		if err := p.Validate(); err != nil {
			log.Warn().Err(err).Str("puzzle", p.ID).Msg("skipping invalid puzzle")
			continue
		}
		ids[p.ID] = struct{}{}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, errors.New("puzzle: library is empty")
	}
	return out, nil
}

// All returns the loaded library in file order.
func All() []Puzzle {
	return library
}

// Find looks up a puzzle by id in lib.
func Find(lib []Puzzle, id string) (Puzzle, bool) {
	for _, p := range lib {
		if p.ID == id {
			return p, true
		}
	}
	return Puzzle{}, false
}

// Stats returns the number of loaded puzzles.
func Stats() int {
	return len(library)
}
