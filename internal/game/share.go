package game

import (
	"strings"

	"github.com/robalobadob/connections/internal/puzzle"
)

// ShareTitle is the first word of every shared result.
const ShareTitle = "Connections"

// ShareText renders s as a shareable emoji grid: one header line, then one
// line of four glyphs per guess.
//
// A correct guess is four copies of the matched category's glyph. An
// incorrect guess shows, word by word, the glyph of the category the word
// really belongs to, solved or not. Words outside the puzzle render as ⬜.
//
// puzzleID, when non-empty, is appended to the header ("Connections Puzzle #3").
func ShareText(s State, puzzleID string) string {
	var b strings.Builder
	b.WriteString(ShareTitle)
	if puzzleID != "" {
		b.WriteString(" Puzzle #")
		b.WriteString(puzzleID)
	}
	for _, g := range s.GuessHistory {
		b.WriteByte('\n')
		b.WriteString(guessLine(s.Categories, g))
	}
	return b.String()
}

// ShareText renders s with this engine's puzzle id in the header.
func (e *Engine) ShareText(s State) string {
	return ShareText(s, e.puzzle.ID)
}

func guessLine(cats []puzzle.Category, g Guess) string {
	var b strings.Builder
	if g.Correct {
		for range g.Words {
			b.WriteString(g.CategoryColor.Glyph())
		}
		return b.String()
	}
	for _, w := range g.Words {
		c, ok := puzzle.CategoryOf(cats, w)
		if !ok {
			b.WriteString(puzzle.UnknownGlyph)
			continue
		}
		b.WriteString(c.Color.Glyph())
	}
	return b.String()
}
