// internal/puzzle/types.go
//
// Static puzzle definitions.
// Defines:
//   - Color:    the fixed four-entry palette (yellow/green/blue/purple).
//   - Category: a themed group of exactly four words.
//   - Puzzle:   four categories, sixteen globally unique words.
//
// Puzzles are immutable once validated; the game engine only ever reads them.

package puzzle

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// CategoryCount is the number of categories in every puzzle.
	CategoryCount = 4
	// GroupSize is the number of words in every category.
	GroupSize = 4
)

// ErrInvalidPuzzle wraps every validation failure.
var ErrInvalidPuzzle = errors.New("invalid puzzle")

// Color is a category's palette entry. It drives both rendering and the
// glyphs of a shared result.
type Color string

const (
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
)

// UnknownGlyph renders a word or color that is not part of the palette.
const UnknownGlyph = "⬜"

// Valid reports whether c is one of the four palette colors.
func (c Color) Valid() bool {
	switch c {
	case ColorYellow, ColorGreen, ColorBlue, ColorPurple:
		return true
	}
	return false
}

// Glyph returns the emoji square used for c in shared results.
func (c Color) Glyph() string {
	switch c {
	case ColorYellow:
		return "🟨"
	case ColorGreen:
		return "🟩"
	case ColorBlue:
		return "🟦"
	case ColorPurple:
		return "🟪"
	}
	return UnknownGlyph
}

// Category is one group of four words.
type Category struct {
	Name  string   `json:"name"`
	Color Color    `json:"color"`
	Words []string `json:"words"`
}

// Has reports whether word belongs to the category.
func (c Category) Has(word string) bool {
	for _, w := range c.Words {
		if w == word {
			return true
		}
	}
	return false
}

// Equal compares name, color and word list (in order).
func (c Category) Equal(o Category) bool {
	if c.Name != o.Name || c.Color != o.Color || len(c.Words) != len(o.Words) {
		return false
	}
	for i := range c.Words {
		if c.Words[i] != o.Words[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy so callers can't alias the word slice.
func (c Category) Clone() Category {
	c.Words = append([]string(nil), c.Words...)
	return c
}

// Puzzle is the fixed definition of one game.
type Puzzle struct {
	ID         string     `json:"id"`
	Categories []Category `json:"categories"`
}

// Normalize upper-cases and trims every word and category name in place.
func (p *Puzzle) Normalize() {
	p.ID = strings.TrimSpace(p.ID)
	for i := range p.Categories {
		c := &p.Categories[i]
		c.Name = strings.TrimSpace(c.Name)
		c.Color = Color(strings.ToLower(strings.TrimSpace(string(c.Color))))
		for j, w := range c.Words {
			c.Words[j] = strings.ToUpper(strings.TrimSpace(w))
		}
	}
}

// Validate enforces the structural rules of a puzzle:
//   - exactly four categories with unique, non-empty names and palette colors;
//   - exactly four non-empty words per category;
//   - no word appears twice anywhere in the puzzle.
func (p Puzzle) Validate() error {
	if len(p.Categories) != CategoryCount {
		return fmt.Errorf("%w: want %d categories, got %d", ErrInvalidPuzzle, CategoryCount, len(p.Categories))
	}
	names := make(map[string]struct{}, CategoryCount)
	seen := make(map[string]string, CategoryCount*GroupSize)
	for _, c := range p.Categories {
		if c.Name == "" {
			return fmt.Errorf("%w: category with empty name", ErrInvalidPuzzle)
		}
		if _, dup := names[c.Name]; dup {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidPuzzle, c.Name)
		}
		names[c.Name] = struct{}{}
		if !c.Color.Valid() {
			return fmt.Errorf("%w: category %q has unknown color %q", ErrInvalidPuzzle, c.Name, c.Color)
		}
		if len(c.Words) != GroupSize {
			return fmt.Errorf("%w: category %q has %d words", ErrInvalidPuzzle, c.Name, len(c.Words))
		}
		for _, w := range c.Words {
			if w == "" {
				return fmt.Errorf("%w: category %q has an empty word", ErrInvalidPuzzle, c.Name)
			}
			if other, dup := seen[w]; dup {
				return fmt.Errorf("%w: word %q appears in %q and %q", ErrInvalidPuzzle, w, other, c.Name)
			}
			seen[w] = c.Name
		}
	}
	return nil
}

// Words flattens the category word lists in definition order.
func (p Puzzle) Words() []string {
	out := make([]string, 0, CategoryCount*GroupSize)
	for _, c := range p.Categories {
		out = append(out, c.Words...)
	}
	return out
}

// CategoryOf finds the category a word belongs to.
func (p Puzzle) CategoryOf(word string) (Category, bool) {
	return CategoryOf(p.Categories, word)
}

// CategoryOf searches an arbitrary category list for word.
func CategoryOf(cats []Category, word string) (Category, bool) {
	for _, c := range cats {
		if c.Has(word) {
			return c, true
		}
	}
	return Category{}, false
}

// SameCategories reports whether two category lists are identical, in order.
func SameCategories(a, b []Category) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
