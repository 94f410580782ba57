package daily

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/connections/internal/puzzle"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// PuzzleIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % n.
func PuzzleIndex(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	dk := DateKey(date)
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(dk))
	sum := h.Sum(nil)
	// take first 8 bytes to uint64 for modulus distribution
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Resolve picks the puzzle for the day containing now: a scheduled puzzle if
// an admin pinned one, otherwise the library entry chosen by PuzzleIndex.
// A failing lookup is logged and falls through to the library.
func Resolve(ctx context.Context, st *Store, library []puzzle.Puzzle, salt string, now time.Time) puzzle.Puzzle {
	date := DateKey(now)
	if st != nil {
		p, ok, err := st.ScheduledPuzzle(ctx, date)
		if err != nil {
			log.Warn().Err(err).Str("date", date).Msg("load scheduled puzzle")
		} else if ok {
			return p
		}
	}
	if len(library) == 0 {
		return puzzle.Puzzle{}
	}
	return library[PuzzleIndex(now, salt, len(library))]
}
