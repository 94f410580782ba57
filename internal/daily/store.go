package daily

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/robalobadob/connections/internal/puzzle"
)

type Result struct {
	SessionID string `json:"sessionId"`
	Date      string `json:"date"`
	PuzzleID  string `json:"puzzleId"`
	Won       bool   `json:"won"`
	Mistakes  int    `json:"mistakes"`
	Guesses   int    `json:"guesses"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) AlreadyRecorded(ctx context.Context, sessionID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE session_id=? AND date=?",
		sessionID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records a finished game. Only the first result per session
// and date counts; later ones (after a reset) are ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(session_id, date, puzzle_id, won, mistakes, guesses)
		VALUES(?,?,?,?,?,?)`, r.SessionID, r.Date, r.PuzzleID, r.Won, r.Mistakes, r.Guesses,
	)
	return err
}

type LBRow struct {
	SessionID string `json:"sessionId"`
	Won       bool   `json:"won"`
	Mistakes  int    `json:"mistakes"`
	Guesses   int    `json:"guesses"`
}

// Leaderboard ranks a day's results: wins first, then fewer mistakes,
// fewer guesses, earlier finish.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, won, mistakes, guesses
		FROM daily_results
		WHERE date=?
		ORDER BY won DESC, mistakes ASC, guesses ASC, created_at ASC
		LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.SessionID, &r.Won, &r.Mistakes, &r.Guesses); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SchedulePuzzle pins p to date, replacing any earlier schedule.
// p must already be normalized and valid.
func (s *Store) SchedulePuzzle(ctx context.Context, date string, p puzzle.Puzzle) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scheduled_puzzles(date, puzzle) VALUES(?, ?)
		ON CONFLICT(date) DO UPDATE SET puzzle=excluded.puzzle`, date, string(b),
	)
	return err
}

func (s *Store) ScheduledPuzzle(ctx context.Context, date string) (puzzle.Puzzle, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT puzzle FROM scheduled_puzzles WHERE date=?", date).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return puzzle.Puzzle{}, false, nil
	}
	if err != nil {
		return puzzle.Puzzle{}, false, err
	}
	var p puzzle.Puzzle
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return puzzle.Puzzle{}, false, fmt.Errorf("decode scheduled puzzle %s: %w", date, err)
	}
	return p, true, nil
}
