// internal/share/share.go
//
// Share-or-copy for finished puzzle results.
// Responsibilities:
//   - Try the native share target first.
//   - Fall back to copying when sharing is unavailable or was cancelled.
//   - Track the short "copied" acknowledgment window shown to the player.
//
// Failures never propagate: a failed copy is logged and reported as
// OutcomeFailed so the caller simply doesn't show the acknowledgment.

package share

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	// ErrUnavailable means the share target does not exist in this context.
	ErrUnavailable = errors.New("share: unavailable")
	// ErrCancelled means the player dismissed the share sheet.
	ErrCancelled = errors.New("share: cancelled")
)

// AckWindow is how long the "copied" acknowledgment stays visible.
const AckWindow = 2 * time.Second

// Outcome is the result of ShareOrCopy.
type Outcome string

const (
	OutcomeShared Outcome = "shared"
	OutcomeCopied Outcome = "copied"
	OutcomeFailed Outcome = "failed"
)

// Sharer is a native share target.
type Sharer interface {
	Share(ctx context.Context, text string) error
}

// Copier is a clipboard-like destination.
type Copier interface {
	Copy(ctx context.Context, text string) error
}

// ShareOrCopy shares text, falling back to copying it.
//
// A nil sharer is treated as unavailable. Any share error falls back to the
// copier; ErrUnavailable and ErrCancelled are expected and not logged.
func ShareOrCopy(ctx context.Context, sharer Sharer, copier Copier, text string) Outcome {
	if sharer != nil {
		err := sharer.Share(ctx, text)
		if err == nil {
			return OutcomeShared
		}
		if !errors.Is(err, ErrUnavailable) && !errors.Is(err, ErrCancelled) {
			log.Warn().Err(err).Msg("share failed, falling back to copy")
		}
	}
	if copier == nil {
		return OutcomeFailed
	}
	if err := copier.Copy(ctx, text); err != nil {
		log.Warn().Err(err).Msg("copy share text")
		return OutcomeFailed
	}
	return OutcomeCopied
}

// Ack tracks the "copied" acknowledgment. The zero value is inactive.
type Ack struct {
	until time.Time
}

// Mark starts (or restarts) the window at now.
func (a *Ack) Mark(now time.Time) {
	a.until = now.Add(AckWindow)
}

// Active reports whether the acknowledgment should still be shown at now.
func (a *Ack) Active(now time.Time) bool {
	return now.Before(a.until)
}

// Until returns when the acknowledgment expires (zero if never marked).
func (a *Ack) Until() time.Time {
	return a.until
}
