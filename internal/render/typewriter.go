package render

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultCursorLinger is how long the cursor stays after the last character.
	DefaultCursorLinger = time.Second
	QuickInterval       = 2 * time.Millisecond
	DetailedInterval    = 3 * time.Millisecond
)

// Typewriter reveals a complete reply one character at a time.
type Typewriter struct {
	surface  Surface
	interval time.Duration
	linger   time.Duration
}

// NewTypewriter paces text nodes at one character per interval. A zero
// interval reveals as fast as the surface accepts.
func NewTypewriter(surface Surface, interval, linger time.Duration) *Typewriter {
	return &Typewriter{surface: surface, interval: interval, linger: linger}
}

// Play formats text and reveals it. It returns once the cursor is gone, or
// early with ctx's error, in which case the cursor is removed immediately
// and the remainder is not drawn.
func (t *Typewriter) Play(ctx context.Context, text string) error {
	limit := rate.Inf
	if t.interval > 0 {
		limit = rate.Every(t.interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	t.surface.ShowCursor()
	defer t.surface.HideCursor()

	for _, node := range Parse(Format(text)) {
		if node.Markup {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			t.surface.AppendMarkup(node.Text)
			continue
		}
		for _, r := range node.Text {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			t.surface.AppendText(string(r))
		}
	}

	return linger(ctx, t.linger)
}

func linger(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
