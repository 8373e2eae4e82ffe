package render

import (
	"context"
	"sync"
	"time"
)

// Stream draws fragments as they arrive, each formatted on its own, ahead of
// a trailing cursor. Fragments are drawn in call order.
type Stream struct {
	mu      sync.Mutex
	surface Surface
	linger  time.Duration
	done    bool
}

// NewStream shows the cursor and returns a renderer ready for fragments.
func NewStream(surface Surface, linger time.Duration) *Stream {
	surface.ShowCursor()
	return &Stream{surface: surface, linger: linger}
}

// Add draws one fragment immediately. Empty fragments and fragments after
// Complete are ignored.
func (s *Stream) Add(fragment string) {
	if fragment == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	for _, node := range Parse(Format(fragment)) {
		if node.Markup {
			s.surface.AppendMarkup(node.Text)
		} else {
			s.surface.AppendText(node.Text)
		}
	}
}

// Complete removes the cursor after the linger delay. Later calls are no-ops.
func (s *Stream) Complete(ctx context.Context) error {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return nil
	}
	s.done = true
	s.mu.Unlock()

	defer s.surface.HideCursor()
	return linger(ctx, s.linger)
}
