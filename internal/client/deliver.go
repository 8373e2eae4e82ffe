package client

import (
	"context"
	"errors"
	"time"

	"github.com/zhouzirui/smartchat/internal/analysis/intent"
	"github.com/zhouzirui/smartchat/internal/render"
)

// Delivery describes how a reply reached the surface.
type Delivery struct {
	Text     string
	Streamed bool
}

// Deliver renders the reply to message on surface. It streams when it can
// and falls back to the buffered endpoint plus the typewriter when the stream
// cannot be established.
func (c *Client) Deliver(ctx context.Context, surface render.Surface, sessionID, message string, linger time.Duration) (Delivery, error) {
	stream := render.NewStream(surface, linger)
	text, err := c.StreamChat(ctx, sessionID, message, stream.Add)
	if err == nil {
		return Delivery{Text: text, Streamed: true}, stream.Complete(ctx)
	}
	if !errors.Is(err, ErrStreamUnavailable) {
		_ = stream.Complete(context.WithoutCancel(ctx))
		return Delivery{}, err
	}
	// 流式不可用，走普通接口
	surface.HideCursor()

	text, err = c.Chat(ctx, sessionID, message)
	if err != nil {
		return Delivery{}, err
	}
	interval := render.DetailedInterval
	if intent.Classify(message) == intent.Quick {
		interval = render.QuickInterval
	}
	return Delivery{Text: text}, render.NewTypewriter(surface, interval, linger).Play(ctx, text)
}
