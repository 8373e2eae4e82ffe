package voice

import (
	"context"
	"errors"
)

const unsupportedMessage = "Speech recognition is not supported here. Please type your message."

// ErrUnsupported is returned by recognizers on hosts without speech input.
var ErrUnsupported = errors.New("voice: speech recognition not supported")

// Unsupported is the recognizer for hosts with no speech facility.
type Unsupported struct{}

func (Unsupported) Start(context.Context) (<-chan Event, error) {
	return nil, ErrUnsupported
}
