// Package voice wraps a speech recognizer as a single-shot input source.
package voice

import (
	"context"
	"errors"
	"sync"
	"time"
)

// IndicatorTimeout dismisses the listening indicator if the recognizer
// never reports back.
const IndicatorTimeout = 10 * time.Second

// Provider error codes.
const (
	CodeNoSpeech     = "no-speech"
	CodeAudioCapture = "audio-capture"
	CodeNotAllowed   = "not-allowed"
	CodeNetwork      = "network"
)

// ErrBusy is returned when an attempt is already in progress.
var ErrBusy = errors.New("voice: recognition already in progress")

// ErrorMessage maps a provider error code to the text shown to the user.
func ErrorMessage(code string) string {
	switch code {
	case CodeNoSpeech:
		return "No speech detected. Please try again."
	case CodeAudioCapture:
		return "Microphone not accessible. Please check permissions."
	case CodeNotAllowed:
		return "Microphone access denied. Please allow microphone access."
	case CodeNetwork:
		return "Network error. Please check your connection."
	default:
		return "Sorry, I couldn't hear you. Please try again."
	}
}

// EventKind enumerates recognizer callbacks.
type EventKind int

const (
	EventStart EventKind = iota
	EventResult
	EventError
	EventEnd
)

// Event is one recognizer callback.
type Event struct {
	Kind       EventKind
	Transcript string
	Code       string
}

// Recognizer starts one recognition attempt and reports its events on the
// returned channel, closing it when the attempt is over.
type Recognizer interface {
	Start(ctx context.Context) (<-chan Event, error)
}

// UI is the part of the client the adapter drives.
type UI interface {
	ShowListening()
	HideListening()
	// SetInput places the transcript in the input for the user to send.
	SetInput(text string)
	ShowError(message string)
}

// Adapter allows one recognition attempt at a time.
type Adapter struct {
	recognizer Recognizer
	ui         UI
	timeout    time.Duration

	mu     sync.Mutex
	active bool
}

// NewAdapter returns an adapter. A zero timeout uses IndicatorTimeout.
func NewAdapter(recognizer Recognizer, ui UI, timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = IndicatorTimeout
	}
	return &Adapter{recognizer: recognizer, ui: ui, timeout: timeout}
}

// Active reports whether an attempt is outstanding.
func (a *Adapter) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// Listen runs one attempt to completion. A call made while another is in
// progress does nothing and returns ErrBusy. At most one error message is
// shown per attempt, and the transcript is never submitted on the user's
// behalf.
func (a *Adapter) Listen(ctx context.Context) error {
	a.mu.Lock()
	if a.active {
		a.mu.Unlock()
		return ErrBusy
	}
	a.active = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.active = false
		a.mu.Unlock()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := a.recognizer.Start(ctx)
	if err != nil {
		a.ui.ShowError(errorText(err))
		return err
	}

	timer := time.NewTimer(a.timeout)
	defer timer.Stop()

	errorShown := false
	for {
		select {
		case <-ctx.Done():
			a.ui.HideListening()
			return ctx.Err()
		case <-timer.C:
			a.ui.HideListening()
			return nil
		case ev, ok := <-events:
			if !ok {
				a.ui.HideListening()
				return nil
			}
			switch ev.Kind {
			case EventStart:
				a.ui.ShowListening()
			case EventResult:
				a.ui.HideListening()
				a.ui.SetInput(ev.Transcript)
			case EventError:
				a.ui.HideListening()
				if !errorShown {
					errorShown = true
					a.ui.ShowError(ErrorMessage(ev.Code))
				}
			case EventEnd:
				a.ui.HideListening()
				return nil
			}
		}
	}
}

func errorText(err error) string {
	if errors.Is(err, ErrUnsupported) {
		return unsupportedMessage
	}
	return ErrorMessage("")
}
