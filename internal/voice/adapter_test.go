package voice

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUI struct {
	mu        sync.Mutex
	listening bool
	shows     int
	input     string
	errors    []string
}

func (u *fakeUI) ShowListening() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.listening = true
	u.shows++
}

func (u *fakeUI) HideListening() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.listening = false
}

func (u *fakeUI) SetInput(text string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.input = text
}

func (u *fakeUI) ShowError(message string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.errors = append(u.errors, message)
}

// scripted replays events; with hold set it keeps the channel open.
type scripted struct {
	events []Event
	hold   bool
	starts atomic.Int32
}

func (s *scripted) Start(ctx context.Context) (<-chan Event, error) {
	s.starts.Add(1)
	ch := make(chan Event, len(s.events))
	for _, ev := range s.events {
		ch <- ev
	}
	if !s.hold {
		close(ch)
	}
	return ch, nil
}

func TestListenResultFillsInput(t *testing.T) {
	ui := &fakeUI{}
	rec := &scripted{events: []Event{
		{Kind: EventStart},
		{Kind: EventResult, Transcript: "what is the weather"},
		{Kind: EventEnd},
	}}

	require.NoError(t, NewAdapter(rec, ui, time.Second).Listen(context.Background()))
	assert.Equal(t, "what is the weather", ui.input)
	assert.False(t, ui.listening)
	assert.Empty(t, ui.errors)
}

func TestListenShowsOneErrorPerAttempt(t *testing.T) {
	ui := &fakeUI{}
	rec := &scripted{events: []Event{
		{Kind: EventStart},
		{Kind: EventError, Code: CodeNoSpeech},
		{Kind: EventError, Code: CodeNetwork},
		{Kind: EventEnd},
	}}

	require.NoError(t, NewAdapter(rec, ui, time.Second).Listen(context.Background()))
	assert.Equal(t, []string{"No speech detected. Please try again."}, ui.errors)
	assert.False(t, ui.listening)
}

func TestListenRestartDoesNotRepeatError(t *testing.T) {
	ui := &fakeUI{}
	rec := &scripted{events: []Event{
		{Kind: EventStart},
		{Kind: EventError, Code: CodeAudioCapture},
		{Kind: EventStart},
		{Kind: EventError, Code: CodeNotAllowed},
		{Kind: EventEnd},
	}}
	adapter := NewAdapter(rec, ui, time.Second)

	require.NoError(t, adapter.Listen(context.Background()))
	assert.Equal(t, []string{"Microphone not accessible. Please check permissions."}, ui.errors)

	// a new attempt reports again
	rec.events = []Event{{Kind: EventStart}, {Kind: EventError, Code: CodeNetwork}, {Kind: EventEnd}}
	require.NoError(t, adapter.Listen(context.Background()))
	assert.Equal(t, []string{
		"Microphone not accessible. Please check permissions.",
		"Network error. Please check your connection.",
	}, ui.errors)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "Microphone not accessible. Please check permissions.", ErrorMessage(CodeAudioCapture))
	assert.Equal(t, "Microphone access denied. Please allow microphone access.", ErrorMessage(CodeNotAllowed))
	assert.Equal(t, "Network error. Please check your connection.", ErrorMessage(CodeNetwork))
	assert.Equal(t, "Sorry, I couldn't hear you. Please try again.", ErrorMessage("aborted"))
}

func TestListenIndicatorTimeout(t *testing.T) {
	ui := &fakeUI{}
	rec := &scripted{events: []Event{{Kind: EventStart}}, hold: true}

	start := time.Now()
	require.NoError(t, NewAdapter(rec, ui, 20*time.Millisecond).Listen(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, 1, ui.shows)
	assert.False(t, ui.listening)
}

func TestSecondActivationIsNoOp(t *testing.T) {
	ui := &fakeUI{}
	rec := &scripted{events: []Event{{Kind: EventStart}}, hold: true}
	adapter := NewAdapter(rec, ui, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- adapter.Listen(ctx) }()

	require.Eventually(t, func() bool {
		ui.mu.Lock()
		defer ui.mu.Unlock()
		return ui.listening
	}, time.Second, time.Millisecond)
	assert.ErrorIs(t, adapter.Listen(context.Background()), ErrBusy)
	assert.Equal(t, int32(1), rec.starts.Load())

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.False(t, adapter.Active())
}

func TestUnsupportedRecognizer(t *testing.T) {
	ui := &fakeUI{}
	err := NewAdapter(Unsupported{}, ui, 0).Listen(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Equal(t, []string{unsupportedMessage}, ui.errors)
}
