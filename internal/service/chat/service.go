package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/zhouzirui/smartchat/internal/model/chat"
)

var (
	ErrSessionRequired = errors.New("session id is required")
	ErrSessionReset    = errors.New("session was reset")
)

const (
	DefaultHistoryLimit = 20
	DefaultContextLimit = 10
)

// Options bounds the per-session buffers.
type Options struct {
	HistoryLimit int
	ContextLimit int
}

type sessionState struct {
	mu         sync.Mutex
	transcript []chat.Turn
	images     []chat.ImageNote
}

// Ticket identifies a turn opened with BeginTurn. It stays bound to the
// session instance that existed when the turn began.
type Ticket struct {
	SessionID string
	state     *sessionState
}

// Snapshot is the read-only view of a session handed to the model.
type Snapshot struct {
	Context    []chat.Turn
	ImageNotes []chat.ImageNote
}

// Service holds conversation state in process memory. Sessions are created
// lazily on first reference and live until reset or process exit.
type Service struct {
	mu           sync.RWMutex
	sessions     map[string]*sessionState
	historyLimit int
	contextLimit int
}

// NewService bootstraps the in-memory session store.
func NewService(opts Options) *Service {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.ContextLimit <= 0 {
		opts.ContextLimit = DefaultContextLimit
	}
	return &Service{
		sessions:     make(map[string]*sessionState),
		historyLimit: opts.HistoryLimit,
		contextLimit: opts.ContextLimit,
	}
}

func (s *Service) lookup(sessionID string) (*sessionState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sessionID]
	return state, ok
}

func (s *Service) ensure(sessionID string) (*sessionState, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}
	if state, ok := s.lookup(sessionID); ok {
		return state, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.sessions[sessionID]; ok {
		return state, nil
	}
	state := &sessionState{
		transcript: make([]chat.Turn, 0, s.historyLimit),
		images:     make([]chat.ImageNote, 0, 4),
	}
	s.sessions[sessionID] = state
	return state, nil
}

// Snapshot returns the most recent prior turns and all image notes,
// creating the session if it has not been seen before.
func (s *Service) Snapshot(_ context.Context, sessionID string) (Snapshot, error) {
	state, err := s.ensure(sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	start := 0
	if len(state.transcript) > s.contextLimit {
		start = len(state.transcript) - s.contextLimit
	}
	return Snapshot{
		Context:    append([]chat.Turn(nil), state.transcript[start:]...),
		ImageNotes: append([]chat.ImageNote(nil), state.images...),
	}, nil
}

// BeginTurn records the user's side of a turn.
func (s *Service) BeginTurn(_ context.Context, sessionID, content string) (Ticket, error) {
	state, err := s.ensure(sessionID)
	if err != nil {
		return Ticket{}, err
	}

	state.mu.Lock()
	state.transcript = s.appendBounded(state.transcript, chat.Turn{Role: chat.RoleUser, Content: content})
	state.mu.Unlock()

	return Ticket{SessionID: sessionID, state: state}, nil
}

// CompleteTurn records the assistant reply for a turn. If the session was
// reset after BeginTurn the reply is dropped and ErrSessionReset returned.
func (s *Service) CompleteTurn(_ context.Context, ticket Ticket, reply string) error {
	current, ok := s.lookup(ticket.SessionID)
	if !ok || current != ticket.state {
		return ErrSessionReset
	}

	current.mu.Lock()
	current.transcript = s.appendBounded(current.transcript, chat.Turn{Role: chat.RoleAssistant, Content: reply})
	current.mu.Unlock()
	return nil
}

func (s *Service) appendBounded(turns []chat.Turn, turn chat.Turn) []chat.Turn {
	turns = append(turns, turn)
	if len(turns) <= s.historyLimit {
		return turns
	}
	trimmed := make([]chat.Turn, s.historyLimit, s.historyLimit+1)
	copy(trimmed, turns[len(turns)-s.historyLimit:])
	return trimmed
}

// Transcript returns a copy of the session transcript. Unknown sessions
// yield an empty transcript and are not created.
func (s *Service) Transcript(_ context.Context, sessionID string) []chat.Turn {
	state, ok := s.lookup(sessionID)
	if !ok {
		return []chat.Turn{}
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return append([]chat.Turn{}, state.transcript...)
}

// AddImageNote appends an OCR result to the session image log.
func (s *Service) AddImageNote(_ context.Context, sessionID string, note chat.ImageNote) error {
	state, err := s.ensure(sessionID)
	if err != nil {
		return err
	}
	state.mu.Lock()
	state.images = append(state.images, note)
	state.mu.Unlock()
	return nil
}

// ImageNotes returns a copy of the session image log.
func (s *Service) ImageNotes(_ context.Context, sessionID string) []chat.ImageNote {
	state, ok := s.lookup(sessionID)
	if !ok {
		return []chat.ImageNote{}
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return append([]chat.ImageNote{}, state.images...)
}

// Reset forgets a single session.
func (s *Service) Reset(_ context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// ResetAll forgets every session.
func (s *Service) ResetAll(_ context.Context) {
	s.mu.Lock()
	s.sessions = make(map[string]*sessionState)
	s.mu.Unlock()
}

