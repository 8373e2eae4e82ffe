// Package assistant routes a user message to a reset, a canned reply or the
// model, and keeps the session transcript in step with whatever was sent.
package assistant

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/zhouzirui/smartchat/internal/analysis/intent"
	"github.com/zhouzirui/smartchat/internal/service/ai"
	chatservice "github.com/zhouzirui/smartchat/internal/service/chat"
)

const (
	ResetConfirmation    = "Chat and image history cleared successfully!"
	EmptyReplyText       = "I'm sorry, I couldn't generate a response. Please try again."
	UnavailableReplyText = "I'm having trouble connecting to my AI brain. Please check that the model server is running."
	StreamFailureText    = "Streaming failed. Please try again."
)

var (
	// ErrMessageRequired is returned when the session id or message is blank.
	ErrMessageRequired = errors.New("session ID and message are required")
	// ErrStreamUnavailable means the upstream stream could not be opened.
	// Nothing was recorded; the caller should retry on the buffered path.
	ErrStreamUnavailable = errors.New("model stream unavailable")
)

// Source says where a reply came from.
type Source string

const (
	SourceReset    Source = "reset"
	SourceCanned   Source = "canned"
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Reply is the outcome of one buffered exchange.
type Reply struct {
	Text   string
	Source Source
	Kind   intent.Kind
}

// Generator produces model replies.
type Generator interface {
	Generate(ctx context.Context, req ai.Request) (string, error)
	Stream(ctx context.Context, req ai.Request) (ai.TokenStream, error)
}

// Sink receives streamed frames. A returned error means the client is gone.
type Sink interface {
	Chunk(content string) error
	Complete(full string) error
	Error(message string) error
}

// Service handles chat turns for all sessions.
type Service struct {
	sessions  *chatservice.Service
	generator Generator
	replier   *intent.Replier
	logger    *zap.Logger
}

// NewService wires the router. A nil replier uses the default random source.
func NewService(sessions *chatservice.Service, generator Generator, replier *intent.Replier, logger *zap.Logger) *Service {
	if replier == nil {
		replier = intent.NewReplier(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sessions:  sessions,
		generator: generator,
		replier:   replier,
		logger:    logger,
	}
}

type turn struct {
	sessionID string
	message   string
	kind      intent.Kind
}

func (s *Service) prepare(sessionID, message string) (turn, error) {
	sessionID = strings.TrimSpace(sessionID)
	message = strings.TrimSpace(message)
	if sessionID == "" || message == "" {
		return turn{}, ErrMessageRequired
	}
	return turn{sessionID: sessionID, message: message, kind: intent.Classify(message)}, nil
}

// shortcut handles resets and canned replies, which never reach the model.
func (s *Service) shortcut(ctx context.Context, t turn) (Reply, bool, error) {
	log := s.logger.With(zap.String("session_id", t.sessionID))

	if intent.IsResetCommand(t.message) {
		s.sessions.Reset(ctx, t.sessionID)
		log.Info("session reset by chat command")
		return Reply{Text: ResetConfirmation, Source: SourceReset, Kind: t.kind}, true, nil
	}

	text, category, ok := s.replier.Reply(t.message)
	if !ok {
		return Reply{}, false, nil
	}

	snapshot, err := s.sessions.Snapshot(ctx, t.sessionID)
	if err != nil {
		return Reply{}, true, err
	}
	ticket, err := s.sessions.BeginTurn(ctx, t.sessionID, ai.WithImageContext(t.message, snapshot.ImageNotes))
	if err != nil {
		return Reply{}, true, err
	}
	s.complete(ctx, ticket, text)
	log.Debug("canned reply", zap.String("category", string(category)))
	return Reply{Text: text, Source: SourceCanned, Kind: t.kind}, true, nil
}

// Reply answers a message on the buffered path. Model failures are folded
// into a user-safe reply so the caller can still report success.
func (s *Service) Reply(ctx context.Context, sessionID, message string) (Reply, error) {
	t, err := s.prepare(sessionID, message)
	if err != nil {
		return Reply{}, err
	}
	if reply, handled, err := s.shortcut(ctx, t); handled {
		return reply, err
	}

	snapshot, err := s.sessions.Snapshot(ctx, t.sessionID)
	if err != nil {
		return Reply{}, err
	}
	query := ai.WithImageContext(t.message, snapshot.ImageNotes)
	ticket, err := s.sessions.BeginTurn(ctx, t.sessionID, query)
	if err != nil {
		return Reply{}, err
	}

	log := s.logger.With(zap.String("session_id", t.sessionID))
	reply := Reply{Source: SourceModel, Kind: t.kind}
	text, err := s.generator.Generate(ctx, ai.Request{
		SessionID: t.sessionID,
		Kind:      t.kind,
		History:   snapshot.Context,
		Query:     query,
	})
	switch {
	case errors.Is(err, ai.ErrEmptyResponse):
		log.Warn("model returned empty response")
		reply.Text, reply.Source = EmptyReplyText, SourceFallback
	case err != nil:
		log.Error("model generation failed", zap.Error(err))
		reply.Text, reply.Source = UnavailableReplyText, SourceFallback
	default:
		reply.Text = text
	}

	s.complete(ctx, ticket, reply.Text)
	return reply, nil
}

// Stream answers a message by relaying model fragments to sink. It returns
// ErrStreamUnavailable, with the session untouched, when the model stream
// cannot be opened. Once frames have been sent, failures are reported to
// the sink and nil is returned.
func (s *Service) Stream(ctx context.Context, sessionID, message string, sink Sink) error {
	t, err := s.prepare(sessionID, message)
	if err != nil {
		return err
	}
	if reply, handled, err := s.shortcut(ctx, t); handled {
		if err != nil {
			return err
		}
		if reply.Source == SourceCanned {
			if err := sink.Chunk(reply.Text); err != nil {
				return nil
			}
		}
		_ = sink.Complete(reply.Text)
		return nil
	}

	snapshot, err := s.sessions.Snapshot(ctx, t.sessionID)
	if err != nil {
		return err
	}
	query := ai.WithImageContext(t.message, snapshot.ImageNotes)

	log := s.logger.With(zap.String("session_id", t.sessionID))
	stream, err := s.generator.Stream(ctx, ai.Request{
		SessionID: t.sessionID,
		Kind:      t.kind,
		History:   snapshot.Context,
		Query:     query,
	})
	if err != nil {
		log.Warn("model stream unavailable", zap.Error(err))
		return ErrStreamUnavailable
	}
	defer stream.Close()

	ticket, err := s.sessions.BeginTurn(ctx, t.sessionID, query)
	if err != nil {
		return err
	}

	var full strings.Builder
	for {
		part, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				log.Info("client went away mid-stream", zap.Int("partial_length", full.Len()))
				return nil
			}
			log.Error("model stream failed", zap.Error(err))
			_ = sink.Error(StreamFailureText)
			return nil
		}
		if part == "" {
			continue
		}
		full.WriteString(part)
		if err := sink.Chunk(part); err != nil {
			log.Info("client went away mid-stream", zap.Int("partial_length", full.Len()))
			return nil
		}
	}

	text := strings.TrimSpace(full.String())
	if text == "" {
		text = EmptyReplyText
	}
	s.complete(ctx, ticket, text)
	_ = sink.Complete(text)
	return nil
}

func (s *Service) complete(ctx context.Context, ticket chatservice.Ticket, reply string) {
	if err := s.sessions.CompleteTurn(ctx, ticket, reply); err != nil {
		s.logger.Info("reply dropped", zap.String("session_id", ticket.SessionID), zap.Error(err))
	}
}
