package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/zhouzirui/smartchat/internal/analysis/intent"
	"github.com/zhouzirui/smartchat/internal/model/chat"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Request is one generation call.
type Request struct {
	SessionID string
	Kind      intent.Kind
	History   []chat.Turn
	Query     string
}

// TokenStream yields reply fragments until io.EOF. Close must be called.
type TokenStream interface {
	Recv() (string, error)
	Close()
}

// Options tune the service.
type Options struct {
	// Timeout bounds each generation call. Zero means no bound.
	Timeout time.Duration
	// Picker chooses among the quick system prompts.
	Picker intent.Picker
	Logger *zap.Logger
}

// Service encapsulates AI-powered chat functionality
type Service struct {
	chain   compose.Runnable[map[string]any, *schema.Message]
	timeout time.Duration
	pick    intent.Picker
	logger  *zap.Logger
}

// NewService compiles the prompt → model chain around the given chat model.
func NewService(ctx context.Context, chatModel model.BaseChatModel, opts Options) (*Service, error) {
	if chatModel == nil {
		return nil, errors.New("ai: chat model is required")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	if opts.Picker == nil {
		opts.Picker = intent.DefaultPicker
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Service{
		chain:   runnable,
		timeout: opts.Timeout,
		pick:    opts.Picker,
		logger:  opts.Logger,
	}, nil
}

// Generate returns the complete reply text.
func (s *Service) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	profile := ProfileFor(req.Kind)
	response, err := s.chain.Invoke(ctx, s.buildChainInput(req), compose.WithChatModelOption(profile.ModelOptions()...))
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	content := strings.TrimSpace(response.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}

	s.logger.Info("generated response",
		zap.String("session_id", req.SessionID),
		zap.String("kind", string(profile.Kind)),
		zap.Int("length", len(content)),
	)
	return content, nil
}

// Stream opens a streaming generation. Errors returned here mean the model
// could not be reached; errors from Recv are mid-stream failures.
func (s *Service) Stream(ctx context.Context, req Request) (TokenStream, error) {
	ctx, cancel := s.withTimeout(ctx)

	profile := ProfileFor(req.Kind)
	reader, err := s.chain.Stream(ctx, s.buildChainInput(req), compose.WithChatModelOption(profile.ModelOptions()...))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to stream AI chain output: %w", err)
	}

	s.logger.Debug("stream opened",
		zap.String("session_id", req.SessionID),
		zap.String("kind", string(profile.Kind)),
	)
	return &messageStream{reader: reader, cancel: cancel}, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Service) buildChainInput(req Request) map[string]any {
	return map[string]any{
		"system":  systemPrompt(req.Kind, s.pick),
		"history": historyMessages(req.History),
		"query":   req.Query,
	}
}

type messageStream struct {
	reader *schema.StreamReader[*schema.Message]
	cancel context.CancelFunc
}

func (m *messageStream) Recv() (string, error) {
	msg, err := m.reader.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", err
	}
	if msg == nil {
		return "", nil
	}
	return msg.Content, nil
}

func (m *messageStream) Close() {
	m.reader.Close()
	m.cancel()
}
