// Package ocr turns uploaded images into session image notes plus a short
// model commentary.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zhouzirui/smartchat/internal/analysis/intent"
	"github.com/zhouzirui/smartchat/internal/model/chat"
	"github.com/zhouzirui/smartchat/internal/service/ai"
	chatservice "github.com/zhouzirui/smartchat/internal/service/chat"
)

var (
	ErrNoImage           = errors.New("no image file provided")
	ErrSessionRequired   = errors.New("session ID is required")
	ErrRecognitionFailed = errors.New("failed to process image")
)

// Engine converts image bytes into text.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Commentator writes the follow-up analysis of extracted text.
type Commentator interface {
	Generate(ctx context.Context, req ai.Request) (string, error)
}

// Result is what the caller gets back for one image.
type Result struct {
	Filename      string
	ExtractedText string
	AIResponse    string
	AIAvailable   bool
}

// Service runs extraction for sessions.
type Service struct {
	engine      Engine
	commentator Commentator
	sessions    *chatservice.Service
	timeout     time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewService wires the engine. Timeout bounds the OCR step only.
func NewService(engine Engine, commentator Commentator, sessions *chatservice.Service, timeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		engine:      engine,
		commentator: commentator,
		sessions:    sessions,
		timeout:     timeout,
		logger:      logger,
		now:         time.Now,
	}
}

// EngineName reports the configured engine.
func (s *Service) EngineName() string {
	return s.engine.Name()
}

// Extract recognizes the image, records an image note and asks the model for
// commentary. The session is only touched once recognition has succeeded;
// a failed commentary is reported through AIAvailable, not as an error.
func (s *Service) Extract(ctx context.Context, sessionID, filename string, image []byte) (Result, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Result{}, ErrSessionRequired
	}
	if len(image) == 0 {
		return Result{}, ErrNoImage
	}

	log := s.logger.With(zap.String("session_id", sessionID), zap.String("filename", filename))

	text, err := s.recognize(ctx, image)
	if err != nil {
		log.Error("ocr failed", zap.String("engine", s.engine.Name()), zap.Error(err))
		return Result{}, fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
	}
	text = strings.TrimSpace(text)
	log.Info("text extracted", zap.Int("length", len(text)))

	note := chat.ImageNote{Filename: filename, ExtractedText: text, Timestamp: s.now().UTC()}
	if err := s.sessions.AddImageNote(ctx, sessionID, note); err != nil {
		return Result{}, err
	}

	result := Result{Filename: filename, ExtractedText: text}
	prompt := ai.CommentaryPrompt(text)
	commentary, err := s.commentator.Generate(ctx, ai.Request{
		SessionID: sessionID,
		Kind:      intent.Classify(prompt),
		Query:     prompt,
	})
	if err != nil {
		log.Warn("commentary unavailable", zap.Error(err))
		return result, nil
	}
	result.AIResponse = commentary
	result.AIAvailable = true
	return result, nil
}

func (s *Service) recognize(ctx context.Context, image []byte) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.engine.Recognize(ctx, image)
}
