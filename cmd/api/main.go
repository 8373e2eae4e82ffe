package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zhouzirui/smartchat/internal/analysis/intent"
	"github.com/zhouzirui/smartchat/internal/config"
	"github.com/zhouzirui/smartchat/internal/handler"
	"github.com/zhouzirui/smartchat/internal/handler/health"
	"github.com/zhouzirui/smartchat/internal/logging"
	"github.com/zhouzirui/smartchat/internal/provider/ollama"
	"github.com/zhouzirui/smartchat/internal/service/ai"
	"github.com/zhouzirui/smartchat/internal/service/assistant"
	"github.com/zhouzirui/smartchat/internal/service/chat"
	"github.com/zhouzirui/smartchat/internal/service/ocr"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is optional; the process environment always applies.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootstrapFatal("failed to load configuration", err)
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		bootstrapFatal("failed to build logger", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Debug("no .env file loaded, using system environment only", zap.Error(envErr))
	}

	chatService := chat.NewService(chat.Options{
		HistoryLimit: cfg.Session.HistoryLimit,
		ContextLimit: cfg.Session.ContextLimit,
	})

	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		logger.Fatal("failed to create chat model", zap.String("provider", cfg.AI.Provider), zap.Error(err))
	}
	replier := intent.NewReplier(nil)
	aiService, err := ai.NewService(ctx, chatModel, ai.Options{
		Timeout: cfg.AI.Timeout,
		Picker:  replier.Pick,
		Logger:  logger.Named("ai"),
	})
	if err != nil {
		logger.Fatal("failed to initialize AI service", zap.Error(err))
	}
	logger.Info("AI service initialized",
		zap.String("provider", cfg.AI.Provider),
		zap.String("model", cfg.AI.ModelName()),
		zap.String("endpoint", cfg.AI.Endpoint()),
	)

	assistantService := assistant.NewService(chatService, aiService, replier, logger.Named("assistant"))

	ocrService, engineName := newOCRService(cfg, aiService, chatService, logger)

	router := handler.NewRouter(handler.Deps{
		Chat:           chatService,
		Assistant:      assistantService,
		OCR:            ocrService,
		UploadMaxBytes: cfg.Server.UploadMaxBytes,
		Health: health.Info{
			Model: health.ModelInfo{
				Provider: cfg.AI.Provider,
				URL:      cfg.AI.Endpoint(),
				Model:    cfg.AI.ModelName(),
			},
			OCREngine: engineName,
		},
		Logger: logger.Named("http"),
	})

	startServer(ctx, cfg.Server, router, logger)
}

func newOCRService(cfg *config.Config, aiService *ai.Service, chatService *chat.Service, logger *zap.Logger) (*ocr.Service, string) {
	var engine ocr.Engine
	switch cfg.OCR.Engine {
	case "vision":
		engine = ollama.NewVisionEngine(cfg.AI.NewOllamaClient(), cfg.OCR.VisionModel)
	case "tesseract":
		engine = ocr.NewTesseract(cfg.OCR.TesseractPath, cfg.OCR.Language)
	default:
		logger.Info("OCR disabled by configuration")
		return nil, ""
	}
	logger.Info("OCR engine configured", zap.String("engine", engine.Name()))
	return ocr.NewService(engine, aiService, chatService, cfg.OCR.Timeout, logger.Named("ocr")), engine.Name()
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("smartchat backend listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// bootstrapFatal reports errors that happen before the configured logger exists.
func bootstrapFatal(msg string, err error) {
	logger, _ := zap.NewProduction()
	logger.Fatal(msg, zap.Error(err))
}
