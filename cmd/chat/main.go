package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/zhouzirui/smartchat/internal/client"
	"github.com/zhouzirui/smartchat/internal/render"
	"github.com/zhouzirui/smartchat/internal/voice"
)

var (
	assistantLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Render("AI")
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noteStyle      = lipgloss.NewStyle().Faint(true)
)

func main() {
	_ = godotenv.Load()

	defaultServer := os.Getenv("SMARTCHAT_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:5000"
	}
	server := flag.String("server", defaultServer, "后端地址")
	session := flag.String("session", "", "会话 ID，留空自动生成")
	timeout := flag.Duration("timeout", client.DefaultTimeout, "普通请求超时时间")
	flag.Parse()

	sessionID := *session
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &app{
		client:    client.New(*server, *timeout),
		sessionID: sessionID,
		out:       os.Stdout,
	}
	app.voice = voice.NewAdapter(voice.Unsupported{}, app, 0)

	input := newLineInput(os.Stdin, os.Stdout)
	defer input.Close()

	fmt.Fprintln(app.out, noteStyle.Render(fmt.Sprintf("session %s, server %s", sessionID, *server)))
	fmt.Fprintln(app.out, noteStyle.Render("commands: /image <path>, /history, /mic, /quit; lines with reset/clear wipe the session"))

	if err := app.run(ctx, input); err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

type app struct {
	client    *client.Client
	voice     *voice.Adapter
	sessionID string
	out       io.Writer
	pending   string
}

func (a *app) run(ctx context.Context, input lineInput) error {
	for {
		if a.pending != "" {
			if rl, ok := input.(*readlineInput); ok {
				rl.prefill(a.pending)
			}
			a.pending = ""
		}
		line, err := input.ReadLine("> ")
		if errors.Is(err, readline.ErrInterrupt) {
			return nil
		}
		if err != nil {
			return err
		}

		cmd := parseCommand(line)
		switch cmd.kind {
		case cmdEmpty:
		case cmdQuit:
			return nil
		case cmdReset:
			a.reset(ctx)
		case cmdHistory:
			a.history(ctx)
		case cmdImage:
			a.upload(ctx, cmd.arg)
		case cmdMic:
			_ = a.voice.Listen(ctx)
		case cmdMessage:
			a.send(ctx, cmd.arg)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (a *app) send(ctx context.Context, message string) {
	fmt.Fprintf(a.out, "%s: ", assistantLabel)
	surface := render.NewTerminalSurface(a.out)
	if _, err := a.client.Deliver(ctx, surface, a.sessionID, message, render.DefaultCursorLinger); err != nil {
		fmt.Fprintln(a.out)
		a.ShowError(replyError(err))
		return
	}
	fmt.Fprintln(a.out)
}

func replyError(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, client.ErrStreamFailed):
		return "Streaming failed. Please try again."
	default:
		return "Sorry, I'm having trouble connecting. Please try again."
	}
}

func (a *app) reset(ctx context.Context) {
	msg, err := a.client.Reset(ctx, a.sessionID)
	if err != nil {
		a.ShowError("Failed to reset chat. Please try again.")
		return
	}
	fmt.Fprintf(a.out, "%s: %s\n", assistantLabel, msg)
}

func (a *app) history(ctx context.Context) {
	turns, err := a.client.History(ctx, a.sessionID)
	if err != nil {
		a.ShowError("Failed to load history.")
		return
	}
	if len(turns) == 0 {
		fmt.Fprintln(a.out, noteStyle.Render("(no messages yet)"))
		return
	}
	for _, turn := range turns {
		fmt.Fprintf(a.out, "%s: %s\n", turn.Role, render.PlainText(render.Format(turn.Content)))
	}
}

func (a *app) upload(ctx context.Context, path string) {
	if path == "" {
		a.ShowError("Usage: /image <path>")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		a.ShowError(fmt.Sprintf("Cannot read %s: %v", path, err))
		return
	}

	uploadCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	ext, err := a.client.ExtractText(uploadCtx, a.sessionID, filepath.Base(path), data)
	if err != nil {
		a.ShowError("Failed to process image. Please try again.")
		return
	}

	text := strings.TrimSpace(ext.ExtractedText)
	if text == "" {
		text = "No text detected"
	}
	fmt.Fprintf(a.out, "📷 %s\n%s\n", ext.Filename, text)
	if ext.AIResponse != "" {
		fmt.Fprintf(a.out, "%s: %s\n", assistantLabel, render.PlainText(render.Format(ext.AIResponse)))
	} else if ext.AIAvailable != nil && !*ext.AIAvailable {
		fmt.Fprintln(a.out, noteStyle.Render("(AI insights unavailable)"))
	}
}

// voice.UI

func (a *app) ShowListening() { fmt.Fprintln(a.out, noteStyle.Render("🎤 listening...")) }
func (a *app) HideListening() {}
func (a *app) SetInput(text string) {
	a.pending = text
}
func (a *app) ShowError(message string) { fmt.Fprintln(a.out, errorStyle.Render(message)) }
