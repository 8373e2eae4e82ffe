package stream

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zhouzirui/smartchat/internal/model/chat"
	"github.com/zhouzirui/smartchat/internal/service/assistant"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 54 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type inboundMessage struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// handleWebSocket 处理WebSocket连接，每条入站消息产生与 /chat-stream 相同的帧
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	go pingLoop(ctx, conn)

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Info("websocket read error", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		if err := h.handleMessage(ctx, conn, msg); err != nil {
			return
		}
	}
}

// handleMessage returns an error only when the connection is unusable.
func (h *Handler) handleMessage(ctx context.Context, conn *websocket.Conn, msg inboundMessage) error {
	sink := &wsSink{conn: conn, sessionID: strings.TrimSpace(msg.SessionID)}

	err := h.assistant.Stream(ctx, msg.SessionID, msg.Message, sink)
	switch {
	case err == nil:
	case errors.Is(err, assistant.ErrMessageRequired):
		return sink.Error("Session ID and message are required")
	case errors.Is(err, assistant.ErrStreamUnavailable):
		reply, replyErr := h.assistant.Reply(ctx, msg.SessionID, msg.Message)
		if replyErr != nil {
			h.logger.Error("websocket fallback failed", zap.String("session_id", sink.sessionID), zap.Error(replyErr))
			return sink.Error("Internal server error. Please try again.")
		}
		return sink.Complete(reply.Text)
	default:
		h.logger.Error("websocket stream failed", zap.String("session_id", sink.sessionID), zap.Error(err))
		return sink.Error("Streaming failed. Please try again.")
	}
	return sink.err
}

type wsSink struct {
	conn      *websocket.Conn
	sessionID string
	err       error
}

func (s *wsSink) send(frame chat.Frame) error {
	if s.err != nil {
		return s.err
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	s.err = s.conn.WriteJSON(frame)
	return s.err
}

func (s *wsSink) Chunk(content string) error {
	return s.send(chat.NewChunkFrame(s.sessionID, content))
}

func (s *wsSink) Complete(full string) error {
	return s.send(chat.NewCompleteFrame(s.sessionID, full))
}

func (s *wsSink) Error(message string) error {
	return s.send(chat.NewErrorFrame(s.sessionID, message))
}

// pingLoop 定期发送ping消息
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}
