package ai

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/zhouzirui/smartchat/internal/analysis/intent"
	"github.com/zhouzirui/smartchat/internal/model/chat"
)

// systemPrompt 根据回复类型选择系统提示词，quick 类型随机挑选一个。
func systemPrompt(kind intent.Kind, pick intent.Picker) string {
	if kind != intent.Quick {
		return detailedPrompt
	}
	return quickPrompts[pick(len(quickPrompts))]
}

// historyMessages converts stored turns into chat messages, oldest first.
func historyMessages(turns []chat.Turn) []*schema.Message {
	if len(turns) == 0 {
		return nil
	}
	history := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return history
}

// WithImageContext prefixes the message with a summary of the session's
// extracted images. Without notes the trimmed message is returned as is.
func WithImageContext(message string, notes []chat.ImageNote) string {
	message = strings.TrimSpace(message)
	if len(notes) == 0 {
		return message
	}
	lines := make([]string, 0, len(notes))
	for _, note := range notes {
		text := note.ExtractedText
		if text == "" {
			text = "No text"
		}
		lines = append(lines, fmt.Sprintf("📷 %s: \"%s\"", note.Filename, text))
	}
	return fmt.Sprintf("[Context: You have %d images in this conversation:\n%s\n\nUser: %s]",
		len(notes), strings.Join(lines, "\n"), message)
}

// CommentaryPrompt asks the model for insights on text pulled from an image.
func CommentaryPrompt(extracted string) string {
	return fmt.Sprintf("Please analyze this extracted text from an image and provide helpful insights:\n\n\"%s\"\n\nProvide a brief, helpful analysis.", extracted)
}
