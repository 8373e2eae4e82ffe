package ollama

import (
	"context"
	"encoding/base64"
	"strings"
)

const visionPrompt = "Extract all readable text from this image. Reply with the text only, preserving line breaks. If there is no text, reply with nothing."

// VisionEngine extracts text from images with a multimodal model.
type VisionEngine struct {
	client *Client
	model  string
}

// NewVisionEngine returns an OCR engine backed by the given vision model.
func NewVisionEngine(client *Client, modelName string) *VisionEngine {
	return &VisionEngine{client: client, model: modelName}
}

func (v *VisionEngine) Name() string {
	return "ollama-vision:" + v.model
}

// Recognize sends the image to the vision model and returns its transcription.
func (v *VisionEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	resp, err := v.client.Chat(ctx, ChatRequest{
		Model: v.model,
		Messages: []Message{{
			Role:    "user",
			Content: visionPrompt,
			Images:  []string{base64.StdEncoding.EncodeToString(image)},
		}},
		Options: &Options{Temperature: 0.1},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Message.Content), nil
}
