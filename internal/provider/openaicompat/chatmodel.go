// Package openaicompat serves chat through any OpenAI-compatible endpoint
// (LM Studio, vLLM, llama.cpp server, OpenAI itself).
package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"
)

// Config for the OpenAI-compatible client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// ChatModel adapts go-openai to eino's BaseChatModel.
type ChatModel struct {
	client *openai.Client
	model  string
}

var _ model.BaseChatModel = (*ChatModel)(nil)

// NewChatModel builds a chat model. An empty API key is allowed for local
// servers that do not check it.
func NewChatModel(cfg Config) (*ChatModel, error) {
	if cfg.Model == "" {
		return nil, errors.New("openaicompat: model is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &ChatModel{client: openai.NewClientWithConfig(clientCfg), model: cfg.Model}, nil
}

func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	resp, err := m.client.CreateChatCompletion(ctx, m.buildRequest(input, opts...))
	if err != nil {
		return nil, fmt.Errorf("openaicompat: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return schema.AssistantMessage("", nil), nil
	}
	return schema.AssistantMessage(resp.Choices[0].Message.Content, nil), nil
}

func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	req := m.buildRequest(input, opts...)
	req.Stream = true
	stream, err := m.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openaicompat: open stream: %w", err)
	}

	sr, sw := schema.Pipe[*schema.Message](1)
	go func() {
		defer stream.Close()
		defer sw.Close()
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				sw.Send(nil, fmt.Errorf("openaicompat: stream: %w", err))
				return
			}
			if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
				continue
			}
			if closed := sw.Send(schema.AssistantMessage(resp.Choices[0].Delta.Content, nil), nil); closed {
				return
			}
		}
	}()
	return sr, nil
}

func (m *ChatModel) buildRequest(input []*schema.Message, opts ...model.Option) openai.ChatCompletionRequest {
	modelName := m.model
	common := model.GetCommonOptions(&model.Options{Model: &modelName}, opts...)

	req := openai.ChatCompletionRequest{
		Model:    *common.Model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(input)),
		Stop:     common.Stop,
	}
	if common.Temperature != nil {
		req.Temperature = *common.Temperature
	}
	if common.TopP != nil {
		req.TopP = *common.TopP
	}
	if common.MaxTokens != nil {
		req.MaxTokens = *common.MaxTokens
	}
	for _, msg := range input {
		if msg == nil {
			continue
		}
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return req
}
