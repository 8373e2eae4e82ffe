package ollama

import (
	"context"
	"errors"
	"io"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// chatOptions are knobs Ollama supports beyond eino's common options.
type chatOptions struct {
	TopK          *int
	NumCtx        *int
	RepeatPenalty *float64
}

// WithTopK limits sampling to the k most likely tokens.
func WithTopK(k int) model.Option {
	return model.WrapImplSpecificOptFn(func(o *chatOptions) { o.TopK = &k })
}

// WithNumCtx sets the context window size.
func WithNumCtx(n int) model.Option {
	return model.WrapImplSpecificOptFn(func(o *chatOptions) { o.NumCtx = &n })
}

// WithRepeatPenalty sets the repetition penalty.
func WithRepeatPenalty(p float64) model.Option {
	return model.WrapImplSpecificOptFn(func(o *chatOptions) { o.RepeatPenalty = &p })
}

// ChatModel adapts Client to eino's BaseChatModel so it can sit in a chain.
type ChatModel struct {
	client *Client
	model  string
}

var _ model.BaseChatModel = (*ChatModel)(nil)

// NewChatModel returns a chat model bound to the named model.
func NewChatModel(client *Client, modelName string) *ChatModel {
	return &ChatModel{client: client, model: modelName}
}

// Generate runs a non-streaming completion.
func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	resp, err := m.client.Chat(ctx, m.buildRequest(input, opts...))
	if err != nil {
		return nil, err
	}
	return schema.AssistantMessage(resp.Message.Content, nil), nil
}

// Stream opens the upstream connection before returning, so an unreachable
// server is reported as an error here rather than as the first chunk.
func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	body, err := m.client.OpenStream(ctx, m.buildRequest(input, opts...))
	if err != nil {
		return nil, err
	}

	sr, sw := schema.Pipe[*schema.Message](1)
	go func() {
		defer body.Close()
		defer sw.Close()

		reader := NewStreamReader(body)
		for {
			chunk, err := reader.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				sw.Send(nil, err)
				return
			}
			if chunk.Content == "" {
				continue
			}
			if closed := sw.Send(schema.AssistantMessage(chunk.Content, nil), nil); closed {
				return
			}
		}
	}()
	return sr, nil
}

func (m *ChatModel) buildRequest(input []*schema.Message, opts ...model.Option) ChatRequest {
	modelName := m.model
	common := model.GetCommonOptions(&model.Options{Model: &modelName}, opts...)
	specific := model.GetImplSpecificOptions(&chatOptions{}, opts...)

	options := &Options{}
	if common.Temperature != nil {
		options.Temperature = float64(*common.Temperature)
	}
	if common.TopP != nil {
		options.TopP = float64(*common.TopP)
	}
	if common.MaxTokens != nil {
		options.NumPredict = *common.MaxTokens
	}
	if len(common.Stop) > 0 {
		options.Stop = common.Stop
	}
	if specific.TopK != nil {
		options.TopK = *specific.TopK
	}
	if specific.NumCtx != nil {
		options.NumCtx = *specific.NumCtx
	}
	if specific.RepeatPenalty != nil {
		options.RepeatPenalty = *specific.RepeatPenalty
	}

	messages := make([]Message, 0, len(input))
	for _, msg := range input {
		if msg == nil {
			continue
		}
		messages = append(messages, Message{Role: string(msg.Role), Content: msg.Content})
	}

	return ChatRequest{
		Model:    *common.Model,
		Messages: messages,
		Options:  options,
	}
}
