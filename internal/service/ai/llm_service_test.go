package ai

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/smartchat/internal/analysis/intent"
	"github.com/zhouzirui/smartchat/internal/model/chat"
)

type fakeModel struct {
	reply     string
	chunks    []string
	streamErr error
	err       error

	input    []*schema.Message
	options  *model.Options
	deadline bool
}

func (f *fakeModel) record(ctx context.Context, input []*schema.Message, opts []model.Option) {
	f.input = input
	f.options = model.GetCommonOptions(&model.Options{}, opts...)
	_, f.deadline = ctx.Deadline()
}

func (f *fakeModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.record(ctx, input, opts)
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	f.record(ctx, input, opts)
	if f.err != nil {
		return nil, f.err
	}
	sr, sw := schema.Pipe[*schema.Message](len(f.chunks) + 1)
	for _, c := range f.chunks {
		sw.Send(schema.AssistantMessage(c, nil), nil)
	}
	if f.streamErr != nil {
		sw.Send(nil, f.streamErr)
	}
	sw.Close()
	return sr, nil
}

func newService(t *testing.T, fm *fakeModel, timeout time.Duration) *Service {
	t.Helper()
	svc, err := NewService(context.Background(), fm, Options{
		Timeout: timeout,
		Picker:  func(int) int { return 1 },
	})
	require.NoError(t, err)
	return svc
}

func TestGenerateBuildsPromptFromHistory(t *testing.T) {
	fm := &fakeModel{reply: "  Paris is the capital.  "}
	svc := newService(t, fm, time.Second)

	reply, err := svc.Generate(context.Background(), Request{
		SessionID: "s1",
		Kind:      intent.Quick,
		History: []chat.Turn{
			{Role: chat.RoleUser, Content: "hi"},
			{Role: chat.RoleAssistant, Content: "hello"},
		},
		Query: "capital of France?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Paris is the capital.", reply)

	require.Len(t, fm.input, 4)
	assert.Equal(t, schema.System, fm.input[0].Role)
	assert.Equal(t, quickPrompts[1], fm.input[0].Content)
	assert.Equal(t, schema.User, fm.input[1].Role)
	assert.Equal(t, schema.Assistant, fm.input[2].Role)
	assert.Equal(t, "capital of France?", fm.input[3].Content)
	assert.True(t, fm.deadline)

	require.NotNil(t, fm.options.MaxTokens)
	assert.Equal(t, 50, *fm.options.MaxTokens)
	assert.Equal(t, quickStops, fm.options.Stop)
}

func TestGenerateDetailedProfile(t *testing.T) {
	fm := &fakeModel{reply: "long answer"}
	svc := newService(t, fm, 0)

	_, err := svc.Generate(context.Background(), Request{Kind: intent.Detailed, Query: "explain {braces} please"})
	require.NoError(t, err)

	assert.Equal(t, detailedPrompt, fm.input[0].Content)
	assert.Equal(t, "explain {braces} please", fm.input[len(fm.input)-1].Content)
	require.NotNil(t, fm.options.MaxTokens)
	assert.Equal(t, 2000, *fm.options.MaxTokens)
	assert.Empty(t, fm.options.Stop)
	assert.False(t, fm.deadline)
}

func TestGenerateErrors(t *testing.T) {
	svc := newService(t, &fakeModel{reply: "   "}, 0)
	_, err := svc.Generate(context.Background(), Request{Query: "hi"})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	upstream := errors.New("connection refused")
	svc = newService(t, &fakeModel{err: upstream}, 0)
	_, err = svc.Generate(context.Background(), Request{Query: "hi"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestStreamRelaysFragments(t *testing.T) {
	fm := &fakeModel{chunks: []string{"Hel", "lo", "!"}}
	svc := newService(t, fm, time.Second)

	stream, err := svc.Stream(context.Background(), Request{Kind: intent.Detailed, Query: "hi"})
	require.NoError(t, err)
	defer stream.Close()

	var text strings.Builder
	for {
		part, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		text.WriteString(part)
	}
	assert.Equal(t, "Hello!", text.String())
}

func TestStreamMidStreamError(t *testing.T) {
	boom := errors.New("boom")
	svc := newService(t, &fakeModel{chunks: []string{"par"}, streamErr: boom}, 0)

	stream, err := svc.Stream(context.Background(), Request{Query: "hi"})
	require.NoError(t, err)
	defer stream.Close()

	part, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "par", part)

	_, err = stream.Recv()
	assert.ErrorContains(t, err, "boom")
}

func TestStreamOpenFailure(t *testing.T) {
	svc := newService(t, &fakeModel{err: errors.New("unreachable")}, 0)
	_, err := svc.Stream(context.Background(), Request{Query: "hi"})
	assert.Error(t, err)
}

func TestWithImageContext(t *testing.T) {
	assert.Equal(t, "hello", WithImageContext("  hello ", nil))

	got := WithImageContext("what does it say?", []chat.ImageNote{
		{Filename: "sign.png", ExtractedText: "STOP"},
		{Filename: "blank.png"},
	})
	assert.Equal(t, "[Context: You have 2 images in this conversation:\n📷 sign.png: \"STOP\"\n📷 blank.png: \"No text\"\n\nUser: what does it say?]", got)
}

func TestProfileFor(t *testing.T) {
	assert.Equal(t, QuickProfile.MaxTokens, ProfileFor(intent.Quick).MaxTokens)
	assert.Equal(t, DetailedProfile.MaxTokens, ProfileFor(intent.Detailed).MaxTokens)
	assert.Equal(t, DetailedProfile.MaxTokens, ProfileFor("").MaxTokens)
}
