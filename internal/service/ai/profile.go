package ai

import (
	"github.com/cloudwego/eino/components/model"
	"github.com/zhouzirui/smartchat/internal/analysis/intent"
	"github.com/zhouzirui/smartchat/internal/provider/ollama"
)

var quickPrompts = []string{
	"You are a friendly AI assistant. Give VERY brief responses - maximum 1-2 sentences. Be helpful but keep it extremely short. No detailed explanations, no examples, no formatting. Just a quick, friendly response.",
	"You are a helpful AI. Keep responses short and sweet - just 1-2 sentences. Be friendly and direct. No long explanations needed.",
	"You are a quick AI assistant. Give brief, concise answers in 1-2 sentences. Be helpful but keep it simple and friendly.",
	"You are a fast AI helper. Respond quickly with just 1-2 sentences. Be friendly and to the point. No detailed explanations.",
	"You are a speedy AI assistant. Give short, helpful responses in 1-2 sentences. Be friendly and direct.",
}

const detailedPrompt = "You are an expert AI assistant. Provide detailed, comprehensive, and thorough responses. Be extremely helpful, informative, and detailed. Always give complete explanations with examples when relevant. Write in a professional yet friendly tone. Use proper formatting with **bold text** for important points and bullet points for lists."

// quickStops cut quick replies off before they turn into lectures.
var quickStops = []string{"\n\n", "Thank you", "Hope this helps", "Let me", "I can", "Here's", "This is", "In summary", "To answer", "The answer"}

// Profile is the generation budget for one reply kind.
type Profile struct {
	Kind          intent.Kind
	Temperature   float32
	TopP          float32
	TopK          int
	MaxTokens     int
	NumCtx        int
	RepeatPenalty float64
	Stop          []string
}

var (
	QuickProfile = Profile{
		Kind:          intent.Quick,
		Temperature:   0.5,
		TopP:          0.8,
		TopK:          20,
		MaxTokens:     50,
		NumCtx:        512,
		RepeatPenalty: 1.1,
		Stop:          quickStops,
	}
	DetailedProfile = Profile{
		Kind:          intent.Detailed,
		Temperature:   0.7,
		TopP:          0.9,
		TopK:          40,
		MaxTokens:     2000,
		NumCtx:        2048,
		RepeatPenalty: 1.1,
	}
)

// ProfileFor returns the profile for a kind; unknown kinds get the detailed one.
func ProfileFor(kind intent.Kind) Profile {
	if kind == intent.Quick {
		return QuickProfile
	}
	return DetailedProfile
}

// ModelOptions converts the profile into eino options. Providers ignore the
// implementation-specific ones they do not understand.
func (p Profile) ModelOptions() []model.Option {
	opts := []model.Option{
		model.WithTemperature(p.Temperature),
		model.WithTopP(p.TopP),
		model.WithMaxTokens(p.MaxTokens),
		ollama.WithTopK(p.TopK),
		ollama.WithNumCtx(p.NumCtx),
		ollama.WithRepeatPenalty(p.RepeatPenalty),
	}
	if len(p.Stop) > 0 {
		opts = append(opts, model.WithStop(p.Stop))
	}
	return opts
}
