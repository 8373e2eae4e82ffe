package intent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    Kind
	}{
		{"greeting", "Hello there", Quick},
		{"acknowledgement", "ok, thanks", Quick},
		{"time question", "what time is it in Tokyo right now, and also what is the weather like there?", Quick},
		{"explain is detailed even when short", "explain DNS", Detailed},
		{"build request", "build me a REST API", Detailed},
		{"short unmatched", "pizza toppings?", Quick},
		{"long unmatched", strings.Repeat("word ", 12), Detailed},
		{"leading whitespace", "   hey", Quick},
		{"prefix needs word boundary", "history of the roman empire in fifty words or fewer please, thanks", Detailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.message))
		})
	}
}

func TestIsResetCommand(t *testing.T) {
	assert.True(t, IsResetCommand("please RESET everything"))
	assert.True(t, IsResetCommand("Clear the chat"))
	assert.False(t, IsResetCommand("hello"))
}

func TestReplierUsesInjectedPicker(t *testing.T) {
	r := NewReplier(func(n int) int { return n - 1 })

	reply, category, ok := r.Reply("hi")
	require.True(t, ok)
	assert.Equal(t, Greeting, category)
	variants := Variants(Greeting)
	assert.Equal(t, variants[len(variants)-1], reply)
}

func TestReplierCategories(t *testing.T) {
	r := NewReplier(func(int) int { return 0 })

	tests := map[string]Category{
		"Good morning!":    GoodMorning,
		"good afternoon":   GoodAfternoon,
		"Good evening all": GoodEvening,
		"how are you?":     HowAreYou,
		"Thank you!":       Thanks,
		"bye":              Goodbye,
		"who are you":      WhoAreYou,
	}
	for message, want := range tests {
		reply, got, ok := r.Reply(message)
		require.True(t, ok, message)
		assert.Equal(t, want, got, message)
		assert.Contains(t, Variants(want), reply)
	}
}

func TestReplierSkipsDetailedAndUnknown(t *testing.T) {
	r := NewReplier(nil)

	_, _, ok := r.Reply("hi, " + strings.Repeat("can you walk me through this long question ", 3))
	assert.True(t, ok, "greeting prefix classifies as quick regardless of length")

	_, _, ok = r.Reply("explain quantum tunnelling")
	assert.False(t, ok)

	_, _, ok = r.Reply("yes")
	assert.False(t, ok, "acknowledgements are quick but have no canned reply")
}
