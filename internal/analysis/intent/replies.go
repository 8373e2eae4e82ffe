package intent

import (
	"math/rand/v2"
	"regexp"
	"strings"
)

// Category names a family of canned replies.
type Category string

const (
	Greeting      Category = "greeting"
	GoodMorning   Category = "goodMorning"
	GoodAfternoon Category = "goodAfternoon"
	GoodEvening   Category = "goodEvening"
	HowAreYou     Category = "howAreYou"
	Thanks        Category = "thanks"
	Goodbye       Category = "goodbye"
	WhoAreYou     Category = "whoAreYou"
)

type cannedRule struct {
	category Category
	pattern  *regexp.Regexp
}

var cannedRules = []cannedRule{
	{Greeting, regexp.MustCompile(`^(hi|hello|hey)\b`)},
	{GoodMorning, regexp.MustCompile(`^good morning\b`)},
	{GoodAfternoon, regexp.MustCompile(`^good afternoon\b`)},
	{GoodEvening, regexp.MustCompile(`^good evening\b`)},
	{HowAreYou, regexp.MustCompile(`^(how are you|what's up|how's it going)\b`)},
	{Thanks, regexp.MustCompile(`^(thanks|thank you)\b`)},
	{Goodbye, regexp.MustCompile(`^(bye|goodbye|see you)\b`)},
	{WhoAreYou, regexp.MustCompile(`^(who are you|what are you)\b`)},
}

var cannedReplies = map[Category][]string{
	Greeting: {
		"Hello! How can I help you today?",
		"Hi there! What can I do for you?",
		"Hey! Ready to assist you!",
		"Hello! What do you need help with?",
		"Hi! How can I be of service?",
	},
	GoodMorning: {
		"Good morning! What can I do for you?",
		"Morning! Ready to help you today!",
		"Good morning! How can I assist you?",
		"Morning! What do you need help with?",
		"Good morning! What's on your mind?",
	},
	GoodAfternoon: {
		"Good afternoon! How can I assist you?",
		"Afternoon! What can I do for you?",
		"Good afternoon! Ready to help!",
		"Afternoon! How can I be of service?",
		"Good afternoon! What do you need?",
	},
	GoodEvening: {
		"Good evening! What do you need help with?",
		"Evening! How can I assist you?",
		"Good evening! Ready to help!",
		"Evening! What can I do for you?",
		"Good evening! How can I be of service?",
	},
	HowAreYou: {
		"I'm doing great! Ready to help you with anything.",
		"I'm excellent! What can I do for you?",
		"I'm fantastic! How can I assist you?",
		"I'm wonderful! What do you need help with?",
		"I'm amazing! Ready to help you!",
	},
	Thanks: {
		"You're welcome! Happy to help.",
		"No problem! Glad I could help.",
		"You're welcome! Anytime!",
		"My pleasure! Happy to assist.",
		"You're welcome! That's what I'm here for.",
	},
	Goodbye: {
		"Goodbye! Have a great day!",
		"See you later! Take care!",
		"Goodbye! Have a wonderful day!",
		"Bye! See you soon!",
		"Goodbye! Stay awesome!",
	},
	WhoAreYou: {
		"I'm your AI assistant, here to help you!",
		"I'm your helpful AI companion!",
		"I'm your AI assistant, ready to assist!",
		"I'm your AI helper, here for you!",
		"I'm your AI assistant, at your service!",
	},
}

// Picker returns an index in [0, n).
type Picker func(n int) int

// DefaultPicker draws uniformly from the global generator.
func DefaultPicker(n int) int {
	return rand.IntN(n)
}

// Match finds the canned-reply category for a message, if any.
func Match(message string) (Category, bool) {
	lower := strings.ToLower(strings.TrimSpace(message))
	for _, rule := range cannedRules {
		if rule.pattern.MatchString(lower) {
			return rule.category, true
		}
	}
	return "", false
}

// Variants lists the canned replies of a category.
func Variants(category Category) []string {
	return append([]string(nil), cannedReplies[category]...)
}

// Replier picks canned replies for messages that do not need the model.
type Replier struct {
	pick Picker
}

// NewReplier creates a Replier; a nil picker falls back to DefaultPicker.
func NewReplier(pick Picker) *Replier {
	if pick == nil {
		pick = DefaultPicker
	}
	return &Replier{pick: pick}
}

// Reply returns a canned reply when the message is quick and matches a
// known category.
func (r *Replier) Reply(message string) (string, Category, bool) {
	if Classify(message) != Quick {
		return "", "", false
	}
	category, ok := Match(message)
	if !ok {
		return "", "", false
	}
	variants := cannedReplies[category]
	return variants[r.pick(len(variants))], category, true
}

// Pick exposes the injected random source to callers that need one.
func (r *Replier) Pick(n int) int {
	return r.pick(n)
}
