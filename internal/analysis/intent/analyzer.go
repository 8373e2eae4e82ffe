package intent

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Kind 表示回复的详略程度。
type Kind string

const (
	Quick    Kind = "quick"
	Detailed Kind = "detailed"
)

// quickLengthLimit is the rune count under which unmatched text is quick.
const quickLengthLimit = 50

type matcher struct {
	kind    Kind
	pattern *regexp.Regexp
}

// Matchers are tried in order; the first hit decides the kind.
var matchers = []matcher{
	{Quick, regexp.MustCompile(`(?i)^(hi|hello|hey|good morning|good afternoon|good evening)\b`)},
	{Quick, regexp.MustCompile(`(?i)^(how are you|what's up|how's it going)\b`)},
	{Quick, regexp.MustCompile(`(?i)^(thanks|thank you|bye|goodbye|see you)\b`)},
	{Quick, regexp.MustCompile(`(?i)^(yes|no|ok|okay|sure|alright)\b`)},
	{Quick, regexp.MustCompile(`(?i)^(what time|what day|what date)\b`)},
	{Quick, regexp.MustCompile(`(?i)^(who are you|what are you)\b`)},
	{Detailed, regexp.MustCompile(`(?i)^(explain|describe|tell me about|what is|how does|why)\b`)},
	{Detailed, regexp.MustCompile(`(?i)^(help me|can you help|how to|tutorial|guide)\b`)},
	{Detailed, regexp.MustCompile(`(?i)^(compare|difference|pros and cons)\b`)},
	{Detailed, regexp.MustCompile(`(?i)^(create|make|build|develop)\b`)},
	{Detailed, regexp.MustCompile(`(?i)^(analyze|review|evaluate)\b`)},
}

// Classify decides whether a message deserves a quick or a detailed reply.
func Classify(message string) Kind {
	trimmed := strings.TrimSpace(message)
	for _, m := range matchers {
		if m.pattern.MatchString(trimmed) {
			return m.kind
		}
	}
	if utf8.RuneCountInString(trimmed) < quickLengthLimit {
		return Quick
	}
	return Detailed
}

// IsResetCommand reports whether the text asks to wipe the conversation.
func IsResetCommand(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "reset") || strings.Contains(lower, "clear")
}
