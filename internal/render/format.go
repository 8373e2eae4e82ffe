// Package render turns assistant text into a tiny markup vocabulary and
// reveals it on a Surface, either all at once per fragment (streaming) or
// character by character (typewriter).
package render

import "strings"

// The complete markup vocabulary. Format is the only producer of these tags;
// the same characters in input text are escaped like any other.
var allowedTags = []string{"<strong>", "</strong>", "<em>", "</em>", "<br>"}

func tagAt(s string, i int) string {
	for _, tag := range allowedTags {
		if strings.HasPrefix(s[i:], tag) {
			return tag
		}
	}
	return ""
}

// Format applies, in one left-to-right pass: `**x**` to <strong>, `*x*` to
// <em>, newline to <br> (so a blank line becomes <br><br>), and escapes
// `&`, `<` and `>` everywhere else. Delimiter spans must be non-empty, on one
// line and free of asterisks, tags and entities; anything else is left
// literal. Formatting an already formatted string adds no markup: its tags
// and entities come back escaped as text.
func Format(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var b strings.Builder
	b.Grow(len(text) + 16)

	for i := 0; i < len(text); {
		switch c := text[i]; c {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '\n':
			b.WriteString("<br>")
		case '*':
			if strings.HasPrefix(text[i:], "**") {
				if content, ok := delimited(text, i+2, "**"); ok {
					b.WriteString("<strong>" + escape(content) + "</strong>")
					i += 2 + len(content) + 2
					continue
				}
			}
			if content, ok := delimited(text, i+1, "*"); ok {
				b.WriteString("<em>" + escape(content) + "</em>")
				i += 1 + len(content) + 1
				continue
			}
			b.WriteByte('*')
		default:
			b.WriteByte(c)
		}
		i++
	}
	return b.String()
}

// delimited returns the span starting at start that runs up to the next
// asterisk, provided that asterisk opens closer and the span is usable.
func delimited(s string, start int, closer string) (string, bool) {
	end := strings.IndexByte(s[start:], '*')
	if end <= 0 {
		return "", false
	}
	content := s[start : start+end]
	if !strings.HasPrefix(s[start+end:], closer) {
		return "", false
	}
	if strings.Contains(content, "\n") {
		return "", false
	}
	for j := 0; j < len(content); j++ {
		if content[j] == '<' && tagAt(content, j) != "" {
			return "", false
		}
	}
	for _, entity := range []string{"&lt;", "&gt;", "&amp;"} {
		if strings.Contains(content, entity) {
			return "", false
		}
	}
	return content, true
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return escaper.Replace(s)
}

var unescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")

func unescape(s string) string {
	return unescaper.Replace(s)
}
