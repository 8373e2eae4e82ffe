package render

import "strings"

// Node is a unit of reveal. Text nodes hold plain, unescaped text and are
// revealed a character at a time; markup nodes hold a whole element such as
// `<strong>hi</strong>` or `<br>` and are revealed at once.
type Node struct {
	Markup bool
	Text   string
}

// Parse splits formatted output into nodes. Unbalanced tags become markup
// nodes on their own.
func Parse(formatted string) []Node {
	var nodes []Node
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, Node{Text: unescape(text.String())})
			text.Reset()
		}
	}

	for i := 0; i < len(formatted); {
		tag := ""
		if formatted[i] == '<' {
			tag = tagAt(formatted, i)
		}
		if tag == "" {
			text.WriteByte(formatted[i])
			i++
			continue
		}

		flush()
		element := tag
		if closer := closingTag(tag); closer != "" {
			if end := strings.Index(formatted[i+len(tag):], closer); end >= 0 {
				element = formatted[i : i+len(tag)+end+len(closer)]
			}
		}
		nodes = append(nodes, Node{Markup: true, Text: element})
		i += len(element)
	}
	flush()
	return nodes
}

func closingTag(open string) string {
	switch open {
	case "<strong>":
		return "</strong>"
	case "<em>":
		return "</em>"
	}
	return ""
}

// Inner returns the escaped content and tag name of a markup element.
func (n Node) Inner() (tag, content string) {
	for _, open := range []string{"<strong>", "<em>"} {
		closer := closingTag(open)
		if strings.HasPrefix(n.Text, open) && strings.HasSuffix(n.Text, closer) && len(n.Text) >= len(open)+len(closer) {
			return strings.Trim(open, "<>"), unescape(n.Text[len(open) : len(n.Text)-len(closer)])
		}
	}
	return strings.Trim(n.Text, "<>/"), ""
}
