package render

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	boldStyle   = lipgloss.NewStyle().Bold(true)
	italicStyle = lipgloss.NewStyle().Italic(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// TerminalSurface draws onto a terminal, mapping <strong> and <em> to
// lipgloss styles. The cursor is erased with a backspace before each write.
type TerminalSurface struct {
	w      io.Writer
	cursor bool
}

func NewTerminalSurface(w io.Writer) *TerminalSurface {
	return &TerminalSurface{w: w}
}

func (t *TerminalSurface) write(s string) {
	if t.cursor {
		io.WriteString(t.w, "\b \b")
	}
	io.WriteString(t.w, s)
	if t.cursor {
		io.WriteString(t.w, cursorStyle.Render(CursorMark))
	}
}

func (t *TerminalSurface) AppendText(text string) {
	t.write(text)
}

func (t *TerminalSurface) AppendMarkup(markup string) {
	t.write(markupToANSI(markup))
}

func (t *TerminalSurface) ShowCursor() {
	if t.cursor {
		return
	}
	t.cursor = true
	io.WriteString(t.w, cursorStyle.Render(CursorMark))
}

func (t *TerminalSurface) HideCursor() {
	if !t.cursor {
		return
	}
	t.cursor = false
	io.WriteString(t.w, "\b \b")
}

func markupToANSI(markup string) string {
	tag, content := Node{Markup: true, Text: markup}.Inner()
	switch tag {
	case "strong":
		return boldStyle.Render(content)
	case "em":
		return italicStyle.Render(content)
	case "br":
		return "\n"
	}
	return ""
}

// PlainText renders formatted output without styling, for logs and tests.
func PlainText(formatted string) string {
	var b strings.Builder
	for _, node := range Parse(formatted) {
		if !node.Markup {
			b.WriteString(node.Text)
			continue
		}
		tag, content := node.Inner()
		if tag == "br" {
			b.WriteString("\n")
		} else {
			b.WriteString(content)
		}
	}
	return b.String()
}
