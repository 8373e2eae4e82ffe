package render

// CursorMark is drawn after the revealed prefix while a reply is in progress.
const CursorMark = "|"

// Surface is where a reply is drawn. Implementations need not be safe for
// concurrent use; a renderer drives one surface from one goroutine.
type Surface interface {
	// AppendText draws plain text before the cursor.
	AppendText(text string)
	// AppendMarkup draws one whole markup element before the cursor.
	AppendMarkup(markup string)
	ShowCursor()
	HideCursor()
}
