package board

import (
	"sync"
	"unicode/utf8"

	"SketchBoard/internal/canvas"
	"SketchBoard/internal/state"
)

// TextEntry is the floating input opened by a click with the text tool. The
// UI mirrors its value with SetText and calls CommitText when the input
// loses focus.
type TextEntry struct {
	X, Y float64

	mu    sync.Mutex
	value string
}

// SetText sets the entry's value, cut to state.MaxTextLength runes.
func (e *TextEntry) SetText(s string) {
	if utf8.RuneCountInString(s) > state.MaxTextLength {
		s = string([]rune(s)[:state.MaxTextLength])
	}
	e.mu.Lock()
	e.value = s
	e.mu.Unlock()
}

func (e *TextEntry) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

// Click opens a text entry at (x, y) when the text tool is active and
// returns it. Any entry still open is discarded along with its text. With
// another tool active Click does nothing and returns nil.
func (s *Surface) Click(x, y float64) *TextEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tools.Tool != state.ToolText {
		return nil
	}
	s.text = &TextEntry{X: x, Y: y}
	return s.text
}

// OpenText returns the entry currently open, or nil.
func (s *Surface) OpenText() *TextEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// CommitText rasterizes the entry at its anchor with the active color and
// stroke width as font size, sends it and closes the entry. Committing an
// entry that was discarded or already committed does nothing. Empty text is
// still sent.
func (s *Surface) CommitText(e *TextEntry) bool {
	if e == nil {
		return false
	}
	s.mu.Lock()
	if s.text != e {
		s.mu.Unlock()
		return false
	}
	s.text = nil

	ts := s.tools
	body := e.Text()
	s.raster.Paint(canvas.Label{X: e.X, Y: e.Y, Size: ts.StrokeWidth, Text: body, Color: ts.Color})
	out := s.stampLocked([]state.Message{
		state.NewText(ts.Color, ts.StrokeWidth, state.Point{X: e.X, Y: e.Y}, body),
	})
	s.mu.Unlock()

	s.send(out)
	s.changed()
	return true
}
