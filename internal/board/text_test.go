package board

import (
	"strings"
	"testing"
	"unicode/utf8"

	"SketchBoard/internal/state"
)

func TestClickOpensOneEntry(t *testing.T) {
	s, rec := newSurface(t, state.ToolText)

	first := s.Click(100, 50)
	if first == nil {
		t.Fatal("Click with the text tool should open an entry")
	}
	if first.X != 100 || first.Y != 50 {
		t.Errorf("entry anchored at (%v,%v), want (100,50)", first.X, first.Y)
	}
	first.SetText("draft")

	second := s.Click(200, 60)
	if second == nil || second == first {
		t.Fatal("second click should open a fresh entry")
	}
	if second.X != 200 || second.Y != 60 {
		t.Errorf("entry anchored at (%v,%v), want (200,60)", second.X, second.Y)
	}
	if s.OpenText() != second {
		t.Error("only the newest entry should be open")
	}

	if s.CommitText(first) {
		t.Error("discarded entry must not commit")
	}
	if n := len(rec.sent()); n != 0 {
		t.Errorf("discarded text was sent: %d messages", n)
	}
}

func TestCommitText(t *testing.T) {
	s, rec := newSurface(t, state.ToolText)
	if err := s.SetStrokeWidth(24); err != nil {
		t.Fatal(err)
	}
	e := s.Click(30, 80)
	e.SetText("Hello")

	if !s.CommitText(e) {
		t.Fatal("CommitText should accept the open entry")
	}
	if s.OpenText() != nil {
		t.Error("entry should be closed after commit")
	}
	if s.CommitText(e) {
		t.Error("second commit of the same entry should do nothing")
	}

	got := rec.sent()
	if len(got) != 1 {
		t.Fatalf("sent %d messages, want 1", len(got))
	}
	m := got[0]
	if m.Tool != state.ToolText || m.Body() != "Hello" || m.At() != (state.Point{X: 30, Y: 80}) || m.LineWidth != 24 {
		t.Errorf("text message = %+v", m)
	}
	if allBlank(s.Snapshot()) {
		t.Error("text was not rasterized")
	}
}

func TestCommitTextCutsLongInput(t *testing.T) {
	s, rec := newSurface(t, state.ToolText)
	e := s.Click(10, 10)
	e.SetText(strings.Repeat("ü", state.MaxTextLength+50))
	s.CommitText(e)

	got := rec.sent()
	if len(got) != 1 {
		t.Fatalf("sent %d messages, want 1", len(got))
	}
	if n := utf8.RuneCountInString(got[0].Body()); n != state.MaxTextLength {
		t.Errorf("sent %d runes, want %d", n, state.MaxTextLength)
	}
	if err := got[0].Validate(); err != nil {
		t.Errorf("sent text does not validate: %v", err)
	}
}

func TestCommitEmptyTextStillSends(t *testing.T) {
	s, rec := newSurface(t, state.ToolText)
	e := s.Click(10, 10)
	if !s.CommitText(e) {
		t.Fatal("empty entry should still commit")
	}
	if n := len(rec.sent()); n != 1 {
		t.Errorf("sent %d messages, want 1", n)
	}
	if !allBlank(s.Snapshot()) {
		t.Error("empty text should not change the surface")
	}
}

func TestClickIgnoredWithOtherTools(t *testing.T) {
	s, _ := newSurface(t, state.ToolText)
	open := s.Click(5, 5)

	_ = s.SetTool(state.ToolPencil)
	if e := s.Click(50, 50); e != nil {
		t.Error("Click with the pencil should not open an entry")
	}
	if s.OpenText() != open {
		t.Error("Click with another tool must leave text state alone")
	}
}

func TestTextToolIgnoresDrag(t *testing.T) {
	s, rec := newSurface(t, state.ToolText)
	s.PointerDown(10, 10)
	s.PointerMove(90, 90)
	s.PointerUp()

	if s.Drawing() {
		t.Error("text tool should not start a drag")
	}
	if n := len(rec.sent()); n != 0 {
		t.Errorf("sent %d messages, want 0", n)
	}
}
