package board

import (
	"errors"
	"testing"

	"SketchBoard/internal/state"
)

func TestHandleMessage(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		wantErr error
		painted bool
	}{
		{
			name:    "pencil",
			frame:   `{"tool":"pencil","color":"#000000","lineWidth":5,"startX":10,"startY":100,"endX":190,"endY":100}`,
			painted: true,
		},
		{
			name:    "line width as string",
			frame:   `{"tool":"pencil","color":"#000000","lineWidth":"8","startX":10,"startY":100,"endX":190,"endY":100}`,
			painted: true,
		},
		{
			name:    "text",
			frame:   `{"tool":"text","color":"#000000","lineWidth":40,"x":20,"y":120,"text":"WWWW"}`,
			painted: true,
		},
		{
			name:    "unknown tool",
			frame:   `{"tool":"spray","color":"#000000","lineWidth":5,"startX":10,"startY":100,"endX":190,"endY":100}`,
			wantErr: state.ErrUnknownTool,
		},
		{
			name:    "missing coordinates",
			frame:   `{"tool":"pencil","color":"#000000","lineWidth":5,"startX":10}`,
			wantErr: state.ErrMissingField,
		},
		{
			name:    "not json",
			frame:   `{"tool":`,
			wantErr: state.ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(200, 200)
			err := s.HandleMessage([]byte(tt.frame))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("HandleMessage() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("HandleMessage() error = %v", err)
			}
			if got := !allBlank(s.Snapshot()); got != tt.painted {
				t.Errorf("painted = %v, want %v", got, tt.painted)
			}
		})
	}
}

func TestBadMessageDoesNotStopLaterOnes(t *testing.T) {
	s := New(200, 200)
	frames := []string{
		`garbage`,
		`{"tool":"circle","color":"#000000"}`,
		`{"tool":"pencil","color":"#000000","lineWidth":5,"startX":10,"startY":100,"endX":190,"endY":100}`,
	}
	var failed int
	for _, f := range frames {
		if err := s.HandleMessage([]byte(f)); err != nil {
			failed++
		}
	}
	if failed != 2 {
		t.Errorf("%d frames failed, want 2", failed)
	}
	if isBlank(s.Snapshot(), 100, 100) {
		t.Error("valid frame after bad ones was not replayed")
	}
}

func TestApplyRemoteEraser(t *testing.T) {
	s := New(200, 200)
	s.PointerDown(10, 100)
	s.PointerMove(190, 100)
	s.PointerUp()

	// A peer that still sends its pen color for eraser strokes.
	eraser := state.NewSegment(state.ToolEraser, "#ff0000", 20, state.Point{X: 100, Y: 80}, state.Point{X: 100, Y: 120})
	if err := s.Apply(eraser); err != nil {
		t.Fatal(err)
	}
	if !isBlank(s.Snapshot(), 100, 100) {
		t.Error("remote eraser should paint background")
	}
}

func TestApplyAdvancesClock(t *testing.T) {
	clock := state.NewClock()
	rec := &recorder{}
	s := New(100, 100, WithClock(clock), WithTransport(rec))

	m := state.NewSegment(state.ToolPencil, "#000000", 2, state.Point{}, state.Point{X: 5, Y: 5})
	m.Seq = 41
	if err := s.Apply(m); err != nil {
		t.Fatal(err)
	}

	s.PointerDown(0, 0)
	s.PointerMove(1, 1)
	got := rec.sent()
	if len(got) != 1 || got[0].Seq != 42 {
		t.Fatalf("local seq after observing 41 = %v", got)
	}
}

func TestApplyAll(t *testing.T) {
	s := New(100, 100)
	good := state.NewSegment(state.ToolPencil, "#000000", 3, state.Point{X: 0, Y: 50}, state.Point{X: 100, Y: 50})
	bad := state.Message{Tool: "laser"}
	if skipped := s.ApplyAll([]state.Message{bad, good, bad}); skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
}
