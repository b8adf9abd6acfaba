// Package board is the drawing surface: it owns the selected tool, turns
// pointer events into raster operations, hands every committed operation to
// a transport and replays operations received from peers.
//
// A Surface is safe for concurrent use. Local input and remote replay are
// serialized on one mutex; the transport is always called after the mutex is
// released.
package board

import (
	"context"
	"image"
	"log/slog"
	"sync"

	"SketchBoard/internal/canvas"
	"SketchBoard/internal/state"
)

// Transport carries messages to peers. Send must not block on the network.
type Transport interface {
	Send(msg state.Message) error
}

type Surface struct {
	mu        sync.Mutex
	raster    *canvas.Raster
	tools     state.ToolState
	clock     *state.Clock
	transport Transport
	logger    *slog.Logger

	drawing bool
	start   state.Point
	last    state.Point
	text    *TextEntry

	// OnChange is called, without the lock held, after anything visible
	// changed: a local stroke, a replayed message, a clear or a resize.
	OnChange func()
}

type Option func(*Surface)

func WithTransport(t Transport) Option {
	return func(s *Surface) { s.transport = t }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Surface) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(c *state.Clock) Option {
	return func(s *Surface) {
		if c != nil {
			s.clock = c
		}
	}
}

// New creates a blank surface of width x height pixels with the default
// tool state.
func New(width, height int, opts ...Option) *Surface {
	s := &Surface{
		raster: canvas.New(width, height, state.BackgroundColor),
		tools:  state.DefaultToolState(),
		clock:  state.NewClock(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetTransport attaches the transport after construction, for callers that
// create the surface before the connection exists.
func (s *Surface) SetTransport(t Transport) {
	s.mu.Lock()
	s.transport = t
	s.mu.Unlock()
}

func (s *Surface) Site() string { return s.clock.Site() }

func (s *Surface) Tools() state.ToolState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tools
}

// SetTool switches the active tool. Switching away from a shape tool in the
// middle of a drag drops the uncommitted preview.
func (s *Surface) SetTool(t state.Tool) error {
	t, err := state.ParseTool(string(t))
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.tools.Tool != t && s.drawing {
		s.drawing = false
		s.raster.DiscardPreview()
	}
	s.tools.Tool = t
	s.mu.Unlock()
	s.changed()
	return nil
}

func (s *Surface) SetColor(c string) error {
	hex, err := state.NormalizeColor(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tools.Color = hex
	s.mu.Unlock()
	return nil
}

func (s *Surface) SetStrokeWidth(w float64) error {
	if err := state.ValidateWidth(w); err != nil {
		return err
	}
	s.mu.Lock()
	s.tools.StrokeWidth = w
	s.mu.Unlock()
	return nil
}

// PointerDown starts a drag at (x, y). It is ignored while the text tool is
// active; text is placed with Click.
func (s *Surface) PointerDown(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tools.Tool == state.ToolText {
		return
	}
	s.drawing = true
	s.start = state.Point{X: x, Y: y}
	s.last = s.start
}

// PointerMove extends the current drag. Strokes paint and emit one segment
// per sample; shapes only update the preview layer.
func (s *Surface) PointerMove(x, y float64) {
	s.mu.Lock()
	if !s.drawing {
		s.mu.Unlock()
		return
	}

	ts := s.tools
	p := state.Point{X: x, Y: y}
	style := canvas.Style{Color: ts.StrokeColor(), Width: ts.StrokeWidth}

	var out []state.Message
	switch ts.Tool {
	case state.ToolPencil, state.ToolEraser:
		s.raster.Paint(canvas.Line{X1: s.last.X, Y1: s.last.Y, X2: x, Y2: y, Style: style})
		out = append(out, state.NewSegment(ts.Tool, ts.StrokeColor(), ts.StrokeWidth, s.last, p))
	case state.ToolRectangle:
		r := canvas.RectFromPoints(s.start.X, s.start.Y, x, y)
		r.Style = style
		s.raster.Preview(r)
	case state.ToolCircle:
		s.raster.Preview(canvas.Circle{
			CX: s.start.X, CY: s.start.Y,
			R:     canvas.Radius(s.start.X, s.start.Y, x, y),
			Style: style,
		})
	}
	s.last = p
	out = s.stampLocked(out)
	s.mu.Unlock()

	s.send(out)
	s.changed()
}

// PointerUp ends the drag. A pending shape preview is committed to the
// content layer and sent as a single message.
func (s *Surface) PointerUp() {
	s.finish()
}

// PointerLeave ends the drag exactly like PointerUp.
func (s *Surface) PointerLeave() {
	s.finish()
}

func (s *Surface) finish() {
	s.mu.Lock()
	if !s.drawing {
		s.mu.Unlock()
		return
	}
	s.drawing = false

	ts := s.tools
	var out []state.Message
	if _, ok := s.raster.Commit(); ok && ts.Tool.IsShape() {
		out = append(out, state.NewSegment(ts.Tool, ts.StrokeColor(), ts.StrokeWidth, s.start, s.last))
	}
	out = s.stampLocked(out)
	s.mu.Unlock()

	s.send(out)
	s.changed()
}

// Drawing reports whether a drag is in progress.
func (s *Surface) Drawing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawing
}

// Preview returns the uncommitted shape on the preview layer, if any.
func (s *Surface) Preview() (canvas.Shape, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raster.Pending()
}

// Clear wipes the local surface. Peers are not told.
func (s *Surface) Clear() {
	s.mu.Lock()
	s.raster.Clear()
	s.drawing = false
	s.mu.Unlock()
	s.changed()
}

// Resize follows the host window; existing drawing is kept.
func (s *Surface) Resize(width, height int) {
	s.mu.Lock()
	w, h := s.raster.Size()
	if w == width && h == height {
		s.mu.Unlock()
		return
	}
	s.raster.Resize(width, height)
	s.mu.Unlock()
	s.changed()
}

func (s *Surface) Size() (width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raster.Size()
}

// Snapshot returns a copy of the composited surface.
func (s *Surface) Snapshot() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raster.Image()
}

func (s *Surface) stampLocked(msgs []state.Message) []state.Message {
	for i := range msgs {
		msgs[i] = s.clock.Stamp(msgs[i])
	}
	return msgs
}

// send is best effort: a failed send is logged and drawing carries on.
func (s *Surface) send(msgs []state.Message) {
	if len(msgs) == 0 {
		return
	}
	s.mu.Lock()
	t := s.transport
	s.mu.Unlock()
	if t == nil {
		return
	}
	for _, m := range msgs {
		if err := t.Send(m); err != nil {
			s.logger.LogAttrs(context.Background(), slog.LevelWarn, "send failed",
				slog.String("tool", string(m.Tool)),
				slog.String("err", err.Error()),
			)
		}
	}
}

func (s *Surface) changed() {
	if fn := s.OnChange; fn != nil {
		fn()
	}
}
