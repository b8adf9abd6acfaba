package ui

import (
	"image"
	"log/slog"
	"sync"
	"sync/atomic"

	"SketchBoard/internal/board"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// BoardWidget shows a drawing surface and feeds it pointer events. The
// surface does all the drawing; the widget only repaints when told to.
type BoardWidget struct {
	widget.BaseWidget
	surface *board.Surface
	raster  *canvas.Raster
	overlay *fyne.Container
	status  *widget.Label
	logger  *slog.Logger

	// rendered is set once the board is on a canvas. fyne.Do needs a
	// running app, so nothing is posted to the main goroutine before then.
	rendered atomic.Bool

	mu    sync.Mutex
	entry *textEntry
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.Tappable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)

func NewBoardWidget(s *board.Surface, logger *slog.Logger) *BoardWidget {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b := &BoardWidget{
		surface: s,
		overlay: container.NewWithoutLayout(),
		status:  widget.NewLabel("Ready"),
		logger:  logger,
	}
	b.raster = canvas.NewRaster(func(_, _ int) image.Image {
		return b.surface.Snapshot()
	})
	s.OnChange = func() { b.onMain(b.raster.Refresh) }
	b.ExtendBaseWidget(b)
	return b
}

func (b *BoardWidget) Surface() *board.Surface { return b.surface }

// onMain queues fn on the main goroutine and reports whether it did.
func (b *BoardWidget) onMain(fn func()) bool {
	if !b.rendered.Load() {
		return false
	}
	fyne.Do(fn)
	return true
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	b.rendered.Store(true)
	return widget.NewSimpleRenderer(container.NewStack(b.raster, b.overlay))
}

func (b *BoardWidget) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

// Resize grows or shrinks the surface with the widget. Existing content
// stays anchored at the top left.
func (b *BoardWidget) Resize(size fyne.Size) {
	b.BaseWidget.Resize(size)
	b.surface.Resize(int(size.Width), int(size.Height))
}

func (b *BoardWidget) Cursor() desktop.Cursor {
	return desktop.CrosshairCursor
}

func (b *BoardWidget) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	b.surface.PointerDown(float64(ev.Position.X), float64(ev.Position.Y))
}

func (b *BoardWidget) MouseUp(*desktop.MouseEvent) {
	b.surface.PointerUp()
}

func (b *BoardWidget) Dragged(ev *fyne.DragEvent) {
	b.surface.PointerMove(float64(ev.Position.X), float64(ev.Position.Y))
}

func (b *BoardWidget) DragEnd() {
	b.surface.PointerUp()
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent)    {}
func (b *BoardWidget) MouseMoved(*desktop.MouseEvent) {}

func (b *BoardWidget) MouseOut() {
	b.surface.PointerLeave()
}

// Tapped opens a text entry when the text tool is active.
func (b *BoardWidget) Tapped(ev *fyne.PointEvent) {
	e := b.surface.Click(float64(ev.Position.X), float64(ev.Position.Y))
	if e == nil {
		return
	}
	b.showEntry(e)
}

// showEntry puts an input field over the board at the click point,
// replacing any field that was already open.
func (b *BoardWidget) showEntry(e *board.TextEntry) {
	field := newTextEntry()
	field.SetPlaceHolder("Text")
	field.OnChanged = e.SetText
	commit := func() { b.commitEntry(field, e) }
	field.OnSubmitted = func(string) { commit() }
	field.onFocusLost = commit

	b.mu.Lock()
	old := b.entry
	b.entry = field
	b.mu.Unlock()

	if old != nil {
		b.overlay.Remove(old)
	}
	size := field.MinSize()
	field.Resize(fyne.NewSize(max(size.Width, 160), size.Height))
	field.Move(fyne.NewPos(float32(e.X), float32(e.Y)-size.Height/2))
	b.overlay.Add(field)

	if c := fyne.CurrentApp().Driver().CanvasForObject(b); c != nil {
		c.Focus(field)
	}
}

func (b *BoardWidget) commitEntry(field *textEntry, e *board.TextEntry) {
	if !b.surface.CommitText(e) {
		return
	}
	b.mu.Lock()
	if b.entry == field {
		b.entry = nil
	}
	b.mu.Unlock()
	b.overlay.Remove(field)
}

// openEntry reports the field currently shown over the board, if any.
func (b *BoardWidget) openEntry() *textEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entry
}

// textEntry is an entry that commits when it loses focus.
type textEntry struct {
	widget.Entry
	onFocusLost func()
}

func newTextEntry() *textEntry {
	e := &textEntry{}
	e.ExtendBaseWidget(e)
	return e
}

func (e *textEntry) FocusLost() {
	e.Entry.FocusLost()
	if e.onFocusLost != nil {
		e.onFocusLost()
	}
}
