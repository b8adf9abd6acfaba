package ui

import (
	"errors"
	"log/slog"

	"SketchBoard/internal/state"
)

// Receive replays one frame from the transport. Bad frames are logged and
// dropped; the board keeps going.
func (b *BoardWidget) Receive(data []byte) {
	err := b.surface.HandleMessage(data)
	switch {
	case err == nil:
	case errors.Is(err, state.ErrUnknownTool):
		b.logger.Debug("ignoring message", slog.String("err", err.Error()))
	default:
		b.logger.Warn("bad message from peer", slog.String("err", err.Error()))
	}
}

// SetStatus shows text in the status line. Safe to call from any goroutine,
// including before the board has been put in a window.
func (b *BoardWidget) SetStatus(text string) {
	if b.onMain(func() { b.status.SetText(text) }) {
		return
	}
	b.mu.Lock()
	b.status.Text = text
	b.mu.Unlock()
}

func (b *BoardWidget) Status() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status.Text
}
