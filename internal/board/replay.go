package board

import (
	"context"
	"fmt"
	"log/slog"

	"SketchBoard/internal/canvas"
	"SketchBoard/internal/state"
)

// HandleMessage decodes one inbound frame and replays it. An error only
// concerns this frame; the caller keeps reading.
func (s *Surface) HandleMessage(data []byte) error {
	msg, err := state.Decode(data)
	if err != nil {
		s.logger.LogAttrs(context.Background(), slog.LevelDebug, "dropping inbound message",
			slog.String("err", err.Error()),
		)
		return err
	}
	return s.Apply(msg)
}

// Apply replays a remote operation onto the content layer. Every tool kind
// is replayed; an unknown kind is ignored and reported as ErrUnknownTool.
func (s *Surface) Apply(msg state.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	shape, err := shapeOf(msg)
	if err != nil {
		return err
	}

	if msg.Seq > 0 {
		s.clock.Observe(msg.Seq)
	}

	s.mu.Lock()
	s.raster.Paint(shape)
	s.mu.Unlock()

	s.changed()
	return nil
}

// ApplyAll replays msgs in order, skipping and counting the ones that fail.
func (s *Surface) ApplyAll(msgs []state.Message) (skipped int) {
	for _, m := range msgs {
		if err := s.Apply(m); err != nil {
			skipped++
		}
	}
	return skipped
}

func shapeOf(msg state.Message) (canvas.Shape, error) {
	color, _ := state.NormalizeColor(msg.Color)
	width := float64(msg.LineWidth)
	style := canvas.Style{Color: color, Width: width}
	start, end := msg.Start(), msg.End()

	switch msg.Tool {
	case state.ToolPencil:
		return canvas.Line{X1: start.X, Y1: start.Y, X2: end.X, Y2: end.Y, Style: style}, nil
	case state.ToolEraser:
		style.Color = state.BackgroundColor
		return canvas.Line{X1: start.X, Y1: start.Y, X2: end.X, Y2: end.Y, Style: style}, nil
	case state.ToolRectangle:
		r := canvas.RectFromPoints(start.X, start.Y, end.X, end.Y)
		r.Style = style
		return r, nil
	case state.ToolCircle:
		return canvas.Circle{
			CX: start.X, CY: start.Y,
			R:     canvas.Radius(start.X, start.Y, end.X, end.Y),
			Style: style,
		}, nil
	case state.ToolText:
		at := msg.At()
		return canvas.Label{X: at.X, Y: at.Y, Size: width, Text: msg.Body(), Color: color}, nil
	}
	return nil, fmt.Errorf("%w: %q", state.ErrUnknownTool, msg.Tool)
}
