package canvas

import (
	"math"

	"github.com/gogpu/gg"
)

// Style is the stroke or fill paint of a shape.
type Style struct {
	Color string
	Width float64
}

// Shape is anything the raster knows how to paint.
type Shape interface {
	paint(dc *gg.Context, fonts *fontCache)
}

// Line is one segment of a pencil or eraser stroke.
type Line struct {
	X1, Y1, X2, Y2 float64
	Style
}

// Rect is an axis-aligned outline. Width and Height may be negative when the
// drag went toward the origin.
type Rect struct {
	X, Y, W, H float64
	Style
}

// Circle is an outline centered at (CX, CY).
type Circle struct {
	CX, CY, R float64
	Style
}

// Label is text whose baseline starts at (X, Y).
type Label struct {
	X, Y float64
	Size float64
	Text string
	Color string
}

// RectFromPoints returns the rectangle spanned by a press point and the
// current pointer position.
func RectFromPoints(x0, y0, x1, y1 float64) Rect {
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Radius is the Euclidean distance between the press point and the current
// pointer position.
func Radius(x0, y0, x1, y1 float64) float64 {
	return math.Hypot(x1-x0, y1-y0)
}

func applyStroke(dc *gg.Context, st Style) {
	dc.SetColor(gg.Hex(st.Color).Color())
	dc.SetLineWidth(st.Width)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
}

func (l Line) paint(dc *gg.Context, _ *fontCache) {
	applyStroke(dc, l.Style)
	dc.DrawLine(l.X1, l.Y1, l.X2, l.Y2)
	_ = dc.Stroke()
}

func (r Rect) paint(dc *gg.Context, _ *fontCache) {
	applyStroke(dc, r.Style)
	dc.SetLineCap(gg.LineCapButt)
	dc.SetLineJoin(gg.LineJoinMiter)
	dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	_ = dc.Stroke()
}

func (c Circle) paint(dc *gg.Context, _ *fontCache) {
	applyStroke(dc, c.Style)
	dc.DrawCircle(c.CX, c.CY, c.R)
	_ = dc.Stroke()
}

func (l Label) paint(dc *gg.Context, fonts *fontCache) {
	if l.Text == "" {
		return
	}
	face, err := fonts.face(l.Size)
	if err != nil {
		logger().Warn("font unavailable", "size", l.Size, "err", err)
		return
	}
	dc.SetFont(face)
	dc.SetColor(gg.Hex(l.Color).Color())
	dc.DrawString(l.Text, l.X, l.Y)
}
