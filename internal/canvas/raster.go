// Package canvas is the pixel surface behind a drawing board. It keeps two
// layers: the content layer, which is the only durable record of what was
// drawn, and a transparent preview layer holding at most one uncommitted
// shape. Display and export composite the preview over the content.
//
// A Raster is not safe for concurrent use; the owning board serializes
// access.
package canvas

import (
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/gogpu/gg"
)

type Raster struct {
	content    *gg.Context
	preview    *gg.Context
	pending    Shape
	background gg.RGBA
	fonts      *fontCache
}

// New allocates a raster of width x height pixels filled with background.
// Non-positive dimensions are raised to one pixel.
func New(width, height int, background string) *Raster {
	width, height = max(width, 1), max(height, 1)
	r := &Raster{
		content:    gg.NewContext(width, height),
		preview:    gg.NewContext(width, height),
		background: gg.Hex(background),
		fonts:      newFontCache(),
	}
	r.content.ClearWithColor(r.background)
	r.preview.Clear()
	return r
}

func (r *Raster) Size() (width, height int) {
	return r.content.Width(), r.content.Height()
}

// Paint draws s straight onto the content layer.
func (r *Raster) Paint(s Shape) {
	s.paint(r.content, r.fonts)
}

// Preview replaces whatever is on the preview layer with s. The content
// layer is untouched.
func (r *Raster) Preview(s Shape) {
	r.preview.Clear()
	s.paint(r.preview, r.fonts)
	r.pending = s
}

// Pending returns the shape currently on the preview layer.
func (r *Raster) Pending() (Shape, bool) {
	return r.pending, r.pending != nil
}

// Commit paints the pending preview shape onto the content layer and empties
// the preview layer. It returns the committed shape, if any.
func (r *Raster) Commit() (Shape, bool) {
	s := r.pending
	r.DiscardPreview()
	if s == nil {
		return nil, false
	}
	r.Paint(s)
	return s, true
}

func (r *Raster) DiscardPreview() {
	r.pending = nil
	r.preview.Clear()
}

// Clear wipes both layers back to the background.
func (r *Raster) Clear() {
	r.content.ClearWithColor(r.background)
	r.DiscardPreview()
}

// Resize changes the raster dimensions. Existing content stays anchored at
// the top-left corner; anything outside the new bounds is cropped.
func (r *Raster) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if w, h := r.Size(); w == width && h == height {
		return
	}

	old := r.content.Image()
	next := gg.NewContext(width, height)
	next.ClearWithColor(r.background)
	next.DrawImage(gg.ImageBufFromImage(old), 0, 0)
	r.content = next

	r.preview = gg.NewContext(width, height)
	r.preview.Clear()
	if r.pending != nil {
		r.pending.paint(r.preview, r.fonts)
	}
}

// Image composites the preview layer over the content layer.
func (r *Raster) Image() image.Image {
	content := r.content.Image()
	out := image.NewRGBA(content.Bounds())
	draw.Draw(out, out.Bounds(), content, content.Bounds().Min, draw.Src)
	if r.pending != nil {
		preview := r.preview.Image()
		draw.Draw(out, out.Bounds(), preview, preview.Bounds().Min, draw.Over)
	}
	return out
}

// EncodePNG writes the composited surface as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.Image())
}
