package board

import (
	"io"
	"path/filepath"

	"SketchBoard/internal/export"
)

// ExportPNG writes the current surface as PNG.
func (s *Surface) ExportPNG(w io.Writer) error {
	return export.WritePNG(w, s.Snapshot())
}

// ExportPDF writes the current surface as a single-page PDF.
func (s *Surface) ExportPDF(w io.Writer) error {
	return export.WritePDF(w, s.Snapshot())
}

// Save writes whiteboard.png into dir and returns the full path.
func (s *Surface) Save(dir string) (string, error) {
	path := filepath.Join(dir, export.DefaultFilename)
	return path, export.SaveFile(path, s.Snapshot())
}
