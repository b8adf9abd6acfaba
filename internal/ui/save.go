package ui

import (
	"fmt"
	"io"
	"log/slog"

	"SketchBoard/internal/board"
	"SketchBoard/internal/export"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// ShowSaveDialog asks for a destination and writes the board there. The
// file extension picks PNG or PDF.
func ShowSaveDialog(win fyne.Window, b *BoardWidget) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		if writer == nil {
			return
		}
		b.SaveTo(writer)
	}, win)
	d.SetFileName(export.DefaultFilename)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".pdf"}))
	d.Show()
}

// SaveTo writes the board to writer and closes it.
func (b *BoardWidget) SaveTo(writer fyne.URIWriteCloser) {
	defer func() {
		if err := writer.Close(); err != nil {
			b.logger.Warn("closing export", slog.String("err", err.Error()))
		}
	}()

	name := writer.URI().Name()
	if err := writeBoard(writer, name, b.surface); err != nil {
		b.logger.Error("export failed", slog.String("file", name), slog.String("err", err.Error()))
		b.SetStatus("Error saving " + name)
		return
	}
	b.SetStatus("Saved " + name)
}

func writeBoard(w io.Writer, name string, s *board.Surface) error {
	f, err := export.FormatOf(name)
	if err != nil {
		return err
	}
	switch f {
	case export.FormatPDF:
		err = s.ExportPDF(w)
	default:
		err = s.ExportPNG(w)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
