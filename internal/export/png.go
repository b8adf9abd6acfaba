// Package export turns a surface snapshot into a file.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFilename is the name every PNG export gets.
const DefaultFilename = "whiteboard.png"

var ErrUnsupportedFormat = errors.New("unsupported export format")

type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// FormatOf picks the format from a file name extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return FormatPNG, nil
	case ".pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// Write encodes img in the given format.
func Write(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		return WritePNG(w, img)
	case FormatPDF:
		return WritePDF(w, img)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// SaveFile writes img to path in the format its extension names.
func SaveFile(path string, img image.Image) (err error) {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(out, img, f)
}
