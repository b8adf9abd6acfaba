package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"
)

const pdfImageName = "whiteboard"

// WritePDF writes a one-page PDF whose page is exactly the size of img, in
// points, with img covering the page.
func WritePDF(w io.Writer, img image.Image) error {
	b := img.Bounds()
	width, height := float64(b.Dx()), float64(b.Dy())

	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		return fmt.Errorf("encode page image: %w", err)
	}

	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader(pdfImageName, opts, &encoded)
	p.ImageOptions(pdfImageName, 0, 0, width, height, false, opts, 0, "")

	if err := p.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return p.Output(w)
}
