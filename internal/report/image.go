package report

import (
	"fmt"

	"github.com/fogleman/gg"

	"github.com/Kroner-bit/pivot-stat/internal/stats"
)

// Table image geometry, in pixels.
const (
	imagePadding = 16
	imageRowH    = 24
	imageWidth   = 600
)

var imageColumnX = []float64{0, 130, 240, 370, 500}

// TableImageSize returns the pixel size of the table image for n rows.
func TableImageSize(n int) (int, int) {
	return imageWidth, 2*imagePadding + (n+2)*imageRowH
}

// RenderTableImage draws the rows as a striped table and saves it as a PNG.
func RenderTableImage(rows []stats.Row, path string) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	w, h := TableImageSize(len(rows))
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	left := float64(imagePadding)
	y := float64(imagePadding)

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(tableTitle, left, y+imageRowH/2, 0, 0.5)
	y += imageRowH

	dc.SetRGB(0.85, 0.85, 0.85)
	dc.DrawRectangle(left, y, float64(w-2*imagePadding), imageRowH)
	dc.Fill()
	dc.SetRGB(0, 0, 0)
	for j, hdr := range tableHeader {
		dc.DrawStringAnchored(hdr, left+imageColumnX[j]+4, y+imageRowH/2, 0, 0.5)
	}
	y += imageRowH

	for i, r := range rows {
		if i%2 == 1 {
			dc.SetRGB(0.95, 0.95, 0.97)
			dc.DrawRectangle(left, y, float64(w-2*imagePadding), imageRowH)
			dc.Fill()
		}
		dc.SetRGB(0, 0, 0)
		for j, c := range cells(r) {
			dc.DrawStringAnchored(c, left+imageColumnX[j]+4, y+imageRowH/2, 0, 0.5)
		}
		y += imageRowH
	}

	dc.SetRGB(0.6, 0.6, 0.6)
	dc.SetLineWidth(1)
	top := float64(imagePadding + imageRowH)
	for _, x := range imageColumnX[1:] {
		dc.DrawLine(left+x, top, left+x, y)
	}
	dc.DrawRectangle(left, top, float64(w-2*imagePadding), y-top)
	dc.Stroke()

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save table image %s: %w", path, err)
	}
	return nil
}
