// Package captcha renders captcha codes into noisy PNG images. The code
// itself is generated and verified by the service layer; this package is
// purely presentational.
package captcha

import (
	"bytes"
	"fmt"
	"math/rand"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

const (
	imageWidth  = 260
	imageHeight = 90
	fontSize    = 36

	noiseLines = 40
	noiseDots  = 200
)

// Renderer draws captcha codes as PNG images
type Renderer struct {
	face font.Face
}

// NewRenderer creates a renderer with the bundled bold font
func NewRenderer() (*Renderer, error) {
	f, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	return &Renderer{face: face}, nil
}

// Render draws the code over a noisy background and returns PNG bytes.
// The noise is cosmetic jitter to frustrate OCR; it carries no state.
func (r *Renderer) Render(code string) ([]byte, error) {
	if code == "" {
		return nil, fmt.Errorf("captcha code is empty")
	}

	dc := gg.NewContext(imageWidth, imageHeight)

	// White background
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// Noisy background strokes
	dc.SetLineWidth(1)
	for i := 0; i < noiseLines; i++ {
		x1 := float64(rand.Intn(imageWidth))
		y1 := float64(rand.Intn(imageHeight))
		x2 := x1 + float64(rand.Intn(10)+1)
		y2 := y1 + float64(rand.Intn(10)+1)
		dc.SetRGB255(rand.Intn(100)+100, rand.Intn(100)+100, rand.Intn(100)+100)
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}

	// Glyphs at jittered positions
	dc.SetFontFace(r.face)
	dc.SetRGB(0, 0, 0)
	spacing := float64(imageWidth / len(code))
	for i, ch := range code {
		x := 10 + float64(i)*spacing + float64(rand.Intn(13)-6)
		y := float64(imageHeight)/2 + fontSize/3 + float64(rand.Intn(17)-8)
		dc.DrawString(string(ch), x, y)
	}

	// Noise dots over the glyphs
	for i := 0; i < noiseDots; i++ {
		x := rand.Intn(imageWidth)
		y := rand.Intn(imageHeight)
		dc.SetRGB255(rand.Intn(150), rand.Intn(150), rand.Intn(150))
		dc.SetPixel(x, y)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode captcha image: %w", err)
	}

	return buf.Bytes(), nil
}
