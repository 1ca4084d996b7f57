package gjuliaaux

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
)

// LabelConfig configures text drawn over rendered fractals.
type LabelConfig struct {
	// TTF is a TrueType font file. If nil Go Mono is used.
	TTF []byte
	// Size is the font size in points at 72 DPI. If zero a size relative to the image height is chosen.
	Size float64
	// Color of the text. If nil white is used.
	Color color.Color
	// Margin from the bottom left corner of the image in pixels.
	Margin int
}

// DrawLabel draws a single line of text at the bottom left corner of img.
func DrawLabel(img draw.Image, text string, cfg LabelConfig) error {
	if text == "" {
		return errors.New("empty label")
	}
	ttf := cfg.TTF
	if ttf == nil {
		ttf = gomono.TTF
	}
	ft, err := truetype.Parse(ttf)
	if err != nil {
		return err
	}
	bb := img.Bounds()
	size := cfg.Size
	if size <= 0 {
		size = max(8, float64(bb.Dy())/24)
	}
	col := cfg.Color
	if col == nil {
		col = color.White
	}
	face := truetype.NewFace(ft, &truetype.Options{Size: size, Hinting: font.HintingFull})
	defer face.Close()
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(bb.Min.X + cfg.Margin),
			Y: fixed.I(bb.Max.Y-cfg.Margin) - face.Metrics().Descent,
		},
	}
	d.DrawString(text)
	return nil
}
