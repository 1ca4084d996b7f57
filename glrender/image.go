package glrender

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/gjulia/gleval"
)

type setImage = interface {
	image.Image
	Set(x, y int, c color.Color)
}

// ImageRenderer converts fractals to images.
type ImageRenderer struct {
	conv     func(progress float32) color.Color
	pos      []ms2.Vec
	progress []float32
}

// NewImageRenderer instances a new [ImageRenderer] to render images from fractals. A nil progress->color conversion
// function results in a grayscale color scheme where white is full progress. Invalid progress values are drawn red.
func NewImageRenderer(evalBufferSize int, conversion func(float32) color.Color) (*ImageRenderer, error) {
	if evalBufferSize <= 64 {
		return nil, errors.New("too small evaluation buffer size")
	}
	if conversion == nil {
		conversion = func(f float32) color.Color {
			if math32.IsNaN(f) || math32.IsInf(f, 0) {
				return color.RGBA{R: 255, A: 255}
			}
			return color.Gray{Y: uint8(255 * math32.Min(math32.Max(f, 0), 1))}
		}
	}
	ir := &ImageRenderer{
		conv:     conversion,
		pos:      make([]ms2.Vec, evalBufferSize),
		progress: make([]float32, evalBufferSize),
	}
	return ir, nil
}

// Render maps the fractal to the input Image through the viewport and renders it.
// The viewport's aspect ratio is used as is. It uses userData as an argument to all [gleval.Fractal.Evaluate] calls.
func (ir *ImageRenderer) Render(fractal gleval.Fractal, vp Viewport, img setImage, userData any) error {
	imgBB := img.Bounds()
	dxi := imgBB.Dx()
	dyi := imgBB.Dy()
	if dxi == 0 || dyi == 0 {
		return errors.New("empty image")
	} else if len(ir.progress) < dxi {
		return fmt.Errorf("require evaluation buffer (%d) to be at least of length of image rows (%d)", len(ir.progress), dxi)
	}
	rowsPerEval := len(ir.progress) / dxi
	for j := 0; j < dyi; j += rowsPerEval {
		nrows := min(rowsPerEval, dyi-j)
		err := ir.renderRows(fractal, vp, j, nrows, imgBB, img, userData)
		if err != nil {
			return err
		}
	}
	return nil
}

func (ir *ImageRenderer) renderRows(fractal gleval.Fractal, vp Viewport, startRow, nrows int, imgBB image.Rectangle, img setImage, userData any) error {
	dxi := imgBB.Dx()
	dyi := imgBB.Dy()
	n := dxi * nrows
	for j := 0; j < nrows; j++ {
		for i := 0; i < dxi; i++ {
			ir.pos[j*dxi+i] = vp.Map(PixelNDC(i, startRow+j, dxi, dyi))
		}
	}
	err := fractal.Evaluate(ir.pos[:n], ir.progress[:n], userData)
	if err != nil {
		return err
	}
	conv := ir.conv
	for j := 0; j < nrows; j++ {
		for i := 0; i < dxi; i++ {
			img.Set(i+imgBB.Min.X, startRow+j+imgBB.Min.Y, conv(ir.progress[j*dxi+i]))
		}
	}
	return nil
}
