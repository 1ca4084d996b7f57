package gjuliaaux

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	math "github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/math/ms1"
)

// A great portion of the HSV logic in this file taken from Esme Lamb's (@dedelala)
// excellent color manipulation work presented at Gophercon AU 2024.
// https://github.com/dedelala/disco/tree/main/color

var red = color.RGBA{R: 255, A: 255}

// Polynomial fit of matplotlib's viridis colormap by Matt Zucker.
var viridisCoefs = [7]ms3.Vec{
	{X: 0.2777273272234177, Y: 0.005407344544966578, Z: 0.3340998053353061},
	{X: 0.1050930431085774, Y: 1.404613529898575, Z: 1.384590162594685},
	{X: -0.3308618287255563, Y: 0.214847559468213, Z: 0.09509516302823659},
	{X: -4.634230498983486, Y: -5.799100973351585, Z: -19.33244095627987},
	{X: 6.228269936347081, Y: 14.17993336680509, Z: 56.69055260068105},
	{X: 4.776384997670288, Y: -13.74514537774601, Z: -65.35303263337234},
	{X: -5.435455855934631, Y: 4.645852612178535, Z: 26.3124352495832},
}

func viridis(t float32) color.RGBA {
	t = ms1.Clamp(t, 0, 1)
	c := viridisCoefs[len(viridisCoefs)-1]
	for i := len(viridisCoefs) - 2; i >= 0; i-- {
		c = ms3.Add(viridisCoefs[i], ms3.Scale(t, c))
	}
	return color.RGBA{
		R: uint8(ms1.Clamp(c.X, 0, 1) * 255),
		G: uint8(ms1.Clamp(c.Y, 0, 1) * 255),
		B: uint8(ms1.Clamp(c.Z, 0, 1) * 255),
		A: 255,
	}
}

// ColorConversionViridis returns a progress to color conversion using the viridis colormap,
// the default lookup texture of the fractal shaders. Returns red for NaN values.
func ColorConversionViridis() func(float32) color.Color {
	return func(progress float32) color.Color {
		if math.IsNaN(progress) {
			return red
		}
		return viridis(progress)
	}
}

// ViridisLUT returns a width×1 lookup texture of the viridis colormap suitable as the vSampler of the fractal shaders.
func ViridisLUT(width int) *image.RGBA {
	if width < 2 {
		panic("LUT width must be at least 2")
	}
	img := image.NewRGBA(image.Rect(0, 0, width, 1))
	for i := 0; i < width; i++ {
		img.SetRGBA(i, 0, viridis(float32(i)/float32(width-1)))
	}
	return img
}

// ColorConversionLUT returns a progress to color conversion that samples lut along its
// horizontal center line at progress as the shaders do with texture(vSampler, vec2(progress,0.5)).
// Progress is clamped to [0,1] and sampled with the nearest texel.
func ColorConversionLUT(lut image.Image) (func(float32) color.Color, error) {
	bb := lut.Bounds()
	if bb.Dx() == 0 || bb.Dy() == 0 {
		return nil, errors.New("empty lookup texture")
	}
	y := bb.Min.Y + bb.Dy()/2
	width := float32(bb.Dx())
	return func(progress float32) color.Color {
		if math.IsNaN(progress) {
			return red
		}
		x := int(ms1.Clamp(progress*width, 0, width-1))
		return lut.At(bb.Min.X+x, y)
	}, nil
}

// LoadLUT decodes a PNG or JPEG lookup texture from the file at path.
func LoadLUT(path string) (image.Image, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	img, _, err := image.Decode(fp)
	if err != nil {
		return nil, fmt.Errorf("decoding LUT %s: %w", path, err)
	}
	return img, nil
}

// ColorConversionLinearGradient creates a color conversion function that interpolates
// c0 at zero progress to c1 at full progress in HSV space.
func ColorConversionLinearGradient(c0, c1 color.Color) func(progress float32) color.Color {
	h0, s0, v0 := colorToHSV(c0)
	h1, s1, v1 := colorToHSV(c1)
	return func(progress float32) color.Color {
		if math.IsNaN(progress) {
			return red
		}
		t := ms1.Clamp(progress, 0, 1)
		c := rgbToC(hsvToRGB(interpHSV(h0, s0, v0, h1, s1, v1, t)))
		return color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 255}
	}
}

func percentUint64(num, denom uint64) float32 {
	if denom == 0 {
		return 0
	}
	return math.Trunc(10000*float32(num)/float32(denom)) / 100
}

func interpHSV(h0, s0, v0, h1, s1, v1, t float32) (h, s, v float32) {
	switch {
	case h1-h0 > 0.5:
		h0 += 1.0
	case h1-h0 < -0.5:
		h1 += 1.0
	}
	h = ms1.Interp(h0, h1, t)
	if h > 1 {
		h -= 1
	}
	s = ms1.Interp(s0, s1, t)
	v = ms1.Interp(v0, v1, t)
	return h, s, v
}

func colorToHSV(c color.Color) (h, s, v float32) {
	r0, g0, b0, _ := c.RGBA()
	return rgbToHSV(float32(r0>>8)/math.MaxUint8, float32(g0>>8)/math.MaxUint8, float32(b0>>8)/math.MaxUint8)
}

// rgbToC converts r, g, and b values on the range of 0.0 to 1.0 to a
// 24 bit RGB value stored in the least significant bits of a uint32. The inputs
// are clamped to the range of 0.0 to 1.0
func rgbToC(r, g, b float32) (c uint32) {
	return uint32(ms1.Clamp(r, 0, 1)*math.MaxUint8)<<16 |
		uint32(ms1.Clamp(g, 0, 1)*math.MaxUint8)<<8 |
		uint32(ms1.Clamp(b, 0, 1)*math.MaxUint8)
}

// hsvToRGB converts hue, saturation and brightness values on the range of 0.0
// to 1.0 to RGB floating point values on the range of 0.0 to 1.0
func hsvToRGB(h, s, v float32) (r, g, b float32) {
	var (
		c = s * v
		x = c * (1 - math.Abs(math.Mod(h*6, 2)-1))
		m = v - c
	)
	switch {
	case h >= 0 && h <= 1.0/6:
		r, g, b = c, x, 0
	case h > 1.0/6 && h <= 2.0/6:
		r, g, b = x, c, 0
	case h > 2.0/6 && h <= 3.0/6:
		r, g, b = 0, c, x
	case h > 3.0/6 && h <= 4.0/6:
		r, g, b = 0, x, c
	case h > 4.0/6 && h <= 5.0/6:
		r, g, b = x, 0, c
	case h > 5.0/6 && h <= 1.0:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}

// rgbToHSV converts red, green, and blue floating point values on the range
// 0.0 to 1.0 to hue, saturation and brightness values on the range 0.0 to 1.0
func rgbToHSV(r, g, b float32) (h, s, v float32) {
	var (
		xmax = max(r, g, b)
		xmin = min(r, g, b)
		c    = xmax - xmin
	)
	v = xmax
	switch {
	case c == 0:
		h = 0
	case v == r:
		h = (g - b) / (c * 6)
	case v == g:
		h = 1.0/3 + (b-r)/(c*6)
	case v == b:
		h = 2.0/3 + (r-g)/(c*6)
	}
	if h < 0 {
		h += 1
	}
	if xmax > 0 {
		s = c / xmax
	}
	return
}
