package glrender

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
)

// Viewport maps normalized device coordinates in [-1,1]² to the complex plane
// the same way the generated fragment shaders do:
//
//	z = p*exp(Zoom) - Offset
//	z.x *= AspectRatio
type Viewport struct {
	// Zoom is the natural logarithm of the plane's half height visible in the viewport.
	Zoom float32
	// Offset is subtracted from the scaled position. The view is centered on -Offset.
	Offset ms2.Vec
	// AspectRatio is the viewport width divided by its height.
	AspectRatio float32
}

// DefaultViewport returns a viewport showing [-1,1]² scaled horizontally by aspectRatio.
func DefaultViewport(aspectRatio float32) Viewport {
	return Viewport{AspectRatio: aspectRatio}
}

// Map returns the starting value of z at normalized device coordinates p.
func (vp Viewport) Map(p ms2.Vec) ms2.Vec {
	z := ms2.Sub(ms2.Scale(math32.Exp(vp.Zoom), p), vp.Offset)
	z.X *= vp.AspectRatio
	return z
}

// PixelNDC returns the normalized device coordinates of the center of pixel (x,y)
// of a width×height image with its origin at the top left corner.
func PixelNDC(x, y, width, height int) ms2.Vec {
	return ms2.Vec{
		X: 2*(float32(x)+0.5)/float32(width) - 1,
		Y: 1 - 2*(float32(y)+0.5)/float32(height),
	}
}

// Scroll zooms out for positive deltaY and zooms in for negative deltaY by a
// fixed step of one third regardless of the magnitude of deltaY.
func (vp *Viewport) Scroll(deltaY float32) {
	switch {
	case deltaY > 0:
		vp.Zoom += 1. / 3
	case deltaY < 0:
		vp.Zoom -= 1. / 3
	}
}

// Click centers the viewport on the point under the mouse position m given in
// window coordinates normalized to [-1,1]² with the Y axis pointing down.
func (vp *Viewport) Click(m ms2.Vec) {
	scale := math32.Exp(vp.Zoom)
	vp.Offset.X -= m.X * scale
	vp.Offset.Y += m.Y * scale
}

// Reset returns the viewport to zero zoom and offset keeping the aspect ratio.
func (vp *Viewport) Reset() {
	*vp = Viewport{AspectRatio: vp.AspectRatio}
}
