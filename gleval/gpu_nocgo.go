//go:build tinygo || !cgo

package gleval

import (
	"errors"
	"io"

	"github.com/soypat/geometry/ms2"
)

var errNoCGO = errors.New("GPU evaluation requires CGo and is not supported on TinyGo")

// Init1x1GLFW starts a 1x1 sized GLFW so that user can start working with GPU.
func Init1x1GLFW() (terminate func(), err error) {
	return nil, errNoCGO
}

// NewComputeGPUFractal instantiates a [Fractal] that runs on the GPU.
func NewComputeGPUFractal(glglSourceCode io.Reader, cfg ComputeConfig) (*FractalCompute, error) {
	return nil, errNoCGO
}

type FractalCompute struct {
	cfg ComputeConfig
}

func (fc *FractalCompute) Config() ComputeConfig { return fc.cfg }

func (fc *FractalCompute) Evaluate(pos []ms2.Vec, progress []float32, userData any) error {
	return errNoCGO
}

func (fc *FractalCompute) Delete() {}
