//go:build !tinygo && cgo

package gleval

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glgl/v4.6-core/glgl"
)

// Init1x1GLFW starts a 1x1 sized GLFW so that user can start working with GPU.
// It returns a termination function that should be called when user is done running loads on GPU.
func Init1x1GLFW() (terminate func(), err error) {
	_, terminate, err = glgl.InitWithCurrentWindow33(glgl.WindowConfig{
		Title:   "compute",
		Version: [2]int{4, 6},
		Width:   1,
		Height:  1,
	})
	return terminate, err
}

// NewComputeGPUFractal instantiates a [Fractal] that runs on the GPU from a compute
// program in glgl's combined format, as written by glbuild.Programmer.WriteComputeJulia.
// cfg must match the parameters the program was written with.
func NewComputeGPUFractal(glglSourceCode io.Reader, cfg ComputeConfig) (*FractalCompute, error) {
	err := cfg.validate()
	if err != nil {
		return nil, err
	} else if cfg.InvocX < 1 {
		return nil, errors.New("zero or negative invocation size")
	}
	combinedSource, err := glgl.ParseCombined(glglSourceCode)
	if err != nil {
		return nil, err
	}
	glprog, err := glgl.CompileProgram(combinedSource)
	if err != nil {
		return nil, errors.New(string(combinedSource.Compute) + "\n" + err.Error())
	}
	return &FractalCompute{prog: glprog, cfg: cfg}, nil
}

// FractalCompute evaluates escape progress with a GPU compute program.
type FractalCompute struct {
	prog glgl.Program
	cfg  ComputeConfig
}

// Config returns the compute configuration.
func (fc *FractalCompute) Config() ComputeConfig { return fc.cfg }

// Evaluate implements [Fractal]. It must be called from the goroutine owning the GL context.
func (fc *FractalCompute) Evaluate(pos []ms2.Vec, progress []float32, userData any) error {
	fc.prog.Bind()
	defer fc.prog.Unbind()
	return computeEvaluate(pos, progress, fc.cfg.InvocX)
}

// Delete releases the GPU program.
func (fc *FractalCompute) Delete() {
	fc.prog.Delete()
}

func loadSSBO[T any](slice []T, base, usage uint32) (ssbo uint32) {
	var p runtime.Pinner
	p.Pin(&ssbo)
	gl.GenBuffers(1, &ssbo)
	p.Unpin()
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, ssbo)
	size := len(slice) * elemSize[T]()
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, unsafe.Pointer(&slice[0]), usage)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, base, ssbo)
	return ssbo
}

func createSSBO(size int, base, usage uint32) (ssbo uint32) {
	gl.GenBuffers(1, &ssbo)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, ssbo)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, nil, usage)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, base, ssbo)
	return ssbo
}

func copySSBO[T any](dst []T, ssbo uint32) error {
	singleSize := elemSize[T]()
	bufSize := singleSize * len(dst)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, ssbo)
	ptr := gl.MapBufferRange(gl.SHADER_STORAGE_BUFFER, 0, bufSize, gl.MAP_READ_BIT)
	if ptr == nil {
		return glErrOrMessage("failed to map SSBO buffer during copy")
	}
	defer gl.UnmapBuffer(gl.SHADER_STORAGE_BUFFER)
	gpuBytes := unsafe.Slice((*byte)(ptr), bufSize)
	bufBytes := unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), bufSize)
	copy(bufBytes, gpuBytes)
	return nil
}

func elemSize[T any]() int {
	var z T
	return int(unsafe.Sizeof(z))
}

// computeEvaluate runs the bound compute program with positions in binding 0 and progress in binding 1.
func computeEvaluate(pos []ms2.Vec, progress []float32, invocX int) (err error) {
	if len(pos) != len(progress) {
		return errMismatchBufferLength
	} else if len(progress) == 0 {
		return errEmptyBuffers
	} else if invocX < 1 {
		return errors.New("zero or negative invocation size")
	}
	var p runtime.Pinner
	var posSSBO, progSSBO uint32
	p.Pin(&posSSBO)
	p.Pin(&progSSBO)
	defer p.Unpin()

	posSSBO = loadSSBO(pos, 0, gl.STATIC_DRAW)
	if posSSBO == 0 {
		return glErrOrMessage("zero SSBO id set by GL during compute loading")
	}
	defer gl.DeleteBuffers(1, &posSSBO)

	progSSBO = createSSBO(elemSize[float32]()*len(progress), 1, gl.DYNAMIC_READ)
	if progSSBO == 0 {
		return glErrOrMessage("zero id SSBO creating progress buffer")
	}
	defer gl.DeleteBuffers(1, &progSSBO)
	nWorkX := (len(progress) + invocX - 1) / invocX
	gl.DispatchCompute(uint32(nWorkX), 1, 1)
	gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT)
	err = copySSBO(progress, progSSBO)
	if err != nil {
		return err
	}
	return glgl.Err()
}

func glErrOrMessage(defaultMsg string) (err error) {
	err = glgl.Err()
	if err == nil {
		err = errors.New(defaultMsg)
	} else {
		err = fmt.Errorf("%s: %w", defaultMsg, err)
	}
	return err
}
