package gleval

import (
	"errors"
	"fmt"
	"slices"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
)

// Fractal computes the escape progress of starting points in vectorized
// form suitable for running on GPU.
type Fractal interface {
	// Evaluate iterates the fractal's formula starting at each of pos and stores
	// the escape progress in [0,1] of each point in progress. pos and progress must be of same length.
	//
	// userData facilitates getting data to the evaluators for use in processing, such as [VecPool].
	Evaluate(pos []ms2.Vec, progress []float32, userData any) error
}

// Stepper applies one iteration of a formula to every value of z and stores the result in dst.
// It is implemented by *gjulia.Formula.
type Stepper interface {
	Step(dst, z []ms2.Vec, userData any) error
}

// Config contains the iteration parameters shared by the CPU and GPU evaluators.
type Config struct {
	// Iterations is the amount of times the formula is applied.
	Iterations int
	// EscapeRadius2 is the squared modulus of z below which an iteration counts towards the progress.
	EscapeRadius2 float32
}

// DefaultConfig returns the parameters of the generated shaders: 100 iterations, |z|² < 9.
func DefaultConfig() Config {
	return Config{Iterations: 100, EscapeRadius2: 9}
}

func (cfg Config) validate() error {
	if cfg.Iterations < 1 {
		return errors.New("iterations must be positive")
	} else if cfg.EscapeRadius2 <= 0 || math32.IsInf(cfg.EscapeRadius2, 0) {
		return errors.New("escape radius must be positive and finite")
	}
	return nil
}

// ComputeConfig configures the GPU compute dispatch.
type ComputeConfig struct {
	Config
	// InvocX is the local group size in X of the compute program, see glbuild.Programmer.ComputeInvocations.
	InvocX int
}

var (
	errEmptyBuffers         = errors.New("empty buffers")
	errMismatchBufferLength = errors.New("position and progress buffer length mismatch")
)

// Progress maps the count of iterations that stayed within the escape radius to [0,1].
func Progress(iters float32, totalIterations int) float32 {
	return math32.Log2(iters+2) / math32.Log2(float32(totalIterations)+2)
}

// NewCPUFractal returns a [Fractal] that iterates s on the CPU with cfg's parameters.
func NewCPUFractal(s Stepper, cfg Config) (*CPUFractal, error) {
	if s == nil {
		return nil, errors.New("nil stepper")
	}
	err := cfg.validate()
	if err != nil {
		return nil, err
	}
	return &CPUFractal{s: s, cfg: cfg}, nil
}

// CPUFractal evaluates a formula's escape progress on the CPU.
type CPUFractal struct {
	s   Stepper
	cfg Config
}

// Config returns the iteration parameters.
func (c *CPUFractal) Config() Config { return c.cfg }

// Evaluate implements [Fractal]. If userData is a [VecPool] or implements
// interface{ VecPool() *VecPool } the scratch buffers are acquired from it.
func (c *CPUFractal) Evaluate(pos []ms2.Vec, progress []float32, userData any) error {
	if len(pos) != len(progress) {
		return errMismatchBufferLength
	} else if len(pos) == 0 {
		return errEmptyBuffers
	}
	var z []ms2.Vec
	vp, err := GetVecPool(userData)
	if err == nil {
		z = vp.V2.Acquire(len(pos))
		defer vp.V2.Release(z)
	} else {
		z = make([]ms2.Vec, len(pos))
	}
	copy(z, pos)
	// progress doubles as the iteration counter.
	clear(progress)
	r2 := c.cfg.EscapeRadius2
	for it := 0; it < c.cfg.Iterations; it++ {
		err = c.s.Step(z, z, userData)
		if err != nil {
			return fmt.Errorf("iteration %d: %w", it, err)
		}
		for i, v := range z {
			if ms2.Dot(v, v) < r2 {
				progress[i]++
			}
		}
	}
	for i, iters := range progress {
		progress[i] = Progress(iters, c.cfg.Iterations)
	}
	return nil
}

// CachedFractal memoizes the progress of exact starting points, which is
// useful when many renders share points, such as re-renders of the same viewport.
type CachedFractal struct {
	fractal  Fractal
	m        map[[2]uint32]float32
	posbuf   []ms2.Vec
	progbuf  []float32
	idxbuf   []int
	hits     uint64
	evals    uint64
	maxCache int
}

// NewCachedFractal returns a cache over f holding at most maxEntries points.
// When the cache is full it is cleared.
func NewCachedFractal(f Fractal, maxEntries int) (*CachedFractal, error) {
	if f == nil {
		return nil, errors.New("nil fractal")
	} else if maxEntries <= 0 {
		return nil, errors.New("cache size must be positive")
	}
	return &CachedFractal{
		fractal:  f,
		m:        make(map[[2]uint32]float32),
		maxCache: maxEntries,
	}, nil
}

// CacheHits returns total amount of cached evalutions done throughout the cache's lifetime.
func (c *CachedFractal) CacheHits() uint64 {
	return c.hits
}

// Evaluations returns total evaluations performed succesfully during the cache's lifetime, including cached.
func (c *CachedFractal) Evaluations() uint64 {
	return c.evals
}

// Evaluate implements the [Fractal] interface with cached evaluation.
func (c *CachedFractal) Evaluate(pos []ms2.Vec, progress []float32, userData any) error {
	if len(pos) != len(progress) {
		return errMismatchBufferLength
	} else if len(pos) == 0 {
		return errEmptyBuffers
	}
	seekPos := c.posbuf[:0]
	idx := c.idxbuf[:0]
	for i, p := range pos {
		k := [2]uint32{math32.Float32bits(p.X), math32.Float32bits(p.Y)}
		d, cached := c.m[k]
		if cached {
			progress[i] = d
		} else {
			seekPos = append(seekPos, p)
			idx = append(idx, i)
		}
	}
	if len(idx) > 0 {
		// Renew buffers in case they were grown.
		c.idxbuf = idx
		c.posbuf = seekPos
		c.progbuf = slices.Grow(c.progbuf[:0], len(seekPos))
		seekProg := c.progbuf[:len(seekPos)]
		err := c.fractal.Evaluate(seekPos, seekProg, userData)
		if err != nil {
			return err
		}
		if len(c.m)+len(seekPos) > c.maxCache {
			clear(c.m)
		}
		for i, p := range seekPos {
			if len(c.m) == c.maxCache {
				break
			}
			c.m[[2]uint32{math32.Float32bits(p.X), math32.Float32bits(p.Y)}] = seekProg[i]
		}
		// Fill original buffer with new progress.
		for i, d := range seekProg {
			progress[idx[i]] = d
		}
	}
	c.evals += uint64(len(progress))
	c.hits += uint64(len(progress) - len(seekPos))
	return nil
}
