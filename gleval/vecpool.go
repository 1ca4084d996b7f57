package gleval

import (
	"errors"
	"fmt"

	"github.com/soypat/geometry/ms2"
)

// GetVecPool retrieves a [VecPool] from userData, which may be a *VecPool
// or implement interface{ VecPool() *VecPool }.
func GetVecPool(userData any) (*VecPool, error) {
	switch v := userData.(type) {
	case *VecPool:
		if v == nil {
			return nil, errors.New("nil VecPool")
		}
		return v, nil
	case interface{ VecPool() *VecPool }:
		vp := v.VecPool()
		if vp == nil {
			return nil, errors.New("nil VecPool returned by userData")
		}
		return vp, nil
	}
	return nil, fmt.Errorf("want userData type *VecPool, got %T", userData)
}

// VecPool is a pool of scratch buffers for evaluators. It is not safe for concurrent use.
type VecPool struct {
	V2    bufPool[ms2.Vec]
	Float bufPool[float32]
}

// AssertAllReleased returns an error if any buffer has not been released.
func (vp *VecPool) AssertAllReleased() error {
	err := vp.V2.assertAllReleased()
	if err != nil {
		return fmt.Errorf("V2 pool: %w", err)
	}
	err = vp.Float.assertAllReleased()
	if err != nil {
		return fmt.Errorf("Float pool: %w", err)
	}
	return nil
}

type bufPool[T any] struct {
	bufs     [][]T
	acquired []bool
}

// Acquire returns a buffer of length size. The buffer contents are undefined.
func (bp *bufPool[T]) Acquire(size int) []T {
	for i, buf := range bp.bufs {
		if !bp.acquired[i] && cap(buf) >= size {
			bp.acquired[i] = true
			return buf[:size]
		}
	}
	buf := make([]T, size)
	bp.bufs = append(bp.bufs, buf)
	bp.acquired = append(bp.acquired, true)
	return buf
}

// Release returns a buffer obtained with Acquire to the pool.
// It panics if buf was not acquired from the pool.
func (bp *bufPool[T]) Release(buf []T) {
	for i, have := range bp.bufs {
		if cap(have) > 0 && cap(buf) > 0 && &have[:1][0] == &buf[:1][0] {
			if !bp.acquired[i] {
				panic("release of buffer not acquired")
			}
			bp.acquired[i] = false
			return
		}
	}
	panic("release of buffer not belonging to pool")
}

func (bp *bufPool[T]) assertAllReleased() error {
	for i, acquired := range bp.acquired {
		if acquired {
			return fmt.Errorf("buffer %d of length %d not released", i, len(bp.bufs[i]))
		}
	}
	return nil
}
