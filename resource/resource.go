//go:build !solution

package resource

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Seed is the initial value of a fresh Counter.
const Seed = 1

// Counter is the shared integer guarded by a coordinator.
//
// Counter is not safe for concurrent use: the caller provides exclusion.
type Counter[T constraints.Signed] struct {
	count T
}

func New[T constraints.Signed]() *Counter[T] {
	return &Counter[T]{count: Seed}
}

func NewWithSeed[T constraints.Signed](seed T) *Counter[T] {
	return &Counter[T]{count: seed}
}

// Load returns current value.
func (c *Counter[T]) Load() T {
	return c.count
}

// Double doubles the value unless that would overflow T.
// It returns the value after the call and whether it was doubled.
func (c *Counter[T]) Double() (T, bool) {
	if c.count > MaxOf[T]()/2 {
		return c.count, false
	}
	c.count *= 2
	return c.count, true
}

// MaxOf returns the largest value representable by T.
func MaxOf[T constraints.Signed]() T {
	var zero T
	bits := unsafe.Sizeof(zero) * 8
	// 1<<(bits-1) даёт минимальное значение, после -1 получаем максимум
	return T(1)<<(bits-1) - 1
}
