//go:build !solution

package semaphore

import (
	"context"
	"fmt"
	"sync"
)

// Semaphore is a counting semaphore built on a mutex and a condition variable.
//
// The capacity is fixed at construction. Every Acquire must be paired with
// exactly one Release; the semaphore does not detect unbalanced releases,
// so value may exceed capacity under misuse.
type Semaphore struct {
	mu       sync.Mutex
	gate     *sync.Cond
	value    int
	capacity int
}

// New creates semaphore with value == capacity.
func New(capacity int) *Semaphore {
	s := &Semaphore{
		value:    capacity,
		capacity: capacity,
	}
	s.gate = sync.NewCond(&s.mu)
	return s
}

// Acquire blocks until value is positive, then decrements it.
//
// There is no timeout and no cancellation: once called, Acquire returns only
// after it has taken a token. See AcquireContext for a cancellable wrapper.
func (s *Semaphore) Acquire() {
	s.mu.Lock()
	// проверка и декремент под одним мьютексом, иначе Release может потеряться
	for s.value <= 0 {
		s.gate.Wait()
	}
	s.value--
	s.mu.Unlock()
}

// Release increments value and wakes one blocked Acquire, if any.
func (s *Semaphore) Release() {
	s.mu.Lock()
	s.value++
	s.mu.Unlock()
	s.gate.Signal()
}

// Peek returns current value without blocking.
//
// The result is stale as soon as Peek returns. Use it for diagnostics only;
// Peek followed by Acquire is not atomic.
func (s *Semaphore) Peek() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Capacity returns the capacity the semaphore was created with.
func (s *Semaphore) Capacity() int {
	return s.capacity
}

// Reset sets value to k and wakes every waiter so it re-checks its condition.
//
// Reset must only be called on a quiescent semaphore (between independent
// scenarios). Calling it while Acquire/Release pairs are in flight breaks
// the pairing.
func (s *Semaphore) Reset(k int) {
	s.mu.Lock()
	s.value = k
	s.mu.Unlock()
	s.gate.Broadcast()
}

func (s *Semaphore) String() string {
	return fmt.Sprintf("Semaphore(%d/%d)", s.Peek(), s.capacity)
}

// AcquireContext waits for s.Acquire or ctx cancellation, whichever comes first.
//
// The underlying Acquire is never abandoned. If ctx is done first, a
// background goroutine still finishes the acquire and immediately releases
// the token, so the semaphore count stays balanced.
func AcquireContext(ctx context.Context, s *Semaphore) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	acquired := make(chan struct{})
	abandoned := make(chan struct{})
	go func() {
		s.Acquire()
		select {
		case acquired <- struct{}{}:
		case <-abandoned:
			// вызывающий уже ушёл, возвращаем токен
			s.Release()
		}
	}()

	select {
	case <-acquired:
		return nil
	case <-ctx.Done():
		close(abandoned)
		return ctx.Err()
	}
}
