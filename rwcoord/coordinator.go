//go:build !solution

package rwcoord

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"gitlab.com/slon/rwsem/resource"
	"gitlab.com/slon/rwsem/semaphore"
)

// DefaultMaxReaders is the read gate capacity used when WithMaxReaders is not given.
const DefaultMaxReaders = 5

// A Coordinator guards a shared counter so that it can be held by up to
// MaxReaders readers or by a single writer.
//
// Readers use the first-reader/last-reader protocol: the reader that takes
// the active reader count from 0 to 1 acquires the write gate on behalf of
// all readers, and the reader that brings it back to 0 releases it.
//
// Writers are not prioritized. Under a continuous stream of readers a waiting
// writer may starve; this is a known property of the protocol.
type Coordinator struct {
	writeGate *semaphore.Semaphore
	readGate  *semaphore.Semaphore

	// readersMu защищает activeReaders; отдельный от мьютексов семафоров
	readersMu     sync.Mutex
	activeReaders int

	count *resource.Counter[int64]

	// зеркала для диагностики, решения по ним не принимаются
	countSnapshot   atomic.Int64
	readersSnapshot atomic.Int64

	maxReaders int
	logger     *zap.Logger
	metrics    *Metrics
	readHook   func(readerID int, count int64)
	writeHook  func(writerID int, count int64)
}

// WriteResult describes the outcome of a single Write.
type WriteResult struct {
	WriterID int
	// Count is the resource value after the write.
	Count int64
	// Overflow is set when doubling would overflow and the value was left unchanged.
	Overflow bool
}

// New creates *Coordinator with the resource seeded to resource.Seed.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		maxReaders: DefaultMaxReaders,
		logger:     zap.NewNop(),
		count:      resource.New[int64](),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.writeGate = semaphore.New(1)
	c.readGate = semaphore.New(c.maxReaders)
	c.countSnapshot.Store(c.count.Load())
	c.metrics.setCount(c.count.Load())
	return c
}

// Write doubles the shared counter while holding the write gate.
//
// If doubling would overflow, the counter is left unchanged and the result
// has Overflow set. This is a normal outcome, not an error.
func (c *Coordinator) Write(writerID int) WriteResult {
	c.writeGate.Acquire()
	defer c.writeGate.Release()

	count, doubled := c.count.Double()
	c.countSnapshot.Store(count)

	if doubled {
		c.logger.Info("writer modified count",
			zap.Int("writer_id", writerID),
			zap.Int64("count", count),
		)
	} else {
		c.logger.Warn("overflow risk, count not doubled",
			zap.Int("writer_id", writerID),
			zap.Int64("count", count),
		)
	}
	c.metrics.observeWrite(count, !doubled)

	if c.writeHook != nil {
		c.writeHook(writerID, count)
	}

	return WriteResult{WriterID: writerID, Count: count, Overflow: !doubled}
}

// Read observes the shared counter and returns the value it saw.
//
// At most MaxReaders goroutines progress through the admission protocol at
// once; the rest block on the read gate.
func (c *Coordinator) Read(readerID int) int64 {
	c.readGate.Acquire()
	defer c.readGate.Release()

	c.enter()

	// писатель не может работать одновременно, лок для чтения не нужен
	count := c.count.Load()
	c.logger.Info("reader read count",
		zap.Int("reader_id", readerID),
		zap.Int64("count", count),
	)
	c.metrics.observeRead()
	if c.readHook != nil {
		c.readHook(readerID, count)
	}

	c.exit()
	return count
}

func (c *Coordinator) enter() {
	c.readersMu.Lock()
	defer c.readersMu.Unlock()

	c.activeReaders++
	c.readersSnapshot.Store(int64(c.activeReaders))
	c.metrics.setActiveReaders(c.activeReaders)
	if c.activeReaders == 1 {
		c.writeGate.Acquire()
	}
}

func (c *Coordinator) exit() {
	c.readersMu.Lock()
	defer c.readersMu.Unlock()

	c.activeReaders--
	c.readersSnapshot.Store(int64(c.activeReaders))
	c.metrics.setActiveReaders(c.activeReaders)
	if c.activeReaders == 0 {
		c.writeGate.Release()
	}
}

// SnapshotCount returns the current resource value without blocking.
func (c *Coordinator) SnapshotCount() int64 {
	return c.countSnapshot.Load()
}

// ActiveReaderCount returns the number of readers between entry and exit.
// A first reader still waiting for the write gate is already counted.
func (c *Coordinator) ActiveReaderCount() int {
	return int(c.readersSnapshot.Load())
}

func (c *Coordinator) MaxReaders() int {
	return c.maxReaders
}
