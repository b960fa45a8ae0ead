//go:build !solution

package rwcoord

import "go.uber.org/zap"

type Option func(*Coordinator)

// WithMaxReaders sets the read gate capacity. Values below 1 are ignored.
func WithMaxReaders(n int) Option {
	return func(c *Coordinator) {
		if n >= 1 {
			c.maxReaders = n
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithReadHook registers fn to run inside every reader's critical section.
// fn may block (e.g. to hold readers inside while a test inspects state).
func WithReadHook(fn func(readerID int, count int64)) Option {
	return func(c *Coordinator) {
		c.readHook = fn
	}
}

// WithWriteHook registers fn to run inside every writer's critical section,
// after the counter was updated.
func WithWriteHook(fn func(writerID int, count int64)) Option {
	return func(c *Coordinator) {
		c.writeHook = fn
	}
}
