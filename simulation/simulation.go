//go:build !solution

package simulation

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gitlab.com/slon/rwsem/rwcoord"
)

// Report summarizes a finished run.
type Report struct {
	RunID       uuid.UUID
	Readers     int
	Writers     int
	MaxReaders  int
	Reads       int
	Writes      int
	Overflows   int
	FinalCount  int64
	PeakReaders int
	Elapsed     time.Duration
}

type options struct {
	clock   clockwork.Clock
	metrics *rwcoord.Metrics
}

type Option func(*options)

// WithClock sets the clock used for read delays and timing.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

func WithMetrics(m *rwcoord.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// Run builds a coordinator from cfg, starts cfg.Readers readers and
// cfg.Writers writers concurrently and waits for all of them.
//
// Cancelling ctx stops launching new participants. Participants that were
// already started always run to completion, so Run never abandons a blocked
// Read or Write. In that case the partial report is returned with ctx.Err().
func Run(ctx context.Context, cfg Config, logger *zap.Logger, opts ...Option) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	o := options{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	runID, err := uuid.NewV4()
	if err != nil {
		return Report{}, fmt.Errorf("generate run id: %w", err)
	}
	logger = logger.With(zap.Stringer("run_id", runID))

	var (
		peak      atomic.Int64
		reads     atomic.Int64
		writes    atomic.Int64
		overflows atomic.Int64
		coord     *rwcoord.Coordinator
	)
	coord = rwcoord.New(
		rwcoord.WithMaxReaders(cfg.MaxReaders),
		rwcoord.WithLogger(logger),
		rwcoord.WithMetrics(o.metrics),
		rwcoord.WithReadHook(func(readerID int, count int64) {
			n := int64(coord.ActiveReaderCount())
			for {
				cur := peak.Load()
				if n <= cur || peak.CompareAndSwap(cur, n) {
					break
				}
			}
			if cfg.ReadDelay > 0 {
				o.clock.Sleep(cfg.ReadDelay)
			}
		}),
	)

	logger.Info("simulation started",
		zap.Int("readers", cfg.Readers),
		zap.Int("writers", cfg.Writers),
		zap.Int("max_readers", cfg.MaxReaders),
	)
	start := o.clock.Now()

	var g errgroup.Group
	launchReaders := func() bool {
		for i := 1; i <= cfg.Readers; i++ {
			if ctx.Err() != nil {
				return false
			}
			g.Go(func() error {
				coord.Read(i)
				reads.Add(1)
				return nil
			})
		}
		return true
	}
	launchWriters := func() bool {
		for i := 1; i <= cfg.Writers; i++ {
			if ctx.Err() != nil {
				return false
			}
			g.Go(func() error {
				if coord.Write(i).Overflow {
					overflows.Add(1)
				}
				writes.Add(1)
				return nil
			})
		}
		return true
	}

	if cfg.WriterFirst {
		_ = launchWriters() && launchReaders()
	} else {
		_ = launchReaders() && launchWriters()
	}
	// участники не возвращают ошибок, ждём всех запущенных
	_ = g.Wait()

	report := Report{
		RunID:       runID,
		Readers:     cfg.Readers,
		Writers:     cfg.Writers,
		MaxReaders:  cfg.MaxReaders,
		Reads:       int(reads.Load()),
		Writes:      int(writes.Load()),
		Overflows:   int(overflows.Load()),
		FinalCount:  coord.SnapshotCount(),
		PeakReaders: int(peak.Load()),
		Elapsed:     o.clock.Since(start),
	}

	if err := ctx.Err(); err != nil {
		logger.Warn("simulation interrupted", zap.Int("reads", report.Reads), zap.Int("writes", report.Writes))
		return report, err
	}
	logger.Info("simulation finished",
		zap.Int64("final_count", report.FinalCount),
		zap.Int("overflows", report.Overflows),
		zap.Int("peak_readers", report.PeakReaders),
		zap.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}
