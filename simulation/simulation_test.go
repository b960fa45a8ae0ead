package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var ignoreVolatile = cmpopts.IgnoreFields(Report{}, "RunID", "Elapsed", "PeakReaders")

func TestRunDefault(t *testing.T) {
	report, err := Run(context.Background(), DefaultConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, report.RunID)

	expected := Report{
		Readers:    10,
		Writers:    5,
		MaxReaders: 5,
		Reads:      10,
		Writes:     5,
		FinalCount: 32,
	}
	if diff := cmp.Diff(expected, report, ignoreVolatile); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	require.LessOrEqual(t, report.PeakReaders, 5)
}

func TestRunOverflow(t *testing.T) {
	cfg := Config{Readers: 20, Writers: 70, MaxReaders: 3}
	report, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	expected := Report{
		Readers:    20,
		Writers:    70,
		MaxReaders: 3,
		Reads:      20,
		Writes:     70,
		Overflows:  8,
		FinalCount: 1 << 62,
	}
	if diff := cmp.Diff(expected, report, ignoreVolatile); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	require.LessOrEqual(t, report.PeakReaders, 3)
}

func TestRunDelayedReaders(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cfg := Config{Readers: 2, MaxReaders: 5, ReadDelay: time.Second}

	type result struct {
		report Report
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, err := Run(context.Background(), cfg, nil, WithClock(clock))
		done <- result{report, err}
	}()

	// оба читателя спят внутри критической секции
	clock.BlockUntil(2)
	clock.Advance(time.Second)

	res := <-done
	require.NoError(t, res.err)
	require.Equal(t, 2, res.report.Reads)
	require.Equal(t, 2, res.report.PeakReaders)
	require.Equal(t, int64(1), res.report.FinalCount)
	require.Equal(t, time.Second, res.report.Elapsed)
}

func TestRunWriterFirst(t *testing.T) {
	cfg := Config{Readers: 5, Writers: 3, MaxReaders: 2, WriterFirst: true}
	report, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Equal(t, int64(8), report.FinalCount)
	require.Equal(t, 5, report.Reads)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Run(ctx, DefaultConfig(), nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, report.Reads)
	require.Equal(t, 0, report.Writes)
	require.Equal(t, int64(1), report.FinalCount)
}

func TestRunInvalidConfig(t *testing.T) {
	_, err := Run(context.Background(), Config{MaxReaders: 0}, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}
