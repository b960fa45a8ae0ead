package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gitlab.com/slon/rwsem/simulation"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSimulate(t *testing.T) {
	out, err := execute(t, "simulate", "--readers", "3", "--writers", "4", "--max-readers", "2")
	require.NoError(t, err)
	require.Contains(t, out, "readers:      3/3\n")
	require.Contains(t, out, "writers:      4/4\n")
	require.Contains(t, out, "final count:  16\n")
	require.Contains(t, out, "overflows:    0\n")
}

func TestSimulateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("readers: 1\nwriters: 2\nmax_readers: 1\n"), 0o644))

	out, err := execute(t, "simulate", "--config", path, "--writers", "3")
	require.NoError(t, err)
	require.Contains(t, out, "readers:      1/1\n")
	require.Contains(t, out, "writers:      3/3\n")
	require.Contains(t, out, "final count:  8\n")
}

func TestSimulateInvalid(t *testing.T) {
	_, err := execute(t, "simulate", "--max-readers", "0")
	require.ErrorIs(t, err, simulation.ErrInvalidConfig)
}

func TestSemaphoreDemo(t *testing.T) {
	out, err := execute(t, "semaphore", "--capacity", "3", "--hold", "0s")
	require.NoError(t, err)

	// пять раз в первом сценарии и три во втором
	require.Equal(t, 8, strings.Count(out, "acquired, remaining 2\n"))
	require.Equal(t, 3, strings.Count(out, "released, remaining 3\n"))
	require.Contains(t, out, "exhausted: Semaphore(0/3)\n")
	require.Contains(t, out, "acquired after wake-up: Semaphore(0/3)\n")
	require.Contains(t, out, "reset: Semaphore(3/3)\n")
	for _, id := range []string{"1", "2", "3"} {
		require.Contains(t, out, "goroutine "+id+" acquired\n")
		require.Contains(t, out, "goroutine "+id+" released\n")
	}
	require.True(t, strings.HasSuffix(out, "final: Semaphore(3/3)\n"), out)
}

func TestSemaphoreDemoInvalidCapacity(t *testing.T) {
	_, err := execute(t, "semaphore", "--capacity", "0")
	require.Error(t, err)
}
