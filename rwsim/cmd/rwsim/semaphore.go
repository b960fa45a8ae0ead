//go:build !solution

package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gitlab.com/slon/rwsem/semaphore"
)

// syncWriter сериализует вывод из нескольких горутин
type syncWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *syncWriter) Printf(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, format, args...)
}

func newSemaphoreCmd() *cobra.Command {
	var (
		capacity int
		hold     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "semaphore",
		Short: "Walk through counting semaphore acquire/release scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSemaphoreDemo(&syncWriter{out: cmd.OutOrStdout()}, capacity, hold)
		},
	}
	cmd.Flags().IntVar(&capacity, "capacity", 3, "semaphore capacity")
	cmd.Flags().DurationVar(&hold, "hold", 100*time.Millisecond, "how long a token is held in timed scenarios")
	return cmd
}

func runSemaphoreDemo(w *syncWriter, capacity int, hold time.Duration) error {
	if capacity < 1 {
		return fmt.Errorf("capacity must be positive, got %d", capacity)
	}
	s := semaphore.New(capacity)

	w.Printf("Scenario 1: acquire more times than capacity, releasing each time.\n")
	for i := 0; i < capacity+2; i++ {
		s.Acquire()
		w.Printf("acquired, remaining %d\n", s.Peek())
		s.Release()
	}

	w.Printf("\nScenario 2: hold and release sequentially.\n")
	for i := 0; i < capacity; i++ {
		s.Acquire()
		w.Printf("acquired, remaining %d\n", s.Peek())
		time.Sleep(hold)
		s.Release()
		w.Printf("released, remaining %d\n", s.Peek())
	}

	w.Printf("\nScenario 3: acquire on an exhausted semaphore, released by another goroutine.\n")
	for i := 0; i < capacity; i++ {
		s.Acquire()
	}
	w.Printf("exhausted: %s\n", s)
	go func() {
		time.Sleep(2 * hold)
		w.Printf("released by another goroutine\n")
		s.Release()
	}()
	s.Acquire()
	w.Printf("acquired after wake-up: %s\n", s)
	s.Reset(capacity)
	w.Printf("reset: %s\n", s)

	w.Printf("\nScenario 4: %d goroutines acquire simultaneously.\n", capacity)
	var g errgroup.Group
	for i := 1; i <= capacity; i++ {
		g.Go(func() error {
			s.Acquire()
			w.Printf("goroutine %d acquired\n", i)
			time.Sleep(hold)
			s.Release()
			w.Printf("goroutine %d released\n", i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	w.Printf("final: %s\n", s)
	return nil
}
