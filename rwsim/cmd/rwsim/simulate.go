//go:build !solution

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"gitlab.com/slon/rwsem/simulation"
)

type simulateOptions struct {
	configPath  string
	readers     int
	writers     int
	maxReaders  int
	readDelay   time.Duration
	writerFirst bool
}

func (o *simulateOptions) bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "path to .yaml simulation config")
	fs.IntVar(&o.readers, "readers", 0, "number of reader goroutines")
	fs.IntVar(&o.writers, "writers", 0, "number of writer goroutines")
	fs.IntVar(&o.maxReaders, "max-readers", 0, "read gate capacity")
	fs.DurationVar(&o.readDelay, "read-delay", 0, "time each reader spends inside the critical section")
	fs.BoolVar(&o.writerFirst, "writer-first", false, "start writers before readers")
}

// resolve накладывает явно заданные флаги поверх конфига
func (o *simulateOptions) resolve(fs *pflag.FlagSet) (simulation.Config, error) {
	cfg, err := simulation.LoadConfig(o.configPath)
	if err != nil {
		return simulation.Config{}, err
	}
	if fs.Changed("readers") {
		cfg.Readers = o.readers
	}
	if fs.Changed("writers") {
		cfg.Writers = o.writers
	}
	if fs.Changed("max-readers") {
		cfg.MaxReaders = o.maxReaders
	}
	if fs.Changed("read-delay") {
		cfg.ReadDelay = o.readDelay
	}
	if fs.Changed("writer-first") {
		cfg.WriterFirst = o.writerFirst
	}
	return cfg, cfg.Validate()
}

func newSimulateCmd(root *rootOptions) *cobra.Command {
	opts := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run concurrent readers and writers against one coordinator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd.Flags())
			if err != nil {
				return err
			}

			logger, err := newLogger(root.debug)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			report, err := simulation.Run(cmd.Context(), cfg, logger)
			printReport(cmd, report)
			return err
		},
	}
	opts.bind(cmd.Flags())
	return cmd
}

func printReport(cmd *cobra.Command, r simulation.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run:          %s\n", r.RunID)
	fmt.Fprintf(out, "readers:      %d/%d\n", r.Reads, r.Readers)
	fmt.Fprintf(out, "writers:      %d/%d\n", r.Writes, r.Writers)
	fmt.Fprintf(out, "max readers:  %d\n", r.MaxReaders)
	fmt.Fprintf(out, "peak readers: %d\n", r.PeakReaders)
	fmt.Fprintf(out, "overflows:    %d\n", r.Overflows)
	fmt.Fprintf(out, "final count:  %d\n", r.FinalCount)
	fmt.Fprintf(out, "elapsed:      %s\n", r.Elapsed)
}
