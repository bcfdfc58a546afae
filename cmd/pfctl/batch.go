package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/prefetchkit/pkg/prefetch"
	"github.com/joshuapare/prefetchkit/pkg/types"
)

var (
	batchJobs        int
	batchMetricsFile string
)

func init() {
	rootCmd.AddCommand(newBatchCmd())
}

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <file>...",
		Short: "Parse many prefetch files in parallel",
		Long: `The batch command parses every input concurrently and prints one line
per file: executable, run count, last run time and source. Failures are
listed with their error kind. Parser counters can be written in the
Prometheus text format for a node_exporter textfile collector.

Example:
  pfctl batch C:/Windows/Prefetch/*.pf --jobs 8
  pfctl batch *.pf --metrics-file /var/lib/node_exporter/pfctl.prom`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args)
		},
	}
	cmd.Flags().IntVarP(&batchJobs, "jobs", "j", runtime.GOMAXPROCS(0), "Files parsed concurrently")
	cmd.Flags().StringVar(&batchMetricsFile, "metrics-file", "", "Write parser metrics to this file")
	return cmd
}

type batchResult struct {
	Source        string `json:"source"`
	Executable    string `json:"executable,omitempty"`
	FormatVersion uint32 `json:"format_version,omitempty"`
	RunCount      uint32 `json:"run_count,omitempty"`
	LastRun       string `json:"last_run,omitempty"`
	Error         string `json:"error,omitempty"`
	ErrorKind     string `json:"error_kind,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	reg := prometheus.NewRegistry()
	opts := openOptions()
	opts.Metrics = prefetch.NewMetrics(reg)

	results := make([]batchResult, len(args))
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	g, ctx := errgroup.WithContext(parent)
	g.SetLimit(max(batchJobs, 1))
	for i, input := range args {
		g.Go(func() error {
			res := batchResult{Source: input}
			s, err := summarizeInput(ctx, input, opts)
			if err != nil {
				res.Error = err.Error()
				res.ErrorKind = "unknown"
				var e *types.Error
				if errors.As(err, &e) {
					res.ErrorKind = e.Kind.String()
				}
			} else {
				res.Executable = s.ExecutableFilename
				res.RunCount = s.RunCount
				res.FormatVersion = s.FormatVersion
				if len(s.LastRunTimes) > 0 {
					res.LastRun = s.LastRunTimes[0].String()
				}
			}
			results[i] = res
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if batchMetricsFile != "" {
		if err := prometheus.WriteToTextfile(batchMetricsFile, reg); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		printVerbose("Wrote metrics to %s\n", batchMetricsFile)
	}

	failed := 0
	for _, res := range results {
		if res.Error != "" {
			failed++
		}
	}
	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			if res.Error != "" {
				fmt.Fprintf(os.Stderr, "%s: %s error: %s\n", res.Source, res.ErrorKind, res.Error)
				continue
			}
			printInfo("%-24s v%-3d runs=%-5d last=%s\t%s\n", res.Executable, res.FormatVersion, res.RunCount, res.LastRun, res.Source)
		}
		printInfo("\n%d parsed, %d failed\n", len(results)-failed, failed)
	}
	if failed == len(results) {
		return fmt.Errorf("all %d files failed to parse", failed)
	}
	return nil
}
