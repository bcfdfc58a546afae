package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/prefetchkit/pkg/prefetch"
)

func init() {
	rootCmd.AddCommand(newMetricsCmd())
}

func newMetricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics <file>",
		Short: "Show the file metrics array",
		Long: `The metrics command prints one line per file metrics entry: start time
and duration in milliseconds, flags, NTFS file reference and the resolved
filename.

Example:
  pfctl metrics CALC.EXE-77FDF17F.pf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetrics(cmd, args)
		},
	}
	return cmd
}

func runMetrics(cmd *cobra.Command, args []string) error {
	r, err := openInput(cmd.Context(), args[0], openOptions())
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer r.Close()

	s, err := prefetch.Summarize(r)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	if jsonOut {
		return printJSON(s.Metrics)
	}
	printInfo("%-6s %10s %10s %10s %-18s %s\n", "Index", "Start", "Duration", "Flags", "File reference", "Filename")
	for i, m := range s.Metrics {
		ref := m.FileReference
		if ref == "" {
			ref = "-"
		}
		name := m.Filename
		if name == "" {
			name = "(unresolved)"
		}
		printInfo("%-6d %10d %10d 0x%08x %-18s %s\n", i, m.StartTime, m.Duration, m.Flags, ref, name)
	}
	return nil
}
