package main

import (
	"fmt"
	"os"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/joshuapare/prefetchkit/pkg/prefetch"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Show everything a prefetch file records",
		Long: `The info command parses a prefetch file and prints its header, run
history, referenced filenames and volumes in the layout used by sccainfo.

Example:
  pfctl info CALC.EXE-77FDF17F.pf
  pfctl info s3://evidence/host1/CALC.EXE-77FDF17F.pf --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, args)
		},
	}
	return cmd
}

func runInfo(cmd *cobra.Command, args []string) error {
	printVerbose("Opening prefetch file: %s\n", args[0])

	r, err := openInput(cmd.Context(), args[0], openOptions())
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer r.Close()

	s, err := prefetch.Summarize(r)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	printVerbose("Container: %s, %s uncompressed\n", s.Container, units.BytesSize(float64(s.UncompressedSize)))

	if jsonOut {
		return printJSON(s)
	}
	if quiet {
		return nil
	}
	return s.WriteText(os.Stdout)
}
