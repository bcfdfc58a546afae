package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/prefetchkit/pkg/prefetch"
)

var volumesShowDirs bool

func init() {
	rootCmd.AddCommand(newVolumesCmd())
}

func newVolumesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "volumes <file>",
		Short: "Show the volumes the executable touched",
		Long: `The volumes command prints each volume information record: device path,
creation time and serial number. With --dirs the directory strings are listed
as well.

Example:
  pfctl volumes CALC.EXE-77FDF17F.pf --dirs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVolumes(cmd, args)
		},
	}
	cmd.Flags().BoolVar(&volumesShowDirs, "dirs", false, "List directory strings")
	return cmd
}

func runVolumes(cmd *cobra.Command, args []string) error {
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
		return printJSON(s.Volumes)
	}
	for i, v := range s.Volumes {
		printInfo("Volume %d: %s\n", i+1, v.DevicePath)
		printInfo("  Creation time: %s\n", v.CreationTime)
		printInfo("  Serial number: 0x%08x\n", v.SerialNumber)
		printInfo("  File references: %d\n", len(v.FileReferences))
		if volumesShowDirs {
			for _, dir := range v.DirectoryStrings {
				printInfo("  %s\n", dir)
			}
		}
	}
	return nil
}
