package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newFilenamesCmd())
}

func newFilenamesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filenames <file>",
		Short: "List the files loaded by the executable",
		Long: `The filenames command prints the filename strings of a prefetch file,
one per line, in the order Windows recorded them.

Example:
  pfctl filenames CALC.EXE-77FDF17F.pf
  pfctl filenames CALC.EXE-77FDF17F.pf --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilenames(cmd, args)
		},
	}
	return cmd
}

func runFilenames(cmd *cobra.Command, args []string) error {
	r, err := openInput(cmd.Context(), args[0], openOptions())
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer r.Close()

	n, err := r.NumberOfFilenames()
	if err != nil {
		return err
	}
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		name, err := r.Filename(i)
		if err != nil {
			return fmt.Errorf("filename %d: %w", i, err)
		}
		names = append(names, name)
	}

	if jsonOut {
		return printJSON(names)
	}
	for _, name := range names {
		printInfo("%s\n", name)
	}
	return nil
}
