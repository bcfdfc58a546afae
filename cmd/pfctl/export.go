package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/spf13/cobra"

	"github.com/joshuapare/prefetchkit/pkg/prefetch"
)

var (
	exportFormat string
	exportOutput string
)

func init() {
	rootCmd.AddCommand(newExportCmd())
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file>...",
		Short: "Export prefetch files as JSON Lines or Parquet",
		Long: `The export command writes one row per prefetch file, suitable for
loading into a timeline or a query engine. Files that fail to parse are
reported on stderr and skipped.

Example:
  pfctl export C:/Windows/Prefetch/*.pf --format jsonl > prefetch.jsonl
  pfctl export *.pf --format parquet --output prefetch.parquet`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args)
		},
	}
	cmd.Flags().StringVarP(&exportFormat, "format", "f", "jsonl", "Output format: jsonl or parquet")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	return cmd
}

// exportRow is one prefetch file, flattened.
type exportRow struct {
	Source             string   `json:"source" parquet:"source"`
	Container          string   `json:"container" parquet:"container"`
	FormatVersion      int32    `json:"format_version" parquet:"format_version"`
	PrefetchHash       string   `json:"prefetch_hash" parquet:"prefetch_hash"`
	ExecutableFilename string   `json:"executable_filename" parquet:"executable_filename"`
	RunCount           int64    `json:"run_count" parquet:"run_count"`
	LastRunTimes       []string `json:"last_run_times" parquet:"last_run_times,list"`
	Filenames          []string `json:"filenames" parquet:"filenames,list"`
	Volumes            []string `json:"volumes" parquet:"volumes,list"`
}

func newExportRow(src string, s *prefetch.Summary) exportRow {
	row := exportRow{
		Source:             src,
		Container:          s.Container,
		FormatVersion:      int32(s.FormatVersion),
		PrefetchHash:       fmt.Sprintf("%08X", s.PrefetchHash),
		ExecutableFilename: s.ExecutableFilename,
		RunCount:           int64(s.RunCount),
		Filenames:          s.Filenames,
	}
	for _, t := range s.LastRunTimes {
		if t.Filetime != 0 {
			row.LastRunTimes = append(row.LastRunTimes, t.UTC.Format(time.RFC3339Nano))
		}
	}
	for _, v := range s.Volumes {
		row.Volumes = append(row.Volumes, v.DevicePath)
	}
	return row
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "jsonl" && exportFormat != "parquet" {
		return fmt.Errorf("unknown export format %q (want jsonl or parquet)", exportFormat)
	}

	opts := openOptions()
	var rows []exportRow
	for _, input := range args {
		printVerbose("Exporting: %s\n", input)
		s, err := summarizeInput(cmd.Context(), input, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", input, err)
			continue
		}
		rows = append(rows, newExportRow(input, s))
	}
	if len(rows) == 0 {
		return fmt.Errorf("no prefetch files could be parsed")
	}

	var w io.Writer = os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if exportFormat == "parquet" {
		return writeParquet(w, rows)
	}
	return writeJSONL(w, rows)
}

func summarizeInput(ctx context.Context, input string, opts prefetch.OpenOptions) (*prefetch.Summary, error) {
	r, err := openInput(ctx, input, opts)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return prefetch.Summarize(r)
}

func writeJSONL(w io.Writer, rows []exportRow) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeParquet(w io.Writer, rows []exportRow) error {
	pw := parquet.NewGenericWriter[exportRow](w, parquet.Compression(&parquet.Zstd))
	if _, err := pw.Write(rows); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	return pw.Close()
}
