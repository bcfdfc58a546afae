package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoCommand(t *testing.T) {
	tests := []struct {
		name        string
		json        bool
		corrupt     bool
		wantErr     bool
		wantContain []string
	}{
		{
			name: "text",
			wantContain: []string{
				"Windows Prefetch File (PF) information:",
				"\tFormat version\t\t\t: 30\n",
				"\tExecutable filename\t\t: CALC.EXE\n",
				"\tLast run time: 1\t\t: Jul 05, 2019 22:43:03.000000000 UTC\n",
				"\tNumber of filenames\t\t: 3\n",
				"Volume: 1 information:",
			},
		},
		{
			name:        "json",
			json:        true,
			wantContain: []string{`"executable_filename": "CALC.EXE"`, `"container": "compressed-win10"`},
		},
		{
			name:    "not a prefetch file",
			corrupt: true,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			jsonOut = tt.json

			path := writeCalc(t)
			if tt.corrupt {
				path = filepath.Join(t.TempDir(), "junk.pf")
				require.NoError(t, os.WriteFile(path, []byte("definitely not prefetch"), 0o644))
			}

			output, err := captureOutput(t, func() error {
				return runInfo(newInfoCmd(), []string{path})
			})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.json {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestFilenamesCommand(t *testing.T) {
	resetFlags(t)
	output, err := captureOutput(t, func() error {
		return runFilenames(newFilenamesCmd(), []string{writeNotepad(t)})
	})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[1], `\WINDOWS\SYSTEM32\CALC.EXE`), lines[1])
}

func TestMetricsCommand(t *testing.T) {
	resetFlags(t)
	output, err := captureOutput(t, func() error {
		return runMetrics(newMetricsCmd(), []string{writeCalc(t)})
	})
	require.NoError(t, err)
	assertContains(t, output, []string{"Index", "0x00000200", "4410-2", `\WINDOWS\SYSTEM32\KERNEL32.DLL`})
}

func TestVolumesCommand(t *testing.T) {
	resetFlags(t)
	cmd := newVolumesCmd()
	volumesShowDirs = true
	t.Cleanup(func() { volumesShowDirs = false })

	output, err := captureOutput(t, func() error {
		return runVolumes(cmd, []string{writeCalc(t)})
	})
	require.NoError(t, err)
	assertContains(t, output, []string{
		`Volume 1: \VOLUME{01d4e9c3a1b2c3d4-5a6b7c8d}`,
		"Serial number: 0x5a6b7c8d",
		`  \VOLUME{01d4e9c3a1b2c3d4-5a6b7c8d}\WINDOWS\SYSTEM32`,
	})
}

func TestStrictFromConfig(t *testing.T) {
	resetFlags(t)
	viper.Set("strict", true)
	assert.True(t, openOptions().Strict)
	assert.Equal(t, testChunk, openOptions().BlockSize)
}

func TestExportJSONL(t *testing.T) {
	resetFlags(t)
	cmd := newExportCmd()

	output, err := captureOutput(t, func() error {
		return runExport(cmd, []string{writeCalc(t), writeNotepad(t)})
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 2)
	var row exportRow
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &row))
	assert.Equal(t, "NOTEPAD.EXE", row.ExecutableFilename)
	assert.Equal(t, "D8414F97", row.PrefetchHash)
	assert.Equal(t, []string{"2019-07-05T22:43:03Z"}, row.LastRunTimes)
}

func TestExportParquet(t *testing.T) {
	resetFlags(t)
	cmd := newExportCmd()
	exportFormat = "parquet"
	exportOutput = filepath.Join(t.TempDir(), "prefetch.parquet")
	t.Cleanup(func() { exportFormat, exportOutput = "jsonl", "" })

	calc := writeCalc(t)
	_, err := captureOutput(t, func() error {
		return runExport(cmd, []string{calc})
	})
	require.NoError(t, err)

	f, err := os.Open(exportOutput)
	require.NoError(t, err)
	defer f.Close()
	st, err := f.Stat()
	require.NoError(t, err)

	rows, err := parquet.Read[exportRow](f, st.Size())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, calc, rows[0].Source)
	assert.Equal(t, int32(30), rows[0].FormatVersion)
	assert.Equal(t, int64(5), rows[0].RunCount)
	assert.Len(t, rows[0].Filenames, 3)
	assert.Len(t, rows[0].LastRunTimes, 2)
}

func TestExportRejectsFormat(t *testing.T) {
	resetFlags(t)
	cmd := newExportCmd()
	exportFormat = "csv"
	t.Cleanup(func() { exportFormat = "jsonl" })
	err := runExport(cmd, []string{writeCalc(t)})
	require.ErrorContains(t, err, "unknown export format")
}

func TestBatchCommand(t *testing.T) {
	resetFlags(t)
	cmd := newBatchCmd()
	jsonOut = true
	batchJobs = 2
	batchMetricsFile = filepath.Join(t.TempDir(), "pfctl.prom")
	t.Cleanup(func() { batchMetricsFile = "" })

	junk := filepath.Join(t.TempDir(), "junk.pf")
	require.NoError(t, os.WriteFile(junk, []byte("definitely not prefetch"), 0o644))
	inputs := []string{writeCalc(t), junk, writeNotepad(t)}

	output, err := captureOutput(t, func() error {
		return runBatch(cmd, inputs)
	})
	require.NoError(t, err)

	var results []batchResult
	require.NoError(t, json.Unmarshal([]byte(output), &results))
	require.Len(t, results, 3)
	assert.Equal(t, "CALC.EXE", results[0].Executable)
	assert.Equal(t, "input", results[1].ErrorKind)
	assert.Equal(t, "NOTEPAD.EXE", results[2].Executable)
	assert.Equal(t, uint32(17), results[2].FormatVersion)

	prom, err := os.ReadFile(batchMetricsFile)
	require.NoError(t, err)
	assertContains(t, string(prom), []string{
		`prefetch_files_opened_total{container="compressed-win10"} 1`,
		`prefetch_files_opened_total{container="uncompressed"} 1`,
		`prefetch_open_failures_total{kind="input"} 1`,
	})
}

func TestBatchAllFail(t *testing.T) {
	resetFlags(t)
	junk := filepath.Join(t.TempDir(), "junk.pf")
	require.NoError(t, os.WriteFile(junk, []byte("definitely not prefetch"), 0o644))
	_, err := captureOutput(t, func() error {
		return runBatch(newBatchCmd(), []string{junk})
	})
	require.ErrorContains(t, err, "all 1 files failed")
}
