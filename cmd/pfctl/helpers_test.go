package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/joshuapare/prefetchkit/internal/format"
	"github.com/joshuapare/prefetchkit/internal/testutil"
)

const testChunk = 256

// writeCalc writes the version 30 sample as a compressed container and
// returns its path.
func writeCalc(t *testing.T) string {
	t.Helper()
	record := testutil.Sample(format.Version30).Build()
	return testutil.WriteFixture(t, testutil.FixtureCalc, testutil.MAMContainer(record, testChunk))
}

// writeNotepad writes an uncompressed version 17 record.
func writeNotepad(t *testing.T) string {
	t.Helper()
	p := testutil.Sample(format.Version17)
	p.Executable = "NOTEPAD.EXE"
	p.PrefetchHash = 0xd8414f97
	return testutil.WriteFixture(t, testutil.FixtureNotepad, p.Build())
}

// resetFlags restores global flag state between cases.
func resetFlags(t *testing.T) {
	t.Helper()
	quiet, verbose, jsonOut = false, false, false
	viper.Reset()
	viper.Set("block-size", testChunk)
	t.Cleanup(viper.Reset)
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.String()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	return <-done, fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}
