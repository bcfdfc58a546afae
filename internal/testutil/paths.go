package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Conventional prefetch file names used by fixtures. Windows names prefetch
// files <EXECUTABLE>-<HASH>.pf.
const (
	FixtureCalc    = "CALC.EXE-77FDF17F.pf"
	FixtureNotepad = "NOTEPAD.EXE-D8414F97.pf"
)

// WriteFixture writes data under t.TempDir() and returns the path.
func WriteFixture(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}
