package reader

import (
	"sync"

	"github.com/joshuapare/prefetchkit/pkg/types"
)

// diagnosticCollector accumulates advisory findings during Open. It is nil
// unless OpenOptions.CollectDiagnostics is set, and every method is a no-op on
// a nil collector.
type diagnosticCollector struct {
	report *types.DiagnosticReport
	mu     sync.Mutex
}

func newDiagnosticCollector(size int64) *diagnosticCollector {
	r := types.NewDiagnosticReport()
	r.Size = size
	return &diagnosticCollector{report: r}
}

func (dc *diagnosticCollector) record(d types.Diagnostic) {
	if dc == nil {
		return
	}
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.report.Add(d)
}

// getReport returns the report, finalizing it first.
func (dc *diagnosticCollector) getReport() *types.DiagnosticReport {
	if dc == nil {
		return nil
	}
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.report.Finalize()
	return dc.report
}

func diagMismatch(severity types.Severity, offset uint64, structure, issue string, expected, actual any) types.Diagnostic {
	return types.Diagnostic{
		Severity:  severity,
		Offset:    offset,
		Structure: structure,
		Issue:     issue,
		Expected:  expected,
		Actual:    actual,
	}
}
