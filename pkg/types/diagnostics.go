package types

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// -----------------------------------------------------------------------------
// Diagnostics
// -----------------------------------------------------------------------------
//
// Diagnostics are advisory findings recorded while a prefetch file is opened:
// inconsistencies that do not prevent parsing under the default policy, such
// as a MAM container whose declared size disagrees with the decompressed
// payload. Collection is opt-in via OpenOptions.CollectDiagnostics.

// Severity classifies how serious a diagnostic issue is.
type Severity int

const (
	SevInfo    Severity = iota // unusual but valid
	SevWarning                 // inconsistent data that was tolerated
	SevError                   // data that could not be interpreted
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Diagnostic is a single finding.
type Diagnostic struct {
	Severity  Severity `json:"severity"`
	Offset    uint64   `json:"offset"`    // stream offset of the structure involved
	Structure string   `json:"structure"` // e.g. "container", "metrics", "volume[0]"
	Issue     string   `json:"issue"`
	Expected  any      `json:"expected,omitempty"`
	Actual    any      `json:"actual,omitempty"`
}

// DiagnosticReport collects all diagnostics found while opening one file.
type DiagnosticReport struct {
	Source      string       `json:"source,omitempty"`
	Size        int64        `json:"size"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Summary     DiagSummary  `json:"summary"`
}

// DiagSummary provides quick statistics.
type DiagSummary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
}

// NewDiagnosticReport creates an empty report.
func NewDiagnosticReport() *DiagnosticReport {
	return &DiagnosticReport{}
}

// Add appends d and updates the summary.
func (r *DiagnosticReport) Add(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
	switch d.Severity {
	case SevError:
		r.Summary.Errors++
	case SevWarning:
		r.Summary.Warnings++
	case SevInfo:
		r.Summary.Info++
	}
}

// Finalize orders diagnostics by offset.
func (r *DiagnosticReport) Finalize() {
	sort.SliceStable(r.Diagnostics, func(i, j int) bool {
		return r.Diagnostics[i].Offset < r.Diagnostics[j].Offset
	})
}

// HasAnyIssues returns true if any diagnostics were recorded.
func (r *DiagnosticReport) HasAnyIssues() bool {
	return r != nil && len(r.Diagnostics) > 0
}

// WriteText renders the report in a human-readable form.
func (r *DiagnosticReport) WriteText(w io.Writer) error {
	var b strings.Builder
	if r.Source != "" {
		fmt.Fprintf(&b, "Diagnostics for %s (%d bytes)\n", r.Source, r.Size)
	}
	fmt.Fprintf(&b, "  %d error(s), %d warning(s), %d info\n",
		r.Summary.Errors, r.Summary.Warnings, r.Summary.Info)
	for _, d := range r.Diagnostics {
		fmt.Fprintf(&b, "  [%s] 0x%08x %s: %s", d.Severity, d.Offset, d.Structure, d.Issue)
		if d.Expected != nil || d.Actual != nil {
			fmt.Fprintf(&b, " (expected %v, actual %v)", d.Expected, d.Actual)
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
