package prefetch

import (
	"github.com/joshuapare/prefetchkit/internal/reader"
	"github.com/joshuapare/prefetchkit/pkg/types"
)

// File is a reusable prefetch parser: Open, query, Close, Open again.
type File = reader.File

// OpenOptions controls parsing. This is an alias to types.OpenOptions for
// convenience.
type OpenOptions = types.OpenOptions

// Re-exported for convenience.
type (
	Reader           = types.Reader
	ByteSource       = types.ByteSource
	Info             = types.Info
	MetricsEntry     = types.MetricsEntry
	Volume           = types.Volume
	Filetime         = types.Filetime
	FileReference    = types.FileReference
	DiagnosticReport = types.DiagnosticReport
)
