// Package reader provides the concrete types.Reader implementation: a
// prefetch file that is opened from a byte source, parsed once and then
// queried through indexed accessors. The public wrapper in pkg/prefetch
// obtains a types.Reader from here without exposing the parsing pipeline.
package reader

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/joshuapare/prefetchkit/internal/format"
	"github.com/joshuapare/prefetchkit/internal/stream"
	"github.com/joshuapare/prefetchkit/pkg/types"
)

var _ types.Reader = (*File)(nil)

// File is one prefetch file. The zero value is not usable; call New. A File
// can be opened, closed and opened again. It is not safe for concurrent use
// except for SignalAbort.
type File struct {
	opts  types.OpenOptions
	log   *slog.Logger
	abort atomic.Bool

	open      bool
	src       types.ByteSource
	container format.ContainerHeader
	stream    *stream.Stream

	header    format.FileHeader
	info      format.FileInformation
	metrics   []format.FileMetricsEntry
	metricIdx []int // filename index per metrics entry, -1 when unresolved
	filenames *format.FilenameTable
	volumes   []format.VolumeInformation

	diagnostics *diagnosticCollector // nil unless CollectDiagnostics=true
}

// New returns a closed File that will parse with opts.
func New(opts types.OpenOptions) *File {
	if opts.CacheCapacity <= 0 {
		opts.CacheCapacity = types.DefaultCacheCapacity
	}
	if opts.BlockSize <= 0 {
		opts.BlockSize = types.DefaultBlockSize
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &File{opts: opts, log: log}
}

// Open parses the prefetch file in src. On failure every partial result is
// released and the File stays closed. src must stay readable until Close.
func (f *File) Open(src types.ByteSource) (err error) {
	if src == nil {
		return &types.Error{Kind: types.ErrKindArgument, Msg: "invalid byte source"}
	}
	if f.open {
		return types.ErrAlreadyOpen
	}
	f.abort.Store(false)

	f.src = src
	if f.opts.CollectDiagnostics {
		f.diagnostics = newDiagnosticCollector(src.Size())
	}

	defer func() {
		if err == nil {
			f.open = true
			if f.opts.Metrics != nil {
				f.opts.Metrics.FileOpened(publicFormat(f.container.Format))
			}
			return
		}
		err = wrapErr(err)
		f.release()
		if f.opts.Metrics != nil {
			f.opts.Metrics.OpenFailed(errKind(err))
		}
		f.log.Debug("open failed", "size", src.Size(), "error", err)
	}()

	steps := []struct {
		name string
		run  func() error
	}{
		{"container", f.openStream},
		{"file header", f.readFileHeader},
		{"file information", f.readFileInformation},
		{"file metrics", f.readFileMetrics},
		{"trace chain", f.readTraceChain},
		{"filename strings", f.readFilenameStrings},
		{"volumes information", f.readVolumes},
		{"size checks", f.checkSizes},
	}
	for _, step := range steps {
		if f.abort.Load() {
			return fmt.Errorf("before %s: %w", step.name, types.ErrAborted)
		}
		if err := step.run(); err != nil {
			return err
		}
	}

	f.log.Debug("opened prefetch file",
		"container", f.container.Format,
		"version", f.info.Version,
		"layout", f.info.Layout,
		"metrics", len(f.metrics),
		"filenames", f.filenames.Len(),
		"volumes", len(f.volumes))
	return nil
}

// Close releases the stream, block cache and parsed metadata. Closing a
// closed File is a no-op.
func (f *File) Close() error {
	if !f.open {
		return nil
	}
	return f.release()
}

// SignalAbort asks an in-progress Open to stop before its next step.
func (f *File) SignalAbort() {
	f.abort.Store(true)
}

// Diagnostics returns the findings recorded by the last successful Open.
func (f *File) Diagnostics() *types.DiagnosticReport {
	if !f.open {
		return nil
	}
	return f.diagnostics.getReport()
}

// release drops everything Open built and returns the File to its closed
// state.
func (f *File) release() error {
	var err error
	if f.stream != nil {
		err = f.stream.Close()
	}
	f.open = false
	f.src = nil
	f.container = format.ContainerHeader{}
	f.stream = nil
	f.header = format.FileHeader{}
	f.info = format.FileInformation{}
	f.metrics = nil
	f.metricIdx = nil
	f.filenames = nil
	f.volumes = nil
	f.diagnostics = nil
	return err
}

func (f *File) ensureOpen() error {
	if !f.open {
		return types.ErrNotOpen
	}
	return nil
}

func publicFormat(c format.ContainerFormat) types.ContainerFormat {
	switch c {
	case format.FormatUncompressed:
		return types.FormatUncompressed
	case format.FormatCompressedWin10:
		return types.FormatCompressedWin10
	default:
		return types.FormatUnknown
	}
}
