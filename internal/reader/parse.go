package reader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joshuapare/prefetchkit/internal/buf"
	"github.com/joshuapare/prefetchkit/internal/format"
	"github.com/joshuapare/prefetchkit/internal/stream"
	"github.com/joshuapare/prefetchkit/pkg/types"
)

// openStream probes the container and builds the stream over its payload.
func (f *File) openStream() error {
	head := make([]byte, format.ContainerHeaderSize)
	n, err := f.src.ReadAt(head, 0)
	if n < len(head) {
		if n == 0 && err != nil && f.src.Size() >= int64(len(head)) {
			return wrapIOErr(fmt.Errorf("container header: %w", err))
		}
		return fmt.Errorf("container header: %d of %d bytes: %w", n, len(head), format.ErrSignatureMismatch)
	}

	hdr, err := format.ProbeContainer(head, f.src.Size())
	if err != nil {
		return err
	}
	f.container = hdr

	if hdr.Format == format.FormatUncompressed {
		f.stream = stream.NewPassthrough(f.src)
		return nil
	}
	s, err := stream.NewCompressed(f.src, hdr, stream.Options{
		BlockSize:     f.opts.BlockSize,
		CacheCapacity: f.opts.CacheCapacity,
		Decompressor:  f.opts.Decompressor,
		Metrics:       f.opts.Metrics,
	})
	if err != nil {
		return err
	}
	f.stream = s
	f.log.Debug("indexed compressed container",
		"declared", hdr.UncompressedSize,
		"produced", s.Size(),
		"blocks", s.Table().Len())
	return nil
}

func (f *File) readFileHeader() error {
	b, err := f.readRegion("file header", 0, format.FileHeaderSize)
	if err != nil {
		return err
	}
	f.header, err = format.ParseFileHeader(b)
	return err
}

func (f *File) readFileInformation() error {
	peek, err := f.readRegion("file information", format.FileInformationOffset, 4)
	if err != nil {
		return err
	}
	size, err := format.FileInformationSize(f.header.FormatVersion, buf.U32LE(peek))
	if err != nil {
		return err
	}
	b, err := f.readRegion("file information", format.FileInformationOffset, uint64(size))
	if err != nil {
		return err
	}
	f.info, err = format.ParseFileInformation(f.header.FormatVersion, b)
	return err
}

func (f *File) readFileMetrics() error {
	count := int(f.info.NumberOfFileMetricsEntries)
	b, err := f.readArray("file metrics array", f.info.MetricsArrayOffset, count, f.info.MetricsEntrySize())
	if err != nil || b == nil {
		return err
	}
	f.metrics, err = format.ParseFileMetrics(f.info.Version, b, count)
	return err
}

// readTraceChain validates the trace chain array bounds. Entries are only
// decoded when debug logging is enabled.
func (f *File) readTraceChain() error {
	count := int(f.info.NumberOfTraceChainArrayEntries)
	b, err := f.readArray("trace chain array", f.info.TraceChainArrayOffset, count, f.info.TraceChainEntrySize())
	if err != nil || b == nil {
		return err
	}
	if !f.log.Enabled(context.Background(), slog.LevelDebug) {
		return nil
	}
	entries, err := format.ParseTraceChain(f.info.Version, b, count)
	if err != nil {
		return err
	}
	for i, e := range entries {
		f.log.Debug("trace chain entry",
			"index", i,
			"next", e.NextEntryIndex,
			"blocks", e.TotalBlockLoadCount,
			"unknown1", e.Unknown1,
			"unknown2", e.Unknown2,
			"unknown3", e.Unknown3)
	}
	return nil
}

// readFilenameStrings indexes the filename strings and resolves each metrics
// entry's filename offset against them.
func (f *File) readFilenameStrings() error {
	if f.info.FilenameStringsOffset != 0 && f.info.FilenameStringsSize != 0 {
		b, err := f.readRegion("filename strings",
			uint64(f.info.FilenameStringsOffset), uint64(f.info.FilenameStringsSize))
		if err != nil {
			return err
		}
		f.filenames = format.ParseFilenameStrings(b)
	}

	f.metricIdx = make([]int, len(f.metrics))
	for i, m := range f.metrics {
		idx, ok := f.filenames.IndexAt(m.FilenameOffset)
		if !ok {
			f.metricIdx[i] = -1
			f.diagnostics.record(diagMismatch(types.SevInfo,
				uint64(f.info.MetricsArrayOffset)+uint64(i*f.info.MetricsEntrySize()),
				fmt.Sprintf("file metrics[%d]", i),
				"filename offset does not start a filename string",
				"filename boundary", m.FilenameOffset))
			continue
		}
		f.metricIdx[i] = idx
	}
	return nil
}

func (f *File) readVolumes() error {
	count := int(f.info.NumberOfVolumes)
	if f.info.VolumesInformationOffset == 0 || count == 0 {
		return nil
	}
	blob, err := f.readRegion("volumes information",
		uint64(f.info.VolumesInformationOffset), uint64(f.info.VolumesInformationSize))
	if err != nil {
		return err
	}
	f.volumes, err = format.ParseVolumes(f.info.Version, blob, count)
	return err
}

// checkSizes compares the declared sizes against what was produced. The
// mismatches are advisory unless OpenOptions.Strict is set.
func (f *File) checkSizes() error {
	size := f.stream.Size()
	if t := f.stream.Table(); t != nil {
		if t.Shortfall() != 0 {
			if err := f.mismatch(0, "container", "compressed data ended before the declared size",
				t.DeclaredSize, t.Size); err != nil {
				return err
			}
		}
		if t.TrailingBytes > format.MinCompressedTrailer {
			if err := f.mismatch(uint64(f.container.RawSize-t.TrailingBytes), "container",
				"compressed data remains after the declared size",
				int64(format.MinCompressedTrailer), t.TrailingBytes); err != nil {
				return err
			}
		}
	}
	if int64(f.header.FileSize) != size {
		if err := f.mismatch(format.HeaderFileSizeOffset, "file header",
			"file size does not match stream size", int64(f.header.FileSize), size); err != nil {
			return err
		}
	}
	return nil
}

func (f *File) mismatch(offset uint64, structure, issue string, expected, actual int64) error {
	if f.opts.Strict {
		return &types.Error{
			Kind: types.ErrKindInput,
			Msg:  types.ErrValueMismatch.Msg,
			Err:  fmt.Errorf("%s: %s: expected %d, got %d", structure, issue, expected, actual),
		}
	}
	f.log.Warn(issue, "structure", structure, "expected", expected, "actual", actual)
	f.diagnostics.record(diagMismatch(types.SevWarning, offset, structure, issue, expected, actual))
	return nil
}

// readArray reads count entries of size bytes at offset. It returns nil when
// the array is absent.
func (f *File) readArray(name string, offset uint32, count, size int) ([]byte, error) {
	if offset == 0 || count == 0 {
		return nil, nil
	}
	total, ok := buf.MulOverflowSafe(count, size)
	if !ok {
		return nil, fmt.Errorf("%s: %d entries of %d bytes: %w", name, count, size, format.ErrOutOfBounds)
	}
	return f.readRegion(name, uint64(offset), uint64(total))
}

// readRegion reads size bytes at offset after checking them against the
// stream size.
func (f *File) readRegion(name string, offset, size uint64) ([]byte, error) {
	if _, err := buf.CheckRange(f.stream.Size(), offset, size); err != nil {
		return nil, fmt.Errorf("%s at 0x%x: %w: %w", name, offset, format.ErrOutOfBounds, err)
	}
	b := make([]byte, size)
	if _, err := f.stream.ReadAt(b, int64(offset)); err != nil {
		return nil, fmt.Errorf("%s at 0x%x: %w", name, offset, err)
	}
	return b, nil
}
