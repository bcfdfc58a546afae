package reader

import (
	"github.com/joshuapare/prefetchkit/internal/format"
	"github.com/joshuapare/prefetchkit/internal/utf16x"
	"github.com/joshuapare/prefetchkit/pkg/types"
)

// Info returns the header and scalar file information fields.
func (f *File) Info() (types.Info, error) {
	if err := f.ensureOpen(); err != nil {
		return types.Info{}, err
	}
	runs := make([]types.Filetime, f.info.NumberOfLastRunTimes)
	for i := range runs {
		runs[i] = types.Filetime(f.info.LastRunTimes[i])
	}
	return types.Info{
		Container:          publicFormat(f.container.Format),
		UncompressedSize:   f.stream.Size(),
		FormatVersion:      f.header.FormatVersion,
		FileSize:           f.header.FileSize,
		PrefetchHash:       f.header.PrefetchHash,
		ExecutableFilename: utf16x.Decode(f.header.ExecutableFilename),
		RunCount:           f.info.RunCount,
		LastRunTimes:       runs,
	}, nil
}

func (f *File) FormatVersion() (uint32, error) {
	if err := f.ensureOpen(); err != nil {
		return 0, err
	}
	return f.header.FormatVersion, nil
}

func (f *File) PrefetchHash() (uint32, error) {
	if err := f.ensureOpen(); err != nil {
		return 0, err
	}
	return f.header.PrefetchHash, nil
}

// ExecutableFilename returns the executable name from the record header.
func (f *File) ExecutableFilename() (string, error) {
	if err := f.ensureOpen(); err != nil {
		return "", err
	}
	return utf16x.Decode(f.header.ExecutableFilename), nil
}

// ExecutableFilenameUTF16 returns a copy of the stored UTF-16LE name without
// terminator.
func (f *File) ExecutableFilenameUTF16() ([]byte, error) {
	if err := f.ensureOpen(); err != nil {
		return nil, err
	}
	return clone(f.header.ExecutableFilename), nil
}

func (f *File) RunCount() (uint32, error) {
	if err := f.ensureOpen(); err != nil {
		return 0, err
	}
	return f.info.RunCount, nil
}

func (f *File) NumberOfLastRunTimes() (int, error) {
	if err := f.ensureOpen(); err != nil {
		return 0, err
	}
	return f.info.NumberOfLastRunTimes, nil
}

// LastRunTime returns the i-th last run time; 0 is the most recent.
func (f *File) LastRunTime(i int) (types.Filetime, error) {
	if err := f.ensureOpen(); err != nil {
		return 0, err
	}
	if i < 0 || i >= f.info.NumberOfLastRunTimes {
		return 0, types.IndexError("last run time", i, f.info.NumberOfLastRunTimes)
	}
	return types.Filetime(f.info.LastRunTimes[i]), nil
}

func (f *File) NumberOfFileMetricsEntries() (int, error) {
	if err := f.ensureOpen(); err != nil {
		return 0, err
	}
	return len(f.metrics), nil
}

// FileMetricsEntry returns the i-th file metrics entry with its filename
// resolved through the filename strings.
func (f *File) FileMetricsEntry(i int) (types.MetricsEntry, error) {
	if err := f.ensureOpen(); err != nil {
		return types.MetricsEntry{}, err
	}
	if i < 0 || i >= len(f.metrics) {
		return types.MetricsEntry{}, types.IndexError("file metrics entry", i, len(f.metrics))
	}
	m := f.metrics[i]
	e := types.MetricsEntry{
		StartTime:          m.StartTime,
		Duration:           m.Duration,
		AverageDuration:    m.AverageDuration,
		HasAverageDuration: m.HasAverageDuration,
		FilenameOffset:     m.FilenameOffset,
		FilenameLength:     m.FilenameLength,
		Flags:              m.Flags,
		FileReference:      types.FileReference(m.FileReference),
		HasFileReference:   m.HasFileReference,
	}
	if idx := f.metricIdx[i]; idx >= 0 {
		e.Filename = utf16x.Decode(f.filenames.UTF16(idx))
	}
	return e, nil
}

func (f *File) NumberOfFilenames() (int, error) {
	if err := f.ensureOpen(); err != nil {
		return 0, err
	}
	return f.filenames.Len(), nil
}

// Filename returns the i-th entry of the filename strings as UTF-8.
func (f *File) Filename(i int) (string, error) {
	raw, err := f.filenameUTF16(i)
	if err != nil {
		return "", err
	}
	return utf16x.Decode(raw), nil
}

// FilenameUTF16 returns a copy of the i-th filename as stored, without
// terminator.
func (f *File) FilenameUTF16(i int) ([]byte, error) {
	raw, err := f.filenameUTF16(i)
	if err != nil {
		return nil, err
	}
	return clone(raw), nil
}

func (f *File) filenameUTF16(i int) ([]byte, error) {
	if err := f.ensureOpen(); err != nil {
		return nil, err
	}
	if i < 0 || i >= f.filenames.Len() {
		return nil, types.IndexError("filename", i, f.filenames.Len())
	}
	return f.filenames.UTF16(i), nil
}

func (f *File) NumberOfVolumes() (int, error) {
	if err := f.ensureOpen(); err != nil {
		return 0, err
	}
	return len(f.volumes), nil
}

// VolumeInformation returns the i-th volume with its strings decoded.
func (f *File) VolumeInformation(i int) (types.Volume, error) {
	if err := f.ensureOpen(); err != nil {
		return types.Volume{}, err
	}
	if i < 0 || i >= len(f.volumes) {
		return types.Volume{}, types.IndexError("volume", i, len(f.volumes))
	}
	return publicVolume(f.volumes[i]), nil
}

func publicVolume(v format.VolumeInformation) types.Volume {
	out := types.Volume{
		DevicePath:            utf16x.Decode(v.DevicePath),
		CreationTime:          types.Filetime(v.CreationTime),
		SerialNumber:          v.SerialNumber,
		FileReferencesVersion: v.FileReferencesVersion,
	}
	if len(v.FileReferences) > 0 {
		out.FileReferences = make([]types.FileReference, len(v.FileReferences))
		for i, r := range v.FileReferences {
			out.FileReferences[i] = types.FileReference(r)
		}
	}
	if len(v.DirectoryStrings) > 0 {
		out.DirectoryStrings = make([]string, len(v.DirectoryStrings))
		for i, s := range v.DirectoryStrings {
			out.DirectoryStrings[i] = utf16x.Decode(s)
		}
	}
	return out
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
