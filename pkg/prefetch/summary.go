package prefetch

import (
	"fmt"
	"io"
	"time"
)

// Timestamp pairs a raw FILETIME with its UTC rendering.
type Timestamp struct {
	Filetime uint64    `json:"filetime"`
	UTC      time.Time `json:"utc,omitzero"`
}

func timestamp(ft Filetime) Timestamp {
	return Timestamp{Filetime: uint64(ft), UTC: ft.Time()}
}

func (t Timestamp) String() string {
	if t.Filetime == 0 {
		return "0"
	}
	return Filetime(t.Filetime).String()
}

// MetricsSummary is one file metrics entry in a Summary.
type MetricsSummary struct {
	StartTime       uint32 `json:"start_time_ms"`
	Duration        uint32 `json:"duration_ms"`
	AverageDuration uint32 `json:"average_duration_ms,omitempty"`
	Flags           uint32 `json:"flags"`
	Filename        string `json:"filename,omitempty"`
	FileReference   string `json:"file_reference,omitempty"`
}

// VolumeSummary is one volume in a Summary.
type VolumeSummary struct {
	DevicePath       string    `json:"device_path"`
	CreationTime     Timestamp `json:"creation_time"`
	SerialNumber     uint32    `json:"serial_number"`
	FileReferences   []string  `json:"file_references,omitempty"`
	DirectoryStrings []string  `json:"directory_strings,omitempty"`
}

// Summary is everything a Reader exposes, gathered for reporting.
type Summary struct {
	Container          string           `json:"container"`
	UncompressedSize   int64            `json:"uncompressed_size"`
	FormatVersion      uint32           `json:"format_version"`
	PrefetchHash       uint32           `json:"prefetch_hash"`
	ExecutableFilename string           `json:"executable_filename"`
	RunCount           uint32           `json:"run_count"`
	LastRunTimes       []Timestamp      `json:"last_run_times"`
	Filenames          []string         `json:"filenames"`
	Metrics            []MetricsSummary `json:"metrics"`
	Volumes            []VolumeSummary  `json:"volumes"`
}

// Summarize reads every field of r.
func Summarize(r Reader) (*Summary, error) {
	info, err := r.Info()
	if err != nil {
		return nil, err
	}
	s := &Summary{
		Container:          info.Container.String(),
		UncompressedSize:   info.UncompressedSize,
		FormatVersion:      info.FormatVersion,
		PrefetchHash:       info.PrefetchHash,
		ExecutableFilename: info.ExecutableFilename,
		RunCount:           info.RunCount,
	}
	for _, ft := range info.LastRunTimes {
		s.LastRunTimes = append(s.LastRunTimes, timestamp(ft))
	}

	n, err := r.NumberOfFilenames()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		name, err := r.Filename(i)
		if err != nil {
			return nil, err
		}
		s.Filenames = append(s.Filenames, name)
	}

	if n, err = r.NumberOfFileMetricsEntries(); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		e, err := r.FileMetricsEntry(i)
		if err != nil {
			return nil, err
		}
		m := MetricsSummary{
			StartTime:       e.StartTime,
			Duration:        e.Duration,
			AverageDuration: e.AverageDuration,
			Flags:           e.Flags,
			Filename:        e.Filename,
		}
		if e.HasFileReference {
			m.FileReference = e.FileReference.String()
		}
		s.Metrics = append(s.Metrics, m)
	}

	if n, err = r.NumberOfVolumes(); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		v, err := r.VolumeInformation(i)
		if err != nil {
			return nil, err
		}
		vs := VolumeSummary{
			DevicePath:       v.DevicePath,
			CreationTime:     timestamp(v.CreationTime),
			SerialNumber:     v.SerialNumber,
			DirectoryStrings: v.DirectoryStrings,
		}
		for _, ref := range v.FileReferences {
			vs.FileReferences = append(vs.FileReferences, ref.String())
		}
		s.Volumes = append(s.Volumes, vs)
	}
	return s, nil
}

// WriteText renders s the way sccainfo does.
func (s *Summary) WriteText(w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("Windows Prefetch File (PF) information:\n")
	ew.printf("\tFormat version\t\t\t: %d\n", s.FormatVersion)
	ew.printf("\tPrefetch hash\t\t\t: 0x%08x\n", s.PrefetchHash)
	ew.printf("\tExecutable filename\t\t: %s\n", s.ExecutableFilename)
	ew.printf("\tRun count\t\t\t: %d\n", s.RunCount)
	for i, t := range s.LastRunTimes {
		if len(s.LastRunTimes) == 1 {
			ew.printf("\tLast run time:\t\t\t: %s\n", t)
		} else {
			ew.printf("\tLast run time: %d\t\t: %s\n", i+1, t)
		}
	}
	ew.printf("\n")

	ew.printf("Filenames:\n")
	ew.printf("\tNumber of filenames\t\t: %d\n", len(s.Filenames))
	for i, name := range s.Filenames {
		ew.printf("\tFilename: %d\t\t\t: %s\n", i+1, name)
	}
	ew.printf("\n")

	ew.printf("Volumes:\n")
	ew.printf("\tNumber of volumes\t\t: %d\n", len(s.Volumes))
	ew.printf("\n")
	for i, v := range s.Volumes {
		ew.printf("Volume: %d information:\n", i+1)
		if v.DevicePath != "" {
			ew.printf("\tDevice path\t\t\t: %s\n", v.DevicePath)
		}
		ew.printf("\tCreation time\t\t\t: %s\n", v.CreationTime)
		ew.printf("\tSerial number\t\t\t: 0x%08x\n", v.SerialNumber)
		ew.printf("\n")
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
