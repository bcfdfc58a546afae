package testutil

// Timestamps used by the sample fixtures (FILETIME ticks).
const (
	SampleLastRun     uint64 = 132068401830000000 // 2019-07-05 22:43:03 UTC
	SampleEarlierRun  uint64 = 132067537830000000 // 2019-07-04 22:43:03 UTC
	SampleVolumeBirth uint64 = 131987232000000000 // 2019-04-03 00:00:00 UTC
)

// Sample returns a populated fixture for version. For version 30 the layout
// with the metrics array at 0x130 is used; set V30Variant2 for the other.
func Sample(version uint32) Prefetch {
	p := Prefetch{
		Version:      version,
		Executable:   "CALC.EXE",
		PrefetchHash: 0x77fdf17f,
		RunCount:     5,
		LastRunTimes: []uint64{SampleLastRun, SampleEarlierRun},
		Filenames: []string{
			`\VOLUME{01d4e9c3a1b2c3d4-5a6b7c8d}\WINDOWS\SYSTEM32\NTDLL.DLL`,
			`\VOLUME{01d4e9c3a1b2c3d4-5a6b7c8d}\WINDOWS\SYSTEM32\CALC.EXE`,
			`\VOLUME{01d4e9c3a1b2c3d4-5a6b7c8d}\WINDOWS\SYSTEM32\KERNEL32.DLL`,
		},
		Metrics: []Metric{
			{StartTime: 0, Duration: 12, AverageDuration: 12, Filename: 0, Flags: 0x200, FileReference: 0x0001000000002a4f},
			{StartTime: 12, Duration: 3, AverageDuration: 4, Filename: 1, Flags: 0x200, FileReference: 0x000200000000113a},
			{StartTime: 15, Duration: 7, AverageDuration: 6, Filename: 2, Flags: 0x002, FileReference: 0x0001000000002b10},
		},
		TraceChain: 4,
		Volumes: []Volume{{
			DevicePath:     `\VOLUME{01d4e9c3a1b2c3d4-5a6b7c8d}`,
			CreationTime:   SampleVolumeBirth,
			SerialNumber:   0x5a6b7c8d,
			FileReferences: []uint64{0x0005000000000005, 0x0001000000000024},
			DirectoryStrings: []string{
				`\VOLUME{01d4e9c3a1b2c3d4-5a6b7c8d}\WINDOWS`,
				`\VOLUME{01d4e9c3a1b2c3d4-5a6b7c8d}\WINDOWS\SYSTEM32`,
			},
		}},
	}
	if version < 26 {
		p.LastRunTimes = p.LastRunTimes[:1]
	}
	return p
}
