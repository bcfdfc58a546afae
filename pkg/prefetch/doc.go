/*
Package prefetch reads Windows Prefetch (.pf) files.

Both the uncompressed SCCA records written up to Windows 8.1 and the
compressed MAM containers written by Windows 10 and 11 are supported, for
format versions 17, 23, 26 and 30.

# Quick Start

	r, err := prefetch.Open("CALC.EXE-77FDF17F.pf", prefetch.OpenOptions{})
	if err != nil {
	    log.Fatal(err)
	}
	defer r.Close()

	runs, _ := r.RunCount()
	last, _ := r.LastRunTime(0)
	fmt.Printf("run %d times, last at %s\n", runs, last)

# Sources

Open memory-maps a local file; files starting with a gzip or zstd magic
number are decompressed first. OpenBytes parses a buffer, OpenSource any
types.ByteSource, and OpenS3 an S3 object through ranged reads.

# Reports

Summarize collects everything a Reader exposes into a Summary, which can be
rendered as text or marshalled to JSON:

	s, err := prefetch.Summarize(r)
	if err != nil {
	    log.Fatal(err)
	}
	s.WriteText(os.Stdout)

# Error Handling

Errors are *types.Error values carrying an ErrKind. Compare against the
sentinels in pkg/types with errors.Is, or test the kind with types.IsKind:

	if errors.Is(err, types.ErrSignatureMismatch) {
	    // not a prefetch file
	}
*/
package prefetch
