// Package types defines the public API surface shared by the prefetch reader,
// its byte sources and the command line tools: typed errors, open options,
// the Reader interface and the value types it returns.
//
// Design goals:
//   - Validate every on-disk offset before dereferencing it; never panic on
//     malformed input.
//   - Typed errors with stable categories (argument/input/io/compression/...).
//   - Plain value types so callers can copy results freely after Close.
package types
