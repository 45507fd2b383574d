// Package source implements the ByteSource abstraction: a random-access byte
// provider with an optional length hint and filename hint, backed by an open
// file, an in-memory buffer, or an eagerly-drained stream.
package source

import "github.com/ostafen/audiometa/model"

// ByteSource is the boundary between the core parsing engine and external
// I/O. Implementations must tolerate concurrent non-overlapping reads and
// must be safe to Close more than once.
type ByteSource interface {
	// Length returns the total byte size of the source, and false if the
	// size isn't known ahead of time.
	Length() (int64, bool)
	// NameHint returns the filename (or URL path) associated with the
	// source, used only for extension heuristics. Empty if unknown.
	NameHint() string
	// Read returns at most length bytes starting at offset, or fewer if the
	// source ends first. Zero-length reads return (nil, nil) without I/O.
	// Negative offsets fail with an ErrIOFailure AudioError.
	Read(offset int64, length int) ([]byte, error)
	// Close releases any underlying OS resources. Safe to call more than
	// once.
	Close() error
}

func negativeOffsetErr(offset int64) error {
	return model.NewErrorf(model.ErrIOFailure, "negative read offset %d", offset).WithOffset(offset)
}
