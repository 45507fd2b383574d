// Package ioreader implements the single-window caching reader that sits
// between a source.ByteSource and the format parsers.
package ioreader

import (
	"encoding/binary"
	"strconv"

	"github.com/ostafen/audiometa/internal/source"
	"github.com/ostafen/audiometa/model"
)

// WindowedReader wraps a ByteSource with one cached window of bytes. Parsers
// walk containers approximately linearly but also jump back and forth (an
// APEv2 footer lives at the end of file, an MP4 atom tree is a tree); a
// single window sized to a typical metadata block amortises I/O without the
// complexity of a general-purpose cache.
type WindowedReader struct {
	src ByteSourceReader

	windowSize   int
	maxReadBytes int

	winOff  int64
	winData []byte

	bytesRead uint64
}

// ByteSourceReader is the subset of source.ByteSource the reader needs.
type ByteSourceReader = source.ByteSource

// New returns a WindowedReader over src. windowSize and maxReadBytes should
// already be normalized (model.ParseOptions.Normalize).
func New(src ByteSourceReader, windowSize, maxReadBytes int) *WindowedReader {
	return &WindowedReader{
		src:          src,
		windowSize:   windowSize,
		maxReadBytes: maxReadBytes,
		winOff:       0,
		winData:      nil,
	}
}

// BytesRead returns the cumulative number of bytes fetched from the
// underlying source over the life of this reader. It does not count bytes
// served from the cached window.
func (r *WindowedReader) BytesRead() uint64 { return r.bytesRead }

// Length delegates to the underlying source's length hint.
func (r *WindowedReader) Length() (int64, bool) { return r.src.Length() }

// NameHint delegates to the underlying source's filename hint.
func (r *WindowedReader) NameHint() string { return r.src.NameHint() }

func (r *WindowedReader) coveredByWindow(offset int64, length int) bool {
	if r.winData == nil {
		return false
	}
	end := offset + int64(length)
	winEnd := r.winOff + int64(len(r.winData))
	return offset >= r.winOff && end <= winEnd
}

// Read returns up to length bytes starting at offset. If the requested range
// lies within the cached window it is served without touching the source.
// Otherwise, provided length does not exceed maxReadBytes, the window is
// replaced by fetching max(windowSize, length) bytes from offset.
func (r *WindowedReader) Read(offset int64, length int) ([]byte, error) {
	if offset < 0 {
		return nil, model.NewErrorf(model.ErrIOFailure, "negative read offset %d", offset).WithOffset(offset)
	}
	if length == 0 {
		return nil, nil
	}

	if r.coveredByWindow(offset, length) {
		start := offset - r.winOff
		return r.winData[start : start+int64(length)], nil
	}

	if length > r.maxReadBytes {
		return nil, model.NewErrorf(model.ErrIOFailure, "read of %d bytes exceeds maxReadBytes", length).
			WithOffset(offset).
			WithContext("requestedBytes", strconv.Itoa(length)).
			WithContext("maxReadBytes", strconv.Itoa(r.maxReadBytes))
	}

	fetch := r.windowSize
	if length > fetch {
		fetch = length
	}

	data, err := r.src.Read(offset, fetch)
	if err != nil {
		return nil, err
	}
	r.bytesRead += uint64(len(data))
	r.winOff = offset
	r.winData = data

	if len(data) < length {
		return data, nil
	}
	return data[:length], nil
}

// ReadExact is like Read but fails with ErrTruncatedData if fewer than
// length bytes were available.
func (r *WindowedReader) ReadExact(offset int64, length int) ([]byte, error) {
	data, err := r.Read(offset, length)
	if err != nil {
		return nil, err
	}
	if len(data) < length {
		return nil, model.NewErrorf(model.ErrTruncatedData, "expected %d bytes, got %d", length, len(data)).WithOffset(offset)
	}
	return data, nil
}

// ReadUInt8 reads a single byte.
func (r *WindowedReader) ReadUInt8(offset int64) (uint8, error) {
	b, err := r.ReadExact(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUInt16LE reads a little-endian uint16.
func (r *WindowedReader) ReadUInt16LE(offset int64) (uint16, error) {
	b, err := r.ReadExact(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadUInt16BE reads a big-endian uint16.
func (r *WindowedReader) ReadUInt16BE(offset int64) (uint16, error) {
	b, err := r.ReadExact(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadUInt24BE reads a big-endian 24-bit unsigned integer.
func (r *WindowedReader) ReadUInt24BE(offset int64) (uint32, error) {
	b, err := r.ReadExact(offset, 3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// ReadUInt32LE reads a little-endian uint32.
func (r *WindowedReader) ReadUInt32LE(offset int64) (uint32, error) {
	b, err := r.ReadExact(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadUInt32BE reads a big-endian uint32.
func (r *WindowedReader) ReadUInt32BE(offset int64) (uint32, error) {
	b, err := r.ReadExact(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadUInt64LE reads a little-endian uint64.
func (r *WindowedReader) ReadUInt64LE(offset int64) (uint64, error) {
	b, err := r.ReadExact(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadUInt64BE reads a big-endian uint64.
func (r *WindowedReader) ReadUInt64BE(offset int64) (uint64, error) {
	b, err := r.ReadExact(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadASCII reads exactly length bytes and returns them as a string,
// failing with ErrTruncatedData on a short read.
func (r *WindowedReader) ReadASCII(offset int64, length int) (string, error) {
	b, err := r.ReadExact(offset, length)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
