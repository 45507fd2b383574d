package ioreader

import "github.com/ostafen/audiometa/internal/source"

// FromBytes builds a WindowedReader over an in-memory slice, for format
// parsers that need to reparse an embedded sub-block (an ID3v2 tag nested in
// a WAVE `id3 ` chunk, an APEv2 footer on a sliced tail) without touching the
// original source again.
func FromBytes(data []byte) *WindowedReader {
	ms := source.NewMemorySource(data, "")
	return New(ms, len(data)+1, len(data)+1)
}
