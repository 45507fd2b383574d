package source

import (
	"io"

	"github.com/ostafen/audiometa/model"
)

// StreamSource drains a forward-only io.Reader into memory eagerly at
// construction time, reducing stream parsing to buffered parsing over a
// MemorySource.
type StreamSource struct {
	*MemorySource
}

// NewStreamSource reads r to completion and returns a ByteSource over the
// buffered bytes. Fails with ErrIOFailure if the underlying read errors.
func NewStreamSource(r io.Reader, nameHint string) (*StreamSource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, model.NewErrorf(model.ErrIOFailure, "draining stream: %v", err)
	}
	return &StreamSource{MemorySource: NewMemorySource(data, nameHint)}, nil
}
