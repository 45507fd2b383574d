package source

// MemorySource is a ByteSource serving slices of a pre-supplied in-memory
// buffer. Reads past the end of the buffer simply return fewer bytes; only
// a negative offset is rejected with an error.
type MemorySource struct {
	data []byte
	name string
}

// NewMemorySource wraps data (not copied) as a ByteSource. nameHint is used
// only for the format probe's filename heuristic.
func NewMemorySource(data []byte, nameHint string) *MemorySource {
	return &MemorySource{data: data, name: nameHint}
}

func (s *MemorySource) Length() (int64, bool) { return int64(len(s.data)), true }
func (s *MemorySource) NameHint() string      { return s.name }

func (s *MemorySource) Read(offset int64, length int) ([]byte, error) {
	if offset < 0 {
		return nil, negativeOffsetErr(offset)
	}
	if length == 0 || offset >= int64(len(s.data)) {
		return nil, nil
	}
	end := offset + int64(length)
	if end > int64(len(s.data)) {
		end = int64(len(s.data))
	}
	// Return a copy so callers can't mutate the backing buffer through the
	// returned slice.
	out := make([]byte, end-offset)
	copy(out, s.data[offset:end])
	return out, nil
}

func (s *MemorySource) Close() error { return nil }
