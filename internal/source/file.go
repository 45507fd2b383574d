package source

import (
	"io"
	"os"

	"github.com/ostafen/audiometa/model"
)

// fileHandle is the subset of *os.File a FileSource needs; narrowing it to
// an interface keeps the source testable against fakes.
type fileHandle interface {
	io.ReaderAt
	Stat() (os.FileInfo, error)
	Close() error
}

// FileSource is a ByteSource backed by an open file handle. Reads are
// positional (ReadAt) so they survive concurrent non-overlapping calls
// without additional locking.
type FileSource struct {
	f        fileHandle
	size     int64
	haveSize bool
	name     string
}

// OpenFile opens path for reading and returns a FileSource over it.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, model.NewErrorf(model.ErrIOFailure, "open %q: %v", path, err)
	}
	return newFileSource(f, path)
}

func newFileSource(f fileHandle, name string) (*FileSource, error) {
	fs := &FileSource{f: f, name: name}
	if fi, err := f.Stat(); err == nil {
		fs.size = fi.Size()
		fs.haveSize = true
	}
	return fs, nil
}

func (s *FileSource) Length() (int64, bool) { return s.size, s.haveSize }
func (s *FileSource) NameHint() string      { return s.name }

func (s *FileSource) Read(offset int64, length int) ([]byte, error) {
	if offset < 0 {
		return nil, negativeOffsetErr(offset)
	}
	if length == 0 {
		return nil, nil
	}
	buf := make([]byte, length)
	n, err := s.f.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, model.NewErrorf(model.ErrIOFailure, "read at %d: %v", offset, err).WithOffset(offset)
	}
	return buf[:n], nil
}

func (s *FileSource) Close() error {
	return s.f.Close()
}
