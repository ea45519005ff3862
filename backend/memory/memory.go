// Package memory provides a backend.Storage held entirely in a byte slice.
// It backs decompressed images and tests.
package memory

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/ecsfs/go-ecsfs/backend"
)

// Storage an in-memory disk image
type Storage struct {
	mu       sync.RWMutex
	name     string
	data     []byte
	pos      int64
	readOnly bool
	closed   bool
}

// New creates a zero-filled image of size bytes
func New(name string, size int64) *Storage {
	return &Storage{name: name, data: make([]byte, size)}
}

// FromBytes wraps b without copying it
func FromBytes(name string, b []byte, readOnly bool) *Storage {
	return &Storage{name: name, data: b, readOnly: readOnly}
}

var _ backend.Storage = (*Storage)(nil)

// Bytes returns the current image contents. The slice is shared with the storage.
func (s *Storage) Bytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Size the image length in bytes
func (s *Storage) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.data))
}

func (s *Storage) Stat() (fs.FileInfo, error) {
	return fileInfo{name: s.name, size: s.Size()}, nil
}

func (s *Storage) Read(b []byte) (int, error) {
	n, err := s.ReadAt(b, s.pos)
	s.pos += int64(n)
	return n, err
}

func (s *Storage) ReadAt(b []byte, off int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, os.ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if off >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(b, s.data[off:])
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}

func (s *Storage) WriteAt(b []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, os.ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if off >= int64(len(s.data)) {
		return 0, io.ErrShortWrite
	}
	n := copy(s.data[off:], b)
	if n < len(b) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

func (s *Storage) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = s.pos + offset
	case io.SeekEnd:
		pos = s.Size() + offset
	default:
		return -1, backend.ErrNotSuitable
	}
	if pos < 0 {
		return -1, fmt.Errorf("cannot seek to negative position %d", pos)
	}
	s.pos = pos
	return pos, nil
}

func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Sys there is no OS file behind memory storage
func (s *Storage) Sys() (*os.File, error) {
	return nil, backend.ErrNotSuitable
}

func (s *Storage) Writable() (backend.WritableFile, error) {
	if s.readOnly {
		return nil, backend.ErrIncorrectOpenMode
	}
	return s, nil
}

type fileInfo struct {
	name string
	size int64
}

func (fi fileInfo) Name() string       { return fi.name }
func (fi fileInfo) Size() int64        { return fi.size }
func (fi fileInfo) Mode() fs.FileMode  { return 0o600 }
func (fi fileInfo) ModTime() time.Time { return time.Time{} }
func (fi fileInfo) IsDir() bool        { return false }
func (fi fileInfo) Sys() any           { return nil }
