package testhelper

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/ecsfs/go-ecsfs/backend"
)

type reader func(b []byte, offset int64) (int, error)
type writer func(b []byte, offset int64) (int, error)

// FileImpl implement github.com/ecsfs/go-ecsfs/backend.Storage
// used for testing to enable stubbing out storage and injecting faults
type FileImpl struct {
	Reader reader
	Writer writer
	// Length reported by Size, the block count of the stubbed device times the block size
	Length int64
}

var _ backend.Storage = (*FileImpl)(nil)

func (f *FileImpl) Stat() (fs.FileInfo, error) {
	return nil, nil
}

func (f *FileImpl) Read(b []byte) (int, error) {
	return f.Reader(b, 0)
}

func (f *FileImpl) Close() error {
	return nil
}

// Size the length of the stubbed storage
func (f *FileImpl) Size() int64 {
	return f.Length
}

// ReadAt read at a particular offset
func (f *FileImpl) ReadAt(b []byte, offset int64) (int, error) {
	return f.Reader(b, offset)
}

// WriteAt write at a particular offset
func (f *FileImpl) WriteAt(b []byte, offset int64) (int, error) {
	if f.Writer == nil {
		return 0, backend.ErrIncorrectOpenMode
	}
	return f.Writer(b, offset)
}

// Seek seek a particular offset - does not actually work
//
//nolint:unused,revive // to implement the interface
func (f *FileImpl) Seek(offset int64, whence int) (int64, error) {
	return 0, fmt.Errorf("FileImpl does not implement Seek()")
}

func (f *FileImpl) Sys() (*os.File, error) {
	return nil, backend.ErrNotSuitable
}

// Writable returns the stub itself, or ErrIncorrectOpenMode when no Writer is set
func (f *FileImpl) Writable() (backend.WritableFile, error) {
	if f.Writer == nil {
		return nil, backend.ErrIncorrectOpenMode
	}
	return f, nil
}

// Backed wraps an image held in memory, delegating to it until fail returns an error for an access.
// fail sees the offset and length of every access and whether it is a write.
func Backed(image []byte, fail func(offset int64, length int, write bool) error) *FileImpl {
	return &FileImpl{
		Length: int64(len(image)),
		Reader: func(b []byte, offset int64) (int, error) {
			if err := fail(offset, len(b), false); err != nil {
				return 0, err
			}
			return copy(b, image[offset:]), nil
		},
		Writer: func(b []byte, offset int64) (int, error) {
			if err := fail(offset, len(b), true); err != nil {
				return 0, err
			}
			return copy(image[offset:], b), nil
		},
	}
}
