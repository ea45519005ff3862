// Package backend describes the storage an ECS150FS disk image lives on.
package backend

import (
	"errors"
	"io"
	"io/fs"
	"os"
)

var (
	ErrIncorrectOpenMode = errors.New("disk image or device not open for write")
	ErrNotSuitable       = errors.New("backing storage is not suitable")
)

// File is the read side of a backing store
type File interface {
	fs.File
	io.ReaderAt
	io.Seeker
	io.Closer
}

// WritableFile is a File that also accepts positional writes
type WritableFile interface {
	File
	io.WriterAt
}

// Storage is anything a disk image can be read from and, unless opened read-only, written to
type Storage interface {
	File
	// OS-specific file for ioctl calls via fd
	Sys() (*os.File, error)
	// file for read-write operations
	Writable() (WritableFile, error)
}

// Sizer is implemented by storage that knows its own length without a Stat call
type Sizer interface {
	Size() int64
}
