package ecs150

import (
	"fmt"
	"io"
	iofs "io/fs"
	"os"

	"github.com/ecsfs/go-ecsfs/filesystem"
)

// File an open descriptor wrapped in the io interfaces
type File struct {
	fs   *FileSystem
	fd   int
	name string
}

// filesystem.File interface guard
var _ filesystem.File = (*File)(nil)

// OpenFile opens name and returns it as a File
func (fs *FileSystem) OpenFile(name string) (filesystem.File, error) {
	return fs.OpenHandle(name)
}

// OpenHandle opens name and returns the concrete File
func (fs *FileSystem) OpenHandle(name string) (*File, error) {
	fd, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	return &File{fs: fs, fd: fd, name: name}, nil
}

// Descriptor the descriptor number behind the File
func (fl *File) Descriptor() int {
	return fl.fd
}

// Read reads up to len(b) bytes from the cursor.
// At end of file, Read returns 0, io.EOF
func (fl *File) Read(b []byte) (int, error) {
	if fl == nil || fl.fs == nil {
		return 0, os.ErrClosed
	}
	n, err := fl.fs.Read(fl.fd, b)
	if err != nil {
		return n, err
	}
	if n == 0 && len(b) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write writes len(b) bytes at the cursor.
// When the volume fills up it returns the bytes that fit and io.ErrShortWrite
func (fl *File) Write(b []byte) (int, error) {
	if fl == nil || fl.fs == nil {
		return 0, os.ErrClosed
	}
	n, err := fl.fs.Write(fl.fd, b)
	if err != nil {
		return n, err
	}
	if n < len(b) {
		return n, fmt.Errorf("%w: %w", io.ErrShortWrite, ErrNoSpace)
	}
	return n, nil
}

// Seek set the offset to a particular point in the file. The offset cannot go past the end of the file.
func (fl *File) Seek(offset int64, whence int) (int64, error) {
	if fl == nil || fl.fs == nil {
		return 0, os.ErrClosed
	}
	d, err := fl.fs.files.get(fl.fd)
	if err != nil {
		return 0, err
	}
	newOffset := int64(0)
	switch whence {
	case io.SeekStart:
		newOffset = offset
	case io.SeekEnd:
		newOffset = int64(fl.fs.root.entries[d.entry].fileSize) + offset
	case io.SeekCurrent:
		newOffset = int64(d.offset) + offset
	default:
		return int64(d.offset), fmt.Errorf("invalid whence %d", whence)
	}
	if newOffset < 0 {
		return int64(d.offset), fmt.Errorf("%w: cannot set offset %d before start of file", ErrOffsetOutOfRange, newOffset)
	}
	if newOffset > int64(^uint32(0)) {
		return int64(d.offset), fmt.Errorf("%w: %d", ErrOffsetOutOfRange, newOffset)
	}
	if err := fl.fs.Seek(fl.fd, uint32(newOffset)); err != nil {
		return int64(d.offset), err
	}
	return newOffset, nil
}

// Size the current length of the file
func (fl *File) Size() int64 {
	if fl == nil || fl.fs == nil {
		return 0
	}
	size, err := fl.fs.Stat(fl.fd)
	if err != nil {
		return 0
	}
	return int64(size)
}

// Stat describes the file, so a File is also an fs.File
func (fl *File) Stat() (iofs.FileInfo, error) {
	if fl == nil || fl.fs == nil {
		return nil, os.ErrClosed
	}
	d, err := fl.fs.files.get(fl.fd)
	if err != nil {
		return nil, err
	}
	return newDirEntry(&fl.fs.root.entries[d.entry]), nil
}

// Close the file
func (fl *File) Close() error {
	if fl == nil || fl.fs == nil {
		return os.ErrClosed
	}
	err := fl.fs.Close(fl.fd)
	fl.fs = nil
	return err
}
