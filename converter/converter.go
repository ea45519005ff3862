// Package converter exposes a mounted volume as a read-only io/fs file system
package converter

import (
	"errors"
	"io"
	"io/fs"
	"sort"
	"time"

	"github.com/ecsfs/go-ecsfs/filesystem"
)

type fsCompatible struct {
	fs filesystem.FileSystem
}

// fsFileWrapper hides the write side of a filesystem.File
type fsFileWrapper struct {
	file filesystem.File
	stat fs.FileInfo
}

func (f *fsFileWrapper) Stat() (fs.FileInfo, error) {
	if f.stat == nil {
		return nil, fs.ErrInvalid
	}
	return f.stat, nil
}

func (f *fsFileWrapper) Read(b []byte) (int, error) {
	return f.file.Read(b)
}

func (f *fsFileWrapper) Seek(offset int64, whence int) (int64, error) {
	return f.file.Seek(offset, whence)
}

func (f *fsFileWrapper) Close() error {
	return f.file.Close()
}

func (f *fsCompatible) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		entries, err := f.ReadDir(name)
		if err != nil {
			return nil, err
		}
		return &rootDir{entries: entries}, nil
	}
	stat, err := f.stat(name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	file, err := f.fs.OpenFile(name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &fsFileWrapper{file: file, stat: stat}, nil
}

func (f *fsCompatible) stat(name string) (fs.FileInfo, error) {
	infos, err := f.fs.ReadDir()
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.Name() == name {
			return info, nil
		}
	}
	return nil, fs.ErrNotExist
}

// ReadDir lists the root, the only directory there is
func (f *fsCompatible) ReadDir(name string) ([]fs.DirEntry, error) {
	if name != "." {
		if !fs.ValidPath(name) {
			return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
		}
		if _, err := f.stat(name); err == nil {
			return nil, &fs.PathError{Op: "readdir", Path: name, Err: errors.New("not a directory")}
		}
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	infos, err := f.fs.ReadDir()
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}
	direntries := make([]fs.DirEntry, len(infos))
	for i := range infos {
		direntries[i] = fs.FileInfoToDirEntry(infos[i])
	}
	sort.Slice(direntries, func(i, j int) bool { return direntries[i].Name() < direntries[j].Name() })
	return direntries, nil
}

// rootDir the open root directory
type rootDir struct {
	entries []fs.DirEntry
	pos     int
}

func (d *rootDir) Stat() (fs.FileInfo, error) {
	return rootInfo{}, nil
}

func (d *rootDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: ".", Err: errors.New("is a directory")}
}

func (d *rootDir) Close() error {
	return nil
}

func (d *rootDir) ReadDir(n int) ([]fs.DirEntry, error) {
	left := d.entries[d.pos:]
	if n <= 0 {
		d.pos = len(d.entries)
		return left, nil
	}
	if len(left) == 0 {
		return nil, io.EOF
	}
	if n > len(left) {
		n = len(left)
	}
	d.pos += n
	return left[:n], nil
}

type rootInfo struct{}

func (rootInfo) Name() string       { return "." }
func (rootInfo) Size() int64        { return 0 }
func (rootInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o755 }
func (rootInfo) ModTime() time.Time { return time.Time{} }
func (rootInfo) IsDir() bool        { return true }
func (rootInfo) Sys() any           { return nil }

// FS converts a mounted volume to a fs.FS for compatibility with other utilities
func FS(f filesystem.FileSystem) fs.ReadDirFS {
	return &fsCompatible{f}
}
