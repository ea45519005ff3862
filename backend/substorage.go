package backend

import (
	"fmt"
	"io"
	"io/fs"
	"os"
)

// SubStorage exposes a window of size bytes starting at offset of the underlying storage,
// so a volume can live inside a larger image
type SubStorage struct {
	underlying Storage
	offset     int64
	size       int64
	pos        int64
}

// Sub returns a Storage covering [offset, offset+size) of u
func Sub(u Storage, offset, size int64) *SubStorage {
	return &SubStorage{
		underlying: u,
		offset:     offset,
		size:       size,
	}
}

// Size the length of the window
func (s *SubStorage) Size() int64 {
	return s.size
}

func (s *SubStorage) Stat() (fs.FileInfo, error) {
	return s.underlying.Stat()
}

func (s *SubStorage) Read(b []byte) (int, error) {
	n, err := s.ReadAt(b, s.pos)
	s.pos += int64(n)
	return n, err
}

func (s *SubStorage) Close() error {
	return s.underlying.Close()
}

func (s *SubStorage) ReadAt(p []byte, off int64) (int, error) {
	p, err := clip(p, off, s.size)
	if len(p) == 0 {
		return 0, err
	}
	n, rerr := s.underlying.ReadAt(p, s.offset+off)
	if rerr != nil {
		return n, rerr
	}
	return n, err
}

func (s *SubStorage) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = s.pos + offset
	case io.SeekEnd:
		pos = s.size + offset
	default:
		return -1, ErrNotSuitable
	}
	if pos < 0 {
		return -1, fmt.Errorf("cannot seek to negative position %d", pos)
	}
	s.pos = pos
	return pos, nil
}

func (s *SubStorage) Sys() (*os.File, error) {
	return s.underlying.Sys()
}

func (s *SubStorage) Writable() (WritableFile, error) {
	uw, err := s.underlying.Writable()
	if err != nil {
		return nil, err
	}
	return &subWritable{SubStorage: s, w: uw}, nil
}

type subWritable struct {
	*SubStorage
	w WritableFile
}

func (sw *subWritable) WriteAt(p []byte, off int64) (int, error) {
	p, err := clip(p, off, sw.size)
	if len(p) == 0 {
		return 0, err
	}
	n, werr := sw.w.WriteAt(p, sw.offset+off)
	if werr != nil {
		return n, werr
	}
	if err != nil {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// clip trims p so that it does not cross the end of a window of the given size
func clip(p []byte, off, size int64) ([]byte, error) {
	if off < 0 {
		return nil, fmt.Errorf("negative offset %d", off)
	}
	if off >= size {
		return nil, io.EOF
	}
	if remain := size - off; int64(len(p)) > remain {
		return p[:remain], io.EOF
	}
	return p, nil
}
