package filesystem

import (
	"io"
)

// File a reference to a single open file on a volume
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
	// Size the current length of the file in bytes
	Size() int64
}
