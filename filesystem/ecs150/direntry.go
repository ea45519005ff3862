package ecs150

import (
	"fmt"
	iofs "io/fs"
	"time"
)

// DirEntry a file listed in the root directory. It implements os.FileInfo.
type DirEntry struct {
	name  string
	size  uint32
	first blockPtr
}

func newDirEntry(de *directoryEntry) *DirEntry {
	return &DirEntry{name: de.filename, size: de.fileSize, first: de.first}
}

func (de *DirEntry) Name() string {
	return de.name
}

func (de *DirEntry) Size() int64 {
	return int64(de.size)
}

// FirstBlock the data block the file starts at; false for a file with no data blocks
func (de *DirEntry) FirstBlock() (uint16, bool) {
	return de.first.index, de.first.valid
}

func (de *DirEntry) Mode() iofs.FileMode {
	return 0o644
}

// ModTime there are no timestamps on the volume
func (de *DirEntry) ModTime() time.Time {
	return time.Time{}
}

func (de *DirEntry) IsDir() bool {
	return false
}

func (de *DirEntry) Sys() any {
	return nil
}

func (de *DirEntry) String() string {
	return fmt.Sprintf("file: %s, size: %d, data_blk: %d", de.name, de.size, de.first.toDisk())
}
