package ecs150

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/ecsfs/go-ecsfs/disk"
)

// directoryEntry one slot of the root directory. An empty filename marks a free slot.
type directoryEntry struct {
	filename string
	fileSize uint32
	first    blockPtr
	// reserved bytes 22:32 of a used slot, written back as they were read
	reserved [dirEntrySize - 22]byte
	// leftover of a free slot that is not all zero, written back as it was read
	leftover []byte
}

func (de *directoryEntry) free() bool {
	return de.filename == ""
}

/*
on-disk entry, 32 bytes:
	0:16  filename, NUL terminated
	16:20 size in bytes
	20:22 first data block, 0xFFFF for none
	22:32 reserved
*/
func directoryEntryFromBytes(b []byte) (directoryEntry, error) {
	name := b[0:FilenameLen]
	if name[0] == 0 {
		if allZero(b) {
			return directoryEntry{}, nil
		}
		return directoryEntry{leftover: bytes.Clone(b[:dirEntrySize])}, nil
	}
	i := bytes.IndexByte(name, 0)
	if i < 0 {
		return directoryEntry{}, fmt.Errorf("%w: filename %q is not NUL terminated", ErrInvalidFormat, name)
	}
	de := directoryEntry{
		filename: string(name[:i]),
		fileSize: binary.LittleEndian.Uint32(b[16:20]),
		first:    ptrFromDisk(binary.LittleEndian.Uint16(b[20:22])),
	}
	copy(de.reserved[:], b[22:dirEntrySize])
	return de, nil
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

func (de *directoryEntry) toBytes() []byte {
	b := make([]byte, dirEntrySize)
	if de.free() {
		copy(b, de.leftover)
		return b
	}
	copy(b[0:MaxFilenameLen], de.filename)
	binary.LittleEndian.PutUint32(b[16:20], de.fileSize)
	binary.LittleEndian.PutUint16(b[20:22], de.first.toDisk())
	copy(b[22:], de.reserved[:])
	return b
}

// directory the root directory: a fixed number of slots in a single block
type directory struct {
	entries []directoryEntry
	dirty   bool
}

func directoryFromBytes(b []byte) (*directory, error) {
	d := directory{entries: make([]directoryEntry, MaxFiles)}
	for i := range d.entries {
		de, err := directoryEntryFromBytes(b[i*dirEntrySize : (i+1)*dirEntrySize])
		if err != nil {
			return nil, fmt.Errorf("root directory entry %d: %w", i, err)
		}
		d.entries[i] = de
	}
	return &d, nil
}

func (d *directory) bytes() []byte {
	b := make([]byte, 0, BlockSize)
	for i := range d.entries {
		b = append(b, d.entries[i].toBytes()...)
	}
	return b
}

func readDirectory(dev *disk.Disk, sb *superblock) (*directory, error) {
	b := make([]byte, BlockSize)
	if err := dev.ReadBlock(int(sb.rootDirBlock), b); err != nil {
		return nil, ioError(err, "reading root directory block %d", sb.rootDirBlock)
	}
	return directoryFromBytes(b)
}

// flush writes the root directory back if it changed since it was loaded
func (d *directory) flush(dev *disk.Disk, sb *superblock) (bool, error) {
	if !d.dirty {
		return false, nil
	}
	if err := dev.WriteBlock(int(sb.rootDirBlock), d.bytes()); err != nil {
		return false, ioError(err, "writing root directory block %d", sb.rootDirBlock)
	}
	d.dirty = false
	return true, nil
}

// validateName a name must fit the filename field with its terminator
func validateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty filename", ErrInvalidName)
	case len(name) > MaxFilenameLen:
		return fmt.Errorf("%w: %q is longer than %d bytes", ErrInvalidName, name, MaxFilenameLen)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidName, name)
	case strings.ContainsRune(name, '/'):
		return fmt.Errorf("%w: %q contains a slash", ErrInvalidName, name)
	}
	return nil
}

func (d *directory) find(name string) (int, error) {
	for i := range d.entries {
		if !d.entries[i].free() && d.entries[i].filename == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// firstFree finds the slot a new file called name would go in, refusing duplicates in the same pass
func (d *directory) firstFree(name string) (int, error) {
	slot := -1
	for i := range d.entries {
		switch {
		case d.entries[i].free():
			if slot < 0 {
				slot = i
			}
		case d.entries[i].filename == name:
			return -1, fmt.Errorf("%w: %s", ErrNameExists, name)
		}
	}
	if slot < 0 {
		return -1, fmt.Errorf("%w: %d files", ErrDirectoryFull, len(d.entries))
	}
	return slot, nil
}

// create an empty file with no data blocks
func (d *directory) create(name string) (int, error) {
	if err := validateName(name); err != nil {
		return -1, err
	}
	slot, err := d.firstFree(name)
	if err != nil {
		return -1, err
	}
	d.entries[slot] = directoryEntry{filename: name, first: noBlock}
	d.dirty = true
	return slot, nil
}

// remove frees the slot at index and returns what was in it
func (d *directory) remove(index int) directoryEntry {
	old := d.entries[index]
	d.entries[index] = directoryEntry{}
	d.dirty = true
	return old
}

func (d *directory) freeCount() int {
	count := 0
	for i := range d.entries {
		if d.entries[i].free() {
			count++
		}
	}
	return count
}
