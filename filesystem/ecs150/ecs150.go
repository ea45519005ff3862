// Package ecs150 implements the ECS150FS filesystem: a single flat root directory of at most 128 files
// whose data blocks are chained through a 16-bit File Allocation Table.
//
// On-disk layout, every structure one or more 4096-byte blocks:
//
//	block 0            superblock: "ECS150FS", geometry
//	blocks 1..F        FAT, 2048 little-endian uint16 entries per block, entry 0 reserved
//	block F+1          root directory, 128 entries of 32 bytes
//	blocks F+2..       data region, data block i at device block F+2+i
//
// A FileSystem is a mount session. The FAT and root directory are held in memory while mounted
// and written back on Unmount, only if they changed. A session is not safe for concurrent use.
package ecs150

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ecsfs/go-ecsfs/disk"
	"github.com/ecsfs/go-ecsfs/filesystem"
)

// FileSystem a mount session on one ECS150FS volume. The zero value is unmounted and ready for Mount.
type FileSystem struct {
	disk    *disk.Disk
	sb      *superblock
	table   *table
	root    *directory
	files   descriptorTable
	mounted bool
	id      uuid.UUID
	log     *log.Entry
}

// Info geometry and usage of a mounted volume
type Info struct {
	TotalBlocks    int
	FATBlocks      int
	RootDirBlock   int
	DataStartBlock int
	DataBlocks     int
	FATFree        int
	RootDirFree    int
	RootDirEntries int
}

func (i *Info) String() string {
	return fmt.Sprintf("FS Info:\n"+
		"total_blk_count=%d\n"+
		"fat_blk_count=%d\n"+
		"rdir_blk=%d\n"+
		"data_blk=%d\n"+
		"data_blk_count=%d\n"+
		"fat_free_ratio=%d/%d\n"+
		"rdir_free_ratio=%d/%d\n",
		i.TotalBlocks, i.FATBlocks, i.RootDirBlock, i.DataStartBlock, i.DataBlocks,
		i.FATFree, i.DataBlocks, i.RootDirFree, i.RootDirEntries)
}

// filesystem.FileSystem interface guard
var _ filesystem.FileSystem = (*FileSystem)(nil)

// Mount opens the image or device at path and mounts the volume on it.
// Compressed images are mounted read-only.
func (fs *FileSystem) Mount(path string) error {
	if fs.mounted {
		return ErrAlreadyMounted
	}
	d, err := disk.OpenImage(path, false)
	var sizeErr *disk.InvalidSizeError
	switch {
	case errors.As(err, &sizeErr):
		return fmt.Errorf("%w: %s: %w", ErrInvalidFormat, path, err)
	case err != nil:
		return ioError(err, "opening %s", path)
	}
	if err := fs.MountDisk(d); err != nil {
		_ = d.Close()
		return err
	}
	fs.log = fs.log.WithField("image", path)
	return nil
}

// MountDisk mounts the volume on an already open disk. The session takes ownership of d
// and closes it on Unmount.
func (fs *FileSystem) MountDisk(d *disk.Disk) error {
	if fs.mounted {
		return ErrAlreadyMounted
	}
	b := make([]byte, BlockSize)
	if err := d.ReadBlock(0, b); err != nil {
		return ioError(err, "reading superblock")
	}
	sb, err := superblockFromBytes(b)
	if err != nil {
		return err
	}
	if err := sb.validate(d.BlockCount()); err != nil {
		return err
	}
	t, err := readTable(d, sb)
	if err != nil {
		return err
	}
	root, err := readDirectory(d, sb)
	if err != nil {
		return err
	}

	fs.id = uuid.New()
	fs.log = log.WithFields(log.Fields{
		"session": fs.id.String(),
		"format":  d.Format.String(),
	})
	fs.disk, fs.sb, fs.table, fs.root = d, sb, t, root
	fs.files = descriptorTable{}
	fs.mounted = true
	fs.log.WithFields(log.Fields{
		"blocks":      sb.totalBlocks,
		"fat_blocks":  sb.fatBlocks,
		"data_blocks": sb.dataBlocks,
		"read_only":   d.ReadOnly(),
	}).Debug("mounted volume")
	return nil
}

// Unmount writes back the FAT and root directory if they changed and closes the disk.
// Descriptors still open are discarded once everything is written back. If a write back fails
// the volume stays mounted with its descriptors intact.
func (fs *FileSystem) Unmount() error {
	if !fs.mounted {
		return ErrNotMounted
	}
	if wrote, err := fs.table.flush(fs.disk); err != nil {
		return err
	} else if wrote {
		fs.log.Debug("wrote FAT")
	}
	if wrote, err := fs.root.flush(fs.disk, fs.sb); err != nil {
		return err
	} else if wrote {
		fs.log.Debug("wrote root directory")
	}
	if n := fs.files.reset(); n > 0 {
		fs.log.Warnf("unmounting with %d open files", n)
	}
	err := fs.disk.Close()
	fs.log.Debug("unmounted volume")
	*fs = FileSystem{}
	if err != nil {
		return ioError(err, "closing disk")
	}
	return nil
}

// Mounted reports whether the session holds a mounted volume
func (fs *FileSystem) Mounted() bool {
	return fs.mounted
}

// Type returns the type of filesystem
func (fs *FileSystem) Type() filesystem.Type {
	return filesystem.TypeECS150
}

// Info reports geometry and free space
func (fs *FileSystem) Info() (*Info, error) {
	if !fs.mounted {
		return nil, ErrNotMounted
	}
	return &Info{
		TotalBlocks:    int(fs.sb.totalBlocks),
		FATBlocks:      int(fs.sb.fatBlocks),
		RootDirBlock:   int(fs.sb.rootDirBlock),
		DataStartBlock: int(fs.sb.dataStart),
		DataBlocks:     int(fs.sb.dataBlocks),
		FATFree:        fs.table.freeCount(),
		RootDirFree:    fs.root.freeCount(),
		RootDirEntries: len(fs.root.entries),
	}, nil
}

func (fs *FileSystem) writable() error {
	if !fs.mounted {
		return ErrNotMounted
	}
	if fs.disk.ReadOnly() {
		return filesystem.ErrReadonlyFilesystem
	}
	return nil
}

// Create makes an empty file
func (fs *FileSystem) Create(name string) error {
	if err := fs.writable(); err != nil {
		return err
	}
	slot, err := fs.root.create(name)
	if err != nil {
		return err
	}
	fs.log.WithField("file", name).Debugf("created in slot %d", slot)
	return nil
}

// Delete removes a file and returns its data blocks to the FAT.
// A file with an open descriptor cannot be deleted.
func (fs *FileSystem) Delete(name string) error {
	if err := fs.writable(); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}
	slot, err := fs.root.find(name)
	if err != nil {
		return err
	}
	if fs.files.referencing(slot) {
		return fmt.Errorf("%w: %s", ErrFileBusy, name)
	}
	freed, err := fs.table.release(fs.root.entries[slot].first)
	if err != nil {
		return fmt.Errorf("unable to free blocks of %s: %w", name, err)
	}
	fs.root.remove(slot)
	fs.log.WithField("file", name).Debugf("deleted, %d blocks freed", freed)
	return nil
}

// Remove is Delete, for the filesystem.FileSystem interface
func (fs *FileSystem) Remove(name string) error {
	return fs.Delete(name)
}

// List every file in directory order
func (fs *FileSystem) List() ([]*DirEntry, error) {
	if !fs.mounted {
		return nil, ErrNotMounted
	}
	var list []*DirEntry
	for i := range fs.root.entries {
		if !fs.root.entries[i].free() {
			list = append(list, newDirEntry(&fs.root.entries[i]))
		}
	}
	return list, nil
}

// ReadDir is List as os.FileInfo
func (fs *FileSystem) ReadDir() ([]os.FileInfo, error) {
	list, err := fs.List()
	if err != nil {
		return nil, err
	}
	infos := make([]os.FileInfo, len(list))
	for i, de := range list {
		infos[i] = de
	}
	return infos, nil
}

// Open returns a descriptor positioned at the start of the file
func (fs *FileSystem) Open(name string) (int, error) {
	if !fs.mounted {
		return -1, ErrNotMounted
	}
	if err := validateName(name); err != nil {
		return -1, err
	}
	slot, err := fs.root.find(name)
	if err != nil {
		return -1, err
	}
	return fs.files.add(slot, fs.root.entries[slot].first)
}

// Close releases a descriptor
func (fs *FileSystem) Close(fd int) error {
	if !fs.mounted {
		return ErrNotMounted
	}
	return fs.files.remove(fd)
}

// Stat the size in bytes of the file open on fd
func (fs *FileSystem) Stat(fd int) (uint32, error) {
	if !fs.mounted {
		return 0, ErrNotMounted
	}
	d, err := fs.files.get(fd)
	if err != nil {
		return 0, err
	}
	return fs.root.entries[d.entry].fileSize, nil
}

// Seek moves the cursor of fd to offset, which may be at most the file size
func (fs *FileSystem) Seek(fd int, offset uint32) error {
	if !fs.mounted {
		return ErrNotMounted
	}
	d, err := fs.files.get(fd)
	if err != nil {
		return err
	}
	entry := &fs.root.entries[d.entry]
	if offset > entry.fileSize {
		return fmt.Errorf("%w: %d is past the end of %s at %d", ErrOffsetOutOfRange, offset, entry.filename, entry.fileSize)
	}
	at, _, err := fs.locate(entry, offset)
	if err != nil {
		return err
	}
	d.offset, d.block = offset, at
	return nil
}

// Read fills b from the cursor of fd and advances it. Fewer than len(b) bytes, possibly none,
// are read when the end of the file is reached; that is not an error.
func (fs *FileSystem) Read(fd int, b []byte) (int, error) {
	if !fs.mounted {
		return 0, ErrNotMounted
	}
	d, err := fs.files.get(fd)
	if err != nil {
		return 0, err
	}
	return fs.read(d, b)
}

// Write stores b at the cursor of fd, growing the file as needed, and advances the cursor.
// Fewer than len(b) bytes are written when the volume runs out of data blocks; that is not an error.
func (fs *FileSystem) Write(fd int, b []byte) (int, error) {
	if err := fs.writable(); err != nil {
		return 0, err
	}
	d, err := fs.files.get(fd)
	if err != nil {
		return 0, err
	}
	return fs.write(d, b)
}
