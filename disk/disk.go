// Package disk provides the block store an ECS150FS volume lives on: a disk image or block
// device addressed in fixed-size blocks.
//
// A Disk does not know anything about the filesystem on it; see
// github.com/ecsfs/go-ecsfs/filesystem/ecs150 for that.
package disk

import (
	"errors"
	"fmt"

	"github.com/ecsfs/go-ecsfs/backend"
	"github.com/ecsfs/go-ecsfs/backend/file"
	"github.com/ecsfs/go-ecsfs/disk/formats"
)

// BlockSize is the size of every block on the device, in bytes
const BlockSize = 4096

// Disk is a reference to a single disk image or block device that has been Create()d or Open()ed
type Disk struct {
	Backend backend.Storage
	Type    DeviceType
	Size    int64
	// Format is the container the image was read from; anything but formats.Raw is held in memory
	Format   formats.Format
	writable backend.WritableFile
	blocks   int
}

// Open a Disk from a path to an image file or block device.
// The provided device must exist at the time you call Open()
func Open(device string, readOnly bool) (*Disk, error) {
	b, err := file.OpenFromPath(device, readOnly)
	if err != nil {
		return nil, err
	}
	d, err := OpenBackend(b)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return d, nil
}

// Create a zero-filled disk image of the given number of blocks.
// The provided path must not exist at the time you call Create()
func Create(device string, blocks int) (*Disk, error) {
	if blocks <= 0 {
		return nil, fmt.Errorf("must pass a positive block count, got %d", blocks)
	}
	b, err := file.CreateFromPath(device, int64(blocks)*BlockSize)
	if err != nil {
		return nil, err
	}
	d, err := OpenBackend(b)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return d, nil
}

// OpenBackend creates a Disk on top of any backend.Storage.
// If the storage cannot be written to, the Disk is read-only.
func OpenBackend(b backend.Storage) (*Disk, error) {
	if b == nil {
		return nil, errors.New("must pass a backend storage")
	}
	d := &Disk{
		Backend: b,
		Format:  formats.Raw,
	}

	if sizer, ok := b.(backend.Sizer); ok {
		d.Type = DeviceTypeFile
		d.Size = sizer.Size()
	} else {
		devType, err := DetermineDeviceType(b)
		if err != nil {
			return nil, err
		}
		d.Type = devType
		switch devType {
		case DeviceTypeBlockDevice:
			osFile, err := b.Sys()
			if err != nil {
				return nil, fmt.Errorf("unable to get file handle for block device: %w", err)
			}
			d.Size, err = getDeviceSize(osFile)
			if err != nil {
				return nil, fmt.Errorf("unable to get size of block device: %w", err)
			}
		default:
			info, err := b.Stat()
			if err != nil {
				return nil, fmt.Errorf("could not stat disk image: %w", err)
			}
			d.Size = info.Size()
		}
	}

	if d.Size <= 0 || d.Size%BlockSize != 0 {
		return nil, NewInvalidSizeError(d.Size)
	}
	d.blocks = int(d.Size / BlockSize)

	w, err := b.Writable()
	switch {
	case err == nil:
		d.writable = w
	case errors.Is(err, backend.ErrIncorrectOpenMode), errors.Is(err, backend.ErrNotSuitable):
		// read-only
	default:
		return nil, err
	}
	return d, nil
}

// BlockCount the number of blocks on the device
func (d *Disk) BlockCount() int {
	return d.blocks
}

// ReadOnly reports whether writes to this disk will be refused
func (d *Disk) ReadOnly() bool {
	return d.writable == nil
}

// ReadBlock reads block number index into b, which must be exactly BlockSize long
func (d *Disk) ReadBlock(index int, b []byte) error {
	if err := d.checkBlock(index, b); err != nil {
		return err
	}
	n, err := d.Backend.ReadAt(b, int64(index)*BlockSize)
	// a full block with io.EOF is still a full block
	if n == BlockSize {
		return nil
	}
	return NewIncompleteTransferError(index, n, err)
}

// WriteBlock writes b, which must be exactly BlockSize long, to block number index
func (d *Disk) WriteBlock(index int, b []byte) error {
	if d.writable == nil {
		return backend.ErrIncorrectOpenMode
	}
	if err := d.checkBlock(index, b); err != nil {
		return err
	}
	n, err := d.writable.WriteAt(b, int64(index)*BlockSize)
	if err != nil || n != BlockSize {
		return NewIncompleteTransferError(index, n, err)
	}
	return nil
}

// Close the underlying storage
func (d *Disk) Close() error {
	return d.Backend.Close()
}

func (d *Disk) checkBlock(index int, b []byte) error {
	if index < 0 || index >= d.blocks {
		return NewBlockOutOfRangeError(index, d.blocks)
	}
	if len(b) != BlockSize {
		return NewBufferSizeError(len(b))
	}
	return nil
}
