package ecs150

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ecsfs/go-ecsfs/disk"
	"github.com/ecsfs/go-ecsfs/filesystem"
)

// Format lays out an empty volume across the whole of d, with as many data blocks as fit.
// Any existing content of the superblock, FAT and root directory is overwritten.
func Format(d *disk.Disk) error {
	if d.ReadOnly() {
		return filesystem.ErrReadonlyFilesystem
	}
	sb, err := geometryFor(d.BlockCount())
	if err != nil {
		return err
	}
	b, err := sb.toBytes()
	if err != nil {
		return err
	}
	if err := d.WriteBlock(0, b); err != nil {
		return ioError(err, "writing superblock")
	}

	t := &table{
		entries:    make([]uint16, sb.fatEntries()),
		dataBlocks: sb.dataBlocks,
		dirty:      true,
	}
	// entry 0 is never a real block
	t.entries[0] = fatEOC
	if _, err := t.flush(d); err != nil {
		return err
	}

	root := &directory{entries: make([]directoryEntry, MaxFiles), dirty: true}
	if _, err := root.flush(d, sb); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"blocks":      sb.totalBlocks,
		"fat_blocks":  sb.fatBlocks,
		"data_blocks": sb.dataBlocks,
	}).Debug("formatted volume")
	return nil
}

// CreateImage creates a new image file at path holding a freshly formatted volume of dataBlocks data blocks
func CreateImage(path string, dataBlocks int) error {
	if dataBlocks < 1 || dataBlocks > MaxDataBlocks {
		return fmt.Errorf("data block count must be between 1 and %d, got %d", MaxDataBlocks, dataBlocks)
	}
	d, err := disk.Create(path, BlocksFor(dataBlocks))
	if err != nil {
		return err
	}
	if err := Format(d); err != nil {
		_ = d.Close()
		return err
	}
	return d.Close()
}
