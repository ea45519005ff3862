package ecs150

import "github.com/ecsfs/go-ecsfs/disk"

const (
	// BlockSize every structure and data block on the volume is one block of this size
	BlockSize = disk.BlockSize
	// Signature the magic at the start of the superblock
	Signature = "ECS150FS"
	// MaxFiles number of entries in the root directory
	MaxFiles = 128
	// MaxOpenFiles number of descriptors that can be open at once on a volume
	MaxOpenFiles = 32
	// FilenameLen size of the on-disk filename field, including the terminating NUL
	FilenameLen = 16
	// MaxFilenameLen longest accepted filename
	MaxFilenameLen = FilenameLen - 1
	// MaxDataBlocks largest data region Format will lay out
	MaxDataBlocks = 8192

	fatEOC          uint16 = 0xFFFF
	fatFree         uint16 = 0
	entriesPerBlock        = BlockSize / 2
	dirEntrySize           = 32
)
