package ecs150

import (
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"
)

// superblockLayout is the exact on-disk shape of block 0
type superblockLayout struct {
	Signature    [8]byte
	TotalBlocks  uint16
	RootDirBlock uint16
	DataStart    uint16
	DataBlocks   uint16
	FATBlocks    uint8
	Padding      [BlockSize - 17]byte
}

// superblock volume geometry, read once at mount and never rewritten
type superblock struct {
	totalBlocks  uint16
	rootDirBlock uint16
	dataStart    uint16
	dataBlocks   uint16
	fatBlocks    uint8
}

func superblockFromBytes(b []byte) (*superblock, error) {
	if len(b) != BlockSize {
		return nil, fmt.Errorf("%w: superblock must be %d bytes, got %d", ErrInvalidFormat, BlockSize, len(b))
	}
	var l superblockLayout
	if err := restruct.Unpack(b, binary.LittleEndian, &l); err != nil {
		return nil, fmt.Errorf("%w: unable to parse superblock: %v", ErrInvalidFormat, err)
	}
	if string(l.Signature[:]) != Signature {
		return nil, fmt.Errorf("%w: bad signature %q", ErrInvalidFormat, l.Signature[:])
	}
	return &superblock{
		totalBlocks:  l.TotalBlocks,
		rootDirBlock: l.RootDirBlock,
		dataStart:    l.DataStart,
		dataBlocks:   l.DataBlocks,
		fatBlocks:    l.FATBlocks,
	}, nil
}

func (sb *superblock) toBytes() ([]byte, error) {
	l := superblockLayout{
		TotalBlocks:  sb.totalBlocks,
		RootDirBlock: sb.rootDirBlock,
		DataStart:    sb.dataStart,
		DataBlocks:   sb.dataBlocks,
		FATBlocks:    sb.fatBlocks,
	}
	copy(l.Signature[:], Signature)
	b, err := restruct.Pack(binary.LittleEndian, &l)
	if err != nil {
		return nil, fmt.Errorf("unable to pack superblock: %v", err)
	}
	if len(b) != BlockSize {
		return nil, fmt.Errorf("packed superblock is %d bytes instead of %d", len(b), BlockSize)
	}
	return b, nil
}

// validate checks the geometry against itself and against the device it was read from
func (sb *superblock) validate(deviceBlocks int) error {
	switch {
	case int(sb.totalBlocks) != deviceBlocks:
		return fmt.Errorf("%w: superblock records %d blocks, device has %d", ErrInvalidFormat, sb.totalBlocks, deviceBlocks)
	case sb.fatBlocks == 0:
		return fmt.Errorf("%w: no FAT blocks", ErrInvalidFormat)
	case sb.rootDirBlock != uint16(sb.fatBlocks)+1:
		return fmt.Errorf("%w: root directory at block %d, expected %d", ErrInvalidFormat, sb.rootDirBlock, uint16(sb.fatBlocks)+1)
	case sb.dataStart != sb.rootDirBlock+1:
		return fmt.Errorf("%w: data region at block %d, expected %d", ErrInvalidFormat, sb.dataStart, sb.rootDirBlock+1)
	case int(sb.dataStart)+int(sb.dataBlocks) != int(sb.totalBlocks):
		return fmt.Errorf("%w: data region of %d blocks at %d does not end at block %d", ErrInvalidFormat, sb.dataBlocks, sb.dataStart, sb.totalBlocks)
	case int(sb.dataBlocks) > sb.fatEntries():
		return fmt.Errorf("%w: %d FAT blocks cannot map %d data blocks", ErrInvalidFormat, sb.fatBlocks, sb.dataBlocks)
	}
	return nil
}

// fatEntries number of 16-bit entries the FAT blocks hold
func (sb *superblock) fatEntries() int {
	return int(sb.fatBlocks) * entriesPerBlock
}

// geometryFor lays out a volume of totalBlocks blocks with as many data blocks as will fit
func geometryFor(totalBlocks int) (*superblock, error) {
	if totalBlocks < 4 || totalBlocks > 0xFFFF {
		return nil, fmt.Errorf("cannot lay out a volume of %d blocks", totalBlocks)
	}
	fat := 1
	for (totalBlocks - 2 - fat) > fat*entriesPerBlock {
		fat++
	}
	data := totalBlocks - 2 - fat
	if data > MaxDataBlocks {
		return nil, fmt.Errorf("volume of %d blocks would have %d data blocks, more than the maximum %d", totalBlocks, data, MaxDataBlocks)
	}
	return &superblock{
		totalBlocks:  uint16(totalBlocks),
		fatBlocks:    uint8(fat),
		rootDirBlock: uint16(fat + 1),
		dataStart:    uint16(fat + 2),
		dataBlocks:   uint16(data),
	}, nil
}

// BlocksFor the size in blocks of a volume with dataBlocks data blocks
func BlocksFor(dataBlocks int) int {
	fat := (dataBlocks + entriesPerBlock - 1) / entriesPerBlock
	if fat == 0 {
		fat = 1
	}
	return dataBlocks + fat + 2
}
