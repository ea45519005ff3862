package ecs150

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/ecsfs/go-ecsfs/disk"
)

// blockPtr a data block index, or no block at all. Replaces the on-disk 0xFFFF
// end-of-chain marker everywhere above the codecs.
type blockPtr struct {
	index uint16
	valid bool
}

var noBlock = blockPtr{}

func blockAt(index uint16) blockPtr {
	return blockPtr{index: index, valid: true}
}

func ptrFromDisk(v uint16) blockPtr {
	if v == fatEOC {
		return noBlock
	}
	return blockAt(v)
}

func (p blockPtr) toDisk() uint16 {
	if !p.valid {
		return fatEOC
	}
	return p.index
}

// table the in-memory FAT, one entry per data block.
// Entry 0 is reserved; entries at or past dataBlocks have no block behind them and are never handed out.
type table struct {
	entries    []uint16
	dataBlocks uint16
	dirty      bool
}

func (t *table) equal(a *table) bool {
	if (t == nil && a != nil) || (t != nil && a == nil) {
		return false
	}
	if t == nil && a == nil {
		return true
	}
	return t.dataBlocks == a.dataBlocks && slices.Equal(t.entries, a.entries)
}

func tableFromBytes(b []byte, dataBlocks uint16) *table {
	t := table{
		entries:    make([]uint16, len(b)/2),
		dataBlocks: dataBlocks,
	}
	for i := range t.entries {
		t.entries[i] = binary.LittleEndian.Uint16(b[i*2 : i*2+2])
	}
	return &t
}

// bytes returns the FAT as bytes ready to be written to disk
func (t *table) bytes() []byte {
	b := make([]byte, len(t.entries)*2)
	for i, v := range t.entries {
		binary.LittleEndian.PutUint16(b[i*2:i*2+2], v)
	}
	return b
}

// readTable loads every FAT block, which start right after the superblock
func readTable(d *disk.Disk, sb *superblock) (*table, error) {
	b := make([]byte, int(sb.fatBlocks)*BlockSize)
	for i := 0; i < int(sb.fatBlocks); i++ {
		if err := d.ReadBlock(1+i, b[i*BlockSize:(i+1)*BlockSize]); err != nil {
			return nil, ioError(err, "reading FAT block %d", i)
		}
	}
	return tableFromBytes(b, sb.dataBlocks), nil
}

// flush writes the FAT back if it changed since it was loaded
func (t *table) flush(d *disk.Disk) (bool, error) {
	if !t.dirty {
		return false, nil
	}
	b := t.bytes()
	for i := 0; i*BlockSize < len(b); i++ {
		if err := d.WriteBlock(1+i, b[i*BlockSize:(i+1)*BlockSize]); err != nil {
			return false, ioError(err, "writing FAT block %d", i)
		}
	}
	t.dirty = false
	return true, nil
}

// limit one past the highest entry that maps a real data block
func (t *table) limit() int {
	if int(t.dataBlocks) < len(t.entries) {
		return int(t.dataBlocks)
	}
	return len(t.entries)
}

func (t *table) freeCount() int {
	count := 0
	for i := 1; i < t.limit(); i++ {
		if t.entries[i] == fatFree {
			count++
		}
	}
	return count
}

// allocate finds the first free entry. It does not mark the entry: the caller links it.
func (t *table) allocate() (uint16, error) {
	for i := 1; i < t.limit(); i++ {
		if t.entries[i] == fatFree {
			return uint16(i), nil
		}
	}
	return 0, ErrNoSpace
}

// follow returns the raw entry at index
func (t *table) follow(index uint16) (uint16, error) {
	if int(index) >= len(t.entries) {
		return 0, fmt.Errorf("%w: FAT index %d beyond table of %d entries", ErrInvalidHandle, index, len(t.entries))
	}
	return t.entries[index], nil
}

// next the block after index in its chain
func (t *table) next(index uint16) (blockPtr, error) {
	if index == 0 || int(index) >= t.limit() {
		return noBlock, fmt.Errorf("%w: block %d is not a data block", ErrInvalidHandle, index)
	}
	v := t.entries[index]
	switch {
	case v == fatEOC:
		return noBlock, nil
	case v == fatFree || int(v) >= t.limit():
		return noBlock, fmt.Errorf("%w: broken chain, block %d links to %d", ErrInvalidFormat, index, v)
	}
	return blockAt(v), nil
}

// link sets entry from to to
func (t *table) link(from, to uint16) error {
	if from == 0 || int(from) >= t.limit() {
		return fmt.Errorf("%w: cannot link from block %d", ErrInvalidHandle, from)
	}
	t.entries[from] = to
	t.dirty = true
	return nil
}

// terminate marks index as the last block of its chain
func (t *table) terminate(index uint16) error {
	return t.link(index, fatEOC)
}

// chain every block of the chain starting at start, in order
func (t *table) chain(start blockPtr) ([]uint16, error) {
	var blocks []uint16
	for p := start; p.valid; {
		if len(blocks) >= t.limit() {
			return nil, fmt.Errorf("%w: chain starting at %d loops", ErrInvalidFormat, start.index)
		}
		blocks = append(blocks, p.index)
		var err error
		if p, err = t.next(p.index); err != nil {
			return nil, err
		}
	}
	return blocks, nil
}

// release frees every block of the chain starting at start and returns how many were freed
func (t *table) release(start blockPtr) (int, error) {
	blocks, err := t.chain(start)
	if err != nil {
		return 0, err
	}
	for _, b := range blocks {
		t.entries[b] = fatFree
	}
	if len(blocks) > 0 {
		t.dirty = true
	}
	return len(blocks), nil
}
