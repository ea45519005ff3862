package ecs150

import (
	"errors"
)

// dataBlock device block number of data block index
func (fs *FileSystem) dataBlock(index uint16) int {
	return int(fs.sb.dataStart) + int(index)
}

func (fs *FileSystem) readData(index uint16, b []byte) error {
	if err := fs.disk.ReadBlock(fs.dataBlock(index), b); err != nil {
		return ioError(err, "reading data block %d", index)
	}
	return nil
}

func (fs *FileSystem) writeData(index uint16, b []byte) error {
	if err := fs.disk.WriteBlock(fs.dataBlock(index), b); err != nil {
		return ioError(err, "writing data block %d", index)
	}
	return nil
}

// locate walks the chain of entry to the block holding offset.
// When offset is exactly the end of the chain, at is none and tail is the chain's last block.
func (fs *FileSystem) locate(entry *directoryEntry, offset uint32) (at, tail blockPtr, err error) {
	at = entry.first
	for i := uint32(0); i < offset/BlockSize && at.valid; i++ {
		tail = at
		if at, err = fs.table.next(at.index); err != nil {
			return noBlock, noBlock, err
		}
	}
	return at, tail, nil
}

// cursorAfter the cached block for a descriptor whose last transfer ended in block last at offset
func (fs *FileSystem) cursorAfter(last uint16, offset uint32) blockPtr {
	if offset%BlockSize != 0 {
		return blockAt(last)
	}
	next, err := fs.table.next(last)
	if err != nil {
		return noBlock
	}
	return next
}

// startBlock the block holding the descriptor's offset. The cached block can be stale when
// another descriptor grew the file after this one reached its end, so a missing block is looked up again.
func (fs *FileSystem) startBlock(d *descriptor) (at, tail blockPtr, err error) {
	if d.block.valid {
		return d.block, noBlock, nil
	}
	return fs.locate(&fs.root.entries[d.entry], d.offset)
}

func (fs *FileSystem) read(d *descriptor, b []byte) (int, error) {
	entry := &fs.root.entries[d.entry]
	if d.offset >= entry.fileSize || len(b) == 0 {
		return 0, nil
	}
	count := len(b)
	if left := int(entry.fileSize - d.offset); count > left {
		count = left
	}

	var (
		total int
		cur   blockPtr
		err   error
		buf   = make([]byte, BlockSize)
	)
	for _, s := range planSpans(d.offset, count) {
		if s.step == 0 {
			cur, _, err = fs.startBlock(d)
		} else {
			cur, err = fs.table.next(cur.index)
		}
		if err != nil || !cur.valid {
			// chain shorter than the file claims
			break
		}
		if err = fs.readData(cur.index, buf); err != nil {
			break
		}
		copy(b[s.bufOffset:s.bufOffset+s.length], buf[s.blockOffset:s.blockOffset+s.length])
		total += s.length
		d.offset += uint32(s.length)
		d.block = fs.cursorAfter(cur.index, d.offset)
	}
	return total, err
}

// nextWriteBlock the block after cur, extending the chain when cur is its last block.
// fresh is true for a newly allocated block.
func (fs *FileSystem) nextWriteBlock(cur uint16) (p blockPtr, fresh bool, err error) {
	if p, err = fs.table.next(cur); err != nil || p.valid {
		return p, false, err
	}
	n, err := fs.appendBlock(blockAt(cur), nil)
	return blockAt(n), true, err
}

// appendBlock allocates a block and links it after tail, or makes it the first block of entry
func (fs *FileSystem) appendBlock(tail blockPtr, entry *directoryEntry) (uint16, error) {
	n, err := fs.table.allocate()
	if err != nil {
		return 0, err
	}
	if err := fs.table.terminate(n); err != nil {
		return 0, err
	}
	if tail.valid {
		if err := fs.table.link(tail.index, n); err != nil {
			return 0, err
		}
	} else {
		entry.first = blockAt(n)
		fs.root.dirty = true
	}
	fs.log.Debugf("allocated data block %d", n)
	return n, nil
}

func (fs *FileSystem) write(d *descriptor, b []byte) (int, error) {
	entry := &fs.root.entries[d.entry]
	var (
		total int
		cur   blockPtr
		fresh bool
		err   error
		buf   = make([]byte, BlockSize)
	)
	for _, s := range planSpans(d.offset, len(b)) {
		if s.step == 0 {
			var tail blockPtr
			if cur, tail, err = fs.startBlock(d); err == nil && !cur.valid {
				var n uint16
				n, err = fs.appendBlock(tail, entry)
				cur, fresh = blockAt(n), true
			}
		} else {
			cur, fresh, err = fs.nextWriteBlock(cur.index)
		}
		if err != nil {
			break
		}

		chunk := b[s.bufOffset : s.bufOffset+s.length]
		switch {
		case s.length == BlockSize:
			copy(buf, chunk)
		case fresh:
			clear(buf)
			copy(buf[s.blockOffset:], chunk)
		default:
			if err = fs.readData(cur.index, buf); err != nil {
				break
			}
			copy(buf[s.blockOffset:], chunk)
		}
		if err != nil {
			break
		}
		if err = fs.writeData(cur.index, buf); err != nil {
			break
		}

		total += s.length
		d.offset += uint32(s.length)
		if d.offset > entry.fileSize {
			entry.fileSize = d.offset
			fs.root.dirty = true
		}
		d.block = fs.cursorAfter(cur.index, d.offset)
	}

	if errors.Is(err, ErrNoSpace) {
		fs.log.WithField("file", entry.filename).Debugf("volume full, wrote %d of %d bytes", total, len(b))
		return total, nil
	}
	return total, err
}
