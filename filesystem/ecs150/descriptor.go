package ecs150

import "fmt"

// descriptor the state of one open file
type descriptor struct {
	// entry index of the file in the root directory
	entry int
	// offset cursor in bytes, never past the file size
	offset uint32
	// block the data block holding offset; none when offset is at the end of the chain
	block blockPtr
}

// descriptorTable fixed set of descriptor slots; a nil slot is free
type descriptorTable struct {
	slots [MaxOpenFiles]*descriptor
}

func (dt *descriptorTable) add(entry int, first blockPtr) (int, error) {
	for fd, d := range dt.slots {
		if d == nil {
			dt.slots[fd] = &descriptor{entry: entry, block: first}
			return fd, nil
		}
	}
	return -1, fmt.Errorf("%w: limit is %d", ErrTooManyOpen, MaxOpenFiles)
}

func (dt *descriptorTable) get(fd int) (*descriptor, error) {
	if fd < 0 || fd >= len(dt.slots) {
		return nil, fmt.Errorf("%w: descriptor %d out of range", ErrInvalidHandle, fd)
	}
	if dt.slots[fd] == nil {
		return nil, fmt.Errorf("%w: descriptor %d is not open", ErrInvalidHandle, fd)
	}
	return dt.slots[fd], nil
}

func (dt *descriptorTable) remove(fd int) error {
	if _, err := dt.get(fd); err != nil {
		return err
	}
	dt.slots[fd] = nil
	return nil
}

// referencing reports whether any open descriptor points at root directory entry
func (dt *descriptorTable) referencing(entry int) bool {
	for _, d := range dt.slots {
		if d != nil && d.entry == entry {
			return true
		}
	}
	return false
}

// reset closes everything and returns how many descriptors were open
func (dt *descriptorTable) reset() int {
	count := 0
	for fd, d := range dt.slots {
		if d != nil {
			count++
			dt.slots[fd] = nil
		}
	}
	return count
}
