// Package bitmap tracks a set of numbered locations, one bit each.
package bitmap

import "fmt"

// Bitmap is a structure holding a bitmap
type Bitmap struct {
	bits []byte
	size int
}

// Contiguous a position and count of contiguous bits, either free or set
type Contiguous struct {
	Position int
	Count    int
}

// NewBits creates a new bitmap that can address nBits entries.
// All bits are initially 0 (free).
func NewBits(nBits int) *Bitmap {
	if nBits < 0 {
		nBits = 0
	}
	return &Bitmap{
		bits: make([]byte, (nBits+7)/8),
		size: nBits,
	}
}

// Len the number of addressable bits
func (bm *Bitmap) Len() int {
	return bm.size
}

func (bm *Bitmap) check(location int) error {
	if location < 0 || location >= bm.size {
		return fmt.Errorf("location %d is not in %d size bitmap", location, bm.size)
	}
	return nil
}

// IsSet check if a specific bit location is set
func (bm *Bitmap) IsSet(location int) (bool, error) {
	if err := bm.check(location); err != nil {
		return false, err
	}
	mask := byte(0x1) << (location % 8)
	return bm.bits[location/8]&mask == mask, nil
}

// Set a specific bit location
func (bm *Bitmap) Set(location int) error {
	if err := bm.check(location); err != nil {
		return err
	}
	bm.bits[location/8] |= byte(0x1) << (location % 8)
	return nil
}

// Clear a specific bit location
func (bm *Bitmap) Clear(location int) error {
	if err := bm.check(location); err != nil {
		return err
	}
	bm.bits[location/8] &^= byte(0x1) << (location % 8)
	return nil
}

// FreeList returns the runs of contiguous free locations, sorted by location.
// For example, if the bitmap is 10010010 00100000, it will return
//
//	1: 2, // 2 free bits at position 1
//	4: 2, // 2 free bits at position 4
//	7: 3, // 3 free bits at position 7
//	11: 5 // 5 free bits at position 11
func (bm *Bitmap) FreeList() []Contiguous {
	var list []Contiguous
	location, count := -1, 0
	for i := 0; i < bm.size; i++ {
		if bm.bits[i/8]&(byte(0x1)<<(i%8)) == 0 {
			if location == -1 {
				location = i
			}
			count++
			continue
		}
		if location != -1 {
			list = append(list, Contiguous{location, count})
			location, count = -1, 0
		}
	}
	if location != -1 {
		list = append(list, Contiguous{location, count})
	}
	return list
}
