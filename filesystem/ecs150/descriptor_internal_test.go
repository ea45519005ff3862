package ecs150

import (
	"errors"
	"testing"
)

func TestDescriptorTable(t *testing.T) {
	var dt descriptorTable
	for i := 0; i < MaxOpenFiles; i++ {
		fd, err := dt.add(i%3, noBlock)
		if err != nil {
			t.Fatalf("add %d: unexpected error: %v", i, err)
		}
		if fd != i {
			t.Errorf("add %d returned descriptor %d", i, fd)
		}
	}
	if _, err := dt.add(0, noBlock); !errors.Is(err, ErrTooManyOpen) {
		t.Fatalf("mismatched error, actual %v expected %v", err, ErrTooManyOpen)
	}

	if err := dt.remove(5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := dt.remove(5); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("double remove: mismatched error, actual %v expected %v", err, ErrInvalidHandle)
	}
	fd, err := dt.add(7, blockAt(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fd != 5 {
		t.Errorf("reused descriptor %d instead of 5", fd)
	}
	d, err := dt.get(fd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.entry != 7 || d.offset != 0 || d.block != blockAt(3) {
		t.Errorf("new descriptor %+v", d)
	}

	for _, fd := range []int{-1, MaxOpenFiles, 1000} {
		if _, err := dt.get(fd); !errors.Is(err, ErrInvalidHandle) {
			t.Errorf("get(%d): mismatched error, actual %v expected %v", fd, err, ErrInvalidHandle)
		}
	}

	if !dt.referencing(7) || dt.referencing(3) {
		t.Errorf("referencing() wrong")
	}
	if n := dt.reset(); n != MaxOpenFiles {
		t.Errorf("reset() closed %d, expected %d", n, MaxOpenFiles)
	}
	if dt.referencing(0) {
		t.Errorf("descriptor left after reset")
	}
}
