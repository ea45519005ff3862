package ecs150

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ecsfs/go-ecsfs/util"
)

func getValidDirectory() *directory {
	d := &directory{entries: make([]directoryEntry, MaxFiles)}
	d.entries[0] = directoryEntry{filename: "hello.txt", fileSize: 5000, first: blockAt(1)}
	d.entries[2] = directoryEntry{filename: "empty", first: noBlock}
	return d
}

func getValidDirectoryBytes() []byte {
	b := make([]byte, BlockSize)
	copy(b, "hello.txt")
	copy(b[16:], []byte{0x88, 0x13, 0x00, 0x00, 0x01, 0x00})
	copy(b[64:], "empty")
	copy(b[64+20:], []byte{0xff, 0xff})
	return b
}

func TestDirectoryFromBytes(t *testing.T) {
	d, err := directoryFromBytes(getValidDirectoryBytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := getValidDirectory()
	if diff := cmp.Diff(expected, d, cmp.AllowUnexported(directory{}, directoryEntry{}, blockPtr{})); diff != "" {
		t.Errorf("directoryFromBytes() mismatch (-want +got):\n%s", diff)
	}
}

func TestDirectoryFromBytesUnterminated(t *testing.T) {
	b := getValidDirectoryBytes()
	copy(b[32*5:], "ABCDEFGHIJKLMNOP")
	_, err := directoryFromBytes(b)
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected %v for a filename filling its field, got %v", ErrInvalidFormat, err)
	}
}

func TestDirectoryBytesRoundTrip(t *testing.T) {
	b := getValidDirectoryBytes()
	// reserved bytes of a used slot and junk in a free one
	copy(b[22:32], "reserved!!")
	copy(b[32*7+3:], "junk")
	d, err := directoryFromBytes(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.entries[7].free() {
		t.Errorf("slot 7 with an empty name should be free")
	}
	// touch a live entry so its slot is re-encoded from fields
	d.entries[0].fileSize = 5000
	d.dirty = true
	if out := d.bytes(); !bytes.Equal(out, b) {
		_, diffString := util.DumpByteSlicesWithDiffs(out, b, 32, true, true, false)
		t.Errorf("directory.bytes() did not keep reserved bytes, actual then expected\n%s", diffString)
	}
	d.remove(7)
	if out := d.bytes(); !bytes.Equal(out[32*7:32*8], make([]byte, 32)) {
		t.Errorf("a removed slot should be written as zeros, got % x", out[32*7:32*8])
	}
}

func TestDirectoryToBytes(t *testing.T) {
	b := getValidDirectory().bytes()
	expected := getValidDirectoryBytes()
	if !bytes.Equal(b, expected) {
		_, diffString := util.DumpByteSlicesWithDiffs(b, expected, 32, true, true, false)
		t.Errorf("directory.bytes() mismatched, actual then expected\n%s", diffString)
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"a", true},
		{"fifteen_chars15", true},
		{"sixteen_chars_16", false},
		{"", false},
		{"with/slash", false},
		{"nul\x00byte", false},
	}
	for _, tt := range tests {
		err := validateName(tt.name)
		switch {
		case tt.valid && err != nil:
			t.Errorf("validateName(%q): unexpected error %v", tt.name, err)
		case !tt.valid && !errors.Is(err, ErrInvalidName):
			t.Errorf("validateName(%q): expected %v, got %v", tt.name, ErrInvalidName, err)
		}
	}
}

func TestDirectoryCreate(t *testing.T) {
	t.Run("first free slot", func(t *testing.T) {
		d := getValidDirectory()
		slot, err := d.create("new")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if slot != 1 {
			t.Errorf("created in slot %d instead of 1", slot)
		}
		if !d.dirty {
			t.Errorf("directory not dirty after create")
		}
		if e := d.entries[1]; e.fileSize != 0 || e.first.valid {
			t.Errorf("new entry not empty: %+v", e)
		}
	})
	t.Run("duplicate after a free slot", func(t *testing.T) {
		d := getValidDirectory()
		if _, err := d.create("empty"); !errors.Is(err, ErrNameExists) {
			t.Errorf("mismatched error, actual %v expected %v", err, ErrNameExists)
		}
		if d.dirty {
			t.Errorf("failed create marked directory dirty")
		}
	})
	t.Run("full", func(t *testing.T) {
		d := &directory{entries: make([]directoryEntry, MaxFiles)}
		for i := 0; i < MaxFiles; i++ {
			if _, err := d.create(fmt.Sprintf("f%d", i)); err != nil {
				t.Fatalf("create %d: unexpected error: %v", i, err)
			}
		}
		if d.freeCount() != 0 {
			t.Errorf("freeCount() = %d on a full directory", d.freeCount())
		}
		if _, err := d.create("onemore"); !errors.Is(err, ErrDirectoryFull) {
			t.Errorf("mismatched error, actual %v expected %v", err, ErrDirectoryFull)
		}
	})
	t.Run("invalid name", func(t *testing.T) {
		d := getValidDirectory()
		if _, err := d.create(strings.Repeat("x", 16)); !errors.Is(err, ErrInvalidName) {
			t.Errorf("mismatched error, actual %v expected %v", err, ErrInvalidName)
		}
	})
}

func TestDirectoryFindRemove(t *testing.T) {
	d := getValidDirectory()
	slot, err := d.find("empty")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot != 2 {
		t.Errorf("find() = %d, expected 2", slot)
	}
	old := d.remove(slot)
	if old.filename != "empty" {
		t.Errorf("remove() returned %+v", old)
	}
	if _, err := d.find("empty"); !errors.Is(err, ErrNotFound) {
		t.Errorf("mismatched error, actual %v expected %v", err, ErrNotFound)
	}
	if d.freeCount() != MaxFiles-1 {
		t.Errorf("freeCount() = %d, expected %d", d.freeCount(), MaxFiles-1)
	}
}
