package sync

import (
	"bytes"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/ecsfs/go-ecsfs/backend/memory"
	"github.com/ecsfs/go-ecsfs/converter"
	"github.com/ecsfs/go-ecsfs/disk"
	"github.com/ecsfs/go-ecsfs/filesystem/ecs150"
)

// volume formats an in-memory volume of dataBlocks data blocks and mounts it
func volume(t *testing.T, dataBlocks int) (*ecs150.FileSystem, *memory.Storage) {
	t.Helper()
	store := memory.New("sync.img", int64(ecs150.BlocksFor(dataBlocks))*disk.BlockSize)
	d, err := disk.OpenBackend(store)
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	if err := ecs150.Format(d); err != nil {
		t.Fatalf("format: %v", err)
	}
	fs := &ecs150.FileSystem{}
	if err := fs.MountDisk(d); err != nil {
		t.Fatalf("mount: %v", err)
	}
	return fs, store
}

// TestCopyFileSystem_Basic verifies top-level files are copied and everything else is skipped.
func TestCopyFileSystem_Basic(t *testing.T) {
	big := bytes.Repeat([]byte("0123456789"), 1000)
	src := fstest.MapFS{
		"foo.txt":                  {Data: []byte("hello")},
		"big.bin":                  {Data: big},
		"empty":                    {Data: []byte{}},
		"dir/bar":                  {Data: []byte("world")},
		"lost+found/x":             {Data: []byte("ignored")},
		"much_too_long_a_name.txt": {Data: []byte("no room")},
		"sl":                       {Data: []byte("foo.txt"), Mode: fs.ModeSymlink},
	}
	dst, _ := volume(t, 20)
	defer func() { _ = dst.Unmount() }()

	report, err := CopyFileSystem(src, dst)
	if err != nil {
		t.Fatalf("CopyFileSystem failed: %v", err)
	}
	if len(report.Copied) != 3 {
		t.Errorf("copied %v, expected big.bin, empty and foo.txt", report.Copied)
	}
	if len(report.Skipped) != 3 {
		t.Errorf("skipped %v, expected dir, much_too_long_a_name.txt and sl", report.Skipped)
	}
	if report.Bytes != int64(len(big)+5) {
		t.Errorf("copied %d bytes, expected %d", report.Bytes, len(big)+5)
	}

	expected := fstest.MapFS{
		"foo.txt": src["foo.txt"],
		"big.bin": src["big.bin"],
		"empty":   src["empty"],
	}
	if err := CompareFS(expected, converter.FS(dst)); err != nil {
		t.Errorf("copy differs from source: %v", err)
	}
}

// TestCopyFileSystem_Replace ensures a file already on the volume is replaced, not appended to.
func TestCopyFileSystem_Replace(t *testing.T) {
	dst, _ := volume(t, 20)
	defer func() { _ = dst.Unmount() }()
	if _, err := CopyFileSystem(fstest.MapFS{"f": {Data: bytes.Repeat([]byte{'a'}, 9000)}}, dst); err != nil {
		t.Fatalf("first copy failed: %v", err)
	}
	src := fstest.MapFS{"f": {Data: []byte("short")}}
	if _, err := CopyFileSystem(src, dst); err != nil {
		t.Fatalf("second copy failed: %v", err)
	}
	if err := CompareFS(src, converter.FS(dst)); err != nil {
		t.Errorf("copy differs from source: %v", err)
	}
	info, err := dst.Info()
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	// the three blocks of the first copy went back to the FAT
	if info.FATFree != 18 {
		t.Errorf("%d free blocks, expected 18", info.FATFree)
	}
}

// TestCopyFileSystem_Full ensures copying stops with an error when the volume fills up.
func TestCopyFileSystem_Full(t *testing.T) {
	dst, _ := volume(t, 3)
	defer func() { _ = dst.Unmount() }()
	src := fstest.MapFS{"huge": {Data: make([]byte, 5*disk.BlockSize)}}
	_, err := CopyFileSystem(src, dst)
	if !errors.Is(err, ecs150.ErrNoSpace) {
		t.Errorf("mismatched error, actual %v expected %v", err, ecs150.ErrNoSpace)
	}
}

func TestCopyDiskRaw(t *testing.T) {
	src, srcStore := volume(t, 20)
	if _, err := CopyFileSystem(fstest.MapFS{"a": {Data: []byte("raw copy")}}, src); err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if err := src.Unmount(); err != nil {
		t.Fatalf("unmount: %v", err)
	}

	from, err := disk.OpenBackend(memory.FromBytes("from.img", srcStore.Bytes(), true))
	if err != nil {
		t.Fatalf("open source: %v", err)
	}
	toStore := memory.New("to.img", srcStore.Size())
	to, err := disk.OpenBackend(toStore)
	if err != nil {
		t.Fatalf("open target: %v", err)
	}
	if err := CopyDiskRaw(from, to); err != nil {
		t.Fatalf("CopyDiskRaw failed: %v", err)
	}
	if !bytes.Equal(srcStore.Bytes(), toStore.Bytes()) {
		t.Errorf("target image differs from source")
	}

	// read-only and mismatched targets are refused
	if err := CopyDiskRaw(to, from); err == nil {
		t.Errorf("expected error copying onto a read-only disk")
	}
	small, err := disk.OpenBackend(memory.New("small.img", disk.BlockSize))
	if err != nil {
		t.Fatalf("open small: %v", err)
	}
	if err := CopyDiskRaw(from, small); err == nil {
		t.Errorf("expected error copying onto a smaller disk")
	}
}
