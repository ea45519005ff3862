package ecsfs_test

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ecsfs "github.com/ecsfs/go-ecsfs"
	"github.com/ecsfs/go-ecsfs/backend/file"
	"github.com/ecsfs/go-ecsfs/disk"
	"github.com/ecsfs/go-ecsfs/disk/formats"
	"github.com/ecsfs/go-ecsfs/filesystem"
	"github.com/ecsfs/go-ecsfs/filesystem/ecs150"
)

const blockSize = ecs150.BlockSize

func checkErr(t *testing.T, msg string, err, tterr error) {
	t.Helper()
	switch {
	case err == nil && tterr != nil:
		t.Errorf("%s: expected error %v, got none", msg, tterr)
	case err != nil && tterr == nil:
		t.Errorf("%s: unexpected error %v", msg, err)
	case err != nil && !strings.HasPrefix(err.Error(), tterr.Error()) && !errors.Is(err, tterr):
		t.Errorf("%s: mismatched errors, actual %v expected %v", msg, err, tterr)
	}
}

func testTmpFilename(t *testing.T, prefix, suffix string) string {
	t.Helper()
	randBytes := make([]byte, 16)
	_, _ = rand.Read(randBytes)
	return filepath.Join(t.TempDir(), prefix+hex.EncodeToString(randBytes)+suffix)
}

// writeHello creates hello.txt on fs
func writeHello(t *testing.T, fs *ecs150.FileSystem) {
	t.Helper()
	if err := fs.Create("hello.txt"); err != nil {
		t.Fatalf("create: %v", err)
	}
	fd, err := fs.Open("hello.txt")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if n, err := fs.Write(fd, []byte("hello world")); err != nil || n != 11 {
		t.Fatalf("write: %d, %v", n, err)
	}
	if err := fs.Close(fd); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func readHello(t *testing.T, fs *ecs150.FileSystem) string {
	t.Helper()
	fd, err := fs.Open("hello.txt")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = fs.Close(fd) }()
	b := make([]byte, 64)
	n, err := fs.Read(fd, b)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(b[:n])
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		dataBlocks int
		size       int64
		err        error
	}{
		{"no file", "", 10, 0, errors.New("must pass image file name")},
		{"zero blocks", "disk", 0, 0, errors.New("data block count must be between 1 and 8192")},
		{"too many blocks", "disk", 8193, 0, errors.New("data block count must be between 1 and 8192")},
		{"directory does not exist", "foo/bar/232323/disk", 10, 0, errors.New("could not create image")},
		{"one data block", "disk", 1, 4 * blockSize, nil},
		{"ten data blocks", "disk", 10, 13 * blockSize, nil},
		{"largest volume", "disk", 8192, 8198 * blockSize, nil},
	}

	for i, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var filename string
			if tt.path != "" {
				filename = testTmpFilename(t, "ecsfs_test"+tt.path, ".img")
			}
			fs, err := ecsfs.Create(filename, tt.dataBlocks)
			checkErr(t, fmt.Sprintf("%d: Create(%s, %d)", i, filename, tt.dataBlocks), err, tt.err)
			if err != nil {
				return
			}
			defer func() { _ = fs.Unmount() }()
			info, err := os.Stat(filename)
			if err != nil {
				t.Fatalf("stat: %v", err)
			}
			if info.Size() != tt.size {
				t.Errorf("image size %d, expected %d", info.Size(), tt.size)
			}
			vi, err := fs.Info()
			if err != nil {
				t.Fatalf("info: %v", err)
			}
			if vi.DataBlocks != tt.dataBlocks {
				t.Errorf("data blocks %d, expected %d", vi.DataBlocks, tt.dataBlocks)
			}
		})
	}

	t.Run("existing file", func(t *testing.T) {
		filename := testTmpFilename(t, "ecsfs_test", ".img")
		if err := os.WriteFile(filename, nil, 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := ecsfs.Create(filename, 10); err == nil {
			t.Errorf("expected an error creating over an existing file")
		}
	})
}

func TestMount(t *testing.T) {
	filename := testTmpFilename(t, "ecsfs_test", ".img")
	fs, err := ecsfs.Create(filename, 10)
	if err != nil {
		t.Fatal(err)
	}
	writeHello(t, fs)
	if err := fs.Unmount(); err != nil {
		t.Fatal(err)
	}

	t.Run("read write", func(t *testing.T) {
		fs, err := ecsfs.Mount(filename)
		if err != nil {
			t.Fatal(err)
		}
		if s := readHello(t, fs); s != "hello world" {
			t.Errorf("read %q", s)
		}
		if err := fs.Unmount(); err != nil {
			t.Fatal(err)
		}
	})
	t.Run("read only", func(t *testing.T) {
		fs, err := ecsfs.MountReadOnly(filename)
		if err != nil {
			t.Fatal(err)
		}
		defer func() { _ = fs.Unmount() }()
		if s := readHello(t, fs); s != "hello world" {
			t.Errorf("read %q", s)
		}
		if err := fs.Create("other"); !errors.Is(err, filesystem.ErrReadonlyFilesystem) {
			t.Errorf("create on a read-only mount: %v", err)
		}
	})
	t.Run("missing", func(t *testing.T) {
		if _, err := ecsfs.Mount(filename + ".missing"); err == nil {
			t.Errorf("expected an error mounting a missing image")
		}
	})
	t.Run("compressed", func(t *testing.T) {
		d, err := ecsfs.Open(filename, true)
		if err != nil {
			t.Fatal(err)
		}
		compressed := filename + ".lz4"
		out, err := os.Create(compressed)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := d.Export(out, formats.Lz4); err != nil {
			t.Fatal(err)
		}
		_ = out.Close()
		_ = d.Close()

		fs, err := ecsfs.Mount(compressed)
		if err != nil {
			t.Fatal(err)
		}
		defer func() { _ = fs.Unmount() }()
		if s := readHello(t, fs); s != "hello world" {
			t.Errorf("read %q", s)
		}
		if err := fs.Delete("hello.txt"); !errors.Is(err, filesystem.ErrReadonlyFilesystem) {
			t.Errorf("delete on a compressed image: %v", err)
		}
	})
}

func TestMountAt(t *testing.T) {
	const offset = 3 * blockSize
	volume := testTmpFilename(t, "ecsfs_test", ".img")
	fs, err := ecsfs.Create(volume, 10)
	if err != nil {
		t.Fatal(err)
	}
	writeHello(t, fs)
	if err := fs.Unmount(); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(volume)
	if err != nil {
		t.Fatal(err)
	}
	size := int64(len(b))
	padding := bytes.Repeat([]byte{0xee}, offset)
	image := testTmpFilename(t, "ecsfs_test_window", ".img")
	if err := os.WriteFile(image, append(append(padding, b...), padding...), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		offset int64
		size   int64
		ok     bool
	}{
		{"window", offset, size, true},
		{"negative offset", -1, size, false},
		{"zero size", offset, 0, false},
		{"wrong offset", 0, size, false},
		{"window too large", offset, size + blockSize, false},
		{"window not whole blocks", offset, size - 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, err := ecsfs.MountAt(image, tt.offset, tt.size, true)
			if !tt.ok {
				if err == nil {
					_ = fs.Unmount()
					t.Errorf("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			defer func() { _ = fs.Unmount() }()
			if s := readHello(t, fs); s != "hello world" {
				t.Errorf("read %q", s)
			}
		})
	}

	t.Run("writes stay inside the window", func(t *testing.T) {
		fs, err := ecsfs.MountAt(image, offset, size, false)
		if err != nil {
			t.Fatal(err)
		}
		if err := fs.Delete("hello.txt"); err != nil {
			t.Fatal(err)
		}
		if err := fs.Unmount(); err != nil {
			t.Fatal(err)
		}
		after, err := os.ReadFile(image)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(after[:offset], padding) || !bytes.Equal(after[offset+size:], padding) {
			t.Errorf("bytes outside the volume window changed")
		}
	})
}

func TestOpenBackend(t *testing.T) {
	filename := testTmpFilename(t, "ecsfs_test", ".img")
	b, err := file.CreateFromPath(filename, 7*blockSize)
	if err != nil {
		t.Fatal(err)
	}
	d, err := ecsfs.OpenBackend(b)
	if err != nil {
		t.Fatal(err)
	}
	if d.BlockCount() != 7 || d.Size != 7*blockSize || d.Type != disk.DeviceTypeFile {
		t.Errorf("unexpected disk %+v", d)
	}
	if err := ecs150.Format(d); err != nil {
		t.Fatal(err)
	}
	fs := &ecs150.FileSystem{}
	if err := fs.MountDisk(d); err != nil {
		t.Fatal(err)
	}
	info, err := fs.Info()
	if err != nil {
		t.Fatal(err)
	}
	if info.DataBlocks != 4 {
		t.Errorf("data blocks %d, expected 4", info.DataBlocks)
	}
	if err := fs.Unmount(); err != nil {
		t.Fatal(err)
	}
}
