// Package ecsfs implements methods for creating, opening and mounting ECS150FS disk images.
//
// ECS150FS is a small FAT-style filesystem: one flat root directory of up to 128 files, file data
// chained through a 16-bit File Allocation Table, everything in 4096-byte blocks. This package works on
// the bytes of the image directly; it does **not** mount anything through the operating system.
//
// Some examples:
//
// 1. Create a 4MB image with a fresh volume, write a file and read it back.
//
//	import ecsfs "github.com/ecsfs/go-ecsfs"
//
//	fs, err := ecsfs.Create("/tmp/disk.img", 1024)
//	err = fs.Create("hello.txt")
//	fd, err := fs.Open("hello.txt")
//	n, err := fs.Write(fd, []byte("hello world"))
//	err = fs.Seek(fd, 0)
//	b := make([]byte, 11)
//	n, err = fs.Read(fd, b)
//	err = fs.Close(fd)
//	err = fs.Unmount()
//
// 2. Look at a compressed image without unpacking it; it is mounted read-only.
//
//	fs, err := ecsfs.Mount("/tmp/disk.img.xz")
//	info, err := fs.Info()
//	fmt.Print(info)
//	files, err := fs.List()
//
// 3. Mount a volume that starts 1MB into a larger image.
//
//	fs, err := ecsfs.MountAt("/tmp/big.img", 1024*1024, 2051*4096, false)
package ecsfs

import (
	"fmt"

	"github.com/ecsfs/go-ecsfs/backend"
	"github.com/ecsfs/go-ecsfs/backend/file"
	"github.com/ecsfs/go-ecsfs/disk"
	"github.com/ecsfs/go-ecsfs/filesystem/ecs150"
)

// Open a disk image, compressed or not, or a block device.
// The provided device must exist at the time you call Open()
func Open(device string, readOnly bool) (*disk.Disk, error) {
	return disk.OpenImage(device, readOnly)
}

// OpenBackend opens a Disk on any backend.Storage
func OpenBackend(b backend.Storage) (*disk.Disk, error) {
	return disk.OpenBackend(b)
}

// Create makes a new image at path with a freshly formatted volume of dataBlocks data blocks,
// and returns it mounted.
// The provided path must not exist at the time you call Create()
func Create(path string, dataBlocks int) (*ecs150.FileSystem, error) {
	if err := ecs150.CreateImage(path, dataBlocks); err != nil {
		return nil, err
	}
	return Mount(path)
}

// Mount mounts the volume in the image or device at path
func Mount(path string) (*ecs150.FileSystem, error) {
	fs := &ecs150.FileSystem{}
	if err := fs.Mount(path); err != nil {
		return nil, err
	}
	return fs, nil
}

// MountReadOnly mounts the volume in the image or device at path without opening it for write
func MountReadOnly(path string) (*ecs150.FileSystem, error) {
	d, err := disk.OpenImage(path, true)
	if err != nil {
		return nil, err
	}
	fs := &ecs150.FileSystem{}
	if err := fs.MountDisk(d); err != nil {
		_ = d.Close()
		return nil, err
	}
	return fs, nil
}

// MountAt mounts a volume of size bytes that starts offset bytes into the image or device at path
func MountAt(path string, offset, size int64, readOnly bool) (*ecs150.FileSystem, error) {
	if offset < 0 || size <= 0 {
		return nil, fmt.Errorf("invalid volume window at %d of %d bytes", offset, size)
	}
	b, err := file.OpenFromPath(path, readOnly)
	if err != nil {
		return nil, err
	}
	d, err := disk.OpenBackend(backend.Sub(b, offset, size))
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	fs := &ecs150.FileSystem{}
	if err := fs.MountDisk(d); err != nil {
		_ = d.Close()
		return nil, err
	}
	return fs, nil
}
