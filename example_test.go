package ecsfs_test

import (
	"fmt"
	"io"
	"log"
	"os"

	ecsfs "github.com/ecsfs/go-ecsfs"
	"github.com/ecsfs/go-ecsfs/backend/file"
	"github.com/ecsfs/go-ecsfs/converter"
	"github.com/ecsfs/go-ecsfs/disk/formats"
	"github.com/ecsfs/go-ecsfs/filesystem/ecs150"
)

func check(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func unused(_ ...any) {
}

// Create an image with a volume of 1024 data blocks, 4MB, and write a file to it.
func ExampleCreate() {
	diskImg := "/tmp/disk.img"
	defer os.Remove(diskImg)
	fs, err := ecsfs.Create(diskImg, 1024)
	check(err)

	check(fs.Create("hello.txt"))
	fd, err := fs.Open("hello.txt")
	check(err)
	_, err = fs.Write(fd, []byte("hello world"))
	check(err)
	check(fs.Close(fd))
	check(fs.Unmount())
}

// Mount an existing image and print its geometry and files.
func ExampleMount() {
	fs, err := ecsfs.Mount("/tmp/disk.img")
	check(err)
	defer func() { check(fs.Unmount()) }()

	info, err := fs.Info()
	check(err)
	fmt.Print(info)
	files, err := fs.List()
	check(err)
	for _, de := range files {
		fmt.Println(de)
	}
}

// Read a file through the io interfaces.
func ExampleMountReadOnly() {
	fs, err := ecsfs.MountReadOnly("/tmp/disk.img")
	check(err)
	defer func() { check(fs.Unmount()) }()

	f, err := fs.OpenHandle("hello.txt")
	check(err)
	defer f.Close()
	_, err = io.Copy(os.Stdout, f)
	check(err)
}

// Mount a volume of 2051 blocks that starts 1MB into a larger image.
func ExampleMountAt() {
	fs, err := ecsfs.MountAt("/tmp/big.img", 1024*1024, 2051*ecs150.BlockSize, false)
	check(err)
	unused(fs)
}

// Use the volume as an io/fs.FS.
func ExampleMount_fs() {
	fs, err := ecsfs.Mount("/tmp/disk.img")
	check(err)
	defer func() { check(fs.Unmount()) }()

	entries, err := converter.FS(fs).ReadDir(".")
	check(err)
	unused(entries)
}

// Format a new image through the backend abstraction and save an xz compressed copy.
func ExampleOpenBackend() {
	theBackend, err := file.CreateFromPath("/tmp/my.img", 2051*ecs150.BlockSize)
	check(err)
	defer os.Remove("/tmp/my.img")

	theDisk, err := ecsfs.OpenBackend(theBackend)
	check(err)
	check(ecs150.Format(theDisk))

	out, err := os.Create("/tmp/my.img.xz")
	check(err)
	defer out.Close()
	_, err = theDisk.Export(out, formats.Xz)
	check(err)
	check(theDisk.Close())
}
