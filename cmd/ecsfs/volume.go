package main

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	ecsfs "github.com/ecsfs/go-ecsfs"
	"github.com/ecsfs/go-ecsfs/backend"
	"github.com/ecsfs/go-ecsfs/backend/file"
	"github.com/ecsfs/go-ecsfs/disk"
	"github.com/ecsfs/go-ecsfs/filesystem/ecs150"
)

// windowSize the size of the volume inside the image. Unless configured it is the rest of the image,
// cut down to whole blocks.
func windowSize(c *Config) (int64, error) {
	if c.Size > 0 {
		return c.Size, nil
	}
	info, err := os.Stat(c.Image)
	if err != nil {
		return 0, err
	}
	if info.Size()-c.Offset < disk.BlockSize {
		return 0, fmt.Errorf("offset %d leaves no room for a volume in %s of %d bytes", c.Offset, c.Image, info.Size())
	}
	rest := info.Size() - c.Offset
	return rest - rest%disk.BlockSize, nil
}

// openDisk opens the configured image, or the window of it the volume lives in
func openDisk(c *Config, readOnly bool) (*disk.Disk, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if !c.windowed() {
		return ecsfs.Open(c.Image, readOnly)
	}
	size, err := windowSize(c)
	if err != nil {
		return nil, err
	}
	b, err := file.OpenFromPath(c.Image, readOnly)
	if err != nil {
		return nil, err
	}
	d, err := ecsfs.OpenBackend(backend.Sub(b, c.Offset, size))
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return d, nil
}

func mountVolume(c *Config, readOnly bool) (*ecs150.FileSystem, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.windowed() {
		size, err := windowSize(c)
		if err != nil {
			return nil, err
		}
		return ecsfs.MountAt(c.Image, c.Offset, size, readOnly)
	}
	if readOnly {
		return ecsfs.MountReadOnly(c.Image)
	}
	return ecsfs.Mount(c.Image)
}

// withVolume mounts the configured volume around f and unmounts it afterwards,
// so everything f changed is written back
func withVolume(readOnly bool, f func(*ecs150.FileSystem, *cli.Context) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		fs, err := mountVolume(conf, readOnly)
		if err != nil {
			return fmt.Errorf("mounting %s: %w", conf.Image, err)
		}
		ferr := f(fs, ctx)
		if err := fs.Unmount(); err != nil {
			log.Errorf("unmounting %s: %v", conf.Image, err)
			return errors.Join(ferr, err)
		}
		return ferr
	}
}

// withDisk opens the configured disk around f
func withDisk(readOnly bool, f func(*disk.Disk, *cli.Context) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		d, err := openDisk(conf, readOnly)
		if err != nil {
			return fmt.Errorf("opening %s: %w", conf.Image, err)
		}
		defer func() { _ = d.Close() }()
		return f(d, ctx)
	}
}

// argument the single positional argument of a command
func argument(ctx *cli.Context, name string) (string, error) {
	if ctx.NArg() != 1 {
		return "", fmt.Errorf("%s takes exactly one argument, %s", ctx.Command.Name, name)
	}
	return ctx.Args().First(), nil
}
