package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/ecsfs/go-ecsfs/converter"
	"github.com/ecsfs/go-ecsfs/disk"
	"github.com/ecsfs/go-ecsfs/disk/formats"
	"github.com/ecsfs/go-ecsfs/filesystem/ecs150"
	"github.com/ecsfs/go-ecsfs/sync"
	"github.com/ecsfs/go-ecsfs/util"
)

func mkfsCmd() *cli.Command {
	return &cli.Command{
		Name:  "mkfs",
		Usage: "create an image holding an empty volume, or format an existing image or device",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "blocks",
				Aliases: []string{"b"},
				Usage:   "data blocks of a new image",
				Value:   ecs150.MaxDataBlocks,
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "format an image or device that already exists, using all of it",
			},
		},
		Action: func(ctx *cli.Context) error {
			if err := conf.Validate(); err != nil {
				return err
			}
			_, err := os.Stat(conf.Image)
			switch {
			case errors.Is(err, os.ErrNotExist) && !conf.windowed():
				if err := ecs150.CreateImage(conf.Image, ctx.Int("blocks")); err != nil {
					return err
				}
				log.Infof("created %s with %d data blocks", conf.Image, ctx.Int("blocks"))
				return nil
			case err != nil:
				return err
			case !ctx.Bool("force"):
				return fmt.Errorf("%s already exists, use --force to format it", conf.Image)
			}
			d, err := openDisk(conf, false)
			if err != nil {
				return err
			}
			if err := ecs150.Format(d); err != nil {
				_ = d.Close()
				return err
			}
			log.Infof("formatted %d blocks of %s", d.BlockCount(), conf.Image)
			return d.Close()
		},
	}
}

func infoCmd() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "show volume geometry and free space",
		Action: withVolume(true, func(fs *ecs150.FileSystem, ctx *cli.Context) error {
			info, err := fs.Info()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(ctx.App.Writer, info.String())
			return err
		}),
	}
}

func lsCmd() *cli.Command {
	return &cli.Command{
		Name:    "ls",
		Aliases: []string{"list"},
		Usage:   "list the files on the volume",
		Action: withVolume(true, func(fs *ecs150.FileSystem, ctx *cli.Context) error {
			files, err := fs.List()
			if err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, "FS Ls:")
			for _, de := range files {
				fmt.Fprintln(ctx.App.Writer, de.String())
			}
			return nil
		}),
	}
}

func statCmd() *cli.Command {
	return &cli.Command{
		Name:      "stat",
		Usage:     "show the size of a file",
		ArgsUsage: "NAME",
		Action: withVolume(true, func(fs *ecs150.FileSystem, ctx *cli.Context) error {
			name, err := argument(ctx, "NAME")
			if err != nil {
				return err
			}
			fd, err := fs.Open(name)
			if err != nil {
				return err
			}
			defer func() { _ = fs.Close(fd) }()
			size, err := fs.Stat(fd)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(ctx.App.Writer, "Size of file '%s' is %d bytes\n", name, size)
			return err
		}),
	}
}

func catCmd() *cli.Command {
	return &cli.Command{
		Name:      "cat",
		Usage:     "write the contents of a file to standard output",
		ArgsUsage: "NAME",
		Action: withVolume(true, func(fs *ecs150.FileSystem, ctx *cli.Context) error {
			name, err := argument(ctx, "NAME")
			if err != nil {
				return err
			}
			f, err := fs.OpenHandle(name)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			_, err = io.Copy(ctx.App.Writer, f)
			return err
		}),
	}
}

func addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "copy a host file onto the volume",
		ArgsUsage: "HOSTFILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "name on the volume, defaults to the base name of HOSTFILE",
			},
		},
		Action: withVolume(false, func(fs *ecs150.FileSystem, ctx *cli.Context) error {
			hostFile, err := argument(ctx, "HOSTFILE")
			if err != nil {
				return err
			}
			name := ctx.String("name")
			if name == "" {
				name = filepath.Base(hostFile)
			}
			data, err := os.ReadFile(hostFile)
			if err != nil {
				return err
			}
			if err := fs.Create(name); err != nil {
				return err
			}
			fd, err := fs.Open(name)
			if err != nil {
				return err
			}
			defer func() { _ = fs.Close(fd) }()
			n, err := fs.Write(fd, data)
			if err != nil {
				return err
			}
			log.Infof("Wrote file '%s' (%d/%d bytes)", name, n, len(data))
			if n < len(data) {
				return fmt.Errorf("%s: %w", name, ecs150.ErrNoSpace)
			}
			return nil
		}),
	}
}

func rmCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Aliases:   []string{"delete"},
		Usage:     "delete a file from the volume",
		ArgsUsage: "NAME",
		Action: withVolume(false, func(fs *ecs150.FileSystem, ctx *cli.Context) error {
			name, err := argument(ctx, "NAME")
			if err != nil {
				return err
			}
			if err := fs.Delete(name); err != nil {
				return err
			}
			log.Infof("Removed file '%s'", name)
			return nil
		}),
	}
}

func importCmd() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "copy the regular files at the top of a host directory onto the volume",
		ArgsUsage: "DIR",
		Action: withVolume(false, func(fs *ecs150.FileSystem, ctx *cli.Context) error {
			dir, err := argument(ctx, "DIR")
			if err != nil {
				return err
			}
			report, err := sync.CopyFileSystem(os.DirFS(dir), fs)
			if report != nil {
				log.Infof("imported %d files, %d bytes, skipped %d", len(report.Copied), report.Bytes, len(report.Skipped))
			}
			return err
		}),
	}
}

func verifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "compare the files on the volume with the regular files at the top of a host directory",
		ArgsUsage: "DIR",
		Action: withVolume(true, func(fs *ecs150.FileSystem, ctx *cli.Context) error {
			dir, err := argument(ctx, "DIR")
			if err != nil {
				return err
			}
			if err := sync.CompareFS(os.DirFS(dir), converter.FS(fs)); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			log.Infof("%s matches %s", conf.Image, dir)
			return nil
		}),
	}
}

func exportCmd() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "write the volume to a new image file, optionally compressed",
		ArgsUsage: "OUTFILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "raw, xz, lz4 or zlib",
				Value: formats.Raw.String(),
			},
		},
		Action: withDisk(true, func(d *disk.Disk, ctx *cli.Context) error {
			out, err := argument(ctx, "OUTFILE")
			if err != nil {
				return err
			}
			format := formats.Parse(ctx.String("format"))
			if format == formats.Unknown {
				return fmt.Errorf("unknown image format %q", ctx.String("format"))
			}
			f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
			if err != nil {
				return err
			}
			n, err := d.Export(f, format)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			log.Infof("exported %d blocks to %s as %s, %d bytes", d.BlockCount(), out, format, n)
			return nil
		}),
	}
}

func cloneCmd() *cli.Command {
	return &cli.Command{
		Name:      "clone",
		Usage:     "copy the volume block for block into a new image and verify the copy",
		ArgsUsage: "OUTFILE",
		Action: withDisk(true, func(d *disk.Disk, ctx *cli.Context) error {
			out, err := argument(ctx, "OUTFILE")
			if err != nil {
				return err
			}
			target, err := disk.Create(out, d.BlockCount())
			if err != nil {
				return err
			}
			if err := sync.CopyDiskRaw(d, target); err != nil {
				_ = target.Close()
				return err
			}
			return target.Close()
		}),
	}
}

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "check the FAT and root directory for consistency",
		Action: withVolume(true, func(fs *ecs150.FileSystem, ctx *cli.Context) error {
			report, err := fs.Check()
			if err != nil {
				return err
			}
			w := ctx.App.Writer
			for _, problem := range report.Problems {
				fmt.Fprintln(w, problem)
			}
			fmt.Fprintf(w, "%d files, %d blocks used, %d free, largest free run %d\n",
				report.Files, report.UsedBlocks, report.FreeBlocks, report.LargestFreeRun)
			if !report.OK() {
				return cli.Exit(fmt.Sprintf("%d problems found", len(report.Problems)), 1)
			}
			return nil
		}),
	}
}

func hexdumpCmd() *cli.Command {
	return &cli.Command{
		Name:      "hexdump",
		Usage:     "dump raw blocks of the volume",
		ArgsUsage: "BLOCK",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "number of blocks to dump",
				Value:   1,
			},
		},
		Action: withDisk(true, func(d *disk.Disk, ctx *cli.Context) error {
			if ctx.NArg() != 1 {
				return fmt.Errorf("hexdump takes exactly one argument, BLOCK")
			}
			var first int
			if _, err := fmt.Sscan(ctx.Args().First(), &first); err != nil {
				return fmt.Errorf("invalid block number %q: %w", ctx.Args().First(), err)
			}
			b := make([]byte, disk.BlockSize)
			for i := first; i < first+ctx.Int("count"); i++ {
				if err := d.ReadBlock(i, b); err != nil {
					return err
				}
				fmt.Fprintf(ctx.App.Writer, "block %d:\n", i)
				fmt.Fprint(ctx.App.Writer, util.DumpBlock(b, int64(i)*disk.BlockSize))
			}
			return nil
		}),
	}
}
