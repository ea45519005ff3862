// Package sync moves whole trees of files, and whole volumes, between images and other file systems.
package sync

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	log "github.com/sirupsen/logrus"

	"github.com/ecsfs/go-ecsfs/disk"
	"github.com/ecsfs/go-ecsfs/filesystem"
	"github.com/ecsfs/go-ecsfs/filesystem/ecs150"
)

// excludedPaths these are excluded from any copy
var excludedPaths = map[string]bool{
	"lost+found":                true,
	".DS_Store":                 true,
	"System Volume Information": true,
}

const copyBufferSize = 32 * 1024

type copyData struct {
	count int64
	err   error
}

// CopyReport what CopyFileSystem did with each name it found
type CopyReport struct {
	Copied  []string
	Skipped []string
	Bytes   int64
}

// CopyFileSystem copies the regular files at the top of src into dst. The destination is flat, so
// directories are not descended into; they are skipped along with anything else that is not a regular
// file and files whose names dst refuses. A file that already exists in dst is replaced.
// Copying stops at the first file that does not fit.
func CopyFileSystem(src fs.FS, dst filesystem.FileSystem) (*CopyReport, error) {
	entries, err := fs.ReadDir(src, ".")
	if err != nil {
		return nil, fmt.Errorf("read dir of source: %w", err)
	}

	report := &CopyReport{}
	for _, entry := range entries {
		name := entry.Name()
		if excludedPaths[name] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return report, fmt.Errorf("stat %s: %w", name, err)
		}
		if !info.Mode().IsRegular() {
			log.WithField("file", name).Warn("skipping, only regular files can be copied")
			report.Skipped = append(report.Skipped, name)
			continue
		}

		n, err := copyOneFile(src, dst, name)
		switch {
		case errors.Is(err, ecs150.ErrInvalidName):
			log.WithField("file", name).Warn("skipping, name not valid on destination")
			report.Skipped = append(report.Skipped, name)
			continue
		case err != nil:
			return report, fmt.Errorf("copy file %s: %w", name, err)
		}
		report.Copied = append(report.Copied, name)
		report.Bytes += n
	}
	return report, nil
}

func copyOneFile(src fs.FS, dst filesystem.FileSystem, name string) (int64, error) {
	in, err := src.Open(name)
	if err != nil {
		return 0, err
	}
	defer func() { _ = in.Close() }()

	// there is no truncate, so an existing file is replaced
	err = dst.Create(name)
	if errors.Is(err, fs.ErrExist) {
		if err = dst.Remove(name); err != nil {
			return 0, err
		}
		err = dst.Create(name)
	}
	if err != nil {
		return 0, err
	}

	out, err := dst.OpenFile(name)
	if err != nil {
		return 0, err
	}
	defer func() { _ = out.Close() }()

	n, err := io.CopyBuffer(out, in, make([]byte, copyBufferSize))
	if err != nil {
		return n, err
	}
	log.WithField("file", name).Debugf("copied %d bytes", n)
	return n, nil
}

// CopyDiskRaw copies every block of one disk to another of the same size and verifies the copy.
func CopyDiskRaw(from, to *disk.Disk) error {
	if from.BlockCount() != to.BlockCount() {
		return fmt.Errorf("cannot copy %d blocks onto a disk of %d blocks", from.BlockCount(), to.BlockCount())
	}
	if to.ReadOnly() {
		return filesystem.ErrReadonlyFilesystem
	}

	// copy raw data using a pipe so reads feed writes concurrently
	pr, pw := io.Pipe()
	ch := make(chan copyData, 1)

	go func() {
		read, err := readBlocks(from, pw)
		_ = pw.CloseWithError(err)
		ch <- copyData{count: read, err: err}
	}()

	written, err := writeBlocks(to, pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		<-ch
		return fmt.Errorf("failed to write raw data: %w", err)
	}
	readData := <-ch
	if readData.err != nil {
		return fmt.Errorf("failed to read raw data: %w", readData.err)
	}
	if readData.count != written {
		return fmt.Errorf("mismatched read/write sizes: read %d bytes, wrote %d bytes", readData.count, written)
	}
	log.Infof("disk contents copied block for block, %d bytes copied", written)
	if err := verifyBlockCopy(from, to); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	log.Info("block copy verified")
	return nil
}

func readBlocks(d *disk.Disk, w io.Writer) (int64, error) {
	var total int64
	b := make([]byte, disk.BlockSize)
	for i := 0; i < d.BlockCount(); i++ {
		if err := d.ReadBlock(i, b); err != nil {
			return total, err
		}
		n, err := w.Write(b)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func writeBlocks(d *disk.Disk, r io.Reader) (int64, error) {
	var total int64
	b := make([]byte, disk.BlockSize)
	for i := 0; i < d.BlockCount(); i++ {
		if _, err := io.ReadFull(r, b); err != nil {
			return total, err
		}
		if err := d.WriteBlock(i, b); err != nil {
			return total, err
		}
		total += disk.BlockSize
	}
	return total, nil
}
