package sync

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"

	"github.com/ecsfs/go-ecsfs/disk"
)

func verifyBlockCopy(from, to *disk.Disk) error {
	expectedSize := from.Size
	// create a sha256sum of both disks and compare
	// but limit the target to expectedSize
	origHasher := sha256.New()
	size, err := readBlocks(from, origHasher)
	if err != nil {
		return err
	}
	if size != expectedSize {
		return fmt.Errorf("original disk size %d is different than expected size %d", size, expectedSize)
	}
	origResult := origHasher.Sum(nil)

	targetHasher := sha256.New()
	size, err = readBlocks(to, NewLimitWriter(targetHasher, expectedSize))
	if err != nil {
		return err
	}
	if size != expectedSize {
		return fmt.Errorf("target disk size %d is different than expected size %d", size, expectedSize)
	}
	targetResult := targetHasher.Sum(nil)

	if !bytes.Equal(origResult, targetResult) {
		return fmt.Errorf("data mismatch between original and target disks")
	}
	return nil
}

// CompareFS compares the top-level regular files of two fs.FS instances for identical names and contents.
// Directories are not compared.
func CompareFS(origFS, targetFS fs.FS) error {
	orig, err := regularFiles(origFS)
	if err != nil {
		return fmt.Errorf("original: %w", err)
	}
	target, err := regularFiles(targetFS)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}

	for name, size := range orig {
		tsize, ok := target[name]
		if !ok {
			return fmt.Errorf("file %q missing in target FS", name)
		}
		if size != tsize {
			return fmt.Errorf("size mismatch at %q: %d and %d", name, size, tsize)
		}
		if err := compareFileContents(origFS, targetFS, name); err != nil {
			return err
		}
	}
	for name := range target {
		if _, ok := orig[name]; !ok {
			return fmt.Errorf("extra file %q in target FS", name)
		}
	}
	return nil
}

// regularFiles sizes of the regular files in the root of fsys, by name
func regularFiles(fsys fs.FS) (map[string]int64, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	files := make(map[string]int64, len(entries))
	for _, entry := range entries {
		if excludedPaths[entry.Name()] || !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		files[entry.Name()] = info.Size()
	}
	return files, nil
}

func fileHash(fsys fs.FS, name string) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("reading %q: %w", name, err)
	}
	return h.Sum(nil), nil
}

func compareFileContents(a, b fs.FS, name string) error {
	ah, err := fileHash(a, name)
	if err != nil {
		return err
	}
	bh, err := fileHash(b, name)
	if err != nil {
		return err
	}
	if !bytes.Equal(ah, bh) {
		return fmt.Errorf("content mismatch at %q", name)
	}
	return nil
}

// LimitedWriter writes to W but limits the total amount of data written to N bytes.
// Each call to Write updates N to reflect the new amount remaining.
type LimitedWriter struct {
	W io.Writer // underlying writer
	N int64     // max bytes remaining
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.N <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > l.N {
		p = p[:l.N]
	}
	n, err = l.W.Write(p)
	l.N -= int64(n)
	return n, err
}

// NewLimitWriter creates a new LimitedWriter.
func NewLimitWriter(w io.Writer, n int64) io.Writer {
	return &LimitedWriter{W: w, N: n}
}
