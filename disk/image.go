package disk

import (
	"fmt"
	"io"
	"os"

	"github.com/ecsfs/go-ecsfs/backend/memory"
	"github.com/ecsfs/go-ecsfs/disk/formats"
)

// OpenImage opens an image in any supported container. Raw images and devices are opened in place;
// compressed images are decompressed into memory and the resulting Disk is always read-only.
func OpenImage(path string, readOnly bool) (*Disk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open image %s: %w", path, err)
	}
	header := make([]byte, 8)
	n, err := io.ReadFull(f, header)
	_ = f.Close()
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("could not read header of %s: %w", path, err)
	}

	format := formats.Detect(header[:n])
	if !format.Compressed() {
		return Open(path, readOnly)
	}

	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read image %s: %w", path, err)
	}
	c, err := formats.NewCompressor(format)
	if err != nil {
		return nil, err
	}
	raw, err := c.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("could not decompress %s image %s: %w", format, path, err)
	}
	d, err := OpenBackend(memory.FromBytes(path, raw, true))
	if err != nil {
		return nil, err
	}
	d.Format = format
	return d, nil
}

// Export writes every block of the disk to w in the given container format
func (d *Disk) Export(w io.Writer, format formats.Format) (int64, error) {
	raw := make([]byte, d.Size)
	for i := 0; i < d.blocks; i++ {
		if err := d.ReadBlock(i, raw[i*BlockSize:(i+1)*BlockSize]); err != nil {
			return 0, err
		}
	}
	out := raw
	if format != formats.Raw {
		c, err := formats.NewCompressor(format)
		if err != nil {
			return 0, err
		}
		if out, err = c.Compress(raw); err != nil {
			return 0, fmt.Errorf("could not compress image as %s: %w", format, err)
		}
	}
	n, err := w.Write(out)
	return int64(n), err
}
