// Package formats identifies the container a disk image is stored in. Compressed containers
// are read into memory in full and used read-only.
package formats

import "bytes"

// Format represents the container format of a disk image
type Format int

const (
	// Unknown could not be determined
	Unknown Format = iota
	// Raw disk image, block 0 at byte 0
	Raw
	// Xz compressed raw image
	Xz
	// Lz4 compressed raw image, lz4 frame format
	Lz4
	// Zlib compressed raw image
	Zlib
)

var (
	xzMagic  = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	lz4Magic = []byte{0x04, 0x22, 0x4d, 0x18}
)

func (f Format) String() string {
	switch f {
	case Raw:
		return "raw"
	case Xz:
		return "xz"
	case Lz4:
		return "lz4"
	case Zlib:
		return "zlib"
	default:
		return "unknown"
	}
}

// Parse a format name as printed by String
func Parse(name string) Format {
	for _, f := range []Format{Raw, Xz, Lz4, Zlib} {
		if f.String() == name {
			return f
		}
	}
	return Unknown
}

// Compressed reports whether images of this format must be decompressed before use
func (f Format) Compressed() bool {
	return f == Xz || f == Lz4 || f == Zlib
}

// Detect looks at the first bytes of an image and reports its format.
// Anything that is not a known compressed container is treated as raw.
func Detect(header []byte) Format {
	switch {
	case bytes.HasPrefix(header, xzMagic):
		return Xz
	case bytes.HasPrefix(header, lz4Magic):
		return Lz4
	case len(header) >= 2 && header[0]&0x0f == 8 && (uint16(header[0])<<8|uint16(header[1]))%31 == 0:
		return Zlib
	default:
		return Raw
	}
}
