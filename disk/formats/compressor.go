package formats

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/pierrec/lz4"
	"github.com/ulikunitz/xz"
)

// Compressor defines a compressor. Fulfilled by various implementations in this package
type Compressor interface {
	Compress([]byte) ([]byte, error)
	Decompress([]byte) ([]byte, error)
	Flavour() Format
}

// CompressorXz xz compression
type CompressorXz struct{}

func (c CompressorXz) Compress(in []byte) ([]byte, error) {
	var b bytes.Buffer
	w, err := xz.NewWriter(&b)
	if err != nil {
		return nil, fmt.Errorf("error creating xz compressor: %v", err)
	}
	if _, err := w.Write(in); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
func (c CompressorXz) Decompress(in []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(in))
	if err != nil {
		return nil, fmt.Errorf("error creating xz decompressor: %v", err)
	}
	p, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error decompressing: %v", err)
	}
	return p, nil
}
func (c CompressorXz) Flavour() Format {
	return Xz
}

// CompressorLz4 lz4 frame compression
type CompressorLz4 struct{}

func (c CompressorLz4) Compress(in []byte) ([]byte, error) {
	var b bytes.Buffer
	w := lz4.NewWriter(&b)
	if _, err := w.Write(in); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
func (c CompressorLz4) Decompress(in []byte) ([]byte, error) {
	p, err := io.ReadAll(lz4.NewReader(bytes.NewReader(in)))
	if err != nil {
		return nil, fmt.Errorf("error decompressing: %v", err)
	}
	return p, nil
}
func (c CompressorLz4) Flavour() Format {
	return Lz4
}

// CompressorZlib zlib compression
type CompressorZlib struct {
	CompressionLevel int
}

func (c CompressorZlib) Compress(in []byte) ([]byte, error) {
	var b bytes.Buffer
	level := c.CompressionLevel
	if level == 0 {
		level = zlib.DefaultCompression
	}
	zl, err := zlib.NewWriterLevel(&b, level)
	if err != nil {
		return nil, fmt.Errorf("error creating zlib compressor: %v", err)
	}
	if _, err := zl.Write(in); err != nil {
		return nil, err
	}
	if err := zl.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
func (c CompressorZlib) Decompress(in []byte) ([]byte, error) {
	zl, err := zlib.NewReader(bytes.NewReader(in))
	if err != nil {
		return nil, fmt.Errorf("error creating zlib decompressor: %v", err)
	}
	p, err := io.ReadAll(zl)
	if err != nil {
		return nil, fmt.Errorf("error decompressing: %v", err)
	}
	return p, nil
}
func (c CompressorZlib) Flavour() Format {
	return Zlib
}

// NewCompressor returns the compressor for a compressed format
func NewCompressor(flavour Format) (Compressor, error) {
	var c Compressor
	switch flavour {
	case Xz:
		c = CompressorXz{}
	case Lz4:
		c = CompressorLz4{}
	case Zlib:
		c = CompressorZlib{}
	default:
		return nil, fmt.Errorf("no compressor for image format %v", flavour)
	}
	return c, nil
}
