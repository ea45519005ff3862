// Package filesystem provides interfaces and constants required for filesystem implementations.
// The implementation lives in a subpackage, github.com/ecsfs/go-ecsfs/filesystem/ecs150
package filesystem

import (
	"errors"
	"os"
)

var (
	ErrNotSupported       = errors.New("method not supported by this filesystem")
	ErrReadonlyFilesystem = errors.New("read-only filesystem")
)

// FileSystem is a reference to a single mounted volume with one flat namespace
type FileSystem interface {
	// Type return the type of filesystem
	Type() Type
	// ReadDir lists every file on the volume
	ReadDir() ([]os.FileInfo, error)
	// OpenFile open a handle to read or write to an existing file
	OpenFile(name string) (File, error)
	// Create an empty file
	Create(name string) error
	// Remove a file and release its blocks
	Remove(name string) error
}

// Type represents the type of filesystem this is
type Type int

const (
	// TypeECS150 is an ECS150FS flat FAT volume
	TypeECS150 Type = iota
)

func (t Type) String() string {
	switch t {
	case TypeECS150:
		return "ECS150FS"
	default:
		return "unknown"
	}
}
