package ecs150

import (
	"errors"
	"fmt"
	iofs "io/fs"
)

// Every error returned by a FileSystem wraps exactly one of these, so callers can use errors.Is
var (
	ErrIO               = errors.New("block device I/O error")
	ErrInvalidFormat    = errors.New("not a valid ECS150FS volume")
	ErrAlreadyMounted   = errors.New("volume already mounted")
	ErrNotMounted       = errors.New("no volume mounted")
	ErrInvalidName      = errors.New("invalid filename")
	ErrNameExists       = fmt.Errorf("filename taken: %w", iofs.ErrExist)
	ErrNotFound         = fmt.Errorf("no such file: %w", iofs.ErrNotExist)
	ErrDirectoryFull    = errors.New("root directory full")
	ErrNoSpace          = errors.New("no free data blocks")
	ErrInvalidHandle    = errors.New("invalid handle")
	ErrTooManyOpen      = errors.New("too many open files")
	ErrOffsetOutOfRange = errors.New("offset beyond end of file")
	ErrFileBusy         = errors.New("file is open")
)

// ioError keeps both the ErrIO kind and the block device's own error
func ioError(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, fmt.Sprintf(format, args...), err)
}
