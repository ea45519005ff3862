//go:build linux

package disk

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const (
	blkgetsize64 = 0x80081272
)

// getDeviceSize asks the kernel for the size in bytes of a block device.
//
// It is done via an ioctl call with request as BLKGETSIZE64.
func getDeviceSize(f *os.File) (int64, error) {
	size, err := unix.IoctlGetInt(int(f.Fd()), blkgetsize64)
	if err != nil {
		return 0, fmt.Errorf("BLKGETSIZE64 on %s failed: %w", f.Name(), err)
	}
	return int64(size), nil
}
