//go:build !linux

package disk

import (
	"errors"
	"os"
)

// getDeviceSize block devices are only supported on linux
func getDeviceSize(f *os.File) (int64, error) {
	return 0, errors.New("block devices not supported on this platform")
}
