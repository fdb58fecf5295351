//go:build linux || darwin

package fs

import (
	"fmt"
	"syscall"
)

// FreeSpace returns the bytes available to unprivileged users on the
// filesystem holding path.
func (m *OSFilesystem) FreeSpace(path string) (int64, error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path, &st); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return int64(st.Bavail) * int64(st.Bsize), nil
}
