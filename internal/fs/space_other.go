//go:build !linux && !darwin

package fs

// FreeSpace is not available on this platform.
func (m *OSFilesystem) FreeSpace(string) (int64, error) {
	return -1, nil
}
