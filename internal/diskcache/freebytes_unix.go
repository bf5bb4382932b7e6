//go:build !windows

package diskcache

import "syscall"

// freeBytes reports free space on the filesystem containing dir (spec
// §4.9's disk-space guard).
func freeBytes(dir string) (int64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(dir, &stat); err != nil {
		return 0, err
	}
	return int64(stat.Bavail) * int64(stat.Bsize), nil
}
