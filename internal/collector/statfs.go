package collector

import (
	"context"

	"golang.org/x/sys/unix"
)

// StatfsCollector reads filesystem capacity with the statfs syscall.
type StatfsCollector struct{}

// New returns the default collector for this platform.
func New() Collector {
	return &StatfsCollector{}
}

// Name returns the collector name.
func (c *StatfsCollector) Name() string {
	return "statfs"
}

// Usage stats the filesystem at path. Total counts all blocks, used
// counts blocks not free to root, and free counts blocks available to
// unprivileged callers, matching the usual df accounting.
func (c *StatfsCollector) Usage(ctx context.Context, path string) (Usage, error) {
	select {
	case <-ctx.Done():
		return Usage{}, ctx.Err()
	default:
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Usage{}, &CollectionError{Path: path, Err: err}
	}

	bsize := uint64(stat.Bsize)
	total := stat.Blocks * bsize
	free := stat.Bavail * bsize
	used := (stat.Blocks - stat.Bfree) * bsize

	return Usage{
		TotalBytes: total,
		UsedBytes:  used,
		FreeBytes:  free,
	}, nil
}
