package collector

import (
	"context"
	"fmt"
)

// Usage holds raw capacity figures for one mounted filesystem, in bytes.
type Usage struct {
	TotalBytes uint64
	UsedBytes  uint64
	FreeBytes  uint64
}

// Collector supplies capacity figures for a mount path.
type Collector interface {
	// Name returns the collector name for logging.
	Name() string

	// Usage returns the current capacity of the filesystem at path.
	Usage(ctx context.Context, path string) (Usage, error)
}

// CollectionError reports that a filesystem could not be statted (path
// missing, permission denied). It is never retried here; the caller
// decides whether to continue with history-only analysis or abort.
type CollectionError struct {
	Path string
	Err  error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("collecting usage for %s: %v", e.Path, e.Err)
}

func (e *CollectionError) Unwrap() error { return e.Err }
