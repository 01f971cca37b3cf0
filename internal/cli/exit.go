package cli

import (
	"errors"

	"github.com/dhenden/fsgrowth/internal/collector"
	"github.com/dhenden/fsgrowth/internal/store"
)

// Exit codes for fatal conditions, so schedulers and wrappers can tell
// the failure classes apart.
const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitCorruptHistory = 3
	ExitWriteError     = 4
	ExitCollection     = 5
)

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var corrupt *store.CorruptHistoryError
	if errors.As(err, &corrupt) {
		return ExitCorruptHistory
	}

	var write *store.WriteError
	if errors.As(err, &write) {
		return ExitWriteError
	}

	var collect *collector.CollectionError
	if errors.As(err, &collect) {
		return ExitCollection
	}

	return ExitFailure
}
