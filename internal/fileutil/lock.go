package fileutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// ErrLockTimeout is returned when Lock gives up waiting
var ErrLockTimeout = errors.New("fileutil: timed out waiting for lock")

const lockRetry = 10 * time.Millisecond

// Lock takes an exclusive lock on filename shared by every process that
// uses Lock, by creating filename+".lock". It retries until ctx is done. A
// lock file older than stale belongs to a process that died holding it and
// is removed; zero disables that.
func Lock(ctx context.Context, filename string, stale time.Duration) (unlock func() error, err error) {
	path := filename + ".lock"
	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
			if cerr := f.Close(); werr == nil {
				werr = cerr
			}
			if werr != nil {
				_ = os.Remove(path)
				return nil, fmt.Errorf("fileutil: writing lock %s: %w", path, werr)
			}
			return func() error { return os.Remove(path) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("fileutil: creating lock %s: %w", path, err)
		}

		if info, serr := os.Stat(path); serr == nil && stale > 0 && time.Since(info.ModTime()) > stale {
			_ = os.Remove(path)
			continue
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", ErrLockTimeout, path, ctx.Err())
		case <-time.After(lockRetry):
		}
	}
}
