package port

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/mmr-tortoise/worktree/internal/model"
)

// fileLock is an advisory flock on a sidecar lock file. A sidecar is used
// instead of the registry file itself so the lock survives the atomic
// rename that replaces the registry on save.
type fileLock struct {
	f *os.File
}

// acquireLock takes an exclusive flock on path, polling until timeout.
// Returns model.ErrRegistryLocked when another process holds the lock for
// the whole wait.
func acquireLock(path string, timeout time.Duration) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}

	deadline := time.Now().Add(timeout)
	for {
		err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return &fileLock{f: f}, nil
		}
		if err != syscall.EWOULDBLOCK && err != syscall.EAGAIN {
			f.Close()
			return nil, fmt.Errorf("flock %s: %w", path, err)
		}
		if time.Now().After(deadline) {
			f.Close()
			return nil, fmt.Errorf("%w: %s held by another process", model.ErrRegistryLocked, path)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// release drops the lock and closes the file.
func (l *fileLock) release() {
	syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	l.f.Close()
}
