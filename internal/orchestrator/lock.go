package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvp-joe/ragctl/internal/knowledge"
)

// exclusiveLock is a simple advisory file-based lock for the per-base
// single-writer discipline: learn and clean take it, ask does not. No
// ecosystem file-locking library appears anywhere in the retrieved pack
// wired directly by the teacher (gofrs/flock shows up only as bleve's
// indirect dependency, and bleve itself is dropped — see DESIGN.md), so
// this uses the stdlib's atomic O_CREATE|O_EXCL create as the mutual
// exclusion primitive, which is sufficient for single-process advisory use.
type exclusiveLock struct {
	path string
}

func newExclusiveLock(baseDir string) *exclusiveLock {
	return &exclusiveLock{path: filepath.Join(baseDir, ".lock")}
}

// acquire fails immediately if the lock is already held; learn/clean do not
// queue behind each other, they report IO-kind contention instead.
func (l *exclusiveLock) acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("orchestrator: prepare lock directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return knowledge.NewError(knowledge.KindErrIO, "base is locked by another learn or clean operation", err)
		}
		return fmt.Errorf("orchestrator: acquire lock: %w", err)
	}
	return f.Close()
}

func (l *exclusiveLock) release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("orchestrator: release lock: %w", err)
	}
	return nil
}
