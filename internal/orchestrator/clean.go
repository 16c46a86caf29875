package orchestrator

import (
	"fmt"
	"os"

	"github.com/mvp-joe/ragctl/internal/sourcetracker"
	"github.com/mvp-joe/ragctl/internal/vectorindex"
)

// Clean drops everything learn built for a base — the vector index file,
// the source log, and the stats document — while leaving config.yaml in
// place, so a subsequent learn reuses the same embedding configuration
// rather than silently drifting to a new default. Clean is idempotent: a
// base with nothing to clean returns nil, not an error (P4).
func (o *Orchestrator) Clean(base string) error {
	lock := newExclusiveLock(o.layout.BaseDir(base))
	if err := lock.acquire(); err != nil {
		return err
	}
	defer lock.release()

	if err := vectorindex.DeleteFile(o.layout.IndexDBPath(base)); err != nil {
		return fmt.Errorf("orchestrator: clean index: %w", err)
	}

	tracker := sourcetracker.New(o.layout.BaseDir(base))
	if err := tracker.Clear(); err != nil {
		return fmt.Errorf("orchestrator: clean source log: %w", err)
	}
	if err := tracker.ClearStats(); err != nil {
		return fmt.Errorf("orchestrator: clean stats: %w", err)
	}

	return nil
}

// baseDirExists is a tiny helper used by the stats flow to tell "never
// learned" apart from "learned, then cleaned".
func (o *Orchestrator) baseDirExists(base string) bool {
	_, err := os.Stat(o.layout.BaseDir(base))
	return err == nil
}
