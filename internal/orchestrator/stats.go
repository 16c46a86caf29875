package orchestrator

import (
	"fmt"

	"github.com/mvp-joe/ragctl/internal/knowledge"
	"github.com/mvp-joe/ragctl/internal/sourcetracker"
	"github.com/mvp-joe/ragctl/internal/vectorindex"
)

// BaseStatsReport combines the durable stats.json summary with a live
// re-check against the vector index and on-disk size, so stats never lies
// about a base that was hand-edited or partially cleaned outside ragctl.
type BaseStatsReport struct {
	knowledge.BaseStats
	IndexChunkCount int
	IndexDimensions int
	DiskBytes       int64
}

// Stats reports a base's summary. A base directory that doesn't exist at
// all is reported as an error; a base that exists but was never learned (or
// was cleaned) returns a zero-valued report, not an error.
func (o *Orchestrator) Stats(base string) (BaseStatsReport, error) {
	if !o.baseDirExists(base) {
		return BaseStatsReport{}, knowledge.NewError(knowledge.KindErrConfig, fmt.Sprintf("unknown base %q", base), nil)
	}

	tracker := sourcetracker.New(o.layout.BaseDir(base))
	stats, err := tracker.ReadStats()
	if err != nil {
		return BaseStatsReport{}, err
	}

	report := BaseStatsReport{BaseStats: stats}

	if idx, err := vectorindex.Open(o.layout.IndexDBPath(base)); err == nil {
		defer idx.Close()
		if s, err := idx.Stats(); err == nil {
			report.IndexChunkCount = s.TotalChunks
			report.IndexDimensions = s.Dimensions
		}
	}

	if size, err := o.baseStore.BaseDirSize(base); err == nil {
		report.DiskBytes = size
	}

	return report, nil
}
