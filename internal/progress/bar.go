package progress

import (
	"fmt"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// BarSink renders progress as a terminal bar, one per phase, mirroring the
// teacher's internal/cli/progress.go convention of a fresh bar per indexing
// stage. Only cmd/ragctl wires this in; the orchestrator's default sink
// remains NoOpSink.
type BarSink struct {
	mu   sync.Mutex
	bars map[Phase]*progressbar.ProgressBar
}

func NewBarSink() *BarSink {
	return &BarSink{bars: make(map[Phase]*progressbar.ProgressBar)}
}

func (b *BarSink) OnEvent(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bar, ok := b.bars[e.Phase]
	if !ok {
		total := e.Total
		if total <= 0 {
			total = -1
		}
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription(fmt.Sprintf("%-8s", e.Phase)),
			progressbar.OptionClearOnFinish(),
		)
		b.bars[e.Phase] = bar
	}
	if e.Total > 0 {
		bar.ChangeMax(e.Total)
	}
	_ = bar.Set(e.Current)
	if e.Total > 0 && e.Current >= e.Total {
		_ = bar.Finish()
	}
}
