// Package progress generalizes the teacher's ProgressReporter interface
// (internal/indexer/progress.go) from its file-based discover/embed/write
// phases to the spec's five-phase event stream: discover, parse, chunk,
// embed, index.
package progress

import "time"

// Phase is one of the five stages a learn pass emits progress for.
type Phase string

const (
	PhaseDiscover Phase = "discover"
	PhaseParse    Phase = "parse"
	PhaseChunk    Phase = "chunk"
	PhaseEmbed    Phase = "embed"
	PhaseIndex    Phase = "index"
)

// Event is one progress update. Total is zero when the total is not yet
// known (e.g. discover's total file count before the walk completes).
type Event struct {
	Phase   Phase
	Current int
	Total   int
	Message string
	Elapsed time.Duration
}

// Sink receives progress events. Emission must be cheap and non-blocking;
// implementations must not perform I/O that could stall the hot path (the
// teacher's NoOpProgressReporter sets the idiom: default to discarding).
type Sink interface {
	OnEvent(Event)
}

// NoOpSink discards every event; the default sink for every flow.
type NoOpSink struct{}

func (NoOpSink) OnEvent(Event) {}

// FuncSink adapts a plain function to Sink, useful in tests that just want
// to assert on the event sequence.
type FuncSink func(Event)

func (f FuncSink) OnEvent(e Event) { f(e) }

// IndexUpdateEvery is the cadence (in chunks processed) at which the index
// phase should emit, to avoid log flooding on large batches.
const IndexUpdateEvery = 10

// ShouldEmitIndexProgress reports whether the index phase should emit at
// `current`, honoring the "every 10 chunks or at batch boundaries" cadence.
func ShouldEmitIndexProgress(current, total int, isBatchBoundary bool) bool {
	if isBatchBoundary {
		return true
	}
	return current%IndexUpdateEvery == 0 || current == total
}
