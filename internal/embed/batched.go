package embed

import (
	"context"
	"fmt"

	"github.com/mvp-joe/ragctl/internal/knowledge"
)

// BatchProgress reports progress through a multi-batch Embed call, mirroring
// the teacher's embed/batched.go shape so the progress reporter's embed
// phase can be driven by the same event without re-deriving totals.
type BatchProgress struct {
	BatchIndex      int
	TotalBatches    int
	ProcessedTexts  int
	TotalTexts      int
}

const DefaultBatchSize = 100

// WithProgress splits texts into batchSize-sized batches, calls provider.Embed
// per batch sequentially (preserving input order across the whole call),
// and reports a BatchProgress after each batch on progressCh if non-nil.
// A batch failure aborts the whole call and is not retried here; the HTTP
// providers retry inside Embed, and the orchestrator's learn flow records
// the source as failed without retrying the batch.
func WithProgress(ctx context.Context, provider Provider, texts []string, mode Mode, batchSize int, progressCh chan<- BatchProgress) ([][]float32, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if len(texts) == 0 {
		return nil, nil
	}

	totalBatches := (len(texts) + batchSize - 1) / batchSize
	out := make([][]float32, 0, len(texts))

	for i := 0; i < len(texts); i += batchSize {
		select {
		case <-ctx.Done():
			return nil, knowledge.NewError(knowledge.KindErrCancelled, "embedding batch call cancelled", ctx.Err())
		default:
		}

		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[i:end]

		vecs, err := provider.Embed(ctx, batch, mode)
		if err != nil {
			return nil, knowledge.NewError(knowledge.KindErrEmbedding, fmt.Sprintf("batch %d/%d failed", i/batchSize+1, totalBatches), err)
		}
		if len(vecs) != len(batch) {
			return nil, knowledge.NewError(knowledge.KindErrEmbedding,
				fmt.Sprintf("provider returned %d vectors for %d inputs", len(vecs), len(batch)), nil)
		}
		out = append(out, vecs...)

		if progressCh != nil {
			select {
			case progressCh <- BatchProgress{
				BatchIndex:     i/batchSize + 1,
				TotalBatches:   totalBatches,
				ProcessedTexts: len(out),
				TotalTexts:     len(texts),
			}:
			default:
			}
		}
	}

	return out, nil
}
