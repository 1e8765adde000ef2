package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/income-verify/internal/model"
)

// BatchResult pairs one input document with its outcome.
type BatchResult struct {
	Path string
	Doc  *model.Document
	Err  error
}

// BatchSummary aggregates a batch run.
type BatchSummary struct {
	Total      int
	Succeeded  int
	Failed     int
	Unreadable int
	Duration   time.Duration
	Results    []BatchResult
}

// ParseBatch parses documents concurrently, bounded by the concurrency
// limit. Document pipelines share no mutable state; the only shared
// resource is the inference-service rate budget, governed inside the
// vision client. A terminal failure on one document never stops the rest.
func (p *Parser) ParseBatch(ctx context.Context, paths []string, kind model.DocumentKind, concurrency int) *BatchSummary {
	if concurrency < 1 {
		concurrency = 1
	}

	started := time.Now()
	results := make([]BatchResult, len(paths))

	var succeeded, failed, unreadable atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	for i, path := range paths {
		g.Go(func() error {
			doc, err := p.Parse(ctx, path, kind)
			results[i] = BatchResult{Path: path, Doc: doc, Err: err}

			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, model.ErrUnreadableDocument):
				unreadable.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := &BatchSummary{
		Total:      len(paths),
		Succeeded:  int(succeeded.Load()),
		Failed:     int(failed.Load()),
		Unreadable: int(unreadable.Load()),
		Duration:   time.Since(started),
		Results:    results,
	}

	zap.L().Info("batch complete",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("unreadable", summary.Unreadable),
		zap.Duration("duration", summary.Duration),
	)

	return summary
}
