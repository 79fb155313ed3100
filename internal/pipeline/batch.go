package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/phishscan/internal/model"
)

// DefaultConcurrency is the number of concurrent checks when none is set.
const DefaultConcurrency = 10

// ResultFunc receives a finished report and the index of its URL in the
// batch. It is called from worker goroutines and must be safe for
// concurrent use.
type ResultFunc func(index int, report *model.CheckReport)

// BatchProcessor checks many URLs concurrently, each with its own
// pipeline from the factory.
type BatchProcessor struct {
	newPipeline  func() *Pipeline
	concurrency  int
	checkTimeout time.Duration
	onResult     ResultFunc
	logger       *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger. A nil logger keeps slog.Default.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithConcurrency sets how many checks run at once.
// Non-positive values keep DefaultConcurrency.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithCheckTimeout bounds every single check. Zero means no limit.
func WithCheckTimeout(d time.Duration) BatchOption {
	return func(b *BatchProcessor) {
		if d > 0 {
			b.checkTimeout = d
		}
	}
}

// WithOnResult streams every report to fn as soon as its check ends.
func WithOnResult(fn ResultFunc) BatchOption {
	return func(b *BatchProcessor) {
		b.onResult = fn
	}
}

// NewBatchProcessor creates a BatchProcessor. newPipeline is called once
// per URL.
func NewBatchProcessor(newPipeline func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	b := &BatchProcessor{
		newPipeline: newPipeline,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ProcessBatch checks urls and returns one report per URL in input order.
//
// A failed check does not stop the batch; its error is in its report.
// When ctx is cancelled no new check starts, the reports of checks that
// never started are nil, and ctx's error is returned.
func (b *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]*model.CheckReport, error) {
	b.logger.Info("starting batch", "urls", len(urls), "concurrency", b.concurrency)
	start := time.Now()

	// Each worker writes only its own index.
	results := make([]*model.CheckReport, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, rawURL := range urls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report := b.check(gctx, rawURL)
			results[i] = report
			if b.onResult != nil {
				b.onResult(i, report)
			}
			return nil
		})
	}
	err := g.Wait()

	b.logger.Info("batch finished", "urls", len(urls), "elapsed", time.Since(start))
	return results, err
}

func (b *BatchProcessor) check(ctx context.Context, rawURL string) *model.CheckReport {
	if b.checkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.checkTimeout)
		defer cancel()
	}

	report, err := b.newPipeline().Run(ctx, rawURL)
	if err != nil {
		b.logger.Warn("check failed", "url", rawURL, "error", err)
	}
	return report
}
