package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bdougie/videoextend/internal/answer"
	"github.com/bdougie/videoextend/internal/backend"
	"github.com/bdougie/videoextend/internal/metrics"
	"github.com/bdougie/videoextend/internal/models"
)

const defaultBackendTimeout = 2 * time.Minute

// QuerierOpts configures a Querier
type QuerierOpts struct {
	Backends  []string
	Timeout   time.Duration
	Parallel  bool
	Limiter   *rate.Limiter
	Extractor answer.Extractor
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// Querier asks every backend about one frame pair. A failing backend never
// stops the others.
type Querier struct {
	generator backend.Generator
	opts      QuerierOpts
}

// NewQuerier creates a querier over the given generator
func NewQuerier(generator backend.Generator, opts QuerierOpts) *Querier {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultBackendTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Extractor == nil {
		opts.Extractor = answer.NewTagExtractor(answer.DefaultTag, opts.Logger)
	}
	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Querier{generator: generator, opts: opts}
}

// Backends returns the ordered backend list
func (q *Querier) Backends() []string {
	return q.opts.Backends
}

// Query returns one result per backend, in backend list order regardless
// of completion order.
func (q *Querier) Query(ctx context.Context, prompt string, pair models.ImagePair) []models.BackendResult {
	results := make([]models.BackendResult, len(q.opts.Backends))

	if !q.opts.Parallel {
		for i, id := range q.opts.Backends {
			results[i] = q.queryOne(ctx, prompt, pair, id)
		}
		return results
	}

	var wg sync.WaitGroup
	for i, id := range q.opts.Backends {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			results[i] = q.queryOne(ctx, prompt, pair, id)
		}(i, id)
	}
	wg.Wait()
	return results
}

func (q *Querier) queryOne(ctx context.Context, prompt string, pair models.ImagePair, id string) (result models.BackendResult) {
	result.Backend = id
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("backend panicked: %v", r)
		}
		result.Duration = time.Since(start)
		q.opts.Metrics.ObserveBackendCall(id, result.Duration, result.Err)
	}()

	if err := q.opts.Limiter.Wait(ctx); err != nil {
		result.Err = fmt.Errorf("rate limiter: %w", err)
		return result
	}

	callCtx, cancel := context.WithTimeout(ctx, q.opts.Timeout)
	defer cancel()

	raw, err := q.generator.Generate(callCtx, prompt, pair.Media(), id)
	if err != nil {
		result.Err = err
		q.opts.Logger.Error("backend failed",
			"backend", id,
			"folder", pair.Folder(),
			"error", err)
		return result
	}

	result.Text = q.opts.Extractor.Extract(raw)
	q.opts.Logger.Info("backend answered",
		"backend", id,
		"folder", pair.Folder(),
		"answer", result.Text)
	return result
}
