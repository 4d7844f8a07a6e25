package analyzer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/bdougie/videoextend/internal/metrics"
	"github.com/bdougie/videoextend/internal/models"
	"github.com/bdougie/videoextend/internal/storage"
)

const defaultWorkers = 4

// PairFinder discovers the frame pairs below a root folder
type PairFinder interface {
	FindPairs(root string) ([]models.ImagePair, error)
}

// PromptBuilder produces the prompt shared by every pair of a run
type PromptBuilder interface {
	Build() (string, error)
}

// ProcessorConfig wires the collaborators of a Processor
type ProcessorConfig struct {
	Finder  PairFinder
	Prompts PromptBuilder
	Querier *Querier
	Storage storage.Storage
	Workers int
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// Progress receives the progress bar; nil means stderr
	Progress io.Writer
}

// Processor drives a run: discover pairs, build the prompt once, then query
// and report every pair on a bounded worker pool.
type Processor struct {
	finder   PairFinder
	prompts  PromptBuilder
	querier  *Querier
	storage  storage.Storage
	workers  int
	metrics  *metrics.Metrics
	logger   *slog.Logger
	progress io.Writer
}

// NewProcessor creates a processor, defaulting the worker count and outputs
func NewProcessor(cfg ProcessorConfig) *Processor {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Progress == nil {
		cfg.Progress = os.Stderr
	}
	return &Processor{
		finder:   cfg.Finder,
		prompts:  cfg.Prompts,
		querier:  cfg.Querier,
		storage:  cfg.Storage,
		workers:  cfg.Workers,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		progress: cfg.Progress,
	}
}

// pairOutcome is what one worker reports back for the run summary
type pairOutcome struct {
	results   []models.BackendResult
	reportErr error
	written   bool
	panicked  bool
}

// Run processes every frame pair below root. Discovery and prompt errors
// are fatal; anything going wrong inside a pair only affects that pair.
func (p *Processor) Run(ctx context.Context, root string) (models.RunSummary, error) {
	var summary models.RunSummary

	pairs, err := p.finder.FindPairs(root)
	if err != nil {
		return summary, fmt.Errorf("failed to discover frame pairs in '%s': %w", root, err)
	}
	if len(pairs) == 0 {
		p.logger.Warn("no image pairs found", "root", root)
		return summary, nil
	}
	summary.Pairs = len(pairs)
	p.metrics.SetPairs(len(pairs))

	promptText, err := p.prompts.Build()
	if err != nil {
		return summary, fmt.Errorf("failed to build prompt: %w", err)
	}

	p.logger.Info("found image pairs",
		"root", root,
		"pairs", len(pairs),
		"backends", len(p.querier.Backends()),
		"workers", p.workers)

	bar := progressbar.NewOptions(len(pairs),
		progressbar.OptionSetDescription("Extending shots"),
		progressbar.OptionSetWriter(p.progress),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(p.workers)

	for i, pair := range pairs {
		if ctx.Err() != nil {
			break
		}
		work := models.WorkItem{Pair: pair, PairNum: i + 1, Total: len(pairs)}
		g.Go(func() error {
			out := p.processPair(ctx, promptText, work)

			mu.Lock()
			tally(&summary, out)
			mu.Unlock()

			_ = bar.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	_ = bar.Finish()

	p.logger.Info("run finished",
		"pairs", summary.Pairs,
		"reports", summary.Reports,
		"report_failures", summary.ReportFailures,
		"pair_failures", summary.PairFailures,
		"backend_calls", summary.BackendCalls,
		"backend_failures", summary.BackendFailures)

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// processPair queries all backends and writes the report for one pair.
// The report is written even when every backend failed, but not once the
// run is cancelled.
func (p *Processor) processPair(ctx context.Context, promptText string, work models.WorkItem) (out pairOutcome) {
	folder := work.Pair.Folder()
	logger := p.logger.With("folder", folder, "pair", fmt.Sprintf("%d/%d", work.PairNum, work.Total))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("pair processing panicked", "panic", r)
			out.panicked = true
		}
	}()

	logger.Debug("processing pair", "first", work.Pair.First, "last", work.Pair.Last)

	out.results = p.querier.Query(ctx, promptText, work.Pair)
	if err := ctx.Err(); err != nil {
		// partial answers must not replace a report from an earlier run
		logger.Warn("run cancelled, report not written", "error", err)
		return out
	}
	record := models.Answers(out.results)

	reportPath, err := p.storage.Write(folder, p.querier.Backends(), record)
	p.metrics.ObserveReport(err)
	if err != nil {
		logger.Error("report write failed", "error", err)
		out.reportErr = err
		return out
	}

	logger.Info("report written", "path", reportPath, "answers", len(record))
	out.written = true
	return out
}

// tally folds one pair outcome into the run summary
func tally(summary *models.RunSummary, out pairOutcome) {
	for _, r := range out.results {
		summary.BackendCalls++
		if !r.OK() {
			summary.BackendFailures++
		}
	}
	switch {
	case out.panicked:
		summary.PairFailures++
	case out.written:
		summary.Reports++
	case out.reportErr != nil:
		summary.ReportFailures++
	}
}
