package analysis

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/revio-dev/revio/internal/findings"
	"github.com/revio-dev/revio/internal/git"
	"github.com/revio-dev/revio/internal/llm"
	"github.com/revio-dev/revio/internal/scanner"
	"github.com/revio-dev/revio/pkg/shared"
	"github.com/revio-dev/revio/pkg/shared/config"
)

// FileReviewer is the LLM stage contract: review one file diff with optional
// static findings as context.
type FileReviewer interface {
	ReviewFile(ctx context.Context, diff git.FileDiff, staticContext []findings.Finding) ([]findings.Finding, error)
}

// Engine orchestrates the analysis stages for one change set. Stage failures
// are contained: a broken adapter or a bad per-file LLM call contributes zero
// findings and the rest of the run continues.
type Engine struct {
	adapters       []scanner.Adapter
	reviewer       FileReviewer
	llmConcurrency int
	logger         hclog.Logger
}

// NewEngine wires the engine from configuration: one adapter per configured
// analyzer plus the LLM reviewer.
func NewEngine(cfg *config.Config, logger hclog.Logger) (*Engine, error) {
	adapters, err := scanner.NewAdapters(cfg, logger.Named("scanner"))
	if err != nil {
		return nil, err
	}
	return New(adapters, llm.NewReviewer(cfg, logger.Named("llm")), cfg.LLM.Concurrency, logger), nil
}

// New builds an engine from explicit stage components.
func New(adapters []scanner.Adapter, reviewer FileReviewer, llmConcurrency int, logger hclog.Logger) *Engine {
	if llmConcurrency < 1 {
		llmConcurrency = 1
	}
	return &Engine{
		adapters:       adapters,
		reviewer:       reviewer,
		llmConcurrency: llmConcurrency,
		logger:         logger,
	}
}

// Analyze runs the stages selected by mode and returns the aggregated
// findings: relevance-filtered static findings first (adapter-registration
// order), then LLM findings in file-iteration order. Overlapping findings on
// the same line are both retained; the evaluation harness measures overlap.
func (e *Engine) Analyze(ctx context.Context, repoPath string, diffs []git.FileDiff, mode Mode) []findings.Finding {
	var all []findings.Finding
	var staticFindings []findings.Finding

	if mode.RunsStatic() {
		staticFindings = FilterRelevant(e.runStaticStage(ctx, repoPath), diffs)
		all = append(all, staticFindings...)
		e.logger.Info("static stage complete", "findings", len(staticFindings))
	}

	if mode.RunsLLM() {
		llmFindings := e.runLLMStage(ctx, diffs, staticFindings, mode)
		all = append(all, llmFindings...)
		e.logger.Info("llm stage complete", "findings", len(llmFindings))
	}

	return all
}

// runStaticStage invokes every adapter concurrently and concatenates their
// raw output in registration order. One adapter failing is logged and
// contributes nothing.
func (e *Engine) runStaticStage(ctx context.Context, repoPath string) []findings.Finding {
	perAdapter := make([][]findings.Finding, len(e.adapters))

	shared.ForEveryWithBoundedGoroutines(len(e.adapters), len(e.adapters), func(i int) {
		adapter := e.adapters[i]
		result, err := adapter.Run(ctx, repoPath)
		if err != nil {
			e.logger.Warn("static analyzer failed", "analyzer", adapter.Name(), "error", err)
			return
		}
		perAdapter[i] = result
	})

	var combined []findings.Finding
	for _, result := range perAdapter {
		combined = append(combined, result...)
	}
	return combined
}

// runLLMStage reviews every non-deleted file that has added lines or
// retrievable content. Concurrency is capped to respect model rate limits;
// output preserves file-iteration order regardless of completion order.
func (e *Engine) runLLMStage(ctx context.Context, diffs []git.FileDiff, staticFindings []findings.Finding, mode Mode) []findings.Finding {
	var reviewable []git.FileDiff
	for _, d := range diffs {
		if d.ChangeType == git.ChangeDeleted || !d.Reviewable() {
			continue
		}
		reviewable = append(reviewable, d)
	}

	contextByFile := make(map[string][]findings.Finding)
	if mode == Hybrid {
		for _, f := range staticFindings {
			contextByFile[f.FilePath] = append(contextByFile[f.FilePath], f)
		}
	}

	perFile := make([][]findings.Finding, len(reviewable))
	shared.ForEveryWithBoundedGoroutines(e.llmConcurrency, len(reviewable), func(i int) {
		d := reviewable[i]
		result, err := e.reviewer.ReviewFile(ctx, d, contextByFile[d.FilePath])
		if err != nil {
			e.logger.Warn("llm review failed, skipping file", "file", d.FilePath, "error", err)
			return
		}
		perFile[i] = result
	})

	var combined []findings.Finding
	for _, result := range perFile {
		combined = append(combined, result...)
	}
	return combined
}
