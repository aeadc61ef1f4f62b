package jobs

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/revio-dev/revio/internal/analysis"
	"github.com/revio-dev/revio/internal/findings"
	"github.com/revio-dev/revio/internal/git"
	"github.com/revio-dev/revio/pkg/shared/config"
	sharederrors "github.com/revio-dev/revio/pkg/shared/errors"
)

// Analyzer is the engine contract the orchestrator depends on.
type Analyzer interface {
	Analyze(ctx context.Context, repoPath string, diffs []git.FileDiff, mode analysis.Mode) []findings.Finding
}

// Orchestrator drives one job through its lifecycle: queued, running, then
// done or error. Every transition is persisted before work continues, so a
// crash leaves behind the last state actually reached.
type Orchestrator struct {
	cfg       *config.Config
	store     Store
	engine    Analyzer
	publisher Publisher
	logger    hclog.Logger

	acquire   func(ctx context.Context, cfg *config.Config, logger hclog.Logger, repo, headRev, jobID string) (*git.Workspace, error)
	changeSet func(repoPath, baseRev, headRev string) ([]git.FileDiff, error)
}

func NewOrchestrator(cfg *config.Config, store Store, engine Analyzer, publisher Publisher, logger hclog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		store:     store,
		engine:    engine,
		publisher: publisher,
		logger:    logger,
		acquire:   git.Acquire,
		changeSet: git.ChangeSet,
	}
}

// Run executes a job to completion. The returned error mirrors what was
// written into the record; a nil return means the job reached done.
func (o *Orchestrator) Run(ctx context.Context, job Job) error {
	rec := NewRecord(job)
	o.snapshot(rec)

	started := time.Now().UTC()
	rec.State = StateRunning
	rec.StartedAt = &started
	o.snapshot(rec)

	o.logger.Info("job started", "job_id", job.ID, "repo", job.Repo, "mode", job.Mode.String())

	ws, err := o.acquire(ctx, o.cfg, o.logger.Named("git"), job.Repo, job.HeadSHA, job.ID)
	defer ws.Release()
	if err != nil {
		return o.fail(rec, err)
	}

	diffs, err := o.changeSet(ws.Path, job.BaseSHA, job.HeadSHA)
	if err != nil {
		return o.fail(rec, err)
	}
	if max := o.cfg.Jobs.MaxDiffFiles; max > 0 && len(diffs) > max {
		o.logger.Warn("change set truncated", "job_id", job.ID, "files", len(diffs), "limit", max)
		diffs = diffs[:max]
	}
	o.logger.Debug("change set parsed", "job_id", job.ID, "files", len(diffs))
	o.snapshot(rec)

	found := o.engine.Analyze(ctx, ws.Path, diffs, job.Mode)
	rec.FindingsCount = len(found)
	rec.Findings = findings.Summarize(found)
	o.snapshot(rec)

	if o.publisher != nil {
		if err := o.publisher.Publish(ctx, rec, found); err != nil {
			return o.fail(rec, err)
		}
	}

	completed := time.Now().UTC()
	rec.State = StateDone
	rec.CompletedAt = &completed
	o.snapshot(rec)

	o.logger.Info("job completed", "job_id", job.ID, "findings", rec.FindingsCount)
	return nil
}

// fail marks the record terminal with the error message and propagates the
// error to the caller.
func (o *Orchestrator) fail(rec *Record, err error) error {
	completed := time.Now().UTC()
	rec.State = StateError
	rec.CompletedAt = &completed
	rec.Error = err.Error()
	o.snapshot(rec)
	o.logger.Error("job failed", "job_id", rec.JobID, "error", err)
	return err
}

// snapshot persists the current record. Store failures must not take down a
// job that is otherwise progressing, so they are logged and swallowed.
func (o *Orchestrator) snapshot(rec *Record) {
	if err := o.store.Save(rec); err != nil {
		o.logger.Warn("job state snapshot failed", "error", sharederrors.NewJobInfrastructureError(rec.JobID, err))
	}
}
