// Package report hands finished review results to downstream consumers.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/revio-dev/revio/internal/findings"
	"github.com/revio-dev/revio/internal/jobs"
	"github.com/revio-dev/revio/pkg/shared/files"
)

// Multi fans one result out to several publishers. The first failure stops
// the chain; reporting is part of the job and a lost artifact is a lost job.
type Multi []jobs.Publisher

func (m Multi) Publish(ctx context.Context, rec *jobs.Record, found []findings.Finding) error {
	for _, p := range m {
		if err := p.Publish(ctx, rec, found); err != nil {
			return err
		}
	}
	return nil
}

// LogPublisher writes a per-finding summary to the log. Useful on its own
// for local runs and as a tee next to artifact publishers.
type LogPublisher struct {
	Logger hclog.Logger
}

func (p *LogPublisher) Publish(_ context.Context, rec *jobs.Record, found []findings.Finding) error {
	for _, f := range found {
		p.Logger.Info("finding",
			"job_id", rec.JobID,
			"tool", f.ToolName,
			"rule", f.RuleID,
			"severity", string(f.Severity),
			"file", f.FilePath,
			"line", f.Line,
			"message", f.Message,
		)
	}
	p.Logger.Info("review finished", "job_id", rec.JobID, "repo", rec.Repo, "findings", len(found))
	return nil
}

// SarifPublisher writes one SARIF 2.1.0 artifact per job into the results
// folder, named <job_id>.sarif.
type SarifPublisher struct {
	Folder string
	Logger hclog.Logger
}

func (p *SarifPublisher) Publish(_ context.Context, rec *jobs.Record, found []findings.Finding) error {
	if err := files.CreateFolderIfNotExists(p.Folder); err != nil {
		return fmt.Errorf("preparing results folder: %w", err)
	}

	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("revio", "https://github.com/revio-dev/revio")
	seen := map[string]bool{}
	for _, f := range found {
		if !seen[f.RuleID] {
			run.AddRule(f.RuleID).
				WithDescription(f.Message).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{
					Level: toSarifLevel(f.Severity),
				})
			seen[f.RuleID] = true
		}

		region := sarif.NewRegion().WithStartLine(f.Line)
		if f.EndLine > f.Line {
			region = region.WithEndLine(f.EndLine)
		}
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.FilePath)).
				WithRegion(region),
		)

		result := sarif.NewRuleResult(f.RuleID).
			WithMessage(sarif.NewTextMessage(f.Message)).
			WithLevel(toSarifLevel(f.Severity)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	report.AddRun(run)

	outputFilePath := filepath.Join(p.Folder, rec.JobID+".sarif")
	file, err := os.OpenFile(outputFilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("error writing SARIF report: %w", err)
	}
	defer func() { _ = file.Close() }()
	if err := report.PrettyWrite(file); err != nil {
		return err
	}

	p.Logger.Info("SARIF report written", "path", outputFilePath, "results", len(found))
	return nil
}

func toSarifLevel(severity findings.Severity) string {
	switch severity {
	case findings.SeverityError:
		return "error"
	case findings.SeverityInfo:
		return "note"
	default:
		return "warning"
	}
}
