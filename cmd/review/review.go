package review

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/revio-dev/revio/internal/analysis"
	"github.com/revio-dev/revio/internal/jobs"
	"github.com/revio-dev/revio/internal/report"
	"github.com/revio-dev/revio/pkg/shared/config"
	"github.com/revio-dev/revio/pkg/shared/files"
	"github.com/revio-dev/revio/pkg/shared/logger"
)

// RunOptionsReview holds the arguments for the review command.
type RunOptionsReview struct {
	Repo     string
	BaseSHA  string
	HeadSHA  string
	PRNumber int
	Mode     string
	Output   string
}

var (
	AppConfig          *config.Config
	reviewOptions      RunOptionsReview
	exampleReviewUsage = `  # Review the changes between two revisions of a local repository
  revio review --repo /path/to/repo --base main --head feature-branch

  # Review a remote change request in hybrid mode, writing the job record to a file
  revio review --repo https://github.com/acme/service --base 1a2b3c --head 4d5e6f --pr 42 --mode hybrid --output job.json

  # Static analyzers only
  revio review --repo /path/to/repo --base HEAD~1 --head HEAD --mode static_only`
)

var ReviewCmd = &cobra.Command{
	Use:                   "review --repo LOCATION --base REV --head REV [--pr NUMBER] [--mode MODE] [--output PATH]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleReviewUsage,
	Short:                 "Runs one review job over the changes between two revisions",
	RunE:                  runReviewCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runReviewCommand(cmd *cobra.Command, args []string) error {
	lg := logger.NewLogger(AppConfig, "core-review")

	if err := validateReviewArgs(&reviewOptions, args); err != nil {
		lg.Error("invalid review arguments", "error", err)
		return err
	}

	mode, err := analysis.ParseMode(reviewOptions.Mode)
	if err != nil {
		return err
	}

	store, err := jobs.NewFileStore(AppConfig.Revio.JobsFolder, AppConfig.Jobs.TTL, lg.Named("store"))
	if err != nil {
		return err
	}
	if _, err := store.Sweep(); err != nil {
		lg.Warn("job store sweep failed", "error", err)
	}

	engine, err := analysis.NewEngine(AppConfig, lg)
	if err != nil {
		return err
	}

	publisher := report.Multi{
		&report.LogPublisher{Logger: lg.Named("report")},
		&report.SarifPublisher{Folder: AppConfig.Revio.ResultsFolder, Logger: lg.Named("report")},
	}

	orch := jobs.NewOrchestrator(AppConfig, store, engine, publisher, lg)
	pool := jobs.NewPool(cmd.Context(), orch, AppConfig.Jobs.Workers, AppConfig.Jobs.QueueSize, lg.Named("pool"))

	job := jobs.Job{
		ID:       uuid.New().String(),
		Repo:     reviewOptions.Repo,
		BaseSHA:  reviewOptions.BaseSHA,
		HeadSHA:  reviewOptions.HeadSHA,
		PRNumber: reviewOptions.PRNumber,
		Mode:     mode,
	}
	if err := pool.Submit(job); err != nil {
		return err
	}
	pool.Close()

	rec, err := store.Get(job.ID)
	if err != nil {
		return fmt.Errorf("job record unavailable after run: %w", err)
	}
	if err := writeRecord(rec, reviewOptions.Output); err != nil {
		return err
	}
	if rec.State == jobs.StateError {
		return fmt.Errorf("review job %s failed: %s", rec.JobID, rec.Error)
	}
	return nil
}

// writeRecord prints the final job record as JSON, to stdout or to a file.
func writeRecord(rec *jobs.Record, output string) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling job record: %w", err)
	}
	if output == "" {
		fmt.Println(string(data))
		return nil
	}
	return files.WriteJsonFile(output, data)
}

func init() {
	ReviewCmd.Flags().StringVar(&reviewOptions.Repo, "repo", "", "repository location, a local path or clone URL")
	ReviewCmd.Flags().StringVar(&reviewOptions.BaseSHA, "base", "", "base revision of the change set")
	ReviewCmd.Flags().StringVar(&reviewOptions.HeadSHA, "head", "", "head revision of the change set")
	ReviewCmd.Flags().IntVar(&reviewOptions.PRNumber, "pr", 0, "change request number, when one exists")
	ReviewCmd.Flags().StringVar(&reviewOptions.Mode, "mode", "hybrid", "analysis mode: static_only, llm_only or hybrid")
	ReviewCmd.Flags().StringVarP(&reviewOptions.Output, "output", "o", "", "write the final job record to this file instead of stdout")
}
