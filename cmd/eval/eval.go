package eval

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/revio-dev/revio/internal/analysis"
	"github.com/revio-dev/revio/internal/eval"
	"github.com/revio-dev/revio/pkg/shared/config"
	"github.com/revio-dev/revio/pkg/shared/files"
	"github.com/revio-dev/revio/pkg/shared/logger"
)

// RunOptionsEval holds the arguments for the eval command.
type RunOptionsEval struct {
	InputFile string
	Output    string
}

var (
	AppConfig        *config.Config
	evalOptions      RunOptionsEval
	exampleEvalUsage = `  # Evaluate every analysis mode over a set of historical change sets
  revio eval --input-file prs.json

  # Write the result rows to a specific file
  revio eval --input-file prs.json --output /tmp/eval-results.jsonl`
)

var EvalCmd = &cobra.Command{
	Use:                   "eval --input-file/-i PATH [--output/-o PATH]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleEvalUsage,
	Short:                 "Runs every analysis mode over a fixed set of change sets and records the results",
	RunE:                  runEvalCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runEvalCommand(cmd *cobra.Command, args []string) error {
	lg := logger.NewLogger(AppConfig, "core-eval")

	if len(args) != 0 {
		return fmt.Errorf("invalid argument(s) received, the eval command takes flags only")
	}
	if evalOptions.InputFile == "" {
		return fmt.Errorf("the 'input-file' flag must be specified")
	}

	prs, err := eval.LoadPullRequests(evalOptions.InputFile)
	if err != nil {
		lg.Error("failed to load evaluation set", "error", err)
		return err
	}
	if len(prs) == 0 {
		return fmt.Errorf("evaluation set %s is empty", evalOptions.InputFile)
	}

	engine, err := analysis.NewEngine(AppConfig, lg)
	if err != nil {
		return err
	}

	output := evalOptions.Output
	if output == "" {
		if err := files.CreateFolderIfNotExists(AppConfig.Revio.ResultsFolder); err != nil {
			return err
		}
		output = filepath.Join(AppConfig.Revio.ResultsFolder, "eval-results.jsonl")
	}

	lg.Info("evaluation starting", "pull_requests", len(prs), "modes", len(analysis.AllModes()))
	results := eval.NewRunner(engine, lg).RunAll(cmd.Context(), prs)

	if err := eval.WriteResults(output, results); err != nil {
		lg.Error("failed to write results", "error", err)
		return err
	}
	lg.Info("evaluation finished", "rows", len(results), "output", output)
	return nil
}

func init() {
	EvalCmd.Flags().StringVarP(&evalOptions.InputFile, "input-file", "i", "", "JSON file listing the change sets to evaluate")
	EvalCmd.Flags().StringVarP(&evalOptions.Output, "output", "o", "", "where to write the JSONL result rows (default is eval-results.jsonl in the results folder)")
}
