package metrics

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/revio-dev/revio/internal/eval"
	"github.com/revio-dev/revio/pkg/shared/config"
	"github.com/revio-dev/revio/pkg/shared/logger"
)

// RunOptionsMetrics holds the arguments for the metrics command.
type RunOptionsMetrics struct {
	ResultsFile string
	TruthFile   string
}

var (
	AppConfig           *config.Config
	metricsOptions      RunOptionsMetrics
	exampleMetricsUsage = `  # Score evaluation rows against labeled ground truth
  revio metrics --results eval-results.jsonl --truth ground-truth.json`
)

var MetricsCmd = &cobra.Command{
	Use:                   "metrics --results PATH --truth PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleMetricsUsage,
	Short:                 "Scores evaluation results against ground truth, per analysis mode",
	RunE:                  runMetricsCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runMetricsCommand(cmd *cobra.Command, args []string) error {
	lg := logger.NewLogger(AppConfig, "core-metrics")

	if len(args) != 0 {
		return fmt.Errorf("invalid argument(s) received, the metrics command takes flags only")
	}
	if metricsOptions.ResultsFile == "" {
		return fmt.Errorf("the 'results' flag must be specified")
	}
	if metricsOptions.TruthFile == "" {
		return fmt.Errorf("the 'truth' flag must be specified")
	}

	results, err := eval.LoadResults(metricsOptions.ResultsFile)
	if err != nil {
		lg.Error("failed to load evaluation results", "error", err)
		return err
	}
	truth, err := eval.LoadGroundTruth(metricsOptions.TruthFile)
	if err != nil {
		lg.Error("failed to load ground truth", "error", err)
		return err
	}

	metrics := eval.ComputeMetrics(results, truth)
	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling metrics: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	MetricsCmd.Flags().StringVar(&metricsOptions.ResultsFile, "results", "", "JSONL file of evaluation result rows")
	MetricsCmd.Flags().StringVar(&metricsOptions.TruthFile, "truth", "", "JSON file of labeled issues per change set")
}
