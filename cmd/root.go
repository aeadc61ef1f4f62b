package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	evalcmd "github.com/revio-dev/revio/cmd/eval"
	metricscmd "github.com/revio-dev/revio/cmd/metrics"
	reviewcmd "github.com/revio-dev/revio/cmd/review"
	"github.com/revio-dev/revio/cmd/version"
	"github.com/revio-dev/revio/pkg/shared/config"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "revio [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Revio reviews code changes with static analyzers and an LLM reviewer.",
		Long: `Revio analyzes the changes between two revisions of a repository, combining
classic static analyzers with an LLM reviewer, and reports only findings that
land on lines the change actually touched.
`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(reviewcmd.ReviewCmd)
	rootCmd.AddCommand(evalcmd.EvalCmd)
	rootCmd.AddCommand(metricscmd.MetricsCmd)
	rootCmd.AddCommand(version.NewVersionCmd())
}

func Execute() error {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return err
	}
	return nil
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	reviewcmd.Init(AppConfig)
	evalcmd.Init(AppConfig)
	metricscmd.Init(AppConfig)
	version.Init(AppConfig)
}
