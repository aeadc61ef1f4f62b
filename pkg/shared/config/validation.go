package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/revio-dev/revio/pkg/shared/files"
)

const (
	defaultLLMEndpoint  = "https://api.anthropic.com/v1/messages"
	defaultLLMModel     = "claude-sonnet-4-20250514"
	defaultLLMKeyEnv    = "ANTHROPIC_API_KEY"
	defaultLLMMaxTokens = 2048
)

// ValidateConfig checks the global configuration and fills in defaults for
// unset directives. It must be called exactly once, right after loading.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := validateRevioConfig(cfg); err != nil {
		return fmt.Errorf("YAML global config: revio directive is invalid: %w", err)
	}
	if err := validateHTTPConfig(&cfg.HttpClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	if err := validateGitConfig(&cfg.GitClient); err != nil {
		return fmt.Errorf("YAML global config: git_client directive is invalid: %w", err)
	}
	if err := validateAnalyzersConfig(cfg); err != nil {
		return fmt.Errorf("YAML global config: analyzers directive is invalid: %w", err)
	}
	validateLLMConfig(&cfg.LLM)
	validateJobsConfig(&cfg.Jobs)
	return nil
}

func validateRevioConfig(cfg *Config) error {
	if err := updateHome(cfg); err != nil {
		return fmt.Errorf("failed to update home folder: %w", err)
	}
	if err := updateFolder(&cfg.Revio.JobsFolder, "REVIO_JOBS_FOLDER", "jobs", cfg); err != nil {
		return fmt.Errorf("failed to update jobs folder: %w", err)
	}
	if err := updateFolder(&cfg.Revio.ReposFolder, "REVIO_REPOS_FOLDER", "repos", cfg); err != nil {
		return fmt.Errorf("failed to update repos folder: %w", err)
	}
	if err := updateFolder(&cfg.Revio.ResultsFolder, "REVIO_RESULTS_FOLDER", "results", cfg); err != nil {
		return fmt.Errorf("failed to update results folder: %w", err)
	}
	return nil
}

func updateHome(cfg *Config) error {
	if env := os.Getenv("REVIO_HOME"); env != "" {
		cfg.Revio.HomeFolder = env
	}
	if cfg.Revio.HomeFolder != "" {
		expanded, err := files.ExpandPath(cfg.Revio.HomeFolder)
		if err != nil {
			return fmt.Errorf("unable to expand home folder %q: %w", cfg.Revio.HomeFolder, err)
		}
		cfg.Revio.HomeFolder = expanded
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("unable to resolve user home folder: %w", err)
	}
	cfg.Revio.HomeFolder = filepath.Join(home, ".revio")
	return nil
}

func updateFolder(folder *string, envVar, defaultName string, cfg *Config) error {
	if env := os.Getenv(envVar); env != "" {
		*folder = env
	}
	if *folder == "" {
		*folder = filepath.Join(cfg.Revio.HomeFolder, defaultName)
	}
	return nil
}

func validateHTTPConfig(httpConfig *HttpClient) error {
	if httpConfig.RetryCount < 0 || httpConfig.RetryCount > 20 {
		return fmt.Errorf("retry_count must be between 0 and 20: %d", httpConfig.RetryCount)
	}

	durations := map[string]time.Duration{
		"RetryMaxWaitTime": httpConfig.RetryMaxWaitTime,
		"RetryWaitTime":    httpConfig.RetryWaitTime,
	}
	for name, duration := range durations {
		if err := validateDuration(duration, name, 100*time.Second); err != nil {
			return err
		}
	}
	return validateDuration(httpConfig.Timeout, "Timeout", 1*time.Hour)
}

func validateGitConfig(gitConfig *GitClient) error {
	return validateDuration(gitConfig.Timeout, "timeout", 1*time.Hour)
}

func validateAnalyzersConfig(cfg *Config) error {
	if len(cfg.Analyzers) == 0 {
		cfg.Analyzers = DefaultAnalyzers()
		return nil
	}
	for i, a := range cfg.Analyzers {
		if a.Name == "" {
			return fmt.Errorf("analyzer #%d has no name", i+1)
		}
		if a.Command == "" {
			return fmt.Errorf("analyzer %q has no command", a.Name)
		}
	}
	return nil
}

func validateLLMConfig(llm *LLM) {
	llm.Endpoint = SetThen(llm.Endpoint, defaultLLMEndpoint)
	llm.Model = SetThen(llm.Model, defaultLLMModel)
	llm.APIKeyEnv = SetThen(llm.APIKeyEnv, defaultLLMKeyEnv)
	llm.MaxTokens = SetThen(llm.MaxTokens, defaultLLMMaxTokens)
	llm.Concurrency = SetThen(llm.Concurrency, 2)
	llm.Timeout = SetThen(llm.Timeout, 2*time.Minute)
}

func validateJobsConfig(jobs *Jobs) {
	jobs.Workers = SetThen(jobs.Workers, 2)
	jobs.QueueSize = SetThen(jobs.QueueSize, 16)
	jobs.TTL = SetThen(jobs.TTL, 24*time.Hour)
	jobs.MaxDiffFiles = SetThen(jobs.MaxDiffFiles, 200)
}

// DefaultAnalyzers returns the built-in static analyzer set, matching the
// tools the bundled output parsers understand.
func DefaultAnalyzers() []Analyzer {
	return []Analyzer{
		{
			Name:    "semgrep",
			Command: "semgrep",
			Args:    []string{"--config=p/security-audit", "--json", "--quiet"},
			Format:  "semgrep",
		},
		{
			Name:    "bandit",
			Command: "bandit",
			Args:    []string{"-r", "-f", "json", "-q"},
			Format:  "bandit",
		},
	}
}

func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %q: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%q duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}
