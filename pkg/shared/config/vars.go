package config

import (
	"time"
)

type Config struct {
	Logger     Logger     `yaml:"logger"`
	HttpClient HttpClient `yaml:"http_client"`
	Revio      Revio      `yaml:"revio"`
	GitClient  GitClient  `yaml:"git_client"`
	Analyzers  []Analyzer `yaml:"analyzers"`
	LLM        LLM        `yaml:"llm"`
	Jobs       Jobs       `yaml:"jobs"`
}

type Logger struct {
	Level string `yaml:"level"`
}

type HttpClient struct {
	Debug            bool            `yaml:"debug"`
	RetryCount       int             `yaml:"retry_count"`
	RetryWaitTime    time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration   `yaml:"retry_max_wait_time"`
	Timeout          time.Duration   `yaml:"timeout"`
	TlsClientConfig  TlsClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

type TlsClientConfig struct {
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// Revio holds home folder locations. Every folder can be overridden by an
// environment variable, see validation.go.
type Revio struct {
	HomeFolder    string `yaml:"home_folder"`
	JobsFolder    string `yaml:"jobs_folder"`
	ReposFolder   string `yaml:"repos_folder"`
	ResultsFolder string `yaml:"results_folder"`
}

type GitClient struct {
	Timeout time.Duration `yaml:"timeout"`
	Token   string        `yaml:"token"`
}

// Analyzer describes one external static analyzer invocation. The command is
// executed with the repository path appended as the last argument and must
// print machine-readable JSON to stdout.
type Analyzer struct {
	Name    string   `yaml:"name"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Format  string   `yaml:"format"`
}

type LLM struct {
	Endpoint    string        `yaml:"endpoint"`
	Model       string        `yaml:"model"`
	APIKeyEnv   string        `yaml:"api_key_env"`
	MaxTokens   int           `yaml:"max_tokens"`
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
}

type Jobs struct {
	Workers      int           `yaml:"workers"`
	QueueSize    int           `yaml:"queue_size"`
	TTL          time.Duration `yaml:"ttl"`
	MaxDiffFiles int           `yaml:"max_diff_files"`
}
