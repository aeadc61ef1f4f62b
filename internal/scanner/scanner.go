package scanner

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/revio-dev/revio/internal/findings"
	"github.com/revio-dev/revio/pkg/shared/config"
	sharederrors "github.com/revio-dev/revio/pkg/shared/errors"
)

// Adapter runs one external static analyzer over a repository checkout and
// converts its output into the common finding shape.
type Adapter interface {
	Name() string
	Run(ctx context.Context, repoPath string) ([]findings.Finding, error)
}

// parseFunc converts one tool's JSON stdout into findings. repoPath is used
// to relativize reported file paths.
type parseFunc func(stdout []byte, repoPath string) ([]findings.Finding, error)

var outputParsers = map[string]parseFunc{
	"semgrep": parseSemgrep,
	"bandit":  parseBandit,
}

// CommandAdapter invokes a fixed external command with the repository path
// appended and expects machine-readable JSON on stdout.
type CommandAdapter struct {
	name    string
	command string
	args    []string
	parse   parseFunc
	logger  hclog.Logger
}

// NewAdapters builds one adapter per configured analyzer, in configuration
// order. The order is significant: the engine concatenates stage output in
// adapter-registration order.
func NewAdapters(cfg *config.Config, logger hclog.Logger) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(cfg.Analyzers))
	for _, a := range cfg.Analyzers {
		format := a.Format
		if format == "" {
			format = a.Name
		}
		parse, ok := outputParsers[format]
		if !ok {
			return nil, fmt.Errorf("no output parser registered for format %q (analyzer %q)", format, a.Name)
		}
		adapters = append(adapters, &CommandAdapter{
			name:    a.Name,
			command: a.Command,
			args:    a.Args,
			parse:   parse,
			logger:  logger.Named(a.Name),
		})
	}
	return adapters, nil
}

func (a *CommandAdapter) Name() string {
	return a.name
}

// Run executes the analyzer. A non-zero exit status alone is not a failure:
// most analyzers use the exit code to signal "issues found". Only a process
// that produced no stdout at all, or stdout that does not parse, fails.
func (a *CommandAdapter) Run(ctx context.Context, repoPath string) ([]findings.Finding, error) {
	args := append(append([]string{}, a.args...), repoPath)
	cmd := exec.CommandContext(ctx, a.command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	a.logger.Debug("running analyzer", "command", a.command, "path", repoPath)
	runErr := cmd.Run()

	if stdout.Len() == 0 {
		if runErr != nil {
			return nil, sharederrors.NewRecoverableToolError(a.name,
				fmt.Errorf("process failed with no output: %w (stderr: %s)", runErr, strings.TrimSpace(stderr.String())))
		}
		a.logger.Debug("analyzer produced no output", "command", a.command)
		return nil, nil
	}

	result, err := a.parse(stdout.Bytes(), repoPath)
	if err != nil {
		return nil, sharederrors.NewRecoverableToolError(a.name, fmt.Errorf("unparseable output: %w", err))
	}

	a.logger.Info("analyzer finished", "findings", len(result))
	return result, nil
}

// relativePath strips the repository prefix from a reported file path so
// findings line up with diff paths.
func relativePath(path, repoPath string) string {
	if repoPath == "" || !strings.HasPrefix(path, repoPath) {
		return path
	}
	rel, err := filepath.Rel(repoPath, path)
	if err != nil {
		return path
	}
	return rel
}
