// Package eval runs the offline evaluation harness: every analysis mode over
// a fixed set of historical change sets, producing comparable result rows.
package eval

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/revio-dev/revio/internal/analysis"
	"github.com/revio-dev/revio/internal/findings"
	"github.com/revio-dev/revio/internal/git"
)

// PullRequest identifies one historical change set to evaluate against.
type PullRequest struct {
	PRID     string `json:"pr_id"`
	RepoPath string `json:"repo_path"`
	BaseSHA  string `json:"base_sha"`
	HeadSHA  string `json:"head_sha"`
}

// Result is one evaluation row: one pull request analyzed in one mode.
// A failed run keeps its row, with empty findings and the error recorded,
// so mode comparisons stay aligned.
type Result struct {
	PRID         string                       `json:"pr_id"`
	AnalysisMode string                       `json:"analysis_mode"`
	Findings     []findings.NormalizedFinding `json:"findings"`
	LatencyMS    int64                        `json:"latency_ms"`
	Timestamp    string                       `json:"timestamp"`
	Error        string                       `json:"error,omitempty"`
}

// Analyzer is the engine contract the harness depends on.
type Analyzer interface {
	Analyze(ctx context.Context, repoPath string, diffs []git.FileDiff, mode analysis.Mode) []findings.Finding
}

// Runner drives the evaluation matrix.
type Runner struct {
	engine Analyzer
	logger hclog.Logger

	changeSet func(repoPath, baseRev, headRev string) ([]git.FileDiff, error)
}

func NewRunner(engine Analyzer, logger hclog.Logger) *Runner {
	return &Runner{
		engine:    engine,
		logger:    logger,
		changeSet: git.ChangeSet,
	}
}

// RunAll evaluates every pull request under every mode and returns the rows
// in (pull request, mode) order.
func (r *Runner) RunAll(ctx context.Context, prs []PullRequest) []Result {
	results := make([]Result, 0, len(prs)*len(analysis.AllModes()))
	for _, pr := range prs {
		for _, mode := range analysis.AllModes() {
			row := r.runOne(ctx, pr, mode)
			r.logger.Info("evaluation row complete",
				"pr_id", pr.PRID, "mode", mode.String(),
				"findings", len(row.Findings), "latency_ms", row.LatencyMS, "error", row.Error)
			results = append(results, row)
		}
	}
	return results
}

func (r *Runner) runOne(ctx context.Context, pr PullRequest, mode analysis.Mode) Result {
	row := Result{
		PRID:         pr.PRID,
		AnalysisMode: mode.String(),
		Findings:     []findings.NormalizedFinding{},
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}

	start := time.Now()
	diffs, err := r.changeSet(pr.RepoPath, pr.BaseSHA, pr.HeadSHA)
	if err != nil {
		row.LatencyMS = time.Since(start).Milliseconds()
		row.Error = err.Error()
		return row
	}

	found := r.engine.Analyze(ctx, pr.RepoPath, diffs, mode)
	row.LatencyMS = time.Since(start).Milliseconds()
	row.Findings = findings.NormalizeAll(found, modeSource(mode))
	return row
}

func modeSource(mode analysis.Mode) findings.Source {
	switch mode {
	case analysis.StaticOnly:
		return findings.SourceStatic
	case analysis.LLMOnly:
		return findings.SourceLLM
	default:
		return findings.SourceHybrid
	}
}

// LoadPullRequests reads the evaluation set from a JSON file containing a
// list of pull request entries.
func LoadPullRequests(path string) ([]PullRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pull request list: %w", err)
	}
	var prs []PullRequest
	if err := json.Unmarshal(data, &prs); err != nil {
		return nil, fmt.Errorf("decoding pull request list %s: %w", path, err)
	}
	return prs, nil
}

// WriteResults writes the rows as JSON lines, one row per line, replacing
// any previous file.
func WriteResults(path string, results []Result) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating results file: %w", err)
	}
	defer func() { _ = file.Close() }()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	for _, row := range results {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("encoding result row: %w", err)
		}
	}
	return w.Flush()
}

// LoadResults reads rows back from a JSON lines file.
func LoadResults(path string) ([]Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening results file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var results []Result
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var row Result
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("decoding result row: %w", err)
		}
		results = append(results, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading results file: %w", err)
	}
	return results, nil
}
