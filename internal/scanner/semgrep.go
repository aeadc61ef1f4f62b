package scanner

import (
	"encoding/json"
	"fmt"

	"github.com/revio-dev/revio/internal/findings"
)

type semgrepReport struct {
	Results []semgrepResult `json:"results"`
}

type semgrepResult struct {
	CheckID string `json:"check_id"`
	Path    string `json:"path"`
	Start   struct {
		Line int `json:"line"`
	} `json:"start"`
	End struct {
		Line int `json:"line"`
	} `json:"end"`
	Extra struct {
		Message  string `json:"message"`
		Severity string `json:"severity"`
		Fix      string `json:"fix"`
	} `json:"extra"`
}

// parseSemgrep converts semgrep --json output into findings.
func parseSemgrep(stdout []byte, repoPath string) ([]findings.Finding, error) {
	var report semgrepReport
	if err := json.Unmarshal(stdout, &report); err != nil {
		return nil, fmt.Errorf("semgrep report: %w", err)
	}

	result := make([]findings.Finding, 0, len(report.Results))
	for _, r := range report.Results {
		ruleID := r.CheckID
		if ruleID == "" {
			ruleID = "unknown"
		}
		line := r.Start.Line
		if line < 1 {
			line = 1
		}
		message := r.Extra.Message
		if message == "" {
			message = "Potential issue found"
		}

		result = append(result, findings.Finding{
			ToolName:   "semgrep",
			RuleID:     ruleID,
			Severity:   semgrepSeverity(r.Extra.Severity),
			FilePath:   relativePath(r.Path, repoPath),
			Line:       line,
			EndLine:    r.End.Line,
			Message:    message,
			Suggestion: r.Extra.Fix,
			Confidence: 1.0,
		})
	}
	return result, nil
}

func semgrepSeverity(level string) findings.Severity {
	switch level {
	case "ERROR":
		return findings.SeverityError
	case "INFO":
		return findings.SeverityInfo
	default:
		return findings.SeverityWarning
	}
}
