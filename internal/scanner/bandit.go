package scanner

import (
	"encoding/json"
	"fmt"

	"github.com/revio-dev/revio/internal/findings"
)

type banditReport struct {
	Results []banditResult `json:"results"`
}

type banditResult struct {
	Filename        string `json:"filename"`
	TestID          string `json:"test_id"`
	IssueSeverity   string `json:"issue_severity"`
	IssueConfidence string `json:"issue_confidence"`
	IssueText       string `json:"issue_text"`
	LineNumber      int    `json:"line_number"`
}

// parseBandit converts bandit -f json output into findings.
func parseBandit(stdout []byte, repoPath string) ([]findings.Finding, error) {
	var report banditReport
	if err := json.Unmarshal(stdout, &report); err != nil {
		return nil, fmt.Errorf("bandit report: %w", err)
	}

	result := make([]findings.Finding, 0, len(report.Results))
	for _, r := range report.Results {
		ruleID := r.TestID
		if ruleID == "" {
			ruleID = "unknown"
		}
		severity := findings.SeverityWarning
		if r.IssueSeverity == "HIGH" {
			severity = findings.SeverityError
		}
		confidence := 0.5
		if r.IssueConfidence == "HIGH" {
			confidence = 1.0
		}
		line := r.LineNumber
		if line < 1 {
			line = 1
		}
		message := r.IssueText
		if message == "" {
			message = "Security issue found"
		}

		result = append(result, findings.Finding{
			ToolName:   "bandit",
			RuleID:     ruleID,
			Severity:   severity,
			FilePath:   relativePath(r.Filename, repoPath),
			Line:       line,
			Message:    message,
			Confidence: confidence,
		})
	}
	return result, nil
}
