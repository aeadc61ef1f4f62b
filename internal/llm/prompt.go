package llm

import (
	"fmt"
	"strings"

	"github.com/revio-dev/revio/internal/findings"
	"github.com/revio-dev/revio/internal/git"
)

// buildPrompt assembles the review request for one file: static analysis
// context when available, then the full post-change content or, failing
// that, the added lines with their line numbers.
func buildPrompt(diff git.FileDiff, staticContext []findings.Finding) string {
	var b strings.Builder

	b.WriteString("You are a senior code reviewer. Analyze the following code changes for bugs, security vulnerabilities, and code quality issues.\n\n")
	fmt.Fprintf(&b, "File: %s\n\n", diff.FilePath)

	if len(staticContext) > 0 {
		b.WriteString("Static Analysis Findings (verify these):\n")
		for _, f := range staticContext {
			fmt.Fprintf(&b, "- Line %d: %s (%s)\n", f.Line, f.Message, f.RuleID)
		}
		b.WriteString("\n")
	}

	if diff.NewContent != nil {
		fmt.Fprintf(&b, "File Content:\n```\n%s\n```\n", *diff.NewContent)
	} else {
		b.WriteString("Diff:\n")
		for _, line := range diff.AddedLines {
			fmt.Fprintf(&b, "+ %d: %s\n", line.Number, line.Text)
		}
	}

	b.WriteString(`
Instructions:
1. Focus on the CHANGED lines (marked with + in diff or context).
2. Verify any static analysis findings. If they are false positives, ignore them.
3. Look for logical errors, race conditions, and security flaws that static analysis might miss.
4. Provide your output STRICTLY in JSON format as a list of objects.
5. Do not include conversational text.

Format:
[
  {
    "rule_id": "short-id",
    "severity": "warning|error",
    "line": <line_number>,
    "message": "description",
    "suggestion": "optional fix code"
  }
]
`)

	return b.String()
}
