package findings

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Source identifies which analysis mode produced a normalized finding.
type Source string

const (
	SourceStatic Source = "static"
	SourceLLM    Source = "llm"
	SourceHybrid Source = "hybrid"
)

// SeverityBand is the coarse severity used for cross-mode comparison.
type SeverityBand string

const (
	BandLow    SeverityBand = "LOW"
	BandMedium SeverityBand = "MEDIUM"
	BandHigh   SeverityBand = "HIGH"
)

// NormalizedFinding is a read-only projection of a Finding with a stable
// identifier and coarse severity/category bands, used by the evaluation
// harness and downstream consumers.
type NormalizedFinding struct {
	ID           string       `json:"id"`
	Source       Source       `json:"source"`
	File         string       `json:"file"`
	Line         int          `json:"line"`
	Severity     SeverityBand `json:"severity"`
	Category     Category     `json:"category"`
	Message      string       `json:"message"`
	SuggestedFix string       `json:"suggested_fix,omitempty"`
}

// Normalize converts a Finding to its normalized form. The id is derived
// from the (file, line, rule) triple only, so the same triple always maps
// to the same id regardless of source or wording.
func Normalize(f Finding, source Source) NormalizedFinding {
	return NormalizedFinding{
		ID:           FindingID(f.FilePath, f.Line, f.RuleID),
		Source:       source,
		File:         f.FilePath,
		Line:         f.Line,
		Severity:     severityBand(f.Severity),
		Category:     InferCategory(f.RuleID, f.ToolName, f.Message),
		Message:      f.Message,
		SuggestedFix: f.Suggestion,
	}
}

// NormalizeAll maps every finding, preserving order.
func NormalizeAll(list []Finding, source Source) []NormalizedFinding {
	normalized := make([]NormalizedFinding, 0, len(list))
	for _, f := range list {
		normalized = append(normalized, Normalize(f, source))
	}
	return normalized
}

// FindingID returns the first 12 hex characters of the SHA-256 digest of
// "<file>:<line>:<rule>".
func FindingID(file string, line int, ruleID string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", file, line, ruleID)))
	return hex.EncodeToString(sum[:])[:12]
}

func severityBand(s Severity) SeverityBand {
	switch s {
	case SeverityInfo:
		return BandLow
	case SeverityError:
		return BandHigh
	default:
		return BandMedium
	}
}
