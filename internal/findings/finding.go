package findings

// Severity is the level reported by the originating tool.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ParseSeverity maps free-form tool output to a known severity,
// defaulting to warning.
func ParseSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityInfo, SeverityWarning, SeverityError:
		return Severity(s)
	default:
		return SeverityWarning
	}
}

// Finding is one issue raised by any analyzer, static or LLM.
type Finding struct {
	ToolName   string   `json:"tool_name"`
	RuleID     string   `json:"rule_id"`
	Severity   Severity `json:"severity"`
	FilePath   string   `json:"file_path"`
	Line       int      `json:"line"`
	EndLine    int      `json:"end_line,omitempty"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
	Confidence float64  `json:"confidence"`
}

// FindingSummary is the compact shape carried in job records.
type FindingSummary struct {
	RuleID   string `json:"rule_id"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
}

// ToSummary converts a finding to its summary form.
func (f Finding) ToSummary() FindingSummary {
	return FindingSummary{
		RuleID:   f.RuleID,
		Severity: string(f.Severity),
		Message:  f.Message,
		FilePath: f.FilePath,
		Line:     f.Line,
	}
}

// Summarize converts a finding list into summaries, preserving order.
func Summarize(list []Finding) []FindingSummary {
	summaries := make([]FindingSummary, 0, len(list))
	for _, f := range list {
		summaries = append(summaries, f.ToSummary())
	}
	return summaries
}
