package findings

import "strings"

// Category is the coarse issue class assigned during normalization.
type Category string

const (
	CategorySecurity    Category = "security"
	CategoryBug         Category = "bug"
	CategoryStyle       Category = "style"
	CategoryPerformance Category = "performance"
	CategoryOther       Category = "other"
)

// securityTools always produce security findings, whatever the rule text says.
var securityTools = map[string]bool{
	"semgrep": true,
	"bandit":  true,
}

var securityKeywords = []string{
	"security", "vulnerability", "injection", "xss", "csrf", "auth",
	"password", "token", "secret", "crypto", "sql", "command",
	"hardcoded", "unsafe", "exploit",
}

var performanceKeywords = []string{
	"performance", "slow", "inefficient", "optimize", "cache",
	"memory", "cpu", "loop", "n+1", "query",
}

var styleKeywords = []string{
	"style", "format", "lint", "convention", "naming", "whitespace",
	"complexity", "unused", "import",
}

var bugKeywords = []string{
	"error", "exception", "null", "undefined", "race", "deadlock",
	"leak", "overflow", "underflow", "assert", "crash",
}

// InferCategory assigns a category from rule id, tool name, and message.
// Checks run in a fixed priority order; the first match wins.
func InferCategory(ruleID, toolName, message string) Category {
	rule := strings.ToLower(ruleID)
	msg := strings.ToLower(message)

	if securityTools[toolName] || containsAny(rule, msg, securityKeywords) {
		return CategorySecurity
	}
	if containsAny(rule, msg, performanceKeywords) {
		return CategoryPerformance
	}
	if containsAny(rule, msg, styleKeywords) {
		return CategoryStyle
	}
	if containsAny(rule, msg, bugKeywords) {
		return CategoryBug
	}
	return CategoryOther
}

func containsAny(rule, msg string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(rule, kw) || strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}
