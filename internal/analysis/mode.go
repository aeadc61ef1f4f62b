package analysis

import "fmt"

// Mode selects which pipeline stages run for a review.
type Mode int

const (
	StaticOnly Mode = iota
	LLMOnly
	Hybrid
)

// ParseMode converts the wire representation of a mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "static_only":
		return StaticOnly, nil
	case "llm_only":
		return LLMOnly, nil
	case "hybrid":
		return Hybrid, nil
	default:
		return 0, fmt.Errorf("unknown analysis mode %q", s)
	}
}

func (m Mode) String() string {
	switch m {
	case StaticOnly:
		return "static_only"
	case LLMOnly:
		return "llm_only"
	case Hybrid:
		return "hybrid"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// RunsStatic reports whether the static stage is part of this mode.
func (m Mode) RunsStatic() bool {
	return m == StaticOnly || m == Hybrid
}

// RunsLLM reports whether the LLM stage is part of this mode.
func (m Mode) RunsLLM() bool {
	return m == LLMOnly || m == Hybrid
}

// AllModes lists every mode, in evaluation order.
func AllModes() []Mode {
	return []Mode{StaticOnly, LLMOnly, Hybrid}
}
