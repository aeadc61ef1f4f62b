package jobs

import (
	"context"
	"time"

	"github.com/revio-dev/revio/internal/analysis"
	"github.com/revio-dev/revio/internal/findings"
)

// State is the lifecycle position of a job. Done and Error are terminal; a
// record is never mutated after reaching either.
type State string

const (
	StateQueued  State = "queued"
	StateRunning State = "running"
	StateDone    State = "done"
	StateError   State = "error"
)

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == StateDone || s == StateError
}

// Job describes one review to run: the repository coordinates plus the
// analysis mode. It is the unit of work handed to the pool.
type Job struct {
	ID       string
	Repo     string
	BaseSHA  string
	HeadSHA  string
	PRNumber int // 0 means no change request attached
	Mode     analysis.Mode
}

// PatchSummary describes one generated patch. Patch generation lives behind
// an external policy layer; the fields keep the record's wire contract.
type PatchSummary struct {
	FilePath   string  `json:"file_path"`
	RuleID     string  `json:"rule_id"`
	Applied    bool    `json:"applied"`
	LocChanged int     `json:"loc_changed"`
	RiskScore  float64 `json:"risk_score"`
}

// Record is the persisted job state, the shape served by the status API.
type Record struct {
	JobID            string                    `json:"job_id"`
	State            State                     `json:"state"`
	CreatedAt        time.Time                 `json:"created_at"`
	StartedAt        *time.Time                `json:"started_at,omitempty"`
	CompletedAt      *time.Time                `json:"completed_at,omitempty"`
	Repo             string                    `json:"repo"`
	BaseSHA          string                    `json:"base_sha"`
	HeadSHA          string                    `json:"head_sha"`
	PRNumber         *int                      `json:"pr_number,omitempty"`
	AnalysisMode     string                    `json:"analysis_mode"`
	FindingsCount    int                       `json:"findings_count"`
	PatchesGenerated int                       `json:"patches_generated"`
	PatchesApplied   int                       `json:"patches_applied"`
	Findings         []findings.FindingSummary `json:"findings"`
	Patches          []PatchSummary            `json:"patches"`
	Error            string                    `json:"error,omitempty"`
}

// NewRecord creates the initial queued record for a job.
func NewRecord(job Job) *Record {
	rec := &Record{
		JobID:        job.ID,
		State:        StateQueued,
		CreatedAt:    time.Now().UTC(),
		Repo:         job.Repo,
		BaseSHA:      job.BaseSHA,
		HeadSHA:      job.HeadSHA,
		AnalysisMode: job.Mode.String(),
		Findings:     []findings.FindingSummary{},
		Patches:      []PatchSummary{},
	}
	if job.PRNumber > 0 {
		pr := job.PRNumber
		rec.PRNumber = &pr
	}
	return rec
}

// Publisher hands finished results to downstream consumers (reporting,
// comment posting). Implementations live outside the state machine.
type Publisher interface {
	Publish(ctx context.Context, rec *Record, found []findings.Finding) error
}
