package git

import (
	"encoding/json"
	"fmt"
)

// ChangeKind classifies how a file was touched between two revisions.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "A"
	ChangeModified ChangeKind = "M"
	ChangeDeleted  ChangeKind = "D"
	ChangeRenamed  ChangeKind = "R"
)

// DiffLine is one added or removed line. On the wire it is the tuple
// [line_number, text] consumed by the evaluation harness.
type DiffLine struct {
	Number int
	Text   string
}

// MarshalJSON encodes the line as a [number, text] pair.
func (l DiffLine) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{l.Number, l.Text})
}

// UnmarshalJSON decodes a [number, text] pair.
func (l *DiffLine) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("diff line must be a [line, text] pair: %w", err)
	}
	if err := json.Unmarshal(pair[0], &l.Number); err != nil {
		return fmt.Errorf("diff line number: %w", err)
	}
	if err := json.Unmarshal(pair[1], &l.Text); err != nil {
		return fmt.Errorf("diff line text: %w", err)
	}
	return nil
}

// FileDiff is the parsed change of a single file between two revisions.
// Line numbers in AddedLines are new-side, in RemovedLines old-side; within
// one hunk each sequence is strictly increasing. NewContent is nil when the
// post-change blob could not be read (binary or missing).
type FileDiff struct {
	FilePath     string     `json:"file_path"`
	ChangeType   ChangeKind `json:"change_type"`
	AddedLines   []DiffLine `json:"added_lines"`
	RemovedLines []DiffLine `json:"removed_lines"`
	NewContent   *string    `json:"new_content,omitempty"`
}

// Reviewable reports whether the file offers anything an analyzer can look
// at: added lines, or full post-change content.
func (d FileDiff) Reviewable() bool {
	return len(d.AddedLines) > 0 || d.NewContent != nil
}
