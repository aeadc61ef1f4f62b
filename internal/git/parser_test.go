package git

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	sharederrors "github.com/revio-dev/revio/pkg/shared/errors"
)

func TestParseUnifiedDiff(t *testing.T) {
	text := "@@ -1,2 +1,3 @@\n import os\n-print('old')\n+print('new')\n+print('added')\n"

	added, removed := parseUnifiedDiff(text)

	wantAdded := []DiffLine{{2, "print('new')"}, {3, "print('added')"}}
	wantRemoved := []DiffLine{{2, "print('old')"}}

	if !equalLines(added, wantAdded) {
		t.Fatalf("unexpected added lines:\nwant %v\n got %v", wantAdded, added)
	}
	if !equalLines(removed, wantRemoved) {
		t.Fatalf("unexpected removed lines:\nwant %v\n got %v", wantRemoved, removed)
	}

	// the same input must always produce the same result
	addedAgain, removedAgain := parseUnifiedDiff(text)
	if !equalLines(added, addedAgain) || !equalLines(removed, removedAgain) {
		t.Fatalf("parse is not deterministic")
	}
}

func TestParseUnifiedDiffMultipleHunks(t *testing.T) {
	text := strings.Join([]string{
		"@@ -1,2 +1,2 @@",
		" one",
		"-two",
		"+TWO",
		"@@ -10,2 +10,3 @@",
		" ten",
		"+ten and a half",
		" eleven",
		"",
	}, "\n")

	added, removed := parseUnifiedDiff(text)

	wantAdded := []DiffLine{{2, "TWO"}, {11, "ten and a half"}}
	wantRemoved := []DiffLine{{2, "two"}}
	if !equalLines(added, wantAdded) {
		t.Fatalf("unexpected added lines:\nwant %v\n got %v", wantAdded, added)
	}
	if !equalLines(removed, wantRemoved) {
		t.Fatalf("unexpected removed lines:\nwant %v\n got %v", wantRemoved, removed)
	}

	for i := 1; i < len(added); i++ {
		if added[i].Number <= added[i-1].Number {
			t.Fatalf("added line numbers not strictly increasing: %v", added)
		}
	}
}

func TestParseUnifiedDiffBadHunkHeader(t *testing.T) {
	text := strings.Join([]string{
		"@@ -1 +1 @@",
		"+first",
		"@@ not a header @@",
		"+second",
		"",
	}, "\n")

	added, _ := parseUnifiedDiff(text)

	// the malformed header is skipped atomically: neither cursor moves, so
	// the next added line continues from where the previous hunk left off
	wantAdded := []DiffLine{{1, "first"}, {2, "second"}}
	if !equalLines(added, wantAdded) {
		t.Fatalf("unexpected added lines after bad header:\nwant %v\n got %v", wantAdded, added)
	}
}

func TestParseUnifiedDiffNoNewlineMarker(t *testing.T) {
	text := strings.Join([]string{
		"@@ -1,1 +1,3 @@",
		" same",
		"+added",
		`\ No newline at end of file`,
		"+more",
		"",
	}, "\n")

	added, _ := parseUnifiedDiff(text)

	wantAdded := []DiffLine{{2, "added"}, {3, "more"}}
	if !equalLines(added, wantAdded) {
		t.Fatalf("no-newline marker must not advance cursors:\nwant %v\n got %v", wantAdded, added)
	}
}

func TestParseHunkHeader(t *testing.T) {
	cases := []struct {
		line     string
		oldStart int
		newStart int
		ok       bool
	}{
		{"@@ -1,2 +1,3 @@", 1, 1, true},
		{"@@ -10 +20 @@", 10, 20, true},
		{"@@ -5,0 +6,2 @@ func main() {", 5, 6, true},
		{"@@ garbage @@", 0, 0, false},
		{"@@", 0, 0, false},
	}

	for _, tc := range cases {
		o, n, ok := parseHunkHeader(tc.line)
		if ok != tc.ok || o != tc.oldStart || n != tc.newStart {
			t.Errorf("parseHunkHeader(%q) = (%d, %d, %v), want (%d, %d, %v)",
				tc.line, o, n, ok, tc.oldStart, tc.newStart, tc.ok)
		}
	}
}

func TestChangeSet(t *testing.T) {
	repoDir, baseHash, headHash := setupChangeSetRepo(t)

	diffs, err := ChangeSet(repoDir, baseHash, headHash)
	if err != nil {
		t.Fatalf("ChangeSet returned error: %v", err)
	}

	byPath := map[string]FileDiff{}
	for _, d := range diffs {
		byPath[d.FilePath] = d
	}

	if _, ok := byPath["gone.txt"]; ok {
		t.Fatalf("deleted file must not appear in the change set")
	}

	data, ok := byPath["data.txt"]
	if !ok {
		t.Fatalf("data.txt missing from change set: %v", diffs)
	}
	if data.ChangeType != ChangeModified {
		t.Fatalf("data.txt change type: want %q got %q", ChangeModified, data.ChangeType)
	}
	wantAdded := []DiffLine{{2, "beta2"}, {4, "delta"}}
	if !equalLines(data.AddedLines, wantAdded) {
		t.Fatalf("data.txt added lines:\nwant %v\n got %v", wantAdded, data.AddedLines)
	}
	wantRemoved := []DiffLine{{2, "beta"}}
	if !equalLines(data.RemovedLines, wantRemoved) {
		t.Fatalf("data.txt removed lines:\nwant %v\n got %v", wantRemoved, data.RemovedLines)
	}
	if data.NewContent == nil || *data.NewContent != "alpha\nbeta2\ngamma\ndelta\n" {
		t.Fatalf("data.txt new content: %v", data.NewContent)
	}

	added, ok := byPath["new.txt"]
	if !ok {
		t.Fatalf("new.txt missing from change set")
	}
	if added.ChangeType != ChangeAdded {
		t.Fatalf("new.txt change type: want %q got %q", ChangeAdded, added.ChangeType)
	}
	if !equalLines(added.AddedLines, []DiffLine{{1, "onlyline"}}) {
		t.Fatalf("new.txt added lines: %v", added.AddedLines)
	}
	if len(added.RemovedLines) != 0 {
		t.Fatalf("new.txt must have no removed lines: %v", added.RemovedLines)
	}
}

func TestChangeSetBadRevision(t *testing.T) {
	repoDir, baseHash, _ := setupChangeSetRepo(t)

	_, err := ChangeSet(repoDir, baseHash, "no-such-revision")
	if err == nil {
		t.Fatalf("expected error for unresolvable revision")
	}
	if !sharederrors.IsFatalRepository(err) {
		t.Fatalf("expected FatalRepositoryError, got %T: %v", err, err)
	}
}

func TestChangeSetBadPath(t *testing.T) {
	_, err := ChangeSet(filepath.Join(t.TempDir(), "nope"), "a", "b")
	if err == nil {
		t.Fatalf("expected error for missing repository")
	}
	if !sharederrors.IsFatalRepository(err) {
		t.Fatalf("expected FatalRepositoryError, got %T: %v", err, err)
	}
}

func TestDiffLineJSON(t *testing.T) {
	data, err := json.Marshal(DiffLine{Number: 2, Text: "beta2"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `[2,"beta2"]` {
		t.Fatalf("unexpected wire form: %s", data)
	}

	var line DiffLine
	if err := json.Unmarshal(data, &line); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if line.Number != 2 || line.Text != "beta2" {
		t.Fatalf("roundtrip mismatch: %+v", line)
	}

	if err := json.Unmarshal([]byte(`"not a pair"`), &line); err == nil {
		t.Fatalf("expected error for malformed pair")
	}
}

// setupChangeSetRepo initialises a temporary repository with two commits:
// one file modified, one added, one deleted.
func setupChangeSetRepo(t *testing.T) (string, string, string) {
	t.Helper()

	repoDir := t.TempDir()
	repo, err := gogit.PlainInit(repoDir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}

	baseHash := commitFiles(t, wt, map[string]string{
		"data.txt": "alpha\nbeta\ngamma\n",
		"gone.txt": "to be removed\n",
	}, "base commit")

	if err := os.Remove(filepath.Join(repoDir, "gone.txt")); err != nil {
		t.Fatalf("remove gone.txt: %v", err)
	}
	if _, err := wt.Remove("gone.txt"); err != nil {
		t.Fatalf("stage removal: %v", err)
	}
	headHash := commitFiles(t, wt, map[string]string{
		"data.txt": "alpha\nbeta2\ngamma\ndelta\n",
		"new.txt":  "onlyline\n",
	}, "head commit")

	return repoDir, baseHash.String(), headHash.String()
}

func commitFiles(t *testing.T, wt *gogit.Worktree, files map[string]string, message string) plumbing.Hash {
	t.Helper()

	for path, content := range files {
		abs := filepath.Join(wt.Filesystem.Root(), path)
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", abs, err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", abs, err)
		}
		if _, err := wt.Add(path); err != nil {
			t.Fatalf("add %s: %v", path, err)
		}
	}

	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return hash
}

func equalLines(got, want []DiffLine) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
