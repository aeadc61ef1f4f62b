package git

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"

	sharederrors "github.com/revio-dev/revio/pkg/shared/errors"
)

// ChangeSet computes the per-file changes between baseRev and headRev of the
// repository at repoPath. Files are returned in the comparison order produced
// by git; fully deleted files are dropped (there is nothing left to annotate).
// An unresolvable path or revision yields a FatalRepositoryError.
func ChangeSet(repoPath, baseRev, headRev string) ([]FileDiff, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, sharederrors.NewFatalRepositoryError("open", repoPath, err)
	}

	baseTree, err := treeAt(repo, baseRev)
	if err != nil {
		return nil, sharederrors.NewFatalRepositoryError("resolve base", baseRev, err)
	}
	headTree, err := treeAt(repo, headRev)
	if err != nil {
		return nil, sharederrors.NewFatalRepositoryError("resolve head", headRev, err)
	}

	patch, err := baseTree.Patch(headTree)
	if err != nil {
		return nil, sharederrors.NewFatalRepositoryError("diff", repoPath, err)
	}

	filePatches := patch.FilePatches()
	segments := splitPatchText(patch.String())

	changes := make([]FileDiff, 0, len(filePatches))
	for i, fp := range filePatches {
		from, to := fp.Files()

		kind := classifyChange(from, to)
		if kind == ChangeDeleted {
			continue
		}

		var segment string
		if i < len(segments) {
			segment = segments[i]
		}
		added, removed := parseUnifiedDiff(segment)

		fd := FileDiff{
			FilePath:     to.Path(),
			ChangeType:   kind,
			AddedLines:   added,
			RemovedLines: removed,
			NewContent:   readBlob(headTree, to.Path()),
		}
		changes = append(changes, fd)
	}

	return changes, nil
}

// classifyChange derives the change kind with precedence
// Added > Deleted > Renamed > Modified.
func classifyChange(from, to diff.File) ChangeKind {
	switch {
	case from == nil:
		return ChangeAdded
	case to == nil:
		return ChangeDeleted
	case from.Path() != to.Path():
		return ChangeRenamed
	default:
		return ChangeModified
	}
}

// parseUnifiedDiff walks one file's unified diff text, tracking old-side and
// new-side line cursors. Hunk headers reset the cursors; a header that fails
// to parse is skipped, leaving the cursors unchanged. The trailing
// "\ No newline at end of file" marker advances neither cursor.
func parseUnifiedDiff(text string) (added, removed []DiffLine) {
	oldLine, newLine := 0, 0

	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			if o, n, ok := parseHunkHeader(line); ok {
				oldLine, newLine = o, n
			}
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			added = append(added, DiffLine{Number: newLine, Text: line[1:]})
			newLine++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			removed = append(removed, DiffLine{Number: oldLine, Text: line[1:]})
			oldLine++
		case strings.HasPrefix(line, `\`):
			// no newline marker
		default:
			oldLine++
			newLine++
		}
	}

	return added, removed
}

// parseHunkHeader extracts the old and new start lines from a header of the
// form "@@ -oldStart,oldLen +newStart,newLen @@". Length parts are optional.
func parseHunkHeader(line string) (oldStart, newStart int, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return 0, 0, false
	}

	oldStart, err := parseHunkRange(fields[1], "-")
	if err != nil {
		return 0, 0, false
	}
	newStart, err = parseHunkRange(fields[2], "+")
	if err != nil {
		return 0, 0, false
	}
	return oldStart, newStart, true
}

func parseHunkRange(field, marker string) (int, error) {
	if !strings.HasPrefix(field, marker) {
		return 0, fmt.Errorf("hunk range %q does not start with %q", field, marker)
	}
	value := strings.TrimPrefix(field, marker)
	if idx := strings.Index(value, ","); idx >= 0 {
		value = value[:idx]
	}
	return strconv.Atoi(value)
}

// splitPatchText breaks a multi-file patch into per-file segments, one per
// "diff --git" header, in the same order as Patch.FilePatches.
func splitPatchText(text string) []string {
	var segments []string
	var current []string
	open := false

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "diff --git ") {
			if open {
				segments = append(segments, strings.Join(current, "\n"))
			}
			current = current[:0]
			open = true
			continue
		}
		if open {
			current = append(current, line)
		}
	}
	if open {
		segments = append(segments, strings.Join(current, "\n"))
	}
	return segments
}

// readBlob returns the post-change content of path, or nil when the blob is
// missing or binary. Absence never fails the entry.
func readBlob(tree *object.Tree, path string) *string {
	file, err := tree.File(path)
	if err != nil {
		return nil
	}
	if binary, err := file.IsBinary(); err != nil || binary {
		return nil
	}
	content, err := file.Contents()
	if err != nil {
		return nil
	}
	return &content
}

func treeAt(repo *git.Repository, rev string) (*object.Tree, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision %q: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %q: %w", hash, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load tree for %q: %w", hash, err)
	}
	return tree, nil
}
