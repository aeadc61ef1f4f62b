package analysis

import (
	"github.com/revio-dev/revio/internal/findings"
	"github.com/revio-dev/revio/internal/git"
)

// FilterRelevant keeps only findings whose (file, line) exactly matches an
// added line of the change set. Static tools happily report on lines next to
// a change, but only lines the author can currently edit are actionable, so
// the match is strict: no adjacency window, no off-by-one tolerance.
func FilterRelevant(list []findings.Finding, diffs []git.FileDiff) []findings.Finding {
	addedByFile := make(map[string]map[int]bool, len(diffs))
	for _, d := range diffs {
		lines := make(map[int]bool, len(d.AddedLines))
		for _, l := range d.AddedLines {
			lines[l.Number] = true
		}
		addedByFile[d.FilePath] = lines
	}

	var relevant []findings.Finding
	for _, f := range list {
		if addedByFile[f.FilePath][f.Line] {
			relevant = append(relevant, f)
		}
	}
	return relevant
}
