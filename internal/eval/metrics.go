package eval

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/revio-dev/revio/internal/findings"
)

// GroundTruthEntry labels one known issue in an evaluated change set.
type GroundTruthEntry struct {
	File     string            `json:"file"`
	Line     int               `json:"line"`
	Category findings.Category `json:"category"`
}

// GroundTruth maps pull request ids to their labeled issues.
type GroundTruth map[string][]GroundTruthEntry

// LoadGroundTruth reads labels from a JSON file.
func LoadGroundTruth(path string) (GroundTruth, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ground truth: %w", err)
	}
	var truth GroundTruth
	if err := json.Unmarshal(data, &truth); err != nil {
		return nil, fmt.Errorf("decoding ground truth %s: %w", path, err)
	}
	return truth, nil
}

// ModeMetrics aggregates detection quality and latency for one mode across
// every evaluated pull request.
type ModeMetrics struct {
	AnalysisMode      string  `json:"analysis_mode"`
	Runs              int     `json:"runs"`
	TruePositives     int     `json:"true_positives"`
	FalsePositives    int     `json:"false_positives"`
	FalseNegatives    int     `json:"false_negatives"`
	Precision         float64 `json:"precision"`
	Recall            float64 `json:"recall"`
	F1                float64 `json:"f1"`
	FalsePositiveRate float64 `json:"false_positive_rate"`
	AvgLatencyMS      float64 `json:"avg_latency_ms"`
}

// signature is the matching key: a predicted finding counts as a true
// positive only when file, line, and category all agree with a label.
func signature(file string, line int, category findings.Category) string {
	return fmt.Sprintf("%s:%d:%s", file, line, category)
}

// ComputeMetrics scores result rows against the ground truth, one metrics
// block per analysis mode, sorted by mode name.
func ComputeMetrics(results []Result, truth GroundTruth) []ModeMetrics {
	byMode := map[string]*ModeMetrics{}
	latencySums := map[string]int64{}

	for _, row := range results {
		m := byMode[row.AnalysisMode]
		if m == nil {
			m = &ModeMetrics{AnalysisMode: row.AnalysisMode}
			byMode[row.AnalysisMode] = m
		}
		m.Runs++
		latencySums[row.AnalysisMode] += row.LatencyMS

		predicted := map[string]bool{}
		for _, f := range row.Findings {
			predicted[signature(f.File, f.Line, f.Category)] = true
		}
		labeled := map[string]bool{}
		for _, g := range truth[row.PRID] {
			labeled[signature(g.File, g.Line, g.Category)] = true
		}

		for sig := range predicted {
			if labeled[sig] {
				m.TruePositives++
			} else {
				m.FalsePositives++
			}
		}
		for sig := range labeled {
			if !predicted[sig] {
				m.FalseNegatives++
			}
		}
	}

	metrics := make([]ModeMetrics, 0, len(byMode))
	for mode, m := range byMode {
		m.Precision = ratio(m.TruePositives, m.TruePositives+m.FalsePositives)
		m.Recall = ratio(m.TruePositives, m.TruePositives+m.FalseNegatives)
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		m.FalsePositiveRate = ratio(m.FalsePositives, m.TruePositives+m.FalsePositives)
		if m.Runs > 0 {
			m.AvgLatencyMS = float64(latencySums[mode]) / float64(m.Runs)
		}
		metrics = append(metrics, *m)
	}
	sort.Slice(metrics, func(i, j int) bool {
		return metrics[i].AnalysisMode < metrics[j].AnalysisMode
	})
	return metrics
}

func ratio(num, denom int) float64 {
	if denom == 0 {
		return 0
	}
	return float64(num) / float64(denom)
}
