// Package stats writes recorded runs to files for offline analysis.
package stats

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"bitgen/internal/model"
)

const (
	RunFile          = "run.json"
	HistoryFile      = "generation_stats.json"
	HistorySeriesCSV = "generation_stats.csv"
)

var seriesHeader = []string{
	"generation", "min_score", "max_score", "mean_score", "stddev_score",
	"diversity", "distinct_genotypes", "mutation_rate", "evaluations",
}

// ExportRun writes run and its history under outDir/<run id> and returns
// that directory.
func ExportRun(outDir string, run model.RunRecord, history []model.GenerationStats) (string, error) {
	if run.ID == "" {
		return "", errors.New("run id is required")
	}

	dst := filepath.Join(outDir, run.ID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dst, RunFile), run); err != nil {
		return "", err
	}
	if history == nil {
		history = []model.GenerationStats{}
	}
	if err := writeJSON(filepath.Join(dst, HistoryFile), history); err != nil {
		return "", err
	}
	if err := writeSeries(filepath.Join(dst, HistorySeriesCSV), history); err != nil {
		return "", err
	}
	return dst, nil
}

func writeSeries(path string, history []model.GenerationStats) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(seriesHeader); err != nil {
		return err
	}
	for _, h := range history {
		if err := writer.Write([]string{
			strconv.Itoa(h.Generation),
			formatFloat(h.MinScore),
			formatFloat(h.MaxScore),
			formatFloat(h.MeanScore),
			formatFloat(h.StdDevScore),
			formatFloat(h.Diversity),
			strconv.Itoa(h.DistinctGenotypes),
			formatFloat(h.MutationRate),
			strconv.Itoa(h.Evaluations),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
