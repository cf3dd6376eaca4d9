// Package report persists pipeline results for the dashboard: the latest
// result as JSON, a CSV history of runs and a GeoJSON footprint.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

const (
	ResultFile    = "pipeline_result.json"
	HistoryFile   = "change_history.csv"
	FootprintFile = "footprint.geojson"
)

// HistoryRow is one analysis run in change_history.csv.
type HistoryRow struct {
	RunAt             string  `csv:"run_at"`
	EarlierScene      string  `csv:"earlier_scene"`
	LaterScene        string  `csv:"later_scene"`
	FloodedPixels     int     `csv:"flooded_pixels"`
	FloodedPercent    float64 `csv:"flooded_percent"`
	NonFloodedPercent float64 `csv:"non_flooded_percent"`
	GainPercent       float64 `csv:"gain_percent"`
	LossPercent       float64 `csv:"loss_percent"`
	NeutralPercent    float64 `csv:"neutral_percent"`
	SiteSuitability   string  `csv:"site_suitability"`
}

// WriteJSON writes v as indented JSON, replacing path atomically.
func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return writeAtomic(path, append(data, '\n'))
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename %s: %w", tmp, err)
	}
	return nil
}

// AppendHistory adds row to the CSV at path, writing the header on first use.
func AppendHistory(path string, row HistoryRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	info, err := os.Stat(path)
	fresh := errors.Is(err, os.ErrNotExist) || (err == nil && info.Size() == 0)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history %s: %w", path, err)
	}
	defer file.Close()

	rows := []*HistoryRow{&row}
	if fresh {
		err = gocsv.MarshalFile(&rows, file)
	} else {
		err = gocsv.MarshalWithoutHeaders(&rows, file)
	}
	if err != nil {
		return fmt.Errorf("failed to append history row: %w", err)
	}
	return nil
}

func ReadHistory(path string) ([]*HistoryRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var rows []*HistoryRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("failed to read history %s: %w", path, err)
	}
	return rows, nil
}
