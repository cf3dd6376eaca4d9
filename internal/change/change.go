// Package change computes bi-temporal change products from two index rasters.
// The earlier raster defines the grid; the later one is resampled onto it and
// the delta is later minus earlier.
package change

import (
	"fmt"
	"math"

	"github.com/airbusgeo/godal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/forest-guardian/landwatch/internal/bandmath"
	"github.com/forest-guardian/landwatch/internal/raster"
)

// DeltaSummary describes the finite cells of a delta grid.
type DeltaSummary struct {
	MeanDelta float64 `json:"mean_delta"`
	MinDelta  float64 `json:"min_delta"`
	MaxDelta  float64 `json:"max_delta"`
}

// aligned loads earlier as the reference grid and resamples later onto it.
func aligned(earlierPath, laterPath string) (*raster.Raster, [][]float64, error) {
	earlier, err := raster.Load(earlierPath)
	if err != nil {
		return nil, nil, fmt.Errorf("earlier raster: %w", err)
	}
	later, err := raster.LoadResampled(laterPath, earlier.Width(), earlier.Height(), godal.Bilinear)
	if err != nil {
		return nil, nil, fmt.Errorf("later raster: %w", err)
	}
	delta, err := bandmath.Subtract(later.Data, earlier.Data)
	if err != nil {
		return nil, nil, err
	}
	return earlier, delta, nil
}

func Summarize(delta [][]float64) DeltaSummary {
	var values []float64
	for _, row := range delta {
		for _, v := range row {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				values = append(values, v)
			}
		}
	}
	if len(values) == 0 {
		return DeltaSummary{}
	}
	return DeltaSummary{
		MeanDelta: round4(stat.Mean(values, nil)),
		MinDelta:  round4(floats.Min(values)),
		MaxDelta:  round4(floats.Max(values)),
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}
