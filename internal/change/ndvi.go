package change

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/airbusgeo/godal"

	"github.com/forest-guardian/landwatch/internal/log"
	"github.com/forest-guardian/landwatch/internal/raster"
	"github.com/forest-guardian/landwatch/output"
)

const (
	GainThreshold = 0.1
	LossThreshold = -0.1
)

const (
	DeltaNDVITIF  = "delta_ndvi.tif"
	NDVIChangePNG = "NDVI_change.png"
	NDVIStatsPNG  = "ndvi_stats.png"
)

type NDVIStats struct {
	GainPixels     int     `json:"gain_pixels"`
	LossPixels     int     `json:"loss_pixels"`
	NeutralPixels  int     `json:"neutral_pixels"`
	GainPercent    float64 `json:"gain_percent"`
	LossPercent    float64 `json:"loss_percent"`
	NeutralPercent float64 `json:"neutral_percent"`
	DeltaSummary
	DeltaNDVITIF   string `json:"delta_ndvi_tif,omitempty"`
	DeltaNDVIPNG   string `json:"delta_ndvi_png,omitempty"`
	NDVIStatsChart string `json:"ndvi_stats_chart,omitempty"`
}

// Classified is the number of pixels that fell into one of the three classes.
func (s NDVIStats) Classified() int {
	return s.GainPixels + s.LossPixels + s.NeutralPixels
}

// ClassifyNDVI buckets an NDVI delta into gain, loss and neutral. NaN cells
// belong to no class. Each percentage is rounded on its own, so the three may
// not add up to exactly 100.
func ClassifyNDVI(delta [][]float64) NDVIStats {
	var stats NDVIStats
	for _, row := range delta {
		for _, v := range row {
			switch {
			case math.IsNaN(v):
			case v > GainThreshold:
				stats.GainPixels++
			case v < LossThreshold:
				stats.LossPixels++
			default:
				stats.NeutralPixels++
			}
		}
	}
	total := stats.Classified()
	stats.GainPercent = percent(stats.GainPixels, total)
	stats.LossPercent = percent(stats.LossPixels, total)
	stats.NeutralPercent = percent(stats.NeutralPixels, total)
	stats.DeltaSummary = Summarize(delta)
	return stats
}

// NDVIChange writes the NDVI delta GeoTIFF, a change map and a stats chart to outDir.
func NDVIChange(earlierNDVI, laterNDVI, outDir string) (*NDVIStats, error) {
	earlier, delta, err := aligned(earlierNDVI, laterNDVI)
	if err != nil {
		return nil, fmt.Errorf("ndvi change: %w", err)
	}

	stats := ClassifyNDVI(delta)
	if stats.Classified() == 0 {
		log.Warnw("ndvi delta has no classified pixels", "earlier", earlierNDVI, "later", laterNDVI)
	}
	stats.DeltaNDVITIF = filepath.Join(outDir, DeltaNDVITIF)
	stats.DeltaNDVIPNG = filepath.Join(outDir, NDVIChangePNG)
	stats.NDVIStatsChart = filepath.Join(outDir, NDVIStatsPNG)

	if err := raster.Save(stats.DeltaNDVITIF, delta, earlier.Profile, raster.Overrides{DataType: godal.Float32, Count: 1}); err != nil {
		return nil, fmt.Errorf("delta ndvi: %w", err)
	}
	if err := output.SaveMap(stats.DeltaNDVIPNG, delta, output.RdYlGn, output.MapOptions{
		Title:         "NDVI Change Detection",
		Range:         output.Range{Min: -1, Max: 1},
		Colorbar:      true,
		ColorbarLabel: "dNDVI",
	}); err != nil {
		return nil, fmt.Errorf("ndvi change map: %w", err)
	}
	if err := output.CreateStatsChart(stats.NDVIStatsChart, "NDVI Change Summary", "Pixel Count", []output.Bar{
		{Label: "Gain", Value: float64(stats.GainPixels), Color: output.ColorGreen},
		{Label: "Loss", Value: float64(stats.LossPixels), Color: output.ColorRed},
		{Label: "Neutral", Value: float64(stats.NeutralPixels), Color: output.ColorGray},
	}); err != nil {
		return nil, fmt.Errorf("ndvi chart: %w", err)
	}

	log.Infow("ndvi change computed",
		"gain", stats.GainPixels, "loss", stats.LossPixels, "neutral", stats.NeutralPixels,
		"gain_percent", stats.GainPercent, "loss_percent", stats.LossPercent,
		"neutral_percent", stats.NeutralPercent)
	return &stats, nil
}
