package change

import (
	"fmt"
	"path/filepath"

	"github.com/airbusgeo/godal"

	"github.com/forest-guardian/landwatch/internal/bandmath"
	"github.com/forest-guardian/landwatch/internal/log"
	"github.com/forest-guardian/landwatch/internal/raster"
	"github.com/forest-guardian/landwatch/output"
)

// FloodThreshold is the NDWI rise above which a pixel counts as flooded.
const FloodThreshold = 0.2

const (
	FloodMaskTIF  = "flood_mask.tif"
	FloodMaskPNG  = "flood_mask.png"
	FloodStatsPNG = "flood_stats.png"
)

type FloodStats struct {
	FloodedPixels     int     `json:"flooded_pixels"`
	NonFloodedPixels  int     `json:"non_flooded_pixels"`
	FloodedPercent    float64 `json:"flooded_percent"`
	NonFloodedPercent float64 `json:"non_flooded_percent"`
	DeltaSummary
	FloodMaskTIF  string `json:"flood_mask_tif,omitempty"`
	FloodMapPNG   string `json:"flood_map_png,omitempty"`
	FloodStatsPNG string `json:"flood_stats_png,omitempty"`
}

// ClassifyFlood thresholds an NDWI delta into a 0/1 mask. Every cell counts
// towards the total; NaN cells are not flooded.
func ClassifyFlood(delta [][]float64) ([][]float64, FloodStats) {
	h, w := bandmath.Shape(delta)
	mask := bandmath.NewGrid(h, w)

	var stats FloodStats
	for y, row := range delta {
		for x, v := range row {
			if v > FloodThreshold {
				mask[y][x] = 1
				stats.FloodedPixels++
			}
		}
	}
	total := h * w
	stats.NonFloodedPixels = total - stats.FloodedPixels
	stats.FloodedPercent = percent(stats.FloodedPixels, total)
	// Derived from the flooded share so both always add up to 100.
	stats.NonFloodedPercent = round2(100 - stats.FloodedPercent)
	stats.DeltaSummary = Summarize(delta)
	return mask, stats
}

// Flood writes the flood mask GeoTIFF, its map and a stats chart to outDir.
func Flood(earlierNDWI, laterNDWI, outDir string) (*FloodStats, error) {
	earlier, delta, err := aligned(earlierNDWI, laterNDWI)
	if err != nil {
		return nil, fmt.Errorf("flood extent: %w", err)
	}
	if earlier.Width() == 0 || earlier.Height() == 0 {
		return nil, fmt.Errorf("flood extent: %w: empty reference grid", bandmath.ErrShape)
	}

	mask, stats := ClassifyFlood(delta)
	stats.FloodMaskTIF = filepath.Join(outDir, FloodMaskTIF)
	stats.FloodMapPNG = filepath.Join(outDir, FloodMaskPNG)
	stats.FloodStatsPNG = filepath.Join(outDir, FloodStatsPNG)

	if err := raster.Save(stats.FloodMaskTIF, mask, earlier.Profile, raster.Overrides{DataType: godal.Byte, Count: 1}); err != nil {
		return nil, fmt.Errorf("flood mask: %w", err)
	}
	if err := output.SaveMap(stats.FloodMapPNG, mask, output.Blues, output.MapOptions{
		Title: "Flood Extent Map",
		Range: output.Range{Min: 0, Max: 1},
	}); err != nil {
		return nil, fmt.Errorf("flood map: %w", err)
	}
	if err := output.CreateStatsChart(stats.FloodStatsPNG, "Flood Extent Summary", "Pixel Count", []output.Bar{
		{Label: "Flooded", Value: float64(stats.FloodedPixels), Color: output.ColorBlue},
		{Label: "Non-Flooded", Value: float64(stats.NonFloodedPixels), Color: output.ColorGray},
	}); err != nil {
		return nil, fmt.Errorf("flood chart: %w", err)
	}

	log.Infow("flood extent computed",
		"flooded_pixels", stats.FloodedPixels,
		"flooded_percent", stats.FloodedPercent,
		"non_flooded_percent", stats.NonFloodedPercent,
		"mask", stats.FloodMaskTIF)
	return &stats, nil
}
