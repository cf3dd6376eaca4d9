// Package suitability fuses vegetation, water and flood layers into a binary
// site suitability mask.
package suitability

import (
	"fmt"
	"path/filepath"

	"github.com/airbusgeo/godal"

	"github.com/forest-guardian/landwatch/internal/bandmath"
	"github.com/forest-guardian/landwatch/internal/log"
	"github.com/forest-guardian/landwatch/internal/raster"
	"github.com/forest-guardian/landwatch/output"
)

const (
	MinNDVI = 0.4
	MaxNDWI = 0.2
)

const (
	MaskTIF = "site_suitability.tif"
	MaskPNG = "site_suitability.png"
)

const (
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

type Result struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
	TIF    string `json:"tif,omitempty"`
	PNG    string `json:"png,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Mask marks cells that are vegetated, not open water and not flooded.
func Mask(ndvi, ndwi, flood [][]float64) ([][]float64, error) {
	h, w := bandmath.Shape(ndvi)
	if nh, nw := bandmath.Shape(ndwi); nh != h || nw != w {
		return nil, fmt.Errorf("%w: ndvi %dx%d, ndwi %dx%d", bandmath.ErrShape, h, w, nh, nw)
	}
	if fh, fw := bandmath.Shape(flood); fh != h || fw != w {
		return nil, fmt.Errorf("%w: ndvi %dx%d, flood %dx%d", bandmath.ErrShape, h, w, fh, fw)
	}

	mask := bandmath.NewGrid(h, w)
	for y := range mask {
		for x := range mask[y] {
			flooded := flood[y][x] != 0
			if ndvi[y][x] > MinNDVI && ndwi[y][x] < MaxNDWI && !flooded {
				mask[y][x] = 1
			}
		}
	}
	return mask, nil
}

// Run aligns NDWI (bilinear) and the flood mask (nearest) onto the NDVI grid
// and writes the suitability GeoTIFF and a grayscale preview to outDir.
func Run(ndviPath, ndwiPath, floodMaskPath, outDir string) (*Result, error) {
	ndvi, err := raster.Load(ndviPath)
	if err != nil {
		return nil, fmt.Errorf("suitability ndvi: %w", err)
	}
	ndwi, err := raster.LoadResampled(ndwiPath, ndvi.Width(), ndvi.Height(), godal.Bilinear)
	if err != nil {
		return nil, fmt.Errorf("suitability ndwi: %w", err)
	}
	// The mask is categorical, interpolating it would invent partial floods.
	flood, err := raster.LoadResampled(floodMaskPath, ndvi.Width(), ndvi.Height(), godal.Nearest)
	if err != nil {
		return nil, fmt.Errorf("suitability flood mask: %w", err)
	}

	mask, err := Mask(ndvi.Data, ndwi.Data, flood.Data)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Status: StatusComplete,
		Path:   outDir,
		TIF:    filepath.Join(outDir, MaskTIF),
		PNG:    filepath.Join(outDir, MaskPNG),
	}
	if err := raster.Save(res.TIF, mask, ndvi.Profile, raster.Overrides{DataType: godal.Byte, Count: 1}); err != nil {
		return nil, fmt.Errorf("suitability mask: %w", err)
	}
	if err := output.SaveMap(res.PNG, mask, output.Gray, output.MapOptions{
		Title: "Site Suitability Map",
		Range: output.Range{Min: 0, Max: 1},
	}); err != nil {
		return nil, fmt.Errorf("suitability map: %w", err)
	}

	log.Infow("site suitability computed", "tif", res.TIF, "png", res.PNG)
	return res, nil
}
