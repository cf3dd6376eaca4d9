package suitability

import (
	"path/filepath"
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forest-guardian/landwatch/internal/bandmath"
	"github.com/forest-guardian/landwatch/internal/raster"
)

func TestMask_AllCombinations(t *testing.T) {
	// Two 2x2 grids cover the eight combinations of
	// vegetated (ndvi > 0.4), dry (ndwi < 0.2) and flooded.
	tests := []struct {
		name  string
		ndvi  [][]float64
		ndwi  [][]float64
		flood [][]float64
		want  [][]float64
	}{
		{
			name:  "not flooded",
			ndvi:  [][]float64{{0.8, 0.8}, {0.1, 0.1}},
			ndwi:  [][]float64{{0.0, 0.5}, {0.0, 0.5}},
			flood: [][]float64{{0, 0}, {0, 0}},
			want:  [][]float64{{1, 0}, {0, 0}},
		},
		{
			name:  "flooded",
			ndvi:  [][]float64{{0.8, 0.8}, {0.1, 0.1}},
			ndwi:  [][]float64{{0.0, 0.5}, {0.0, 0.5}},
			flood: [][]float64{{1, 1}, {1, 1}},
			want:  [][]float64{{0, 0}, {0, 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Mask(tt.ndvi, tt.ndwi, tt.flood)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMask_Thresholds(t *testing.T) {
	got, err := Mask(
		[][]float64{{0.4, 0.41, 0.9}},
		[][]float64{{0, 0, 0.2}},
		[][]float64{{0, 0, 0}},
	)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 1, 0}}, got)
}

func TestMask_ShapeMismatch(t *testing.T) {
	_, err := Mask([][]float64{{1}}, [][]float64{{1, 1}}, [][]float64{{0}})
	assert.ErrorIs(t, err, bandmath.ErrShape)

	_, err = Mask([][]float64{{1}}, [][]float64{{1}}, [][]float64{{0}, {0}})
	assert.ErrorIs(t, err, bandmath.ErrShape)
}

func save(t *testing.T, path string, grid [][]float64, dt godal.DataType) string {
	t.Helper()
	wkt, err := raster.EPSG(32643)
	require.NoError(t, err)
	profile := raster.Profile{
		CRS:       wkt,
		Transform: [6]float64{500000, 10, 0, 2000000, 0, -10},
		Width:     len(grid[0]),
		Height:    len(grid),
		DataType:  godal.Float32,
		Count:     1,
	}
	require.NoError(t, raster.Save(path, grid, profile, raster.Overrides{DataType: dt}))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	ndvi := save(t, filepath.Join(dir, "NDVI.tif"), [][]float64{
		{0.8, 0.8, 0.8, 0.8},
		{0.8, 0.8, 0.8, 0.8},
		{0.1, 0.1, 0.8, 0.8},
		{0.1, 0.1, 0.8, 0.8},
	}, godal.Float32)
	ndwi := save(t, filepath.Join(dir, "NDWI.tif"), [][]float64{
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}, godal.Float32)
	// Coarser flood mask, nearest resampling keeps it binary.
	flood := save(t, filepath.Join(dir, "flood_mask.tif"), [][]float64{
		{0, 1},
		{0, 0},
	}, godal.Byte)

	out := filepath.Join(dir, "site_suitability_outputs")
	res, err := Run(ndvi, ndwi, flood, out)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, res.Status)
	assert.Equal(t, out, res.Path)
	assert.FileExists(t, res.PNG)

	mask, err := raster.Load(res.TIF)
	require.NoError(t, err)
	assert.Equal(t, godal.Byte, mask.Profile.DataType)
	assert.Equal(t, [][]float64{
		{1, 1, 0, 0},
		{1, 1, 0, 0},
		{0, 0, 1, 1},
		{0, 0, 1, 1},
	}, mask.Data)
}

func TestRun_MissingFloodMask(t *testing.T) {
	dir := t.TempDir()
	ndvi := save(t, filepath.Join(dir, "NDVI.tif"), [][]float64{{0.8}}, godal.Float32)
	_, err := Run(ndvi, ndvi, filepath.Join(dir, "missing.tif"), dir)
	assert.ErrorIs(t, err, raster.ErrIO)
}
