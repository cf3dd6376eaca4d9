package change

import (
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forest-guardian/landwatch/internal/raster"
)

var testTransform = [6]float64{500000, 23.5, 0, 2000000, 0, -23.5}

func writeIndex(t *testing.T, path string, grid [][]float64) string {
	t.Helper()
	wkt, err := raster.EPSG(32643)
	require.NoError(t, err)
	profile := raster.Profile{
		CRS:       wkt,
		Transform: testTransform,
		Width:     len(grid[0]),
		Height:    len(grid),
		DataType:  godal.Float32,
		Count:     1,
	}
	require.NoError(t, raster.Save(path, grid, profile, raster.Overrides{}))
	return path
}

func filled(h, w int, v float64) [][]float64 {
	grid := make([][]float64, h)
	for y := range grid {
		grid[y] = make([]float64, w)
		for x := range grid[y] {
			grid[y][x] = v
		}
	}
	return grid
}

func TestClassifyFlood(t *testing.T) {
	delta := [][]float64{
		{0.5, 0.2, 0.21},
		{-1, math.NaN(), 0},
	}
	mask, stats := ClassifyFlood(delta)

	assert.Equal(t, [][]float64{{1, 0, 1}, {0, 0, 0}}, mask)
	assert.Equal(t, 2, stats.FloodedPixels)
	assert.Equal(t, 4, stats.NonFloodedPixels)
	assert.Equal(t, 33.33, stats.FloodedPercent)
	assert.Equal(t, 66.67, stats.NonFloodedPercent)
}

func TestClassifyFlood_PercentagesSumTo100(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		h, w := 1+rng.Intn(20), 1+rng.Intn(20)
		delta := make([][]float64, h)
		for y := range delta {
			delta[y] = make([]float64, w)
			for x := range delta[y] {
				delta[y][x] = rng.Float64()*2 - 1
			}
		}
		_, stats := ClassifyFlood(delta)
		assert.InDelta(t, 100.0, stats.FloodedPercent+stats.NonFloodedPercent, 1e-9)
		assert.Equal(t, h*w, stats.FloodedPixels+stats.NonFloodedPixels)
	}
}

func TestClassifyNDVI(t *testing.T) {
	delta := [][]float64{
		{0.5, 0.5, 0.11, -0.5, -0.11},
		{0, 0.1, -0.1, 0.05, -0.05},
	}
	stats := ClassifyNDVI(delta)

	assert.Equal(t, 3, stats.GainPixels)
	assert.Equal(t, 2, stats.LossPixels)
	assert.Equal(t, 5, stats.NeutralPixels)
	assert.Equal(t, 30.0, stats.GainPercent)
	assert.Equal(t, 20.0, stats.LossPercent)
	assert.Equal(t, 50.0, stats.NeutralPercent)
}

func TestClassifyNDVI_NaNIsUnclassified(t *testing.T) {
	stats := ClassifyNDVI([][]float64{{0.5, math.NaN(), 0, math.NaN()}})
	assert.Equal(t, 2, stats.Classified())
	assert.Equal(t, 50.0, stats.GainPercent)
	assert.Equal(t, 50.0, stats.NeutralPercent)

	empty := ClassifyNDVI([][]float64{{math.NaN()}})
	assert.Zero(t, empty.Classified())
	assert.Zero(t, empty.GainPercent)
}

func TestClassifyNDVI_Partition(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 100; i++ {
		n := 1 + rng.Intn(300)
		row := make([]float64, n)
		for x := range row {
			row[x] = rng.Float64()*2 - 1
		}
		stats := ClassifyNDVI([][]float64{row})
		assert.Equal(t, n, stats.Classified())
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([][]float64{{1, -1, math.NaN()}, {0.5, math.Inf(1), 0.5}})
	assert.InDelta(t, 0.25, s.MeanDelta, 1e-9)
	assert.Equal(t, -1.0, s.MinDelta)
	assert.Equal(t, 1.0, s.MaxDelta)

	assert.Equal(t, DeltaSummary{}, Summarize([][]float64{{math.NaN()}}))
}

func TestFlood_KnownPatch(t *testing.T) {
	dir := t.TempDir()
	earlier := filled(10, 10, 0.1)
	later := filled(10, 10, 0.15)
	for x := 0; x < 10; x++ {
		later[4][x] = 0.6
	}

	stats, err := Flood(
		writeIndex(t, filepath.Join(dir, "2024-06-01", "NDWI.tif"), earlier),
		writeIndex(t, filepath.Join(dir, "2025-06-01", "NDWI.tif"), later),
		filepath.Join(dir, "flood_extent"),
	)
	require.NoError(t, err)

	assert.Equal(t, 10, stats.FloodedPixels)
	assert.Equal(t, 90, stats.NonFloodedPixels)
	assert.Equal(t, 10.0, stats.FloodedPercent)
	assert.Equal(t, 90.0, stats.NonFloodedPercent)
	assert.FileExists(t, stats.FloodMapPNG)
	assert.FileExists(t, stats.FloodStatsPNG)

	mask, err := raster.Load(stats.FloodMaskTIF)
	require.NoError(t, err)
	assert.Equal(t, godal.Byte, mask.Profile.DataType)
	assert.Equal(t, testTransform, mask.Profile.Transform)
	assert.Equal(t, 1.0, mask.Data[4][3])
	assert.Equal(t, 0.0, mask.Data[5][3])
}

func TestFlood_ResamplesLaterOntoEarlierGrid(t *testing.T) {
	dir := t.TempDir()
	stats, err := Flood(
		writeIndex(t, filepath.Join(dir, "a.tif"), filled(4, 4, 0)),
		writeIndex(t, filepath.Join(dir, "b.tif"), filled(2, 2, 0.5)),
		dir,
	)
	require.NoError(t, err)
	assert.Equal(t, 16, stats.FloodedPixels)

	mask, err := raster.Load(stats.FloodMaskTIF)
	require.NoError(t, err)
	assert.Equal(t, 4, mask.Width())
	assert.Equal(t, 4, mask.Height())
}

func TestFlood_MissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := Flood(filepath.Join(dir, "missing.tif"), filepath.Join(dir, "other.tif"), dir)
	assert.ErrorIs(t, err, raster.ErrIO)
}

func TestNDVIChange(t *testing.T) {
	dir := t.TempDir()
	earlier := filled(2, 5, 0.3)
	later := [][]float64{
		{0.8, 0.8, 0.8, -0.2, -0.2},
		{0.3, 0.3, 0.3, 0.35, 0.25},
	}

	stats, err := NDVIChange(
		writeIndex(t, filepath.Join(dir, "early.tif"), earlier),
		writeIndex(t, filepath.Join(dir, "late.tif"), later),
		filepath.Join(dir, "flood_extent"),
	)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.GainPixels)
	assert.Equal(t, 2, stats.LossPixels)
	assert.Equal(t, 5, stats.NeutralPixels)
	assert.Equal(t, 30.0, stats.GainPercent)
	assert.Equal(t, 20.0, stats.LossPercent)
	assert.Equal(t, 50.0, stats.NeutralPercent)
	assert.FileExists(t, stats.DeltaNDVIPNG)
	assert.FileExists(t, stats.NDVIStatsChart)

	delta, err := raster.Load(stats.DeltaNDVITIF)
	require.NoError(t, err)
	assert.Equal(t, godal.Float32, delta.Profile.DataType)
	assert.InDelta(t, 0.5, delta.Data[0][0], 1e-6)
	assert.InDelta(t, -0.5, delta.Data[0][3], 1e-6)
}
