package scene

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/forest-guardian/landwatch/internal/log"
	"github.com/forest-guardian/landwatch/internal/properties"
)

func observeWarnings(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	log.SetLogger(zap.New(core))
	t.Cleanup(func() { log.SetLogger(zap.NewNop()) })
	return logs
}

func touch(t *testing.T, parts ...string) string {
	t.Helper()
	path := filepath.Join(parts...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}

func lenient() *Registry { return NewRegistry(properties.Default()) }

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
		want time.Time
	}{
		{"2025-06-01", true, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"2025-06-01_1", true, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"2025-13-01", false, time.Time{}},
		{"R23JUN2025123456", false, time.Time{}},
		{"notes", false, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestScanOrdersValidScenes(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "2025-06-01", "outputs", "NDWI.tif")
	touch(t, root, "2025-06-01", "outputs", "NDVI.tif")
	touch(t, root, "2025-01-01", "outputs", "NDWI.tif")
	touch(t, root, "2025-01-01", "outputs", "NDVI.tif")
	touch(t, root, "2025-03-01", "outputs", "NDVI.tif") // no NDWI
	touch(t, root, "flood_extent", "flood_mask.tif")
	touch(t, root, "2025-02-01.txt")

	entries, err := lenient().Scan(root)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2025-01-01", entries[0].Name)
	assert.Equal(t, "2025-06-01", entries[1].Name)
	assert.Equal(t, filepath.Join(root, "2025-01-01", "outputs", "NDWI.tif"), entries[0].NDWI)
	assert.True(t, entries[1].HasNDVI())

	first, last, err := ComparisonPair(entries)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", first.Name)
	assert.Equal(t, "2025-06-01", last.Name)
}

func TestScanSameDateKeepsFolderOrder(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "2025-06-01_1", "NDWI.tif")
	touch(t, root, "2025-06-01", "NDWI.tif")
	touch(t, root, "2025-05-01", "NDWI.tif")

	entries, err := lenient().Scan(root)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"2025-05-01", "2025-06-01", "2025-06-01_1"},
		[]string{entries[0].Name, entries[1].Name, entries[2].Name})
}

func TestScanMissingNDVIIsStillValid(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "2025-01-01", "NDWI.tif")

	entries, err := lenient().Scan(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].HasNDVI())
}

func TestScanMissingRoot(t *testing.T) {
	_, err := lenient().Scan(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestComparisonPairInsufficient(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"empty", nil},
		{"one", []Entry{{Name: "a", Date: time.Now(), NDWI: "a/NDWI.tif"}}},
		{"one valid", []Entry{
			{Name: "a", Date: time.Now(), NDWI: "a/NDWI.tif"},
			{Name: "b", Date: time.Now()},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ComparisonPair(tt.entries)
			assert.ErrorIs(t, err, ErrInsufficientData)
		})
	}
}

func TestFindFilePrefersExactName(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "outputs", "MNDWI.tif")
	want := touch(t, dir, "outputs", "NDWI.tif")

	got, err := FindFile(dir, NDWIFile, true)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindFilePartialMatch(t *testing.T) {
	dir := t.TempDir()
	want := touch(t, dir, "scene_NDVI.tif")

	got, err := FindFile(dir, NDVIFile, true)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFindFilePartialMatchWarns(t *testing.T) {
	dir := t.TempDir()
	want := touch(t, dir, "outputs", "MNDWI.tif")
	logs := observeWarnings(t)

	got, err := FindFile(dir, NDWIFile, false)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	warnings := logs.FilterMessage("no exact match, using a partial one").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, want, warnings[0].ContextMap()["file"])
}

func TestFindFileExactMatchDoesNotWarn(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "outputs", "NDWI.tif")
	logs := observeWarnings(t)

	_, err := FindFile(dir, NDWIFile, false)
	require.NoError(t, err)
	assert.Zero(t, logs.Len())
}

func TestFindFileAmbiguous(t *testing.T) {
	dir := t.TempDir()
	first := touch(t, dir, "a", "NDWI.tif")
	touch(t, dir, "b", "NDWI.tif")

	got, err := FindFile(dir, NDWIFile, false)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	_, err = FindFile(dir, NDWIFile, true)
	assert.ErrorIs(t, err, ErrAmbiguousInput)
}

func TestFindFileMissing(t *testing.T) {
	_, err := FindFile(t.TempDir(), NDWIFile, false)
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestScanStrictExcludesAmbiguousScene(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "2025-01-01", "a", "NDWI.tif")
	touch(t, root, "2025-01-01", "b", "NDWI.tif")
	touch(t, root, "2025-02-01", "NDWI.tif")

	cfg := properties.Default()
	cfg.StrictIndexResolution = true
	entries, err := NewRegistry(cfg).Scan(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2025-02-01", entries[0].Name)
}

func TestGallery(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "2025-06-01", "outputs", "False_color_composite.png")
	touch(t, root, "2025-06-01_1", "outputs", "False_color_composite.png")
	touch(t, root, "2025-01-01", "outputs", "false_color_composite.PNG")
	touch(t, root, "2025-01-01", "outputs", "RGB_composite.png")
	touch(t, root, "misc", "False_color_composite.png")

	images, err := Gallery(root)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), images[0].Date)
	assert.Equal(t, filepath.Join(root, "2025-06-01", "outputs", "False_color_composite.png"), images[1].Path)
}

func TestCleanFolderName(t *testing.T) {
	assert.Equal(t, "2025-06-01", CleanFolderName("2025-06-01_12"))
	assert.Equal(t, "2025-06-01", CleanFolderName("2025-06-01"))
	assert.Equal(t, "2025-06-01_a", CleanFolderName("2025-06-01_a"))
}
