package ui

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forest-guardian/landwatch/internal/change"
	"github.com/forest-guardian/landwatch/internal/delivery"
	"github.com/forest-guardian/landwatch/internal/metrics"
	"github.com/forest-guardian/landwatch/internal/notification"
	"github.com/forest-guardian/landwatch/internal/properties"
	"github.com/forest-guardian/landwatch/internal/scene"
)

func capture(t *testing.T, stdin string) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prevOut, prevIn := out, in
	out, in = buf, bufio.NewReader(strings.NewReader(stdin))
	t.Cleanup(func() { out, in = prevOut, prevIn })
	return buf
}

func TestReadInt(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		want    int
		wantErr bool
	}{
		{"valid", "2\n", 2, false},
		{"no newline", "3", 3, false},
		{"not a number", "abc\n", 0, true},
		{"out of range", "9\n", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capture(t, tt.stdin)
			got, err := ReadInt("> ", 1, 5)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	capture(t, "")
	_, err := ReadInt("> ", 1, 5)
	assert.ErrorIs(t, err, io.EOF)
}

func TestPrintResult(t *testing.T) {
	buf := capture(t, "")
	PrintResult(delivery.PipelineResult{
		Earlier: &scene.Entry{Name: "2024-06-01"},
		Later:   &scene.Entry{Name: "2025-06-01"},
		Flood:   &change.FloodStats{FloodedPixels: 10, NonFloodedPixels: 90, FloodedPercent: 10, NonFloodedPercent: 90},
		Skipped: map[string]string{delivery.StageNDVIChange: "NDVI raster missing"},
	})

	text := buf.String()
	assert.Contains(t, text, "Compared 2024-06-01 with 2025-06-01")
	assert.Contains(t, text, "Flooded Pixels     : 10 (10.00%)")
	assert.Contains(t, text, "ndvi_change skipped")
}

func newApp(t *testing.T) (*App, *properties.Config) {
	cfg := properties.Default()
	cfg.DataDir = t.TempDir()
	cfg.DownloadsDir = t.TempDir()
	cfg.MetricsFile = filepath.Join(t.TempDir(), "landwatch.prom")
	m := metrics.New()
	p := delivery.NewPipeline(cfg, clockwork.NewFakeClockAt(time.Now()), m)
	return NewApp(cfg, p, notification.NewDiscord(cfg), m), cfg
}

func TestShowMenu_ExitsOnChoiceAndEOF(t *testing.T) {
	app, _ := newApp(t)

	buf := capture(t, "7\n4\n6\n")
	ShowMenu(context.Background(), app)
	assert.Contains(t, buf.String(), "value must be between 1 and 6")
	assert.Contains(t, buf.String(), "No valid scenes found.")
	assert.Contains(t, buf.String(), "Exiting...")

	buf = capture(t, "")
	ShowMenu(context.Background(), app)
	assert.Contains(t, buf.String(), "Exiting...")
}

func TestApp_AnalyzeInsufficientData(t *testing.T) {
	app, cfg := newApp(t)
	buf := capture(t, "")

	err := app.Analyze(context.Background(), "")
	assert.ErrorIs(t, err, scene.ErrInsufficientData)
	assert.Contains(t, buf.String(), "At least two dated scenes")
	assert.FileExists(t, cfg.MetricsFile)
}

func TestApp_IngestEmptyDownloads(t *testing.T) {
	app, _ := newApp(t)
	buf := capture(t, "")

	require.NoError(t, app.Ingest(context.Background()))
	assert.Contains(t, buf.String(), "Ingest finished: 0 extracted")
}
