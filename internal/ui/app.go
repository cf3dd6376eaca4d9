package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/forest-guardian/landwatch/internal/delivery"
	"github.com/forest-guardian/landwatch/internal/log"
	"github.com/forest-guardian/landwatch/internal/metrics"
	"github.com/forest-guardian/landwatch/internal/notification"
	"github.com/forest-guardian/landwatch/internal/properties"
	"github.com/forest-guardian/landwatch/internal/scene"
)

// App runs pipeline actions for both the menu and the subcommands and takes
// care of printing, notifications and the metrics textfile.
type App struct {
	cfg      *properties.Config
	pipeline *delivery.Pipeline
	notifier *notification.Discord
	metrics  *metrics.Metrics
}

func NewApp(cfg *properties.Config, pipeline *delivery.Pipeline, notifier *notification.Discord, m *metrics.Metrics) *App {
	return &App{cfg: cfg, pipeline: pipeline, notifier: notifier, metrics: m}
}

func (a *App) Ingest(ctx context.Context) error {
	PrintWarning(fmt.Sprintf("Archives prefixed %q created today in %s will be extracted into %s.",
		a.cfg.ArchivePrefix, a.cfg.DownloadsDir, a.cfg.DataDir))

	summary, err := a.pipeline.Ingest(ctx)
	defer a.flushMetrics()
	if err != nil {
		a.fail("Error ingesting scenes", err)
		return err
	}

	PrintSuccess(fmt.Sprintf("Ingest finished: %d extracted, %d renamed, %d derived, %d unchanged.",
		len(summary.Extract.Extracted), len(summary.Rename.Renamed), len(summary.Derive.Derived), len(summary.Derive.Cached)))
	for _, name := range summary.Extract.Failed {
		PrintError("archive failed: " + name)
	}
	for _, folder := range summary.Rename.Skipped {
		printItem("left as is: %s", folder)
	}
	for _, dir := range summary.Derive.Failed {
		PrintError("scene failed: " + dir)
	}
	return nil
}

func (a *App) Derive(ctx context.Context) error {
	report, err := a.pipeline.Derive(ctx)
	defer a.flushMetrics()
	if err != nil {
		a.fail("Error deriving scenes", err)
		return err
	}
	PrintSuccess(fmt.Sprintf("Derived %d scenes, %d unchanged, %d failed.", len(report.Derived), len(report.Cached), len(report.Failed)))
	for _, dir := range report.Failed {
		PrintError("scene failed: " + dir)
	}
	return nil
}

func (a *App) Analyze(ctx context.Context, root string) error {
	if root == "" {
		root = a.cfg.DataDir
	}
	res, err := a.pipeline.Analyze(ctx, root)
	defer a.flushMetrics()
	if errors.Is(err, scene.ErrInsufficientData) {
		PrintWarning("At least two dated scenes with an NDWI raster are needed under " + root)
		return err
	}
	if err != nil {
		a.fail("Error analyzing scenes", err)
		return err
	}

	PrintResult(res)
	if len(res.Errors) > 0 {
		a.fail("Analysis finished with failed stages", errors.New(res.Summary()))
		return nil
	}
	if err := a.notifier.SendSuccess("Landwatch analysis complete. "+res.Summary(), res.DiscordFields()...); err != nil {
		log.Warnw("failed to send success notification", "error", err)
	}
	return nil
}

func (a *App) ListScenes() error {
	entries, err := a.pipeline.Scenes()
	if err != nil {
		PrintError(err.Error())
		return err
	}
	PrintScenes(entries)
	return nil
}

func (a *App) ListGallery() error {
	images, err := scene.Gallery(a.cfg.DataDir)
	if err != nil {
		PrintError(err.Error())
		return err
	}
	if len(images) == 0 {
		PrintWarning("No false color composites found yet. Run ingest first.")
		return nil
	}
	fmt.Fprintf(out, "%s\nFalse color composites:%s\n", ColorGreen, ColorReset)
	for _, img := range images {
		printItem("%s  %s", img.Date.Format(scene.DateLayout), img.Path)
	}
	return nil
}

func (a *App) fail(title string, err error) {
	PrintError(fmt.Sprintf("%s: %s", title, err))
	if nerr := a.notifier.SendError(fmt.Sprintf("%s: %s", title, err)); nerr != nil {
		log.Warnw("failed to send error notification", "error", nerr)
	}
}

func (a *App) flushMetrics() {
	if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
		log.Warnw("failed to write metrics textfile", "path", a.cfg.MetricsFile, "error", err)
	}
}
