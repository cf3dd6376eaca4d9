package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/forest-guardian/landwatch/internal/ingest"
	"github.com/forest-guardian/landwatch/internal/log"
)

type IngestSummary struct {
	Extract ingest.ExtractReport
	Rename  ingest.RenameReport
	Derive  ingest.DeriveReport
}

// Ingest extracts today's archives into the data dir, renames the new
// folders to their dates and derives every eligible scene.
func (p *Pipeline) Ingest(ctx context.Context) (IngestSummary, error) {
	var summary IngestSummary

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	start := time.Now()
	extract, err := p.ingestor.ExtractTodayArchives(p.cfg.DownloadsDir, p.cfg.DataDir)
	p.metrics.ObserveStage("extract", start, err)
	if err != nil {
		return summary, fmt.Errorf("extract archives: %w", err)
	}
	summary.Extract = extract
	p.metrics.ObserveArchives(len(extract.Extracted), len(extract.Failed))

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	rename, err := ingest.RenameDateFolders(p.cfg.DataDir)
	if err != nil {
		return summary, fmt.Errorf("rename folders: %w", err)
	}
	summary.Rename = rename

	derive, err := p.Derive(ctx)
	summary.Derive = derive
	if err != nil {
		return summary, err
	}

	log.Infow("ingest finished",
		"extracted", len(extract.Extracted),
		"renamed", len(rename.Renamed),
		"derived", len(derive.Derived),
		"cached", len(derive.Cached),
		"failed", len(extract.Failed)+len(derive.Failed))
	return summary, nil
}

// Derive runs band math over every scene under the data dir.
func (p *Pipeline) Derive(ctx context.Context) (ingest.DeriveReport, error) {
	if err := ctx.Err(); err != nil {
		return ingest.DeriveReport{}, err
	}
	start := time.Now()
	report, err := p.ingestor.DeriveAllScenes(p.cfg.DataDir)
	p.metrics.ObserveStage("derive", start, err)
	if err != nil {
		return report, fmt.Errorf("derive scenes: %w", err)
	}
	p.metrics.ObserveScenes(len(report.Derived), len(report.Cached), len(report.Failed))
	return report, nil
}
