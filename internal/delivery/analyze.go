package delivery

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/forest-guardian/landwatch/internal/change"
	"github.com/forest-guardian/landwatch/internal/log"
	"github.com/forest-guardian/landwatch/internal/properties"
	"github.com/forest-guardian/landwatch/internal/report"
	"github.com/forest-guardian/landwatch/internal/scene"
	"github.com/forest-guardian/landwatch/internal/suitability"
)

const (
	StageFlood       = "flood"
	StageNDVIChange  = "ndvi_change"
	StageSuitability = "site_suitability"
)

// StageError is a failure confined to one pipeline stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// PipelineResult holds the outcome of each stage. A nil field means the stage
// did not run; see Skipped for the reason.
type PipelineResult struct {
	Flood           *change.FloodStats  `json:"flood,omitempty"`
	NDVIChange      *change.NDVIStats   `json:"ndvi_change,omitempty"`
	SiteSuitability *suitability.Result `json:"site_suitability,omitempty"`

	Earlier *scene.Entry      `json:"-"`
	Later   *scene.Entry      `json:"-"`
	Skipped map[string]string `json:"-"`
	Errors  []*StageError     `json:"-"`
}

func (r PipelineResult) Empty() bool {
	return r.Flood == nil && r.NDVIChange == nil && r.SiteSuitability == nil
}

func (r *PipelineResult) skip(stage, reason string) {
	if r.Skipped == nil {
		r.Skipped = make(map[string]string)
	}
	r.Skipped[stage] = reason
	log.Warnw("stage skipped", "stage", stage, "reason", reason)
}

// Analyze compares the earliest and latest valid scenes under root. Flood
// extent and NDVI change run concurrently; suitability always follows them
// and reports failed when the flood mask is missing. Stage failures are recorded on the result. The returned error
// is reserved for conditions that stop the whole run, such as fewer than two
// valid scenes.
func (p *Pipeline) Analyze(ctx context.Context, root string) (PipelineResult, error) {
	var res PipelineResult

	if err := ctx.Err(); err != nil {
		return res, err
	}
	entries, err := p.registry.Scan(root)
	if err != nil {
		return res, err
	}
	earlier, later, err := scene.ComparisonPair(entries)
	if err != nil {
		log.Warnw("not enough scenes to compare, nothing to analyze", "root", root, "error", err)
		return res, err
	}
	res.Earlier, res.Later = &earlier, &later
	log.Infow("comparing scenes", "earlier", earlier.Name, "later", later.Name, "candidates", len(entries))

	floodDir := filepath.Join(root, properties.FloodExtentDirName)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	fail := func(stage string, err error) {
		mu.Lock()
		defer mu.Unlock()
		res.Errors = append(res.Errors, &StageError{Stage: stage, Err: err})
		log.Errorw("stage failed", "stage", stage, "error", err)
	}

	g.Go(func() error {
		stats, err := runStage(p, ctx, StageFlood, func() (*change.FloodStats, error) {
			return change.Flood(earlier.NDWI, later.NDWI, floodDir)
		})
		if err != nil {
			fail(StageFlood, err)
			return nil
		}
		p.metrics.SetFloodedPercent(stats.FloodedPercent)
		res.Flood = stats
		return nil
	})

	if earlier.HasNDVI() && later.HasNDVI() {
		g.Go(func() error {
			stats, err := runStage(p, ctx, StageNDVIChange, func() (*change.NDVIStats, error) {
				return change.NDVIChange(earlier.NDVI, later.NDVI, floodDir)
			})
			if err != nil {
				fail(StageNDVIChange, err)
				return nil
			}
			p.metrics.SetNDVIChange(stats.GainPercent, stats.LossPercent, stats.NeutralPercent)
			res.NDVIChange = stats
			return nil
		})
	} else {
		res.skip(StageNDVIChange, "NDVI raster missing on the earliest or latest scene")
	}

	_ = g.Wait()

	floodMask := ""
	if res.Flood != nil {
		floodMask = res.Flood.FloodMaskTIF
	}
	res.SiteSuitability = p.suitability(ctx, later, floodMask, filepath.Join(root, properties.SuitabilityDirName), fail)

	p.persist(root, res)
	return res, nil
}

func (p *Pipeline) suitability(ctx context.Context, later scene.Entry, floodMask, outDir string, fail func(string, error)) *suitability.Result {
	result, err := runStage(p, ctx, StageSuitability, func() (*suitability.Result, error) {
		if floodMask == "" {
			return nil, fmt.Errorf("%w: flood mask unavailable", scene.ErrMissingInput)
		}
		if !later.HasNDVI() {
			return nil, fmt.Errorf("%w: scene %s has no NDVI raster", scene.ErrMissingInput, later.Name)
		}
		return suitability.Run(later.NDVI, later.NDWI, floodMask, outDir)
	})
	if err != nil {
		fail(StageSuitability, err)
		return &suitability.Result{Status: suitability.StatusFailed, Error: err.Error()}
	}
	return result
}

// runStage checks ctx before starting fn and records its duration.
func runStage[T any](p *Pipeline, ctx context.Context, stage string, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	start := time.Now()
	out, err := fn()
	p.metrics.ObserveStage(stage, start, err)
	return out, err
}

// persist writes the result JSON, a history row and the footprint next to
// the scenes. Failures here never change the result.
func (p *Pipeline) persist(root string, res PipelineResult) {
	if err := report.WriteJSON(filepath.Join(root, report.ResultFile), res); err != nil {
		log.Warnw("failed to write pipeline result", "error", err)
	}

	row := report.HistoryRow{
		RunAt:        p.clock.Now().UTC().Format(time.RFC3339),
		EarlierScene: res.Earlier.Name,
		LaterScene:   res.Later.Name,
	}
	if res.Flood != nil {
		row.FloodedPixels = res.Flood.FloodedPixels
		row.FloodedPercent = res.Flood.FloodedPercent
		row.NonFloodedPercent = res.Flood.NonFloodedPercent
	}
	if res.NDVIChange != nil {
		row.GainPercent = res.NDVIChange.GainPercent
		row.LossPercent = res.NDVIChange.LossPercent
		row.NeutralPercent = res.NDVIChange.NeutralPercent
	}
	if res.SiteSuitability != nil {
		row.SiteSuitability = res.SiteSuitability.Status
	}
	if err := report.AppendHistory(filepath.Join(root, report.HistoryFile), row); err != nil {
		log.Warnw("failed to append change history", "error", err)
	}

	if res.Flood == nil {
		return
	}
	feature, err := report.Footprint(res.Flood.FloodMaskTIF, map[string]interface{}{
		"earlier_scene":   res.Earlier.Name,
		"later_scene":     res.Later.Name,
		"flooded_percent": res.Flood.FloodedPercent,
	})
	if err == nil {
		err = report.WriteFootprint(filepath.Join(root, properties.FloodExtentDirName, report.FootprintFile), feature)
	}
	if err != nil {
		log.Warnw("failed to write footprint", "error", err)
	}
}
