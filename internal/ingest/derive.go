package ingest

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/gammazero/workerpool"

	"github.com/forest-guardian/landwatch/internal/bandmath"
	"github.com/forest-guardian/landwatch/internal/cache"
	"github.com/forest-guardian/landwatch/internal/log"
	"github.com/forest-guardian/landwatch/internal/raster"
	"github.com/forest-guardian/landwatch/internal/scene"
	"github.com/forest-guardian/landwatch/output"
)

// CacheDir is where derivation fingerprints are kept, relative to the base dir.
const CacheDir = ".derive_cache"

var requiredBands = []int{scene.BandGreen, scene.BandRed, scene.BandNIR, scene.BandSWIR}

type DeriveReport struct {
	Derived []scene.Scene
	Cached  []string
	Failed  []string
}

func bandPath(dir string, band int) string {
	return filepath.Join(dir, fmt.Sprintf("BAND%d.tif", band))
}

// candidateDirs returns every directory under baseDir holding a BAND2* file.
func candidateDirs(baseDir string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	err := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasPrefix(d.Name(), "BAND2") {
			return nil
		}
		dir := filepath.Dir(path)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
		return nil
	})
	sort.Strings(dirs)
	return dirs, err
}

// DeriveAllScenes derives products for every eligible scene under baseDir on
// a bounded worker pool. Scene failures are logged and reported, not returned.
func (in *Ingestor) DeriveAllScenes(baseDir string) (DeriveReport, error) {
	var report DeriveReport

	dirs, err := candidateDirs(baseDir)
	if err != nil {
		return report, fmt.Errorf("failed to walk %s: %w", baseDir, err)
	}
	if len(dirs) == 0 {
		log.Infow("no scenes to derive", "dir", baseDir)
		return report, nil
	}

	fc := cache.NewFileCache[map[string]string](filepath.Join(baseDir, CacheDir))

	var (
		mu  sync.Mutex
		bar = in.progressBar(len(dirs), "Deriving scenes")
	)

	wp := workerpool.New(in.workers)
	for _, dir := range dirs {
		dir := dir
		wp.Submit(func() {
			s, cached, err := deriveCached(fc, dir)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				log.Errorw("failed to derive scene", "scene", dir, "error", err)
				report.Failed = append(report.Failed, dir)
			case cached:
				log.Infow("scene unchanged, skipping", "scene", dir)
				report.Cached = append(report.Cached, dir)
			default:
				log.Infow("derived scene", "scene", dir, "products", len(s.Products))
				report.Derived = append(report.Derived, s)
			}
			_ = bar.Add(1)
		})
	}
	wp.StopWait()

	sort.Strings(report.Failed)
	sort.Strings(report.Cached)
	sort.Slice(report.Derived, func(i, j int) bool { return report.Derived[i].Dir < report.Derived[j].Dir })
	return report, nil
}

func deriveCached(fc *cache.FileCache[map[string]string], dir string) (scene.Scene, bool, error) {
	bands := make(map[int]string, len(requiredBands))
	paths := make([]string, 0, len(requiredBands))
	for _, b := range requiredBands {
		p := bandPath(dir, b)
		if !exists(p) {
			return scene.Scene{}, false, fmt.Errorf("%w: %s", scene.ErrMissingInput, filepath.Base(p))
		}
		bands[b] = p
		paths = append(paths, p)
	}

	key, err := fc.FileKey(paths...)
	if err != nil {
		return scene.Scene{}, false, err
	}
	if products, ok := fc.Get(key); ok && allExist(products) {
		return scene.Scene{Dir: dir, Bands: bands, Products: products}, true, nil
	}

	s, err := DeriveScene(dir)
	if err != nil {
		return s, false, err
	}
	if err := fc.Set(key, s.Products); err != nil {
		log.Warnw("failed to record derivation", "scene", dir, "error", err)
	}
	return s, false, nil
}

func allExist(products map[string]string) bool {
	if len(products) == 0 {
		return false
	}
	for _, p := range products {
		if !exists(p) {
			return false
		}
	}
	return true
}

// DeriveScene writes composites and index rasters for one scene folder into
// <dir>/outputs. BAND2 supplies the georeferencing for every GeoTIFF.
func DeriveScene(dir string) (scene.Scene, error) {
	s := scene.Scene{Dir: dir, Bands: make(map[int]string), Products: make(map[string]string)}
	if date, ok := scene.ParseDate(filepath.Base(dir)); ok {
		s.Date = date
	}

	grids := make(map[int][][]float64, len(requiredBands))
	var profile raster.Profile
	for _, b := range requiredBands {
		p := bandPath(dir, b)
		r, err := raster.Load(p)
		if err != nil {
			return s, err
		}
		if b == scene.BandGreen {
			profile = r.Profile
		}
		grids[b] = r.Data
		s.Bands[b] = p
	}
	b2, b3, b4, b5 := grids[scene.BandGreen], grids[scene.BandRed], grids[scene.BandNIR], grids[scene.BandSWIR]

	outDir := filepath.Join(dir, scene.OutputsDir)
	product := func(name string) string {
		path := filepath.Join(outDir, name)
		s.Products[name] = path
		return path
	}

	rgb, err := bandmath.Composite(b3, b2, b2)
	if err != nil {
		return s, fmt.Errorf("rgb composite: %w", err)
	}
	if err := output.SaveRGB(product(scene.ProductRGB), rgb); err != nil {
		return s, err
	}

	falseColor, err := bandmath.Composite(b4, b3, b2)
	if err != nil {
		return s, fmt.Errorf("false color composite: %w", err)
	}
	if err := output.SaveRGB(product(scene.ProductFalseColor), falseColor); err != nil {
		return s, err
	}

	indices := []struct {
		tif, png string
		cmap     output.Colormap
		compute  func() ([][]float64, error)
	}{
		{scene.ProductNDVI, scene.ProductNDVIPreview, output.RdYlGn, func() ([][]float64, error) { return bandmath.NDVI(b4, b3) }},
		{scene.ProductNDWI, scene.ProductNDWIPreview, output.Blues, func() ([][]float64, error) { return bandmath.NDWI(b2, b4) }},
		{scene.ProductMNDWI, scene.ProductMNDWIPreview, output.Blues, func() ([][]float64, error) { return bandmath.MNDWI(b2, b5) }},
	}
	for _, idx := range indices {
		grid, err := idx.compute()
		if err != nil {
			return s, fmt.Errorf("%s: %w", idx.tif, err)
		}
		if err := raster.Save(product(idx.tif), grid, profile, raster.Overrides{DataType: godal.Float32, Count: 1}); err != nil {
			return s, err
		}
		if err := output.SaveGrid(product(idx.png), grid, idx.cmap, output.Range{}); err != nil {
			return s, err
		}
	}
	return s, nil
}
