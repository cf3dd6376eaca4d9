package scene

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/forest-guardian/landwatch/internal/log"
	"github.com/forest-guardian/landwatch/internal/properties"
	"github.com/forest-guardian/landwatch/internal/utils"
)

const DateLayout = "2006-01-02"

const (
	NDVIFile = ProductNDVI
	NDWIFile = ProductNDWI
)

var (
	ErrInsufficientData = errors.New("fewer than two valid scenes")
	ErrAmbiguousInput   = errors.New("more than one file matches")
	ErrMissingInput     = errors.New("required input not found")
)

// Entry is one dated scene folder as seen by the registry.
type Entry struct {
	Name string
	Dir  string
	Date time.Time
	NDVI string
	NDWI string
}

func (e Entry) HasNDVI() bool { return e.NDVI != "" }
func (e Entry) HasNDWI() bool { return e.NDWI != "" }

// Valid reports whether the entry can take part in a comparison.
func (e Entry) Valid() bool { return !e.Date.IsZero() && e.HasNDWI() }

type Registry struct {
	strict bool
}

func NewRegistry(cfg *properties.Config) *Registry {
	return &Registry{strict: cfg.StrictIndexResolution}
}

// ParseDate reads the leading YYYY-MM-DD of a folder name. Anything after the
// first underscore (the de-duplication suffix) is ignored.
func ParseDate(name string) (time.Time, bool) {
	date, err := time.Parse(DateLayout, strings.Split(name, "_")[0])
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// Scan lists the valid scenes directly under root, oldest first.
func (r *Registry) Scan(root string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene root %s: %w", root, err)
	}

	var entries []Entry
	for _, d := range dirEntries {
		if !d.IsDir() {
			continue
		}
		date, ok := ParseDate(d.Name())
		if !ok {
			log.Debugw("skipping folder without a date", "folder", d.Name())
			continue
		}

		entry := Entry{Name: d.Name(), Dir: filepath.Join(root, d.Name()), Date: date}
		entry.NDWI = r.resolve(entry.Dir, NDWIFile)
		entry.NDVI = r.resolve(entry.Dir, NDVIFile)

		if !entry.Valid() {
			log.Warnw("scene has no NDWI raster, excluded", "scene", entry.Name)
			continue
		}
		if !entry.HasNDVI() {
			log.Warnw("scene has no NDVI raster", "scene", entry.Name)
		}
		entries = append(entries, entry)
	}

	// os.ReadDir is sorted by name, so same-day folders stay in suffix order.
	return utils.SortByDate(entries, func(e Entry) time.Time { return e.Date }, true), nil
}

func (r *Registry) resolve(dir, substring string) string {
	path, err := FindFile(dir, substring, r.strict)
	switch {
	case err == nil:
		return path
	case errors.Is(err, ErrMissingInput):
		return ""
	case errors.Is(err, ErrAmbiguousInput):
		log.Errorw("ambiguous index raster, scene input left unresolved", "dir", dir, "error", err)
		return ""
	default:
		log.Warnw("failed to search scene folder", "dir", dir, "error", err)
		return ""
	}
}

// ComparisonPair returns the earliest and latest valid entries.
func ComparisonPair(entries []Entry) (Entry, Entry, error) {
	valid := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Valid() {
			valid = append(valid, e)
		}
	}
	if len(valid) < 2 {
		return Entry{}, Entry{}, fmt.Errorf("%w: found %d", ErrInsufficientData, len(valid))
	}
	return valid[0], valid[len(valid)-1], nil
}

// FindFile searches dir recursively for a file whose name contains substring.
// A file named exactly substring wins over partial matches, so NDWI.tif is
// not confused with MNDWI.tif. When several candidates of the same rank remain
// the first in lexical walk order is returned, or ErrAmbiguousInput if strict.
func FindFile(dir, substring string, strict bool) (string, error) {
	var exact, partial []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.Contains(d.Name(), substring) {
			return nil
		}
		if d.Name() == substring {
			exact = append(exact, path)
		} else {
			partial = append(partial, path)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	candidates := exact
	if len(candidates) == 0 {
		candidates = partial
	}
	switch {
	case len(candidates) == 0:
		return "", fmt.Errorf("%w: no %s under %s", ErrMissingInput, substring, dir)
	case len(candidates) > 1 && strict:
		return "", fmt.Errorf("%w: %s under %s: %v", ErrAmbiguousInput, substring, dir, candidates)
	case len(candidates) > 1:
		log.Warnw("several files match, using the first", "pattern", substring, "dir", dir, "matches", candidates)
	}
	if len(exact) == 0 {
		log.Warnw("no exact match, using a partial one", "pattern", substring, "dir", dir, "file", candidates[0])
	}
	return candidates[0], nil
}

// GalleryImage is one false color composite for the dashboard.
type GalleryImage struct {
	Date time.Time
	Path string
}

var dedupSuffix = regexp.MustCompile(`_\d+$`)

// CleanFolderName strips the _N suffix added when renaming collided.
func CleanFolderName(name string) string {
	return dedupSuffix.ReplaceAllString(name, "")
}

// Gallery lists one False_color_composite.png per scene date, oldest first.
func Gallery(root string) ([]GalleryImage, error) {
	seen := make(map[string]bool)
	var images []GalleryImage

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(d.Name(), "False_color_composite.png") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		for _, part := range strings.Split(filepath.Dir(rel), string(filepath.Separator)) {
			clean := CleanFolderName(part)
			date, ok := ParseDate(clean)
			if !ok {
				continue
			}
			if !seen[clean] {
				seen[clean] = true
				images = append(images, GalleryImage{Date: date, Path: path})
			}
			break
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list composites under %s: %w", root, err)
	}

	return utils.SortByDate(images, func(i GalleryImage) time.Time { return i.Date }, true), nil
}
