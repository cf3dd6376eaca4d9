package ingest

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/forest-guardian/landwatch/internal/log"
)

type ExtractReport struct {
	Extracted []string
	Failed    []string
}

type archive struct {
	name    string
	path    string
	created time.Time
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

// todayArchives lists prefixed zips created on the clock's current day, oldest first.
func (in *Ingestor) todayArchives(downloadsDir string) ([]archive, error) {
	entries, err := os.ReadDir(downloadsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read downloads dir %s: %w", downloadsDir, err)
	}

	now := in.clock.Now()
	var archives []archive
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, in.prefix) || !strings.HasSuffix(name, ".zip") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			log.Warnw("failed to stat archive", "archive", name, "error", err)
			continue
		}
		created := changeTime(info)
		if !sameDay(now, created) {
			log.Debugw("archive not from today, skipping", "archive", name, "created", created)
			continue
		}
		archives = append(archives, archive{name: name, path: filepath.Join(downloadsDir, name), created: created})
	}

	sort.SliceStable(archives, func(i, j int) bool {
		return archives[i].created.Before(archives[j].created)
	})
	return archives, nil
}

// ExtractTodayArchives expands every archive created today into
// targetDir/<archive name without .zip>. A failing archive is logged and skipped.
func (in *Ingestor) ExtractTodayArchives(downloadsDir, targetDir string) (ExtractReport, error) {
	var report ExtractReport

	archives, err := in.todayArchives(downloadsDir)
	if err != nil {
		return report, err
	}
	if len(archives) == 0 {
		log.Infow("no archives from today", "dir", downloadsDir, "prefix", in.prefix)
		return report, nil
	}

	bar := in.progressBar(len(archives), "Extracting archives")
	for _, a := range archives {
		dest := filepath.Join(targetDir, strings.TrimSuffix(a.name, ".zip"))
		n, err := extractZip(a.path, dest)
		if err != nil {
			log.Errorw("failed to extract archive", "archive", a.name, "error", err)
			report.Failed = append(report.Failed, a.name)
		} else {
			log.Infow("extracted archive", "archive", a.name, "dest", dest, "files", n)
			report.Extracted = append(report.Extracted, dest)
		}
		_ = bar.Add(1)
	}
	return report, nil
}

func extractZip(src, dest string) (int, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if !filepath.IsLocal(f.Name) {
			return 0, fmt.Errorf("entry %q escapes the extraction dir", f.Name)
		}
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dest, err)
	}

	n := 0
	for _, f := range r.File {
		path := filepath.Join(dest, f.Name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0755); err != nil {
				return n, err
			}
			continue
		}
		if err := extractFile(f, path); err != nil {
			return n, fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
		n++
	}
	return n, nil
}

func extractFile(f *zip.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
