// Package ingest turns downloaded LISS-III archives into dated scene folders
// with derived index rasters and previews.
package ingest

import (
	"github.com/jonboulle/clockwork"
	"github.com/schollz/progressbar/v3"

	"github.com/forest-guardian/landwatch/internal/properties"
)

type Ingestor struct {
	prefix  string
	workers int
	clock   clockwork.Clock

	// Progress draws progress bars on stdout.
	Progress bool
}

func New(cfg *properties.Config, clock clockwork.Clock) *Ingestor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = properties.DefaultWorkers
	}
	return &Ingestor{
		prefix:  cfg.ArchivePrefix,
		workers: workers,
		clock:   clock,
	}
}

func (in *Ingestor) progressBar(total int, description string) *progressbar.ProgressBar {
	if in.Progress {
		return progressbar.Default(int64(total), description)
	}
	return progressbar.DefaultSilent(int64(total), description)
}
