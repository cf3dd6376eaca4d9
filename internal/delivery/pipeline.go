package delivery

import (
	"github.com/jonboulle/clockwork"

	"github.com/forest-guardian/landwatch/internal/ingest"
	"github.com/forest-guardian/landwatch/internal/metrics"
	"github.com/forest-guardian/landwatch/internal/properties"
	"github.com/forest-guardian/landwatch/internal/scene"
)

// Pipeline wires ingest, the scene registry and the change engines together
// for one configuration.
type Pipeline struct {
	cfg      *properties.Config
	registry *scene.Registry
	ingestor *ingest.Ingestor
	metrics  *metrics.Metrics
	clock    clockwork.Clock
}

// NewPipeline builds a pipeline. m may be nil when metrics are not wanted.
func NewPipeline(cfg *properties.Config, clock clockwork.Clock, m *metrics.Metrics) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		cfg:      cfg,
		registry: scene.NewRegistry(cfg),
		ingestor: ingest.New(cfg, clock),
		metrics:  m,
		clock:    clock,
	}
}

// ShowProgress toggles progress bars during ingest.
func (p *Pipeline) ShowProgress(show bool) {
	p.ingestor.Progress = show
}

func (p *Pipeline) Scenes() ([]scene.Entry, error) {
	return p.registry.Scan(p.cfg.DataDir)
}
