// Package metrics records run counters for node-exporter's textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "landwatch"

// Metrics holds the counters and gauges of one CLI run. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	registry *prometheus.Registry

	Archives       *prometheus.CounterVec // labels: result={extracted,failed}
	Scenes         *prometheus.CounterVec // labels: result={derived,cached,failed}
	StageDuration  *prometheus.GaugeVec   // labels: stage
	StageFailures  *prometheus.CounterVec // labels: stage
	FloodedPercent prometheus.Gauge
	NDVIChange     *prometheus.GaugeVec // labels: class={gain,loss,neutral}
	LastRun        prometheus.Gauge
}

// New registers all metrics on a private registry so repeated runs and tests
// never collide on the default one.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Archives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archives_total",
			Help:      "Archives processed by extraction result.",
		}, []string{"result"}),
		Scenes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenes_total",
			Help:      "Scene folders visited by derivation result.",
		}, []string{"result"}),
		StageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of the last run of each pipeline stage.",
		}, []string{"stage"}),
		StageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Pipeline stages that returned an error.",
		}, []string{"stage"}),
		FloodedPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "flooded_percent",
			Help:      "Share of the comparison grid flagged as newly flooded.",
		}),
		NDVIChange: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ndvi_change_percent",
			Help:      "Share of classified pixels per NDVI change class.",
		}, []string{"class"}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the metrics were last written.",
		}),
	}

	m.registry.MustRegister(
		m.Archives,
		m.Scenes,
		m.StageDuration,
		m.StageFailures,
		m.FloodedPercent,
		m.NDVIChange,
		m.LastRun,
	)
	return m
}

func (m *Metrics) ObserveArchives(extracted, failed int) {
	if m == nil {
		return
	}
	m.Archives.WithLabelValues("extracted").Add(float64(extracted))
	m.Archives.WithLabelValues("failed").Add(float64(failed))
}

func (m *Metrics) ObserveScenes(derived, cached, failed int) {
	if m == nil {
		return
	}
	m.Scenes.WithLabelValues("derived").Add(float64(derived))
	m.Scenes.WithLabelValues("cached").Add(float64(cached))
	m.Scenes.WithLabelValues("failed").Add(float64(failed))
}

// ObserveStage records how long stage took since started and whether it failed.
func (m *Metrics) ObserveStage(stage string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Set(time.Since(started).Seconds())
	if err != nil {
		m.StageFailures.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) SetFloodedPercent(pct float64) {
	if m == nil {
		return
	}
	m.FloodedPercent.Set(pct)
}

func (m *Metrics) SetNDVIChange(gain, loss, neutral float64) {
	if m == nil {
		return
	}
	m.NDVIChange.WithLabelValues("gain").Set(gain)
	m.NDVIChange.WithLabelValues("loss").Set(loss)
	m.NDVIChange.WithLabelValues("neutral").Set(neutral)
}

// WriteTextfile writes every metric to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	m.LastRun.SetToCurrentTime()
	return prometheus.WriteToTextfile(path, m.registry)
}
