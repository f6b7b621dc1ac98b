// Package metrics exposes progress of analyses as Prometheus metrics.
package metrics

import (
	"github.com/google/uuid"
	driver "github.com/opst/knitsim/pkg/analysisdriver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "knitsim"

// Collector counts notifications of the driver.
//
// Counters of data points are labeled with the name of the analysis.
type Collector struct {
	AnalysesRunning *prometheus.GaugeVec

	AnalysesCompleted prometheus.Counter
	AnalysesStopped   prometheus.Counter

	DataPointsQueued    *prometheus.CounterVec
	DataPointsCompleted *prometheus.CounterVec
	DataPointsStopped   *prometheus.CounterVec
}

var _ driver.Listener = &Collector{}

// New creates collectors and registers them to reg.
//
// It panics when they are registered twice, as promauto does.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		AnalysesRunning: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "analyses_running",
				Help:      "Number of analyses being run, by algorithm",
			},
			[]string{"algorithm"},
		),
		AnalysesCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_completed_total",
			Help:      "Total analyses completed",
		}),
		AnalysesStopped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_stopped_total",
			Help:      "Total analyses stopped before completion",
		}),
		DataPointsQueued: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "datapoints_queued_total",
				Help:      "Total data points queued as jobs",
			},
			[]string{"analysis"},
		),
		DataPointsCompleted: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "datapoints_completed_total",
				Help:      "Total data points whose jobs have finished",
			},
			[]string{"analysis"},
		),
		DataPointsStopped: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "datapoints_stopped_total",
				Help:      "Total data points stopped",
			},
			[]string{"analysis"},
		),
	}
}

func (c *Collector) AnalysisStarted(s driver.Summary) {
	c.AnalysesRunning.WithLabelValues(s.Algorithm).Inc()
}

func (c *Collector) DataPointQueued(s driver.Summary, _ uuid.UUID) {
	c.DataPointsQueued.WithLabelValues(s.Name).Inc()
}

func (c *Collector) DataPointComplete(s driver.Summary, _ uuid.UUID) {
	c.DataPointsCompleted.WithLabelValues(s.Name).Inc()
}

func (c *Collector) DataPointStopped(s driver.Summary, _ uuid.UUID) {
	c.DataPointsStopped.WithLabelValues(s.Name).Inc()
}

func (c *Collector) AnalysisComplete(s driver.Summary) {
	c.AnalysesRunning.WithLabelValues(s.Algorithm).Dec()
	c.AnalysesCompleted.Inc()
}

func (c *Collector) AnalysisStopped(s driver.Summary) {
	c.AnalysesRunning.WithLabelValues(s.Algorithm).Dec()
	c.AnalysesStopped.Inc()
}
