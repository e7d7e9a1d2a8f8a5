package common

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the gauges of one benchmark run in a private registry,
// so several runs in the same process never collide.
type Metrics struct {
	reg *prometheus.Registry

	iterations prometheus.Counter
	rnorm      prometheus.Gauge
	zeta       prometheus.Gauge
	mops       prometheus.Gauge
	seconds    prometheus.Gauge
	verified   prometheus.Gauge
	sections   *prometheus.GaugeVec
}

// NewMetrics registers the npb_<name>_* gauges labelled with class and
// run id.
func NewMetrics(name, class, runID string) *Metrics {
	ns := "npb_" + strings.ToLower(name)
	labels := prometheus.Labels{"class": class, "run_id": runID}
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "iterations_total", ConstLabels: labels,
			Help: "Outer iterations completed.",
		}),
		rnorm: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Name: "residual_norm", ConstLabels: labels,
			Help: "Residual norm ||x - A.z|| of the last solve.",
		}),
		zeta: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Name: "zeta", ConstLabels: labels,
			Help: "Current eigenvalue estimate.",
		}),
		mops: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Name: "mops", ConstLabels: labels,
			Help: "Millions of operations per second.",
		}),
		seconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Name: "elapsed_seconds", ConstLabels: labels,
			Help: "Timed section wall clock.",
		}),
		verified: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Name: "verified", ConstLabels: labels,
			Help: "1 when verification passed.",
		}),
		sections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns, Name: "section_seconds", ConstLabels: labels,
			Help: "Timer breakdown per section.",
		}, []string{"section"}),
	}
	m.reg.MustRegister(m.iterations, m.rnorm, m.zeta, m.mops, m.seconds, m.verified, m.sections)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// ObserveIteration records one outer iteration.
func (m *Metrics) ObserveIteration(rnorm, zeta float64) {
	m.iterations.Inc()
	m.rnorm.Set(rnorm)
	m.zeta.Set(zeta)
}

// ObserveReport records the final statistics.
func (m *Metrics) ObserveReport(rep Report) {
	m.zeta.Set(rep.Zeta)
	m.mops.Set(rep.Mops)
	m.seconds.Set(rep.Seconds)
	if rep.Verified {
		m.verified.Set(1)
	} else {
		m.verified.Set(0)
	}
	for _, s := range rep.Sections {
		m.sections.WithLabelValues(s.Name).Set(s.Seconds)
	}
}

// WriteTextfile dumps the registry in the text exposition format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return errors.Wrapf(err, "write metrics %s", path)
	}
	return nil
}
