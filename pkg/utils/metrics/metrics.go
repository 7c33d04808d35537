package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every metric name
const DefaultNamespace = "duty_rota"

// RunSummary is what a schedule generation run reports
type RunSummary struct {
	Weeks         int
	Available     int
	Draws         int
	Retries       int
	FallbackWeeks int
	CappedWeeks   int
	WeightResets  int

	// Assignments is the cumulative assignment count per person after the run
	Assignments map[string]int

	FinishedAt time.Time
}

// Collector holds the gauges describing the last run.
// It uses its own registry so only rota metrics end up in the textfile.
type Collector struct {
	reg *prometheus.Registry

	weeks         prometheus.Gauge
	available     prometheus.Gauge
	draws         prometheus.Gauge
	retries       prometheus.Gauge
	fallbackWeeks prometheus.Gauge
	cappedWeeks   prometheus.Gauge
	weightResets  prometheus.Gauge
	lastRun       prometheus.Gauge
	assignments   *prometheus.GaugeVec
}

// New creates a collector with every metric registered
func New(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      name,
			Help:      help,
		})
	}

	c := &Collector{
		reg:           prometheus.NewRegistry(),
		weeks:         gauge("weeks", "Weeks scheduled by the last run."),
		available:     gauge("available_people", "Available people in the roster for the last run."),
		draws:         gauge("draws", "Weighted pair draws made by the last run."),
		retries:       gauge("retries", "Draws rejected by the recency window in the last run."),
		fallbackWeeks: gauge("fallback_weeks", "Weeks where the recency window was ignored for lack of candidates."),
		cappedWeeks:   gauge("capped_weeks", "Weeks that hit the retry limit."),
		weightResets:  gauge("weight_resets", "Times weights were reset to uniform."),
		lastRun:       gauge("last_success_timestamp_seconds", "Unix time the last run finished."),
		assignments: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "assignments",
			Help:      "Cumulative duty assignments per person.",
		}, []string{"person"}),
	}

	c.reg.MustRegister(
		c.weeks,
		c.available,
		c.draws,
		c.retries,
		c.fallbackWeeks,
		c.cappedWeeks,
		c.weightResets,
		c.lastRun,
		c.assignments,
	)

	return c
}

// RecordRun sets every gauge from a run summary
func (c *Collector) RecordRun(s RunSummary) {
	c.weeks.Set(float64(s.Weeks))
	c.available.Set(float64(s.Available))
	c.draws.Set(float64(s.Draws))
	c.retries.Set(float64(s.Retries))
	c.fallbackWeeks.Set(float64(s.FallbackWeeks))
	c.cappedWeeks.Set(float64(s.CappedWeeks))
	c.weightResets.Set(float64(s.WeightResets))
	c.lastRun.Set(float64(s.FinishedAt.Unix()))

	c.assignments.Reset()
	for name, count := range s.Assignments {
		c.assignments.WithLabelValues(name).Set(float64(count))
	}
}

// WriteTextfile writes the metrics in the node_exporter textfile collector format
func (c *Collector) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.reg); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
