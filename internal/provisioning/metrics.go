package provisioning

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects counters and timings of one puppetctl run. Each instance
// owns its registry so runs and tests never share state.
type Metrics struct {
	registry *prometheus.Registry

	instancesLaunched *prometheus.CounterVec
	launchFailures    *prometheus.CounterVec
	installsTotal     *prometheus.CounterVec
	waitDuration      *prometheus.HistogramVec
	masterLookups     *prometheus.CounterVec
}

// NewMetrics creates the metric set on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		instancesLaunched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "puppetctl",
				Subsystem: "ec2",
				Name:      "instances_launched_total",
				Help:      "Number of instances that reached running, by role",
			},
			[]string{"role"},
		),
		launchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "puppetctl",
				Subsystem: "ec2",
				Name:      "launch_failures_total",
				Help:      "Number of launches that did not reach running, by role and reason",
			},
			[]string{"role", "reason"},
		),
		installsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "puppetctl",
				Subsystem: "puppet",
				Name:      "installs_total",
				Help:      "Number of Puppet package installs by role and result",
			},
			[]string{"role", "result"},
		),
		waitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "puppetctl",
				Subsystem: "provisioning",
				Name:      "wait_duration_seconds",
				Help:      "Time spent waiting for an instance, by stage",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1s to ~8.5min
			},
			[]string{"stage"},
		),
		masterLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "puppetctl",
				Subsystem: "registry",
				Name:      "master_lookups_total",
				Help:      "Number of master resolutions by how the master was found",
			},
			[]string{"source"},
		),
	}

	m.registry.MustRegister(
		m.instancesLaunched,
		m.launchFailures,
		m.installsTotal,
		m.waitDuration,
		m.masterLookups,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics to path in the text exposition format,
// suitable for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// The record helpers accept a nil receiver so flows can run without metrics.

func (m *Metrics) recordLaunch(role string) {
	if m != nil {
		m.instancesLaunched.WithLabelValues(role).Inc()
	}
}

func (m *Metrics) recordLaunchFailure(role, reason string) {
	if m != nil {
		m.launchFailures.WithLabelValues(role, reason).Inc()
	}
}

func (m *Metrics) recordInstall(role string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.installsTotal.WithLabelValues(role, result).Inc()
}

func (m *Metrics) recordWait(stage string, d time.Duration) {
	if m != nil {
		m.waitDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
}

func (m *Metrics) recordLookup(source string) {
	if m != nil {
		m.masterLookups.WithLabelValues(source).Inc()
	}
}
