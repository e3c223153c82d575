package metrics

import (
	"net/http"
	"time"

	"github.com/aleister1102/filemonitor/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "filemonitor"

// Collector records monitor activity as Prometheus metrics on its own
// registry, so tests and multiple instances never collide.
type Collector struct {
	registry *prometheus.Registry

	checks          *prometheus.CounterVec
	filesFound      prometheus.Counter
	downloads       *prometheus.CounterVec
	downloadedBytes prometheus.Counter
	cycleDuration   prometheus.Histogram
	cyclesSkipped   prometheus.Counter
	currentIndex    prometheus.Gauge
	discovered      prometheus.Gauge
	lastCycle       prometheus.Gauge

	allocMB     prometheus.Gauge
	goroutines  prometheus.Gauge
	sysMemPct   prometheus.Gauge
	cpuUsagePct prometheus.Gauge
}

// NewCollector creates a Collector with all metrics registered.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Index checks by outcome.",
		}, []string{"outcome"}),
		filesFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_found_total",
			Help:      "New files found on undiscovered indices.",
		}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Download attempts by result.",
		}, []string{"result"}),
		downloadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloaded_bytes_total",
			Help:      "Bytes written to the download directory.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of a full poll cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		cyclesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_skipped_total",
			Help:      "Poll ticks dropped because a cycle was still running.",
		}),
		currentIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_index",
			Help:      "Highest index checked in the last cycle.",
		}),
		discovered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "discovered_indices",
			Help:      "Indices with a stored file in this run.",
		}),
		lastCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_cycle_timestamp_seconds",
			Help:      "Unix time the last cycle finished.",
		}),
		allocMB: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "heap_alloc_megabytes",
			Help:      "Heap memory allocated by the process.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "goroutines",
			Help:      "Number of goroutines at the last sample.",
		}),
		sysMemPct: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "system_memory_used_percent",
			Help:      "Host memory in use.",
		}),
		cpuUsagePct: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cpu_usage_percent",
			Help:      "Host CPU usage at the last sample.",
		}),
	}

	c.registry.MustRegister(
		c.checks, c.filesFound, c.downloads, c.downloadedBytes,
		c.cycleDuration, c.cyclesSkipped, c.currentIndex, c.discovered, c.lastCycle,
		c.allocMB, c.goroutines, c.sysMemPct, c.cpuUsagePct,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveCheck counts one check outcome ("found", "not_found", "error").
func (c *Collector) ObserveCheck(outcome string) {
	c.checks.WithLabelValues(outcome).Inc()
}

// ObserveDownload counts one download attempt.
func (c *Collector) ObserveDownload(success bool, bytes int64) {
	if !success {
		c.downloads.WithLabelValues("failed").Inc()
		return
	}
	c.downloads.WithLabelValues("succeeded").Inc()
	if bytes > 0 {
		c.downloadedBytes.Add(float64(bytes))
	}
}

// ObserveCycle records a finalized cycle.
func (c *Collector) ObserveCycle(duration time.Duration, summary models.CycleSummary, discovered int) {
	c.cycleDuration.Observe(duration.Seconds())
	c.filesFound.Add(float64(summary.Found))
	c.discovered.Set(float64(discovered))
	if summary.HasChecked {
		c.currentIndex.Set(float64(summary.MaxIndexChecked))
		c.lastCycle.Set(float64(summary.FinishedAt.Unix()))
	}
}

// ObserveSkippedCycle counts a dropped poll tick.
func (c *Collector) ObserveSkippedCycle() {
	c.cyclesSkipped.Inc()
}

// ObserveResources updates the resource gauges.
func (c *Collector) ObserveResources(usage ResourceUsage) {
	c.allocMB.Set(float64(usage.AllocMB))
	c.goroutines.Set(float64(usage.Goroutines))
	c.sysMemPct.Set(usage.SystemMemUsedPercent)
	c.cpuUsagePct.Set(usage.CPUUsagePercent)
}
