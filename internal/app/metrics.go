package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vk/modboot/internal/lifecycle"
)

// bootMetrics exposes boot reports in the Prometheus format. Each App owns
// its own registry so several apps can live in one process.
type bootMetrics struct {
	registry     *prometheus.Registry
	boots        prometheus.Counter
	loaded       prometheus.Gauge
	initDuration prometheus.Gauge
	skipped      *prometheus.CounterVec
	hookFailures *prometheus.CounterVec
}

func newBootMetrics() *bootMetrics {
	m := &bootMetrics{
		registry: prometheus.NewRegistry(),
		boots: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "modboot_boots_total",
			Help: "Number of finished boot sequences.",
		}),
		loaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "modboot_modules_loaded",
			Help: "Modules that survived preload in the last boot.",
		}),
		initDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "modboot_init_duration_seconds",
			Help: "Time from preload start to the end of the init phase in the last boot.",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "modboot_modules_skipped_total",
			Help: "Modules excluded during preload, by reason.",
		}, []string{"reason"}),
		hookFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "modboot_hook_failures_total",
			Help: "Lifecycle hooks that returned an error or panicked, by phase.",
		}, []string{"phase"}),
	}
	m.registry.MustRegister(m.boots, m.loaded, m.initDuration, m.skipped, m.hookFailures)
	return m
}

func (m *bootMetrics) observe(report *lifecycle.Report) {
	m.boots.Inc()
	m.loaded.Set(float64(report.Loaded))
	m.initDuration.Set(report.Elapsed.Seconds())
	for _, s := range report.Skipped {
		m.skipped.WithLabelValues(s.Reason.String()).Inc()
	}
	for _, f := range report.Failures {
		m.hookFailures.WithLabelValues(f.Phase.String()).Inc()
	}
}

func (m *bootMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
