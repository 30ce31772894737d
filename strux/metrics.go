package strux

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace        = "strux"
	sessionSubsystem = "session"
)

// sessionMetrics describe one Program. Each Program registers them, together
// with its type store's metrics, in a registry of its own.
type sessionMetrics struct {
	files         prometheus.Counter
	sourceBytes   prometheus.Counter
	checkDuration prometheus.Histogram
	diagnostics   *prometheus.CounterVec // with label category
}

func newSessionMetrics() *sessionMetrics {
	return &sessionMetrics{
		files: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: sessionSubsystem,
			Name:      "files_total",
			Help:      "Number of source files parsed and bound.",
		}),
		sourceBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: sessionSubsystem,
			Name:      "source_bytes_total",
			Help:      "Size of the source files parsed.",
		}),
		checkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: sessionSubsystem,
			Name:      "check_duration_seconds",
			Help:      "Time taken to check every file of the program.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: sessionSubsystem,
			Name:      "diagnostics_total",
			Help:      "Diagnostics reported by a completed check, by category.",
		}, []string{"category"}),
	}
}

func (m *sessionMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.files,
		m.sourceBytes,
		m.checkDuration,
		m.diagnostics,
	}
}
