package types

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace         = "strux"
	typesSubsystem    = "types"
	relationSubsystem = "relation"
)

// Metrics count the work done by a Store. They are not registered anywhere
// until the owner of the Store collects them, see PrometheusCollectors.
type Metrics struct {
	TypesCreated   prometheus.Counter
	Instantiations prometheus.Counter

	// These metrics have a "relation" label
	CacheLookups *prometheus.CounterVec // with an extra label status = {"hit", "miss"}
	Overflows    *prometheus.CounterVec // with an extra label kind = {"depth", "complexity"}
}

func newMetrics() *Metrics {
	return &Metrics{
		TypesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: typesSubsystem,
			Name:      "created_total",
			Help:      "Number of distinct types interned.",
		}),
		Instantiations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: typesSubsystem,
			Name:      "instantiations_total",
			Help:      "Number of generic instantiations performed.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: relationSubsystem,
			Name:      "cache_lookups_total",
			Help:      "Relation cache lookups, by relation and outcome.",
		}, []string{"relation", "status"}),
		Overflows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: relationSubsystem,
			Name:      "overflows_total",
			Help:      "Relation queries abandoned because they exceeded a budget.",
		}, []string{"relation", "kind"}),
	}
}

// PrometheusCollectors satisfies the prom.PrometheusCollector interface.
func (m *Metrics) PrometheusCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.TypesCreated,
		m.Instantiations,
		m.CacheLookups,
		m.Overflows,
	}
}
