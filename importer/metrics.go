package importer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// filesTotal counts inputs by outcome (imported, malformed).
	filesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classgraph",
		Subsystem: "importer",
		Name:      "files_total",
		Help:      "Class file inputs processed, by outcome",
	}, []string{"outcome"})

	// classesTotal counts graph nodes by origin (imported, resolved, stub).
	classesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classgraph",
		Subsystem: "importer",
		Name:      "classes_total",
		Help:      "Classes added to imported graphs, by origin",
	}, []string{"kind"})

	// resolverLookupsTotal counts resolver calls by outcome (found, missing, error).
	resolverLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "classgraph",
		Subsystem: "importer",
		Name:      "resolver_lookups_total",
		Help:      "Lookups of referenced classes that were not imported, by outcome",
	}, []string{"outcome"})

	importDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "classgraph",
		Subsystem: "importer",
		Name:      "import_duration_seconds",
		Help:      "Wall time of complete imports",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})
)
