package coordinator

import "github.com/prometheus/client_golang/prometheus"

var (
	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "The total number of cache reads answered from a live entry",
		},
		[]string{"registry"},
	)

	cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "The total number of cache reads answered with the default value",
		},
		[]string{"registry"},
	)

	cacheErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_backend_errors_total",
			Help: "The total number of backend operation failures by registry and operation",
		},
		[]string{"registry", "operation"},
	)

	sweepsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_sweeps_total",
			Help: "The total number of cleanup sweeps across all registries",
		},
	)
)

func init() {
	prometheus.MustRegister(cacheHits)
	prometheus.MustRegister(cacheMisses)
	prometheus.MustRegister(cacheErrors)
	prometheus.MustRegister(sweepsTotal)
}
