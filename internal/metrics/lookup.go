package metrics

import "github.com/prometheus/client_golang/prometheus"

// Lookup Prometheus metrics.
var (
	LookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bloomprobe",
			Name:      "lookups_total",
			Help:      "Total number of lookups",
		},
		[]string{"operation", "status"},
	)

	LookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bloomprobe",
			Name:      "lookup_duration_seconds",
			Help:      "Lookup duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)

	CandidateBuckets = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bloomprobe",
			Name:      "candidate_buckets",
			Help:      "Buckets that passed the Bloom test per lookup",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 11), // 1..1024
		},
	)

	TruncatedLookupsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bloomprobe",
			Name:      "truncated_lookups_total",
			Help:      "Lookups whose candidates exceeded the bucket cap",
		},
	)

	MatchedItemsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bloomprobe",
			Name:      "matched_items_total",
			Help:      "Items confirmed by the exact predicate",
		},
	)
)

var lookupMetricsRegistered bool

// RegisterLookupMetrics registers Prometheus lookup metrics. Must be called once from main.
func RegisterLookupMetrics() {
	if lookupMetricsRegistered {
		return
	}
	prometheus.MustRegister(LookupsTotal)
	prometheus.MustRegister(LookupDuration)
	prometheus.MustRegister(CandidateBuckets)
	prometheus.MustRegister(TruncatedLookupsTotal)
	prometheus.MustRegister(MatchedItemsTotal)
	lookupMetricsRegistered = true
}
