package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	NearbySearchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "yatra_nearby_searches_total",
		Help: "Total number of nearby POI searches",
	})
	NearbySearchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "yatra_nearby_search_duration_ms",
		Help:    "Nearby POI search duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	NearbyEmptyResultsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "yatra_nearby_empty_results_total",
		Help: "Total number of nearby searches with no POI in radius",
	})
	TourSessionsStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "yatra_tour_sessions_started_total",
		Help: "Total number of started tour sessions",
	})
	TourAdvancesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "yatra_tour_advances_total",
		Help: "Tour advance steps by outcome",
	}, []string{"outcome"})
	POICacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "yatra_poi_cache_hits_total",
		Help: "Total redis POI cache hits",
	})
	POICacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "yatra_poi_cache_misses_total",
		Help: "Total redis POI cache misses",
	})
	NarrationFallbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "yatra_narration_fallbacks_total",
		Help: "Total guide narrations served from the fallback template",
	})
)

// ツアー進行の結果ラベル
const (
	OutcomeMoved    = "moved"
	OutcomeComplete = "complete"
	OutcomeRejected = "rejected"
)

func init() {
	prometheus.MustRegister(NearbySearchesTotal)
	prometheus.MustRegister(NearbySearchDurationMs)
	prometheus.MustRegister(NearbyEmptyResultsTotal)
	prometheus.MustRegister(TourSessionsStartedTotal)
	prometheus.MustRegister(TourAdvancesTotal)
	prometheus.MustRegister(POICacheHitsTotal)
	prometheus.MustRegister(POICacheMissesTotal)
	prometheus.MustRegister(NarrationFallbacksTotal)
}

// Handler は /metrics で公開するPrometheusのハンドラーを返す
func Handler() http.Handler { return promhttp.Handler() }
