package metrics

import "github.com/prometheus/client_golang/prometheus"

// Game Prometheus metrics.
var (
	GuessesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "semantle",
			Name:      "guesses_total",
			Help:      "Total scored guesses",
		},
		[]string{"outcome"}, // "ranked" / "unranked" / "unknown" / "solved" / "egg"
	)

	RankingBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "semantle",
			Name:      "ranking_builds_total",
			Help:      "Total proximity ranking builds",
		},
		[]string{"status"},
	)

	RankingBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "semantle",
			Name:      "ranking_build_duration_seconds",
			Help:      "Proximity ranking build duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	RankingMirrorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "semantle",
			Name:      "ranking_mirror_total",
			Help:      "In-process ranking mirror hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	ThrottleRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "semantle",
			Name:      "throttle_rejections_total",
			Help:      "Requests rejected by the request throttle",
		},
	)

	SolverIncrementsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "semantle",
			Name:      "solver_increments_total",
			Help:      "Total solver count increments",
		},
	)
)

var gameMetricsRegistered bool

// RegisterGameMetrics registers Prometheus game metrics. Must be called once from main.
func RegisterGameMetrics() {
	if gameMetricsRegistered {
		return
	}
	prometheus.MustRegister(GuessesTotal)
	prometheus.MustRegister(RankingBuildsTotal)
	prometheus.MustRegister(RankingBuildDuration)
	prometheus.MustRegister(RankingMirrorTotal)
	prometheus.MustRegister(ThrottleRejectionsTotal)
	prometheus.MustRegister(SolverIncrementsTotal)
	gameMetricsRegistered = true
}
