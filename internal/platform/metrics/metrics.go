package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SubmissionsGraded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livechallenge_submissions_graded_total",
		Help: "Graded submissions by terminal verdict status.",
	}, []string{"status"})

	GradingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "livechallenge_grading_duration_seconds",
		Help:    "Wall-clock time spent grading a submission batch.",
		Buckets: prometheus.DefBuckets,
	})

	FirstSolves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "livechallenge_first_solves_total",
		Help: "First-solve awards across all challenges.",
	})

	RateLimitDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "livechallenge_rate_limit_denials_total",
		Help: "Requests denied by the rate limiter, by scope.",
	}, []string{"scope"})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "livechallenge_cache_hits_total",
		Help: "Cache lookups served from a live entry.",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "livechallenge_cache_misses_total",
		Help: "Cache lookups that found no live entry.",
	})
)

// CacheObserver satisfies the cache package's Observer interface.
type CacheObserver struct{}

func (CacheObserver) CacheHit()  { cacheHits.Inc() }
func (CacheObserver) CacheMiss() { cacheMisses.Inc() }

func Handler() http.Handler {
	return promhttp.Handler()
}
