package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Web server metrics.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "romanize_http_requests_total",
		Help: "Total HTTP requests by route, method, and status code",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "romanize_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"route", "method"})

	RateLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "romanize_rate_limit_hits_total",
		Help: "Total rate limit rejections",
	})
)

// Transliteration metrics, shared by every front end.
var (
	TransliterationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "romanize_transliterations_total",
		Help: "Transliterations by script used, status, and caller",
	}, []string{"script", "status", "source"})

	TransliterationInputBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "romanize_transliteration_input_bytes",
		Help:    "Size of transliterated input in bytes",
		Buckets: prometheus.ExponentialBuckets(16, 4, 7),
	})

	HistoryWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "romanize_history_write_errors_total",
		Help: "Failed attempts to record a transliteration in history",
	})
)

// ScriptLabel bounds the script label to registered ids. Unknown requested
// ids come from callers and would otherwise grow the series without limit.
func ScriptLabel(script string, known bool) string {
	if !known {
		return "unsupported"
	}
	return script
}

// Translation metrics.
var (
	TranslationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "romanize_translations_total",
		Help: "Translation requests by result (cached, llm, error)",
	}, []string{"result"})

	LLMTranslationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "romanize_llm_translation_duration_seconds",
		Help:    "LLM translation call duration in seconds",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
	})
)

// Bot metrics.
var (
	BotCommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "romanize_bot_commands_total",
		Help: "Discord commands handled by name and result",
	}, []string{"command", "result"})
)

// Database pool metrics (gauges updated periodically).
var (
	DBPoolTotalConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "romanize_db_pool_total_conns",
		Help: "Total number of connections in the pool",
	})

	DBPoolIdleConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "romanize_db_pool_idle_conns",
		Help: "Number of idle connections in the pool",
	})

	DBPoolAcquiredConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "romanize_db_pool_acquired_conns",
		Help: "Number of acquired connections in the pool",
	})

	DBPoolMaxConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "romanize_db_pool_max_conns",
		Help: "Max connections configured for the pool",
	})
)
