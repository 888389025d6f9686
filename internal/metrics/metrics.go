package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Deck generation latency by outcome (ok, invalid_input, busy, unreachable, malformed, blocked, timeout).
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deck_generation_duration_seconds",
			Help:    "Deck generation latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4m
		},
		[]string{"outcome"},
	)

	// Slides per generated deck, by layout.
	GeneratedSlides = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deck_generated_slides_total",
			Help: "Slides produced by generation, by layout",
		},
		[]string{"layout"},
	)

	RenderCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deck_render_total",
			Help: "Decks rendered, by output format and outcome",
		},
		[]string{"format", "outcome"},
	)

	ChatDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_query_duration_seconds",
			Help:    "Knowledge chat latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
		[]string{"mode", "outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~30s
		},
		[]string{"method", "route", "status"},
	)
)

func RecordGeneration(outcome string, duration time.Duration) {
	GenerationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func IncrementGeneratedSlides(layout string) {
	GeneratedSlides.WithLabelValues(layout).Inc()
}

func IncrementRender(format, outcome string) {
	RenderCount.WithLabelValues(format, outcome).Inc()
}

func RecordChat(mode, outcome string, duration time.Duration) {
	ChatDuration.WithLabelValues(mode, outcome).Observe(duration.Seconds())
}

func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// Middleware records request latency under the matched chi route pattern so
// deck ids do not explode the label set.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordHTTPRequest(r.Method, route, strconv.Itoa(status), time.Since(start))
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
