package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider", "operation"},
	)

	CallsStartedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_calls_started_total",
			Help: "Total number of screening calls started by agent mode",
		},
		[]string{"mode"},
	)
	CallsReconciledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_calls_reconciled_total",
			Help: "Total number of screening calls reconciled by terminal status",
		},
		[]string{"status"},
	)
	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_webhook_events_total",
			Help: "Total number of telephony webhook events by outcome",
		},
		[]string{"outcome"},
	)
	CallsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "screening_calls_in_flight",
			Help: "Number of screening calls currently awaiting a terminal status",
		},
	)

	ScreeningScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "screening_score",
			Help:    "Distribution of analyzed screening scores ([0,100])",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)
)

func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(CallsStartedTotal)
	prometheus.MustRegister(CallsReconciledTotal)
	prometheus.MustRegister(WebhookEventsTotal)
	prometheus.MustRegister(CallsInFlight)
	prometheus.MustRegister(ScreeningScoreHistogram)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			// fallback when route pattern is unavailable
			route = r.URL.Path
		}
		method := r.Method
		status := ww.Status()
		HTTPRequestsTotal.WithLabelValues(route, method, http.StatusText(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, method).Observe(dur)
	})
}

// StartCall records a placed call and tracks it as in flight.
func StartCall(mode string) {
	CallsStartedTotal.WithLabelValues(mode).Inc()
	CallsInFlight.Inc()
}

// ReconcileCall records a call reaching its terminal status.
func ReconcileCall(status string) {
	CallsInFlight.Dec()
	CallsReconciledTotal.WithLabelValues(status).Inc()
}

// ObserveWebhook records a webhook event outcome (applied, replayed, ignored).
func ObserveWebhook(outcome string) {
	WebhookEventsTotal.WithLabelValues(outcome).Inc()
}

// ObserveScreeningScore records an analyzed score from a completed call.
func ObserveScreeningScore(score int) {
	if score >= 0 && score <= 100 {
		ScreeningScoreHistogram.Observe(float64(score))
	}
}
