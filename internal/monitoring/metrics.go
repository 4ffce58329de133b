package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Business metrics
	SignupsTotal          *prometheus.CounterVec
	PostsCreated          prometheus.Counter
	PurchasesTotal        *prometheus.CounterVec
	RevenueCentsTotal     *prometheus.CounterVec
	CheckoutSessionsTotal *prometheus.CounterVec
	WebhookEventsTotal    *prometheus.CounterVec
	FollowsTotal          *prometheus.CounterVec
	NotificationsTotal    *prometheus.CounterVec
	TipsTotal             prometheus.Counter
}

var metrics *Metrics

// Init initializes all Prometheus metrics
func Init() *Metrics {
	if metrics != nil {
		return metrics
	}

	metrics = &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_hits_total",
				Help: "Total number of rate limit hits",
			},
			[]string{"scope"},
		),

		SignupsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signups_total",
				Help: "Total number of user signups",
			},
			[]string{"role"},
		),
		PostsCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "posts_created_total",
				Help: "Total number of posts created",
			},
		),
		PurchasesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "purchases_total",
				Help: "Total number of recorded purchases",
			},
			[]string{"source"},
		),
		RevenueCentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "revenue_cents_total",
				Help: "Total purchase revenue in cents",
			},
			[]string{"source"},
		),
		CheckoutSessionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_sessions_total",
				Help: "Total number of Stripe checkout sessions",
			},
			[]string{"status"},
		),
		WebhookEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_events_total",
				Help: "Total number of Stripe webhook events received",
			},
			[]string{"type", "status"},
		),
		FollowsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "follows_total",
				Help: "Total number of follow/unfollow actions",
			},
			[]string{"action"},
		),
		NotificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_total",
				Help: "Total number of notifications created",
			},
			[]string{"type"},
		),
		TipsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tips_total",
				Help: "Total number of tips sent",
			},
		),
	}

	return metrics
}

// Get returns the global metrics instance
func Get() *Metrics {
	if metrics == nil {
		return Init()
	}
	return metrics
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware is a Gin middleware for collecting HTTP metrics
func MetricsMiddleware() gin.HandlerFunc {
	m := Get()
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method

		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// RecordSignup records a user signup
func RecordSignup(role string) {
	Get().SignupsTotal.WithLabelValues(role).Inc()
}

// RecordPostCreated records a post creation
func RecordPostCreated() {
	Get().PostsCreated.Inc()
}

// RecordPurchase records a purchase and its revenue
func RecordPurchase(source string, amountCents int64) {
	Get().PurchasesTotal.WithLabelValues(source).Inc()
	Get().RevenueCentsTotal.WithLabelValues(source).Add(float64(amountCents))
}

// RecordCheckoutSession records a checkout session creation attempt
func RecordCheckoutSession(status string) {
	Get().CheckoutSessionsTotal.WithLabelValues(status).Inc()
}

// RecordWebhookEvent records an inbound webhook event
func RecordWebhookEvent(eventType, status string) {
	Get().WebhookEventsTotal.WithLabelValues(eventType, status).Inc()
}

// RecordFollow records a follow or unfollow action
func RecordFollow(action string) {
	Get().FollowsTotal.WithLabelValues(action).Inc()
}

// RecordNotification records a notification creation
func RecordNotification(notificationType string) {
	Get().NotificationsTotal.WithLabelValues(notificationType).Inc()
}

// RecordRateLimitHit records a rate limit hit
func RecordRateLimitHit(scope string) {
	Get().RateLimitHits.WithLabelValues(scope).Inc()
}

// RecordTip records a tip
func RecordTip() {
	Get().TipsTotal.Inc()
}
