package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline metrics
	LogNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniper_log_notifications_total",
			Help: "Total number of log notifications received",
		},
		[]string{"stream"},
	)

	DuplicateSignatures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sniper_duplicate_signatures_total",
		Help: "Total number of notifications dropped as repeat deliveries",
	})

	PoolCreationEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniper_pool_creation_events_total",
			Help: "Total number of pool creation events handled, by status (ok, error, duplicate)",
		},
		[]string{"status"},
	)

	PoolDetectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sniper_pool_detection_duration_seconds",
		Help:    "Time from creation log to registered pool",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	StateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniper_state_transitions_total",
			Help: "Total number of event processor state transitions",
		},
		[]string{"state"},
	)

	// Registry metrics
	PoolCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sniper_pool_count",
		Help: "Total number of registered pools",
	})

	SubscriptionCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sniper_subscription_count",
		Help: "Number of live pool log subscriptions",
	})

	PoolSwaps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniper_pool_swaps_total",
			Help: "Total number of swap logs seen on watched pools",
		},
		[]string{"kind"},
	)

	// Quote metrics
	QuoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniper_quote_requests_total",
			Help: "Total number of quote requests",
		},
		[]string{"swap_mode", "status"},
	)

	PriceImpact = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sniper_price_impact_bps",
		Help:    "Price impact of prepared buys in basis points",
		Buckets: []float64{0, 10, 50, 100, 300, 500, 1000, 5000, 10000},
	})

	// Buy metrics
	BuyPlans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniper_buy_plans_total",
			Help: "Total number of buy plans prepared",
		},
		[]string{"status"},
	)

	SimulationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniper_simulation_failures_total",
			Help: "Total number of failed buy simulations",
		},
		[]string{"reason"},
	)

	ComputeUnits = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sniper_compute_units",
		Help:    "Compute units consumed by simulated buys",
		Buckets: []float64{1000, 5000, 10000, 50000, 100000, 200000, 400000},
	})

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniper_http_requests_total",
			Help: "Total number of HTTP requests by API group and route template",
		},
		[]string{"method", "group", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sniper_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "group", "route"},
	)
)
