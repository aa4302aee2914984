package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/cashledger/internal/domain"
)

const namespace = "cashledger"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	Transactions      *prometheus.CounterVec
	Transfers         prometheus.Counter
	Resets            prometheus.Counter
	Rejections        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// API metrics
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	HTTPInFlight      prometheus.Gauge
	RateLimitHits     prometheus.Counter
	IdempotentReplays prometheus.Counter

	// Outbox metrics
	OutboxPublished *prometheus.CounterVec
	OutboxFailed    *prometheus.CounterVec

	reg prometheus.Registerer
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Transactions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_total",
				Help:      "Ledger transactions by operation and type",
			},
			[]string{"operation", "type"},
		),
		Transfers: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Total number of transfers between balances",
		}),
		Resets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_resets_total",
			Help:      "Total number of balance resets",
		}),
		Rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rejections_total",
				Help:      "Ledger operations rejected by reason",
			},
			[]string{"reason"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of ledger operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter",
		}),
		IdempotentReplays: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idempotent_replays_total",
			Help:      "Responses served from the idempotency store",
		}),

		OutboxPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbox_published_total",
				Help:      "Outbox events published by type",
			},
			[]string{"event_type"},
		),
		OutboxFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbox_failed_total",
				Help:      "Outbox events that failed to publish by type",
			},
			[]string{"event_type"},
		),

		reg: reg,
	}
}

// RecordTransaction counts a transaction mutation.
func (m *Metrics) RecordTransaction(operation string, typ domain.TransactionType) {
	m.Transactions.WithLabelValues(operation, string(typ)).Inc()
}

// RecordTransfer counts a transfer.
func (m *Metrics) RecordTransfer() { m.Transfers.Inc() }

// RecordReset counts a balance reset.
func (m *Metrics) RecordReset() { m.Resets.Inc() }

// RecordRejection counts a rejected operation.
func (m *Metrics) RecordRejection(reason string) {
	m.Rejections.WithLabelValues(reason).Inc()
}

// ObserveOperation records the duration of a ledger operation.
func (m *Metrics) ObserveOperation(operation string, d time.Duration) {
	m.OperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveHTTP records a completed HTTP request.
func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RequestStarted marks an HTTP request as in flight.
func (m *Metrics) RequestStarted() { m.HTTPInFlight.Inc() }

// RequestFinished reverses RequestStarted.
func (m *Metrics) RequestFinished() { m.HTTPInFlight.Dec() }

// RecordRateLimited counts a request rejected by the rate limiter.
func (m *Metrics) RecordRateLimited() { m.RateLimitHits.Inc() }

// RecordIdempotentReplay counts a response served from the idempotency store.
func (m *Metrics) RecordIdempotentReplay() { m.IdempotentReplays.Inc() }

// RecordOutboxPublished counts a published outbox event.
func (m *Metrics) RecordOutboxPublished(eventType string) {
	m.OutboxPublished.WithLabelValues(eventType).Inc()
}

// RecordOutboxFailed counts an outbox event that failed to publish.
func (m *Metrics) RecordOutboxFailed(eventType string) {
	m.OutboxFailed.WithLabelValues(eventType).Inc()
}

// PoolStats reports connection pool occupancy.
type PoolStats func() (total, idle, acquired int32)

// RegisterPoolStats exposes connection pool gauges read on scrape.
func (m *Metrics) RegisterPoolStats(stats PoolStats) {
	factory := promauto.With(m.reg)

	gauge := func(name, help string, pick func(total, idle, acquired int32) int32) {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      name,
			Help:      help,
		}, func() float64 {
			return float64(pick(stats()))
		})
	}

	gauge("connections_total", "Open database connections", func(t, _, _ int32) int32 { return t })
	gauge("connections_idle", "Idle database connections", func(_, i, _ int32) int32 { return i })
	gauge("connections_acquired", "Database connections in use", func(_, _, a int32) int32 { return a })
}
