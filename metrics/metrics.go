// Package metrics exposes Prometheus collectors for lock activity. Collectors
// are package globals and must be registered once with Register.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Status and outcome label values.
const (
	StatusAcquired  = "acquired"
	StatusExhausted = "exhausted"
	StatusError     = "error"

	OutcomeOK    = "ok"
	OutcomeLost  = "lost"
	OutcomeError = "error"
)

var (
	// time spent in the acquisition loop, including backoff sleeps
	AcquireDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redlock_acquire_duration_seconds",
			Help:    "Time taken to acquire a lock or give up",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
		},
		[]string{"variant"},
	)

	// AcquireTotal counts acquisition results by status.
	AcquireTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redlock_acquire_total",
			Help: "Total number of lock acquisitions by status",
		},
		[]string{"variant", "status"},
	)

	// AcquireAttempts records how many store round-trips an acquisition took.
	AcquireAttempts = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redlock_acquire_attempts",
			Help:    "Number of attempts per acquisition",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
		[]string{"variant"},
	)

	// ReleaseTotal counts releases; "lost" means the lease had already expired
	// or belonged to someone else.
	ReleaseTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redlock_release_total",
			Help: "Total number of lock releases by outcome",
		},
		[]string{"variant", "outcome"},
	)

	// RenewTotal counts lease renewals by outcome.
	RenewTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redlock_renew_total",
			Help: "Total number of lease renewals by outcome",
		},
		[]string{"variant", "outcome"},
	)

	// Held reports locks currently held by this process.
	Held = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "redlock_held",
			Help: "Current number of locks held by this process",
		},
		[]string{"variant"},
	)
)

// Register registers all lock collectors on reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(AcquireDuration, AcquireTotal, AcquireAttempts, ReleaseTotal, RenewTotal, Held)
}
