package senders

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/felixgeelhaar/jobflow/internal/notifications/domain"
	"github.com/felixgeelhaar/jobflow/pkg/observability"
)

// ErrCircuitOpen is returned while the breaker rejects deliveries.
var ErrCircuitOpen = errors.New("notification circuit open")

// BreakerConfig configures BreakerSender.
type BreakerConfig struct {
	Name string
	// FailureThreshold consecutive failures open the circuit.
	FailureThreshold uint32
	// MaxRequests allowed while half-open.
	MaxRequests uint32
	// Interval clears counts while closed.
	Interval time.Duration
	// Timeout keeps the circuit open before probing again.
	Timeout time.Duration
}

// DefaultBreakerConfig returns the defaults used by the worker.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
	}
}

// BreakerSender stops calling a failing sender for a while so one dead
// downstream does not slow every dispatch.
type BreakerSender struct {
	next    domain.Sender
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerSender wraps next.
func NewBreakerSender(next domain.Sender, cfg BreakerConfig, logger *slog.Logger, metrics observability.Metrics) *BreakerSender {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("notification circuit breaker state changed",
				"sender", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.Counter("jobflow.notifications.breaker_state", 1, observability.T("sender", name), observability.T("state", to.String()))
		},
	}
	return &BreakerSender{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

// Notify delivers through the breaker.
func (s *BreakerSender) Notify(ctx context.Context, n domain.Notification) error {
	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.next.Notify(ctx, n)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}
	return err
}

// State returns the current breaker state.
func (s *BreakerSender) State() string {
	return s.breaker.State().String()
}
