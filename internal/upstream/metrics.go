package upstream

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tripplanner",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Outbound provider requests by provider and outcome.",
	}, []string{"provider", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tripplanner",
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Outbound provider request latency.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2, 4, 8},
	}, []string{"provider"})
)

func observe(provider string, start time.Time, err error) {
	requestDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(provider, outcome(err)).Inc()
}

func outcome(err error) string {
	var (
		se *StatusError
		ne net.Error
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &se):
		return "status"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled),
		errors.As(err, &ne) && ne.Timeout():
		return "timeout"
	default:
		return "error"
	}
}
