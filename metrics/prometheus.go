// Package metrics keeps per-run counters and pushes them to a Pushgateway.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const job = "catalog_parser"

// Run collects the counters of one batch run on its own registry
type Run struct {
	Registry *prometheus.Registry

	storefront string
	mode       string
	started    time.Time

	items       *prometheus.CounterVec
	requests    *prometheus.CounterVec
	duration    prometheus.Gauge
	lastSuccess prometheus.Gauge
}

func NewRun(storefront, mode string) *Run {
	r := &Run{
		Registry:   prometheus.NewRegistry(),
		storefront: storefront,
		mode:       mode,
		started:    time.Now(),
		items: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_items_total",
				Help: "Products processed, by outcome. The mode is part of the grouping key.",
			},
			[]string{"status", "reason"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_requests_total",
				Help: "Outbound storefront requests, by status class.",
			},
			[]string{"status"},
		),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_run_last_success_timestamp_seconds",
			Help: "Unix time the last run finished without a setup error.",
		}),
	}
	r.Registry.MustRegister(r.items, r.requests, r.duration, r.lastSuccess)
	return r
}

// RecordItem counts one processed product
func (r *Run) RecordItem(status, reason string) {
	r.items.WithLabelValues(status, reason).Inc()
}

// RecordRequest counts one outbound request by status class
func (r *Run) RecordRequest(statusCode int) {
	r.requests.WithLabelValues(classifyStatus(statusCode)).Inc()
}

// Finish stamps the run duration and, when ok, the success time
func (r *Run) Finish(ok bool) {
	r.duration.Set(time.Since(r.started).Seconds())
	if ok {
		r.lastSuccess.SetToCurrentTime()
	}
}

// Push sends the registry to the gateway at url. An empty url disables pushing.
func (r *Run) Push(url string) error {
	if url == "" {
		return nil
	}
	err := push.New(url, job).
		Gatherer(r.Registry).
		Grouping("storefront", r.storefront).
		Grouping("mode", r.mode).
		Push()
	if err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

func classifyStatus(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "2xx"
	} else if statusCode >= 300 && statusCode < 400 {
		return "3xx"
	} else if statusCode >= 400 && statusCode < 500 {
		return "4xx"
	} else if statusCode >= 500 && statusCode < 600 {
		return "5xx"
	}
	return "error"
}
