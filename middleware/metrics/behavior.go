// Copyright (c) 2025 - The Event Horizon authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics contains a pipeline behavior collecting Prometheus metrics
// for all requests.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/looplab/mediator"
)

// Outcomes of a request.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

// Behavior counts requests by type and outcome and observes their duration.
type Behavior struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewBehavior creates a Behavior with metrics in the namespace.
func NewBehavior(namespace string) *Behavior {
	return &Behavior{
		// Total requests by type and outcome.
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "mediator",
				Name:      "requests_total",
				Help:      "Total number of requests by request type and outcome",
			},
			[]string{"request_type", "outcome"},
		),

		// Request duration histogram.
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "mediator",
				Name:      "request_duration_seconds",
				Help:      "Request duration distribution, including inner behaviors",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"request_type"},
		),
	}
}

// Register registers the metrics with the registerer.
func (b *Behavior) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{b.requestsTotal, b.requestDuration} {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("could not register metrics: %w", err)
		}
	}

	return nil
}

// Handle implements the Handle method of the mediator.PipelineBehavior
// interface.
func (b *Behavior) Handle(ctx context.Context, req any, next mediator.Next[any]) (any, error) {
	start := time.Now()

	resp, err := next(ctx)

	requestType := fmt.Sprintf("%T", req)
	b.requestDuration.WithLabelValues(requestType).Observe(time.Since(start).Seconds())
	b.requestsTotal.WithLabelValues(requestType, outcome(err)).Inc()

	return resp, err
}

// Config returns the config to bind the behavior at the level.
func (b *Behavior) Config(level int) mediator.BehaviorConfig {
	return mediator.BehaviorConfig{
		Name:     "metrics",
		Priority: mediator.Level(level),
		Factory:  func() any { return b },
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case mediator.IsCancellation(err):
		return OutcomeCancelled
	default:
		return OutcomeError
	}
}
