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

// Package retry contains a pipeline behavior that retries failed requests
// with exponential backoff.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/jpillora/backoff"

	"github.com/looplab/mediator"
)

// Retryable is a request that can be retried.
type Retryable interface {
	// MaxAttempts returns the number of attempts, including the first.
	MaxAttempts() int
}

// Behavior retries the rest of the pipeline until it succeeds, the attempts
// of the request are used up or the context is done. Cancellation errors are
// never retried.
type Behavior struct {
	// Min, Max and Factor configure the backoff between attempts.
	Min    time.Duration
	Max    time.Duration
	Factor float64
	// Jitter randomizes the backoff.
	Jitter bool

	logger *slog.Logger
}

// NewBehavior creates a Behavior with a backoff from min to max. Retries are
// logged to the logger, or the default logger if nil.
func NewBehavior(minDelay, maxDelay time.Duration, logger *slog.Logger) *Behavior {
	if logger == nil {
		logger = slog.Default()
	}

	return &Behavior{
		Min:    minDelay,
		Max:    maxDelay,
		Factor: 2,
		Jitter: true,
		logger: logger,
	}
}

// Handle implements the Handle method of the mediator.PipelineBehavior
// interface.
func (b *Behavior) Handle(ctx context.Context, req Retryable, next mediator.Next[any]) (any, error) {
	// Used for exponential fall back between attempts.
	delay := &backoff.Backoff{
		Min:    b.Min,
		Max:    b.Max,
		Factor: b.Factor,
		Jitter: b.Jitter,
	}

	attempts := max(req.MaxAttempts(), 1)

	for attempt := 1; ; attempt++ {
		resp, err := next(ctx)
		if err == nil || mediator.IsCancellation(err) || attempt >= attempts {
			return resp, err
		}

		d := delay.Duration()
		b.logger.Debug("request failed, retrying",
			"attempt", attempt,
			"delay", d,
			"error", err,
		)

		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()

			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// Config returns the config to bind the behavior at the level.
func (b *Behavior) Config(level int) mediator.BehaviorConfig {
	return mediator.BehaviorConfig{
		Name:     "retry",
		Priority: mediator.Level(level),
		Factory:  func() any { return b },
	}
}
