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

// Package ratelimit contains a pipeline behavior that limits the rate of
// requests per key.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/looplab/mediator"
)

// ErrRateLimited is when a request can not be allowed before its context
// deadline.
var ErrRateLimited = errors.New("rate limited")

// RateLimited is a request that is limited by its key.
type RateLimited interface {
	RateLimitKey() string
}

// Behavior waits for the limiter of the request key before continuing the
// pipeline. Each key gets its own limiter.
type Behavior struct {
	limit rate.Limit
	burst int

	limiters   map[string]*rate.Limiter
	limitersMu sync.Mutex
}

// NewBehavior creates a Behavior allowing limit requests per second with
// bursts of burst requests, for each key.
func NewBehavior(limit rate.Limit, burst int) *Behavior {
	return &Behavior{
		limit:    limit,
		burst:    burst,
		limiters: map[string]*rate.Limiter{},
	}
}

// Handle implements the Handle method of the mediator.PipelineBehavior
// interface.
func (b *Behavior) Handle(ctx context.Context, req RateLimited, next mediator.Next[any]) (any, error) {
	key := req.RateLimitKey()
	if err := b.limiter(key).Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		return nil, fmt.Errorf("%w: %s: %w", ErrRateLimited, key, err)
	}

	return next(ctx)
}

func (b *Behavior) limiter(key string) *rate.Limiter {
	b.limitersMu.Lock()
	defer b.limitersMu.Unlock()

	l, ok := b.limiters[key]
	if !ok {
		l = rate.NewLimiter(b.limit, b.burst)
		b.limiters[key] = l
	}

	return l
}

// Config returns the config to bind the behavior at the level.
func (b *Behavior) Config(level int) mediator.BehaviorConfig {
	return mediator.BehaviorConfig{
		Name:     "ratelimit",
		Priority: mediator.Level(level),
		Factory:  func() any { return b },
	}
}
