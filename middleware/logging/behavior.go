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

// Package logging contains a pipeline behavior logging all requests.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/looplab/mediator"
)

// Behavior logs the start and the end of every request, with its duration.
// Failed requests are logged at warn level.
type Behavior struct {
	logger *slog.Logger
	level  slog.Level
}

// NewBehavior creates a Behavior logging at the level, or the default
// logger if nil.
func NewBehavior(logger *slog.Logger, level slog.Level) *Behavior {
	if logger == nil {
		logger = slog.Default()
	}

	return &Behavior{
		logger: logger,
		level:  level,
	}
}

// Handle implements the Handle method of the mediator.PipelineBehavior
// interface.
func (b *Behavior) Handle(ctx context.Context, req any, next mediator.Next[any]) (any, error) {
	attrs := []any{"request_type", fmt.Sprintf("%T", req)}
	if id, ok := mediator.DispatchIDFromContext(ctx); ok {
		attrs = append(attrs, "dispatch_id", id.String())
	}

	log := b.logger.With(attrs...)
	log.Log(ctx, b.level, "handling request")

	start := time.Now()
	resp, err := next(ctx)
	duration := time.Since(start)

	if err != nil {
		log.WarnContext(ctx, "request failed", "duration", duration, "error", err)

		return resp, err
	}

	log.Log(ctx, b.level, "request handled", "duration", duration)

	return resp, nil
}

// Config returns the config to bind the behavior at the level.
func (b *Behavior) Config(level int) mediator.BehaviorConfig {
	return mediator.BehaviorConfig{
		Name:     "logging",
		Priority: mediator.Level(level),
		Factory:  func() any { return b },
	}
}
