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

// Package tracing adds OpenTracing spans to request and notification
// handling.
package tracing

import (
	"context"
	"fmt"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"

	"github.com/looplab/mediator"
)

// Behavior starts a span for every request, as a child of any span in the
// context. Behaviors at higher levels and the handler get the span in their
// context.
type Behavior struct {
	tracer opentracing.Tracer
}

// NewBehavior creates a Behavior using the tracer, or the global tracer if
// nil.
func NewBehavior(tracer opentracing.Tracer) *Behavior {
	return &Behavior{tracer: tracer}
}

// Handle implements the Handle method of the mediator.PipelineBehavior
// interface.
func (b *Behavior) Handle(ctx context.Context, req any, next mediator.Next[any]) (any, error) {
	requestType := fmt.Sprintf("%T", req)
	opName := fmt.Sprintf("Request(%s)", requestType)
	sp, ctx := opentracing.StartSpanFromContextWithTracer(ctx, tracerOrGlobal(b.tracer), opName)

	resp, err := next(ctx)

	sp.SetTag("mediator.request_type", requestType)
	setDispatchID(ctx, sp)

	if err != nil {
		ext.LogError(sp, err)
	}

	sp.Finish()

	return resp, err
}

// Config returns the config to bind the behavior at the level.
func (b *Behavior) Config(level int) mediator.BehaviorConfig {
	return mediator.BehaviorConfig{
		Name:     "tracing",
		Priority: mediator.Level(level),
		Factory:  func() any { return b },
	}
}

func tracerOrGlobal(t opentracing.Tracer) opentracing.Tracer {
	if t == nil {
		return opentracing.GlobalTracer()
	}

	return t
}

func setDispatchID(ctx context.Context, sp opentracing.Span) {
	if id, ok := mediator.DispatchIDFromContext(ctx); ok {
		sp.SetTag("mediator.dispatch_id", id.String())
	}
}
