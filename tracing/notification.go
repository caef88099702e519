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

package tracing

import (
	"context"
	"fmt"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"

	"github.com/looplab/mediator"
)

// NewNotificationHandler wraps the handler to start a span for every
// notification it handles. The global tracer is used if tracer is nil.
func NewNotificationHandler[N mediator.Notification](h mediator.NotificationHandler[N], tracer opentracing.Tracer) mediator.NotificationHandler[N] {
	return &notificationHandler[N]{
		NotificationHandler: h,
		tracer:              tracer,
	}
}

type notificationHandler[N mediator.Notification] struct {
	mediator.NotificationHandler[N]
	tracer opentracing.Tracer
}

// InnerHandler returns the wrapped handler.
func (h *notificationHandler[N]) InnerHandler() mediator.NotificationHandler[N] {
	return h.NotificationHandler
}

func (h *notificationHandler[N]) Handle(ctx context.Context, n N) error {
	notificationType := fmt.Sprintf("%T", n)
	opName := fmt.Sprintf("Notification(%s)", notificationType)
	sp, ctx := opentracing.StartSpanFromContextWithTracer(ctx, tracerOrGlobal(h.tracer), opName)

	err := h.NotificationHandler.Handle(ctx, n)
	if err != nil {
		ext.LogError(sp, err)
	}

	sp.SetTag("mediator.notification_type", notificationType)
	setDispatchID(ctx, sp)

	sp.Finish()

	return err
}
