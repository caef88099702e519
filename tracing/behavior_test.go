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
	"errors"
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looplab/mediator"
	"github.com/looplab/mediator/mocks"
	"github.com/looplab/mediator/registry/memory"
)

func TestBehavior(t *testing.T) {
	tracer := mocktracer.New()
	handlerErr := errors.New("handler error")

	var handlerSpan opentracing.Span

	r := memory.NewRegistry()
	require.NoError(t, mediator.RegisterRequestHandler(r, func() mediator.RequestHandler[mocks.EchoRequest, string] {
		return mediator.RequestHandlerFunc[mocks.EchoRequest, string](func(ctx context.Context, req mocks.EchoRequest) (string, error) {
			handlerSpan = opentracing.SpanFromContext(ctx)

			return "Echo:" + req.Message, nil
		})
	}))
	require.NoError(t, mediator.RegisterRequestHandler(r, func() mediator.RequestHandler[mocks.CreateOrder, string] {
		return &mocks.CreateOrderHandler{Err: handlerErr}
	}))
	require.NoError(t, mediator.BindBehavior(r, NewBehavior(tracer).Config(0)))

	m := mediator.New(r)
	ctx := context.Background()

	_, err := mediator.Send[mocks.EchoRequest, string](ctx, m, mocks.EchoRequest{Message: "x"})
	require.NoError(t, err)

	_, err = mediator.Send[mocks.CreateOrder, string](ctx, m, mocks.CreateOrder{ID: "A1"})
	require.Error(t, err)

	spans := tracer.FinishedSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, "Request(mocks.EchoRequest)", spans[0].OperationName)
	assert.Equal(t, "mocks.EchoRequest", spans[0].Tag("mediator.request_type"))
	assert.NotEmpty(t, spans[0].Tag("mediator.dispatch_id"))
	assert.Nil(t, spans[0].Tag("error"))
	assert.Same(t, spans[0], handlerSpan)

	assert.Equal(t, "Request(mocks.CreateOrder)", spans[1].OperationName)
	assert.Equal(t, true, spans[1].Tag("error"))
	assert.Len(t, spans[1].Logs(), 1)
}

func TestNotificationHandler(t *testing.T) {
	tracer := mocktracer.New()
	inner := &mocks.NotificationHandler{}

	r := memory.NewRegistry()
	require.NoError(t, mediator.RegisterNotificationHandler(r, func() mediator.NotificationHandler[mocks.SampleNotification] {
		return NewNotificationHandler[mocks.SampleNotification](inner, tracer)
	}))

	parent := tracer.StartSpan("parent")
	ctx := opentracing.ContextWithSpan(context.Background(), parent)

	require.NoError(t, mediator.NewNotificationPublisher(r).Publish(ctx, mocks.SampleNotification{Name: "n"}))
	parent.Finish()

	assert.Equal(t, 1, inner.Calls())

	spans := tracer.FinishedSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, "Notification(mocks.SampleNotification)", spans[0].OperationName)
	assert.Equal(t, "mocks.SampleNotification", spans[0].Tag("mediator.notification_type"))
	assert.Equal(t, spans[1].SpanContext.SpanID, spans[0].ParentID)

	h := NewNotificationHandler[mocks.SampleNotification](inner, nil)
	if wrapped, ok := h.(interface {
		InnerHandler() mediator.NotificationHandler[mocks.SampleNotification]
	}); !ok || wrapped.InnerHandler() != inner {
		t.Error("the inner handler should be correct")
	}
}
