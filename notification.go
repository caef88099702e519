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

package mediator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
)

// Notification is a message that is delivered to zero or more handlers.
// A type becomes a notification by embedding Broadcast.
type Notification interface {
	notification()
}

// Broadcast marks a type as a Notification when embedded.
type Broadcast struct{}

func (Broadcast) notification() {}

// NotificationHandler handles notifications of type N.
type NotificationHandler[N Notification] interface {
	// Handle handles the notification.
	Handle(ctx context.Context, n N) error
}

// NotificationHandlerFunc is a function that can be used as a notification
// handler.
type NotificationHandlerFunc[N Notification] func(context.Context, N) error

// Handle implements the Handle method of the NotificationHandler.
func (f NotificationHandlerFunc[N]) Handle(ctx context.Context, n N) error {
	return f(ctx, n)
}

type anyNotificationHandler interface {
	handleAny(ctx context.Context, n any) error
}

type notificationHandler[N Notification] struct {
	NotificationHandler[N]
}

func (h notificationHandler[N]) handleAny(ctx context.Context, n any) error {
	v, ok := n.(N)
	if !ok {
		return fmt.Errorf("%w: %T is not %s", ErrInvalidHandler, n, reflect.TypeFor[N]())
	}

	return h.Handle(ctx, v)
}

// NotificationDispatcher is implemented by NotificationPublisher and
// everything embedding it, like the Mediator.
type NotificationDispatcher interface {
	// Publish publishes a notification using its runtime type.
	Publish(ctx context.Context, n Notification) error

	notificationPublisher() *NotificationPublisher
}

// NotificationPublisher delivers notifications to all their handlers, one
// after the other in registration order.
type NotificationPublisher struct {
	registry Registry
	logger   *slog.Logger
	policy   NotificationPolicy
}

// NewNotificationPublisher creates a NotificationPublisher resolving from the
// registry.
func NewNotificationPublisher(r Registry, opts ...Option) *NotificationPublisher {
	o := newOptions(opts)

	return &NotificationPublisher{
		registry: r,
		logger:   o.logger,
		policy:   o.policy,
	}
}

func (p *NotificationPublisher) notificationPublisher() *NotificationPublisher {
	return p
}

// Policy returns the failure policy of the publisher.
func (p *NotificationPublisher) Policy() NotificationPolicy {
	return p.policy
}

// Publish publishes a notification by its runtime type.
func (p *NotificationPublisher) Publish(ctx context.Context, n Notification) error {
	if isNil(n) {
		return ErrMissingNotification
	}

	return p.publish(ctx, n, reflect.TypeOf(n))
}

// Publish publishes a notification to the handlers registered for exactly N.
func Publish[N Notification](ctx context.Context, d NotificationDispatcher, n N) error {
	if isNil(n) {
		return ErrMissingNotification
	}

	return d.notificationPublisher().publish(ctx, n, reflect.TypeFor[N]())
}

func (p *NotificationPublisher) publish(ctx context.Context, n any, t reflect.Type) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, id := withDispatchID(ctx)
	log := p.logger.With("notification_type", t.String(), "dispatch_id", id.String())

	items, err := p.registry.ResolveMany(Key{Contract: NotificationHandlerContract, Type: t})
	if err != nil {
		return &DispatchError{Err: ErrInvalidHandler, BaseErr: err, Type: t}
	}

	handlers := make([]anyNotificationHandler, 0, len(items))
	for _, item := range items {
		h, ok := item.(anyNotificationHandler)
		if !ok {
			return &DispatchError{
				Err:     ErrInvalidHandler,
				BaseErr: fmt.Errorf("%T does not handle %s", item, t),
				Type:    t,
			}
		}

		handlers = append(handlers, h)
	}

	log.Debug("publishing notification", "handlers", len(handlers), "policy", p.policy.String())

	var errs []error
	for i, h := range handlers {
		if err := ctx.Err(); err != nil {
			log.Debug("notification cancelled", "handler", i, "errors", len(errs))

			return err
		}

		if err := h.handleAny(ctx, n); err != nil {
			if p.policy == FailFast || IsCancellation(err) {
				log.Warn("notification handler failed", "handler", i, "errors", len(errs), "error", err)

				return err
			}

			log.Warn("notification handler failed, continuing", "handler", i, "error", err)

			errs = append(errs, err)
		}
	}

	log.Debug("notification published", "errors", len(errs))

	return errors.Join(errs...)
}
