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
	"iter"
	"log/slog"
	"reflect"
	"sync/atomic"
)

// StreamRequest is a request answered with a lazily produced sequence of
// elements of type E. A type becomes a stream request by embedding Yields.
type StreamRequest[E any] interface {
	// ElementType returns the type of the produced elements.
	ElementType() reflect.Type

	element() E
}

// Yields declares the element type of a stream request when embedded.
type Yields[E any] struct{}

// ElementType implements the ElementType method of the StreamRequest
// interface.
func (Yields[E]) ElementType() reflect.Type {
	return reflect.TypeFor[E]()
}

func (Yields[E]) element() (e E) {
	return e
}

// StreamHandler produces the elements for stream requests of type S. The
// handler should stop producing when the context is done.
type StreamHandler[S StreamRequest[E], E any] interface {
	// Handle returns the sequence of elements for the request.
	Handle(ctx context.Context, req S) iter.Seq2[E, error]
}

// StreamHandlerFunc is a function that can be used as a stream handler.
type StreamHandlerFunc[S StreamRequest[E], E any] func(context.Context, S) iter.Seq2[E, error]

// Handle implements the Handle method of the StreamHandler.
func (f StreamHandlerFunc[S, E]) Handle(ctx context.Context, req S) iter.Seq2[E, error] {
	return f(ctx, req)
}

type anyStreamHandler interface {
	streamAny(ctx context.Context, req any) (iter.Seq2[any, error], error)
}

type streamHandler[S StreamRequest[E], E any] struct {
	StreamHandler[S, E]
}

func (h streamHandler[S, E]) streamAny(ctx context.Context, req any) (iter.Seq2[any, error], error) {
	r, ok := req.(S)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not %s", ErrInvalidHandler, req, reflect.TypeFor[S]())
	}

	seq := h.Handle(ctx, r)
	if seq == nil {
		return nil, nil
	}

	return func(yield func(any, error) bool) {
		for e, err := range seq {
			if !yield(e, err) {
				return
			}
		}
	}, nil
}

// StreamDispatcher is implemented by StreamSender and everything embedding
// it, like the Mediator.
type StreamDispatcher interface {
	// Stream starts a stream using the runtime type of the request.
	Stream(ctx context.Context, req any) (iter.Seq2[any, error], error)

	streamSender() *StreamSender
}

// StreamSender starts streams on their single handler. No pipeline behaviors
// are applied to streams.
type StreamSender struct {
	registry Registry
	logger   *slog.Logger
}

// NewStreamSender creates a StreamSender resolving from the registry.
func NewStreamSender(r Registry, opts ...Option) *StreamSender {
	o := newOptions(opts)

	return &StreamSender{
		registry: r,
		logger:   o.logger,
	}
}

func (s *StreamSender) streamSender() *StreamSender {
	return s
}

// Stream starts a stream by the runtime type of the request. The returned
// sequence can only be iterated once. Use StreamOf to get typed elements.
func (s *StreamSender) Stream(ctx context.Context, req any) (iter.Seq2[any, error], error) {
	if isNil(req) {
		return nil, ErrMissingStreamRequest
	}

	r, ok := req.(interface{ ElementType() reflect.Type })
	if !ok {
		return nil, &DispatchError{Err: ErrNotAStreamRequest, Type: reflect.TypeOf(req)}
	}

	t := reflect.TypeOf(req)

	wctx, h, log, err := s.resolve(ctx, t, r.ElementType())
	if err != nil {
		return nil, err
	}

	sh, ok := h.(anyStreamHandler)
	if !ok {
		return nil, invalidStreamHandler(h, t)
	}

	seq, err := sh.streamAny(wctx, req)
	if err != nil {
		return nil, &DispatchError{Err: ErrInvalidHandler, BaseErr: err, Type: t}
	}

	return guard(wctx, seq, log), nil
}

// Stream starts a stream on the handler registered for exactly S and E. The
// returned sequence can only be iterated once.
func Stream[S StreamRequest[E], E any](ctx context.Context, d StreamDispatcher, req S) (iter.Seq2[E, error], error) {
	if isNil(req) {
		return nil, ErrMissingStreamRequest
	}

	t := reflect.TypeFor[S]()

	wctx, h, log, err := d.streamSender().resolve(ctx, t, reflect.TypeFor[E]())
	if err != nil {
		return nil, err
	}

	sh, ok := h.(StreamHandler[S, E])
	if !ok {
		return nil, invalidStreamHandler(h, t)
	}

	return guard(wctx, sh.Handle(wctx, req), log), nil
}

// StreamOf starts a stream by the runtime type of the request and returns
// typed elements.
func StreamOf[E any](ctx context.Context, d StreamDispatcher, req StreamRequest[E]) (iter.Seq2[E, error], error) {
	if isNil(req) {
		return nil, ErrMissingStreamRequest
	}

	seq, err := d.Stream(ctx, req)
	if err != nil {
		return nil, err
	}

	t := reflect.TypeOf(req)

	return func(yield func(E, error) bool) {
		var zero E

		for v, err := range seq {
			if err != nil {
				yield(zero, err)

				return
			}

			e, ok := v.(E)
			if !ok && v != nil {
				yield(zero, &DispatchError{
					Err:     ErrInvalidResponse,
					BaseErr: fmt.Errorf("got %T, want %s", v, reflect.TypeFor[E]()),
					Type:    t,
				})

				return
			}

			if !yield(e, nil) {
				return
			}
		}
	}, nil
}

func (s *StreamSender) resolve(ctx context.Context, t, elemType reflect.Type) (*watchedContext, any, *slog.Logger, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, err
	}

	ctx, id := withDispatchID(ctx)
	log := s.logger.With("stream_type", t.String(), "dispatch_id", id.String())

	h, err := s.registry.ResolveOne(Key{StreamHandlerContract, t, elemType})
	if errors.Is(err, ErrNotRegistered) {
		return nil, nil, nil, &DispatchError{Err: ErrHandlerNotFound, Type: t}
	} else if err != nil {
		return nil, nil, nil, &DispatchError{Err: ErrInvalidHandler, BaseErr: err, Type: t}
	}

	log.Debug("starting stream")

	return &watchedContext{Context: ctx}, h, log, nil
}

// watchedContext is the context given to stream handlers. It records if the
// handler saw the context done, to tell a handler that stopped because of
// the cancellation from one that had already produced all elements.
type watchedContext struct {
	context.Context

	seen atomic.Bool
}

// Done implements the Done method of the context.Context interface.
func (c *watchedContext) Done() <-chan struct{} {
	if c.Context.Err() != nil {
		c.seen.Store(true)
	}

	return c.Context.Done()
}

// Err implements the Err method of the context.Context interface.
func (c *watchedContext) Err() error {
	err := c.Context.Err()
	if err != nil {
		c.seen.Store(true)
	}

	return err
}

func invalidStreamHandler(h any, t reflect.Type) error {
	return &DispatchError{
		Err:     ErrInvalidHandler,
		BaseErr: fmt.Errorf("%T does not handle %s", h, t),
		Type:    t,
	}
}

// guard makes a sequence single pass and delivers cancellation of the
// context to the consumer as the final error element. A sequence that ends
// after the context is done only counts as cancelled if the handler saw it.
func guard[E any](wctx *watchedContext, seq iter.Seq2[E, error], log *slog.Logger) iter.Seq2[E, error] {
	var consumed atomic.Bool

	ctx := wctx.Context

	return func(yield func(E, error) bool) {
		var zero E

		if !consumed.CompareAndSwap(false, true) {
			yield(zero, ErrStreamConsumed)

			return
		}

		if err := ctx.Err(); err != nil {
			yield(zero, err)

			return
		}

		n := 0

		if seq != nil {
			for e, err := range seq {
				if err != nil {
					log.Debug("stream failed", "elements", n, "error", err)
					yield(zero, err)

					return
				}

				if err := ctx.Err(); err != nil {
					log.Debug("stream cancelled", "elements", n, "error", err)
					yield(zero, err)

					return
				}

				n++

				if !yield(e, nil) {
					log.Debug("stream stopped by consumer", "elements", n)

					return
				}
			}
		}

		if err := ctx.Err(); err != nil && wctx.seen.Load() {
			log.Debug("stream cancelled", "elements", n, "error", err)
			yield(zero, err)

			return
		}

		log.Debug("stream finished", "elements", n)
	}
}
