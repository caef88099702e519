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

// Request is a request that is handled by exactly one handler and answered
// with a response of type R.
//
// A type becomes a request by embedding Returns:
//
//	type CreateOrder struct {
//		mediator.Returns[string]
//
//		ID string
//	}
type Request[R any] interface {
	// ResponseType returns the type of the response.
	ResponseType() reflect.Type

	response() R
}

// Returns declares the response type of a request when embedded.
type Returns[R any] struct{}

// ResponseType implements the ResponseType method of the Request interface.
func (Returns[R]) ResponseType() reflect.Type {
	return reflect.TypeFor[R]()
}

func (Returns[R]) response() (r R) {
	return r
}

// RequestHandler handles requests of type Req.
type RequestHandler[Req Request[Resp], Resp any] interface {
	// Handle handles the request and returns the response.
	Handle(ctx context.Context, req Req) (Resp, error)
}

// RequestHandlerFunc is a function that can be used as a request handler.
type RequestHandlerFunc[Req Request[Resp], Resp any] func(context.Context, Req) (Resp, error)

// Handle implements the Handle method of the RequestHandler.
func (f RequestHandlerFunc[Req, Resp]) Handle(ctx context.Context, req Req) (Resp, error) {
	return f(ctx, req)
}

// anyRequestHandler is implemented by the registered handler adapters so that
// a request can be handled knowing only its runtime type.
type anyRequestHandler interface {
	handleAny(ctx context.Context, req any) (any, error)
}

type requestHandler[Req Request[Resp], Resp any] struct {
	RequestHandler[Req, Resp]
}

func (h requestHandler[Req, Resp]) handleAny(ctx context.Context, req any) (any, error) {
	r, ok := req.(Req)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not %s", ErrInvalidHandler, req, reflect.TypeFor[Req]())
	}

	resp, err := h.Handle(ctx, r)

	return resp, err
}

// RequestDispatcher is implemented by RequestSender and everything embedding
// it, like the Mediator.
type RequestDispatcher interface {
	// Send dispatches a request using its runtime type.
	Send(ctx context.Context, req any) (any, error)

	requestSender() *RequestSender
}

// RequestSender dispatches requests to their single handler through the
// pipeline of matching behaviors.
type RequestSender struct {
	registry Registry
	logger   *slog.Logger
}

// NewRequestSender creates a RequestSender resolving from the registry.
func NewRequestSender(r Registry, opts ...Option) *RequestSender {
	o := newOptions(opts)

	return &RequestSender{
		registry: r,
		logger:   o.logger,
	}
}

func (s *RequestSender) requestSender() *RequestSender {
	return s
}

// Send dispatches a request by its runtime type. The response type is taken
// from the request, see Returns. Use SendRequest to get a typed response.
func (s *RequestSender) Send(ctx context.Context, req any) (any, error) {
	if isNil(req) {
		return nil, ErrMissingRequest
	}

	r, ok := req.(interface{ ResponseType() reflect.Type })
	if !ok {
		return nil, &DispatchError{Err: ErrNotARequest, Type: reflect.TypeOf(req)}
	}

	return s.sendDynamic(ctx, req, r.ResponseType())
}

func (s *RequestSender) sendDynamic(ctx context.Context, req any, respType reflect.Type) (any, error) {
	return s.send(ctx, req, reflect.TypeOf(req), respType, func(h any) (link, bool) {
		rh, ok := h.(anyRequestHandler)
		if !ok {
			return nil, false
		}

		return func(ctx context.Context) (any, error) {
			return rh.handleAny(ctx, req)
		}, true
	})
}

// Send dispatches a request to the handler registered for exactly Req and
// Resp. Behaviors are resolved for the same types.
func Send[Req Request[Resp], Resp any](ctx context.Context, d RequestDispatcher, req Req) (Resp, error) {
	if isNil(req) {
		var zero Resp

		return zero, ErrMissingRequest
	}

	reqType := reflect.TypeFor[Req]()
	v, err := d.requestSender().send(ctx, req, reqType, reflect.TypeFor[Resp](), func(h any) (link, bool) {
		rh, ok := h.(RequestHandler[Req, Resp])
		if !ok {
			return nil, false
		}

		return func(ctx context.Context) (any, error) {
			resp, err := rh.Handle(ctx, req)

			return resp, err
		}, true
	})

	return responseAs[Resp](v, err, reqType)
}

// SendRequest dispatches a request by its runtime type and returns the typed
// response. Handlers and behaviors are resolved for the concrete type of the
// request, so behaviors matching marker interfaces see what the request
// actually implements.
func SendRequest[Resp any](ctx context.Context, d RequestDispatcher, req Request[Resp]) (Resp, error) {
	if isNil(req) {
		var zero Resp

		return zero, ErrMissingRequest
	}

	v, err := d.requestSender().sendDynamic(ctx, req, reflect.TypeFor[Resp]())

	return responseAs[Resp](v, err, reflect.TypeOf(req))
}

// send is the dispatch core shared by all request modes.
func (s *RequestSender) send(ctx context.Context, req any, reqType, respType reflect.Type, terminal func(any) (link, bool)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, id := withDispatchID(ctx)
	log := s.logger.With("request_type", reqType.String(), "dispatch_id", id.String())

	h, err := s.registry.ResolveOne(Key{RequestHandlerContract, reqType, respType})
	if errors.Is(err, ErrNotRegistered) {
		return nil, &DispatchError{Err: ErrHandlerNotFound, Type: reqType}
	} else if err != nil {
		return nil, &DispatchError{Err: ErrInvalidHandler, BaseErr: err, Type: reqType}
	}

	handle, ok := terminal(h)
	if !ok {
		return nil, &DispatchError{
			Err:     ErrInvalidHandler,
			BaseErr: fmt.Errorf("%T does not handle %s", h, reqType),
			Type:    reqType,
		}
	}

	behaviors, err := resolveBehaviors(s.registry, Key{PipelineBehaviorContract, reqType, respType})
	if err != nil {
		return nil, err
	}

	log.Debug("dispatching request", "behaviors", len(behaviors))

	resp, err := compose(behaviors, req, handle)(ctx)
	if err != nil {
		if IsCancellation(err) {
			log.Debug("request cancelled", "error", err)

			return nil, err
		}

		log.Warn("request failed", "error", err)

		return nil, &DispatchError{Err: ErrRequestFailed, BaseErr: err, Type: reqType}
	}

	log.Debug("request handled")

	return resp, nil
}

func responseAs[Resp any](v any, err error, reqType reflect.Type) (Resp, error) {
	var zero Resp
	if err != nil {
		return zero, err
	}

	if v == nil {
		return zero, nil
	}

	resp, ok := v.(Resp)
	if !ok {
		return zero, &DispatchError{
			Err:     ErrInvalidResponse,
			BaseErr: fmt.Errorf("got %T, want %s", v, reflect.TypeFor[Resp]()),
			Type:    reqType,
		}
	}

	return resp, nil
}

// isNil reports if v is absent: a nil interface or a nil pointer-like value.
func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
