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
	"errors"
	"fmt"
	"reflect"
)

// Contract is the name of a capability registered in a Registry.
type Contract string

// String returns the string representation of a contract.
func (c Contract) String() string {
	return string(c)
}

const (
	// RequestHandlerContract is the contract of request handlers.
	RequestHandlerContract Contract = "RequestHandler"
	// NotificationHandlerContract is the contract of notification handlers.
	NotificationHandlerContract Contract = "NotificationHandler"
	// StreamHandlerContract is the contract of stream handlers.
	StreamHandlerContract Contract = "StreamHandler"
	// PipelineBehaviorContract is the contract of pipeline behaviors.
	PipelineBehaviorContract Contract = "PipelineBehavior"

	// RequestSenderContract is the contract of the request dispatcher.
	RequestSenderContract Contract = "RequestSender"
	// NotificationPublisherContract is the contract of the notification dispatcher.
	NotificationPublisherContract Contract = "NotificationPublisher"
	// StreamSenderContract is the contract of the stream dispatcher.
	StreamSenderContract Contract = "StreamSender"
	// MediatorContract is the contract of the facade.
	MediatorContract Contract = "Mediator"
)

// Key is a closed contract: a contract together with the concrete types it
// is parameterized with.
type Key struct {
	Contract Contract
	// Type is the request, notification or stream request type.
	Type reflect.Type
	// Result is the response or element type, nil for notifications.
	Result reflect.Type
}

// String implements the Stringer interface for Key.
func (k Key) String() string {
	switch {
	case k.Type == nil:
		return k.Contract.String()
	case k.Result == nil:
		return fmt.Sprintf("%s[%s]", k.Contract, k.Type)
	default:
		return fmt.Sprintf("%s[%s, %s]", k.Contract, k.Type, k.Result)
	}
}

// ErrNotRegistered is returned by a Registry when nothing is registered for
// a key.
var ErrNotRegistered = errors.New("not registered")

// ErrAlreadyRegistered is returned by RegisterUnique when a registration
// already matches the key.
var ErrAlreadyRegistered = errors.New("already registered")

// ErrAmbiguous is returned by ResolveOne when more than one registration
// matches a key.
var ErrAmbiguous = errors.New("ambiguous registration")

// Factory creates an instance for a resolved key. It is called on every
// resolution.
type Factory func(Key) any

// Constraint reports if an open registration can be closed with a key.
type Constraint func(Key) bool

// Registry resolves instances by key. Registries are read-only from the
// point of view of the dispatchers.
type Registry interface {
	// ResolveOne returns the single instance for the key. Returns
	// ErrNotRegistered or ErrAmbiguous.
	ResolveOne(Key) (any, error)
	// ResolveMany returns all instances for the key in registration order,
	// possibly none.
	ResolveMany(Key) ([]any, error)
	// ResolveAny returns the first instance for the key, if any.
	ResolveAny(Key) (any, bool)
}

// Registrar stores factories in a registry.
type Registrar interface {
	// Register adds a factory for a closed key.
	Register(Key, Factory) error
	// RegisterUnique adds a factory for a closed key if nothing matches the
	// key yet, else returns ErrAlreadyRegistered. Factories are not called.
	RegisterUnique(Key, Factory) error
	// RegisterOpen adds a factory for every key of the contract accepted by
	// the constraint.
	RegisterOpen(Contract, Constraint, Factory) error
}

// RegisterRequestHandler registers the handler factory for the request type
// Req with the response type Resp. Only one handler can be registered per
// request and response type.
func RegisterRequestHandler[Req Request[Resp], Resp any](r Registrar, factory func() RequestHandler[Req, Resp]) error {
	if factory == nil {
		return ErrInvalidHandler
	}

	key := Key{RequestHandlerContract, reflect.TypeFor[Req](), reflect.TypeFor[Resp]()}

	return registerUnique(r, key, func(Key) any {
		return requestHandler[Req, Resp]{factory()}
	})
}

// RegisterNotificationHandler adds a handler factory for the notification type
// N. Handlers are invoked in the order they are registered.
func RegisterNotificationHandler[N Notification](r Registrar, factory func() NotificationHandler[N]) error {
	if factory == nil {
		return ErrInvalidHandler
	}

	key := Key{Contract: NotificationHandlerContract, Type: reflect.TypeFor[N]()}

	return r.Register(key, func(Key) any {
		return notificationHandler[N]{factory()}
	})
}

// RegisterStreamHandler registers the handler factory for the stream request
// type S with the element type E. Only one handler can be registered per
// stream request and element type.
func RegisterStreamHandler[S StreamRequest[E], E any](r Registrar, factory func() StreamHandler[S, E]) error {
	if factory == nil {
		return ErrInvalidHandler
	}

	key := Key{StreamHandlerContract, reflect.TypeFor[S](), reflect.TypeFor[E]()}

	return registerUnique(r, key, func(Key) any {
		return streamHandler[S, E]{factory()}
	})
}

func registerUnique(r Registrar, key Key, f Factory) error {
	err := r.RegisterUnique(key, f)
	if errors.Is(err, ErrAlreadyRegistered) {
		return &DispatchError{Err: ErrHandlerAlreadySet, BaseErr: err, Type: key.Type}
	}

	return err
}

// RegistrarRegistry is both a Registrar and a Registry, used to set up and
// resolve from the same registry.
type RegistrarRegistry interface {
	Registrar
	Registry
}
