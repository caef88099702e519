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

package configure

import "github.com/looplab/mediator"

// Registration registers handlers or behaviors in a registry.
type Registration func(mediator.RegistrarRegistry) error

// RequestHandler registers the handler factory for the request type Req.
func RequestHandler[Req mediator.Request[Resp], Resp any](factory func() mediator.RequestHandler[Req, Resp]) Registration {
	return func(r mediator.RegistrarRegistry) error {
		return mediator.RegisterRequestHandler(r, factory)
	}
}

// NotificationHandler adds a handler factory for the notification type N.
func NotificationHandler[N mediator.Notification](factory func() mediator.NotificationHandler[N]) Registration {
	return func(r mediator.RegistrarRegistry) error {
		return mediator.RegisterNotificationHandler(r, factory)
	}
}

// StreamHandler registers the handler factory for the stream request type S.
func StreamHandler[S mediator.StreamRequest[E], E any](factory func() mediator.StreamHandler[S, E]) Registration {
	return func(r mediator.RegistrarRegistry) error {
		return mediator.RegisterStreamHandler(r, factory)
	}
}

// Behavior binds a pipeline behavior.
func Behavior(cfg mediator.BehaviorConfig) Registration {
	return func(r mediator.RegistrarRegistry) error {
		return mediator.BindBehavior(r, cfg)
	}
}

// BehaviorBuilder builds a mediator.BehaviorConfig.
type BehaviorBuilder interface {
	SetName(string) BehaviorBuilder
	SetPriority(int) BehaviorBuilder
	SetFactory(func() any) BehaviorBuilder

	Config() mediator.BehaviorConfig
	Registration() Registration
}

// NewBehaviorBuilder creates a new BehaviorBuilder.
func NewBehaviorBuilder() BehaviorBuilder {
	return &builder{}
}

type builder struct {
	cfg mediator.BehaviorConfig
}

func (b *builder) SetName(name string) BehaviorBuilder {
	b.cfg.Name = name
	return b
}
func (b *builder) SetPriority(level int) BehaviorBuilder {
	b.cfg.Priority = mediator.Level(level)
	return b
}
func (b *builder) SetFactory(factory func() any) BehaviorBuilder {
	b.cfg.Factory = factory
	return b
}

func (b *builder) Config() mediator.BehaviorConfig {
	return b.cfg
}
func (b *builder) Registration() Registration {
	return Behavior(b.cfg)
}
