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

// Package configure sets up a mediator from an explicit list of handler
// registrations and behavior bindings.
package configure

import (
	"fmt"
	"reflect"

	"github.com/looplab/mediator"
	"github.com/looplab/mediator/registry/memory"
)

// Container used to configure the mediator.
type Container interface {
	Register(...Registration) Container
	Build(...mediator.Option) (*mediator.Mediator, error)
}

// NewContainer creates a new container registering in the registry.
func NewContainer(r mediator.RegistrarRegistry) Container {
	return &container{
		registry: r,
	}
}

type container struct {
	registry mediator.RegistrarRegistry
	regs     []Registration
	err      error
}

func (c *container) Register(regs ...Registration) Container {
	for i, reg := range regs {
		if c.err != nil {
			break
		}

		if reg == nil {
			c.err = fmt.Errorf("registration %d is nil", len(c.regs)+i)

			break
		}

		if err := reg(c.registry); err != nil {
			c.err = fmt.Errorf("could not register %d: %w", len(c.regs)+i, err)

			break
		}
	}

	c.regs = append(c.regs, regs...)

	return c
}

// Build registers the dispatchers and the facade as singletons and returns
// the facade. Any error from the registrations is returned first.
func (c *container) Build(opts ...mediator.Option) (*mediator.Mediator, error) {
	if c.err != nil {
		return nil, c.err
	}

	m := mediator.New(c.registry, opts...)

	singletons := []struct {
		contract mediator.Contract
		v        any
	}{
		{mediator.RequestSenderContract, m.RequestSender},
		{mediator.NotificationPublisherContract, m.NotificationPublisher},
		{mediator.StreamSenderContract, m.StreamSender},
		{mediator.MediatorContract, m},
	}
	for _, s := range singletons {
		v := s.v
		if err := c.registry.Register(mediator.Key{Contract: s.contract}, func(mediator.Key) any {
			return v
		}); err != nil {
			return nil, fmt.Errorf("could not register %s: %w", s.contract, err)
		}
	}

	return m, nil
}

// New creates a mediator with an in-memory registry and the registrations.
func New(regs ...Registration) (*mediator.Mediator, mediator.Registry, error) {
	r := memory.NewRegistry()

	m, err := NewContainer(r).Register(regs...).Build()
	if err != nil {
		return nil, nil, err
	}

	return m, r, nil
}

// Resolve resolves the singleton registered for the contract by Build.
func Resolve[T any](r mediator.Registry, contract mediator.Contract) (T, error) {
	var zero T

	v, err := r.ResolveOne(mediator.Key{Contract: contract})
	if err != nil {
		return zero, err
	}

	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s is %T, not %s", contract, v, reflect.TypeFor[T]())
	}

	return t, nil
}
