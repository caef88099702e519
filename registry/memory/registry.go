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

// Package memory contains an in-memory mediator.Registry.
package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/looplab/mediator"
)

// ErrInvalidRegistration is when a registration has no contract, factory or
// constraint.
var ErrInvalidRegistration = errors.New("invalid registration")

// Registry is an in-memory registry of factories. Closed registrations match
// one key exactly, open registrations match every key of their contract that
// the constraint accepts. Matches are returned in registration order.
type Registry struct {
	entries   map[mediator.Contract][]entry
	entriesMu sync.RWMutex
}

type entry struct {
	key        mediator.Key
	constraint mediator.Constraint
	factory    mediator.Factory
}

func (e entry) matches(k mediator.Key) bool {
	if e.constraint != nil {
		return e.constraint(k)
	}

	return e.key == k
}

// NewRegistry creates a Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[mediator.Contract][]entry),
	}
}

// Register implements the Register method of the mediator.Registrar interface.
func (r *Registry) Register(k mediator.Key, f mediator.Factory) error {
	if k.Contract == "" || f == nil {
		return fmt.Errorf("%w: %s", ErrInvalidRegistration, k)
	}

	r.entriesMu.Lock()
	defer r.entriesMu.Unlock()

	r.entries[k.Contract] = append(r.entries[k.Contract], entry{key: k, factory: f})

	return nil
}

// RegisterUnique implements the RegisterUnique method of the
// mediator.Registrar interface. The check and the registration are done under
// the same lock.
func (r *Registry) RegisterUnique(k mediator.Key, f mediator.Factory) error {
	if k.Contract == "" || f == nil {
		return fmt.Errorf("%w: %s", ErrInvalidRegistration, k)
	}

	r.entriesMu.Lock()
	defer r.entriesMu.Unlock()

	for _, e := range r.entries[k.Contract] {
		if e.matches(k) {
			return fmt.Errorf("%w: %s", mediator.ErrAlreadyRegistered, k)
		}
	}

	r.entries[k.Contract] = append(r.entries[k.Contract], entry{key: k, factory: f})

	return nil
}

// RegisterOpen implements the RegisterOpen method of the mediator.Registrar
// interface.
func (r *Registry) RegisterOpen(c mediator.Contract, constraint mediator.Constraint, f mediator.Factory) error {
	if c == "" || constraint == nil || f == nil {
		return fmt.Errorf("%w: open %s", ErrInvalidRegistration, c)
	}

	r.entriesMu.Lock()
	defer r.entriesMu.Unlock()

	r.entries[c] = append(r.entries[c], entry{
		key:        mediator.Key{Contract: c},
		constraint: constraint,
		factory:    f,
	})

	return nil
}

// ResolveOne implements the ResolveOne method of the mediator.Registry
// interface.
func (r *Registry) ResolveOne(k mediator.Key) (any, error) {
	matched := r.match(k)

	switch len(matched) {
	case 0:
		return nil, fmt.Errorf("%w: %s", mediator.ErrNotRegistered, k)
	case 1:
		return matched[0].factory(k), nil
	default:
		return nil, fmt.Errorf("%w: %d matches for %s", mediator.ErrAmbiguous, len(matched), k)
	}
}

// ResolveMany implements the ResolveMany method of the mediator.Registry
// interface.
func (r *Registry) ResolveMany(k mediator.Key) ([]any, error) {
	matched := r.match(k)

	items := make([]any, 0, len(matched))
	for _, e := range matched {
		items = append(items, e.factory(k))
	}

	return items, nil
}

// ResolveAny implements the ResolveAny method of the mediator.Registry
// interface.
func (r *Registry) ResolveAny(k mediator.Key) (any, bool) {
	matched := r.match(k)
	if len(matched) == 0 {
		return nil, false
	}

	return matched[0].factory(k), true
}

// match returns the matching entries. Factories are called by the caller
// without holding the lock, so that they can resolve from the registry.
func (r *Registry) match(k mediator.Key) []entry {
	r.entriesMu.RLock()
	defer r.entriesMu.RUnlock()

	var matched []entry

	for _, e := range r.entries[k.Contract] {
		if e.matches(k) {
			matched = append(matched, e)
		}
	}

	return matched
}
