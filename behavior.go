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
	"fmt"
	"reflect"
	"strings"
)

// Next continues the pipeline with the next behavior, or the handler for the
// last behavior.
type Next[Resp any] func(ctx context.Context) (Resp, error)

// PipelineBehavior wraps the handling of requests of type Req with response
// type Resp. Req can be an interface to wrap all requests implementing it,
// for example a marker method that all commands share. Resp can be an
// interface, like any, to wrap requests with any response type.
//
// Behaviors are bound with BindBehavior and run in priority order, the lowest
// level first on the way in and last on the way out.
type PipelineBehavior[Req, Resp any] interface {
	// Handle handles the request, calling next to continue the pipeline.
	Handle(ctx context.Context, req Req, next Next[Resp]) (Resp, error)
}

// BehaviorFunc is a function that can be used as a pipeline behavior.
type BehaviorFunc[Req, Resp any] func(context.Context, Req, Next[Resp]) (Resp, error)

// Handle implements the Handle method of the PipelineBehavior.
func (f BehaviorFunc[Req, Resp]) Handle(ctx context.Context, req Req, next Next[Resp]) (Resp, error) {
	return f(ctx, req, next)
}

// Priority is the position of a behavior in the pipeline. The zero value is
// an unset priority, which is invalid.
type Priority struct {
	level int
	set   bool
}

// Level returns a priority at the level, lower levels wrap higher levels.
func Level(level int) Priority {
	return Priority{level: level, set: true}
}

// Level returns the level of the priority and if it is set.
func (p Priority) Level() (int, bool) {
	return p.level, p.set
}

// String implements the Stringer interface for Priority.
func (p Priority) String() string {
	if !p.set {
		return "unset"
	}

	return fmt.Sprintf("level %d", p.level)
}

// BehaviorConfig describes a pipeline behavior to bind.
type BehaviorConfig struct {
	// Name is used in errors and logs, defaults to the type of the behavior.
	Name string
	// Priority is the required position in the pipeline.
	Priority Priority
	// Factory creates the behavior. It is called once at binding to validate
	// the behavior and then on every dispatch.
	Factory func() any
}

// BindBehavior validates the behavior and registers it for the requests and
// responses its Handle method accepts. Closed behaviors, with a concrete
// request and response type, are registered for exactly those types. Open
// behaviors are registered for every request type implementing the request
// interface and every response type implementing the response interface.
//
// The behavior must be final, it can not embed interfaces. It must declare
// Handle itself, not get it by embedding another type.
func BindBehavior(r Registrar, cfg BehaviorConfig) error {
	if cfg.Factory == nil {
		return &ConfigError{Err: ErrMissingBehavior, Behavior: cfg.Name}
	}

	sample, err := newBehavior(cfg.Name, cfg.Priority, cfg.Factory())
	if err != nil {
		return err
	}

	name, priority := sample.name, cfg.Priority
	factory := func(Key) any {
		b, err := newBehavior(name, priority, cfg.Factory())
		if err != nil {
			return &behavior{name: name, err: err}
		}

		return b
	}

	if sample.reqType.Kind() != reflect.Interface && sample.respType.Kind() != reflect.Interface {
		return r.Register(Key{PipelineBehaviorContract, sample.reqType, sample.respType}, factory)
	}

	reqType, respType := sample.reqType, sample.respType

	return r.RegisterOpen(PipelineBehaviorContract, func(k Key) bool {
		return accepts(reqType, k.Type) && accepts(respType, k.Result)
	}, factory)
}

// accepts reports if a behavior parameter of type p can take values of the
// concrete type t.
func accepts(p, t reflect.Type) bool {
	if t == nil {
		return false
	}

	if p == t {
		return true
	}

	return p.Kind() == reflect.Interface && t.Implements(p)
}

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
	nextPkgPath = reflect.TypeFor[Next[any]]().PkgPath()
)

// newBehavior validates v as a pipeline behavior.
func newBehavior(name string, p Priority, v any) (*behavior, error) {
	if isNil(v) {
		return nil, &ConfigError{Err: ErrMissingBehavior, Behavior: name}
	}

	t := reflect.TypeOf(v)
	if name == "" {
		name = t.String()
	}

	if !p.set {
		return nil, &ConfigError{Err: ErrMissingPriority, Behavior: name}
	}

	base := t
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	if base.Kind() == reflect.Struct {
		for i := range base.NumField() {
			f := base.Field(i)
			if !f.Anonymous {
				continue
			}

			if f.Type.Kind() == reflect.Interface {
				return nil, &ConfigError{
					Err:      fmt.Errorf("%w: embeds %s", ErrBehaviorNotFinal, f.Type),
					Behavior: name,
				}
			}

			if hasHandle(f.Type) {
				return nil, &ConfigError{
					Err:      fmt.Errorf("%w: from %s", ErrInheritedContract, f.Type),
					Behavior: name,
				}
			}
		}
	}

	m, ok := t.MethodByName("Handle")
	if !ok {
		return nil, &ConfigError{Err: ErrNoBehaviorContract, Behavior: name}
	}

	reqType, respType, ok := pipelineShape(m.Type)
	if !ok {
		return nil, &ConfigError{
			Err:      fmt.Errorf("%w: Handle is %s", ErrNoBehaviorContract, m.Type),
			Behavior: name,
		}
	}

	return &behavior{
		name:     name,
		priority: p,
		handle:   reflect.ValueOf(v).Method(m.Index),
		nextType: m.Type.In(3),
		reqType:  reqType,
		respType: respType,
	}, nil
}

func hasHandle(t reflect.Type) bool {
	if _, ok := t.MethodByName("Handle"); ok {
		return true
	}

	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface {
		_, ok := reflect.PointerTo(t).MethodByName("Handle")

		return ok
	}

	return false
}

// pipelineShape checks that a method type, with the receiver as the first
// argument, is Handle(context.Context, Req, Next[Resp]) (Resp, error).
func pipelineShape(m reflect.Type) (req, resp reflect.Type, ok bool) {
	if m.NumIn() != 4 || m.NumOut() != 2 {
		return nil, nil, false
	}

	if m.In(1) != contextType || m.Out(1) != errorType {
		return nil, nil, false
	}

	next := m.In(3)
	if next.Kind() != reflect.Func ||
		next.PkgPath() != nextPkgPath ||
		!strings.HasPrefix(next.Name(), "Next[") {
		return nil, nil, false
	}

	if next.NumIn() != 1 || next.In(0) != contextType ||
		next.NumOut() != 2 || next.Out(0) != m.Out(0) || next.Out(1) != errorType {
		return nil, nil, false
	}

	return m.In(2), m.Out(0), true
}
