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
	"cmp"
	"context"
	"fmt"
	"reflect"
	"slices"
)

// link is one step of a composed pipeline.
type link func(ctx context.Context) (any, error)

// behavior is a bound pipeline behavior, invoked by reflection so that open
// behaviors can wrap requests of any matching type.
type behavior struct {
	name     string
	priority Priority
	handle   reflect.Value
	nextType reflect.Type
	reqType  reflect.Type
	respType reflect.Type

	// err is set when the factory failed to produce a valid behavior.
	err error
}

func (b *behavior) invoke(ctx context.Context, req any, next link) (any, error) {
	reqV := reflect.ValueOf(req)
	if !reqV.Type().AssignableTo(b.reqType) {
		return nil, fmt.Errorf("%w: behavior %s can not handle %T", ErrInvalidHandler, b.name, req)
	}

	in := reflect.New(b.reqType).Elem()
	in.Set(reqV)

	ctxV := reflect.New(contextType).Elem()
	ctxV.Set(reflect.ValueOf(ctx))

	nextV := reflect.MakeFunc(b.nextType, func(args []reflect.Value) []reflect.Value {
		nextCtx, ok := args[0].Interface().(context.Context)
		if !ok {
			nextCtx = ctx
		}

		resp := reflect.New(b.respType).Elem()
		errV := reflect.New(errorType).Elem()

		v, err := next(nextCtx)
		if err == nil && v != nil {
			rv := reflect.ValueOf(v)
			if rv.Type().AssignableTo(b.respType) {
				resp.Set(rv)
			} else {
				err = fmt.Errorf("%w: got %T, want %s", ErrInvalidResponse, v, b.respType)
			}
		}

		if err != nil {
			errV.Set(reflect.ValueOf(err))
		}

		return []reflect.Value{resp, errV}
	})

	out := b.handle.Call([]reflect.Value{ctxV, in, nextV})

	var err error
	if e := out[1].Interface(); e != nil {
		err = e.(error)
	}

	return out[0].Interface(), err
}

// resolveBehaviors resolves the bound behaviors for the key. Anything that was
// not bound with a priority is a configuration error.
func resolveBehaviors(r Registry, key Key) ([]*behavior, error) {
	items, err := r.ResolveMany(key)
	if err != nil {
		return nil, &DispatchError{Err: ErrInvalidHandler, BaseErr: err, Type: key.Type}
	}

	behaviors := make([]*behavior, 0, len(items))
	for _, item := range items {
		b, ok := item.(*behavior)
		if !ok {
			return nil, &ConfigError{Err: ErrMissingPriority, Behavior: fmt.Sprintf("%T", item)}
		}

		if b.err != nil {
			return nil, b.err
		}

		if !b.priority.set {
			return nil, &ConfigError{Err: ErrMissingPriority, Behavior: b.name}
		}

		behaviors = append(behaviors, b)
	}

	return behaviors, nil
}

// compose chains the behaviors around the terminal step. Behaviors are sorted
// by priority, the lowest level becomes the outermost. Behaviors with equal
// priority keep their registration order.
func compose(behaviors []*behavior, req any, terminal link) link {
	sorted := slices.Clone(behaviors)
	slices.SortStableFunc(sorted, func(a, b *behavior) int {
		return cmp.Compare(a.priority.level, b.priority.level)
	})

	// Wrap in reverse order so that the first behavior is outermost.
	chain := terminal
	for i := len(sorted) - 1; i >= 0; i-- {
		b, next := sorted[i], chain
		chain = func(ctx context.Context) (any, error) {
			return b.invoke(ctx, req, next)
		}
	}

	return chain
}
