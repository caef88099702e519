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
	"reflect"
	"testing"
)

type pipelineRequest struct {
	Returns[string]
}

type stepBehavior struct {
	steps *[]string
	name  string
}

func (b *stepBehavior) Handle(ctx context.Context, req pipelineRequest, next Next[string]) (string, error) {
	*b.steps = append(*b.steps, b.name)

	return next(ctx)
}

func TestCompose(t *testing.T) {
	var steps []string

	bind := func(name string, level int) *behavior {
		b, err := newBehavior(name, Level(level), &stepBehavior{steps: &steps, name: name})
		if err != nil {
			t.Fatal("there should be no error:", err)
		}

		return b
	}

	behaviors := []*behavior{
		bind("c", 2), bind("a", 0), bind("b1", 1), bind("b2", 1),
	}

	chain := compose(behaviors, pipelineRequest{}, func(ctx context.Context) (any, error) {
		steps = append(steps, "handler")

		return "done", nil
	})

	resp, err := chain(context.Background())
	if err != nil {
		t.Error("there should be no error:", err)
	}

	if resp != "done" {
		t.Error("the response should be correct:", resp)
	}

	if !reflect.DeepEqual(steps, []string{"a", "b1", "b2", "c", "handler"}) {
		t.Error("the order should be correct:", steps)
	}

	if behaviors[0].name != "c" {
		t.Error("the behaviors should not be sorted in place")
	}
}

func TestComposeEmpty(t *testing.T) {
	chain := compose(nil, pipelineRequest{}, func(ctx context.Context) (any, error) {
		return "done", nil
	})

	if resp, err := chain(context.Background()); err != nil || resp != "done" {
		t.Error("the terminal should be invoked directly:", resp, err)
	}
}

func TestBehaviorInvokeInvalidResponse(t *testing.T) {
	var steps []string

	b, err := newBehavior("step", Level(0), &stepBehavior{steps: &steps, name: "step"})
	if err != nil {
		t.Fatal("there should be no error:", err)
	}

	_, err = b.invoke(context.Background(), pipelineRequest{}, func(ctx context.Context) (any, error) {
		return 1, nil
	})
	if !errors.Is(err, ErrInvalidResponse) {
		t.Error("there should be a ErrInvalidResponse error:", err)
	}

	_, err = b.invoke(context.Background(), "not a request", nil)
	if !errors.Is(err, ErrInvalidHandler) {
		t.Error("there should be a ErrInvalidHandler error:", err)
	}
}

func TestPipelineShape(t *testing.T) {
	cases := map[string]struct {
		v    any
		ok   bool
		req  reflect.Type
		resp reflect.Type
	}{
		"closed": {
			&stepBehavior{}, true,
			reflect.TypeFor[pipelineRequest](), reflect.TypeFor[string](),
		},
		"func": {
			BehaviorFunc[any, any](nil), true,
			reflect.TypeFor[any](), reflect.TypeFor[any](),
		},
		"wrong next": {
			wrongNextBehavior{}, false, nil, nil,
		},
	}

	for name, tc := range cases {
		m, ok := reflect.TypeOf(tc.v).MethodByName("Handle")
		if !ok {
			t.Fatalf("test case '%s': there should be a Handle method", name)
		}

		req, resp, ok := pipelineShape(m.Type)
		if ok != tc.ok || req != tc.req || resp != tc.resp {
			t.Errorf("test case '%s': the shape is wrong: %v %v %v", name, req, resp, ok)
		}
	}
}

type wrongNextBehavior struct{}

func (wrongNextBehavior) Handle(ctx context.Context, req any, next func(context.Context) (any, error)) (any, error) {
	return next(ctx)
}
