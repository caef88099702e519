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

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/kr/pretty"

	"github.com/looplab/mediator"
	"github.com/looplab/mediator/mocks"
	"github.com/looplab/mediator/registry/memory"
)

func TestNew(t *testing.T) {
	log := mocks.NewExecutionLog()

	m, r, err := New(
		RequestHandler(func() mediator.RequestHandler[mocks.CreateOrder, string] {
			return &mocks.CreateOrderHandler{}
		}),
		NotificationHandler(func() mediator.NotificationHandler[mocks.SampleNotification] {
			return &mocks.NotificationHandler{}
		}),
		StreamHandler(func() mediator.StreamHandler[mocks.Range, int] {
			return &mocks.RangeHandler{}
		}),
		Behavior(mocks.TestBehaviorConfig(log)),
		Behavior(mocks.TransactionBehaviorConfig(log)),
	)
	if err != nil {
		t.Fatal("there should be no error:", err)
	}

	if m == nil {
		t.Fatal("there should be a mediator")
	}

	resolved, err := Resolve[*mediator.Mediator](r, mediator.MediatorContract)
	if err != nil {
		t.Error("there should be no error:", err)
	}

	if resolved != m {
		t.Error("the resolved mediator should be the built one")
	}

	sender, err := Resolve[*mediator.RequestSender](r, mediator.RequestSenderContract)
	if err != nil {
		t.Error("there should be no error:", err)
	}

	resp, err := mediator.Send[mocks.CreateOrder, string](context.Background(), sender, mocks.CreateOrder{ID: "A1"})
	if err != nil {
		t.Error("there should be no error:", err)
	}

	if resp != "Created:A1" {
		t.Error("the response should be correct:", resp)
	}

	expSteps := []string{"Test-Before", "Tx-Before", "Tx-After", "Test-After"}
	if steps := log.Steps(); !reflect.DeepEqual(steps, expSteps) {
		t.Error("the steps should be correct:")
		t.Log(pretty.Sprint(steps))
	}

	if _, err := Resolve[*mediator.NotificationPublisher](r, mediator.NotificationPublisherContract); err != nil {
		t.Error("there should be no error:", err)
	}

	if _, err := Resolve[*mediator.StreamSender](r, mediator.StreamSenderContract); err != nil {
		t.Error("there should be no error:", err)
	}

	if _, err := Resolve[*mediator.StreamSender](r, mediator.MediatorContract); err == nil {
		t.Error("there should be an error for the wrong type")
	}
}

func TestNewErrors(t *testing.T) {
	log := mocks.NewExecutionLog()

	cases := map[string]struct {
		regs   []Registration
		expErr error
	}{
		"missing priority": {
			[]Registration{Behavior(mediator.BehaviorConfig{
				Factory: func() any { return &mocks.TestBehavior{Log: log} },
			})},
			mediator.ErrMissingPriority,
		},
		"not final": {
			[]Registration{Behavior(mediator.BehaviorConfig{
				Priority: mediator.Level(1),
				Factory:  func() any { return &mocks.OpenBehavior{} },
			})},
			mediator.ErrBehaviorNotFinal,
		},
		"inherited contract": {
			[]Registration{Behavior(mediator.BehaviorConfig{
				Priority: mediator.Level(1),
				Factory:  func() any { return &mocks.InheritedBehavior{} },
			})},
			mediator.ErrInheritedContract,
		},
		"duplicate handler": {
			[]Registration{
				RequestHandler(func() mediator.RequestHandler[mocks.EchoRequest, string] {
					return &mocks.EchoHandler{}
				}),
				RequestHandler(func() mediator.RequestHandler[mocks.EchoRequest, string] {
					return &mocks.EchoHandler{}
				}),
			},
			mediator.ErrHandlerAlreadySet,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			m, _, err := New(tc.regs...)
			if !errors.Is(err, tc.expErr) {
				t.Errorf("test case '%s': error is wrong", name)
				t.Log("exp:", tc.expErr)
				t.Log("got:", err)
			}

			if m != nil {
				t.Errorf("test case '%s': there should be no mediator", name)
			}
		})
	}
}

func TestContainerNilRegistration(t *testing.T) {
	_, err := NewContainer(memory.NewRegistry()).Register(nil).Build()
	if err == nil {
		t.Error("there should be an error")
	}
}
