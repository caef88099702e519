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
	"reflect"
	"testing"

	"github.com/kr/pretty"

	"github.com/looplab/mediator"
	"github.com/looplab/mediator/mocks"
)

func TestBehaviorBuilder(t *testing.T) {
	cases := map[string]struct {
		name     string
		priority int
	}{
		"test at level 0": {
			"Test",
			0,
		},
		"test at level 3": {
			"Test",
			3,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			log := mocks.NewExecutionLog()
			b := NewBehaviorBuilder().
				SetName(tc.name).
				SetPriority(tc.priority).
				SetFactory(func() any { return &mocks.TestBehavior{Log: log} })

			cfg := b.Config()
			if cfg.Name != tc.name {
				t.Errorf("test case '%s': name is wrong", name)
				t.Log("exp:", tc.name)
				t.Log("got:", cfg.Name)
			}

			if !reflect.DeepEqual(cfg.Priority, mediator.Level(tc.priority)) {
				t.Errorf("test case '%s': priority is wrong", name)
				t.Log("exp:\n", pretty.Sprint(mediator.Level(tc.priority)))
				t.Log("got:\n", pretty.Sprint(cfg.Priority))
			}

			if _, ok := cfg.Factory().(*mocks.TestBehavior); !ok {
				t.Errorf("test case '%s': factory is wrong", name)
			}

			if b.Registration() == nil {
				t.Errorf("test case '%s': there should be a registration", name)
			}
		})
	}
}
