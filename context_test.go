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
	"testing"

	"github.com/looplab/mediator/uuid"
)

func TestDispatchIDContext(t *testing.T) {
	ctx := context.Background()

	if _, ok := DispatchIDFromContext(ctx); ok {
		t.Error("there should be no dispatch ID")
	}

	ctx, id := withDispatchID(ctx)
	if id == uuid.Nil {
		t.Error("there should be a new dispatch ID")
	}

	if val, ok := DispatchIDFromContext(ctx); !ok || val != id {
		t.Error("the dispatch ID should be correct:", val)
	}

	t.Log("keep an existing ID")

	outer := uuid.New()
	ctx = NewContextWithDispatchID(context.Background(), outer)

	if _, id := withDispatchID(ctx); id != outer {
		t.Error("the outer dispatch ID should be kept:", id)
	}
}
