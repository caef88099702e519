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

	"github.com/looplab/mediator/uuid"
)

type contextKey int

// Context keys for the dispatch.
const (
	dispatchIDKey contextKey = iota
)

// DispatchIDFromContext returns the ID of the dispatch the context belongs to.
func DispatchIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(dispatchIDKey).(uuid.UUID)

	return id, ok
}

// NewContextWithDispatchID sets the dispatch ID to use in the context. Use it
// to correlate a dispatch with an outer operation, otherwise every dispatch
// gets a new ID.
func NewContextWithDispatchID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, dispatchIDKey, id)
}

// withDispatchID returns the context with a new dispatch ID unless one is
// already set.
func withDispatchID(ctx context.Context) (context.Context, uuid.UUID) {
	if id, ok := DispatchIDFromContext(ctx); ok {
		return ctx, id
	}

	id := uuid.New()

	return NewContextWithDispatchID(ctx, id), id
}
