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

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/looplab/mediator"
	"github.com/looplab/mediator/registry/memory"
)

type FetchMarket struct {
	mediator.Returns[string]

	System string
}

func (q FetchMarket) RateLimitKey() string { return q.System }

func newMediator(t *testing.T, b *Behavior) *mediator.Mediator {
	t.Helper()

	r := memory.NewRegistry()
	require.NoError(t, mediator.RegisterRequestHandler(r, func() mediator.RequestHandler[FetchMarket, string] {
		return mediator.RequestHandlerFunc[FetchMarket, string](func(ctx context.Context, req FetchMarket) (string, error) {
			return "market:" + req.System, nil
		})
	}))
	require.NoError(t, mediator.BindBehavior(r, b.Config(0)))

	return mediator.New(r)
}

func TestBehaviorBurst(t *testing.T) {
	m := newMediator(t, NewBehavior(rate.Every(time.Hour), 2))
	ctx := context.Background()

	for range 2 {
		resp, err := mediator.Send[FetchMarket, string](ctx, m, FetchMarket{System: "X1"})
		require.NoError(t, err)
		assert.Equal(t, "market:X1", resp)
	}

	// The burst is used up and the next token is an hour away.
	timeout, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()

	_, err := mediator.Send[FetchMarket, string](timeout, m, FetchMarket{System: "X1"})
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.ErrorIs(t, err, mediator.ErrRequestFailed)

	// Other keys have their own limiter.
	_, err = mediator.Send[FetchMarket, string](ctx, m, FetchMarket{System: "X2"})
	assert.NoError(t, err)
}

func TestBehaviorCancelled(t *testing.T) {
	m := newMediator(t, NewBehavior(rate.Every(time.Hour), 1))

	ctx, cancel := context.WithCancel(context.Background())

	_, err := mediator.Send[FetchMarket, string](ctx, m, FetchMarket{System: "X1"})
	require.NoError(t, err)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err = mediator.Send[FetchMarket, string](ctx, m, FetchMarket{System: "X1"})
	assert.Equal(t, context.Canceled, err)
}
