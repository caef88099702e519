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

package lock

import (
	"context"
	"log/slog"

	"github.com/looplab/mediator"
)

// Lockable is a request that is locked by its key while handled.
type Lockable interface {
	LockKey() string
}

// Behavior holds the lock for the key of the request while the rest of the
// pipeline runs. A request with a key that is already locked fails with
// ErrLockExists.
type Behavior struct {
	lock   Lock
	logger *slog.Logger
}

// NewBehavior creates a Behavior using the lock. Unlock failures are logged
// to the logger, or the default logger if nil.
func NewBehavior(l Lock, logger *slog.Logger) *Behavior {
	if logger == nil {
		logger = slog.Default()
	}

	return &Behavior{
		lock:   l,
		logger: logger,
	}
}

// Handle implements the Handle method of the mediator.PipelineBehavior
// interface.
func (b *Behavior) Handle(ctx context.Context, req Lockable, next mediator.Next[any]) (any, error) {
	key := req.LockKey()
	if err := b.lock.Lock(ctx, key); err != nil {
		return nil, err
	}

	defer func() {
		if err := b.lock.Unlock(ctx, key); err != nil {
			b.logger.Error("could not unlock request", "lock_key", key, "error", err)
		}
	}()

	return next(ctx)
}

// Config returns the config to bind the behavior at the level.
func (b *Behavior) Config(level int) mediator.BehaviorConfig {
	return mediator.BehaviorConfig{
		Name:     "lock",
		Priority: mediator.Level(level),
		Factory:  func() any { return b },
	}
}
