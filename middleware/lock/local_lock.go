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
	"sync"

	"github.com/looplab/mediator"
	"github.com/looplab/mediator/uuid"
)

// LocalLock is a Lock for a single process. Keys are held by the dispatch ID
// of the context, calls without a dispatch ID share the nil holder.
type LocalLock struct {
	holders   map[string]uuid.UUID
	holdersMu sync.Mutex
}

// NewLocalLock creates a LocalLock.
func NewLocalLock() *LocalLock {
	return &LocalLock{
		holders: map[string]uuid.UUID{},
	}
}

// Lock implements the Lock method of the Lock interface.
func (l *LocalLock) Lock(ctx context.Context, key string) error {
	l.holdersMu.Lock()
	defer l.holdersMu.Unlock()

	if holder, ok := l.holders[key]; ok {
		return &Error{Err: ErrLockExists, Key: key, Holder: holder}
	}

	l.holders[key] = holderOf(ctx)

	return nil
}

// Unlock implements the Unlock method of the Lock interface.
func (l *LocalLock) Unlock(ctx context.Context, key string) error {
	l.holdersMu.Lock()
	defer l.holdersMu.Unlock()

	holder, ok := l.holders[key]
	if !ok {
		return &Error{Err: ErrNoLockExists, Key: key}
	}

	if holder != holderOf(ctx) {
		return &Error{Err: ErrNotHolder, Key: key, Holder: holder}
	}

	delete(l.holders, key)

	return nil
}

// Holder returns the dispatch holding the key, if it is held.
func (l *LocalLock) Holder(key string) (uuid.UUID, bool) {
	l.holdersMu.Lock()
	defer l.holdersMu.Unlock()

	holder, ok := l.holders[key]

	return holder, ok
}

func holderOf(ctx context.Context) uuid.UUID {
	id, _ := mediator.DispatchIDFromContext(ctx)

	return id
}
