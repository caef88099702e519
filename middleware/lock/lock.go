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

// Package lock contains a pipeline behavior that handles only one request at
// a time for each lock key.
package lock

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/mediator/uuid"
)

var (
	// ErrLockExists is returned from Lock() when the key is held by another
	// dispatch.
	ErrLockExists = errors.New("lock exists")
	// ErrNoLockExists is returned from Unlock() when the key is not held.
	ErrNoLockExists = errors.New("no lock exists")
	// ErrNotHolder is returned from Unlock() when the key is held by another
	// dispatch.
	ErrNotHolder = errors.New("not the lock holder")
)

// Lock is a locking mechanism for request keys. A lock is held by the
// dispatch that took it, identified by the dispatch ID in the context.
type Lock interface {
	// Lock takes the lock for the key. Returns an Error wrapping
	// ErrLockExists if the key is already held.
	Lock(ctx context.Context, key string) error
	// Unlock releases the lock for the key. Returns an Error wrapping
	// ErrNoLockExists or ErrNotHolder if the dispatch does not hold it.
	Unlock(ctx context.Context, key string) error
}

// Error is an error from taking or releasing a lock.
type Error struct {
	// Err is the lock error.
	Err error
	// Key is the lock key.
	Key string
	// Holder is the dispatch holding the lock, if any.
	Holder uuid.UUID
}

// Error implements the Error method of the errors.Error interface.
func (e *Error) Error() string {
	if e.Holder == uuid.Nil {
		return fmt.Sprintf("%s: %s", e.Err, e.Key)
	}

	return fmt.Sprintf("%s: %s (held by %s)", e.Err, e.Key, e.Holder)
}

// Unwrap implements the errors.Unwrap method.
func (e *Error) Unwrap() error {
	return e.Err
}

// Cause implements the github.com/pkg/errors Unwrap method.
func (e *Error) Cause() error {
	return e.Unwrap()
}
