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
	"fmt"
	"reflect"
)

// ErrMissingRequest is when a nil request is dispatched.
var ErrMissingRequest = errors.New("missing request")

// ErrMissingNotification is when a nil notification is published.
var ErrMissingNotification = errors.New("missing notification")

// ErrMissingStreamRequest is when a nil stream request is dispatched.
var ErrMissingStreamRequest = errors.New("missing stream request")

// ErrNotARequest is when a value without a response type is sent.
var ErrNotARequest = errors.New("value is not a request")

// ErrNotAStreamRequest is when a value without an element type is streamed.
var ErrNotAStreamRequest = errors.New("value is not a stream request")

// ErrHandlerNotFound is when no handler is registered for a request.
var ErrHandlerNotFound = errors.New("no handler registered")

// ErrHandlerAlreadySet is when a handler is already registered for a request.
var ErrHandlerAlreadySet = errors.New("handler is already set")

// ErrInvalidHandler is when a resolved handler does not implement the
// contract it was resolved for.
var ErrInvalidHandler = errors.New("invalid handler")

// ErrInvalidResponse is when the pipeline returns a value of the wrong type.
var ErrInvalidResponse = errors.New("invalid response type")

// ErrRequestFailed is the category of all handler and behavior failures
// during request dispatch.
var ErrRequestFailed = errors.New("could not handle request")

// ErrStreamConsumed is yielded when a stream is iterated a second time.
var ErrStreamConsumed = errors.New("stream already consumed")

// ErrMissingPriority is when a pipeline behavior has no priority.
var ErrMissingPriority = errors.New("missing behavior priority")

// ErrMissingBehavior is when a behavior config has no factory or the factory
// returns nil.
var ErrMissingBehavior = errors.New("missing behavior")

// ErrBehaviorNotFinal is when a behavior type is open for extension.
var ErrBehaviorNotFinal = errors.New("behavior type is not final")

// ErrInheritedContract is when a behavior gets its pipeline contract from an
// embedded type instead of declaring it.
var ErrInheritedContract = errors.New("behavior contract is inherited")

// ErrNoBehaviorContract is when a behavior does not declare exactly one
// pipeline behavior contract.
var ErrNoBehaviorContract = errors.New("behavior must declare exactly one pipeline contract")

// DispatchError is an error from dispatching, with the concrete type that was
// dispatched.
type DispatchError struct {
	// Err is the category of the error.
	Err error
	// BaseErr is an optional underlying error, for example from the handler.
	BaseErr error
	// Type is the concrete request, notification or stream request type.
	Type reflect.Type
}

// Error implements the Error method of the errors.Error interface.
func (e *DispatchError) Error() string {
	errStr := e.Err.Error()
	if e.BaseErr != nil {
		errStr += ": " + e.BaseErr.Error()
	}

	return fmt.Sprintf("%s (%s)", errStr, typeName(e.Type))
}

// Unwrap implements the errors.Unwrap method for both the category and the
// underlying error.
func (e *DispatchError) Unwrap() []error {
	if e.BaseErr == nil {
		return []error{e.Err}
	}

	return []error{e.Err, e.BaseErr}
}

// Cause implements the github.com/pkg/errors Unwrap method.
func (e *DispatchError) Cause() error {
	if e.BaseErr != nil {
		return e.BaseErr
	}

	return e.Err
}

// ConfigError is an error in the configuration of a pipeline behavior.
type ConfigError struct {
	// Err is the error.
	Err error
	// Behavior is the name of the offending behavior.
	Behavior string
}

// Error implements the Error method of the errors.Error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid behavior %s: %s", e.Behavior, e.Err)
}

// Unwrap implements the errors.Unwrap method.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Cause implements the github.com/pkg/errors Unwrap method.
func (e *ConfigError) Cause() error {
	return e.Unwrap()
}

// IsCancellation reports if the error is a cancelled or expired context.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}
