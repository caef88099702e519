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

// Package validate contains pipeline behaviors validating requests before
// they are handled.
package validate

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/looplab/mediator"
)

// Validator is a request that validates itself.
type Validator interface {
	// Validate returns the error when validating the request.
	Validate() error
}

// Behavior validates requests implementing Validator.
type Behavior struct{}

// NewBehavior creates a Behavior.
func NewBehavior() *Behavior {
	return &Behavior{}
}

// Handle implements the Handle method of the mediator.PipelineBehavior
// interface.
func (b *Behavior) Handle(ctx context.Context, req Validator, next mediator.Next[any]) (any, error) {
	if err := req.Validate(); err != nil {
		return nil, Error{err}
	}

	return next(ctx)
}

// Config returns the config to bind the behavior at the level.
func (b *Behavior) Config(level int) mediator.BehaviorConfig {
	return mediator.BehaviorConfig{
		Name:     "validate",
		Priority: mediator.Level(level),
		Factory:  func() any { return b },
	}
}

// StructBehavior validates the fields of struct requests with the validate
// struct tags, see github.com/go-playground/validator.
type StructBehavior struct {
	validate *validator.Validate
}

// NewStructBehavior creates a StructBehavior. Use the validator to register
// custom validations.
func NewStructBehavior(v *validator.Validate) *StructBehavior {
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}

	return &StructBehavior{validate: v}
}

// Handle implements the Handle method of the mediator.PipelineBehavior
// interface.
func (b *StructBehavior) Handle(ctx context.Context, req any, next mediator.Next[any]) (any, error) {
	t := reflect.TypeOf(req)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() == reflect.Struct {
		if err := b.validate.StructCtx(ctx, req); err != nil {
			return nil, Error{formatValidationError(err)}
		}
	}

	return next(ctx)
}

// Config returns the config to bind the behavior at the level.
func (b *StructBehavior) Config(level int) mediator.BehaviorConfig {
	return mediator.BehaviorConfig{
		Name:     "validate_struct",
		Priority: mediator.Level(level),
		Factory:  func() any { return b },
	}
}

// formatValidationError converts validator errors into readable messages.
func formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", e.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", e.Field(), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", e.Field(), e.Tag()))
		}
	}

	return &FieldError{Fields: validationErrs, msg: strings.Join(msgs, ", ")}
}

// FieldError is the failed field validations of a struct request.
type FieldError struct {
	Fields validator.ValidationErrors
	msg    string
}

// Error implements the Error method of the errors.Error interface.
func (e *FieldError) Error() string {
	return e.msg
}

// Unwrap returns the validator errors.
func (e *FieldError) Unwrap() error {
	return e.Fields
}

// Error is an error from validating a request.
type Error struct {
	err error
}

// Error implements the Error method of the errors.Error interface.
func (e Error) Error() string {
	return fmt.Sprintf("invalid request: %s", e.err.Error())
}

// Unwrap implements the errors.Unwrap method.
func (e Error) Unwrap() error {
	return e.err
}

// Cause implements the github.com/pkg/errors Unwrap method.
func (e Error) Cause() error {
	return e.Unwrap()
}
