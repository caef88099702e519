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

package validate

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/looplab/mediator"
	"github.com/looplab/mediator/mocks"
	"github.com/looplab/mediator/registry/memory"
)

type CreateUser struct {
	mediator.Returns[string]

	Name  string `validate:"required"`
	Email string `validate:"required,email"`
	Age   int    `validate:"min=18"`
}

func newMediator(t *testing.T, cfgs ...mediator.BehaviorConfig) *mediator.Mediator {
	t.Helper()

	r := memory.NewRegistry()

	if err := mediator.RegisterRequestHandler(r, func() mediator.RequestHandler[mocks.LockedCreateOrder, string] {
		return &mocks.LockedCreateOrderHandler{}
	}); err != nil {
		t.Fatal("there should be no error:", err)
	}

	if err := mediator.RegisterRequestHandler(r, func() mediator.RequestHandler[CreateUser, string] {
		return mediator.RequestHandlerFunc[CreateUser, string](func(ctx context.Context, req CreateUser) (string, error) {
			return "Created:" + req.Name, nil
		})
	}); err != nil {
		t.Fatal("there should be no error:", err)
	}

	for _, cfg := range cfgs {
		if err := mediator.BindBehavior(r, cfg); err != nil {
			t.Fatal("there should be no error:", err)
		}
	}

	return mediator.New(r)
}

func TestBehavior_WithValidationNoError(t *testing.T) {
	m := newMediator(t, NewBehavior().Config(1))

	resp, err := mediator.Send[mocks.LockedCreateOrder, string](context.Background(), m, mocks.LockedCreateOrder{ID: "A1"})
	if err != nil {
		t.Error("there should be no error:", err)
	}

	if resp != "Created:A1" {
		t.Error("the request should have been handled:", resp)
	}
}

func TestBehavior_WithValidationError(t *testing.T) {
	m := newMediator(t, NewBehavior().Config(1))

	_, err := mediator.Send[mocks.LockedCreateOrder, string](context.Background(), m, mocks.LockedCreateOrder{})

	validateErr := Error{}
	if !errors.As(err, &validateErr) {
		t.Error("there should be a validate error:", err)
	}

	if !errors.Is(err, mocks.ErrInvalidOrder) {
		t.Error("the validation error should be correct:", err)
	}

	if !errors.Is(err, mediator.ErrRequestFailed) {
		t.Error("the error should be a failed request:", err)
	}
}

func TestBehavior_NotValidated(t *testing.T) {
	m := newMediator(t, NewBehavior().Config(1))

	if _, err := mediator.Send[CreateUser, string](context.Background(), m, CreateUser{}); err != nil {
		t.Error("there should be no error:", err)
	}
}

func TestStructBehavior(t *testing.T) {
	m := newMediator(t, NewStructBehavior(nil).Config(1))
	ctx := context.Background()

	resp, err := mediator.Send[CreateUser, string](ctx, m, CreateUser{Name: "max", Email: "max@example.com", Age: 30})
	if err != nil {
		t.Error("there should be no error:", err)
	}

	if resp != "Created:max" {
		t.Error("the request should have been handled:", resp)
	}

	_, err = mediator.Send[CreateUser, string](ctx, m, CreateUser{Email: "not an email", Age: 12})

	validateErr := Error{}
	if !errors.As(err, &validateErr) {
		t.Error("there should be a validate error:", err)
	}

	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatal("there should be a field error:", err)
	}

	if len(fieldErr.Fields) != 3 {
		t.Error("there should be three failed fields:", fieldErr.Fields)
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		t.Error("the validator errors should be unwrapped:", err)
	}

	exp := "invalid request: Name is required, Email failed email validation, Age must be at least 18"
	if validateErr.Error() != exp {
		t.Error("the message should be correct:", validateErr.Error())
	}
}
