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

package mocks

import (
	"context"
	"errors"
	"iter"
	"sync"

	"github.com/looplab/mediator"
)

// ExecutionLog records the steps taken by behaviors and handlers, useful in
// testing.
type ExecutionLog struct {
	steps   []string
	stepsMu sync.Mutex
}

// NewExecutionLog creates a new ExecutionLog.
func NewExecutionLog() *ExecutionLog {
	return &ExecutionLog{
		steps: []string{},
	}
}

// Add adds a step.
func (l *ExecutionLog) Add(step string) {
	l.stepsMu.Lock()
	defer l.stepsMu.Unlock()

	l.steps = append(l.steps, step)
}

// Steps returns a copy of the steps.
func (l *ExecutionLog) Steps() []string {
	l.stepsMu.Lock()
	defer l.stepsMu.Unlock()

	return append([]string{}, l.steps...)
}

// Reset removes all steps.
func (l *ExecutionLog) Reset() {
	l.stepsMu.Lock()
	defer l.stepsMu.Unlock()

	l.steps = []string{}
}

// Command is the marker of requests that change state.
type Command interface {
	IsCommand()
}

// Locked is the marker of requests that must hold a lock while handled.
type Locked interface {
	LockKey() string
}

// Validated is the marker of requests that validate themselves.
type Validated interface {
	Validate() error
}

// Cached is the marker of queries that can be cached.
type Cached interface {
	CacheKey() string
}

// EchoRequest is a mocked request answered with its message.
type EchoRequest struct {
	mediator.Returns[string]

	Message string
}

// EchoHandler is a mocked handler for EchoRequest.
type EchoHandler struct{}

// Handle implements the Handle method of the mediator.RequestHandler interface.
func (h *EchoHandler) Handle(ctx context.Context, req EchoRequest) (string, error) {
	return "Echo:" + req.Message, nil
}

// CreateOrder is a mocked command.
type CreateOrder struct {
	mediator.Returns[string]

	ID string
}

// IsCommand implements the IsCommand method of the Command interface.
func (CreateOrder) IsCommand() {}

// CreateOrderHandler is a mocked handler for CreateOrder.
type CreateOrderHandler struct {
	// Err is returned instead of handling, if set.
	Err error
}

// Handle implements the Handle method of the mediator.RequestHandler interface.
func (h *CreateOrderHandler) Handle(ctx context.Context, req CreateOrder) (string, error) {
	if h.Err != nil {
		return "", h.Err
	}

	return "Created:" + req.ID, nil
}

// ErrInvalidOrder is returned when validating a LockedCreateOrder without ID.
var ErrInvalidOrder = errors.New("invalid order")

// LockedCreateOrder is a mocked command that is both locked and validated.
type LockedCreateOrder struct {
	mediator.Returns[string]

	ID string
}

// IsCommand implements the IsCommand method of the Command interface.
func (LockedCreateOrder) IsCommand() {}

// LockKey implements the LockKey method of the Locked interface.
func (c LockedCreateOrder) LockKey() string { return "order:" + c.ID }

// Validate implements the Validate method of the Validated interface.
func (c LockedCreateOrder) Validate() error {
	if c.ID == "" {
		return ErrInvalidOrder
	}

	return nil
}

// LockedCreateOrderHandler is a mocked handler for LockedCreateOrder.
type LockedCreateOrderHandler struct{}

// Handle implements the Handle method of the mediator.RequestHandler interface.
func (h *LockedCreateOrderHandler) Handle(ctx context.Context, req LockedCreateOrder) (string, error) {
	return "Created:" + req.ID, nil
}

// GetOrder is a mocked cached query.
type GetOrder struct {
	mediator.Returns[*Order]

	ID string
}

// CacheKey implements the CacheKey method of the Cached interface.
func (q GetOrder) CacheKey() string { return "order:" + q.ID }

// Order is a mocked read model.
type Order struct {
	ID     string
	Status string
}

// GetOrderHandler is a mocked handler for GetOrder.
type GetOrderHandler struct{}

// Handle implements the Handle method of the mediator.RequestHandler interface.
func (h *GetOrderHandler) Handle(ctx context.Context, req GetOrder) (*Order, error) {
	return &Order{ID: req.ID, Status: "created"}, nil
}

// SampleNotification is a mocked notification.
type SampleNotification struct {
	mediator.Broadcast

	Name string
}

// NotificationHandler is a mocked handler for SampleNotification.
type NotificationHandler struct {
	Notifications []SampleNotification
	Context       context.Context
	// Err is returned after recording the notification, if set.
	Err error

	mu sync.Mutex
}

// Handle implements the Handle method of the mediator.NotificationHandler
// interface.
func (h *NotificationHandler) Handle(ctx context.Context, n SampleNotification) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Notifications = append(h.Notifications, n)
	h.Context = ctx

	return h.Err
}

// Calls returns the number of handled notifications.
func (h *NotificationHandler) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.Notifications)
}

// Range is a mocked stream request producing Count integers from Start.
type Range struct {
	mediator.Yields[int]

	Start int
	Count int
}

// RangeHandler is a mocked handler for Range.
type RangeHandler struct{}

// Handle implements the Handle method of the mediator.StreamHandler interface.
func (h *RangeHandler) Handle(ctx context.Context, req Range) iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		for i := range req.Count {
			if err := ctx.Err(); err != nil {
				yield(0, err)

				return
			}

			if !yield(req.Start+i, nil) {
				return
			}
		}
	}
}

// TestBehavior wraps all requests.
type TestBehavior struct {
	Log *ExecutionLog
}

// Handle implements the Handle method of the mediator.PipelineBehavior
// interface.
func (b *TestBehavior) Handle(ctx context.Context, req any, next mediator.Next[any]) (any, error) {
	b.Log.Add("Test-Before")

	resp, err := next(ctx)

	b.Log.Add("Test-After")

	return resp, err
}

// ValidatorBehavior wraps requests that validate themselves.
type ValidatorBehavior struct {
	Log *ExecutionLog
}

// Handle implements the Handle method of the mediator.PipelineBehavior
// interface.
func (b *ValidatorBehavior) Handle(ctx context.Context, req Validated, next mediator.Next[any]) (any, error) {
	b.Log.Add("Validator")

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return next(ctx)
}

// LockBehavior wraps requests that must be locked.
type LockBehavior struct {
	Log *ExecutionLog
}

// Handle implements the Handle method of the mediator.PipelineBehavior
// interface.
func (b *LockBehavior) Handle(ctx context.Context, req Locked, next mediator.Next[any]) (any, error) {
	b.Log.Add("Lock-Before")

	resp, err := next(ctx)

	b.Log.Add("Lock-After")

	return resp, err
}

// TransactionBehavior wraps commands.
type TransactionBehavior struct {
	Log *ExecutionLog
}

// Handle implements the Handle method of the mediator.PipelineBehavior
// interface.
func (b *TransactionBehavior) Handle(ctx context.Context, req Command, next mediator.Next[any]) (any, error) {
	b.Log.Add("Tx-Before")

	resp, err := next(ctx)

	b.Log.Add("Tx-After")

	return resp, err
}

// QueryCacheBehavior wraps cached queries.
type QueryCacheBehavior struct {
	Log *ExecutionLog
}

// Handle implements the Handle method of the mediator.PipelineBehavior
// interface.
func (b *QueryCacheBehavior) Handle(ctx context.Context, req Cached, next mediator.Next[any]) (any, error) {
	b.Log.Add("QueryCache-Before")

	resp, err := next(ctx)

	b.Log.Add("QueryCache-After")

	return resp, err
}

// StepBehavior wraps only EchoRequest, logging its name.
type StepBehavior struct {
	Log  *ExecutionLog
	Name string
}

// Handle implements the Handle method of the mediator.PipelineBehavior
// interface.
func (b *StepBehavior) Handle(ctx context.Context, req EchoRequest, next mediator.Next[string]) (string, error) {
	b.Log.Add(b.Name + "-Before")

	resp, err := next(ctx)

	b.Log.Add(b.Name + "-After")

	return resp, err
}

// OpenBehavior is open for extension by embedding an interface.
type OpenBehavior struct {
	mediator.PipelineBehavior[any, any]
}

// InheritedBehavior gets its Handle method from TestBehavior.
type InheritedBehavior struct {
	TestBehavior
}

// NoContractBehavior has no Handle method of the pipeline shape.
type NoContractBehavior struct{}

// Handle has the wrong shape for a pipeline behavior.
func (b *NoContractBehavior) Handle(ctx context.Context, req any) error {
	return nil
}

// TestBehaviorConfig is the config of TestBehavior at level 0.
func TestBehaviorConfig(log *ExecutionLog) mediator.BehaviorConfig {
	return mediator.BehaviorConfig{
		Name:     "Test",
		Priority: mediator.Level(0),
		Factory:  func() any { return &TestBehavior{Log: log} },
	}
}

// ValidatorBehaviorConfig is the config of ValidatorBehavior at level 1.
func ValidatorBehaviorConfig(log *ExecutionLog) mediator.BehaviorConfig {
	return mediator.BehaviorConfig{
		Name:     "Validator",
		Priority: mediator.Level(1),
		Factory:  func() any { return &ValidatorBehavior{Log: log} },
	}
}

// LockBehaviorConfig is the config of LockBehavior at level 2.
func LockBehaviorConfig(log *ExecutionLog) mediator.BehaviorConfig {
	return mediator.BehaviorConfig{
		Name:     "Lock",
		Priority: mediator.Level(2),
		Factory:  func() any { return &LockBehavior{Log: log} },
	}
}

// TransactionBehaviorConfig is the config of TransactionBehavior at level 3.
func TransactionBehaviorConfig(log *ExecutionLog) mediator.BehaviorConfig {
	return mediator.BehaviorConfig{
		Name:     "Transaction",
		Priority: mediator.Level(3),
		Factory:  func() any { return &TransactionBehavior{Log: log} },
	}
}

// QueryCacheBehaviorConfig is the config of QueryCacheBehavior at level 2.
func QueryCacheBehaviorConfig(log *ExecutionLog) mediator.BehaviorConfig {
	return mediator.BehaviorConfig{
		Name:     "QueryCache",
		Priority: mediator.Level(2),
		Factory:  func() any { return &QueryCacheBehavior{Log: log} },
	}
}
