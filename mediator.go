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

// Package mediator is an in-process mediator. Requests are sent to exactly one
// handler through a pipeline of behaviors, notifications are published to all
// their handlers and stream requests start a lazy sequence on one handler.
//
// Handlers and behaviors are resolved from a Registry on every dispatch, see
// the registry/memory package for an implementation and the configure package
// for setting up a mediator from a list of registrations.
package mediator

// Mediator is the facade for sending requests, publishing notifications and
// starting streams. All methods delegate to the embedded dispatchers.
type Mediator struct {
	*RequestSender
	*NotificationPublisher
	*StreamSender
}

// New creates a Mediator resolving handlers and behaviors from the registry.
func New(r Registry, opts ...Option) *Mediator {
	return &Mediator{
		RequestSender:         NewRequestSender(r, opts...),
		NotificationPublisher: NewNotificationPublisher(r, opts...),
		StreamSender:          NewStreamSender(r, opts...),
	}
}

// Dispatcher is the combined capability of the Mediator, used to pass it to
// all the generic dispatch functions.
type Dispatcher interface {
	RequestDispatcher
	NotificationDispatcher
	StreamDispatcher
}

// Make sure the facade stays a Dispatcher.
var _ = Dispatcher(&Mediator{})
