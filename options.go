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

import "log/slog"

// NotificationPolicy decides what happens when a notification handler fails.
type NotificationPolicy int

const (
	// FailFast returns the first handler error and skips the remaining
	// handlers.
	FailFast NotificationPolicy = iota
	// ContinueOnError invokes all handlers and returns the joined errors.
	ContinueOnError
)

// String implements the Stringer interface for NotificationPolicy.
func (p NotificationPolicy) String() string {
	switch p {
	case FailFast:
		return "fail_fast"
	case ContinueOnError:
		return "continue_on_error"
	default:
		return "unknown"
	}
}

// Option is an option setter used to configure creation.
type Option func(*options)

type options struct {
	logger *slog.Logger
	policy NotificationPolicy
}

func newOptions(opts []Option) options {
	o := options{
		logger: slog.New(slog.DiscardHandler),
		policy: FailFast,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithNotificationPolicy sets the failure policy of notification publishing.
func WithNotificationPolicy(p NotificationPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}
