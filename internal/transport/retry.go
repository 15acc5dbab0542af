// go-mfrc522
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-mfrc522.
//
// go-mfrc522 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-mfrc522 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-mfrc522; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package transport holds the retry and register polling loops shared by the
// driver and the serial console
package transport

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRetriesExhausted is returned when every attempt asked to try again
var ErrRetriesExhausted = errors.New("retries exhausted")

// ErrDeadlineReached is returned when a polled condition never became true
// before the deadline
var ErrDeadlineReached = errors.New("deadline reached while polling")

// Attempt is a single try. again asks for another try; an error returned
// with again unset is permanent and ends the loop at once, an error returned
// with again set is kept and reported if all attempts fail.
type Attempt[T any] func() (result T, again bool, err error)

// Policy bounds a retry loop
type Policy struct {
	// OnRetry is called before each new attempt with the failed attempt
	// number (starting at 1) and its error, which may be nil
	OnRetry func(attempt int, err error)
	Name    string
	// Attempts is the total number of tries; values below 1 mean one try
	Attempts int
	Delay    time.Duration
}

// WithRetry runs try until it succeeds, fails permanently, runs out of
// attempts or ctx is done. The delay between attempts is interruptible.
func WithRetry[T any](ctx context.Context, policy Policy, try Attempt[T]) (T, error) {
	var zero T
	attempts := max(policy.Attempts, 1)

	var lastErr error
	for attempt := 1; ; attempt++ {
		result, again, err := try()
		switch {
		case !again && err != nil:
			return zero, err
		case !again:
			return result, nil
		}
		lastErr = err

		if attempt >= attempts {
			break
		}
		if policy.OnRetry != nil {
			policy.OnRetry(attempt, err)
		}
		if err := sleep(ctx, policy.Delay); err != nil {
			return zero, err
		}
	}

	exhausted := ErrRetriesExhausted
	if policy.Name != "" {
		exhausted = fmt.Errorf("%s: %w after %d attempts", policy.Name, ErrRetriesExhausted, attempts)
	}
	if lastErr != nil {
		return zero, fmt.Errorf("%w: %w", exhausted, lastErr)
	}
	return zero, exhausted
}

// PollUntil runs try until it stops asking for another round, the timeout
// elapses or ctx is cancelled. Register reads answer within microseconds, so
// the loop spins without sleeping unless interval is set.
func PollUntil[T any](ctx context.Context, timeout, interval time.Duration, try Attempt[T]) (T, error) {
	var zero T
	deadline := time.Now().Add(timeout)

	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, again, err := try()
		if !again {
			return result, err
		}
		if !time.Now().Before(deadline) {
			if err != nil {
				return zero, fmt.Errorf("%w: %w", ErrDeadlineReached, err)
			}
			return zero, ErrDeadlineReached
		}
		if interval > 0 {
			time.Sleep(interval)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
