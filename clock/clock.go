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

// Package clock registers a clock in or out for a user
package clock

import (
	"context"
	"errors"
	"time"
)

// DefaultDryRunDelay is roughly how long a real clocking takes
const DefaultDryRunDelay = 10 * time.Second

// ErrClockFailed wraps every failure to interact with the clocking site
var ErrClockFailed = errors.New("failed to interact with the page")

// Clocker clocks a user in or out
type Clocker interface {
	Clock(ctx context.Context, username, password string) error
}

// DryRun only waits, simulating the time a real clocking takes
type DryRun struct {
	Delay time.Duration
}

// Clock waits for the delay or until ctx is done
func (d DryRun) Clock(ctx context.Context, _, _ string) error {
	delay := d.Delay
	if delay <= 0 {
		delay = DefaultDryRunDelay
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
