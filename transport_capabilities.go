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

package mfrc522

import "time"

// PollTiming holds polling parameters suited to a transport
type PollTiming struct {
	// Interval between two REQA rounds
	Interval time.Duration
	// IdleInterval is used once the field has been empty for a while
	IdleInterval time.Duration
	// RetryDelay after a failed register access
	RetryDelay time.Duration
}

// PollTimingProvider can be implemented by a transport to override the
// defaults chosen by its type
type PollTimingProvider interface {
	PollTiming() PollTiming
}

// PollTimingFor returns polling parameters for a transport
func PollTimingFor(t Transport) PollTiming {
	if provider, ok := t.(PollTimingProvider); ok {
		return provider.PollTiming()
	}

	switch t.Type() {
	case TransportSPI:
		// A REQA round is ~30 register accesses, well under a millisecond at 4 MHz
		return PollTiming{
			Interval:     50 * time.Millisecond,
			IdleInterval: 200 * time.Millisecond,
			RetryDelay:   10 * time.Millisecond,
		}
	case TransportI2C:
		return PollTiming{
			Interval:     100 * time.Millisecond,
			IdleInterval: 300 * time.Millisecond,
			RetryDelay:   25 * time.Millisecond,
		}
	default:
		return PollTiming{
			Interval:     10 * time.Millisecond,
			IdleInterval: 50 * time.Millisecond,
			RetryDelay:   5 * time.Millisecond,
		}
	}
}
