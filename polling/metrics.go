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

package polling

import (
	"sync/atomic"
	"time"
)

// Metrics tracks operational metrics for a Monitor
type Metrics struct {
	PollCycles      int64         // Total number of polling cycles
	PollErrors      int64         // Number of polling errors
	CardsDetected   int64         // Number of cards reported through OnCardDetected
	CallbackErrors  int64         // Number of callback errors
	HaltErrors      int64         // Number of HLTA failures
	LastPollLatency time.Duration // Duration of last polling operation
}

// counters holds the atomic state behind Metrics and the adaptive interval
type counters struct {
	pollCycles      atomic.Int64
	pollErrors      atomic.Int64
	cardsDetected   atomic.Int64
	callbackErrors  atomic.Int64
	haltErrors      atomic.Int64
	lastPollLatency atomic.Int64 // in nanoseconds
	// Adaptive polling state
	currentInterval   atomic.Int64 // Current polling interval in nanoseconds
	lastCardDetection atomic.Int64 // Timestamp of last card detection
}

func (c *counters) snapshot() Metrics {
	return Metrics{
		PollCycles:      c.pollCycles.Load(),
		PollErrors:      c.pollErrors.Load(),
		CardsDetected:   c.cardsDetected.Load(),
		CallbackErrors:  c.callbackErrors.Load(),
		HaltErrors:      c.haltErrors.Load(),
		LastPollLatency: time.Duration(c.lastPollLatency.Load()),
	}
}

// adjustPollInterval slows polling down once the field has been empty for
// IdleTimeout: 5x the configured interval, capped at MaxIdleInterval
func (c *counters) adjustPollInterval(config *Config, now time.Time) {
	timeSinceLastCard := time.Duration(now.UnixNano() - c.lastCardDetection.Load())

	if config.IdleTimeout > 0 && timeSinceLastCard > config.IdleTimeout {
		slowInterval := config.PollInterval * 5
		if config.MaxIdleInterval > 0 && slowInterval > config.MaxIdleInterval {
			slowInterval = config.MaxIdleInterval
		}
		if slowInterval < config.PollInterval {
			slowInterval = config.PollInterval
		}
		c.currentInterval.Store(slowInterval.Nanoseconds())
		return
	}
	// Card detected recently, use normal speed
	c.currentInterval.Store(config.PollInterval.Nanoseconds())
}
