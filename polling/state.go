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
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
)

// CardDetectionState represents the finite state machine for card detection
type CardDetectionState int

const (
	StateIdle CardDetectionState = iota
	StateTagDetected
	StateReading
	StatePostReadGrace
)

func (s CardDetectionState) String() string {
	switch s {
	case StateTagDetected:
		return "detected"
	case StateReading:
		return "reading"
	case StatePostReadGrace:
		return "post-read grace"
	default:
		return "idle"
	}
}

// CardState tracks the state of a card on a reader
type CardState struct {
	LastSeenTime   time.Time
	ReadStartTime  time.Time
	LastUID        *mfrc522.UID
	DetectionState CardDetectionState
	Present        bool
}

// TransitionToReading moves to reading state; removal is not checked while
// callbacks run
func (cs *CardState) TransitionToReading() {
	cs.DetectionState = StateReading
	cs.ReadStartTime = time.Now()
}

// TransitionToPostReadGrace moves to the short grace period after a read
func (cs *CardState) TransitionToPostReadGrace() {
	cs.DetectionState = StatePostReadGrace
	cs.LastSeenTime = time.Now()
}

// TransitionToDetected records another sighting of the present card
func (cs *CardState) TransitionToDetected() {
	cs.DetectionState = StateTagDetected
	cs.LastSeenTime = time.Now()
}

// TransitionToIdle resets to idle state
func (cs *CardState) TransitionToIdle() {
	cs.DetectionState = StateIdle
	cs.Present = false
	cs.LastUID = nil
	cs.LastSeenTime = time.Time{}
	cs.ReadStartTime = time.Time{}
}

// RemovalDue reports whether the card has been silent longer than allowed.
// The grace period after a read is half the normal timeout.
func (cs *CardState) RemovalDue(now time.Time, timeout time.Duration) bool {
	switch cs.DetectionState {
	case StateTagDetected:
		return now.Sub(cs.LastSeenTime) > timeout
	case StatePostReadGrace:
		return now.Sub(cs.LastSeenTime) > timeout/2
	default:
		return false
	}
}
