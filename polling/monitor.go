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

// Package polling runs the card detection loop on top of an MFRC522 device
package polling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
)

// Reader is the part of *mfrc522.Device the monitor drives
type Reader interface {
	DetectCard(ctx context.Context, wake bool) (*mfrc522.DetectedCard, error)
	HaltAContext(ctx context.Context) error
}

// Monitor handles continuous card monitoring with state machine. Callbacks
// run on the polling goroutine.
type Monitor struct {
	reader         Reader
	config         *Config
	OnCardDetected func(card *mfrc522.DetectedCard) error
	OnCardRemoved  func()
	OnCardChanged  func(card *mfrc522.DetectedCard) error
	// OnPollError is called for failures other than an empty field
	OnPollError func(err error)
	counters    counters
	state       CardState
	mu          sync.Mutex
}

// NewMonitor creates a new card monitor
func NewMonitor(reader Reader, config *Config) (*Monitor, error) {
	if reader == nil {
		return nil, errors.New("reader cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	m := &Monitor{
		reader: reader,
		config: config,
	}
	m.counters.currentInterval.Store(config.PollInterval.Nanoseconds())
	m.counters.lastCardDetection.Store(time.Now().UnixNano())
	return m, nil
}

// Start polls until ctx is done. Poll failures never stop the loop; the
// next round comes sooner after one, backing off while failures repeat.
func (m *Monitor) Start(ctx context.Context) error {
	failures := 0
	for {
		err := m.Poll(ctx)
		if err != nil && ctx.Err() == nil && m.OnPollError != nil {
			m.OnPollError(err)
		}
		if err != nil {
			failures++
		} else {
			failures = 0
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.nextDelay(failures)):
		}
	}
}

// nextDelay returns the pause before the next round after the given number
// of consecutive failures
func (m *Monitor) nextDelay(failures int) time.Duration {
	interval := m.CurrentInterval()
	if failures == 0 || m.config.ErrorRetryDelay <= 0 {
		return interval
	}
	delay := m.config.ErrorRetryDelay
	for i := 1; i < failures && delay < interval; i++ {
		delay *= 2
	}
	return min(delay, interval)
}

// GetState returns the current card state
func (m *Monitor) GetState() CardState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// GetMetrics returns current operational metrics
func (m *Monitor) GetMetrics() Metrics {
	return m.counters.snapshot()
}

// CurrentInterval returns the current adaptive polling interval
func (m *Monitor) CurrentInterval() time.Duration {
	return time.Duration(m.counters.currentInterval.Load())
}

// Poll runs one detection round: REQA (or WUPA when tracking removal),
// select, callbacks and HLTA. An empty field is not an error.
func (m *Monitor) Poll(ctx context.Context) error {
	start := time.Now()
	card, err := m.reader.DetectCard(ctx, m.config.TrackRemoval)
	m.counters.pollCycles.Add(1)
	m.counters.lastPollLatency.Store(time.Since(start).Nanoseconds())

	switch {
	case errors.Is(err, mfrc522.ErrNoCard):
		m.checkRemoval(time.Now())
		m.counters.adjustPollInterval(m.config, time.Now())
		return nil
	case err != nil:
		m.counters.pollErrors.Add(1)
		m.handlePollingError(err)
		m.counters.adjustPollInterval(m.config, time.Now())
		return fmt.Errorf("card detection failed: %w", err)
	}

	m.counters.lastCardDetection.Store(start.UnixNano())
	m.processPollingResults(card)

	// The card stays quiet until it leaves the field or gets a WUPA
	if haltErr := m.reader.HaltAContext(ctx); haltErr != nil {
		m.counters.haltErrors.Add(1)
	}
	m.counters.adjustPollInterval(m.config, time.Now())
	return nil
}

// handlePollingError handles errors from polling operations
func (m *Monitor) handlePollingError(err error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return
	}

	// A reader that stopped answering cannot see the card any more
	if errors.Is(err, mfrc522.ErrTransportClosed) || mfrc522.IsRetryable(err) {
		m.handleCardRemoval()
		return
	}
	m.checkRemoval(time.Now())
}

func (m *Monitor) checkRemoval(now time.Time) {
	m.mu.Lock()
	due := m.state.Present && m.state.RemovalDue(now, m.config.CardRemovalTimeout)
	m.mu.Unlock()
	if due {
		m.handleCardRemoval()
	}
}

// handleCardRemoval handles card removal state changes
func (m *Monitor) handleCardRemoval() {
	m.mu.Lock()
	present := m.state.Present
	m.state.TransitionToIdle()
	m.mu.Unlock()

	if present && m.OnCardRemoved != nil {
		m.OnCardRemoved()
	}
}

// processPollingResults runs the callbacks for a selected card
func (m *Monitor) processPollingResults(card *mfrc522.DetectedCard) {
	m.mu.Lock()
	wasPresent := m.state.Present
	changed := wasPresent && !m.state.LastUID.Equal(card.UID)

	if wasPresent && !changed {
		m.state.TransitionToDetected()
		m.mu.Unlock()
		return
	}

	m.state.Present = m.config.TrackRemoval
	m.state.LastUID = card.UID
	m.state.TransitionToReading()
	m.mu.Unlock()

	var err error
	switch {
	case changed:
		if m.OnCardChanged != nil {
			err = m.OnCardChanged(card)
		}
	default:
		m.counters.cardsDetected.Add(1)
		if m.OnCardDetected != nil {
			err = m.OnCardDetected(card)
		}
	}
	if err != nil {
		m.counters.callbackErrors.Add(1)
	}

	m.mu.Lock()
	if m.config.TrackRemoval {
		m.state.TransitionToPostReadGrace()
	} else {
		// Without WUPA the halted card stays silent, so there is nothing to track
		m.state.TransitionToIdle()
	}
	m.mu.Unlock()
}
