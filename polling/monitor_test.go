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
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	virt "github.com/ZaparooProject/go-mfrc522/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVirtualReader(t *testing.T) (*mfrc522.Device, *virt.VirtualChip) {
	t.Helper()

	chip := virt.NewVirtualChip()
	chip.SetHasResetPin(true)
	device, err := mfrc522.New(chip)
	require.NoError(t, err)
	require.NoError(t, device.Init())
	return device, chip
}

type events struct {
	detected []string
	changed  []string
	removed  int
	mu       sync.Mutex
}

func (e *events) attach(m *Monitor) {
	m.OnCardDetected = func(card *mfrc522.DetectedCard) error {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.detected = append(e.detected, card.UID.String())
		return nil
	}
	m.OnCardChanged = func(card *mfrc522.DetectedCard) error {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.changed = append(e.changed, card.UID.String())
		return nil
	}
	m.OnCardRemoved = func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.removed++
	}
}

func testConfig(track bool) *Config {
	return &Config{
		PollInterval:       time.Millisecond,
		CardRemovalTimeout: 20 * time.Millisecond,
		IdleTimeout:        time.Hour,
		MaxIdleInterval:    5 * time.Millisecond,
		TrackRemoval:       track,
	}
}

func TestNewMonitor(t *testing.T) {
	t.Parallel()

	_, err := NewMonitor(nil, nil)
	require.Error(t, err)

	device, _ := newVirtualReader(t)
	_, err = NewMonitor(device, &Config{})
	require.ErrorIs(t, err, ErrInvalidConfig)

	m, err := NewMonitor(device, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().PollInterval, m.CurrentInterval())
}

func TestMonitor_ReportsEachNewCardOnce(t *testing.T) {
	t.Parallel()

	device, chip := newVirtualReader(t)
	m, err := NewMonitor(device, testConfig(false))
	require.NoError(t, err)
	ev := &events{}
	ev.attach(m)
	ctx := context.Background()

	card := virt.NewVirtualMIFARE1K(nil)
	chip.AddCard(card)

	for range 5 {
		require.NoError(t, m.Poll(ctx))
	}
	assert.Equal(t, []string{"DEADBEEF"}, ev.detected)
	assert.True(t, card.IsHalted())

	// Taking the card out and presenting it again reports it again
	chip.RemoveCard(card)
	require.NoError(t, m.Poll(ctx))
	chip.AddCard(card)
	require.NoError(t, m.Poll(ctx))
	assert.Equal(t, []string{"DEADBEEF", "DEADBEEF"}, ev.detected)

	metrics := m.GetMetrics()
	assert.Equal(t, int64(7), metrics.PollCycles)
	assert.Equal(t, int64(2), metrics.CardsDetected)
	assert.Equal(t, int64(0), metrics.PollErrors)
	assert.Equal(t, StateIdle, m.GetState().DetectionState)
}

func TestMonitor_TrackRemoval(t *testing.T) {
	t.Parallel()

	device, chip := newVirtualReader(t)
	config := testConfig(true)
	config.CardRemovalTimeout = 200 * time.Millisecond
	m, err := NewMonitor(device, config)
	require.NoError(t, err)
	ev := &events{}
	ev.attach(m)
	ctx := context.Background()

	card := virt.NewVirtualNTAG213(nil)
	chip.AddCard(card)

	require.NoError(t, m.Poll(ctx))
	state := m.GetState()
	assert.True(t, state.Present)
	assert.Equal(t, StatePostReadGrace, state.DetectionState)
	assert.Equal(t, "04112233445566", state.LastUID.String())

	// WUPA wakes the halted card, it is seen again without a new report
	require.NoError(t, m.Poll(ctx))
	assert.Equal(t, StateTagDetected, m.GetState().DetectionState)
	assert.Len(t, ev.detected, 1)

	chip.RemoveCard(card)
	require.NoError(t, m.Poll(ctx))
	assert.Equal(t, 0, ev.removed, "removal waits for the timeout")

	time.Sleep(250 * time.Millisecond)
	require.NoError(t, m.Poll(ctx))
	assert.Equal(t, 1, ev.removed)
	assert.False(t, m.GetState().Present)
}

func TestMonitor_CardChanged(t *testing.T) {
	t.Parallel()

	device, chip := newVirtualReader(t)
	m, err := NewMonitor(device, testConfig(true))
	require.NoError(t, err)
	ev := &events{}
	ev.attach(m)
	ctx := context.Background()

	first := virt.NewVirtualMIFARE1K(nil)
	chip.AddCard(first)
	require.NoError(t, m.Poll(ctx))

	chip.RemoveCard(first)
	chip.AddCard(virt.NewVirtualNTAG213(nil))
	require.NoError(t, m.Poll(ctx))

	assert.Equal(t, []string{"DEADBEEF"}, ev.detected)
	assert.Equal(t, []string{"04112233445566"}, ev.changed)
	assert.Equal(t, 0, ev.removed)
}

func TestMonitor_CallbackErrorCounted(t *testing.T) {
	t.Parallel()

	device, chip := newVirtualReader(t)
	m, err := NewMonitor(device, testConfig(false))
	require.NoError(t, err)
	m.OnCardDetected = func(*mfrc522.DetectedCard) error {
		return errors.New("callback failed")
	}
	chip.AddCard(virt.NewVirtualMIFARE1K(nil))

	require.NoError(t, m.Poll(context.Background()))
	assert.Equal(t, int64(1), m.GetMetrics().CallbackErrors)
}

type failingReader struct {
	err error
}

func (f failingReader) DetectCard(context.Context, bool) (*mfrc522.DetectedCard, error) {
	return nil, f.err
}

func (failingReader) HaltAContext(context.Context) error { return nil }

func TestMonitor_ReaderErrors(t *testing.T) {
	t.Parallel()

	m, err := NewMonitor(failingReader{err: mfrc522.ErrTransportRead}, testConfig(true))
	require.NoError(t, err)
	ev := &events{}
	ev.attach(m)

	m.state.Present = true
	m.state.TransitionToDetected()

	err = m.Poll(context.Background())
	require.ErrorIs(t, err, mfrc522.ErrTransportRead)
	assert.Equal(t, int64(1), m.GetMetrics().PollErrors)
	assert.Equal(t, 1, ev.removed, "a failing bus drops the tracked card")
}

func TestMonitor_NextDelay(t *testing.T) {
	t.Parallel()

	config := testConfig(false)
	config.PollInterval = 100 * time.Millisecond
	config.ErrorRetryDelay = 10 * time.Millisecond
	m, err := NewMonitor(failingReader{err: mfrc522.ErrTransportRead}, config)
	require.NoError(t, err)

	tests := []struct {
		failures int
		want     time.Duration
	}{
		{failures: 0, want: 100 * time.Millisecond},
		{failures: 1, want: 10 * time.Millisecond},
		{failures: 2, want: 20 * time.Millisecond},
		{failures: 4, want: 80 * time.Millisecond},
		{failures: 5, want: 100 * time.Millisecond},
		{failures: 50, want: 100 * time.Millisecond},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.nextDelay(tt.failures), "failures=%d", tt.failures)
	}

	config.ErrorRetryDelay = 0
	assert.Equal(t, 100*time.Millisecond, m.nextDelay(3))
}

// countingReader fails every detection and cancels ctx after limit rounds
type countingReader struct {
	cancel context.CancelFunc
	limit  int
	calls  int
}

func (c *countingReader) DetectCard(context.Context, bool) (*mfrc522.DetectedCard, error) {
	c.calls++
	if c.calls >= c.limit {
		c.cancel()
	}
	return nil, mfrc522.ErrTransportRead
}

func (*countingReader) HaltAContext(context.Context) error { return nil }

func TestMonitor_StartRetriesSoonerAfterErrors(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &countingReader{cancel: cancel, limit: 4}

	config := testConfig(false)
	config.PollInterval = time.Hour
	config.ErrorRetryDelay = time.Millisecond
	m, err := NewMonitor(reader, config)
	require.NoError(t, err)

	var pollErrors int
	m.OnPollError = func(error) { pollErrors++ }

	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("monitor waited the full poll interval after an error")
	}
	assert.Equal(t, 4, reader.calls)
	assert.Equal(t, 3, pollErrors)
	assert.Equal(t, int64(4), m.GetMetrics().PollErrors)
}

func TestMonitor_AdaptiveInterval(t *testing.T) {
	t.Parallel()

	config := testConfig(false)
	config.IdleTimeout = 10 * time.Millisecond
	m, err := NewMonitor(failingReader{err: mfrc522.ErrNoCard}, config)
	require.NoError(t, err)

	require.NoError(t, m.Poll(context.Background()))
	assert.Equal(t, time.Millisecond, m.CurrentInterval())

	time.Sleep(15 * time.Millisecond)
	require.NoError(t, m.Poll(context.Background()))
	assert.Equal(t, 5*time.Millisecond, m.CurrentInterval())
}

func TestMonitor_Start(t *testing.T) {
	t.Parallel()

	device, chip := newVirtualReader(t)
	m, err := NewMonitor(device, testConfig(false))
	require.NoError(t, err)

	found := make(chan string, 1)
	m.OnCardDetected = func(card *mfrc522.DetectedCard) error {
		select {
		case found <- card.UID.Hex():
		default:
		}
		return nil
	}
	chip.AddCard(virt.NewVirtualMIFARE1K(nil))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx) }()

	select {
	case uid := <-found:
		assert.Equal(t, "DE AD BE EF", uid)
	case <-ctx.Done():
		t.Fatal("card not detected")
	}
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestConfig(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.CardRemovalTimeout = 0
	require.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = DefaultConfig()
	bad.MaxIdleInterval = -time.Second
	require.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	device, _ := newVirtualReader(t)
	config := ConfigFor(device)
	timing := mfrc522.PollTimingFor(device.Transport())
	assert.Equal(t, timing.Interval, config.PollInterval)
	assert.Equal(t, timing.IdleInterval, config.MaxIdleInterval)
	assert.Equal(t, timing.RetryDelay, config.ErrorRetryDelay)
	require.NoError(t, config.Validate())
}

func TestCardState_RemovalDue(t *testing.T) {
	t.Parallel()

	now := time.Now()
	cs := CardState{DetectionState: StateTagDetected, LastSeenTime: now.Add(-time.Second)}
	assert.True(t, cs.RemovalDue(now, 500*time.Millisecond))
	assert.False(t, cs.RemovalDue(now, 2*time.Second))

	cs.DetectionState = StatePostReadGrace
	assert.True(t, cs.RemovalDue(now, 1500*time.Millisecond))

	cs.DetectionState = StateReading
	assert.False(t, cs.RemovalDue(now, time.Millisecond))
	assert.Equal(t, "reading", cs.DetectionState.String())
}
