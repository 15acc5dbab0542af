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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/console"
	"github.com/ZaparooProject/go-mfrc522/detection"
	"github.com/ZaparooProject/go-mfrc522/internal/frame"
	virt "github.com/ZaparooProject/go-mfrc522/internal/testing"
	"github.com/hsanjuan/go-ndef"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	subjects []string
	events   []cardEvent
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	var e cardEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return err
	}
	f.subjects = append(f.subjects, subject)
	f.events = append(f.events, e)
	return nil
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	cfg, err := parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, "-", cfg.consoleDev)
	assert.Equal(t, console.DefaultBaudRate, cfg.baudRate)
	assert.Equal(t, uint(0x28), cfg.i2cAddr)
	assert.Equal(t, "safe", cfg.detectMode)

	cfg, err = parseFlags([]string{"-device", "/dev/spidev0.0", "-track-removal", "-poll-interval", "20ms"})
	require.NoError(t, err)
	assert.Equal(t, "/dev/spidev0.0", cfg.devicePath)
	assert.True(t, cfg.trackRemoval)
	assert.Equal(t, 20*time.Millisecond, cfg.pollInterval)

	_, err = parseFlags([]string{"-i2c-addr", "0x80"})
	require.Error(t, err)
	_, err = parseFlags([]string{"-detect", "aggressive"})
	require.Error(t, err)
}

func TestTransportKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{path: "/dev/spidev0.0", want: "spi"},
		{path: "SPI0.1", want: "spi"},
		{path: "/dev/i2c-1", want: "i2c"},
		{path: "/dev/ttyUSB0", wantErr: true},
		{path: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := transportKind(tt.path)
		if tt.wantErr {
			require.Error(t, err, tt.path)
			continue
		}
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got)
	}
}

func TestDetectionMode(t *testing.T) {
	t.Parallel()

	mode, err := detectionMode("full")
	require.NoError(t, err)
	assert.Equal(t, detection.Full, mode)

	_, err = openTransport("uart", "/dev/ttyUSB0", 0, "")
	require.Error(t, err)
}

func TestDetectedTransportFactory_BadAddress(t *testing.T) {
	t.Parallel()

	factory := newDetectedTransportFactory(transportOptions{i2cAddr: 0x28})
	_, err := factory(detection.DeviceInfo{
		Transport: "i2c",
		Path:      "/dev/i2c-1",
		Metadata:  map[string]string{"address": "0xZZ"},
	})
	require.Error(t, err)
}

func TestEventPublisher(t *testing.T) {
	t.Parallel()

	var nilPublisher *eventPublisher
	require.NoError(t, nilPublisher.publish(newCardEvent(eventRemoved, nil)))

	fake := &fakePublisher{}
	p := &eventPublisher{pub: fake, subject: "mfrc522.cards"}
	uid := &mfrc522.UID{Bytes: []byte{0x04, 0xA2, 0x3B, 0x1C}, SAK: 0x08}
	require.NoError(t, p.publish(newCardEvent(eventDetected, uid)))

	require.Len(t, fake.events, 1)
	assert.Equal(t, []string{"mfrc522.cards"}, fake.subjects)
	assert.Equal(t, "detected", fake.events[0].Event)
	assert.Equal(t, "04A23B1C", fake.events[0].UID)
	assert.Equal(t, "MIFARE 1KB", fake.events[0].Type)
	assert.Equal(t, 4, fake.events[0].UIDBytes)
}

func TestMonitorWritesConsole(t *testing.T) {
	t.Parallel()

	chip := virt.NewVirtualChip()
	device, err := mfrc522.New(chip)
	require.NoError(t, err)
	require.NoError(t, device.Init())
	chip.AddCard(virt.NewVirtualMIFARE1K(nil))

	var buf bytes.Buffer
	fake := &fakePublisher{}
	cfg := &config{pollInterval: time.Millisecond}
	monitor, err := newMonitor(context.Background(), device, cfg, console.NewWriter(&buf),
		&eventPublisher{pub: fake, subject: "cards"})
	require.NoError(t, err)

	require.NoError(t, monitor.Poll(context.Background()))
	assert.Equal(t, "Card UID: DE AD BE EF\r\nCard SAK: 08\r\nPICC type: MIFARE 1KB\r\n", buf.String())
	require.Len(t, fake.events, 1)
	assert.Equal(t, "DEADBEEF", fake.events[0].UID)

	// The card was halted and is not reported again
	require.NoError(t, monitor.Poll(context.Background()))
	assert.Len(t, fake.events, 1)
}

func TestMonitorNDEFFollowsRunContext(t *testing.T) {
	t.Parallel()

	raw, err := ndef.NewTextMessage("zaparoo", "en").Marshal()
	require.NoError(t, err)

	tests := []struct {
		name      string
		cancelled bool
	}{
		{name: "running"},
		{name: "shutting down", cancelled: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			chip := virt.NewVirtualChip()
			device, err := mfrc522.New(chip)
			require.NoError(t, err)
			require.NoError(t, device.Init())
			card := virt.NewVirtualNTAG213(nil)
			card.SetNDEF(raw)
			chip.AddCard(card)

			runCtx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancelled {
				cancel()
			}

			fake := &fakePublisher{}
			cfg := &config{pollInterval: time.Millisecond, readNDEF: true}
			monitor, err := newMonitor(runCtx, device, cfg, console.NewWriter(io.Discard),
				&eventPublisher{pub: fake, subject: "cards"})
			require.NoError(t, err)

			require.NoError(t, monitor.Poll(context.Background()))
			require.Len(t, fake.events, 1)

			reads := 0
			for _, f := range chip.Frames() {
				if len(f) > 0 && f[0] == frame.MifareRead {
					reads++
				}
			}
			if tt.cancelled {
				assert.Empty(t, fake.events[0].NDEF)
				assert.Zero(t, reads)
				return
			}
			assert.NotEmpty(t, fake.events[0].NDEF)
			assert.Positive(t, reads)
		})
	}
}
