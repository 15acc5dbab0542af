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
	"context"
	"errors"
	"fmt"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/detection"
	"github.com/ZaparooProject/go-mfrc522/polling"
)

// Monitoring handles card monitoring and polling
type Monitoring struct {
	config    *Config
	output    *Output
	discovery *Discovery
	testing   *Testing
}

// NewMonitoring creates a new monitoring handler
func NewMonitoring(config *Config, output *Output, discovery *Discovery, testing *Testing) *Monitoring {
	return &Monitoring{
		config:    config,
		output:    output,
		discovery: discovery,
		testing:   testing,
	}
}

type reader struct {
	device *mfrc522.Device
	path   string
}

// Run tests every reader and then monitors the working ones for cards
func (m *Monitoring) Run(ctx context.Context, infos []detection.DeviceInfo) error {
	readers := m.initializeDevices(ctx, infos)
	if len(readers) == 0 {
		return errors.New("no functional readers available")
	}
	defer func() {
		for _, r := range readers {
			_ = r.device.Close()
		}
	}()

	if m.config.Quick {
		return nil
	}

	monitors := make([]*polling.Monitor, 0, len(readers))
	for _, r := range readers {
		monitor, err := m.newMonitor(r)
		if err != nil {
			return err
		}
		monitors = append(monitors, monitor)
	}

	m.output.printf("\nMonitoring for cards... (Ctrl+C to quit)\n")
	return m.startMonitoringLoop(ctx, monitors)
}

func (m *Monitoring) initializeDevices(ctx context.Context, infos []detection.DeviceInfo) []reader {
	readers := make([]reader, 0, len(infos))
	for _, info := range infos {
		m.output.ReaderTestHeader(info)

		device, err := m.createDevice(ctx, info)
		if err != nil {
			m.output.TestFailure()
			m.output.Warning("Failed to create device for %s: %v", info.Path, err)
			continue
		}
		if err := m.testing.TestReader(ctx, device); err != nil {
			m.output.Warning("Reader test failed: %v", err)
			_ = device.Close()
			continue
		}
		readers = append(readers, reader{device: device, path: info.Path})
	}
	return readers
}

func (m *Monitoring) createDevice(ctx context.Context, info detection.DeviceInfo) (*mfrc522.Device, error) {
	transport, err := m.discovery.CreateTransport(info)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	device, err := mfrc522.New(transport)
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("failed to create MFRC522 device: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.config.ConnectTimeout)
	defer cancel()
	if err := device.InitContext(ctx); err != nil {
		_ = device.Close()
		return nil, fmt.Errorf("failed to initialize device: %w", err)
	}
	return device, nil
}

func (m *Monitoring) newMonitor(r reader) (*polling.Monitor, error) {
	pollingConfig := polling.ConfigFor(r.device)
	pollingConfig.PollInterval = m.config.PollInterval
	pollingConfig.CardRemovalTimeout = m.config.CardRemovalTimeout
	pollingConfig.TrackRemoval = true

	monitor, err := polling.NewMonitor(r.device, pollingConfig)
	if err != nil {
		return nil, err
	}

	test := func(card *mfrc522.DetectedCard, changed bool) error {
		m.output.CardDetected(r.path, card, changed)
		if err := m.testing.TestCard(context.Background(), r.device, card); err != nil {
			m.output.Error("Card test failed: %v", err)
		} else {
			m.output.OK("Card test completed")
		}
		return nil
	}
	monitor.OnCardDetected = func(card *mfrc522.DetectedCard) error { return test(card, false) }
	monitor.OnCardChanged = func(card *mfrc522.DetectedCard) error { return test(card, true) }
	monitor.OnCardRemoved = func() {
		m.output.Info("Card removed from %s", r.path)
	}
	monitor.OnPollError = func(err error) {
		m.output.Verbose("poll %s: %v", r.path, err)
	}
	return monitor, nil
}

func (*Monitoring) startMonitoringLoop(ctx context.Context, monitors []*polling.Monitor) error {
	// One goroutine per reader
	errChan := make(chan error, len(monitors))
	for _, monitor := range monitors {
		go func(mon *polling.Monitor) {
			errChan <- mon.Start(ctx)
		}(monitor)
	}

	// Wait for context cancellation or first error
	select {
	case <-ctx.Done():
		return nil
	case err := <-errChan:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}
