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
	"sync"
	"testing"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/detection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
)

// recordingBus is an I2C bus that remembers the addresses it talked to
type recordingBus struct {
	mu    sync.Mutex
	addrs []uint16
}

func (*recordingBus) String() string { return "recording" }

func (b *recordingBus) Tx(addr uint16, _, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addrs = append(b.addrs, addr)
	for i := range r {
		r[i] = 0x92
	}
	return nil
}

func (*recordingBus) SetSpeed(physic.Frequency) error { return nil }

func (*recordingBus) Close() error { return nil }

func (b *recordingBus) addresses() []uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]uint16(nil), b.addrs...)
}

func TestDetectedTransportFactory_I2C(t *testing.T) {
	t.Parallel()

	const busName = "/dev/i2c-rfidreader-test"
	bus := &recordingBus{}
	require.NoError(t, i2creg.Register(busName, nil, -1, func() (i2c.BusCloser, error) {
		return bus, nil
	}))
	t.Cleanup(func() { _ = i2creg.Unregister(busName) })

	// Same shape as the I2C detector reports
	device := detection.DeviceInfo{
		Transport: "i2c",
		Path:      busName + ":0x29",
		Name:      "MFRC522 on " + busName + " address 0x29",
		Metadata:  map[string]string{"bus": busName, "address": "0x29"},
	}

	factory := newDetectedTransportFactory(transportOptions{i2cAddr: 0x28})
	transport, err := factory(device)
	require.NoError(t, err)
	t.Cleanup(func() { _ = transport.Close() })

	version, err := transport.ReadRegister(mfrc522.VersionReg)
	require.NoError(t, err)
	assert.Equal(t, byte(0x92), version)
	assert.Equal(t, []uint16{0x29}, bus.addresses())
}
