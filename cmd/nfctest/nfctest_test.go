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
	"testing"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/detection"
	virt "github.com/ZaparooProject/go-mfrc522/internal/testing"
	"github.com/hsanjuan/go-ndef"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
)

func newTestSetup(t *testing.T, verbose bool) (*Testing, *bytes.Buffer, *mfrc522.Device, *virt.VirtualChip) {
	t.Helper()

	chip := virt.NewVirtualChip()
	device, err := mfrc522.New(chip)
	require.NoError(t, err)
	require.NoError(t, device.Init())

	var buf bytes.Buffer
	config := DefaultConfig()
	config.StressReads = 3
	return NewTesting(config, NewOutput(&buf, verbose)), &buf, device, chip
}

func TestTestReader(t *testing.T) {
	t.Parallel()

	tester, buf, device, _ := newTestSetup(t, true)
	require.NoError(t, tester.TestReader(context.Background(), device))
	assert.Contains(t, buf.String(), "OK: Chip: v2.0 (0x92)")
	assert.Contains(t, buf.String(), "Antenna gain: ")
}

func TestTestReader_NoChip(t *testing.T) {
	t.Parallel()

	tester, buf, device, chip := newTestSetup(t, false)
	chip.SetVersion(0xFF)
	require.ErrorIs(t, tester.TestReader(context.Background(), device), mfrc522.ErrCommunicationFailed)
	assert.Equal(t, "FAIL\n", buf.String())
}

func TestTestCard_NTAG(t *testing.T) {
	t.Parallel()

	tester, buf, device, chip := newTestSetup(t, false)
	card := virt.NewVirtualNTAG213(nil)
	raw, err := ndef.NewTextMessage("zaparoo", "en").Marshal()
	require.NoError(t, err)
	card.SetNDEF(raw)
	chip.AddCard(card)

	ctx := context.Background()
	detected, err := device.DetectCard(ctx, false)
	require.NoError(t, err)
	require.NoError(t, tester.TestCard(ctx, device, detected))

	out := buf.String()
	assert.Contains(t, out, "Reading capability container... OK")
	assert.Contains(t, out, "OK: Found 1 record(s)")
	assert.Contains(t, out, "OK: 3/3 succeeded")
}

func TestTestCard_Classic(t *testing.T) {
	t.Parallel()

	tester, buf, device, chip := newTestSetup(t, false)
	chip.AddCard(virt.NewVirtualMIFARE1K(nil))

	ctx := context.Background()
	detected, err := device.DetectCard(ctx, false)
	require.NoError(t, err)
	require.NoError(t, tester.TestCard(ctx, device, detected))
	assert.Contains(t, buf.String(), "MIFARE Classic")
}

func TestOutput_CardDetected(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	out := NewOutput(&buf, false)
	out.CardDetected("/dev/spidev0.0", &mfrc522.DetectedCard{
		UID:  &mfrc522.UID{Bytes: []byte{0xDE, 0xAD, 0xBE, 0xEF}, SAK: 0x08},
		ATQA: []byte{0x04, 0x00},
	}, true)
	assert.Equal(t,
		"\nCARD: New card detected on /dev/spidev0.0: MIFARE 1KB (UID: DE AD BE EF, ATQA: 04 00)\n",
		buf.String())

	buf.Reset()
	out.NDEFResults(nil, mfrc522.ErrNotNDEF)
	assert.Equal(t, " WARNING: No NDEF data\n", buf.String())
}

func TestDiscovery_ManualDevice(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()
	config.DevicePath = "/dev/i2c-1"
	readers, err := NewDiscovery(config, NewOutput(&bytes.Buffer{}, false)).DiscoverReaders(context.Background())
	require.NoError(t, err)
	require.Len(t, readers, 1)
	assert.Equal(t, TransportI2C, readers[0].Transport)
	assert.Equal(t, detection.Low, readers[0].Confidence)

	assert.Equal(t, TransportSPI, manualReader("/dev/spidev0.0").Transport)

	_, err = (&Discovery{}).CreateTransport(detection.DeviceInfo{Transport: "uart"})
	require.Error(t, err)
}

type addrBus struct {
	last uint16
}

func (*addrBus) String() string { return "addr" }

func (b *addrBus) Tx(addr uint16, _, _ []byte) error {
	b.last = addr
	return nil
}

func (*addrBus) SetSpeed(physic.Frequency) error { return nil }

func (*addrBus) Close() error { return nil }

func TestDiscovery_CreateTransportDetectedI2C(t *testing.T) {
	t.Parallel()

	const busName = "/dev/i2c-nfctest"
	bus := &addrBus{}
	require.NoError(t, i2creg.Register(busName, nil, -1, func() (i2c.BusCloser, error) {
		return bus, nil
	}))
	t.Cleanup(func() { _ = i2creg.Unregister(busName) })

	transport, err := (&Discovery{}).CreateTransport(detection.DeviceInfo{
		Transport: TransportI2C,
		Path:      busName + ":0x2B",
		Metadata:  map[string]string{"bus": busName, "address": "0x2B"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = transport.Close() })

	require.NoError(t, transport.WriteRegister(mfrc522.CommandReg, 0x0F))
	assert.Equal(t, uint16(0x2B), bus.last)
}
