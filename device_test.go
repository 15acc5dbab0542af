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

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInitMock(version Version) *MockTransport {
	mock := NewMockTransport()
	mock.SetRegister(VersionReg, byte(version))
	return mock
}

func writesTo(mock *MockTransport, reg Register) [][]byte {
	var out [][]byte
	for _, w := range mock.Writes() {
		if w.Reg == reg {
			out = append(out, w.Values)
		}
	}
	return out
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		transport Transport
		name      string
		opts      []Option
		wantErr   bool
	}{
		{name: "Valid_MockTransport", transport: NewMockTransport()},
		{name: "Nil_Transport", transport: nil, wantErr: true},
		{name: "Invalid_Timeout", transport: NewMockTransport(), opts: []Option{WithTimeout(0)}, wantErr: true},
		{name: "Invalid_AntennaGain", transport: NewMockTransport(), opts: []Option{WithAntennaGain(0x0F)}, wantErr: true},
		{name: "With_AntennaGain", transport: NewMockTransport(), opts: []Option{WithAntennaGain(RxGainMax)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			device, err := New(tt.transport, tt.opts...)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidParameter)
				assert.Nil(t, device)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.transport, device.Transport())
		})
	}
}

func TestRetryOptions(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	device, err := New(mock, WithMaxRetries(7), WithRetryBackoff(time.Millisecond))
	require.NoError(t, err)

	wrapper, ok := device.Transport().(*TransportWithRetry)
	require.True(t, ok, "retry options should wrap the transport once")
	assert.Equal(t, mock, wrapper.transport)
	assert.Equal(t, 7, wrapper.config.MaxAttempts)
	assert.Equal(t, time.Millisecond, wrapper.config.InitialBackoff)

	custom := DefaultRetryConfig()
	custom.MaxAttempts = 2
	device.SetRetryConfig(custom)
	assert.Same(t, custom, wrapper.config)
}

func TestDevice_InitContext(t *testing.T) {
	t.Parallel()

	t.Run("soft reset without reset pin", func(t *testing.T) {
		t.Parallel()

		mock := newInitMock(VersionV2)
		device, err := New(mock)
		require.NoError(t, err)

		require.NoError(t, device.InitContext(context.Background()))
		assert.True(t, device.IsInitialized())
		assert.Equal(t, VersionV2, device.Version())
		assert.Equal(t, 1, mock.Resets())
		assert.Contains(t, writesTo(mock, CommandReg), []byte{byte(PCDSoftReset)})

		assert.Equal(t, byte(initTMode), mock.Register(TModeReg))
		assert.Equal(t, byte(initTPrescaler), mock.Register(TPrescalerReg))
		assert.Equal(t, byte(initTReloadH), mock.Register(TReloadRegH))
		assert.Equal(t, byte(initTReloadL), mock.Register(TReloadRegL))
		assert.Equal(t, byte(initTxASK), mock.Register(TxASKReg))
		assert.Equal(t, byte(initMode), mock.Register(ModeReg))
		assert.Equal(t, byte(initModWidth), mock.Register(ModWidthReg))
		assert.Equal(t, byte(antennaBits), mock.Register(TxControlReg)&antennaBits)
	})

	t.Run("hard reset skips soft reset", func(t *testing.T) {
		t.Parallel()

		mock := newInitMock(VersionV1)
		mock.SetResetError(nil)
		device, err := New(mock)
		require.NoError(t, err)

		require.NoError(t, device.Init())
		assert.NotContains(t, writesTo(mock, CommandReg), []byte{byte(PCDSoftReset)})
		assert.Equal(t, VersionV1, device.Version())
	})

	t.Run("antenna gain applied", func(t *testing.T) {
		t.Parallel()

		mock := newInitMock(VersionV2)
		mock.SetResetError(nil)
		device, err := New(mock, WithAntennaGain(RxGain43dB))
		require.NoError(t, err)

		require.NoError(t, device.Init())
		assert.Equal(t, byte(RxGain43dB), mock.Register(RFCfgReg)&rxGainMask)
	})

	for _, v := range []Version{0x00, 0xFF} {
		t.Run("no chip on the bus "+v.String(), func(t *testing.T) {
			t.Parallel()

			mock := newInitMock(v)
			mock.SetResetError(nil)
			device, err := New(mock)
			require.NoError(t, err)

			err = device.Init()
			require.ErrorIs(t, err, ErrCommunicationFailed)
			assert.False(t, device.IsInitialized())
		})
	}

	t.Run("reset failure", func(t *testing.T) {
		t.Parallel()

		mock := newInitMock(VersionV2)
		mock.SetResetError(ErrTransportWrite)
		device, err := New(mock)
		require.NoError(t, err)

		require.ErrorIs(t, device.Init(), ErrTransportWrite)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		device, err := New(newInitMock(VersionV2))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.ErrorIs(t, device.InitContext(ctx), context.Canceled)
	})
}

func TestDevice_ResetStuckInPowerDown(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.QueueRead(CommandReg, 0x10, 0x10, 0x10)
	device, err := New(mock)
	require.NoError(t, err)

	err = device.Reset(context.Background())
	require.ErrorIs(t, err, ErrCommunicationFailed)
}

func TestDevice_Antenna(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.SetRegister(TxControlReg, 0x80)
	device, err := New(mock)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, device.AntennaOn(ctx))
	assert.Equal(t, byte(0x83), mock.Register(TxControlReg))

	// Already on: no further write
	before := len(mock.Writes())
	require.NoError(t, device.AntennaOn(ctx))
	assert.Len(t, mock.Writes(), before)

	require.NoError(t, device.AntennaOff(ctx))
	assert.Equal(t, byte(0x80), mock.Register(TxControlReg))

	mock.SetRegister(RFCfgReg, 0x48)
	gain, err := device.AntennaGain(ctx)
	require.NoError(t, err)
	assert.Equal(t, RxGain33dB, gain)

	require.NoError(t, device.SetAntennaGain(ctx, RxGain18dB))
	assert.Equal(t, byte(0x08), mock.Register(RFCfgReg))
}

func TestDevice_SoftPower(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.SetRegister(CommandReg, 0x20)
	device, err := New(mock)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, device.SoftPowerDown(ctx))
	assert.Equal(t, byte(0x30), mock.Register(CommandReg))

	require.NoError(t, device.SoftPowerUp(ctx))
	assert.Equal(t, byte(0x20), mock.Register(CommandReg))
}

func TestDevice_Close(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	device, err := New(mock)
	require.NoError(t, err)

	require.NoError(t, device.Close())
	assert.False(t, mock.IsConnected())
}

func TestConnectDevice_ManualPath(t *testing.T) {
	t.Parallel()

	mock := newInitMock(VersionV2)
	mock.SetResetError(nil)

	var gotPath string
	device, err := ConnectDevice(context.Background(), "/dev/spidev0.0",
		WithTransportFactory(func(path string) (Transport, error) {
			gotPath = path
			return mock, nil
		}))
	require.NoError(t, err)
	assert.Equal(t, "/dev/spidev0.0", gotPath)
	assert.True(t, device.IsInitialized())
}

func TestConnectDevice_Errors(t *testing.T) {
	t.Parallel()

	_, err := ConnectDevice(context.Background(), "/dev/spidev0.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transport factory not provided")

	mock := newInitMock(0x00)
	mock.SetResetError(nil)
	_, err = ConnectDevice(context.Background(), "/dev/spidev0.0",
		WithTransportFactory(func(string) (Transport, error) { return mock, nil }))
	require.ErrorIs(t, err, ErrCommunicationFailed)
	assert.False(t, mock.IsConnected(), "transport should be closed after a failed init")
}
