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

// Package i2c provides I2C transport implementation for MFRC522
package i2c

import (
	"fmt"
	"io"
	"sync"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

const (
	// DefaultAddress is the MFRC522 address with EA low and ADR_0..5 tied
	// to 0b101000; boards strap it anywhere from 0x28 to 0x2F
	DefaultAddress = 0x28

	// Max clock frequency (400 kHz fast mode).
	maxClockFreq = 400 * physic.KiloHertz

	resetPulse  = time.Millisecond
	resetSettle = 50 * time.Millisecond
)

type txer interface {
	Tx(w, r []byte) error
}

type resetLine interface {
	Out(l gpio.Level) error
}

type config struct {
	resetPin string
	address  uint16
}

// Option configures the I2C transport
type Option func(*config) error

// WithAddress sets the 7 bit device address
func WithAddress(addr uint16) Option {
	return func(c *config) error {
		if addr < 0x08 || addr > 0x77 {
			return fmt.Errorf("%w: I2C address 0x%02X", mfrc522.ErrInvalidParameter, addr)
		}
		c.address = addr
		return nil
	}
}

// WithResetPin wires the NRSTPD pin, e.g. "GPIO25"
func WithResetPin(name string) Option {
	return func(c *config) error {
		if name == "" {
			return fmt.Errorf("%w: empty reset pin name", mfrc522.ErrInvalidParameter)
		}
		c.resetPin = name
		return nil
	}
}

// Transport implements the mfrc522.Transport interface for I2C communication
type Transport struct {
	dev     txer
	bus     io.Closer
	reset   resetLine
	busName string
	mu      sync.Mutex
	closed  bool
}

// New opens an I2C bus such as "/dev/i2c-1" or "1"
func New(busName string, opts ...Option) (*Transport, error) {
	cfg := config{address: DefaultAddress}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	// Initialize host
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", busName, err)
	}

	// Ignore error, continue with default speed
	_ = bus.SetSpeed(maxClockFreq)

	t := newTransport(&i2c.Dev{Addr: cfg.address, Bus: bus}, bus, busName)
	if cfg.resetPin != "" {
		pin := gpioreg.ByName(cfg.resetPin)
		if pin == nil {
			_ = bus.Close()
			return nil, fmt.Errorf("%w: GPIO %s not found", mfrc522.ErrInvalidParameter, cfg.resetPin)
		}
		if err := pin.Out(gpio.High); err != nil {
			_ = bus.Close()
			return nil, fmt.Errorf("failed to drive reset pin %s: %w", cfg.resetPin, err)
		}
		t.reset = pin
	}
	return t, nil
}

func newTransport(dev txer, bus io.Closer, busName string) *Transport {
	return &Transport{dev: dev, bus: bus, busName: busName}
}

func (t *Transport) tx(op string, w, r []byte, sentinel error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return mfrc522.ErrTransportClosed
	}
	if err := t.dev.Tx(w, r); err != nil {
		return mfrc522.NewTransportError(op, t.busName, fmt.Errorf("%w: %w", sentinel, err), mfrc522.ErrorTypeTransient)
	}
	return nil
}

// WriteRegister sends the register address followed by the values
func (t *Transport) WriteRegister(reg mfrc522.Register, values ...byte) error {
	w := make([]byte, 0, len(values)+1)
	w = append(w, byte(reg))
	w = append(w, values...)
	return t.tx("write register", w, nil, mfrc522.ErrTransportWrite)
}

// ReadRegister reads a single register
func (t *Transport) ReadRegister(reg mfrc522.Register) (byte, error) {
	r := make([]byte, 1)
	if err := t.tx("read register", []byte{byte(reg)}, r, mfrc522.ErrTransportRead); err != nil {
		return 0, err
	}
	return r[0], nil
}

// ReadRegisterN reads n bytes from reg in one repeated start transaction;
// the chip does not increment the address
func (t *Transport) ReadRegisterN(reg mfrc522.Register, n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	r := make([]byte, n)
	if err := t.tx("read register", []byte{byte(reg)}, r, mfrc522.ErrTransportRead); err != nil {
		return nil, err
	}
	return r, nil
}

// Reset pulls NRSTPD low and waits for the oscillator
func (t *Transport) Reset() error {
	if t.reset == nil {
		return mfrc522.ErrNoResetPin
	}
	if err := t.reset.Out(gpio.Low); err != nil {
		return fmt.Errorf("reset pin low: %w", err)
	}
	time.Sleep(resetPulse)
	if err := t.reset.Out(gpio.High); err != nil {
		return fmt.Errorf("reset pin high: %w", err)
	}
	time.Sleep(resetSettle)
	return nil
}

// Close closes the transport connection
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.bus == nil {
		return nil
	}
	if err := t.bus.Close(); err != nil {
		return fmt.Errorf("failed to close I2C bus %s: %w", t.busName, err)
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.closed
}

// Type returns the transport type
func (*Transport) Type() mfrc522.TransportType {
	return mfrc522.TransportI2C
}

var _ mfrc522.Transport = (*Transport)(nil)
