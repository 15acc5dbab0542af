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

// Package spi provides the SPI transport for the MFRC522 using periph.io
package spi

import (
	"fmt"
	"io"
	"sync"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	// DefaultSpeed matches the 4 MHz used by most MFRC522 boards
	DefaultSpeed = 4 * physic.MegaHertz
	// MaxSpeed is the highest SPI clock in the datasheet
	MaxSpeed = 10 * physic.MegaHertz

	readFlag    = 0x80
	addressMask = 0x7E

	// NRSTPD must be low for at least 100 ns; the oscillator needs up to
	// 37.74 us after release, a margin covers slow crystals
	resetPulse  = time.Millisecond
	resetSettle = 50 * time.Millisecond
)

// txer is the part of spi.Conn the transport uses
type txer interface {
	Tx(w, r []byte) error
}

// resetLine drives the NRSTPD pin
type resetLine interface {
	Out(l gpio.Level) error
}

type config struct {
	resetPin string
	speed    physic.Frequency
}

// Option configures the SPI transport
type Option func(*config) error

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

// WithSpeed sets the SPI clock, at most MaxSpeed
func WithSpeed(f physic.Frequency) Option {
	return func(c *config) error {
		if f <= 0 || f > MaxSpeed {
			return fmt.Errorf("%w: SPI speed %s", mfrc522.ErrInvalidParameter, f)
		}
		c.speed = f
		return nil
	}
}

// Transport implements the mfrc522.Transport interface for SPI communication
type Transport struct {
	conn     txer
	port     io.Closer
	reset    resetLine
	portName string
	mu       sync.Mutex
	closed   bool
}

// New opens an SPI port such as "/dev/spidev0.0" or "SPI0.0"
func New(portName string, opts ...Option) (*Transport, error) {
	cfg := config{speed: DefaultSpeed}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %s: %w", portName, err)
	}

	conn, err := port.Connect(cfg.speed, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to configure SPI port %s: %w", portName, err)
	}

	t := newTransport(conn, port, portName)
	if cfg.resetPin != "" {
		pin := gpioreg.ByName(cfg.resetPin)
		if pin == nil {
			_ = port.Close()
			return nil, fmt.Errorf("%w: GPIO %s not found", mfrc522.ErrInvalidParameter, cfg.resetPin)
		}
		// Leave the chip running
		if err := pin.Out(gpio.High); err != nil {
			_ = port.Close()
			return nil, fmt.Errorf("failed to drive reset pin %s: %w", cfg.resetPin, err)
		}
		t.reset = pin
	}
	return t, nil
}

func newTransport(conn txer, port io.Closer, portName string) *Transport {
	return &Transport{conn: conn, port: port, portName: portName}
}

// address returns the address byte: bit 7 is the read flag, bits 6..1 the
// register, bit 0 is always 0
func address(reg mfrc522.Register, read bool) byte {
	addr := (byte(reg) << 1) & addressMask
	if read {
		addr |= readFlag
	}
	return addr
}

func (t *Transport) tx(op string, w, r []byte, sentinel error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return mfrc522.ErrTransportClosed
	}
	if err := t.conn.Tx(w, r); err != nil {
		return mfrc522.NewTransportError(op, t.portName, fmt.Errorf("%w: %w", sentinel, err), mfrc522.ErrorTypeTransient)
	}
	return nil
}

// WriteRegister writes values to reg in one transaction
func (t *Transport) WriteRegister(reg mfrc522.Register, values ...byte) error {
	w := make([]byte, 0, len(values)+1)
	w = append(w, address(reg, false))
	w = append(w, values...)
	return t.tx("write register", w, nil, mfrc522.ErrTransportWrite)
}

// ReadRegister reads a single register
func (t *Transport) ReadRegister(reg mfrc522.Register) (byte, error) {
	w := []byte{address(reg, true), 0x00}
	r := make([]byte, len(w))
	if err := t.tx("read register", w, r, mfrc522.ErrTransportRead); err != nil {
		return 0, err
	}
	return r[1], nil
}

// ReadRegisterN reads reg n times in one transaction. Each address byte
// clocks out the value of the previous one, a final 0x00 ends the read.
func (t *Transport) ReadRegisterN(reg mfrc522.Register, n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	w := make([]byte, n+1)
	addr := address(reg, true)
	for i := 0; i < n; i++ {
		w[i] = addr
	}
	r := make([]byte, len(w))
	if err := t.tx("read register", w, r, mfrc522.ErrTransportRead); err != nil {
		return nil, err
	}
	return r[1:], nil
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

// Close closes the SPI port
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.port == nil {
		return nil
	}
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close SPI port %s: %w", t.portName, err)
	}
	return nil
}

// IsConnected returns true until Close
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.closed
}

// Type returns the transport type
func (*Transport) Type() mfrc522.TransportType {
	return mfrc522.TransportSPI
}

var _ mfrc522.Transport = (*Transport)(nil)
