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
	"sync"
)

// RegisterWrite records one WriteRegister call on a MockTransport
type RegisterWrite struct {
	Values []byte
	Reg    Register
}

// MockTransport is a register map transport for unit tests. Reads return the
// last written value unless values were queued with QueueRead.
type MockTransport struct {
	registers map[Register]byte
	queued    map[Register][]byte
	errs      map[Register]error
	failErr   error
	resetErr  error
	writes    []RegisterWrite
	failNext  int
	resets    int
	mu        sync.Mutex
	closed    bool
}

// NewMockTransport creates a new mock transport without a reset pin
func NewMockTransport() *MockTransport {
	return &MockTransport{
		registers: make(map[Register]byte),
		queued:    make(map[Register][]byte),
		errs:      make(map[Register]error),
		resetErr:  ErrNoResetPin,
	}
}

// SetRegister sets the value returned by reads of reg
func (m *MockTransport) SetRegister(reg Register, value byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registers[reg] = value
}

// Register returns the current value of reg
func (m *MockTransport) Register(reg Register) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registers[reg]
}

// QueueRead queues values returned by the next reads of reg, in order
func (m *MockTransport) QueueRead(reg Register, values ...byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued[reg] = append(m.queued[reg], values...)
}

// InjectError makes every access to reg fail with err; nil clears it
func (m *MockTransport) InjectError(reg Register, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, reg)
		return
	}
	m.errs[reg] = err
}

// FailNext makes the next n register accesses fail with err
func (m *MockTransport) FailNext(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = n
	m.failErr = err
}

// SetResetError sets the error returned by Reset; nil emulates a wired reset pin
func (m *MockTransport) SetResetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetErr = err
}

// Writes returns a copy of all recorded writes
func (m *MockTransport) Writes() []RegisterWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RegisterWrite, len(m.writes))
	copy(out, m.writes)
	return out
}

// Resets returns how many times Reset was called
func (m *MockTransport) Resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets
}

func (m *MockTransport) checkAccess(reg Register) error {
	if m.closed {
		return ErrTransportClosed
	}
	if m.failNext > 0 {
		m.failNext--
		return m.failErr
	}
	return m.errs[reg]
}

// WriteRegister records the write and stores the last value
func (m *MockTransport) WriteRegister(reg Register, values ...byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkAccess(reg); err != nil {
		return err
	}
	m.writes = append(m.writes, RegisterWrite{Reg: reg, Values: append([]byte(nil), values...)})
	if len(values) > 0 {
		m.registers[reg] = values[len(values)-1]
	}
	return nil
}

func (m *MockTransport) readLocked(reg Register) byte {
	if q := m.queued[reg]; len(q) > 0 {
		m.queued[reg] = q[1:]
		return q[0]
	}
	return m.registers[reg]
}

// ReadRegister returns a queued value or the register content
func (m *MockTransport) ReadRegister(reg Register) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkAccess(reg); err != nil {
		return 0, err
	}
	return m.readLocked(reg), nil
}

// ReadRegisterN reads reg n times
func (m *MockTransport) ReadRegisterN(reg Register, n int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkAccess(reg); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = m.readLocked(reg)
	}
	return out, nil
}

// Reset counts the call and returns the configured reset error
func (m *MockTransport) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
	return m.resetErr
}

// Close marks the transport as closed
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsConnected returns false after Close
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}

var _ Transport = (*MockTransport)(nil)
