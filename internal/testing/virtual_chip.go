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

package testing

import (
	"sync"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/internal/frame"
)

// Register bits emulated by the chip
const (
	irqTimer    = 0x01
	irqIdle     = 0x10
	irqRx       = 0x20
	irqCRC      = 0x04
	irqSet      = 0x80
	startSend   = 0x80
	flushBuffer = 0x80
	errCollErr  = 0x08
	cmdMask     = 0x0F
	uidBits     = 32
	chunkBits   = 40 // four UID bytes plus BCC
)

// VirtualChip emulates the MFRC522 register interface closely enough for the
// driver's REQA/WUPA, anticollision, select, HLTA, READ and CRC paths
type VirtualChip struct {
	cards       []*VirtualCard
	fifo        []byte
	frames      [][]byte
	regs        [0x40]byte
	resets      int
	mu          sync.Mutex
	version     byte
	hasResetPin bool
	closed      bool
}

// NewVirtualChip creates a v2.0 chip with an empty field
func NewVirtualChip() *VirtualChip {
	chip := &VirtualChip{version: byte(mfrc522.VersionV2)}
	chip.resetRegisters()
	return chip
}

// SetVersion changes the value of VersionReg
func (c *VirtualChip) SetVersion(v byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version = v
}

// SetHasResetPin makes Reset succeed instead of returning ErrNoResetPin
func (c *VirtualChip) SetHasResetPin(has bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasResetPin = has
}

// AddCard places a card in the field
func (c *VirtualChip) AddCard(card *VirtualCard) {
	c.mu.Lock()
	defer c.mu.Unlock()
	card.state = stateIdle
	card.level = 0
	c.cards = append(c.cards, card)
}

// RemoveCard takes a card out of the field
func (c *VirtualChip) RemoveCard(card *VirtualCard) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, other := range c.cards {
		if other == card {
			c.cards = append(c.cards[:i], c.cards[i+1:]...)
			return
		}
	}
}

// ClearField removes all cards
func (c *VirtualChip) ClearField() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cards = nil
}

// Frames returns every frame the driver transmitted to the field
func (c *VirtualChip) Frames() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.frames))
	copy(out, c.frames)
	return out
}

// RegisterValue returns the raw content of a register
func (c *VirtualChip) RegisterValue(reg mfrc522.Register) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regs[reg&0x3F]
}

// Resets returns the number of hard resets
func (c *VirtualChip) Resets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resets
}

func (c *VirtualChip) resetRegisters() {
	c.regs = [0x40]byte{}
	c.fifo = nil
	c.regs[mfrc522.CommandReg] = 0x20
	c.regs[mfrc522.ComIEnReg] = 0x80
	c.regs[mfrc522.ComIrqReg] = 0x14
	c.regs[mfrc522.WaterLevelReg] = 0x08
	c.regs[mfrc522.ControlReg] = 0x10
	c.regs[mfrc522.CollReg] = 0x80
	c.regs[mfrc522.ModeReg] = 0x3F
	c.regs[mfrc522.TxControlReg] = 0x80
	c.regs[mfrc522.TxSelReg] = 0x10
	c.regs[mfrc522.RxSelReg] = 0x84
	c.regs[mfrc522.RxThresholdReg] = 0x84
	c.regs[mfrc522.DemodReg] = 0x4D
	c.regs[mfrc522.MfTxReg] = 0x62
	c.regs[mfrc522.SerialSpeedReg] = 0xEB
	c.regs[mfrc522.CRCResultRegH] = 0xFF
	c.regs[mfrc522.CRCResultRegL] = 0xFF
	c.regs[mfrc522.ModWidthReg] = 0x26
	c.regs[mfrc522.RFCfgReg] = 0x48
	c.regs[mfrc522.GsNReg] = 0x88
	c.regs[mfrc522.CWGsPReg] = 0x20
	c.regs[mfrc522.ModGsPReg] = 0x20
}

// WriteRegister implements mfrc522.Transport
func (c *VirtualChip) WriteRegister(reg mfrc522.Register, values ...byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return mfrc522.ErrTransportClosed
	}
	for _, v := range values {
		c.write(reg, v)
	}
	return nil
}

func (c *VirtualChip) write(reg mfrc522.Register, v byte) {
	switch reg {
	case mfrc522.FIFODataReg:
		c.fifo = append(c.fifo, v)
	case mfrc522.FIFOLevelReg:
		if v&flushBuffer != 0 {
			c.fifo = nil
		}
	case mfrc522.ComIrqReg, mfrc522.DivIrqReg:
		if v&irqSet != 0 {
			c.regs[reg] |= v &^ irqSet
		} else {
			c.regs[reg] &^= v
		}
	case mfrc522.CommandReg:
		c.regs[reg] = v
		c.execute(v & cmdMask)
	case mfrc522.BitFramingReg:
		c.regs[reg] = v &^ startSend
		if v&startSend != 0 && c.regs[mfrc522.CommandReg]&cmdMask == byte(mfrc522.PCDTransceive) {
			c.transceive()
		}
	case mfrc522.VersionReg:
		// read only
	default:
		c.regs[reg&0x3F] = v
	}
}

func (c *VirtualChip) execute(cmd byte) {
	switch mfrc522.PCDCommand(cmd) {
	case mfrc522.PCDSoftReset:
		c.resetRegisters()
	case mfrc522.PCDCalcCRC:
		crc := frame.CRCA(c.fifo)
		c.regs[mfrc522.CRCResultRegL] = crc[0]
		c.regs[mfrc522.CRCResultRegH] = crc[1]
		c.regs[mfrc522.DivIrqReg] |= irqCRC
	}
}

// ReadRegister implements mfrc522.Transport
func (c *VirtualChip) ReadRegister(reg mfrc522.Register) (byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, mfrc522.ErrTransportClosed
	}
	return c.read(reg), nil
}

// ReadRegisterN implements mfrc522.Transport
func (c *VirtualChip) ReadRegisterN(reg mfrc522.Register, n int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, mfrc522.ErrTransportClosed
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = c.read(reg)
	}
	return out, nil
}

func (c *VirtualChip) read(reg mfrc522.Register) byte {
	switch reg {
	case mfrc522.FIFODataReg:
		if len(c.fifo) == 0 {
			return 0
		}
		v := c.fifo[0]
		c.fifo = c.fifo[1:]
		return v
	case mfrc522.FIFOLevelReg:
		return byte(len(c.fifo))
	case mfrc522.VersionReg:
		return c.version
	default:
		return c.regs[reg&0x3F]
	}
}

// Reset emulates a pulse on the NRSTPD pin
func (c *VirtualChip) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasResetPin {
		return mfrc522.ErrNoResetPin
	}
	c.resets++
	c.resetRegisters()
	return nil
}

// Close implements mfrc522.Transport
func (c *VirtualChip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// IsConnected implements mfrc522.Transport
func (c *VirtualChip) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

// Type implements mfrc522.Transport
func (*VirtualChip) Type() mfrc522.TransportType {
	return mfrc522.TransportMock
}

// transceive sends the FIFO content to the field and loads the answer
func (c *VirtualChip) transceive() {
	txLastBits := c.regs[mfrc522.BitFramingReg] & 0x07
	rxAlign := (c.regs[mfrc522.BitFramingReg] >> 4) & 0x07
	sent := c.fifo
	c.fifo = nil
	c.frames = append(c.frames, append([]byte(nil), sent...))
	c.regs[mfrc522.ErrorReg] = 0
	c.regs[mfrc522.ControlReg] &^= 0x07

	if c.regs[mfrc522.TxControlReg]&0x03 == 0 || len(sent) == 0 {
		c.noResponse()
		return
	}

	switch {
	case len(sent) == 1 && txLastBits == 7:
		c.handleRequest(sent[0])
	case sent[0] == frame.SelCL1 || sent[0] == frame.SelCL2 || sent[0] == frame.SelCL3:
		c.handleAnticollision(sent, rxAlign)
	case len(sent) == 4 && sent[0] == frame.HltA && frame.CheckCRCA(sent):
		for _, card := range c.cards {
			if card.state == stateActive {
				card.state = stateHalt
			}
		}
		c.noResponse()
	case len(sent) == 4 && sent[0] == frame.MifareRead && frame.CheckCRCA(sent):
		c.handleRead(sent[1])
	default:
		c.noResponse()
	}
}

func (c *VirtualChip) respond(data []byte) {
	c.fifo = append([]byte(nil), data...)
	c.regs[mfrc522.ComIrqReg] |= irqRx | irqIdle
}

func (c *VirtualChip) noResponse() {
	c.regs[mfrc522.ComIrqReg] |= irqTimer
}

func (c *VirtualChip) handleRequest(cmd byte) {
	var atqa []byte
	for _, card := range c.cards {
		answers := card.state == stateIdle || (cmd == frame.WupA && card.state == stateHalt)
		if cmd != frame.ReqA && cmd != frame.WupA {
			answers = false
		}
		if !answers {
			// A card that was active drops back when a new request starts
			if card.state == stateActive || card.state == stateReady {
				card.state = stateIdle
			}
			continue
		}
		card.state = stateReady
		card.level = 1
		if atqa == nil {
			atqa = card.ATQA[:]
		} else if atqa[0] != card.ATQA[0] || atqa[1] != card.ATQA[1] {
			c.regs[mfrc522.ErrorReg] |= errCollErr
		}
	}
	if atqa == nil {
		c.noResponse()
		return
	}
	c.respond(atqa)
}

func levelOf(sel byte) int {
	switch sel {
	case frame.SelCL2:
		return 2
	case frame.SelCL3:
		return 3
	default:
		return 1
	}
}

// bitAt returns bit i (LSB first within each byte) of data
func bitAt(data []byte, i int) byte {
	return (data[i/8] >> (i % 8)) & 1
}

func (c *VirtualChip) handleAnticollision(sent []byte, rxAlign byte) {
	level := levelOf(sent[0])
	if len(sent) < 2 {
		c.noResponse()
		return
	}
	nvb := sent[1]

	if nvb == frame.NVBSelect {
		c.handleSelect(sent, level)
		return
	}

	knownBits := (int(nvb>>4)-2)*8 + int(nvb&0x0F)
	if knownBits < 0 || knownBits >= uidBits {
		c.noResponse()
		return
	}
	known := sent[2:]

	var chunks [][5]byte
	for _, card := range c.cards {
		if card.state != stateReady || card.level != level {
			continue
		}
		chunk := card.chunk(level)
		match := true
		for i := 0; i < knownBits; i++ {
			if bitAt(chunk[:], i) != bitAt(known, i) {
				match = false
				break
			}
		}
		if match {
			chunks = append(chunks, chunk)
		}
	}
	if len(chunks) == 0 {
		c.noResponse()
		return
	}

	received := chunks[0]
	collision := -1
	for i := knownBits; i < chunkBits && collision < 0; i++ {
		for _, other := range chunks[1:] {
			if bitAt(other[:], i) != bitAt(received[:], i) {
				collision = i
				break
			}
		}
	}
	if collision >= 0 {
		// ValuesAfterColl cleared: bits from the collision on read as zero
		for i := collision; i < chunkBits; i++ {
			received[i/8] &^= 1 << (i % 8)
		}
		c.regs[mfrc522.ErrorReg] |= errCollErr
		c.regs[mfrc522.CollReg] = byte((collision+1)&0x1F) | (c.regs[mfrc522.CollReg] & 0x80)
	}

	resp := append([]byte(nil), received[knownBits/8:]...)
	resp[0] &= byte(0xFF << rxAlign)
	c.respond(resp)
}

func (c *VirtualChip) handleSelect(sent []byte, level int) {
	if len(sent) != frame.SelectLength || !frame.CheckCRCA(sent) {
		c.noResponse()
		return
	}

	var selected *VirtualCard
	for _, card := range c.cards {
		if card.state != stateReady || card.level != level {
			continue
		}
		chunk := card.chunk(level)
		if string(chunk[:]) == string(sent[2:7]) {
			selected = card
			continue
		}
		card.state = stateIdle
	}
	if selected == nil {
		c.noResponse()
		return
	}

	sak := selected.sak(level)
	if sak&frame.SAKCascadeBit != 0 {
		selected.level = level + 1
	} else {
		selected.state = stateActive
	}
	c.respond(frame.AppendCRCA([]byte{sak}))
}

func (c *VirtualChip) handleRead(page byte) {
	for _, card := range c.cards {
		if card.state != stateActive {
			continue
		}
		if card.Memory == nil {
			// MIFARE Classic without authentication answers with a 4 bit NAK
			c.fifo = []byte{0x04}
			c.regs[mfrc522.ControlReg] = c.regs[mfrc522.ControlReg]&^0x07 | 0x04
			c.regs[mfrc522.ComIrqReg] |= irqRx | irqIdle
			return
		}
		c.respond(frame.AppendCRCA(card.readPages(page)))
		return
	}
	c.noResponse()
}

var _ mfrc522.Transport = (*VirtualChip)(nil)
