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
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-mfrc522/internal/transport"
)

// fifoSize is the size of the MFRC522 FIFO buffer
const fifoSize = 64

func (d *Device) writeRegister(reg Register, values ...byte) error {
	if err := d.transport.WriteRegister(reg, values...); err != nil {
		return fmt.Errorf("write register 0x%02X: %w", byte(reg), err)
	}
	return nil
}

func (d *Device) readRegister(reg Register) (byte, error) {
	value, err := d.transport.ReadRegister(reg)
	if err != nil {
		return 0, fmt.Errorf("read register 0x%02X: %w", byte(reg), err)
	}
	return value, nil
}

func (d *Device) setBits(reg Register, mask byte) error {
	value, err := d.readRegister(reg)
	if err != nil {
		return err
	}
	return d.writeRegister(reg, value|mask)
}

func (d *Device) clearBits(reg Register, mask byte) error {
	value, err := d.readRegister(reg)
	if err != nil {
		return err
	}
	return d.writeRegister(reg, value&^mask)
}

// CalculateCRC computes the CRC_A of data with the chip's CRC coprocessor.
// The result is in transmission order (LSB first).
func (d *Device) CalculateCRC(ctx context.Context, data []byte) ([2]byte, error) {
	var result [2]byte
	if len(data) > fifoSize {
		return result, fmt.Errorf("%w: %d bytes do not fit the FIFO", ErrNoRoom, len(data))
	}

	setup := []struct {
		reg    Register
		values []byte
	}{
		{CommandReg, []byte{byte(PCDIdle)}},
		{DivIrqReg, []byte{bitCRCIRq}},
		{FIFOLevelReg, []byte{bitFlushBuffer}},
		{FIFODataReg, data},
		{CommandReg, []byte{byte(PCDCalcCRC)}},
	}
	for _, s := range setup {
		if len(s.values) == 0 {
			continue
		}
		if err := d.writeRegister(s.reg, s.values...); err != nil {
			return result, fmt.Errorf("calculate CRC: %w", err)
		}
	}

	_, err := transport.PollUntil(ctx, d.config.CRCTimeout, 0, func() (struct{}, bool, error) {
		irq, err := d.readRegister(DivIrqReg)
		if err != nil {
			return struct{}{}, false, err
		}
		return struct{}{}, irq&bitCRCIRq == 0, nil
	})
	if err != nil {
		if errors.Is(err, transport.ErrDeadlineReached) {
			return result, fmt.Errorf("calculate CRC: %w", ErrTimeout)
		}
		return result, fmt.Errorf("calculate CRC: %w", err)
	}

	// Stop calculating CRC for new content in the FIFO
	if err := d.writeRegister(CommandReg, byte(PCDIdle)); err != nil {
		return result, err
	}

	low, err := d.readRegister(CRCResultRegL)
	if err != nil {
		return result, err
	}
	high, err := d.readRegister(CRCResultRegH)
	if err != nil {
		return result, err
	}
	result[0], result[1] = low, high
	return result, nil
}

// appendCRC returns data followed by its chip computed CRC_A
func (d *Device) appendCRC(ctx context.Context, data []byte) ([]byte, error) {
	crc, err := d.CalculateCRC(ctx, data)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(data)+2)
	out = append(out, data...)
	return append(out, crc[0], crc[1]), nil
}

// exchange describes one Transceive run
type exchange struct {
	send []byte
	// txLastBits is the number of valid bits in the last sent byte, 0 means all 8
	txLastBits byte
	// rxAlign is the bit position where the first received bit is stored
	rxAlign byte
	// maxResponse is the response buffer size, 0 when no response is read
	maxResponse int
	checkCRC    bool
}

// exchangeResult is the data read back from the FIFO
type exchangeResult struct {
	data []byte
	// validBits in the last received byte, 0 means all 8
	validBits byte
}

// Transceive sends data to the card in the field and returns its response.
// validBits is the number of valid bits in the last byte (0 for all), rxAlign
// the bit position of the first received bit. When checkCRC is set the
// response must end with a valid CRC_A.
func (d *Device) Transceive(
	ctx context.Context, data []byte, validBits, rxAlign byte, checkCRC bool,
) ([]byte, byte, error) {
	res, err := d.communicate(ctx, PCDTransceive, bitRxIRq|bitIdleIRq, exchange{
		send:        data,
		txLastBits:  validBits,
		rxAlign:     rxAlign,
		maxResponse: fifoSize,
		checkCRC:    checkCRC,
	})
	return res.data, res.validBits, err
}

// communicate transfers data to the FIFO, executes a command, waits for
// completion and reads the response back
func (d *Device) communicate(ctx context.Context, cmd PCDCommand, waitIRq byte, ex exchange) (exchangeResult, error) {
	var res exchangeResult
	if !d.initialized {
		return res, ErrNotInitialized
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if ex.txLastBits > 7 || ex.rxAlign > 7 {
		return res, ErrInvalid
	}
	if len(ex.send) > fifoSize {
		return res, fmt.Errorf("%w: %d bytes do not fit the FIFO", ErrNoRoom, len(ex.send))
	}

	bitFraming := ex.rxAlign<<4 | ex.txLastBits
	setup := []struct {
		reg    Register
		values []byte
	}{
		{CommandReg, []byte{byte(PCDIdle)}},    // stop any active command
		{ComIrqReg, []byte{clearAllIRqs}},      // clear all seven interrupt request bits
		{FIFOLevelReg, []byte{bitFlushBuffer}}, // FlushBuffer = 1, FIFO initialization
		{FIFODataReg, ex.send},                 // write data to the FIFO
		{BitFramingReg, []byte{bitFraming}},    // bit adjustments
		{CommandReg, []byte{byte(cmd)}},        // execute the command
	}
	for _, s := range setup {
		if len(s.values) == 0 {
			continue
		}
		if err := d.writeRegister(s.reg, s.values...); err != nil {
			return res, err
		}
	}
	if cmd == PCDTransceive {
		if err := d.setBits(BitFramingReg, bitStartSend); err != nil {
			return res, err
		}
	}

	if err := d.waitForCommand(ctx, waitIRq); err != nil {
		return res, err
	}

	errReg, err := d.readRegister(ErrorReg)
	if err != nil {
		return res, err
	}
	if errReg&errorRegFatal != 0 {
		return res, fmt.Errorf("%w: ErrorReg 0x%02X", ErrProtocol, errReg)
	}

	if ex.maxResponse > 0 {
		level, err := d.readRegister(FIFOLevelReg)
		if err != nil {
			return res, err
		}
		if int(level) > ex.maxResponse {
			return res, ErrNoRoom
		}
		if level > 0 {
			res.data, err = d.transport.ReadRegisterN(FIFODataReg, int(level))
			if err != nil {
				return res, fmt.Errorf("read FIFO: %w", err)
			}
		}
		control, err := d.readRegister(ControlReg)
		if err != nil {
			return res, err
		}
		res.validBits = control & rxLastBitsMask
	}

	if errReg&errorRegColl != 0 {
		return res, ErrCollision
	}

	if ex.maxResponse > 0 && ex.checkCRC {
		if err := d.verifyResponseCRC(ctx, res); err != nil {
			return res, err
		}
	}

	return res, nil
}

// waitForCommand waits until one of the waitIRq bits is set. The timer IRQ
// means no card answered within the 25 ms programmed by Init.
func (d *Device) waitForCommand(ctx context.Context, waitIRq byte) error {
	_, err := transport.PollUntil(ctx, d.config.Timeout, 0, func() (struct{}, bool, error) {
		irq, err := d.readRegister(ComIrqReg)
		if err != nil {
			return struct{}{}, false, err
		}
		if irq&waitIRq != 0 {
			return struct{}{}, false, nil
		}
		if irq&bitTimerIRq != 0 {
			return struct{}{}, false, ErrTimeout
		}
		return struct{}{}, true, nil
	})
	if errors.Is(err, transport.ErrDeadlineReached) {
		return ErrTimeout
	}
	return err
}

func (d *Device) verifyResponseCRC(ctx context.Context, res exchangeResult) error {
	// A 4 bit response is a MIFARE ACK/NAK
	if len(res.data) == 1 && res.validBits == 4 {
		return ErrMifareNACK
	}
	if len(res.data) < 2 || res.validBits != 0 {
		return ErrCRCWrong
	}

	n := len(res.data) - 2
	crc, err := d.CalculateCRC(ctx, res.data[:n])
	if err != nil {
		return err
	}
	if !bytes.Equal(crc[:], res.data[n:]) {
		return ErrCRCWrong
	}
	return nil
}
