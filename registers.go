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

import "fmt"

// Register is an MFRC522 register address (datasheet section 9)
type Register byte

// Page 0: command and status
const (
	CommandReg    Register = 0x01 // starts and stops command execution
	ComIEnReg     Register = 0x02 // enable and disable interrupt request control bits
	DivIEnReg     Register = 0x03 // enable and disable interrupt request control bits
	ComIrqReg     Register = 0x04 // interrupt request bits
	DivIrqReg     Register = 0x05 // interrupt request bits
	ErrorReg      Register = 0x06 // error bits showing the error status of the last command executed
	Status1Reg    Register = 0x07 // communication status bits
	Status2Reg    Register = 0x08 // receiver and transmitter status bits
	FIFODataReg   Register = 0x09 // input and output of 64 byte FIFO buffer
	FIFOLevelReg  Register = 0x0A // number of bytes stored in the FIFO buffer
	WaterLevelReg Register = 0x0B // level for FIFO underflow and overflow warning
	ControlReg    Register = 0x0C // miscellaneous control registers
	BitFramingReg Register = 0x0D // adjustments for bit-oriented frames
	CollReg       Register = 0x0E // bit position of the first bit-collision detected on the RF interface
)

// Page 1: command
const (
	ModeReg        Register = 0x11 // defines general modes for transmitting and receiving
	TxModeReg      Register = 0x12 // defines transmission data rate and framing
	RxModeReg      Register = 0x13 // defines reception data rate and framing
	TxControlReg   Register = 0x14 // controls the logical behavior of the antenna driver pins TX1 and TX2
	TxASKReg       Register = 0x15 // controls the setting of the transmission modulation
	TxSelReg       Register = 0x16 // selects the internal sources for the antenna driver
	RxSelReg       Register = 0x17 // selects internal receiver settings
	RxThresholdReg Register = 0x18 // selects thresholds for the bit decoder
	DemodReg       Register = 0x19 // defines demodulator settings
	MfTxReg        Register = 0x1C // controls some MIFARE communication transmit parameters
	MfRxReg        Register = 0x1D // controls some MIFARE communication receive parameters
	SerialSpeedReg Register = 0x1F // selects the speed of the serial UART interface
)

// Page 2: configuration
const (
	CRCResultRegH     Register = 0x21 // shows the MSB and LSB values of the CRC calculation
	CRCResultRegL     Register = 0x22
	ModWidthReg       Register = 0x24 // controls the ModWidth setting
	RFCfgReg          Register = 0x26 // configures the receiver gain
	GsNReg            Register = 0x27 // selects the conductance of the antenna driver pins
	CWGsPReg          Register = 0x28
	ModGsPReg         Register = 0x29
	TModeReg          Register = 0x2A // defines settings for the internal timer
	TPrescalerReg     Register = 0x2B
	TReloadRegH       Register = 0x2C // defines the 16-bit timer reload value
	TReloadRegL       Register = 0x2D
	TCounterValueRegH Register = 0x2E // shows the 16-bit timer value
	TCounterValueRegL Register = 0x2F
)

// Page 3: test registers
const (
	TestSel1Reg     Register = 0x31
	TestSel2Reg     Register = 0x32
	TestPinEnReg    Register = 0x33
	TestPinValueReg Register = 0x34
	TestBusReg      Register = 0x35
	AutoTestReg     Register = 0x36
	VersionReg      Register = 0x37 // shows the software version
	AnalogTestReg   Register = 0x38
	TestDAC1Reg     Register = 0x39
	TestDAC2Reg     Register = 0x3A
	TestADCReg      Register = 0x3B
)

// Register bits used by the driver
const (
	bitPowerDown      = 0x10 // CommandReg
	bitTimerIRq       = 0x01 // ComIrqReg
	bitIdleIRq        = 0x10 // ComIrqReg
	bitRxIRq          = 0x20 // ComIrqReg
	bitCRCIRq         = 0x04 // DivIrqReg
	bitFlushBuffer    = 0x80 // FIFOLevelReg
	bitStartSend      = 0x80 // BitFramingReg
	bitValuesAfterCol = 0x80 // CollReg
	bitCollPosInvalid = 0x20 // CollReg
	collPosMask       = 0x1F // CollReg
	rxLastBitsMask    = 0x07 // ControlReg
	antennaBits       = 0x03 // TxControlReg Tx1RFEn | Tx2RFEn
	rxGainMask        = 0x70 // RFCfgReg
	clearAllIRqs      = 0x7F // ComIrqReg, Set1 cleared

	// ErrorReg: BufferOvfl | ParityErr | ProtocolErr
	errorRegFatal = 0x13
	errorRegColl  = 0x08
)

// PCDCommand is a command executed by the MFRC522 itself (datasheet section 10)
type PCDCommand byte

const (
	PCDIdle             PCDCommand = 0x00 // no action, cancels current command execution
	PCDMem              PCDCommand = 0x01 // stores 25 bytes into the internal buffer
	PCDGenerateRandomID PCDCommand = 0x02 // generates a 10-byte random ID number
	PCDCalcCRC          PCDCommand = 0x03 // activates the CRC coprocessor or performs a self-test
	PCDTransmit         PCDCommand = 0x04 // transmits data from the FIFO buffer
	PCDNoCmdChange      PCDCommand = 0x07 // no command change
	PCDReceive          PCDCommand = 0x08 // activates the receiver circuits
	PCDTransceive       PCDCommand = 0x0C // transmits data from FIFO buffer to antenna and activates the receiver
	PCDMFAuthent        PCDCommand = 0x0E // performs the MIFARE standard authentication as a reader
	PCDSoftReset        PCDCommand = 0x0F // resets the MFRC522
)

// RxGain is the receiver gain in RFCfgReg bits 6..4
type RxGain byte

const (
	RxGain18dB  RxGain = 0x00
	RxGain23dB  RxGain = 0x10
	RxGain18dB2 RxGain = 0x20 // duplicate of 18 dB
	RxGain23dB2 RxGain = 0x30 // duplicate of 23 dB
	RxGain33dB  RxGain = 0x40
	RxGain38dB  RxGain = 0x50
	RxGain43dB  RxGain = 0x60
	RxGain48dB  RxGain = 0x70
	RxGainMin   RxGain = RxGain18dB
	RxGainAvg   RxGain = RxGain33dB
	RxGainMax   RxGain = RxGain48dB
)

// String returns the gain in dB
func (g RxGain) String() string {
	db := [...]int{18, 23, 18, 23, 33, 38, 43, 48}
	return fmt.Sprintf("%d dB", db[(g>>4)&0x07])
}
