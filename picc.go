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
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/go-mfrc522/internal/frame"
)

// selectCommands holds the SEL byte for each cascade level
var selectCommands = [...]byte{frame.SelCL1, frame.SelCL2, frame.SelCL3}

// DetectedCard is a card that answered a request and completed select
type DetectedCard struct {
	DetectedAt time.Time
	UID        *UID
	ATQA       []byte
}

// RequestA sends REQA; only cards in IDLE state answer. It returns the ATQA.
// Collisions are reported as ErrCollision together with the partial ATQA.
func (d *Device) RequestA(ctx context.Context) ([]byte, error) {
	return d.requestOrWakeup(ctx, frame.ReqA)
}

// WakeupA sends WUPA; cards in IDLE and HALT state answer. It returns the ATQA.
func (d *Device) WakeupA(ctx context.Context) ([]byte, error) {
	return d.requestOrWakeup(ctx, frame.WupA)
}

func (d *Device) requestOrWakeup(ctx context.Context, cmd byte) ([]byte, error) {
	// ValuesAfterColl = 1 => bits received after collision are cleared
	if err := d.clearBits(CollReg, bitValuesAfterCol); err != nil {
		return nil, err
	}

	// REQA and WUPA are 7 bit short frames
	atqa, validBits, err := d.Transceive(ctx, []byte{cmd}, 7, 0, false)
	if err != nil {
		return atqa, err
	}
	if len(atqa) != 2 || validBits != 0 {
		return atqa, fmt.Errorf("%w: ATQA of %d bytes, %d valid bits", ErrProtocol, len(atqa), validBits)
	}
	return atqa, nil
}

// resetBaudRates restores 106 kBd and the default modulation width. A card
// selected at a higher rate may have left the chip in another mode.
func (d *Device) resetBaudRates() error {
	for _, w := range []struct {
		reg   Register
		value byte
	}{
		{TxModeReg, 0x00},
		{RxModeReg, 0x00},
		{ModWidthReg, initModWidth},
	} {
		if err := d.writeRegister(w.reg, w.value); err != nil {
			return err
		}
	}
	return nil
}

// IsNewCardPresent returns true if a card in IDLE state answers REQA.
// Cards in HALT state are ignored.
func (d *Device) IsNewCardPresent() bool {
	return d.IsNewCardPresentContext(context.Background())
}

// IsNewCardPresentContext is IsNewCardPresent with context support
func (d *Device) IsNewCardPresentContext(ctx context.Context) bool {
	if err := d.resetBaudRates(); err != nil {
		debugf("reset baud rates: %v", err)
		return false
	}
	_, err := d.RequestA(ctx)
	return err == nil || errors.Is(err, ErrCollision)
}

// ReadCardSerial selects one card in the field and returns its UID.
// IsNewCardPresent or WakeupA must be called first.
func (d *Device) ReadCardSerial() (*UID, error) {
	return d.ReadCardSerialContext(context.Background())
}

// ReadCardSerialContext is ReadCardSerial with context support
func (d *Device) ReadCardSerialContext(ctx context.Context) (*UID, error) {
	return d.Select(ctx)
}

// DetectCard looks for a card and selects it. With wake set it uses WUPA so
// that halted cards answer as well. ErrNoCard means the field is empty.
func (d *Device) DetectCard(ctx context.Context, wake bool) (*DetectedCard, error) {
	if err := d.resetBaudRates(); err != nil {
		return nil, err
	}

	request := d.RequestA
	if wake {
		request = d.WakeupA
	}
	atqa, err := request(ctx)
	switch {
	case errors.Is(err, ErrTimeout):
		return nil, ErrNoCard
	case err != nil && !errors.Is(err, ErrCollision):
		return nil, err
	}

	uid, err := d.Select(ctx)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}

	return &DetectedCard{
		UID:        uid,
		ATQA:       atqa,
		DetectedAt: time.Now(),
	}, nil
}

// Select runs the anticollision loop and select for every cascade level and
// returns the complete UID with the final SAK
func (d *Device) Select(ctx context.Context) (*UID, error) {
	if err := d.clearBits(CollReg, bitValuesAfterCol); err != nil {
		return nil, err
	}

	uid := &UID{}
	for _, sel := range selectCommands {
		chunk, sak, err := d.selectCascadeLevel(ctx, sel)
		if err != nil {
			return nil, err
		}

		if sak&frame.SAKCascadeBit == 0 {
			uid.Bytes = append(uid.Bytes, chunk...)
			uid.SAK = sak
			debugf("selected card %s, SAK 0x%02X", uid, sak)
			return uid, nil
		}

		// UID not complete: the first byte of this level is the cascade tag
		if chunk[0] != frame.CascadeTag {
			return nil, fmt.Errorf("%w: cascade bit set without cascade tag", ErrProtocol)
		}
		uid.Bytes = append(uid.Bytes, chunk[1:]...)
	}

	return nil, fmt.Errorf("%w: UID longer than three cascade levels", ErrInternal)
}

// selectCascadeLevel resolves collisions bit by bit until all 32 UID bits of
// the level are known, then selects the card. It returns the four UID bytes
// of the level (which may start with the cascade tag) and the SAK.
func (d *Device) selectCascadeLevel(ctx context.Context, sel byte) ([]byte, byte, error) {
	var buf [frame.SelectLength]byte
	buf[0] = sel
	knownBits := 0
	collided := false

	for knownBits < 32 {
		txLastBits := byte(knownBits % 8)
		index := 2 + knownBits/8
		// NVB: upper nibble whole bytes, lower nibble extra bits
		buf[1] = byte(index<<4) | txLastBits
		used := index
		if txLastBits != 0 {
			used++
		}

		resp, _, err := d.Transceive(ctx, buf[:used], txLastBits, txLastBits, false)
		mergeResponse(buf[:], index, txLastBits, resp)

		if errors.Is(err, ErrCollision) {
			pos, collErr := d.collisionPosition()
			if collErr != nil {
				return nil, 0, collErr
			}
			if pos <= knownBits {
				return nil, 0, fmt.Errorf("%w: collision at bit %d, %d bits already known",
					ErrInternal, pos, knownBits)
			}
			knownBits = pos
			// Choose the card with a 1 at the collision position
			bit := (knownBits - 1) % 8
			buf[2+(knownBits-1)/8] |= 1 << bit
			debugf("anticollision: collision at bit %d", knownBits)
			collided = true
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		collided = false
		knownBits = 32
	}

	// All UID bits of this level known: SELECT
	if collided {
		// The collision on the last UID bit cut off the BCC
		buf[6] = frame.BCC(buf[2:6])
	} else if bcc := frame.BCC(buf[2:6]); buf[6] != bcc {
		return nil, 0, fmt.Errorf("%w: BCC 0x%02X, expected 0x%02X", ErrProtocol, buf[6], bcc)
	}
	buf[1] = frame.NVBSelect
	selectFrame, err := d.appendCRC(ctx, buf[:7])
	if err != nil {
		return nil, 0, err
	}

	resp, validBits, err := d.Transceive(ctx, selectFrame, 0, 0, false)
	if err != nil {
		return nil, 0, err
	}
	// SAK is one byte followed by CRC_A
	if len(resp) != 3 || validBits != 0 {
		return nil, 0, fmt.Errorf("%w: SAK of %d bytes, %d valid bits", ErrProtocol, len(resp), validBits)
	}
	crc, err := d.CalculateCRC(ctx, resp[:1])
	if err != nil {
		return nil, 0, err
	}
	if crc[0] != resp[1] || crc[1] != resp[2] {
		return nil, 0, ErrCRCWrong
	}

	chunk := make([]byte, frame.UIDChunkLength)
	copy(chunk, buf[2:6])
	return chunk, resp[0], nil
}

// collisionPosition returns the 1-based position of the first colliding bit
func (d *Device) collisionPosition() (int, error) {
	coll, err := d.readRegister(CollReg)
	if err != nil {
		return 0, err
	}
	if coll&bitCollPosInvalid != 0 {
		// Without a valid collision position we cannot continue
		return 0, ErrCollision
	}
	pos := int(coll & collPosMask)
	if pos == 0 {
		pos = 32
	}
	return pos, nil
}

// mergeResponse copies an anticollision response into buf starting at index.
// When the response is bit aligned the low rxAlign bits of the first byte
// belong to what was sent and are kept.
func mergeResponse(buf []byte, index int, rxAlign byte, resp []byte) {
	for i, b := range resp {
		pos := index + i
		if pos >= len(buf) {
			return
		}
		if i == 0 && rxAlign != 0 {
			mask := byte(0xFF << rxAlign)
			buf[pos] = buf[pos]&^mask | b&mask
			continue
		}
		buf[pos] = b
	}
}

// HaltA instructs the selected card to go to HALT state
func (d *Device) HaltA() error {
	return d.HaltAContext(context.Background())
}

// HaltAContext is HaltA with context support
func (d *Device) HaltAContext(ctx context.Context) error {
	halt, err := d.appendCRC(ctx, []byte{frame.HltA, 0x00})
	if err != nil {
		return err
	}

	// The card signals success by not answering within 1 ms; any response
	// means it did not halt
	_, err = d.communicate(ctx, PCDTransceive, bitRxIRq|bitIdleIRq, exchange{send: halt})
	switch {
	case errors.Is(err, ErrTimeout):
		return nil
	case err != nil:
		return err
	default:
		debugln("card answered HLTA")
		return fmt.Errorf("%w: card answered HLTA", ErrProtocol)
	}
}
