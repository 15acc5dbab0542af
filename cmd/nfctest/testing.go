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
	"context"
	"errors"
	"fmt"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
)

// Testing handles reader and card testing
type Testing struct {
	config *Config
	output *Output
}

// NewTesting creates a new testing handler
func NewTesting(config *Config, output *Output) *Testing {
	return &Testing{
		config: config,
		output: output,
	}
}

// TestReader checks an initialized device: chip version and antenna
func (t *Testing) TestReader(ctx context.Context, device *mfrc522.Device) error {
	version, err := device.ReadVersion(ctx)
	if err != nil {
		t.output.TestFailure()
		return fmt.Errorf("failed to read chip version: %w", err)
	}
	if !version.Valid() {
		t.output.TestFailure()
		return fmt.Errorf("%w: chip version %s", mfrc522.ErrCommunicationFailed, version)
	}

	gain, err := device.AntennaGain(ctx)
	if err != nil {
		t.output.TestFailure()
		return fmt.Errorf("failed to read antenna gain: %w", err)
	}

	t.output.TestSuccess(version, gain)
	return nil
}

// TestCard runs the tests that fit the selected card. It must run before
// the card is halted.
func (t *Testing) TestCard(ctx context.Context, device *mfrc522.Device, card *mfrc522.DetectedCard) error {
	if err := mfrc522.ValidateUID(card.UID.Bytes); err != nil {
		return err
	}

	switch card.UID.Type() {
	case mfrc522.PICCTypeMifareUL:
		return t.testType2Tag(ctx, device)
	case mfrc522.PICCTypeMifareMini, mfrc522.PICCTypeMifare1K, mfrc522.PICCTypeMifare4K:
		t.output.printf("   MIFARE Classic: sector data needs authentication, only the UID is tested\n")
		return nil
	case mfrc522.PICCTypeNotComplete:
		return errors.New("UID incomplete after select")
	default:
		t.output.printf("   %s: no specific tests\n", card.UID.Type())
		return nil
	}
}

// testType2Tag tests Ultralight/NTAG operations
func (t *Testing) testType2Tag(ctx context.Context, device *mfrc522.Device) error {
	t.output.printf("   Reading capability container...")
	config := mfrc522.DefaultValidationConfig()
	if _, err := device.ReadBlockValidated(ctx, 3, config); err != nil {
		t.output.printf(" ERROR: Failed: %v\n", err)
		return fmt.Errorf("failed to read capability container: %w", err)
	}
	t.output.printf(" OK\n")

	t.output.printf("   TESTING: Reading NDEF data...")
	msg, err := device.ReadNDEF(ctx)
	t.output.NDEFResults(msg, err)

	t.testStress(ctx, device)
	return nil
}

// testStress performs rapid reads of page 0
func (t *Testing) testStress(ctx context.Context, device *mfrc522.Device) {
	reads := t.config.StressReads
	if reads <= 0 || t.config.Quick {
		return
	}
	t.output.printf("   STRESS: Stress test (%d rapid reads)...", reads)
	success := 0
	for range reads {
		if _, err := device.ReadBlock(ctx, 0); err == nil {
			success++
		}
	}
	t.output.printf(" OK: %d/%d succeeded\n", success, reads)
}
