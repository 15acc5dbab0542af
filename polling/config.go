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

package polling

import (
	"errors"
	"fmt"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
)

// ErrInvalidConfig is returned by Config.Validate
var ErrInvalidConfig = errors.New("invalid polling configuration")

// Config holds the poll loop timing
type Config struct {
	// PollInterval is the pause between two detection rounds
	PollInterval time.Duration
	// CardRemovalTimeout is how long a tracked card may stay silent before
	// it counts as removed
	CardRemovalTimeout time.Duration
	// IdleTimeout is how long the field must stay empty before polling slows down
	IdleTimeout time.Duration
	// MaxIdleInterval caps the slowed down interval
	MaxIdleInterval time.Duration
	// ErrorRetryDelay is the first pause after a failed round. It doubles
	// with every further failure up to the regular interval. Zero waits the
	// regular interval.
	ErrorRetryDelay time.Duration
	// TrackRemoval uses WUPA so halted cards keep answering and removal can
	// be observed. Without it every newly presented card is reported once.
	TrackRemoval bool
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		PollInterval:       50 * time.Millisecond,
		CardRemovalTimeout: 600 * time.Millisecond,
		IdleTimeout:        5 * time.Second,
		MaxIdleInterval:    500 * time.Millisecond,
		ErrorRetryDelay:    10 * time.Millisecond,
	}
}

// ConfigFor returns the default configuration with intervals tuned for the
// device's transport
func ConfigFor(device *mfrc522.Device) *Config {
	config := DefaultConfig()
	timing := mfrc522.PollTimingFor(device.Transport())
	config.PollInterval = timing.Interval
	config.MaxIdleInterval = timing.IdleInterval
	config.ErrorRetryDelay = timing.RetryDelay
	return config
}

// Validate checks that all durations are usable
func (c *Config) Validate() error {
	switch {
	case c.PollInterval <= 0:
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidConfig)
	case c.CardRemovalTimeout <= 0:
		return fmt.Errorf("%w: card removal timeout must be positive", ErrInvalidConfig)
	case c.MaxIdleInterval < 0 || c.IdleTimeout < 0 || c.ErrorRetryDelay < 0:
		return fmt.Errorf("%w: idle settings must not be negative", ErrInvalidConfig)
	}
	return nil
}
