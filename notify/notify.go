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

// Package notify delivers user facing notifications. Notifications carry
// the names of the sounds a desktop player should use; nothing here plays
// audio.
package notify

import (
	"context"
	"errors"
	"math/rand/v2"
)

// Level is the severity of a notification
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// MarshalText encodes the level by name
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Sound sets used by the clocking agent
var (
	SoundsAlert        = []string{"alert_high-intensity.wav"}
	SoundsUserDetected = []string{"notification_decorative-01.wav", "notification_simple-02.wav"}
	SoundsFinished     = []string{
		"hero_decorative-celebration-01.wav",
		"hero_decorative-celebration-02.wav",
		"hero_decorative-celebration-03.wav",
		"hero_simple-celebration-01.wav",
		"hero_simple-celebration-02.wav",
		"hero_simple-celebration-03.wav",
	}
	SoundWorking = "ui_loading.wav"
)

// Notification is one message for the user
type Notification struct {
	Title   string
	Message string
	// Sounds lists candidates; a player picks one of them
	Sounds []string
	Level  Level
	// Loops repeats the sound; -1 loops until the next notification
	Loops int
}

// Sound picks one of the candidate sounds at random
func (n Notification) Sound() string {
	switch len(n.Sounds) {
	case 0:
		return ""
	case 1:
		return n.Sounds[0]
	default:
		return n.Sounds[rand.IntN(len(n.Sounds))] //nolint:gosec // not security relevant
	}
}

// Notifier delivers notifications
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Multi sends every notification to all notifiers
type Multi []Notifier

// Notify delivers to every notifier and joins their errors
func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range m {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
