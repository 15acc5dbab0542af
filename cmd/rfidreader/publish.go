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
	"encoding/json"
	"fmt"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/notify"
)

// cardEvent is published for every card change
type cardEvent struct {
	Time     time.Time `json:"time"`
	Event    string    `json:"event"`
	UID      string    `json:"uid,omitempty"`
	Type     string    `json:"type,omitempty"`
	NDEF     string    `json:"ndef,omitempty"`
	SAK      byte      `json:"sak,omitempty"`
	UIDBytes int       `json:"uidSize,omitempty"`
}

const (
	eventDetected = "detected"
	eventRemoved  = "removed"
)

// eventPublisher sends card events to NATS; a nil publisher drops them
type eventPublisher struct {
	pub     notify.Publisher
	subject string
}

func newCardEvent(event string, uid *mfrc522.UID) cardEvent {
	e := cardEvent{Time: time.Now().UTC(), Event: event}
	if uid != nil {
		e.UID = uid.String()
		e.SAK = uid.SAK
		e.Type = uid.Type().String()
		e.UIDBytes = uid.Size()
	}
	return e
}

func (p *eventPublisher) publish(e cardEvent) error {
	if p == nil || p.pub == nil {
		return nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := p.pub.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	return nil
}
