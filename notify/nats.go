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

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is where notifications are published
const DefaultSubject = "cronos.notifications"

// Publisher is the part of *nats.Conn used for publishing
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Connect opens a NATS connection. An empty token connects without auth.
func Connect(url, name, token string) (*nats.Conn, error) {
	if url == "" {
		url = nats.DefaultURL
	}

	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
	}
	// if token provided
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}
	return conn, nil
}

// message is the JSON document published for every notification
type message struct {
	Time    time.Time `json:"time"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Level   Level     `json:"level"`
	Sound   string    `json:"sound,omitempty"`
	Loops   int       `json:"loops,omitempty"`
}

// NATS publishes notifications as JSON
type NATS struct {
	pub     Publisher
	subject string
}

// NewNATS returns a NATS notifier publishing on subject (DefaultSubject if empty)
func NewNATS(pub Publisher, subject string) *NATS {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATS{pub: pub, subject: subject}
}

// Notify publishes n
func (p *NATS) Notify(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(message{
		Time:    time.Now().UTC(),
		Title:   n.Title,
		Message: n.Message,
		Level:   n.Level,
		Sound:   n.Sound(),
		Loops:   n.Loops,
	})
	if err != nil {
		return err
	}
	if err := p.pub.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	return nil
}
