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

// Package agent clocks users in or out when their card is presented
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/go-mfrc522/clock"
	"github.com/ZaparooProject/go-mfrc522/console"
	"github.com/ZaparooProject/go-mfrc522/notify"
	"github.com/ZaparooProject/go-mfrc522/users"
	log "github.com/sirupsen/logrus"
)

// UserLookup finds the owner of a card
type UserLookup interface {
	LookupByCard(ctx context.Context, uid string) (*users.User, error)
}

// Decrypter turns a stored password token into the password
type Decrypter interface {
	Decrypt(token string) (string, error)
}

// CardSource yields card UIDs from a reader console
type CardSource interface {
	WaitReady(ctx context.Context, timeout time.Duration) error
	Next(ctx context.Context) (string, error)
}

// Option configures an Agent
type Option func(*Agent)

// WithLogger sets the logger, the logrus standard logger by default
func WithLogger(logger log.FieldLogger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithInitTimeout sets how long Run waits for the reader banner
func WithInitTimeout(timeout time.Duration) Option {
	return func(a *Agent) {
		a.initTimeout = timeout
	}
}

// Agent handles presented cards
type Agent struct {
	users       UserLookup
	cipher      Decrypter
	clocker     clock.Clocker
	notifier    notify.Notifier
	logger      log.FieldLogger
	initTimeout time.Duration
}

// New returns an Agent. All dependencies are required.
func New(lookup UserLookup, cipher Decrypter, clocker clock.Clocker, notifier notify.Notifier,
	opts ...Option,
) (*Agent, error) {
	if lookup == nil || cipher == nil || clocker == nil || notifier == nil {
		return nil, errors.New("agent: user lookup, cipher, clocker and notifier are required")
	}

	a := &Agent{
		users:       lookup,
		cipher:      cipher,
		clocker:     clocker,
		notifier:    notifier,
		logger:      log.StandardLogger(),
		initTimeout: console.DefaultInitTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Agent) notify(ctx context.Context, n notify.Notification) {
	if err := a.notifier.Notify(ctx, n); err != nil {
		a.logger.Warnf("notification %q failed: %v", n.Title, err)
	}
}

func (a *Agent) alert(ctx context.Context, title, message string) {
	a.notify(ctx, notify.Notification{
		Title:   title,
		Message: message,
		Level:   notify.LevelError,
		Sounds:  notify.SoundsAlert,
		Loops:   2,
	})
}

// HandleCard clocks in or out the owner of uid
func (a *Agent) HandleCard(ctx context.Context, uid string) error {
	uid = users.NormalizeUID(uid)
	logger := a.logger.WithField("card", uid)

	user, err := a.users.LookupByCard(ctx, uid)
	if errors.Is(err, users.ErrUserNotFound) {
		logger.Error("User not found on the DB")
		a.alert(ctx, "User not detected",
			fmt.Sprintf("There's no user with the card %s registered on the DB", uid))
		return err
	}
	if err != nil {
		return fmt.Errorf("lookup card %s: %w", uid, err)
	}

	logger = logger.WithField("user", user.Username)
	a.notify(ctx, notify.Notification{
		Title:   "User detected",
		Message: user.Username,
		Sounds:  notify.SoundsUserDetected,
	})

	password, err := a.cipher.Decrypt(user.Password)
	if err != nil {
		logger.Errorf("Failed to decrypt the password: %v", err)
		a.alert(ctx, "Failed to decrypt the password", err.Error())
		return fmt.Errorf("decrypt password of %s: %w", user.Username, err)
	}

	a.notify(ctx, notify.Notification{
		Title:   "Working",
		Message: "Clocking in/out " + user.Username,
		Sounds:  []string{notify.SoundWorking},
		Loops:   -1,
	})

	start := time.Now()
	if err := a.clocker.Clock(ctx, user.Username, password); err != nil {
		logger.Errorf("Failed to interact with the page: %v", err)
		a.alert(ctx, "Failed to interact with the page", err.Error())
		return fmt.Errorf("clock %s: %w", user.Username, err)
	}
	logger.WithField("took", time.Since(start)).Info("clocked in/out")

	a.notify(ctx, notify.Notification{
		Title:   "Finished",
		Message: fmt.Sprintf("User: %s clocked in/out", user.Username),
		Sounds:  notify.SoundsFinished,
	})
	return nil
}

// Run waits for the reader to come up and handles every card until ctx is
// done (returning nil) or the source fails. Failures of single cards are logged and do not
// stop the loop.
func (a *Agent) Run(ctx context.Context, source CardSource) error {
	a.logger.Info("Waiting for NFC reader initialization")
	if err := source.WaitReady(ctx, a.initTimeout); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, console.ErrInitTimeout) {
			a.logger.Error("NFC reader initialization timed out")
			a.alert(ctx, "NFC reader initialization timed out",
				"Check that the reader is connected and restart it")
		}
		return fmt.Errorf("wait for reader: %w", err)
	}
	a.logger.Info("READY: NFC reader initialized")

	for {
		uid, err := source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read card: %w", err)
		}
		a.logger.Debugf("UID: %s detected", uid)

		if err := a.HandleCard(ctx, uid); err != nil {
			a.logger.Debugf("card %s: %v", uid, err)
		}
	}
}
