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
	"flag"
	"fmt"
	"time"

	"github.com/ZaparooProject/go-mfrc522/agent"
	"github.com/ZaparooProject/go-mfrc522/clock"
	"github.com/ZaparooProject/go-mfrc522/console"
	"github.com/ZaparooProject/go-mfrc522/credentials"
	"github.com/ZaparooProject/go-mfrc522/notify"
	"github.com/ZaparooProject/go-mfrc522/users"
	"github.com/peterbourgon/ff/v3/ffcli"
	log "github.com/sirupsen/logrus"
)

type runConfig struct {
	rootConfig  *rootConfig
	serialDev   string
	usersDB     string
	natsURL     string
	natsSubject string
	natsToken   string
	form        clock.FormConfig
	baudRate    int
	initTimeout time.Duration
	dryRunDelay time.Duration
	dryRun      bool
}

func (c *runConfig) registerFlags(fs *flag.FlagSet) {
	c.rootConfig.registerFlags(fs)
	fs.StringVar(&c.serialDev, "serial-device", "ttyUSB0", "serial device of the card reader")
	fs.IntVar(&c.baudRate, "baudrate", console.DefaultBaudRate, "baud rate for the serial connection")
	fs.StringVar(&c.usersDB, "users-db", "users.db", "users database, a SQLite file or a postgres:// URL")
	fs.BoolVar(&c.dryRun, "dry-run", false, "do not clock anyone, only wait as long as clocking takes")
	fs.DurationVar(&c.dryRunDelay, "dry-run-delay", clock.DefaultDryRunDelay, "how long a dry run waits")
	fs.DurationVar(&c.initTimeout, "init-timeout", console.DefaultInitTimeout, "how long to wait for the reader banner")
	fs.StringVar(&c.form.LoginURL, "login-url", "", "URL of the clocking site login form")
	fs.StringVar(&c.form.ClockURL, "clock-url", "", "URL receiving the clock in/out action")
	fs.StringVar(&c.form.LogoutURL, "logout-url", "", "URL that closes the session")
	fs.StringVar(&c.form.UsernameField, "username-field", "name", "login form username field")
	fs.StringVar(&c.form.PasswordField, "password-field", "pass", "login form password field")
	fs.StringVar(&c.form.LoginFailedMarker, "login-failed-marker", "", "text shown only when a login fails")
	fs.StringVar(&c.natsURL, "nats-url", "", "also publish notifications to this NATS server")
	fs.StringVar(&c.natsSubject, "nats-subject", notify.DefaultSubject, "NATS subject for notifications")
	fs.StringVar(&c.natsToken, "nats-token", "", "NATS auth token")
}

func (c *runConfig) clocker() (clock.Clocker, error) {
	if c.dryRun {
		return clock.DryRun{Delay: c.dryRunDelay}, nil
	}
	if c.form.LoginURL == "" {
		return nil, errors.New("-login-url is required unless -dry-run is set")
	}
	return clock.NewFormClocker(c.form)
}

func (c *runConfig) Exec(ctx context.Context, _ []string) error {
	c.rootConfig.setupLogging()

	// Passwords are encrypted within the DB
	cipher, err := credentials.FromEnv()
	if err != nil {
		return err
	}
	clocker, err := c.clocker()
	if err != nil {
		return err
	}

	store, err := users.Open(ctx, c.usersDB)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	notifiers := notify.Multi{notify.NewLog(log.StandardLogger())}
	if c.natsURL != "" {
		conn, err := notify.Connect(c.natsURL, "cronos", c.natsToken)
		if err != nil {
			return err
		}
		defer conn.Close()
		notifiers = append(notifiers, notify.NewNATS(conn, c.natsSubject))
		log.Infof("NATS connection established successfully %s", c.natsURL)
	}

	a, err := agent.New(store, cipher, clocker, notifiers, agent.WithInitTimeout(c.initTimeout))
	if err != nil {
		return err
	}

	port, err := console.OpenSerial(c.serialDev, c.baudRate)
	if err != nil {
		return err
	}
	// Closing the port unblocks the console reader
	stop := context.AfterFunc(ctx, func() { _ = port.Close() })
	defer func() {
		if stop() {
			_ = port.Close()
		}
	}()

	log.Infof("listening on %s at %d baud", console.DevicePath(c.serialDev), c.baudRate)
	reader := console.NewReader(port)
	defer func() { _ = reader.Close() }()
	if err := a.Run(ctx, reader); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return ctx.Err()
}

func newRunCmd(rootConfig *rootConfig) *ffcli.Command {
	cfg := runConfig{rootConfig: rootConfig}

	fs := flag.NewFlagSet("cronos run", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "run",
		ShortUsage: "cronos run [flags]",
		ShortHelp:  "Wait for the reader and clock in/out every presented card",
		FlagSet:    fs,
		Options:    options(),
		Exec:       cfg.Exec,
	}
}
