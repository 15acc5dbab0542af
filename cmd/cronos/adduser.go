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
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/ZaparooProject/go-mfrc522/credentials"
	"github.com/ZaparooProject/go-mfrc522/users"
	"github.com/peterbourgon/ff/v3/ffcli"
	log "github.com/sirupsen/logrus"
)

type addUserConfig struct {
	rootConfig *rootConfig
	in         io.Reader
	out        io.Writer
	usersDB    string
	card       string
	username   string
	password   string
}

func (c *addUserConfig) registerFlags(fs *flag.FlagSet) {
	c.rootConfig.registerFlags(fs)
	fs.StringVar(&c.usersDB, "users-db", "users.db", "users database, a SQLite file or a postgres:// URL")
	fs.StringVar(&c.card, "card", "", `card UID as printed by the reader, e.g. "04 A2 3B 1C"`)
	fs.StringVar(&c.username, "username", "", "login of the card owner")
	fs.StringVar(&c.password, "password", "", "password of the card owner, read from stdin when empty")
}

func (c *addUserConfig) readPassword() (string, error) {
	if c.password != "" {
		return c.password, nil
	}
	fmt.Fprintf(c.out, "Password for %s: ", c.username)
	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("empty password")
	}
	return password, nil
}

func (c *addUserConfig) Exec(ctx context.Context, _ []string) error {
	c.rootConfig.setupLogging()

	if users.NormalizeUID(c.card) == "" || c.username == "" {
		return errors.New("-card and -username are required")
	}
	cipher, err := credentials.FromEnv()
	if err != nil {
		return err
	}
	password, err := c.readPassword()
	if err != nil {
		return err
	}
	token, err := cipher.Encrypt(password)
	if err != nil {
		return err
	}

	store, err := users.Open(ctx, c.usersDB)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	user := users.User{CardUID: c.card, Username: c.username, Password: token}
	if err := store.Add(ctx, user); err != nil {
		return err
	}
	log.WithField("card", users.NormalizeUID(c.card)).Infof("user %s registered", c.username)
	return nil
}

func newAddUserCmd(rootConfig *rootConfig, in io.Reader, out io.Writer) *ffcli.Command {
	cfg := addUserConfig{rootConfig: rootConfig, in: in, out: out}

	fs := flag.NewFlagSet("cronos adduser", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "adduser",
		ShortUsage: "cronos adduser -card <uid> -username <login> [flags]",
		ShortHelp:  "Register a card owner with an encrypted password",
		FlagSet:    fs,
		Options:    options(),
		Exec:       cfg.Exec,
	}
}
