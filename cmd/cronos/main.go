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

/*
cronos clocks users in and out when they present their RFID card.

It listens to the console of a card reader (see rfidreader), looks the card
up in the users database, decrypts the stored password and submits the
clocking form for that user.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v3/ffcli"
)

func main() {
	var (
		in  = os.Stdin
		out = os.Stdout
		err = os.Stderr
	)

	if envErr := loadDotEnv(".env"); envErr != nil {
		fmt.Fprintf(err, "cronos: .env: %v\n", envErr)
		os.Exit(1)
	}

	rootCmd, cfg := newRootCmd(err)
	rootCmd.Subcommands = []*ffcli.Command{
		newRunCmd(cfg),
		newAddUserCmd(cfg, in, out),
		newGenKeyCmd(out),
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		var num = 0
		for range c {
			num++
			if num >= 3 {
				os.Exit(1)
			} else {
				cancel()
			}
		}
	}()

	if runErr := rootCmd.ParseAndRun(ctx, os.Args[1:]); runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			if cfg.verbose {
				fmt.Fprintf(err, "%s: cancelled\n", rootCmd.Name)
			}
			return
		}
		fmt.Fprintf(err, "%s: %s\n", rootCmd.Name, runErr)
		os.Exit(1)
	}
}
