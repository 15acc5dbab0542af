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
	"flag"
	"fmt"
	"io"

	"github.com/ZaparooProject/go-mfrc522/credentials"
	"github.com/peterbourgon/ff/v3/ffcli"
)

func newGenKeyCmd(out io.Writer) *ffcli.Command {
	fs := flag.NewFlagSet("cronos genkey", flag.ExitOnError)
	return &ffcli.Command{
		Name:       "genkey",
		ShortUsage: "cronos genkey",
		ShortHelp:  "Print a new encryption key for " + credentials.EnvKey,
		FlagSet:    fs,
		Exec: func(context.Context, []string) error {
			key, err := credentials.GenerateKey()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, key)
			return err
		},
	}
}
