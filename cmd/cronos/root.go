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
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/peterbourgon/ff/v3/ffyaml"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const envPrefix = "CRONOS"

type rootConfig struct {
	logOut  io.Writer
	config  string
	logFile string
	verbose bool
}

// registerFlags is shared with the subcommands so the logging and config
// flags work after the subcommand name too
func (c *rootConfig) registerFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "v", false, "increase log verbosity")
	fs.StringVar(&c.logFile, "log-file", "", "write logs to this file (rotated)")
	fs.StringVar(&c.config, "config", "", "YAML config file")
}

func (c *rootConfig) Exec(context.Context, []string) error {
	return flag.ErrHelp
}

// setupLogging configures logrus once the flags are parsed
func (c *rootConfig) setupLogging() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
	if c.verbose {
		log.SetLevel(log.DebugLevel)
	}

	switch {
	case c.logFile != "":
		log.SetOutput(&lumberjack.Logger{
			Filename:   c.logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	case c.logOut != nil:
		log.SetOutput(c.logOut)
	}
}

// options makes every flag settable from CRONOS_* variables and the YAML
// file named by -config
func options() []ff.Option {
	return []ff.Option{
		ff.WithEnvVarPrefix(envPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ffyaml.Parser),
		ff.WithAllowMissingConfigFile(true),
	}
}

// loadDotEnv reads .env if present; variables already set win
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func newRootCmd(logOut io.Writer) (*ffcli.Command, *rootConfig) {
	cfg := rootConfig{logOut: logOut}

	fs := flag.NewFlagSet("cronos", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "cronos",
		ShortUsage: "cronos [flags] <subcommand>",
		ShortHelp:  "Clock in and out by presenting an RFID card.",
		LongHelp: `Flags can also be set through CRONOS_ prefixed environment variables
(e.g. CRONOS_SERIAL_DEVICE), a .env file in the working directory, or the YAML
file given with -config. Passwords are encrypted with the key in ENCRYPTION_KEY.`,
		FlagSet: fs,
		Options: options(),
		Exec:    cfg.Exec,
	}, &cfg
}
