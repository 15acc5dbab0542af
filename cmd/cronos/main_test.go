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
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZaparooProject/go-mfrc522/clock"
	"github.com/ZaparooProject/go-mfrc522/credentials"
	"github.com/ZaparooProject/go-mfrc522/users"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

func newTestCmd(in io.Reader, out io.Writer) *ffcli.Command {
	rootCmd, cfg := newRootCmd(io.Discard)
	rootCmd.Subcommands = []*ffcli.Command{
		newRunCmd(cfg),
		newAddUserCmd(cfg, in, out),
		newGenKeyCmd(out),
	}
	return rootCmd
}

func lookupUser(t *testing.T, db, uid string) *users.User {
	t.Helper()

	store, err := users.Open(context.Background(), db)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	u, err := store.LookupByCard(context.Background(), uid)
	require.NoError(t, err)
	return u
}

//nolint:paralleltest // commands change global logging
func TestGenKey(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newTestCmd(nil, &out).ParseAndRun(context.Background(), []string{"genkey"}))

	_, err := credentials.New(strings.TrimSpace(out.String()))
	require.NoError(t, err)
}

//nolint:paralleltest // sets the environment
func TestAddUser(t *testing.T) {
	key, err := credentials.GenerateKey()
	require.NoError(t, err)
	t.Setenv(credentials.EnvKey, key)

	db := filepath.Join(t.TempDir(), "users.db")
	var out bytes.Buffer
	err = newTestCmd(strings.NewReader("s3cret\n"), &out).ParseAndRun(context.Background(),
		[]string{"adduser", "-users-db", db, "-card", "04 a2 3b 1c", "-username", "juan"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Password for juan")

	u := lookupUser(t, db, "04A23B1C")
	assert.Equal(t, "juan", u.Username)
	assert.NotEqual(t, "s3cret", u.Password)

	cipher, err := credentials.New(key)
	require.NoError(t, err)
	plain, err := cipher.Decrypt(u.Password)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", plain)
}

//nolint:paralleltest // sets the environment
func TestAddUser_FromEnvAndConfigFile(t *testing.T) {
	key, err := credentials.GenerateKey()
	require.NoError(t, err)
	t.Setenv(credentials.EnvKey, key)
	t.Setenv("CRONOS_USERNAME", "ana")

	dir := t.TempDir()
	db := filepath.Join(dir, "users.db")
	conf := filepath.Join(dir, "cronos.yaml")
	require.NoError(t, os.WriteFile(conf, []byte("users-db: "+db+"\ncard: DEADBEEF\n"), 0o600))

	err = newTestCmd(nil, io.Discard).ParseAndRun(context.Background(),
		[]string{"adduser", "-config", conf, "-password", "pw"})
	require.NoError(t, err)

	assert.Equal(t, "ana", lookupUser(t, db, "DEADBEEF").Username)
}

//nolint:paralleltest // sets the environment
func TestAddUser_Errors(t *testing.T) {
	t.Setenv(credentials.EnvKey, "")
	db := filepath.Join(t.TempDir(), "users.db")

	err := newTestCmd(nil, io.Discard).ParseAndRun(context.Background(),
		[]string{"adduser", "-users-db", db, "-username", "juan", "-password", "pw"})
	require.Error(t, err, "card is required")

	err = newTestCmd(nil, io.Discard).ParseAndRun(context.Background(),
		[]string{"adduser", "-users-db", db, "-card", "DEADBEEF", "-username", "juan", "-password", "pw"})
	require.ErrorIs(t, err, credentials.ErrMissingKey)
}

//nolint:paralleltest // sets the environment
func TestRun_MissingKey(t *testing.T) {
	t.Setenv(credentials.EnvKey, "")

	err := newTestCmd(nil, io.Discard).ParseAndRun(context.Background(),
		[]string{"run", "-dry-run", "-users-db", filepath.Join(t.TempDir(), "users.db")})
	require.ErrorIs(t, err, credentials.ErrMissingKey)
}

//nolint:paralleltest // sets the environment and global logging
func TestRun_LoggingFlagsAfterSubcommand(t *testing.T) {
	t.Setenv(credentials.EnvKey, "")
	t.Cleanup(func() {
		log.SetLevel(log.InfoLevel)
		log.SetOutput(os.Stderr)
	})

	logFile := filepath.Join(t.TempDir(), "cronos.log")
	err := newTestCmd(nil, io.Discard).ParseAndRun(context.Background(), []string{
		"run", "-v", "-log-file", logFile, "-dry-run",
		"-users-db", filepath.Join(t.TempDir(), "users.db"),
	})
	require.ErrorIs(t, err, credentials.ErrMissingKey)

	assert.Equal(t, log.DebugLevel, log.GetLevel())
	out, ok := log.StandardLogger().Out.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, logFile, out.Filename)
}

func TestRunConfig_Clocker(t *testing.T) {
	t.Parallel()

	cfg := &runConfig{dryRun: true}
	c, err := cfg.clocker()
	require.NoError(t, err)
	assert.IsType(t, clock.DryRun{}, c)

	cfg = &runConfig{}
	_, err = cfg.clocker()
	require.Error(t, err)

	cfg.form.LoginURL = "https://cronos.example.com/login"
	c, err = cfg.clocker()
	require.NoError(t, err)
	assert.IsType(t, &clock.FormClocker{}, c)
}

//nolint:paralleltest // sets the environment
func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CRONOS_DOTENV_TEST=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("CRONOS_DOTENV_TEST") })

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("CRONOS_DOTENV_TEST"))
}
