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

// Package users maps card UIDs to the credentials of their owners
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUserNotFound is returned when no user owns a card
var ErrUserNotFound = errors.New("user not found")

// User is one registered card owner. Password holds the encrypted token,
// never the plain text.
type User struct {
	CardUID  string
	Username string
	Password string
}

// Store looks up and registers users
type Store interface {
	LookupByCard(ctx context.Context, uid string) (*User, error)
	Add(ctx context.Context, user User) error
	Close() error
}

// NormalizeUID strips separators and upper-cases a card UID so that
// "04 a2 3b 1c" and "04A23B1C" name the same card
func NormalizeUID(uid string) string {
	r := strings.NewReplacer(" ", "", ":", "", "-", "")
	return strings.ToUpper(r.Replace(strings.TrimSpace(uid)))
}

func (u User) validate() error {
	switch {
	case NormalizeUID(u.CardUID) == "":
		return errors.New("card UID is required")
	case u.Username == "":
		return errors.New("username is required")
	case u.Password == "":
		return errors.New("password is required")
	}
	return nil
}

// Open picks the backend from the DSN: postgres:// and postgresql:// URLs use
// Postgres, anything else is a SQLite file path (an optional sqlite:// prefix
// is stripped).
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case dsn == "":
		return nil, errors.New("empty users database DSN")
	case isPostgres(dsn):
		store, err := NewPostgres(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("postgres users store: %w", err)
		}
		return store, nil
	default:
		store, err := NewSQLite(ctx, strings.TrimPrefix(dsn, "sqlite://"))
		if err != nil {
			return nil, fmt.Errorf("sqlite users store: %w", err)
		}
		return store, nil
	}
}

func isPostgres(dsn string) bool {
	lower := strings.ToLower(dsn)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}
