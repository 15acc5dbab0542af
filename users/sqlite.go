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

package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// registers the "sqlite" driver
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	cardUID  TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	password TEXT NOT NULL
)`

// SQLiteStore keeps users in a SQLite file
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (and if needed creates) the users table in the file at path
func NewSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers anyway
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not create users table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// LookupByCard returns the owner of uid
func (s *SQLiteStore) LookupByCard(ctx context.Context, uid string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT cardUID, username, password FROM users WHERE cardUID = ?", NormalizeUID(uid))

	u := &User{}
	if err := row.Scan(&u.CardUID, &u.Username, &u.Password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: card %s", ErrUserNotFound, NormalizeUID(uid))
		}
		return nil, err
	}
	return u, nil
}

// Add registers a user, replacing the previous owner of the card
func (s *SQLiteStore) Add(ctx context.Context, user User) error {
	if err := user.validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (cardUID, username, password) VALUES (?, ?, ?)
		ON CONFLICT(cardUID) DO UPDATE SET username = excluded.username, password = excluded.password`,
		NormalizeUID(user.CardUID), user.Username, user.Password)
	if err != nil {
		return fmt.Errorf("could not add user: %w", err)
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
