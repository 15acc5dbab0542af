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
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const connectTimeout = 5 * time.Second

// PostgresStore keeps users in a Postgres table
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgres connects the pool and creates the users table if needed
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	// Try pinging to make sure it's valid
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			cardUID  TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			password TEXT NOT NULL
		)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("could not create users table: %w", err)
	}
	return &PostgresStore{db: pool}, nil
}

// LookupByCard returns the owner of uid
func (s *PostgresStore) LookupByCard(ctx context.Context, uid string) (*User, error) {
	row := s.db.QueryRow(ctx,
		"SELECT cardUID, username, password FROM users WHERE cardUID = $1", NormalizeUID(uid))

	u := &User{}
	if err := row.Scan(&u.CardUID, &u.Username, &u.Password); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: card %s", ErrUserNotFound, NormalizeUID(uid))
		}
		return nil, err
	}
	return u, nil
}

// Add registers a user, replacing the previous owner of the card
func (s *PostgresStore) Add(ctx context.Context, user User) error {
	if err := user.validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (cardUID, username, password) VALUES ($1, $2, $3)
		ON CONFLICT (cardUID) DO UPDATE SET username = EXCLUDED.username, password = EXCLUDED.password`,
		NormalizeUID(user.CardUID), user.Username, user.Password)
	if err != nil {
		return fmt.Errorf("could not add user: %w", err)
	}
	return nil
}

// Close releases the pool
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
