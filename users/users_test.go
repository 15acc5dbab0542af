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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNormalizeUID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "04A23B1C", NormalizeUID(" 04 a2 3b 1c "))
	assert.Equal(t, "DEADBEEF", NormalizeUID("de:ad:be:ef"))
	assert.Empty(t, NormalizeUID("  "))
}

func TestIsPostgres(t *testing.T) {
	t.Parallel()

	assert.True(t, isPostgres("postgres://cronos@localhost/cronos"))
	assert.True(t, isPostgres("PostgreSQL://localhost"))
	assert.False(t, isPostgres("users.db"))
	assert.False(t, isPostgres("sqlite:///var/lib/cronos/users.db"))
}

func TestOpen_EmptyDSN(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "")
	require.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.LookupByCard(ctx, "04A23B1C")
	require.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, store.Add(ctx, User{CardUID: "04 a2 3b 1c", Username: "juan", Password: "token-1"}))

	u, err := store.LookupByCard(ctx, "04A23B1C")
	require.NoError(t, err)
	assert.Equal(t, &User{CardUID: "04A23B1C", Username: "juan", Password: "token-1"}, u)

	// Re-registering a card replaces the owner
	require.NoError(t, store.Add(ctx, User{CardUID: "04A23B1C", Username: "ana", Password: "token-2"}))
	u, err = store.LookupByCard(ctx, "04 A2 3B 1C")
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)
	assert.Equal(t, "token-2", u.Password)
}

func TestSQLiteStore_AddValidates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	tests := []struct {
		name string
		user User
	}{
		{name: "no uid", user: User{Username: "a", Password: "b"}},
		{name: "no username", user: User{CardUID: "01020304", Password: "b"}},
		{name: "no password", user: User{CardUID: "01020304", Username: "a"}},
	}
	for _, tt := range tests {
		require.Error(t, store.Add(ctx, tt.user), tt.name)
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.db")

	store, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Add(ctx, User{CardUID: "DEADBEEF", Username: "juan", Password: "x"}))
	require.NoError(t, store.Close())

	reopened, err := Open(ctx, "sqlite://"+path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	u, err := reopened.LookupByCard(ctx, "DEADBEEF")
	require.NoError(t, err)
	assert.Equal(t, "juan", u.Username)
}
