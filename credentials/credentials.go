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

// Package credentials encrypts stored passwords as Fernet tokens
package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
)

// EnvKey is the environment variable holding the encryption key
const EnvKey = "ENCRYPTION_KEY"

// Tokens carry no expiry; a negative TTL disables the check
const noExpiry time.Duration = -1

var (
	// ErrMissingKey is returned when ENCRYPTION_KEY is unset
	ErrMissingKey = errors.New(EnvKey + " is not set in the environment")
	// ErrInvalidToken is returned for tokens that fail verification
	ErrInvalidToken = errors.New("invalid or tampered token")
)

// Cipher encrypts with the first key and decrypts with any of them
type Cipher struct {
	keys []*fernet.Key
}

// New parses one or more comma separated base64url keys. Listing the new key
// first keeps tokens made with older keys readable during rotation.
func New(keys string) (*Cipher, error) {
	var encoded []string
	for _, k := range strings.Split(keys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			encoded = append(encoded, k)
		}
	}
	if len(encoded) == 0 {
		return nil, ErrMissingKey
	}

	decoded, err := fernet.DecodeKeys(encoded...)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	return &Cipher{keys: decoded}, nil
}

// FromEnv reads the key from ENCRYPTION_KEY
func FromEnv() (*Cipher, error) {
	keys, ok := os.LookupEnv(EnvKey)
	if !ok || strings.TrimSpace(keys) == "" {
		return nil, ErrMissingKey
	}
	return New(keys)
}

// Encrypt returns the token for plain
func (c *Cipher) Encrypt(plain string) (string, error) {
	tok, err := fernet.EncryptAndSign([]byte(plain), c.keys[0])
	if err != nil {
		return "", fmt.Errorf("encrypt: %w", err)
	}
	return string(tok), nil
}

// Decrypt verifies token and returns the plain text
func (c *Cipher) Decrypt(token string) (string, error) {
	msg := fernet.VerifyAndDecrypt([]byte(strings.TrimSpace(token)), noExpiry, c.keys)
	if msg == nil {
		return "", ErrInvalidToken
	}
	return string(msg), nil
}

// GenerateKey returns a new random key in the form ENCRYPTION_KEY expects
func GenerateKey() (string, error) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return "", err
	}
	return k.Encode(), nil
}
