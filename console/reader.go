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

package console

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"sync"
	"time"
)

// ErrReaderClosed is returned once a Reader has been closed
var ErrReaderClosed = errors.New("console reader closed")

// Reader parses the protocol from a reader's console output
type Reader struct {
	src   io.Reader
	lines chan string
	done  chan struct{}
	// err is set before lines is closed
	err       error
	once      sync.Once
	closeOnce sync.Once
}

// NewReader returns a Reader consuming r. Reading starts on first use and
// runs until r returns an error or the Reader is closed.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		src:   r,
		lines: make(chan string),
		done:  make(chan struct{}),
	}
}

// Close stops delivering lines. The source stays open; a read already
// blocked on it ends when its owner closes it.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() { close(r.done) })
	return nil
}

func (r *Reader) start() {
	r.once.Do(func() {
		go func() {
			defer close(r.lines)
			scanner := bufio.NewScanner(r.src)
			for scanner.Scan() {
				select {
				case r.lines <- strings.TrimSpace(scanner.Text()):
				case <-r.done:
					r.err = ErrReaderClosed
					return
				}
			}
			r.err = scanner.Err()
			if r.err == nil {
				r.err = io.EOF
			}
		}()
	})
}

func (r *Reader) next(ctx context.Context, timeout <-chan time.Time) (string, error) {
	select {
	case <-r.done:
		return "", ErrReaderClosed
	default:
	}

	select {
	case text, ok := <-r.lines:
		if !ok {
			return "", r.err
		}
		return text, nil
	case <-r.done:
		return "", ErrReaderClosed
	case <-timeout:
		return "", ErrInitTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// WaitReady discards output until the banner arrives. A zero timeout means
// DefaultInitTimeout.
func (r *Reader) WaitReady(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultInitTimeout
	}
	r.start()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		text, err := r.next(ctx, timer.C)
		if err != nil {
			return err
		}
		if text == Banner {
			return nil
		}
	}
}

// Next blocks until the next card UID and returns it as upper-case hex
// without separators. Other lines are skipped.
func (r *Reader) Next(ctx context.Context) (string, error) {
	r.start()
	for {
		text, err := r.next(ctx, nil)
		if err != nil {
			return "", err
		}
		if uid, ok := ParseUIDLine(text); ok {
			return uid, nil
		}
	}
}

// ParseUIDLine extracts the UID from a "Card UID:" line
func ParseUIDLine(text string) (string, bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(text), uidPrefix)
	if !found {
		return "", false
	}
	uid := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(rest), " ", ""))
	if uid == "" {
		return "", false
	}
	if _, err := hex.DecodeString(uid); err != nil {
		return "", false
	}
	return uid, true
}
