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

package mfrc522

import (
	"log"
	"sync"
	"sync/atomic"
)

// Logger is the interface used for debug messages. *log.Logger and
// *logrus.Logger both satisfy it.
type Logger interface {
	Printf(format string, args ...any)
}

var (
	debugEnabled atomic.Bool
	loggerMu     sync.RWMutex
	debugLogger  Logger = log.Default()
)

// SetDebugEnabled turns driver debug output on or off
func SetDebugEnabled(enabled bool) {
	debugEnabled.Store(enabled)
}

// SetLogger replaces the logger used for debug output. A nil logger restores
// the standard library default.
func SetLogger(l Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if l == nil {
		l = log.Default()
	}
	debugLogger = l
}

func debugf(format string, args ...any) {
	if !debugEnabled.Load() {
		return
	}
	loggerMu.RLock()
	l := debugLogger
	loggerMu.RUnlock()
	l.Printf("[MFRC522] "+format, args...)
}

func debugln(msg string) {
	debugf("%s", msg)
}
