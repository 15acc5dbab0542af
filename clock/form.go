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

package clock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

const defaultRequestTimeout = 30 * time.Second

// FormConfig describes the clocking web site
type FormConfig struct {
	// LoginURL serves the login form and receives its POST
	LoginURL string
	// ClockURL receives the clock in/out POST after login; empty skips it
	ClockURL string
	// LogoutURL is requested at the end of every attempt; empty skips it
	LogoutURL string
	// Form field names, "name" and "pass" if empty
	UsernameField string
	PasswordField string
	// LoginFailedMarker is text only present on a failed login page
	LoginFailedMarker string
	Timeout           time.Duration
}

// FormClocker logs into a web form, submits the clock action and logs out.
// Every Clock call uses a fresh cookie jar.
type FormClocker struct {
	config    FormConfig
	transport http.RoundTripper
}

// NewFormClocker validates config and returns a FormClocker
func NewFormClocker(config FormConfig) (*FormClocker, error) {
	if config.LoginURL == "" {
		return nil, errors.New("login URL is required")
	}
	for _, raw := range []string{config.LoginURL, config.ClockURL, config.LogoutURL} {
		if raw == "" {
			continue
		}
		if _, err := url.ParseRequestURI(raw); err != nil {
			return nil, fmt.Errorf("invalid URL %q: %w", raw, err)
		}
	}
	if config.UsernameField == "" {
		config.UsernameField = "name"
	}
	if config.PasswordField == "" {
		config.PasswordField = "pass"
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultRequestTimeout
	}
	return &FormClocker{config: config, transport: http.DefaultTransport}, nil
}

// Clock runs one login, clock, logout sequence
func (f *FormClocker) Clock(ctx context.Context, username, password string) (err error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	client := &http.Client{
		Jar:       jar,
		Timeout:   f.config.Timeout,
		Transport: f.transport,
	}

	if _, err := f.do(ctx, client, http.MethodGet, f.config.LoginURL, nil); err != nil {
		return err
	}

	// Always close the session, even when the clock action failed
	if f.config.LogoutURL != "" {
		defer func() {
			if _, logoutErr := f.do(ctx, client, http.MethodGet, f.config.LogoutURL, nil); logoutErr != nil && err == nil {
				err = logoutErr
			}
		}()
	}

	body, err := f.do(ctx, client, http.MethodPost, f.config.LoginURL, url.Values{
		f.config.UsernameField: {username},
		f.config.PasswordField: {password},
	})
	if err != nil {
		return err
	}
	if f.config.LoginFailedMarker != "" && strings.Contains(body, f.config.LoginFailedMarker) {
		return fmt.Errorf("%w: login rejected for %s", ErrClockFailed, username)
	}

	if f.config.ClockURL != "" {
		if _, err := f.do(ctx, client, http.MethodPost, f.config.ClockURL, url.Values{}); err != nil {
			return err
		}
	}
	return nil
}

func (f *FormClocker) do(ctx context.Context, client *http.Client, method, target string, form url.Values) (string, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrClockFailed, err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s %s: %w", ErrClockFailed, method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", ErrClockFailed, target, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("%w: %s %s: %s", ErrClockFailed, method, target, resp.Status)
	}
	return string(data), nil
}
