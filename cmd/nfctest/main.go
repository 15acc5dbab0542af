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
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	// Import detection packages to register detectors
	_ "github.com/ZaparooProject/go-mfrc522/detection/i2c"
	_ "github.com/ZaparooProject/go-mfrc522/detection/spi"
)

func main() {
	if run() != 0 {
		os.Exit(1)
	}
}

func run() int {
	config := DefaultConfig()

	// Parse command line flags
	flag.BoolVar(&config.Quick, "quick", false, "Quick mode - test readers only, no card monitoring")
	flag.StringVar(&config.DevicePath, "device", "", "Test this SPI or I2C device instead of auto-detecting")
	flag.DurationVar(&config.ConnectTimeout, "connect-timeout", config.ConnectTimeout, "Reader connection timeout")
	flag.DurationVar(&config.PollInterval, "poll-interval", config.PollInterval, "Card polling interval")
	flag.IntVar(&config.StressReads, "stress-reads", config.StressReads, "Rapid reads per Ultralight/NTAG card")
	flag.BoolVar(&config.Verbose, "verbose", false, "Enable verbose output")
	debug := flag.Bool("debug", false, "Enable driver debug output")
	flag.Parse()

	mfrc522.SetDebugEnabled(*debug)

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		_, _ = fmt.Print("\nShutting down gracefully...\n")
		cancel()
	}()

	// Initialize components
	output := NewOutput(os.Stdout, config.Verbose)
	discovery := NewDiscovery(config, output)
	testing := NewTesting(config, output)
	monitoring := NewMonitoring(config, output, discovery, testing)

	_, _ = fmt.Println("MFRC522 Test Tool")
	_, _ = fmt.Println("=================")

	start := time.Now()
	readers, err := discovery.DiscoverReaders(ctx)
	if err == nil {
		output.Verbose("Discovery took %s", time.Since(start).Round(time.Millisecond))
		err = monitoring.Run(ctx, readers)
	}
	if err != nil {
		output.Error("%v", err)
		return 1
	}
	return 0
}
