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

// rfidreader polls an MFRC522 and prints every presented card on a console
// in the format a cronos host expects. Card events can also be published to
// NATS.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/console"
	"github.com/ZaparooProject/go-mfrc522/detection"
	// Import all detectors to register them
	_ "github.com/ZaparooProject/go-mfrc522/detection/i2c"
	_ "github.com/ZaparooProject/go-mfrc522/detection/spi"
	"github.com/ZaparooProject/go-mfrc522/notify"
	"github.com/ZaparooProject/go-mfrc522/polling"
	"github.com/ZaparooProject/go-mfrc522/transport/i2c"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type config struct {
	devicePath   string
	resetPin     string
	consoleDev   string
	natsURL      string
	natsSubject  string
	logFile      string
	detectMode   string
	i2cAddr      uint
	baudRate     int
	pollInterval time.Duration
	connectTime  time.Duration
	trackRemoval bool
	readNDEF     bool
	debug        bool
}

func parseFlags(args []string) (*config, error) {
	cfg := &config{}
	fs := flag.NewFlagSet("rfidreader", flag.ContinueOnError)
	fs.StringVar(&cfg.devicePath, "device", "",
		"SPI or I2C device (e.g. /dev/spidev0.0 or /dev/i2c-1). Leave empty for auto-detection.")
	fs.StringVar(&cfg.resetPin, "reset-pin", "", "GPIO wired to the RST pin (e.g. GPIO25)")
	fs.UintVar(&cfg.i2cAddr, "i2c-addr", uint(i2c.DefaultAddress), "I2C address of the reader")
	fs.StringVar(&cfg.detectMode, "detect", "safe", "auto-detection mode: passive, safe or full")
	fs.StringVar(&cfg.consoleDev, "console", "-", `console for card lines, "-" for stdout or a serial device`)
	fs.IntVar(&cfg.baudRate, "baudrate", console.DefaultBaudRate, "baud rate of a serial console")
	fs.DurationVar(&cfg.pollInterval, "poll-interval", 0, "polling interval (0 picks one for the bus)")
	fs.DurationVar(&cfg.connectTime, "connect-timeout", 10*time.Second, "timeout for detection and chip init")
	fs.BoolVar(&cfg.trackRemoval, "track-removal", false, "report card removal (keeps waking halted cards)")
	fs.BoolVar(&cfg.readNDEF, "ndef", false, "read the NDEF message of Ultralight/NTAG cards")
	fs.StringVar(&cfg.natsURL, "nats-url", "", "publish card events to this NATS server")
	fs.StringVar(&cfg.natsSubject, "nats-subject", "mfrc522.cards", "NATS subject for card events")
	fs.BoolVar(&cfg.debug, "debug", false, "enable debug output")
	fs.StringVar(&cfg.logFile, "log-file", "", "write logs to this file (rotated) instead of stderr")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.i2cAddr > 0x7F {
		return nil, fmt.Errorf("invalid I2C address 0x%X", cfg.i2cAddr)
	}
	if _, err := detectionMode(cfg.detectMode); err != nil {
		return nil, err
	}
	return cfg, nil
}

func detectionMode(name string) (detection.Mode, error) {
	switch name {
	case "passive":
		return detection.Passive, nil
	case "safe":
		return detection.Safe, nil
	case "full":
		return detection.Full, nil
	default:
		return 0, fmt.Errorf("unknown detection mode %q", name)
	}
}

// setupLogging sends logs to stderr, or to a rotated file. Stdout stays
// reserved for the console protocol.
func setupLogging(cfg *config) io.Closer {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
	if cfg.debug {
		log.SetLevel(log.DebugLevel)
		mfrc522.SetDebugEnabled(true)
	}
	mfrc522.SetLogger(log.StandardLogger())

	if cfg.logFile == "" {
		log.SetOutput(os.Stderr)
		return nopWriteCloser{os.Stderr}
	}
	rotator := &lumberjack.Logger{
		Filename:   cfg.logFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	log.SetOutput(rotator)
	return rotator
}

func connect(ctx context.Context, cfg *config) (*mfrc522.Device, error) {
	topts := transportOptions{resetPin: cfg.resetPin, i2cAddr: uint16(cfg.i2cAddr)}
	ctx, cancel := context.WithTimeout(ctx, cfg.connectTime)
	defer cancel()

	var connectOpts []mfrc522.ConnectOption
	if cfg.devicePath == "" {
		mode, _ := detectionMode(cfg.detectMode)
		detectOpts := detection.DefaultOptions()
		detectOpts.Mode = mode
		connectOpts = append(connectOpts,
			mfrc522.WithAutoDetection(),
			mfrc522.WithDetectionOptions(detectOpts),
			mfrc522.WithTransportFromDeviceFactory(newDetectedTransportFactory(topts)))
		log.Info("Auto-detecting MFRC522 devices...")
	} else {
		connectOpts = append(connectOpts, mfrc522.WithTransportFactory(newTransportFactory(topts)))
		log.Infof("Opening device: %s", cfg.devicePath)
	}

	device, err := mfrc522.ConnectDevice(ctx, cfg.devicePath, connectOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MFRC522 device: %w", err)
	}
	log.Infof("MFRC522 firmware: %s", device.Version())
	return device, nil
}

func openConsole(cfg *config) (io.WriteCloser, error) {
	if cfg.consoleDev == "-" || cfg.consoleDev == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	port, err := console.OpenSerial(cfg.consoleDev, cfg.baudRate)
	if err != nil {
		return nil, err
	}
	return port, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// newMonitor wires the callbacks; ctx bounds the card reads they do
func newMonitor(ctx context.Context, device *mfrc522.Device, cfg *config, out *console.Writer,
	events *eventPublisher,
) (*polling.Monitor, error) {
	pollConfig := polling.ConfigFor(device)
	if cfg.pollInterval > 0 {
		pollConfig.PollInterval = cfg.pollInterval
	}
	pollConfig.TrackRemoval = cfg.trackRemoval

	monitor, err := polling.NewMonitor(device, pollConfig)
	if err != nil {
		return nil, err
	}

	onCard := func(card *mfrc522.DetectedCard) error {
		entry := log.WithFields(log.Fields{"uid": card.UID.Hex(), "type": card.UID.Type()})
		if err := out.WriteCard(card.UID); err != nil {
			return fmt.Errorf("console: %w", err)
		}

		event := newCardEvent(eventDetected, card.UID)
		if cfg.readNDEF && card.UID.Type() == mfrc522.PICCTypeMifareUL {
			msg, err := device.ReadNDEF(ctx)
			switch {
			case err == nil:
				event.NDEF = fmt.Sprint(msg)
				entry = entry.WithField("ndef", event.NDEF)
			case !errors.Is(err, mfrc522.ErrNotNDEF):
				entry.Warnf("NDEF read failed: %v", err)
			}
		}
		entry.Info("card detected")
		return events.publish(event)
	}
	monitor.OnCardDetected = onCard
	monitor.OnCardChanged = onCard
	monitor.OnCardRemoved = func() {
		log.Info("card removed")
		if err := events.publish(newCardEvent(eventRemoved, nil)); err != nil {
			log.Warn(err)
		}
	}
	monitor.OnPollError = func(err error) {
		log.Debugf("poll: %v", err)
	}
	return monitor, nil
}

func run(ctx context.Context, cfg *config) error {
	device, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = device.AntennaOff(context.Background())
		_ = device.Close()
	}()

	sink, err := openConsole(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = sink.Close() }()
	out := console.NewWriter(sink)

	var events *eventPublisher
	if cfg.natsURL != "" {
		conn, err := notify.Connect(cfg.natsURL, "rfidreader", os.Getenv("NATS_TOKEN"))
		if err != nil {
			return err
		}
		defer conn.Close()
		events = &eventPublisher{pub: conn, subject: cfg.natsSubject}
		log.Infof("NATS connection established successfully %s", cfg.natsURL)
	}

	monitor, err := newMonitor(ctx, device, cfg, out, events)
	if err != nil {
		return err
	}
	if err := out.Banner(); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	log.Infof("Waiting for cards (poll interval: %s)...", monitor.CurrentInterval())

	if err := monitor.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	m := monitor.GetMetrics()
	log.Infof("stopped after %d polls, %d cards, %d errors", m.PollCycles, m.CardsDetected, m.PollErrors)
	return nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logCloser := setupLogging(cfg)
	defer func() { _ = logCloser.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error(err)
		_ = logCloser.Close()
		stop()
		os.Exit(1) //nolint:gocritic // deferred calls already run by hand
	}
}
