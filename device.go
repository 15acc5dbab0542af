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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/go-mfrc522/detection"
)

// Chip timing budgets
const (
	defaultCommandTimeout = 36 * time.Millisecond // internal timer fires after 25 ms
	defaultCRCTimeout     = 89 * time.Millisecond // CRC of 64 bytes takes ~5 ms at worst
	resetPollInterval     = 50 * time.Millisecond
	resetPollAttempts     = 3
	powerUpTimeout        = 500 * time.Millisecond
)

// Values written by Init
const (
	initModWidth   = 0x26
	initTMode      = 0x80 // TAuto: timer starts automatically at the end of the transmission
	initTPrescaler = 0xA9 // 13.56 MHz / (2*169+1) = 40 kHz, 25 us per tick
	initTReloadH   = 0x03 // reload 1000 ticks: 25 ms before timeout
	initTReloadL   = 0xE8
	initTxASK      = 0x40 // force a 100 % ASK modulation
	initMode       = 0x3D // CRC preset 0x6363 (ISO 14443-3 part 6.2.4)
)

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	// RetryConfig configures retry behavior for register I/O
	RetryConfig *RetryConfig
	// Timeout is the wall clock budget for one card command
	Timeout time.Duration
	// CRCTimeout is the budget for the CRC coprocessor
	CRCTimeout time.Duration
	// AntennaGain is applied during Init when SetAntennaGain is true
	AntennaGain    RxGain
	SetAntennaGain bool
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		Timeout:    defaultCommandTimeout,
		CRCTimeout: defaultCRCTimeout,
	}
}

// Device represents an MFRC522 reader
//
// Thread Safety: Device is NOT thread-safe. All methods must be called from
// a single goroutine or protected with external synchronization.
type Device struct {
	transport   Transport
	config      *DeviceConfig
	version     Version
	initialized bool
}

// New creates a new MFRC522 device with the given transport
func New(transport Transport, opts ...Option) (*Device, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: transport cannot be nil", ErrInvalidParameter)
	}

	device := &Device{
		transport: transport,
		config:    DefaultDeviceConfig(),
	}

	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}

	return device, nil
}

// TransportFactory is a function type for creating transports
type TransportFactory func(path string) (Transport, error)

// TransportFromDeviceFactory is a function type for creating transports from detected devices
type TransportFromDeviceFactory func(device detection.DeviceInfo) (Transport, error)

// ConnectOption represents a functional option for ConnectDevice
type ConnectOption func(*connectConfig) error

// connectConfig holds configuration options for device connection
type connectConfig struct {
	transportFactory       TransportFactory
	transportDeviceFactory TransportFromDeviceFactory
	detectionOptions       *detection.Options
	deviceOptions          []Option
	autoDetect             bool
}

// WithAutoDetection enables automatic device detection instead of using a specific path
func WithAutoDetection() ConnectOption {
	return func(c *connectConfig) error {
		c.autoDetect = true
		return nil
	}
}

// WithDetectionOptions overrides the options used for auto-detection
func WithDetectionOptions(opts detection.Options) ConnectOption {
	return func(c *connectConfig) error {
		c.detectionOptions = &opts
		return nil
	}
}

// WithDeviceOptions adds device-level options
func WithDeviceOptions(opts ...Option) ConnectOption {
	return func(c *connectConfig) error {
		c.deviceOptions = append(c.deviceOptions, opts...)
		return nil
	}
}

// WithTransportFactory sets the transport factory function
func WithTransportFactory(factory TransportFactory) ConnectOption {
	return func(c *connectConfig) error {
		c.transportFactory = factory
		return nil
	}
}

// WithTransportFromDeviceFactory sets the transport from device factory function
func WithTransportFromDeviceFactory(factory TransportFromDeviceFactory) ConnectOption {
	return func(c *connectConfig) error {
		c.transportDeviceFactory = factory
		return nil
	}
}

// ConnectDevice creates and initializes an MFRC522 device from a path or auto-detection.
//
// Example usage:
//
//	// Connect to a specific SPI device
//	device, err := mfrc522.ConnectDevice(ctx, "/dev/spidev0.0", mfrc522.WithTransportFactory(newTransport))
//
//	// Auto-detect a device
//	device, err := mfrc522.ConnectDevice(ctx, "", mfrc522.WithAutoDetection(),
//	    mfrc522.WithTransportFromDeviceFactory(newTransportFromDevice))
func ConnectDevice(ctx context.Context, path string, opts ...ConnectOption) (*Device, error) {
	config := &connectConfig{}
	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, fmt.Errorf("failed to apply connect option: %w", err)
		}
	}

	var (
		transport Transport
		err       error
	)
	if config.autoDetect || path == "" {
		transport, err = createAutoDetectedTransport(ctx, config)
	} else {
		transport, err = createManualTransport(path, config.transportFactory)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	device, err := New(transport, config.deviceOptions...)
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	if err := device.InitContext(ctx); err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("failed to initialize device: %w", err)
	}

	return device, nil
}

// createManualTransport handles creation of transport for a specific path
func createManualTransport(path string, factory TransportFactory) (Transport, error) {
	if factory == nil {
		return nil, errors.New("transport factory not provided")
	}

	transport, err := factory(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport for path %s: %w", path, err)
	}

	return transport, nil
}

// createAutoDetectedTransport handles auto-detection of devices
func createAutoDetectedTransport(ctx context.Context, config *connectConfig) (Transport, error) {
	if config.transportDeviceFactory == nil {
		return nil, errors.New("transport device factory not provided")
	}

	opts := detection.DefaultOptions()
	if config.detectionOptions != nil {
		opts = *config.detectionOptions
	}

	devices, err := detection.DetectAllContext(ctx, &opts)
	if err != nil {
		return nil, fmt.Errorf("failed to detect devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, errors.New("no MFRC522 devices found")
	}

	// Highest confidence first
	best := devices[0]
	for _, d := range devices[1:] {
		if d.Confidence > best.Confidence {
			best = d
		}
	}
	debugf("auto-detected %s device at %s", best.Transport, best.Path)
	return config.transportDeviceFactory(best)
}

// Transport returns the underlying transport
func (d *Device) Transport() Transport {
	return d.transport
}

// Version returns the chip version read during Init
func (d *Device) Version() Version {
	return d.version
}

// SetTimeout sets the card command budget
func (d *Device) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidParameter)
	}
	d.config.Timeout = timeout
	return nil
}

// SetRetryConfig wraps the transport with retry logic, or updates the
// existing wrapper
func (d *Device) SetRetryConfig(config *RetryConfig) {
	d.config.RetryConfig = config
	if tr, ok := d.transport.(*TransportWithRetry); ok {
		tr.SetRetryConfig(config)
		return
	}
	d.transport = NewTransportWithRetry(d.transport, config)
}

func (d *Device) retryConfig() *RetryConfig {
	if d.config.RetryConfig == nil {
		return DefaultRetryConfig()
	}
	config := *d.config.RetryConfig
	return &config
}

// Init initializes the MFRC522
func (d *Device) Init() error {
	return d.InitContext(context.Background())
}

// InitContext resets the chip, programs the timer, modulation and CRC preset,
// switches the antenna on and checks that a chip answers on the bus
func (d *Device) InitContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	hardReset := true
	if err := d.transport.Reset(); err != nil {
		if !errors.Is(err, ErrNoResetPin) {
			return fmt.Errorf("hard reset failed: %w", err)
		}
		hardReset = false
	}
	if !hardReset {
		if err := d.Reset(ctx); err != nil {
			return err
		}
	}

	writes := []struct {
		reg   Register
		value byte
	}{
		// Reset baud rates
		{TxModeReg, 0x00},
		{RxModeReg, 0x00},
		{ModWidthReg, initModWidth},
		// Timeout for communication with PICCs
		{TModeReg, initTMode},
		{TPrescalerReg, initTPrescaler},
		{TReloadRegH, initTReloadH},
		{TReloadRegL, initTReloadL},
		{TxASKReg, initTxASK},
		{ModeReg, initMode},
	}
	for _, w := range writes {
		if err := d.writeRegister(w.reg, w.value); err != nil {
			return fmt.Errorf("init: %w", err)
		}
	}

	if d.config.SetAntennaGain {
		if err := d.SetAntennaGain(ctx, d.config.AntennaGain); err != nil {
			return err
		}
	}
	if err := d.AntennaOn(ctx); err != nil {
		return err
	}

	version, err := d.ReadVersion(ctx)
	if err != nil {
		return err
	}
	if !version.Valid() {
		return fmt.Errorf("%w: version register reads 0x%02X", ErrCommunicationFailed, byte(version))
	}
	d.version = version
	d.initialized = true
	debugf("initialized MFRC522 %s over %s", version, d.transport.Type())
	return nil
}

// Reset performs a soft reset and waits for the oscillator to start
func (d *Device) Reset(ctx context.Context) error {
	if err := d.writeRegister(CommandReg, byte(PCDSoftReset)); err != nil {
		return fmt.Errorf("soft reset: %w", err)
	}

	// The datasheet does not specify the oscillator start-up time, so wait
	// up to 150 ms for the PowerDown bit to clear
	for i := 0; i < resetPollAttempts; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(resetPollInterval):
		}
		value, err := d.readRegister(CommandReg)
		if err != nil {
			return fmt.Errorf("soft reset: %w", err)
		}
		if value&bitPowerDown == 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: chip did not leave power down after soft reset", ErrCommunicationFailed)
}

// ReadVersion reads the version register
func (d *Device) ReadVersion(_ context.Context) (Version, error) {
	value, err := d.readRegister(VersionReg)
	if err != nil {
		return 0, fmt.Errorf("read version: %w", err)
	}
	return Version(value), nil
}

// AntennaOn turns the antenna on by enabling pins TX1 and TX2
func (d *Device) AntennaOn(_ context.Context) error {
	value, err := d.readRegister(TxControlReg)
	if err != nil {
		return fmt.Errorf("antenna on: %w", err)
	}
	if value&antennaBits != antennaBits {
		if err := d.writeRegister(TxControlReg, value|antennaBits); err != nil {
			return fmt.Errorf("antenna on: %w", err)
		}
	}
	return nil
}

// AntennaOff turns the antenna off
func (d *Device) AntennaOff(_ context.Context) error {
	if err := d.clearBits(TxControlReg, antennaBits); err != nil {
		return fmt.Errorf("antenna off: %w", err)
	}
	return nil
}

// AntennaGain returns the current receiver gain
func (d *Device) AntennaGain(_ context.Context) (RxGain, error) {
	value, err := d.readRegister(RFCfgReg)
	if err != nil {
		return 0, fmt.Errorf("read antenna gain: %w", err)
	}
	return RxGain(value & rxGainMask), nil
}

// SetAntennaGain sets the receiver gain, leaving the other RFCfgReg bits alone
func (d *Device) SetAntennaGain(ctx context.Context, gain RxGain) error {
	current, err := d.AntennaGain(ctx)
	if err != nil {
		return err
	}
	if current == gain&rxGainMask {
		return nil
	}
	if err := d.clearBits(RFCfgReg, rxGainMask); err != nil {
		return fmt.Errorf("set antenna gain: %w", err)
	}
	if err := d.setBits(RFCfgReg, byte(gain)&rxGainMask); err != nil {
		return fmt.Errorf("set antenna gain: %w", err)
	}
	return nil
}

// SoftPowerDown enters soft power down; the register set stays readable
func (d *Device) SoftPowerDown(_ context.Context) error {
	if err := d.setBits(CommandReg, bitPowerDown); err != nil {
		return fmt.Errorf("soft power down: %w", err)
	}
	return nil
}

// SoftPowerUp leaves soft power down and waits for the chip to wake
func (d *Device) SoftPowerUp(ctx context.Context) error {
	if err := d.clearBits(CommandReg, bitPowerDown); err != nil {
		return fmt.Errorf("soft power up: %w", err)
	}

	deadline := time.Now().Add(powerUpTimeout)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		value, err := d.readRegister(CommandReg)
		if err != nil {
			return fmt.Errorf("soft power up: %w", err)
		}
		if value&bitPowerDown == 0 {
			return nil
		}
		time.Sleep(time.Millisecond)
	}
	return fmt.Errorf("%w: chip did not power up", ErrTimeout)
}

// IsInitialized reports whether Init completed successfully
func (d *Device) IsInitialized() bool {
	return d.initialized
}

// Close closes the device connection
func (d *Device) Close() error {
	d.initialized = false
	if d.transport != nil {
		if err := d.transport.Close(); err != nil {
			return fmt.Errorf("failed to close transport: %w", err)
		}
	}
	return nil
}
