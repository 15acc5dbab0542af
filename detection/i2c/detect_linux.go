//go:build linux

package i2c

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/ZaparooProject/go-mfrc522/detection"
	"golang.org/x/sys/unix"
)

const (
	// i2cSlave is the ioctl command to set slave address
	i2cSlave = 0x0703
	// i2cFuncs is the ioctl command to get adapter functionality
	i2cFuncs = 0x0705
	// i2cFuncI2C indicates plain I2C support
	i2cFuncI2C = 0x00000001
)

// findBuses lists /dev/i2c-* adapters that support plain I2C transfers
func findBuses() ([]string, error) {
	matches, err := filepath.Glob("/dev/i2c-*")
	if err != nil {
		return nil, fmt.Errorf("failed to scan for I2C devices: %w", err)
	}
	sort.Strings(matches)

	buses := make([]string, 0, len(matches))
	for _, path := range matches {
		fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
		if err != nil {
			continue
		}
		funcs, err := unix.IoctlGetUint32(fd, i2cFuncs)
		_ = unix.Close(fd)
		if err != nil || funcs&i2cFuncI2C == 0 {
			continue
		}
		buses = append(buses, path)
	}
	return buses, nil
}

// readVersion reads VersionReg of the chip at addr
func readVersion(busPath string, addr uint8) (byte, error) {
	fd, err := unix.Open(busPath, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", busPath, err)
	}
	defer func() { _ = unix.Close(fd) }()

	if err := unix.IoctlSetInt(fd, i2cSlave, int(addr)); err != nil {
		return 0, fmt.Errorf("set address 0x%02X: %w", addr, err)
	}
	if _, err := unix.Write(fd, []byte{versionReg}); err != nil {
		return 0, fmt.Errorf("write register address: %w", err)
	}
	buf := make([]byte, 1)
	if _, err := unix.Read(fd, buf); err != nil {
		return 0, fmt.Errorf("read version: %w", err)
	}
	return buf[0], nil
}

// detectLinux searches for MFRC522 devices on Linux I2C buses
func detectLinux(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	buses, err := findBuses()
	if err != nil {
		return nil, err
	}
	if len(buses) == 0 {
		return nil, detection.ErrNoDevicesFound
	}

	var devices []detection.DeviceInfo
	for _, bus := range buses {
		for _, addr := range addresses(opts.Mode) {
			select {
			case <-ctx.Done():
				return devices, detection.ErrDetectionTimeout
			default:
			}

			device, ok := probe(bus, addr, opts)
			if ok {
				devices = append(devices, device)
			}
		}
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

func probe(bus string, addr uint8, opts *detection.Options) (detection.DeviceInfo, bool) {
	devicePath := fmt.Sprintf("%s:0x%02X", bus, addr)
	if detection.IsPathIgnored(devicePath, opts.IgnorePaths) {
		return detection.DeviceInfo{}, false
	}

	device := detection.DeviceInfo{
		Transport:  "i2c",
		Path:       devicePath,
		Name:       fmt.Sprintf("MFRC522 on %s address 0x%02X", bus, addr),
		Confidence: detection.Low,
		Metadata: map[string]string{
			"bus":     bus,
			"address": fmt.Sprintf("0x%02X", addr),
		},
	}
	if opts.Mode == detection.Passive {
		return device, true
	}

	version, err := readVersion(bus, addr)
	if err != nil {
		return detection.DeviceInfo{}, false
	}
	name, known := knownVersions[version]
	if !known {
		return detection.DeviceInfo{}, false
	}
	device.Confidence = detection.High
	device.Metadata["version"] = name
	return device, true
}
