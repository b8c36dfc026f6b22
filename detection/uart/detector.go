// go-tagdump
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-tagdump.
//
// go-tagdump is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-tagdump is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-tagdump; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package uart detects CR95HF readers on serial ports. Importing it registers
// the detector.
package uart

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/ZaparooProject/go-tagdump/detection"
	tuart "github.com/ZaparooProject/go-tagdump/transport/uart"
	"go.bug.st/serial/enumerator"
)

// detector implements the Detector interface for serial ports
type detector struct {
	listPorts func() ([]*enumerator.PortDetails, error)
	probe     func(ctx context.Context, path string) error
}

// New creates a new serial port detector
func New() detection.Detector {
	return &detector{
		listPorts: enumerator.GetDetailedPortsList,
		probe:     probePort,
	}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return "uart"
}

// Detect lists serial ports and, in safe mode, confirms each candidate by
// waking the reader.
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	ports, err := d.listPorts()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	var devices []detection.DeviceInfo
	for _, p := range ports {
		if err := ctx.Err(); err != nil {
			return devices, detection.ErrDetectionTimeout
		}

		device, ok := d.deviceInfo(ctx, p, opts)
		if ok {
			devices = append(devices, device)
		}
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

func (d *detector) deviceInfo(
	ctx context.Context, p *enumerator.PortDetails, opts *detection.Options,
) (detection.DeviceInfo, bool) {
	if detection.IsPathIgnored(p.Name, opts.IgnorePaths) || isSystemPort(p.Name) {
		return detection.DeviceInfo{}, false
	}

	vidpid := ""
	if p.IsUSB {
		vidpid = detection.FormatVIDPID(p.VID, p.PID)
	}
	if detection.IsBlocked(vidpid, opts.Blocklist) {
		return detection.DeviceInfo{}, false
	}

	device := detection.DeviceInfo{
		Transport:  "uart",
		Path:       p.Name,
		Name:       p.Name,
		Confidence: detection.Low,
		Metadata:   map[string]string{},
	}
	if p.IsUSB {
		device.Metadata["vidpid"] = vidpid
		device.Metadata["serial"] = p.SerialNumber
		device.Metadata["product"] = p.Product
		if p.Product != "" {
			device.Name = p.Product
		}
		if bridge := detection.BridgeName(vidpid); bridge != "" {
			device.Metadata["bridge"] = bridge
			device.Confidence = detection.Medium
		}
	}

	if opts.Mode == detection.Passive {
		return device, true
	}

	if err := d.probe(ctx, p.Name); err != nil {
		if device.Confidence == detection.Low {
			return detection.DeviceInfo{}, false
		}
		device.Metadata["probe_error"] = err.Error()
		return device, true
	}
	device.Confidence = detection.High
	return device, true
}

// probePort wakes the reader and selects ISO15693, then turns the field off.
func probePort(_ context.Context, path string) error {
	t, err := tuart.New(path)
	if err != nil {
		return err
	}
	if err := t.Connect(); err != nil {
		return err
	}
	return t.Close()
}

// isSystemPort filters out ports that are never readers.
func isSystemPort(name string) bool {
	lower := strings.ToLower(name)
	if runtime.GOOS == "darwin" && strings.Contains(lower, "bluetooth") {
		return true
	}
	return strings.Contains(lower, "console") || strings.Contains(lower, "debug")
}
