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

// Package spi lists SPI ports that may have a CR95HF reader attached.
// Importing it registers the detector.
package spi

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ZaparooProject/go-tagdump/detection"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// detector implements the Detector interface for SPI ports
type detector struct {
	init     func() error
	allPorts func() []*spireg.Ref
}

// New creates a new SPI detector
func New() detection.Detector {
	return &detector{
		init: func() error {
			_, err := host.Init()
			return err
		},
		allPorts: spireg.All,
	}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return "spi"
}

// Detect lists the SPI ports known to periph. SPI has no device discovery, so
// every port is reported with low confidence and never probed.
func (d *detector) Detect(_ context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	if err := d.init(); err != nil {
		return nil, fmt.Errorf("%w: %w", detection.ErrUnsupportedPlatform, err)
	}

	var devices []detection.DeviceInfo
	for _, ref := range d.allPorts() {
		if detection.IsPathIgnored(ref.Name, opts.IgnorePaths) {
			continue
		}
		devices = append(devices, detection.DeviceInfo{
			Transport:  "spi",
			Path:       ref.Name,
			Name:       "SPI port " + ref.Name,
			Confidence: detection.Low,
			Metadata: map[string]string{
				"number": strconv.Itoa(ref.Number),
			},
		})
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}
