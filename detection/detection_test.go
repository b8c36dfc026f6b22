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

package detection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDetector struct {
	err       error
	transport string
	devices   []DeviceInfo
}

func (f *fakeDetector) Transport() string { return f.transport }

func (f *fakeDetector) Detect(context.Context, *Options) ([]DeviceInfo, error) {
	return f.devices, f.err
}

// withRegistry swaps the detector registry for the duration of a test.
func withRegistry(t *testing.T, detectors ...Detector) {
	t.Helper()

	registryMu.Lock()
	saved := registry
	registry = make(map[string]Detector)
	registryMu.Unlock()

	for _, d := range detectors {
		RegisterDetector(d)
	}
	t.Cleanup(func() {
		registryMu.Lock()
		registry = saved
		registryMu.Unlock()
	})
}

//nolint:paralleltest // mutates the global detector registry
func TestDetectAllSortsByConfidence(t *testing.T) {
	withRegistry(t,
		&fakeDetector{transport: "uart", devices: []DeviceInfo{
			{Path: "/dev/ttyUSB0", Confidence: Low},
			{Path: "/dev/ttyACM0", Confidence: High},
		}},
		&fakeDetector{transport: "spi", devices: []DeviceInfo{
			{Path: "SPI0.0", Confidence: Medium},
		}},
		&fakeDetector{transport: "other", err: ErrUnsupportedPlatform},
	)

	devices, err := DetectAll(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, devices, 3)
	assert.Equal(t, "/dev/ttyACM0", devices[0].Path)
	assert.Equal(t, "SPI0.0", devices[1].Path)
	assert.Equal(t, "/dev/ttyUSB0", devices[2].Path)
}

//nolint:paralleltest // mutates the global detector registry
func TestDetectAllNoDevices(t *testing.T) {
	withRegistry(t, &fakeDetector{transport: "uart", err: ErrNoDevicesFound})

	_, err := DetectAll(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoDevicesFound)
}

//nolint:paralleltest // mutates the global detector registry
func TestDetectAllFailure(t *testing.T) {
	boom := errors.New("enumeration failed")
	withRegistry(t, &fakeDetector{transport: "uart", err: boom})

	_, err := DetectAll(context.Background(), nil)
	require.ErrorIs(t, err, boom)
}

//nolint:paralleltest // mutates the global detector registry
func TestDetectors(t *testing.T) {
	withRegistry(t, &fakeDetector{transport: "uart"}, &fakeDetector{transport: "spi"})

	got := Detectors()
	require.Len(t, got, 2)
	assert.Equal(t, "spi", got[0].Transport())
	assert.Equal(t, "uart", got[1].Transport())
}

func TestBlocklist(t *testing.T) {
	t.Parallel()

	blocklist := DefaultBlocklist()
	assert.True(t, IsBlocked("1546:01a7", blocklist))
	assert.True(t, IsBlocked(" 1546:01A8 ", blocklist))
	assert.False(t, IsBlocked("0403:6001", blocklist))
	assert.False(t, IsBlocked("", blocklist))
}

func TestFormatVIDPID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0403:6001", FormatVIDPID("0403", "6001"))
	assert.Equal(t, "10C4:EA60", FormatVIDPID("10c4", "ea60"))
	assert.Empty(t, FormatVIDPID("", "6001"))
}

func TestBridgeName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "WCH CH340", BridgeName("1a86:7523"))
	assert.Empty(t, BridgeName("FFFF:FFFF"))
}

func TestConfidenceString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "high", High.String())
	assert.Equal(t, "unknown", Confidence(9).String())
}
