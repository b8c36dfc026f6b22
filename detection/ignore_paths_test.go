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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPathIgnored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   string
		ignore []string
		want   bool
	}{
		// guards
		{name: "nil ignore list", path: "/dev/ttyUSB0", ignore: nil, want: false},
		{name: "empty device path", path: "", ignore: []string{""}, want: false},
		{name: "blank entries skipped", path: "/dev/ttyACM0", ignore: []string{"", "/dev/ttyACM0"}, want: true},

		// serial names as reported by the enumerator
		{name: "linux usb cdc", path: "/dev/ttyACM0", ignore: []string{"/dev/ttyACM0"}, want: true},
		{name: "linux usb cdc other index", path: "/dev/ttyACM1", ignore: []string{"/dev/ttyACM0"}, want: false},
		{name: "pi uart", path: "/dev/serial0", ignore: []string{"/dev/SERIAL0"}, want: true},
		{name: "trailing slash", path: "/dev/ttyUSB0", ignore: []string{"/dev/ttyUSB0/"}, want: true},
		{name: "dot segments", path: "/dev/./ttyUSB0", ignore: []string{"/dev/ttyUSB0"}, want: true},
		{
			name: "macos callout vs dialin", path: "/dev/cu.usbserial-1420",
			ignore: []string{"/dev/tty.usbserial-1420"}, want: false,
		},
		{
			name: "macos callout exact", path: "/dev/cu.usbserial-1420",
			ignore: []string{"/dev/cu.USBSERIAL-1420"}, want: true,
		},
		{name: "windows com port", path: "COM12", ignore: []string{"com12"}, want: true},
		{name: "windows com prefix only", path: "COM12", ignore: []string{"COM1"}, want: false},

		// spi ports as named by periph
		{name: "spi port name", path: "SPI0.0", ignore: []string{"spi0.0"}, want: true},
		{name: "spi other chip select", path: "SPI0.1", ignore: []string{"SPI0.0"}, want: false},
		{name: "spi device node", path: "/dev/spidev1.0", ignore: []string{"/dev/spidev0.0", "/dev/spidev1.0"}, want: true},
		{name: "spi name vs node", path: "SPI0.0", ignore: []string{"/dev/spidev0.0"}, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsPathIgnored(tt.path, tt.ignore),
				"IsPathIgnored(%q, %v)", tt.path, tt.ignore)
		})
	}
}

func TestDefaultOptionsIgnoreNothing(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	assert.Nil(t, opts.IgnorePaths)
	assert.False(t, IsPathIgnored("/dev/ttyUSB0", opts.IgnorePaths))

	opts.IgnorePaths = append(opts.IgnorePaths, "/dev/ttyUSB0")
	assert.True(t, IsPathIgnored("/dev/ttyUSB0", opts.IgnorePaths))
}
