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

package tagdump

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUID(t *testing.T) {
	t.Parallel()

	uid := UID{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x04, 0xE0}
	assert.True(t, uid.Valid())
	assert.Equal(t, "E004665544332211", uid.String())
	assert.Equal(t, UID{0xE0, 0x04, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11}, uid.Reversed())
	assert.Equal(t, byte(0x04), uid.Manufacturer())
	assert.Equal(t, "NXP", uid.ManufacturerName())
	assert.True(t, uid.Equal(UID{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x04, 0xE0}))
	assert.False(t, uid.Equal(uid.Reversed()))

	short := UID{0x01}
	assert.False(t, short.Valid())
	assert.Zero(t, short.Manufacturer())
	assert.Equal(t, "unknown", short.ManufacturerName())
}
