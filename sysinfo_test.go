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
	"github.com/stretchr/testify/require"
)

func TestParseSystemInfo(t *testing.T) {
	t.Parallel()

	payload := append([]byte{0x0F}, testUID...)
	payload = append(payload, 0x00, 0x00, 0x4F, 0x03, 0x01)

	info, err := ParseSystemInfo(payload)
	require.NoError(t, err)
	assert.Equal(t, UID(testUID), info.UID)
	assert.True(t, info.HasDSFID)
	assert.True(t, info.HasAFI)
	assert.True(t, info.HasMemorySize)
	assert.True(t, info.HasICReference)
	assert.Equal(t, 80, info.BlockCount)
	assert.Equal(t, 4, info.BlockSize)
	assert.Equal(t, 320, info.MemoryBytes())
	assert.Equal(t, byte(0x01), info.ICReference)
}

func TestParseSystemInfoOptionalFields(t *testing.T) {
	t.Parallel()

	payload := append([]byte{InfoFlagAFI}, testUID...)
	payload = append(payload, 0xAB)

	info, err := ParseSystemInfo(payload)
	require.NoError(t, err)
	assert.False(t, info.HasDSFID)
	assert.True(t, info.HasAFI)
	assert.Equal(t, byte(0xAB), info.AFI)
	assert.Zero(t, info.MemoryBytes())
}

func TestParseSystemInfoTruncated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "empty", payload: nil},
		{name: "short UID", payload: []byte{0x00, 0x01, 0x02}},
		{name: "memory size missing", payload: append(append([]byte{InfoFlagMemorySize}, testUID...), 0x4F)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseSystemInfo(tt.payload)
			require.ErrorIs(t, err, ErrFrameTooShort)
		})
	}
}
