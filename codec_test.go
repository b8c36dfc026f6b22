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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUID = []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}

func TestEncodeInventory(t *testing.T) {
	t.Parallel()

	first := EncodeInventory()
	second := EncodeInventory()
	assert.Equal(t, []byte{0x36, 0x01, 0x00, 0x00}, first)
	assert.Equal(t, first, second)

	first[0] = 0xFF
	assert.Equal(t, byte(0x36), EncodeInventory()[0], "frames must not share backing storage")
}

func TestEncodeAddressedCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		encode func(uid []byte) ([]byte, error)
		name   string
		prefix []byte
		params []byte
	}{
		{
			name:   "get system info",
			encode: EncodeGetSystemInfo,
			prefix: []byte{0x22, 0x2B},
		},
		{
			name:   "get signature",
			encode: EncodeGetSignature,
			prefix: []byte{0x22, 0xBD, 0x04},
		},
		{
			name: "read multiple blocks",
			encode: func(uid []byte) ([]byte, error) {
				return EncodeReadMultipleBlocks(uid, 0x20, 0x0F)
			},
			prefix: []byte{0x22, 0x23},
			params: []byte{0x20, 0x0F},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.encode(testUID)
			require.NoError(t, err)
			require.Len(t, got, len(tt.prefix)+8+len(tt.params))
			assert.Equal(t, tt.prefix, got[:len(tt.prefix)])
			assert.Equal(t, testUID, got[len(tt.prefix):len(tt.prefix)+8])
			assert.Equal(t, tt.params, nilIfEmpty(got[len(tt.prefix)+8:]))
		})
	}
}

func nilIfEmpty(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

func TestEncodeReadMultipleBlocksKeepsCount(t *testing.T) {
	t.Parallel()

	got, err := EncodeReadMultipleBlocks(testUID, 0x40, 0x0F)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x40, 0x0F}, got[len(got)-2:])
}

func TestEncodeRejectsBadUID(t *testing.T) {
	t.Parallel()

	for _, uid := range [][]byte{nil, testUID[:7], append(bytes.Clone(testUID), 0x09)} {
		_, err := EncodeGetSystemInfo(uid)
		require.ErrorIs(t, err, ErrInvalidUIDLength)
		_, err = EncodeGetSignature(uid)
		require.ErrorIs(t, err, ErrInvalidUIDLength)
		_, err = EncodeReadMultipleBlocks(uid, 0, 0x0F)
		require.ErrorIs(t, err, ErrInvalidUIDLength)
	}
}

func TestEncodeCopiesUID(t *testing.T) {
	t.Parallel()

	uid := bytes.Clone(testUID)
	got, err := EncodeGetSystemInfo(uid)
	require.NoError(t, err)
	uid[0] = 0xAA
	assert.Equal(t, byte(0x01), got[2])
}

func TestDecode(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 9, 64} {
		resp := make([]byte, n)
		payload, err := Decode(resp)
		require.NoError(t, err)
		assert.Len(t, payload, n-1)
	}

	_, err := Decode(nil)
	require.ErrorIs(t, err, ErrFrameTooShort)

	payload, err := Decode([]byte{0x01, 0x10})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x10}, payload, "decode does not interpret the status byte")
}

func TestParseInventory(t *testing.T) {
	t.Parallel()

	payload := append([]byte{0x00}, testUID...)
	uid, err := ParseInventory(payload)
	require.NoError(t, err)
	assert.Equal(t, UID(testUID), uid)

	_, err = ParseInventory(payload[:8])
	require.ErrorIs(t, err, ErrMalformedInventoryResponse)

	longer := append(bytes.Clone(payload), 0xEE)
	uid, err = ParseInventory(longer)
	require.NoError(t, err)
	assert.Equal(t, UID(testUID), uid)
}
