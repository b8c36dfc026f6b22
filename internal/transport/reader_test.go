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

package transport

import (
	"errors"
	"testing"

	tagdump "github.com/ZaparooProject/go-tagdump"
	"github.com/ZaparooProject/go-tagdump/internal/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTagResponse(t *testing.T) {
	t.Parallel()

	tagResp := frame.AppendCRC([]byte{0x00, 0xAA, 0xBB})
	tagResp = append(tagResp, 0x00)
	resp := append([]byte{frame.ReaderResultData, byte(len(tagResp))}, tagResp...)

	got, err := DecodeTagResponse("transceive", "test", resp)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xAA, 0xBB}, got)
}

func TestDecodeTagResponseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wantErr  error
		name     string
		resp     []byte
		wantType tagdump.ErrorType
	}{
		{
			name:     "no tag",
			resp:     []byte{frame.ReaderResultTimeout, 0x00},
			wantErr:  tagdump.ErrTransportTimeout,
			wantType: tagdump.ErrorTypeTimeout,
		},
		{
			name:     "crc error",
			resp:     []byte{frame.ReaderResultData, 0x04, 0x00, 0x12, 0x34, 0x00},
			wantErr:  tagdump.ErrTransportRead,
			wantType: tagdump.ErrorTypeTransient,
		},
		{
			name:     "short frame",
			resp:     []byte{frame.ReaderResultData},
			wantErr:  tagdump.ErrTransportRead,
			wantType: tagdump.ErrorTypeTransient,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeTagResponse("transceive", "test", tt.resp)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantType, tagdump.GetErrorType(err))
		})
	}
}

func TestCheckReaderOK(t *testing.T) {
	t.Parallel()

	require.NoError(t, CheckReaderOK("protocolSelect", "test", []byte{0x00, 0x00}))
	err := CheckReaderOK("protocolSelect", "test", []byte{frame.ReaderResultInvalidProto, 0x00})
	require.ErrorIs(t, err, tagdump.ErrTransportRead)
}

func TestMapReaderErrorPassthrough(t *testing.T) {
	t.Parallel()

	orig := tagdump.NewTimeoutError("read", "test")
	assert.Same(t, orig, MapReaderError("op", "p", orig))

	other := errors.New("port vanished")
	err := MapReaderError("op", "p", other)
	require.ErrorIs(t, err, other)
	assert.Equal(t, tagdump.ErrorTypePermanent, tagdump.GetErrorType(err))
}
