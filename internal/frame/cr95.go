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

package frame

import (
	"errors"
	"fmt"
)

// CR95HF-class reader command codes
const (
	ReaderCmdIDN            = 0x01
	ReaderCmdProtocolSelect = 0x02
	ReaderCmdSendRecv       = 0x04
	ReaderCmdIdle           = 0x07
	ReaderCmdEcho           = 0x55
)

// Reader protocol selectors for ProtocolSelect
const (
	ReaderProtocolFieldOff = 0x00
	ReaderProtocolISO15693 = 0x01

	// ReaderISO15693Params selects 26 kbps and asks the reader to append the CRC.
	ReaderISO15693Params = 0x05
)

// Reader result codes
const (
	ReaderResultOK           = 0x00
	ReaderResultData         = 0x80
	ReaderResultInvalidLen   = 0x82
	ReaderResultInvalidProto = 0x83
	ReaderResultCommError    = 0x86
	ReaderResultTimeout      = 0x87 // frame wait time out or no tag
	ReaderResultInvalidSOF   = 0x88
	ReaderResultOverflow     = 0x89
	ReaderResultFraming      = 0x8A
	ReaderResultCRC          = 0x8D
	ReaderResultNoEOF        = 0x8E
)

// Trailing error flags appended by the reader after an ISO15693 tag response
const (
	ReaderFlagCollision = 0x01
	ReaderFlagCRCError  = 0x02
)

// ReaderTrailerLength is the number of bytes the reader appends to a tag
// response: two CRC bytes and one error flags byte.
const ReaderTrailerLength = 3

// MaxReaderDataLength is the largest data field a reader frame can carry.
const MaxReaderDataLength = 255

// Reader frame errors
var (
	ErrReaderFrameShort = errors.New("reader frame too short")
	ErrReaderDataLength = errors.New("reader data length mismatch")
	ErrReaderTooLarge   = errors.New("reader data too large")
)

// ReaderError is a non-success result code returned by the reader.
type ReaderError struct {
	Code byte
}

func (e *ReaderError) Error() string {
	return fmt.Sprintf("reader result %02X: %s", e.Code, readerResultText(e.Code))
}

// Timeout reports whether the reader gave up waiting for the tag.
func (e *ReaderError) Timeout() bool {
	return e.Code == ReaderResultTimeout
}

func readerResultText(code byte) string {
	switch code {
	case ReaderResultInvalidLen:
		return "invalid command length"
	case ReaderResultInvalidProto:
		return "invalid protocol"
	case ReaderResultCommError:
		return "communication error"
	case ReaderResultTimeout:
		return "no tag response"
	case ReaderResultInvalidSOF:
		return "invalid SOF"
	case ReaderResultOverflow:
		return "receive buffer overflow"
	case ReaderResultFraming:
		return "framing error"
	case ReaderResultCRC:
		return "CRC error"
	case ReaderResultNoEOF:
		return "reception lost without EOF"
	default:
		return "unknown"
	}
}

// BuildReaderCommand builds a reader frame: command, length, data.
func BuildReaderCommand(cmd byte, data []byte) ([]byte, error) {
	if len(data) > MaxReaderDataLength {
		return nil, ErrReaderTooLarge
	}
	out := make([]byte, 0, 2+len(data))
	out = append(out, cmd, byte(len(data)))
	return append(out, data...), nil
}

// ParseReaderResponse validates a reader frame (result code, length, data) and
// returns the data field. Result codes other than OK and Data are returned as
// *ReaderError.
func ParseReaderResponse(resp []byte) ([]byte, error) {
	if len(resp) < 2 {
		return nil, ErrReaderFrameShort
	}
	code, n := resp[0], int(resp[1])
	if code != ReaderResultOK && code != ReaderResultData {
		return nil, &ReaderError{Code: code}
	}
	if len(resp) != 2+n {
		return nil, fmt.Errorf("%w: header says %d, got %d", ErrReaderDataLength, n, len(resp)-2)
	}
	data := make([]byte, n)
	copy(data, resp[2:])
	return data, nil
}

// StripReaderTrailer removes the CRC and error flags the reader appends to an
// ISO15693 response, checking the flags and the CRC on the way.
func StripReaderTrailer(data []byte) ([]byte, error) {
	if len(data) < ReaderTrailerLength+1 {
		return nil, ErrReaderFrameShort
	}
	flags := data[len(data)-1]
	if flags&ReaderFlagCollision != 0 {
		return nil, &ReaderError{Code: ReaderResultCommError}
	}
	withCRC := data[:len(data)-1]
	if flags&ReaderFlagCRCError != 0 || !ValidateCRC(withCRC) {
		return nil, &ReaderError{Code: ReaderResultCRC}
	}
	out := make([]byte, len(withCRC)-2)
	copy(out, withCRC)
	return out, nil
}
