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

package testing

import (
	"sync"

	"github.com/ZaparooProject/go-tagdump/internal/frame"
)

// CR95Emulator answers CR95HF reader commands on behalf of a virtual tag.
type CR95Emulator struct {
	Tag *VirtualTag
	// IgnoreEchoes is the number of echo commands dropped before the reader
	// starts answering, simulating a reader that is still waking up.
	IgnoreEchoes int
	mu           sync.Mutex
	fieldOn      bool
	commands     []byte
}

// NewCR95Emulator creates an emulator with tag in its field.
func NewCR95Emulator(tag *VirtualTag) *CR95Emulator {
	return &CR95Emulator{Tag: tag}
}

// FieldOn reports whether the ISO15693 protocol is selected.
func (e *CR95Emulator) FieldOn() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fieldOn
}

// Commands returns the reader command codes received so far.
func (e *CR95Emulator) Commands() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]byte(nil), e.commands...)
}

// Process handles one reader command frame (cmd, len, data) and returns the
// reader's reply, or nil when the reader stays silent.
func (e *CR95Emulator) Process(req []byte) []byte {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(req) == 0 {
		return nil
	}
	cmd := req[0]
	e.commands = append(e.commands, cmd)

	if cmd == frame.ReaderCmdEcho {
		if e.IgnoreEchoes > 0 {
			e.IgnoreEchoes--
			return nil
		}
		return []byte{frame.ReaderCmdEcho}
	}
	if len(req) < 2 || len(req) != 2+int(req[1]) {
		return []byte{frame.ReaderResultInvalidLen, 0x00}
	}
	data := req[2:]

	switch cmd {
	case frame.ReaderCmdIDN:
		idn := append([]byte("NFC FS2JAST4"), 0x00, 0x00, 0x00)
		return append([]byte{frame.ReaderResultOK, byte(len(idn))}, idn...)
	case frame.ReaderCmdProtocolSelect:
		if len(data) < 1 {
			return []byte{frame.ReaderResultInvalidLen, 0x00}
		}
		switch data[0] {
		case frame.ReaderProtocolFieldOff:
			e.fieldOn = false
		case frame.ReaderProtocolISO15693:
			e.fieldOn = true
		default:
			return []byte{frame.ReaderResultInvalidProto, 0x00}
		}
		return []byte{frame.ReaderResultOK, 0x00}
	case frame.ReaderCmdSendRecv:
		if !e.fieldOn {
			return []byte{frame.ReaderResultInvalidProto, 0x00}
		}
		resp, ok := e.Tag.Handle(data)
		if !ok {
			return []byte{frame.ReaderResultTimeout, 0x00}
		}
		payload := append(frame.AppendCRC(resp), 0x00)
		return append([]byte{frame.ReaderResultData, byte(len(payload))}, payload...)
	default:
		return []byte{frame.ReaderResultInvalidProto, 0x00}
	}
}
