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
	"fmt"

	"github.com/ZaparooProject/go-tagdump/internal/frame"
)

// System information flags
const (
	InfoFlagDSFID       = 0x01
	InfoFlagAFI         = 0x02
	InfoFlagMemorySize  = 0x04
	InfoFlagICReference = 0x08
)

// SystemInfo is the decoded Get System Information payload.
type SystemInfo struct {
	UID            UID
	BlockCount     int
	BlockSize      int
	InfoFlags      byte
	DSFID          byte
	AFI            byte
	ICReference    byte
	HasDSFID       bool
	HasAFI         bool
	HasMemorySize  bool
	HasICReference bool
}

// ParseSystemInfo decodes a Get System Information payload: information
// flags, UID, then the optional DSFID, AFI, memory size and IC reference
// fields announced by the flags.
func ParseSystemInfo(payload []byte) (*SystemInfo, error) {
	const minLen = 1 + frame.UIDLength
	if len(payload) < minLen {
		return nil, fmt.Errorf("%w: system info is %d bytes, want at least %d",
			ErrFrameTooShort, len(payload), minLen)
	}

	info := &SystemInfo{
		InfoFlags: payload[0],
		UID:       append(UID(nil), payload[1:minLen]...),
	}
	rest := payload[minLen:]

	next := func(n int, field string) ([]byte, error) {
		if len(rest) < n {
			return nil, fmt.Errorf("%w: system info missing %s", ErrFrameTooShort, field)
		}
		b := rest[:n]
		rest = rest[n:]
		return b, nil
	}

	if info.InfoFlags&InfoFlagDSFID != 0 {
		b, err := next(1, "DSFID")
		if err != nil {
			return nil, err
		}
		info.DSFID, info.HasDSFID = b[0], true
	}
	if info.InfoFlags&InfoFlagAFI != 0 {
		b, err := next(1, "AFI")
		if err != nil {
			return nil, err
		}
		info.AFI, info.HasAFI = b[0], true
	}
	if info.InfoFlags&InfoFlagMemorySize != 0 {
		b, err := next(2, "memory size")
		if err != nil {
			return nil, err
		}
		info.BlockCount = int(b[0]) + 1
		info.BlockSize = int(b[1]&0x1F) + 1
		info.HasMemorySize = true
	}
	if info.InfoFlags&InfoFlagICReference != 0 {
		b, err := next(1, "IC reference")
		if err != nil {
			return nil, err
		}
		info.ICReference, info.HasICReference = b[0], true
	}
	return info, nil
}

// MemoryBytes returns the user memory size announced by the tag, or 0 when
// the memory size field is absent.
func (s *SystemInfo) MemoryBytes() int {
	if !s.HasMemorySize {
		return 0
	}
	return s.BlockCount * s.BlockSize
}
