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
	"errors"
	"fmt"

	"github.com/hsanjuan/go-ndef"
)

// NDEF errors
var (
	ErrNoNDEF                     = errors.New("no NDEF message found")
	ErrInvalidCapabilityContainer = errors.New("invalid capability container")
)

// Type 5 tag constants
const (
	ccMagic4Byte = 0xE1
	ccMagic8Byte = 0xE2

	tlvNull       = 0x00
	tlvLock       = 0x01
	tlvMemory     = 0x02
	tlvNDEF       = 0x03
	tlvTerminator = 0xFE
)

// CapabilityContainer is the NFC Forum Type 5 tag capability container found
// at the start of block 0.
type CapabilityContainer struct {
	Magic      byte
	Version    byte
	Access     byte
	Features   byte
	MemorySize int
	Length     int
}

// ParseCapabilityContainer decodes the capability container at the start of
// the tag memory.
func ParseCapabilityContainer(mem []byte) (*CapabilityContainer, error) {
	if len(mem) < 4 {
		return nil, fmt.Errorf("%w: memory too short", ErrInvalidCapabilityContainer)
	}
	cc := &CapabilityContainer{
		Magic:    mem[0],
		Version:  mem[1] >> 4,
		Access:   mem[1] & 0x0F,
		Features: mem[3],
		Length:   4,
	}
	switch {
	case cc.Magic != ccMagic4Byte && cc.Magic != ccMagic8Byte:
		return nil, fmt.Errorf("%w: magic %02X", ErrInvalidCapabilityContainer, cc.Magic)
	case mem[2] != 0:
		cc.MemorySize = int(mem[2]) * 8
	default:
		if len(mem) < 8 {
			return nil, fmt.Errorf("%w: extended length truncated", ErrInvalidCapabilityContainer)
		}
		cc.MemorySize = (int(mem[6])<<8 | int(mem[7])) * 8
		cc.Length = 8
	}
	return cc, nil
}

// FindNDEF returns the raw bytes of the first NDEF TLV in the tag memory.
func FindNDEF(mem []byte) ([]byte, error) {
	cc, err := ParseCapabilityContainer(mem)
	if err != nil {
		return nil, err
	}

	for i := cc.Length; i < len(mem); {
		tag := mem[i]
		i++
		switch tag {
		case tlvNull:
			continue
		case tlvTerminator:
			return nil, ErrNoNDEF
		}

		if i >= len(mem) {
			break
		}
		length := int(mem[i])
		i++
		if length == 0xFF {
			if i+2 > len(mem) {
				break
			}
			length = int(mem[i])<<8 | int(mem[i+1])
			i += 2
		}
		if i+length > len(mem) {
			return nil, fmt.Errorf("%w: TLV %02X overruns memory", ErrNoNDEF, tag)
		}
		if tag == tlvNDEF {
			out := make([]byte, length)
			copy(out, mem[i:i+length])
			return out, nil
		}
		i += length
	}
	return nil, ErrNoNDEF
}

// ReadNDEF decodes the NDEF message stored in the captured blocks.
func ReadNDEF(rec *DumpRecord) (*ndef.Message, error) {
	raw, err := FindNDEF(rec.Memory())
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, ErrNoNDEF
	}
	msg := &ndef.Message{}
	if _, err := msg.Unmarshal(raw); err != nil {
		return nil, fmt.Errorf("failed to parse NDEF message: %w", err)
	}
	return msg, nil
}
