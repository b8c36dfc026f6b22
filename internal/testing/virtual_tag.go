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

// Package testing provides simulated tags and canned responses for tests.
package testing

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"sync"

	"github.com/ZaparooProject/go-tagdump/internal/frame"
)

// SLIX2 memory layout
const (
	SLIX2BlockCount    = 80
	SLIX2BlockSize     = 4
	SLIX2SignatureSize = 32
	SLIX2ICReference   = 0x01
)

var (
	ErrBlockOutOfRange = errors.New("block out of range")
	ErrBadBlockSize    = errors.New("block data has wrong size")
	ErrNDEFTooLarge    = errors.New("NDEF message does not fit in tag memory")
)

// VirtualTag is a simulated ISO15693 tag with the memory layout of an NXP
// ICODE SLIX2.
type VirtualTag struct {
	UID         []byte
	Signature   []byte
	Blocks      [][]byte
	mu          sync.Mutex
	DSFID       byte
	AFI         byte
	ICReference byte
	Present     bool
}

// NewVirtualSLIX2 creates a present SLIX2 with an NDEF text record. A nil uid
// selects TestSLIX2UID.
func NewVirtualSLIX2(uid []byte) *VirtualTag {
	if uid == nil {
		uid = TestSLIX2UID
	}

	tag := &VirtualTag{
		UID:         append([]byte(nil), uid...),
		Blocks:      make([][]byte, SLIX2BlockCount),
		Signature:   make([]byte, SLIX2SignatureSize),
		ICReference: SLIX2ICReference,
		Present:     true,
	}
	for i := range tag.Blocks {
		tag.Blocks[i] = make([]byte, SLIX2BlockSize)
	}
	for i := range tag.Signature {
		tag.Signature[i] = byte(0xA0 + i)
	}
	_ = tag.SetNDEFText("Hello World")
	return tag
}

// GetUIDString returns the UID in display order as lowercase hex.
func (v *VirtualTag) GetUIDString() string {
	rev := make([]byte, len(v.UID))
	for i, b := range v.UID {
		rev[len(v.UID)-1-i] = b
	}
	return hex.EncodeToString(rev)
}

// ReadBlock returns a copy of one block.
func (v *VirtualTag) ReadBlock(block int) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if block < 0 || block >= len(v.Blocks) {
		return nil, ErrBlockOutOfRange
	}
	return append([]byte(nil), v.Blocks[block]...), nil
}

// WriteBlock replaces one block.
func (v *VirtualTag) WriteBlock(block int, data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if block < 0 || block >= len(v.Blocks) {
		return ErrBlockOutOfRange
	}
	if len(data) != SLIX2BlockSize {
		return ErrBadBlockSize
	}
	copy(v.Blocks[block], data)
	return nil
}

// SetNDEFText writes a Type 5 capability container and a single NDEF text
// record to the start of the memory.
func (v *VirtualTag) SetNDEFText(text string) error {
	payload := append([]byte{0x02, 'e', 'n'}, text...)
	if len(payload) > 0xFF {
		return ErrNDEFTooLarge
	}
	record := append([]byte{0xD1, 0x01, byte(len(payload)), 'T'}, payload...)

	mem := []byte{0xE1, 0x40, SLIX2BlockCount * SLIX2BlockSize / 8, 0x01}
	mem = append(mem, 0x03, byte(len(record)))
	mem = append(mem, record...)
	mem = append(mem, 0xFE)
	if len(mem) > SLIX2BlockCount*SLIX2BlockSize {
		return ErrNDEFTooLarge
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.Blocks {
		start := i * SLIX2BlockSize
		for j := range v.Blocks[i] {
			if start+j < len(mem) {
				v.Blocks[i][j] = mem[start+j]
			} else {
				v.Blocks[i][j] = 0
			}
		}
	}
	return nil
}

// GetNDEFText returns the text of the first NDEF text record, or "".
func (v *VirtualTag) GetNDEFText() string {
	v.mu.Lock()
	mem := make([]byte, 0, len(v.Blocks)*SLIX2BlockSize)
	for _, blk := range v.Blocks {
		mem = append(mem, blk...)
	}
	v.mu.Unlock()

	idx := bytes.Index(mem, []byte{0xD1, 0x01})
	if idx < 0 || idx+4 > len(mem) || mem[idx+3] != 'T' {
		return ""
	}
	n := int(mem[idx+2])
	start := idx + 4
	if start+n > len(mem) || n < 1 {
		return ""
	}
	payload := mem[start : start+n]
	langLen := int(payload[0] & 0x3F)
	if 1+langLen > len(payload) {
		return ""
	}
	return strings.Clone(string(payload[1+langLen:]))
}

// Remove takes the tag out of the field.
func (v *VirtualTag) Remove() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Present = false
}

// Insert puts the tag back into the field.
func (v *VirtualTag) Insert() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Present = true
}

// IsPresent reports whether the tag is in the field.
func (v *VirtualTag) IsPresent() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.Present
}

// Handle answers one request frame. It returns false when the tag stays
// silent: it is not present, the frame is not understood, or an addressed
// frame carries another UID.
func (v *VirtualTag) Handle(req []byte) ([]byte, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.Present || len(req) < 2 {
		return nil, false
	}

	flags, cmd := req[0], req[1]
	if cmd == frame.CmdInventory {
		if flags != frame.FlagInventory1Slot {
			return nil, false
		}
		return BuildInventoryResponse(v.DSFID, v.UID), true
	}

	if flags != frame.FlagAddressed {
		return nil, false
	}

	switch cmd {
	case frame.CmdGetSystemInfo:
		if !v.addressed(req[2:]) {
			return nil, false
		}
		return BuildSystemInfoResponse(v.UID, v.DSFID, v.AFI, len(v.Blocks), SLIX2BlockSize, v.ICReference), true
	case frame.CmdReadSignature:
		if len(req) < 3 || req[2] != frame.NXPManufacturerCode || !v.addressed(req[3:]) {
			return nil, false
		}
		return BuildSignatureResponse(v.Signature), true
	case frame.CmdReadMultipleBlocks:
		if !v.addressed(req[2:]) || len(req) != 2+frame.UIDLength+2 {
			return nil, false
		}
		start := int(req[2+frame.UIDLength])
		count := int(req[3+frame.UIDLength]) + 1
		if start+count > len(v.Blocks) {
			return BuildErrorResponse(frame.ErrCodeBlockNotAvailable), true
		}
		return BuildReadBlocksResponse(v.Blocks[start : start+count]), true
	case frame.CmdReadSingleBlock:
		if !v.addressed(req[2:]) || len(req) != 2+frame.UIDLength+1 {
			return nil, false
		}
		block := int(req[2+frame.UIDLength])
		if block >= len(v.Blocks) {
			return BuildErrorResponse(frame.ErrCodeBlockNotAvailable), true
		}
		return BuildReadBlocksResponse(v.Blocks[block : block+1]), true
	default:
		return BuildErrorResponse(frame.ErrCodeNotSupported), true
	}
}

func (v *VirtualTag) addressed(rest []byte) bool {
	return len(rest) >= frame.UIDLength && bytes.Equal(rest[:frame.UIDLength], v.UID)
}
