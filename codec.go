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

// EncodeInventory builds a single-slot Inventory request. The two trailing
// bytes are the mask length and mask placeholders.
func EncodeInventory() []byte {
	return []byte{frame.FlagInventory1Slot, frame.CmdInventory, 0x00, 0x00}
}

// EncodeGetSystemInfo builds an addressed Get System Information request.
func EncodeGetSystemInfo(uid []byte) ([]byte, error) {
	return encodeAddressed([]byte{frame.FlagAddressed, frame.CmdGetSystemInfo}, uid)
}

// EncodeGetSignature builds an addressed NXP Read Signature request.
func EncodeGetSignature(uid []byte) ([]byte, error) {
	return encodeAddressed([]byte{frame.FlagAddressed, frame.CmdReadSignature, frame.NXPManufacturerCode}, uid)
}

// EncodeReadMultipleBlocks builds an addressed Read Multiple Blocks request.
//
// blockCount is written as given. Tags interpret it as the number of blocks
// minus one, so callers pass 0x0F to read 16 blocks.
func EncodeReadMultipleBlocks(uid []byte, startBlock, blockCount byte) ([]byte, error) {
	return encodeAddressed([]byte{frame.FlagAddressed, frame.CmdReadMultipleBlocks}, uid, startBlock, blockCount)
}

func encodeAddressed(prefix, uid []byte, params ...byte) ([]byte, error) {
	if err := checkUID(uid); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(prefix)+len(uid)+len(params))
	out = append(out, prefix...)
	out = append(out, uid...)
	return append(out, params...), nil
}

func checkUID(uid []byte) error {
	if len(uid) != frame.UIDLength {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidUIDLength, len(uid), frame.UIDLength)
	}
	return nil
}

// Decode strips the response flags byte and returns the payload.
func Decode(resp []byte) ([]byte, error) {
	if len(resp) < frame.StatusLength {
		return nil, ErrFrameTooShort
	}
	payload := make([]byte, len(resp)-frame.StatusLength)
	copy(payload, resp[frame.StatusLength:])
	return payload, nil
}

// ParseInventory extracts the UID from an Inventory payload. The first byte
// of the payload is the DSFID, the next eight are the UID in wire order.
func ParseInventory(payload []byte) (UID, error) {
	if len(payload) < frame.InventoryPayloadMin {
		return nil, fmt.Errorf("%w: payload is %d bytes, want at least %d",
			ErrMalformedInventoryResponse, len(payload), frame.InventoryPayloadMin)
	}
	uid := make(UID, frame.UIDLength)
	copy(uid, payload[1:frame.InventoryPayloadMin])
	return uid, nil
}
