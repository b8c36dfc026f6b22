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

import "github.com/ZaparooProject/go-tagdump/internal/frame"

// ISO15693 command codes used by tests
const (
	CmdInventory          = frame.CmdInventory
	CmdGetSystemInfo      = frame.CmdGetSystemInfo
	CmdReadSignature      = frame.CmdReadSignature
	CmdReadMultipleBlocks = frame.CmdReadMultipleBlocks
)

// Test UIDs in wire order
var (
	TestSLIX2UID  = []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x04, 0xE0}
	TestOtherUID  = []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0xE0}
	TestSLIX2Name = "E004665544332211"
)

// BuildInventoryResponse creates an Inventory response: status, DSFID, UID.
func BuildInventoryResponse(dsfid byte, uid []byte) []byte {
	resp := []byte{0x00, dsfid}
	return append(resp, uid...)
}

// BuildSystemInfoResponse creates a Get System Information response with all
// optional fields present.
func BuildSystemInfoResponse(uid []byte, dsfid, afi byte, blockCount, blockSize int, icRef byte) []byte {
	resp := []byte{0x00, 0x0F}
	resp = append(resp, uid...)
	return append(resp, dsfid, afi, byte(blockCount-1), byte(blockSize-1), icRef)
}

// BuildSignatureResponse creates a Read Signature response.
func BuildSignatureResponse(sig []byte) []byte {
	return append([]byte{0x00}, sig...)
}

// BuildReadBlocksResponse creates a Read Multiple Blocks response from the
// given blocks.
func BuildReadBlocksResponse(blocks [][]byte) []byte {
	resp := []byte{0x00}
	for _, b := range blocks {
		resp = append(resp, b...)
	}
	return resp
}

// BuildErrorResponse creates an error response carrying code.
func BuildErrorResponse(code byte) []byte {
	return []byte{frame.ResponseFlagError, code}
}
