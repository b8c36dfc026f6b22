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

// Package frame provides frame constants and helpers for ISO15693 tag commands
// and for the CR95HF-class reader protocol that carries them.
package frame

// ISO15693 request flags
const (
	// FlagInventory1Slot is the request flag byte used for a single-slot
	// inventory at high data rate with the AFI field absent.
	FlagInventory1Slot = 0x36
	// FlagAddressed is the request flag byte for addressed-mode commands
	// (high data rate, UID follows the command code).
	FlagAddressed = 0x22
)

// ISO15693 command codes
const (
	CmdInventory          = 0x01
	CmdReadSingleBlock    = 0x20
	CmdReadMultipleBlocks = 0x23
	CmdGetSystemInfo      = 0x2B
	CmdReadSignature      = 0xBD // NXP custom command
)

// NXPManufacturerCode is the IC manufacturer byte that follows custom commands.
const NXPManufacturerCode = 0x04

// ISO15693 response flag bits (byte 0 of every response)
const (
	ResponseFlagError     = 0x01
	ResponseFlagExtension = 0x08
)

// ISO15693 error codes returned after the response flags when ResponseFlagError is set
const (
	ErrCodeNotSupported       = 0x01
	ErrCodeNotRecognized      = 0x02
	ErrCodeOptionNotSupported = 0x03
	ErrCodeUnknown            = 0x0F
	ErrCodeBlockNotAvailable  = 0x10
	ErrCodeBlockLocked        = 0x11
	ErrCodeBlockNotRead       = 0x15
)

// Frame sizes
const (
	UIDLength           = 8
	StatusLength        = 1
	InventoryPayloadMin = 9 // DSFID + UID
	MaxResponseLength   = 256
)
