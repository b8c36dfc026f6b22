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

	"github.com/ZaparooProject/go-tagdump/internal/frame"
)

// UID is the 8 byte tag identifier in wire order (least significant byte
// first), exactly as returned by Inventory.
type UID []byte

// Reversed returns the UID in display order (most significant byte first).
func (u UID) Reversed() UID {
	out := make(UID, len(u))
	for i, b := range u {
		out[len(u)-1-i] = b
	}
	return out
}

// String returns the UID in display order as uppercase hex.
func (u UID) String() string {
	return ToPlainHex(u.Reversed())
}

// Equal reports whether both UIDs hold the same bytes.
func (u UID) Equal(other UID) bool {
	return bytes.Equal(u, other)
}

// Valid reports whether the UID has the expected length.
func (u UID) Valid() bool {
	return len(u) == frame.UIDLength
}

// Manufacturer returns the IC manufacturer code, the second most significant
// byte of the UID.
func (u UID) Manufacturer() byte {
	if !u.Valid() {
		return 0
	}
	return u[frame.UIDLength-2]
}

// ManufacturerName returns a name for well known manufacturer codes.
func (u UID) ManufacturerName() string {
	switch u.Manufacturer() {
	case 0x02:
		return "STMicroelectronics"
	case 0x04:
		return "NXP"
	case 0x07:
		return "Texas Instruments"
	case 0x16:
		return "EM Microelectronic"
	default:
		return "unknown"
	}
}
