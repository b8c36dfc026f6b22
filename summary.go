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
	"strings"
)

// Summary returns a short human readable description of a dump: UID, the
// decoded system information and any NDEF records found in the blocks.
func Summary(rec *DumpRecord) string {
	if rec == nil {
		return ""
	}

	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "UID: %s (%s)\n", rec.UID, rec.UID.ManufacturerName())

	if info, err := ParseSystemInfo(rec.SystemInfo); err == nil {
		if info.HasDSFID {
			_, _ = fmt.Fprintf(&sb, "DSFID: %02X\n", info.DSFID)
		}
		if info.HasAFI {
			_, _ = fmt.Fprintf(&sb, "AFI: %02X\n", info.AFI)
		}
		if info.HasMemorySize {
			_, _ = fmt.Fprintf(&sb, "Memory: %d blocks x %d bytes\n", info.BlockCount, info.BlockSize)
		}
		if info.HasICReference {
			_, _ = fmt.Fprintf(&sb, "IC reference: %02X\n", info.ICReference)
		}
	} else {
		_, _ = fmt.Fprintf(&sb, "System info: %v\n", err)
	}

	_, _ = fmt.Fprintf(&sb, "Signature: %d bytes\n", len(rec.Signature))

	msg, err := ReadNDEF(rec)
	if err != nil {
		_, _ = fmt.Fprintf(&sb, "NDEF: %v\n", err)
		return sb.String()
	}
	for i, r := range msg.Records {
		_, _ = fmt.Fprintf(&sb, "NDEF record %d: %s %s\n", i, r.Type(), r.String())
	}
	return sb.String()
}
