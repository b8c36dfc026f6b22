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
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the capture time format used in report filenames.
const TimestampLayout = "20060102150405"

// Report is the rendered form of a complete DumpRecord.
type Report struct {
	Filename string
	Content  string
}

const upperHex = "0123456789ABCDEF"

// ToCArrayHex renders b as comma separated C style byte literals, for
// example "0x0A,0xFF". An empty slice renders as an empty string.
func ToCArrayHex(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(b)*5 - 1)
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString("0x")
		sb.WriteByte(upperHex[v>>4])
		sb.WriteByte(upperHex[v&0x0F])
	}
	return sb.String()
}

// ToPlainHex renders b as uppercase hex without separators.
func ToPlainHex(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// FilenameFor returns the report filename for a tag and capture time: the
// UID in display order, an underscore, the timestamp and ".txt".
func FilenameFor(uid []byte, ts time.Time) string {
	return UID(uid).String() + "_" + ts.Format(TimestampLayout) + ".txt"
}

// RenderReport renders a complete record into its report. The content holds
// the inventory, sysInfo, signature and blocks sections in that order.
func RenderReport(rec *DumpRecord, ts time.Time) (Report, error) {
	if !rec.Complete() {
		return Report{}, ErrIncompleteRecord
	}

	blocks := make([]string, len(rec.Blocks))
	for i, blk := range rec.Blocks {
		blocks[i] = ToCArrayHex(blk)
	}

	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "inventory: %s\n", ToCArrayHex(rec.Inventory))
	_, _ = fmt.Fprintf(&sb, "sysInfo: %s\n", ToCArrayHex(rec.SystemInfo))
	_, _ = fmt.Fprintf(&sb, "signature: %s\n", ToCArrayHex(rec.Signature))
	_, _ = fmt.Fprintf(&sb, "blocks:\n%s\n", strings.Join(blocks, ", "))

	return Report{
		Filename: FilenameFor(rec.UID, ts),
		Content:  sb.String(),
	}, nil
}
