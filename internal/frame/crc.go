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

package frame

// crcPoly is the reflected polynomial of CRC-16/ISO-IEC-13239.
const crcPoly = 0x8408

// CRC16 computes the ISO15693 frame CRC (initial 0xFFFF, reflected, final
// complement). Tags transmit it least significant byte first.
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&0x0001 != 0 {
				crc = (crc >> 1) ^ crcPoly
			} else {
				crc >>= 1
			}
		}
	}
	return ^crc
}

// AppendCRC returns data followed by its CRC16 in transmission order.
func AppendCRC(data []byte) []byte {
	crc := CRC16(data)
	out := make([]byte, 0, len(data)+2)
	out = append(out, data...)
	return append(out, byte(crc), byte(crc>>8))
}

// ValidateCRC reports whether the last two bytes of data are the CRC16 of the
// bytes before them.
func ValidateCRC(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	n := len(data) - 2
	crc := CRC16(data[:n])
	return data[n] == byte(crc) && data[n+1] == byte(crc>>8)
}
