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

/*
Package tagdump captures a complete read-only dump of NXP ICODE SLIX2
(ISO15693) tags and renders it as a text report.

A dump is a fixed sequence of eight request/response exchanges with the tag:
Inventory, Get System Information, Read Signature and five Read Multiple
Blocks commands covering the 80 user blocks. The raw response payloads are
kept in a DumpRecord and rendered by RenderReport into four sections
(inventory, sysInfo, signature, blocks) written to a file named after the
UID and the capture time.

Features:
  - Reader transports for CR95HF-class readers over UART and SPI
  - In-process SLIX2 simulator transport for demos and tests
  - Reader auto-detection on serial ports
  - Append-only report files with advisory locking
  - Optional websocket live view of completed scans
  - System information and NDEF decoding for console summaries

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-tagdump"
	    "github.com/ZaparooProject/go-tagdump/transport/uart"
	)

	transport, err := uart.New("/dev/ttyUSB0")
	if err != nil {
	    log.Fatal(err)
	}

	dumper, err := tagdump.NewDumper()
	if err != nil {
	    log.Fatal(err)
	}

	// Dump connects the transport and closes it when done
	rec, err := dumper.Dump(ctx, transport)
	if err != nil {
	    log.Fatal(err)
	}

	report, err := tagdump.RenderReport(rec, time.Now())
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Printf("%s\n%s", report.Filename, report.Content)

For continuous operation use polling.Session together with scan.Worker,
which runs one scan at a time and notifies an Observer and a Sink.

Error Handling:

Every failure aborts the dump. Transport failures are *TransportError values
that can be inspected:

	if errors.Is(err, tagdump.ErrTransportTimeout) {
	    // No tag answered
	}

Thread Safety:

A Transport and a Dumper belong to one goroutine for the duration of a
scan. scan.Worker enforces this by rejecting a second scan while one is in
flight.
*/
package tagdump
