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
	"context"
	"fmt"
)

// Transport is a half-duplex request/response session with a single tag.
// Implementations exist for CR95HF-class readers over UART and SPI, and for
// an in-process simulator.
//
// A Transport is owned by exactly one goroutine for the duration of a scan.
type Transport interface {
	// Connect opens the session with the reader and the tag field
	Connect() error

	// IsConnected returns true if the session is open
	IsConnected() bool

	// Transceive sends one frame and blocks until the tag responds
	Transceive(frame []byte) ([]byte, error)

	// Close closes the session
	Close() error

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportUART represents a reader on a serial port.
	TransportUART TransportType = "uart"
	// TransportSPI represents a reader on an SPI bus.
	TransportSPI TransportType = "spi"
	// TransportVirtual represents the in-process tag simulator.
	TransportVirtual TransportType = "virtual"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// TransportContext is implemented by transports that can abandon a blocked
// exchange when the context is cancelled.
type TransportContext interface {
	Transport

	// TransceiveContext sends one frame with context support
	TransceiveContext(ctx context.Context, frame []byte) ([]byte, error)
}

// transceive uses the context aware path when the transport offers one and
// otherwise blocks in Transceive after checking for cancellation.
func transceive(ctx context.Context, t Transport, cmd []byte) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled before sending command: %w", ctx.Err())
	default:
	}

	if tc, ok := t.(TransportContext); ok {
		return tc.TransceiveContext(ctx, cmd)
	}
	return t.Transceive(cmd)
}

// portName returns a printable name for t when it has one.
func portName(t Transport) string {
	if s, ok := t.(fmt.Stringer); ok {
		return s.String()
	}
	return string(t.Type())
}
