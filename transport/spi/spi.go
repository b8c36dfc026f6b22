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

// Package spi provides a Transport for CR95HF-class readers on an SPI bus
package spi

import (
	"context"
	"fmt"
	"sync"
	"time"

	tagdump "github.com/ZaparooProject/go-tagdump"
	"github.com/ZaparooProject/go-tagdump/internal/frame"
	"github.com/ZaparooProject/go-tagdump/internal/transport"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	// SPI control bytes
	ctrlSend  = 0x00
	ctrlReset = 0x01
	ctrlRead  = 0x02
	ctrlPoll  = 0x03

	// Poll flag set when a reply can be read.
	flagReady = 0x08

	// Max clock frequency.
	maxClockFreq = 2 * physic.MegaHertz

	defaultTimeout = 500 * time.Millisecond
)

// txConn is the subset of spi.Conn used by the transport.
type txConn interface {
	Tx(w, r []byte) error
}

// Transport implements the tagdump.Transport interface for a CR95HF reader
// wired in SPI mode.
type Transport struct {
	conn      txConn
	port      spi.PortCloser
	busName   string
	timeout   time.Duration
	mu        sync.Mutex
	connected bool
}

// New opens the SPI port busName. Use "" for the first available port.
func New(busName string) (*Transport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	port, err := spireg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %s: %w", busName, err)
	}

	conn, err := port.Connect(maxClockFreq, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to configure SPI port %s: %w", busName, err)
	}

	return &Transport{
		conn:    conn,
		port:    port,
		busName: busName,
		timeout: defaultTimeout,
	}, nil
}

// SetTimeout sets how long to wait for the reader to have a reply ready
func (t *Transport) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("invalid timeout %s", timeout)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeout = timeout
	return nil
}

// Connect resets the reader, checks that it answers and turns on the
// ISO15693 field.
func (t *Transport) Connect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.connected {
		return nil
	}
	if t.conn == nil {
		return tagdump.NewNotConnectedError("connect", t.busName)
	}

	if err := t.tx([]byte{ctrlReset}, nil); err != nil {
		return err
	}

	resp, err := t.exchange(context.Background(), []byte{frame.ReaderCmdEcho})
	if err != nil {
		return err
	}
	if resp[0] != frame.ReaderCmdEcho {
		return tagdump.NewTransportError("echo", t.busName, tagdump.ErrReaderNotResponding, tagdump.ErrorTypeTransient)
	}

	req, err := frame.BuildReaderCommand(frame.ReaderCmdProtocolSelect,
		[]byte{frame.ReaderProtocolISO15693, frame.ReaderISO15693Params})
	if err != nil {
		return tagdump.NewTransportError("protocolSelect", t.busName, err, tagdump.ErrorTypePermanent)
	}
	if resp, err = t.exchange(context.Background(), req); err != nil {
		return err
	}
	if err := transport.CheckReaderOK("protocolSelect", t.busName, resp); err != nil {
		return err
	}

	t.connected = true
	return nil
}

// Transceive sends one ISO15693 frame through the reader
func (t *Transport) Transceive(cmd []byte) ([]byte, error) {
	return t.TransceiveContext(context.Background(), cmd)
}

// TransceiveContext sends one ISO15693 frame with context support
func (t *Transport) TransceiveContext(ctx context.Context, cmd []byte) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.connected {
		return nil, tagdump.NewNotConnectedError("transceive", t.busName)
	}

	req, err := frame.BuildReaderCommand(frame.ReaderCmdSendRecv, cmd)
	if err != nil {
		return nil, tagdump.NewTransportError("transceive", t.busName, err, tagdump.ErrorTypePermanent)
	}
	resp, err := t.exchange(ctx, req)
	if err != nil {
		return nil, err
	}
	return transport.DecodeTagResponse("transceive", t.busName, resp)
}

// exchange sends a reader command, polls until the reply is ready and reads
// it back. The echo reply is a single byte, every other reply is
// result code, length and data.
func (t *Transport) exchange(ctx context.Context, req []byte) ([]byte, error) {
	if err := t.tx(append([]byte{ctrlSend}, req...), nil); err != nil {
		return nil, err
	}
	if err := t.waitReady(ctx); err != nil {
		return nil, err
	}

	w := make([]byte, 3+frame.MaxReaderDataLength)
	w[0] = ctrlRead
	r := make([]byte, len(w))
	if err := t.tx(w, r); err != nil {
		return nil, err
	}

	if req[0] == frame.ReaderCmdEcho {
		return r[1:2], nil
	}
	n := int(r[2])
	out := make([]byte, 2+n)
	copy(out, r[1:3+n])
	return out, nil
}

// waitReady polls the reader flags until a reply is ready
func (t *Transport) waitReady(ctx context.Context) error {
	return transport.WaitReady(ctx, t.busName, t.timeout, func() (bool, error) {
		r := make([]byte, 2)
		if err := t.tx([]byte{ctrlPoll, 0x00}, r); err != nil {
			return false, err
		}
		return r[1]&flagReady != 0, nil
	})
}

func (t *Transport) tx(w, r []byte) error {
	if r == nil {
		r = make([]byte, len(w))
	}
	if err := t.conn.Tx(w, r); err != nil {
		return tagdump.NewTransportError("tx", t.busName,
			fmt.Errorf("%w: %w", tagdump.ErrTransportWrite, err), tagdump.ErrorTypeTransient)
	}
	return nil
}

// Close turns the field off. The SPI port stays open for the next session.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.connected {
		return nil
	}
	t.connected = false
	req, err := frame.BuildReaderCommand(frame.ReaderCmdProtocolSelect,
		[]byte{frame.ReaderProtocolFieldOff, 0x00})
	if err != nil {
		return err
	}
	_, err = t.exchange(context.Background(), req)
	return err
}

// Release closes the underlying SPI port
func (t *Transport) Release() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.connected = false
	t.conn = nil
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	return err
}

// IsConnected returns true if the reader field is on
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Type returns the transport type
func (*Transport) Type() tagdump.TransportType {
	return tagdump.TransportSPI
}

// String returns the SPI port name
func (t *Transport) String() string {
	if t.busName == "" {
		return "spi"
	}
	return t.busName
}

// Ensure Transport implements tagdump.TransportContext
var _ tagdump.TransportContext = (*Transport)(nil)
