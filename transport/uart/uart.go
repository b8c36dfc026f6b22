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

// Package uart provides a Transport for CR95HF-class readers on a serial port
package uart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	tagdump "github.com/ZaparooProject/go-tagdump"
	"github.com/ZaparooProject/go-tagdump/internal/frame"
	"github.com/ZaparooProject/go-tagdump/internal/transport"
	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the CR95HF power-on UART speed.
	DefaultBaudRate = 57600

	defaultTimeout = 500 * time.Millisecond
	echoRetries    = 3
	echoDelay      = 10 * time.Millisecond
)

// serialPort is the subset of serial.Port used by the transport.
type serialPort interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

type openFunc func(name string, mode *serial.Mode) (serialPort, error)

func openSerial(name string, mode *serial.Mode) (serialPort, error) {
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Option configures a Transport
type Option func(*Transport) error

// WithBaudRate sets the serial speed
func WithBaudRate(baud int) Option {
	return func(t *Transport) error {
		if baud <= 0 {
			return fmt.Errorf("invalid baud rate %d", baud)
		}
		t.baudRate = baud
		return nil
	}
}

// WithTimeout sets the read timeout for one reader reply
func WithTimeout(timeout time.Duration) Option {
	return func(t *Transport) error {
		if timeout <= 0 {
			return fmt.Errorf("invalid timeout %s", timeout)
		}
		t.timeout = timeout
		return nil
	}
}

// Transport implements the tagdump.Transport interface for a CR95HF reader
// connected over UART.
type Transport struct {
	port     serialPort
	open     openFunc
	portName string
	baudRate int
	timeout  time.Duration
	mu       sync.Mutex
}

// New creates a UART transport for portName. The port is opened by Connect.
func New(portName string, opts ...Option) (*Transport, error) {
	t := &Transport{
		open:     openSerial,
		portName: portName,
		baudRate: DefaultBaudRate,
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Connect opens the serial port, wakes the reader and turns on the ISO15693
// field.
func (t *Transport) Connect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port != nil {
		return nil
	}

	port, err := t.open(t.portName, &serial.Mode{
		BaudRate: t.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return tagdump.NewTransportError("open", t.portName, err, tagdump.ErrorTypePermanent)
	}
	if err := port.SetReadTimeout(t.timeout); err != nil {
		_ = port.Close()
		return tagdump.NewTransportError("open", t.portName, err, tagdump.ErrorTypePermanent)
	}
	t.port = port

	if err := t.wake(); err != nil {
		t.closePort()
		return err
	}
	if err := t.selectISO15693(); err != nil {
		t.closePort()
		return err
	}
	return nil
}

// wake sends echo commands until the reader answers.
func (t *Transport) wake() error {
	return transport.Wake(context.Background(), transport.WakeConfig{
		Probe:    t.echo,
		Reset:    t.port.ResetInputBuffer,
		Port:     t.portName,
		Attempts: echoRetries + 1,
		Delay:    echoDelay,
	})
}

// echo sends one echo command. A read timeout means the reader is still
// asleep.
func (t *Transport) echo(ctx context.Context) (bool, error) {
	if err := t.write([]byte{frame.ReaderCmdEcho}); err != nil {
		return false, err
	}
	b, err := t.readExact(ctx, 1)
	if err != nil {
		if tagdump.GetErrorType(err) == tagdump.ErrorTypeTimeout {
			return false, nil
		}
		return false, err
	}
	return b[0] == frame.ReaderCmdEcho, nil
}

func (t *Transport) selectISO15693() error {
	resp, err := t.exchange(context.Background(), frame.ReaderCmdProtocolSelect,
		[]byte{frame.ReaderProtocolISO15693, frame.ReaderISO15693Params})
	if err != nil {
		return err
	}
	return transport.CheckReaderOK("protocolSelect", t.portName, resp)
}

// Transceive sends one ISO15693 frame through the reader
func (t *Transport) Transceive(cmd []byte) ([]byte, error) {
	return t.TransceiveContext(context.Background(), cmd)
}

// TransceiveContext sends one ISO15693 frame and stops waiting for the reply
// when ctx is done.
func (t *Transport) TransceiveContext(ctx context.Context, cmd []byte) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return nil, tagdump.NewNotConnectedError("transceive", t.portName)
	}
	resp, err := t.exchange(ctx, frame.ReaderCmdSendRecv, cmd)
	if err != nil {
		return nil, err
	}
	return transport.DecodeTagResponse("transceive", t.portName, resp)
}

// exchange writes one reader command and reads the reply header and data.
func (t *Transport) exchange(ctx context.Context, cmd byte, data []byte) ([]byte, error) {
	req, err := frame.BuildReaderCommand(cmd, data)
	if err != nil {
		return nil, tagdump.NewTransportError("exchange", t.portName, err, tagdump.ErrorTypePermanent)
	}
	if err := t.write(req); err != nil {
		return nil, err
	}

	header, err := t.readExact(ctx, 2)
	if err != nil {
		return nil, err
	}
	body, err := t.readExact(ctx, int(header[1]))
	if err != nil {
		return nil, err
	}
	return append(header, body...), nil
}

func (t *Transport) write(b []byte) error {
	n, err := t.port.Write(b)
	if err != nil {
		return tagdump.NewTransportError("write", t.portName,
			fmt.Errorf("%w: %w", tagdump.ErrTransportWrite, err), tagdump.ErrorTypeTransient)
	}
	if n != len(b) {
		return tagdump.NewTransportError("write", t.portName,
			fmt.Errorf("%w: wrote %d of %d bytes", tagdump.ErrTransportWrite, n, len(b)), tagdump.ErrorTypeTransient)
	}
	return nil
}

// readExact reads n bytes. A read that returns nothing means the port read
// timeout expired.
func (t *Transport) readExact(ctx context.Context, n int) ([]byte, error) {
	buf := make([]byte, n)
	for got := 0; got < n; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := t.port.Read(buf[got:])
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, tagdump.NewTransportError("read", t.portName,
					fmt.Errorf("%w: %w", tagdump.ErrTransportClosed, err), tagdump.ErrorTypePermanent)
			}
			return nil, tagdump.NewTransportError("read", t.portName,
				fmt.Errorf("%w: %w", tagdump.ErrTransportRead, err), tagdump.ErrorTypeTransient)
		}
		if m == 0 {
			return nil, tagdump.NewTimeoutError("read", t.portName)
		}
		got += m
	}
	return buf, nil
}

// Close turns the field off and closes the serial port
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return nil
	}
	_, _ = t.exchange(context.Background(), frame.ReaderCmdProtocolSelect,
		[]byte{frame.ReaderProtocolFieldOff, 0x00})
	err := t.port.Close()
	t.port = nil
	if err != nil {
		return tagdump.NewTransportError("close", t.portName, err, tagdump.ErrorTypePermanent)
	}
	return nil
}

func (t *Transport) closePort() {
	_ = t.port.Close()
	t.port = nil
}

// IsConnected returns true if the port is open
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port != nil
}

// Type returns the transport type
func (*Transport) Type() tagdump.TransportType {
	return tagdump.TransportUART
}

// String returns the serial port name
func (t *Transport) String() string {
	return t.portName
}

// Ensure Transport implements tagdump.TransportContext
var _ tagdump.TransportContext = (*Transport)(nil)
