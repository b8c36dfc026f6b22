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

// Package virtual provides a Transport backed by a simulated ICODE SLIX2 tag.
// It needs no hardware and is used for demos and end-to-end tests.
package virtual

import (
	"context"
	"sync"
	"time"

	tagdump "github.com/ZaparooProject/go-tagdump"
	testutil "github.com/ZaparooProject/go-tagdump/internal/testing"
)

const portName = "virtual"

// Transport implements the tagdump.Transport interface on top of a virtual tag
type Transport struct {
	tag       *testutil.VirtualTag
	delay     time.Duration
	mu        sync.Mutex
	connected bool
}

// New creates a transport talking to tag.
func New(tag *testutil.VirtualTag) *Transport {
	return &Transport{tag: tag}
}

// NewSLIX2 creates a transport with a default SLIX2 tag in the field.
func NewSLIX2() *Transport {
	return New(testutil.NewVirtualSLIX2(nil))
}

// Tag returns the simulated tag so callers can remove or insert it.
func (t *Transport) Tag() *testutil.VirtualTag {
	return t.tag
}

// SetDelay adds an air time delay to every exchange.
func (t *Transport) SetDelay(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.delay = d
}

// Connect opens the session
func (t *Transport) Connect() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = true
	return nil
}

// IsConnected returns true if the session is open
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Transceive sends one frame to the tag
func (t *Transport) Transceive(frame []byte) ([]byte, error) {
	return t.TransceiveContext(context.Background(), frame)
}

// TransceiveContext sends one frame to the tag and gives up when ctx is done
func (t *Transport) TransceiveContext(ctx context.Context, frame []byte) ([]byte, error) {
	t.mu.Lock()
	connected, delay := t.connected, t.delay
	t.mu.Unlock()

	if !connected {
		return nil, tagdump.NewNotConnectedError("transceive", portName)
	}

	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	resp, ok := t.tag.Handle(frame)
	if !ok {
		return nil, tagdump.NewTimeoutError("transceive", portName)
	}
	return resp, nil
}

// Close closes the session
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = false
	return nil
}

// Type returns the transport type
func (*Transport) Type() tagdump.TransportType {
	return tagdump.TransportVirtual
}

func (*Transport) String() string {
	return portName
}

// Ensure Transport implements tagdump.TransportContext
var _ tagdump.TransportContext = (*Transport)(nil)
