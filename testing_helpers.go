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
	"sync"
	"time"
)

// MockTransport is a scripted Transport for tests. Responses are taken from
// the queue first, then from the per-command table keyed by the ISO15693
// command code (the second byte of a request frame).
type MockTransport struct {
	responses  map[byte][]byte
	errors     map[byte]error
	callCounts map[byte]int
	ConnectErr error
	queue      []mockExchange
	sent       [][]byte
	delay      time.Duration
	closeCount int
	failOnCall int
	failErr    error
	mu         sync.Mutex
	connected  bool
}

type mockExchange struct {
	err  error
	resp []byte
}

// NewMockTransport creates a disconnected mock transport.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		responses:  make(map[byte][]byte),
		errors:     make(map[byte]error),
		callCounts: make(map[byte]int),
	}
}

// SetResponse sets the response returned for every frame carrying cmd.
func (m *MockTransport) SetResponse(cmd byte, resp []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[cmd] = resp
	delete(m.errors, cmd)
}

// SetError makes every frame carrying cmd fail with err.
func (m *MockTransport) SetError(cmd byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[cmd] = err
}

// SetDelay delays every exchange.
func (m *MockTransport) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// QueueResponses appends responses to be returned in order, one per exchange.
func (m *MockTransport) QueueResponses(resps ...[]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range resps {
		m.queue = append(m.queue, mockExchange{resp: r})
	}
}

// QueueError appends an exchange that fails with err.
func (m *MockTransport) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockExchange{err: err})
}

// FailOnCall makes the n-th exchange (1-based) fail with err.
func (m *MockTransport) FailOnCall(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOnCall = n
	m.failErr = err
}

// Connect implements Transport.
func (m *MockTransport) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ConnectErr != nil {
		return m.ConnectErr
	}
	m.connected = true
	return nil
}

// IsConnected implements Transport.
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Transceive implements Transport.
func (m *MockTransport) Transceive(frame []byte) ([]byte, error) {
	m.mu.Lock()
	m.sent = append(m.sent, append([]byte(nil), frame...))
	call := len(m.sent)
	var cmd byte
	if len(frame) > 1 {
		cmd = frame[1]
	}
	m.callCounts[cmd]++
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return nil, ErrTransportClosed
	}
	if m.failOnCall == call {
		return nil, m.failErr
	}
	if len(m.queue) > 0 {
		ex := m.queue[0]
		m.queue = m.queue[1:]
		if ex.err != nil {
			return nil, ex.err
		}
		return append([]byte(nil), ex.resp...), nil
	}
	if err, ok := m.errors[cmd]; ok {
		return nil, err
	}
	if resp, ok := m.responses[cmd]; ok {
		return append([]byte(nil), resp...), nil
	}
	return nil, NewTimeoutError("transceive", "mock")
}

// Close implements Transport.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	m.closeCount++
	return nil
}

// Type implements Transport.
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// Calls returns a copy of every frame sent so far.
func (m *MockTransport) Calls() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.sent))
	for i, f := range m.sent {
		out[i] = append([]byte(nil), f...)
	}
	return out
}

// CallCount returns the total number of exchanges.
func (m *MockTransport) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// GetCallCount returns the number of exchanges that carried cmd.
func (m *MockTransport) GetCallCount(cmd byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCounts[cmd]
}

// CloseCount returns how many times Close was called.
func (m *MockTransport) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCount
}

// BlockingMockTransport is a mock transport that can block exchanges on demand.
// It is used for testing cancellation and single-flight behaviour.
type BlockingMockTransport struct {
	blockChan    chan struct{}
	ResponseFunc func(frame []byte) ([]byte, error)
	Response     []byte
	timeout      time.Duration
	mu           sync.Mutex
	closed       bool
	connected    bool
	entered      chan struct{}
}

// NewBlockingMockTransport creates a new blocking mock transport
func NewBlockingMockTransport() *BlockingMockTransport {
	return &BlockingMockTransport{
		blockChan: make(chan struct{}),
		entered:   make(chan struct{}, 16),
		timeout:   5 * time.Second,
	}
}

// Connect implements Transport.
func (m *BlockingMockTransport) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrTransportClosed
	}
	m.connected = true
	return nil
}

// Transceive blocks until Unblock is called, the timeout expires or the
// transport is closed.
func (m *BlockingMockTransport) Transceive(frame []byte) ([]byte, error) {
	return m.TransceiveContext(context.Background(), frame)
}

// TransceiveContext is Transceive that also returns when ctx is done.
func (m *BlockingMockTransport) TransceiveContext(ctx context.Context, frame []byte) ([]byte, error) {
	m.mu.Lock()
	blockChan := m.blockChan
	closed := m.closed
	timeout := m.timeout
	m.mu.Unlock()

	if closed {
		return nil, ErrTransportClosed
	}

	select {
	case m.entered <- struct{}{}:
	default:
	}

	select {
	case <-blockChan:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(timeout):
		return nil, NewTimeoutError("transceive", "mock")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrTransportClosed
	}
	if m.ResponseFunc != nil {
		return m.ResponseFunc(frame)
	}
	if m.Response != nil {
		return append([]byte(nil), m.Response...), nil
	}
	return []byte{0x00}, nil
}

// Entered is signalled each time an exchange starts blocking.
func (m *BlockingMockTransport) Entered() <-chan struct{} {
	return m.entered
}

// Unblock releases every exchange currently blocked.
func (m *BlockingMockTransport) Unblock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		close(m.blockChan)
		m.blockChan = make(chan struct{})
	}
}

// Close unblocks all operations and marks the transport as closed.
func (m *BlockingMockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		m.connected = false
		close(m.blockChan)
	}
	return nil
}

// SetResponse configures a fixed response for all exchanges.
func (m *BlockingMockTransport) SetResponse(response []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Response = response
	m.ResponseFunc = nil
}

// SetResponseFunc configures a dynamic response function.
func (m *BlockingMockTransport) SetResponseFunc(fn func(frame []byte) ([]byte, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResponseFunc = fn
	m.Response = nil
}

// SetTimeout configures the timeout for blocking operations.
func (m *BlockingMockTransport) SetTimeout(timeout time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
}

// IsConnected implements Transport.
func (m *BlockingMockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected && !m.closed
}

// Type returns TransportMock
func (*BlockingMockTransport) Type() TransportType {
	return TransportMock
}
