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

package scan

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tagdump "github.com/ZaparooProject/go-tagdump"
	"github.com/ZaparooProject/go-tagdump/transport/virtual"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

type recordingObserver struct {
	completed []string
	failed    []string
	mu        sync.Mutex
}

func (o *recordingObserver) OnScanComplete(content string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completed = append(o.completed, content)
}

func (o *recordingObserver) OnScanFailed(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed = append(o.failed, reason)
}

func (o *recordingObserver) counts() (completed, failed int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.completed), len(o.failed)
}

type write struct {
	filename string
	content  string
}

type recordingSink struct {
	err    error
	writes []write
	mu     sync.Mutex
}

func (s *recordingSink) Write(_ context.Context, filename string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, write{filename: filename, content: string(content)})
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

func newTestWorker(t *testing.T, obs tagdump.Observer, sink tagdump.Sink) *Worker {
	t.Helper()
	w := NewWorker(obs, sink, &Config{Now: func() time.Time { return fixedTime }})
	require.NoError(t, w.Start())
	t.Cleanup(w.Stop)
	return w
}

func waitOutcome(t *testing.T, ch <-chan Outcome) Outcome {
	t.Helper()
	select {
	case out := <-ch:
		return out
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for scan outcome")
		return Outcome{}
	}
}

func TestWorkerScanComplete(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	sink := &recordingSink{}
	w := newTestWorker(t, obs, sink)

	ch, err := w.Submit(context.Background(), virtual.NewSLIX2())
	require.NoError(t, err)
	out := waitOutcome(t, ch)
	require.NoError(t, out.Err)
	require.NotNil(t, out.Report)

	want, err := tagdump.RenderReport(out.Record, fixedTime)
	require.NoError(t, err)
	assert.Equal(t, want, *out.Report)
	assert.Equal(t, "E004665544332211_20250314150926.txt", out.Report.Filename)

	assert.Equal(t, []string{want.Content}, obs.completed)
	assert.Empty(t, obs.failed)
	require.Len(t, sink.writes, 1)
	assert.Equal(t, write{filename: want.Filename, content: want.Content}, sink.writes[0])

	m := w.Metrics()
	assert.Equal(t, int64(1), m.Started)
	assert.Equal(t, int64(1), m.Completed)
	assert.Zero(t, m.Failed)
	assert.False(t, w.Busy())
}

func TestWorkerScanFailed(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	sink := &recordingSink{}
	w := newTestWorker(t, obs, sink)

	tr := virtual.NewSLIX2()
	tr.Tag().Remove()

	ch, err := w.Submit(context.Background(), tr)
	require.NoError(t, err)
	out := waitOutcome(t, ch)
	require.Error(t, out.Err)
	assert.Nil(t, out.Report)

	completed, failed := obs.counts()
	assert.Zero(t, completed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, out.Err.Error(), obs.failed[0])
	assert.Zero(t, sink.count())
	assert.Equal(t, int64(1), w.Metrics().Failed)
}

func TestWorkerSignatureFailureSkipsSink(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	sink := &recordingSink{}
	w := newTestWorker(t, obs, sink)

	uid := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x04, 0xE0}
	mock := tagdump.NewMockTransport()
	mock.SetResponse(0x01, append([]byte{0x00, 0x00}, uid...))
	mock.SetResponse(0x2B, append(append([]byte{0x00, 0x0F}, uid...), 0x00, 0x00, 0x4F, 0x03, 0x01))
	mock.SetResponse(0xBD, append([]byte{0x00}, make([]byte, 32)...))
	mock.SetResponse(0x23, append([]byte{0x00}, make([]byte, 64)...))
	mock.FailOnCall(3, errors.New("tag left the field"))

	ch, err := w.Submit(context.Background(), mock)
	require.NoError(t, err)
	out := waitOutcome(t, ch)
	require.Error(t, out.Err)
	assert.Contains(t, out.Err.Error(), "tag left the field")
	assert.Nil(t, out.Report)
	assert.Nil(t, out.Record)

	require.Len(t, mock.Calls(), 3)
	assert.Equal(t, 1, mock.GetCallCount(0xBD))
	assert.Zero(t, mock.GetCallCount(0x23))

	completed, failed := obs.counts()
	assert.Zero(t, completed)
	assert.Equal(t, 1, failed)
	assert.Zero(t, sink.count())

	m := w.Metrics()
	assert.Equal(t, int64(1), m.Failed)
	assert.Zero(t, m.Completed)
}

func TestWorkerSinkErrorKeepsReport(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	sink := &recordingSink{err: errors.New("disk full")}
	w := newTestWorker(t, obs, sink)

	ch, err := w.Submit(context.Background(), virtual.NewSLIX2())
	require.NoError(t, err)
	out := waitOutcome(t, ch)
	require.NoError(t, out.Err)

	completed, failed := obs.counts()
	assert.Equal(t, 1, completed)
	assert.Zero(t, failed)
	assert.Equal(t, int64(1), w.Metrics().SinkErrors)
}

func TestWorkerNilSink(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	w := newTestWorker(t, obs, nil)

	ch, err := w.Submit(context.Background(), virtual.NewSLIX2())
	require.NoError(t, err)
	require.NoError(t, waitOutcome(t, ch).Err)
	completed, _ := obs.counts()
	assert.Equal(t, 1, completed)
}

func TestWorkerRejectsSecondScan(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	w := newTestWorker(t, obs, nil)

	blocking := tagdump.NewBlockingMockTransport()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := w.Submit(ctx, blocking)
	require.NoError(t, err)

	select {
	case <-blocking.Entered():
	case <-time.After(2 * time.Second):
		t.Fatal("scan never reached the transport")
	}
	assert.True(t, w.Busy())

	_, err = w.Submit(context.Background(), virtual.NewSLIX2())
	require.ErrorIs(t, err, ErrScanInFlight)

	cancel()
	out := waitOutcome(t, ch)
	require.ErrorIs(t, out.Err, context.Canceled)

	_, failed := obs.counts()
	assert.Equal(t, 1, failed)

	ch, err = w.Submit(context.Background(), virtual.NewSLIX2())
	require.NoError(t, err)
	require.NoError(t, waitOutcome(t, ch).Err)
}

func TestWorkerLifecycle(t *testing.T) {
	t.Parallel()

	w := NewWorker(nil, nil, nil)

	_, err := w.Submit(context.Background(), virtual.NewSLIX2())
	require.ErrorIs(t, err, ErrWorkerNotRunning)

	require.NoError(t, w.Start())
	require.Error(t, w.Start())

	_, err = w.Submit(context.Background(), nil)
	require.Error(t, err)

	w.Stop()
	w.Stop()

	_, err = w.Submit(context.Background(), virtual.NewSLIX2())
	require.ErrorIs(t, err, ErrWorkerStopped)
	require.ErrorIs(t, w.Start(), ErrWorkerStopped)
}

func TestWorkerDumperOptions(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var states []tagdump.ScanState
	hook := func(s tagdump.ScanState) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s)
	}

	w := NewWorker(nil, nil, &Config{DumperOptions: []tagdump.Option{tagdump.WithStateHook(hook)}})
	require.NoError(t, w.Start())
	defer w.Stop()

	ch, err := w.Submit(context.Background(), virtual.NewSLIX2())
	require.NoError(t, err)
	require.NoError(t, waitOutcome(t, ch).Err)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, states)
	assert.Equal(t, tagdump.StateComplete, states[len(states)-1])
}
