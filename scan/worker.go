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

// Package scan runs tag dumps on a single dedicated worker goroutine and
// delivers each result to an observer and a sink.
package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	tagdump "github.com/ZaparooProject/go-tagdump"
	"github.com/rs/zerolog"
)

// Worker errors
var (
	ErrScanInFlight     = errors.New("scan already in flight")
	ErrWorkerNotRunning = errors.New("scan worker not running")
	ErrWorkerStopped    = errors.New("scan worker stopped")
)

// Config configures a Worker.
type Config struct {
	// Now returns the capture time used in report filenames
	Now func() time.Time
	// Logger receives scan progress; zero value logs nothing
	Logger *zerolog.Logger
	// DumperOptions are passed to tagdump.NewDumper for every scan
	DumperOptions []tagdump.Option
}

// DefaultConfig returns a Config using wall clock time and no logging.
func DefaultConfig() *Config {
	return &Config{Now: time.Now}
}

// Outcome is the result of one submitted scan.
type Outcome struct {
	Record *tagdump.DumpRecord
	Report *tagdump.Report
	Err    error
}

// Metrics is a snapshot of the worker counters.
type Metrics struct {
	Started      int64
	Completed    int64
	Failed       int64
	SinkErrors   int64
	LastDuration time.Duration
}

type job struct {
	ctx    context.Context
	t      tagdump.Transport
	result chan Outcome
}

// Worker owns the transport of the scan in flight. Only one scan runs at a
// time; Submit rejects new scans until the current one has been delivered.
type Worker struct {
	observer tagdump.Observer
	sink     tagdump.Sink
	config   *Config
	logger   zerolog.Logger
	jobs     chan job
	quit     chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
	stopped  bool
	busy     atomic.Bool

	started      int64
	completed    int64
	failed       int64
	sinkErrors   int64
	lastDuration int64 // nanoseconds
}

// NewWorker creates a worker. A nil observer or sink is allowed; a nil sink
// disables persistence.
func NewWorker(observer tagdump.Observer, sink tagdump.Sink, config *Config) *Worker {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if observer == nil {
		observer = tagdump.ObserverFuncs{}
	}
	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}
	return &Worker{
		observer: observer,
		sink:     sink,
		config:   config,
		logger:   logger,
		jobs:     make(chan job, 1),
		quit:     make(chan struct{}),
	}
}

// Start launches the worker goroutine. It returns an error if the worker was
// already started or has been stopped.
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return ErrWorkerStopped
	}
	if w.running {
		return errors.New("scan worker already running")
	}
	w.running = true
	w.wg.Add(1)
	go w.loop()
	return nil
}

// Submit hands t to the worker for one dump. The returned channel receives
// exactly one Outcome after the observer has been notified.
func (w *Worker) Submit(ctx context.Context, t tagdump.Transport) (<-chan Outcome, error) {
	if t == nil {
		return nil, errors.New("transport cannot be nil")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil, ErrWorkerStopped
	}
	if !w.running {
		return nil, ErrWorkerNotRunning
	}
	if !w.busy.CompareAndSwap(false, true) {
		return nil, ErrScanInFlight
	}

	j := job{ctx: ctx, t: t, result: make(chan Outcome, 1)}
	w.jobs <- j
	return j.result, nil
}

// Busy reports whether a scan is in flight.
func (w *Worker) Busy() bool {
	return w.busy.Load()
}

// Stop stops the worker and waits for the scan in flight to finish. A scan
// that was queued but not started fails with ErrWorkerStopped.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	wasRunning := w.running
	close(w.quit)
	w.mu.Unlock()

	if wasRunning {
		w.wg.Wait()
	}
}

// Metrics returns a snapshot of the worker counters.
func (w *Worker) Metrics() Metrics {
	return Metrics{
		Started:      atomic.LoadInt64(&w.started),
		Completed:    atomic.LoadInt64(&w.completed),
		Failed:       atomic.LoadInt64(&w.failed),
		SinkErrors:   atomic.LoadInt64(&w.sinkErrors),
		LastDuration: time.Duration(atomic.LoadInt64(&w.lastDuration)),
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case j := <-w.jobs:
			w.deliver(j, w.run(j.ctx, j.t))
		case <-w.quit:
			select {
			case j := <-w.jobs:
				w.observer.OnScanFailed(ErrWorkerStopped.Error())
				w.deliver(j, Outcome{Err: ErrWorkerStopped})
			default:
			}
			return
		}
	}
}

func (w *Worker) deliver(j job, out Outcome) {
	w.busy.Store(false)
	j.result <- out
}

// run performs one scan. The observer is notified before the sink is
// written, so a sink failure never retracts a delivered report.
func (w *Worker) run(ctx context.Context, t tagdump.Transport) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	atomic.AddInt64(&w.started, 1)
	start := time.Now()
	defer func() {
		atomic.StoreInt64(&w.lastDuration, int64(time.Since(start)))
	}()

	rec, err := w.dump(ctx, t)
	if err != nil {
		return w.failure(err)
	}

	ts := w.config.Now()
	report, err := tagdump.RenderReport(rec, ts)
	if err != nil {
		return w.failure(err)
	}

	atomic.AddInt64(&w.completed, 1)
	w.logger.Info().
		Stringer("uid", rec.UID).
		Str("file", report.Filename).
		Msg("scan complete")
	w.observer.OnScanComplete(report.Content)

	if w.sink != nil {
		if err := w.sink.Write(ctx, report.Filename, []byte(report.Content)); err != nil {
			atomic.AddInt64(&w.sinkErrors, 1)
			w.logger.Error().Err(err).Str("file", report.Filename).Msg("failed to persist report")
		}
	}
	return Outcome{Record: rec, Report: &report}
}

func (w *Worker) dump(ctx context.Context, t tagdump.Transport) (*tagdump.DumpRecord, error) {
	opts := append([]tagdump.Option{tagdump.WithLogger(w.logger)}, w.config.DumperOptions...)
	d, err := tagdump.NewDumper(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create dumper: %w", err)
	}
	return d.Dump(ctx, t)
}

func (w *Worker) failure(err error) Outcome {
	atomic.AddInt64(&w.failed, 1)
	w.logger.Warn().Err(err).Msg("scan failed")
	w.observer.OnScanFailed(err.Error())
	return Outcome{Err: err}
}
