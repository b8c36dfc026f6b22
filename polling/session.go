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

// Package polling watches a reader for tags and hands every newly presented
// tag to the scan worker.
package polling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	tagdump "github.com/ZaparooProject/go-tagdump"
	"github.com/ZaparooProject/go-tagdump/scan"
	"github.com/rs/zerolog"
)

// Submitter runs one scan on a transport. *scan.Worker implements it.
type Submitter interface {
	Submit(ctx context.Context, t tagdump.Transport) (<-chan scan.Outcome, error)
}

// SessionMetrics tracks operational metrics for a Session
type SessionMetrics struct {
	PollCycles   int64
	PollErrors   int64
	TagsDetected int64
	Scans        int64
}

// Session polls a reader with Inventory and submits a scan for each tag
// that enters the field. A tag is scanned once per presentation.
type Session struct {
	transport      tagdump.Transport
	worker         Submitter
	config         *Config
	logger         zerolog.Logger
	OnCardDetected func(uid tagdump.UID)
	OnCardRemoved  func()
	OnScanDone     func(out scan.Outcome)
	state          CardState
	mu             sync.Mutex

	pollCycles   int64
	pollErrors   int64
	tagsDetected int64
	scans        int64
}

// NewSession creates a session polling t and submitting scans to worker.
func NewSession(t tagdump.Transport, worker Submitter, config *Config) (*Session, error) {
	if t == nil {
		return nil, errors.New("transport cannot be nil")
	}
	if worker == nil {
		return nil, errors.New("worker cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid polling config: %w", err)
	}
	return &Session{
		transport: t,
		worker:    worker,
		config:    config,
		logger:    zerolog.Nop(),
	}, nil
}

// SetLogger sets the logger used for polling events
func (s *Session) SetLogger(l zerolog.Logger) {
	s.logger = l
}

// GetState returns the current card state
func (s *Session) GetState() CardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Metrics returns a snapshot of the session counters
func (s *Session) Metrics() SessionMetrics {
	return SessionMetrics{
		PollCycles:   atomic.LoadInt64(&s.pollCycles),
		PollErrors:   atomic.LoadInt64(&s.pollErrors),
		TagsDetected: atomic.LoadInt64(&s.tagsDetected),
		Scans:        atomic.LoadInt64(&s.scans),
	}
}

// Run polls until ctx is done or MaxScans scans have been delivered. It
// returns nil when the scan limit is reached and ctx.Err() otherwise.
func (s *Session) Run(ctx context.Context) error {
	defer func() { _ = s.transport.Close() }()

	for {
		if err := s.PollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !errors.Is(err, ErrNoTagInPoll) {
				s.logger.Debug().Err(err).Msg("poll failed")
			}
		}

		if s.config.MaxScans > 0 && atomic.LoadInt64(&s.scans) >= int64(s.config.MaxScans) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.config.PollInterval):
		}
	}
}

// ErrNoTagInPoll indicates no tag answered during a polling cycle (not an error condition)
var ErrNoTagInPoll = errors.New("no tag detected in polling cycle")

// PollOnce runs a single polling cycle. A newly detected tag is scanned
// before PollOnce returns.
func (s *Session) PollOnce(ctx context.Context) error {
	atomic.AddInt64(&s.pollCycles, 1)

	uid, err := s.inventory(ctx)
	now := time.Now()
	if err != nil {
		s.checkRemoval(now)
		if errors.Is(err, ErrNoTagInPoll) {
			return err
		}
		atomic.AddInt64(&s.pollErrors, 1)
		return err
	}

	s.mu.Lock()
	if s.state.IsCurrent(uid) {
		s.state.Seen(now)
		scanned := s.state.ScannedUID != ""
		s.mu.Unlock()
		if scanned {
			return nil
		}
	} else {
		hadTag := s.state.Present
		s.state.TransitionToDetected(uid, now)
		s.mu.Unlock()

		if hadTag && s.OnCardRemoved != nil {
			s.OnCardRemoved()
		}
		atomic.AddInt64(&s.tagsDetected, 1)
		s.logger.Info().Stringer("uid", uid).Msg("tag detected")
		if s.OnCardDetected != nil {
			s.OnCardDetected(uid)
		}
	}

	return s.scan(ctx)
}

func (s *Session) inventory(ctx context.Context) (tagdump.UID, error) {
	if !s.transport.IsConnected() {
		if err := s.transport.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect reader: %w", err)
		}
	}

	uid, err := tagdump.ReadUID(ctx, s.transport)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if tagdump.GetErrorType(err) == tagdump.ErrorTypeTimeout {
			return nil, ErrNoTagInPoll
		}
		return nil, err
	}
	return uid, nil
}

func (s *Session) scan(ctx context.Context) error {
	s.mu.Lock()
	s.state.TransitionToScanning(time.Now())
	s.mu.Unlock()

	ch, err := s.worker.Submit(ctx, s.transport)
	if err != nil {
		s.mu.Lock()
		s.state.DetectionState = StateTagDetected
		s.mu.Unlock()
		return fmt.Errorf("failed to submit scan: %w", err)
	}

	var out scan.Outcome
	select {
	case out = <-ch:
	case <-ctx.Done():
		// the worker still owns the transport until it delivers
		out = <-ch
	}

	s.mu.Lock()
	s.state.TransitionToScanned(time.Now())
	s.mu.Unlock()
	atomic.AddInt64(&s.scans, 1)

	if s.OnScanDone != nil {
		s.OnScanDone(out)
	}
	return out.Err
}

func (s *Session) checkRemoval(now time.Time) {
	s.mu.Lock()
	due := s.state.RemovalDue(now, s.config.CardRemovalTimeout)
	if due {
		s.state.TransitionToIdle()
	}
	s.mu.Unlock()

	if due {
		s.logger.Info().Msg("tag removed")
		if s.OnCardRemoved != nil {
			s.OnCardRemoved()
		}
	}
}
