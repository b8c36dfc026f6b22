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

// Package transport provides helpers shared by the reader transports for
// waking up the reader and waiting for its replies. Tag commands are never
// retried.
package transport

import (
	"context"
	"time"

	tagdump "github.com/ZaparooProject/go-tagdump"
)

// pollInterval is the pause between two ready polls.
const pollInterval = time.Millisecond

// EchoProbe sends one echo command and reports whether the reader sent it
// back. A missing reply is not an error: the probe returns false.
type EchoProbe func(ctx context.Context) (bool, error)

// WakeConfig configures Wake.
type WakeConfig struct {
	// Probe is sent once per attempt
	Probe EchoProbe
	// Reset runs between attempts, typically to flush stale input
	Reset func() error
	Port  string
	// Attempts is the total number of probes, at least one
	Attempts int
	Delay    time.Duration
}

// Wake probes the reader until it echoes back. A reader fresh out of power
// down may swallow the first bytes, so the probe is repeated up to
// cfg.Attempts times before giving up with ErrReaderNotResponding.
func Wake(ctx context.Context, cfg WakeConfig) error {
	attempts := max(cfg.Attempts, 1)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		answered, err := cfg.Probe(ctx)
		if err != nil {
			return err
		}
		if answered {
			return nil
		}
		if attempt >= attempts {
			break
		}

		if cfg.Reset != nil {
			if err := cfg.Reset(); err != nil {
				return tagdump.NewTransportError("wake", cfg.Port, err, tagdump.ErrorTypePermanent)
			}
		}
		if err := sleep(ctx, cfg.Delay); err != nil {
			return err
		}
	}

	return tagdump.NewTransportError("wake", cfg.Port, tagdump.ErrReaderNotResponding, tagdump.ErrorTypeTransient)
}

// WaitReady calls ready until it reports a reply is waiting, ctx is done or
// timeout expires. ready is always called at least once.
func WaitReady(ctx context.Context, port string, timeout time.Duration, ready func() (bool, error)) error {
	deadline := time.Now().Add(timeout)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := ready()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return tagdump.NewTimeoutError("waitReady", port)
		}
		if err := sleep(ctx, pollInterval); err != nil {
			return err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
