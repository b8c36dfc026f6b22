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

package polling

import (
	"errors"
	"time"
)

// Config holds the polling configuration
type Config struct {
	// PollInterval is the pause between two inventory polls
	PollInterval time.Duration
	// CardRemovalTimeout is how long a tag may stay silent before it is
	// considered removed
	CardRemovalTimeout time.Duration
	// MaxScans stops the session after this many scans; zero means unlimited
	MaxScans int
}

// DefaultConfig returns sensible default configuration values
func DefaultConfig() *Config {
	return &Config{
		PollInterval:       250 * time.Millisecond,
		CardRemovalTimeout: 2 * time.Second,
	}
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if c.CardRemovalTimeout <= 0 {
		return errors.New("card removal timeout must be positive")
	}
	if c.MaxScans < 0 {
		return errors.New("max scans cannot be negative")
	}
	return nil
}
