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
	"errors"

	"github.com/rs/zerolog"
)

// Option is a functional option for configuring a Dumper
type Option func(*Dumper) error

// WithLogger sets the logger used for scan progress
func WithLogger(l zerolog.Logger) Option {
	return func(d *Dumper) error {
		d.logger = l
		return nil
	}
}

// WithStateHook registers a function called on every state transition
func WithStateHook(hook func(ScanState)) Option {
	return func(d *Dumper) error {
		if hook == nil {
			return errors.New("state hook cannot be nil")
		}
		d.stateHook = hook
		return nil
	}
}

// WithStrictStatus makes error responses from the tag fail the scan with a
// *TagError instead of storing the error code as payload.
func WithStrictStatus() Option {
	return func(d *Dumper) error {
		d.strictStatus = true
		return nil
	}
}
