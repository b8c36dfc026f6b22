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

import "context"

// Observer is notified exactly once per scan with either the rendered report
// content or a failure reason.
type Observer interface {
	OnScanComplete(content string)
	OnScanFailed(reason string)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Complete func(content string)
	Failed   func(reason string)
}

// OnScanComplete implements Observer.
func (f ObserverFuncs) OnScanComplete(content string) {
	if f.Complete != nil {
		f.Complete(content)
	}
}

// OnScanFailed implements Observer.
func (f ObserverFuncs) OnScanFailed(reason string) {
	if f.Failed != nil {
		f.Failed(reason)
	}
}

// MultiObserver forwards each notification to every observer in order.
type MultiObserver []Observer

// OnScanComplete implements Observer.
func (m MultiObserver) OnScanComplete(content string) {
	for _, o := range m {
		o.OnScanComplete(content)
	}
}

// OnScanFailed implements Observer.
func (m MultiObserver) OnScanFailed(reason string) {
	for _, o := range m {
		o.OnScanFailed(reason)
	}
}

// Sink persists rendered reports. Writes to an existing filename append.
type Sink interface {
	Write(ctx context.Context, filename string, content []byte) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, filename string, content []byte) error

// Write implements Sink.
func (f SinkFunc) Write(ctx context.Context, filename string, content []byte) error {
	return f(ctx, filename, content)
}
