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
	"time"

	tagdump "github.com/ZaparooProject/go-tagdump"
)

// CardDetectionState represents the finite state machine for tag detection
type CardDetectionState int

const (
	StateIdle CardDetectionState = iota
	StateTagDetected
	StateScanning
	StateScanned
)

func (s CardDetectionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTagDetected:
		return "detected"
	case StateScanning:
		return "scanning"
	case StateScanned:
		return "scanned"
	default:
		return "unknown"
	}
}

// CardState tracks the tag in the reader field
type CardState struct {
	LastSeenTime   time.Time
	ScanStartTime  time.Time
	LastUID        string
	ScannedUID     string
	DetectionState CardDetectionState
	Present        bool
}

// TransitionToDetected records a newly present tag
func (cs *CardState) TransitionToDetected(uid tagdump.UID, now time.Time) {
	cs.DetectionState = StateTagDetected
	cs.Present = true
	cs.LastUID = uid.String()
	cs.ScannedUID = ""
	cs.LastSeenTime = now
}

// TransitionToScanning moves to scanning state; removal is not evaluated
// while a scan owns the transport
func (cs *CardState) TransitionToScanning(now time.Time) {
	cs.DetectionState = StateScanning
	cs.ScanStartTime = now
}

// TransitionToScanned marks the present tag as dumped so it is not scanned
// again until it leaves the field
func (cs *CardState) TransitionToScanned(now time.Time) {
	cs.DetectionState = StateScanned
	cs.ScannedUID = cs.LastUID
	cs.LastSeenTime = now
}

// TransitionToIdle resets to idle state
func (cs *CardState) TransitionToIdle() {
	cs.DetectionState = StateIdle
	cs.Present = false
	cs.LastUID = ""
	cs.ScannedUID = ""
	cs.LastSeenTime = time.Time{}
	cs.ScanStartTime = time.Time{}
}

// Seen refreshes the presence of the current tag
func (cs *CardState) Seen(now time.Time) {
	cs.LastSeenTime = now
}

// IsCurrent reports whether uid is the tag already being tracked
func (cs *CardState) IsCurrent(uid tagdump.UID) bool {
	return cs.Present && cs.LastUID == uid.String()
}

// RemovalDue reports whether the tracked tag has not been seen for timeout
func (cs *CardState) RemovalDue(now time.Time, timeout time.Duration) bool {
	if !cs.Present || cs.DetectionState == StateScanning {
		return false
	}
	return now.Sub(cs.LastSeenTime) >= timeout
}
