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
	"fmt"

	"github.com/ZaparooProject/go-tagdump/internal/frame"
)

// Transport errors
var (
	ErrNotConnected        = errors.New("transport not connected")
	ErrEmptyResponse       = errors.New("transport returned empty response")
	ErrTransportRead       = errors.New("transport read failed")
	ErrTransportWrite      = errors.New("transport write failed")
	ErrTransportTimeout    = errors.New("transport timeout")
	ErrTransportClosed     = errors.New("transport closed")
	ErrTagUnreachable      = errors.New("tag unreachable")
	ErrReaderNotResponding = errors.New("reader not responding")
)

// Protocol errors
var (
	ErrFrameTooShort              = errors.New("response frame too short")
	ErrInvalidUIDLength           = errors.New("invalid UID length")
	ErrMalformedInventoryResponse = errors.New("malformed inventory response")
	ErrEmptyPayload               = errors.New("empty response payload")
	ErrIncompleteRecord           = errors.New("dump record incomplete")
)

// ErrSinkWrite wraps failures of the persistence sink.
var ErrSinkWrite = errors.New("sink write failed")

// ErrorType classifies errors for callers that want to decide on their own
// recovery strategy. The dump sequence itself never retries.
type ErrorType int

const (
	// ErrorTypeTransient errors may succeed when the tag is presented again.
	ErrorTypeTransient ErrorType = iota
	// ErrorTypeTimeout errors are transient errors caused by a missing response.
	ErrorTypeTimeout
	// ErrorTypePermanent errors will not go away by retrying.
	ErrorTypePermanent
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypePermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// TransportError is returned for every failure of a request/response exchange.
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s on %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError. Everything but permanent errors
// is marked retryable.
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType != ErrorTypePermanent,
	}
}

// NewTimeoutError creates a retryable timeout TransportError.
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportTimeout, ErrorTypeTimeout)
}

// NewNotConnectedError creates a permanent TransportError for a closed session.
func NewNotConnectedError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrNotConnected, ErrorTypePermanent)
}

// IsRetryable reports whether presenting the tag again could make err go away.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}
	switch {
	case errors.Is(err, ErrTransportTimeout),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrEmptyResponse),
		errors.Is(err, ErrTagUnreachable):
		return true
	default:
		return false
	}
}

// GetErrorType returns the ErrorType of err, defaulting to permanent.
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}
	switch {
	case errors.Is(err, ErrTransportTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrEmptyResponse),
		errors.Is(err, ErrTagUnreachable):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}

// TagError is an ISO15693 error response: the tag set the error flag in the
// response flags and returned an error code.
type TagError struct {
	Code byte
}

func (e *TagError) Error() string {
	return fmt.Sprintf("tag error %02X: %s", e.Code, tagErrorText(e.Code))
}

func tagErrorText(code byte) string {
	switch code {
	case frame.ErrCodeNotSupported:
		return "command not supported"
	case frame.ErrCodeNotRecognized:
		return "command not recognized"
	case frame.ErrCodeOptionNotSupported:
		return "option not supported"
	case frame.ErrCodeBlockNotAvailable:
		return "block not available"
	case frame.ErrCodeBlockLocked:
		return "block locked"
	case frame.ErrCodeBlockNotRead:
		return "block could not be read"
	case frame.ErrCodeUnknown:
		return "unknown error"
	default:
		if code >= 0xA0 && code <= 0xDF {
			return "custom command error"
		}
		return "reserved"
	}
}

// ParseTagError returns a *TagError when the response flags of resp signal an
// error, nil otherwise. A response with the error flag but no code is reported
// as ErrCodeUnknown.
func ParseTagError(resp []byte) error {
	if len(resp) == 0 || resp[0]&frame.ResponseFlagError == 0 {
		return nil
	}
	if len(resp) < 2 {
		return &TagError{Code: frame.ErrCodeUnknown}
	}
	return &TagError{Code: resp[1]}
}

// ScanError reports which step of the dump sequence failed and the last state
// that was reached before it.
type ScanError struct {
	Err   error
	Step  string
	State ScanState
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s failed after %s: %v", e.Step, e.State, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
