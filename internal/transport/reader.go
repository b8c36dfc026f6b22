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

package transport

import (
	"errors"
	"fmt"

	tagdump "github.com/ZaparooProject/go-tagdump"
	"github.com/ZaparooProject/go-tagdump/internal/frame"
)

// DecodeTagResponse parses a SendRecv reply from the reader and returns the
// tag response without the reader's CRC and error flags trailer.
func DecodeTagResponse(op, port string, resp []byte) ([]byte, error) {
	data, err := frame.ParseReaderResponse(resp)
	if err != nil {
		return nil, MapReaderError(op, port, err)
	}
	tagResp, err := frame.StripReaderTrailer(data)
	if err != nil {
		return nil, MapReaderError(op, port, err)
	}
	return tagResp, nil
}

// CheckReaderOK parses a reply to a reader configuration command.
func CheckReaderOK(op, port string, resp []byte) error {
	if _, err := frame.ParseReaderResponse(resp); err != nil {
		return MapReaderError(op, port, err)
	}
	return nil
}

// MapReaderError converts a reader protocol error into a *tagdump.TransportError.
// A reader timeout means no tag answered and is reported as a timeout so the
// caller can ask the user to present the tag again.
func MapReaderError(op, port string, err error) error {
	var te *tagdump.TransportError
	if errors.As(err, &te) {
		return err
	}

	var re *frame.ReaderError
	switch {
	case errors.As(err, &re) && re.Timeout():
		return tagdump.NewTransportError(op, port,
			fmt.Errorf("%w: %w", tagdump.ErrTransportTimeout, err), tagdump.ErrorTypeTimeout)
	case errors.As(err, &re),
		errors.Is(err, frame.ErrReaderFrameShort),
		errors.Is(err, frame.ErrReaderDataLength):
		return tagdump.NewTransportError(op, port,
			fmt.Errorf("%w: %w", tagdump.ErrTransportRead, err), tagdump.ErrorTypeTransient)
	default:
		return tagdump.NewTransportError(op, port, err, tagdump.ErrorTypePermanent)
	}
}
