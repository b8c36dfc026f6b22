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
	"context"
	"errors"
)

// Execute performs one request/response exchange and returns the response
// payload with the status byte removed. It never retries: any failure is
// returned to the caller.
func Execute(ctx context.Context, t Transport, cmd []byte) ([]byte, error) {
	return execute(ctx, t, cmd, false)
}

func execute(ctx context.Context, t Transport, cmd []byte, strictStatus bool) ([]byte, error) {
	port := portName(t)
	if !t.IsConnected() {
		debugln("transceive on closed transport", port)
		return nil, NewNotConnectedError("transceive", port)
	}

	debugf("TX %s: % X", port, cmd)
	resp, err := transceive(ctx, t, cmd)
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) {
			return nil, err
		}
		return nil, NewTransportError("transceive", port, err, GetErrorType(err))
	}
	if len(resp) == 0 {
		return nil, NewTransportError("transceive", port, ErrEmptyResponse, ErrorTypeTransient)
	}
	debugf("RX %s: % X", port, resp)

	if strictStatus {
		if tagErr := ParseTagError(resp); tagErr != nil {
			return nil, tagErr
		}
	}
	return Decode(resp)
}

// ReadUID runs an Inventory on t and returns the UID of the tag in the field.
func ReadUID(ctx context.Context, t Transport) (UID, error) {
	payload, err := Execute(ctx, t, EncodeInventory())
	if err != nil {
		return nil, err
	}
	return ParseInventory(payload)
}
