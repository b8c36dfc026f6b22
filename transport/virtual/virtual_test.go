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

package virtual

import (
	"context"
	"testing"
	"time"

	tagdump "github.com/ZaparooProject/go-tagdump"
	testutil "github.com/ZaparooProject/go-tagdump/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportDump(t *testing.T) {
	t.Parallel()

	tr := NewSLIX2()
	dumper, err := tagdump.NewDumper()
	require.NoError(t, err)

	rec, err := dumper.Dump(context.Background(), tr)
	require.NoError(t, err)
	assert.Equal(t, tagdump.UID(testutil.TestSLIX2UID), rec.UID)
	assert.Len(t, rec.Signature, testutil.SLIX2SignatureSize)
	for _, blk := range rec.Blocks {
		assert.Len(t, blk, 16*testutil.SLIX2BlockSize)
	}
	assert.False(t, tr.IsConnected(), "dump closes the transport")

	msg, err := tagdump.ReadNDEF(rec)
	require.NoError(t, err)
	assert.Len(t, msg.Records, 1)
}

func TestTransportTagRemoved(t *testing.T) {
	t.Parallel()

	tr := NewSLIX2()
	require.NoError(t, tr.Connect())
	tr.Tag().Remove()

	_, err := tr.Transceive(tagdump.EncodeInventory())
	require.ErrorIs(t, err, tagdump.ErrTransportTimeout)
	assert.True(t, tagdump.IsRetryable(err))
}

func TestTransportNotConnected(t *testing.T) {
	t.Parallel()

	tr := NewSLIX2()
	_, err := tr.Transceive(tagdump.EncodeInventory())
	require.ErrorIs(t, err, tagdump.ErrNotConnected)
	assert.Equal(t, tagdump.TransportVirtual, tr.Type())
	assert.Equal(t, "virtual", tr.String())
}

func TestTransportContextCancellation(t *testing.T) {
	t.Parallel()

	tr := NewSLIX2()
	tr.SetDelay(time.Second)
	require.NoError(t, tr.Connect())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := tr.TransceiveContext(ctx, tagdump.EncodeInventory())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
