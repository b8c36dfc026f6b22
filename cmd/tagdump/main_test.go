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

package main

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunVirtualOnce(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Transport = transportVirtual
	cfg.OutputDir = t.TempDir()
	cfg.PollInterval = 10 * time.Millisecond
	cfg.Once = true

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, run(ctx, &cfg, zerolog.Nop()))

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "E004665544332211_"))

	content, err := os.ReadFile(cfg.OutputDir + "/" + entries[0].Name())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "inventory: 0x"))
	assert.Contains(t, string(content), "\nblocks:\n")
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Transport = transportVirtual
	cfg.OutputDir = t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, run(ctx, &cfg, zerolog.Nop()))
}
