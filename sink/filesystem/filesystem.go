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

// Package filesystem persists reports as files in one output directory.
// Writing to an existing file appends to it.
package filesystem

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tagdump "github.com/ZaparooProject/go-tagdump"
)

// ErrPathInvalid is returned for filenames that do not name a file.
var ErrPathInvalid = errors.New("invalid report filename")

// Options configures the sink.
type Options struct {
	// OutputDir is the directory reports are written to. Required.
	OutputDir string
	// PermFile and PermDir default to 0o644 and 0o755 when zero.
	PermFile os.FileMode
	PermDir  os.FileMode
	// BufSize is the write buffer size, 4 KiB when zero.
	BufSize int
	// Sync flushes each report to stable storage before Write returns.
	Sync bool
}

// Sink implements tagdump.Sink on a local directory.
type Sink struct {
	root    string
	permF   os.FileMode
	permD   os.FileMode
	bufSize int
	sync    bool
}

// New creates a filesystem sink.
func New(opts *Options) (*Sink, error) {
	if opts == nil || strings.TrimSpace(opts.OutputDir) == "" {
		return nil, fmt.Errorf("%w: output directory required", os.ErrInvalid)
	}
	bsz := opts.BufSize
	if bsz <= 0 {
		bsz = 4 * 1024
	}
	pf := opts.PermFile
	if pf == 0 {
		pf = 0o644
	}
	pd := opts.PermDir
	if pd == 0 {
		pd = 0o755
	}
	return &Sink{root: opts.OutputDir, permF: pf, permD: pd, bufSize: bsz, sync: opts.Sync}, nil
}

var _ tagdump.Sink = (*Sink)(nil)

// Write appends content to filename inside the output directory, creating
// the directory and the file as needed. The file is locked for the duration
// of the write so concurrent writers never interleave.
func (s *Sink) Write(ctx context.Context, filename string, content []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	dest, err := s.mapPath(filename)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), s.permD); err != nil {
		return fmt.Errorf("%w: %w", tagdump.ErrSinkWrite, err)
	}
	if err := s.appendFile(dest, content); err != nil {
		return fmt.Errorf("%w: %s: %w", tagdump.ErrSinkWrite, filename, err)
	}
	return nil
}

// Path returns where filename is stored.
func (s *Sink) Path(filename string) (string, error) {
	return s.mapPath(filename)
}

// mapPath keeps only the base name so reports always land in the output
// directory.
func (s *Sink) mapPath(filename string) (string, error) {
	rel := filepath.Base(filepath.Clean(filename))
	if rel == "." || rel == ".." || rel == "" || rel == string(filepath.Separator) {
		return "", ErrPathInvalid
	}
	return filepath.Join(s.root, rel), nil
}

func (s *Sink) appendFile(dest string, content []byte) (err error) {
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, s.permF)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := lockFile(f); err != nil {
		return err
	}
	defer func() { _ = unlockFile(f) }()

	bw := bufio.NewWriterSize(f, s.bufSize)
	if _, err := bw.Write(content); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if s.sync {
		return f.Sync()
	}
	return nil
}
