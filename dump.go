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
	"fmt"

	"github.com/rs/zerolog"
)

// ScanState is a step of the linear dump sequence.
type ScanState int

const (
	StateIdle ScanState = iota
	StateConnected
	StateInventoryDone
	StateSystemInfoDone
	StateSignatureDone
	StateBlocksDone
	StateComplete
	StateFailed
)

func (s ScanState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnected:
		return "connected"
	case StateInventoryDone:
		return "inventory done"
	case StateSystemInfoDone:
		return "system info done"
	case StateSignatureDone:
		return "signature done"
	case StateBlocksDone:
		return "blocks done"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// BlockRange is the start block and the count byte of one Read Multiple
// Blocks request.
type BlockRange struct {
	Start byte
	Count byte
}

// BlockRangeCount is the number of block reads in a dump.
const BlockRangeCount = 5

// BlockRanges lists the block reads of a dump in order: blocks 0x00 to 0x4F
// in groups of 16.
var BlockRanges = [BlockRangeCount]BlockRange{
	{Start: 0x00, Count: 0x0F},
	{Start: 0x10, Count: 0x0F},
	{Start: 0x20, Count: 0x0F},
	{Start: 0x30, Count: 0x0F},
	{Start: 0x40, Count: 0x0F},
}

// DumpRecord holds the payloads captured during one scan. A record returned
// by Dumper.Dump is always complete.
type DumpRecord struct {
	Inventory  []byte
	UID        UID
	SystemInfo []byte
	Signature  []byte
	Blocks     [BlockRangeCount][]byte
}

// Complete reports whether every field of the record has been captured.
func (r *DumpRecord) Complete() bool {
	if r == nil || len(r.Inventory) == 0 || !r.UID.Valid() ||
		len(r.SystemInfo) == 0 || len(r.Signature) == 0 {
		return false
	}
	for _, blk := range r.Blocks {
		if len(blk) == 0 {
			return false
		}
	}
	return true
}

// Memory returns the block payloads concatenated in address order.
func (r *DumpRecord) Memory() []byte {
	size := 0
	for _, blk := range r.Blocks {
		size += len(blk)
	}
	mem := make([]byte, 0, size)
	for _, blk := range r.Blocks {
		mem = append(mem, blk...)
	}
	return mem
}

// Dumper runs the fixed dump sequence against a connected transport.
//
// Thread Safety: a Dumper tracks the state of the scan it is running and must
// only be used by one goroutine at a time.
type Dumper struct {
	logger       zerolog.Logger
	stateHook    func(ScanState)
	state        ScanState
	blocksRead   int
	strictStatus bool
}

// NewDumper creates a Dumper with the given options.
func NewDumper(opts ...Option) (*Dumper, error) {
	d := &Dumper{
		logger: zerolog.Nop(),
		state:  StateIdle,
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// State returns the state reached by the last or current scan.
func (d *Dumper) State() ScanState {
	return d.state
}

// BlocksRead returns how many block ranges the last or current scan captured.
func (d *Dumper) BlocksRead() int {
	return d.blocksRead
}

func (d *Dumper) transition(s ScanState) {
	d.state = s
	if d.stateHook != nil {
		d.stateHook(s)
	}
}

func (d *Dumper) fail(step string, err error) error {
	scanErr := &ScanError{Step: step, State: d.state, Err: err}
	d.transition(StateFailed)
	d.logger.Warn().Err(err).Str("step", step).Msg("scan failed")
	return scanErr
}

// Dump connects t if needed, captures inventory, system information,
// signature and all block ranges, then closes t. Any failure aborts the
// sequence and no record is returned.
func (d *Dumper) Dump(ctx context.Context, t Transport) (*DumpRecord, error) {
	d.blocksRead = 0
	d.transition(StateIdle)

	if !t.IsConnected() {
		if err := t.Connect(); err != nil {
			return nil, d.fail("connect", fmt.Errorf("%w: %w", ErrTagUnreachable, err))
		}
		if !t.IsConnected() {
			return nil, d.fail("connect", ErrTagUnreachable)
		}
	}
	defer d.closeTransport(t)
	d.transition(StateConnected)

	rec := &DumpRecord{}

	inventory, err := d.exchange(ctx, t, "inventory", EncodeInventory())
	if err != nil {
		return nil, err
	}
	uid, err := ParseInventory(inventory)
	if err != nil {
		return nil, d.fail("inventory", err)
	}
	rec.Inventory = inventory
	rec.UID = uid
	d.logger.Debug().Stringer("uid", uid).Msg("inventory")
	d.transition(StateInventoryDone)

	cmd, err := EncodeGetSystemInfo(uid)
	if err != nil {
		return nil, d.fail("system info", err)
	}
	if rec.SystemInfo, err = d.exchange(ctx, t, "system info", cmd); err != nil {
		return nil, err
	}
	d.transition(StateSystemInfoDone)

	if cmd, err = EncodeGetSignature(uid); err != nil {
		return nil, d.fail("signature", err)
	}
	if rec.Signature, err = d.exchange(ctx, t, "signature", cmd); err != nil {
		return nil, err
	}
	d.transition(StateSignatureDone)

	for i, r := range BlockRanges {
		step := fmt.Sprintf("read blocks %02X", r.Start)
		if cmd, err = EncodeReadMultipleBlocks(uid, r.Start, r.Count); err != nil {
			return nil, d.fail(step, err)
		}
		if rec.Blocks[i], err = d.exchange(ctx, t, step, cmd); err != nil {
			return nil, err
		}
		d.blocksRead = i + 1
		d.transition(StateBlocksDone)
	}

	d.transition(StateComplete)
	d.logger.Info().Stringer("uid", uid).Msg("scan complete")
	return rec, nil
}

func (d *Dumper) exchange(ctx context.Context, t Transport, step string, cmd []byte) ([]byte, error) {
	payload, err := execute(ctx, t, cmd, d.strictStatus)
	if err != nil {
		return nil, d.fail(step, err)
	}
	if len(payload) == 0 {
		return nil, d.fail(step, ErrEmptyPayload)
	}
	return payload, nil
}

func (d *Dumper) closeTransport(t Transport) {
	if err := t.Close(); err != nil {
		d.logger.Debug().Err(err).Msg("close transport")
	}
}
