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

// Command tagdump waits for ISO15693 tags on a reader, dumps each one and
// writes the report to a directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tagdump "github.com/ZaparooProject/go-tagdump"
	"github.com/ZaparooProject/go-tagdump/detection"
	// Import all detectors to register them
	_ "github.com/ZaparooProject/go-tagdump/detection/spi"
	_ "github.com/ZaparooProject/go-tagdump/detection/uart"
	"github.com/ZaparooProject/go-tagdump/observer/websocket"
	"github.com/ZaparooProject/go-tagdump/polling"
	"github.com/ZaparooProject/go-tagdump/scan"
	"github.com/ZaparooProject/go-tagdump/sink/filesystem"
	"github.com/ZaparooProject/go-tagdump/transport/spi"
	"github.com/ZaparooProject/go-tagdump/transport/uart"
	"github.com/ZaparooProject/go-tagdump/transport/virtual"
	"github.com/rs/zerolog"
)

// newTransport creates the transport named by cfg, auto-detecting the
// device when none is given.
func newTransport(ctx context.Context, cfg *config) (tagdump.Transport, error) {
	if cfg.Transport == transportVirtual {
		return virtual.NewSLIX2(), nil
	}

	path := cfg.Device
	if path == "" {
		device, err := detectDevice(ctx, cfg.Transport)
		if err != nil {
			return nil, err
		}
		_, _ = fmt.Printf("Found %s (%s, confidence %s)\n", device.Name, device.Path, device.Confidence)
		path = device.Path
	}

	switch cfg.Transport {
	case transportSPI:
		t, err := spi.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SPI transport: %w", err)
		}
		return t, nil
	default:
		t, err := uart.New(path, uart.WithBaudRate(cfg.Baud))
		if err != nil {
			return nil, fmt.Errorf("failed to create UART transport: %w", err)
		}
		return t, nil
	}
}

func detectDevice(ctx context.Context, transport string) (detection.DeviceInfo, error) {
	_, _ = fmt.Println("Auto-detecting readers...")
	opts := detection.DefaultOptions()
	opts.Mode = detection.Safe

	devices, err := detection.DetectAll(ctx, &opts)
	if err != nil && !errors.Is(err, detection.ErrDetectionTimeout) {
		return detection.DeviceInfo{}, fmt.Errorf("reader detection failed: %w", err)
	}
	for _, d := range devices {
		if d.Transport == transport {
			return d, nil
		}
	}
	return detection.DeviceInfo{}, fmt.Errorf("%w: no %s reader", detection.ErrNoDevicesFound, transport)
}

// console prints every scan result to stdout.
type console struct{}

func (console) OnScanComplete(content string) {
	_, _ = fmt.Print("\n=== Tag dump ===\n")
	_, _ = fmt.Print(content)
}

func (console) OnScanFailed(reason string) {
	_, _ = fmt.Printf("Scan failed: %s\n", reason)
}

func serveLiveView(ctx context.Context, addr string, hub *websocket.Hub, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		logger.Info().Str("addr", addr).Msg("live view listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("live view server failed")
		}
	}()
}

func run(ctx context.Context, cfg *config, logger zerolog.Logger) error {
	sink, err := filesystem.New(&filesystem.Options{OutputDir: cfg.OutputDir})
	if err != nil {
		return fmt.Errorf("failed to create sink: %w", err)
	}

	observers := tagdump.MultiObserver{console{}}
	if cfg.Listen != "" {
		hub := websocket.NewHub(logger)
		serveLiveView(ctx, cfg.Listen, hub, logger)
		observers = append(observers, hub)
	}

	workerCfg := scan.DefaultConfig()
	workerCfg.Logger = &logger
	if cfg.StrictStatus {
		workerCfg.DumperOptions = append(workerCfg.DumperOptions, tagdump.WithStrictStatus())
	}
	worker := scan.NewWorker(observers, sink, workerCfg)
	if err := worker.Start(); err != nil {
		return fmt.Errorf("failed to start scan worker: %w", err)
	}
	defer worker.Stop()

	transport, err := newTransport(ctx, cfg)
	if err != nil {
		return err
	}

	pollCfg := polling.DefaultConfig()
	pollCfg.PollInterval = cfg.PollInterval
	pollCfg.CardRemovalTimeout = cfg.RemovalTimeout
	if cfg.Once {
		pollCfg.MaxScans = 1
	}
	session, err := polling.NewSession(transport, worker, pollCfg)
	if err != nil {
		return fmt.Errorf("failed to setup session: %w", err)
	}
	session.SetLogger(logger)
	session.OnCardDetected = func(uid tagdump.UID) {
		_, _ = fmt.Printf("Tag detected: %s (%s)\n", uid, uid.ManufacturerName())
	}
	session.OnCardRemoved = func() {
		_, _ = fmt.Println("Tag removed - ready for next tag...")
	}
	session.OnScanDone = func(out scan.Outcome) {
		if out.Err != nil {
			return
		}
		_, _ = fmt.Print(tagdump.Summary(out.Record))
		_, _ = fmt.Printf("Saved %s\n", out.Report.Filename)
	}

	_, _ = fmt.Printf("Waiting for tags on %s (poll interval: %s)...\n", cfg.Transport, cfg.PollInterval)
	err = session.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func main() {
	cfg, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	logger := tagdump.NewConsoleLogger("tagdump").Level(zerolog.InfoLevel)
	if cfg.Debug {
		logger = logger.Level(zerolog.DebugLevel)
		tagdump.SetDebugEnabled(true)
	}
	tagdump.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &cfg, logger); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		stop()
		os.Exit(1)
	}
}
