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
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	transportUART    = "uart"
	transportSPI     = "spi"
	transportVirtual = "virtual"
)

type config struct {
	Device         string
	Transport      string
	OutputDir      string
	Listen         string
	Baud           int
	PollInterval   time.Duration
	RemovalTimeout time.Duration
	Once           bool
	Debug          bool
	StrictStatus   bool
}

func defaultConfig() config {
	return config{
		Transport:      transportUART,
		OutputDir:      "dumps",
		Baud:           57600,
		PollInterval:   250 * time.Millisecond,
		RemovalTimeout: 2 * time.Second,
	}
}

type fileConfig struct {
	Device         string `toml:"device"`
	Transport      string `toml:"transport"`
	OutputDir      string `toml:"out"`
	Listen         string `toml:"listen"`
	PollInterval   string `toml:"poll_interval"`
	RemovalTimeout string `toml:"removal_timeout"`
	Baud           int    `toml:"baud"`
	Once           bool   `toml:"once"`
	Debug          bool   `toml:"debug"`
	StrictStatus   bool   `toml:"strict_status"`
}

// loadConfigFile overlays the keys defined in the TOML file at path on cfg.
func loadConfigFile(path string, cfg *config) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("device") {
		cfg.Device = strings.TrimSpace(raw.Device)
	}
	if meta.IsDefined("transport") {
		cfg.Transport = strings.ToLower(strings.TrimSpace(raw.Transport))
	}
	if meta.IsDefined("out") {
		cfg.OutputDir = strings.TrimSpace(raw.OutputDir)
	}
	if meta.IsDefined("listen") {
		cfg.Listen = strings.TrimSpace(raw.Listen)
	}
	if meta.IsDefined("baud") {
		cfg.Baud = raw.Baud
	}
	if meta.IsDefined("poll_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.PollInterval))
		if err != nil {
			return fmt.Errorf("parse poll_interval: %w", err)
		}
		cfg.PollInterval = d
	}
	if meta.IsDefined("removal_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.RemovalTimeout))
		if err != nil {
			return fmt.Errorf("parse removal_timeout: %w", err)
		}
		cfg.RemovalTimeout = d
	}
	if meta.IsDefined("once") {
		cfg.Once = raw.Once
	}
	if meta.IsDefined("debug") {
		cfg.Debug = raw.Debug
	}
	if meta.IsDefined("strict_status") {
		cfg.StrictStatus = raw.StrictStatus
	}
	return nil
}

// parseArgs builds the configuration from defaults, the optional config
// file and the command line. Flags given on the command line win over the
// file.
func parseArgs(args []string, output io.Writer) (config, error) {
	cfg := defaultConfig()
	var flags config
	var path string

	fs := flag.NewFlagSet("tagdump", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&path, "config", "", "TOML config file")
	fs.StringVar(&flags.Device, "device", "",
		"Reader device (e.g., /dev/ttyUSB0, COM3 or SPI0.0). Leave empty for auto-detection.")
	fs.StringVar(&flags.Transport, "transport", cfg.Transport, "Reader transport: uart, spi or virtual")
	fs.IntVar(&flags.Baud, "baud", cfg.Baud, "Serial baud rate")
	fs.StringVar(&flags.OutputDir, "out", cfg.OutputDir, "Directory reports are written to")
	fs.DurationVar(&flags.PollInterval, "poll-interval", cfg.PollInterval, "Polling interval for tag detection")
	fs.DurationVar(&flags.RemovalTimeout, "removal-timeout", cfg.RemovalTimeout,
		"Time a tag may stay silent before it counts as removed")
	fs.BoolVar(&flags.Once, "once", false, "Exit after the first scan")
	fs.StringVar(&flags.Listen, "listen", "", "Serve the live view websocket on this address (e.g., :8080)")
	fs.BoolVar(&flags.Debug, "debug", false, "Enable debug output")
	fs.BoolVar(&flags.StrictStatus, "strict-status", false, "Fail scans on tag error responses")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	if path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return config{}, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device":
			cfg.Device = flags.Device
		case "transport":
			cfg.Transport = strings.ToLower(flags.Transport)
		case "baud":
			cfg.Baud = flags.Baud
		case "out":
			cfg.OutputDir = flags.OutputDir
		case "poll-interval":
			cfg.PollInterval = flags.PollInterval
		case "removal-timeout":
			cfg.RemovalTimeout = flags.RemovalTimeout
		case "once":
			cfg.Once = flags.Once
		case "listen":
			cfg.Listen = flags.Listen
		case "debug":
			cfg.Debug = flags.Debug
		case "strict-status":
			cfg.StrictStatus = flags.StrictStatus
		}
	})

	return cfg, cfg.validate()
}

func (c *config) validate() error {
	switch c.Transport {
	case transportUART, transportSPI, transportVirtual:
	default:
		return fmt.Errorf("unsupported transport type: %s", c.Transport)
	}
	if c.Baud <= 0 {
		return errors.New("baud rate must be positive")
	}
	if c.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if c.RemovalTimeout <= 0 {
		return errors.New("removal timeout must be positive")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("output directory required")
	}
	return nil
}
