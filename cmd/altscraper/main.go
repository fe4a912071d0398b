// Zaparoo AltScraper
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo AltScraper.
//
// Zaparoo AltScraper is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo AltScraper is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo AltScraper.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/altscraper/pkg/cli"
	"github.com/ZaparooProject/altscraper/pkg/config"
	"github.com/ZaparooProject/altscraper/pkg/helpers"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags(flag.CommandLine)
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err //nolint:wrapcheck // already has context
	}
	if flags.Pre(os.Stdout) {
		return nil
	}

	var logWriters []io.Writer
	if flags.Verbosity() > 0 {
		logWriters = []io.Writer{helpers.ConsoleWriter(os.Stderr)}
	}
	cfg, err := cli.Setup(flags, config.BaseDefaults, logWriters)
	if err != nil {
		return err //nolint:wrapcheck // already has context
	}

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	// a cancelled run still writes the romlist of the scraped roms
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = cli.Run(ctx, cfg, flags, cli.Env{Out: os.Stdout})
	if errors.Is(err, context.Canceled) {
		log.Warn().Msg("scraping interrupted")
	}
	return err //nolint:wrapcheck // already has context
}
