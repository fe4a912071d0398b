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

package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/altscraper/pkg/config"
	"github.com/ZaparooProject/altscraper/pkg/helpers"
	"github.com/ZaparooProject/altscraper/pkg/helpers/syncutil"
	"github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/rs/zerolog/log"
)

// ErrConflictingFlags is returned when flags that exclude each other are
// both given.
var ErrConflictingFlags = errors.New("conflicting flags")

type Flags struct {
	set *flag.FlagSet

	Emulator    *string
	Language    *string
	System      *string
	RomsDir     *string
	RomlistsDir *string
	ListFile    *string
	ScraperDir  *string
	Scraper     *string
	User        *string
	Password    *string

	Version         *bool
	Langs           *bool
	Systems         *bool
	RefreshSystems  *bool
	Force           *bool
	RomlistUpdate   *bool
	NoRomlistUpdate *bool
	RomlistOnly     *bool
	Info            *bool
	Debug           *bool

	Box2D   *bool
	Box3D   *bool
	Marquee *bool
	Video   *bool
	Wheel   *bool
}

func stringFlag(set *flag.FlagSet, name, short, value, usage string) *string {
	p := set.String(name, value, usage)
	if short != "" {
		set.StringVar(p, short, value, "shorthand for -"+name)
	}
	return p
}

func boolFlag(set *flag.FlagSet, name, short, usage string) *bool {
	p := set.Bool(name, false, usage)
	if short != "" {
		set.BoolVar(p, short, false, "shorthand for -"+name)
	}
	return p
}

// SetupFlags defines every command line flag on set.
func SetupFlags(set *flag.FlagSet) *Flags {
	return &Flags{
		set: set,

		Emulator:    stringFlag(set, "emulator", "e", "", "AttractMode emulator configuration file"),
		Language:    stringFlag(set, "lang", "l", "", "region tag used to pick game info and media"),
		System:      stringFlag(set, "system", "s", "", "system name, used without -emulator"),
		RomsDir:     stringFlag(set, "romsdir", "", "", "roms directory, replaces the emulator rom paths"),
		RomlistsDir: stringFlag(set, "romlistsdir", "", "", "romlists directory (default ~/.attract/romlists)"),
		ListFile:    stringFlag(set, "listfile", "", "", "romlist file to write, overrides -romlistsdir"),
		ScraperDir:  stringFlag(set, "scraperdir", "", "", "artwork base directory used without -emulator (default ~/.attract/scraper)"),
		Scraper:     stringFlag(set, "scraper", "", "", "scraping service: screenscraper, hfsdb or thegamesdb"),
		User:        stringFlag(set, "user", "u", "", "service account user"),
		Password:    stringFlag(set, "password", "p", "", "service account password"),

		Version:         boolFlag(set, "version", "", "print version and exit"),
		Langs:           boolFlag(set, "langs", "", "print the available region tags"),
		Systems:         boolFlag(set, "systems", "", "print the available systems"),
		RefreshSystems:  boolFlag(set, "refresh-systems", "", "refresh the cached platform list of the scraper"),
		Force:           boolFlag(set, "force", "f", "download media even if already present"),
		RomlistUpdate:   boolFlag(set, "romlist-update", "", "add new roms to the romlist instead of overwriting it"),
		NoRomlistUpdate: boolFlag(set, "no-romlist-update", "", "leave the romlist untouched, only download media"),
		RomlistOnly:     boolFlag(set, "romlist-only", "", "scrape the roms listed in the existing romlist"),
		Info:            boolFlag(set, "v", "", "verbose output"),
		Debug:           boolFlag(set, "vv", "", "debug output"),

		Box2D:   boolFlag(set, "box2d", "", "download box art"),
		Box3D:   boolFlag(set, "box3d", "", "download 3D box art"),
		Marquee: boolFlag(set, "marquee", "", "download marquees"),
		Video:   boolFlag(set, "video", "", "download videos"),
		Wheel:   boolFlag(set, "wheel", "", "download wheels"),
	}
}

// Parse parses args and rejects invalid flag combinations.
func (f *Flags) Parse(args []string) error {
	if err := f.set.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	return f.Check()
}

// Check rejects invalid flag combinations.
func (f *Flags) Check() error {
	if *f.RomlistUpdate && *f.NoRomlistUpdate {
		return fmt.Errorf("%w: -romlist-update and -no-romlist-update", ErrConflictingFlags)
	}
	if *f.RomlistOnly && *f.RomlistUpdate {
		return fmt.Errorf("%w: -romlist-only and -romlist-update", ErrConflictingFlags)
	}
	if *f.Emulator != "" && *f.System != "" {
		return fmt.Errorf("%w: -emulator and -system", ErrConflictingFlags)
	}
	return nil
}

func (f *Flags) isFlagPassed(name string) bool {
	found := false
	f.set.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// Verbosity is 0 by default, 1 with -v and 2 with -vv.
func (f *Flags) Verbosity() int {
	switch {
	case *f.Debug:
		return 2
	case *f.Info:
		return 1
	default:
		return 0
	}
}

// Assets returns the assets requested with the media flags.
func (f *Flags) Assets() []scraper.Asset {
	var assets []scraper.Asset
	for _, a := range []struct {
		set   *bool
		asset scraper.Asset
	}{
		{f.Box2D, scraper.AssetBox2D},
		{f.Box3D, scraper.AssetBox3D},
		{f.Marquee, scraper.AssetMarquee},
		{f.Video, scraper.AssetVideo},
		{f.Wheel, scraper.AssetWheel},
	} {
		if *a.set {
			assets = append(assets, a.asset)
		}
	}
	return assets
}

// Overrides returns the config values set on the command line.
func (f *Flags) Overrides() config.Overrides {
	o := config.Overrides{Assets: f.Assets()}
	if f.isFlagPassed("scraper") {
		o.ScraperName = f.Scraper
	}
	if f.isFlagPassed("lang") || f.isFlagPassed("l") {
		o.Language = f.Language
	}
	if f.isFlagPassed("romlistsdir") {
		o.RomlistDir = f.RomlistsDir
	}
	if *f.Force {
		o.Force = f.Force
	}
	if *f.RomlistUpdate {
		o.Update = f.RomlistUpdate
	}
	return o
}

// Pre handles the flags that need neither config nor logging.
func (f *Flags) Pre(out io.Writer) (exit bool) {
	if *f.Version {
		_, _ = fmt.Fprintf(out, "AltScraper v%s\n", config.AppVersion)
		return true
	}
	return false
}

// Setup initializes logging and the user config, then applies the
// command line overrides.
//
//nolint:gocritic // config struct copied for immutability
func Setup(f *Flags, defaultConfig config.Values, writers []io.Writer) (*config.Instance, error) {
	cfg, err := config.NewConfig(helpers.ConfigDir(), defaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Apply(f.Overrides())

	level := helpers.LogLevel(f.Verbosity(), cfg.DebugLogging())
	runID, err := helpers.InitLogging(helpers.LogDir(), level, writers)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	log.Debug().
		Str("run_id", runID).
		Str("version", config.AppVersion).
		Bool("deadlock_detection", syncutil.DeadlockEnabled).
		Msg("altscraper started")

	if err := cfg.Validate(); err != nil {
		return nil, err //nolint:wrapcheck // already describes the config
	}
	return cfg, nil
}

func homeDir(sub ...string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Warn().Err(err).Msg("failed to find home directory")
		home = "."
	}
	return filepath.Join(append([]string{home}, sub...)...)
}
