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
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/ZaparooProject/altscraper/pkg/config"
	"github.com/ZaparooProject/altscraper/pkg/frontends/attractmode"
	"github.com/ZaparooProject/altscraper/pkg/frontends/romscan"
	"github.com/ZaparooProject/altscraper/pkg/helpers"
	"github.com/ZaparooProject/altscraper/pkg/helpers/syncutil"
	"github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/ZaparooProject/altscraper/pkg/scraper/hasher"
	"github.com/ZaparooProject/altscraper/pkg/scraper/platformcache"
	"github.com/ZaparooProject/altscraper/pkg/scraper/systems"
	scrapersvc "github.com/ZaparooProject/altscraper/pkg/service/scraper"
	"github.com/ZaparooProject/altscraper/pkg/shared/httpclient"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// SystemsFile is the systems table merged over the built-in one, in the
// config dir.
const SystemsFile = "systems.yaml"

// ErrNothingToScrape is returned when neither an emulator nor a system
// was given.
var ErrNothingToScrape = errors.New("an emulator file (-emulator) or a system (-system) is required")

// Env is what Run works with. Zero fields get the real implementations.
type Env struct {
	Fs  afero.Fs
	Out io.Writer
	// Registry replaces the built-in scrapers.
	Registry    *scrapersvc.ScraperRegistry
	Client      *httpclient.Client
	SystemsPath string
	CachePath   string
	// HomeDir is where the default AttractMode directories are looked for.
	HomeDir string
}

func (e *Env) fill(cfg *config.Instance) error {
	if e.Fs == nil {
		e.Fs = afero.NewOsFs()
	}
	if e.Out == nil {
		e.Out = io.Discard
	}
	if e.Client == nil {
		e.Client = httpclient.NewClient(
			httpclient.WithFs(e.Fs),
			httpclient.WithRateLimit(cfg.RequestsPerSecond()),
			httpclient.WithTimeout(cfg.Timeout()),
		)
	}
	if e.SystemsPath == "" {
		e.SystemsPath = filepath.Join(helpers.ConfigDir(), SystemsFile)
	}
	if e.CachePath == "" {
		path, err := platformcache.DefaultPath()
		if err != nil {
			return err //nolint:wrapcheck // already has context
		}
		e.CachePath = path
	}
	if e.HomeDir == "" {
		e.HomeDir = homeDir()
	}
	return nil
}

// Run does what the flags ask for: print listings, refresh the platform
// cache or scrape the roms of an emulator.
//
//nolint:gocritic // env is filled in place
func Run(ctx context.Context, cfg *config.Instance, f *Flags, env Env) error {
	if err := env.fill(cfg); err != nil {
		return err
	}

	if *f.Langs {
		printLangs(env.Out, cfg.RegionOrder())
		return nil
	}

	table, err := systems.Load(env.Fs, env.SystemsPath)
	if err != nil {
		return fmt.Errorf("failed to load systems: %w", err)
	}

	registry := env.Registry
	if registry == nil {
		registry = scrapersvc.NewDefaultRegistry(scrapersvc.RegistryConfig{
			Client:      env.Client,
			Systems:     table,
			Username:    *f.User,
			Password:    *f.Password,
			RegionOrder: cfg.RegionOrder(),
		})
	}
	s, err := registry.Get(cfg.ScraperName())
	if err != nil {
		return err //nolint:wrapcheck // names the scraper
	}

	if *f.Systems || *f.RefreshSystems {
		if err := listSystems(ctx, env, f, table, s); err != nil {
			return err
		}
		if *f.Systems || (*f.Emulator == "" && *f.System == "") {
			return nil
		}
	}

	return scrape(ctx, cfg, f, env, table, s)
}

func printLangs(out io.Writer, order scraper.RegionOrder) {
	_, _ = fmt.Fprintln(out, "Available languages and regions:")
	for _, tag := range order.Tags() {
		_, _ = fmt.Fprintf(out, "  %s\n", tag)
	}
}

//nolint:gocritic // see Run
func listSystems(ctx context.Context, env Env, f *Flags, table *systems.Table, s scraper.Scraper) error {
	cache, err := platformcache.Open(env.CachePath, clockwork.NewRealClock())
	if err != nil {
		return err //nolint:wrapcheck // already has context
	}
	defer func() {
		if closeErr := cache.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close platform cache")
		}
	}()

	service := s.GetInfo().Name
	platforms, err := cache.Platforms(ctx, s, *f.RefreshSystems)
	switch {
	case err != nil && *f.RefreshSystems:
		return err //nolint:wrapcheck // already has context
	case err != nil:
		log.Warn().Err(err).Str("scraper", service).Msg("platform names unavailable")
	case *f.RefreshSystems:
		_, _ = fmt.Fprintf(env.Out, "%d %s platforms cached\n", len(platforms), service)
	}
	if !*f.Systems {
		return nil
	}

	names := make(map[string]string, len(platforms))
	for _, p := range platforms {
		names[p.ID] = p.Name
	}

	w := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "SYSTEM\tNAME\tALIASES\t%s\n", strings.ToUpper(service))
	for _, sys := range table.List() {
		platform := "-"
		if id, ok := sys.PlatformID(service); ok {
			platform = id
			if name := names[id]; name != "" {
				platform += " (" + name + ")"
			}
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", sys.ID, sys.Name, strings.Join(sys.Aliases, ", "), platform)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to print systems: %w", err)
	}
	return nil
}

//nolint:gocritic // see Run
func emulator(env Env, f *Flags, table *systems.Table) (*attractmode.Emulator, error) {
	var emu *attractmode.Emulator
	switch {
	case *f.Emulator != "":
		var err error
		emu, err = attractmode.ReadEmulator(env.Fs, *f.Emulator)
		if err != nil {
			return nil, err //nolint:wrapcheck // names the file
		}
	case *f.System != "":
		sys, ok := table.Lookup(*f.System)
		if !ok {
			return nil, fmt.Errorf("%w: %s", scraper.ErrUnsupportedSystem, *f.System)
		}
		if *f.RomsDir == "" {
			return nil, errors.New("-system needs a roms directory (-romsdir)")
		}
		scraperDir := *f.ScraperDir
		if scraperDir == "" {
			scraperDir = filepath.Join(env.HomeDir, ".attract", "scraper")
		}
		emu = attractmode.NewEmulator(*f.System, nil, sys.Extensions, scraperDir)
	default:
		return nil, ErrNothingToScrape
	}

	if *f.RomsDir != "" {
		emu.RomPaths = []string{*f.RomsDir}
	}
	return emu, nil
}

func romlistPath(cfg *config.Instance, f *Flags, home string, emu *attractmode.Emulator) string {
	if *f.ListFile != "" {
		return *f.ListFile
	}
	dir := cfg.RomlistDir()
	if dir == "" {
		dir = filepath.Join(home, ".attract", "romlists")
	}
	return attractmode.RomlistPath(dir, emu.Name)
}

// listedRoms finds the rom file of every game in the romlist. Games with
// no rom file left are dropped.
func listedRoms(fs afero.Fs, path string, emu *attractmode.Emulator) ([]string, error) {
	list, err := attractmode.ReadRomlist(fs, path)
	if err != nil {
		return nil, err //nolint:wrapcheck // names the file
	}

	roms := make([]string, 0, list.Len())
	for _, e := range list.Entries() {
		rom, ok := romscan.Find(emu.RomPaths, emu.Extensions, e.Name)
		if !ok {
			log.Warn().Str("rom", e.Name).Msg("no rom file for romlist entry, dropping it")
			continue
		}
		roms = append(roms, rom)
	}
	return roms, nil
}

func romlistMode(cfg *config.Instance, f *Flags) scrapersvc.RomlistMode {
	switch {
	case *f.NoRomlistUpdate:
		return scrapersvc.RomlistSkip
	case *f.RomlistOnly:
		return scrapersvc.RomlistOverwrite
	case cfg.RomlistUpdate():
		return scrapersvc.RomlistUpdate
	default:
		return scrapersvc.RomlistOverwrite
	}
}

// progressPrinter prints a line each time a new rom is started. Updates
// also come from download goroutines.
func progressPrinter(out io.Writer) func(scraper.ScraperProgress) {
	var mu syncutil.Mutex
	var current string
	return func(p scraper.ScraperProgress) {
		mu.Lock()
		defer mu.Unlock()
		if p.CurrentGame == "" || p.CurrentGame == current {
			return
		}
		current = p.CurrentGame
		_, _ = fmt.Fprintf(out, "[%d/%d] %s\n", p.ProcessedGames+1, p.TotalGames, p.CurrentGame)
	}
}

//nolint:gocritic // see Run
func scrape(
	ctx context.Context,
	cfg *config.Instance,
	f *Flags,
	env Env,
	table *systems.Table,
	s scraper.Scraper,
) error {
	emu, err := emulator(env, f, table)
	if err != nil {
		return err
	}
	sys, err := emu.ResolveSystem(table)
	if err != nil {
		return err //nolint:wrapcheck // names the system
	}

	listPath := romlistPath(cfg, f, env.HomeDir, emu)
	var roms []string
	if *f.RomlistOnly {
		roms, err = listedRoms(env.Fs, listPath, emu)
	} else {
		roms, err = romscan.Scan(emu.RomPaths, emu.Extensions)
	}
	if err != nil {
		return err //nolint:wrapcheck // already has context
	}
	log.Info().
		Str("emulator", emu.Name).
		Str("system", sys.ID).
		Str("romlist", listPath).
		Int("roms", len(roms)).
		Msg("roms found")

	svc, err := scrapersvc.NewScraperService(env.Fs, scrapersvc.Options{
		Scraper:           s,
		Client:            env.Client,
		Storage:           scraper.NewMediaStorage(env.Fs, emu.ArtworkDirs()),
		Hasher:            hasher.New(env.Fs),
		Progress:          scrapersvc.NewProgressTracker(progressPrinter(env.Out)),
		System:            sys.ID,
		Emulator:          emu.Name,
		RomlistPath:       listPath,
		Language:          cfg.Language(),
		RegionOrder:       cfg.RegionOrder(),
		Assets:            cfg.Assets(),
		Mode:              romlistMode(cfg, f),
		ParallelDownloads: cfg.ParallelDownloads(),
		Force:             cfg.ForceDownload(),
		VerifyHashes:      cfg.VerifyHashes(),
	})
	if err != nil {
		return err //nolint:wrapcheck // already has context
	}

	runErr := svc.Run(ctx, roms)
	p := svc.GetProgress()
	_, _ = fmt.Fprintf(env.Out, "%d roms, %d found, %d media downloaded, %d skipped, %d errors\n",
		p.ProcessedGames, p.FoundGames, p.DownloadedFiles, p.SkippedFiles, p.ErrorCount)
	if runErr != nil {
		return runErr //nolint:wrapcheck // already has context
	}
	return nil
}
