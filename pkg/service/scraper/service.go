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

package scraper

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/ZaparooProject/altscraper/pkg/frontends/attractmode"
	"github.com/ZaparooProject/altscraper/pkg/frontends/romscan"
	scraperpkg "github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/ZaparooProject/altscraper/pkg/scraper/hasher"
	"github.com/ZaparooProject/altscraper/pkg/shared/httpclient"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// RomlistMode says what happens to the romlist of the emulator.
type RomlistMode int

const (
	// RomlistOverwrite replaces the romlist with the scanned ROMs.
	RomlistOverwrite RomlistMode = iota
	// RomlistUpdate keeps the existing romlist and only scrapes the ROMs it
	// doesn't list yet.
	RomlistUpdate
	// RomlistSkip leaves the romlist untouched, every ROM is scraped.
	RomlistSkip
)

// Options configures a ScraperService.
type Options struct {
	Scraper  scraperpkg.Scraper
	Client   *httpclient.Client
	Storage  *scraperpkg.MediaStorage
	Hasher   *hasher.Hasher
	Progress *ProgressTracker
	// System is the systems table id passed to lookups.
	System string
	// Emulator is written in the Emulator column of the romlist.
	Emulator    string
	RomlistPath string
	Language    string
	RegionOrder scraperpkg.RegionOrder
	Assets      []scraperpkg.Asset
	Mode        RomlistMode
	// ParallelDownloads bounds the concurrent media downloads of one ROM.
	ParallelDownloads int
	Force             bool
	VerifyHashes      bool
}

// ScraperService scrapes ROMs one after the other, writes their romlist
// entries and downloads their media.
type ScraperService struct {
	fs       afero.Fs
	progress *ProgressTracker
	opts     Options
}

// NewScraperService checks opts and fills in defaults. fs is used for
// the romlist.
//
//nolint:gocritic // options copied on purpose
func NewScraperService(fs afero.Fs, opts Options) (*ScraperService, error) {
	if opts.Scraper == nil {
		return nil, errors.New("no scraper given")
	}
	if opts.Client == nil || opts.Storage == nil || opts.Hasher == nil {
		return nil, errors.New("client, media storage and hasher are required")
	}
	if len(opts.RegionOrder) == 0 {
		opts.RegionOrder = scraperpkg.Regions
	}
	if !opts.RegionOrder.Known(opts.Language) {
		return nil, fmt.Errorf("%w: %q", scraperpkg.ErrUnsupportedLocale, opts.Language)
	}
	if opts.Mode != RomlistSkip && opts.RomlistPath == "" {
		return nil, errors.New("no romlist path given")
	}
	opts.ParallelDownloads = max(opts.ParallelDownloads, 1)
	opts.Assets = uniqueAssets(opts.Assets)

	progress := opts.Progress
	if progress == nil {
		progress = NewProgressTracker(nil)
	}

	return &ScraperService{fs: fs, opts: opts, progress: progress}, nil
}

func uniqueAssets(assets []scraperpkg.Asset) []scraperpkg.Asset {
	var unique []scraperpkg.Asset
	for _, a := range assets {
		if !slices.Contains(unique, a) {
			unique = append(unique, a)
		}
	}
	return unique
}

// GetProgress returns the current scraping progress
func (s *ScraperService) GetProgress() scraperpkg.ScraperProgress {
	return s.progress.Get()
}

// Run scrapes roms in path order. A ROM that can't be scraped gets a
// romlist entry with only its name. The romlist is written at the end,
// also when ctx is cancelled half way.
func (s *ScraperService) Run(ctx context.Context, roms []string) error {
	roms = slices.Clone(roms)
	slices.Sort(roms)

	if s.opts.Mode != RomlistSkip {
		dir := filepath.Dir(s.opts.RomlistPath)
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			err = fmt.Errorf("romlist directory %s is not writable: %w", dir, err)
			s.progress.Fail(err)
			return err
		}
	}

	list := attractmode.NewRomlist()
	if s.opts.Mode == RomlistUpdate {
		existing, err := attractmode.ReadRomlist(s.fs, s.opts.RomlistPath)
		switch {
		case errors.Is(err, attractmode.ErrNoRomlist):
			log.Info().Str("path", s.opts.RomlistPath).Msg("no romlist to update, creating it")
		case err != nil:
			s.progress.Fail(err)
			return err
		default:
			list = existing
		}
	}
	initial := list.Len()

	s.progress.Start(len(roms))
	log.Info().
		Int("roms", len(roms)).
		Str("scraper", s.opts.Scraper.GetInfo().Name).
		Str("system", s.opts.System).
		Str("language", s.opts.Language).
		Msg("scraping started")

	seen := make(map[string]bool, len(roms))
	var runErr error
	for i, rom := range roms {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		name := romscan.Name(rom)
		s.progress.SetCurrentGame(name)
		log.Info().Msgf("scraping progression: %d/%d %s", i+1, len(roms), rom)

		switch {
		case seen[name]:
			log.Debug().Str("rom", rom).Msg("rom name already scraped with another extension")
		case s.opts.Mode == RomlistUpdate && list.Has(name):
			log.Debug().Str("rom", name).Msg("rom already in the romlist")
		default:
			entry, err := s.ScrapeRom(ctx, rom)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					runErr = err
				}
				s.progress.SetError(err)
			}
			if runErr == nil {
				list.Put(entry)
			}
		}
		seen[name] = true
		if runErr != nil {
			break
		}
		s.progress.IncrementProgress()
	}

	if err := s.writeRomlist(list, initial); err != nil {
		s.progress.Fail(err)
		return err
	}

	if runErr != nil {
		s.progress.Cancel()
		return fmt.Errorf("scraping interrupted: %w", runErr)
	}

	s.progress.Complete()
	p := s.progress.Get()
	log.Info().
		Int("processed", p.ProcessedGames).
		Int("found", p.FoundGames).
		Int("downloaded", p.DownloadedFiles).
		Int("skipped", p.SkippedFiles).
		Int("errors", p.ErrorCount).
		Msg("scraping over")
	return nil
}

func (s *ScraperService) writeRomlist(list *attractmode.Romlist, initial int) error {
	switch s.opts.Mode {
	case RomlistSkip:
		return nil
	case RomlistUpdate:
		if list.Len() == initial {
			log.Info().Msg("no new rom, romlist left unchanged")
			return nil
		}
	case RomlistOverwrite:
	}
	return attractmode.WriteRomlist(s.fs, s.opts.RomlistPath, list.Sorted())
}

// ScrapeRom looks up one ROM and downloads its media. The returned entry
// is usable even when err is set.
func (s *ScraperService) ScrapeRom(ctx context.Context, romPath string) (attractmode.Entry, error) {
	name := romscan.Name(romPath)
	entry := attractmode.MinimalEntry(name, s.opts.Emulator)

	keys, err := s.opts.Hasher.IdentityKeys(romPath)
	if err != nil {
		log.Error().Err(err).Str("rom", romPath).Msg("failed to identify rom")
		return entry, fmt.Errorf("failed to identify %s: %w", name, err)
	}

	info, err := s.opts.Scraper.Lookup(ctx, keys, s.opts.System)
	switch {
	case errors.Is(err, scraperpkg.ErrAmbiguousMatch):
		log.Warn().Str("rom", name).Msg("several games match, rom left unscraped")
		return entry, fmt.Errorf("failed to scrape %s: %w", name, err)
	case errors.Is(err, scraperpkg.ErrNotFound):
		log.Warn().Str("rom", name).Msg("game not found")
		return entry, fmt.Errorf("failed to scrape %s: %w", name, err)
	case err != nil:
		log.Error().Err(err).Str("rom", name).Msg("lookup failed")
		return entry, fmt.Errorf("failed to scrape %s: %w", name, err)
	}

	filtered, err := s.opts.RegionOrder.Project(info, s.opts.Language)
	if err != nil {
		return entry, fmt.Errorf("failed to filter %s: %w", name, err)
	}
	if len(filtered.Missing) > 0 {
		log.Debug().Str("rom", name).Strs("missing", filtered.Missing).Msg("game has no data for some fields")
	}
	s.progress.AddFound()

	s.downloadMedia(ctx, romPath, filtered)

	entry = attractmode.NewEntry(name, s.opts.Emulator, filtered)
	log.Info().Str("rom", name).Str("title", entry.Title).Msg("game scraped")
	return entry, nil
}

// downloadMedia fetches the wanted assets of a game. A failed asset is
// logged and doesn't stop the others.
func (s *ScraperService) downloadMedia(ctx context.Context, romPath string, info *scraperpkg.FilteredGameInfo) {
	var g errgroup.Group
	g.SetLimit(s.opts.ParallelDownloads)

	for _, asset := range s.opts.Assets {
		media, ok := info.Media(asset)
		if !ok {
			log.Debug().Str("asset", asset.String()).Str("rom", romPath).Msg("no media for asset")
			continue
		}
		if !s.opts.Storage.HasDir(asset) {
			log.Warn().Str("asset", asset.String()).Msg("no artwork directory for asset, skipping")
			continue
		}

		g.Go(func() error {
			if err := s.downloadAsset(ctx, romPath, media); err != nil {
				log.Error().Err(err).Str("asset", asset.String()).Str("rom", romPath).Msg("failed to download media")
				s.progress.SetError(err)
			}
			return nil
		})
	}

	_ = g.Wait()
}

func (s *ScraperService) downloadAsset(ctx context.Context, romPath string, media scraperpkg.Media) error {
	path, err := s.opts.Storage.GetMediaPath(romPath, media.Asset, media.Extension)
	if err != nil {
		return err
	}

	exists, err := s.opts.Storage.MediaExists(path)
	if err != nil {
		return err
	}
	if exists && !s.opts.Force {
		log.Info().Str("path", path).Msg("media already exists, skipping")
		s.progress.AddSkipped()
		return nil
	}

	if err := s.opts.Storage.EnsureMediaDirectory(path); err != nil {
		return err
	}

	log.Debug().Str("url", media.URL).Str("path", path).Msg("downloading media")
	if err := s.opts.Client.DownloadFile(ctx, httpclient.DownloadFileArgs{URL: media.URL, OutputPath: path}); err != nil {
		return fmt.Errorf("failed to download %s: %w", media.Asset, err)
	}

	if s.opts.VerifyHashes {
		if err := s.opts.Hasher.Verify(path, media.Hashes); err != nil {
			if removeErr := s.fs.Remove(path); removeErr != nil {
				log.Warn().Err(removeErr).Str("path", path).Msg("failed to remove corrupt media")
			}
			return fmt.Errorf("downloaded %s is corrupt: %w", media.Asset, err)
		}
	}

	s.progress.AddDownloaded()
	return nil
}
