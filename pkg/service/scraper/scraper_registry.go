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
	"errors"
	"fmt"
	"slices"

	"github.com/ZaparooProject/altscraper/pkg/config"
	"github.com/ZaparooProject/altscraper/pkg/helpers/syncutil"
	scraperpkg "github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/ZaparooProject/altscraper/pkg/scraper/hfsdb"
	"github.com/ZaparooProject/altscraper/pkg/scraper/screenscraper"
	"github.com/ZaparooProject/altscraper/pkg/scraper/systems"
	"github.com/ZaparooProject/altscraper/pkg/scraper/thegamesdb"
	"github.com/ZaparooProject/altscraper/pkg/shared/httpclient"
	"github.com/rs/zerolog/log"
)

// ErrUnknownScraper is returned for a scraper name nothing was registered
// under.
var ErrUnknownScraper = errors.New("unknown scraper")

type ScraperRegistry struct {
	scrapers map[string]scraperpkg.Scraper
	mu       syncutil.RWMutex
}

func NewScraperRegistry() *ScraperRegistry {
	return &ScraperRegistry{
		scrapers: make(map[string]scraperpkg.Scraper),
	}
}

// RegistryConfig holds what the built-in scrapers are created with.
type RegistryConfig struct {
	Client  *httpclient.Client
	Systems *systems.Table
	// Username and Password, when set, replace the configured user
	// account of the services that have one.
	Username    string
	Password    string
	RegionOrder scraperpkg.RegionOrder
}

// NewDefaultRegistry registers every built-in scraper. Credentials come
// from auth.toml and the environment.
//
//nolint:gocritic // built once at start-up
func NewDefaultRegistry(cfg RegistryConfig) *ScraperRegistry {
	sr := NewScraperRegistry()
	order := cfg.RegionOrder
	if len(order) == 0 {
		order = scraperpkg.Regions
	}

	ssCreds := withUser(config.Credentials(screenscraper.ServiceURL, screenscraper.CredentialEnv), cfg)
	sr.Register(config.ScraperScreenScraper, screenscraper.NewScreenScraper(cfg.Client, ssCreds,
		screenscraper.WithRegionOrder(order)))

	hfsCreds := withUser(config.Credentials(hfsdb.ServiceURL, hfsdb.CredentialEnv), cfg)
	sr.Register(config.ScraperHFSDB, hfsdb.NewHFSDB(cfg.Client, hfsCreds, hfsdb.WithRegionOrder(order)))

	tgdbCreds := config.Credentials(thegamesdb.ServiceURL, thegamesdb.CredentialEnv)
	sr.Register(config.ScraperTheGamesDB, thegamesdb.NewTheGamesDB(cfg.Client, tgdbCreds, cfg.Systems,
		thegamesdb.WithRegionOrder(order)))

	log.Info().Int("count", sr.Count()).Msg("registered scrapers")
	return sr
}

//nolint:gocritic // see NewDefaultRegistry
func withUser(creds config.CredentialEntry, cfg RegistryConfig) config.CredentialEntry {
	if cfg.Username != "" {
		creds.Username = cfg.Username
	}
	if cfg.Password != "" {
		creds.Password = cfg.Password
	}
	return creds
}

func (sr *ScraperRegistry) Register(name string, scraper scraperpkg.Scraper) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.scrapers[name] = scraper
	log.Debug().Str("name", name).Msg("registered scraper")
}

func (sr *ScraperRegistry) Get(name string) (scraperpkg.Scraper, error) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	scraper, exists := sr.scrapers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScraper, name)
	}
	return scraper, nil
}

// GetNames returns the registered names in alphabetical order.
func (sr *ScraperRegistry) GetNames() []string {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	names := make([]string, 0, len(sr.scrapers))
	for name := range sr.scrapers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (sr *ScraperRegistry) HasScraper(name string) bool {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	_, exists := sr.scrapers[name]
	return exists
}

func (sr *ScraperRegistry) Count() int {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	return len(sr.scrapers)
}
