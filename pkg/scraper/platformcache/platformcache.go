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

package platformcache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZaparooProject/altscraper/pkg/helpers"
	"github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"
)

const (
	// FileName is the name of the cache database in the user cache dir.
	FileName = "platforms.db"

	bucketPlatforms = "platforms"
	openTimeout     = 2 * time.Second
)

// Entry is the platform list of one scraper and when it was fetched.
type Entry struct {
	Updated   time.Time          `json:"updated"`
	Platforms []scraper.Platform `json:"platforms"`
}

// Cache persists the platform list of each scraper between runs.
type Cache struct {
	db    *bolt.DB
	clock clockwork.Clock
}

// DefaultPath returns the cache database path in the user cache dir.
func DefaultPath() (string, error) {
	return helpers.CacheFile(FileName)
}

// Open opens or creates the cache database at path.
func Open(path string, clock clockwork.Clock) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketPlatforms))
		return err
	})
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing platform cache")
		}
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{db: db, clock: clock}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("failed to close bolt database: %w", err)
	}
	return nil
}

// Get returns the cached platforms of a scraper. ok is false when nothing
// was cached yet.
func (c *Cache) Get(scraperName string) (entry Entry, ok bool, err error) {
	err = c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketPlatforms)).Get([]byte(scraperName))
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &entry); err != nil {
			return fmt.Errorf("failed to unmarshal platforms of %s: %w", scraperName, err)
		}
		ok = true
		return nil
	})
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to view bolt database: %w", err)
	}
	return entry, ok, nil
}

// Put replaces the cached platforms of a scraper.
func (c *Cache) Put(scraperName string, platforms []scraper.Platform) error {
	data, err := json.Marshal(Entry{Updated: c.clock.Now().UTC(), Platforms: platforms})
	if err != nil {
		return fmt.Errorf("failed to marshal platforms: %w", err)
	}

	err = c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketPlatforms)).Put([]byte(scraperName), data)
	})
	if err != nil {
		return fmt.Errorf("failed to update bolt database: %w", err)
	}
	return nil
}

// Platforms returns the platforms of s from the cache, asking the service
// when nothing is cached or refresh is set.
func (c *Cache) Platforms(ctx context.Context, s scraper.Scraper, refresh bool) ([]scraper.Platform, error) {
	name := s.GetInfo().Name

	if !refresh {
		entry, ok, err := c.Get(name)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("scraper", name).Msg("ignoring unreadable platform cache")
		case ok:
			log.Debug().Str("scraper", name).Time("updated", entry.Updated).Msg("using cached platforms")
			return entry.Platforms, nil
		default:
			log.Info().Str("scraper", name).Msg("no platforms cache available")
		}
	}

	platforms, err := s.Platforms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s platforms: %w", name, err)
	}
	if err := c.Put(name, platforms); err != nil {
		return nil, err
	}
	log.Info().Str("scraper", name).Int("count", len(platforms)).Msg("platforms cache refreshed")
	return platforms, nil
}
