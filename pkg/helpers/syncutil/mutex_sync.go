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

//go:build !deadlock

// Package syncutil holds the locks guarding altscraper's shared state: the
// HFSDB login token, the TheGamesDB name tables, the scraper registry, the
// progress tracker, the config instance and the romscan collector. With
// -tags=deadlock they are go-deadlock locks, which report lock cycles and
// locks held past a service login.
package syncutil

import "sync"

// DeadlockEnabled is logged at start-up so debug logs tell which locks ran.
const DeadlockEnabled = false

// Mutex guards state written from download goroutines and adapters.
//
//nolint:gocritic // embedded on purpose
type Mutex struct {
	sync.Mutex //nolint:forbidigo // the one place sync.Mutex is allowed
}

// RWMutex guards lookup tables that are mostly read, like the registry.
//
//nolint:gocritic // embedded on purpose
type RWMutex struct {
	sync.RWMutex //nolint:forbidigo // the one place sync.RWMutex is allowed
}
