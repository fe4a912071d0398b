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
	"github.com/ZaparooProject/altscraper/pkg/helpers/syncutil"
	scraperpkg "github.com/ZaparooProject/altscraper/pkg/scraper"
)

const (
	StatusIdle      = "idle"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// ProgressTracker keeps the progress of a scraping run. Every update is
// passed to the optional notify callback.
type ProgressTracker struct {
	progress   *scraperpkg.ScraperProgress
	notify     func(scraperpkg.ScraperProgress)
	progressMu syncutil.RWMutex
}

func NewProgressTracker(notify func(scraperpkg.ScraperProgress)) *ProgressTracker {
	return &ProgressTracker{
		progress: &scraperpkg.ScraperProgress{Status: StatusIdle},
		notify:   notify,
	}
}

func (pt *ProgressTracker) Update(updateFunc func(*scraperpkg.ScraperProgress)) {
	pt.progressMu.Lock()
	updateFunc(pt.progress)
	progressCopy := *pt.progress
	pt.progressMu.Unlock()

	if pt.notify != nil {
		pt.notify(progressCopy)
	}
}

func (pt *ProgressTracker) Get() scraperpkg.ScraperProgress {
	pt.progressMu.RLock()
	defer pt.progressMu.RUnlock()
	return *pt.progress
}

// Start resets the counters for a run over total games.
func (pt *ProgressTracker) Start(total int) {
	pt.Update(func(p *scraperpkg.ScraperProgress) {
		*p = scraperpkg.ScraperProgress{Status: StatusRunning, TotalGames: total}
	})
}

func (pt *ProgressTracker) SetCurrentGame(gameName string) {
	pt.Update(func(p *scraperpkg.ScraperProgress) {
		p.CurrentGame = gameName
	})
}

func (pt *ProgressTracker) IncrementProgress() {
	pt.Update(func(p *scraperpkg.ScraperProgress) {
		p.ProcessedGames++
	})
}

func (pt *ProgressTracker) AddFound() {
	pt.Update(func(p *scraperpkg.ScraperProgress) {
		p.FoundGames++
	})
}

func (pt *ProgressTracker) AddDownloaded() {
	pt.Update(func(p *scraperpkg.ScraperProgress) {
		p.DownloadedFiles++
	})
}

func (pt *ProgressTracker) AddSkipped() {
	pt.Update(func(p *scraperpkg.ScraperProgress) {
		p.SkippedFiles++
	})
}

func (pt *ProgressTracker) SetError(err error) {
	pt.Update(func(p *scraperpkg.ScraperProgress) {
		if err != nil {
			p.LastError = err.Error()
			p.ErrorCount++
		} else {
			p.LastError = ""
		}
	})
}

func (pt *ProgressTracker) Complete() {
	pt.Update(func(p *scraperpkg.ScraperProgress) {
		p.Status = StatusCompleted
		p.CurrentGame = ""
	})
}

func (pt *ProgressTracker) Cancel() {
	pt.Update(func(p *scraperpkg.ScraperProgress) {
		p.Status = StatusCancelled
		p.CurrentGame = ""
	})
}

// Fail marks the run as failed for an error that stopped it.
func (pt *ProgressTracker) Fail(err error) {
	pt.Update(func(p *scraperpkg.ScraperProgress) {
		p.Status = StatusFailed
		p.CurrentGame = ""
		if err != nil {
			p.LastError = err.Error()
		}
	})
}
