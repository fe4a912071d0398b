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
)

var (
	// ErrNotFound means the service has no record for the lookup key.
	ErrNotFound = errors.New("game not found")
	// ErrAmbiguousMatch means a lookup returned more than one game. It is
	// treated like ErrNotFound for output but logged separately.
	ErrAmbiguousMatch = errors.New("lookup matched more than one game")
	// ErrRateLimited means the service asked us to slow down and the single
	// retry was also refused.
	ErrRateLimited = errors.New("rate limited by scraper service")
	// ErrNoDataForLocale means a localized field has no entry at all.
	ErrNoDataForLocale = errors.New("no data for any locale")
	// ErrUnsupportedLocale means the requested locale is not a known region tag.
	ErrUnsupportedLocale = errors.New("unsupported locale")
	// ErrUnsupportedSystem means the scraper has no platform id for a system.
	ErrUnsupportedSystem = errors.New("unsupported system")
)

// TransportError reports a network or HTTP level failure talking to a
// scraper service. StatusCode is zero when no response was received.
type TransportError struct {
	Err        error
	URL        string
	StatusCode int
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error: HTTP %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("transport error: %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNoMatch reports whether err means the service had no usable record,
// either because nothing matched or because too much did.
func IsNoMatch(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrAmbiguousMatch)
}
