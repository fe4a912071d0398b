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

package config

import (
	"maps"
	"net/url"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

// CredentialEntry holds the credentials for a scraping service URL.
type CredentialEntry struct {
	Username    string `toml:"username"`
	Password    string `toml:"password"`
	DevID       string `toml:"dev_id,omitempty"`
	DevPassword string `toml:"dev_password,omitempty"`
	APIKey      string `toml:"api_key,omitempty"`
}

// Auth is the parsed content of auth.toml.
type Auth struct {
	Creds map[string]CredentialEntry `toml:"creds,omitempty"`
}

// authRootFormat represents the ["url"] at root level format
type authRootFormat map[string]CredentialEntry

type authCredsFormat struct {
	Creds map[string]CredentialEntry `toml:"creds"`
}

// isValidAuthKey filters out TOML structural keys that get captured when
// parsing the root format in mixed-format files.
func isValidAuthKey(key string) bool {
	return key != "creds"
}

// LoadAuthFromData parses auth.toml data. Both formats are merged:
//   - Root level: ["https://www.screenscraper.fr"]
//   - Creds wrapper: [creds."https://www.screenscraper.fr"]
func LoadAuthFromData(data []byte) map[string]CredentialEntry {
	result := make(map[string]CredentialEntry)

	var root authRootFormat
	if err := toml.Unmarshal(data, &root); err == nil {
		for k, v := range root {
			if isValidAuthKey(k) {
				result[k] = v
			}
		}
	}

	var creds authCredsFormat
	if err := toml.Unmarshal(data, &creds); err == nil {
		maps.Copy(result, creds.Creds)
	}

	return result
}

func isSchemelessKey(key string) bool {
	return !strings.Contains(key, "://")
}

// LookupAuth finds credentials for a URL.
//
// Entries with a scheme must match the scheme and host exactly, and the
// request path must start with the entry path. Schemeless entries such as
// "api.thegamesdb.net" match on host:port alone. Entries with a scheme are
// tried first.
func LookupAuth(auth Auth, reqURL string) *CredentialEntry {
	if len(auth.Creds) == 0 {
		return nil
	}

	u, err := url.Parse(reqURL)
	if err != nil {
		log.Warn().Msgf("invalid auth request url: %s", reqURL)
		return nil
	}

	for k, v := range auth.Creds {
		if isSchemelessKey(k) {
			continue
		}
		defURL, err := url.Parse(k)
		if err != nil {
			log.Error().Msgf("invalid auth config url: %s", k)
			continue
		}
		if strings.EqualFold(defURL.Scheme, u.Scheme) &&
			strings.EqualFold(defURL.Host, u.Host) &&
			strings.HasPrefix(u.Path, defURL.Path) {
			return &v
		}
	}

	for k, v := range auth.Creds {
		if isSchemelessKey(k) && strings.EqualFold(k, u.Host) {
			return &v
		}
	}

	return nil
}
