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

import "os"

// CredentialEnv names the environment variables holding a service's
// credentials. Empty names are not looked up.
type CredentialEnv struct {
	Username    string
	Password    string
	DevID       string
	DevPassword string
	APIKey      string
}

// Credentials returns the credentials for a service: auth.toml entries
// matching serviceURL, each field overridden by its environment variable
// when set.
func Credentials(serviceURL string, env CredentialEnv) CredentialEntry {
	var creds CredentialEntry
	if found := LookupAuth(GetAuthCfg(), serviceURL); found != nil {
		creds = *found
	}

	override := func(dest *string, name string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dest = v
		}
	}
	override(&creds.Username, env.Username)
	override(&creds.Password, env.Password)
	override(&creds.DevID, env.DevID)
	override(&creds.DevPassword, env.DevPassword)
	override(&creds.APIKey, env.APIKey)

	return creds
}
