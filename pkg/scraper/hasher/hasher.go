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

package hasher

import (
	"archive/zip"
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/bodgit/sevenzip"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// FileHash contains all hash information for a ROM. For an archive holding
// a single file the hashes are the ones of that file. An archive with
// several files has no hashes at all, only its name can identify it.
type FileHash struct {
	CRC32    string
	MD5      string
	SHA1     string
	FileSize int64
	Payloads int
}

// Hasher computes the identity of ROM files.
type Hasher struct {
	fs afero.Fs
}

// New returns a hasher reading files from fs.
func New(fs afero.Fs) *Hasher {
	return &Hasher{fs: fs}
}

// ComputeFileHashes calculates all hashes for a ROM file. Zip and 7z
// archives are opened and, when they contain a single file, that file is
// hashed instead of the archive.
func (h *Hasher) ComputeFileHashes(filePath string) (*FileHash, error) {
	f, err := h.fs.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("path", filePath).Msg("failed to close rom file")
		}
	}()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file stats: %w", err)
	}

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".zip":
		return hashZip(f, stat.Size())
	case ".7z":
		return hash7z(f, stat.Size())
	default:
		return hashReader(f, stat.Size())
	}
}

// IdentityKeys returns the lookup keys of a ROM file.
func (h *Hasher) IdentityKeys(filePath string) (scraper.IdentityKeys, error) {
	hash, err := h.ComputeFileHashes(filePath)
	if err != nil {
		return scraper.IdentityKeys{}, err
	}

	base := filepath.Base(filePath)
	return scraper.IdentityKeys{
		CRC32:    hash.CRC32,
		MD5:      hash.MD5,
		SHA1:     hash.SHA1,
		Size:     hash.FileSize,
		FileName: base,
		Name:     strings.TrimSuffix(base, filepath.Ext(base)),
	}, nil
}

func hashZip(f afero.File, size int64) (*FileHash, error) {
	r, err := zip.NewReader(f, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}

	var payloads []*zip.File
	for _, zf := range r.File {
		if !zf.FileInfo().IsDir() {
			payloads = append(payloads, zf)
		}
	}
	if len(payloads) != 1 {
		return hashArchive(size, len(payloads)), nil
	}

	payload := payloads[0]
	rc, err := payload.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file in zip: %w", err)
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close zip entry")
		}
	}()

	hash, err := hashReader(rc, int64(payload.UncompressedSize64)) //nolint:gosec // sizes fit
	if err != nil {
		return nil, err
	}
	hash.CRC32 = fmt.Sprintf("%08x", payload.CRC32)
	hash.Payloads = 1
	return hash, nil
}

func hash7z(f afero.File, size int64) (*FileHash, error) {
	r, err := sevenzip.NewReader(f, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open 7z: %w", err)
	}

	var payloads []*sevenzip.File
	for _, sf := range r.File {
		if !sf.FileInfo().IsDir() {
			payloads = append(payloads, sf)
		}
	}
	if len(payloads) != 1 {
		return hashArchive(size, len(payloads)), nil
	}

	payload := payloads[0]
	rc, err := payload.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file in 7z: %w", err)
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close 7z entry")
		}
	}()

	hash, err := hashReader(rc, int64(payload.UncompressedSize)) //nolint:gosec // sizes fit
	if err != nil {
		return nil, err
	}
	hash.CRC32 = fmt.Sprintf("%08x", payload.CRC32)
	hash.Payloads = 1
	return hash, nil
}

// hashArchive describes an archive that doesn't hold exactly one file.
// Services index archive contents, so the hashes of the archive itself
// would only produce wrong lookups.
func hashArchive(size int64, payloads int) *FileHash {
	log.Debug().Int("payloads", payloads).Msg("archive can't be identified by hash")
	return &FileHash{FileSize: size, Payloads: payloads}
}

// hashReader computes all hashes from an io.Reader
func hashReader(r io.Reader, size int64) (*FileHash, error) {
	crc32Hash := crc32.NewIEEE()
	md5Hash := md5.New()   //nolint:gosec // used for identification
	sha1Hash := sha1.New() //nolint:gosec // used for identification

	w := io.MultiWriter(crc32Hash, md5Hash, sha1Hash)

	if _, err := io.Copy(w, r); err != nil {
		return nil, fmt.Errorf("failed to read file for hashing: %w", err)
	}

	return &FileHash{
		CRC32:    fmt.Sprintf("%08x", crc32Hash.Sum32()),
		MD5:      hex.EncodeToString(md5Hash.Sum(nil)),
		SHA1:     hex.EncodeToString(sha1Hash.Sum(nil)),
		FileSize: size,
	}, nil
}

// ErrHashMismatch is returned by Verify when a file doesn't match the
// hashes announced by a service.
var ErrHashMismatch = errors.New("hash mismatch")

// Verify checks a downloaded file against the hashes a service reported
// for it. Hashes the service didn't report are not checked.
func (h *Hasher) Verify(filePath string, expected scraper.Hashes) error {
	if expected.CRC32 == "" && expected.MD5 == "" && expected.SHA1 == "" {
		return nil
	}

	f, err := h.fs.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("path", filePath).Msg("failed to close media file")
		}
	}()

	computed, err := hashReader(f, 0)
	if err != nil {
		return err
	}

	if expected.CRC32 != "" && !strings.EqualFold(computed.CRC32, expected.CRC32) {
		return fmt.Errorf("%w: crc32 %s, expected %s", ErrHashMismatch, computed.CRC32, expected.CRC32)
	}
	if expected.MD5 != "" && !strings.EqualFold(computed.MD5, expected.MD5) {
		return fmt.Errorf("%w: md5 %s, expected %s", ErrHashMismatch, computed.MD5, expected.MD5)
	}
	if expected.SHA1 != "" && !strings.EqualFold(computed.SHA1, expected.SHA1) {
		return fmt.Errorf("%w: sha1 %s, expected %s", ErrHashMismatch, computed.SHA1, expected.SHA1)
	}
	return nil
}
