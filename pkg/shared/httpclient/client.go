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

package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeoutSeconds is the default timeout for HTTP requests
	DefaultTimeoutSeconds = 30
	// UserAgent is sent with every request.
	UserAgent = "altscraper/1.0"

	maxBodySize = 64 << 20
)

// DefaultTransport provides a configured transport with connection pooling and reasonable timeouts
var DefaultTransport = &http.Transport{
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ResponseHeaderTimeout: 30 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
}

// Client is an HTTP client shared by the scrapers. It paces requests to a
// service and honors the pause a service asks for before retrying once.
type Client struct {
	*http.Client
	limiter *rate.Limiter
	clock   clockwork.Clock
	fs      afero.Fs
}

// Option configures a Client.
type Option func(*Client)

// WithRateLimit paces requests to at most rps per second. Zero disables
// pacing.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithClock sets the clock used for rate limit pauses.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// WithFs sets the filesystem downloads are written to.
func WithFs(fs afero.Fs) Option {
	return func(c *Client) { c.fs = fs }
}

// WithTimeout sets the timeout of a single request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.Timeout = timeout }
}

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.Transport = rt }
}

// NewClient creates a new HTTP client with sensible defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		Client: &http.Client{
			Transport: DefaultTransport,
			Timeout:   DefaultTimeoutSeconds * time.Second,
		},
		limiter: rate.NewLimiter(rate.Inf, 1),
		clock:   clockwork.NewRealClock(),
		fs:      afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestFunc builds a request. It is called again for the retry since a
// request body can only be read once.
type RequestFunc func(ctx context.Context) (*http.Request, error)

// DoRetry sends a request built by newReq. When the response asks for a pause,
// with Retry-After, X-Ratelimit-Retryafter or a 429 status, the client
// sleeps and sends the request one more time. If the retry is refused as
// well the response body is closed and ErrRateLimited returned.
func (c *Client) DoRetry(ctx context.Context, newReq RequestFunc) (*http.Response, error) {
	resp, err := c.send(ctx, newReq)
	if err != nil {
		return nil, err
	}

	pause := retryPause(resp, c.clock.Now())
	if pause == 0 {
		return resp, nil
	}
	closeBody(resp)

	log.Warn().
		Str("url", redactURL(resp.Request.URL)).
		Dur("pause", pause).
		Msg("the server wants us to go easy on requests, pausing")

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("interrupted while rate limited: %w", ctx.Err())
	case <-c.clock.After(pause):
	}

	log.Info().Msg("retrying the query")
	resp, err = c.send(ctx, newReq)
	if err != nil {
		return nil, err
	}
	if retryPause(resp, c.clock.Now()) > 0 {
		closeBody(resp)
		return nil, fmt.Errorf("%w: %s (status %d)", scraper.ErrRateLimited, redactURL(resp.Request.URL), resp.StatusCode)
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, newReq RequestFunc) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := newReq(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, &scraper.TransportError{URL: redactURL(req.URL), Err: err}
	}
	return resp, nil
}

// retryPause returns how long a response asks us to wait, zero if it
// doesn't. X-Ratelimit-Retryafter values in milliseconds are rounded up to
// a full second.
func retryPause(resp *http.Response, now time.Time) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return secondsToDuration(secs)
		}
		if at, err := http.ParseTime(v); err == nil && at.After(now) {
			return at.Sub(now)
		}
	}

	if v := strings.TrimSpace(resp.Header.Get("X-Ratelimit-Retryafter")); v != "" {
		if strings.HasSuffix(v, "ms") {
			return time.Second
		}
		secs, err := strconv.ParseFloat(strings.TrimSuffix(v, "s"), 64)
		if err == nil {
			return secondsToDuration(math.Ceil(secs))
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return time.Second
	}
	return 0
}

// redactURL hides credentials passed in the query string as well as the
// user info.
func redactURL(u *url.URL) string {
	query := u.Query()
	if len(query) == 0 {
		return u.Redacted()
	}
	redacted := *u
	for k := range query {
		if strings.Contains(strings.ToLower(k), "password") || strings.EqualFold(k, "apikey") {
			query.Set(k, "xxxxx")
		}
	}
	redacted.RawQuery = query.Encode()
	return redacted.Redacted()
}

func secondsToDuration(secs float64) time.Duration {
	if secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
	if err := resp.Body.Close(); err != nil {
		log.Error().Err(err).Msg("error closing response body")
	}
}

// Get performs a paced GET request and returns the body of a 200 response.
// A 404 is returned as ErrNotFound, any other status as a TransportError.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	return c.fetch(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
		if err != nil {
			return nil, err
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		return req, nil
	})
}

// PostForm performs a paced POST of form values and returns the body of a
// 200 response.
func (c *Client) PostForm(ctx context.Context, rawURL string, values url.Values) ([]byte, error) {
	return c.fetch(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(values.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
}

func (c *Client) fetch(ctx context.Context, newReq RequestFunc) ([]byte, error) {
	resp, err := c.DoRetry(ctx, newReq)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	redacted := redactURL(resp.Request.URL)
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", scraper.ErrNotFound, redacted)
	case resp.StatusCode != http.StatusOK:
		return nil, &scraper.TransportError{
			URL:        redacted,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &scraper.TransportError{URL: redacted, Err: err}
	}
	return body, nil
}

// DownloadFileArgs contains arguments for file download operations
type DownloadFileArgs struct {
	URL        string
	OutputPath string
	TempPath   string
}

// DownloadFile downloads a file from the given URL to the output path. The
// data is written to TempPath, or to OutputPath with a .part suffix, and
// renamed once complete.
func (c *Client) DownloadFile(ctx context.Context, args DownloadFileArgs) error {
	resp, err := c.DoRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, args.URL, http.NoBody)
	})
	if err != nil {
		return err
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return &scraper.TransportError{
			URL:        redactURL(resp.Request.URL),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("invalid status code: %d", resp.StatusCode),
		}
	}

	tempPath := args.TempPath
	if tempPath == "" {
		tempPath = filepath.Join(filepath.Dir(args.OutputPath), "."+filepath.Base(args.OutputPath)+".part")
	}

	file, err := c.fs.Create(tempPath)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}

	removeTemp := func() {
		if removeErr := c.fs.Remove(tempPath); removeErr != nil {
			log.Warn().Err(removeErr).Msgf("error removing partial download: %s", tempPath)
		}
	}

	written, err := io.Copy(file, resp.Body)
	if err != nil {
		if closeErr := file.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msgf("error closing file: %s", tempPath)
		}
		removeTemp()
		return fmt.Errorf("error downloading file: %w", err)
	}

	expected := resp.ContentLength
	if expected > 0 && written != expected {
		if closeErr := file.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msgf("error closing file: %s", tempPath)
		}
		removeTemp()
		return fmt.Errorf("download incomplete: expected %d bytes, got %d", expected, written)
	}

	if err := file.Close(); err != nil {
		removeTemp()
		return fmt.Errorf("error closing file: %w", err)
	}

	if err := c.fs.Rename(tempPath, args.OutputPath); err != nil {
		removeTemp()
		return fmt.Errorf("error renaming temp file: %w", err)
	}

	log.Debug().Str("path", args.OutputPath).Int64("bytes", written).Msg("downloaded file")
	return nil
}
