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
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_OK(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "Token abc", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := NewClient()
	body, err := c.Get(context.Background(), server.URL, http.Header{"Authorization": {"Token abc"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestGet_StatusErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		wantErr    error
		status     int
		wantStatus int
	}{
		{name: "not found", status: http.StatusNotFound, wantErr: scraper.ErrNotFound},
		{name: "server error", status: http.StatusInternalServerError, wantStatus: 500},
		{name: "quota exceeded", status: 430, wantStatus: 430},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := NewClient().Get(context.Background(), server.URL, nil)
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			var terr *scraper.TransportError
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, tt.wantStatus, terr.StatusCode)
		})
	}
}

func TestGet_ConnectionError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	serverURL := server.URL
	server.Close()

	_, err := NewClient().Get(context.Background(), serverURL, nil)
	var terr *scraper.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Zero(t, terr.StatusCode)
}

func TestDoRetry_PausesThenRetriesOnce(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "5")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("data"))
	}))
	defer server.Close()

	clock := clockwork.NewFakeClock()
	c := NewClient(WithClock(clock))

	type result struct {
		err  error
		body []byte
	}
	done := make(chan result, 1)
	go func() {
		body, err := c.Get(context.Background(), server.URL, nil)
		done <- result{body: body, err: err}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	select {
	case <-done:
		t.Fatal("request retried before the pause elapsed")
	default:
	}
	clock.Advance(5 * time.Second)

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, "data", string(res.body))
	assert.Equal(t, int32(2), calls.Load())
}

func TestDoRetry_SecondRefusalIsRateLimited(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("X-Ratelimit-Retryafter", "250ms")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	clock := clockwork.NewFakeClock()
	c := NewClient(WithClock(clock))

	done := make(chan error, 1)
	go func() {
		_, err := c.Get(context.Background(), server.URL, nil)
		done <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Second)

	err := <-done
	require.ErrorIs(t, err, scraper.ErrRateLimited)
	assert.Equal(t, int32(2), calls.Load(), "exactly one retry")
}

func TestDoRetry_QuotaRefusalIsRateLimited(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "2")
		w.WriteHeader(430)
	}))
	defer server.Close()

	clock := clockwork.NewFakeClock()
	c := NewClient(WithClock(clock))

	done := make(chan error, 1)
	go func() {
		_, err := c.Get(context.Background(), server.URL, nil)
		done <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(2 * time.Second)

	err := <-done
	require.ErrorIs(t, err, scraper.ErrRateLimited)
	var terr *scraper.TransportError
	assert.NotErrorAs(t, err, &terr)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDoRetry_ContextCancelledDuringPause(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	clock := clockwork.NewFakeClock()
	c := NewClient(WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, server.URL, nil)
		done <- err
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	cancel()

	require.ErrorIs(t, <-done, context.Canceled)
}

func TestRetryPause(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		header   http.Header
		name     string
		status   int
		expected time.Duration
	}{
		{name: "no header", status: 200, expected: 0},
		{name: "retry after seconds", header: http.Header{"Retry-After": {"3"}}, status: 200, expected: 3 * time.Second},
		{name: "retry after fraction", header: http.Header{"Retry-After": {"1.5"}}, status: 200, expected: 1500 * time.Millisecond},
		{
			name:     "retry after date",
			header:   http.Header{"Retry-After": {now.Add(10 * time.Second).Format(http.TimeFormat)}},
			status:   200,
			expected: 10 * time.Second,
		},
		{name: "milliseconds round to a second", header: http.Header{"X-Ratelimit-Retryafter": {"20ms"}}, status: 200, expected: time.Second},
		{name: "seconds are rounded up", header: http.Header{"X-Ratelimit-Retryafter": {"2.2s"}}, status: 200, expected: 3 * time.Second},
		{name: "bare 429", status: http.StatusTooManyRequests, expected: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp := &http.Response{StatusCode: tt.status, Header: tt.header}
			if resp.Header == nil {
				resp.Header = http.Header{}
			}
			assert.Equal(t, tt.expected, retryPause(resp, now))
		})
	}
}

func TestPostForm(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "user", r.PostForm.Get("username"))
		_, _ = w.Write([]byte(`{"token":"t"}`))
	}))
	defer server.Close()

	body, err := NewClient().PostForm(context.Background(), server.URL, url.Values{"username": {"user"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"t"}`, string(body))
}

func TestDownloadFile(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("png data"))
	}))
	defer server.Close()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/media/snap", 0o750))
	c := NewClient(WithFs(fs))

	err := c.DownloadFile(context.Background(), DownloadFileArgs{
		URL:        server.URL + "/snap.png",
		OutputPath: "/media/snap/game.png",
	})
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "/media/snap/game.png")
	require.NoError(t, err)
	assert.Equal(t, "png data", string(data))

	exists, err := afero.Exists(fs, "/media/snap/.game.png.part")
	require.NoError(t, err)
	assert.False(t, exists, "temp file is renamed")

	err = c.DownloadFile(context.Background(), DownloadFileArgs{
		URL:        server.URL + "/missing.png",
		OutputPath: "/media/snap/missing.png",
	})
	var terr *scraper.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusNotFound, terr.StatusCode)

	exists, err = afero.Exists(fs, "/media/snap/missing.png")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWithRateLimit(t *testing.T) {
	t.Parallel()

	c := NewClient(WithRateLimit(2), WithTimeout(time.Second))
	assert.InDelta(t, 2.0, float64(c.limiter.Limit()), 0.001)
	assert.Equal(t, time.Second, c.Timeout)

	c = NewClient(WithRateLimit(0))
	assert.True(t, c.limiter.Allow())
	assert.True(t, c.limiter.Allow())
}

func TestRedactURL(t *testing.T) {
	t.Parallel()

	u, err := url.Parse("https://api.example.com/jeuInfos.php?crc=ABCD&ssid=me&sspassword=hunter2&devpassword=x&apikey=k")
	require.NoError(t, err)

	redacted := redactURL(u)
	assert.Contains(t, redacted, "crc=ABCD")
	assert.Contains(t, redacted, "ssid=me")
	assert.NotContains(t, redacted, "hunter2")
	assert.NotContains(t, redacted, "apikey=k")
	assert.NotContains(t, redacted, "devpassword=x&")
}
