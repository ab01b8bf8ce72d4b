// Copyright 2026 Chainguard, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/chainguard-dev/clog"
	"golang.org/x/time/rate"
)

// RLHTTPClient downloads packages while honoring a request rate limit.
type RLHTTPClient struct {
	Client      *http.Client
	Ratelimiter *rate.Limiter
}

// NewClient returns a rate limited client backed by http.DefaultClient.
func NewClient(rl *rate.Limiter) *RLHTTPClient {
	return &RLHTTPClient{
		Client:      http.DefaultClient,
		Ratelimiter: rl,
	}
}

// Do waits for the rate limiter and then sends the request.
func (c *RLHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if err := c.Ratelimiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return c.Client.Do(req)
}

// Download fetches uri into dir, keeping the last path element as the file
// name. It returns the local path and the sha256 of the downloaded bytes.
func (c *RLHTTPClient) Download(ctx context.Context, uri, dir string) (string, string, error) {
	log := clog.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", "", fmt.Errorf("creating request for %s: %w", uri, err)
	}
	name := path.Base(req.URL.Path)
	if name == "/" || name == "." {
		return "", "", fmt.Errorf("no file name in %s", uri)
	}

	resp, err := c.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("getting %s: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("%d when getting %s", resp.StatusCode, uri)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	dest := filepath.Join(dir, name)
	out, err := os.Create(dest)
	if err != nil {
		return "", "", err
	}
	defer out.Close()

	h256 := sha256.New()
	n, err := io.Copy(io.MultiWriter(out, h256), resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("reading body of %s: %w", uri, err)
	}
	if err := out.Close(); err != nil {
		return "", "", err
	}

	sum := fmt.Sprintf("%x", h256.Sum(nil))
	log.Debugf("downloaded %s (%d bytes, sha256 %s)", uri, n, sum)
	return dest, sum, nil
}
