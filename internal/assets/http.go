// ABOUTME: HTTP-backed station provider
// ABOUTME: Downloads raw station files from a dev server with an on-disk cache
package assets

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HTTPProvider fetches station files from a server's raw endpoint
type HTTPProvider struct {
	baseURL  string
	cacheDir string
	client   *http.Client
	logger   *zap.SugaredLogger
}

// NewHTTPProvider creates a provider for the server at baseURL. Downloads
// are cached under cacheDir; an empty cacheDir disables caching.
func NewHTTPProvider(baseURL, cacheDir string, logger *zap.SugaredLogger) (*HTTPProvider, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &HTTPProvider{
		baseURL:  strings.TrimRight(baseURL, "/"),
		cacheDir: cacheDir,
		client:   &http.Client{Timeout: 5 * time.Minute},
		logger:   logger,
	}, nil
}

// URL returns the raw endpoint for stem
func (p *HTTPProvider) URL(stem string) string {
	return p.baseURL + "/api/stations/" + url.PathEscape(stem) + "/raw"
}

// cachePath keys the cache by URL hash
func (p *HTTPProvider) cachePath(u string) string {
	hash := sha256.Sum256([]byte(u))
	return filepath.Join(p.cacheDir, fmt.Sprintf("%x.bin", hash[:8]))
}

// Fetch downloads the file for stem, serving from cache when present
func (p *HTTPProvider) Fetch(ctx context.Context, stem string) ([]byte, error) {
	u := p.URL(stem)

	var cachePath string
	if p.cacheDir != "" {
		cachePath = p.cachePath(u)
		if data, err := os.ReadFile(cachePath); err == nil {
			p.logger.Debugw("station cache hit", "stem", stem, "path", cachePath)
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	p.logger.Infow("downloading station", "stem", stem, "url", u)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", stem, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("download %s failed: HTTP %d", stem, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", stem, err)
	}

	if cachePath != "" {
		if err := os.WriteFile(cachePath, data, 0644); err != nil {
			p.logger.Warnw("failed to cache station", "stem", stem, "error", err)
			os.Remove(cachePath)
		}
	}
	return data, nil
}

// ClearCache removes every cached download
func (p *HTTPProvider) ClearCache() error {
	if p.cacheDir == "" {
		return nil
	}
	return os.RemoveAll(p.cacheDir)
}
