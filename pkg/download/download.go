// Package download fetches remote audio assets, such as background music
// beds referenced by URL in the pipeline configuration, into local storage.
package download

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Options configures the fetch behavior
type Options struct {
	CacheDir      string        // Directory fetched assets are stored in
	MaxSize       int64         // Maximum file size in bytes (0 = no limit)
	Timeout       time.Duration // Fetch timeout
	UserAgent     string        // User agent string
	ValidateAudio bool          // Require an audio content-type
}

// DefaultOptions returns default fetch options
func DefaultOptions(cacheDir string) Options {
	return Options{
		CacheDir:      cacheDir,
		MaxSize:       100 * 1024 * 1024, // 100MB: beds are short loops, not episodes
		Timeout:       2 * time.Minute,
		UserAgent:     "GraceCastAPI/1.0",
		ValidateAudio: true,
	}
}

// Fetcher downloads audio assets and caches them on disk by URL.
type Fetcher struct {
	client  *http.Client
	options Options
}

// NewFetcher creates a fetcher with the given options
func NewFetcher(options Options) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: options.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				DisableCompression:  true, // audio is already compressed
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		options: options,
	}
}

// IsRemote reports whether path is an http(s) URL rather than a local file.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// Fetch downloads url into the cache directory and returns the local path.
// A previously fetched copy of the same URL is reused.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	dest := f.cachePath(url)
	if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
		log.Printf("[DEBUG] Using cached asset for %s: %s", url, dest)
		return dest, nil
	}

	if err := os.MkdirAll(f.options.CacheDir, 0755); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.options.UserAgent)
	req.Header.Set("Accept", "audio/*,*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server returned status %d for %s", resp.StatusCode, url)
	}

	contentType := resp.Header.Get("Content-Type")
	if f.options.ValidateAudio && !isAudioContentType(contentType) {
		return "", fmt.Errorf("invalid content type for audio asset: %s", contentType)
	}
	if f.options.MaxSize > 0 && resp.ContentLength > f.options.MaxSize {
		return "", fmt.Errorf("asset too large: %d bytes (max %d)", resp.ContentLength, f.options.MaxSize)
	}

	written, err := f.writeFile(resp.Body, dest)
	if err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("saving %s: %w", url, err)
	}

	log.Printf("[DEBUG] Fetched %d bytes from %s to %s", written, url, dest)
	return dest, nil
}

// cachePath derives a stable local filename from the URL so repeated
// startups reuse the same file.
func (f *Fetcher) cachePath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(f.options.CacheDir, fmt.Sprintf("asset_%x%s", sum[:8], extensionFor(url)))
}

func (f *Fetcher) writeFile(src io.Reader, dest string) (int64, error) {
	out, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	reader := src
	if f.options.MaxSize > 0 {
		reader = &io.LimitedReader{R: src, N: f.options.MaxSize}
	}
	return io.Copy(out, reader)
}

// extensionFor picks a file extension from the URL, defaulting to .mp3.
func extensionFor(url string) string {
	trimmed := url
	if idx := strings.IndexAny(trimmed, "?#"); idx > 0 {
		trimmed = trimmed[:idx]
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(trimmed), "."))
	if isValidAudioExtension(ext) {
		return "." + ext
	}
	return ".mp3"
}

// isAudioContentType checks if content type is audio
func isAudioContentType(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.HasPrefix(contentType, "audio/") ||
		contentType == "application/octet-stream" // Some servers use this for audio
}

// isValidAudioExtension checks if extension is valid for audio files
func isValidAudioExtension(ext string) bool {
	validExts := []string{"mp3", "m4a", "aac", "ogg", "wav", "flac", "opus"}
	for _, valid := range validExts {
		if ext == valid {
			return true
		}
	}
	return false
}
