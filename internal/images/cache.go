// Package images keeps local copies of catalog plant images.
package images

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ErrNoImage is returned for plants without an image URL.
var ErrNoImage = errors.New("plant has no image")

// maxImageSize caps a single download.
const maxImageSize = 20 << 20

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Cache handles local caching of plant images.
type Cache struct {
	cacheDir   string
	httpClient *http.Client
}

// NewCache creates a new image cache at the specified directory.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Cache{
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Get returns the path of the cached image for a plant, downloading it first
// if needed.
func (c *Cache) Get(ctx context.Context, plantID, imageURL string) (string, error) {
	if imageURL == "" {
		return "", ErrNoImage
	}

	cachePath := filepath.Join(c.cacheDir, c.filename(plantID, imageURL))

	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	if err := c.fetchAndCache(ctx, imageURL, cachePath); err != nil {
		return "", err
	}

	return cachePath, nil
}

// Invalidate removes every cached image of a plant.
func (c *Cache) Invalidate(plantID string) error {
	pattern := filepath.Join(c.cacheDir, fmt.Sprintf("plant_%s_*", sanitize(plantID)))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

// filename is unique per plant and URL, keeping the URL's extension.
func (c *Cache) filename(plantID, imageURL string) string {
	hash := sha256.Sum256([]byte(imageURL))
	return fmt.Sprintf("plant_%s_%x%s", sanitize(plantID), hash[:8], extension(imageURL))
}

func sanitize(plantID string) string {
	return unsafeChars.ReplaceAllString(plantID, "_")
}

func extension(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return ".jpg"
	}
	ext := strings.ToLower(path.Ext(u.Path))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	default:
		return ".jpg"
	}
}

// fetchAndCache downloads an image and saves it to the cache.
func (c *Cache) fetchAndCache(ctx context.Context, imageURL, cachePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Sunflower/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch image: status %d", resp.StatusCode)
	}

	// Temp file in the same directory so the rename is atomic.
	tmpFile, err := os.CreateTemp(c.cacheDir, "plant_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	n, err := io.Copy(tmpFile, io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return err
	}
	if n > maxImageSize {
		return fmt.Errorf("image larger than %d bytes", maxImageSize)
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, cachePath)
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}
