// Package sharecache holds screenshots prepared for social sharing so they can be
// downloaded as files for a limited time.
package sharecache

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"webshot/internal/logging"
)

// ErrNotFound is returned when a shared image is missing or expired
var ErrNotFound = errors.New("shared image not found")

// ErrInvalidInput is returned for empty or malformed share requests
var ErrInvalidInput = errors.New("invalid share request")

// DefaultTTL matches a one-day public cache lifetime
const DefaultTTL = 24 * time.Hour

const keyPrefix = "webshot:share:"

var (
	dataURLPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)
	platformName  = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)
	shareFilename = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}-[0-9a-f]{10}-[0-9]+\.jpg$`)
)

// Cache stores decoded screenshot bytes under generated filenames
type Cache struct {
	kv     KV
	ttl    time.Duration
	now    func() time.Time
	logger logging.Logger
}

// New creates a cache over kv. A non-positive ttl selects DefaultTTL.
func New(kv KV, ttl time.Duration, logger logging.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Cache{kv: kv, ttl: ttl, now: time.Now, logger: logger}
}

// FilenameFor returns {platform}-{first 10 hex of sha256(url)}-{unix millis}.jpg
func FilenameFor(platform, url string, at time.Time) string {
	sum := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%s-%s-%d.jpg", platform, hex.EncodeToString(sum[:])[:10], at.UnixMilli())
}

// Store decodes imageData, which may carry a data:image/...;base64, prefix, and
// keeps the bytes for the cache TTL.
func (c *Cache) Store(ctx context.Context, imageData, url, platform string) (string, error) {
	if imageData == "" || url == "" || platform == "" {
		return "", fmt.Errorf("%w: imageData, url and platform are required", ErrInvalidInput)
	}
	if !platformName.MatchString(platform) {
		return "", fmt.Errorf("%w: unsupported platform name", ErrInvalidInput)
	}

	encoded := dataURLPrefix.ReplaceAllString(imageData, "")
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", fmt.Errorf("%w: image data is not valid base64", ErrInvalidInput)
	}

	filename := FilenameFor(platform, url, c.now())
	if err := c.kv.Set(ctx, keyPrefix+filename, data, c.ttl); err != nil {
		return "", fmt.Errorf("failed to store shared image: %w", err)
	}

	c.logger.Info("Shared image stored", map[string]interface{}{
		"filename":   filename,
		"platform":   platform,
		"size_bytes": len(data),
		"ttl":        c.ttl.String(),
	})

	return filename, nil
}

// Fetch returns the bytes stored under filename
func (c *Cache) Fetch(ctx context.Context, filename string) ([]byte, error) {
	if !shareFilename.MatchString(filename) {
		return nil, ErrNotFound
	}
	data, err := c.kv.Get(ctx, keyPrefix+filename)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// TTL reports how long stored images live
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Healthy pings the backing store
func (c *Cache) Healthy(ctx context.Context) error {
	return c.kv.Ping(ctx)
}

// Close releases the backing store
func (c *Cache) Close() error {
	return c.kv.Close()
}
