package fetcher

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/foomo/roadmapserver/pkg/metrics"
	"github.com/foomo/roadmapserver/pkg/storage"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

const (
	cacheResultHit   = "hit"
	cacheResultMiss  = "miss"
	cacheResultStale = "stale"
	cacheResultError = "error"
)

type (
	// Cache keeps upstream node content until the revalidation window passed
	Cache struct {
		l          *zap.Logger
		storage    storage.Storage
		revalidate time.Duration
		encoder    *zstd.Encoder
		decoder    *zstd.Decoder
		now        func() time.Time
	}
	cacheEntry struct {
		StoredAt time.Time `json:"storedAt"`
		Body     []byte    `json:"body"`
	}
)

// ------------------------------------------------------------------------------------------------
// ~ Constructor
// ------------------------------------------------------------------------------------------------

// NewCache a revalidate <= 0 disables caching
func NewCache(l *zap.Logger, s storage.Storage, revalidate time.Duration) (*Cache, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &Cache{
		l:          l.Named("cache"),
		storage:    s,
		revalidate: revalidate,
		encoder:    encoder,
		decoder:    decoder,
		now:        time.Now,
	}, nil
}

// ------------------------------------------------------------------------------------------------
// ~ Public methods
// ------------------------------------------------------------------------------------------------

// Get returns the cached body if it is younger than the revalidation window
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.revalidate <= 0 {
		return nil, false
	}
	compressed, err := c.storage.Read(ctx, key)
	if errors.Is(err, os.ErrNotExist) {
		metrics.ContentCacheCounter.WithLabelValues(cacheResultMiss).Inc()
		return nil, false
	} else if err != nil {
		c.l.Warn("failed to read cache entry", zap.String("key", key), zap.Error(err))
		metrics.ContentCacheCounter.WithLabelValues(cacheResultError).Inc()
		return nil, false
	}

	data, err := c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		c.l.Warn("failed to decompress cache entry", zap.String("key", key), zap.Error(err))
		metrics.ContentCacheCounter.WithLabelValues(cacheResultError).Inc()
		return nil, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.l.Warn("failed to decode cache entry", zap.String("key", key), zap.Error(err))
		metrics.ContentCacheCounter.WithLabelValues(cacheResultError).Inc()
		return nil, false
	}

	if c.now().Sub(entry.StoredAt) >= c.revalidate {
		metrics.ContentCacheCounter.WithLabelValues(cacheResultStale).Inc()
		return nil, false
	}
	metrics.ContentCacheCounter.WithLabelValues(cacheResultHit).Inc()
	return entry.Body, true
}

// Set stores the body with the current time
func (c *Cache) Set(ctx context.Context, key string, body []byte) error {
	if c.revalidate <= 0 {
		return nil
	}
	data, err := json.Marshal(cacheEntry{
		StoredAt: c.now(),
		Body:     body,
	})
	if err != nil {
		return err
	}
	return c.storage.Write(ctx, key, c.encoder.EncodeAll(data, nil))
}

// Close releases the codecs and the underlying storage
func (c *Cache) Close() error {
	c.decoder.Close()
	if err := c.encoder.Close(); err != nil {
		return err
	}
	return c.storage.Close()
}
