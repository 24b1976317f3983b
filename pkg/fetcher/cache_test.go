package fetcher

import (
	"context"
	"testing"
	"time"

	"github.com/foomo/roadmapserver/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestCache(t *testing.T, revalidate time.Duration) (*Cache, storage.Storage) {
	t.Helper()
	s, err := storage.NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	c, err := NewCache(zaptest.NewLogger(t), s, revalidate)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, c.Close())
	})
	return c, s
}

func TestCacheRevalidate(t *testing.T) {
	var (
		ctx  = context.Background()
		now  = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
		c, _ = newTestCache(t, time.Hour)
		body = []byte(`{"nodeId":"aaa1"}`)
	)
	c.now = func() time.Time { return now }

	_, ok := c.Get(ctx, "cyber-security/a@aaa1.json.zst")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "cyber-security/a@aaa1.json.zst", body))

	now = now.Add(59 * time.Minute)
	cached, ok := c.Get(ctx, "cyber-security/a@aaa1.json.zst")
	require.True(t, ok)
	assert.Equal(t, body, cached)

	now = now.Add(time.Minute)
	_, ok = c.Get(ctx, "cyber-security/a@aaa1.json.zst")
	assert.False(t, ok, "entry must be stale after the revalidation window")
}

func TestCacheCompresses(t *testing.T) {
	ctx := context.Background()
	c, s := newTestCache(t, time.Hour)

	require.NoError(t, c.Set(ctx, "key", []byte(`{"description":"plain"}`)))
	raw, err := s.Read(ctx, "key")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "plain")

	data, err := c.decoder.DecodeAll(raw, nil)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"storedAt"`)
}

func TestCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, s := newTestCache(t, time.Hour)

	require.NoError(t, s.Write(ctx, "key", []byte("garbage")))
	_, ok := c.Get(ctx, "key")
	assert.False(t, ok)
}

func TestCacheDisabled(t *testing.T) {
	ctx := context.Background()
	c, s := newTestCache(t, 0)

	require.NoError(t, c.Set(ctx, "key", []byte("{}")))
	_, err := s.Read(ctx, "key")
	require.Error(t, err)
	_, ok := c.Get(ctx, "key")
	assert.False(t, ok)
}
