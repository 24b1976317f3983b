package repo

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/foomo/roadmapserver/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
)

func TestHistoryCurrent(t *testing.T) {
	var (
		ctx = context.Background()
		h   = testHistory(t)
		b   bytes.Buffer
	)
	require.NoError(t, h.Add(ctx, revisionOf([]byte("test")), []byte("test")))
	require.NoError(t, h.GetCurrent(ctx, &b))
	assert.Equal(t, "test", b.String())
}

func TestHistoryBackupKey(t *testing.T) {
	h := testHistory(t)
	h.now = func() time.Time {
		return time.Date(2026, 10, 19, 8, 30, 0, 5, time.FixedZone("CEST", 2*60*60))
	}

	assert.Equal(t, "roadmapserver-index-2026-10-19T06-30-00.000000005Z-0123456789ab.json", h.backupKey("0123456789abcdef"))
	assert.Equal(t, "roadmapserver-index-2026-10-19T06-30-00.000000005Z.json", h.backupKey(""))
}

func TestHistoryPrune(t *testing.T) {
	var (
		ctx = context.Background()
		h   = testHistory(t)
		now = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	)
	h.now = func() time.Time { return now }

	for i := 0; i < 20; i++ {
		data := []byte(fmt.Sprint(i))
		require.NoError(t, h.Add(ctx, revisionOf(data), data))
		now = now.Add(time.Second)
	}

	keys, err := h.backups(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 2, "only the limit of backups must be kept")
	assert.Contains(t, keys[0], "2026-10-19T00-00-19")
	assert.Contains(t, keys[1], "2026-10-19T00-00-18")

	var b bytes.Buffer
	require.NoError(t, h.GetCurrent(ctx, &b))
	assert.Equal(t, "19", b.String())
}

func TestHistoryBackupsOrder(t *testing.T) {
	h := testHistoryWithFiles(t)

	keys, err := h.backups(context.Background())
	require.NoError(t, err)
	// newest first, current excluded
	assert.Equal(t, []string{
		"roadmapserver-index-2026-10-23T00-00-00.000000000Z.json",
		"roadmapserver-index-2026-10-22T00-00-00.000000000Z.json",
		"roadmapserver-index-2026-10-21T00-00-00.000000000Z.json",
	}, keys)
}

func TestHistoryOutdated(t *testing.T) {
	h := testHistoryWithFiles(t)

	keys, err := h.outdated(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"roadmapserver-index-2026-10-21T00-00-00.000000000Z.json"}, keys)

	keys, err = h.outdated(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestHistoryWithStorage(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)

	h, err := NewHistory(zaptest.NewLogger(t), HistoryWithStorage(s), HistoryWithHistoryLimit(2))
	require.NoError(t, err)
	require.NoError(t, h.Add(ctx, "", []byte("test-data")))

	data, err := s.Read(ctx, CurrentKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("test-data"), data)
}

func TestHistoryWithBlobStorage(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)

	h, err := NewHistory(zaptest.NewLogger(t),
		HistoryWithStorage(storage.NewBlobStorageFromBucket(bucket, "test-prefix")),
		HistoryWithHistoryLimit(2),
	)
	require.NoError(t, err)
	defer h.Close()

	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }
	for i := 0; i < 5; i++ {
		data := []byte(fmt.Sprintf("data-%d", i))
		require.NoError(t, h.Add(ctx, revisionOf(data), data))
		now = now.Add(time.Millisecond)
	}

	var buf bytes.Buffer
	require.NoError(t, h.GetCurrent(ctx, &buf))
	assert.Equal(t, "data-4", buf.String())

	keys, err := h.backups(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}

func TestHistoryGetCurrentMissing(t *testing.T) {
	h := testHistory(t)
	var buf bytes.Buffer
	err := h.GetCurrent(context.Background(), &buf)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Zero(t, buf.Len())
}

func TestHistoryClose(t *testing.T) {
	require.NoError(t, testHistory(t).Close())
}

func testHistory(t *testing.T) *History {
	t.Helper()
	h, err := NewHistory(zaptest.NewLogger(t), HistoryWithHistoryLimit(2), HistoryWithHistoryDir(t.TempDir()))
	require.NoError(t, err)
	return h
}

func testHistoryWithFiles(t *testing.T) *History {
	t.Helper()
	ctx := context.Background()
	s, err := storage.NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	for _, key := range []string{
		"roadmapserver-index-2026-10-22T00-00-00.000000000Z.json",
		"roadmapserver-index-2026-10-21T00-00-00.000000000Z.json",
		CurrentKey,
		"roadmapserver-index-2026-10-23T00-00-00.000000000Z.json",
	} {
		require.NoError(t, s.Write(ctx, key, []byte("[]")))
	}
	h, err := NewHistory(zaptest.NewLogger(t), HistoryWithStorage(s), HistoryWithHistoryLimit(2))
	require.NoError(t, err)
	return h
}
