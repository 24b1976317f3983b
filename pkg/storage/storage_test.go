package storage_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/foomo/roadmapserver/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
)

func backends(t *testing.T) map[string]storage.Storage {
	t.Helper()
	fs, err := storage.NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)

	bucket, err := blob.OpenBucket(context.Background(), "mem://")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bucket.Close() })

	prefixed, err := storage.NewBlobStorage(context.Background(), "mem://", "my-prefix")
	require.NoError(t, err)
	t.Cleanup(func() { _ = prefixed.Close() })

	return map[string]storage.Storage{
		"filesystem":  fs,
		"blob":        storage.NewBlobStorageFromBucket(bucket, ""),
		"blob prefix": prefixed,
	}
}

func TestStorage_WriteRead(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Write(ctx, "test-key", []byte("original")))
			require.NoError(t, s.Write(ctx, "test-key", []byte("updated")))

			data, err := s.Read(ctx, "test-key")
			require.NoError(t, err)
			assert.Equal(t, []byte("updated"), data)
		})
	}
}

func TestStorage_NestedKey(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Write(ctx, "cyber-security/networking@abc.json.zst", []byte("x")))

			data, err := s.Read(ctx, "cyber-security/networking@abc.json.zst")
			require.NoError(t, err)
			assert.Equal(t, []byte("x"), data)
		})
	}
}

func TestStorage_ReadNotFound(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Read(context.Background(), "nonexistent-key")
			require.Error(t, err)
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestStorage_List(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, key := range []string{"prefix-a", "prefix-c", "prefix-b", "other-key"} {
				require.NoError(t, s.Write(ctx, key, []byte(key)))
			}

			keys, err := s.List(ctx, "prefix-")
			require.NoError(t, err)
			assert.Equal(t, []string{"prefix-c", "prefix-b", "prefix-a"}, keys)

			keys, err = s.List(ctx, "nonexistent-")
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}

func TestStorage_Delete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Write(ctx, "test-key", []byte("test-data")))
			require.NoError(t, s.Delete(ctx, "test-key"))

			_, err := s.Read(ctx, "test-key")
			assert.True(t, os.IsNotExist(err))

			// idempotent
			require.NoError(t, s.Delete(ctx, "test-key"))
		})
	}
}

func TestStorage_ConcurrentOperations(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_ = s.Write(ctx, "concurrent-key", []byte("data"))
					_, _ = s.Read(ctx, "concurrent-key")
					_, _ = s.List(ctx, "concurrent-")
				}()
			}
			wg.Wait()

			data, err := s.Read(ctx, "concurrent-key")
			require.NoError(t, err)
			assert.Equal(t, []byte("data"), data)
		})
	}
}

func TestFilesystem_RejectsEscapingKeys(t *testing.T) {
	s, err := storage.NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.ErrorIs(t, s.Write(ctx, "../escape", []byte("x")), storage.ErrInvalidKey)
	_, err = s.Read(ctx, "/etc/passwd")
	require.ErrorIs(t, err, storage.ErrInvalidKey)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := storage.Open(ctx, storage.TypeFilesystem, t.TempDir(), "", "")
	require.NoError(t, err)
	assert.IsType(t, &storage.Filesystem{}, s)

	s, err = storage.Open(ctx, storage.TypeBlob, "", "mem://", "")
	require.NoError(t, err)
	assert.IsType(t, &storage.Blob{}, s)
	require.NoError(t, s.Close())

	_, err = storage.Open(ctx, storage.TypeBlob, "", "", "")
	require.Error(t, err)

	_, err = storage.Open(ctx, storage.TypeBlob, "", "ftp://bucket", "")
	require.Error(t, err)

	_, err = storage.Open(ctx, "tape", "", "", "")
	require.Error(t, err)
}

func TestBlobProvider(t *testing.T) {
	assert.Equal(t, "Google Cloud Storage", storage.BlobProvider("gs://bucket"))
	assert.Equal(t, "AWS S3", storage.BlobProvider("s3://bucket"))
	assert.Equal(t, "Azure Blob Storage", storage.BlobProvider("azblob://bucket"))
	assert.Equal(t, "in-memory", storage.BlobProvider("mem://"))
	assert.Equal(t, "unknown", storage.BlobProvider("file:///tmp"))
}
