package badgerblob

import (
	"context"
	"testing"

	"github.com/poiesic/indexit/blob"
	"github.com/poiesic/indexit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testObject(name string) *core.BlobObject {
	return &core.BlobObject{
		Name:        name,
		ContentType: "image/png",
		Tags: map[string]string{
			"title":      "report",
			"department": "finance",
		},
		Payload: []byte{0x89, 0x50, 0x4e, 0x47},
	}
}

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestCreateContainer(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("creates new container", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, "documents"))
	})

	t.Run("rejects duplicate container", func(t *testing.T) {
		err := store.Create(ctx, "documents")
		assert.ErrorIs(t, err, blob.ErrContainerExists)
	})

	t.Run("rejects invalid names", func(t *testing.T) {
		assert.ErrorIs(t, store.Create(ctx, ""), blob.ErrInvalidName)
		assert.ErrorIs(t, store.Create(ctx, "a:b"), blob.ErrInvalidName)
	})
}

func TestUploadDownload(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, "images"))

	want := testObject("image_abc_chunk_0")
	require.NoError(t, store.Upload(ctx, "images", want))

	got, err := store.Download(ctx, "images", "image_abc_chunk_0")
	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.ContentType, got.ContentType)
	assert.Equal(t, want.Tags, got.Tags)
	assert.Equal(t, want.Payload, got.Payload)
	assert.False(t, got.StoredAt.IsZero())
	assert.True(t, got.StoredAt.Equal(want.StoredAt))
}

func TestUploadOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, "images"))

	first := testObject("img")
	require.NoError(t, store.Upload(ctx, "images", first))

	second := testObject("img")
	second.Payload = []byte("updated")
	require.NoError(t, store.Upload(ctx, "images", second))

	got, err := store.Download(ctx, "images", "img")
	require.NoError(t, err)
	assert.Equal(t, []byte("updated"), got.Payload)
}

func TestUploadMissingContainer(t *testing.T) {
	store := newTestStore(t)

	err := store.Upload(context.Background(), "nowhere", testObject("img"))
	assert.ErrorIs(t, err, blob.ErrContainerNotFound)
}

func TestDownloadMissing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, "images"))

	_, err := store.Download(ctx, "images", "missing")
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func TestExists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, "images"))

	found, err := store.Exists(ctx, "images", "img")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Upload(ctx, "images", testObject("img")))

	found, err = store.Exists(ctx, "images", "img")
	require.NoError(t, err)
	assert.True(t, found)

	// Missing container reports absence, not an error.
	found, err = store.Exists(ctx, "nowhere", "img")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestListNames(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, "docs"))

	t.Run("empty container", func(t *testing.T) {
		names, err := store.ListNames(ctx, "docs")
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("sorted names", func(t *testing.T) {
		for _, name := range []string{"charlie.pdf", "alpha.pdf", "bravo.pdf"} {
			require.NoError(t, store.Upload(ctx, "docs", testObject(name)))
		}

		names, err := store.ListNames(ctx, "docs")
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha.pdf", "bravo.pdf", "charlie.pdf"}, names)
	})

	t.Run("missing container", func(t *testing.T) {
		_, err := store.ListNames(ctx, "nowhere")
		assert.ErrorIs(t, err, blob.ErrContainerNotFound)
	})
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, "images"))
	require.NoError(t, store.Upload(ctx, "images", testObject("img")))

	require.NoError(t, store.Delete(ctx, "images", "img"))

	found, err := store.Exists(ctx, "images", "img")
	require.NoError(t, err)
	assert.False(t, found)

	assert.ErrorIs(t, store.Delete(ctx, "images", "img"), blob.ErrNotFound)
}

func TestContainerIsolation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, "one"))
	require.NoError(t, store.Create(ctx, "two"))

	obj := testObject("shared")
	obj.Payload = []byte("one")
	require.NoError(t, store.Upload(ctx, "one", obj))

	names, err := store.ListNames(ctx, "two")
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = store.Download(ctx, "two", "shared")
	assert.ErrorIs(t, err, blob.ErrNotFound)
}
