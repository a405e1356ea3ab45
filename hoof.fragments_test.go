package hoof

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFragmentStore(t *testing.T) {
	clock := newTestClock()
	store := NewMemoryFragmentStoreWithClock(clock.Now)
	ctx := context.Background()

	_, ok, err := store.Info(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Read(ctx, "a")
	assert.True(t, IsMissingResource(err))

	content := []byte("<p>a</p>")
	require.NoError(t, store.Write(ctx, "a", content))
	content[0] = 'X'

	info, ok, err := store.Info(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, clock.Now(), info.CreatedAt)
	assert.Equal(t, int64(8), info.Size)

	data, err := store.Read(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "<p>a</p>", string(data), "writes store a copy")

	clock.Advance(time.Hour)
	require.NoError(t, store.Write(ctx, "a", []byte("b")))
	info, _, err = store.Info(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), info.CreatedAt, "last write wins")
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Close())
	_, err = store.Read(ctx, "a")
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, ErrMsgStoreClosed, storeErr.Message)
	_, _, err = store.Info(ctx, "a")
	assert.Error(t, err)
}

func TestFilesystemFragmentStore(t *testing.T) {
	tests := []struct {
		name        string
		compression Compression
		suffix      string
	}{
		{"plain", CompressionNone, ""},
		{"zstd", CompressionZstd, ".zst"},
		{"lz4", CompressionLZ4, ".lz4"},
	}

	content := []byte(strings.Repeat("<li>cached fragment</li>", 64))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			store, err := NewFilesystemFragmentStore(root, tt.compression)
			require.NoError(t, err)
			assert.Equal(t, tt.compression, store.Compression())
			ctx := context.Background()

			_, ok, err := store.Info(ctx, "hoof/cache/abc.mix")
			require.NoError(t, err)
			assert.False(t, ok)

			_, err = store.Read(ctx, "hoof/cache/abc.mix")
			assert.True(t, IsMissingResource(err))

			before := time.Now().Add(-time.Second)
			require.NoError(t, store.Write(ctx, "hoof/cache/abc.mix", content))

			file := filepath.Join(root, "hoof", "cache", "abc.mix"+tt.suffix)
			stat, err := os.Stat(file)
			require.NoError(t, err)

			info, ok, err := store.Info(ctx, "hoof/cache/abc.mix")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, stat.Size(), info.Size)
			assert.True(t, info.CreatedAt.After(before))
			if tt.compression != CompressionNone {
				assert.Less(t, info.Size, int64(len(content)), "repetitive markup compresses")
			}

			data, err := store.Read(ctx, "hoof/cache/abc.mix")
			require.NoError(t, err)
			assert.Equal(t, content, data)

			require.NoError(t, store.Write(ctx, "hoof/cache/abc.mix", []byte("new")))
			data, err = store.Read(ctx, "hoof/cache/abc.mix")
			require.NoError(t, err)
			assert.Equal(t, "new", string(data))

			entries, err := os.ReadDir(filepath.Join(root, "hoof", "cache"))
			require.NoError(t, err)
			assert.Len(t, entries, 1, "no temporary files remain")
		})
	}

	t.Run("rejects escaping paths", func(t *testing.T) {
		store, err := NewFilesystemFragmentStore(t.TempDir(), CompressionNone)
		require.NoError(t, err)
		assert.Error(t, store.Write(context.Background(), "../x", []byte("x")))
	})

	t.Run("rejects empty root", func(t *testing.T) {
		_, err := NewFilesystemFragmentStore("", CompressionNone)
		var storeErr *StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, ErrMsgEmptyRoot, storeErr.Message)
	})

	t.Run("rejects unknown compression", func(t *testing.T) {
		_, err := NewFilesystemFragmentStore(t.TempDir(), Compression("brotli"))
		assert.Error(t, err)
	})
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		input    string
		expected Compression
		wantErr  bool
	}{
		{"", CompressionNone, false},
		{"zstd", CompressionZstd, false},
		{" LZ4 ", CompressionLZ4, false},
		{"gzip", CompressionNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := ParseCompression(tt.input)
			if tt.wantErr {
				var storeErr *StoreError
				require.ErrorAs(t, err, &storeErr)
				assert.Equal(t, ErrMsgUnknownCompression, storeErr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c)
		})
	}
}

func TestFragmentStoreDrivers(t *testing.T) {
	drivers := ListFragmentStoreDrivers()
	assert.Contains(t, drivers, FragmentStoreDriverMemory)
	assert.Contains(t, drivers, FragmentStoreDriverFilesystem)
	assert.Contains(t, drivers, FragmentStoreDriverPostgres)

	t.Run("memory", func(t *testing.T) {
		store, err := OpenFragmentStore(FragmentStoreDriverMemory, "")
		require.NoError(t, err)
		assert.IsType(t, &MemoryFragmentStore{}, store)
	})

	t.Run("filesystem with compression", func(t *testing.T) {
		root := t.TempDir()
		store, err := OpenFragmentStore(FragmentStoreDriverFilesystem, root+"?compress=zstd")
		require.NoError(t, err)
		fsStore, ok := store.(*FilesystemFragmentStore)
		require.True(t, ok)
		assert.Equal(t, CompressionZstd, fsStore.Compression())
	})

	t.Run("filesystem bad compression", func(t *testing.T) {
		_, err := OpenFragmentStore(FragmentStoreDriverFilesystem, t.TempDir()+"?compress=rar")
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := OpenFragmentStore("redis", "")
		require.Error(t, err)
		assert.Equal(t, KindStore, kindOf(err))
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		assert.Panics(t, func() {
			RegisterFragmentStoreDriver(FragmentStoreDriverMemory, &MemoryFragmentStoreDriver{})
		})
		assert.Panics(t, func() { RegisterFragmentStoreDriver("nil", nil) })
	})
}

func TestStoreError(t *testing.T) {
	cause := os.ErrPermission
	err := &StoreError{Message: ErrMsgResourceWriteFailed, Path: "a", Cause: cause}
	assert.Equal(t, ErrMsgResourceWriteFailed+": a: "+cause.Error(), err.Error())
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Equal(t, ErrMsgStoreClosed, (&StoreError{Message: ErrMsgStoreClosed}).Error())
}

func TestEngine_CachedDirectiveOnFilesystem(t *testing.T) {
	store, err := NewFilesystemFragmentStore(t.TempDir(), CompressionZstd)
	require.NoError(t, err)

	engine, err := New(
		WithReader(NewMemoryReader(map[string]string{
			"pages/stats.mix": `<div><cached key="stats" ttl="3600"><b>{{ hits }}</b></cached>|{{ hits }}</div>`,
		})),
		WithFragmentStore(store),
	)
	require.NoError(t, err)
	ctx := context.Background()

	out, err := engine.Render(ctx, "pages/stats", map[string]any{"hits": 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, "<div><b>1</b>|1</div>", out)

	out, err = engine.Render(ctx, "pages/stats", map[string]any{"hits": 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, "<div><b>1</b>|2</div>", out, "fragment replays while fresh")
}
