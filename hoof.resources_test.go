package hoof

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemReader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pages"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pages", "home.mix"), []byte("<p>home</p>"), 0o644))

	reader, err := NewFilesystemReader(dir)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("read", func(t *testing.T) {
		data, err := reader.Read(ctx, "pages/home.mix")
		require.NoError(t, err)
		assert.Equal(t, "<p>home</p>", string(data))

		data, err = reader.Read(ctx, "/pages/home.mix")
		require.NoError(t, err, "leading slash is relative to root")
		assert.Equal(t, "<p>home</p>", string(data))
	})

	t.Run("exists", func(t *testing.T) {
		ok, err := reader.Exists(ctx, "pages/home.mix")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = reader.Exists(ctx, "pages/none.mix")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = reader.Exists(ctx, "pages")
		require.NoError(t, err)
		assert.False(t, ok, "directories are not resources")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := reader.Read(ctx, "pages/none.mix")
		assert.True(t, IsMissingResource(err))
	})

	t.Run("rejected paths", func(t *testing.T) {
		tests := []struct {
			name string
			path string
		}{
			{"empty", ""},
			{"blank", "  "},
			{"parent", "../secret"},
			{"nested parent", "pages/../../secret"},
			{"backslash", `pages\home.mix`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := reader.Read(ctx, tt.path)
				assert.Error(t, err)
				_, err = reader.Exists(ctx, tt.path)
				assert.Error(t, err)
			})
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := reader.Read(cancelled, "pages/home.mix")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("root", func(t *testing.T) {
		assert.True(t, filepath.IsAbs(reader.Root()))
		_, err := NewFilesystemReader("")
		assert.Error(t, err)
	})
}

func TestMemoryReader(t *testing.T) {
	reader := NewMemoryReader(map[string]string{"/a.mix": "A"})
	ctx := context.Background()

	data, err := reader.Read(ctx, "a.mix")
	require.NoError(t, err)
	assert.Equal(t, "A", string(data))

	data[0] = 'Z'
	again, err := reader.Read(ctx, "a.mix")
	require.NoError(t, err)
	assert.Equal(t, "A", string(again), "reads return copies")

	reader.Set("dir/b.mix", "B")
	ok, err := reader.Exists(ctx, "dir/./b.mix")
	require.NoError(t, err)
	assert.True(t, ok)

	reader.Delete("dir/b.mix")
	ok, err = reader.Exists(ctx, "dir/b.mix")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = reader.Read(ctx, "dir/b.mix")
	assert.True(t, IsMissingResource(err))
}
