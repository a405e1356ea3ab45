package hoof

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
views_root: site
extension: .html
production: true
default_ttl: 2h
max_depth: 50
supported_locales: [en, de]
minify: true
store:
  driver: memory
`))
	require.NoError(t, err)
	assert.Equal(t, "site", cfg.ViewsRoot)
	assert.Equal(t, ".html", cfg.Extension)
	assert.True(t, cfg.Production)
	assert.Equal(t, 50, cfg.MaxDepth)
	assert.Equal(t, []string{"en", "de"}, cfg.SupportedLocales)
	assert.Equal(t, "memory", cfg.Store.Driver)

	ttl, err := cfg.TTL()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, ttl)
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"malformed yaml", "views_root: [", ConfigFieldFile},
		{"bad ttl", "default_ttl: soon", ConfigFieldDefaultTTL},
		{"zero ttl", "default_ttl: 0", ConfigFieldDefaultTTL},
		{"negative depth", "max_depth: -1", ConfigFieldMaxDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.input))
			require.Error(t, err)

			var customErr *cuserr.CustomError
			require.True(t, errors.As(err, &customErr))
			field, ok := customErr.GetMetadata(MetaKeyField)
			assert.True(t, ok)
			assert.Equal(t, tt.field, field)
			assert.Equal(t, KindConfig, kindOf(err))
		})
	}
}

func TestConfig_TTL(t *testing.T) {
	tests := []struct {
		raw      string
		expected time.Duration
	}{
		{"", DefaultCacheTTL},
		{"3600", time.Hour},
		{" 90 ", 90 * time.Second},
		{"15m", 15 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ttl, err := (&Config{DefaultTTL: tt.raw}).TTL()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ttl)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	views := filepath.Join(dir, "views")
	require.NoError(t, os.MkdirAll(filepath.Join(views, "lang", "en"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(views, "home.mix"), []byte(`<p><lang key="home.hi"></lang></p>`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(views, "lang", "en", "home.yaml"), []byte("hi: Hello\n"), 0o644))

	path := filepath.Join(dir, "hoof.yaml")
	require.NoError(t, os.WriteFile(path, []byte("views_root: "+views+"\ndefault_locale: en\nstore:\n  driver: filesystem\n  dsn: "+
		filepath.Join(dir, "cache")+"?compress=lz4\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	opts, err := cfg.Options()
	require.NoError(t, err)
	engine, err := New(opts...)
	require.NoError(t, err)
	defer engine.Close()

	out, err := engine.RenderCached(context.Background(), "home", nil, &Request{Path: "/"}, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "<p><span>Hello</span></p>", out)

	cached, err := filepath.Glob(filepath.Join(dir, "cache", DefaultCacheDir, "*.lz4"))
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(dir, "none.yaml"))
		assert.Equal(t, KindConfig, kindOf(err))
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := (&Config{Store: StoreConfig{Driver: "redis"}}).Options()
		assert.Equal(t, KindConfig, kindOf(err))
	})
}
