package hoof

import (
	"time"

	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	viewsRoot          string
	reader             ResourceReader
	extension          string
	cacheDir           string
	store              FragmentStore
	translator         Translator
	production         bool
	defaultTTL         time.Duration
	maxDepth           int
	maxInheritance     int
	strictPlaceholders bool
	minify             bool
	clock              func() time.Time
	logger             *zap.Logger
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		viewsRoot:      DefaultViewsRoot,
		extension:      DefaultExtension,
		cacheDir:       DefaultCacheDir,
		defaultTTL:     DefaultCacheTTL,
		maxDepth:       DefaultMaxDepth,
		maxInheritance: DefaultMaxInheritance,
		clock:          time.Now,
		logger:         nil,
	}
}

// WithViewsRoot reads views from a directory on disk.
// Default: "views"
func WithViewsRoot(dir string) Option {
	return func(c *engineConfig) {
		if dir != StringValueEmpty {
			c.viewsRoot = dir
		}
	}
}

// WithReader reads views through reader instead of the views root.
func WithReader(reader ResourceReader) Option {
	return func(c *engineConfig) {
		c.reader = reader
	}
}

// WithExtension sets the extension appended to view paths without one.
// Default: ".mix"
func WithExtension(ext string) Option {
	return func(c *engineConfig) {
		if ext != StringValueEmpty {
			c.extension = ext
		}
	}
}

// WithCacheDir sets the directory prefix of cached fragments and pages
// inside the fragment store.
// Default: "hoof/cache"
func WithCacheDir(dir string) Option {
	return func(c *engineConfig) {
		if dir != StringValueEmpty {
			c.cacheDir = dir
		}
	}
}

// WithFragmentStore enables the cached directive and RenderCached.
// Default: nil (cached content renders in place on every request)
func WithFragmentStore(store FragmentStore) Option {
	return func(c *engineConfig) {
		c.store = store
	}
}

// WithTranslator sets the translator used by the lang directive.
// Default: nil (lang falls back to its default text)
func WithTranslator(t Translator) Option {
	return func(c *engineConfig) {
		c.translator = t
	}
}

// WithProduction skips debug directives that lack the prod attribute.
// Default: false
func WithProduction(production bool) Option {
	return func(c *engineConfig) {
		c.production = production
	}
}

// WithDefaultTTL sets the ttl of cached directives without a ttl attribute.
// Default: 86400 seconds
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *engineConfig) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithMaxDepth sets how deeply directive and include walks may nest.
// Plain element nesting does not count toward the limit.
// Default: 100
func WithMaxDepth(depth int) Option {
	return func(c *engineConfig) {
		c.maxDepth = depth
	}
}

// WithMaxInheritance sets the maximum length of an extends chain.
// Default: 10
func WithMaxInheritance(depth int) Option {
	return func(c *engineConfig) {
		c.maxInheritance = depth
	}
}

// WithStrictPlaceholders makes a failing placeholder abort the render
// instead of rendering empty.
// Default: false
func WithStrictPlaceholders(strict bool) Option {
	return func(c *engineConfig) {
		c.strictPlaceholders = strict
	}
}

// WithMinifyOutput minifies every render.
// Default: false
func WithMinifyOutput(minify bool) Option {
	return func(c *engineConfig) {
		c.minify = minify
	}
}

// WithClock sets the clock used to age cached entries.
// Default: time.Now
func WithClock(now func() time.Time) Option {
	return func(c *engineConfig) {
		if now != nil {
			c.clock = now
		}
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// RenderOption adjusts a single render.
type RenderOption func(*renderConfig)

// renderConfig holds per-render settings.
type renderConfig struct {
	minify bool
}

// WithMinify minifies the output of this render.
func WithMinify(minify bool) RenderOption {
	return func(c *renderConfig) {
		c.minify = minify
	}
}
