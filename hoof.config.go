package hoof

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the YAML form of the engine configuration.
//
// Example:
//
//	views_root: views
//	extension: .mix
//	cache_dir: hoof/cache
//	production: true
//	default_ttl: 24h
//	max_depth: 100
//	max_inheritance: 10
//	default_locale: en
//	supported_locales: [en, de, fr]
//	lang_dir: lang
//	minify: true
//	strict_placeholders: false
//	store:
//	  driver: filesystem
//	  dsn: /var/cache/hoof?compress=zstd
type Config struct {
	ViewsRoot          string      `yaml:"views_root,omitempty"`
	Extension          string      `yaml:"extension,omitempty"`
	CacheDir           string      `yaml:"cache_dir,omitempty"`
	Production         bool        `yaml:"production,omitempty"`
	DefaultTTL         string      `yaml:"default_ttl,omitempty"`
	MaxDepth           int         `yaml:"max_depth,omitempty"`
	MaxInheritance     int         `yaml:"max_inheritance,omitempty"`
	DefaultLocale      string      `yaml:"default_locale,omitempty"`
	SupportedLocales   []string    `yaml:"supported_locales,omitempty"`
	LangDir            string      `yaml:"lang_dir,omitempty"`
	Minify             bool        `yaml:"minify,omitempty"`
	StrictPlaceholders bool        `yaml:"strict_placeholders,omitempty"`
	Store              StoreConfig `yaml:"store,omitempty"`
}

// StoreConfig selects a fragment store driver.
type StoreConfig struct {
	Driver string `yaml:"driver,omitempty"`
	DSN    string `yaml:"dsn,omitempty"`
}

// Config field names used in error metadata
const (
	ConfigFieldFile       = "file"
	ConfigFieldDefaultTTL = "default_ttl"
	ConfigFieldMaxDepth   = "max_depth"
	ConfigFieldStore      = "store"
	ConfigFieldLocale     = "default_locale"
)

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewConfigError(ErrMsgConfigRead, ConfigFieldFile, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML config data and validates it.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, NewConfigError(ErrMsgConfigParse, ConfigFieldFile, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values that the options cannot repair.
func (c *Config) Validate() error {
	if _, err := c.TTL(); err != nil {
		return err
	}
	if c.MaxDepth < 0 || c.MaxInheritance < 0 {
		return NewConfigError(ErrMsgConfigInvalidDepth, ConfigFieldMaxDepth, nil)
	}
	return nil
}

// TTL parses DefaultTTL. It accepts Go durations ("24h") and plain
// seconds ("3600"). Empty yields DefaultCacheTTL.
func (c *Config) TTL() (time.Duration, error) {
	raw := strings.TrimSpace(c.DefaultTTL)
	if raw == StringValueEmpty {
		return DefaultCacheTTL, nil
	}
	if !strings.ContainsAny(raw, "hmsuµn") {
		raw += "s"
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil {
		return 0, NewConfigError(ErrMsgConfigInvalidTTL, ConfigFieldDefaultTTL, err)
	}
	if ttl <= 0 {
		return 0, NewConfigError(ErrMsgConfigInvalidTTL, ConfigFieldDefaultTTL, nil)
	}
	return ttl, nil
}

// Options maps the config onto engine options. It opens the configured
// fragment store and builds a YAMLTranslator over the views root when
// locales are configured.
func (c *Config) Options() ([]Option, error) {
	ttl, err := c.TTL()
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithViewsRoot(c.ViewsRoot),
		WithExtension(c.Extension),
		WithCacheDir(c.CacheDir),
		WithProduction(c.Production),
		WithDefaultTTL(ttl),
		WithStrictPlaceholders(c.StrictPlaceholders),
		WithMinifyOutput(c.Minify),
	}
	if c.MaxDepth > 0 {
		opts = append(opts, WithMaxDepth(c.MaxDepth))
	}
	if c.MaxInheritance > 0 {
		opts = append(opts, WithMaxInheritance(c.MaxInheritance))
	}

	if c.Store.Driver != StringValueEmpty {
		store, err := OpenFragmentStore(c.Store.Driver, c.Store.DSN)
		if err != nil {
			return nil, NewConfigError(ErrMsgConfigStoreOpen, ConfigFieldStore, err)
		}
		opts = append(opts, WithFragmentStore(store))
	}

	if c.DefaultLocale != StringValueEmpty || len(c.SupportedLocales) > 0 {
		root := c.ViewsRoot
		if root == StringValueEmpty {
			root = DefaultViewsRoot
		}
		reader, err := NewFilesystemReader(root)
		if err != nil {
			return nil, err
		}
		translator, err := NewYAMLTranslator(reader, c.DefaultLocale, c.SupportedLocales, WithLangDir(c.LangDir))
		if err != nil {
			return nil, NewConfigError(ErrMsgLocaleInvalid, ConfigFieldLocale, err)
		}
		opts = append(opts, WithTranslator(translator))
	}
	return opts, nil
}
