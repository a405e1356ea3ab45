package hoof

import "time"

// Version of the hoof module
const Version = "0.4.0"

// Default configuration values
const (
	DefaultViewsRoot      = "views"
	DefaultExtension      = ".mix"
	DefaultCacheDir       = "hoof/cache"
	DefaultCacheTTL       = 86400 * time.Second
	DefaultMaxDepth       = 100
	DefaultMaxInheritance = 10
	DefaultLocale         = "en"
	DefaultLangDir        = "lang"
	DefaultLangFileExt    = ".yaml"
)

// Fragment store driver names
const (
	FragmentStoreDriverMemory     = "memory"
	FragmentStoreDriverFilesystem = "filesystem"
	FragmentStoreDriverPostgres   = "postgres"
)

// Filesystem permissions for stored fragments
const (
	FilesystemDirPermissions  = 0755
	FilesystemFilePermissions = 0644
)

// Filesystem fragment store settings
const (
	FilesystemCompressParam  = "compress"
	FilesystemParamSeparator = "?"
)

// PostgreSQL fragment store defaults
const (
	PostgresDriverName             = "postgres"
	PostgresTablePrefix            = "hoof_"
	PostgresDefaultMaxOpenConns    = 25
	PostgresDefaultMaxIdleConns    = 5
	PostgresDefaultConnMaxLifetime = 5 * time.Minute
	PostgresDefaultConnMaxIdleTime = 5 * time.Minute
	PostgresDefaultQueryTimeout    = 30 * time.Second
)

// Output settings
const (
	MediaTypeHTML = "text/html"
)

// Metadata keys for cuserr.WithMetadata
const (
	MetaKeyKind       = "kind"
	MetaKeyPath       = "path"
	MetaKeyTag        = "tag"
	MetaKeyDriverName = "driver"
	MetaKeyLocale     = "locale"
	MetaKeyKey        = "key"
	MetaKeyField      = "field"
	MetaKeyValue      = "value"
	MetaKeyFuncName   = "func_name"
)

// Log message constants
const (
	LogMsgEngineCreated      = "hoof engine created"
	LogMsgRenderStart        = "render start"
	LogMsgRenderDone         = "render done"
	LogMsgRenderFailed       = "render failed"
	LogMsgPageCacheHit       = "page cache hit"
	LogMsgPageCacheMiss      = "page cache miss"
	LogMsgConfigLoaded       = "config loaded"
	LogMsgTranslatorLoaded   = "translation file loaded"
	LogMsgTranslatorNoFile   = "translation file missing"
	LogMsgFragmentStoreOpen  = "fragment store opened"
	LogMsgMigrationApplied   = "fragment store migration applied"
	LogMsgMinifyFailed       = "minify failed, unminified output used"
	LogMsgLocaleNegotiated   = "locale negotiated"
	LogMsgTranslatorNotFound = "translation key not found"
)

// Log field constants
const (
	LogFieldPath     = "path"
	LogFieldDriver   = "driver"
	LogFieldLocale   = "locale"
	LogFieldKey      = "key"
	LogFieldFile     = "file"
	LogFieldSize     = "size"
	LogFieldDuration = "duration"
	LogFieldVersion  = "version"
	LogFieldTTL      = "ttl"
	LogFieldKind     = "kind"
)

// String constants
const (
	StringValueEmpty = ""
	KeySeparator     = "."
)
