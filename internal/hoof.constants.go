package internal

import "time"

// Element directive tag names
const (
	TagInclude = "include"
	TagRequire = "require"
	TagBlock   = "block"
	TagExtends = "extends"
	TagIf      = "if"
	TagElif    = "elif"
	TagElse    = "else"
	TagCase    = "case"
	TagWhen    = "when"
	TagDefault = "default"
	TagFor     = "for"
	TagEach    = "each"
	TagLang    = "lang"
	TagCSRF    = "csrf"
	TagDebug   = "debug"
	TagCached  = "cached"
)

// Attribute directive names. Any other attribute starting with
// AttrDirectivePrefix is a bind directive.
const (
	AttrDirectivePrefix = ":"
	AttrExpression      = ":"
	AttrClass           = ":class"
	AttrHide            = ":hide"
)

// Plain attribute names read by directives
const (
	AttrFile     = "file"
	AttrElse     = "else"
	AttrName     = "name"
	AttrTTL      = "ttl"
	AttrKey      = "key"
	AttrTag      = "tag"
	AttrDefault  = "default"
	AttrProd     = "prod"
	AttrNoEval   = "no-eval"
	AttrLog      = "log"
	AttrInfo     = "info"
	AttrWarn     = "warn"
	AttrError    = "error"
	AttrType     = "type"
	AttrValue    = "value"
	AttrStyle    = "style"
	AttrClassRaw = "class"
)

// Values used when building replacement markup
const (
	CSRFInputTag   = "input"
	CSRFInputType  = "hidden"
	CSRFInputName  = "csrf"
	DefaultLangTag = "span"
	StyleDisplay   = "display"
	StyleHidden    = "display: none"
)

// Iteration grammar keywords
const (
	ForKeywordFrom    = "from"
	ForKeywordThrough = "through"
	ForKeywordThru    = "thru"
	ForKeywordTo      = "to"
	EachKeywordIn     = "in"
)

// Placeholder delimiters for inline expressions
const (
	PlaceholderOpen  = "{{"
	PlaceholderClose = "}}"
)

// Default configuration values
const (
	DefaultMaxDepth          = 100
	DefaultMaxInheritance    = 10
	DefaultTemplateExtension = ".mix"
	DefaultCacheDir          = "hoof/cache"
	DefaultFragmentSuffix    = ".mix"
	DefaultPageSuffix        = ".html"
	DefaultCacheTTL          = 86400 * time.Second
	CacheKeySeparator        = "-"
)

// String constants
const (
	StringValueEmpty = ""
	StringValueTrue  = "true"
	StringValueFalse = "false"
	StringValueNull  = "null"
)

// Log message constants
const (
	LogMsgWalkerCreated       = "walker created"
	LogMsgWalkStart           = "walk start"
	LogMsgDirectiveDispatch   = "directive dispatched"
	LogMsgAttributeDispatch   = "attribute directive dispatched"
	LogMsgStrayRemoved        = "stray directive element removed"
	LogMsgBranchSelected      = "branch selected"
	LogMsgNoBranchSelected    = "no branch selected"
	LogMsgLoopMalformed       = "malformed loop query, element removed"
	LogMsgLoopDone            = "loop expanded"
	LogMsgIncludeMissing      = "include target missing"
	LogMsgIncludeFallback     = "include fell back to else target"
	LogMsgIncludeResolved     = "include resolved"
	LogMsgBlockOverride       = "block overridden by descendant"
	LogMsgBlockDefault        = "block kept parent content"
	LogMsgCacheHit            = "cache hit"
	LogMsgCacheMiss           = "cache miss"
	LogMsgCacheStale          = "cache entry stale"
	LogMsgCacheWritten        = "cache entry written"
	LogMsgCSRFNoSession       = "csrf without session, element removed"
	LogMsgLangMissing         = "translation missing, default used"
	LogMsgDebugSkipped        = "debug directive skipped in production"
	LogMsgDebugOutput         = "template debug"
	LogMsgEvalSwallowed       = "expression failed, treated as undefined"
	LogMsgPlaceholderFailed   = "placeholder evaluation failed"
	LogMsgInheritanceLinked   = "template parent linked"
	LogMsgRegistryCreated     = "directive registry created"
	LogMsgDirectiveRegistered = "directive registered"
	LogMsgElementHidden       = "element hidden"
	LogMsgCacheSpliced        = "cached fragment spliced"
	LogMsgInvalidTTL          = "invalid cached ttl, default used"
)

// Log field constants
const (
	LogFieldTag        = "tag"
	LogFieldAttribute  = "attribute"
	LogFieldBranch     = "branch"
	LogFieldExpression = "expression"
	LogFieldPath       = "path"
	LogFieldParent     = "parent"
	LogFieldName       = "name"
	LogFieldKey        = "key"
	LogFieldTTL        = "ttl"
	LogFieldIterations = "iterations"
	LogFieldDepth      = "depth"
	LogFieldLocale     = "locale"
	LogFieldValue      = "value"
	LogFieldSize       = "size"
	LogFieldFresh      = "fresh"
)

// Error format strings
const (
	ErrFmtWithTag   = "%s [%s]"
	ErrFmtWithCause = "%s: %v"
	ErrFmtWithPath  = "%s: %s"
)
