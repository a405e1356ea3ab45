package hoof

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-hoof/internal"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Translator resolves localization keys for a locale.
type Translator = internal.Translator

// YAMLTranslator resolves keys of the form "file.path.to.key" against
// lang/<locale>/<file>.yaml read through a ResourceReader. The request
// locale is negotiated against the supported locales; keys missing in the
// negotiated locale fall back to the default locale.
type YAMLTranslator struct {
	reader        ResourceReader
	dir           string
	defaultLocale string
	supported     []string
	matcher       language.Matcher
	logger        *zap.Logger

	mu    sync.RWMutex
	files map[string]map[string]any // "<locale>/<file>" -> parsed document, nil when absent
}

// TranslatorOption configures a YAMLTranslator.
type TranslatorOption func(*YAMLTranslator)

// WithLangDir sets the directory holding locale folders.
// Default: "lang"
func WithLangDir(dir string) TranslatorOption {
	return func(t *YAMLTranslator) {
		if dir != StringValueEmpty {
			t.dir = dir
		}
	}
}

// WithTranslatorLogger sets the translator's logger.
func WithTranslatorLogger(logger *zap.Logger) TranslatorOption {
	return func(t *YAMLTranslator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewYAMLTranslator creates a translator. The default locale is always
// supported and is the first candidate of the matcher.
func NewYAMLTranslator(reader ResourceReader, defaultLocale string, supported []string, opts ...TranslatorOption) (*YAMLTranslator, error) {
	if defaultLocale == StringValueEmpty {
		defaultLocale = DefaultLocale
	}

	locales := []string{defaultLocale}
	for _, l := range supported {
		if l != StringValueEmpty && l != defaultLocale {
			locales = append(locales, l)
		}
	}

	tags := make([]language.Tag, 0, len(locales))
	for _, l := range locales {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, cuserr.WrapStdError(err, ErrCodeTranslation, ErrMsgLocaleInvalid).
				WithMetadata(MetaKeyLocale, l)
		}
		tags = append(tags, tag)
	}

	t := &YAMLTranslator{
		reader:        reader,
		dir:           DefaultLangDir,
		defaultLocale: defaultLocale,
		supported:     locales,
		matcher:       language.NewMatcher(tags),
		logger:        zap.NewNop(),
		files:         make(map[string]map[string]any),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Negotiate returns the supported locale best matching locale, which may
// be a single tag or an Accept-Language header value.
func (t *YAMLTranslator) Negotiate(locale string) string {
	if strings.TrimSpace(locale) == StringValueEmpty {
		return t.defaultLocale
	}
	desired, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(desired) == 0 {
		return t.defaultLocale
	}
	_, idx, confidence := t.matcher.Match(desired...)
	if confidence == language.No {
		return t.defaultLocale
	}
	t.logger.Debug(LogMsgLocaleNegotiated,
		zap.String(LogFieldLocale, locale),
		zap.String(LogFieldKey, t.supported[idx]),
	)
	return t.supported[idx]
}

// Translate looks key up for locale. The boolean is false when neither the
// negotiated nor the default locale defines key.
func (t *YAMLTranslator) Translate(ctx context.Context, locale, key string) (string, bool, error) {
	file, rest, ok := strings.Cut(key, KeySeparator)
	if !ok || file == StringValueEmpty || rest == StringValueEmpty {
		return StringValueEmpty, false, nil
	}

	candidates := []string{t.Negotiate(locale)}
	if candidates[0] != t.defaultLocale {
		candidates = append(candidates, t.defaultLocale)
	}

	for _, loc := range candidates {
		doc, err := t.load(ctx, loc, file)
		if err != nil {
			return StringValueEmpty, false, err
		}
		if text, found := lookupKey(doc, strings.Split(rest, KeySeparator)); found {
			return text, true, nil
		}
	}
	t.logger.Debug(LogMsgTranslatorNotFound,
		zap.String(LogFieldKey, key),
		zap.String(LogFieldLocale, locale),
	)
	return StringValueEmpty, false, nil
}

// load reads and parses one translation file, caching the result.
func (t *YAMLTranslator) load(ctx context.Context, locale, file string) (map[string]any, error) {
	cacheKey := locale + "/" + file

	t.mu.RLock()
	doc, cached := t.files[cacheKey]
	t.mu.RUnlock()
	if cached {
		return doc, nil
	}

	p := path.Join(t.dir, locale, file+DefaultLangFileExt)
	exists, err := t.reader.Exists(ctx, p)
	if err != nil {
		return nil, err
	}
	if exists {
		src, err := t.reader.Read(ctx, p)
		if err != nil {
			return nil, err
		}
		doc = make(map[string]any)
		if err := yaml.Unmarshal(src, &doc); err != nil {
			return nil, cuserr.WrapStdError(err, ErrCodeTranslation, ErrMsgTranslationParse).
				WithMetadata(MetaKeyPath, p)
		}
		t.logger.Debug(LogMsgTranslatorLoaded, zap.String(LogFieldFile, p))
	} else {
		t.logger.Debug(LogMsgTranslatorNoFile, zap.String(LogFieldFile, p))
	}

	t.mu.Lock()
	t.files[cacheKey] = doc
	t.mu.Unlock()
	return doc, nil
}

// Reset drops all cached translation files.
func (t *YAMLTranslator) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files = make(map[string]map[string]any)
}

// lookupKey walks a parsed YAML document along parts. Only scalar leaves
// are translations.
func lookupKey(doc map[string]any, parts []string) (string, bool) {
	var cur any = doc
	for _, part := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return StringValueEmpty, false
		}
		if cur, ok = m[part]; !ok {
			return StringValueEmpty, false
		}
	}
	switch v := cur.(type) {
	case nil, map[string]any, []any:
		return StringValueEmpty, false
	case string:
		return v, true
	default:
		return fmt.Sprint(v), true
	}
}

// Ensure YAMLTranslator implements Translator
var _ Translator = (*YAMLTranslator)(nil)
