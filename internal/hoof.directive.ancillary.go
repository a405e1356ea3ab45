package internal

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// cachedDirective replays a stored rendering of its children while it is
// fresh and regenerates it otherwise.
type cachedDirective struct{}

func (cachedDirective) Name() string { return TagCached }

func (cachedDirective) Execute(ctx context.Context, w *Walker, rs *RenderState, el *html.Node) error {
	gate := w.config.Cache
	if gate == nil {
		// no store configured: render in place
		return w.WalkFragment(ctx, rs, el, CloneChildren(el))
	}

	ttl := w.cachedTTL(el)
	key := Key(rs.Request.RequestPath(), GetAttrDefault(el, AttrKey, StringValueEmpty))
	p := gate.FragmentPath(key)

	content, fresh, err := gate.Lookup(ctx, p, ttl)
	if err != nil {
		return err
	}

	if !fresh {
		fragment := CloneChildren(el)
		if err := w.Walk(ctx, rs, fragment); err != nil {
			return err
		}
		// freeze placeholders so a replay does not see later data
		if err := w.SubstituteTree(rs, fragment); err != nil {
			return err
		}
		markup, err := RenderNode(fragment)
		if err != nil {
			return NewDirectiveErrorWithCause(KindRenderAbort, ErrMsgRenderFailed, TagCached, p, err)
		}
		content = []byte(strings.TrimSpace(markup))
		if err := gate.Store(ctx, p, content); err != nil {
			return err
		}
	}

	// both paths splice the stored bytes so a replay is identical
	fragment, err := ParseFragment(content)
	if err != nil {
		return NewDirectiveErrorWithCause(KindRenderAbort, ErrMsgParseFailed, TagCached, p, err)
	}
	w.logger.Debug(LogMsgCacheSpliced,
		zap.String(LogFieldPath, p),
		zap.Duration(LogFieldTTL, ttl),
		zap.Bool(LogFieldFresh, fresh),
	)
	ReplaceWithChildren(el, fragment)
	return nil
}

// cachedTTL reads the ttl attribute in seconds. Missing or invalid
// values use the configured default.
func (w *Walker) cachedTTL(el *html.Node) time.Duration {
	raw, ok := GetAttr(el, AttrTTL)
	if !ok {
		return w.config.DefaultTTL
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(raw), FloatBitSize64)
	if err != nil || secs < 0 {
		w.logger.Debug(LogMsgInvalidTTL, zap.String(LogFieldTTL, raw))
		return w.config.DefaultTTL
	}
	return time.Duration(secs * float64(time.Second))
}

// csrfDirective emits the hidden csrf input for the request's session.
type csrfDirective struct{}

func (csrfDirective) Name() string { return TagCSRF }

func (csrfDirective) Execute(_ context.Context, w *Walker, rs *RenderState, el *html.Node) error {
	token, ok := rs.Request.CSRFToken()
	if !ok {
		w.logger.Debug(LogMsgCSRFNoSession)
		Remove(el)
		return nil
	}

	input := NewElement(CSRFInputTag)
	input.Attr = []html.Attribute{
		{Key: AttrType, Val: CSRFInputType},
		{Key: AttrName, Val: CSRFInputName},
		{Key: AttrValue, Val: token},
	}
	ReplaceWith(el, input)
	return nil
}

// langDirective replaces the element with a translated element.
type langDirective struct{}

func (langDirective) Name() string { return TagLang }

var langTokenSplitter = regexp.MustCompile(`\s`)

func (langDirective) Execute(ctx context.Context, w *Walker, rs *RenderState, el *html.Node) error {
	key := w.attrSubstituted(rs, el, AttrKey)
	tag := strings.TrimSpace(GetAttrDefault(el, AttrTag, StringValueEmpty))
	if tag == StringValueEmpty {
		tag = DefaultLangTag
	}

	text, found := StringValueEmpty, false
	if w.config.Translator != nil && key != StringValueEmpty {
		var err error
		text, found, err = w.config.Translator.Translate(ctx, rs.Request.RequestLocale(), key)
		if err != nil {
			return NewDirectiveErrorWithCause(KindRenderAbort, ErrMsgTranslateFailed, TagLang, key, err)
		}
	}
	if !found || text == StringValueEmpty {
		w.logger.Debug(LogMsgLangMissing,
			zap.String(LogFieldKey, key),
			zap.String(LogFieldLocale, rs.Request.RequestLocale()),
		)
		text = GetAttrDefault(el, AttrDefault, StringValueEmpty)
		if text == StringValueEmpty {
			inner, err := RenderChildren(el)
			if err != nil {
				return NewDirectiveErrorWithCause(KindRenderAbort, ErrMsgRenderFailed, TagLang, key, err)
			}
			text = inner
		}
	}
	text = w.replaceLangTokens(rs, text)

	replacement := NewElement(tag)
	for _, a := range el.Attr {
		if IsDirectiveAttr(a.Key) || a.Key == AttrTag || a.Key == AttrKey || a.Key == AttrDefault {
			continue
		}
		replacement.Attr = append(replacement.Attr, a)
	}

	content, err := ParseFragment([]byte(text))
	if err != nil {
		return NewDirectiveErrorWithCause(KindRenderAbort, ErrMsgParseFailed, TagLang, key, err)
	}
	MoveChildren(replacement, content)
	ReplaceWith(el, replacement)
	return nil
}

// replaceLangTokens swaps every whitespace-separated ":name" token for
// the value of name. Tokens that do not evaluate are kept.
func (w *Walker) replaceLangTokens(rs *RenderState, text string) string {
	if !strings.Contains(text, AttrDirectivePrefix) {
		return text
	}
	tokens := langTokenSplitter.Split(text, -1)
	for i, tok := range tokens {
		name := strings.TrimPrefix(tok, AttrDirectivePrefix)
		if name == tok || name == StringValueEmpty {
			continue
		}
		v, err := w.config.Evaluator.EvaluateDefined(name, rs.Scope)
		if err != nil {
			continue
		}
		tokens[i] = GuardValue(html.EscapeString(Stringify(v)))
	}
	return strings.Join(tokens, " ")
}

// debugDirective logs template values and always removes itself.
type debugDirective struct{}

func (debugDirective) Name() string { return TagDebug }

func (debugDirective) Execute(_ context.Context, w *Walker, rs *RenderState, el *html.Node) error {
	defer Remove(el)

	if w.config.Production && !HasAttr(el, AttrProd) {
		w.logger.Debug(LogMsgDebugSkipped, zap.String(LogFieldPath, templatePath(rs)))
		return nil
	}

	shouldEval := !HasAttr(el, AttrNoEval)
	levels := []struct {
		attr string
		emit func(string, ...zap.Field)
	}{
		{AttrLog, w.logger.Debug},
		{AttrInfo, w.logger.Info},
		{AttrWarn, w.logger.Warn},
		{AttrError, w.logger.Error},
	}
	for _, level := range levels {
		raw, ok := GetAttr(el, level.attr)
		if !ok || raw == StringValueEmpty {
			continue
		}
		var value any = raw
		if shouldEval {
			if v, err := w.config.Evaluator.Evaluate(raw, rs.Scope); err == nil {
				value = v
			}
		}
		level.emit(LogMsgDebugOutput,
			zap.Any(LogFieldValue, value),
			zap.String(LogFieldPath, templatePath(rs)),
		)
	}
	return nil
}
