package internal

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// bindDirective sets the attribute named after the prefix to the value of
// its expression. Lists and maps are written as JSON; nil or a failed
// evaluation leaves the attribute out.
type bindDirective struct{}

func (bindDirective) Name() string { return AttrDirectivePrefix }

func (bindDirective) Apply(_ context.Context, w *Walker, rs *RenderState, el *html.Node, attr html.Attribute) error {
	target := strings.TrimPrefix(attr.Key, AttrDirectivePrefix)
	RemoveAttr(el, attr.Key)

	v := w.EvaluateLenient(rs, attr.Val)
	if v == nil || target == StringValueEmpty {
		return nil
	}

	var val string
	if IsStructured(v) {
		val = StringifyJSON(v)
	} else {
		val = Stringify(v)
	}
	SetAttr(el, target, GuardValue(val))
	return nil
}

// classDirective adds the keys of an object literal whose values are
// truthy to the class attribute.
type classDirective struct{}

func (classDirective) Name() string { return AttrClass }

func (classDirective) Apply(_ context.Context, w *Walker, rs *RenderState, el *html.Node, attr html.Attribute) error {
	RemoveAttr(el, AttrClass)

	items, err := w.config.Evaluator.EvaluateEntries(attr.Val, rs.Scope)
	if err != nil {
		w.logger.Debug(LogMsgEvalSwallowed, zap.String(LogFieldExpression, attr.Val), zap.Error(err))
		return nil
	}

	existing, _ := GetAttr(el, AttrClassRaw)
	classes := strings.Fields(existing)
	seen := make(map[string]bool, len(classes))
	for _, c := range classes {
		seen[c] = true
	}

	added := false
	for _, item := range items {
		name, isKey := item.Key.(string)
		if !isKey || !isTruthy(item.Value) {
			continue
		}
		for _, c := range strings.Fields(name) {
			if !seen[c] {
				seen[c] = true
				classes = append(classes, c)
				added = true
			}
		}
	}
	if added {
		SetAttr(el, AttrClassRaw, strings.Join(classes, " "))
	}
	return nil
}

// hideDirective sets display: none when its expression is truthy.
type hideDirective struct{}

func (hideDirective) Name() string { return AttrHide }

func (hideDirective) Apply(_ context.Context, w *Walker, rs *RenderState, el *html.Node, attr html.Attribute) error {
	RemoveAttr(el, AttrHide)

	if !isTruthy(w.EvaluateLenient(rs, attr.Val)) {
		return nil
	}
	w.logger.Debug(LogMsgElementHidden, zap.String(LogFieldTag, el.Data))
	SetAttr(el, AttrStyle, hideStyle(GetAttrDefault(el, AttrStyle, StringValueEmpty)))
	return nil
}

// hideStyle replaces any display declaration in style with display: none
// and keeps the others.
func hideStyle(style string) string {
	var decls []string
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == StringValueEmpty {
			continue
		}
		prop, _, _ := strings.Cut(decl, ":")
		if strings.EqualFold(strings.TrimSpace(prop), StyleDisplay) {
			continue
		}
		decls = append(decls, decl)
	}
	decls = append(decls, StyleHidden)
	return strings.Join(decls, "; ") + ";"
}
