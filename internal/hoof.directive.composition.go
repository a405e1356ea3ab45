package internal

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// includeDirective splices another view in place of the element. The
// required variant fails the render when the view is missing; the plain
// variant tries its else view and otherwise drops the element.
type includeDirective struct {
	required bool
}

func (d includeDirective) Name() string {
	if d.required {
		return TagRequire
	}
	return TagInclude
}

func (d includeDirective) Execute(ctx context.Context, w *Walker, rs *RenderState, el *html.Node) error {
	candidates := []string{w.attrSubstituted(rs, el, AttrFile)}
	if !d.required {
		candidates = append(candidates, w.attrSubstituted(rs, el, AttrElse))
	}

	if d.required && candidates[0] == StringValueEmpty {
		return NewDirectiveError(KindMissingResource, ErrMsgRequireMissingFile, TagRequire, templatePath(rs))
	}

	for i, file := range candidates {
		if file == StringValueEmpty {
			continue
		}
		ok, err := w.config.Loader.Exists(ctx, file)
		if err != nil {
			return NewDirectiveErrorWithCause(KindRenderAbort, ErrMsgReadFailed, d.Name(), w.config.Loader.ResolvePath(file), err)
		}
		if !ok {
			w.logger.Debug(LogMsgIncludeMissing,
				zap.String(LogFieldTag, d.Name()),
				zap.String(LogFieldPath, w.config.Loader.ResolvePath(file)),
			)
			continue
		}

		view, err := w.config.Loader.Load(ctx, file)
		if err != nil {
			return err
		}
		if i > 0 {
			w.logger.Debug(LogMsgIncludeFallback, zap.String(LogFieldPath, view.Path))
		} else {
			w.logger.Debug(LogMsgIncludeResolved, zap.String(LogFieldPath, view.Path))
		}
		return w.WalkFragment(ctx, rs, el, view.Root)
	}

	if d.required {
		return NewDirectiveError(KindMissingResource, ErrMsgTemplateNotFound, TagRequire,
			w.config.Loader.ResolvePath(candidates[0]))
	}
	Remove(el)
	return nil
}

// attrSubstituted returns the trimmed attribute value with placeholders
// resolved in the current scope.
func (w *Walker) attrSubstituted(rs *RenderState, el *html.Node, key string) string {
	raw, ok := GetAttr(el, key)
	if !ok {
		return StringValueEmpty
	}
	out, err := w.SubstituteAll(rs, raw)
	if err != nil {
		return StringValueEmpty
	}
	return strings.TrimSpace(UnguardValue(out))
}

// blockDirective fills a named slot with the most specific descendant
// template's block of the same name, or with its own children.
type blockDirective struct{}

func (blockDirective) Name() string { return TagBlock }

func (blockDirective) Execute(ctx context.Context, w *Walker, rs *RenderState, el *html.Node) error {
	name, _ := GetAttr(el, AttrName)

	override, owner := FindBlock(rs.Template, name)
	if name == StringValueEmpty || override == nil {
		w.logger.Debug(LogMsgBlockDefault, zap.String(LogFieldName, name))
		return w.WalkFragment(ctx, rs, el, CloneChildren(el))
	}

	w.logger.Debug(LogMsgBlockOverride,
		zap.String(LogFieldName, name),
		zap.String(LogFieldPath, owner.Path),
	)
	// nested blocks resolve against templates more specific than owner
	restore := rs.WithTemplate(owner)
	defer restore()
	return w.WalkFragment(ctx, rs, el, CloneChildren(override))
}
