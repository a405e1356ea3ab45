package internal

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// WalkerConfig holds the collaborators and limits of a Walker.
type WalkerConfig struct {
	Evaluator  *Evaluator
	Loader     *TemplateLoader
	Cache      *CacheGate
	Translator Translator

	MaxDepth           int           // maximum nesting of directive and include walks
	Production         bool          // skip debug directives without prod
	StrictPlaceholders bool          // abort on failed placeholders
	DefaultTTL         time.Duration // cached directive ttl when absent
}

// RenderState is the per-render mutable state threaded through the walk.
type RenderState struct {
	Request  *Request
	Template *Template
	Scope    *Scope
	Root     *Scope
	depth    int
}

// NewRenderState creates the state for rendering t with data.
func NewRenderState(t *Template, data map[string]any, req *Request) *RenderState {
	root := NewScope(data)
	return &RenderState{Request: req, Template: t, Scope: root, Root: root}
}

// PushScope binds vars in a new innermost frame.
func (rs *RenderState) PushScope(vars map[string]any) {
	rs.Scope = rs.Scope.Child(vars)
}

// PopScope discards the innermost frame. The root frame is never popped.
func (rs *RenderState) PopScope() {
	if parent := rs.Scope.Parent(); parent != nil {
		rs.Scope = parent
	}
}

// WithTemplate makes t the current template and returns a func restoring
// the previous one.
func (rs *RenderState) WithTemplate(t *Template) func() {
	prev := rs.Template
	rs.Template = t
	return func() { rs.Template = prev }
}

// Walker performs the directive-executing traversal.
type Walker struct {
	registry *Registry
	config   WalkerConfig
	logger   *zap.Logger
}

// NewWalker creates a walker dispatching through registry.
func NewWalker(registry *Registry, config WalkerConfig, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = NewDefaultRegistry(logger)
	}
	if config.Evaluator == nil {
		config.Evaluator = NewEvaluator(nil)
	}
	if config.MaxDepth <= 0 {
		config.MaxDepth = DefaultMaxDepth
	}
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = DefaultCacheTTL
	}
	logger.Debug(LogMsgWalkerCreated)
	return &Walker{registry: registry, config: config, logger: logger}
}

// Logger returns the walker's logger.
func (w *Walker) Logger() *zap.Logger { return w.logger }

// Registry returns the directive registry.
func (w *Walker) Registry() *Registry { return w.registry }

// Config returns the walker configuration.
func (w *Walker) Config() WalkerConfig { return w.config }

// Evaluator returns the expression adapter.
func (w *Walker) Evaluator() *Evaluator { return w.config.Evaluator }

// Walk processes every child of node in document order. After an element
// directive runs the scan starts over from the first child, since the
// handler may have rewritten any part of the sibling list. Each Walk call
// counts toward MaxDepth; plain elements below node do not.
func (w *Walker) Walk(ctx context.Context, rs *RenderState, node *html.Node) error {
	rs.depth++
	defer func() { rs.depth-- }()
	if rs.depth > w.config.MaxDepth {
		return NewDirectiveError(KindRenderAbort, ErrMsgMaxDepthExceeded, StringValueEmpty, templatePath(rs))
	}
	return w.walkChildren(ctx, rs, node)
}

func (w *Walker) walkChildren(ctx context.Context, rs *RenderState, node *html.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(map[*html.Node]struct{})
	for {
		restart, err := w.scan(ctx, rs, node, done)
		if err != nil {
			return err
		}
		if !restart {
			return nil
		}
	}
}

// scan walks node's children once. It reports true when an element
// directive mutated the list and the scan must restart.
func (w *Walker) scan(ctx context.Context, rs *RenderState, node *html.Node, done map[*html.Node]struct{}) (bool, error) {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if Classify(child) != NodeKindElement {
			continue
		}
		if _, seen := done[child]; seen {
			continue
		}

		if err := w.applyAttributes(ctx, rs, child); err != nil {
			return false, err
		}

		if d, ok := w.registry.Element(child.Data); ok {
			w.logger.Debug(LogMsgDirectiveDispatch,
				zap.String(LogFieldTag, child.Data),
				zap.String(LogFieldPath, templatePath(rs)),
				zap.Int(LogFieldDepth, rs.depth),
			)
			if err := d.Execute(ctx, w, rs, child); err != nil {
				return false, err
			}
			return true, nil
		}

		RemoveAttr(child, AttrExpression)
		if child.FirstChild != nil {
			if err := w.walkChildren(ctx, rs, child); err != nil {
				return false, err
			}
		}
		done[child] = struct{}{}
	}
	return false, nil
}

// applyAttributes runs directive attributes in declaration order.
func (w *Walker) applyAttributes(ctx context.Context, rs *RenderState, el *html.Node) error {
	if len(el.Attr) == 0 {
		return nil
	}
	attrs := make([]html.Attribute, len(el.Attr))
	copy(attrs, el.Attr)

	for _, attr := range attrs {
		d, ok := w.registry.Attribute(attr.Key)
		if !ok {
			continue
		}
		w.logger.Debug(LogMsgAttributeDispatch,
			zap.String(LogFieldTag, el.Data),
			zap.String(LogFieldAttribute, attr.Key),
		)
		if err := d.Apply(ctx, w, rs, el, attr); err != nil {
			return err
		}
		RemoveAttr(el, attr.Key)
	}
	return nil
}

// WalkFragment walks a detached fragment and splices its children in
// place of el.
func (w *Walker) WalkFragment(ctx context.Context, rs *RenderState, el, fragment *html.Node) error {
	if err := w.Walk(ctx, rs, fragment); err != nil {
		return err
	}
	ReplaceWithChildren(el, fragment)
	return nil
}

// SubstituteBound rewrites placeholders below node whose identifiers are
// bound in the current scope. Placeholders naming an unbound identifier
// are left for the final pass. Bodies of nested loops are skipped; they
// bind their own names first.
func (w *Walker) SubstituteBound(rs *RenderState, node *html.Node) error {
	if node.Type == html.ElementNode {
		if err := w.substituteBoundAttrs(rs, node); err != nil {
			return err
		}
	}
	return w.substituteBoundChildren(rs, node)
}

func (w *Walker) substituteBoundChildren(rs *RenderState, n *html.Node) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			out, err := w.substituteBoundText(rs, c.Data)
			if err != nil {
				return err
			}
			c.Data = out
		case IsElement(c, TagFor) || IsElement(c, TagEach):
			continue
		case c.Type == html.ElementNode:
			if err := w.substituteBoundAttrs(rs, c); err != nil {
				return err
			}
			if err := w.substituteBoundChildren(rs, c); err != nil {
				return err
			}
		default:
			if err := w.substituteBoundChildren(rs, c); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Walker) substituteBoundAttrs(rs *RenderState, el *html.Node) error {
	for i := range el.Attr {
		if !HasPlaceholder(el.Attr[i].Val) {
			continue
		}
		out, err := w.substituteBoundText(rs, el.Attr[i].Val)
		if err != nil {
			return err
		}
		el.Attr[i].Val = out
	}
	return nil
}

// substituteBoundText evaluates placeholders in the current scope. A
// bound placeholder that yields nil renders empty, so names shadowed by a
// loop never fall through to the root data.
func (w *Walker) substituteBoundText(rs *RenderState, text string) (string, error) {
	return ReplacePlaceholders(text, func(expr string) (string, bool, error) {
		v, err := w.config.Evaluator.EvaluateDefined(expr, rs.Scope)
		if IsUndefined(err) {
			return StringValueEmpty, true, nil
		}
		if err != nil {
			return w.placeholderFailed(rs, expr, err)
		}
		return GuardValue(Stringify(v)), false, nil
	})
}

// SubstituteAll evaluates every placeholder in text against the current
// scope. nil renders empty; failures render empty and are logged unless
// strict placeholders are configured.
func (w *Walker) SubstituteAll(rs *RenderState, text string) (string, error) {
	return ReplacePlaceholders(text, func(expr string) (string, bool, error) {
		v, err := w.config.Evaluator.Evaluate(expr, rs.Scope)
		if err != nil {
			return w.placeholderFailed(rs, expr, err)
		}
		return GuardValue(Stringify(v)), false, nil
	})
}

func (w *Walker) placeholderFailed(rs *RenderState, expr string, err error) (string, bool, error) {
	if w.config.StrictPlaceholders {
		return StringValueEmpty, false, NewDirectiveErrorWithCause(
			KindRenderAbort, ErrMsgPlaceholderFailed, expr, templatePath(rs), err)
	}
	w.logger.Warn(LogMsgPlaceholderFailed,
		zap.String(LogFieldExpression, expr),
		zap.String(LogFieldPath, templatePath(rs)),
		zap.Error(err),
	)
	return StringValueEmpty, false, nil
}

// FinalPass substitutes every remaining placeholder in text nodes and
// attribute values below node against the root scope.
func (w *Walker) FinalPass(rs *RenderState, node *html.Node) error {
	saved := rs.Scope
	rs.Scope = rs.Root
	defer func() { rs.Scope = saved }()

	if err := w.SubstituteTree(rs, node); err != nil {
		return err
	}

	_ = VisitText(node, func(t *html.Node) error {
		t.Data = UnguardValue(t.Data)
		return nil
	})
	return VisitElements(node, func(el *html.Node) error {
		for i := range el.Attr {
			el.Attr[i].Val = UnguardValue(el.Attr[i].Val)
		}
		return nil
	})
}

// SubstituteTree substitutes every placeholder below node against the
// current scope. Substituted values stay guarded.
func (w *Walker) SubstituteTree(rs *RenderState, node *html.Node) error {
	if err := VisitText(node, func(t *html.Node) error {
		if !HasPlaceholder(t.Data) {
			return nil
		}
		out, err := w.SubstituteAll(rs, t.Data)
		if err != nil {
			return err
		}
		t.Data = out
		return nil
	}); err != nil {
		return err
	}

	if err := VisitElements(node, func(el *html.Node) error {
		for i := range el.Attr {
			if !HasPlaceholder(el.Attr[i].Val) {
				continue
			}
			out, err := w.SubstituteAll(rs, el.Attr[i].Val)
			if err != nil {
				return err
			}
			el.Attr[i].Val = out
		}
		return nil
	}); err != nil {
		return err
	}
	return nil
}

// EvaluateLenient evaluates expr in the current scope, logging and
// returning nil on failure.
func (w *Walker) EvaluateLenient(rs *RenderState, expr string) any {
	v, err := w.config.Evaluator.Evaluate(expr, rs.Scope)
	if err != nil {
		w.logger.Debug(LogMsgEvalSwallowed,
			zap.String(LogFieldExpression, expr),
			zap.Error(err),
		)
		return nil
	}
	return v
}

func templatePath(rs *RenderState) string {
	if rs == nil || rs.Template == nil {
		return StringValueEmpty
	}
	return rs.Template.Path
}
