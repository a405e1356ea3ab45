package internal

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// InheritanceResolver links a template to the parents its extends
// elements declare.
type InheritanceResolver struct {
	loader   *TemplateLoader
	maxDepth int
	logger   *zap.Logger
}

// NewInheritanceResolver creates a resolver. maxDepth bounds the number
// of parents; zero or less uses DefaultMaxInheritance.
func NewInheritanceResolver(loader *TemplateLoader, maxDepth int, logger *zap.Logger) *InheritanceResolver {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxInheritance
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InheritanceResolver{loader: loader, maxDepth: maxDepth, logger: logger}
}

// ParentPath returns the file named by the first extends element in
// root, if any.
func ParentPath(root *html.Node) (string, bool) {
	el := FindElement(root, TagExtends, func(n *html.Node) bool {
		return HasAttr(n, AttrFile)
	})
	if el == nil {
		return StringValueEmpty, false
	}
	file, _ := GetAttr(el, AttrFile)
	return file, file != StringValueEmpty
}

// Resolve loads every ancestor of t, links Parent and Child pointers and
// returns the root ancestor. A repeated path or a chain longer than the
// configured bound is a KindInheritance error.
func (r *InheritanceResolver) Resolve(ctx context.Context, t *Template) (*Template, error) {
	visited := map[string]bool{t.Path: true}
	cur := t

	for depth := 1; ; depth++ {
		parentFile, ok := ParentPath(cur.Root)
		if !ok {
			return cur, nil
		}
		if depth > r.maxDepth {
			return nil, NewDirectiveError(KindInheritance, ErrMsgInheritanceTooDeep, TagExtends, cur.Path)
		}

		parentPath := r.loader.ResolvePath(parentFile)
		if visited[parentPath] {
			return nil, NewDirectiveError(KindInheritance, ErrMsgCircularInheritance, TagExtends, parentPath)
		}
		visited[parentPath] = true

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parent, err := r.loader.Load(ctx, parentFile)
		if err != nil {
			return nil, err
		}

		cur.Parent = parent
		parent.Child = cur
		r.logger.Debug(LogMsgInheritanceLinked,
			zap.String(LogFieldPath, cur.Path),
			zap.String(LogFieldParent, parent.Path),
			zap.Int(LogFieldDepth, depth),
		)
		cur = parent
	}
}

// FindBlock returns the block named name for a walk happening in t:
// the descendants of t are searched most specific first. The template
// the block was found in is returned with it.
func FindBlock(t *Template, name string) (*html.Node, *Template) {
	if t == nil {
		return nil, nil
	}
	byName := func(n *html.Node) bool {
		v, _ := GetAttr(n, AttrName)
		return v == name
	}
	for cur := t.Deepest(); cur != nil && cur != t; cur = cur.Parent {
		if el := FindElement(cur.Root, TagBlock, byName); el != nil {
			return el, cur
		}
	}
	return nil, nil
}
