package internal

import (
	"context"

	"go.uber.org/zap"
)

// Renderer runs the full pipeline for one view: load, link the parent
// chain, walk the root ancestor, substitute placeholders, serialize.
type Renderer struct {
	walker      *Walker
	inheritance *InheritanceResolver
	logger      *zap.Logger
}

// NewRenderer creates a renderer. The walker config must carry a loader.
func NewRenderer(walker *Walker, maxInheritance int, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		walker:      walker,
		inheritance: NewInheritanceResolver(walker.config.Loader, maxInheritance, logger),
		logger:      logger,
	}
}

// Walker returns the renderer's walker.
func (r *Renderer) Walker() *Walker { return r.walker }

// Render renders the view at path with data for req.
func (r *Renderer) Render(ctx context.Context, path string, data map[string]any, req *Request) (string, error) {
	view, err := r.walker.config.Loader.Load(ctx, path)
	if err != nil {
		return StringValueEmpty, err
	}
	return r.RenderTemplate(ctx, view, data, req)
}

// RenderTemplate renders an already loaded view.
func (r *Renderer) RenderTemplate(ctx context.Context, view *Template, data map[string]any, req *Request) (string, error) {
	root, err := r.inheritance.Resolve(ctx, view)
	if err != nil {
		return StringValueEmpty, err
	}

	r.logger.Debug(LogMsgWalkStart,
		zap.String(LogFieldPath, view.Path),
		zap.String(LogFieldParent, root.Path),
	)

	rs := NewRenderState(root, data, req)
	if err := r.walker.Walk(ctx, rs, root.Root); err != nil {
		return StringValueEmpty, err
	}
	if err := r.walker.FinalPass(rs, root.Root); err != nil {
		return StringValueEmpty, err
	}

	out, err := RenderNode(root.Root)
	if err != nil {
		return StringValueEmpty, NewDirectiveErrorWithCause(KindRenderAbort, ErrMsgRenderFailed, StringValueEmpty, view.Path, err)
	}
	return out, nil
}
