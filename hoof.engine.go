package hoof

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/itsatony/go-hoof/internal"
	"github.com/tdewolff/minify/v2"
	"go.uber.org/zap"
)

// Request is the part of an incoming request a render depends on.
type Request = internal.Request

// Session is the per-visitor state a render may consult.
type Session = internal.Session

// Engine renders views. It is safe for concurrent use; each render works
// on its own tree and scope.
type Engine struct {
	config   *engineConfig
	reader   ResourceReader
	funcs    *internal.FuncRegistry
	loader   *internal.TemplateLoader
	gate     *internal.CacheGate
	walker   *internal.Walker
	renderer *internal.Renderer
	minifier *minify.M
	logger   *zap.Logger
}

// New creates a new hoof Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if config.maxDepth < 0 || config.maxInheritance < 0 {
		return nil, NewConfigError(ErrMsgConfigInvalidDepth, ConfigFieldMaxDepth, nil)
	}

	reader := config.reader
	if reader == nil {
		fsReader, err := NewFilesystemReader(config.viewsRoot)
		if err != nil {
			return nil, err
		}
		reader = fsReader
	}

	funcs := internal.NewBuiltinFuncRegistry()
	loader := internal.NewTemplateLoader(reader, config.extension)

	var gate *internal.CacheGate
	if config.store != nil {
		gate = internal.NewCacheGate(config.store, config.cacheDir, config.clock, logger)
	}

	walker := internal.NewWalker(internal.NewDefaultRegistry(logger), internal.WalkerConfig{
		Evaluator:          internal.NewEvaluator(funcs),
		Loader:             loader,
		Cache:              gate,
		Translator:         config.translator,
		MaxDepth:           config.maxDepth,
		Production:         config.production,
		StrictPlaceholders: config.strictPlaceholders,
		DefaultTTL:         config.defaultTTL,
	}, logger)

	logger.Debug(LogMsgEngineCreated, zap.String(LogFieldVersion, Version))

	return &Engine{
		config:   config,
		reader:   reader,
		funcs:    funcs,
		loader:   loader,
		gate:     gate,
		walker:   walker,
		renderer: internal.NewRenderer(walker, config.maxInheritance, logger),
		minifier: newMinifier(),
		logger:   logger,
	}, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// Render renders the view at path with data for req. A nil req renders
// without request path, locale or session.
func (e *Engine) Render(ctx context.Context, path string, data map[string]any, req *Request, opts ...RenderOption) (string, error) {
	rc := e.renderConfig(opts)
	start := time.Now()
	e.logger.Debug(LogMsgRenderStart, zap.String(LogFieldPath, path))

	out, err := e.renderer.Render(ctx, path, data, req)
	if err != nil {
		wrapped := wrapRenderError(err)
		e.logger.Debug(LogMsgRenderFailed,
			zap.String(LogFieldPath, path),
			zap.String(LogFieldKind, kindOf(wrapped)),
			zap.Error(err),
		)
		return StringValueEmpty, wrapped
	}

	e.logger.Debug(LogMsgRenderDone,
		zap.String(LogFieldPath, path),
		zap.Int(LogFieldSize, len(out)),
		zap.Duration(LogFieldDuration, time.Since(start)),
	)
	return e.finish(out, rc), nil
}

// RenderString renders source as if it were stored at name. Includes and
// extends still resolve through the engine's reader.
func (e *Engine) RenderString(ctx context.Context, name, source string, data map[string]any, req *Request, opts ...RenderOption) (string, error) {
	rc := e.renderConfig(opts)
	view, err := internal.ParseTemplate(name, []byte(source))
	if err != nil {
		return StringValueEmpty, wrapRenderError(err)
	}
	out, err := e.renderer.RenderTemplate(ctx, view, data, req)
	if err != nil {
		return StringValueEmpty, wrapRenderError(err)
	}
	return e.finish(out, rc), nil
}

// RenderCached renders the view at path through the page cache. A stored
// page younger than ttl is returned without rendering; otherwise the page
// is rendered and stored. A ttl of zero uses the default ttl. Without a
// fragment store this is Render.
func (e *Engine) RenderCached(ctx context.Context, path string, data map[string]any, req *Request, ttl time.Duration, opts ...RenderOption) (string, error) {
	if e.gate == nil {
		return e.Render(ctx, path, data, req, opts...)
	}
	if ttl <= 0 {
		ttl = e.config.defaultTTL
	}
	rc := e.renderConfig(opts)

	p := e.gate.PagePath(internal.Key(req.RequestPath(), e.loader.ResolvePath(path)))
	content, fresh, err := e.gate.Lookup(ctx, p, ttl)
	if err != nil {
		return StringValueEmpty, wrapRenderError(err)
	}
	if fresh {
		e.logger.Debug(LogMsgPageCacheHit, zap.String(LogFieldPath, path), zap.Duration(LogFieldTTL, ttl))
		return e.finish(string(content), rc), nil
	}

	e.logger.Debug(LogMsgPageCacheMiss, zap.String(LogFieldPath, path))
	out, err := e.renderer.Render(ctx, path, data, req)
	if err != nil {
		return StringValueEmpty, wrapRenderError(err)
	}
	if err := e.gate.Store(ctx, p, []byte(out)); err != nil {
		return StringValueEmpty, wrapRenderError(err)
	}
	return e.finish(out, rc), nil
}

// Exists reports whether a view exists at path.
func (e *Engine) Exists(ctx context.Context, path string) (bool, error) {
	return e.loader.Exists(ctx, path)
}

// Reader returns the engine's view reader.
func (e *Engine) Reader() ResourceReader {
	return e.reader
}

// Directives returns the names of the registered element directives.
func (e *Engine) Directives() []string {
	return e.walker.Registry().Elements()
}

// Close closes the fragment store when it implements io.Closer.
func (e *Engine) Close() error {
	if closer, ok := e.config.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (e *Engine) renderConfig(opts []RenderOption) *renderConfig {
	rc := &renderConfig{minify: e.config.minify}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// finish applies output options. A failed minification keeps the
// unminified output.
func (e *Engine) finish(out string, rc *renderConfig) string {
	if !rc.minify {
		return out
	}
	minified, err := e.minifyHTML(out)
	if err != nil {
		e.logger.Warn(LogMsgMinifyFailed, zap.Error(err))
		return out
	}
	return strings.TrimSpace(minified)
}
